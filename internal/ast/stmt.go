package ast

import "cirt/internal/cerrors"

// Stmt generalizes the teacher's parser.Stmt (internal/parser/stmt.go) the
// same way Expr generalizes parser.Expr: typed Accept return instead of
// interface{}.
type Stmt interface {
	Node
	Accept(v StmtVisitor) error
}

// StmtProps is `.properties.statement_props` (spec §6), including the link
// into the flow-control tree (internal/flowtree) that C8 maintains.
type StmtProps struct {
	FlowControlStatement any // *flowtree.Node, set by semantic analysis' block structuring; kept `any` here so that ast does not import internal/flowtree
}

type CompoundStmt struct {
	base
	Props      StmtProps
	Items      []BlockItem
	ContainsVLA bool
	ScopeID    *ScopeID
}

func (c *CompoundStmt) Accept(v StmtVisitor) error { return v.VisitCompound(c) }

// BlockItem is either a Stmt or a Declaration (spec's block-item grammar).
type BlockItem struct {
	Stmt        Stmt
	Declaration *Declaration
}

type ExpressionStmt struct {
	base
	Props StmtProps
	Expr  Expr // nil for a bare `;`
}

func (e *ExpressionStmt) Accept(v StmtVisitor) error { return v.VisitExpression(e) }

type IfStmt struct {
	base
	Props      StmtProps
	Condition  Expr
	Then       Stmt
	Else       Stmt // nil if no else
}

func (i *IfStmt) Accept(v StmtVisitor) error { return v.VisitIf(i) }

type SwitchCase struct {
	Value Expr // nil for `default`
	Loc   cerrors.SourceLocation
}

type SwitchStmt struct {
	base
	Props       StmtProps
	Discriminant Expr
	Body        Stmt
	Cases       []SwitchCase
}

func (s *SwitchStmt) Accept(v StmtVisitor) error { return v.VisitSwitch(s) }

type CaseLabelStmt struct {
	base
	Props StmtProps
	Value Expr // nil for default
	Inner Stmt
}

func (c *CaseLabelStmt) Accept(v StmtVisitor) error { return v.VisitCaseLabel(c) }

type WhileStmt struct {
	base
	Props     StmtProps
	Condition Expr
	Body      Stmt
}

func (w *WhileStmt) Accept(v StmtVisitor) error { return v.VisitWhile(w) }

type DoWhileStmt struct {
	base
	Props     StmtProps
	Body      Stmt
	Condition Expr
}

func (d *DoWhileStmt) Accept(v StmtVisitor) error { return v.VisitDoWhile(d) }

type ForStmt struct {
	base
	Props     StmtProps
	Init      *BlockItem // optional init-statement or declaration
	Condition Expr       // optional
	Update    Expr       // optional
	Body      Stmt
}

func (f *ForStmt) Accept(v StmtVisitor) error { return v.VisitFor(f) }

type GotoStmt struct {
	base
	Props StmtProps
	Label string
}

func (g *GotoStmt) Accept(v StmtVisitor) error { return v.VisitGoto(g) }

// IndirectGotoStmt is `goto *expr;`, targeting a `&&label` value.
type IndirectGotoStmt struct {
	base
	Props  StmtProps
	Target Expr
}

func (g *IndirectGotoStmt) Accept(v StmtVisitor) error { return v.VisitIndirectGoto(g) }

type LabeledStmt struct {
	base
	Props StmtProps
	Label string
	Inner Stmt
}

func (l *LabeledStmt) Accept(v StmtVisitor) error { return v.VisitLabeled(l) }

type BreakStmt struct {
	base
	Props StmtProps
}

func (b *BreakStmt) Accept(v StmtVisitor) error { return v.VisitBreak(b) }

type ContinueStmt struct {
	base
	Props StmtProps
}

func (c *ContinueStmt) Accept(v StmtVisitor) error { return v.VisitContinue(c) }

type ReturnStmt struct {
	base
	Props StmtProps
	Value Expr // nil for bare `return;`
}

func (r *ReturnStmt) Accept(v StmtVisitor) error { return v.VisitReturn(r) }

type DeclarationStmt struct {
	base
	Props       StmtProps
	Declaration *Declaration
}

func (d *DeclarationStmt) Accept(v StmtVisitor) error { return v.VisitDeclarationStmt(d) }

// InlineAsmConstraint is one output/input operand of a `GNU asm` statement.
type InlineAsmConstraint struct {
	Constraint string // e.g. "=r", "+rm", "m"
	Alias      string // `[name]`, may be empty
	Operand    Expr
}

type InlineAsmStmt struct {
	base
	Props     StmtProps
	Template  string
	Outputs   []InlineAsmConstraint
	Inputs    []InlineAsmConstraint
	Clobbers  []string
	JumpLabels []string
}

func (i *InlineAsmStmt) Accept(v StmtVisitor) error { return v.VisitInlineAsm(i) }

// StmtVisitor dispatches over every statement kind, generalizing the
// teacher's StmtVisitor (internal/parser/stmt.go).
type StmtVisitor interface {
	VisitCompound(s *CompoundStmt) error
	VisitExpression(s *ExpressionStmt) error
	VisitIf(s *IfStmt) error
	VisitSwitch(s *SwitchStmt) error
	VisitCaseLabel(s *CaseLabelStmt) error
	VisitWhile(s *WhileStmt) error
	VisitDoWhile(s *DoWhileStmt) error
	VisitFor(s *ForStmt) error
	VisitGoto(s *GotoStmt) error
	VisitIndirectGoto(s *IndirectGotoStmt) error
	VisitLabeled(s *LabeledStmt) error
	VisitBreak(s *BreakStmt) error
	VisitContinue(s *ContinueStmt) error
	VisitReturn(s *ReturnStmt) error
	VisitDeclarationStmt(s *DeclarationStmt) error
	VisitInlineAsm(s *InlineAsmStmt) error
}
