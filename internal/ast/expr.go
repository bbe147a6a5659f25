package ast

import "cirt/internal/cerrors"

// Expr is the expression-node interface, generalizing the teacher's
// parser.Expr (internal/parser/ast.go): every node accepts an ExprVisitor
// and the visitor methods return typed results instead of interface{},
// since every consumer (internal/constexpr, internal/lowerexpr) knows its
// own result type statically.
type Expr interface {
	Node
	Accept(v ExprVisitor) (any, error)
}

// Node carries the properties every AST node gets from semantic analysis
// (spec §6): category, resolved type, and location. Expression-specific
// annotations live in ExprProps.
type Node interface {
	Location() cerrors.SourceLocation
}

type base struct {
	Loc cerrors.SourceLocation
}

func (b base) Location() cerrors.SourceLocation { return b.Loc }

// ExprProps is `.properties.expression_props` plus the shared
// `.properties.type`/`.properties.category` fields attached by the semantic
// analyzer, per spec §6.
type ExprProps struct {
	Type                    Type
	IsLvalue                bool
	ConstantExpression      bool
	ConstantExpressionValue any // pre-folded ConstValue when the analyzer already computed it; nil otherwise
	Identifier              string
	ScopedID                *ScopeID
	TemporaryIdentifier     string // for compound literals with external/static storage
	BitfieldProps           *BitfieldProps
}

type BitfieldProps struct {
	Offset int
	Width  int
}

// ScopeID links an identifier-expression back to its declared scope entry
// (spec §6 `scoped_id`).
type ScopeID struct {
	Name  string
	Local bool
}

// --- expression node kinds ---

type ConstantExpr struct {
	base
	Props ExprProps
	Value any // raw literal payload (int64, uint64, float64, string, *bigint.Int, ...)
}

func (c *ConstantExpr) Accept(v ExprVisitor) (any, error) { return v.VisitConstant(c) }

type IdentifierExpr struct {
	base
	Props ExprProps
	Name  string
}

func (i *IdentifierExpr) Accept(v ExprVisitor) (any, error) { return v.VisitIdentifier(i) }

type StringLiteralExpr struct {
	base
	Props ExprProps
	Bytes []byte
	Kind  StringKind
}

type StringKind int

const (
	StringPlain StringKind = iota
	StringWide
	StringUTF16
	StringUTF32
)

func (s *StringLiteralExpr) Accept(v ExprVisitor) (any, error) { return v.VisitStringLiteral(s) }

type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

type BinaryExpr struct {
	base
	Props       ExprProps
	Operator    BinaryOp
	Left, Right Expr
}

func (b *BinaryExpr) Accept(v ExprVisitor) (any, error) { return v.VisitBinary(b) }

type LogicalOp int

const (
	LogicalAnd LogicalOp = iota
	LogicalOr
)

type LogicalExpr struct {
	base
	Props       ExprProps
	Operator    LogicalOp
	Left, Right Expr
}

func (l *LogicalExpr) Accept(v ExprVisitor) (any, error) { return v.VisitLogical(l) }

type UnaryOp int

const (
	UnaryPlus UnaryOp = iota
	UnaryMinus
	UnaryBitNot
	UnaryLogicalNot
	UnaryAddressOf
	UnaryDereference
	UnaryPreIncrement
	UnaryPreDecrement
)

type UnaryExpr struct {
	base
	Props    ExprProps
	Operator UnaryOp
	Operand  Expr
}

func (u *UnaryExpr) Accept(v ExprVisitor) (any, error) { return v.VisitUnary(u) }

type PostfixOp int

const (
	PostIncrement PostfixOp = iota
	PostDecrement
)

type PostfixExpr struct {
	base
	Props    ExprProps
	Operator PostfixOp
	Operand  Expr
}

func (p *PostfixExpr) Accept(v ExprVisitor) (any, error) { return v.VisitPostfix(p) }

// ConditionalExpr is `a ? b : c`, with GNU omitted-middle `a ?: c` encoded
// as ThenBranch == nil.
type ConditionalExpr struct {
	base
	Props                   ExprProps
	Condition               Expr
	ThenBranch, ElseBranch  Expr
}

func (c *ConditionalExpr) Accept(v ExprVisitor) (any, error) { return v.VisitConditional(c) }

type CommaExpr struct {
	base
	Props ExprProps
	Left, Right Expr
}

func (c *CommaExpr) Accept(v ExprVisitor) (any, error) { return v.VisitComma(c) }

type AssignOp int

const (
	AssignPlain AssignOp = iota
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
	AssignMod
	AssignAnd
	AssignOr
	AssignXor
	AssignShl
	AssignShr
)

type AssignmentExpr struct {
	base
	Props    ExprProps
	Operator AssignOp
	Target   Expr
	Value    Expr
}

func (a *AssignmentExpr) Accept(v ExprVisitor) (any, error) { return v.VisitAssignment(a) }

type CastExpr struct {
	base
	Props  ExprProps
	Target Type
	Inner  Expr
}

func (c *CastExpr) Accept(v ExprVisitor) (any, error) { return v.VisitCast(c) }

type CallExpr struct {
	base
	Props  ExprProps
	Callee Expr
	Args   []Expr
}

func (c *CallExpr) Accept(v ExprVisitor) (any, error) { return v.VisitCall(c) }

// DesignatorStep is one `.member` or `[index]` step of a member-designator
// chain used by offsetof and by member/index access nodes.
type DesignatorStep struct {
	Member string // set for .member / ->member
	Index  Expr   // set for [index]
}

type MemberAccessExpr struct {
	base
	Props    ExprProps
	Object   Expr
	Member   string
	Indirect bool // -> vs .
}

func (m *MemberAccessExpr) Accept(v ExprVisitor) (any, error) { return v.VisitMemberAccess(m) }

type ArraySubscriptExpr struct {
	base
	Props ExprProps
	Array Expr
	Index Expr
}

func (a *ArraySubscriptExpr) Accept(v ExprVisitor) (any, error) { return v.VisitArraySubscript(a) }

type SizeofExpr struct {
	base
	Props       ExprProps
	OperandType Type // set when sizeof(type-name)
	Operand     Expr // set when sizeof expr
}

func (s *SizeofExpr) Accept(v ExprVisitor) (any, error) { return v.VisitSizeof(s) }

type AlignofExpr struct {
	base
	Props       ExprProps
	OperandType Type
}

func (a *AlignofExpr) Accept(v ExprVisitor) (any, error) { return v.VisitAlignof(a) }

type OffsetofExpr struct {
	base
	Props       ExprProps
	StructType  Type
	Designator  []DesignatorStep
}

func (o *OffsetofExpr) Accept(v ExprVisitor) (any, error) { return v.VisitOffsetof(o) }

// CompoundLiteralExpr is `(T){ initializer }`.
type CompoundLiteralExpr struct {
	base
	Props       ExprProps
	Type        Type
	Initializer *Initializer
}

func (c *CompoundLiteralExpr) Accept(v ExprVisitor) (any, error) { return v.VisitCompoundLiteral(c) }

// StatementExpr is GNU `({ ... })`.
type StatementExpr struct {
	base
	Props ExprProps
	Body  *CompoundStmt
}

func (s *StatementExpr) Accept(v ExprVisitor) (any, error) { return v.VisitStatementExpr(s) }

// VaArgExpr is `va_arg(ap, T)` - never constant (spec §4.3).
type VaArgExpr struct {
	base
	Props ExprProps
	List  Expr
	Type  Type
}

func (v2 *VaArgExpr) Accept(v ExprVisitor) (any, error) { return v.VisitVaArg(v2) }

// GenericSelectionExpr is C11 `_Generic(expr, T1: e1, T2: e2, default: ed)`,
// recovered from original_source/translate_expression_generic_selection.test.c
// (spec.md distillation dropped it; supplemented per SPEC_FULL.md §14).
type GenericAssociation struct {
	Type    Type // nil for the `default` association
	Result  Expr
}

type GenericSelectionExpr struct {
	base
	Props       ExprProps
	Controlling Expr
	Associations []GenericAssociation
}

func (g *GenericSelectionExpr) Accept(v ExprVisitor) (any, error) { return v.VisitGenericSelection(g) }

// BuiltinChooseExpr is `__builtin_choose_expr(cond, a, b)`.
type BuiltinChooseExpr struct {
	base
	Props             ExprProps
	Condition         Expr
	TrueExpr, FalseExpr Expr
}

func (b *BuiltinChooseExpr) Accept(v ExprVisitor) (any, error) { return v.VisitBuiltinChoose(b) }

// BuiltinTypesCompatibleExpr is `__builtin_types_compatible_p(T1, T2)`.
type BuiltinTypesCompatibleExpr struct {
	base
	Props      ExprProps
	LHS, RHS   Type
}

func (b *BuiltinTypesCompatibleExpr) Accept(v ExprVisitor) (any, error) {
	return v.VisitBuiltinTypesCompatible(b)
}

// BuiltinConstantPExpr is `__builtin_constant_p(expr)`.
type BuiltinConstantPExpr struct {
	base
	Props   ExprProps
	Operand Expr
}

func (b *BuiltinConstantPExpr) Accept(v ExprVisitor) (any, error) { return v.VisitBuiltinConstantP(b) }

// BuiltinClassifyTypeExpr is `__builtin_classify_type(expr)`.
type BuiltinClassifyTypeExpr struct {
	base
	Props   ExprProps
	Operand Expr
}

func (b *BuiltinClassifyTypeExpr) Accept(v ExprVisitor) (any, error) {
	return v.VisitBuiltinClassifyType(b)
}

// BuiltinBitOp covers the ffs/clz/ctz/clrsb/popcount/parity family
// (plain and _BitInt "g"-generic forms).
type BuiltinBitOpKind int

const (
	BitOpFfs BuiltinBitOpKind = iota
	BitOpClz
	BitOpCtz
	BitOpClrsb
	BitOpPopcount
	BitOpParity
)

type BuiltinBitOpExpr struct {
	base
	Props    ExprProps
	Kind     BuiltinBitOpKind
	Operand  Expr
	Generic  bool // _BitInt "g"-suffixed form
}

func (b *BuiltinBitOpExpr) Accept(v ExprVisitor) (any, error) { return v.VisitBuiltinBitOp(b) }

// BuiltinInfNanExpr covers __builtin_inf*/__builtin_nan*(str).
type BuiltinInfNanExpr struct {
	base
	Props  ExprProps
	IsNan  bool
	NanPayload string // for nan*(str) forms
}

func (b *BuiltinInfNanExpr) Accept(v ExprVisitor) (any, error) { return v.VisitBuiltinInfNan(b) }

// LabelAddressExpr is GNU `&&label`; it is never a general constant
// expression.

type LabelAddressExpr struct {
	base
	Props ExprProps
	Label string // `&&label`
}

func (l *LabelAddressExpr) Accept(v ExprVisitor) (any, error) { return v.VisitLabelAddress(l) }

// ExprVisitor dispatches over every expression kind, generalizing the
// teacher's ExprVisitor (internal/parser/ast.go) to typed (any, error)
// returns instead of bare interface{}.
type ExprVisitor interface {
	VisitConstant(e *ConstantExpr) (any, error)
	VisitIdentifier(e *IdentifierExpr) (any, error)
	VisitStringLiteral(e *StringLiteralExpr) (any, error)
	VisitBinary(e *BinaryExpr) (any, error)
	VisitLogical(e *LogicalExpr) (any, error)
	VisitUnary(e *UnaryExpr) (any, error)
	VisitPostfix(e *PostfixExpr) (any, error)
	VisitConditional(e *ConditionalExpr) (any, error)
	VisitComma(e *CommaExpr) (any, error)
	VisitAssignment(e *AssignmentExpr) (any, error)
	VisitCast(e *CastExpr) (any, error)
	VisitCall(e *CallExpr) (any, error)
	VisitMemberAccess(e *MemberAccessExpr) (any, error)
	VisitArraySubscript(e *ArraySubscriptExpr) (any, error)
	VisitSizeof(e *SizeofExpr) (any, error)
	VisitAlignof(e *AlignofExpr) (any, error)
	VisitOffsetof(e *OffsetofExpr) (any, error)
	VisitCompoundLiteral(e *CompoundLiteralExpr) (any, error)
	VisitStatementExpr(e *StatementExpr) (any, error)
	VisitVaArg(e *VaArgExpr) (any, error)
	VisitGenericSelection(e *GenericSelectionExpr) (any, error)
	VisitBuiltinChoose(e *BuiltinChooseExpr) (any, error)
	VisitBuiltinTypesCompatible(e *BuiltinTypesCompatibleExpr) (any, error)
	VisitBuiltinConstantP(e *BuiltinConstantPExpr) (any, error)
	VisitBuiltinClassifyType(e *BuiltinClassifyTypeExpr) (any, error)
	VisitBuiltinBitOp(e *BuiltinBitOpExpr) (any, error)
	VisitBuiltinInfNan(e *BuiltinInfNanExpr) (any, error)
	VisitLabelAddress(e *LabelAddressExpr) (any, error)
}

// ExprType returns the resolved type semantic analysis attached to e's
// ExprProps, the common accessor every consumer (internal/constexpr,
// internal/lowerexpr) needs instead of re-deriving it per node kind.
func ExprType(e Expr) Type {
	switch v := e.(type) {
	case *ConstantExpr:
		return v.Props.Type
	case *IdentifierExpr:
		return v.Props.Type
	case *StringLiteralExpr:
		return v.Props.Type
	case *BinaryExpr:
		return v.Props.Type
	case *LogicalExpr:
		return v.Props.Type
	case *UnaryExpr:
		return v.Props.Type
	case *PostfixExpr:
		return v.Props.Type
	case *ConditionalExpr:
		return v.Props.Type
	case *CommaExpr:
		return v.Props.Type
	case *AssignmentExpr:
		return v.Props.Type
	case *CastExpr:
		return v.Props.Type
	case *CallExpr:
		return v.Props.Type
	case *MemberAccessExpr:
		return v.Props.Type
	case *ArraySubscriptExpr:
		return v.Props.Type
	case *SizeofExpr:
		return v.Props.Type
	case *AlignofExpr:
		return v.Props.Type
	case *OffsetofExpr:
		return v.Props.Type
	case *CompoundLiteralExpr:
		return v.Props.Type
	case *StatementExpr:
		return v.Props.Type
	case *VaArgExpr:
		return v.Props.Type
	case *GenericSelectionExpr:
		return v.Props.Type
	case *BuiltinChooseExpr:
		return v.Props.Type
	case *BuiltinTypesCompatibleExpr:
		return v.Props.Type
	case *BuiltinConstantPExpr:
		return v.Props.Type
	case *BuiltinClassifyTypeExpr:
		return v.Props.Type
	case *BuiltinBitOpExpr:
		return v.Props.Type
	case *BuiltinInfNanExpr:
		return v.Props.Type
	case *LabelAddressExpr:
		return v.Props.Type
	}
	return nil
}
