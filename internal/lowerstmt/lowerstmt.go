// Package lowerstmt implements C8: lowering a resolved ast.Stmt tree into
// ir.Builder instructions, using internal/flowtree to track
// break/continue/goto/switch-case context (spec §4.8). It generalizes the
// teacher's internal/compiler statement-compilation visitor
// (internal/compiler/statements.go), which walks parser.Stmt the same way
// this walks ast.Stmt.
package lowerstmt

import (
	"cirt/internal/ast"
	"cirt/internal/cerrors"
	"cirt/internal/constexpr"
	"cirt/internal/debuginfo"
	"cirt/internal/flowtree"
	"cirt/internal/inlineasm"
	"cirt/internal/ir"
	"cirt/internal/lowerexpr"
	"cirt/internal/targetenv"
)

// LocalAllocator assigns storage slots to block-scoped declarations as
// C8 walks into nested compound statements, generalizing the teacher's
// internal/compiler local-variable-slot bookkeeping (internal/compiler's
// scopeDepth/localCount) to the IR's typed local-slot model.
type LocalAllocator interface {
	AllocateLocal(decl *ast.Declaration) (slot int, err error)
}

// Lowerer walks one function body, implementing ast.StmtVisitor.
type Lowerer struct {
	Builder   *ir.Builder
	Oracle    targetenv.Oracle
	Symbols   lowerexpr.SymbolResolver
	Locals    LocalAllocator
	Flow      *flowtree.Tree
	Evaluator *constexpr.Evaluator
	exprLowerer *lowerexpr.Lowerer
	AsmTranslator *inlineasm.Translator
}

func New(b *ir.Builder, oracle targetenv.Oracle, symbols lowerexpr.SymbolResolver, locals LocalAllocator) *Lowerer {
	l := &Lowerer{
		Builder:     b,
		Oracle:      oracle,
		Symbols:     symbols,
		Locals:      locals,
		Flow:        flowtree.NewTree(),
		Evaluator:   constexpr.New(oracle),
		exprLowerer: lowerexpr.New(b, oracle, symbols),
		AsmTranslator: inlineasm.New(),
	}
	l.exprLowerer.Blocks = l
	return l
}

// SetDebugBuilder wires C5's debug-info builder into this function's body
// lowering, so a nested GNU statement expression (lowerexpr.VisitStatementExpr)
// can open its own lexical-block debug entry (spec §4.7).
func (l *Lowerer) SetDebugBuilder(b *debuginfo.Builder) {
	l.exprLowerer.DebugBuilder = b
}

// Lower is C8's entry point for the function body's top-level compound
// statement.
func (l *Lowerer) Lower(s ast.Stmt) error {
	return s.Accept(l)
}

func (l *Lowerer) lowerExpr(e ast.Expr) error { return l.exprLowerer.Lower(e) }

// LowerBlockItem lowers a single block-item (declaration or statement), the
// unit both VisitCompound and a GNU statement expression's body
// (lowerexpr.VisitStatementExpr, via the injected lowerexpr.BlockLowerer)
// walk one at a time.
func (l *Lowerer) LowerBlockItem(item ast.BlockItem) error {
	if item.Declaration != nil {
		return l.lowerLocalDeclaration(item.Declaration)
	}
	return l.Lower(item.Stmt)
}

var _ lowerexpr.BlockLowerer = (*Lowerer)(nil)

// VisitCompound lowers a block's items and, if it declared a
// variable-length array, emits the SCOPE_POP that discipline requires on
// the block's normal (fallthrough) exit (spec §4.8 invariant #4). break,
// continue, and return crossing out of this block emit their own SCOPE_POPs
// (see emitScopePops) since they leave by a different instruction path; goto
// out of a VLA block is deliberately not pop-balanced here, matching how C8
// treats goto as jumping to an arbitrary resolved label rather than
// unwinding through the flow tree.
func (l *Lowerer) VisitCompound(s *ast.CompoundStmt) error {
	l.Flow.PushBlock(s.ContainsVLA)
	defer l.Flow.Pop()
	for _, item := range s.Items {
		if err := l.LowerBlockItem(item); err != nil {
			return err
		}
	}
	if s.ContainsVLA {
		l.Builder.EmitAt(ir.Instruction{Op: ir.ScopePop}, s.Location())
	}
	return nil
}

// lowerLocalDeclaration allocates storage for a block-scoped object and, if
// it carries an initializer, lowers the initializer's assignment the same
// way a plain assignment expression would (spec §4.8's "declarations with
// initializers desugar to allocation plus assignment").
func (l *Lowerer) lowerLocalDeclaration(decl *ast.Declaration) error {
	if decl.Storage == ast.StorageStatic || decl.Storage == ast.StorageStaticThreadLocal {
		// Function-local statics are materialized as IR named_data objects
		// by C6/C10, not as stack slots here (spec §4.6).
		return nil
	}
	slot, err := l.Locals.AllocateLocal(decl)
	if err != nil {
		return err
	}
	if decl.Initializer == nil || decl.Initializer.Scalar == nil {
		return nil
	}
	if err := l.lowerExpr(decl.Initializer.Scalar); err != nil {
		return err
	}
	l.Builder.EmitAt(ir.Instruction{Op: ir.SetLocal, LocalSlot: slot}, decl.Location())
	return nil
}

func (l *Lowerer) VisitExpression(s *ast.ExpressionStmt) error {
	if s.Expr == nil {
		return nil
	}
	if err := l.lowerExpr(s.Expr); err != nil {
		return err
	}
	l.Builder.EmitAt(ir.Instruction{Op: ir.VStackPop}, s.Location())
	return nil
}

func (l *Lowerer) VisitIf(s *ast.IfStmt) error {
	if err := l.lowerExpr(s.Condition); err != nil {
		return err
	}
	toElse := l.Builder.ReserveBranch(ir.Branch, ir.Width32)
	if err := l.Lower(s.Then); err != nil {
		return err
	}
	if s.Else == nil {
		l.Builder.Patch(toElse, l.Builder.Here())
		return nil
	}
	toEnd := l.Builder.ReserveBranch(ir.Jump, ir.Width32)
	l.Builder.Patch(toElse, l.Builder.Here())
	if err := l.Lower(s.Else); err != nil {
		return err
	}
	l.Builder.Patch(toEnd, l.Builder.Here())
	return nil
}

// VisitSwitch implements the dispatch-table strategy of spec §4.8: the
// discriminant is evaluated once, then compared against each already
// constant-folded case value in turn (a simple linear chain here -
// target-specific backends may later choose a jump table for dense cases).
func (l *Lowerer) VisitSwitch(s *ast.SwitchStmt) error {
	if err := l.lowerExpr(s.Discriminant); err != nil {
		return err
	}
	discType := ast.ExprType(s.Discriminant)
	width := lowerexpr_typeWidth(discType)
	node := l.Flow.PushSwitch()

	type pendingCase struct {
		branch    int
		isDefault bool
		value     int64
	}
	var pending []pendingCase
	for _, c := range s.Cases {
		if c.Value == nil {
			l.Builder.EmitAt(ir.Instruction{Op: ir.VStackPick, IntOperand: 0}, c.Loc)
			branch := l.Builder.ReserveBranch(ir.Jump, width)
			pending = append(pending, pendingCase{branch: branch, isDefault: true})
			continue
		}
		v, err := l.Evaluator.Evaluate(c.Value)
		if err != nil {
			return err
		}
		l.Builder.EmitAt(ir.Instruction{Op: ir.VStackPick, IntOperand: 0}, c.Loc)
		l.Builder.EmitAt(ir.Instruction{Op: ir.IntConst, Width: width, IntOperand: v.Int.GetSigned()}, c.Loc)
		l.Builder.EmitAt(ir.Instruction{Op: ir.IntCmpNe, Width: width}, c.Loc)
		branch := l.Builder.ReserveBranch(ir.Branch, width)
		pending = append(pending, pendingCase{branch: branch, value: v.Int.GetSigned()})
	}
	endOfDispatch := l.Builder.ReserveBranch(ir.Jump, width)
	bodyStart := l.Builder.Here()
	l.Builder.EmitAt(ir.Instruction{Op: ir.VStackPop}, s.Location())

	if err := l.Lower(s.Body); err != nil {
		return err
	}
	bodyEnd := l.Builder.Here()

	// CaseLabelStmt nodes inside the body registered their resolved
	// instruction index via Flow.AddCase in source order; match each
	// dispatch comparison's branch to the label with the same value (or,
	// for `default:`, the one registered as IsDefault).
	for _, p := range pending {
		target := bodyStart
		for _, c := range node.Cases {
			if p.isDefault && c.IsDefault {
				target = c.Label
				break
			}
			if !p.isDefault && !c.IsDefault && c.Value == p.value {
				target = c.Label
				break
			}
		}
		l.Builder.Patch(p.branch, target)
	}
	l.Builder.Patch(endOfDispatch, bodyEnd)
	flowtree.PatchBreaks(l.Builder, node, bodyEnd)
	l.Builder.EmitAt(ir.Instruction{Op: ir.VStackPop}, s.Location())
	l.Flow.Pop()
	return nil
}

func lowerexpr_typeWidth(t ast.Type) ir.Width {
	u, _ := ast.Unqualified(t)
	switch u.Kind() {
	case ast.KindShort:
		return ir.Width16
	case ast.KindLong, ast.KindLongLong:
		return ir.Width64
	default:
		return ir.Width32
	}
}

func (l *Lowerer) VisitCaseLabel(s *ast.CaseLabelStmt) error {
	label := l.Builder.Here()
	if s.Value == nil {
		if err := l.Flow.AddCase(true, 0, label); err != nil {
			return err
		}
	} else {
		v, err := l.Evaluator.Evaluate(s.Value)
		if err != nil {
			return err
		}
		if err := l.Flow.AddCase(false, v.Int.GetSigned(), label); err != nil {
			return err
		}
	}
	return l.Lower(s.Inner)
}

func (l *Lowerer) VisitWhile(s *ast.WhileStmt) error {
	node := l.Flow.PushLoop()
	condStart := l.Builder.Here()
	if err := l.lowerExpr(s.Condition); err != nil {
		return err
	}
	exitBranch := l.Builder.ReserveBranch(ir.Branch, ir.Width32)
	if err := l.Lower(s.Body); err != nil {
		return err
	}
	backEdge := l.Builder.ReserveBranch(ir.Jump, ir.Width32)
	l.Builder.Patch(backEdge, condStart)
	end := l.Builder.Here()
	l.Builder.Patch(exitBranch, end)
	flowtree.PatchBreaks(l.Builder, node, end)
	flowtree.PatchContinues(l.Builder, node, condStart)
	l.Flow.Pop()
	return nil
}

func (l *Lowerer) VisitDoWhile(s *ast.DoWhileStmt) error {
	node := l.Flow.PushLoop()
	bodyStart := l.Builder.Here()
	if err := l.Lower(s.Body); err != nil {
		return err
	}
	condStart := l.Builder.Here()
	if err := l.lowerExpr(s.Condition); err != nil {
		return err
	}
	l.Builder.EmitAt(ir.Instruction{Op: ir.IntBoolNot}, s.Location())
	backEdge := l.Builder.ReserveBranch(ir.Branch, ir.Width32)
	l.Builder.Patch(backEdge, bodyStart)
	end := l.Builder.Here()
	flowtree.PatchBreaks(l.Builder, node, end)
	flowtree.PatchContinues(l.Builder, node, condStart)
	l.Flow.Pop()
	return nil
}

func (l *Lowerer) VisitFor(s *ast.ForStmt) error {
	if s.Init != nil {
		if s.Init.Declaration != nil {
			if err := l.lowerLocalDeclaration(s.Init.Declaration); err != nil {
				return err
			}
		} else if s.Init.Stmt != nil {
			if err := l.Lower(s.Init.Stmt); err != nil {
				return err
			}
		}
	}
	node := l.Flow.PushLoop()
	condStart := l.Builder.Here()
	var exitBranch = -1
	if s.Condition != nil {
		if err := l.lowerExpr(s.Condition); err != nil {
			return err
		}
		exitBranch = l.Builder.ReserveBranch(ir.Branch, ir.Width32)
	}
	if err := l.Lower(s.Body); err != nil {
		return err
	}
	updateStart := l.Builder.Here()
	if s.Update != nil {
		if err := l.lowerExpr(s.Update); err != nil {
			return err
		}
		l.Builder.EmitAt(ir.Instruction{Op: ir.VStackPop}, s.Location())
	}
	backEdge := l.Builder.ReserveBranch(ir.Jump, ir.Width32)
	l.Builder.Patch(backEdge, condStart)
	end := l.Builder.Here()
	if exitBranch != -1 {
		l.Builder.Patch(exitBranch, end)
	}
	flowtree.PatchBreaks(l.Builder, node, end)
	flowtree.PatchContinues(l.Builder, node, updateStart)
	l.Flow.Pop()
	return nil
}

func (l *Lowerer) VisitGoto(s *ast.GotoStmt) error {
	branch := l.Builder.ReserveBranch(ir.Jump, ir.Width32)
	if target, ok := l.Flow.ResolveGoto(s.Label, branch); ok {
		l.Builder.Patch(branch, target)
	}
	return nil
}

func (l *Lowerer) VisitIndirectGoto(s *ast.IndirectGotoStmt) error {
	if err := l.lowerExpr(s.Target); err != nil {
		return err
	}
	// Indirect goto: the jump target is the run-time value of s.Target, not
	// a back-patched index, so this is IndirectJump rather than a
	// placeholder-carrying Jump (spec invariant 8§3). No label-address
	// table is built and lowerexpr does not lower `&&label` expressions
	// (NotSupported), so a target written as `&&label` fails here.
	l.Builder.EmitAt(ir.Instruction{Op: ir.IndirectJump}, s.Location())
	return nil
}

func (l *Lowerer) VisitLabeled(s *ast.LabeledStmt) error {
	l.Flow.DeclareLabel(l.Builder, s.Label, l.Builder.Here())
	return l.Lower(s.Inner)
}

// emitScopePops emits count SCOPE_POPs (spec §4.8 invariant #4: one per
// VLA-bearing block a control-flow edge leaves), at loc.
func (l *Lowerer) emitScopePops(count int, loc cerrors.SourceLocation) {
	for i := 0; i < count; i++ {
		l.Builder.EmitAt(ir.Instruction{Op: ir.ScopePop}, loc)
	}
}

func (l *Lowerer) VisitBreak(s *ast.BreakStmt) error {
	l.emitScopePops(l.Flow.ScopePopsToBreak(), s.Location())
	branch := l.Builder.ReserveBranch(ir.Jump, ir.Width32)
	return l.Flow.RecordBreak(branch)
}

func (l *Lowerer) VisitContinue(s *ast.ContinueStmt) error {
	l.emitScopePops(l.Flow.ScopePopsToContinue(), s.Location())
	branch := l.Builder.ReserveBranch(ir.Jump, ir.Width32)
	return l.Flow.RecordContinue(branch)
}

func (l *Lowerer) VisitReturn(s *ast.ReturnStmt) error {
	if s.Value != nil {
		if err := l.lowerExpr(s.Value); err != nil {
			return err
		}
	}
	l.emitScopePops(l.Flow.ScopePopsToFunctionExit(), s.Location())
	l.Builder.EmitAt(ir.Instruction{Op: ir.Return}, s.Location())
	return nil
}

func (l *Lowerer) VisitDeclarationStmt(s *ast.DeclarationStmt) error {
	return l.lowerLocalDeclaration(s.Declaration)
}

func (l *Lowerer) VisitInlineAsm(s *ast.InlineAsmStmt) error {
	descriptor, err := l.AsmTranslator.Translate(s)
	if err != nil {
		return err
	}
	id := l.Builder.Here()
	_ = id
	l.Builder.EmitAt(ir.Instruction{Op: ir.InlineAsmOp, InlineAsmID: descriptor.ID}, s.Location())
	return nil
}

// VerifyLabels surfaces any goto whose target label was never declared
// anywhere in the function (spec invariant, checked once the whole body is
// lowered since labels may be declared after their referencing goto).
func (l *Lowerer) VerifyLabels() error {
	if missing := l.Flow.VerifyAllLabelsResolved(); len(missing) > 0 {
		return cerrors.New(cerrors.AnalysisError, "goto targets undeclared label(s): "+missing[0])
	}
	return nil
}
