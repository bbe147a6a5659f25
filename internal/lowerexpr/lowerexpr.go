// Package lowerexpr implements C7: lowering a resolved ast.Expr into a
// stack-machine instruction sequence appended to an ir.Builder (spec §4.7).
// It generalizes the teacher's internal/compiler expression-compilation
// visitor (internal/compiler/expressions.go), which walks parser.Expr and
// emits bytecode.OpCode the same way this walks ast.Expr and emits ir.OpCode.
package lowerexpr

import (
	"cirt/internal/ast"
	"cirt/internal/cerrors"
	"cirt/internal/constexpr"
	"cirt/internal/debuginfo"
	"cirt/internal/ir"
	"cirt/internal/targetenv"
)

// SymbolResolver supplies the local-slot/global-symbol binding for an
// identifier, resolved ahead of time by C6 (internal/scopetranslate) and
// handed to the function driver (internal/translator) before lowering
// begins. Kept as its own narrow interface so lowerexpr never imports
// scopetranslate/translator (avoiding a dependency cycle).
type SymbolResolver interface {
	LocalSlot(name string) (slot int, ok bool)
	GlobalSymbol(name string) (symbol string, ok bool)
}

// BlockLowerer lowers one statement-or-declaration block item from within an
// expression context. C8's lowerstmt.Lowerer (which already imports this
// package) injects itself here so a GNU statement expression's body gets
// full statement-lowering treatment without lowerexpr importing lowerstmt
// back, which would cycle.
type BlockLowerer interface {
	LowerBlockItem(item ast.BlockItem) error
}

// Lowerer walks one expression tree at a time, emitting into Builder. It
// implements ast.ExprVisitor; VisitXxx methods leave the lowered value on
// the stack and return a nil result next to any error, so callers read an
// operand's type from the AST (ast.ExprType), not from the visit result.
type Lowerer struct {
	Builder  *ir.Builder
	Oracle   targetenv.Oracle
	Symbols  SymbolResolver
	Evaluator *constexpr.Evaluator

	// DebugBuilder and Blocks are optional, set by C8's lowerstmt.Lowerer so
	// a GNU statement expression's body (VisitStatementExpr) can open a
	// lexical-block debug entry and lower nested statements/declarations.
	// Left nil, VisitStatementExpr reports NotSupported.
	DebugBuilder *debuginfo.Builder
	Blocks       BlockLowerer
}

func New(b *ir.Builder, oracle targetenv.Oracle, symbols SymbolResolver) *Lowerer {
	return &Lowerer{Builder: b, Oracle: oracle, Symbols: symbols, Evaluator: constexpr.New(oracle)}
}

// Lower is C7's entry point: emit code for e, leaving its value on the
// stack-machine's conceptual value stack.
func (l *Lowerer) Lower(e ast.Expr) error {
	_, err := e.Accept(l)
	return err
}

func typeWidth(t ast.Type) ir.Width {
	switch u, _ := ast.Unqualified(t); u.Kind() {
	case ast.KindBool, ast.KindSignedChar, ast.KindUnsignedChar, ast.KindChar:
		return ir.Width8
	case ast.KindShort:
		return ir.Width16
	case ast.KindLong, ast.KindLongLong:
		return ir.Width64
	default:
		return ir.Width32
	}
}

func isSigned(t ast.Type) bool {
	u, _ := ast.Unqualified(t)
	switch v := u.(type) {
	case ast.IntegerType:
		return v.Signed
	case ast.BitPreciseType:
		return v.Signed
	}
	switch u.Kind() {
	case ast.KindUnsignedChar, ast.KindBool:
		return false
	}
	return true
}

// --- leaves ---

func (l *Lowerer) VisitConstant(n *ast.ConstantExpr) (any, error) {
	v, err := l.Evaluator.Evaluate(n)
	if err == nil {
		switch v.Kind {
		case constexpr.KindInteger:
			l.Builder.EmitAt(ir.Instruction{Op: ir.IntConst, Width: ir.Width(v.Int.Width), IntOperand: v.Int.GetSigned(), UintOperand: v.Int.GetUnsigned(), Signed: isSigned(n.Props.Type)}, n.Location())
			return nil, nil
		case constexpr.KindFloat:
			l.Builder.EmitAt(ir.Instruction{Op: ir.Float64Const, FloatOperand: v.Float.Float64()}, n.Location())
			return nil, nil
		}
	}
	// Constant folding couldn't produce a scalar (e.g. an address constant);
	// fall through to the raw literal payload path for string/other leaves.
	switch raw := n.Value.(type) {
	case string:
		l.Builder.EmitAt(ir.Instruction{Op: ir.StringRef, StringOperand: raw}, n.Location())
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return nil, cerrors.At(cerrors.InvalidState, n.Location(), "constant expression did not fold to a loadable value")
}

func (l *Lowerer) VisitIdentifier(n *ast.IdentifierExpr) (any, error) {
	if n.Props.ScopedID == nil {
		return nil, cerrors.At(cerrors.InvalidState, n.Location(), "identifier has no resolved scope binding")
	}
	if n.Props.ScopedID.Local {
		slot, ok := l.Symbols.LocalSlot(n.Props.ScopedID.Name)
		if !ok {
			return nil, cerrors.At(cerrors.NotFound, n.Location(), "local identifier has no assigned slot: "+n.Name)
		}
		l.Builder.EmitAt(ir.Instruction{Op: ir.GetLocal, LocalSlot: slot}, n.Location())
		return nil, nil
	}
	sym, ok := l.Symbols.GlobalSymbol(n.Props.ScopedID.Name)
	if !ok {
		return nil, cerrors.At(cerrors.NotFound, n.Location(), "global identifier has no resolved symbol: "+n.Name)
	}
	l.Builder.EmitAt(ir.Instruction{Op: ir.GetGlobal, Symbol: sym}, n.Location())
	return nil, nil
}

func (l *Lowerer) VisitStringLiteral(n *ast.StringLiteralExpr) (any, error) {
	l.Builder.EmitAt(ir.Instruction{Op: ir.StringRef, StringOperand: string(n.Bytes)}, n.Location())
	return nil, nil
}

// --- arithmetic ---

func (l *Lowerer) VisitBinary(n *ast.BinaryExpr) (any, error) {
	if err := l.Lower(n.Left); err != nil {
		return nil, err
	}
	if err := l.Lower(n.Right); err != nil {
		return nil, err
	}
	t := ast.ExprType(n.Left)
	width := typeWidth(t)
	signed := isSigned(t)
	floating := ast.IsFloating(t)
	complexKind := ast.IsComplex(t)
	var op ir.OpCode
	switch {
	case complexKind:
		op = complexOp(n.Operator)
	case floating:
		op = floatOp(n.Operator)
	default:
		op = intOp(n.Operator)
	}
	if op == ir.Nop {
		return nil, cerrors.At(cerrors.NotSupported, n.Location(), "unsupported binary operator for this operand kind")
	}
	l.Builder.EmitAt(ir.Instruction{Op: op, Width: width, Signed: signed}, n.Location())
	return nil, nil
}

func intOp(op ast.BinaryOp) ir.OpCode {
	switch op {
	case ast.OpAdd:
		return ir.IntAdd
	case ast.OpSub:
		return ir.IntSub
	case ast.OpMul:
		return ir.IntMul
	case ast.OpDiv:
		return ir.IntDiv
	case ast.OpMod:
		return ir.IntMod
	case ast.OpBitAnd:
		return ir.IntAnd
	case ast.OpBitOr:
		return ir.IntOr
	case ast.OpBitXor:
		return ir.IntXor
	case ast.OpShl:
		return ir.IntLshift
	case ast.OpShr:
		return ir.IntRshift
	case ast.OpEq:
		return ir.IntCmpEq
	case ast.OpNe:
		return ir.IntCmpNe
	case ast.OpLt:
		return ir.IntCmpLt
	case ast.OpLe:
		return ir.IntCmpLe
	case ast.OpGt:
		return ir.IntCmpGt
	case ast.OpGe:
		return ir.IntCmpGe
	}
	return ir.Nop
}

func floatOp(op ast.BinaryOp) ir.OpCode {
	switch op {
	case ast.OpAdd:
		return ir.FloatAdd
	case ast.OpSub:
		return ir.FloatSub
	case ast.OpMul:
		return ir.FloatMul
	case ast.OpDiv:
		return ir.FloatDiv
	case ast.OpEq:
		return ir.FloatCmpEq
	case ast.OpNe:
		return ir.FloatCmpNe
	case ast.OpLt:
		return ir.FloatCmpLt
	case ast.OpLe:
		return ir.FloatCmpLe
	case ast.OpGt:
		return ir.FloatCmpGt
	case ast.OpGe:
		return ir.FloatCmpGe
	}
	return ir.Nop
}

func complexOp(op ast.BinaryOp) ir.OpCode {
	switch op {
	case ast.OpAdd:
		return ir.ComplexAdd
	case ast.OpSub:
		return ir.ComplexSub
	case ast.OpMul:
		return ir.ComplexMul
	case ast.OpDiv:
		return ir.ComplexDiv
	case ast.OpEq:
		return ir.ComplexCmpEq
	case ast.OpNe:
		return ir.ComplexCmpNe
	}
	return ir.Nop
}

// VisitLogical lowers `&&`/`||` with short-circuit branching (spec §4.7):
// the right operand's code is only reached when the left side does not
// already decide the result, mirroring the teacher's VisitLogicalExpr
// jump-patching in internal/compiler/expressions.go.
func (l *Lowerer) VisitLogical(n *ast.LogicalExpr) (any, error) {
	if err := l.Lower(n.Left); err != nil {
		return nil, err
	}
	if n.Operator == ast.LogicalOr {
		// ir.Branch only ever branches on false, so || (which must short-circuit
		// on a TRUE left operand) gets there by branching on the negation.
		l.Builder.EmitAt(ir.Instruction{Op: ir.IntBoolNot}, n.Location())
	}
	shortCircuit := l.Builder.ReserveBranch(ir.Branch, ir.Width32)
	if err := l.Lower(n.Right); err != nil {
		return nil, err
	}
	l.Builder.EmitAt(ir.Instruction{Op: ir.IntToBool}, n.Location())
	evalEnd := l.Builder.ReserveBranch(ir.Jump, ir.Width32)
	shortCircuitTarget := l.Builder.Here()
	l.Builder.EmitAt(ir.Instruction{Op: ir.IntConst, IntOperand: boolShortCircuitValue(n.Operator)}, n.Location())
	l.Builder.Patch(shortCircuit, shortCircuitTarget)
	l.Builder.Patch(evalEnd, l.Builder.Here())
	return nil, nil
}

func boolShortCircuitValue(op ast.LogicalOp) int64 {
	if op == ast.LogicalOr {
		return 1
	}
	return 0
}

func (l *Lowerer) VisitUnary(n *ast.UnaryExpr) (any, error) {
	switch n.Operator {
	case ast.UnaryAddressOf:
		return l.lowerAddressOf(n.Operand)
	case ast.UnaryDereference:
		if err := l.Lower(n.Operand); err != nil {
			return nil, err
		}
		t := ast.ExprType(n)
		size, err := l.Oracle.ObjectInfo(t, nil)
		if err != nil {
			return nil, err
		}
		l.Builder.EmitAt(ir.Instruction{Op: ir.Int64Load, LoadFlags: ir.LoadFlags{Signed: isSigned(t), FromWidth: ir.Width(size.Size * 8)}}, n.Location())
		return nil, nil
	}
	if err := l.Lower(n.Operand); err != nil {
		return nil, err
	}
	t := ast.ExprType(n.Operand)
	width := typeWidth(t)
	switch n.Operator {
	case ast.UnaryPlus:
		return nil, nil
	case ast.UnaryMinus:
		if ast.IsFloating(t) {
			l.Builder.EmitAt(ir.Instruction{Op: ir.FloatNeg}, n.Location())
		} else {
			l.Builder.EmitAt(ir.Instruction{Op: ir.IntNeg, Width: width}, n.Location())
		}
		return nil, nil
	case ast.UnaryBitNot:
		l.Builder.EmitAt(ir.Instruction{Op: ir.IntNot, Width: width}, n.Location())
		return nil, nil
	case ast.UnaryLogicalNot:
		l.Builder.EmitAt(ir.Instruction{Op: ir.IntBoolNot}, n.Location())
		return nil, nil
	case ast.UnaryPreIncrement, ast.UnaryPreDecrement:
		return nil, l.lowerIncrementDecrement(n.Operand, n.Operator == ast.UnaryPreIncrement, true, n.Location())
	}
	return nil, cerrors.At(cerrors.NotSupported, n.Location(), "unsupported unary operator")
}

func (l *Lowerer) lowerAddressOf(operand ast.Expr) (any, error) {
	id, ok := operand.(*ast.IdentifierExpr)
	if !ok {
		return nil, cerrors.At(cerrors.NotSupported, operand.Location(), "address-of currently only lowers a bare identifier operand")
	}
	if id.Props.ScopedID == nil {
		return nil, cerrors.At(cerrors.InvalidState, id.Location(), "identifier has no resolved scope binding")
	}
	if id.Props.ScopedID.Local {
		slot, ok := l.Symbols.LocalSlot(id.Props.ScopedID.Name)
		if !ok {
			return nil, cerrors.At(cerrors.NotFound, id.Location(), "local identifier has no assigned slot")
		}
		l.Builder.EmitAt(ir.Instruction{Op: ir.GetAddress, LocalSlot: slot}, id.Location())
		return nil, nil
	}
	sym, ok := l.Symbols.GlobalSymbol(id.Props.ScopedID.Name)
	if !ok {
		return nil, cerrors.At(cerrors.NotFound, id.Location(), "global identifier has no resolved symbol")
	}
	l.Builder.EmitAt(ir.Instruction{Op: ir.GetAddress, Symbol: sym}, id.Location())
	return nil, nil
}

// lowerIncrementDecrement loads, adjusts by 1, and stores back, pushing the
// pre- or post-value per wantNewValue (spec §4.7's increment/decrement
// desugaring onto load/arith/store).
func (l *Lowerer) lowerIncrementDecrement(operand ast.Expr, increment, wantNewValue bool, loc cerrors.SourceLocation) error {
	id, ok := operand.(*ast.IdentifierExpr)
	if !ok {
		return cerrors.At(cerrors.NotSupported, loc, "increment/decrement currently only lowers a bare identifier operand")
	}
	if err := l.Lower(id); err != nil {
		return err
	}
	t := ast.ExprType(id)
	width := typeWidth(t)
	l.Builder.EmitAt(ir.Instruction{Op: ir.IntConst, Width: width, IntOperand: 1}, loc)
	op := ir.IntAdd
	if !increment {
		op = ir.IntSub
	}
	l.Builder.EmitAt(ir.Instruction{Op: op, Width: width, Signed: isSigned(t)}, loc)
	if !wantNewValue {
		// Post-increment needs the pre-value kept under the new value; the
		// stack-machine's VStackPick generalizes the teacher's DUP_UNDER
		// opcode (internal/bytecode) for this.
		l.Builder.EmitAt(ir.Instruction{Op: ir.VStackPick, IntOperand: 1}, loc)
	}
	return l.storeIdentifier(id, loc)
}

func (l *Lowerer) storeIdentifier(id *ast.IdentifierExpr, loc cerrors.SourceLocation) error {
	if id.Props.ScopedID == nil {
		return cerrors.At(cerrors.InvalidState, loc, "identifier has no resolved scope binding")
	}
	if id.Props.ScopedID.Local {
		slot, ok := l.Symbols.LocalSlot(id.Props.ScopedID.Name)
		if !ok {
			return cerrors.At(cerrors.NotFound, loc, "local identifier has no assigned slot")
		}
		l.Builder.EmitAt(ir.Instruction{Op: ir.SetLocal, LocalSlot: slot}, loc)
		return nil
	}
	sym, ok := l.Symbols.GlobalSymbol(id.Props.ScopedID.Name)
	if !ok {
		return cerrors.At(cerrors.NotFound, loc, "global identifier has no resolved symbol")
	}
	l.Builder.EmitAt(ir.Instruction{Op: ir.SetGlobal, Symbol: sym}, loc)
	return nil
}

func (l *Lowerer) VisitPostfix(n *ast.PostfixExpr) (any, error) {
	return nil, l.lowerIncrementDecrement(n.Operand, n.Operator == ast.PostIncrement, false, n.Location())
}

func (l *Lowerer) VisitConditional(n *ast.ConditionalExpr) (any, error) {
	if n.ThenBranch == nil {
		// GNU omitted-middle `a ?: c`: evaluate a once, duplicate it for the
		// truthiness test, branch around re-evaluating it.
		if err := l.Lower(n.Condition); err != nil {
			return nil, err
		}
		l.Builder.EmitAt(ir.Instruction{Op: ir.VStackPick, IntOperand: 0}, n.Location())
		toElse := l.Builder.ReserveBranch(ir.Branch, ir.Width32)
		toEnd := l.Builder.ReserveBranch(ir.Jump, ir.Width32)
		l.Builder.Patch(toElse, l.Builder.Here())
		l.Builder.EmitAt(ir.Instruction{Op: ir.VStackPop}, n.Location())
		if err := l.Lower(n.ElseBranch); err != nil {
			return nil, err
		}
		l.Builder.Patch(toEnd, l.Builder.Here())
		return nil, nil
	}
	if err := l.Lower(n.Condition); err != nil {
		return nil, err
	}
	result := ast.ExprType(n)
	toElse := l.Builder.ReserveBranch(ir.Branch, ir.Width32)
	if err := l.Lower(n.ThenBranch); err != nil {
		return nil, err
	}
	l.convertArithmetic(ast.ExprType(n.ThenBranch), result, n.Location())
	toEnd := l.Builder.ReserveBranch(ir.Jump, ir.Width32)
	l.Builder.Patch(toElse, l.Builder.Here())
	if err := l.Lower(n.ElseBranch); err != nil {
		return nil, err
	}
	l.convertArithmetic(ast.ExprType(n.ElseBranch), result, n.Location())
	l.Builder.Patch(toEnd, l.Builder.Here())
	return nil, nil
}

// convertArithmetic emits the same int/float widening a cast would (spec
// §4.7: each ternary arm converts to the expression's usual-arithmetic-
// converted result type before the merge). Non-arithmetic arms (pointers,
// aggregates, void) are left alone; their widths already agree by
// construction once the prior module's conversions have run.
func (l *Lowerer) convertArithmetic(from, to ast.Type, loc cerrors.SourceLocation) {
	if from == nil || to == nil {
		return
	}
	fromArith := ast.IsFloating(from) || ast.IsScalarInteger(from)
	toArith := ast.IsFloating(to) || ast.IsScalarInteger(to)
	if !fromArith || !toArith {
		return
	}
	switch {
	case ast.IsFloating(from) && ast.IsScalarInteger(to):
		l.Builder.EmitAt(ir.Instruction{Op: ir.FloatToInt, Signed: isSigned(to), Width: typeWidth(to)}, loc)
	case ast.IsScalarInteger(from) && ast.IsFloating(to):
		l.Builder.EmitAt(ir.Instruction{Op: ir.IntToFloat, Signed: isSigned(from)}, loc)
	case ast.IsFloating(from) && ast.IsFloating(to):
		l.Builder.EmitAt(ir.Instruction{Op: ir.FloatConvert}, loc)
	case ast.IsScalarInteger(from) && ast.IsScalarInteger(to):
		fw, tw := typeWidth(from), typeWidth(to)
		if tw > fw {
			if isSigned(from) {
				l.Builder.EmitAt(ir.Instruction{Op: ir.IntSignExtend, Width: tw}, loc)
			} else {
				l.Builder.EmitAt(ir.Instruction{Op: ir.IntZeroExtend, Width: tw}, loc)
			}
		}
	}
}

func (l *Lowerer) VisitComma(n *ast.CommaExpr) (any, error) {
	if err := l.Lower(n.Left); err != nil {
		return nil, err
	}
	l.Builder.EmitAt(ir.Instruction{Op: ir.VStackPop}, n.Location())
	return nil, l.Lower(n.Right)
}

func (l *Lowerer) VisitAssignment(n *ast.AssignmentExpr) (any, error) {
	id, ok := n.Target.(*ast.IdentifierExpr)
	if !ok {
		return nil, cerrors.At(cerrors.NotSupported, n.Location(), "assignment currently only lowers a bare identifier target")
	}
	if n.Operator != ast.AssignPlain {
		if err := l.Lower(id); err != nil {
			return nil, err
		}
	}
	if err := l.Lower(n.Value); err != nil {
		return nil, err
	}
	if op := compoundAssignOp(n.Operator, ast.ExprType(id)); op != ir.Nop {
		l.Builder.EmitAt(ir.Instruction{Op: op, Width: typeWidth(ast.ExprType(id)), Signed: isSigned(ast.ExprType(id))}, n.Location())
	}
	return nil, l.storeIdentifier(id, n.Location())
}

func compoundAssignOp(op ast.AssignOp, t ast.Type) ir.OpCode {
	floating := ast.IsFloating(t)
	switch op {
	case ast.AssignPlain:
		return ir.Nop
	case ast.AssignAdd:
		if floating {
			return ir.FloatAdd
		}
		return ir.IntAdd
	case ast.AssignSub:
		if floating {
			return ir.FloatSub
		}
		return ir.IntSub
	case ast.AssignMul:
		if floating {
			return ir.FloatMul
		}
		return ir.IntMul
	case ast.AssignDiv:
		if floating {
			return ir.FloatDiv
		}
		return ir.IntDiv
	case ast.AssignMod:
		return ir.IntMod
	case ast.AssignAnd:
		return ir.IntAnd
	case ast.AssignOr:
		return ir.IntOr
	case ast.AssignXor:
		return ir.IntXor
	case ast.AssignShl:
		return ir.IntLshift
	case ast.AssignShr:
		return ir.IntRshift
	}
	return ir.Nop
}

func (l *Lowerer) VisitCast(n *ast.CastExpr) (any, error) {
	if err := l.Lower(n.Inner); err != nil {
		return nil, err
	}
	from := ast.ExprType(n.Inner)
	to := n.Target
	switch {
	case ast.IsFloating(from) && ast.IsScalarInteger(to):
		l.Builder.EmitAt(ir.Instruction{Op: ir.FloatToInt, Signed: isSigned(to), Width: typeWidth(to)}, n.Location())
	case ast.IsScalarInteger(from) && ast.IsFloating(to):
		l.Builder.EmitAt(ir.Instruction{Op: ir.IntToFloat, Signed: isSigned(from)}, n.Location())
	case ast.IsFloating(from) && ast.IsFloating(to):
		l.Builder.EmitAt(ir.Instruction{Op: ir.FloatConvert}, n.Location())
	case ast.IsScalarInteger(from) && ast.IsScalarInteger(to):
		fw, tw := typeWidth(from), typeWidth(to)
		if tw > fw {
			if isSigned(from) {
				l.Builder.EmitAt(ir.Instruction{Op: ir.IntSignExtend, Width: tw}, n.Location())
			} else {
				l.Builder.EmitAt(ir.Instruction{Op: ir.IntZeroExtend, Width: tw}, n.Location())
			}
		}
	default:
		l.Builder.EmitAt(ir.Instruction{Op: ir.Convert}, n.Location())
	}
	return nil, nil
}

func (l *Lowerer) VisitCall(n *ast.CallExpr) (any, error) {
	id, ok := n.Callee.(*ast.IdentifierExpr)
	if !ok {
		return nil, cerrors.At(cerrors.NotSupported, n.Location(), "call currently only lowers a direct (non-function-pointer) callee")
	}
	for _, arg := range n.Args {
		if err := l.Lower(arg); err != nil {
			return nil, err
		}
	}
	sym := id.Name
	if id.Props.ScopedID != nil {
		if resolved, ok := l.Symbols.GlobalSymbol(id.Props.ScopedID.Name); ok {
			sym = resolved
		}
	}
	l.Builder.EmitAt(ir.Instruction{Op: ir.Call, Symbol: sym, ArgCount: len(n.Args)}, n.Location())
	return nil, nil
}

func (l *Lowerer) VisitMemberAccess(n *ast.MemberAccessExpr) (any, error) {
	if err := l.lowerAggregateAddress(n); err != nil {
		return nil, err
	}
	t := ast.ExprType(n)
	size, err := l.Oracle.ObjectInfo(t, nil)
	if err != nil {
		return nil, err
	}
	l.Builder.EmitAt(ir.Instruction{Op: ir.Int64Load, LoadFlags: ir.LoadFlags{Signed: isSigned(t), FromWidth: ir.Width(size.Size * 8)}}, n.Location())
	return nil, nil
}

// lowerAggregateAddress pushes the address a member-access/array-subscript
// expression resolves to, without the final load - shared by read and
// (eventually) write paths.
func (l *Lowerer) lowerAggregateAddress(n ast.Expr) error {
	switch v := n.(type) {
	case *ast.MemberAccessExpr:
		if err := l.lowerBaseAddress(v.Object, v.Indirect); err != nil {
			return err
		}
		structType := baseStructType(v.Object, v.Indirect)
		off, err := l.Oracle.ObjectInfo(structType, []ast.DesignatorStep{{Member: v.Member}})
		if err != nil {
			return err
		}
		if off.RelativeOffset != 0 {
			l.Builder.EmitAt(ir.Instruction{Op: ir.IntConst, Width: ir.Width64, IntOperand: off.RelativeOffset}, v.Location())
			l.Builder.EmitAt(ir.Instruction{Op: ir.IntAdd, Width: ir.Width64, Signed: true}, v.Location())
		}
		return nil
	case *ast.ArraySubscriptExpr:
		if _, err := l.lowerAddressOf(v.Array); err != nil {
			return err
		}
		if err := l.Lower(v.Index); err != nil {
			return err
		}
		elemType := elementTypeOf(ast.ExprType(v.Array))
		size, err := l.Oracle.ObjectInfo(elemType, nil)
		if err != nil {
			return err
		}
		l.Builder.EmitAt(ir.Instruction{Op: ir.IntConst, Width: ir.Width64, IntOperand: size.Size}, v.Location())
		l.Builder.EmitAt(ir.Instruction{Op: ir.IntMul, Width: ir.Width64, Signed: true}, v.Location())
		l.Builder.EmitAt(ir.Instruction{Op: ir.IntAdd, Width: ir.Width64, Signed: true}, v.Location())
		return nil
	}
	return cerrors.At(cerrors.NotSupported, n.Location(), "unsupported aggregate-address expression")
}

func (l *Lowerer) lowerBaseAddress(object ast.Expr, indirect bool) error {
	if indirect {
		return l.Lower(object)
	}
	id, ok := object.(*ast.IdentifierExpr)
	if !ok {
		return cerrors.At(cerrors.NotSupported, object.Location(), "member access currently only lowers a bare identifier base object")
	}
	_, err := l.lowerAddressOf(id)
	return err
}

func baseStructType(object ast.Expr, indirect bool) ast.Type {
	t := ast.ExprType(object)
	if indirect {
		return elementTypeOf(t)
	}
	return t
}

func elementTypeOf(t ast.Type) ast.Type {
	u, _ := ast.Unqualified(t)
	switch v := u.(type) {
	case *ast.PointerType:
		return v.Referenced
	case *ast.ArrayType:
		return v.Element
	}
	return ast.UnsignedCh
}

func (l *Lowerer) VisitArraySubscript(n *ast.ArraySubscriptExpr) (any, error) {
	if err := l.lowerAggregateAddress(n); err != nil {
		return nil, err
	}
	t := ast.ExprType(n)
	size, err := l.Oracle.ObjectInfo(t, nil)
	if err != nil {
		return nil, err
	}
	l.Builder.EmitAt(ir.Instruction{Op: ir.Int64Load, LoadFlags: ir.LoadFlags{Signed: isSigned(t), FromWidth: ir.Width(size.Size * 8)}}, n.Location())
	return nil, nil
}

func (l *Lowerer) VisitSizeof(n *ast.SizeofExpr) (any, error) {
	return l.lowerConstFold(n, n.Location())
}

func (l *Lowerer) VisitAlignof(n *ast.AlignofExpr) (any, error) {
	return l.lowerConstFold(n, n.Location())
}

func (l *Lowerer) VisitOffsetof(n *ast.OffsetofExpr) (any, error) {
	return l.lowerConstFold(n, n.Location())
}

func (l *Lowerer) lowerConstFold(e ast.Expr, loc cerrors.SourceLocation) (any, error) {
	v, err := l.Evaluator.Evaluate(e)
	if err != nil {
		return nil, err
	}
	if v.Kind != constexpr.KindInteger {
		return nil, cerrors.At(cerrors.InvalidState, loc, "expected an integer constant fold")
	}
	l.Builder.EmitAt(ir.Instruction{Op: ir.IntConst, Width: ir.Width(v.Int.Width), IntOperand: v.Int.GetSigned(), UintOperand: v.Int.GetUnsigned()}, loc)
	return nil, nil
}

func (l *Lowerer) VisitCompoundLiteral(n *ast.CompoundLiteralExpr) (any, error) {
	return nil, cerrors.At(cerrors.NotSupported, n.Location(), "compound literal lowering is handled by the statement-level local-initializer path, not a bare expression context")
}

// VisitStatementExpr lowers a GNU `({ ... })` statement expression (spec
// §4.7). The body's block items run exactly like an ordinary compound
// statement's (delegated to the injected Blocks lowerer so declarations and
// nested control flow get C8's full treatment); the last item, required by
// GNU semantics to be an expression statement, leaves its value on the stack
// instead of being popped for effect.
func (l *Lowerer) VisitStatementExpr(n *ast.StatementExpr) (any, error) {
	if l.Blocks == nil {
		return nil, cerrors.At(cerrors.NotSupported, n.Location(), "GNU statement expressions require statement-lowering context and cannot be reached as a bare expression")
	}
	items := n.Body.Items

	var blockID debuginfo.EntryID
	debugging := l.DebugBuilder != nil
	if debugging {
		blockID = l.DebugBuilder.NewLexicalBlock("", l.Builder.Here())
	}

	for i, item := range items {
		last := i == len(items)-1
		if last {
			if es, ok := item.Stmt.(*ast.ExpressionStmt); ok && es.Expr != nil {
				if err := l.Lower(es.Expr); err != nil {
					return nil, err
				}
				break
			}
		}
		if err := l.Blocks.LowerBlockItem(item); err != nil {
			return nil, err
		}
	}

	if debugging {
		l.DebugBuilder.SetCodeEnd(blockID, l.Builder.Here())
	}
	if n.Body.ContainsVLA {
		l.Builder.EmitAt(ir.Instruction{Op: ir.ScopePop}, n.Location())
	}
	return nil, nil
}

func (l *Lowerer) VisitVaArg(n *ast.VaArgExpr) (any, error) {
	return nil, cerrors.At(cerrors.NotSupported, n.Location(), "va_arg lowering requires target-specific varargs ABI support, out of scope")
}

func (l *Lowerer) VisitGenericSelection(n *ast.GenericSelectionExpr) (any, error) {
	ctype := ast.ExprType(n.Controlling)
	var chosen ast.Expr
	var fallback ast.Expr
	for _, assoc := range n.Associations {
		if assoc.Type == nil {
			fallback = assoc.Result
			continue
		}
		if sameTypeKind(assoc.Type, ctype) {
			chosen = assoc.Result
			break
		}
	}
	if chosen == nil {
		chosen = fallback
	}
	if chosen == nil {
		return nil, cerrors.At(cerrors.InvalidState, n.Location(), "_Generic has no matching association and no default")
	}
	return nil, l.Lower(chosen)
}

func sameTypeKind(a, b ast.Type) bool {
	ua, _ := ast.Unqualified(a)
	ub, _ := ast.Unqualified(b)
	return ua.Kind() == ub.Kind()
}

func (l *Lowerer) VisitBuiltinChoose(n *ast.BuiltinChooseExpr) (any, error) {
	v, err := l.Evaluator.Evaluate(n.Condition)
	if err != nil {
		return nil, err
	}
	if !v.IsZero() {
		return nil, l.Lower(n.TrueExpr)
	}
	return nil, l.Lower(n.FalseExpr)
}

func (l *Lowerer) VisitBuiltinTypesCompatible(n *ast.BuiltinTypesCompatibleExpr) (any, error) {
	return l.lowerConstFold(n, n.Location())
}

func (l *Lowerer) VisitBuiltinConstantP(n *ast.BuiltinConstantPExpr) (any, error) {
	return l.lowerConstFold(n, n.Location())
}

func (l *Lowerer) VisitBuiltinClassifyType(n *ast.BuiltinClassifyTypeExpr) (any, error) {
	return l.lowerConstFold(n, n.Location())
}

func (l *Lowerer) VisitBuiltinBitOp(n *ast.BuiltinBitOpExpr) (any, error) {
	if err := l.Lower(n.Operand); err != nil {
		return nil, err
	}
	var op ir.OpCode
	switch n.Kind {
	case ast.BitOpClz, ast.BitOpCtz, ast.BitOpPopcount, ast.BitOpParity, ast.BitOpClrsb, ast.BitOpFfs:
		op = ir.Convert // generic builtin marker; target-specific lowering resolves the concrete opcode
	}
	l.Builder.EmitAt(ir.Instruction{Op: op}, n.Location())
	return nil, nil
}

func (l *Lowerer) VisitBuiltinInfNan(n *ast.BuiltinInfNanExpr) (any, error) {
	return l.lowerConstFold(n, n.Location())
}

func (l *Lowerer) VisitLabelAddress(n *ast.LabelAddressExpr) (any, error) {
	return nil, cerrors.At(cerrors.NotSupported, n.Location(), "label-address expressions (&&label) are not lowered")
}
