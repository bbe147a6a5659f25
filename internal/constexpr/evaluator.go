package constexpr

import (
	"cirt/internal/ast"
	"cirt/internal/bigint"
	"cirt/internal/cerrors"
	"cirt/internal/targetenv"
)

// Evaluator folds a semantically-resolved ast.Expr to a ConstValue (spec
// §4.3). It implements ast.ExprVisitor directly, generalizing the teacher's
// tree-walking interpreter (internal/vm's constant-folding pre-pass and
// internal/compiler's literal folding) from bytecode values to C constant
// values.
type Evaluator struct {
	Oracle targetenv.Oracle
}

func New(oracle targetenv.Oracle) *Evaluator {
	return &Evaluator{Oracle: oracle}
}

// Evaluate is C3's entry point: `evaluate_constant_expression(node)`.
func (e *Evaluator) Evaluate(node ast.Expr) (ConstValue, error) {
	result, err := node.Accept(e)
	if err != nil {
		return ConstValue{}, err
	}
	v, ok := result.(ConstValue)
	if !ok {
		return ConstValue{}, cerrors.At(cerrors.InvalidState, node.Location(), "evaluator produced non-ConstValue result")
	}
	return v, nil
}

func notConstant(node ast.Node, why string) error {
	return cerrors.NotConstantAt(node.Location(), why)
}

// --- leaves ---

func (e *Evaluator) VisitConstant(n *ast.ConstantExpr) (any, error) {
	switch v := n.Value.(type) {
	case *bigint.Int:
		return IntValue(v, n.Props.Type), nil
	case int64:
		width := e.widthOf(n.Props.Type)
		i := bigint.New(width, 0)
		i.SetSignedValue(v)
		return IntValue(i, n.Props.Type), nil
	case uint64:
		width := e.widthOf(n.Props.Type)
		i := bigint.New(width, v)
		return IntValue(i, n.Props.Type), nil
	case float64:
		return FloatValue(bigint.LongDoubleFromFloat64(v), n.Props.Type), nil
	case *bigint.LongDouble:
		return FloatValue(v, n.Props.Type), nil
	}
	return nil, notConstant(n, "unrecognized literal payload kind")
}

func (e *Evaluator) VisitIdentifier(n *ast.IdentifierExpr) (any, error) {
	// A bare identifier is only a constant expression when it denotes an
	// enumerator (already folded to a ConstantExpr by semantic analysis) or
	// names an object/function with static/thread storage duration, in
	// which case it is an address constant (spec §4.3).
	if ast.IsPointerLike(n.Props.Type) || n.Props.Type == nil {
		return AddressValue(Address{Symbol: n.Name}, n.Props.Type), nil
	}
	return nil, notConstant(n, "identifier does not denote a constant or a static-duration object")
}

func (e *Evaluator) VisitStringLiteral(n *ast.StringLiteralExpr) (any, error) {
	return nil, notConstant(n, "string literal is only an address constant in an initializer context, not a general constant expression")
}

// --- arithmetic ---

func (e *Evaluator) VisitBinary(n *ast.BinaryExpr) (any, error) {
	lv, err := e.Evaluate(n.Left)
	if err != nil {
		return nil, err
	}
	rv, err := e.Evaluate(n.Right)
	if err != nil {
		return nil, err
	}
	return e.binaryOp(n, n.Operator, lv, rv)
}

func (e *Evaluator) binaryOp(n ast.Node, op ast.BinaryOp, l, r ConstValue) (ConstValue, error) {
	if isComparison(op) {
		return e.compare(n, op, l, r)
	}
	if l.Kind == KindAddress || r.Kind == KindAddress {
		return e.pointerArith(n, op, l, r)
	}
	if l.Kind == KindFloat || r.Kind == KindFloat || l.Kind == KindComplex || r.Kind == KindComplex {
		return e.floatArith(n, op, l, r)
	}
	return e.intArith(n, op, l, r)
}

func isComparison(op ast.BinaryOp) bool {
	switch op {
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return true
	}
	return false
}

func (e *Evaluator) compare(n ast.Node, op ast.BinaryOp, l, r ConstValue) (ConstValue, error) {
	var c int
	switch {
	case l.Kind == KindAddress || r.Kind == KindAddress:
		return ConstValue{}, notConstant(n, "comparison involving an address constant is not a constant expression")
	case l.Kind == KindComplex || r.Kind == KindComplex:
		if op != ast.OpEq && op != ast.OpNe {
			return ConstValue{}, notConstant(n, "ordering comparison of complex values is not a constant expression")
		}
		lre, lim := e.asComplexParts(l)
		rre, rim := e.asComplexParts(r)
		if c = lre.Cmp(rre); c == 0 {
			c = lim.Cmp(rim)
		}
	case l.Kind == KindFloat || r.Kind == KindFloat:
		lf, rf := e.asFloat(l), e.asFloat(r)
		c = lf.Cmp(rf)
	default:
		c = l.Int.SignedCompare(r.Int)
	}
	result := false
	switch op {
	case ast.OpEq:
		result = c == 0
	case ast.OpNe:
		result = c != 0
	case ast.OpLt:
		result = c < 0
	case ast.OpLe:
		result = c <= 0
	case ast.OpGt:
		result = c > 0
	case ast.OpGe:
		result = c >= 0
	}
	i := bigint.New(32, 0)
	if result {
		i.SetSignedValue(1)
	}
	return IntValue(i, ast.NewInt(true)), nil
}

// intArith widens to the expression's result type (spec §4.3 invariant #5:
// width tracks C1's result-type query, not merely the wider operand) - the
// usual arithmetic conversions already size the node's type correctly by
// the time C3 runs, so the node's own type is the width oracle here, not a
// re-derivation from the operands.
func (e *Evaluator) intArith(n ast.Node, op ast.BinaryOp, l, r ConstValue) (ConstValue, error) {
	resultType := l.Type
	if be, ok := n.(*ast.BinaryExpr); ok {
		if t := ast.ExprType(be); t != nil {
			resultType = t
		}
	}
	width := e.widthOf(resultType)
	signed := isSignedIntType(resultType)
	li, ri := l.Int.ResizeCastUnsigned(width), r.Int.ResizeCastUnsigned(width)
	if isSignedIntType(l.Type) {
		li = l.Int.ResizeCastSigned(width)
	}
	if isSignedIntType(r.Type) {
		ri = r.Int.ResizeCastSigned(width)
	}
	switch op {
	case ast.OpAdd:
		return IntValue(li.Add(ri), resultType), nil
	case ast.OpSub:
		return IntValue(li.Sub(ri), resultType), nil
	case ast.OpMul:
		return IntValue(li.Mul(ri), resultType), nil
	case ast.OpDiv:
		if ri.IsZero() {
			return ConstValue{}, notConstant(n, "division by zero is not a constant expression")
		}
		if signed {
			return IntValue(li.SignedDiv(ri), resultType), nil
		}
		return IntValue(li.UnsignedDiv(ri), resultType), nil
	case ast.OpMod:
		if ri.IsZero() {
			return ConstValue{}, notConstant(n, "modulo by zero is not a constant expression")
		}
		if signed {
			return IntValue(li.SignedMod(ri), resultType), nil
		}
		return IntValue(li.UnsignedMod(ri), resultType), nil
	case ast.OpBitAnd:
		return IntValue(li.And(ri), resultType), nil
	case ast.OpBitOr:
		return IntValue(li.Or(ri), resultType), nil
	case ast.OpBitXor:
		return IntValue(li.Xor(ri), resultType), nil
	case ast.OpShl:
		return IntValue(li.Lshift(uint(ri.GetUnsigned())), resultType), nil
	case ast.OpShr:
		if signed {
			return IntValue(li.Arshift(uint(ri.GetUnsigned())), resultType), nil
		}
		return IntValue(li.Rshift(uint(ri.GetUnsigned())), resultType), nil
	}
	return ConstValue{}, notConstant(n, "unsupported integer binary operator")
}

func (e *Evaluator) asFloat(v ConstValue) *bigint.LongDouble {
	if v.Kind == KindFloat {
		return v.Float
	}
	if isSignedIntType(v.Type) {
		return v.Int.SignedToLongDouble()
	}
	return v.Int.UnsignedToLongDouble()
}

func (e *Evaluator) floatArith(n ast.Node, op ast.BinaryOp, l, r ConstValue) (ConstValue, error) {
	if l.Kind == KindComplex || r.Kind == KindComplex {
		return e.complexArith(n, op, l, r)
	}
	lf, rf := e.asFloat(l), e.asFloat(r)
	switch op {
	case ast.OpAdd:
		return FloatValue(lf.Add(rf), floatResultType(l, r)), nil
	case ast.OpSub:
		return FloatValue(lf.Sub(rf), floatResultType(l, r)), nil
	case ast.OpMul:
		return FloatValue(lf.Mul(rf), floatResultType(l, r)), nil
	case ast.OpDiv:
		return FloatValue(lf.Quo(rf), floatResultType(l, r)), nil
	}
	return ConstValue{}, notConstant(n, "unsupported floating binary operator")
}

func floatResultType(l, r ConstValue) ast.Type {
	if l.Kind == KindFloat {
		return l.Type
	}
	return r.Type
}

// complexArith implements the four complex-arithmetic operators using the
// standard rectangular formulas (spec §4.3's complex constant folding).
func (e *Evaluator) complexArith(n ast.Node, op ast.BinaryOp, l, r ConstValue) (ConstValue, error) {
	lre, lim := e.asComplexParts(l)
	rre, rim := e.asComplexParts(r)
	switch op {
	case ast.OpAdd:
		return ComplexValue(lre.Add(rre), lim.Add(rim), complexResultType(l, r)), nil
	case ast.OpSub:
		return ComplexValue(lre.Sub(rre), lim.Sub(rim), complexResultType(l, r)), nil
	case ast.OpMul:
		re := lre.Mul(rre).Sub(lim.Mul(rim))
		im := lre.Mul(rim).Add(lim.Mul(rre))
		return ComplexValue(re, im, complexResultType(l, r)), nil
	case ast.OpDiv:
		denom := rre.Mul(rre).Add(rim.Mul(rim))
		re := lre.Mul(rre).Add(lim.Mul(rim)).Quo(denom)
		im := lim.Mul(rre).Sub(lre.Mul(rim)).Quo(denom)
		return ComplexValue(re, im, complexResultType(l, r)), nil
	}
	return ConstValue{}, notConstant(n, "unsupported complex binary operator")
}

func (e *Evaluator) asComplexParts(v ConstValue) (re, im *bigint.LongDouble) {
	if v.Kind == KindComplex {
		return v.Real, v.Imag
	}
	return e.asFloat(v), bigint.NewLongDouble()
}

func complexResultType(l, r ConstValue) ast.Type {
	if l.Kind == KindComplex {
		return l.Type
	}
	return r.Type
}

func isSignedIntType(t ast.Type) bool {
	if t == nil {
		return true
	}
	u, _ := ast.Unqualified(t)
	switch v := u.(type) {
	case ast.IntegerType:
		return v.Signed
	case ast.BitPreciseType:
		return v.Signed
	}
	switch u.Kind() {
	case ast.KindSignedChar, ast.KindChar:
		return true
	case ast.KindUnsignedChar, ast.KindBool:
		return false
	}
	return true
}

func (e *Evaluator) pointerArith(n ast.Node, op ast.BinaryOp, l, r ConstValue) (ConstValue, error) {
	switch op {
	case ast.OpAdd:
		if l.Kind == KindAddress {
			return e.addToAddress(n, l, r)
		}
		return e.addToAddress(n, r, l)
	case ast.OpSub:
		if l.Kind == KindAddress && r.Kind == KindAddress {
			if l.Address.Symbol != "" || r.Address.Symbol != "" {
				return ConstValue{}, notConstant(n, "subtracting addresses that are not integer constants is not a constant expression")
			}
			elem, err := e.Oracle.ObjectInfo(elementTypeOf(l.Type), nil)
			if err != nil {
				return ConstValue{}, err
			}
			diff := l.Address.Offset - r.Address.Offset
			if elem.Size != 0 {
				diff /= elem.Size
			}
			i := bigint.New(64, 0)
			i.SetSignedValue(diff)
			return IntValue(i, ast.NewLong(true)), nil
		}
		return e.addToAddress(n, l, ConstValue{Kind: KindInteger, Int: r.Int.Negate(), Type: r.Type})
	}
	return ConstValue{}, notConstant(n, "unsupported pointer arithmetic operator for constant folding")
}

func (e *Evaluator) addToAddress(n ast.Node, addr, offset ConstValue) (ConstValue, error) {
	elemType := elementTypeOf(addr.Type)
	if _, isFunc := elemType.(*ast.FunctionType); isFunc && e.Oracle.Config().EnableGNUExtensions {
		elemType = ast.Char
	}
	size, err := e.Oracle.ObjectInfo(elemType, nil)
	if err != nil {
		return ConstValue{}, err
	}
	delta := offset.Int.GetSigned() * size.Size
	return AddressValue(Address{Symbol: addr.Address.Symbol, Offset: addr.Address.Offset + delta}, addr.Type), nil
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

func (e *Evaluator) VisitLogical(n *ast.LogicalExpr) (any, error) {
	l, err := e.Evaluate(n.Left)
	if err != nil {
		return nil, err
	}
	// Short-circuit evaluation (spec §4.3): the right operand is not even
	// evaluated for constancy once the left side already determines the
	// result.
	if n.Operator == ast.LogicalAnd && l.IsZero() {
		return boolResult(false), nil
	}
	if n.Operator == ast.LogicalOr && !l.IsZero() {
		return boolResult(true), nil
	}
	r, err := e.Evaluate(n.Right)
	if err != nil {
		return nil, err
	}
	return boolResult(!r.IsZero()), nil
}

func boolResult(b bool) ConstValue {
	i := bigint.New(32, 0)
	if b {
		i.SetSignedValue(1)
	}
	return IntValue(i, ast.NewInt(true))
}

func (e *Evaluator) VisitUnary(n *ast.UnaryExpr) (any, error) {
	switch n.Operator {
	case ast.UnaryAddressOf:
		// The operand (identifier/member-access/array-subscript) already
		// evaluates to the address constant of the object it denotes; `&`
		// itself performs no further folding (spec §4.3).
		return e.Evaluate(n.Operand)
	case ast.UnaryPreIncrement, ast.UnaryPreDecrement:
		return nil, notConstant(n, "increment/decrement operators are never constant expressions")
	}
	v, err := e.Evaluate(n.Operand)
	if err != nil {
		return nil, err
	}
	switch n.Operator {
	case ast.UnaryPlus:
		return v, nil
	case ast.UnaryMinus:
		switch v.Kind {
		case KindInteger:
			return IntValue(v.Int.Negate(), v.Type), nil
		case KindFloat:
			return FloatValue(v.Float.Neg(), v.Type), nil
		case KindComplex:
			return ComplexValue(v.Real.Neg(), v.Imag.Neg(), v.Type), nil
		}
	case ast.UnaryBitNot:
		if v.Kind != KindInteger {
			return nil, notConstant(n, "bitwise complement requires an integer operand")
		}
		return IntValue(v.Int.Invert(), v.Type), nil
	case ast.UnaryLogicalNot:
		return boolResult(v.IsZero()), nil
	case ast.UnaryDereference:
		return nil, notConstant(n, "dereference is never a constant expression")
	}
	return nil, notConstant(n, "unsupported unary operator")
}

func (e *Evaluator) VisitPostfix(n *ast.PostfixExpr) (any, error) {
	return nil, notConstant(n, "increment/decrement operators are never constant expressions")
}

func (e *Evaluator) VisitConditional(n *ast.ConditionalExpr) (any, error) {
	cond, err := e.Evaluate(n.Condition)
	if err != nil {
		return nil, err
	}
	if !cond.IsZero() {
		if n.ThenBranch == nil {
			// GNU omitted-middle `a ?: c`: the already-evaluated condition
			// value is the result when it is truthy.
			return cond, nil
		}
		return e.Evaluate(n.ThenBranch)
	}
	return e.Evaluate(n.ElseBranch)
}

func (e *Evaluator) VisitComma(n *ast.CommaExpr) (any, error) {
	return nil, notConstant(n, "comma operator is never a constant expression")
}

func (e *Evaluator) VisitAssignment(n *ast.AssignmentExpr) (any, error) {
	return nil, notConstant(n, "assignment is never a constant expression")
}

func (e *Evaluator) VisitCast(n *ast.CastExpr) (any, error) {
	v, err := e.Evaluate(n.Inner)
	if err != nil {
		return nil, err
	}
	return e.convert(n, v, n.Target)
}

func (e *Evaluator) convert(n ast.Node, v ConstValue, target ast.Type) (ConstValue, error) {
	u, _ := ast.Unqualified(target)
	switch {
	case ast.IsPointerLike(u):
		if v.Kind == KindAddress {
			return AddressValue(v.Address, target), nil
		}
		if v.Kind == KindInteger {
			return AddressValue(Address{Offset: v.Int.GetSigned()}, target), nil
		}
		return ConstValue{}, notConstant(n, "cannot fold cast to pointer from non-integer/address constant")
	case ast.IsComplex(u):
		re, im := e.asComplexParts(v)
		return ComplexValue(re, im, target), nil
	case ast.IsFloating(u):
		return FloatValue(e.asFloat(v), target), nil
	case ast.IsScalarInteger(u):
		width := e.widthOf(u)
		if v.Kind == KindFloat {
			if isSignedIntType(u) {
				return IntValue(bigint.SignedFromLongDouble(v.Float, width), target), nil
			}
			return IntValue(bigint.UnsignedFromLongDouble(v.Float, width), target), nil
		}
		if v.Kind == KindAddress {
			i := bigint.New(width, 0)
			i.SetSignedValue(v.Address.Offset)
			return IntValue(i, target), nil
		}
		if isSignedIntType(u) {
			return IntValue(v.Int.ResizeCastSigned(width), target), nil
		}
		return IntValue(v.Int.ResizeCastUnsigned(width), target), nil
	}
	return ConstValue{}, notConstant(n, "unsupported cast target type for constant folding")
}

func (e *Evaluator) widthOf(t ast.Type) int {
	if t == nil {
		return e.Oracle.Config().IntWidth
	}
	u, _ := ast.Unqualified(t)
	switch v := u.(type) {
	case ast.IntegerType:
		switch v.Kind() {
		case ast.KindShort:
			return e.Oracle.Config().ShortWidth
		case ast.KindInt:
			return e.Oracle.Config().IntWidth
		case ast.KindLong:
			return e.Oracle.Config().LongWidth
		case ast.KindLongLong:
			return e.Oracle.Config().LongLongWidth
		}
	case ast.BitPreciseType:
		return v.Width
	}
	switch u.Kind() {
	case ast.KindBool:
		return e.Oracle.Config().BoolWidth
	case ast.KindChar, ast.KindSignedChar, ast.KindUnsignedChar:
		return e.Oracle.Config().CharWidth
	case ast.KindPointer, ast.KindNullPointer:
		return e.Oracle.Config().PointerWidth
	}
	return e.Oracle.Config().IntWidth
}
