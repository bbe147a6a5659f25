package constexpr

import (
	"math"

	"cirt/internal/ast"
	"cirt/internal/bigint"
)

func (e *Evaluator) VisitCall(n *ast.CallExpr) (any, error) {
	return nil, notConstant(n, "function calls are never constant expressions")
}

// VisitMemberAccess only folds when building an address constant for
// `&s.member` style designators; as a plain value read it is never
// constant (spec §4.3 - member reads require an object to be loaded from).
func (e *Evaluator) VisitMemberAccess(n *ast.MemberAccessExpr) (any, error) {
	base, err := e.Evaluate(n.Object)
	if err != nil {
		return nil, err
	}
	if base.Kind != KindAddress {
		return nil, notConstant(n, "member access requires an address-constant base object")
	}
	structType := elementTypeOf(base.Type)
	if n.Indirect {
		structType = elementTypeOf(base.Type)
	}
	off, err := e.Oracle.ObjectInfo(structType, []ast.DesignatorStep{{Member: n.Member}})
	if err != nil {
		return nil, err
	}
	return AddressValue(Address{Symbol: base.Address.Symbol, Offset: base.Address.Offset + off.RelativeOffset}, n.Props.Type), nil
}

func (e *Evaluator) VisitArraySubscript(n *ast.ArraySubscriptExpr) (any, error) {
	base, err := e.Evaluate(n.Array)
	if err != nil {
		return nil, err
	}
	idx, err := e.Evaluate(n.Index)
	if err != nil {
		return nil, err
	}
	if base.Kind != KindAddress || idx.Kind != KindInteger {
		return nil, notConstant(n, "array subscript requires an address-constant array and integer-constant index")
	}
	return e.addToAddress(n, base, idx)
}

func (e *Evaluator) VisitSizeof(n *ast.SizeofExpr) (any, error) {
	t := n.OperandType
	if t == nil {
		t = ast.ExprType(n.Operand)
	}
	layout, err := e.Oracle.ObjectInfo(t, nil)
	if err != nil {
		return nil, err
	}
	i := bigint.New(e.Oracle.Config().LongWidth, uint64(layout.Size))
	return IntValue(i, ast.NewLong(false)), nil
}

func (e *Evaluator) VisitAlignof(n *ast.AlignofExpr) (any, error) {
	layout, err := e.Oracle.ObjectInfo(n.OperandType, nil)
	if err != nil {
		return nil, err
	}
	i := bigint.New(e.Oracle.Config().LongWidth, uint64(layout.Alignment))
	return IntValue(i, ast.NewLong(false)), nil
}

func (e *Evaluator) VisitOffsetof(n *ast.OffsetofExpr) (any, error) {
	layout, err := e.Oracle.ObjectInfo(n.StructType, n.Designator)
	if err != nil {
		return nil, err
	}
	i := bigint.New(e.Oracle.Config().LongWidth, uint64(layout.RelativeOffset))
	return IntValue(i, ast.NewLong(false)), nil
}

func (e *Evaluator) VisitCompoundLiteral(n *ast.CompoundLiteralExpr) (any, error) {
	return nil, notConstant(n, "compound literal is an object, not a scalar constant expression")
}

func (e *Evaluator) VisitStatementExpr(n *ast.StatementExpr) (any, error) {
	return nil, notConstant(n, "statement expressions are never constant expressions")
}

func (e *Evaluator) VisitVaArg(n *ast.VaArgExpr) (any, error) {
	return nil, notConstant(n, "va_arg is never a constant expression")
}

// VisitGenericSelection implements C11 _Generic (spec §14 supplement): the
// controlling expression's type picks the matching association at
// compile time; the unchosen associations are not even evaluated for
// constancy, mirroring _Generic's "only the selected expression is
// evaluated" rule.
func (e *Evaluator) VisitGenericSelection(n *ast.GenericSelectionExpr) (any, error) {
	var chosen ast.Expr
	var fallback ast.Expr
	ctype := ast.ExprType(n.Controlling)
	for _, assoc := range n.Associations {
		if assoc.Type == nil {
			fallback = assoc.Result
			continue
		}
		if typesCompatible(assoc.Type, ctype) {
			chosen = assoc.Result
			break
		}
	}
	if chosen == nil {
		chosen = fallback
	}
	if chosen == nil {
		return nil, notConstant(n, "_Generic has no matching association and no default")
	}
	return e.Evaluate(chosen)
}

func (e *Evaluator) VisitBuiltinChoose(n *ast.BuiltinChooseExpr) (any, error) {
	cond, err := e.Evaluate(n.Condition)
	if err != nil {
		return nil, err
	}
	// __builtin_choose_expr only evaluates (and type-checks) the selected
	// branch (spec §4.3's builtins list).
	if !cond.IsZero() {
		return e.Evaluate(n.TrueExpr)
	}
	return e.Evaluate(n.FalseExpr)
}

func (e *Evaluator) VisitBuiltinTypesCompatible(n *ast.BuiltinTypesCompatibleExpr) (any, error) {
	return boolResult(typesCompatible(n.LHS, n.RHS)), nil
}

// typesCompatible implements the GNU-extension type-compatibility check
// used by __builtin_types_compatible_p and _Generic association matching:
// qualifiers are stripped (spec §4.3 notes __builtin_types_compatible_p
// ignores top-level qualifiers) and the underlying TypeKind must agree;
// pointers and arrays are then compared through their element types,
// structures and enumerations by identity, and integers by signedness.
func typesCompatible(a, b ast.Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	ua, _ := ast.Unqualified(a)
	ub, _ := ast.Unqualified(b)
	if ua.Kind() != ub.Kind() {
		return false
	}
	switch va := ua.(type) {
	case *ast.PointerType:
		vb := ub.(*ast.PointerType)
		return typesCompatible(va.Referenced, vb.Referenced)
	case *ast.ArrayType:
		vb := ub.(*ast.ArrayType)
		return typesCompatible(va.Element, vb.Element)
	case *ast.StructureType:
		vb := ub.(*ast.StructureType)
		return va == vb
	case *ast.EnumerationType:
		vb := ub.(*ast.EnumerationType)
		return va == vb
	case ast.IntegerType:
		vb := ub.(ast.IntegerType)
		return va.Signed == vb.Signed
	}
	return true
}

// VisitBuiltinConstantP implements __builtin_constant_p: true iff the
// operand folds to a constant without error (spec §4.3). Per GCC's
// documented behavior, a failed fold never propagates as an error here -
// it always yields the boolean result 0.
func (e *Evaluator) VisitBuiltinConstantP(n *ast.BuiltinConstantPExpr) (any, error) {
	_, err := e.Evaluate(n.Operand)
	return boolResult(err == nil), nil
}

// classifyType codes mirror GCC's __builtin_classify_type return values.
const (
	classifyVoid    = 0
	classifyInteger = 1
	classifyChar    = 2
	classifyEnum    = 3
	classifyBool    = 4
	classifyPointer = 5
	classifyReal    = 8
	classifyComplex = 9
	classifyRecord  = 12
	classifyUnion   = 13
)

func (e *Evaluator) VisitBuiltinClassifyType(n *ast.BuiltinClassifyTypeExpr) (any, error) {
	t := ast.ExprType(n.Operand)
	u, _ := ast.Unqualified(t)
	var code int
	switch u.Kind() {
	case ast.KindVoid:
		code = classifyVoid
	case ast.KindBool:
		code = classifyBool
	case ast.KindChar, ast.KindSignedChar, ast.KindUnsignedChar:
		code = classifyChar
	case ast.KindEnumeration:
		code = classifyEnum
	case ast.KindPointer, ast.KindNullPointer:
		code = classifyPointer
	case ast.KindFloat, ast.KindDouble, ast.KindLongDouble:
		code = classifyReal
	case ast.KindComplexFloat, ast.KindComplexDouble, ast.KindComplexLongDouble:
		code = classifyComplex
	case ast.KindStructure:
		code = classifyRecord
	case ast.KindUnion:
		code = classifyUnion
	default:
		code = classifyInteger
	}
	i := bigint.New(32, 0)
	i.SetSignedValue(int64(code))
	return IntValue(i, ast.NewInt(true)), nil
}

func (e *Evaluator) VisitBuiltinBitOp(n *ast.BuiltinBitOpExpr) (any, error) {
	v, err := e.Evaluate(n.Operand)
	if err != nil {
		return nil, err
	}
	if v.Kind != KindInteger {
		return nil, notConstant(n, "bit-manipulation builtins require an integer operand")
	}
	var result int
	switch n.Kind {
	case ast.BitOpFfs:
		r, ok := v.Int.LeastSignificantNonzero()
		if !ok {
			r = 0
		}
		result = r
	case ast.BitOpClz:
		result = v.Int.LeadingZeros(v.Int.Width)
	case ast.BitOpCtz:
		result = v.Int.TrailingZeros()
	case ast.BitOpClrsb:
		result = v.Int.RedundantSignBits()
	case ast.BitOpPopcount:
		result = v.Int.NonzeroCount()
	case ast.BitOpParity:
		result = v.Int.Parity()
	}
	i := bigint.New(32, 0)
	i.SetSignedValue(int64(result))
	return IntValue(i, ast.NewInt(true)), nil
}

func (e *Evaluator) VisitBuiltinInfNan(n *ast.BuiltinInfNanExpr) (any, error) {
	// Representable exactly at long-double precision via math/big.Float's
	// infinite mode; NaN payload strings are accepted but not distinguished
	// (no pack library exposes per-payload NaN bit construction - see
	// DESIGN.md).
	if n.IsNan {
		return FloatValue(bigint.LongDoubleFromFloat64(math.NaN()), ast.Double), nil
	}
	return FloatValue(bigint.LongDoubleFromFloat64(math.Inf(1)), ast.Double), nil
}

func (e *Evaluator) VisitLabelAddress(n *ast.LabelAddressExpr) (any, error) {
	return nil, notConstant(n, "label address is only valid inside the function it is taken from, not a general constant expression")
}
