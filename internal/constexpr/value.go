// Package constexpr implements C3: the constant-expression evaluator (spec
// §4.3). It walks a semantically-resolved ast.Expr and folds it to a
// ConstValue, or reports why it is not a constant expression.
package constexpr

import (
	"cirt/internal/ast"
	"cirt/internal/bigint"
)

// ValueKind tags which field of ConstValue is live.
type ValueKind int

const (
	KindInteger ValueKind = iota
	KindFloat
	KindComplex
	KindAddress
)

// Address is a compile-time constant pointer: a named object/function plus
// a byte offset from its start (spec §4.3's "address constant").
type Address struct {
	Symbol string
	Offset int64
}

// ConstValue is C3's result sum type.
type ConstValue struct {
	Kind    ValueKind
	Int     *bigint.Int
	Float   *bigint.LongDouble
	Real    *bigint.LongDouble // real part when Kind == KindComplex
	Imag    *bigint.LongDouble // imaginary part when Kind == KindComplex
	Address Address
	Type    ast.Type
}

func IntValue(i *bigint.Int, t ast.Type) ConstValue {
	return ConstValue{Kind: KindInteger, Int: i, Type: t}
}

func FloatValue(f *bigint.LongDouble, t ast.Type) ConstValue {
	return ConstValue{Kind: KindFloat, Float: f, Type: t}
}

func ComplexValue(re, im *bigint.LongDouble, t ast.Type) ConstValue {
	return ConstValue{Kind: KindComplex, Real: re, Imag: im, Type: t}
}

func AddressValue(addr Address, t ast.Type) ConstValue {
	return ConstValue{Kind: KindAddress, Address: addr, Type: t}
}

// IsZero reports whether v is the zero value of its kind, the test used for
// `!` / logical-context conversions and switch/case comparisons.
func (v ConstValue) IsZero() bool {
	switch v.Kind {
	case KindInteger:
		return v.Int.IsZero()
	case KindFloat:
		return v.Float.Sign() == 0
	case KindComplex:
		return v.Real.Sign() == 0 && v.Imag.Sign() == 0
	case KindAddress:
		return v.Address.Symbol == "" && v.Address.Offset == 0
	}
	return false
}
