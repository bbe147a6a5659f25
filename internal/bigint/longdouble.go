package bigint

import "math/big"

// longDoublePrecision is the mantissa precision (in bits) of the x87
// 80-bit extended format this target models long double as: 64 significand
// bits in total, the explicit integer bit included.
const longDoublePrecision = 64

// LongDouble is a target `long double` value. All constant-expression
// floating arithmetic is carried out at this precision (spec §4.3: "all
// intermediate floating arithmetic is done in long double precision").
// It is backed by math/big.Float at extended precision rather than
// float64, since float64 alone cannot represent the extra mantissa bits a
// real `long double` carries (see DESIGN.md for why no pack library fits
// this role: mewmew/float only encodes/decodes the IEEE-754 extended bit
// layout for LLVM IR text, it does not implement arithmetic).
type LongDouble struct {
	f *big.Float
}

func NewLongDouble() *LongDouble {
	return &LongDouble{f: new(big.Float).SetPrec(longDoublePrecision)}
}

func LongDoubleFromFloat64(v float64) *LongDouble {
	return &LongDouble{f: new(big.Float).SetPrec(longDoublePrecision).SetFloat64(v)}
}

func (l *LongDouble) Float64() float64 {
	f, _ := l.f.Float64()
	return f
}

func (l *LongDouble) binop(o *LongDouble, op func(z, x, y *big.Float) *big.Float) *LongDouble {
	z := new(big.Float).SetPrec(longDoublePrecision)
	op(z, l.f, o.f)
	return &LongDouble{f: z}
}

func (l *LongDouble) Add(o *LongDouble) *LongDouble { return l.binop(o, (*big.Float).Add) }
func (l *LongDouble) Sub(o *LongDouble) *LongDouble { return l.binop(o, (*big.Float).Sub) }
func (l *LongDouble) Mul(o *LongDouble) *LongDouble { return l.binop(o, (*big.Float).Mul) }
func (l *LongDouble) Quo(o *LongDouble) *LongDouble { return l.binop(o, (*big.Float).Quo) }

func (l *LongDouble) Neg() *LongDouble {
	z := new(big.Float).SetPrec(longDoublePrecision)
	z.Neg(l.f)
	return &LongDouble{f: z}
}

func (l *LongDouble) Sign() int      { return l.f.Sign() }
func (l *LongDouble) Cmp(o *LongDouble) int { return l.f.Cmp(o.f) }

// SignedToLongDouble converts i (signed interpretation) to long double
// precision, per spec §4.2's `signed_to_long_double`.
func (i *Int) SignedToLongDouble() *LongDouble {
	f := new(big.Float).SetPrec(longDoublePrecision).SetInt(i.signedValue())
	return &LongDouble{f: f}
}

// UnsignedToLongDouble converts i (unsigned interpretation) to long double
// precision.
func (i *Int) UnsignedToLongDouble() *LongDouble {
	f := new(big.Float).SetPrec(longDoublePrecision).SetInt(&i.v)
	return &LongDouble{f: f}
}

// SignedFromLongDouble truncates ld toward zero into a signed Int of the
// given width (C float-to-integer conversion semantics, spec §4.3).
func SignedFromLongDouble(ld *LongDouble, width int) *Int {
	truncated, _ := ld.f.Int(nil)
	return fromSigned(width, truncated)
}

// UnsignedFromLongDouble truncates ld toward zero into an unsigned Int of
// the given width. Negative values wrap the same way a C cast of a
// negative float to an unsigned integer type does (implementation-defined
// in the standard but universally two's-complement-wrap in practice).
func UnsignedFromLongDouble(ld *LongDouble, width int) *Int {
	truncated, _ := ld.f.Int(nil)
	out := &Int{Width: width}
	out.v.Set(truncated)
	if truncated.Sign() < 0 {
		out.v.Add(&out.v, mask(width))
	}
	out.wrap()
	return out
}
