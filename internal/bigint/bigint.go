// Package bigint implements the arbitrary-width two's-complement integer
// arithmetic C2 needs for _BitInt folding and compile-time constant
// representation (spec §4.2). It wraps math/big.Int with explicit bit-width
// masking since C semantics need fixed-width wraparound, not unbounded
// integers - see DESIGN.md for why no pack library supplies this directly.
package bigint

import (
	"math/big"
	"math/bits"
)

// Int is a fixed-width two's-complement integer value. Width is the
// bit-width of its owning C type (e.g. the declared _BitInt(N) width);
// operations mask back to Width after every mutation.
type Int struct {
	Width int
	v     big.Int // stored as an unsigned value in [0, 2^Width)
}

// Pool is a per-translation-unit-context free list, mirroring the teacher's
// vmregister.globalObjectCache pattern of caching short-lived allocations
// against a context instead of letting each one escape individually.
type Pool struct {
	free []*Int
}

func NewPool() *Pool { return &Pool{} }

// Acquire returns an *Int with the given width, reusing a freed instance
// when available.
func (p *Pool) Acquire(width int) *Int {
	if n := len(p.free); n > 0 {
		i := p.free[n-1]
		p.free = p.free[:n-1]
		i.Width = width
		i.v.SetInt64(0)
		return i
	}
	return &Int{Width: width}
}

// Release returns i to the pool for reuse.
func (p *Pool) Release(i *Int) {
	if i == nil {
		return
	}
	p.free = append(p.free, i)
}

func mask(width int) *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), uint(width))
	return m
}

// New builds an Int of the given width from an unsigned raw value.
func New(width int, unsigned uint64) *Int {
	i := &Int{Width: width}
	i.v.SetUint64(unsigned)
	i.wrap()
	return i
}

func (i *Int) wrap() {
	i.v.Mod(&i.v, mask(i.Width))
}

// CopyResize returns a copy of i resized to newWidth, truncating or
// zero-extending the raw bit pattern (no sign awareness - callers choose
// ResizeCastSigned/ResizeCastUnsigned for C conversions).
func (i *Int) CopyResize(newWidth int) *Int {
	out := &Int{Width: newWidth}
	out.v.Set(&i.v)
	out.wrap()
	return out
}

// ResizeCastSigned reinterprets i as signed at its current width, then
// resizes to newWidth with sign extension (or truncation) per C integer
// conversion rules.
func (i *Int) ResizeCastSigned(newWidth int) *Int {
	signed := i.signedValue()
	out := &Int{Width: newWidth}
	out.v.Set(signed)
	if signed.Sign() < 0 {
		out.v.Add(&out.v, mask(newWidth))
	}
	out.wrap()
	return out
}

// ResizeCastUnsigned resizes i (taken as unsigned) to newWidth by
// truncation/zero-extension.
func (i *Int) ResizeCastUnsigned(newWidth int) *Int {
	return i.CopyResize(newWidth)
}

func (i *Int) signedValue() *big.Int {
	v := new(big.Int).Set(&i.v)
	half := new(big.Int).Lsh(big.NewInt(1), uint(i.Width-1))
	if v.Cmp(half) >= 0 {
		v.Sub(v, mask(i.Width))
	}
	return v
}

// SetSignedValue stores a signed int64 value, wrapping to Width.
func (i *Int) SetSignedValue(val int64) {
	i.v.SetInt64(val)
	if val < 0 {
		i.v.Add(&i.v, mask(i.Width))
	}
	i.wrap()
}

// SetUnsignedValue stores an unsigned uint64 value, wrapping to Width.
func (i *Int) SetUnsignedValue(val uint64) {
	i.v.SetUint64(val)
	i.wrap()
}

// GetSigned returns i's value interpreted as a two's-complement signed
// integer of its Width, truncated to fit int64 if Width > 64.
func (i *Int) GetSigned() int64 {
	return i.signedValue().Int64()
}

// GetUnsigned returns i's raw unsigned value, truncated to fit uint64 if
// Width > 64.
func (i *Int) GetUnsigned() uint64 {
	return i.v.Uint64()
}

// Negate returns -i (wrapped to Width), the C unary `-` on this bit pattern.
func (i *Int) Negate() *Int {
	out := &Int{Width: i.Width}
	out.v.Sub(mask(i.Width), &i.v)
	out.wrap()
	return out
}

// Invert returns the bitwise complement of i (C unary `~`).
func (i *Int) Invert() *Int {
	out := &Int{Width: i.Width}
	out.v.Sub(new(big.Int).Sub(mask(i.Width), big.NewInt(1)), &i.v)
	out.wrap()
	return out
}

// IsZero reports whether i's value is zero.
func (i *Int) IsZero() bool { return i.v.Sign() == 0 }

// SignedCompare returns -1, 0, or 1 comparing i and j as signed values.
// Widths must match (the caller is responsible for widening per the usual
// arithmetic conversions before calling).
func (i *Int) SignedCompare(j *Int) int {
	return i.signedValue().Cmp(j.signedValue())
}

// UnsignedCompare returns -1, 0, or 1 comparing i and j as unsigned values.
func (i *Int) UnsignedCompare(j *Int) int {
	return i.v.Cmp(&j.v)
}

func (i *Int) add(j *Int, sub bool) *Int {
	out := &Int{Width: i.Width}
	if sub {
		out.v.Sub(&i.v, &j.v)
		out.v.Add(&out.v, mask(i.Width))
	} else {
		out.v.Add(&i.v, &j.v)
	}
	out.wrap()
	return out
}

func (i *Int) Add(j *Int) *Int { return i.add(j, false) }
func (i *Int) Sub(j *Int) *Int { return i.add(j, true) }

func (i *Int) Mul(j *Int) *Int {
	out := &Int{Width: i.Width}
	out.v.Mul(&i.v, &j.v)
	out.wrap()
	return out
}

// SignedDiv/SignedMod implement C's truncate-toward-zero division on the
// signed interpretation of i and j.
func (i *Int) SignedDiv(j *Int) *Int {
	a, b := i.signedValue(), j.signedValue()
	q := new(big.Int).Quo(a, b)
	return fromSigned(i.Width, q)
}

func (i *Int) SignedMod(j *Int) *Int {
	a, b := i.signedValue(), j.signedValue()
	r := new(big.Int).Rem(a, b)
	return fromSigned(i.Width, r)
}

func (i *Int) UnsignedDiv(j *Int) *Int {
	out := &Int{Width: i.Width}
	out.v.Div(&i.v, &j.v)
	return out
}

func (i *Int) UnsignedMod(j *Int) *Int {
	out := &Int{Width: i.Width}
	out.v.Mod(&i.v, &j.v)
	return out
}

func fromSigned(width int, v *big.Int) *Int {
	out := &Int{Width: width}
	out.v.Set(v)
	if v.Sign() < 0 {
		out.v.Add(&out.v, mask(width))
	}
	out.wrap()
	return out
}

func (i *Int) bitwise(j *Int, f func(z, x, y *big.Int) *big.Int) *Int {
	out := &Int{Width: i.Width}
	f(&out.v, &i.v, &j.v)
	out.wrap()
	return out
}

func (i *Int) And(j *Int) *Int { return i.bitwise(j, (*big.Int).And) }
func (i *Int) Or(j *Int) *Int  { return i.bitwise(j, (*big.Int).Or) }
func (i *Int) Xor(j *Int) *Int { return i.bitwise(j, (*big.Int).Xor) }

func (i *Int) Lshift(n uint) *Int {
	out := &Int{Width: i.Width}
	out.v.Lsh(&i.v, n)
	out.wrap()
	return out
}

// Rshift is the logical (unsigned) right shift.
func (i *Int) Rshift(n uint) *Int {
	out := &Int{Width: i.Width}
	out.v.Rsh(&i.v, n)
	return out
}

// Arshift is the arithmetic (sign-propagating) right shift.
func (i *Int) Arshift(n uint) *Int {
	s := i.signedValue()
	s.Rsh(s, n)
	return fromSigned(i.Width, s)
}

// LeadingZeros returns the count of leading zero bits within Width, or
// def if i is zero (the C `__builtin_clz`-family "undefined at zero"
// convention is resolved by the caller supplying def).
func (i *Int) LeadingZeros(def int) int {
	if i.IsZero() {
		return def
	}
	return i.Width - i.v.BitLen()
}

// TrailingZeros returns the count of trailing zero bits, or Width if i is
// zero.
func (i *Int) TrailingZeros() int {
	if i.IsZero() {
		return i.Width
	}
	words := i.v.Bits()
	for idx, w := range words {
		if w != 0 {
			return idx*bits.UintSize + bits.TrailingZeros(uint(w))
		}
	}
	return i.Width
}

// NonzeroCount is the population count (number of set bits).
func (i *Int) NonzeroCount() int {
	count := 0
	for _, w := range i.v.Bits() {
		count += bits.OnesCount(uint(w))
	}
	return count
}

// Parity returns 1 if NonzeroCount is odd, else 0 (C `__builtin_parity`).
func (i *Int) Parity() int { return i.NonzeroCount() & 1 }

// RedundantSignBits is `__builtin_clrsb`: the number of bits, excluding the
// sign bit, that match the sign bit.
func (i *Int) RedundantSignBits() int {
	s := i.signedValue()
	if s.Sign() < 0 {
		return i.Invert().LeadingZeros(i.Width) - 1
	}
	return i.LeadingZeros(i.Width) - 1
}

// LeastSignificantNonzero returns the 1-based index of the least
// significant set bit (C `__builtin_ffs` semantics) and false if i is zero.
func (i *Int) LeastSignificantNonzero() (int, bool) {
	if i.IsZero() {
		return 0, false
	}
	return i.TrailingZeros() + 1, true
}

// String renders the unsigned bit pattern in decimal, for debug dumps.
func (i *Int) String() string { return i.v.String() }
