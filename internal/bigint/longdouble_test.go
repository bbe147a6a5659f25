package bigint

import "testing"

func TestLongDoubleArithmetic(t *testing.T) {
	a := LongDoubleFromFloat64(1.5)
	b := LongDoubleFromFloat64(2.25)

	if got := a.Add(b).Float64(); got != 3.75 {
		t.Errorf("Add = %v, want 3.75", got)
	}
	if got := b.Sub(a).Float64(); got != 0.75 {
		t.Errorf("Sub = %v, want 0.75", got)
	}
	if got := a.Mul(b).Float64(); got != 3.375 {
		t.Errorf("Mul = %v, want 3.375", got)
	}
}

func TestLongDoubleRoundTripsThroughInt(t *testing.T) {
	i := New(32, 42)
	ld := i.UnsignedToLongDouble()
	if got := ld.Float64(); got != 42 {
		t.Errorf("UnsignedToLongDouble().Float64() = %v, want 42", got)
	}

	back := UnsignedFromLongDouble(ld, 32)
	if got := back.GetUnsigned(); got != 42 {
		t.Errorf("UnsignedFromLongDouble() = %d, want 42", got)
	}
}

func TestSignedFromLongDoubleTruncatesTowardZero(t *testing.T) {
	ld := LongDoubleFromFloat64(-3.9)
	out := SignedFromLongDouble(ld, 32)
	if got := out.GetSigned(); got != -3 {
		t.Errorf("SignedFromLongDouble(-3.9) = %d, want -3", got)
	}
}
