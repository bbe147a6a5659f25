package bigint

import "testing"

func assertSigned(t *testing.T, i *Int, want int64) {
	t.Helper()
	if got := i.GetSigned(); got != want {
		t.Errorf("GetSigned() = %d, want %d", got, want)
	}
}

func assertUnsigned(t *testing.T, i *Int, want uint64) {
	t.Helper()
	if got := i.GetUnsigned(); got != want {
		t.Errorf("GetUnsigned() = %d, want %d", got, want)
	}
}

func TestWrapAround(t *testing.T) {
	tests := []struct {
		name  string
		width int
		value uint64
		want  uint64
	}{
		{"fits", 8, 200, 200},
		{"wraps at byte boundary", 8, 256, 0},
		{"wraps with overflow", 8, 257, 1},
		{"16-bit wrap", 16, 65536, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := New(tt.width, tt.value)
			assertUnsigned(t, i, tt.want)
		})
	}
}

func TestSignedValue(t *testing.T) {
	i := New(8, 0xFF)
	assertSigned(t, i, -1)

	i = New(8, 0x7F)
	assertSigned(t, i, 127)
}

func TestArithmetic(t *testing.T) {
	a := New(32, 10)
	b := New(32, 3)

	assertUnsigned(t, a.Add(b), 13)
	assertUnsigned(t, a.Sub(b), 7)
	assertUnsigned(t, a.Mul(b), 30)
	assertUnsigned(t, a.UnsignedDiv(b), 3)
	assertUnsigned(t, a.UnsignedMod(b), 1)
}

func TestSignedDivTruncatesTowardZero(t *testing.T) {
	a := New(8, 0xFB) // -5
	b := New(8, 2)
	assertSigned(t, a.SignedDiv(b), -2)
	assertSigned(t, a.SignedMod(b), -1)
}

func TestNegateAndInvert(t *testing.T) {
	i := New(8, 1)
	assertSigned(t, i.Negate(), -1)

	i = New(8, 0)
	assertUnsigned(t, i.Invert(), 0xFF)
}

func TestShifts(t *testing.T) {
	i := New(8, 1)
	assertUnsigned(t, i.Lshift(3), 8)

	i = New(8, 0x80)
	assertUnsigned(t, i.Rshift(4), 0x08)

	i = New(8, 0x80) // -128
	assertSigned(t, i.Arshift(4), -8)
}

func TestBitCounting(t *testing.T) {
	i := New(8, 0b00101100)
	if got := i.TrailingZeros(); got != 2 {
		t.Errorf("TrailingZeros() = %d, want 2", got)
	}
	if got := i.NonzeroCount(); got != 3 {
		t.Errorf("NonzeroCount() = %d, want 3", got)
	}
	if got := i.Parity(); got != 1 {
		t.Errorf("Parity() = %d, want 1 (odd popcount)", got)
	}
}

func TestCopyResizeTruncates(t *testing.T) {
	i := New(16, 0x1FF)
	out := i.CopyResize(8)
	assertUnsigned(t, out, 0xFF)
}

func TestResizeCastSignedSignExtends(t *testing.T) {
	i := New(8, 0xFF) // -1 at width 8
	out := i.ResizeCastSigned(16)
	assertSigned(t, out, -1)
}

func TestPoolReuse(t *testing.T) {
	p := NewPool()
	a := p.Acquire(32)
	a.SetSignedValue(42)
	p.Release(a)
	b := p.Acquire(32)
	if b != a {
		t.Errorf("Acquire() after Release() did not reuse the freed *Int")
	}
	assertSigned(t, b, 0)
}

func TestIsZero(t *testing.T) {
	if !New(8, 0).IsZero() {
		t.Errorf("IsZero() = false for 0, want true")
	}
	if New(8, 1).IsZero() {
		t.Errorf("IsZero() = true for 1, want false")
	}
}
