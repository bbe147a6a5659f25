package ast

import "testing"

func TestUnqualifiedStripsOneLayer(t *testing.T) {
	inner := NewInt(true)
	q := &QualifiedType{Inner: inner, Quals: Qualifiers{Const: true}}

	got, quals := Unqualified(q)
	if got != Type(inner) {
		t.Errorf("Unqualified() type = %v, want %v", got, inner)
	}
	if !quals.Const {
		t.Errorf("Unqualified() quals.Const = false, want true")
	}

	got, quals = Unqualified(Double)
	if got != Double {
		t.Errorf("Unqualified(Double) = %v, want Double", got)
	}
	if quals.Any() {
		t.Errorf("Unqualified(Double) quals.Any() = true, want false")
	}
}

func TestIsScalarInteger(t *testing.T) {
	tests := []struct {
		name string
		t    Type
		want bool
	}{
		{"int", NewInt(true), true},
		{"unsigned long", NewLong(false), true},
		{"bool", Bool, true},
		{"char", Char, true},
		{"double", Double, false},
		{"void", Void, false},
		{"qualified int", &QualifiedType{Inner: NewInt(true), Quals: Qualifiers{Const: true}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsScalarInteger(tt.t); got != tt.want {
				t.Errorf("IsScalarInteger(%v) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestIsFloating(t *testing.T) {
	tests := []struct {
		name string
		t    Type
		want bool
	}{
		{"float", Float, true},
		{"double", Double, true},
		{"long double", LongDouble, true},
		{"complex float", ComplexF, true},
		{"int", NewInt(true), false},
		{"void", Void, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFloating(tt.t); got != tt.want {
				t.Errorf("IsFloating(%v) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestIsComplex(t *testing.T) {
	if !IsComplex(ComplexD) {
		t.Errorf("IsComplex(ComplexD) = false, want true")
	}
	if IsComplex(Double) {
		t.Errorf("IsComplex(Double) = true, want false")
	}
}

func TestIsPointerLike(t *testing.T) {
	ptr := &PointerType{Referenced: NewInt(true)}
	if !IsPointerLike(ptr) {
		t.Errorf("IsPointerLike(*PointerType) = false, want true")
	}
	if !IsPointerLike(NullPointer) {
		t.Errorf("IsPointerLike(NullPointer) = false, want true")
	}
	if IsPointerLike(NewInt(true)) {
		t.Errorf("IsPointerLike(int) = true, want false")
	}
}

func TestQualifiersAny(t *testing.T) {
	if (Qualifiers{}).Any() {
		t.Errorf("zero-value Qualifiers.Any() = true, want false")
	}
	if !(Qualifiers{Volatile: true}).Any() {
		t.Errorf("Qualifiers{Volatile: true}.Any() = false, want true")
	}
}
