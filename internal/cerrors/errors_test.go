package cerrors

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorMessageFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "bare kind and message",
			err:  New(InvalidParameter, "bad width"),
			want: "InvalidParameter: bad width",
		},
		{
			name: "kind with no message",
			err:  &Error{Kind: NotFound},
			want: "NotFound",
		},
		{
			name: "with source location",
			err:  At(NotConstant, SourceLocation{File: "a.c", Line: 3, Column: 7}, "not foldable"),
			want: "NotConstant: not foldable (at a.c:3:7)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsMatchesKind(t *testing.T) {
	err := New(OutOfSpace, "bit-field storage unit exhausted")
	if !Is(err, OutOfSpace) {
		t.Errorf("Is(err, OutOfSpace) = false, want true")
	}
	if Is(err, NotFound) {
		t.Errorf("Is(err, NotFound) = true, want false")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("pool exhausted")
	wrapped := Wrap(MemoryAllocationFailure, cause, "bigint pool")
	if !strings.Contains(wrapped.Error(), "MemoryAllocationFailure") {
		t.Errorf("Error() = %q, want it to contain the kind", wrapped.Error())
	}
	if !errors.Is(wrapped, cause) {
		t.Errorf("errors.Is(wrapped, cause) = false, want true (Unwrap chain broken)")
	}
}

func TestSourceLocationValid(t *testing.T) {
	if (SourceLocation{}).Valid() {
		t.Errorf("zero-value SourceLocation reports Valid() = true")
	}
	if !(SourceLocation{File: "x.c"}).Valid() {
		t.Errorf("SourceLocation with a File reports Valid() = false")
	}
}

func TestNotConstantAt(t *testing.T) {
	err := NotConstantAt(SourceLocation{File: "f.c", Line: 1}, "call is not constant")
	if err.Kind != NotConstant {
		t.Errorf("NotConstantAt kind = %v, want NotConstant", err.Kind)
	}
}
