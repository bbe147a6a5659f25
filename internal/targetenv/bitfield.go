package targetenv

import (
	"cirt/internal/cerrors"
	"cirt/internal/ir"
)

// BitFieldPlacement is the result of one allocator step (spec §4.1):
// where, within the current storage unit, this bit-field's bits start, and
// how wide it is.
type BitFieldPlacement struct {
	OffsetInStorage int
	Width           int
}

// BitFieldAllocator is the per-struct-translation state machine of §4.1.
// It colocates consecutive bit-fields sharing a storage unit into one
// allocated integer typeentry; once a field would exceed the unit,
// Next returns OutOfSpace and the caller allocates fresh storage and
// retries with colocated=false. A zero-width bit-field forces Reset
// (handled by the caller, which never calls Next with width 0).
type BitFieldAllocator struct {
	storageUnitBits int
	used            int // bits used in the current storage unit
	ran             bool
	sameUnitAsLast  bool
}

func NewBitFieldAllocator(storageUnitBits int) *BitFieldAllocator {
	return &BitFieldAllocator{storageUnitBits: storageUnitBits}
}

// Reset starts a fresh storage unit - called when a non-bit-field field is
// encountered, or when a zero-width bit-field forces reset.
func (a *BitFieldAllocator) Reset() {
	a.used = 0
	a.ran = false
	a.sameUnitAsLast = false
}

// HasRun reports whether Next has been called since the last Reset (i.e.
// whether colocation with a prior bit-field in this unit is possible).
func (a *BitFieldAllocator) HasRun() bool { return a.ran }

// Next allocates width bits, either colocated into the current storage
// unit (colocated=true, only valid when HasRun()) or starting a fresh unit
// (colocated=false). Returns cerrors.OutOfSpace if width does not fit in
// the remaining bits of the current unit when colocated is requested.
func (a *BitFieldAllocator) Next(colocated bool, width int, typecode ir.TypeCode) (BitFieldPlacement, error) {
	if !colocated || !a.ran {
		a.used = 0
		a.ran = true
		a.sameUnitAsLast = false
	} else {
		a.sameUnitAsLast = true
	}
	if a.used+width > a.storageUnitBits {
		return BitFieldPlacement{}, cerrors.New(cerrors.OutOfSpace, "bit-field does not fit current storage unit")
	}
	placement := BitFieldPlacement{OffsetInStorage: a.used, Width: width}
	a.used += width
	return placement, nil
}
