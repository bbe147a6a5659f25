package targetenv

import (
	"testing"

	"cirt/internal/ir"
)

func TestBitFieldAllocatorColocatesWithinStorageUnit(t *testing.T) {
	a := NewBitFieldAllocator(32)

	p1, err := a.Next(false, 4, ir.TCInt)
	if err != nil {
		t.Fatalf("Next() first field: %v", err)
	}
	if p1.OffsetInStorage != 0 {
		t.Errorf("first placement offset = %d, want 0", p1.OffsetInStorage)
	}

	p2, err := a.Next(true, 10, ir.TCInt)
	if err != nil {
		t.Fatalf("Next() colocated field: %v", err)
	}
	if p2.OffsetInStorage != 4 {
		t.Errorf("colocated placement offset = %d, want 4", p2.OffsetInStorage)
	}
}

func TestBitFieldAllocatorOutOfSpaceWhenExceedingUnit(t *testing.T) {
	a := NewBitFieldAllocator(8)
	if _, err := a.Next(false, 6, ir.TCInt); err != nil {
		t.Fatalf("Next() first field: %v", err)
	}
	if _, err := a.Next(true, 4, ir.TCInt); err == nil {
		t.Errorf("Next() colocated overflow = nil error, want OutOfSpace")
	}
}

func TestBitFieldAllocatorResetStartsFreshUnit(t *testing.T) {
	a := NewBitFieldAllocator(8)
	if _, err := a.Next(false, 6, ir.TCInt); err != nil {
		t.Fatalf("Next() first field: %v", err)
	}
	a.Reset()
	if a.HasRun() {
		t.Errorf("HasRun() after Reset() = true, want false")
	}
	p, err := a.Next(false, 6, ir.TCInt)
	if err != nil {
		t.Fatalf("Next() after Reset(): %v", err)
	}
	if p.OffsetInStorage != 0 {
		t.Errorf("placement after Reset() offset = %d, want 0", p.OffsetInStorage)
	}
}
