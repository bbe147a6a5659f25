package typetranslate

import (
	"testing"

	"cirt/internal/ast"
	"cirt/internal/ir"
	"cirt/internal/targetenv"
)

func newTestContext() *Context {
	return NewContext(targetenv.NewDefaultOracle(targetenv.DefaultConfig()))
}

func TestTranslateObjectTypeScalarAppendsOneEntry(t *testing.T) {
	c := newTestContext()
	b := &Builder{}
	idx, err := c.TranslateObjectType(ast.NewInt(true), b, true, -1)
	if err != nil {
		t.Fatalf("TranslateObjectType(int) error: %v", err)
	}
	if len(b.Entries) != 1 || b.Entries[0].Code != ir.TCInt {
		t.Fatalf("Entries = %+v, want one TCInt entry", b.Entries)
	}
	if c.Layouts[idx].Type != ast.Type(ast.NewInt(true)) {
		t.Errorf("Layouts[idx].Type = %v, want int", c.Layouts[idx].Type)
	}
}

func TestTranslateObjectTypeWithoutLayoutSkipsArena(t *testing.T) {
	c := newTestContext()
	b := &Builder{}
	if _, err := c.TranslateObjectType(ast.Double, b, false, -1); err != nil {
		t.Fatalf("TranslateObjectType(double) error: %v", err)
	}
	if len(c.Layouts) != 0 {
		t.Errorf("wantLayout=false still populated the layout arena: %+v", c.Layouts)
	}
}

func TestTranslateObjectTypeQualifiedStripsWrapper(t *testing.T) {
	c := newTestContext()
	b := &Builder{}
	q := &ast.QualifiedType{Inner: ast.NewInt(true), Quals: ast.Qualifiers{Const: true}}
	idx, err := c.TranslateObjectType(q, b, true, -1)
	if err != nil {
		t.Fatalf("TranslateObjectType(qualified int) error: %v", err)
	}
	if c.Layouts[idx].Type != ast.Type(ast.NewInt(true)) {
		t.Errorf("qualified layout Type = %v, want unwrapped int", c.Layouts[idx].Type)
	}
}

func TestTranslateObjectTypeQualifiedAtomicMarksEntry(t *testing.T) {
	c := newTestContext()
	b := &Builder{}
	q := &ast.QualifiedType{Inner: ast.NewInt(true), Quals: ast.Qualifiers{Atomic: true}}
	idx, err := c.TranslateObjectType(q, b, true, -1)
	if err != nil {
		t.Fatalf("TranslateObjectType(atomic int) error: %v", err)
	}
	entry := b.Entries[c.Layouts[idx].Value]
	if !entry.Atomic {
		t.Errorf("atomic-qualified entry.Atomic = false, want true")
	}
}

func TestTranslateObjectTypeFunctionRejected(t *testing.T) {
	c := newTestContext()
	b := &Builder{}
	fn := &ast.FunctionType{Return: ast.Void, Mode: ast.ParamEmpty}
	if _, err := c.TranslateObjectType(fn, b, true, -1); err == nil {
		t.Errorf("TranslateObjectType(function type) = nil error, want error")
	}
}

func TestTranslateObjectTypeBoundedArrayBuildsElementLayout(t *testing.T) {
	c := newTestContext()
	b := &Builder{}
	arr := &ast.ArrayType{Element: ast.NewInt(true), Boundary: ast.ArrayBoundary{Kind: ast.Bounded, Count: 4}}
	idx, err := c.TranslateObjectType(arr, b, true, -1)
	if err != nil {
		t.Fatalf("TranslateObjectType(array) error: %v", err)
	}
	layout := c.Layouts[idx]
	if layout.ArrayLayout == nil {
		t.Fatalf("array layout.ArrayLayout is nil")
	}
	elem := c.Layouts[layout.ArrayLayout.ElementLayoutIdx]
	if elem.Parent != idx {
		t.Errorf("element layout Parent = %d, want %d", elem.Parent, idx)
	}
	if b.Entries[layout.Value].Code != ir.TCArray || b.Entries[layout.Value].Param != 4 {
		t.Errorf("array header entry = %+v, want TCArray with Param 4", b.Entries[layout.Value])
	}
}

func TestTranslateObjectTypeVLAEmitsTwoWordDescriptor(t *testing.T) {
	c := newTestContext()
	b := &Builder{}
	arr := &ast.ArrayType{Element: ast.NewInt(true), Boundary: ast.ArrayBoundary{Kind: ast.VLA}}
	idx, err := c.TranslateObjectType(arr, b, true, -1)
	if err != nil {
		t.Fatalf("TranslateObjectType(VLA) error: %v", err)
	}
	layout := c.Layouts[idx]
	if layout.VLArray == nil {
		t.Fatalf("VLA layout.VLArray is nil")
	}
	if b.Entries[layout.Value].Code != ir.TCStruct || b.Entries[layout.Value].Param != 2 {
		t.Errorf("VLA header entry = %+v, want TCStruct with Param 2", b.Entries[layout.Value])
	}
}
