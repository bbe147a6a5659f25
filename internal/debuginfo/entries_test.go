package debuginfo

import (
	"testing"

	"cirt/internal/ast"
)

type fakeSizer struct{}

func (fakeSizer) SizeAlign(t ast.Type) (int64, int, error) {
	switch t.Kind() {
	case ast.KindInt:
		return 4, 4, nil
	case ast.KindChar, ast.KindSignedChar, ast.KindUnsignedChar:
		return 1, 1, nil
	case ast.KindPointer:
		return 8, 8, nil
	}
	return 0, 0, nil
}

func newTestBuilder() *Builder {
	return NewBuilder(NewTree(), fakeSizer{})
}

func TestEmitTypeHashConsesRepeatedScalar(t *testing.T) {
	b := newTestBuilder()
	id1, err := b.EmitType(ast.NewInt(true))
	if err != nil {
		t.Fatalf("EmitType(int) error: %v", err)
	}
	id2, err := b.EmitType(ast.NewInt(true))
	if err != nil {
		t.Fatalf("EmitType(int) second call error: %v", err)
	}
	if id1 != id2 {
		t.Errorf("EmitType(int) twice = %d, %d, want equal (hash-consed)", id1, id2)
	}
	if len(b.Tree().Entries) != 1 {
		t.Errorf("Tree has %d entries, want 1", len(b.Tree().Entries))
	}
}

func TestEmitTypeQualifiedNeverShares(t *testing.T) {
	b := newTestBuilder()
	q := &ast.QualifiedType{Inner: ast.NewInt(true), Quals: ast.Qualifiers{Const: true}}
	id1, err := b.EmitType(q)
	if err != nil {
		t.Fatalf("EmitType(const int) error: %v", err)
	}
	id2, err := b.EmitType(q)
	if err != nil {
		t.Fatalf("EmitType(const int) second call error: %v", err)
	}
	if id1 == id2 {
		t.Errorf("EmitType(const int) twice shared an entry, want a fresh wrapper each call")
	}
	if b.Tree().Entries[id1].Kind != TypeConst {
		t.Errorf("qualified entry kind = %v, want TypeConst", b.Tree().Entries[id1].Kind)
	}
}

func TestEmitTypePointerSelfReferenceBreaksCycle(t *testing.T) {
	b := newTestBuilder()
	node := &ast.StructureType{Complete: true, Identifier: "node"}
	ptr := &ast.PointerType{Referenced: node}
	node.Fields = []ast.Field{{Name: "next", Type: ptr}}

	id, err := b.EmitType(node)
	if err != nil {
		t.Fatalf("EmitType(self-referential struct) error: %v", err)
	}
	entry := b.Tree().Entries[id]
	if len(entry.Children) != 1 {
		t.Fatalf("struct entry has %d children, want 1", len(entry.Children))
	}
	member := b.Tree().Entries[entry.Children[0]]
	ptrEntry := b.Tree().Entries[member.Attributes.TypeRef]
	if ptrEntry.Kind != TypePointer {
		t.Errorf("member type entry kind = %v, want TypePointer", ptrEntry.Kind)
	}
}

func TestEmitTypeArrayWithBoundedSubrange(t *testing.T) {
	b := newTestBuilder()
	arr := &ast.ArrayType{Element: ast.NewInt(true), Boundary: ast.ArrayBoundary{Kind: ast.Bounded, Count: 5}}
	id, err := b.EmitType(arr)
	if err != nil {
		t.Fatalf("EmitType(array) error: %v", err)
	}
	entry := b.Tree().Entries[id]
	if entry.Kind != TypeArray {
		t.Fatalf("entry kind = %v, want TypeArray", entry.Kind)
	}
	if len(entry.Children) != 1 {
		t.Fatalf("array entry has %d children, want 1 subrange", len(entry.Children))
	}
	sub := b.Tree().Entries[entry.Children[0]]
	if sub.Kind != ArraySubrange || sub.Attributes.Length != 5 {
		t.Errorf("subrange = %+v, want Length 5", sub)
	}
}

func TestLookupReportsMissingKey(t *testing.T) {
	tree := NewTree()
	if _, ok := tree.Lookup(ast.NewInt(true).Key()); ok {
		t.Errorf("Lookup() on empty tree reported found, want not found")
	}
}

func TestNewLexicalBlockSetCodeEndRoundTrips(t *testing.T) {
	b := newTestBuilder()
	id := b.NewLexicalBlock("add", 3)
	entry := b.Tree().Entries[id]
	if entry.Kind != LexicalBlock || entry.Attributes.Name != "add" || entry.Attributes.CodeBegin != 3 || !entry.Attributes.HasCodeRange {
		t.Fatalf("entry = %+v, want LexicalBlock \"add\" CodeBegin=3 HasCodeRange", entry)
	}
	b.SetCodeEnd(id, 9)
	if b.Tree().Entries[id].Attributes.CodeEnd != 9 {
		t.Errorf("CodeEnd = %d, want 9", b.Tree().Entries[id].Attributes.CodeEnd)
	}
}

func TestAddParameterAttachesTypedChild(t *testing.T) {
	b := newTestBuilder()
	fn := b.NewLexicalBlock("f", 0)
	if err := b.AddParameter(fn, "a", ast.NewInt(true)); err != nil {
		t.Fatalf("AddParameter() error: %v", err)
	}
	entry := b.Tree().Entries[fn]
	if len(entry.Children) != 1 {
		t.Fatalf("function entry has %d children, want 1", len(entry.Children))
	}
	param := b.Tree().Entries[entry.Children[0]]
	if param.Kind != FunctionParameter || param.Attributes.Name != "a" || !param.Attributes.HasTypeRef {
		t.Errorf("parameter entry = %+v, want FunctionParameter \"a\" with a type ref", param)
	}
}

func TestAddLocalVariableCarriesStackSlot(t *testing.T) {
	b := newTestBuilder()
	fn := b.NewLexicalBlock("f", 0)
	if err := b.AddLocalVariable(fn, "a", ast.NewInt(true), 2); err != nil {
		t.Fatalf("AddLocalVariable() error: %v", err)
	}
	entry := b.Tree().Entries[fn]
	variable := b.Tree().Entries[entry.Children[0]]
	if variable.Kind != Variable || variable.Attributes.LocalVariable == nil {
		t.Fatalf("variable entry = %+v, want Variable with LocalVariable set", variable)
	}
	if variable.Attributes.LocalVariable.LocalOffset != 2 {
		t.Errorf("LocalOffset = %d, want 2", variable.Attributes.LocalVariable.LocalOffset)
	}
}
