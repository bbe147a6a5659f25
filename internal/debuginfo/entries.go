// Package debuginfo implements C5: a hash-consed, DWARF-shaped tree of
// debug entries built from AST types and declarations (spec §4.5).
package debuginfo

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"cirt/internal/ast"
	"cirt/internal/cerrors"
)

// EntryKind is the closed debug-entry-kind enum of spec §4.5.
type EntryKind int

const (
	TypeVoid EntryKind = iota
	TypeBoolean
	TypeSignedCharacter
	TypeUnsignedCharacter
	TypeSignedInt
	TypeUnsignedInt
	TypeSignedBitPrecise
	TypeUnsignedBitPrecise
	TypeFloat
	TypeComplexFloat
	TypePointer
	TypeArray
	TypeStructure
	TypeUnion
	TypeEnumeration
	TypeFunction
	TypeConst
	TypeVolatile
	TypeRestrict
	TypeAtomic

	StructureMember
	ArraySubrange
	Enumerator
	FunctionParameter
	FunctionVararg
	Variable
	LexicalBlock
)

// EntryID indexes into Tree.Entries.
type EntryID int

// Attributes is the closed attribute bag of §4.5. Only the fields relevant
// to a given EntryKind are populated; zero values mean "absent".
type Attributes struct {
	Name          string
	Size          int64
	Alignment     int
	BitSize       int
	BitWidth      int
	BitOffset     int
	Offset        int64
	TypeRef       EntryID
	HasTypeRef    bool
	Length        int64
	ConstantUint   uint64
	HasConstant    bool
	CodeBegin      int
	CodeEnd        int
	HasCodeRange   bool
	GlobalVariableSymbol string
	ThreadLocalVariableSymbol string
	LocalVariable  *LocalVariableInfo
	External       bool
	Declaration    bool
	SourceLocation cerrors.SourceLocation
}

type LocalVariableInfo struct {
	CompositeID int
	TypeID      EntryID
	LocalOffset int64
}

// Entry is one node of the debug-info tree.
type Entry struct {
	Kind       EntryKind
	Attributes Attributes
	Children   []EntryID
}

// Tree is the hash-consed debug-entries forest produced for a translation
// unit (spec §4.5).
type Tree struct {
	Entries []Entry
	// hashCons maps an unqualified AST type's identity key to the entry
	// already emitted for it, enforcing "exactly one debug entry" per
	// distinct type (invariant 8§2).
	hashCons map[ast.TypeKey]EntryID
}

func NewTree() *Tree {
	return &Tree{hashCons: make(map[ast.TypeKey]EntryID)}
}

func (t *Tree) newEntry(kind EntryKind, attrs Attributes) EntryID {
	t.Entries = append(t.Entries, Entry{Kind: kind, Attributes: attrs})
	return EntryID(len(t.Entries) - 1)
}

func (t *Tree) addChild(parent, child EntryID) {
	t.Entries[parent].Children = append(t.Entries[parent].Children, child)
}

// Lookup returns the already-emitted entry for an unqualified type, if any
// (the "NotFound... handled by the debug-entry hash-cons lookup" recovery
// path of spec §7).
func (t *Tree) Lookup(key ast.TypeKey) (EntryID, bool) {
	id, ok := t.hashCons[key]
	return id, ok
}

// EmitType is C5's main entry point: returns the (possibly freshly built,
// possibly hash-cons-shared) debug entry id for t. Qualified types are
// never cached themselves (only their inner type is); a qualifier wrapper
// entry is built fresh every call and layered atop the cached inner entry.
func (b *Builder) EmitType(t ast.Type) (EntryID, error) {
	if q, ok := t.(*ast.QualifiedType); ok {
		inner, err := b.EmitType(q.Inner)
		if err != nil {
			return 0, err
		}
		return b.wrapQualifiers(inner, q.Quals), nil
	}

	key := t.Key()
	if id, ok := b.tree.Lookup(key); ok {
		return id, nil
	}
	return b.buildType(t, key)
}

// Builder drives tree construction against an oracle-backed size/alignment
// source (internal/targetenv) so SIZE/ALIGNMENT attributes are populated
// without re-deriving layout logic here.
type Builder struct {
	tree   *Tree
	sizer  Sizer
}

// Sizer is the narrow slice of targetenv.Oracle debuginfo needs, kept as
// its own interface so internal/debuginfo does not import
// internal/targetenv.
type Sizer interface {
	SizeAlign(t ast.Type) (size int64, align int, err error)
}

func NewBuilder(tree *Tree, sizer Sizer) *Builder {
	return &Builder{tree: tree, sizer: sizer}
}

func (b *Builder) Tree() *Tree { return b.tree }

// NewLexicalBlock opens a code-range-bearing scope entry: a function body
// (name set, spec §4.10) or a nested block such as a GNU statement
// expression (name left empty, spec §4.7). CODE_END is filled in once the
// block's instructions are all emitted, via SetCodeEnd.
func (b *Builder) NewLexicalBlock(name string, codeBegin int) EntryID {
	return b.tree.newEntry(LexicalBlock, Attributes{Name: name, CodeBegin: codeBegin, HasCodeRange: true})
}

// SetCodeEnd closes the code range opened by NewLexicalBlock.
func (b *Builder) SetCodeEnd(id EntryID, codeEnd int) {
	b.tree.Entries[id].Attributes.CodeEnd = codeEnd
}

// AddParameter attaches a FUNCTION_PARAMETER child to a function's lexical
// block, mirroring the parameter children TypeFunction itself carries
// (spec §4.10).
func (b *Builder) AddParameter(parent EntryID, name string, paramType ast.Type) error {
	typeID, err := b.EmitType(paramType)
	if err != nil {
		return err
	}
	child := b.tree.newEntry(FunctionParameter, Attributes{Name: name, TypeRef: typeID, HasTypeRef: true})
	b.tree.addChild(parent, child)
	return nil
}

// AddLocalVariable attaches a VARIABLE child carrying object-scope debug
// info (its stack slot, spec §4.10) to a function's or block's lexical
// entry.
func (b *Builder) AddLocalVariable(parent EntryID, name string, varType ast.Type, slot int) error {
	typeID, err := b.EmitType(varType)
	if err != nil {
		return err
	}
	child := b.tree.newEntry(Variable, Attributes{
		Name:       name,
		TypeRef:    typeID,
		HasTypeRef: true,
		LocalVariable: &LocalVariableInfo{
			TypeID:      typeID,
			LocalOffset: int64(slot),
		},
	})
	b.tree.addChild(parent, child)
	return nil
}

func (b *Builder) wrapQualifiers(inner EntryID, q ast.Qualifiers) EntryID {
	id := inner
	if q.Restrict {
		id = b.tree.newEntry(TypeRestrict, Attributes{TypeRef: id, HasTypeRef: true})
	}
	if q.Atomic {
		id = b.tree.newEntry(TypeAtomic, Attributes{TypeRef: id, HasTypeRef: true})
	}
	if q.Volatile {
		id = b.tree.newEntry(TypeVolatile, Attributes{TypeRef: id, HasTypeRef: true})
	}
	if q.Const {
		id = b.tree.newEntry(TypeConst, Attributes{TypeRef: id, HasTypeRef: true})
	}
	return id
}

func (b *Builder) buildType(t ast.Type, key ast.TypeKey) (EntryID, error) {
	switch v := t.(type) {
	case *ast.PointerType:
		// Cycle-breaking (spec §9): register before recursing so a
		// self-referential struct-pointer (linked list) finds the
		// partially-built entry instead of recursing forever.
		id := b.tree.newEntry(TypePointer, Attributes{})
		b.tree.hashCons[key] = id
		size, align, err := b.sizer.SizeAlign(t)
		if err != nil {
			return 0, err
		}
		b.tree.Entries[id].Attributes.Size = size
		b.tree.Entries[id].Attributes.Alignment = align
		inner, err := b.EmitType(v.Referenced)
		if err != nil {
			return 0, err
		}
		b.tree.Entries[id].Attributes.TypeRef = inner
		b.tree.Entries[id].Attributes.HasTypeRef = true
		return id, nil

	case *ast.ArrayType:
		id := b.tree.newEntry(TypeArray, Attributes{})
		b.tree.hashCons[key] = id
		elem, err := b.EmitType(v.Element)
		if err != nil {
			return 0, err
		}
		b.tree.Entries[id].Attributes.TypeRef = elem
		b.tree.Entries[id].Attributes.HasTypeRef = true
		if v.Boundary.Kind == ast.Bounded || v.Boundary.Kind == ast.BoundedStatic {
			sub := b.tree.newEntry(ArraySubrange, Attributes{Length: v.Boundary.Count})
			b.tree.addChild(id, sub)
		}
		return id, nil

	case *ast.StructureType:
		kind := TypeStructure
		if v.IsUnion {
			kind = TypeUnion
		}
		id := b.tree.newEntry(kind, Attributes{Name: v.Identifier, Declaration: !v.Complete})
		b.tree.hashCons[key] = id
		if !v.Complete {
			return id, nil
		}
		size, align, err := b.sizer.SizeAlign(t)
		if err != nil {
			return 0, err
		}
		b.tree.Entries[id].Attributes.Size = size
		b.tree.Entries[id].Attributes.Alignment = align
		var offset int64
		for _, f := range v.Fields {
			fsize, falign, ferr := b.sizer.SizeAlign(f.Type)
			if ferr != nil {
				return 0, ferr
			}
			offset = alignUp(offset, falign)
			memberType, err := b.EmitType(f.Type)
			if err != nil {
				return 0, err
			}
			attrs := Attributes{Name: f.Name, TypeRef: memberType, HasTypeRef: true, Offset: offset}
			if f.BitField {
				attrs.BitWidth = bitWidthOf(f)
			}
			member := b.tree.newEntry(StructureMember, attrs)
			b.tree.addChild(id, member)
			if !v.IsUnion {
				offset += fsize
			}
		}
		return id, nil

	case *ast.EnumerationType:
		// Registered before recursing into the underlying type to
		// terminate typedef-chain cycles (spec §4.5 / §9).
		id := b.tree.newEntry(TypeEnumeration, Attributes{Name: v.Identifier, Declaration: !v.Complete})
		b.tree.hashCons[key] = id
		underlying, err := b.EmitType(v.Underlying)
		if err != nil {
			return 0, err
		}
		b.tree.Entries[id].Attributes.TypeRef = underlying
		b.tree.Entries[id].Attributes.HasTypeRef = true
		for _, e := range v.Enumerators {
			attrs := Attributes{Name: e.Name}
			if ce, ok := e.Value.(*ast.ConstantExpr); ok {
				if iv, ok := ce.Value.(int64); ok {
					attrs.ConstantUint = uint64(iv)
					attrs.HasConstant = true
				}
			}
			child := b.tree.newEntry(Enumerator, attrs)
			b.tree.addChild(id, child)
		}
		return id, nil

	case *ast.FunctionType:
		id := b.tree.newEntry(TypeFunction, Attributes{})
		b.tree.hashCons[key] = id
		ret, err := b.EmitType(v.Return)
		if err != nil {
			return 0, err
		}
		b.tree.Entries[id].Attributes.TypeRef = ret
		b.tree.Entries[id].Attributes.HasTypeRef = true
		for _, p := range v.Parameters {
			if p.Type == nil {
				continue // K&R mode with no type yet
			}
			ptype, err := b.EmitType(p.Type)
			if err != nil {
				return 0, err
			}
			child := b.tree.newEntry(FunctionParameter, Attributes{Name: p.Name, TypeRef: ptype, HasTypeRef: true})
			b.tree.addChild(id, child)
		}
		if v.Ellipsis {
			b.tree.addChild(id, b.tree.newEntry(FunctionVararg, Attributes{}))
		}
		return id, nil
	}

	// Plain scalar kinds.
	kind, err := scalarEntryKind(t)
	if err != nil {
		return 0, err
	}
	size, align, serr := b.sizer.SizeAlign(t)
	if serr != nil {
		return 0, serr
	}
	attrs := Attributes{Size: size, Alignment: align}
	if bp, ok := t.(ast.BitPreciseType); ok {
		attrs.BitSize = bp.Width
	}
	id := b.tree.newEntry(kind, attrs)
	b.tree.hashCons[key] = id
	return id, nil
}

func bitWidthOf(f ast.Field) int {
	if ce, ok := f.BitWidth.(*ast.ConstantExpr); ok {
		if v, ok := ce.Value.(int64); ok {
			return int(v)
		}
	}
	return 0
}

func scalarEntryKind(t ast.Type) (EntryKind, error) {
	switch t.Kind() {
	case ast.KindVoid:
		return TypeVoid, nil
	case ast.KindBool:
		return TypeBoolean, nil
	case ast.KindSignedChar:
		return TypeSignedCharacter, nil
	case ast.KindUnsignedChar, ast.KindChar:
		return TypeUnsignedCharacter, nil
	case ast.KindShort, ast.KindInt, ast.KindLong, ast.KindLongLong:
		it := t.(ast.IntegerType)
		if it.Signed {
			return TypeSignedInt, nil
		}
		return TypeUnsignedInt, nil
	case ast.KindBitPrecise:
		bp := t.(ast.BitPreciseType)
		if bp.Signed {
			return TypeSignedBitPrecise, nil
		}
		return TypeUnsignedBitPrecise, nil
	case ast.KindFloat, ast.KindDouble, ast.KindLongDouble:
		return TypeFloat, nil
	case ast.KindComplexFloat, ast.KindComplexDouble, ast.KindComplexLongDouble:
		return TypeComplexFloat, nil
	case ast.KindNullPointer:
		return TypePointer, nil
	}
	return 0, cerrors.New(cerrors.InvalidParameter, "no scalar debug-entry kind for type")
}

func alignUp(v int64, align int) int64 {
	if align <= 1 {
		return v
	}
	a := int64(align)
	return (v + a - 1) / a * a
}

// String renders a human-readable dump of the tree for diagnostics,
// iterating the hash-cons map in a deterministic (sorted) order the way
// the teacher's internal/reporting sorts map keys before formatting, using
// golang.org/x/exp/maps + slices.
func (t *Tree) String() string {
	keys := maps.Values(t.hashCons)
	slices.Sort(keys)
	out := ""
	for _, id := range keys {
		e := t.Entries[id]
		out += fmt.Sprintf("#%d %v size=%s align=%d\n", id, e.Kind, humanize.Bytes(uint64(e.Attributes.Size)), e.Attributes.Alignment)
	}
	return out
}
