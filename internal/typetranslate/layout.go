// Package typetranslate implements C4: turning an AST type into a flat IR
// typeentry sequence plus a parallel TypeLayout tree (spec §4.4).
package typetranslate

import (
	"cirt/internal/ast"
	"cirt/internal/cerrors"
	"cirt/internal/ir"
	"cirt/internal/targetenv"
)

// TypeLayout is the parallel shadow of an ast.Type (spec §3). Per the
// redesign note in SPEC_FULL.md §5 ("arena + stable index"), layouts live
// in a Context-owned arena (`[]*TypeLayout`) and Parent/Value are indices,
// never raw cross-struct pointers that could dangle as the arena grows.
type TypeLayout struct {
	Type      ast.Type
	Alignment int
	Value     int // index into the builder's typeentry list
	Parent    int // index into the owning Context's layout arena, -1 if root

	ArrayLayout     *ArrayLayout
	StructureLayout *StructureLayout
	VLArray         *VLArrayLayout
}

type ArrayLayout struct {
	ElementLayoutIdx int
}

type StructMember struct {
	Identifier    string // empty for anonymous members
	LayoutIdx     int
	Bitfield      bool
	BitfieldProps BitfieldProps
}

type BitfieldProps struct {
	Offset int
	Width  int
}

type StructureLayout struct {
	Members []StructMember
}

// VLArrayLayout records which struct-field-slots of the fixed two-word
// {void*, size_t} VLA descriptor hold the pointer and the length (spec
// §4.4).
type VLArrayLayout struct {
	ArrayPtrFieldIndex  int
	ArraySizeFieldIndex int
}

// Context owns the layout arena for one translation unit (spec §5's
// "per-translation-unit memory context").
type Context struct {
	Layouts []*TypeLayout
	Oracle  targetenv.Oracle
}

func NewContext(oracle targetenv.Oracle) *Context {
	return &Context{Oracle: oracle}
}

func (c *Context) newLayout(t ast.Type, parent int) (*TypeLayout, int) {
	l := &TypeLayout{Type: t, Parent: parent}
	c.Layouts = append(c.Layouts, l)
	return l, len(c.Layouts) - 1
}

// Builder accumulates the flat IR typeentry list being emitted for one
// object-type translation, generalizing ir.Builder's append-and-index
// pattern to type entries instead of instructions.
type Builder struct {
	Entries []ir.TypeEntry
}

func (b *Builder) Append(e ir.TypeEntry) int {
	b.Entries = append(b.Entries, e)
	return len(b.Entries) - 1
}

// TranslateObjectType is C4's main entry point (spec §4.4):
// `translate_object_type(type, alignment, builder, &layout_out)`.
// wantLayout selects whether a TypeLayout is built (callers that only need
// the flat typeentries, like a parameter list, can skip it).
func (c *Context) TranslateObjectType(t ast.Type, builder *Builder, wantLayout bool, parentLayout int) (layoutIdx int, err error) {
	switch v := t.(type) {
	case *ast.QualifiedType:
		idx, err := c.TranslateObjectType(v.Inner, builder, wantLayout, parentLayout)
		if err != nil {
			return -1, err
		}
		if v.Quals.Atomic && idx >= 0 {
			lastEntry := idx
			if wantLayout {
				lastEntry = c.layoutValueIndex(idx)
			}
			if lastEntry >= 0 && lastEntry < len(builder.Entries) {
				builder.Entries[lastEntry].Atomic = true
			}
		}
		return idx, nil
	case *ast.ArrayType:
		return c.translateArray(v, builder, wantLayout, parentLayout)
	case *ast.StructureType:
		return c.translateStructure(v, builder, wantLayout, parentLayout)
	case *ast.EnumerationType:
		return c.TranslateObjectType(v.Underlying, builder, wantLayout, parentLayout)
	case *ast.FunctionType:
		return -1, cerrors.New(cerrors.InvalidParameter, "function types cannot be translated as object types")
	case *ast.PointerType:
		entryIdx := builder.Append(ir.TypeEntry{Code: ir.TCWord, Alignment: c.Oracle.Config().PointerWidth / 8})
		if !wantLayout {
			return entryIdx, nil
		}
		l, idx := c.newLayout(t, parentLayout)
		l.Value = entryIdx
		l.Alignment = c.Oracle.Config().PointerWidth / 8
		return idx, nil
	}
	return c.translateScalar(t, builder, wantLayout, parentLayout)
}

func (c *Context) layoutValueIndex(layoutIdx int) int {
	if layoutIdx < 0 || layoutIdx >= len(c.Layouts) {
		return -1
	}
	return c.Layouts[layoutIdx].Value
}

func (c *Context) translateScalar(t ast.Type, builder *Builder, wantLayout bool, parentLayout int) (int, error) {
	cfg := c.Oracle.Config()
	var code ir.TypeCode
	var align int
	switch t.Kind() {
	case ast.KindBool:
		code, align = ir.TCBool, cfg.BoolWidth/8
	case ast.KindChar, ast.KindSignedChar, ast.KindUnsignedChar:
		code, align = ir.TCChar, cfg.CharWidth/8
	case ast.KindShort:
		code, align = ir.TCShort, cfg.ShortWidth/8
	case ast.KindInt:
		code, align = ir.TCInt, cfg.IntWidth/8
	case ast.KindLong, ast.KindLongLong:
		code, align = ir.TCLong, cfg.LongWidth/8
	case ast.KindBitPrecise:
		bp := t.(ast.BitPreciseType)
		code, align = ir.TCLong, (bp.Width+7)/8
	case ast.KindFloat:
		code, align = ir.TCFloat32, cfg.FloatWidth/8
	case ast.KindDouble:
		code, align = ir.TCFloat64, cfg.DoubleWidth/8
	case ast.KindLongDouble:
		code, align = ir.TCLongDouble, cfg.LongDoubleAlign
	case ast.KindComplexFloat:
		code, align = ir.TCComplexFloat32, cfg.FloatWidth/8
	case ast.KindComplexDouble:
		code, align = ir.TCComplexFloat64, cfg.DoubleWidth/8
	case ast.KindComplexLongDouble:
		code, align = ir.TCComplexLongDouble, cfg.LongDoubleAlign
	case ast.KindNullPointer:
		code, align = ir.TCWord, cfg.PointerWidth/8
	case ast.KindVoid:
		if align == 0 {
			align = 1
		}
		code = ir.TCChar
	default:
		return -1, cerrors.New(cerrors.InvalidParameter, "unsupported scalar type in object-type translation")
	}
	entryIdx := builder.Append(ir.TypeEntry{Code: code, Alignment: align})
	if !wantLayout {
		return entryIdx, nil
	}
	l, idx := c.newLayout(t, parentLayout)
	l.Value = entryIdx
	l.Alignment = align
	return idx, nil
}

func (c *Context) translateArray(a *ast.ArrayType, builder *Builder, wantLayout bool, parentLayout int) (int, error) {
	switch a.Boundary.Kind {
	case ast.VLA, ast.VLAStatic:
		return c.translateVLA(a, builder, wantLayout, parentLayout)
	}
	count := 0
	switch a.Boundary.Kind {
	case ast.Bounded, ast.BoundedStatic:
		count = int(a.Boundary.Count)
	case ast.Unbounded:
		count = 0 // flexible array member, spec §8 boundary behavior
	}
	headerIdx := builder.Append(ir.TypeEntry{Code: ir.TCArray, Param: count})
	elemLayoutIdx, err := c.TranslateObjectType(a.Element, builder, wantLayout, parentLayout)
	if err != nil {
		return -1, err
	}
	if !wantLayout {
		return headerIdx, nil
	}
	l, idx := c.newLayout(a, parentLayout)
	l.Value = headerIdx
	l.Alignment = c.Layouts[elemLayoutIdx].Alignment
	l.ArrayLayout = &ArrayLayout{ElementLayoutIdx: elemLayoutIdx}
	c.Layouts[elemLayoutIdx].Parent = idx
	return idx, nil
}

func (c *Context) translateVLA(a *ast.ArrayType, builder *Builder, wantLayout bool, parentLayout int) (int, error) {
	cfg := c.Oracle.Config()
	headerIdx := builder.Append(ir.TypeEntry{Code: ir.TCStruct, Param: 2})
	ptrFieldIdx := builder.Append(ir.TypeEntry{Code: ir.TCWord, Alignment: cfg.PointerWidth / 8})
	sizeFieldIdx := builder.Append(ir.TypeEntry{Code: ir.TCLong, Alignment: cfg.LongWidth / 8})
	if !wantLayout {
		return headerIdx, nil
	}
	l, idx := c.newLayout(a, parentLayout)
	l.Value = headerIdx
	l.Alignment = cfg.PointerWidth / 8
	l.VLArray = &VLArrayLayout{ArrayPtrFieldIndex: ptrFieldIdx, ArraySizeFieldIndex: sizeFieldIdx}
	return idx, nil
}

func (c *Context) translateStructure(s *ast.StructureType, builder *Builder, wantLayout bool, parentLayout int) (int, error) {
	cfg := c.Oracle.Config()
	code := ir.TCStruct
	if s.IsUnion {
		code = ir.TCUnion
	}
	headerIdx := builder.Append(ir.TypeEntry{Code: code, Param: len(s.Fields)})

	var l *TypeLayout
	var idx int
	if wantLayout {
		l, idx = c.newLayout(s, parentLayout)
		l.Value = headerIdx
		l.StructureLayout = &StructureLayout{}
	}

	if len(s.Fields) == 0 {
		if cfg.EmptyStructsGetFiller {
			builder.Append(ir.TypeEntry{Code: ir.TCChar, Alignment: 1})
			if wantLayout {
				l.Alignment = 1
			}
		} else if wantLayout {
			l.Alignment = 0
		}
		if wantLayout {
			if s.Packed {
				targetenvCoercePacked(builder, headerIdx, len(builder.Entries))
			}
			return idx, nil
		}
		return headerIdx, nil
	}

	allocator := targetenv.NewBitFieldAllocator(cfg.BitFieldStorageUnitBits)
	maxAlign := 1
	for _, f := range s.Fields {
		if f.BitField {
			width, werr := constantWidth(f.BitWidth)
			if werr != nil {
				return -1, werr
			}
			if width == 0 {
				allocator.Reset()
				continue
			}
			colocated := allocator.HasRun()
			placement, perr := allocator.Next(colocated, width, ir.TCInt)
			if perr != nil {
				allocator.Reset()
				placement, perr = allocator.Next(false, width, ir.TCInt)
				if perr != nil {
					return -1, perr
				}
				storageIdx := builder.Append(ir.TypeEntry{Code: ir.TCInt, Alignment: cfg.IntWidth / 8})
				if wantLayout {
					member := StructMember{Identifier: f.Name, LayoutIdx: -1, Bitfield: true,
						BitfieldProps: BitfieldProps{Offset: placement.OffsetInStorage, Width: placement.Width}}
					_ = storageIdx
					l.StructureLayout.Members = append(l.StructureLayout.Members, member)
				}
			} else if wantLayout {
				member := StructMember{Identifier: f.Name, LayoutIdx: -1, Bitfield: true,
					BitfieldProps: BitfieldProps{Offset: placement.OffsetInStorage, Width: placement.Width}}
				l.StructureLayout.Members = append(l.StructureLayout.Members, member)
			}
			if cfg.IntWidth/8 > maxAlign {
				maxAlign = cfg.IntWidth / 8
			}
			continue
		}
		allocator.Reset()
		fieldLayoutIdx, ferr := c.TranslateObjectType(f.Type, builder, wantLayout, idx)
		if ferr != nil {
			return -1, ferr
		}
		if wantLayout {
			fieldAlign := c.Layouts[fieldLayoutIdx].Alignment
			if fieldAlign > maxAlign {
				maxAlign = fieldAlign
			}
			l.StructureLayout.Members = append(l.StructureLayout.Members, StructMember{
				Identifier: f.Name, LayoutIdx: fieldLayoutIdx,
			})
		}
	}
	if wantLayout {
		l.Alignment = maxAlign
		if s.Packed {
			l.Alignment = 1
			targetenvCoercePacked(builder, headerIdx, len(builder.Entries))
		}
		return idx, nil
	}
	if s.Packed {
		targetenvCoercePacked(builder, headerIdx, len(builder.Entries))
	}
	return headerIdx, nil
}

// targetenvCoercePacked is the "packed" post-pass of §4.1: coerce
// alignment==0 to 1 across the struct's just-emitted entry range.
func targetenvCoercePacked(builder *Builder, lo, hi int) {
	for i := lo; i < hi && i < len(builder.Entries); i++ {
		if builder.Entries[i].Alignment == 0 {
			builder.Entries[i].Alignment = 1
		}
	}
}

func constantWidth(e ast.Expr) (int, error) {
	ce, ok := e.(*ast.ConstantExpr)
	if !ok {
		return 0, cerrors.New(cerrors.InvalidState, "bit-field width must already be constant-folded before C4 runs")
	}
	switch v := ce.Value.(type) {
	case int64:
		return int(v), nil
	case int:
		return v, nil
	}
	return 0, cerrors.New(cerrors.InvalidState, "bit-field width constant has unsupported representation")
}
