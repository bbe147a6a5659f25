// Package ast defines the typed, semantically-analyzed AST this module
// consumes (spec §6: produced by an external lexer/parser/semantic analyzer,
// out of scope here). The shapes mirror the sum types of spec.md §3, built
// as a tagged-variant hierarchy with Accept-style dispatch generalized from
// the teacher's internal/parser/ast.go and internal/parser/stmt.go visitor
// pattern (see DESIGN.md).
package ast

// Type is the AstType sum of spec.md §3. It is implemented by the concrete
// types below; TypeKind reports which variant a value holds.
type Type interface {
	Kind() TypeKind
	// Key returns a stable identity for hash-consing (debuginfo) purposes.
	// For named aggregate/enum types this is pointer identity of the
	// concrete value; for scalar types it is the kind itself since scalars
	// have no per-occurrence identity to hash-cons on.
	Key() TypeKey
}

// TypeKey is used by internal/debuginfo to hash-cons debug entries: distinct
// occurrences of the "same" aggregate/enum type share a key, distinct
// occurrences of an otherwise-identical scalar type do not need to (they are
// value-equal and cheap to re-emit, but sharing is harmless).
type TypeKey struct {
	kind TypeKind
	ptr  any // pointer identity for aggregate/enum/function types
}

type TypeKind int

const (
	KindVoid TypeKind = iota
	KindBool
	KindSignedChar
	KindUnsignedChar
	KindChar
	KindShort
	KindInt
	KindLong
	KindLongLong
	KindBitPrecise
	KindFloat
	KindDouble
	KindLongDouble
	KindComplexFloat
	KindComplexDouble
	KindComplexLongDouble
	KindPointer
	KindNullPointer
	KindArray
	KindStructure
	KindUnion
	KindEnumeration
	KindFunction
	KindQualified
	KindVaList
	KindAuto
)

// --- scalar types (no per-occurrence identity) ---

type scalar struct{ kind TypeKind }

func (s scalar) Kind() TypeKind { return s.kind }
func (s scalar) Key() TypeKey   { return TypeKey{kind: s.kind} }

var (
	Void        Type = scalar{KindVoid}
	Bool        Type = scalar{KindBool}
	UnsignedCh  Type = scalar{KindUnsignedChar}
	Char        Type = scalar{KindChar}
	Float       Type = scalar{KindFloat}
	Double      Type = scalar{KindDouble}
	LongDouble  Type = scalar{KindLongDouble}
	ComplexF    Type = scalar{KindComplexFloat}
	ComplexD    Type = scalar{KindComplexDouble}
	ComplexLD   Type = scalar{KindComplexLongDouble}
	NullPointer Type = scalar{KindNullPointer}
	VaList      Type = scalar{KindVaList}
	Auto        Type = scalar{KindAuto}
)

// SignedChar distinguishes "signed char" from the implementation-defined
// plain "char" per the C standard; both are scalar wrap types here.
type SignedCharType struct{}

func (SignedCharType) Kind() TypeKind { return KindSignedChar }
func (SignedCharType) Key() TypeKey   { return TypeKey{kind: KindSignedChar} }

// Short/Int/Long/LongLong carry a signedness flag (unsigned variants share
// the same Kind, distinguished by Signed).
type IntegerType struct {
	kind   TypeKind // KindShort | KindInt | KindLong | KindLongLong
	Signed bool
}

func NewShort(signed bool) IntegerType    { return IntegerType{KindShort, signed} }
func NewInt(signed bool) IntegerType      { return IntegerType{KindInt, signed} }
func NewLong(signed bool) IntegerType     { return IntegerType{KindLong, signed} }
func NewLongLong(signed bool) IntegerType { return IntegerType{KindLongLong, signed} }

func (i IntegerType) Kind() TypeKind { return i.kind }
func (i IntegerType) Key() TypeKey   { return TypeKey{kind: i.kind, ptr: i.Signed} }

// BitPrecise is C23's _BitInt(N).
type BitPreciseType struct {
	Signed bool
	Width  int
}

func (BitPreciseType) Kind() TypeKind { return KindBitPrecise }
func (b BitPreciseType) Key() TypeKey { return TypeKey{kind: KindBitPrecise, ptr: b.Width*2 + boolToInt(b.Signed)} }

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// --- compound types (per-occurrence identity for hash-consing) ---

type PointerType struct {
	Referenced Type
}

func (p *PointerType) Kind() TypeKind { return KindPointer }
func (p *PointerType) Key() TypeKey   { return TypeKey{kind: KindPointer, ptr: p} }

// ArrayBoundary is the Unbounded|Bounded(n)|BoundedStatic(n)|VLA(expr)|VLAStatic(expr) sum.
type ArrayBoundaryKind int

const (
	Unbounded ArrayBoundaryKind = iota
	Bounded
	BoundedStatic
	VLA
	VLAStatic
)

type ArrayBoundary struct {
	Kind     ArrayBoundaryKind
	Count    int64 // valid for Bounded / BoundedStatic
	SizeExpr Expr  // valid for VLA / VLAStatic
}

type ArrayType struct {
	Element  Type
	Boundary ArrayBoundary
}

func (a *ArrayType) Kind() TypeKind { return KindArray }
func (a *ArrayType) Key() TypeKey   { return TypeKey{kind: KindArray, ptr: a} }

// Field is a structure/union member.
type Field struct {
	Name      string // empty for anonymous members
	Type      Type
	BitField  bool
	BitWidth  Expr // constant expression, only when BitField
}

type StructureType struct {
	Complete   bool
	Identifier string // empty if anonymous
	Fields     []Field
	Packed     bool
	IsUnion    bool
}

func (s *StructureType) Kind() TypeKind {
	if s.IsUnion {
		return KindUnion
	}
	return KindStructure
}
func (s *StructureType) Key() TypeKey { return TypeKey{kind: s.Kind(), ptr: s} }

type Enumerator struct {
	Name  string
	Value Expr // nil if not explicitly assigned
}

type EnumerationType struct {
	Complete    bool
	Identifier  string
	Underlying  Type
	Enumerators []Enumerator
}

func (e *EnumerationType) Kind() TypeKind { return KindEnumeration }
func (e *EnumerationType) Key() TypeKey   { return TypeKey{kind: KindEnumeration, ptr: e} }

type FunctionParamMode int

const (
	Params FunctionParamMode = iota
	ParamEmpty
	KR
)

type FunctionParam struct {
	Name string // may be empty
	Type Type   // may be nil for K&R mode
}

type FunctionType struct {
	Return    Type
	Mode      FunctionParamMode
	Parameters []FunctionParam
	Ellipsis  bool
}

func (f *FunctionType) Kind() TypeKind { return KindFunction }
func (f *FunctionType) Key() TypeKey   { return TypeKey{kind: KindFunction, ptr: f} }

type Qualifiers struct {
	Const    bool
	Volatile bool
	Restrict bool
	Atomic   bool
}

func (q Qualifiers) Any() bool { return q.Const || q.Volatile || q.Restrict || q.Atomic }

// QualifiedType wraps an inner type with qualifiers. Invariant (spec §3):
// Qualified never nests - callers must fold qualifiers onto the innermost
// non-qualified type rather than stacking QualifiedType{QualifiedType{...}}.
type QualifiedType struct {
	Inner Type
	Quals Qualifiers
}

func (q *QualifiedType) Kind() TypeKind { return KindQualified }
func (q *QualifiedType) Key() TypeKey   { return TypeKey{kind: KindQualified, ptr: q} }

// Unqualified strips a single QualifiedType wrapper, returning the inner
// type and its qualifiers (Qualifiers{} if t was not qualified).
func Unqualified(t Type) (Type, Qualifiers) {
	if q, ok := t.(*QualifiedType); ok {
		return q.Inner, q.Quals
	}
	return t, Qualifiers{}
}

// IsScalarInteger reports whether t (after stripping qualifiers) is one of
// the plain integer kinds the constant evaluator treats uniformly.
func IsScalarInteger(t Type) bool {
	t, _ = Unqualified(t)
	switch t.Kind() {
	case KindBool, KindSignedChar, KindUnsignedChar, KindChar, KindShort, KindInt, KindLong, KindLongLong, KindBitPrecise, KindEnumeration:
		return true
	}
	return false
}

// IsFloating reports whether t (after stripping qualifiers) is a real or
// complex floating type.
func IsFloating(t Type) bool {
	t, _ = Unqualified(t)
	switch t.Kind() {
	case KindFloat, KindDouble, KindLongDouble, KindComplexFloat, KindComplexDouble, KindComplexLongDouble:
		return true
	}
	return false
}

// IsComplex reports whether t (after stripping qualifiers) is a complex
// floating type.
func IsComplex(t Type) bool {
	t, _ = Unqualified(t)
	switch t.Kind() {
	case KindComplexFloat, KindComplexDouble, KindComplexLongDouble:
		return true
	}
	return false
}

// IsPointerLike reports whether t (after stripping qualifiers) is a pointer
// or the null pointer constant type.
func IsPointerLike(t Type) bool {
	t, _ = Unqualified(t)
	return t.Kind() == KindPointer || t.Kind() == KindNullPointer
}
