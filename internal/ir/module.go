package ir

import (
	"github.com/google/uuid"
)

// TypeCode is the closed typeentry-tag enum of spec §6.
type TypeCode int

const (
	TCBool TypeCode = iota
	TCChar
	TCShort
	TCInt
	TCLong
	TCFloat32
	TCFloat64
	TCLongDouble
	TCComplexFloat32
	TCComplexFloat64
	TCComplexLongDouble
	TCWord
	TCStruct
	TCUnion
	TCArray
	TCBuiltinVararg
)

// TypeEntry is one element of the flat IR type-description list.
type TypeEntry struct {
	Code      TypeCode
	Alignment int
	Param     int // field count (struct/union header), element count (array), or unused
	Atomic    bool
}

// IdentifierKind is GlobalData | ThreadLocalData | Function (spec §3).
type IdentifierKind int

const (
	GlobalData IdentifierKind = iota
	ThreadLocalData
	Function
)

// IdentifierScope is Local | Import | Export | ExportWeak (spec §3).
type IdentifierScope int

const (
	ScopeLocal IdentifierScope = iota
	ScopeImport
	ScopeExport
	ScopeExportWeak
)

// Visibility is Default | Hidden | Internal | Protected (spec §3).
type Visibility int

const (
	VisibilityDefault Visibility = iota
	VisibilityHidden
	VisibilityInternal
	VisibilityProtected
)

type CommonProps struct {
	Size      int64
	Alignment int
}

// Identifier is one declared IR identifier (spec §3).
type Identifier struct {
	Symbol      string
	Kind        IdentifierKind
	Scope       IdentifierScope
	Visibility  Visibility
	Alias       string // empty if not an alias
	Common      bool
	CommonProps CommonProps
	DebugEntry  *int // debuginfo.EntryID, nil if none

	// CorrelationID is an internal tooling convenience (not part of the
	// symbol name) stamped the way the teacher's module loader/cache stamps
	// uuids on loaded artifacts (internal/module, internal/incident).
	CorrelationID uuid.UUID
}

// StorageKind is GlobalStorage | GlobalReadOnlyStorage | ThreadLocalStorage
// (spec §6).
type StorageKind int

const (
	GlobalStorage StorageKind = iota
	GlobalReadOnlyStorage
	ThreadLocalStorage
)

// DataObject is a named data definition (spec §6 `named_data`).
type DataObject struct {
	Storage     StorageKind
	TypeID      int // index into Module.Types, or start index of a multi-entry type
	Initializer []InitializerValue
}

// InitializerValue is one placed scalar/compound leaf of a data object's
// initializer, addressed by its byte offset within the object.
type InitializerValue struct {
	Offset int64
	// Exactly one of the following is set.
	IntValue    *int64
	UintValue   *uint64
	FloatValue  *float64
	SymbolRef   string // address-of another identifier/string-literal, optionally with Addend
	Addend      int64
}

type StringLiteralKind int

const (
	StringLiteralPlain StringLiteralKind = iota
	StringLiteralWide
	StringLiteralUTF16
	StringLiteralUTF32
)

type StringLiteral struct {
	Kind  StringLiteralKind
	Bytes []byte
}

// InlineAsmConstraintClass is Register | RegisterMemory | Memory |
// LoadStore | Store | Read (spec §4.9).
type InlineAsmConstraintClass int

const (
	ClassRegister InlineAsmConstraintClass = iota
	ClassRegisterMemory
	ClassMemory
	ClassLoadStore
	ClassStore
	ClassRead
)

type InlineAsmParam struct {
	ID         string // stringified sequential integer
	Alias      string // `[name]`, empty if none
	Class      InlineAsmConstraintClass
	StackSlot  int
	SlotWidth  int // 1, or 2 for long double operands
}

type InlineAsmDescriptor struct {
	Template   string
	Outputs    []InlineAsmParam
	Inputs     []InlineAsmParam
	Clobbers   []string
	JumpLabels []string
	CorrelationID uuid.UUID
}

// Function is one translated function body (spec §6).
type Function struct {
	DeclarationID    string // symbol name
	Body             *Builder
	LocalTypeLayoutID int
	ParamTypeIDs     []int
	ReturnTypeID     int
	DebugEntry       *int // debuginfo.EntryID of this function's LEXICAL_BLOCK, nil if none
}

// SymbolTable interns names, generalizing the teacher's simple name->id
// maps (e.g. internal/compregister's globalNames) into a first-class type.
type SymbolTable struct {
	names []string
	index map[string]int
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{index: make(map[string]int)}
}

func (s *SymbolTable) Intern(name string) int {
	if id, ok := s.index[name]; ok {
		return id
	}
	id := len(s.names)
	s.names = append(s.names, name)
	s.index[name] = id
	return id
}

func (s *SymbolTable) Name(id int) string { return s.names[id] }

// Module is the produced IR artifact (spec §3, §6).
type Module struct {
	ModuleID uuid.UUID

	Types            []TypeEntry
	Functions        map[string]*Function
	Identifiers      map[string]*Identifier
	NamedData        map[string]*DataObject
	StringLiterals   []StringLiteral
	InlineAssemblies []InlineAsmDescriptor
	Symbols          *SymbolTable

	// DebugInfo holds a *debuginfo.Tree; kept as `any` so internal/ir does
	// not import internal/debuginfo.
	DebugInfo any
}

func NewModule() *Module {
	return &Module{
		ModuleID:    uuid.New(),
		Functions:   make(map[string]*Function),
		Identifiers: make(map[string]*Identifier),
		NamedData:   make(map[string]*DataObject),
		Symbols:     NewSymbolTable(),
	}
}

// AddStringLiteral interns bytes into the string-literal pool and returns
// its id.
func (m *Module) AddStringLiteral(kind StringLiteralKind, bytes []byte) int {
	m.StringLiterals = append(m.StringLiterals, StringLiteral{Kind: kind, Bytes: bytes})
	return len(m.StringLiterals) - 1
}

// AddInlineAsm registers a descriptor into the pool and returns its id.
func (m *Module) AddInlineAsm(d InlineAsmDescriptor) int {
	d.CorrelationID = uuid.New()
	m.InlineAssemblies = append(m.InlineAssemblies, d)
	return len(m.InlineAssemblies) - 1
}
