package ast

import "cirt/internal/cerrors"

// StorageClass is the declarator storage-class specifier set relevant to
// linkage decisions (spec §4.6).
type StorageClass int

const (
	StorageNone StorageClass = iota
	StorageExtern
	StorageStatic
	StorageAuto
	StorageRegister
	StorageThreadLocal     // `_Thread_local`/`thread_local` alone
	StorageExternThreadLocal
	StorageStaticThreadLocal
)

// DeclaratorVisibility maps to the four IR visibilities of spec §3.
type DeclaratorVisibility int

const (
	VisibilityDefault DeclaratorVisibility = iota
	VisibilityHidden
	VisibilityInternal
	VisibilityProtected
)

// Declaration is a single declared identifier (object, function, or
// typedef-adjacent but typedefs never reach C6 as they have no linkage).
type Declaration struct {
	base
	Name       string
	Type       Type
	Storage    StorageClass
	Initializer *Initializer

	AsmLabel    string // explicit `asm("label")` override
	Visibility  DeclaratorVisibility
	Weak        bool
	Common      bool
	Alias       string // target symbol name, empty if not an alias

	// GNU-inline related flags (spec §4.6's decision table).
	IsInline          bool
	GNUInlineSemantics bool
	HasDefinition      bool

	IsDefinition bool // false for a bare declaration with no body/initializer

	// FunctionLocalStatic is set by the scope walker's caller context when
	// this declaration is a function-local `static` object; EnclosingFunction
	// feeds the mangled-name scheme `<function>_<identifier>_<uniq>`.
	FunctionLocalStatic bool
	EnclosingFunction   string
	Uniq                int
}

func (d *Declaration) Location() cerrors.SourceLocation { return d.base.Loc }

// FunctionDefinition is a complete function body (spec §4.10's C10 input).
type FunctionDefinition struct {
	base
	Declaration *Declaration
	Type        *FunctionType
	ParamNames  []string
	Body        *CompoundStmt
	// KRDeclarations holds K&R-style parameter re-declarations appearing
	// between the parameter list and the body, keyed by parameter name.
	KRDeclarations map[string]Type
}

func (f *FunctionDefinition) Location() cerrors.SourceLocation { return f.base.Loc }

// ScopeEntry is one named thing visible in a scope: either a Declaration
// (object/function) or a FunctionDefinition. The scope translator (C6)
// consumes these to build IR identifiers.
type ScopeEntry struct {
	Declaration *Declaration
	Definition  *FunctionDefinition
}

func (s ScopeEntry) Name() string {
	if s.Definition != nil {
		return s.Definition.Declaration.Name
	}
	return s.Declaration.Name
}

// GlobalScope is the translation unit's top-level identifier scope, already
// partitioned the way C6's four-pass walk expects: the translator does not
// re-derive which objects are external/static/thread-local, that
// classification comes from each entry's Declaration.Storage.
type GlobalScope struct {
	Entries []ScopeEntry
}

// TranslationUnit is the root input to internal/translator.
type TranslationUnit struct {
	Scope     GlobalScope
	Functions []*FunctionDefinition
	FileName  string
}

// LocalScope is a function-local block scope (used by C6 when materializing
// function-local static object initializers: "push the defining function's
// ordinary scope before initialization to resolve identifiers correctly",
// spec §4.6).
type LocalScope struct {
	Function string
	Entries  []ScopeEntry
	Parent   *LocalScope
}
