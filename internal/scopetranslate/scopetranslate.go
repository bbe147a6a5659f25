// Package scopetranslate implements C6: translating a resolved
// ast.GlobalScope into the IR's identifier table, deciding each
// declaration's linkage/visibility/storage per spec §4.6's decision table.
// It generalizes the teacher's internal/compregister global-name
// registration pass (internal/compregister/register.go), which walks the
// parser's top-level declarations once to assign every global a slot before
// compilation proper begins; C6 walks the AST's global scope the same way
// but in three passes (every declaration, externs and statics alike, then
// tentative definitions, then GNU-inline duplicates) since common marking
// and the GNU-inline duplicates depend on what an earlier pass recorded.
// Declarations are not grouped by storage class or thread-locality.
package scopetranslate

import (
	"strconv"

	"github.com/google/uuid"

	"cirt/internal/ast"
	"cirt/internal/cerrors"
	"cirt/internal/ir"
)

// Translator walks one ast.TranslationUnit's global scope.
type Translator struct {
	Module *ir.Module
	// uniqCounter backs the `<function>_<identifier>_<uniq>` mangling
	// scheme for colliding function-local statics (spec §4.6).
	uniqCounter map[string]int
}

func New(module *ir.Module) *Translator {
	return &Translator{Module: module, uniqCounter: make(map[string]int)}
}

// Translate is C6's entry point: `translate_global_scope(scope)`. It runs
// the three passes described in the package comment and returns the set of function
// definitions left to lower (C10 consumes this).
func (t *Translator) Translate(tu *ast.TranslationUnit) ([]*ast.FunctionDefinition, error) {
	if err := t.passExternAndStatic(tu); err != nil {
		return nil, err
	}
	if err := t.passTentativeDefinitions(tu); err != nil {
		return nil, err
	}
	if err := t.passGNUInlineDuplicates(tu); err != nil {
		return nil, err
	}
	return tu.Functions, nil
}

// passExternAndStatic assigns an Identifier entry to every declaration with
// external or internal linkage, deciding IdentifierScope/Visibility per the
// storage-class/visibility-attribute combination (spec §4.6's main table).
func (t *Translator) passExternAndStatic(tu *ast.TranslationUnit) error {
	for _, entry := range tu.Scope.Entries {
		decl := entry.Declaration
		if decl == nil {
			continue // function definitions are handled in their own pass
		}
		if err := t.translateOneDeclaration(decl); err != nil {
			return err
		}
	}
	for _, fn := range tu.Functions {
		if err := t.translateOneDeclaration(fn.Declaration); err != nil {
			return err
		}
	}
	return nil
}

func (t *Translator) translateOneDeclaration(decl *ast.Declaration) error {
	symbol := decl.Name
	if decl.AsmLabel != "" {
		symbol = decl.AsmLabel
	}
	if decl.FunctionLocalStatic {
		// A function-local static never collides on its bare name: it's
		// scoped to the defining function and mangled accordingly (spec
		// §4.6), and always has local linkage regardless of any explicit
		// storage-class combination the parser recorded.
		symbol = t.mangleLocalStatic(decl.EnclosingFunction, decl.Name)
		id := &ir.Identifier{
			Symbol:        symbol,
			Kind:          ir.GlobalData,
			Scope:         ir.ScopeLocal,
			Visibility:    ir.VisibilityDefault,
			CorrelationID: uuid.New(),
		}
		t.Module.Identifiers[decl.Name] = id
		if decl.IsDefinition {
			if _, exists := t.Module.NamedData[symbol]; !exists {
				t.Module.NamedData[symbol] = &ir.DataObject{Storage: ir.GlobalStorage}
			}
		}
		return nil
	}
	if decl.Alias != "" {
		return t.translateAlias(decl, symbol)
	}

	scope, visibility, err := classifyLinkage(decl)
	if err != nil {
		return err
	}

	kind := ir.GlobalData
	if _, ok := isFuncType(decl.Type); ok {
		kind = ir.Function
	} else if decl.Storage == ast.StorageThreadLocal || decl.Storage == ast.StorageExternThreadLocal || decl.Storage == ast.StorageStaticThreadLocal {
		kind = ir.ThreadLocalData
	}

	id := &ir.Identifier{
		Symbol:        symbol,
		Kind:          kind,
		Scope:         scope,
		Visibility:    visibility,
		Common:        decl.Common,
		CorrelationID: uuid.New(),
	}
	t.Module.Identifiers[decl.Name] = id
	if kind != ir.Function && decl.IsDefinition {
		if _, exists := t.Module.NamedData[symbol]; !exists {
			storage := ir.GlobalStorage
			if kind == ir.ThreadLocalData {
				storage = ir.ThreadLocalStorage
			}
			t.Module.NamedData[symbol] = &ir.DataObject{Storage: storage}
		}
	}
	return nil
}

func isFuncType(t ast.Type) (ast.Type, bool) {
	if t == nil {
		return nil, false
	}
	u, _ := ast.Unqualified(t)
	if _, ok := u.(*ast.FunctionType); ok {
		return u, true
	}
	return nil, false
}

func (t *Translator) translateAlias(decl *ast.Declaration, symbol string) error {
	t.Module.Identifiers[decl.Name] = &ir.Identifier{
		Symbol:        symbol,
		Alias:         decl.Alias,
		Scope:         ir.ScopeExport,
		Visibility:    ir.VisibilityDefault,
		CorrelationID: uuid.New(),
	}
	return nil
}

// classifyLinkage is spec §4.6's decision table collapsed into one
// function: storage class and the GNU visibility attribute jointly decide
// IdentifierScope and Visibility.
func classifyLinkage(decl *ast.Declaration) (ir.IdentifierScope, ir.Visibility, error) {
	scope := ir.ScopeExport
	switch decl.Storage {
	case ast.StorageStatic, ast.StorageStaticThreadLocal:
		scope = ir.ScopeLocal
	case ast.StorageExtern, ast.StorageExternThreadLocal, ast.StorageNone, ast.StorageThreadLocal:
		if decl.IsDefinition {
			scope = ir.ScopeExport
		} else {
			scope = ir.ScopeImport
		}
	}
	if decl.Weak {
		if scope == ir.ScopeLocal {
			return 0, 0, cerrors.At(cerrors.InvalidState, decl.Location(), "a static-linkage declaration cannot also be weak")
		}
		scope = ir.ScopeExportWeak
	}
	visibility := ir.VisibilityDefault
	switch decl.Visibility {
	case ast.VisibilityHidden:
		visibility = ir.VisibilityHidden
	case ast.VisibilityInternal:
		visibility = ir.VisibilityInternal
	case ast.VisibilityProtected:
		visibility = ir.VisibilityProtected
	}
	return scope, visibility, nil
}

// passTentativeDefinitions resolves C's tentative-definition merging: a
// file-scope object declared several times with no initializer and no
// `extern` becomes exactly one `common`-eligible definition (spec §4.6).
func (t *Translator) passTentativeDefinitions(tu *ast.TranslationUnit) error {
	seen := make(map[string]*ast.Declaration)
	for _, entry := range tu.Scope.Entries {
		decl := entry.Declaration
		if decl == nil || decl.Storage == ast.StorageExtern || decl.Initializer != nil {
			continue
		}
		if _, ok := isFuncType(decl.Type); ok {
			continue
		}
		if prior, ok := seen[decl.Name]; ok {
			// Multiple tentative definitions of the same object: the IR
			// identifier already created in passExternAndStatic is marked
			// Common so the linker may merge it (spec §4.6).
			_ = prior
			if id, ok := t.Module.Identifiers[decl.Name]; ok {
				id.Common = true
			}
			continue
		}
		seen[decl.Name] = decl
	}
	return nil
}

// passGNUInlineDuplicates handles GNU inline semantics: for every inline
// function definition marked GNUInlineSemantics it registers an extra
// Function identifier with local scope under a mangled symbol. Only that
// identifier is added; the body is not duplicated and the function's own
// identifier is left as the first pass set it.
func (t *Translator) passGNUInlineDuplicates(tu *ast.TranslationUnit) error {
	for _, fn := range tu.Functions {
		decl := fn.Declaration
		if !decl.IsInline || !decl.GNUInlineSemantics {
			continue
		}
		localSymbol := t.mangleLocalStatic(decl.Name, "gnu_inline")
		dup := &ir.Identifier{
			Symbol:        localSymbol,
			Kind:          ir.Function,
			Scope:         ir.ScopeLocal,
			Visibility:    ir.VisibilityDefault,
			CorrelationID: uuid.New(),
		}
		t.Module.Identifiers[localSymbol] = dup
	}
	return nil
}

// mangleLocalStatic implements the `<function>_<identifier>_<uniq>` scheme
// spec §4.6 names for disambiguating function-local statics (and, here,
// GNU-inline duplicate bodies) that would otherwise collide.
func (t *Translator) mangleLocalStatic(enclosing, identifier string) string {
	key := enclosing + "_" + identifier
	t.uniqCounter[key]++
	return key + "_" + strconv.Itoa(t.uniqCounter[key])
}

// GlobalSymbol implements lowerexpr.SymbolResolver's global half: every
// translated identifier's IR symbol is keyed by its source name.
func (t *Translator) GlobalSymbol(name string) (string, bool) {
	id, ok := t.Module.Identifiers[name]
	if !ok {
		return "", false
	}
	return id.Symbol, true
}
