package scopetranslate

import (
	"testing"

	"cirt/internal/ast"
	"cirt/internal/ir"
)

func newTU(entries []ast.ScopeEntry, fns []*ast.FunctionDefinition) *ast.TranslationUnit {
	return &ast.TranslationUnit{
		Scope:     ast.GlobalScope{Entries: entries},
		Functions: fns,
	}
}

func TestTranslateExternDefinitionIsExported(t *testing.T) {
	decl := &ast.Declaration{Name: "g", Type: ast.NewInt(true), Storage: ast.StorageNone, IsDefinition: true}
	tu := newTU([]ast.ScopeEntry{{Declaration: decl}}, nil)

	tr := New(ir.NewModule())
	if _, err := tr.Translate(tu); err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	id := tr.Module.Identifiers["g"]
	if id == nil {
		t.Fatalf("identifier \"g\" not registered")
	}
	if id.Scope != ir.ScopeExport {
		t.Errorf("Scope = %v, want ScopeExport", id.Scope)
	}
	if _, ok := tr.Module.NamedData["g"]; !ok {
		t.Errorf("NamedData[\"g\"] not created for a defined object")
	}
}

func TestTranslateStaticDeclarationIsLocal(t *testing.T) {
	decl := &ast.Declaration{Name: "s", Type: ast.NewInt(true), Storage: ast.StorageStatic, IsDefinition: true}
	tu := newTU([]ast.ScopeEntry{{Declaration: decl}}, nil)

	tr := New(ir.NewModule())
	if _, err := tr.Translate(tu); err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if got := tr.Module.Identifiers["s"].Scope; got != ir.ScopeLocal {
		t.Errorf("Scope = %v, want ScopeLocal", got)
	}
}

func TestClassifyLinkageRejectsStaticWeakCombination(t *testing.T) {
	decl := &ast.Declaration{Name: "w", Storage: ast.StorageStatic, Weak: true}
	if _, _, err := classifyLinkage(decl); err == nil {
		t.Errorf("classifyLinkage(static+weak) = nil error, want error")
	}
}

func TestClassifyLinkageWeakExportsWeakly(t *testing.T) {
	decl := &ast.Declaration{Name: "w", Storage: ast.StorageNone, IsDefinition: true, Weak: true}
	scope, _, err := classifyLinkage(decl)
	if err != nil {
		t.Fatalf("classifyLinkage() error: %v", err)
	}
	if scope != ir.ScopeExportWeak {
		t.Errorf("scope = %v, want ScopeExportWeak", scope)
	}
}

func TestTentativeDefinitionsMergeAsCommon(t *testing.T) {
	d1 := &ast.Declaration{Name: "t", Type: ast.NewInt(true), Storage: ast.StorageNone}
	d2 := &ast.Declaration{Name: "t", Type: ast.NewInt(true), Storage: ast.StorageNone}
	tu := newTU([]ast.ScopeEntry{{Declaration: d1}, {Declaration: d2}}, nil)

	tr := New(ir.NewModule())
	if _, err := tr.Translate(tu); err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if !tr.Module.Identifiers["t"].Common {
		t.Errorf("repeated tentative definition did not get marked Common")
	}
}

func TestFunctionLocalStaticGetsMangledSymbol(t *testing.T) {
	decl := &ast.Declaration{
		Name:                "counter",
		Type:                ast.NewInt(true),
		FunctionLocalStatic: true,
		EnclosingFunction:   "tick",
		IsDefinition:        true,
	}
	tu := newTU([]ast.ScopeEntry{{Declaration: decl}}, nil)

	tr := New(ir.NewModule())
	if _, err := tr.Translate(tu); err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	id := tr.Module.Identifiers["counter"]
	if id == nil {
		t.Fatalf("function-local static not registered under its source name")
	}
	if id.Symbol != "tick_counter_1" {
		t.Errorf("mangled symbol = %q, want %q", id.Symbol, "tick_counter_1")
	}
	if id.Scope != ir.ScopeLocal {
		t.Errorf("function-local static Scope = %v, want ScopeLocal", id.Scope)
	}
}

func TestGNUInlineDuplicateRegistersLocalCopy(t *testing.T) {
	decl := &ast.Declaration{Name: "helper", Type: ast.NewInt(true), IsInline: true, GNUInlineSemantics: true}
	fn := &ast.FunctionDefinition{Declaration: decl}
	tu := newTU(nil, []*ast.FunctionDefinition{fn})

	tr := New(ir.NewModule())
	if _, err := tr.Translate(tu); err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	found := false
	for symbol, id := range tr.Module.Identifiers {
		if symbol != "helper" && id.Kind == ir.Function && id.Scope == ir.ScopeLocal {
			found = true
		}
	}
	if !found {
		t.Errorf("no local GNU-inline duplicate registered alongside %q", "helper")
	}
}

func TestGlobalSymbolResolvesRegisteredIdentifier(t *testing.T) {
	decl := &ast.Declaration{Name: "g", Type: ast.NewInt(true), Storage: ast.StorageNone, IsDefinition: true}
	tu := newTU([]ast.ScopeEntry{{Declaration: decl}}, nil)
	tr := New(ir.NewModule())
	if _, err := tr.Translate(tu); err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	sym, ok := tr.GlobalSymbol("g")
	if !ok || sym != "g" {
		t.Errorf("GlobalSymbol(\"g\") = (%q, %v), want (\"g\", true)", sym, ok)
	}
	if _, ok := tr.GlobalSymbol("missing"); ok {
		t.Errorf("GlobalSymbol(\"missing\") reported found, want not found")
	}
}
