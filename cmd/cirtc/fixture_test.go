package main

import (
	"testing"

	"cirt/internal/ast"
)

func TestDecodeFixtureBuildsGlobalsAndFunctions(t *testing.T) {
	data := []byte(`{
		"file_name": "demo.c",
		"globals": [
			{"name": "counter", "type": "int", "storage": "", "initializer": 0}
		],
		"functions": [
			{
				"name": "add",
				"return_type": "int",
				"params": [{"name": "a", "type": "int"}, {"name": "b", "type": "int"}],
				"body": [
					{"kind": "return", "value": {"kind": "binary", "op": "+",
						"left": {"kind": "ident", "name": "a"},
						"right": {"kind": "ident", "name": "b"}}}
				]
			}
		]
	}`)

	tu, err := decodeFixture(data)
	if err != nil {
		t.Fatalf("decodeFixture() error: %v", err)
	}
	if tu.FileName != "demo.c" {
		t.Errorf("FileName = %q, want %q", tu.FileName, "demo.c")
	}
	if len(tu.Scope.Entries) != 1 {
		t.Fatalf("Scope.Entries = %d, want 1", len(tu.Scope.Entries))
	}
	if tu.Scope.Entries[0].Declaration.Name != "counter" {
		t.Errorf("global name = %q, want %q", tu.Scope.Entries[0].Declaration.Name, "counter")
	}
	if len(tu.Functions) != 1 || tu.Functions[0].Declaration.Name != "add" {
		t.Fatalf("Functions = %+v, want one function named add", tu.Functions)
	}
	body := tu.Functions[0].Body
	if len(body.Items) != 1 {
		t.Fatalf("function body has %d items, want 1", len(body.Items))
	}
	ret, ok := body.Items[0].Stmt.(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("body.Items[0].Stmt = %T, want *ast.ReturnStmt", body.Items[0].Stmt)
	}
	if _, ok := ret.Value.(*ast.BinaryExpr); !ok {
		t.Errorf("return value = %T, want *ast.BinaryExpr", ret.Value)
	}
}

func TestDecodeFixtureUnknownTypeErrors(t *testing.T) {
	data := []byte(`{"functions": [{"name": "f", "return_type": "nonsense", "body": []}]}`)
	if _, err := decodeFixture(data); err == nil {
		t.Errorf("decodeFixture() with unknown type = nil error, want error")
	}
}

func TestDecodeFixtureUnknownStatementKindErrors(t *testing.T) {
	data := []byte(`{"functions": [{"name": "f", "return_type": "void", "body": [{"kind": "weird"}]}]}`)
	if _, err := decodeFixture(data); err == nil {
		t.Errorf("decodeFixture() with unknown statement kind = nil error, want error")
	}
}

func TestDecodeFixtureUnsupportedBinaryOperatorErrors(t *testing.T) {
	data := []byte(`{"functions": [{"name": "f", "return_type": "int", "body": [
		{"kind": "return", "value": {"kind": "binary", "op": "%",
			"left": {"kind": "int", "int": 1}, "right": {"kind": "int", "int": 2}}}
	]}]}`)
	if _, err := decodeFixture(data); err == nil {
		t.Errorf("decodeFixture() with unsupported operator = nil error, want error")
	}
}

func TestDecodeFixtureMalformedJSONErrors(t *testing.T) {
	if _, err := decodeFixture([]byte("not json")); err == nil {
		t.Errorf("decodeFixture() with malformed JSON = nil error, want error")
	}
}

func TestParseFixtureTypeKnownNames(t *testing.T) {
	for _, name := range []string{"void", "bool", "char", "unsigned char", "short", "int", "unsigned int", "long", "unsigned long", "float", "double", "long double"} {
		if _, err := parseFixtureType(name); err != nil {
			t.Errorf("parseFixtureType(%q) error: %v", name, err)
		}
	}
}

func TestFixtureStorageMapping(t *testing.T) {
	tests := []struct {
		in   string
		want ast.StorageClass
	}{
		{"extern", ast.StorageExtern},
		{"static", ast.StorageStatic},
		{"", ast.StorageNone},
		{"garbage", ast.StorageNone},
	}
	for _, tt := range tests {
		if got := fixtureStorage(tt.in); got != tt.want {
			t.Errorf("fixtureStorage(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
