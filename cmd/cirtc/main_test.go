package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTranslateCommandPrintsModuleSummary(t *testing.T) {
	fixture := `{
		"functions": [
			{"name": "add", "return_type": "int",
			 "params": [{"name": "a", "type": "int"}, {"name": "b", "type": "int"}],
			 "body": [{"kind": "return", "value": {"kind": "binary", "op": "+",
				"left": {"kind": "ident", "name": "a"}, "right": {"kind": "ident", "name": "b"}}}]}
		]
	}`
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, []byte(fixture), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"translate", path})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(out.String(), "function add:") {
		t.Errorf("output = %q, want a line for function add", out.String())
	}
}

func TestTranslateCommandMissingFileErrors(t *testing.T) {
	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"translate", "/no/such/fixture.json"})
	if err := root.Execute(); err == nil {
		t.Errorf("Execute() with missing fixture = nil error, want error")
	}
}

func TestTranslateCommandRequiresExactlyOneArg(t *testing.T) {
	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"translate"})
	if err := root.Execute(); err == nil {
		t.Errorf("Execute() with no fixture argument = nil error, want error")
	}
}

func TestTranslateCommandVerboseListsInstructions(t *testing.T) {
	fixture := `{"functions": [{"name": "f", "return_type": "void", "body": [{"kind": "expr", "value": {"kind": "int", "int": 1}}]}]}`
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, []byte(fixture), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"translate", "--verbose", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(out.String(), "0:") {
		t.Errorf("verbose output = %q, want a numbered instruction line", out.String())
	}
}
