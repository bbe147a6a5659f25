package inlineasm

import (
	"testing"

	"cirt/internal/ast"
	"cirt/internal/ir"
)

func TestTranslateSimpleOutputInput(t *testing.T) {
	tr := New()
	stmt := &ast.InlineAsmStmt{
		Template: "addl %1, %0",
		Outputs:  []ast.InlineAsmConstraint{{Constraint: "=r", Operand: &ast.IdentifierExpr{Props: ast.ExprProps{Type: ast.NewInt(true)}, Name: "x"}}},
		Inputs:   []ast.InlineAsmConstraint{{Constraint: "r", Operand: &ast.IdentifierExpr{Props: ast.ExprProps{Type: ast.NewInt(true)}, Name: "y"}}},
		Clobbers: []string{"cc"},
	}
	result, err := tr.Translate(stmt)
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if result.ID != 0 {
		t.Errorf("first descriptor ID = %d, want 0", result.ID)
	}
	if len(result.Descriptor.Outputs) != 1 || result.Descriptor.Outputs[0].Class != ir.ClassRegister {
		t.Errorf("output param = %+v, want one ClassRegister param", result.Descriptor.Outputs)
	}
	if len(result.Descriptor.Inputs) != 1 || result.Descriptor.Inputs[0].Class != ir.ClassRegister {
		t.Errorf("input param = %+v, want one ClassRegister param", result.Descriptor.Inputs)
	}
	if len(tr.Descriptors) != 1 {
		t.Errorf("Descriptors pool has %d entries, want 1", len(tr.Descriptors))
	}
}

func TestTranslateAssignsSequentialIDs(t *testing.T) {
	tr := New()
	stmt := &ast.InlineAsmStmt{Template: "nop"}
	r0, _ := tr.Translate(stmt)
	r1, _ := tr.Translate(stmt)
	if r0.ID != 0 || r1.ID != 1 {
		t.Errorf("sequential ids = %d, %d, want 0, 1", r0.ID, r1.ID)
	}
}

func TestTranslateEmptyConstraintErrors(t *testing.T) {
	tr := New()
	stmt := &ast.InlineAsmStmt{
		Template: "nop",
		Outputs:  []ast.InlineAsmConstraint{{Constraint: ""}},
	}
	if _, err := tr.Translate(stmt); err == nil {
		t.Errorf("Translate() with empty constraint = nil error, want error")
	}
}

func TestParseConstraintReadWriteYieldsLoadStore(t *testing.T) {
	param, err := parseConstraint("+r", "", 0, 0, nil, true)
	if err != nil {
		t.Fatalf("parseConstraint(\"+r\") error: %v", err)
	}
	if param.Class != ir.ClassLoadStore {
		t.Errorf("parseConstraint(\"+r\").Class = %v, want ClassLoadStore", param.Class)
	}
}

func TestParseConstraintLongDoubleOperandUsesTwoSlots(t *testing.T) {
	operand := &ast.IdentifierExpr{Props: ast.ExprProps{Type: ast.LongDouble}, Name: "ld"}
	param, err := parseConstraint("r", "", 0, 0, operand, false)
	if err != nil {
		t.Fatalf("parseConstraint() error: %v", err)
	}
	if param.SlotWidth != 2 {
		t.Errorf("SlotWidth = %d, want 2 for long double operand", param.SlotWidth)
	}
}

func TestParseConstraintMemoryOnly(t *testing.T) {
	param, err := parseConstraint("m", "", 0, 0, nil, false)
	if err != nil {
		t.Fatalf("parseConstraint(\"m\") error: %v", err)
	}
	if param.Class != ir.ClassMemory {
		t.Errorf("parseConstraint(\"m\").Class = %v, want ClassMemory", param.Class)
	}
}
