// Package inlineasm implements C9: parsing GNU inline-assembly operand
// constraints and building the IR's InlineAsmDescriptor (spec §4.9). It
// generalizes the teacher's internal/lexer constraint/flag-parsing style
// (small hand-rolled scanners over short operator strings, as in
// internal/lexer/lexer.go's multi-char operator table) to C's asm
// constraint-string grammar.
package inlineasm

import (
	"strconv"
	"strings"

	"cirt/internal/ast"
	"cirt/internal/cerrors"
	"cirt/internal/ir"
)

// Translator accumulates inline-asm descriptors encountered while lowering
// one function body; internal/translator merges the accumulated pool into
// the module's InlineAssemblies list once the function is finished.
type Translator struct {
	Descriptors []ir.InlineAsmDescriptor
}

func New() *Translator { return &Translator{} }

// Result is what Translate hands back to C8: the descriptor's pool-local id
// (used as Instruction.InlineAsmID) plus the descriptor itself.
type Result struct {
	ID         int
	Descriptor ir.InlineAsmDescriptor
}

// Translate is C9's entry point: `translate_inline_asm(stmt)`.
func (t *Translator) Translate(s *ast.InlineAsmStmt) (Result, error) {
	desc := ir.InlineAsmDescriptor{
		Template:   s.Template,
		Clobbers:   append([]string(nil), s.Clobbers...),
		JumpLabels: append([]string(nil), s.JumpLabels...),
	}
	slot := 0
	for i, out := range s.Outputs {
		param, err := parseConstraint(out.Constraint, out.Alias, i, slot, out.Operand, true)
		if err != nil {
			return Result{}, cerrors.At(cerrors.InvalidParameter, s.Location(), "output "+err.Error())
		}
		desc.Outputs = append(desc.Outputs, param)
		slot += param.SlotWidth
	}
	for i, in := range s.Inputs {
		param, err := parseConstraint(in.Constraint, in.Alias, len(s.Outputs)+i, slot, in.Operand, false)
		if err != nil {
			return Result{}, cerrors.At(cerrors.InvalidParameter, s.Location(), "input "+err.Error())
		}
		desc.Inputs = append(desc.Inputs, param)
		slot += param.SlotWidth
	}
	id := len(t.Descriptors)
	t.Descriptors = append(t.Descriptors, desc)
	return Result{ID: id, Descriptor: desc}, nil
}

// parseConstraint classifies one constraint string per spec §4.9's closed
// InlineAsmConstraintClass set:
//   - leading `=` marks a write-only output; leading `+` a read-write
//     output; no prefix, an input.
//   - the remaining letters name the allowed operand locations: `r`
//     (register), `m` (memory), or both together (register-or-memory).
func parseConstraint(constraint, alias string, index, slot int, operand ast.Expr, isOutput bool) (ir.InlineAsmParam, error) {
	if constraint == "" {
		return ir.InlineAsmParam{}, cerrors.New(cerrors.InvalidParameter, "empty constraint string")
	}
	rest := constraint
	readWrite := false
	writeOnly := false
	switch rest[0] {
	case '=':
		writeOnly = true
		rest = rest[1:]
	case '+':
		readWrite = true
		rest = rest[1:]
	}
	hasRegister := strings.ContainsAny(rest, "rqQabcdSD")
	hasMemory := strings.Contains(rest, "m")

	var class ir.InlineAsmConstraintClass
	switch {
	case hasRegister && hasMemory:
		class = ir.ClassRegisterMemory
	case readWrite:
		class = ir.ClassLoadStore
	case writeOnly && hasRegister:
		class = ir.ClassRegister
	case writeOnly && hasMemory:
		class = ir.ClassStore
	case hasMemory:
		class = ir.ClassMemory
	case hasRegister:
		class = ir.ClassRegister
	default:
		class = ir.ClassRead
	}

	width := 1
	if operand != nil {
		t := ast.ExprType(operand)
		u, _ := ast.Unqualified(t)
		if u != nil && u.Kind() == ast.KindLongDouble {
			width = 2
		}
	}

	return ir.InlineAsmParam{
		ID:        strconv.Itoa(index),
		Alias:     alias,
		Class:     class,
		StackSlot: slot,
		SlotWidth: width,
	}, nil
}
