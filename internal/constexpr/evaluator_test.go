package constexpr

import (
	"testing"

	"cirt/internal/ast"
	"cirt/internal/targetenv"
)

func newTestEvaluator() *Evaluator {
	return New(targetenv.NewDefaultOracle(targetenv.DefaultConfig()))
}

func intLit(v int64) *ast.ConstantExpr {
	return &ast.ConstantExpr{Props: ast.ExprProps{Type: ast.NewInt(true)}, Value: v}
}

func TestEvaluateConstantLiteral(t *testing.T) {
	e := newTestEvaluator()
	v, err := e.Evaluate(intLit(42))
	if err != nil {
		t.Fatalf("Evaluate(42) error: %v", err)
	}
	if v.Kind != KindInteger || v.Int.GetSigned() != 42 {
		t.Errorf("Evaluate(42) = %+v, want integer 42", v)
	}
}

func TestEvaluateBinaryAdd(t *testing.T) {
	e := newTestEvaluator()
	expr := &ast.BinaryExpr{Props: ast.ExprProps{Type: ast.NewInt(true)}, Operator: ast.OpAdd, Left: intLit(3), Right: intLit(4)}
	v, err := e.Evaluate(expr)
	if err != nil {
		t.Fatalf("Evaluate(3+4) error: %v", err)
	}
	if v.Int.GetSigned() != 7 {
		t.Errorf("Evaluate(3+4) = %d, want 7", v.Int.GetSigned())
	}
}

func TestEvaluateDivisionByZeroIsNotConstant(t *testing.T) {
	e := newTestEvaluator()
	expr := &ast.BinaryExpr{Props: ast.ExprProps{Type: ast.NewInt(true)}, Operator: ast.OpDiv, Left: intLit(1), Right: intLit(0)}
	if _, err := e.Evaluate(expr); err == nil {
		t.Errorf("Evaluate(1/0) = nil error, want error")
	}
}

func TestEvaluateComparison(t *testing.T) {
	e := newTestEvaluator()
	expr := &ast.BinaryExpr{Props: ast.ExprProps{Type: ast.NewInt(true)}, Operator: ast.OpLt, Left: intLit(1), Right: intLit(2)}
	v, err := e.Evaluate(expr)
	if err != nil {
		t.Fatalf("Evaluate(1<2) error: %v", err)
	}
	if v.Int.GetSigned() != 1 {
		t.Errorf("Evaluate(1<2) = %d, want 1", v.Int.GetSigned())
	}
}

func TestEvaluateUnaryMinus(t *testing.T) {
	e := newTestEvaluator()
	expr := &ast.UnaryExpr{Props: ast.ExprProps{Type: ast.NewInt(true)}, Operator: ast.UnaryMinus, Operand: intLit(5)}
	v, err := e.Evaluate(expr)
	if err != nil {
		t.Fatalf("Evaluate(-5) error: %v", err)
	}
	if v.Int.GetSigned() != -5 {
		t.Errorf("Evaluate(-5) = %d, want -5", v.Int.GetSigned())
	}
}

func TestEvaluateLogicalNot(t *testing.T) {
	e := newTestEvaluator()
	expr := &ast.UnaryExpr{Props: ast.ExprProps{Type: ast.NewInt(true)}, Operator: ast.UnaryLogicalNot, Operand: intLit(0)}
	v, err := e.Evaluate(expr)
	if err != nil {
		t.Fatalf("Evaluate(!0) error: %v", err)
	}
	if v.Int.GetSigned() != 1 {
		t.Errorf("Evaluate(!0) = %d, want 1", v.Int.GetSigned())
	}
}

func TestEvaluateConditionalPicksBranch(t *testing.T) {
	e := newTestEvaluator()
	expr := &ast.ConditionalExpr{
		Props:      ast.ExprProps{Type: ast.NewInt(true)},
		Condition:  intLit(1),
		ThenBranch: intLit(10),
		ElseBranch: intLit(20),
	}
	v, err := e.Evaluate(expr)
	if err != nil {
		t.Fatalf("Evaluate(1?10:20) error: %v", err)
	}
	if v.Int.GetSigned() != 10 {
		t.Errorf("Evaluate(1?10:20) = %d, want 10", v.Int.GetSigned())
	}
}

func TestEvaluateIncrementNeverConstant(t *testing.T) {
	e := newTestEvaluator()
	expr := &ast.UnaryExpr{Props: ast.ExprProps{Type: ast.NewInt(true)}, Operator: ast.UnaryPreIncrement, Operand: intLit(1)}
	if _, err := e.Evaluate(expr); err == nil {
		t.Errorf("Evaluate(++1) = nil error, want error (never constant)")
	}
}

func TestConstValueIsZero(t *testing.T) {
	e := newTestEvaluator()
	zero, err := e.Evaluate(intLit(0))
	if err != nil {
		t.Fatalf("Evaluate(0) error: %v", err)
	}
	if !zero.IsZero() {
		t.Errorf("ConstValue(0).IsZero() = false, want true")
	}
}
