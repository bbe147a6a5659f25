package ast

import "testing"

func TestExprTypeDispatchesByConcreteKind(t *testing.T) {
	tests := []struct {
		name string
		e    Expr
		want Type
	}{
		{"constant", &ConstantExpr{Props: ExprProps{Type: NewInt(true)}, Value: int64(1)}, NewInt(true)},
		{"identifier", &IdentifierExpr{Props: ExprProps{Type: Double}, Name: "x"}, Double},
		{"binary", &BinaryExpr{Props: ExprProps{Type: NewLong(true)}, Operator: OpAdd}, NewLong(true)},
		{"logical", &LogicalExpr{Props: ExprProps{Type: Bool}, Operator: LogicalAnd}, Bool},
		{"label address with unset type", &LabelAddressExpr{Label: "L"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExprType(tt.e); got != tt.want {
				t.Errorf("ExprType(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestExprTypeReturnsNilForUnknownNode(t *testing.T) {
	if got := ExprType(nil); got != nil {
		t.Errorf("ExprType(nil) = %v, want nil", got)
	}
}
