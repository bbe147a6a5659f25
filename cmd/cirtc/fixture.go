// cmd/cirtc/fixture.go decodes the JSON fixture format cirtc reads in place
// of a real semantic analyzer's output (spec §1 puts lexing/parsing/semantic
// analysis out of scope; this module starts from an already-resolved AST).
// The schema here is deliberately small — a handful of global declarations
// and straight-line function bodies — just enough to drive
// internal/translator end to end for a demonstration run.
package main

import (
	"encoding/json"
	"fmt"

	"cirt/internal/ast"
	"cirt/internal/cerrors"
)

type fixtureFile struct {
	FileName  string            `json:"file_name"`
	Globals   []fixtureGlobal   `json:"globals"`
	Functions []fixtureFunction `json:"functions"`
}

type fixtureGlobal struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Storage     string `json:"storage"` // "", "extern", "static"
	Initializer *int64 `json:"initializer"`
}

type fixtureFunction struct {
	Name       string           `json:"name"`
	ReturnType string           `json:"return_type"`
	Params     []fixtureParam   `json:"params"`
	Body       []fixtureStmt    `json:"body"`
}

type fixtureParam struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type fixtureStmt struct {
	Kind  string       `json:"kind"` // "return" | "expr"
	Value *fixtureExpr `json:"value"`
}

type fixtureExpr struct {
	Kind  string       `json:"kind"` // "int" | "ident" | "binary"
	Int   int64        `json:"int"`
	Name  string       `json:"name"`
	Op    string       `json:"op"` // "+","-","*","/"
	Left  *fixtureExpr `json:"left"`
	Right *fixtureExpr `json:"right"`
}

func decodeFixture(data []byte) (*ast.TranslationUnit, error) {
	var f fixtureFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, cerrors.Wrap(cerrors.InvalidParameter, err, "decoding fixture JSON")
	}

	tu := &ast.TranslationUnit{FileName: f.FileName}

	for _, g := range f.Globals {
		ty, err := parseFixtureType(g.Type)
		if err != nil {
			return nil, err
		}
		decl := &ast.Declaration{
			Name:         g.Name,
			Type:         ty,
			Storage:      fixtureStorage(g.Storage),
			IsDefinition: g.Initializer != nil || g.Storage != "extern",
		}
		if g.Initializer != nil {
			decl.Initializer = &ast.Initializer{Scalar: &ast.ConstantExpr{
				Props: ast.ExprProps{Type: ty, ConstantExpression: true},
				Value: *g.Initializer,
			}}
		}
		tu.Scope.Entries = append(tu.Scope.Entries, ast.ScopeEntry{Declaration: decl})
	}

	for _, fn := range f.Functions {
		def, err := buildFixtureFunction(fn)
		if err != nil {
			return nil, err
		}
		tu.Functions = append(tu.Functions, def)
	}

	return tu, nil
}

func buildFixtureFunction(fn fixtureFunction) (*ast.FunctionDefinition, error) {
	retType, err := parseFixtureType(fn.ReturnType)
	if err != nil {
		return nil, err
	}

	params := make([]ast.FunctionParam, 0, len(fn.Params))
	paramNames := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		pt, err := parseFixtureType(p.Type)
		if err != nil {
			return nil, err
		}
		params = append(params, ast.FunctionParam{Name: p.Name, Type: pt})
		paramNames = append(paramNames, p.Name)
	}

	fnType := &ast.FunctionType{Return: retType, Mode: ast.Params, Parameters: params}

	body := &ast.CompoundStmt{}
	for _, s := range fn.Body {
		stmt, err := buildFixtureStmt(s)
		if err != nil {
			return nil, err
		}
		body.Items = append(body.Items, ast.BlockItem{Stmt: stmt})
	}

	decl := &ast.Declaration{
		Name:         fn.Name,
		Type:         fnType,
		IsDefinition: true,
		HasDefinition: true,
	}

	return &ast.FunctionDefinition{
		Declaration: decl,
		Type:        fnType,
		ParamNames:  paramNames,
		Body:        body,
	}, nil
}

func buildFixtureStmt(s fixtureStmt) (ast.Stmt, error) {
	switch s.Kind {
	case "return":
		var value ast.Expr
		if s.Value != nil {
			v, err := buildFixtureExpr(*s.Value)
			if err != nil {
				return nil, err
			}
			value = v
		}
		return &ast.ReturnStmt{Value: value}, nil
	case "expr":
		if s.Value == nil {
			return &ast.ExpressionStmt{}, nil
		}
		v, err := buildFixtureExpr(*s.Value)
		if err != nil {
			return nil, err
		}
		return &ast.ExpressionStmt{Expr: v}, nil
	default:
		return nil, cerrors.New(cerrors.InvalidParameter, "unknown fixture statement kind: "+s.Kind)
	}
}

func buildFixtureExpr(e fixtureExpr) (ast.Expr, error) {
	switch e.Kind {
	case "int":
		return &ast.ConstantExpr{
			Props: ast.ExprProps{Type: ast.NewInt(true), ConstantExpression: true},
			Value: e.Int,
		}, nil
	case "ident":
		return &ast.IdentifierExpr{
			Props: ast.ExprProps{ScopedID: &ast.ScopeID{Name: e.Name, Local: true}},
			Name:  e.Name,
		}, nil
	case "binary":
		if e.Left == nil || e.Right == nil {
			return nil, cerrors.New(cerrors.InvalidParameter, "binary fixture expression missing an operand")
		}
		left, err := buildFixtureExpr(*e.Left)
		if err != nil {
			return nil, err
		}
		right, err := buildFixtureExpr(*e.Right)
		if err != nil {
			return nil, err
		}
		op, err := fixtureBinaryOp(e.Op)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{
			Props:    ast.ExprProps{Type: ast.NewInt(true)},
			Operator: op,
			Left:     left,
			Right:    right,
		}, nil
	default:
		return nil, cerrors.New(cerrors.InvalidParameter, "unknown fixture expression kind: "+e.Kind)
	}
}

func fixtureBinaryOp(op string) (ast.BinaryOp, error) {
	switch op {
	case "+":
		return ast.OpAdd, nil
	case "-":
		return ast.OpSub, nil
	case "*":
		return ast.OpMul, nil
	case "/":
		return ast.OpDiv, nil
	default:
		return 0, cerrors.New(cerrors.InvalidParameter, fmt.Sprintf("unsupported fixture binary operator %q", op))
	}
}

func fixtureStorage(s string) ast.StorageClass {
	switch s {
	case "extern":
		return ast.StorageExtern
	case "static":
		return ast.StorageStatic
	default:
		return ast.StorageNone
	}
}

func parseFixtureType(name string) (ast.Type, error) {
	switch name {
	case "void":
		return ast.Void, nil
	case "bool":
		return ast.Bool, nil
	case "char":
		return ast.Char, nil
	case "unsigned char":
		return ast.UnsignedCh, nil
	case "short":
		return ast.NewShort(true), nil
	case "unsigned short":
		return ast.NewShort(false), nil
	case "int":
		return ast.NewInt(true), nil
	case "unsigned int", "unsigned":
		return ast.NewInt(false), nil
	case "long":
		return ast.NewLong(true), nil
	case "unsigned long":
		return ast.NewLong(false), nil
	case "long long":
		return ast.NewLongLong(true), nil
	case "unsigned long long":
		return ast.NewLongLong(false), nil
	case "float":
		return ast.Float, nil
	case "double":
		return ast.Double, nil
	case "long double":
		return ast.LongDouble, nil
	default:
		return nil, cerrors.New(cerrors.InvalidParameter, "unknown fixture type name: "+name)
	}
}
