// Package translator implements C10: the function-definition driver and
// the top-level module translator that orchestrates every other C-package
// into one complete ir.Module (spec §4.10). It generalizes the teacher's
// top-level Compiler/cmd/sentra orchestration (internal/compiler's single
// entry point chaining lexer→parser→compiler→vm) into a pipeline chaining
// C6(scope)→C4(types)→C5(debug info)→C7/C8(bodies)→C9(inline asm), one
// function definition at a time, into a shared *ir.Module.
package translator

import (
	"cirt/internal/ast"
	"cirt/internal/cerrors"
	"cirt/internal/debuginfo"
	"cirt/internal/ir"
	"cirt/internal/lowerexpr"
	"cirt/internal/lowerstmt"
	"cirt/internal/scopetranslate"
	"cirt/internal/targetenv"
	"cirt/internal/typetranslate"
)

// localFrame tracks one function's local-variable slot assignment as C8
// encounters block-scoped declarations in source order, and resolves
// identifier lookups for C7/C8 by bridging to the enclosing module's
// global symbol table when a name isn't a local. It implements both
// lowerexpr.SymbolResolver and lowerstmt.LocalAllocator.
type localFrame struct {
	global *scopetranslate.Translator
	slots  map[string]int
	next   int
}

func newLocalFrame(global *scopetranslate.Translator) *localFrame {
	return &localFrame{global: global, slots: make(map[string]int)}
}

func (f *localFrame) AllocateLocal(decl *ast.Declaration) (int, error) {
	slot := f.next
	f.next++
	f.slots[decl.Name] = slot
	return slot, nil
}

func (f *localFrame) LocalSlot(name string) (int, bool) {
	slot, ok := f.slots[name]
	return slot, ok
}

func (f *localFrame) GlobalSymbol(name string) (string, bool) {
	return f.global.GlobalSymbol(name)
}

var _ lowerexpr.SymbolResolver = (*localFrame)(nil)
var _ lowerstmt.LocalAllocator = (*localFrame)(nil)

// FunctionTranslator drives C10's per-function pipeline.
type FunctionTranslator struct {
	Oracle        targetenv.Oracle
	Types         *typetranslate.Context
	TypeBuilder   *typetranslate.Builder
	DebugBuilder  *debuginfo.Builder
	Scope         *scopetranslate.Translator
}

// TranslateFunction is C10's entry point: `translate_function(fn)`. It
// lowers one ast.FunctionDefinition's parameter/return types, debug entry,
// and body into a fresh ir.Function, allocating parameter slots before the
// body is walked so identifier references to parameters resolve the same
// way as any other local.
func (ft *FunctionTranslator) TranslateFunction(fn *ast.FunctionDefinition) (*ir.Function, []ir.InlineAsmDescriptor, error) {
	frame := newLocalFrame(ft.Scope)
	for _, name := range fn.ParamNames {
		if name == "" {
			continue
		}
		if _, err := frame.AllocateLocal(&ast.Declaration{Name: name}); err != nil {
			return nil, nil, err
		}
	}

	builder := ir.NewBuilder()
	lowerer := lowerstmt.New(builder, ft.Oracle, frame, frame)
	lowerer.SetDebugBuilder(ft.DebugBuilder)

	var debugEntry *debuginfo.EntryID
	codeBegin := builder.Here()
	if ft.DebugBuilder != nil {
		id := ft.DebugBuilder.NewLexicalBlock(fn.Declaration.Name, codeBegin)
		debugEntry = &id
		for _, p := range fn.Type.Parameters {
			if p.Type == nil {
				continue
			}
			if err := ft.DebugBuilder.AddParameter(id, p.Name, p.Type); err != nil {
				return nil, nil, cerrors.Wrap(cerrors.AnalysisError, err, "emitting parameter debug entry for function "+fn.Declaration.Name)
			}
			if p.Name == "" {
				continue
			}
			if slot, ok := frame.LocalSlot(p.Name); ok {
				if err := ft.DebugBuilder.AddLocalVariable(id, p.Name, p.Type, slot); err != nil {
					return nil, nil, cerrors.Wrap(cerrors.AnalysisError, err, "emitting local-variable debug entry for function "+fn.Declaration.Name)
				}
			}
		}
	}

	if fn.Body != nil {
		if err := lowerer.Lower(fn.Body); err != nil {
			return nil, nil, cerrors.Wrap(cerrors.AnalysisError, err, "lowering body of function "+fn.Declaration.Name)
		}
	}
	if verifyErr := lowerer.VerifyLabels(); verifyErr != nil {
		return nil, nil, verifyErr
	}
	if idx := builder.VerifyPatched(); idx != -1 {
		return nil, nil, cerrors.At(cerrors.InvalidState, builder.DebugLines[idx], "function "+fn.Declaration.Name+" left an unresolved branch/jump target (invariant 8§3: back-patch completeness)")
	}
	if debugEntry != nil {
		ft.DebugBuilder.SetCodeEnd(*debugEntry, builder.Here())
	}

	paramTypeIDs := make([]int, 0, len(fn.Type.Parameters))
	for _, p := range fn.Type.Parameters {
		if p.Type == nil {
			continue
		}
		idx, translateErr := ft.Types.TranslateObjectType(p.Type, ft.TypeBuilder, false, -1)
		if translateErr != nil {
			return nil, nil, translateErr
		}
		paramTypeIDs = append(paramTypeIDs, idx)
	}

	returnTypeID := -1
	if fn.Type.Return != nil {
		idx, translateErr := ft.Types.TranslateObjectType(fn.Type.Return, ft.TypeBuilder, false, -1)
		if translateErr != nil {
			return nil, nil, translateErr
		}
		returnTypeID = idx
	}

	layoutIdx := -1
	if fn.Declaration.Type != nil {
		idx, translateErr := ft.Types.TranslateObjectType(fn.Declaration.Type, ft.TypeBuilder, true, -1)
		if translateErr == nil {
			layoutIdx = idx
		}
	}

	if ft.DebugBuilder != nil {
		if _, err := ft.DebugBuilder.EmitType(fn.Type); err != nil {
			return nil, nil, cerrors.Wrap(cerrors.AnalysisError, err, "emitting debug entry for function "+fn.Declaration.Name)
		}
	}

	symbol := fn.Declaration.Name
	if fn.Declaration.AsmLabel != "" {
		symbol = fn.Declaration.AsmLabel
	}

	var irDebugEntry *int
	if debugEntry != nil {
		id := int(*debugEntry)
		irDebugEntry = &id
	}

	return &ir.Function{
		DeclarationID:     symbol,
		Body:              builder,
		LocalTypeLayoutID: layoutIdx,
		ParamTypeIDs:      paramTypeIDs,
		ReturnTypeID:      returnTypeID,
		DebugEntry:        irDebugEntry,
	}, lowerer.AsmTranslator.Descriptors, nil
}

// Translator is the module-level driver (spec §4.10's `Translator`,
// analogous to the teacher's top-level Compiler/cmd/sentra orchestration):
// it walks one ast.TranslationUnit, running C6's global-scope pass first
// and then C10's per-function pass, accumulating everything into a single
// ir.Module.
type Translator struct {
	Module *ir.Module
	Oracle targetenv.Oracle
}

func New(oracle targetenv.Oracle) *Translator {
	return &Translator{Module: ir.NewModule(), Oracle: oracle}
}

// Translate is the whole pipeline's entry point.
func (t *Translator) Translate(tu *ast.TranslationUnit) (*ir.Module, error) {
	scope := scopetranslate.New(t.Module)
	functions, err := scope.Translate(tu)
	if err != nil {
		return nil, err
	}

	typeCtx := typetranslate.NewContext(t.Oracle)
	typeBuilder := &typetranslate.Builder{}

	debugSizer := &oracleSizer{oracle: t.Oracle}
	debugTree := debuginfo.NewTree()
	debugBuilder := debuginfo.NewBuilder(debugTree, debugSizer)

	ft := &FunctionTranslator{
		Oracle:       t.Oracle,
		Types:        typeCtx,
		TypeBuilder:  typeBuilder,
		DebugBuilder: debugBuilder,
		Scope:        scope,
	}

	for _, fn := range functions {
		irFn, asmDescriptors, err := ft.TranslateFunction(fn)
		if err != nil {
			return nil, err
		}
		// Each function lowers inline asm into its own pool-local descriptor
		// list (instructions carry a pool-local InlineAsmID); merging into
		// the module's single InlineAssemblies list requires shifting every
		// InlineAsmOp instruction's id by how many descriptors were already
		// in the module (spec §4.9).
		offset := len(t.Module.InlineAssemblies)
		if offset != 0 {
			for i := range irFn.Body.Instructions {
				if irFn.Body.Instructions[i].Op == ir.InlineAsmOp {
					irFn.Body.Instructions[i].InlineAsmID += offset
				}
			}
		}
		t.Module.InlineAssemblies = append(t.Module.InlineAssemblies, asmDescriptors...)
		symbol := irFn.DeclarationID
		t.Module.Functions[symbol] = irFn
	}

	t.Module.Types = typeBuilder.Entries
	t.Module.DebugInfo = debugTree

	return t.Module, nil
}

// oracleSizer adapts targetenv.Oracle to debuginfo.Sizer: C5 only needs
// size/alignment, never the full designator-path ObjectInfo contract, so
// it depends on the narrower interface.
type oracleSizer struct {
	oracle targetenv.Oracle
}

func (s *oracleSizer) SizeAlign(t ast.Type) (int64, int, error) {
	info, err := s.oracle.ObjectInfo(t, nil)
	if err != nil {
		return 0, 0, err
	}
	return info.Size, info.Alignment, nil
}
