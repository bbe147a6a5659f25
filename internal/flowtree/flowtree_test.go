package flowtree

import (
	"testing"

	"cirt/internal/ir"
)

func TestBreakContinueInsideLoop(t *testing.T) {
	tree := NewTree()
	loop := tree.PushLoop()
	if err := tree.RecordBreak(5); err != nil {
		t.Fatalf("RecordBreak() error: %v", err)
	}
	if err := tree.RecordContinue(3); err != nil {
		t.Fatalf("RecordContinue() error: %v", err)
	}
	tree.Pop()

	b := ir.NewBuilder()
	b.Instructions = make([]ir.Instruction, 10)
	PatchBreaks(b, loop, 100)
	PatchContinues(b, loop, 200)
	if b.Instructions[5].Target != 100 {
		t.Errorf("break patch target = %d, want 100", b.Instructions[5].Target)
	}
	if b.Instructions[3].Target != 200 {
		t.Errorf("continue patch target = %d, want 200", b.Instructions[3].Target)
	}
}

func TestBreakOutsideLoopOrSwitchErrors(t *testing.T) {
	tree := NewTree()
	if err := tree.RecordBreak(0); err == nil {
		t.Errorf("RecordBreak() outside loop/switch = nil error, want error")
	}
}

func TestContinueIgnoresEnclosingSwitch(t *testing.T) {
	tree := NewTree()
	loop := tree.PushLoop()
	tree.PushSwitch()
	if err := tree.RecordContinue(7); err != nil {
		t.Fatalf("RecordContinue() inside switch-inside-loop error: %v", err)
	}
	if len(loop.ContinueTargets) != 1 {
		t.Errorf("continue target recorded against switch, not enclosing loop")
	}
}

func TestAddCaseRequiresEnclosingSwitch(t *testing.T) {
	tree := NewTree()
	if err := tree.AddCase(false, 1, 0); err == nil {
		t.Errorf("AddCase() outside switch = nil error, want error")
	}

	sw := tree.PushSwitch()
	if err := tree.AddCase(false, 1, 10); err != nil {
		t.Fatalf("AddCase() error: %v", err)
	}
	if err := tree.AddCase(true, 0, 20); err != nil {
		t.Fatalf("AddCase(default) error: %v", err)
	}
	if len(sw.Cases) != 2 {
		t.Fatalf("switch has %d cases, want 2", len(sw.Cases))
	}
	if !sw.Cases[1].IsDefault {
		t.Errorf("second case IsDefault = false, want true")
	}
}

func TestGotoBackwardResolvesImmediately(t *testing.T) {
	tree := NewTree()
	b := ir.NewBuilder()
	b.Instructions = make([]ir.Instruction, 5)
	tree.DeclareLabel(b, "top", 1)
	target, ok := tree.ResolveGoto("top", 4)
	if !ok || target != 1 {
		t.Errorf("ResolveGoto(backward) = (%d, %v), want (1, true)", target, ok)
	}
}

func TestGotoForwardPatchesOnceLabelDeclared(t *testing.T) {
	tree := NewTree()
	b := ir.NewBuilder()
	b.Instructions = make([]ir.Instruction, 5)
	_, ok := tree.ResolveGoto("end", 0)
	if ok {
		t.Fatalf("ResolveGoto(forward, undeclared) reported resolved, want pending")
	}
	tree.DeclareLabel(b, "end", 3)
	if b.Instructions[0].Target != 3 {
		t.Errorf("forward goto patch target = %d, want 3", b.Instructions[0].Target)
	}
}

func TestVerifyAllLabelsResolvedReportsUnresolvedGoto(t *testing.T) {
	tree := NewTree()
	tree.ResolveGoto("nowhere", 0)
	missing := tree.VerifyAllLabelsResolved()
	if len(missing) != 1 || missing[0] != "nowhere" {
		t.Errorf("VerifyAllLabelsResolved() = %v, want [nowhere]", missing)
	}
}

func TestScopePopsToBreakCountsOnlyVLABlocksInsideTheLoop(t *testing.T) {
	tree := NewTree()
	tree.PushLoop()
	tree.PushBlock(true)
	tree.PushBlock(false)
	tree.PushBlock(true)
	if got := tree.ScopePopsToBreak(); got != 2 {
		t.Errorf("ScopePopsToBreak() = %d, want 2 (two VLA blocks nested inside the loop)", got)
	}
}

func TestScopePopsToContinueCrossesAnInterveningSwitch(t *testing.T) {
	tree := NewTree()
	tree.PushLoop()
	tree.PushBlock(true)
	tree.PushSwitch()
	tree.PushBlock(true)
	// continue always targets the nearest loop, never a nearer switch, so it
	// crosses every VLA block between here and that loop - including the one
	// outside the switch.
	if got := tree.ScopePopsToContinue(); got != 2 {
		t.Errorf("ScopePopsToContinue() = %d, want 2", got)
	}
}

func TestScopePopsToFunctionExitCountsEveryOpenVLABlock(t *testing.T) {
	tree := NewTree()
	tree.PushBlock(true)
	tree.PushLoop()
	tree.PushBlock(true)
	tree.PushBlock(false)
	if got := tree.ScopePopsToFunctionExit(); got != 2 {
		t.Errorf("ScopePopsToFunctionExit() = %d, want 2", got)
	}
}

func TestScopePopsToBreakZeroWithNoVLABlocks(t *testing.T) {
	tree := NewTree()
	tree.PushLoop()
	tree.PushBlock(false)
	if got := tree.ScopePopsToBreak(); got != 0 {
		t.Errorf("ScopePopsToBreak() = %d, want 0", got)
	}
}
