package engine

import (
	"testing"

	"github.com/GD-alt/hoofd/pkg/scene"
	"github.com/GD-alt/hoofd/pkg/state"
)

func apply(t *testing.T, gs *state.GameState, a scene.Action) Result {
	t.Helper()
	res, err := Executor{}.Apply(a, gs, buildEnv(gs, 0, nil))
	if err != nil {
		t.Fatalf("Apply(%s): %v", a, err)
	}
	return res
}

func TestInventoryActions(t *testing.T) {
	gs := state.NewGameState()

	apply(t, gs, scene.Action{Target: scene.TargetInventory, Verb: scene.VerbAdd, Item: "Money"})
	apply(t, gs, scene.Action{Target: scene.TargetInventory, Verb: scene.VerbAddMany, Item: "Money", Count: 9})
	apply(t, gs, scene.Action{Target: scene.TargetInventory, Verb: scene.VerbAdd, Item: "Sword"})

	if counts := gs.InventoryCounts(); counts["Money"] != 10 || counts["Sword"] != 1 {
		t.Fatalf("counts after adds: %v", counts)
	}

	apply(t, gs, scene.Action{Target: scene.TargetInventory, Verb: scene.VerbRemove, Item: "Money"})
	if counts := gs.InventoryCounts(); counts["Money"] != 9 {
		t.Errorf("remove should drop exactly one: %v", counts)
	}

	apply(t, gs, scene.Action{Target: scene.TargetInventory, Verb: scene.VerbRemoveAll, Item: "Money"})
	if counts := gs.InventoryCounts(); counts["Money"] != 0 || counts["Sword"] != 1 {
		t.Errorf("remove-all should keep other items: %v", counts)
	}
}

func TestInventoryRemoveAbsentFails(t *testing.T) {
	gs := state.NewGameState()
	_, err := Executor{}.Apply(
		scene.Action{Target: scene.TargetInventory, Verb: scene.VerbRemove, Item: "Ghost"},
		gs, buildEnv(gs, 0, nil))
	if err == nil {
		t.Error("removing an absent item is a content error, not a no-op")
	}
}

func TestClearIdempotent(t *testing.T) {
	gs := state.NewGameState()
	gs.Inventory = []string{"Money", "Sword"}

	for i := 0; i < 2; i++ {
		apply(t, gs, scene.Action{Target: scene.TargetInventory, Verb: scene.VerbClear})
		if len(gs.Inventory) != 0 {
			t.Fatalf("clear pass %d left %v", i, gs.Inventory)
		}
	}
}

func TestModifierActions(t *testing.T) {
	gs := state.NewGameState()

	apply(t, gs, scene.Action{Target: scene.TargetModifiers, Verb: scene.VerbAdd, Item: "overpray"})
	apply(t, gs, scene.Action{Target: scene.TargetModifiers, Verb: scene.VerbAdd, Item: "overpray"})
	if counts := gs.ModifierCounts(); counts["overpray"] != 2 {
		t.Errorf("modifiers stack like inventory: %v", counts)
	}

	apply(t, gs, scene.Action{Target: scene.TargetModifiers, Verb: scene.VerbRemoveAll, Item: "overpray"})
	if len(gs.Modifiers) != 0 {
		t.Errorf("remove-all left %v", gs.Modifiers)
	}
}

func TestVariableActions(t *testing.T) {
	gs := state.NewGameState()

	apply(t, gs, scene.Action{Target: scene.TargetVariables, Verb: scene.VerbAdd, Name: "gold", Value: float64(5)})
	if gs.Variables["gold"] != float64(5) {
		t.Fatalf("add: %v", gs.Variables)
	}

	apply(t, gs, scene.Action{Target: scene.TargetVariables, Verb: scene.VerbUpdate, Name: "gold", Value: float64(7)})
	if gs.Variables["gold"] != float64(7) {
		t.Fatalf("update: %v", gs.Variables)
	}

	apply(t, gs, scene.Action{Target: scene.TargetVariables, Verb: scene.VerbInc, Name: "gold", Value: float64(3)})
	apply(t, gs, scene.Action{Target: scene.TargetVariables, Verb: scene.VerbDec, Name: "gold", Value: float64(4)})
	if gs.Variables["gold"] != float64(6) {
		t.Fatalf("inc/dec: %v", gs.Variables)
	}

	apply(t, gs, scene.Action{Target: scene.TargetVariables, Verb: scene.VerbRemove, Name: "gold"})
	if _, ok := gs.Variables["gold"]; ok {
		t.Fatal("remove left the variable")
	}
}

func TestVariableSetEvaluatesExpression(t *testing.T) {
	gs := state.NewGameState()
	gs.Inventory = []string{"Money", "Money", "Money"}

	apply(t, gs, scene.Action{
		Target: scene.TargetVariables, Verb: scene.VerbSet,
		Name: "wealth", Expr: `invdict.get("Money", 0) * 10`,
	})
	if gs.Variables["wealth"] != float64(30) {
		t.Errorf("set should evaluate against current state: %v", gs.Variables)
	}
}

func TestVariableErrors(t *testing.T) {
	gs := state.NewGameState()
	gs.Variables["title"] = "Baron"

	exec := Executor{}
	env := buildEnv(gs, 0, nil)

	if _, err := exec.Apply(scene.Action{Target: scene.TargetVariables, Verb: scene.VerbInc, Name: "title", Value: float64(1)}, gs, env); err == nil {
		t.Error("inc on a non-numeric variable must fail")
	}
	if _, err := exec.Apply(scene.Action{Target: scene.TargetVariables, Verb: scene.VerbInc, Name: "missing", Value: float64(1)}, gs, env); err == nil {
		t.Error("inc on a missing variable must fail")
	}
	if _, err := exec.Apply(scene.Action{Target: scene.TargetVariables, Verb: scene.VerbRemove, Name: "missing"}, gs, env); err == nil {
		t.Error("removing a missing variable must fail")
	}
	if _, err := exec.Apply(scene.Action{Target: scene.TargetVariables, Verb: scene.VerbSet, Name: "x", Expr: `bogus +`}, gs, env); err == nil {
		t.Error("a malformed set expression must fail")
	}
}

func TestGameActionControls(t *testing.T) {
	gs := state.NewGameState()

	tests := []struct {
		action scene.Action
		want   Control
	}{
		{scene.Action{Target: scene.TargetGame, Verb: scene.VerbGoto, Scene: "x"}, ControlGoto},
		{scene.Action{Target: scene.TargetGame, Verb: scene.VerbRestart}, ControlRestart},
		{scene.Action{Target: scene.TargetGame, Verb: scene.VerbSave}, ControlSave},
		{scene.Action{Target: scene.TargetGame, Verb: scene.VerbLoad}, ControlLoad},
		{scene.Action{Target: scene.TargetGame, Verb: scene.VerbDestroy}, ControlDestroy},
		{scene.Action{Target: scene.TargetGame, Verb: scene.VerbExit}, ControlExit},
	}
	for _, tt := range tests {
		res := apply(t, gs, tt.action)
		if res.Control != tt.want {
			t.Errorf("%s: control %v, want %v", tt.action, res.Control, tt.want)
		}
	}

	res := apply(t, gs, scene.Action{Target: scene.TargetGame, Verb: scene.VerbNotify, Message: "Goodbye."})
	if res.Control != ControlNone || res.Notice != "Goodbye." {
		t.Errorf("notify should carry a notice without control flow: %+v", res)
	}

	res = apply(t, gs, scene.Action{Target: scene.TargetGame, Verb: scene.VerbGoto, Scene: "x"})
	if res.Scene != "x" {
		t.Errorf("goto should carry its target: %+v", res)
	}
}
