package engine

import (
	"fmt"

	"github.com/GD-alt/hoofd/pkg/expr"
	"github.com/GD-alt/hoofd/pkg/scene"
	"github.com/GD-alt/hoofd/pkg/state"
)

// Control signals how an applied action affects the rest of the current
// on-enter pass. Anything other than ControlNone short-circuits it.
type Control int

const (
	ControlNone    Control = iota
	ControlGoto            // resolve another scene; this pass is abandoned
	ControlRestart         // discard state, resolve the initial scene
	ControlSave            // hand off to the snapshot store
	ControlLoad            // replace state from the snapshot store
	ControlDestroy         // tear down the presentation, back to menu
	ControlExit            // terminate the session
)

// Result reports what an action did beyond mutating state.
type Result struct {
	Control Control
	Scene   string // goto target
	Notice  string // user-facing transient message
	Silent  bool   // suppress the save/load notice
}

// Executor applies the fixed action vocabulary to session state. All
// multiset and mapping mutations happen in place; removing something that
// is not there is a content error, never a silent no-op.
type Executor struct{}

// Apply runs a single action. The environment is only consulted for
// "variables set", which assigns the result of an expression.
func (Executor) Apply(a scene.Action, gs *state.GameState, env expr.Env) (Result, error) {
	if err := a.Validate(); err != nil {
		return Result{}, err
	}

	switch a.Target {
	case scene.TargetInventory:
		next, err := applyMultiset(gs.Inventory, a)
		if err != nil {
			return Result{}, fmt.Errorf("inventory: %w", err)
		}
		gs.Inventory = next
		return Result{}, nil

	case scene.TargetModifiers:
		next, err := applyMultiset(gs.Modifiers, a)
		if err != nil {
			return Result{}, fmt.Errorf("modifiers: %w", err)
		}
		gs.Modifiers = next
		return Result{}, nil

	case scene.TargetVariables:
		return Result{}, applyVariable(a, gs, env)

	case scene.TargetGame:
		switch a.Verb {
		case scene.VerbGoto:
			return Result{Control: ControlGoto, Scene: a.Scene}, nil
		case scene.VerbRestart:
			return Result{Control: ControlRestart}, nil
		case scene.VerbSave:
			return Result{Control: ControlSave, Silent: a.Silent}, nil
		case scene.VerbLoad:
			return Result{Control: ControlLoad, Silent: a.Silent}, nil
		case scene.VerbDestroy:
			return Result{Control: ControlDestroy}, nil
		case scene.VerbExit:
			return Result{Control: ControlExit}, nil
		case scene.VerbNotify:
			return Result{Notice: a.Message}, nil
		}
	}
	return Result{}, fmt.Errorf("unhandled action %s", a)
}

func applyMultiset(items []string, a scene.Action) ([]string, error) {
	switch a.Verb {
	case scene.VerbAdd:
		return append(items, a.Item), nil

	case scene.VerbAddMany:
		for i := 0; i < a.Count; i++ {
			items = append(items, a.Item)
		}
		return items, nil

	case scene.VerbRemove:
		for i, item := range items {
			if item == a.Item {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, contentErrf(a.String(), "cannot remove %q: not present", a.Item)

	case scene.VerbRemoveAll:
		kept := items[:0]
		for _, item := range items {
			if item != a.Item {
				kept = append(kept, item)
			}
		}
		return kept, nil

	case scene.VerbClear:
		return items[:0], nil
	}
	return nil, fmt.Errorf("unhandled verb %q", a.Verb)
}

func applyVariable(a scene.Action, gs *state.GameState, env expr.Env) error {
	if gs.Variables == nil {
		gs.Variables = make(map[string]any)
	}

	switch a.Verb {
	case scene.VerbAdd, scene.VerbUpdate:
		gs.Variables[a.Name] = normalizeValue(a.Value)
		return nil

	case scene.VerbSet:
		v, err := expr.Eval(a.Expr, env)
		if err != nil {
			return contentErrf(a.String(), "variable %q: %w", a.Name, err)
		}
		gs.Variables[a.Name] = v
		return nil

	case scene.VerbInc, scene.VerbDec:
		delta, _ := scene.NumericValue(a.Value) // Validate already checked
		current, ok := gs.Variables[a.Name]
		if !ok {
			return contentErrf(a.String(), "variable %q: not present", a.Name)
		}
		num, ok := scene.NumericValue(current)
		if !ok {
			return contentErrf(a.String(), "variable %q: not numeric (%T)", a.Name, current)
		}
		if a.Verb == scene.VerbDec {
			delta = -delta
		}
		gs.Variables[a.Name] = num + delta
		return nil

	case scene.VerbRemove:
		if _, ok := gs.Variables[a.Name]; !ok {
			return contentErrf(a.String(), "variable %q: not present", a.Name)
		}
		delete(gs.Variables, a.Name)
		return nil

	case scene.VerbClear:
		gs.Variables = make(map[string]any)
		return nil
	}
	return fmt.Errorf("unhandled verb %q", a.Verb)
}

// normalizeValue keeps stored variables in the evaluator's value domain so
// conditions and snapshots see the same types.
func normalizeValue(v any) any {
	if n, ok := scene.NumericValue(v); ok {
		return n
	}
	return v
}
