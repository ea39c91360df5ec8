package engine

import (
	"log/slog"

	"github.com/GD-alt/hoofd/pkg/expr"
	"github.com/GD-alt/hoofd/pkg/scene"
	"github.com/GD-alt/hoofd/pkg/state"
)

// sceneRef is the expression-visible face of a scene: conditions address
// scenes by id only (player.previous.id == "first").
type sceneRef struct{ id string }

func (r *sceneRef) Attr(name string) (expr.Value, bool) {
	switch name {
	case "id":
		return r.id, true
	}
	return nil, false
}

// playerView exposes the player to conditions, read-only.
type playerView struct{ gs *state.GameState }

func (p *playerView) Attr(name string) (expr.Value, bool) {
	switch name {
	case "current":
		if p.gs.CurrentScene == "" {
			return nil, true
		}
		return &sceneRef{id: p.gs.CurrentScene}, true
	case "previous":
		if p.gs.PreviousScene == "" {
			return nil, true
		}
		return &sceneRef{id: p.gs.PreviousScene}, true
	case "inventory":
		return p.gs.Inventory, true
	}
	return nil, false
}

// sysView exposes the reserved system scenes under the SYS namespace.
type sysView struct{}

func (sysView) Attr(name string) (expr.Value, bool) {
	switch name {
	case "RESTART":
		return &sceneRef{id: scene.RestartSceneID}, true
	}
	return nil, false
}

// buildEnv assembles the fixed-name environment for one resolution pass.
// Every condition and formula in the pass shares the same random draw and
// the same state snapshot semantics; nothing here may mutate gs.
func buildEnv(gs *state.GameState, rnum int, my expr.Dict) expr.Env {
	draw := float64(rnum)
	return expr.Env{
		"player":    &playerView{gs: gs},
		"mods":      gs.Modifiers,
		"modsdict":  countsToDict(gs.ModifierCounts()),
		"inventory": gs.Inventory,
		"invdict":   countsToDict(gs.InventoryCounts()),
		"vars":      varsToDict(gs.Variables),
		"random":    draw,
		"rnum":      draw,
		"SYS":       sysView{},
		"MY":        my,
	}
}

func countsToDict(counts map[string]int) expr.Dict {
	d := make(expr.Dict, len(counts))
	for k, v := range counts {
		d[k] = float64(v)
	}
	return d
}

func varsToDict(vars map[string]any) expr.Dict {
	d := make(expr.Dict, len(vars))
	for k, v := range vars {
		switch t := v.(type) {
		case int:
			d[k] = float64(t)
		default:
			d[k] = t
		}
	}
	return d
}

// EvalPolicy decides how a malformed or unresolvable condition is treated.
// Content defects fail loudly during development; a shipped game may prefer
// to log and carry on with the condition counted false. The choice is made
// once, at session construction.
type EvalPolicy int

const (
	// EvalStrict fails the scene transition on the first bad expression.
	EvalStrict EvalPolicy = iota
	// EvalLenient logs bad expressions and treats them as false.
	EvalLenient
)

// evaluator applies the eval policy to condition checks.
type evaluator struct {
	policy EvalPolicy
	logger *slog.Logger
}

// cond evaluates a gate expression. A missing condition counts as true:
// an exit or action without an "if" is unconditional.
func (e *evaluator) cond(src string, env expr.Env) (bool, error) {
	if src == "" {
		return true, nil
	}
	ok, err := expr.EvalBool(src, env)
	if err != nil {
		if e.policy == EvalLenient {
			e.logger.Warn("condition failed to evaluate, treating as false", "expr", src, "error", err)
			return false, nil
		}
		return false, &ContentError{Err: err}
	}
	return ok, nil
}
