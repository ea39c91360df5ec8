// Package engine evaluates scenes against session state: it resolves the
// layered conditional presentation of a scene, applies on-enter actions,
// and drives scene-to-scene transitions. One resolution pass runs at a
// time; every condition inside a pass sees the same random draw and the
// same state snapshot.
package engine

import (
	"fmt"

	"github.com/GD-alt/hoofd/pkg/expr"
	"github.com/GD-alt/hoofd/pkg/scene"
	"github.com/GD-alt/hoofd/pkg/state"
)

// ResolvedExit is an exit whose condition held. Its position in the
// filtered list is the choice index the controller accepts back.
type ResolvedExit struct {
	Label string
	To    string
}

// Presentation is the fully resolved display form of a scene, ready for
// the UI layer. The engine never hands out raw scene templates.
type Presentation struct {
	SceneID   string
	Header    string
	Text      string
	Image     string
	Speaker   string
	Exits     []ResolvedExit
	Inventory []string // display lines, "name xCount"; localized "empty" line when bare
}

// Resolver computes presentations. It holds the per-language set for the
// global overlays and the localization tables.
type Resolver struct {
	set  *scene.Set
	eval *evaluator
}

// NewResolver builds a resolver over one scene set.
func NewResolver(set *scene.Set, eval *evaluator) *Resolver {
	return &Resolver{set: set, eval: eval}
}

// Resolve computes the presentation of a scene against one pass
// environment. Precedence rules, in this order:
//
//  1. text: base, then conditional texts with last match winning, then
//     every matching conditional addition appended in order, then every
//     matching global addition appended in order
//  2. image: base, then conditional images last-match-wins, then global
//     image overrides last-match-wins (globals scan later, so they win)
//  3. speaker: base, then conditional speakers last-match-wins
//  4. exits: declaration-order filter; surviving order is the new index
//  5. sanitize, if enabled for the scene
//  6. template formatting of text and exit labels, if enabled
//  7. inventory display lines from the de-duplicated item counts
func (r *Resolver) Resolve(sc *scene.Scene, gs *state.GameState, env expr.Env) (*Presentation, error) {
	text := sc.Text
	for _, ct := range sc.IfTexts {
		ok, err := r.eval.cond(ct.If, env)
		if err != nil {
			return nil, fmt.Errorf("scene %q conditional text: %w", sc.ID, err)
		}
		if ok {
			text = ct.Value
		}
	}
	text += "\n"
	for _, ct := range sc.IfTextAdditions {
		ok, err := r.eval.cond(ct.If, env)
		if err != nil {
			return nil, fmt.Errorf("scene %q text addition: %w", sc.ID, err)
		}
		if ok {
			text += "\n" + ct.Value
		}
	}
	for _, ct := range r.set.GlobalTextAdditions {
		ok, err := r.eval.cond(ct.If, env)
		if err != nil {
			return nil, fmt.Errorf("scene %q global addition: %w", sc.ID, err)
		}
		if ok {
			text += "\n" + ct.Value
		}
	}

	img := sc.Image
	for _, ci := range sc.IfImages {
		ok, err := r.eval.cond(ci.If, env)
		if err != nil {
			return nil, fmt.Errorf("scene %q conditional image: %w", sc.ID, err)
		}
		if ok {
			img = ci.Value
		}
	}
	for _, ci := range r.set.GlobalImages {
		ok, err := r.eval.cond(ci.If, env)
		if err != nil {
			return nil, fmt.Errorf("scene %q global image: %w", sc.ID, err)
		}
		if ok {
			img = ci.Value
		}
	}

	speaker := sc.Speaker
	for _, cs := range sc.IfSpeakers {
		ok, err := r.eval.cond(cs.If, env)
		if err != nil {
			return nil, fmt.Errorf("scene %q conditional speaker: %w", sc.ID, err)
		}
		if ok {
			speaker = cs.Value
		}
	}

	exits := make([]ResolvedExit, 0, len(sc.Exits))
	for i, exit := range sc.Exits {
		ok, err := r.eval.cond(exit.If, env)
		if err != nil {
			return nil, fmt.Errorf("scene %q exit %d: %w", sc.ID, i, err)
		}
		if ok {
			exits = append(exits, ResolvedExit{Label: exit.Label, To: exit.To})
		}
	}

	if sc.Sanitize {
		text = Sanitize(text)
	}
	if sc.FormattingEnabled() {
		var err error
		if text, err = r.eval.format(text, env); err != nil {
			return nil, fmt.Errorf("scene %q text: %w", sc.ID, err)
		}
		for i := range exits {
			if exits[i].Label, err = r.eval.format(exits[i].Label, env); err != nil {
				return nil, fmt.Errorf("scene %q exit %d label: %w", sc.ID, i, err)
			}
		}
	}

	return &Presentation{
		SceneID:   sc.ID,
		Header:    sc.Header,
		Text:      text,
		Image:     img,
		Speaker:   speaker,
		Exits:     exits,
		Inventory: r.inventoryDisplay(gs),
	}, nil
}

// inventoryDisplay renders the stacked inventory, one line per distinct
// item in first-acquisition order.
func (r *Resolver) inventoryDisplay(gs *state.GameState) []string {
	counts := gs.InventoryCounts()
	if len(counts) == 0 {
		return []string{r.set.Localized(scene.StrEmpty)}
	}

	lines := make([]string, 0, len(counts))
	seen := make(map[string]bool, len(counts))
	for _, item := range gs.Inventory {
		if seen[item] {
			continue
		}
		seen[item] = true
		lines = append(lines, fmt.Sprintf("%s x%d", r.set.ItemName(item), counts[item]))
	}
	return lines
}
