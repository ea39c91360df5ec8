// Package state holds the mutable session state of a running game: where
// the player is, what they carry, which story flags are set. The JSON shape
// of GameState is the persistence snapshot contract; saving and loading
// round-trips it wholesale.
package state

import (
	"time"

	"github.com/google/uuid"
)

// GameState is the single mutable state of a game session. It is owned by
// the session controller and mutated only through the action executor.
type GameState struct {
	ID            uuid.UUID      `json:"id"`
	CurrentScene  string         `json:"current_scene"`
	PreviousScene string         `json:"previous_scene,omitempty"` // empty when no prior scene
	Inventory     []string       `json:"inventory"`                // ordered multiset; duplicates stack
	Modifiers     []string       `json:"modifiers"`                // ordered multiset of story flags
	Variables     map[string]any `json:"variables"`
	History       []string       `json:"history"` // visited scene ids, oldest first
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at,omitempty"`
}

// NewGameState returns a fresh session state. Restart replaces the whole
// state with a new one of these; nothing is merged.
func NewGameState() *GameState {
	return &GameState{
		ID:        uuid.New(),
		Inventory: make([]string, 0),
		Modifiers: make([]string, 0),
		Variables: make(map[string]any),
		History:   make([]string, 0),
		CreatedAt: time.Now().UTC(),
	}
}

// InventoryCounts collapses the ordered inventory into item -> count.
func (gs *GameState) InventoryCounts() map[string]int {
	return countNames(gs.Inventory)
}

// ModifierCounts collapses the ordered modifier list into name -> count.
func (gs *GameState) ModifierCounts() map[string]int {
	return countNames(gs.Modifiers)
}

// RecordVisit appends a scene id to the history, evicting the oldest
// entries beyond limit. A limit of zero keeps history unbounded.
func (gs *GameState) RecordVisit(sceneID string, limit int) {
	gs.History = append(gs.History, sceneID)
	if limit > 0 && len(gs.History) > limit {
		gs.History = gs.History[len(gs.History)-limit:]
	}
}

func countNames(names []string) map[string]int {
	counts := make(map[string]int, len(names))
	for _, n := range names {
		counts[n]++
	}
	return counts
}
