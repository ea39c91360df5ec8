// Package scene defines the story content model: scenes with conditional
// presentation overlays, exits, and on-enter actions, grouped into
// per-language sets. Content is immutable once loaded; all conditions and
// action gates are plain-text expressions evaluated by pkg/expr.
package scene

import "fmt"

// Conditional pairs a content value with the expression gating it. The same
// shape backs replacement lists (last match wins) and addition lists (every
// match appends); the resolver decides which rule applies.
type Conditional struct {
	Value string `json:"value"`
	If    string `json:"if"`
}

// Exit is one labeled transition out of a scene. Declaration order matters:
// it is the display order, and the filtered position is the choice index.
type Exit struct {
	Label string `json:"label"`
	To    string `json:"to"` // scene id, or a reserved SYS.* id
	If    string `json:"if,omitempty"`
}

// TriggeredAction is one on-enter entry: an action gated by a condition.
type TriggeredAction struct {
	Do Action `json:"do"`
	If string `json:"if,omitempty"`
}

// Scene is one node of the story graph.
type Scene struct {
	ID              string            `json:"-"` // set from the set's scene key
	Header          string            `json:"header"`
	Text            string            `json:"text"`
	Image           string            `json:"image,omitempty"`
	Speaker         string            `json:"speaker,omitempty"`
	Exits           []Exit            `json:"exits"`
	OnEnter         []TriggeredAction `json:"on_enter,omitempty"`
	IfTexts         []Conditional     `json:"if_texts,omitempty"`
	IfTextAdditions []Conditional     `json:"if_text_additions,omitempty"`
	IfImages        []Conditional     `json:"if_images,omitempty"`
	IfSpeakers      []Conditional     `json:"if_speakers,omitempty"`
	Formatting      *bool             `json:"formatting,omitempty"` // template substitution; default on
	Sanitize        bool              `json:"sanitize,omitempty"`   // escape text for literal display
}

// FormattingEnabled reports whether resolved text and exit labels undergo
// placeholder substitution. Content enables it by default.
func (s *Scene) FormattingEnabled() bool {
	return s.Formatting == nil || *s.Formatting
}

// UnknownSceneError marks a reference to a scene id that does not exist in
// the set. Unresolved targets are a content defect, not a runtime condition.
type UnknownSceneError struct {
	ID       string
	Language string
}

func (e *UnknownSceneError) Error() string {
	return fmt.Sprintf("unknown scene %q in %q scene set", e.ID, e.Language)
}
