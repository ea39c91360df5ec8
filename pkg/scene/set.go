package scene

import (
	"fmt"
	"strings"
)

// Reserved system scene ids. Content refers to them through the SYS
// namespace; they exist in every set without being declared.
const (
	RestartSceneID = "SYS.RESTART"
)

// Restart is the reserved scene whose only purpose is to discard the
// session state and resolve the initial scene again.
var Restart = &Scene{
	ID:     RestartSceneID,
	Header: "RESTART",
	Text:   "RESTART",
	OnEnter: []TriggeredAction{
		{Do: Action{Target: TargetGame, Verb: VerbRestart}, If: "True"},
	},
}

// Localized-string keys every set must provide (§ UI chrome).
const (
	StrStart         = "start"
	StrLoad          = "load"
	StrSave          = "save"
	StrLoadShort     = "load_short"
	StrSaveShort     = "save_short"
	StrCredits       = "credits"
	StrExit          = "exit"
	StrLanguage      = "language"
	StrSaved         = "saved"
	StrLoaded        = "loaded"
	StrEmpty         = "empty"
	StrRestartNeeded = "restart_needed"
)

// RequiredStrings is the fixed key set of the localized-string table.
var RequiredStrings = []string{
	StrStart, StrLoad, StrSave, StrLoadShort, StrSaveShort,
	StrCredits, StrExit, StrLanguage, StrSaved, StrLoaded,
	StrEmpty, StrRestartNeeded,
}

// MyVar is one custom-variable formula. Formulas run in declaration order
// at the start of every resolution pass; each may reference the values
// computed before it, but not itself or later entries.
type MyVar struct {
	Name string `json:"name"`
	Expr string `json:"expr"`
}

// Set is the immutable scene collection for one language: the scenes, the
// global overlays applied to every scene, the localized-string table and
// the custom-variable formulas.
type Set struct {
	Language            string            `json:"language"`
	Start               string            `json:"start"` // initial scene id
	Strings             map[string]string `json:"strings"`
	Items               map[string]string `json:"items,omitempty"` // item id -> display name
	MyVars              []MyVar           `json:"my_vars,omitempty"`
	GlobalTextAdditions []Conditional     `json:"global_text_additions,omitempty"`
	GlobalImages        []Conditional     `json:"global_images,omitempty"`
	Scenes              map[string]*Scene `json:"scenes"`
}

// Get resolves a scene id or a reserved SYS.* id. Unknown ids are content
// errors; nothing recovers from them at runtime.
func (s *Set) Get(id string) (*Scene, error) {
	if strings.HasPrefix(id, "SYS.") {
		if id == RestartSceneID {
			return Restart, nil
		}
		return nil, &UnknownSceneError{ID: id, Language: s.Language}
	}
	sc, ok := s.Scenes[id]
	if !ok {
		return nil, &UnknownSceneError{ID: id, Language: s.Language}
	}
	return sc, nil
}

// Localized returns a UI chrome string by key. Missing keys fall back to
// the key itself; the validator treats them as errors.
func (s *Set) Localized(key string) string {
	if v, ok := s.Strings[key]; ok {
		return v
	}
	return key
}

// ItemName returns the display name for an inventory item, falling back to
// the raw item id for items without a localization entry.
func (s *Set) ItemName(item string) string {
	if v, ok := s.Items[item]; ok {
		return v
	}
	return item
}

// Check verifies set-level invariants: a known start scene, resolvable exit
// and goto targets, and a complete localized-string table. It does not parse
// expressions; cmd/validate does the full sweep.
func (s *Set) Check() error {
	if s.Language == "" {
		return fmt.Errorf("scene set: missing language")
	}
	if s.Start == "" {
		return fmt.Errorf("scene set %q: missing start scene", s.Language)
	}
	if _, err := s.Get(s.Start); err != nil {
		return fmt.Errorf("scene set %q: start scene: %w", s.Language, err)
	}
	for key := range s.Scenes {
		if key == "" {
			return fmt.Errorf("scene set %q: empty scene id", s.Language)
		}
	}
	for id, sc := range s.Scenes {
		for i, exit := range sc.Exits {
			if _, err := s.Get(exit.To); err != nil {
				return fmt.Errorf("scene %q exit %d: %w", id, i, err)
			}
		}
		for i, ta := range sc.OnEnter {
			if err := ta.Do.Validate(); err != nil {
				return fmt.Errorf("scene %q on_enter %d: %w", id, i, err)
			}
			if ta.Do.Target == TargetGame && ta.Do.Verb == VerbGoto {
				if _, err := s.Get(ta.Do.Scene); err != nil {
					return fmt.Errorf("scene %q on_enter %d: %w", id, i, err)
				}
			}
		}
	}
	for _, key := range RequiredStrings {
		if _, ok := s.Strings[key]; !ok {
			return fmt.Errorf("scene set %q: missing localized string %q", s.Language, key)
		}
	}
	return nil
}
