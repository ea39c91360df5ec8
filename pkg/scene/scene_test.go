package scene

import (
	"testing"
)

func minimalStrings() map[string]string {
	strings := make(map[string]string, len(RequiredStrings))
	for _, key := range RequiredStrings {
		strings[key] = key
	}
	return strings
}

func testSet() *Set {
	return &Set{
		Language: "en",
		Start:    "first",
		Strings:  minimalStrings(),
		Scenes: map[string]*Scene{
			"first": {
				Header: "First",
				Text:   "Hello.",
				Exits: []Exit{
					{Label: "Onward", To: "second", If: "True"},
					{Label: "Give up", To: "SYS.RESTART", If: "True"},
				},
			},
			"second": {
				Header: "Second",
				Text:   "Done.",
				Exits:  []Exit{{Label: "Back", To: "first", If: "True"}},
			},
		},
	}
}

func TestSetGet(t *testing.T) {
	s := testSet()

	sc, err := s.Get("first")
	if err != nil {
		t.Fatalf("Get(first): %v", err)
	}
	if sc.Header != "First" {
		t.Errorf("wrong scene: %+v", sc)
	}

	if _, err := s.Get("missing"); err == nil {
		t.Error("Get(missing) should fail")
	} else if _, ok := err.(*UnknownSceneError); !ok {
		t.Errorf("expected UnknownSceneError, got %T", err)
	}
}

func TestSetGetSystemScene(t *testing.T) {
	s := testSet()

	sc, err := s.Get("SYS.RESTART")
	if err != nil {
		t.Fatalf("Get(SYS.RESTART): %v", err)
	}
	if len(sc.OnEnter) != 1 || sc.OnEnter[0].Do.Verb != VerbRestart {
		t.Errorf("restart scene should carry a game restart action: %+v", sc)
	}

	if _, err := s.Get("SYS.UNKNOWN"); err == nil {
		t.Error("Get(SYS.UNKNOWN) should fail")
	}
}

func TestSetCheckUnresolvedExit(t *testing.T) {
	s := testSet()
	s.Scenes["first"].Exits = append(s.Scenes["first"].Exits, Exit{Label: "Nowhere", To: "void", If: "True"})

	if err := s.Check(); err == nil {
		t.Error("Check should reject an exit to an unknown scene")
	}
}

func TestSetCheckMissingString(t *testing.T) {
	s := testSet()
	delete(s.Strings, StrEmpty)

	if err := s.Check(); err == nil {
		t.Error("Check should reject an incomplete string table")
	}
}

func TestSetCheckBadAction(t *testing.T) {
	s := testSet()
	s.Scenes["first"].OnEnter = []TriggeredAction{
		{Do: Action{Target: TargetInventory, Verb: "explode", Item: "x"}, If: "True"},
	}

	if err := s.Check(); err == nil {
		t.Error("Check should reject an unknown action verb")
	}
}

func TestFormattingDefault(t *testing.T) {
	sc := &Scene{}
	if !sc.FormattingEnabled() {
		t.Error("formatting should default to enabled")
	}

	off := false
	sc.Formatting = &off
	if sc.FormattingEnabled() {
		t.Error("formatting should honor an explicit false")
	}
}

func TestActionValidate(t *testing.T) {
	valid := []Action{
		{Target: TargetInventory, Verb: VerbAdd, Item: "Money"},
		{Target: TargetInventory, Verb: VerbAddMany, Item: "Money", Count: 10},
		{Target: TargetModifiers, Verb: VerbRemoveAll, Item: "flag"},
		{Target: TargetModifiers, Verb: VerbClear},
		{Target: TargetVariables, Verb: VerbAdd, Name: "gold", Value: float64(5)},
		{Target: TargetVariables, Verb: VerbSet, Name: "gold", Expr: `invdict.get("Money", 0)`},
		{Target: TargetVariables, Verb: VerbInc, Name: "gold", Value: float64(1)},
		{Target: TargetVariables, Verb: VerbRemove, Name: "gold"},
		{Target: TargetGame, Verb: VerbGoto, Scene: "first"},
		{Target: TargetGame, Verb: VerbNotify, Message: "Hi"},
		{Target: TargetGame, Verb: VerbSave, Silent: true},
		{Target: TargetGame, Verb: VerbExit},
	}
	for _, a := range valid {
		if err := a.Validate(); err != nil {
			t.Errorf("Validate(%s) = %v, want nil", a, err)
		}
	}

	invalid := []Action{
		{Target: TargetInventory, Verb: VerbAdd},                              // missing item
		{Target: TargetInventory, Verb: VerbAddMany, Item: "Money"},           // missing count
		{Target: TargetInventory, Verb: VerbGoto, Scene: "x"},                 // game verb on inventory
		{Target: TargetVariables, Verb: VerbSet, Name: "gold"},                // missing expr
		{Target: TargetVariables, Verb: VerbInc, Name: "gold", Value: "much"}, // non-numeric delta
		{Target: TargetGame, Verb: VerbGoto},                                  // missing scene
		{Target: TargetGame, Verb: VerbNotify},                                // missing message
		{Target: "world", Verb: VerbAdd, Item: "x"},                           // unknown target
	}
	for _, a := range invalid {
		if err := a.Validate(); err == nil {
			t.Errorf("Validate(%s) should fail", a)
		}
	}
}

func TestLibrarySelect(t *testing.T) {
	lib := NewLibrary()

	en := testSet()
	ru := testSet()
	ru.Language = "ru"
	if err := lib.Add(en); err != nil {
		t.Fatalf("Add(en): %v", err)
	}
	if err := lib.Add(ru); err != nil {
		t.Fatalf("Add(ru): %v", err)
	}

	s, err := lib.Select("ru")
	if err != nil || s.Language != "ru" {
		t.Errorf("Select(ru) = %v, %v", s, err)
	}

	// Regional variants match their base language.
	s, err = lib.Select("en-US")
	if err != nil || s.Language != "en" {
		t.Errorf("Select(en-US) = %v, %v", s, err)
	}

	if err := lib.Add(testSet()); err == nil {
		t.Error("duplicate language should be rejected")
	}

	if !lib.RestartRequired("en", "ru") {
		t.Error("language switch must require a restart")
	}
	if lib.RestartRequired("en", "en") {
		t.Error("no-op switch should not require a restart")
	}
}

func TestParseSetStrict(t *testing.T) {
	_, err := ParseSet([]byte(`{"language": "en", "start": "a", "scenes": {}, "bogus": 1}`))
	if err == nil {
		t.Error("unknown fields should be rejected")
	}
}

func TestParseSetAssignsIDs(t *testing.T) {
	data := []byte(`{
		"language": "en",
		"start": "first",
		"strings": {
			"start": "Start", "load": "Load", "save": "Save",
			"load_short": "L", "save_short": "S", "credits": "Credits",
			"exit": "Exit", "language": "Language", "saved": "Saved",
			"loaded": "Loaded", "empty": "Empty", "restart_needed": "Restart needed"
		},
		"scenes": {
			"first": {"header": "H", "text": "T", "exits": []}
		}
	}`)
	s, err := ParseSet(data)
	if err != nil {
		t.Fatalf("ParseSet: %v", err)
	}
	if s.Scenes["first"].ID != "first" {
		t.Errorf("scene id not assigned from key: %q", s.Scenes["first"].ID)
	}
}
