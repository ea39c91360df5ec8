package expr

import (
	"testing"
)

type fakeScene struct{ id string }

func (f *fakeScene) Attr(name string) (Value, bool) {
	if name == "id" {
		return f.id, true
	}
	return nil, false
}

type fakePlayer struct {
	current  *fakeScene
	previous *fakeScene
}

func (f *fakePlayer) Attr(name string) (Value, bool) {
	switch name {
	case "current":
		return f.current, true
	case "previous":
		if f.previous == nil {
			return nil, true
		}
		return f.previous, true
	}
	return nil, false
}

func testEnv() Env {
	return Env{
		"player":    &fakePlayer{current: &fakeScene{id: "pray"}, previous: &fakeScene{id: "first"}},
		"mods":      []string{"money-given", "overpray", "overpray"},
		"modsdict":  Dict{"money-given": float64(1), "overpray": float64(2)},
		"inventory": []string{"Money", "Money", "Sword"},
		"invdict":   Dict{"Money": float64(2), "Sword": float64(1)},
		"vars":      Dict{"name": "Traveller", "gold": float64(12)},
		"rnum":      float64(42),
		"random":    float64(42),
		"MY":        Dict{"wealth": float64(2)},
	}
}

func TestEval(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Value
	}{
		{"true literal", `True`, true},
		{"false literal", `False`, false},
		{"none literal", `None`, nil},
		{"number", `42`, float64(42)},
		{"decimal", `3.5`, float64(3.5)},
		{"negative", `-7`, float64(-7)},
		{"string single quotes", `'hello'`, "hello"},
		{"string double quotes", `"hello"`, "hello"},
		{"containment hit", `"money-given" in mods`, true},
		{"containment miss", `"flag" in mods`, false},
		{"negated containment", `"flag" not in mods`, true},
		{"dict containment", `"Money" in invdict`, true},
		{"substring", `"one" in "Money"`, true},
		{"get with default hit", `invdict.get("Money", 0)`, float64(2)},
		{"get with default miss", `invdict.get("Gem", 0)`, float64(0)},
		{"get without default miss", `invdict.get("Gem")`, nil},
		{"numeric comparison", `invdict.get("Money", 0) >= 2`, true},
		{"numeric comparison false", `invdict.get("Money", 0) >= 10`, false},
		{"equality", `vars.get("name", "") == "Traveller"`, true},
		{"inequality", `rnum != 42`, false},
		{"and", `"money-given" in mods and invdict.get("Money", 0) > 1`, true},
		{"or short circuit", `True or unknown_name`, true},
		{"and short circuit", `False and unknown_name`, false},
		{"not", `not "flag" in mods`, true},
		{"parens", `(1 + 2) * 3`, float64(9)},
		{"modulo", `rnum % 10`, float64(2)},
		{"string concat", `"a" + "b"`, "ab"},
		{"attribute chain", `player.previous.id == "first"`, true},
		{"attribute current", `player.current.id`, "pray"},
		{"index dict", `vars["gold"]`, float64(12)},
		{"index list", `inventory[0]`, "Money"},
		{"my vars", `MY.get("wealth", 0) == 2`, true},
		{"chained or", `False or False or rnum == 42`, true},
		{"string ordering", `"abc" < "abd"`, true},
	}

	env := testEnv()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Eval(tt.src, env)
			if err != nil {
				t.Fatalf("Eval(%q) error: %v", tt.src, err)
			}
			if !equal(got, tt.want) && got != tt.want {
				t.Errorf("Eval(%q) = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ``},
		{"unknown name", `frobnicate`},
		{"unterminated string", `"abc`},
		{"trailing garbage", `1 2`},
		{"bad operator", `1 === 2`},
		{"number vs string order", `1 < "a"`},
		{"division by zero", `1 / 0`},
		{"missing key", `vars["missing"]`},
		{"unknown attribute", `player.level`},
		{"unknown method", `invdict.pop("Money")`},
		{"call on list", `mods.get("x")`},
		{"not without in", `1 not 2`},
		{"keyword as name", `in`},
	}

	env := testEnv()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Eval(tt.src, env); err == nil {
				t.Errorf("Eval(%q) expected error, got none", tt.src)
			}
		})
	}
}

func TestEvalBool(t *testing.T) {
	env := testEnv()

	tests := []struct {
		src  string
		want bool
	}{
		{`"money-given" in mods`, true},
		{`""`, false},
		{`"x"`, true},
		{`0`, false},
		{`1`, true},
		{`None`, false},
		{`inventory`, true},
		{`modsdict.get("overpray", 0) > 3`, false},
	}
	for _, tt := range tests {
		got, err := EvalBool(tt.src, env)
		if err != nil {
			t.Fatalf("EvalBool(%q) error: %v", tt.src, err)
		}
		if got != tt.want {
			t.Errorf("EvalBool(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestEvalDoesNotMutateEnv(t *testing.T) {
	env := testEnv()
	inv := env["inventory"].([]string)
	before := make([]string, len(inv))
	copy(before, inv)

	if _, err := Eval(`invdict.get("Money", 0) >= 10 and "money-given" not in mods`, env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after := env["inventory"].([]string)
	if len(after) != len(before) {
		t.Fatalf("inventory length changed: %d != %d", len(after), len(before))
	}
	for i := range before {
		if after[i] != before[i] {
			t.Errorf("inventory[%d] changed: %q != %q", i, after[i], before[i])
		}
	}
}

func TestParseReuse(t *testing.T) {
	n, err := Parse(`invdict.get("Money", 0) >= 10`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	poor := Env{"invdict": Dict{}}
	rich := Env{"invdict": Dict{"Money": float64(15)}}

	if v, err := Run(n, poor); err != nil || Truthy(v) {
		t.Errorf("poor env: got %v, %v; want false", v, err)
	}
	if v, err := Run(n, rich); err != nil || !Truthy(v) {
		t.Errorf("rich env: got %v, %v; want true", v, err)
	}
}
