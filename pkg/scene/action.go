package scene

import "fmt"

// ActionTarget selects which part of the session an action mutates.
type ActionTarget string

const (
	TargetInventory ActionTarget = "inventory"
	TargetModifiers ActionTarget = "modifiers"
	TargetVariables ActionTarget = "variables"
	TargetGame      ActionTarget = "game"
)

// ActionVerb is the operation applied to the target.
type ActionVerb string

const (
	// inventory / modifiers verbs
	VerbAdd       ActionVerb = "add"
	VerbAddMany   ActionVerb = "add-many"
	VerbRemove    ActionVerb = "remove"
	VerbRemoveAll ActionVerb = "remove-all"
	VerbClear     ActionVerb = "clear"

	// variables verbs (VerbAdd, VerbRemove and VerbClear apply here too)
	VerbUpdate ActionVerb = "update"
	VerbSet    ActionVerb = "set"
	VerbInc    ActionVerb = "inc"
	VerbDec    ActionVerb = "dec"

	// game verbs
	VerbGoto    ActionVerb = "goto"
	VerbRestart ActionVerb = "restart"
	VerbSave    ActionVerb = "save"
	VerbLoad    ActionVerb = "load"
	VerbNotify  ActionVerb = "notify"
	VerbDestroy ActionVerb = "destroy"
	VerbExit    ActionVerb = "exit"
)

// Action is one entry of the fixed state-mutation vocabulary. Which operand
// fields are meaningful depends on (Target, Verb); Validate enforces the
// table so content defects surface at load time, not mid-session.
type Action struct {
	Target ActionTarget `json:"target"`
	Verb   ActionVerb   `json:"verb"`

	Item    string `json:"item,omitempty"`    // inventory / modifiers operand
	Count   int    `json:"count,omitempty"`   // add-many repeat count
	Name    string `json:"name,omitempty"`    // variable name
	Value   any    `json:"value,omitempty"`   // literal for add/update, delta for inc/dec
	Expr    string `json:"expr,omitempty"`    // expression for variables set
	Scene   string `json:"scene,omitempty"`   // goto target
	Message string `json:"message,omitempty"` // notify payload
	Silent  bool   `json:"silent,omitempty"`  // suppress the save/load notice
}

func (a Action) String() string {
	return fmt.Sprintf("%s %s", a.Target, a.Verb)
}

// Validate checks the (target, verb, operand) triple against the action
// vocabulary.
func (a Action) Validate() error {
	switch a.Target {
	case TargetInventory, TargetModifiers:
		switch a.Verb {
		case VerbAdd, VerbRemove, VerbRemoveAll:
			if a.Item == "" {
				return fmt.Errorf("action %s: missing item", a)
			}
		case VerbAddMany:
			if a.Item == "" {
				return fmt.Errorf("action %s: missing item", a)
			}
			if a.Count < 1 {
				return fmt.Errorf("action %s: count must be positive, got %d", a, a.Count)
			}
		case VerbClear:
		default:
			return fmt.Errorf("action %s: unknown verb for %s", a, a.Target)
		}

	case TargetVariables:
		switch a.Verb {
		case VerbAdd, VerbUpdate:
			if a.Name == "" {
				return fmt.Errorf("action %s: missing variable name", a)
			}
		case VerbSet:
			if a.Name == "" {
				return fmt.Errorf("action %s: missing variable name", a)
			}
			if a.Expr == "" {
				return fmt.Errorf("action %s: missing expression", a)
			}
		case VerbInc, VerbDec:
			if a.Name == "" {
				return fmt.Errorf("action %s: missing variable name", a)
			}
			if _, ok := NumericValue(a.Value); !ok {
				return fmt.Errorf("action %s: delta must be a number, got %T", a, a.Value)
			}
		case VerbRemove:
			if a.Name == "" {
				return fmt.Errorf("action %s: missing variable name", a)
			}
		case VerbClear:
		default:
			return fmt.Errorf("action %s: unknown verb for %s", a, a.Target)
		}

	case TargetGame:
		switch a.Verb {
		case VerbGoto:
			if a.Scene == "" {
				return fmt.Errorf("action %s: missing target scene", a)
			}
		case VerbNotify:
			if a.Message == "" {
				return fmt.Errorf("action %s: missing message", a)
			}
		case VerbRestart, VerbSave, VerbLoad, VerbDestroy, VerbExit:
		default:
			return fmt.Errorf("action %s: unknown verb for %s", a, a.Target)
		}

	default:
		return fmt.Errorf("action %s: unknown target", a)
	}
	return nil
}

// NumericValue coerces a JSON-decoded operand to float64.
func NumericValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	}
	return 0, false
}
