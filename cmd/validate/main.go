package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/GD-alt/hoofd/internal/config"
	"github.com/GD-alt/hoofd/pkg/engine"
	"github.com/GD-alt/hoofd/pkg/expr"
	"github.com/GD-alt/hoofd/pkg/scene"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <data-dir | scenes_*.json ...>\n", os.Args[0])
		os.Exit(1)
	}

	paths, gamePath, err := collectTargets(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	failed := false
	languages := map[string]bool{}
	for _, path := range paths {
		v := &SetValidator{}
		if err := v.validateFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		languages[v.set.Language] = true
		fmt.Printf("%s is valid (%d scenes, language %s)\n",
			filepath.Base(path), len(v.set.Scenes), v.set.Language)
	}

	if gamePath != "" {
		if err := validateGameConfig(gamePath, languages); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
		} else {
			fmt.Printf("%s is valid\n", filepath.Base(gamePath))
		}
	}

	if failed {
		os.Exit(1)
	}
}

// collectTargets expands a directory argument into its scene set files and
// game.yaml; explicit file arguments pass through as-is.
func collectTargets(args []string) (sets []string, gamePath string, err error) {
	if len(args) == 1 {
		info, statErr := os.Stat(args[0])
		if statErr == nil && info.IsDir() {
			dir := args[0]
			sets, err = filepath.Glob(filepath.Join(dir, "scenes_*.json"))
			if err != nil || len(sets) == 0 {
				return nil, "", fmt.Errorf("no scenes_*.json files in %s", dir)
			}
			sort.Strings(sets)
			candidate := filepath.Join(dir, "game.yaml")
			if _, statErr := os.Stat(candidate); statErr == nil {
				gamePath = candidate
			}
			return sets, gamePath, nil
		}
	}
	return args, "", nil
}

func validateGameConfig(path string, languages map[string]bool) error {
	g, err := config.LoadGame(path)
	if err != nil {
		return err
	}
	var missing []string
	for _, lang := range g.Languages {
		if !languages[lang] {
			missing = append(missing, lang)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s lists languages without scene sets: %s", path, strings.Join(missing, ", "))
	}
	return nil
}

type SetValidator struct {
	set    *scene.Set
	errors []string
}

func (v *SetValidator) validateFile(path string) error {
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "scenes_") || !strings.HasSuffix(base, ".json") {
		return fmt.Errorf("scene set file must be named scenes_<language>.json: %s", base)
	}

	// LoadSet already runs strict decoding and the structural checks
	// (resolvable start/exit/goto targets, action vocabulary, string table).
	s, err := scene.LoadSet(path)
	if err != nil {
		return err
	}
	v.set = s

	fromName := strings.TrimSuffix(strings.TrimPrefix(base, "scenes_"), ".json")
	if fromName != s.Language {
		v.addError(fmt.Sprintf("file is named for language %q but declares %q", fromName, s.Language))
	}

	v.validateSet(s)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", base, strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *SetValidator) validateSet(s *scene.Set) {
	for i, mv := range s.MyVars {
		if mv.Name == "" {
			v.addError(fmt.Sprintf("my_vars[%d] has no name", i))
		}
		v.checkExpr(fmt.Sprintf("my_vars[%d] (%s)", i, mv.Name), mv.Expr)
	}
	v.validateConditionals("global_text_additions", s.GlobalTextAdditions)
	v.validateConditionals("global_images", s.GlobalImages)

	ids := make([]string, 0, len(s.Scenes))
	for id := range s.Scenes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		v.validateScene(s.Scenes[id])
	}
}

func (v *SetValidator) validateScene(sc *scene.Scene) {
	where := "scene " + sc.ID

	if sc.FormattingEnabled() {
		v.checkTemplate(where+" text", sc.Text)
		v.checkTemplate(where+" header", sc.Header)
	}

	for i, exit := range sc.Exits {
		ctx := fmt.Sprintf("%s exit %d", where, i)
		if exit.Label == "" {
			v.addError(ctx + " has no label")
		}
		v.checkCondition(ctx, exit.If)
		if sc.FormattingEnabled() {
			v.checkTemplate(ctx+" label", exit.Label)
		}
	}

	for i, ta := range sc.OnEnter {
		ctx := fmt.Sprintf("%s on_enter %d (%s)", where, i, ta.Do.String())
		v.checkCondition(ctx, ta.If)
		if ta.Do.Expr != "" {
			v.checkExpr(ctx+" expr", ta.Do.Expr)
		}
	}

	v.validateConditionals(where+" if_texts", sc.IfTexts)
	v.validateConditionals(where+" if_text_additions", sc.IfTextAdditions)
	v.validateConditionals(where+" if_images", sc.IfImages)
	v.validateConditionals(where+" if_speakers", sc.IfSpeakers)
}

func (v *SetValidator) validateConditionals(where string, cs []scene.Conditional) {
	for i, c := range cs {
		v.checkCondition(fmt.Sprintf("%s[%d]", where, i), c.If)
	}
}

// checkCondition parses a gate expression; empty means always-true.
func (v *SetValidator) checkCondition(where, src string) {
	if src == "" {
		return
	}
	v.checkExpr(where, src)
}

func (v *SetValidator) checkExpr(where, src string) {
	if _, err := expr.Parse(src); err != nil {
		v.addError(fmt.Sprintf("%s: %v", where, err))
	}
}

// checkTemplate verifies braces balance and parses every placeholder.
func (v *SetValidator) checkTemplate(where, text string) {
	placeholders, err := engine.Placeholders(text)
	if err != nil {
		v.addError(fmt.Sprintf("%s: %v", where, err))
		return
	}
	for _, p := range placeholders {
		if _, err := expr.Parse(p); err != nil {
			v.addError(fmt.Sprintf("%s placeholder {%s}: %v", where, p, err))
		}
	}
}

func (v *SetValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}
