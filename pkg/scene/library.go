package scene

import (
	"fmt"
	"sort"

	"golang.org/x/text/language"
)

// Library holds one Set per supported language and picks the best set for
// a requested language tag.
type Library struct {
	sets map[string]*Set
}

func NewLibrary() *Library {
	return &Library{sets: make(map[string]*Set)}
}

// Add registers a set under its language. Each language may appear once.
func (l *Library) Add(s *Set) error {
	if _, err := language.Parse(s.Language); err != nil {
		return fmt.Errorf("scene set language %q: %w", s.Language, err)
	}
	if _, exists := l.sets[s.Language]; exists {
		return fmt.Errorf("duplicate scene set for language %q", s.Language)
	}
	l.sets[s.Language] = s
	return nil
}

// Languages lists the available languages, sorted for stable menus.
func (l *Library) Languages() []string {
	langs := make([]string, 0, len(l.sets))
	for lang := range l.sets {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Select matches a preferred language against the available sets, falling
// back through base-language matching ("en-US" finds "en").
func (l *Library) Select(preferred string) (*Set, error) {
	if len(l.sets) == 0 {
		return nil, fmt.Errorf("scene library is empty")
	}
	if s, ok := l.sets[preferred]; ok {
		return s, nil
	}

	langs := l.Languages()
	tags := make([]language.Tag, 0, len(langs))
	for _, lang := range langs {
		tags = append(tags, language.Make(lang))
	}
	matcher := language.NewMatcher(tags)

	want, err := language.Parse(preferred)
	if err != nil {
		return nil, fmt.Errorf("language %q: %w", preferred, err)
	}
	_, idx, conf := matcher.Match(want)
	if conf == language.No {
		return nil, fmt.Errorf("no scene set matches language %q", preferred)
	}
	return l.sets[langs[idx]], nil
}

// RestartRequired reports whether switching between two languages
// invalidates in-flight session state. Scene topology and wording may
// differ between translations, so any actual switch requires a restart.
func (l *Library) RestartRequired(from, to string) bool {
	return from != to
}
