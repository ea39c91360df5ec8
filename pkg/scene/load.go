package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadSet reads and checks a single scene set file. Decoding is strict:
// unknown fields are content defects, not noise to skip.
func LoadSet(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene set: %w", err)
	}
	s, err := ParseSet(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return s, nil
}

// ParseSet decodes a scene set from JSON and runs the set-level checks.
func ParseSet(data []byte) (*Set, error) {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.DisallowUnknownFields()

	var s Set
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode scene set: %w", err)
	}
	for id, sc := range s.Scenes {
		sc.ID = id
	}
	if err := s.Check(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadLibrary loads every scenes_*.json set in a directory into a Library.
func LoadLibrary(dir string) (*Library, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "scenes_*.json"))
	if err != nil {
		return nil, fmt.Errorf("scan scene sets: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no scene sets found in %s", dir)
	}

	lib := NewLibrary()
	for _, path := range matches {
		s, err := LoadSet(path)
		if err != nil {
			return nil, err
		}
		if err := lib.Add(s); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}
	return lib, nil
}
