package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/GD-alt/hoofd/pkg/state"
)

// FileStore keeps one snapshot per slot as a JSON file in dir.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

var _ Store = (*FileStore)(nil)

func NewFileStore(dir string, logger *slog.Logger) *FileStore {
	if dir == "" {
		dir = "."
	}
	return &FileStore{dir: dir, logger: logger}
}

func (f *FileStore) path(slot string) string {
	return filepath.Join(f.dir, "save_"+slot+".json")
}

func (f *FileStore) SaveSnapshot(ctx context.Context, slot string, gs *state.GameState) error {
	gs.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(gs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(f.path(slot), data, 0o644); err != nil {
		f.logger.Error("Failed to write snapshot", "slot", slot, "error", err)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

func (f *FileStore) LoadSnapshot(ctx context.Context, slot string) (*state.GameState, error) {
	data, err := os.ReadFile(f.path(slot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, slot)
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var gs state.GameState
	if err := json.Unmarshal(data, &gs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &gs, nil
}

func (f *FileStore) DeleteSnapshot(ctx context.Context, slot string) error {
	if err := os.Remove(f.path(slot)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

func (f *FileStore) Ping(ctx context.Context) error {
	info, err := os.Stat(f.dir)
	if err != nil {
		return fmt.Errorf("save directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("save path %q is not a directory", f.dir)
	}
	return nil
}

func (f *FileStore) Close() error { return nil }
