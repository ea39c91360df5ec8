// Package storage provides snapshot persistence backends for game state.
package storage

import (
	"context"
	"errors"

	"github.com/GD-alt/hoofd/pkg/engine"
)

// ErrNoSnapshot is returned when a slot holds no saved state.
var ErrNoSnapshot = errors.New("no snapshot in slot")

// Store is a snapshot backend with lifecycle management.
type Store interface {
	engine.SnapshotStore
	DeleteSnapshot(ctx context.Context, slot string) error
	Ping(ctx context.Context) error
	Close() error
}
