package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/GD-alt/hoofd/internal/config"
	"github.com/GD-alt/hoofd/internal/logger"
	"github.com/GD-alt/hoofd/internal/storage"
	"github.com/GD-alt/hoofd/pkg/scene"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	gamePath := filepath.Join(cfg.DataDir, "game.yaml")
	game, err := config.LoadGame(gamePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load game config: %v\n", err)
		os.Exit(1)
	}

	lib, err := scene.LoadLibrary(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load scene content: %v\n", err)
		os.Exit(1)
	}

	// Every configured language must have a scene set behind it.
	for _, lang := range game.Languages {
		if _, err := lib.Select(lang); err != nil {
			fmt.Fprintf(os.Stderr, "No scene content for language %q: %v\n", lang, err)
			os.Exit(1)
		}
	}

	var store storage.Store
	if game.SaveLoad {
		switch cfg.Storage {
		case "redis":
			rs := storage.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
			if err := rs.Ping(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Redis is not available at %s: %v\n", cfg.RedisAddr, err)
				os.Exit(1)
			}
			store = rs
		case "file":
			store = storage.NewFileStore(cfg.SaveDir, log)
		default:
			fmt.Fprintf(os.Stderr, "Unknown storage backend %q (want file or redis)\n", cfg.Storage)
			os.Exit(1)
		}
		defer func() {
			_ = store.Close() // Ignore error in defer
		}()
	}

	p := tea.NewProgram(NewUI(game, gamePath, lib, store, log), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
