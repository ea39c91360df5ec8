package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds process-level settings, populated from the environment.
type Config struct {
	Environment string
	LogLevel    slog.Level

	// DataDir holds the scene set files and game.yaml.
	DataDir string

	// Storage selects the snapshot backend: "file" or "redis".
	Storage string
	SaveDir string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func Load() *Config {
	return &Config{
		Environment:   getEnv("ENVIRONMENT", "development"),
		LogLevel:      parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DataDir:       getEnv("DATA_DIR", "data"),
		Storage:       getEnv("STORAGE", "file"),
		SaveDir:       getEnv("SAVE_DIR", "."),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
	}
}

// Game holds the game-facing settings read from game.yaml: presentation
// chrome, feature toggles, and the content language selection.
type Game struct {
	Name       string   `yaml:"name"`
	Credits    string   `yaml:"credits"`
	Color      string   `yaml:"color"`
	Background string   `yaml:"background"`
	Language   string   `yaml:"language"`
	Languages  []string `yaml:"languages"`

	Inventory bool `yaml:"inventory"`
	SaveLoad  bool `yaml:"saveload"`

	// Policy is "strict" or "lenient". HistoryLimit of 0 keeps history
	// unbounded.
	Policy       string `yaml:"policy"`
	HistoryLimit int    `yaml:"history_limit"`
}

// LoadGame reads game.yaml from path. Unknown keys are rejected so typos
// in game config surface immediately.
func LoadGame(path string) (*Game, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game config: %w", err)
	}
	g := &Game{
		Inventory:    true,
		SaveLoad:     true,
		Policy:       "strict",
		HistoryLimit: 1000,
	}
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(g); err != nil {
		return nil, fmt.Errorf("failed to parse game config: %w", err)
	}
	if g.Name == "" {
		return nil, fmt.Errorf("game config: name is required")
	}
	if len(g.Languages) == 0 {
		return nil, fmt.Errorf("game config: at least one language is required")
	}
	if g.Language == "" {
		g.Language = g.Languages[0]
	}
	switch g.Policy {
	case "strict", "lenient":
	default:
		return nil, fmt.Errorf("game config: unknown policy %q", g.Policy)
	}
	return g, nil
}

// Save writes the game config back to path. Used to persist the player's
// language choice across runs.
func (g *Game) Save(path string) error {
	data, err := yaml.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to encode game config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write game config: %w", err)
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
