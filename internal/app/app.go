package app

import (
	"fmt"
	"os"
	"path/filepath"

	"pathprobe/internal/storage"
	"pathprobe/internal/storage/sqlite"
)

// App represents the application context
type App struct {
	Storage storage.Storage
	Config  *Config
}

// Config represents application configuration
type Config struct {
	DBPath  string
	DataDir string
}

// New creates a new application instance. dbPath overrides the default
// location under the user's data directory.
func New(dbPath string) (*App, error) {
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dataDir := filepath.Join(homeDir, ".local", "share", "pathprobe")
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		dbPath = filepath.Join(dataDir, "pathprobe.db")
	}

	store, err := sqlite.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return &App{
		Storage: store,
		Config: &Config{
			DBPath:  dbPath,
			DataDir: filepath.Dir(dbPath),
		},
	}, nil
}

// Close closes the application and releases resources
func (a *App) Close() error {
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}
