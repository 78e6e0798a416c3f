// Package config reads the process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	DefaultListenAddr = ":8091"
	DefaultBatchSize  = 500
)

// Config holds the runtime settings shared by the CLI, the HTTP server
// and the MCP server.
type Config struct {
	DatabasePath string
	ListenAddr   string
	BatchSize    int

	// Startup prepopulation. When ViaFile is set the document comes
	// from StructureFile, otherwise from the inline StructureJSON.
	// OverwriteExisting defaults to on: a prepopulated catalog replaces
	// what is in the store rather than merging into it.
	Prepopulate        bool
	PrepopulateViaFile bool
	StructureFile      string
	StructureJSON      string
	OverwriteExisting  bool
}

// Load builds a Config from the environment and validates the
// cross-field constraints of the prepopulation settings.
func Load() (*Config, error) {
	cfg := &Config{
		DatabasePath:       getenv("STRUCTURA_DB_PATH", DefaultDatabasePath()),
		ListenAddr:         getenv("STRUCTURA_LISTEN_ADDR", DefaultListenAddr),
		BatchSize:          DefaultBatchSize,
		Prepopulate:        boolenv("STRUCTURA_PREPOPULATE", false),
		PrepopulateViaFile: boolenv("STRUCTURA_PREPOPULATE_VIA_FILE", false),
		StructureFile:      os.Getenv("STRUCTURA_STRUCTURE_FILE"),
		StructureJSON:      os.Getenv("STRUCTURA_STRUCTURE_JSON"),
		OverwriteExisting:  boolenv("STRUCTURA_OVERWRITE_EXISTING", true),
	}

	if raw := os.Getenv("STRUCTURA_BATCH_SIZE"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("STRUCTURA_BATCH_SIZE must be a positive integer, got %q", raw)
		}
		cfg.BatchSize = n
	}

	if cfg.PrepopulateViaFile && cfg.StructureFile == "" {
		return nil, fmt.Errorf("STRUCTURA_STRUCTURE_FILE must be set when STRUCTURA_PREPOPULATE_VIA_FILE is enabled")
	}
	if cfg.Prepopulate && !cfg.PrepopulateViaFile && cfg.StructureJSON == "" {
		return nil, fmt.Errorf("STRUCTURA_STRUCTURE_JSON must be set when STRUCTURA_PREPOPULATE is enabled without a file")
	}

	return cfg, nil
}

// DefaultDatabasePath returns the catalog location under the user data
// directory, honoring XDG_DATA_HOME.
func DefaultDatabasePath() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "structura", "structure.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "structure.db")
	}
	return filepath.Join(home, ".local", "share", "structura", "structure.db")
}

func getenv(key, fallback string) string {
	if env := os.Getenv(key); env != "" {
		return env
	}
	return fallback
}

func boolenv(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
