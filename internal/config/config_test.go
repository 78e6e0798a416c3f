package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STRUCTURA_DB_PATH", "/tmp/structure.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DatabasePath != "/tmp/structure.db" {
		t.Errorf("unexpected database path: %s", cfg.DatabasePath)
	}
	if cfg.ListenAddr != DefaultListenAddr {
		t.Errorf("unexpected listen addr: %s", cfg.ListenAddr)
	}
	if cfg.BatchSize != DefaultBatchSize {
		t.Errorf("unexpected batch size: %d", cfg.BatchSize)
	}
	if cfg.Prepopulate {
		t.Error("prepopulation should default to off")
	}
	if !cfg.OverwriteExisting {
		t.Error("overwrite should default to on")
	}
}

func TestLoadOverwriteExisting(t *testing.T) {
	t.Setenv("STRUCTURA_OVERWRITE_EXISTING", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OverwriteExisting {
		t.Error("expected overwrite to be disabled")
	}
}

func TestLoadBatchSize(t *testing.T) {
	t.Setenv("STRUCTURA_BATCH_SIZE", "100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BatchSize != 100 {
		t.Errorf("expected batch size 100, got %d", cfg.BatchSize)
	}

	t.Setenv("STRUCTURA_BATCH_SIZE", "zero")
	if _, err := Load(); err == nil {
		t.Error("expected error for non-numeric batch size")
	}
}

func TestLoadPrepopulationConstraints(t *testing.T) {
	t.Run("via file requires a path", func(t *testing.T) {
		t.Setenv("STRUCTURA_PREPOPULATE", "true")
		t.Setenv("STRUCTURA_PREPOPULATE_VIA_FILE", "true")

		if _, err := Load(); err == nil {
			t.Error("expected error when structure file is missing")
		}
	})

	t.Run("inline requires a document", func(t *testing.T) {
		t.Setenv("STRUCTURA_PREPOPULATE", "true")

		if _, err := Load(); err == nil {
			t.Error("expected error when structure JSON is missing")
		}
	})

	t.Run("valid file setup", func(t *testing.T) {
		t.Setenv("STRUCTURA_PREPOPULATE", "true")
		t.Setenv("STRUCTURA_PREPOPULATE_VIA_FILE", "true")
		t.Setenv("STRUCTURA_STRUCTURE_FILE", "/tmp/structure.json")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !cfg.Prepopulate || !cfg.PrepopulateViaFile {
			t.Error("prepopulation flags not set")
		}
	})
}
