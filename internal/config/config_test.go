package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range append(envKeys, "CONFIG_FILE") {
		t.Setenv(key, "")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("FirestoreDefaults", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("FIREBASE_PROJECT_ID", "unimeal-dev")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.Port != "8080" {
			t.Errorf("Expected default port 8080, got %q", cfg.Port)
		}
		if cfg.StoreDriver != DriverFirestore {
			t.Errorf("Expected firestore driver, got %q", cfg.StoreDriver)
		}
		if cfg.Thresholds.ExpiringSoonDays != 3 || cfg.Thresholds.LowBudgetRatio != 0.2 {
			t.Errorf("Unexpected thresholds %+v", cfg.Thresholds)
		}
		if cfg.SessionIdleTimeout != 15*time.Minute {
			t.Errorf("Expected 15m idle timeout, got %v", cfg.SessionIdleTimeout)
		}
	})

	t.Run("SQLiteInsecureOverrides", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STORE_DRIVER", "SQLite")
		t.Setenv("AUTH_MODE", "insecure")
		t.Setenv("SQLITE_PATH", "/tmp/unimeal-test.db")
		t.Setenv("EXPIRING_SOON_DAYS", "5")
		t.Setenv("LOW_BUDGET_RATIO", "0.1")
		t.Setenv("SESSION_IDLE_TIMEOUT", "90s")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.StoreDriver != DriverSQLite {
			t.Errorf("Expected sqlite driver, got %q", cfg.StoreDriver)
		}
		if cfg.Thresholds.ExpiringSoonDays != 5 || cfg.Thresholds.LowBudgetRatio != 0.1 {
			t.Errorf("Unexpected thresholds %+v", cfg.Thresholds)
		}
		if cfg.SessionIdleTimeout != 90*time.Second {
			t.Errorf("Expected 90s idle timeout, got %v", cfg.SessionIdleTimeout)
		}
		if cfg.NeedsFirebase() {
			t.Error("sqlite with insecure auth should not need Firebase")
		}
	})

	t.Run("MissingProjectID", func(t *testing.T) {
		clearEnv(t)
		if _, err := LoadConfig(); err == nil {
			t.Fatal("Expected an error without FIREBASE_PROJECT_ID")
		}
	})

	t.Run("InsecureRejectedInRelease", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STORE_DRIVER", "sqlite")
		t.Setenv("AUTH_MODE", "insecure")
		t.Setenv("GIN_MODE", "release")
		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("Expected the store config to load, got %v", err)
		}
		if err := cfg.ValidateServer(); err == nil {
			t.Fatal("Expected insecure auth to be rejected in release mode")
		}
	})

	t.Run("SQLiteWithoutProjectIDLoadsForCLI", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STORE_DRIVER", "sqlite")
		t.Setenv("SQLITE_PATH", "/tmp/unimeal-cli.db")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("Expected sqlite to load without FIREBASE_PROJECT_ID, got %v", err)
		}
		if cfg.AuthMode != AuthModeFirebase {
			t.Errorf("Expected default firebase auth mode, got %q", cfg.AuthMode)
		}
		if err := cfg.ValidateServer(); err == nil {
			t.Fatal("Expected the server to require FIREBASE_PROJECT_ID for firebase auth")
		}
	})

	t.Run("UnknownAuthMode", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STORE_DRIVER", "sqlite")
		t.Setenv("AUTH_MODE", "basic")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("Expected no error from LoadConfig, got %v", err)
		}
		if err := cfg.ValidateServer(); err == nil {
			t.Fatal("Expected unknown AUTH_MODE to fail server validation")
		}
	})

	t.Run("UnknownDriver", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("FIREBASE_PROJECT_ID", "unimeal-dev")
		t.Setenv("STORE_DRIVER", "postgres")
		if _, err := LoadConfig(); err == nil {
			t.Fatal("Expected unknown driver to fail")
		}
	})

	t.Run("ConfigFile", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "config.yaml")
		body := "STORE_DRIVER: mongodb\nMONGODB_URI: mongodb://localhost:27017\nAUTH_MODE: insecure\nPORT: \"9090\"\n"
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("CONFIG_FILE", path)
		t.Setenv("PORT", "7070")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.StoreDriver != DriverMongoDB || cfg.MongoDBURI != "mongodb://localhost:27017" {
			t.Errorf("Config file values not applied: %+v", cfg)
		}
		if cfg.Port != "7070" {
			t.Errorf("Environment should override the file, got port %q", cfg.Port)
		}
	})
}
