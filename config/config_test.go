package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"empty app name", func(c *Config) { c.App.Name = "" }, ErrInvalidAppName},
		{"unknown environment", func(c *Config) { c.App.Environment = "qa" }, ErrInvalidEnvironment},
		{"unknown log level", func(c *Config) { c.Log.Level = "trace" }, ErrInvalidLogLevel},
		{"zero mailbox", func(c *Config) { c.Actor.MailboxSize = 0 }, ErrInvalidMailboxSize},
		{"zero comment limit", func(c *Config) { c.Limits.MaxComments = 0 }, ErrInvalidLimit},
		{"zero registry capacity", func(c *Config) { c.Limits.RegistryCapacity = 0 }, ErrInvalidLimit},
		{"iter wait above max wait", func(c *Config) {
			c.Poll.IterWait = time.Minute
			c.Poll.MaxWait = time.Second
		}, ErrInvalidPollBudget},
		{"zero batch size", func(c *Config) { c.View.BatchSize = 0 }, ErrInvalidBatchSize},
		{"unknown storage backend", func(c *Config) { c.Storage.Backend = "s3" }, ErrInvalidStorageBackend},
		{"file backend without dir", func(c *Config) { c.Storage.Backend = StorageFile }, ErrMissingStorageDir},
		{"postgres backend without dsn", func(c *Config) { c.Storage.Backend = StoragePostgres }, ErrMissingStorageDSN},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadFromReaderMergesDefaults(t *testing.T) {
	yamlData := `
app:
  name: "meshtest"
  environment: "production"
log:
  level: "warn"
limits:
  registry_capacity: 100
`
	loader := NewLoader().SetEnvPrefix("MESHTEST_NONE")
	cfg, err := loader.LoadFromReader(strings.NewReader(yamlData), FormatYAML)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.App.Name != "meshtest" {
		t.Errorf("App.Name = %q", cfg.App.Name)
	}
	if cfg.App.Environment != EnvProduction {
		t.Errorf("App.Environment = %q", cfg.App.Environment)
	}
	if cfg.Log.Level != LogLevelWarn {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.Limits.RegistryCapacity != 100 {
		t.Errorf("Limits.RegistryCapacity = %d", cfg.Limits.RegistryCapacity)
	}

	// Unset sections fall back to defaults.
	if cfg.Limits.MaxComments != 2000 {
		t.Errorf("Limits.MaxComments = %d, want default", cfg.Limits.MaxComments)
	}
	if cfg.Actor.MailboxSize != 1000 {
		t.Errorf("Actor.MailboxSize = %d, want default", cfg.Actor.MailboxSize)
	}
	if cfg.Storage.Backend != StorageMemory {
		t.Errorf("Storage.Backend = %q, want default", cfg.Storage.Backend)
	}
}

func TestLoadFromReaderJSON(t *testing.T) {
	jsonData := `{"app": {"name": "meshjson"}, "view": {"batch_size": 5}}`

	cfg, err := NewLoader().SetEnvPrefix("MESHTEST_NONE").LoadFromReader(strings.NewReader(jsonData), FormatJSON)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.App.Name != "meshjson" {
		t.Errorf("App.Name = %q", cfg.App.Name)
	}
	if cfg.View.BatchSize != 5 {
		t.Errorf("View.BatchSize = %d", cfg.View.BatchSize)
	}
}

func TestLoadFromReaderRejectsInvalidConfig(t *testing.T) {
	yamlData := `
storage:
  backend: "file"
`
	_, err := NewLoader().SetEnvPrefix("MESHTEST_NONE").LoadFromReader(strings.NewReader(yamlData), FormatYAML)
	if !errors.Is(err, ErrMissingStorageDir) {
		t.Errorf("expected ErrMissingStorageDir, got %v", err)
	}
}

func TestLoadFromReaderRejectsBadYAML(t *testing.T) {
	_, err := NewLoader().LoadFromReader(strings.NewReader("app: ["), FormatYAML)
	if err == nil {
		t.Error("expected a parse error")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "socialmesh.yaml")
	if err := os.WriteFile(path, []byte("app:\n  name: fromfile\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := NewLoader().SetEnvPrefix("MESHTEST_NONE").LoadFromFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.App.Name != "fromfile" {
		t.Errorf("App.Name = %q", cfg.App.Name)
	}

	if _, err := NewLoader().LoadFromFile(filepath.Join(dir, "config.toml")); err == nil {
		t.Error("expected an unsupported-format error")
	}
}

func TestAutoLoadWithoutFileUsesDefaults(t *testing.T) {
	loader := NewLoader().
		SetSearchPaths([]string{t.TempDir()}).
		SetEnvPrefix("MESHTEST_NONE")

	cfg, err := loader.AutoLoad()
	if err != nil {
		t.Fatalf("autoload failed: %v", err)
	}
	if cfg.App.Name != "socialmesh" {
		t.Errorf("App.Name = %q, want default", cfg.App.Name)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MESHTEST_LOG_LEVEL", "debug")
	t.Setenv("MESHTEST_ACTOR_MAILBOX_SIZE", "42")
	t.Setenv("MESHTEST_POLL_ITER_WAIT", "50ms")
	t.Setenv("MESHTEST_STORAGE_BACKEND", "file")
	t.Setenv("MESHTEST_STORAGE_DIR", "/tmp/snapshots")

	loader := NewLoader().
		SetSearchPaths([]string{t.TempDir()}).
		SetEnvPrefix("MESHTEST")

	cfg, err := loader.AutoLoad()
	if err != nil {
		t.Fatalf("autoload failed: %v", err)
	}
	if cfg.Log.Level != LogLevelDebug {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.Actor.MailboxSize != 42 {
		t.Errorf("Actor.MailboxSize = %d", cfg.Actor.MailboxSize)
	}
	if cfg.Poll.IterWait != 50*time.Millisecond {
		t.Errorf("Poll.IterWait = %v", cfg.Poll.IterWait)
	}
	if cfg.Storage.Backend != StorageFile {
		t.Errorf("Storage.Backend = %q", cfg.Storage.Backend)
	}
	if cfg.Storage.Dir != "/tmp/snapshots" {
		t.Errorf("Storage.Dir = %q", cfg.Storage.Dir)
	}
}
