package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, path, appName string) {
	t.Helper()
	data := "app:\n  name: " + appName + "\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestWatcherLoadsInitialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "socialmesh.yaml")
	writeConfig(t, path, "initial")

	watcher, err := NewWatcher(path, NewLoader().SetEnvPrefix("MESHTEST_NONE"), nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer watcher.Stop()

	if got := watcher.GetConfig().App.Name; got != "initial" {
		t.Errorf("App.Name = %q, want initial", got)
	}
}

func TestWatcherReloadNotifiesCallbacks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "socialmesh.yaml")
	writeConfig(t, path, "before")

	watcher, err := NewWatcher(path, NewLoader().SetEnvPrefix("MESHTEST_NONE"), nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer watcher.Stop()

	type change struct{ old, new string }
	changes := make(chan change, 1)
	watcher.OnConfigChange(func(oldConfig, newConfig *Config) {
		changes <- change{old: oldConfig.App.Name, new: newConfig.App.Name}
	})

	writeConfig(t, path, "after")
	if err := watcher.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	if got := watcher.GetConfig().App.Name; got != "after" {
		t.Errorf("App.Name = %q, want after", got)
	}
	select {
	case c := <-changes:
		if c.old != "before" || c.new != "after" {
			t.Errorf("callback saw %q -> %q", c.old, c.new)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("callback was not invoked")
	}
}

func TestWatcherReloadKeepsConfigOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "socialmesh.yaml")
	writeConfig(t, path, "good")

	watcher, err := NewWatcher(path, NewLoader().SetEnvPrefix("MESHTEST_NONE"), nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer watcher.Stop()

	if err := os.WriteFile(path, []byte("app: ["), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := watcher.Reload(); err == nil {
		t.Fatal("expected reload of broken config to fail")
	}
	if got := watcher.GetConfig().App.Name; got != "good" {
		t.Errorf("App.Name = %q, want the last good config", got)
	}
}

func TestWatcherRejectsUnsupportedFormat(t *testing.T) {
	if _, err := NewWatcher("config.toml", NewLoader(), nil); err == nil {
		t.Error("expected an unsupported-format error")
	}
}

func TestWatcherRejectsMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "socialmesh.yaml")
	if _, err := NewWatcher(path, NewLoader(), nil); err == nil {
		t.Error("expected an error for a missing file")
	}
}
