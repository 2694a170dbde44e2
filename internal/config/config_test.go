package config

import (
	"testing"
)

type memBackend struct {
	strings map[string]string
	ints    map[string]int
}

func newMemBackend() *memBackend {
	return &memBackend{strings: make(map[string]string), ints: make(map[string]int)}
}

func (m *memBackend) GetString(key string) (string, bool, error) {
	v, ok := m.strings[key]
	return v, ok, nil
}

func (m *memBackend) GetInt(key string) (int, bool, error) {
	v, ok := m.ints[key]
	return v, ok, nil
}

func (m *memBackend) SetString(key, val string) error {
	m.strings[key] = val
	return nil
}

func (m *memBackend) SetInt(key string, val int) error {
	m.ints[key] = val
	return nil
}

func (m *memBackend) Delete(key string) error {
	delete(m.strings, key)
	delete(m.ints, key)
	return nil
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadWith(newMemBackend())
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}

	if cfg.Server.Port != 4200 {
		t.Errorf("Server.Port = %d, want 4200", cfg.Server.Port)
	}
	if cfg.Backend.BaseURL != "http://127.0.0.1:5001" {
		t.Errorf("Backend.BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Status.PollSeconds != 30 {
		t.Errorf("Status.PollSeconds = %d, want 30", cfg.Status.PollSeconds)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Storage.DataDir == "" {
		t.Error("Storage.DataDir is empty")
	}
}

func TestLoadBackendOverridesDefaults(t *testing.T) {
	b := newMemBackend()
	b.SetInt("server.port", 9999)
	b.SetString("backend.base_url", "http://backend.example:8080")
	b.SetString("log.level", "debug")

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Backend.BaseURL != "http://backend.example:8080" {
		t.Errorf("Backend.BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	// Untouched keys keep defaults.
	if cfg.Status.PollSeconds != 30 {
		t.Errorf("Status.PollSeconds = %d, want 30", cfg.Status.PollSeconds)
	}
}

func TestLoadEnvOverridesBackend(t *testing.T) {
	b := newMemBackend()
	b.SetInt("server.port", 9999)

	t.Setenv("DOCUMIND_SERVER_PORT", "5555")
	t.Setenv("DOCUMIND_BACKEND_BASE_URL", "http://env.example")

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}

	if cfg.Server.Port != 5555 {
		t.Errorf("Server.Port = %d, want 5555 (env override)", cfg.Server.Port)
	}
	if cfg.Backend.BaseURL != "http://env.example" {
		t.Errorf("Backend.BaseURL = %q, want env value", cfg.Backend.BaseURL)
	}
}

func TestLoadBadEnvIntFallsBack(t *testing.T) {
	t.Setenv("DOCUMIND_STATUS_POLL_SECONDS", "not-a-number")

	cfg, err := loadWith(newMemBackend())
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.Status.PollSeconds != 30 {
		t.Errorf("Status.PollSeconds = %d, want default 30", cfg.Status.PollSeconds)
	}
}

func TestShowAllCoversEveryKey(t *testing.T) {
	cfg, err := loadWith(newMemBackend())
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}

	infos := ShowAll(cfg)
	if len(infos) != len(ValidKeys()) {
		t.Fatalf("ShowAll returned %d entries, want %d", len(infos), len(ValidKeys()))
	}
	seen := make(map[string]bool)
	for _, info := range infos {
		if info.Value == "" {
			t.Errorf("key %s has empty value", info.Key)
		}
		if info.EnvVar == "" {
			t.Errorf("key %s has no env var", info.Key)
		}
		seen[info.Key] = true
	}
	for _, k := range ValidKeys() {
		if !seen[k] {
			t.Errorf("key %s missing from ShowAll", k)
		}
	}
}
