package config

import (
	"os"
	"testing"
	"time"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8080" || cfg.PollInterval != 3*time.Second || cfg.BackendTimeout != 10*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("BAZAAR_BACKEND_URL", "http://api.test/v1/")
	t.Setenv("BAZAAR_POLL_INTERVAL", "5s")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("PORT not honored: %q", cfg.Port)
	}
	if cfg.BackendURL != "http://api.test/v1" {
		t.Fatalf("backend url not trimmed: %q", cfg.BackendURL)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Fatalf("poll interval: %v", cfg.PollInterval)
	}
}
