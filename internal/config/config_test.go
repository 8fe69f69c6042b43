package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q", cfg.HTTP.ListenAddr)
	}
	if cfg.NATS.Subject != "dvr.events" {
		t.Errorf("Subject = %q", cfg.NATS.Subject)
	}
	if cfg.Events.DedupTTLSeconds != 300 {
		t.Errorf("DedupTTLSeconds = %d", cfg.Events.DedupTTLSeconds)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
http:
  listen_addr: ":9000"
database:
  host: db.internal
  user: gateway
  name: dvr
events:
  enabled: true
  poll_interval_ms: 2000
  max_inflight_servers: 4
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.ListenAddr != ":9000" {
		t.Errorf("ListenAddr = %q", cfg.HTTP.ListenAddr)
	}
	if !cfg.Events.Enabled {
		t.Error("Events.Enabled should be true")
	}

	pc := cfg.PollerConfig()
	if pc.PollInterval != 2*time.Second {
		t.Errorf("PollInterval = %v", pc.PollInterval)
	}
	if pc.MaxInflight != 4 {
		t.Errorf("MaxInflight = %d", pc.MaxInflight)
	}

	want := "postgres://gateway:@db.internal:5432/dvr?sslmode=disable"
	if got := cfg.ConnString(); got != want {
		t.Errorf("ConnString = %q, want %q", got, want)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "env-host")
	t.Setenv("REDIS_ADDR", "env-redis:6379")
	t.Setenv("JWT_SIGNING_KEY", "env-secret")

	path := writeConfig(t, "database:\n  host: file-host\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database.Host != "env-host" {
		t.Errorf("Host = %q, want env override", cfg.Database.Host)
	}
	if cfg.Redis.Addr != "env-redis:6379" {
		t.Errorf("Redis.Addr = %q", cfg.Redis.Addr)
	}
	if cfg.Auth.SigningKey != "env-secret" {
		t.Errorf("SigningKey = %q", cfg.Auth.SigningKey)
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := writeConfig(t, "http: [not a mapping")
	if _, err := Load(path); err == nil {
		t.Error("want parse error")
	}
}

func TestWatcherReload(t *testing.T) {
	path := writeConfig(t, "http:\n  listen_addr: \":8080\"\n")

	reloaded := make(chan *Config, 1)
	w := NewWatcher(path, func(c *Config) {
		select {
		case reloaded <- c:
		default:
		}
	})
	w.Start()
	defer w.Stop()

	// mtime granularity on some filesystems is one second.
	time.Sleep(1100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("http:\n  listen_addr: \":9999\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.HTTP.ListenAddr != ":9999" {
			t.Errorf("ListenAddr = %q after reload", cfg.HTTP.ListenAddr)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}
}
