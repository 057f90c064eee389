package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
env: dev
http_server:
  address: localhost:8082
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := &Config{
		Env:         "dev",
		StoragePath: "storage/lamp.db",
		ContentPath: "storage/content.db",
		HTTPServer: HTTPServer{
			Addr:           "localhost:8082",
			RequestTimeout: 10 * time.Second,
		},
		Kafka: Kafka{Topic: "lamp.registrations"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadReadsEverySection(t *testing.T) {
	path := writeConfig(t, `
env: prod
storage_path: /var/lib/lamp/lamp.db
database_url: postgres://lamp@db/lamp
content_path: /var/lib/lamp/content.db
http_server:
  address: 0.0.0.0:80
  request_timeout: 3s
kafka:
  brokers: ["k1:9092", "k2:9092"]
  topic: registrations
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabaseURL != "postgres://lamp@db/lamp" {
		t.Fatalf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Fatalf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if diff := cmp.Diff(Kafka{Brokers: []string{"k1:9092", "k2:9092"}, Topic: "registrations"}, cfg.Kafka); diff != "" {
		t.Fatalf("kafka mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
env: dev
http_server:
  address: localhost:8082
`)
	t.Setenv("HTTP_SERVER_ADDR", "localhost:9999")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != "localhost:9999" {
		t.Fatalf("Addr = %q, want env override", cfg.Addr)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"empty path", ""},
		{"missing file", filepath.Join(t.TempDir(), "nope.yaml")},
		{"missing required address", writeConfig(t, "env: dev\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
