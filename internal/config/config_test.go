package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/quillsign/quill/internal/config"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("QUILL_STORAGE_CONNECTION_STRING", "UseDevelopmentStorage=true")
	t.Setenv("QUILL_OPENSIGN_API_KEY", "test-key")
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequiredEnv(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("addr = %s", cfg.Server.Addr())
	}
	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("shutdown timeout = %s", cfg.ShutdownTimeoutDuration())
	}
	if cfg.Storage.ContainerName != "esign-documents" {
		t.Errorf("container = %s", cfg.Storage.ContainerName)
	}
	if cfg.Provider.APIKey != "test-key" {
		t.Errorf("api key = %s", cfg.Provider.APIKey)
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("base path = %s", cfg.API.BasePath)
	}
	if cfg.API.MaxUploadSizeBytes() != 50*1024*1024 {
		t.Errorf("max upload = %d", cfg.API.MaxUploadSizeBytes())
	}
}

func TestLoadBaseFile(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequiredEnv(t)

	base := `
shutdown_timeout = "45s"

[server]
port = 9090

[provider]
timeout = "10s"

[api]
max_upload_size = "10MB"
`
	if err := os.WriteFile("config.toml", []byte(base), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.ShutdownTimeout != "45s" {
		t.Errorf("shutdown timeout = %s", cfg.ShutdownTimeout)
	}
	if cfg.Provider.TimeoutDuration() != 10*time.Second {
		t.Errorf("provider timeout = %s", cfg.Provider.TimeoutDuration())
	}
	if cfg.API.MaxUploadSizeBytes() != 10*1024*1024 {
		t.Errorf("max upload = %d", cfg.API.MaxUploadSizeBytes())
	}
}

func TestLoadOverlay(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequiredEnv(t)
	t.Setenv("QUILL_ENV", "staging")

	base := `
[server]
port = 9090
host = "127.0.0.1"
`
	overlay := `
[server]
port = 9999
`
	if err := os.WriteFile("config.toml", []byte(base), 0644); err != nil {
		t.Fatalf("write base: %v", err)
	}
	if err := os.WriteFile("config.staging.toml", []byte(overlay), 0644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Env() != "staging" {
		t.Errorf("env = %s", cfg.Env())
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d, want overlay value 9999", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("host = %s, want base value", cfg.Server.Host)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequiredEnv(t)
	t.Setenv("QUILL_SERVER_PORT", "7070")
	t.Setenv("QUILL_OPENSIGN_TIMEOUT", "5s")
	t.Setenv("QUILL_STORAGE_CONTAINER_NAME", "env-container")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Provider.TimeoutDuration() != 5*time.Second {
		t.Errorf("provider timeout = %s", cfg.Provider.TimeoutDuration())
	}
	if cfg.Storage.ContainerName != "env-container" {
		t.Errorf("container = %s", cfg.Storage.ContainerName)
	}
}

func TestLoadValidation(t *testing.T) {
	t.Run("missing provider key", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("QUILL_STORAGE_CONNECTION_STRING", "UseDevelopmentStorage=true")
		t.Setenv("QUILL_OPENSIGN_API_KEY", "")

		if _, err := config.Load(); err == nil {
			t.Error("expected validation error for missing provider api key")
		}
	})

	t.Run("missing storage connection string", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("QUILL_STORAGE_CONNECTION_STRING", "")
		t.Setenv("QUILL_OPENSIGN_API_KEY", "test-key")

		if _, err := config.Load(); err == nil {
			t.Error("expected validation error for missing connection string")
		}
	})

	t.Run("invalid port", func(t *testing.T) {
		t.Chdir(t.TempDir())
		setRequiredEnv(t)
		t.Setenv("QUILL_SERVER_PORT", "99999")

		if _, err := config.Load(); err == nil {
			t.Error("expected validation error for out-of-range port")
		}
	})
}

func TestServerConfig(t *testing.T) {
	cfg := config.ServerConfig{Host: "localhost", Port: 8080, ReadTimeout: "1m", WriteTimeout: "5m", ShutdownTimeout: "30s"}

	if cfg.Addr() != "localhost:8080" {
		t.Errorf("addr = %s", cfg.Addr())
	}
	if cfg.ReadTimeoutDuration() != time.Minute {
		t.Errorf("read timeout = %s", cfg.ReadTimeoutDuration())
	}
	if cfg.WriteTimeoutDuration() != 5*time.Minute {
		t.Errorf("write timeout = %s", cfg.WriteTimeoutDuration())
	}
}

func TestAPIConfigMaxUploadSize(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int64
	}{
		{"parsed", "10MB", 10 * 1024 * 1024},
		{"unparseable falls back", "lots", 50 * 1024 * 1024},
		{"empty falls back", "", 50 * 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.APIConfig{MaxUploadSize: tt.value}
			if got := cfg.MaxUploadSizeBytes(); got != tt.want {
				t.Errorf("MaxUploadSizeBytes() = %d, want %d", got, tt.want)
			}
		})
	}
}
