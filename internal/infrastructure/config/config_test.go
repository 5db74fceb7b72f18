package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
node:
  seed_id: "9c1a6e28-4b37-44e2-9a14-1a1f6f9f4d21"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.API.Port != 3212 {
		t.Errorf("API.Port = %d, want default 3212", cfg.API.Port)
	}
	if cfg.API.Host != "0.0.0.0" {
		t.Errorf("API.Host = %q, want default", cfg.API.Host)
	}
	if cfg.WebSocket.Path != "/ws" {
		t.Errorf("WebSocket.Path = %q, want /ws", cfg.WebSocket.Path)
	}
	if !cfg.Events.Enabled {
		t.Error("events should default to enabled")
	}
	if cfg.Events.MinInterval() != 500*time.Millisecond {
		t.Errorf("MinInterval = %v, want 500ms", cfg.Events.MinInterval())
	}
	if cfg.Events.MaxInterval() != 5*time.Second {
		t.Errorf("MaxInterval = %v, want 5s", cfg.Events.MaxInterval())
	}
	if cfg.Node.Label != "medianode" {
		t.Errorf("Node.Label = %q, want default", cfg.Node.Label)
	}
	if cfg.MQTT.Enabled || cfg.Telemetry.Enabled {
		t.Error("optional sinks must default to disabled")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
node:
  seed_id: "9c1a6e28-4b37-44e2-9a14-1a1f6f9f4d21"
  label: "studio node"
api:
  host: "127.0.0.1"
  port: 8080
events:
  enabled: true
  min_interval_millis: 100
  max_interval_millis: 200
logging:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Node.Label != "studio node" {
		t.Errorf("Node.Label = %q", cfg.Node.Label)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port = %d", cfg.API.Port)
	}
	if cfg.Events.MinIntervalMillis != 100 || cfg.Events.MaxIntervalMillis != 200 {
		t.Errorf("event intervals = %d/%d", cfg.Events.MinIntervalMillis, cfg.Events.MaxIntervalMillis)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
node:
  seed_id: "will-be-overridden"
`)

	t.Setenv("MEDIANODE_NODE_SEED_ID", "9c1a6e28-4b37-44e2-9a14-1a1f6f9f4d21")
	t.Setenv("MEDIANODE_API_HOST", "10.0.0.5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Node.SeedID != "9c1a6e28-4b37-44e2-9a14-1a1f6f9f4d21" {
		t.Errorf("SeedID = %q, env override not applied", cfg.Node.SeedID)
	}
	if cfg.API.Host != "10.0.0.5" {
		t.Errorf("API.Host = %q, env override not applied", cfg.API.Host)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load on a missing file should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.API.Port = 0 },
			wantErr: "api.port",
		},
		{
			name: "events interval order",
			mutate: func(c *Config) {
				c.Events.Enabled = true
				c.Events.MinIntervalMillis = 1000
				c.Events.MaxIntervalMillis = 500
			},
			wantErr: "max_interval_millis",
		},
		{
			name: "mqtt enabled without host",
			mutate: func(c *Config) {
				c.MQTT.Enabled = true
				c.MQTT.Host = ""
			},
			wantErr: "mqtt.host",
		},
		{
			name: "telemetry enabled without url",
			mutate: func(c *Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.Token = "tok"
			},
			wantErr: "telemetry.url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate passed, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaultsPass(t *testing.T) {
	if err := defaultConfig().Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}
