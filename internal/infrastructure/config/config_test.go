package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	// Create a temporary config file
	content := `
broker:
  host: "broker.local"
  port: 1883
  client_id: "connect-test"
session:
  connect_wait: 10
  disconnect_wait: 5
subscribe:
  topics: "sensors/temp, sensors/humidity"
  qos: 1
journal:
  enabled: true
  path: "/tmp/connect-test.db"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Broker.Host != "broker.local" {
		t.Errorf("Broker.Host = %q, want %q", cfg.Broker.Host, "broker.local")
	}

	if cfg.Subscribe.Topics != "sensors/temp, sensors/humidity" {
		t.Errorf("Subscribe.Topics = %q, want %q", cfg.Subscribe.Topics, "sensors/temp, sensors/humidity")
	}

	if cfg.Journal.Path != "/tmp/connect-test.db" {
		t.Errorf("Journal.Path = %q, want %q", cfg.Journal.Path, "/tmp/connect-test.db")
	}

	// Defaults survive a partial file
	if cfg.Session.SendWait != 5 {
		t.Errorf("Session.SendWait = %d, want default 5", cfg.Session.SendWait)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
broker:
  host: ""
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for empty broker.host, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config { return defaultConfig() }

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing broker host",
			mutate:  func(c *Config) { c.Broker.Host = "" },
			wantErr: true,
		},
		{
			name:    "broker port too low",
			mutate:  func(c *Config) { c.Broker.Port = 0 },
			wantErr: true,
		},
		{
			name:    "broker port too high",
			mutate:  func(c *Config) { c.Broker.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "missing client id",
			mutate:  func(c *Config) { c.Broker.ClientID = "" },
			wantErr: true,
		},
		{
			name:    "zero connect wait",
			mutate:  func(c *Config) { c.Session.ConnectWait = 0 },
			wantErr: true,
		},
		{
			name:    "invalid subscribe qos",
			mutate:  func(c *Config) { c.Subscribe.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "invalid publish qos",
			mutate:  func(c *Config) { c.Publish.QoS = -1 },
			wantErr: true,
		},
		{
			name: "will enabled without topic",
			mutate: func(c *Config) {
				c.Will.Enabled = true
				c.Will.Topic = ""
			},
			wantErr: true,
		},
		{
			name: "journal enabled without path",
			mutate: func(c *Config) {
				c.Journal.Enabled = true
				c.Journal.Path = ""
			},
			wantErr: true,
		},
		{
			name: "influxdb enabled without token",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.URL = "http://localhost:8086"
				c.InfluxDB.Org = "gray-logic"
				c.InfluxDB.Bucket = "messages"
			},
			wantErr: true,
		},
		{
			name:    "api port out of range",
			mutate:  func(c *Config) { c.API.Port = -1 },
			wantErr: true,
		},
		{
			name:    "unknown logging format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetDurations(t *testing.T) {
	cfg := &Config{
		Session: SessionConfig{
			ConnectWait:    10,
			DisconnectWait: 5,
			SendWait:       3,
		},
		Broker: BrokerConfig{
			KeepAlive:   30,
			PingTimeout: 10,
		},
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
	}

	if got := cfg.GetConnectWait().Seconds(); got != 10 {
		t.Errorf("GetConnectWait() = %v, want 10", got)
	}

	if got := cfg.GetDisconnectWait().Seconds(); got != 5 {
		t.Errorf("GetDisconnectWait() = %v, want 5", got)
	}

	if got := cfg.GetSendWait().Seconds(); got != 3 {
		t.Errorf("GetSendWait() = %v, want 3", got)
	}

	if got := cfg.GetKeepAlive().Seconds(); got != 30 {
		t.Errorf("GetKeepAlive() = %v, want 30", got)
	}

	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	// Set environment variables
	t.Setenv("GLCONNECT_BROKER_HOST", "mqtt.example.com")
	t.Setenv("GLCONNECT_BROKER_USERNAME", "testuser")
	t.Setenv("GLCONNECT_BROKER_PASSWORD", "testpass")
	t.Setenv("GLCONNECT_JOURNAL_PATH", "/custom/path.db")
	t.Setenv("GLCONNECT_API_HOST", "192.168.1.1")
	t.Setenv("GLCONNECT_INFLUXDB_TOKEN", "secret-token")

	applyEnvOverrides(cfg)

	if cfg.Broker.Host != "mqtt.example.com" {
		t.Errorf("Broker.Host = %q, want %q", cfg.Broker.Host, "mqtt.example.com")
	}

	if cfg.Broker.Auth.Username != "testuser" {
		t.Errorf("Broker.Auth.Username = %q, want %q", cfg.Broker.Auth.Username, "testuser")
	}

	if cfg.Broker.Auth.Password != "testpass" {
		t.Errorf("Broker.Auth.Password = %q, want %q", cfg.Broker.Auth.Password, "testpass")
	}

	if cfg.Journal.Path != "/custom/path.db" {
		t.Errorf("Journal.Path = %q, want %q", cfg.Journal.Path, "/custom/path.db")
	}

	if cfg.API.Host != "192.168.1.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "192.168.1.1")
	}

	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Broker.Host == "" {
		t.Error("defaultConfig should have non-empty Broker.Host")
	}

	if cfg.Broker.Port != 1883 {
		t.Errorf("defaultConfig Broker.Port = %d, want 1883", cfg.Broker.Port)
	}

	if cfg.Session.ConnectWait != 10 {
		t.Errorf("defaultConfig Session.ConnectWait = %d, want 10", cfg.Session.ConnectWait)
	}

	if cfg.Publish.MaxPayloadSize != 262144 {
		t.Errorf("defaultConfig Publish.MaxPayloadSize = %d, want 262144", cfg.Publish.MaxPayloadSize)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig should validate, got %v", err)
	}
}
