package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Gray Logic Connect.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Broker    BrokerConfig    `yaml:"broker"`
	Session   SessionConfig   `yaml:"session"`
	Subscribe SubscribeConfig `yaml:"subscribe"`
	Publish   PublishConfig   `yaml:"publish"`
	Will      WillConfig      `yaml:"will"`
	Journal   JournalConfig   `yaml:"journal"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	API       APIConfig       `yaml:"api"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// BrokerConfig contains MQTT broker connection details.
type BrokerConfig struct {
	Host         string           `yaml:"host"`
	Port         int              `yaml:"port"`
	TLS          bool             `yaml:"tls"`
	ClientID     string           `yaml:"client_id"`
	CleanSession bool             `yaml:"clean_session"`
	KeepAlive    int              `yaml:"keep_alive"`
	PingTimeout  int              `yaml:"ping_timeout"`
	Auth         BrokerAuthConfig `yaml:"auth"`
}

// BrokerAuthConfig contains MQTT authentication credentials.
type BrokerAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// SessionConfig contains the wait bounds (in seconds) for the blocking
// connect, disconnect and publish paths.
type SessionConfig struct {
	ConnectWait    int `yaml:"connect_wait"`
	DisconnectWait int `yaml:"disconnect_wait"`
	SendWait       int `yaml:"send_wait"`
}

// SubscribeConfig describes the topic set the connector subscribes to.
// Topics takes precedence as a comma-separated list; Topic is the singular
// fallback. Both empty is a valid publish-only configuration.
type SubscribeConfig struct {
	Topics string `yaml:"topics"`
	Topic  string `yaml:"topic"`
	QoS    int    `yaml:"qos"`
}

// PublishConfig contains the defaults applied to outbound messages that do
// not carry their own topic, QoS or retain flag.
type PublishConfig struct {
	Topic          string `yaml:"topic"`
	QoS            int    `yaml:"qos"`
	Retain         bool   `yaml:"retain"`
	MaxPayloadSize int    `yaml:"max_payload_size"`
}

// WillConfig contains the broker-side last-will message announcing an
// unclean connector exit.
type WillConfig struct {
	Enabled bool   `yaml:"enabled"`
	Topic   string `yaml:"topic"`
	Payload string `yaml:"payload"`
	QoS     int    `yaml:"qos"`
	Retain  bool   `yaml:"retain"`
}

// JournalConfig contains the SQLite message journal settings.
type JournalConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	BusyTimeout int    `yaml:"busy_timeout"`
	Retention   int    `yaml:"retention"`
}

// InfluxDBConfig contains InfluxDB connection settings for the measurement
// recorder sink.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// APIConfig contains the operations HTTP API settings.
type APIConfig struct {
	Enabled     bool             `yaml:"enabled"`
	Host        string           `yaml:"host"`
	Port        int              `yaml:"port"`
	Timeouts    APITimeoutConfig `yaml:"timeouts"`
	CORS        CORSConfig       `yaml:"cors"`
	MaxBodySize int64            `yaml:"max_body_size"`
	WebSocket   WebSocketConfig  `yaml:"websocket"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains the live message tail settings. All intervals
// are in seconds.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GLCONNECT_SECTION_KEY
// For example: GLCONNECT_BROKER_HOST, GLCONNECT_JOURNAL_PATH
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Broker: BrokerConfig{
			Host:         "localhost",
			Port:         1883,
			ClientID:     "gray-logic-connect",
			CleanSession: true,
			KeepAlive:    30,
			PingTimeout:  10,
		},
		Session: SessionConfig{
			ConnectWait:    10,
			DisconnectWait: 5,
			SendWait:       5,
		},
		Subscribe: SubscribeConfig{
			QoS: 1,
		},
		Publish: PublishConfig{
			QoS:            1,
			MaxPayloadSize: 262144,
		},
		Will: WillConfig{
			Topic:   "graylogic/connect/status",
			Payload: "offline",
			QoS:     1,
			Retain:  true,
		},
		Journal: JournalConfig{
			Enabled:     true,
			Path:        "./data/connect.db",
			BusyTimeout: 5,
			Retention:   10000,
		},
		API: APIConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    8090,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
			MaxBodySize: 1048576,
			WebSocket: WebSocketConfig{
				MaxMessageSize: 8192,
				PingInterval:   30,
				PongTimeout:    10,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: GLCONNECT_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Broker
	if v := os.Getenv("GLCONNECT_BROKER_HOST"); v != "" {
		cfg.Broker.Host = v
	}
	if v := os.Getenv("GLCONNECT_BROKER_USERNAME"); v != "" {
		cfg.Broker.Auth.Username = v
	}
	if v := os.Getenv("GLCONNECT_BROKER_PASSWORD"); v != "" {
		cfg.Broker.Auth.Password = v
	}

	// Journal
	if v := os.Getenv("GLCONNECT_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}

	// API
	if v := os.Getenv("GLCONNECT_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	// InfluxDB
	if v := os.Getenv("GLCONNECT_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Broker validation
	if c.Broker.Host == "" {
		errs = append(errs, "broker.host is required")
	}
	if c.Broker.Port < 1 || c.Broker.Port > 65535 {
		errs = append(errs, "broker.port must be between 1 and 65535")
	}
	if c.Broker.ClientID == "" {
		errs = append(errs, "broker.client_id is required")
	}

	// Session validation
	if c.Session.ConnectWait < 1 {
		errs = append(errs, "session.connect_wait must be at least 1 second")
	}
	if c.Session.DisconnectWait < 1 {
		errs = append(errs, "session.disconnect_wait must be at least 1 second")
	}
	if c.Session.SendWait < 1 {
		errs = append(errs, "session.send_wait must be at least 1 second")
	}

	// QoS validation
	if c.Subscribe.QoS < 0 || c.Subscribe.QoS > 2 {
		errs = append(errs, "subscribe.qos must be 0, 1, or 2")
	}
	if c.Publish.QoS < 0 || c.Publish.QoS > 2 {
		errs = append(errs, "publish.qos must be 0, 1, or 2")
	}

	// Will validation
	if c.Will.Enabled {
		if c.Will.Topic == "" {
			errs = append(errs, "will.topic is required when will.enabled is true")
		}
		if c.Will.QoS < 0 || c.Will.QoS > 2 {
			errs = append(errs, "will.qos must be 0, 1, or 2")
		}
	}

	// Journal validation
	if c.Journal.Enabled && c.Journal.Path == "" {
		errs = append(errs, "journal.path is required when journal.enabled is true")
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb.enabled is true")
		}
		if c.InfluxDB.Token == "" {
			errs = append(errs, "influxdb.token is required (set GLCONNECT_INFLUXDB_TOKEN environment variable)")
		}
		if c.InfluxDB.Org == "" {
			errs = append(errs, "influxdb.org is required when influxdb.enabled is true")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required when influxdb.enabled is true")
		}
	}

	// API validation
	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	// Logging validation
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		errs = append(errs, "logging.format must be \"text\" or \"json\"")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetConnectWait returns the connect wait bound as a Duration.
func (c *Config) GetConnectWait() time.Duration {
	return time.Duration(c.Session.ConnectWait) * time.Second
}

// GetDisconnectWait returns the disconnect wait bound as a Duration.
func (c *Config) GetDisconnectWait() time.Duration {
	return time.Duration(c.Session.DisconnectWait) * time.Second
}

// GetSendWait returns the publish completion wait bound as a Duration.
func (c *Config) GetSendWait() time.Duration {
	return time.Duration(c.Session.SendWait) * time.Second
}

// GetKeepAlive returns the MQTT keepalive interval as a Duration.
func (c *Config) GetKeepAlive() time.Duration {
	return time.Duration(c.Broker.KeepAlive) * time.Second
}

// GetPingTimeout returns the MQTT ping timeout as a Duration.
func (c *Config) GetPingTimeout() time.Duration {
	return time.Duration(c.Broker.PingTimeout) * time.Second
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
