package transport

import (
	"crypto/tls"
	"fmt"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/gray-logic-connect/internal/infrastructure/config"
)

// Connection constants.
const (
	// disconnectQuiesce is the time allowed for in-flight operations to
	// drain when disconnecting.
	disconnectQuiesce = 1000 // milliseconds

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12
)

// buildClientOptions creates paho MQTT options from Gray Logic Connect config.
//
// This configures:
//   - Broker URL (tcp:// or ssl:// based on TLS setting)
//   - Client ID for identification
//   - Authentication credentials (if provided)
//   - Clean session mode, keepalive and ping timeout
//   - Last will message (if enabled)
//   - TLS configuration (if enabled)
//
// Automatic reconnect and connect retry are disabled: the connection manager
// owns the retry policy, and paho racing it would produce duplicate
// connections.
func buildClientOptions(cfg *config.Config) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	// Broker URL
	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	brokerURL := fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port)
	opts.AddBroker(brokerURL)

	// Client identification
	opts.SetClientID(cfg.Broker.ClientID)

	// Authentication (if credentials provided)
	if cfg.Broker.Auth.Username != "" {
		opts.SetUsername(cfg.Broker.Auth.Username)
		opts.SetPassword(cfg.Broker.Auth.Password)
	}

	opts.SetCleanSession(cfg.Broker.CleanSession)

	// Retry policy lives in the connection manager, not in paho.
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)

	// The dial itself is bounded by the same window the manager waits on.
	opts.SetConnectTimeout(cfg.GetConnectWait())

	// Keepalive - broker PINGs detect dead connections
	opts.SetKeepAlive(cfg.GetKeepAlive())
	opts.SetPingTimeout(cfg.GetPingTimeout())

	// In-order delivery to the listener; acknowledgment is issued by the
	// listener after fan-out, not by paho on receipt.
	opts.SetOrderMatters(true)
	opts.SetAutoAckDisabled(true)

	// Last will message for unclean-exit detection
	if cfg.Will.Enabled {
		opts.SetBinaryWill(cfg.Will.Topic, []byte(cfg.Will.Payload), byte(cfg.Will.QoS), cfg.Will.Retain)
	}

	// TLS configuration if enabled
	if cfg.Broker.TLS {
		tlsConfig := &tls.Config{
			MinVersion: tlsMinVersion,
		}
		opts.SetTLSConfig(tlsConfig)
	}

	return opts
}
