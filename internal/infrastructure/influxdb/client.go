package influxdb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/nerrad567/gray-logic-connect/internal/infrastructure/config"
)

const (
	// connectTimeout bounds the ping that validates a fresh connection.
	connectTimeout = 10 * time.Second

	// pingTimeout bounds each health check ping.
	pingTimeout = 5 * time.Second

	// Batching defaults applied when the config leaves them unset.
	defaultBatchSize     = 100
	defaultFlushInterval = 10 // seconds

	// msPerSecond converts the flush interval to client library units.
	msPerSecond = 1000
)

// Client records connector telemetry in InfluxDB v2.
//
// Writes go through the library's non-blocking write API: points batch in
// memory and flush on the configured interval, so recording a point never
// stalls message delivery. Write failures surface through the SetOnError
// callback instead of a return value.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	conn   influxdb2.Client
	writes api.WriteAPI

	mu        sync.RWMutex
	connected bool
	onError   func(error)
}

// Connect builds a client for the configured server and proves it
// reachable with a ping before returning. ErrDisabled comes back when the
// integration is switched off in configuration.
func Connect(cfg config.InfluxDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	conn := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, writeOptions(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := ping(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c := &Client{
		conn:      conn,
		writes:    conn.WriteAPI(cfg.Org, cfg.Bucket),
		connected: true,
	}
	go c.relayWriteErrors(c.writes.Errors())

	return c, nil
}

// writeOptions builds the library options, falling back to the batching
// defaults for unset values. The flush interval is configured in seconds;
// the library expects milliseconds.
func writeOptions(cfg config.InfluxDBConfig) *influxdb2.Options {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = defaultFlushInterval
	}

	// #nosec G115 -- both values forced positive above
	return influxdb2.DefaultOptions().
		SetBatchSize(uint(batchSize)).
		SetFlushInterval(uint(flushInterval) * msPerSecond)
}

// ping folds the library's (healthy, err) pair into one error.
func ping(ctx context.Context, conn influxdb2.Client) error {
	healthy, err := conn.Ping(ctx)
	if err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	if !healthy {
		return errors.New("server not healthy")
	}
	return nil
}

// relayWriteErrors forwards async write failures to the registered
// callback. The channel closes with the write API on Close.
func (c *Client) relayWriteErrors(errs <-chan error) {
	for err := range errs {
		c.mu.RLock()
		callback := c.onError
		c.mu.RUnlock()

		if callback != nil {
			callback(err)
		}
	}
}

// SetOnError registers the callback for async write failures. Writes are
// non-blocking, so this is the only place they can be observed.
func (c *Client) SetOnError(callback func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = callback
}

// IsConnected reports the last known link state without touching the
// network; HealthCheck performs an active ping.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// HealthCheck verifies the server still answers pings.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	checkCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := ping(checkCtx, c.conn); err != nil {
		return fmt.Errorf("influxdb health check: %w", err)
	}
	return nil
}

// Flush blocks until buffered points are written. No-op after Close.
func (c *Client) Flush() {
	if c.writes == nil || !c.IsConnected() {
		return
	}
	c.writes.Flush()
}

// Close flushes pending points and shuts the client down. The library's
// Close reports nothing, so the error is always nil.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}

	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()

	c.writes.Flush()
	c.conn.Close()
	return nil
}
