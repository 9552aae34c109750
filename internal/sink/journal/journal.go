package journal

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-connect/internal/endpoint"
	"github.com/nerrad567/gray-logic-connect/internal/infrastructure/database"
)

const (
	// defaultRecentLimit is the page size when the caller asks for none.
	defaultRecentLimit = 50

	// maxRecentLimit caps a single Recent query.
	maxRecentLimit = 500

	// pruneCheckInterval is how many inserts pass between retention sweeps.
	pruneCheckInterval = 256
)

// Direction labels for journal entries.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Logger is the minimal logging surface the journal needs.
type Logger interface {
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
}

// Entry is one journalled message.
type Entry struct {
	ID          string    `json:"id"`
	Direction   string    `json:"direction"`
	Topic       string    `json:"topic"`
	Payload     []byte    `json:"payload"`
	PayloadSize int       `json:"payload_size"`
	ReceivedAt  time.Time `json:"received_at"`
}

// Journal persists broker messages to SQLite. It implements endpoint.Sink
// for the inbound flow and exposes RecordOutbound for the publish path.
//
// Retention is row-count based: every pruneCheckInterval inserts the oldest
// rows beyond the configured bound are deleted.
type Journal struct {
	db        *database.DB
	logger    Logger
	retention int

	inserts atomic.Uint64
}

// New creates a journal over db. retention bounds the number of rows kept;
// zero or negative disables pruning.
func New(db *database.DB, retention int, logger Logger) *Journal {
	return &Journal{
		db:        db,
		logger:    logger,
		retention: retention,
	}
}

// Name identifies the sink in logs and status reporting.
func (j *Journal) Name() string { return "journal" }

// Consume records one inbound message. Implements endpoint.Sink.
func (j *Journal) Consume(ctx context.Context, msg *endpoint.Message) error {
	return j.record(ctx, DirectionInbound, msg.Topic, msg.Payload, msg.ReceivedAt)
}

// RecordOutbound records one published message.
func (j *Journal) RecordOutbound(ctx context.Context, topic string, payload []byte) error {
	return j.record(ctx, DirectionOutbound, topic, payload, time.Now().UTC())
}

func (j *Journal) record(ctx context.Context, direction, topic string, payload []byte, receivedAt time.Time) error {
	if topic == "" {
		return fmt.Errorf("journal: topic is required")
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO messages (id, direction, topic, payload, payload_size, received_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		direction,
		topic,
		payload,
		len(payload),
		receivedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("journal: inserting message: %w", err)
	}

	if n := j.inserts.Add(1); j.retention > 0 && n%pruneCheckInterval == 0 {
		if pruned, err := j.Prune(ctx); err != nil {
			j.logger.Warn("journal prune failed", "error", err)
		} else if pruned > 0 {
			j.logger.Debug("journal pruned", "rows", pruned, "retention", j.retention)
		}
	}

	return nil
}

// Recent returns the newest entries, optionally filtered by exact topic.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - topic: Exact topic filter, empty for all topics
//   - limit: Maximum entries to return (default 50, max 500)
//
// Returns:
//   - []Entry: Entries ordered newest first
//   - error: nil on success, otherwise the underlying query error
func (j *Journal) Recent(ctx context.Context, topic string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	query := `SELECT id, direction, topic, payload, payload_size, received_at
	          FROM messages`
	args := make([]interface{}, 0, 2)
	if topic != "" {
		query += " WHERE topic = ?"
		args = append(args, topic)
	}
	query += " ORDER BY received_at DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("journal: querying messages: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var entry Entry
		var receivedAt string
		if err := rows.Scan(&entry.ID, &entry.Direction, &entry.Topic, &entry.Payload, &entry.PayloadSize, &receivedAt); err != nil {
			return nil, fmt.Errorf("journal: scanning message: %w", err)
		}

		timestamp, err := time.Parse(time.RFC3339Nano, receivedAt)
		if err != nil {
			return nil, fmt.Errorf("journal: parsing received_at: %w", err)
		}
		entry.ReceivedAt = timestamp

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: iterating messages: %w", err)
	}

	return entries, nil
}

// Count returns the number of journalled messages.
func (j *Journal) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := j.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages").Scan(&count); err != nil {
		return 0, fmt.Errorf("journal: counting messages: %w", err)
	}
	return count, nil
}

// Prune deletes the oldest rows beyond the retention bound.
//
// Returns:
//   - int64: Number of rows deleted
//   - error: nil on success, otherwise the underlying database error
func (j *Journal) Prune(ctx context.Context) (int64, error) {
	if j.retention <= 0 {
		return 0, nil
	}

	result, err := j.db.ExecContext(ctx,
		`DELETE FROM messages WHERE rowid NOT IN (
		     SELECT rowid FROM messages ORDER BY received_at DESC, rowid DESC LIMIT ?
		 )`,
		j.retention,
	)
	if err != nil {
		return 0, fmt.Errorf("journal: pruning messages: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("journal: checking rows affected: %w", err)
	}

	return rowsAffected, nil
}
