package journal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-connect/internal/endpoint"
	"github.com/nerrad567/gray-logic-connect/internal/infrastructure/database"
)

// =============================================================================
// Test Helpers
// =============================================================================

func testLogger() Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// openTestJournal creates a journal over a temporary database with the
// messages schema applied.
func openTestJournal(t *testing.T, retention int) *Journal {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "journal.db"),
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	ctx := context.Background()
	_, err = db.ExecContext(ctx, `
		CREATE TABLE messages (
			id           TEXT PRIMARY KEY,
			direction    TEXT NOT NULL CHECK (direction IN ('inbound', 'outbound')),
			topic        TEXT NOT NULL,
			payload      BLOB,
			payload_size INTEGER NOT NULL DEFAULT 0,
			received_at  TEXT NOT NULL,
			created_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		)
	`)
	if err != nil {
		t.Fatalf("creating messages table: %v", err)
	}

	return New(db, retention, testLogger())
}

func inboundMessage(topic, payload string, at time.Time) *endpoint.Message {
	return &endpoint.Message{
		Topic:      topic,
		Payload:    []byte(payload),
		ReceivedAt: at,
	}
}

// =============================================================================
// Consume Tests
// =============================================================================

func TestConsume(t *testing.T) {
	j := openTestJournal(t, 0)
	ctx := context.Background()

	at := time.Date(2026, 8, 10, 9, 30, 0, 0, time.UTC)
	if err := j.Consume(ctx, inboundMessage("sensors/temp", "21.5", at)); err != nil {
		t.Fatalf("Consume() error = %v", err)
	}

	entries, err := j.Recent(ctx, "", 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Recent() returned %d entries, want 1", len(entries))
	}

	entry := entries[0]
	if entry.ID == "" {
		t.Error("ID is empty, want a generated UUID")
	}
	if entry.Direction != DirectionInbound {
		t.Errorf("Direction = %q, want %q", entry.Direction, DirectionInbound)
	}
	if entry.Topic != "sensors/temp" {
		t.Errorf("Topic = %q, want sensors/temp", entry.Topic)
	}
	if string(entry.Payload) != "21.5" {
		t.Errorf("Payload = %q, want 21.5", entry.Payload)
	}
	if entry.PayloadSize != 4 {
		t.Errorf("PayloadSize = %d, want 4", entry.PayloadSize)
	}
	if !entry.ReceivedAt.Equal(at) {
		t.Errorf("ReceivedAt = %v, want %v", entry.ReceivedAt, at)
	}
}

func TestConsume_EmptyTopicRejected(t *testing.T) {
	j := openTestJournal(t, 0)

	err := j.Consume(context.Background(), inboundMessage("", "x", time.Now()))
	if err == nil {
		t.Fatal("Consume() with empty topic succeeded, want error")
	}
}

func TestRecordOutbound(t *testing.T) {
	j := openTestJournal(t, 0)
	ctx := context.Background()

	if err := j.RecordOutbound(ctx, "actuators/valve", []byte("open")); err != nil {
		t.Fatalf("RecordOutbound() error = %v", err)
	}

	entries, err := j.Recent(ctx, "", 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Recent() returned %d entries, want 1", len(entries))
	}
	if entries[0].Direction != DirectionOutbound {
		t.Errorf("Direction = %q, want %q", entries[0].Direction, DirectionOutbound)
	}
}

func TestName(t *testing.T) {
	j := openTestJournal(t, 0)
	if got := j.Name(); got != "journal" {
		t.Errorf("Name() = %q, want journal", got)
	}
}

// =============================================================================
// Query Tests
// =============================================================================

func TestRecent_NewestFirst(t *testing.T) {
	j := openTestJournal(t, 0)
	ctx := context.Background()

	base := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		msg := inboundMessage("sensors/temp", fmt.Sprintf("%d", i), base.Add(time.Duration(i)*time.Second))
		if err := j.Consume(ctx, msg); err != nil {
			t.Fatalf("Consume() error = %v", err)
		}
	}

	entries, err := j.Recent(ctx, "", 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Recent() returned %d entries, want 3", len(entries))
	}
	for i, want := range []string{"2", "1", "0"} {
		if got := string(entries[i].Payload); got != want {
			t.Errorf("entry[%d].Payload = %q, want %q (newest first)", i, got, want)
		}
	}
}

func TestRecent_TopicFilter(t *testing.T) {
	j := openTestJournal(t, 0)
	ctx := context.Background()

	now := time.Now().UTC()
	for _, topic := range []string{"sensors/temp", "sensors/lux", "sensors/temp"} {
		if err := j.Consume(ctx, inboundMessage(topic, "v", now)); err != nil {
			t.Fatalf("Consume() error = %v", err)
		}
	}

	entries, err := j.Recent(ctx, "sensors/temp", 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Recent() returned %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if e.Topic != "sensors/temp" {
			t.Errorf("Topic = %q, want sensors/temp", e.Topic)
		}
	}
}

func TestRecent_LimitApplied(t *testing.T) {
	j := openTestJournal(t, 0)
	ctx := context.Background()

	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		if err := j.Consume(ctx, inboundMessage("t", "v", now.Add(time.Duration(i)*time.Millisecond))); err != nil {
			t.Fatalf("Consume() error = %v", err)
		}
	}

	entries, err := j.Recent(ctx, "", 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Recent() returned %d entries, want 2", len(entries))
	}
}

func TestCount(t *testing.T) {
	j := openTestJournal(t, 0)
	ctx := context.Background()

	count, err := j.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d, want 0", count)
	}

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		if err := j.Consume(ctx, inboundMessage("t", "v", now)); err != nil {
			t.Fatalf("Consume() error = %v", err)
		}
	}

	count, err = j.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}
}

// =============================================================================
// Retention Tests
// =============================================================================

func TestPrune(t *testing.T) {
	j := openTestJournal(t, 2)
	ctx := context.Background()

	base := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		msg := inboundMessage("t", fmt.Sprintf("%d", i), base.Add(time.Duration(i)*time.Second))
		if err := j.Consume(ctx, msg); err != nil {
			t.Fatalf("Consume() error = %v", err)
		}
	}

	pruned, err := j.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if pruned != 3 {
		t.Errorf("Prune() = %d, want 3", pruned)
	}

	entries, err := j.Recent(ctx, "", 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Recent() returned %d entries after prune, want 2", len(entries))
	}
	// The newest rows survive.
	if got := string(entries[0].Payload); got != "4" {
		t.Errorf("newest payload = %q, want 4", got)
	}
	if got := string(entries[1].Payload); got != "3" {
		t.Errorf("second payload = %q, want 3", got)
	}
}

func TestPrune_RetentionDisabled(t *testing.T) {
	j := openTestJournal(t, 0)
	ctx := context.Background()

	if err := j.Consume(ctx, inboundMessage("t", "v", time.Now().UTC())); err != nil {
		t.Fatalf("Consume() error = %v", err)
	}

	pruned, err := j.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if pruned != 0 {
		t.Errorf("Prune() = %d with retention disabled, want 0", pruned)
	}
}
