package api

import (
	"net/http"
	"strconv"

	"github.com/nerrad567/gray-logic-connect/internal/sink/journal"
)

// MessagesResponse wraps one page of journal entries.
type MessagesResponse struct {
	Count    int             `json:"count"`
	Messages []journal.Entry `json:"messages"`
}

// handleListMessages returns recent journal entries, newest first.
// Query parameters: topic filters to a single topic, limit caps the page
// size (the journal applies its own default and maximum).
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "message journal is disabled")
		return
	}

	topic := r.URL.Query().Get("topic")

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.journal.Recent(r.Context(), topic, limit)
	if err != nil {
		s.logger.Error("journal query failed", "error", err)
		writeInternalError(w, "failed to query message journal")
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}

	writeJSON(w, http.StatusOK, MessagesResponse{
		Count:    len(entries),
		Messages: entries,
	})
}
