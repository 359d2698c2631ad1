package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jonathan/career-portal/internal/types"
)

// streamRetry is the reconnect delay suggested to EventSource clients.
const streamRetry = 3 * time.Second

// importStream writes bulk import updates as server-sent events. Every event
// carries an increasing id so clients can tell updates apart after a
// reconnect.
type importStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	seq     int
}

// importResult is the payload of the final "complete" event.
type importResult struct {
	ImportID string               `json:"import_id"`
	Status   types.ImportStatus   `json:"status"`
	Progress types.ImportProgress `json:"progress"`
	Errors   []string             `json:"errors"`
}

// openImportStream sends the event-stream headers and the retry hint.
func openImportStream(w http.ResponseWriter) (*importStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("streaming not supported")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if _, err := fmt.Fprintf(w, "retry: %d\n\n", streamRetry.Milliseconds()); err != nil {
		return nil, err
	}
	flusher.Flush()
	return &importStream{w: w, flusher: flusher}, nil
}

func (s *importStream) send(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}
	s.seq++
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.seq, event, data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

func (s *importStream) progress(p types.ImportProgress) error {
	return s.send("progress", p)
}

func (s *importStream) complete(importID string, p types.ImportProgress, errs []string) error {
	if errs == nil {
		errs = []string{}
	}
	return s.send("complete", importResult{ImportID: importID, Status: p.Status, Progress: p, Errors: errs})
}

func (s *importStream) fail(message string) error {
	return s.send("error", map[string]string{"error": message})
}
