package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hupe1980/haggle/core"
	"github.com/hupe1980/haggle/metrics"
)

// streamNegotiation handles GET /api/v1/negotiations/{roomID}/stream. It
// starts the run and forwards its events as server-sent events until the
// terminal event arrives or the client disconnects.
func (s *Server) streamNegotiation(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	ctx := r.Context()

	// Launch before committing to the SSE content type so that failures
	// still map to plain JSON errors.
	runID, events, errs, err := s.haggle.Negotiate(ctx, roomID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrRoomNotFound):
			writeError(w, http.StatusNotFound, "negotiation not found")
		case errors.Is(err, core.ErrRoomTerminal):
			writeError(w, http.StatusConflict, "negotiation already finished")
		default:
			s.logger.Error("failed to start run for room %s: %v", roomID, err)
			writeError(w, http.StatusInternalServerError, "failed to start negotiation")
		}

		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	metrics.IncrementActiveNegotiations()
	defer metrics.DecrementActiveNegotiations()

	started := time.Now()

	s.logger.Info("streaming run %s for room %s", runID, roomID)

	if err := sendSSEEvent(w, flusher, "connected", map[string]string{
		"room_id": roomID,
		"run_id":  runID,
	}); err != nil {
		s.logger.Error("failed to send connected event: %v", err)
		return
	}

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("client disconnected from run %s", runID)
			return

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}

			if err != nil {
				s.logger.Warn("run %s reported: %v", runID, err)
			}

		case ev, ok := <-events:
			if !ok {
				s.recordOutcome(ctx, roomID, started)
				return
			}

			metrics.RecordEvent(string(ev.Type))

			if s.bus != nil {
				if err := s.bus.Publish(ctx, ev); err != nil {
					s.logger.Warn("failed to mirror event %s: %v", ev.ID, err)
				}
			}

			if err := sendSSEEvent(w, flusher, string(ev.Type), ev); err != nil {
				s.logger.Error("failed to send event %s: %v", ev.ID, err)
				return
			}

		case <-heartbeat.C:
			if err := sendSSEEvent(w, flusher, "ping", map[string]any{
				"timestamp": time.Now().UTC(),
			}); err != nil {
				return
			}
		}
	}
}

// recordOutcome feeds the per-run Prometheus metrics once the stream has
// drained.
func (s *Server) recordOutcome(ctx context.Context, roomID string, started time.Time) {
	negRoom, err := s.haggle.Room(ctx, roomID)
	if err != nil {
		return
	}

	metrics.RecordNegotiation(string(negRoom.Status()), time.Since(started).Seconds(), negRoom.CurrentRound())
}

// sendSSEEvent writes one server-sent event and flushes it to the client.
func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}

	flusher.Flush()

	return nil
}
