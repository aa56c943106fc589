package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/hupe1980/haggle/intake"
	"github.com/hupe1980/haggle/metrics"
)

// submitConstraint handles POST /api/v1/intake/constraints.
func (s *Server) submitConstraint(w http.ResponseWriter, r *http.Request) {
	var item intake.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	stored, err := s.queue.Enqueue(item)
	if err != nil {
		if errors.Is(err, intake.ErrQueueFull) {
			writeError(w, http.StatusServiceUnavailable, "intake queue is full")
			return
		}

		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	metrics.SetIntakeQueueDepth(s.queue.Len())

	s.logger.Info("intake captured %q under $%.2f", stored.ItemName, stored.MaxBudget)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":     "received",
		"item_name":  stored.ItemName,
		"max_budget": stored.MaxBudget,
		"quantity":   stored.Quantity,
		"message":    fmt.Sprintf("Got it! Looking for %s under $%.2f.", stored.ItemName, stored.MaxBudget),
	})
}

// listConstraints handles GET /api/v1/intake/constraints.
func (s *Server) listConstraints(w http.ResponseWriter, _ *http.Request) {
	items := s.queue.Snapshot()

	writeJSON(w, http.StatusOK, map[string]any{
		"constraints": items,
		"count":       len(items),
	})
}

// clearConstraints handles DELETE /api/v1/intake/constraints.
func (s *Server) clearConstraints(w http.ResponseWriter, _ *http.Request) {
	s.queue.Clear()
	metrics.SetIntakeQueueDepth(0)

	writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
}
