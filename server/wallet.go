package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hupe1980/haggle/wallet"
)

// demoWallet handles GET /api/v1/wallet/demo.
func (s *Server) demoWallet(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, wallet.DemoWallet())
}

// getWallet handles GET /api/v1/sessions/{sessionID}/wallet. Sessions
// without cards yield an empty wallet.
func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	stored, err := s.haggle.Wallets().WalletForSession(r.Context(), sessionID)
	if err != nil {
		s.logger.Error("failed to load wallet for session %s: %v", sessionID, err)
		writeError(w, http.StatusInternalServerError, "failed to load wallet")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"wallet":     stored,
	})
}

// replaceWallet handles PUT /api/v1/sessions/{sessionID}/wallet.
func (s *Server) replaceWallet(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var incoming wallet.Wallet
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.haggle.Wallets().ReplaceWallet(r.Context(), sessionID, incoming); err != nil {
		s.logger.Error("failed to replace wallet for session %s: %v", sessionID, err)
		writeError(w, http.StatusInternalServerError, "failed to replace wallet")
		return
	}

	s.logger.Info("session %s wallet replaced with %d cards", sessionID, len(incoming.Cards))

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"wallet":     incoming,
	})
}
