package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hupe1980/haggle"
	"github.com/hupe1980/haggle/core"
	"github.com/hupe1980/haggle/negotiate"
)

type createNegotiationRequest struct {
	BuyerName   string                `json:"buyer_name"`
	SessionID   string                `json:"session_id,omitempty"`
	Constraints core.BuyerConstraints `json:"constraints"`
	Sellers     []core.Seller         `json:"sellers"`
	MaxRounds   int                   `json:"max_rounds,omitempty"`
	Seed        *int64                `json:"seed,omitempty"`
}

type sellerParticipant struct {
	SellerID   string `json:"seller_id"`
	SellerName string `json:"seller_name"`
}

type createNegotiationResponse struct {
	RoomID               string                 `json:"room_id"`
	Status               core.RoomStatus        `json:"status"`
	BuyerID              string                 `json:"buyer_id"`
	ItemName             string                 `json:"item_name"`
	MaxRounds            int                    `json:"max_rounds"`
	ParticipatingSellers []sellerParticipant    `json:"participating_sellers"`
	SkippedSellers       []negotiate.SkipReason `json:"skipped_sellers,omitempty"`
	CreatedAt            time.Time              `json:"created_at"`
	StreamURL            string                 `json:"stream_url"`
}

type roomSummary struct {
	RoomID       string          `json:"room_id"`
	ItemName     string          `json:"item_name"`
	Status       core.RoomStatus `json:"status"`
	CurrentRound int             `json:"current_round"`
	MaxRounds    int             `json:"max_rounds"`
	SellerCount  int             `json:"seller_count"`
	CreatedAt    time.Time       `json:"created_at"`
}

type roomStateResponse struct {
	RoomID              string                `json:"room_id"`
	SessionID           string                `json:"session_id,omitempty"`
	ItemName            string                `json:"item_name"`
	Status              core.RoomStatus       `json:"status"`
	CurrentRound        int                   `json:"current_round"`
	MaxRounds           int                   `json:"max_rounds"`
	BuyerConstraints    core.BuyerConstraints `json:"buyer_constraints"`
	ConversationHistory []core.Message        `json:"conversation_history"`
	CurrentOffers       map[string]core.Offer `json:"current_offers"`
	Outcome             *core.Outcome         `json:"outcome,omitempty"`
}

// createNegotiation handles POST /api/v1/negotiations.
func (s *Server) createNegotiation(w http.ResponseWriter, r *http.Request) {
	var req createNegotiationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	maxRounds := req.MaxRounds
	if maxRounds == 0 {
		maxRounds = s.maxRounds
	}

	negRoom, skipped, err := s.haggle.CreateRoom(r.Context(), haggle.CreateRoomInput{
		BuyerName:   req.BuyerName,
		Constraints: req.Constraints,
		Sellers:     req.Sellers,
		SessionID:   req.SessionID,
		MaxRounds:   maxRounds,
		Seed:        req.Seed,
	})
	if err != nil {
		if errors.Is(err, core.ErrNoEligibleSellers) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":           err.Error(),
				"skipped_sellers": skipped,
			})
			return
		}

		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	participants := make([]sellerParticipant, 0, len(negRoom.Sellers))
	for _, seller := range negRoom.Sellers {
		participants = append(participants, sellerParticipant{SellerID: seller.ID, SellerName: seller.Name})
	}

	s.logger.Info("room %s created for %q with %d sellers", negRoom.ID, negRoom.Constraints.ItemName, len(participants))

	writeJSON(w, http.StatusCreated, createNegotiationResponse{
		RoomID:               negRoom.ID,
		Status:               negRoom.Status(),
		BuyerID:              negRoom.BuyerID,
		ItemName:             negRoom.Constraints.ItemName,
		MaxRounds:            negRoom.MaxRounds,
		ParticipatingSellers: participants,
		SkippedSellers:       skipped,
		CreatedAt:            negRoom.Created,
		StreamURL:            fmt.Sprintf("/api/v1/negotiations/%s/stream", negRoom.ID),
	})
}

// listNegotiations handles GET /api/v1/negotiations.
func (s *Server) listNegotiations(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.haggle.Rooms(r.Context())
	if err != nil {
		s.logger.Error("failed to list rooms: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list negotiations")
		return
	}

	summaries := make([]roomSummary, 0, len(rooms))
	for _, negRoom := range rooms {
		summaries = append(summaries, roomSummary{
			RoomID:       negRoom.ID,
			ItemName:     negRoom.Constraints.ItemName,
			Status:       negRoom.Status(),
			CurrentRound: negRoom.CurrentRound(),
			MaxRounds:    negRoom.MaxRounds,
			SellerCount:  len(negRoom.Sellers),
			CreatedAt:    negRoom.Created,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"negotiations": summaries,
		"count":        len(summaries),
	})
}

// getNegotiation handles GET /api/v1/negotiations/{roomID}.
func (s *Server) getNegotiation(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	negRoom, err := s.haggle.Room(r.Context(), roomID)
	if err != nil {
		if errors.Is(err, core.ErrRoomNotFound) {
			writeError(w, http.StatusNotFound, "negotiation not found")
			return
		}

		s.logger.Error("failed to load room %s: %v", roomID, err)
		writeError(w, http.StatusInternalServerError, "failed to load negotiation")
		return
	}

	offers := make(map[string]core.Offer)
	for _, standing := range negRoom.Conversation.StandingOffers() {
		offers[standing.SellerID] = standing.Offer
	}

	writeJSON(w, http.StatusOK, roomStateResponse{
		RoomID:              negRoom.ID,
		SessionID:           negRoom.SessionID,
		ItemName:            negRoom.Constraints.ItemName,
		Status:              negRoom.Status(),
		CurrentRound:        negRoom.CurrentRound(),
		MaxRounds:           negRoom.MaxRounds,
		BuyerConstraints:    negRoom.Constraints,
		ConversationHistory: negRoom.Conversation.Messages(),
		CurrentOffers:       offers,
		Outcome:             negRoom.Outcome(),
	})
}
