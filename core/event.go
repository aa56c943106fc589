package core

import (
	"time"

	"github.com/google/uuid"
)

// NewID generates a new unique identifier.
func NewID() string {
	return uuid.NewString()
}

// EventType identifies the kind of negotiation event.
type EventType string

const (
	// EventTypeHeartbeat signals liveness between rounds.
	EventTypeHeartbeat EventType = "heartbeat"
	// EventTypeRoundStart marks the beginning of a round.
	EventTypeRoundStart EventType = "round_start"
	// EventTypeBuyerMessage carries the buyer's message for a round.
	EventTypeBuyerMessage EventType = "buyer_message"
	// EventTypeSellerResponse carries one seller's reply for a round.
	EventTypeSellerResponse EventType = "seller_response"
	// EventTypeDecision announces an accepted offer with its deal totals.
	EventTypeDecision EventType = "decision"
	// EventTypeNegotiationComplete terminates a run, with or without a
	// selected seller.
	EventTypeNegotiationComplete EventType = "negotiation_complete"
	// EventTypeError terminates a run after a fatal failure.
	EventTypeError EventType = "error"
)

// Event is a single entry in a room's event stream. Exactly one terminal
// event, negotiation_complete or error, closes every run.
type Event struct {
	// ID is the unique event identifier.
	ID string `json:"id"`
	// RoomID identifies the room the event belongs to.
	RoomID string `json:"room_id"`
	// Type is the event kind.
	Type EventType `json:"type"`
	// Data is the type-specific payload.
	Data map[string]any `json:"data"`
	// Timestamp is the emission time in UTC.
	Timestamp time.Time `json:"timestamp"`
}

// Terminal reports whether the event ends the stream.
func (e Event) Terminal() bool {
	return e.Type == EventTypeNegotiationComplete || e.Type == EventTypeError
}

// NewEvent creates an event with a fresh id and the current UTC time.
func NewEvent(roomID string, eventType EventType, data map[string]any) Event {
	return Event{
		ID:        NewID(),
		RoomID:    roomID,
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// NewHeartbeatEvent signals liveness with a short status message.
func NewHeartbeatEvent(roomID, message string, round int) Event {
	return NewEvent(roomID, EventTypeHeartbeat, map[string]any{
		"message": message,
		"round":   round,
	})
}

// NewRoundStartEvent marks the beginning of the given round.
func NewRoundStartEvent(roomID string, round, maxRounds int) Event {
	return NewEvent(roomID, EventTypeRoundStart, map[string]any{
		"round_number": round,
		"max_rounds":   maxRounds,
	})
}

// NewBuyerMessageEvent carries the buyer message appended in the given
// round.
func NewBuyerMessageEvent(roomID string, msg Message) Event {
	return NewEvent(roomID, EventTypeBuyerMessage, map[string]any{
		"sender_id":         msg.SenderID,
		"sender_name":       msg.SenderName,
		"sender_type":       string(SenderTypeBuyer),
		"message":           msg.Content,
		"mentioned_sellers": append([]string(nil), msg.MentionedSellers...),
		"round":             msg.Round,
	})
}

// NewSellerResponseEvent carries one seller's reply. The offer entry is nil
// when the seller made no parseable offer.
func NewSellerResponseEvent(roomID string, msg Message) Event {
	var offer any
	if msg.Offer != nil {
		offer = *msg.Offer
	}

	return NewEvent(roomID, EventTypeSellerResponse, map[string]any{
		"seller_id":   msg.SenderID,
		"sender_name": msg.SenderName,
		"sender_type": string(SenderTypeSeller),
		"message":     msg.Content,
		"offer":       offer,
		"round":       msg.Round,
	})
}

// DealSummary carries the wallet-adjusted totals attached to a decision
// event. Without a wallet the effective total equals the raw total and no
// card is recommended.
type DealSummary struct {
	// TotalCost is price times quantity of the accepted offer.
	TotalCost float64
	// EffectiveTotal is the total after card savings.
	EffectiveTotal float64
	// RecommendedCard names the card that yields the savings. Empty when
	// no wallet applies.
	RecommendedCard string
	// CardSavings is the amount saved by the recommended card.
	CardSavings float64
}

// NewDecisionEvent announces the accepted offer together with its deal
// totals.
func NewDecisionEvent(roomID string, d Decision, deal DealSummary) Event {
	var card any
	if deal.RecommendedCard != "" {
		card = deal.RecommendedCard
	}

	return NewEvent(roomID, EventTypeDecision, map[string]any{
		"decision":           "accept",
		"chosen_seller_id":   d.SellerID,
		"chosen_seller_name": d.SellerName,
		"final_price":        d.Offer.Price,
		"final_quantity":     d.Offer.Quantity,
		"total_cost":         deal.TotalCost,
		"effective_total":    deal.EffectiveTotal,
		"recommended_card":   card,
		"card_savings":       deal.CardSavings,
		"reason":             d.Reason,
	})
}

// NewCompleteEvent terminates the stream. With a selected seller it carries
// the final offer; without one the selection entries are nil.
func NewCompleteEvent(roomID string, outcome Outcome) Event {
	data := map[string]any{
		"selected_seller_id": nil,
		"final_offer":        nil,
		"reason":             outcome.Reason,
		"rounds":             outcome.Rounds,
	}

	if outcome.SelectedSellerID != "" {
		data["selected_seller_id"] = outcome.SelectedSellerID
		data["selected_seller_name"] = outcome.SelectedSellerName
	}

	if outcome.FinalOffer != nil {
		data["final_offer"] = *outcome.FinalOffer
	}

	return NewEvent(roomID, EventTypeNegotiationComplete, data)
}

// NewErrorEvent terminates the stream after a fatal failure.
func NewErrorEvent(roomID string, err error, round int) Event {
	return NewEvent(roomID, EventTypeError, map[string]any{
		"error": err.Error(),
		"round": round,
	})
}
