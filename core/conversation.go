package core

import (
	"encoding/json"
	"sync"
)

// StandingOffer is a seller's most recent offer, extracted from the
// conversation log.
type StandingOffer struct {
	// SellerID identifies the offering seller.
	SellerID string `json:"seller_id"`
	// SellerName is the seller's display name.
	SellerName string `json:"seller_name"`
	// Offer is the proposal itself.
	Offer Offer `json:"offer"`
	// Round is the round the offer was made in.
	Round int `json:"round"`
}

// ConversationLog is the append-only message history of a room. It is safe
// for concurrent use; parallel seller turns append to it while readers take
// snapshots.
type ConversationLog struct {
	mu       sync.RWMutex
	messages []Message
}

// NewConversationLog creates a log seeded with the given messages.
func NewConversationLog(messages ...Message) *ConversationLog {
	log := &ConversationLog{}

	for _, msg := range messages {
		log.messages = append(log.messages, msg.Clone())
	}

	return log
}

// Append adds a message to the end of the log.
func (l *ConversationLog) Append(msg Message) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = append(l.messages, msg.Clone())
}

// Messages returns a snapshot of the log in append order.
func (l *ConversationLog) Messages() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snapshot := make([]Message, 0, len(l.messages))

	for _, msg := range l.messages {
		snapshot = append(snapshot, msg.Clone())
	}

	return snapshot
}

// Len returns the number of messages in the log.
func (l *ConversationLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.messages)
}

// LastBySender returns the most recent message from the given sender.
func (l *ConversationLog) LastBySender(senderID string) (Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := len(l.messages) - 1; i >= 0; i-- {
		if l.messages[i].SenderID == senderID {
			return l.messages[i].Clone(), true
		}
	}

	return Message{}, false
}

// StandingOffers returns each seller's latest offer across the whole log,
// ordered by the seller's first appearance. Sellers whose messages never
// carried an offer are absent.
func (l *ConversationLog) StandingOffers() []StandingOffer {
	l.mu.RLock()
	defer l.mu.RUnlock()

	index := make(map[string]int, 4)
	offers := make([]StandingOffer, 0, 4)

	for _, msg := range l.messages {
		if msg.SenderType != SenderTypeSeller || msg.Offer == nil {
			continue
		}

		standing := StandingOffer{
			SellerID:   msg.SenderID,
			SellerName: msg.SenderName,
			Offer:      *msg.Offer,
			Round:      msg.Round,
		}

		if i, ok := index[msg.SenderID]; ok {
			offers[i] = standing
			continue
		}

		index[msg.SenderID] = len(offers)
		offers = append(offers, standing)
	}

	return offers
}

// Clone returns a deep copy of the log.
func (l *ConversationLog) Clone() *ConversationLog {
	if l == nil {
		return NewConversationLog()
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	return NewConversationLog(l.messages...)
}

// MarshalJSON implements json.Marshaler. The log serializes as a plain
// message array.
func (l *ConversationLog) MarshalJSON() ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.messages == nil {
		return json.Marshal([]Message{})
	}

	return json.Marshal(l.messages)
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *ConversationLog) UnmarshalJSON(data []byte) error {
	var messages []Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = messages

	return nil
}
