package core

import (
	"fmt"
	"time"
)

// SenderType identifies which side of the table a message came from.
type SenderType string

const (
	// SenderTypeBuyer marks messages authored by the buyer agent.
	SenderTypeBuyer SenderType = "buyer"
	// SenderTypeSeller marks messages authored by a seller agent.
	SenderTypeSeller SenderType = "seller"
)

// Offer is a concrete price-and-quantity proposal attached to a seller
// message.
type Offer struct {
	// Price is the proposed price per unit.
	Price float64 `json:"price"`
	// Quantity is the number of units offered.
	Quantity int `json:"quantity"`
}

// Total returns the full price of the offer.
func (o Offer) Total() float64 {
	return o.Price * float64(o.Quantity)
}

// Message is a single entry in a room's conversation log.
type Message struct {
	// ID is deterministic per round and sender, see BuyerMessageID and
	// SellerMessageID.
	ID string `json:"message_id"`
	// Round is the negotiation round the message belongs to.
	Round int `json:"turn_number"`
	// Timestamp is the creation time in UTC.
	Timestamp time.Time `json:"timestamp"`
	// SenderID identifies the author.
	SenderID string `json:"sender_id"`
	// SenderType is buyer or seller.
	SenderType SenderType `json:"sender_type"`
	// SenderName is the author's display name.
	SenderName string `json:"sender_name"`
	// Content is the free-text negotiation message.
	Content string `json:"content"`
	// Offer is the parsed offer, only ever present on seller messages.
	Offer *Offer `json:"offer,omitempty"`
	// MentionedSellers lists seller ids addressed by a buyer message.
	MentionedSellers []string `json:"mentioned_sellers,omitempty"`
	// Visibility lists the participant ids allowed to read the message.
	Visibility []string `json:"visibility,omitempty"`
}

// Clone returns a deep copy of the message.
func (m Message) Clone() Message {
	clone := m

	if m.Offer != nil {
		offer := *m.Offer
		clone.Offer = &offer
	}

	if m.MentionedSellers != nil {
		clone.MentionedSellers = append([]string(nil), m.MentionedSellers...)
	}

	if m.Visibility != nil {
		clone.Visibility = append([]string(nil), m.Visibility...)
	}

	return clone
}

// VisibleTo reports whether the given participant may read the message.
// Messages without a visibility list are public.
func (m Message) VisibleTo(participantID string) bool {
	if len(m.Visibility) == 0 {
		return true
	}

	for _, id := range m.Visibility {
		if id == participantID {
			return true
		}
	}

	return false
}

// BuyerMessageID returns the deterministic id of the buyer message for the
// given round.
func BuyerMessageID(round int) string {
	return fmt.Sprintf("msg_%d_buyer", round)
}

// SellerMessageID returns the deterministic id of a seller's message for
// the given round.
func SellerMessageID(round int, sellerID string) string {
	return fmt.Sprintf("msg_%d_seller_%s", round, sellerID)
}

// NewBuyerMessage builds the buyer's message for a round. Buyer messages
// are visible to every seller and the buyer.
func NewBuyerMessage(round int, buyerID, buyerName, content string, mentionedSellers, sellerIDs []string) Message {
	visibility := make([]string, 0, len(sellerIDs)+1)
	visibility = append(visibility, sellerIDs...)
	visibility = append(visibility, buyerID)

	return Message{
		ID:               BuyerMessageID(round),
		Round:            round,
		Timestamp:        time.Now().UTC(),
		SenderID:         buyerID,
		SenderType:       SenderTypeBuyer,
		SenderName:       buyerName,
		Content:          content,
		MentionedSellers: append([]string(nil), mentionedSellers...),
		Visibility:       visibility,
	}
}

// NewSellerMessage builds a seller's message for a round. Seller messages
// are visible only to the buyer and the authoring seller.
func NewSellerMessage(round int, sellerID, sellerName, buyerID, content string, offer *Offer) Message {
	msg := Message{
		ID:         SellerMessageID(round, sellerID),
		Round:      round,
		Timestamp:  time.Now().UTC(),
		SenderID:   sellerID,
		SenderType: SenderTypeSeller,
		SenderName: sellerName,
		Content:    content,
		Visibility: []string{buyerID, sellerID},
	}

	if offer != nil {
		value := *offer
		msg.Offer = &value
	}

	return msg
}
