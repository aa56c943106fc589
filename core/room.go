package core

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// RoomStatus describes the lifecycle stage of a negotiation room.
type RoomStatus string

const (
	// RoomStatusPending marks a room that has been created but not yet run.
	RoomStatusPending RoomStatus = "pending"
	// RoomStatusActive marks a room whose negotiation loop is running.
	RoomStatusActive RoomStatus = "active"
	// RoomStatusCompleted marks a room that ended with an accepted offer.
	RoomStatusCompleted RoomStatus = "completed"
	// RoomStatusAborted marks a room that ended without an accepted offer.
	RoomStatusAborted RoomStatus = "aborted"
)

// Terminal reports whether the status is final. Terminal rooms reject all
// further state transitions.
func (s RoomStatus) Terminal() bool {
	return s == RoomStatusCompleted || s == RoomStatusAborted
}

// Decision records an accepted offer and the seller it came from.
type Decision struct {
	SellerID   string `json:"seller_id"`
	SellerName string `json:"seller_name"`
	Offer      Offer  `json:"offer"`
	Reason     string `json:"reason"`
}

// Outcome summarizes how a room ended. SelectedSellerID and FinalOffer are
// empty when the room ended without an accepted offer.
type Outcome struct {
	SelectedSellerID   string `json:"selected_seller_id,omitempty"`
	SelectedSellerName string `json:"selected_seller_name,omitempty"`
	FinalOffer         *Offer `json:"final_offer,omitempty"`
	Reason             string `json:"reason"`
	Rounds             int    `json:"rounds"`
}

// Clone returns a deep copy of the outcome. A nil receiver yields nil.
func (o *Outcome) Clone() *Outcome {
	if o == nil {
		return nil
	}

	clone := *o

	if o.FinalOffer != nil {
		offer := *o.FinalOffer
		clone.FinalOffer = &offer
	}

	return &clone
}

// RoomOptions configures a new negotiation room.
type RoomOptions struct {
	// ID is the room identifier. A UUID is generated when empty.
	ID string
	// SessionID links the room to a wallet session. Optional.
	SessionID string
	// MaxRounds bounds the negotiation loop. Defaults to 10.
	MaxRounds int
	// Seed, when set, makes prompt-side shuffling reproducible. The round
	// loop itself is deterministic with or without a seed.
	Seed *int64
}

// Room is a single buyer-versus-sellers negotiation. The identity and
// configuration fields are fixed at construction time; the lifecycle state
// is guarded by a mutex so that snapshots taken while the round loop runs
// are consistent.
type Room struct {
	// ID is the unique room identifier.
	ID string
	// SessionID links the room to a wallet session. Empty when the buyer
	// negotiates without a wallet.
	SessionID string
	// BuyerID identifies the buyer agent.
	BuyerID string
	// BuyerName is the buyer's display name.
	BuyerName string
	// Constraints are the buyer's purchase requirements.
	Constraints BuyerConstraints
	// Sellers are the negotiation counterparties.
	Sellers []Seller
	// Conversation is the shared append-only message log.
	Conversation *ConversationLog
	// MaxRounds bounds the negotiation loop.
	MaxRounds int
	// Seed drives prompt-side shuffling when set.
	Seed *int64
	// Created is the room creation time in UTC.
	Created time.Time

	mu           sync.RWMutex
	status       RoomStatus
	currentRound int
	outcome      *Outcome
	updated      time.Time
}

// NewRoom creates a pending negotiation room for the given buyer and
// sellers.
func NewRoom(buyerID, buyerName string, constraints BuyerConstraints, sellers []Seller, optFns ...func(o *RoomOptions)) *Room {
	opts := RoomOptions{
		MaxRounds: 10,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.ID == "" {
		opts.ID = NewID()
	}

	now := time.Now().UTC()

	return &Room{
		ID:           opts.ID,
		SessionID:    opts.SessionID,
		BuyerID:      buyerID,
		BuyerName:    buyerName,
		Constraints:  constraints,
		Sellers:      cloneSellers(sellers),
		Conversation: NewConversationLog(),
		MaxRounds:    opts.MaxRounds,
		Seed:         cloneSeed(opts.Seed),
		Created:      now,
		status:       RoomStatusPending,
		updated:      now,
	}
}

// Validate checks that the room is well formed enough to negotiate.
func (r *Room) Validate() error {
	if r.BuyerID == "" {
		return fmt.Errorf("room %s: buyer id must not be empty", r.ID)
	}

	if r.MaxRounds < 1 {
		return fmt.Errorf("room %s: max rounds must be at least 1, got %d", r.ID, r.MaxRounds)
	}

	if err := r.Constraints.Validate(); err != nil {
		return fmt.Errorf("room %s: %w", r.ID, err)
	}

	if len(r.Sellers) == 0 {
		return fmt.Errorf("room %s: at least one seller is required", r.ID)
	}

	seen := make(map[string]struct{}, len(r.Sellers))

	for _, seller := range r.Sellers {
		if err := seller.Validate(); err != nil {
			return fmt.Errorf("room %s: %w", r.ID, err)
		}

		if _, ok := seen[seller.ID]; ok {
			return fmt.Errorf("room %s: duplicate seller id %q", r.ID, seller.ID)
		}

		seen[seller.ID] = struct{}{}
	}

	return nil
}

// Status returns the current lifecycle status.
func (r *Room) Status() RoomStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.status
}

// CurrentRound returns the number of the round currently in progress, or
// zero before the first round starts.
func (r *Room) CurrentRound() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.currentRound
}

// Outcome returns a copy of the final outcome, or nil while the room is
// still pending or active.
func (r *Room) Outcome() *Outcome {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.outcome.Clone()
}

// Updated returns the time of the last state change in UTC.
func (r *Room) Updated() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.updated
}

// Begin moves the room from pending to active.
func (r *Room) Begin() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != RoomStatusPending {
		return fmt.Errorf("%w: cannot begin room %s in status %q", ErrInvalidTransition, r.ID, r.status)
	}

	r.status = RoomStatusActive
	r.touch()

	return nil
}

// AdvanceRound increments the round counter and returns the new round
// number. The counter never exceeds MaxRounds.
func (r *Room) AdvanceRound() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status.Terminal() {
		return r.currentRound, fmt.Errorf("%w: room %s", ErrRoomTerminal, r.ID)
	}

	if r.currentRound >= r.MaxRounds {
		return r.currentRound, fmt.Errorf("%w: room %s reached %d rounds", ErrRoundLimit, r.ID, r.MaxRounds)
	}

	r.currentRound++
	r.touch()

	return r.currentRound, nil
}

// Complete moves the room from active to completed and records the accepted
// decision as its outcome.
func (r *Room) Complete(d Decision) (*Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != RoomStatusActive {
		return nil, fmt.Errorf("%w: cannot complete room %s in status %q", ErrInvalidTransition, r.ID, r.status)
	}

	offer := d.Offer

	r.outcome = &Outcome{
		SelectedSellerID:   d.SellerID,
		SelectedSellerName: d.SellerName,
		FinalOffer:         &offer,
		Reason:             d.Reason,
		Rounds:             r.currentRound,
	}

	r.status = RoomStatusCompleted
	r.touch()

	return r.outcome.Clone(), nil
}

// Abort ends the room without an accepted offer. Aborting is allowed from
// pending and active; terminal rooms are immutable.
func (r *Room) Abort(reason string) (*Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status.Terminal() {
		return nil, fmt.Errorf("%w: cannot abort room %s in status %q", ErrRoomTerminal, r.ID, r.status)
	}

	r.outcome = &Outcome{
		Reason: reason,
		Rounds: r.currentRound,
	}

	r.status = RoomStatusAborted
	r.touch()

	return r.outcome.Clone(), nil
}

// SellerByID returns the seller with the given id.
func (r *Room) SellerByID(id string) (Seller, bool) {
	for _, seller := range r.Sellers {
		if seller.ID == id {
			return seller.Clone(), true
		}
	}

	return Seller{}, false
}

// SellerIDs returns the ids of all sellers in declaration order.
func (r *Room) SellerIDs() []string {
	ids := make([]string, 0, len(r.Sellers))

	for _, seller := range r.Sellers {
		ids = append(ids, seller.ID)
	}

	return ids
}

// Clone returns a deep copy of the room, including its conversation log and
// outcome.
func (r *Room) Clone() *Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return &Room{
		ID:           r.ID,
		SessionID:    r.SessionID,
		BuyerID:      r.BuyerID,
		BuyerName:    r.BuyerName,
		Constraints:  r.Constraints.Clone(),
		Sellers:      cloneSellers(r.Sellers),
		Conversation: r.Conversation.Clone(),
		MaxRounds:    r.MaxRounds,
		Seed:         cloneSeed(r.Seed),
		Created:      r.Created,
		status:       r.status,
		currentRound: r.currentRound,
		outcome:      r.outcome.Clone(),
		updated:      r.updated,
	}
}

// touch records a state change. Callers must hold the write lock.
func (r *Room) touch() {
	r.updated = time.Now().UTC()
}

// roomJSON is the wire and storage shape of a room.
type roomJSON struct {
	ID           string           `json:"room_id"`
	SessionID    string           `json:"session_id,omitempty"`
	BuyerID      string           `json:"buyer_id"`
	BuyerName    string           `json:"buyer_name"`
	Constraints  BuyerConstraints `json:"constraints"`
	Sellers      []Seller         `json:"sellers"`
	Conversation *ConversationLog `json:"conversation"`
	MaxRounds    int              `json:"max_rounds"`
	Seed         *int64           `json:"seed,omitempty"`
	Created      time.Time        `json:"created_at"`
	Status       RoomStatus       `json:"status"`
	CurrentRound int              `json:"current_round"`
	Outcome      *Outcome         `json:"outcome,omitempty"`
	Updated      time.Time        `json:"updated_at"`
}

// MarshalJSON implements json.Marshaler.
func (r *Room) MarshalJSON() ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return json.Marshal(roomJSON{
		ID:           r.ID,
		SessionID:    r.SessionID,
		BuyerID:      r.BuyerID,
		BuyerName:    r.BuyerName,
		Constraints:  r.Constraints,
		Sellers:      r.Sellers,
		Conversation: r.Conversation,
		MaxRounds:    r.MaxRounds,
		Seed:         r.Seed,
		Created:      r.Created,
		Status:       r.status,
		CurrentRound: r.currentRound,
		Outcome:      r.outcome,
		Updated:      r.updated,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Room) UnmarshalJSON(data []byte) error {
	var raw roomJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Conversation == nil {
		raw.Conversation = NewConversationLog()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.ID = raw.ID
	r.SessionID = raw.SessionID
	r.BuyerID = raw.BuyerID
	r.BuyerName = raw.BuyerName
	r.Constraints = raw.Constraints
	r.Sellers = raw.Sellers
	r.Conversation = raw.Conversation
	r.MaxRounds = raw.MaxRounds
	r.Seed = raw.Seed
	r.Created = raw.Created
	r.status = raw.Status
	r.currentRound = raw.CurrentRound
	r.outcome = raw.Outcome
	r.updated = raw.Updated

	return nil
}

func cloneSellers(sellers []Seller) []Seller {
	if sellers == nil {
		return nil
	}

	clone := make([]Seller, 0, len(sellers))

	for _, seller := range sellers {
		clone = append(clone, seller.Clone())
	}

	return clone
}

func cloneSeed(seed *int64) *int64 {
	if seed == nil {
		return nil
	}

	value := *seed

	return &value
}
