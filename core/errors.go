package core

import "errors"

var (
	// ErrRoomNotFound is returned by room stores when no room exists for
	// the given id.
	ErrRoomNotFound = errors.New("room not found")

	// ErrRoomTerminal is returned when a completed or aborted room is
	// mutated.
	ErrRoomTerminal = errors.New("room is in a terminal status")

	// ErrInvalidTransition is returned on a disallowed status change, for
	// example beginning a room twice.
	ErrInvalidTransition = errors.New("invalid room status transition")

	// ErrRoundLimit is returned when the round counter would exceed the
	// configured maximum.
	ErrRoundLimit = errors.New("round limit reached")

	// ErrBuyerTurn is returned when the buyer agent fails to produce a
	// message. Buyer failures abort the negotiation.
	ErrBuyerTurn = errors.New("buyer turn failed")

	// ErrNoRespondingSellers is returned when routing leaves no seller to
	// answer the buyer.
	ErrNoRespondingSellers = errors.New("no sellers available to respond")

	// ErrNoEligibleSellers is returned at room creation when no seller
	// passes inventory and price screening.
	ErrNoEligibleSellers = errors.New("no eligible sellers for the requested item")

	// ErrCallBudget is returned when a run exhausts its model call budget.
	ErrCallBudget = errors.New("model call budget exhausted")
)
