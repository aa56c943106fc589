package wallet

import (
	"context"
	"errors"
)

// ErrCardNotFound is returned when a card id does not exist in a session's
// wallet.
var ErrCardNotFound = errors.New("card not found")

// Store persists per-session wallets. Implementations must return deep
// copies so that callers cannot mutate stored state.
type Store interface {
	// WalletForSession returns the wallet of a session. Sessions without
	// cards yield an empty wallet, not an error.
	WalletForSession(ctx context.Context, sessionID string) (Wallet, error)

	// AddCard adds a card to a session's wallet, replacing any card with
	// the same id.
	AddCard(ctx context.Context, sessionID string, card CreditCard) error

	// RemoveCard deletes a card from a session's wallet.
	RemoveCard(ctx context.Context, sessionID, cardID string) error

	// ReplaceWallet swaps a session's entire wallet.
	ReplaceWallet(ctx context.Context, sessionID string, w Wallet) error
}
