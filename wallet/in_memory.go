package wallet

import (
	"context"
	"fmt"
	"sync"
)

// InMemoryStore keeps wallets in process memory. Safe for concurrent use.
type InMemoryStore struct {
	mu      sync.RWMutex
	wallets map[string]Wallet
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty in-memory wallet store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{wallets: make(map[string]Wallet)}
}

// WalletForSession implements Store.
func (s *InMemoryStore) WalletForSession(_ context.Context, sessionID string) (Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wallets[sessionID].Clone(), nil
}

// AddCard implements Store.
func (s *InMemoryStore) AddCard(_ context.Context, sessionID string, card CreditCard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.wallets[sessionID].Clone()

	replaced := false

	for i, existing := range w.Cards {
		if existing.ID == card.ID {
			w.Cards[i] = card.Clone()
			replaced = true

			break
		}
	}

	if !replaced {
		w.Cards = append(w.Cards, card.Clone())
	}

	s.wallets[sessionID] = w

	return nil
}

// RemoveCard implements Store.
func (s *InMemoryStore) RemoveCard(_ context.Context, sessionID, cardID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.wallets[sessionID].Clone()

	for i, existing := range w.Cards {
		if existing.ID == cardID {
			w.Cards = append(w.Cards[:i], w.Cards[i+1:]...)
			s.wallets[sessionID] = w

			return nil
		}
	}

	return fmt.Errorf("%w: %s in session %s", ErrCardNotFound, cardID, sessionID)
}

// ReplaceWallet implements Store.
func (s *InMemoryStore) ReplaceWallet(_ context.Context, sessionID string, w Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wallets[sessionID] = w.Clone()

	return nil
}
