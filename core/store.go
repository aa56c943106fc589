package core

import "context"

// RoomStore persists negotiation rooms. Implementations must return deep
// copies so that callers cannot mutate stored state.
type RoomStore interface {
	// Create stores a new room. It fails when the id is already taken.
	Create(ctx context.Context, room *Room) error

	// Get returns the room with the given id, or ErrRoomNotFound.
	Get(ctx context.Context, roomID string) (*Room, error)

	// Save persists the current state of an existing room.
	Save(ctx context.Context, room *Room) error

	// List returns all rooms ordered by creation time, newest first.
	List(ctx context.Context) ([]*Room, error)

	// Delete removes the room with the given id, or ErrRoomNotFound.
	Delete(ctx context.Context, roomID string) error
}

// SearchResult is a scored knowledge document returned by a knowledge
// store.
type SearchResult struct {
	// ID identifies the stored document.
	ID string `json:"id"`
	// Content is the document text.
	Content string `json:"content"`
	// Score ranks the result, higher is better.
	Score float64 `json:"score"`
	// Metadata carries arbitrary document attributes.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// KnowledgeStore holds reference documents that enrich seller prompts, for
// example credit card perks.
type KnowledgeStore interface {
	// Store adds a document.
	Store(ctx context.Context, content string, metadata map[string]any) error

	// Search returns up to limit documents relevant to the query, best
	// first.
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}
