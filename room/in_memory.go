package room

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/haggle/core"
)

// InMemoryStore is a volatile RoomStore keeping rooms in a process-local
// map. It is safe for concurrent access and best suited for tests or
// ephemeral demo servers. Every room that crosses the store boundary is
// cloned to prevent external mutation of internal state.
type InMemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*core.Room
}

var _ core.RoomStore = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty in-memory room store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{rooms: make(map[string]*core.Room)}
}

// Create implements core.RoomStore.
func (s *InMemoryStore) Create(_ context.Context, room *core.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[room.ID]; ok {
		return fmt.Errorf("room %s already exists", room.ID)
	}

	s.rooms[room.ID] = room.Clone()

	return nil
}

// Get implements core.RoomStore.
func (s *InMemoryStore) Get(_ context.Context, roomID string) (*core.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrRoomNotFound, roomID)
	}

	return room.Clone(), nil
}

// Save implements core.RoomStore.
func (s *InMemoryStore) Save(_ context.Context, room *core.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[room.ID]; !ok {
		return fmt.Errorf("%w: %s", core.ErrRoomNotFound, room.ID)
	}

	s.rooms[room.ID] = room.Clone()

	return nil
}

// List implements core.RoomStore. Rooms are ordered newest first with ids
// breaking creation time ties.
func (s *InMemoryStore) List(_ context.Context) ([]*core.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]*core.Room, 0, len(s.rooms))

	for _, room := range s.rooms {
		rooms = append(rooms, room.Clone())
	}

	sort.Slice(rooms, func(i, j int) bool {
		if !rooms[i].Created.Equal(rooms[j].Created) {
			return rooms[i].Created.After(rooms[j].Created)
		}

		return rooms[i].ID < rooms[j].ID
	})

	return rooms, nil
}

// Delete implements core.RoomStore.
func (s *InMemoryStore) Delete(_ context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[roomID]; !ok {
		return fmt.Errorf("%w: %s", core.ErrRoomNotFound, roomID)
	}

	delete(s.rooms, roomID)

	return nil
}

// Len returns the number of stored rooms.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.rooms)
}
