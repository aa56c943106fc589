// Package intake holds purchase requests captured on a companion device
// until a negotiation session on the main machine picks them up. The queue
// is bounded so a chatty capture surface cannot grow server memory without
// limit.
package intake

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	maxItemNameLen = 200
	maxNotesLen    = 500
)

// ErrQueueFull is returned by Enqueue when the queue is at capacity.
var ErrQueueFull = errors.New("intake queue is full")

// Item is one captured purchase request.
type Item struct {
	// ItemName is the product to hunt for.
	ItemName string `json:"item_name"`
	// MaxBudget is the per-unit budget ceiling.
	MaxBudget float64 `json:"max_budget"`
	// Quantity is the number of units wanted. Defaults to 1.
	Quantity int `json:"quantity"`
	// Notes carries free-form capture context. Optional.
	Notes string `json:"notes,omitempty"`
	// ReceivedAt is when the item entered the queue. Set by Enqueue.
	ReceivedAt time.Time `json:"received_at"`
}

// Validate checks the capture fields.
func (i Item) Validate() error {
	if i.ItemName == "" {
		return fmt.Errorf("intake: item name must not be empty")
	}

	if len(i.ItemName) > maxItemNameLen {
		return fmt.Errorf("intake: item name exceeds %d characters", maxItemNameLen)
	}

	if i.MaxBudget <= 0 {
		return fmt.Errorf("intake: max budget must be positive, got %.2f", i.MaxBudget)
	}

	if i.Quantity < 1 {
		return fmt.Errorf("intake: quantity must be at least 1, got %d", i.Quantity)
	}

	if len(i.Notes) > maxNotesLen {
		return fmt.Errorf("intake: notes exceed %d characters", maxNotesLen)
	}

	return nil
}

// QueueOptions configures a Queue.
type QueueOptions struct {
	// Capacity bounds the number of queued items. Defaults to 100.
	Capacity int
}

// Queue is a bounded, mutex-guarded buffer of captured purchase requests.
// It is safe for concurrent use.
type Queue struct {
	mu       sync.Mutex
	capacity int
	items    []Item
}

// NewQueue creates an empty queue with optional overrides.
func NewQueue(optFns ...func(o *QueueOptions)) *Queue {
	opts := QueueOptions{
		Capacity: 100,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Capacity < 1 {
		opts.Capacity = 1
	}

	return &Queue{capacity: opts.Capacity}
}

// Enqueue validates and appends a captured item, stamping ReceivedAt. A
// zero quantity defaults to 1. It returns the stored item, or ErrQueueFull
// when the queue is at capacity.
func (q *Queue) Enqueue(item Item) (Item, error) {
	if item.Quantity == 0 {
		item.Quantity = 1
	}

	if err := item.Validate(); err != nil {
		return Item{}, err
	}

	item.ReceivedAt = time.Now().UTC()

	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) >= q.capacity {
		return Item{}, fmt.Errorf("%w: capacity %d", ErrQueueFull, q.capacity)
	}

	q.items = append(q.items, item)

	return item, nil
}

// Snapshot returns a copy of the queued items without consuming them,
// oldest first.
func (q *Queue) Snapshot() []Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Item, len(q.items))
	copy(out, q.items)

	return out
}

// Drain returns all queued items, oldest first, and empties the queue.
func (q *Queue) Drain() []Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.items
	q.items = nil

	return out
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = nil
}

// Len returns the number of queued items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}
