package core

import (
	"fmt"
	"sync"
)

// CallLimiter caps the number of model calls a single negotiation run may
// make. A max of zero means unlimited. It is safe for concurrent use;
// parallel seller turns share one limiter.
type CallLimiter struct {
	mu    sync.Mutex
	max   int
	count int
}

// NewCallLimiter creates a limiter allowing up to max calls.
func NewCallLimiter(max int) *CallLimiter {
	return &CallLimiter{max: max}
}

// Increment consumes one call from the budget. It returns ErrCallBudget
// when the budget is exhausted.
func (l *CallLimiter) Increment() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.count++

	if l.max > 0 && l.count > l.max {
		return fmt.Errorf("%w: max %d calls", ErrCallBudget, l.max)
	}

	return nil
}

// Count returns the number of calls consumed so far.
func (l *CallLimiter) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.count
}

// Remaining returns the calls left in the budget, or -1 when unlimited.
func (l *CallLimiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.max <= 0 {
		return -1
	}

	if remaining := l.max - l.count; remaining > 0 {
		return remaining
	}

	return 0
}
