package testutil

import (
	"testing"
	"time"

	"github.com/hupe1980/haggle/core"
)

// DrainTimeout bounds how long CollectEvents waits for a stream to
// close before failing the test.
const DrainTimeout = 10 * time.Second

// CollectEvents drains an event stream into a slice, preserving order.
// It fails the test if the channel does not close within DrainTimeout.
func CollectEvents(t *testing.T, ch <-chan core.Event) []core.Event {
	t.Helper()

	var events []core.Event

	timeout := time.After(DrainTimeout)

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return events
			}

			events = append(events, ev)
		case <-timeout:
			t.Fatalf("timed out draining events, got %d so far", len(events))
		}
	}
}

// EventTypes lists the event types in emission order.
func EventTypes(events []core.Event) []core.EventType {
	types := make([]core.EventType, 0, len(events))

	for _, ev := range events {
		types = append(types, ev.Type)
	}

	return types
}

// FirstEvent returns the first event of the given type and whether one
// exists.
func FirstEvent(events []core.Event, eventType core.EventType) (core.Event, bool) {
	for _, ev := range events {
		if ev.Type == eventType {
			return ev, true
		}
	}

	return core.Event{}, false
}

// EventsOfType returns all events of the given type in emission order.
func EventsOfType(events []core.Event, eventType core.EventType) []core.Event {
	var out []core.Event

	for _, ev := range events {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}

	return out
}

// CountTerminal returns how many events in the slice are terminal.
func CountTerminal(events []core.Event) int {
	n := 0

	for _, ev := range events {
		if ev.Terminal() {
			n++
		}
	}

	return n
}
