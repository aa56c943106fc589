package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/haggle/core"
	"github.com/hupe1980/haggle/logging"
	"github.com/hupe1980/haggle/negotiate"
	"github.com/hupe1980/haggle/room"
)

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// EventBufferSize sets channel buffering for forwarded events.
	EventBufferSize int
	// RoomStore persists rooms across run checkpoints.
	RoomStore core.RoomStore
	// Logger receives runner diagnostics.
	Logger *logging.NegotiationLogger
}

// Runner coordinates negotiation execution: loads the room, launches the
// orchestrator, persists room state as events arrive, and forwards the
// stream to the caller. Public methods are safe for concurrent use.
type Runner struct {
	orchestrator *negotiate.Orchestrator

	eventBufferSize int
	store           core.RoomStore
	logger          *logging.NegotiationLogger

	activeRuns map[string]context.CancelFunc
	mu         sync.RWMutex
}

// New constructs a Runner with optional overrides.
func New(orchestrator *negotiate.Orchestrator, optFns ...func(o *Options)) *Runner {
	opts := Options{
		EventBufferSize: 100,
		RoomStore:       room.NewInMemoryStore(),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NewLogger(nil).WithComponent("runner")
	}

	return &Runner{
		orchestrator:    orchestrator,
		eventBufferSize: opts.EventBufferSize,
		store:           opts.RoomStore,
		logger:          opts.Logger,
		activeRuns:      make(map[string]context.CancelFunc),
	}
}

// Run starts an asynchronous negotiation for a stored room. It returns the
// run ID, the event stream, and an error channel carrying persistence
// failures. Both channels close when the run ends. Room state is saved
// before each non-heartbeat event is forwarded, so a consumer that sees a
// terminal event can immediately read the final room from the store.
func (r *Runner) Run(ctx context.Context, roomID string) (string, <-chan core.Event, <-chan error, error) {
	negRoom, err := r.store.Get(ctx, roomID)
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to get room: %w", err)
	}

	if negRoom.Status().Terminal() {
		return "", nil, nil, fmt.Errorf("%w: room %s already %s", core.ErrRoomTerminal, negRoom.ID, negRoom.Status())
	}

	runID := core.NewID()

	eventsCh := make(chan core.Event, r.eventBufferSize)
	errorsCh := make(chan error, 1)

	runCtx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.activeRuns[runID] = cancel
	r.mu.Unlock()

	stream := r.orchestrator.Run(runCtx, negRoom)

	go func() {
		defer func() {
			cancel()
			r.mu.Lock()
			delete(r.activeRuns, runID)
			r.mu.Unlock()
			close(eventsCh)
			close(errorsCh)
		}()

		r.processEvents(runCtx, runID, negRoom, stream, eventsCh, errorsCh)
	}()

	return runID, eventsCh, errorsCh, nil
}

// Cancel cancels a running run by ID.
func (r *Runner) Cancel(runID string) error {
	r.mu.Lock()
	cancel, exists := r.activeRuns[runID]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("run %s not found", runID)
	}

	cancel()

	return nil
}

// Active returns the number of runs currently in flight.
func (r *Runner) Active() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.activeRuns)
}

func (r *Runner) processEvents(
	runCtx context.Context,
	runID string,
	negRoom *core.Room,
	stream <-chan core.Event,
	eventsCh chan<- core.Event,
	errorsCh chan<- error,
) {
	for ev := range stream {
		// Heartbeats carry no state change worth a store round trip.
		if ev.Type != core.EventTypeHeartbeat {
			r.saveRoom(runCtx, runID, negRoom, errorsCh)
		}

		select {
		case <-runCtx.Done():
			// Consumer is gone; keep draining so the orchestrator can
			// abort the room and close the stream.
		case eventsCh <- ev:
			r.logger.Debug("runner delivered event %s for room %s run %s", ev.Type, ev.RoomID, runID)
		}
	}

	// Cancellation aborts the room without a terminal event, so a final
	// save captures that last transition.
	r.saveRoom(runCtx, runID, negRoom, errorsCh)
}

// saveRoom checkpoints the room even while the run context is being torn
// down. Persistence failures are reported but never stop a live run.
func (r *Runner) saveRoom(runCtx context.Context, runID string, negRoom *core.Room, errorsCh chan<- error) {
	if err := r.store.Save(context.WithoutCancel(runCtx), negRoom); err != nil {
		r.logger.Error("failed to save room %s during run %s: %v", negRoom.ID, runID, err)

		select {
		case errorsCh <- fmt.Errorf("failed to save room: %w", err):
		default:
		}
	}
}
