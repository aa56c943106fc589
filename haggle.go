// Package haggle provides a high-level façade over the negotiation
// orchestrator and service abstractions (rooms, wallets, knowledge &
// logging) enabling rapid construction of buyer-versus-sellers price
// negotiations. Most applications interact with this package by:
//  1. Creating a Haggle via New() with a generation model (optionally overriding default in-memory stores)
//  2. Creating rooms via CreateRoom, which screens candidate sellers against the buyer's constraints
//  3. Running negotiations asynchronously (Negotiate) or synchronously (NegotiateSync)
//
// The façade delegates the round loop to negotiate.Orchestrator and run
// bookkeeping to runner.Runner while keeping setup and usage ergonomics
// concise. All defaults are safe for local development and testing;
// production deployments typically supply the sqlite-backed room store and
// a structured logger.
package haggle

import (
	"context"
	"fmt"

	"github.com/hupe1980/haggle/core"
	"github.com/hupe1980/haggle/knowledge"
	"github.com/hupe1980/haggle/logging"
	"github.com/hupe1980/haggle/model"
	"github.com/hupe1980/haggle/negotiate"
	"github.com/hupe1980/haggle/room"
	"github.com/hupe1980/haggle/runner"
	"github.com/hupe1980/haggle/wallet"
)

// Options configures the Haggle instance.
type Options struct {
	// MinRounds is the earliest round in which an accept is allowed.
	MinRounds int

	// ParallelLimit caps concurrent seller turns per round. This prevents
	// resource exhaustion and provides backpressure on the model provider.
	ParallelLimit int

	// Temperature is the sampling temperature of buyer and seller turns.
	Temperature float64

	// MaxTokens caps buyer and seller completions.
	MaxTokens int64

	// MaxModelCalls limits the number of model calls per run. Zero means
	// unlimited (not recommended).
	MaxModelCalls int

	// EventBufferSize sets the channel buffer size for event processing.
	// Larger buffers reduce blocking but increase memory usage.
	EventBufferSize int

	// BuyerInstructions appends custom directions to the buyer's system
	// prompt.
	BuyerInstructions string

	// SellerInstructions appends custom directions to every seller's
	// system prompt.
	SellerInstructions string

	// Stores (defaults to in-memory implementations if not provided)
	RoomStore   core.RoomStore
	WalletStore wallet.Store
	Knowledge   core.KnowledgeStore

	// Logger (defaults to a JSON stdout logger if nil)
	Logger *logging.NegotiationLogger
}

// Haggle is the high-level façade aggregating the orchestrator, runner and
// stores.
type Haggle struct {
	opts   Options
	runner *runner.Runner
}

// New creates a new Haggle instance bound to a generation model, with
// optional overrides. Any unset store is initialized with an in-memory
// implementation.
func New(m model.Model, optFns ...func(o *Options)) *Haggle {
	opts := Options{
		MinRounds:       2,
		ParallelLimit:   3,
		Temperature:     0.7,
		MaxTokens:       512,
		MaxModelCalls:   100,
		EventBufferSize: 100,
		RoomStore:       room.NewInMemoryStore(),
		WalletStore:     wallet.NewInMemoryStore(),
		Knowledge:       knowledge.NewInMemoryStore(),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NewLogger(nil)
	}

	orch := negotiate.NewOrchestrator(m, func(o *negotiate.OrchestratorOptions) {
		o.MinRounds = opts.MinRounds
		o.ParallelLimit = opts.ParallelLimit
		o.Temperature = opts.Temperature
		o.MaxTokens = opts.MaxTokens
		o.MaxModelCalls = opts.MaxModelCalls
		o.EventBufferSize = opts.EventBufferSize
		o.BuyerInstructions = opts.BuyerInstructions
		o.SellerInstructions = opts.SellerInstructions
		o.WalletStore = opts.WalletStore
		o.Knowledge = opts.Knowledge
		o.Logger = opts.Logger.WithComponent("orchestrator")
	})

	r := runner.New(orch, func(o *runner.Options) {
		o.EventBufferSize = opts.EventBufferSize
		o.RoomStore = opts.RoomStore
		o.Logger = opts.Logger.WithComponent("runner")
	})

	return &Haggle{opts: opts, runner: r}
}

// CreateRoomInput describes a negotiation to set up.
type CreateRoomInput struct {
	// BuyerID identifies the buyer agent. Generated when empty.
	BuyerID string
	// BuyerName is the buyer's display name. Defaults to "Buyer".
	BuyerName string
	// Constraints are the buyer's purchase requirements.
	Constraints core.BuyerConstraints
	// Sellers are the candidate counterparties before screening.
	Sellers []core.Seller
	// SessionID links the room to a wallet session. Optional.
	SessionID string
	// MaxRounds bounds the negotiation loop. Defaults to 10.
	MaxRounds int
	// Seed makes prompt-side shuffling reproducible. Optional.
	Seed *int64
}

// CreateRoom screens the candidate sellers against the buyer's constraints,
// persists a pending room with the participants, and reports why each
// excluded seller was skipped. It fails with core.ErrNoEligibleSellers when
// screening leaves nobody to negotiate with.
func (h *Haggle) CreateRoom(ctx context.Context, input CreateRoomInput) (*core.Room, []negotiate.SkipReason, error) {
	if err := input.Constraints.Validate(); err != nil {
		return nil, nil, err
	}

	participants, skipped := negotiate.SelectSellers(input.Sellers, input.Constraints)
	if len(participants) == 0 {
		return nil, skipped, fmt.Errorf("%w: item %q", core.ErrNoEligibleSellers, input.Constraints.ItemName)
	}

	buyerID := input.BuyerID
	if buyerID == "" {
		buyerID = core.NewID()
	}

	buyerName := input.BuyerName
	if buyerName == "" {
		buyerName = "Buyer"
	}

	negRoom := core.NewRoom(buyerID, buyerName, input.Constraints, participants, func(o *core.RoomOptions) {
		o.SessionID = input.SessionID
		o.Seed = input.Seed

		if input.MaxRounds > 0 {
			o.MaxRounds = input.MaxRounds
		}
	})

	if err := negRoom.Validate(); err != nil {
		return nil, skipped, err
	}

	if err := h.opts.RoomStore.Create(ctx, negRoom); err != nil {
		return nil, skipped, fmt.Errorf("failed to create room: %w", err)
	}

	return negRoom, skipped, nil
}

// Negotiate starts an asynchronous negotiation returning the run ID plus
// event & error channels. Both channels close when the run ends.
func (h *Haggle) Negotiate(ctx context.Context, roomID string) (string, <-chan core.Event, <-chan error, error) {
	return h.runner.Run(ctx, roomID)
}

// NegotiateSync is a synchronous helper that drains the async channels,
// accumulates events and returns the run ID.
func (h *Haggle) NegotiateSync(ctx context.Context, roomID string) (string, []core.Event, error) {
	runID, eventsCh, errorsCh, err := h.runner.Run(ctx, roomID)
	if err != nil {
		return "", nil, err
	}

	var events []core.Event

	for {
		select {
		case <-ctx.Done():
			// Context cancelled - return events collected so far
			return runID, events, ctx.Err()

		case event, ok := <-eventsCh:
			if !ok {
				// Events channel closed - check for a trailing error
				select {
				case err, pending := <-errorsCh:
					if pending {
						return runID, events, err
					}

					return runID, events, nil
				default:
					return runID, events, nil
				}
			}

			events = append(events, event)

		case err, ok := <-errorsCh:
			if ok && err != nil {
				return runID, events, err
			}
		}
	}
}

// Cancel cancels a running negotiation by run ID.
func (h *Haggle) Cancel(runID string) error {
	return h.runner.Cancel(runID)
}

// Active returns the number of negotiations currently in flight.
func (h *Haggle) Active() int {
	return h.runner.Active()
}

// Room returns a stored room by id.
func (h *Haggle) Room(ctx context.Context, roomID string) (*core.Room, error) {
	return h.opts.RoomStore.Get(ctx, roomID)
}

// Rooms returns all stored rooms, newest first.
func (h *Haggle) Rooms(ctx context.Context) ([]*core.Room, error) {
	return h.opts.RoomStore.List(ctx)
}

// Wallets exposes the wallet store backing buyer deal context.
func (h *Haggle) Wallets() wallet.Store {
	return h.opts.WalletStore
}

// Knowledge exposes the knowledge store backing seller reference snippets.
func (h *Haggle) Knowledge() core.KnowledgeStore {
	return h.opts.Knowledge
}
