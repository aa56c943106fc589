package negotiate

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/hupe1980/haggle/agent"
	"github.com/hupe1980/haggle/core"
	"github.com/hupe1980/haggle/dealctx"
	"github.com/hupe1980/haggle/logging"
	"github.com/hupe1980/haggle/model"
	"github.com/hupe1980/haggle/visibility"
	"github.com/hupe1980/haggle/wallet"
)

// OrchestratorOptions configures an Orchestrator.
//
// Use functional options with NewOrchestrator to override defaults.
type OrchestratorOptions struct {
	// MinRounds is the earliest round in which an accept is allowed.
	MinRounds int
	// ParallelLimit caps concurrent seller turns per round.
	ParallelLimit int
	// Temperature is the sampling temperature of buyer and seller turns.
	Temperature float64
	// MaxTokens caps buyer and seller completions.
	MaxTokens int64
	// DecisionTemperature is the sampling temperature of the decision
	// classification call.
	DecisionTemperature float64
	// DecisionMaxTokens caps the decision classification completion.
	DecisionMaxTokens int64
	// MaxModelCalls caps the model calls of a single run. Zero means
	// unlimited.
	MaxModelCalls int
	// EventBufferSize sets the event channel buffering per run.
	EventBufferSize int
	// BuyerInstructions optionally appends user-supplied directions to
	// the buyer's system prompt.
	BuyerInstructions string
	// SellerInstructions optionally appends user-supplied directions to
	// every seller's system prompt.
	SellerInstructions string
	// WalletStore resolves buyer wallets for deal context. Optional.
	WalletStore wallet.Store
	// Knowledge enriches seller prompts with reference snippets. Optional.
	Knowledge core.KnowledgeStore
	// Logger receives orchestration diagnostics.
	Logger *logging.NegotiationLogger
}

// Orchestrator drives negotiation rooms through bounded rounds: buyer
// turn, concurrent seller turns, decision check. Each run emits a
// finite event stream that ends with exactly one terminal event, either
// negotiation_complete or error, after which the channel closes.
//
// The orchestrator is stateless across runs and safe for concurrent use;
// all per-run state lives in the room and in locals.
type Orchestrator struct {
	model model.Model
	opts  OrchestratorOptions
}

// NewOrchestrator creates an orchestrator bound to a generation model.
func NewOrchestrator(m model.Model, optFns ...func(o *OrchestratorOptions)) *Orchestrator {
	opts := OrchestratorOptions{
		MinRounds:           2,
		ParallelLimit:       3,
		Temperature:         0.7,
		MaxTokens:           512,
		DecisionTemperature: 0.3,
		DecisionMaxTokens:   100,
		MaxModelCalls:       100,
		EventBufferSize:     100,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NewLogger(nil).WithComponent("orchestrator")
	}

	return &Orchestrator{model: m, opts: opts}
}

// Run starts the negotiation loop for a room and returns its event
// stream. The stream closes after the terminal event. The room is
// mutated in place as rounds progress; persistence is the caller's
// concern. Cancelling the context stops the run and aborts the room,
// in which case no terminal event can be delivered.
func (o *Orchestrator) Run(ctx context.Context, room *core.Room) <-chan core.Event {
	events := make(chan core.Event, o.opts.EventBufferSize)

	go func() {
		defer close(events)

		o.negotiate(ctx, room, events)
	}()

	return events
}

func (o *Orchestrator) negotiate(ctx context.Context, room *core.Room, events chan<- core.Event) {
	logger := o.opts.Logger.WithRoom(room.ID)

	emit := func(ev core.Event) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	fail := func(err error) {
		logger.Error("negotiation aborted: %v", err)

		if _, abortErr := room.Abort(err.Error()); abortErr != nil {
			logger.Debug("abort after failure: %v", abortErr)
		}

		emit(core.NewErrorEvent(room.ID, err, room.CurrentRound()))
	}

	// The orchestrator goroutine must never crash the process; a panic
	// surfaces as a single error event on an aborted room.
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("negotiation fault: %v", r)

			logger.ErrorWithStack(err, "negotiation panicked")

			if _, abortErr := room.Abort(err.Error()); abortErr != nil {
				logger.Debug("abort after panic: %v", abortErr)
			}

			emit(core.NewErrorEvent(room.ID, err, room.CurrentRound()))
		}
	}()

	if err := room.Validate(); err != nil {
		fail(err)

		return
	}

	if err := room.Begin(); err != nil {
		fail(err)

		return
	}

	limiter := core.NewCallLimiter(o.opts.MaxModelCalls)

	buyer := agent.NewBuyer(o.model, room.BuyerName, room.Constraints, func(bo *agent.BuyerOptions) {
		bo.Temperature = o.opts.Temperature
		bo.MaxTokens = o.opts.MaxTokens
		bo.Instructions = o.opts.BuyerInstructions
		bo.Logger = logger.WithComponent("buyer")
	})

	dispatcher := NewSellerDispatcher(o.model, func(do *DispatcherOptions) {
		do.ParallelLimit = o.opts.ParallelLimit
		do.Temperature = o.opts.Temperature
		do.MaxTokens = o.opts.MaxTokens
		do.Instructions = o.opts.SellerInstructions
		do.WalletStore = o.opts.WalletStore
		do.Knowledge = o.opts.Knowledge
		do.Limiter = limiter
		do.Logger = logger.WithComponent("dispatcher")
	})

	decider := NewDecisionEngine(o.model, func(eo *DecisionEngineOptions) {
		eo.MinRounds = o.opts.MinRounds
		eo.Temperature = o.opts.DecisionTemperature
		eo.MaxTokens = o.opts.DecisionMaxTokens
		eo.Limiter = limiter
		eo.Logger = logger.WithComponent("decision")
	})

	rng := newRoomRand(room.Seed)

	logger.Info("negotiation started: %d sellers, max %d rounds", len(room.Sellers), room.MaxRounds)

	if !emit(core.NewHeartbeatEvent(room.ID, "Negotiation started", room.CurrentRound())) {
		o.cancelled(room, logger)

		return
	}

	for {
		select {
		case <-ctx.Done():
			o.cancelled(room, logger)

			return
		default:
		}

		round, err := room.AdvanceRound()
		if err != nil {
			if errors.Is(err, core.ErrRoundLimit) {
				outcome, abortErr := room.Abort("Max rounds reached")
				if abortErr != nil {
					fail(abortErr)

					return
				}

				logger.Info("round limit reached after %d rounds", outcome.Rounds)

				emit(core.NewCompleteEvent(room.ID, *outcome))

				return
			}

			fail(err)

			return
		}

		roundLogger := logger.WithRound(round)
		roundStart := time.Now()

		if !emit(core.NewRoundStartEvent(room.ID, round, room.MaxRounds)) {
			o.cancelled(room, logger)

			return
		}

		// The buyer opens every round. Without a buyer message there is
		// nothing to route, so a buyer failure ends the negotiation.
		buyerMsg, err := o.buyerTurn(ctx, room, buyer, limiter, rng)
		if err != nil {
			if ctx.Err() != nil {
				o.cancelled(room, logger)

				return
			}

			fail(fmt.Errorf("%w: %v", core.ErrBuyerTurn, err))

			return
		}

		if !emit(core.NewBuyerMessageEvent(room.ID, buyerMsg)) {
			o.cancelled(room, logger)

			return
		}

		responding := RouteSellers(buyerMsg.MentionedSellers, room.Sellers)
		if len(responding) == 0 {
			fail(core.ErrNoRespondingSellers)

			return
		}

		results := dispatcher.Dispatch(ctx, room, responding)

		responded := 0

		for _, seller := range responding {
			msg := results[seller.ID]
			if msg == nil {
				continue
			}

			responded++

			if !emit(core.NewSellerResponseEvent(room.ID, *msg)) {
				o.cancelled(room, logger)

				return
			}
		}

		decision, err := decider.Decide(ctx, room)
		if err != nil {
			if ctx.Err() != nil {
				o.cancelled(room, logger)

				return
			}

			fail(err)

			return
		}

		roundLogger.LogRound(round, len(responding), responded, time.Since(roundStart), decision != nil)

		if decision != nil {
			outcome, err := room.Complete(*decision)
			if err != nil {
				fail(err)

				return
			}

			summary := o.dealSummary(ctx, room, *decision)

			if !emit(core.NewDecisionEvent(room.ID, *decision, summary)) {
				return
			}

			emit(core.NewCompleteEvent(room.ID, *outcome))

			logger.Info("negotiation completed: %s at $%.2f in %d rounds", decision.SellerName, decision.Offer.Price, outcome.Rounds)

			return
		}

		if !emit(core.NewHeartbeatEvent(room.ID, fmt.Sprintf("Round %d complete", round), round)) {
			o.cancelled(room, logger)

			return
		}
	}
}

// buyerTurn produces and appends the buyer's message for the current
// round. Sellers are listed to the prompt in an order drawn from the
// room-seeded source, so a pinned seed reproduces the same listing.
func (o *Orchestrator) buyerTurn(ctx context.Context, room *core.Room, buyer *agent.Buyer, limiter *core.CallLimiter, rng *rand.Rand) (core.Message, error) {
	if err := limiter.Increment(); err != nil {
		return core.Message{}, err
	}

	history := visibility.Filter(room.Conversation.Messages(), room.BuyerID)

	result, err := buyer.Turn(ctx, agent.TurnInput{
		Sellers:     presentationOrder(rng, room.Sellers),
		History:     history,
		DealContext: o.buyerDealContext(ctx, room),
	})
	if err != nil {
		return core.Message{}, err
	}

	msg := core.NewBuyerMessage(room.CurrentRound(), room.BuyerID, room.BuyerName, result.Message, result.MentionedSellers, room.SellerIDs())

	room.Conversation.Append(msg)

	return msg, nil
}

// buyerDealContext renders one line of card-aware economics per standing
// offer for the buyer prompt. Rooms without a wallet session get none.
func (o *Orchestrator) buyerDealContext(ctx context.Context, room *core.Room) string {
	if room.SessionID == "" || o.opts.WalletStore == nil {
		return ""
	}

	offers := room.Conversation.StandingOffers()
	if len(offers) == 0 {
		return ""
	}

	w, err := o.opts.WalletStore.WalletForSession(ctx, room.SessionID)
	if err != nil {
		o.opts.Logger.Warn("wallet lookup failed for session %s: %v", room.SessionID, err)

		return ""
	}

	lines := make([]string, 0, len(offers))

	for _, standing := range offers {
		computed := dealctx.Compute(dealctx.Input{
			PricePerUnit:      standing.Offer.Price,
			Quantity:          standing.Offer.Quantity,
			ItemName:          room.Constraints.ItemName,
			SellerName:        standing.SellerName,
			SellerCostPerUnit: sellerCost(room, standing.SellerID),
			Wallet:            w,
		})

		lines = append(lines, fmt.Sprintf("[%s] %s", standing.SellerName, dealctx.FormatForBuyer(computed)))
	}

	return strings.Join(lines, "\n")
}

// dealSummary computes the totals attached to a decision event. Without
// a wallet session the effective total equals the raw total.
func (o *Orchestrator) dealSummary(ctx context.Context, room *core.Room, d core.Decision) core.DealSummary {
	total := d.Offer.Total()

	summary := core.DealSummary{
		TotalCost:      total,
		EffectiveTotal: total,
	}

	if room.SessionID == "" || o.opts.WalletStore == nil {
		return summary
	}

	w, err := o.opts.WalletStore.WalletForSession(ctx, room.SessionID)
	if err != nil {
		o.opts.Logger.Warn("wallet lookup failed for session %s: %v", room.SessionID, err)

		return summary
	}

	computed := dealctx.Compute(dealctx.Input{
		PricePerUnit:      d.Offer.Price,
		Quantity:          d.Offer.Quantity,
		ItemName:          room.Constraints.ItemName,
		SellerName:        d.SellerName,
		SellerCostPerUnit: sellerCost(room, d.SellerID),
		Wallet:            w,
	})

	summary.EffectiveTotal = computed.BuyerEffectiveTotal
	summary.RecommendedCard = computed.RecommendedCard
	summary.CardSavings = computed.BuyerSavings

	return summary
}

// cancelled winds a room down after context cancellation. No further
// events can be delivered at this point, so the room is aborted quietly.
func (o *Orchestrator) cancelled(room *core.Room, logger *logging.NegotiationLogger) {
	if _, err := room.Abort("negotiation cancelled"); err != nil {
		logger.Debug("abort after cancellation: %v", err)

		return
	}

	logger.Warn("negotiation cancelled in round %d", room.CurrentRound())
}

// sellerCost returns the matched inventory cost of a seller, zero when
// nothing matches.
func sellerCost(room *core.Room, sellerID string) float64 {
	seller, ok := room.SellerByID(sellerID)
	if !ok {
		return 0
	}

	item, ok := MatchInventory(seller, room.Constraints)
	if !ok {
		return 0
	}

	return item.CostPrice
}

// presentationOrder returns a shuffled copy of the sellers for prompt
// listing. This shuffle is the run's only random choice.
func presentationOrder(rng *rand.Rand, sellers []core.Seller) []core.Seller {
	shuffled := append([]core.Seller(nil), sellers...)

	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return shuffled
}

// newRoomRand builds the presentation randomness source, seeded from the
// room when a seed is pinned.
func newRoomRand(seed *int64) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewSource(*seed))
	}

	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
