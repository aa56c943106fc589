package negotiate

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/haggle/agent"
	"github.com/hupe1980/haggle/core"
	"github.com/hupe1980/haggle/dealctx"
	"github.com/hupe1980/haggle/internal/util"
	"github.com/hupe1980/haggle/logging"
	"github.com/hupe1980/haggle/model"
	"github.com/hupe1980/haggle/visibility"
	"github.com/hupe1980/haggle/wallet"
)

const (
	// knowledgeSnippetLimit is the number of reference snippets appended
	// to a seller's deal context.
	knowledgeSnippetLimit = 3
	// knowledgeSnippetMaxChars caps each appended snippet.
	knowledgeSnippetMaxChars = 200
)

// DispatcherOptions configures a SellerDispatcher.
//
// Use functional options with NewSellerDispatcher to override defaults.
type DispatcherOptions struct {
	// ParallelLimit caps the number of seller turns running at once.
	// Sellers beyond the limit queue until a slot frees.
	ParallelLimit int
	// Temperature is the sampling temperature of seller replies.
	Temperature float64
	// MaxTokens caps each seller completion.
	MaxTokens int64
	// Instructions optionally appends user-supplied directions to every
	// seller's system prompt.
	Instructions string
	// WalletStore resolves the buyer's cards for deal context. Optional.
	WalletStore wallet.Store
	// Knowledge enriches seller deal context with reference snippets.
	// Optional.
	Knowledge core.KnowledgeStore
	// Limiter bounds the total number of model calls per run.
	Limiter *core.CallLimiter
	// Logger receives dispatch diagnostics.
	Logger *logging.NegotiationLogger
}

// SellerDispatcher runs the seller turns of one round concurrently under
// a parallelism cap. Every turn is fully isolated: a failing seller
// yields a nil result and neither cancels its siblings nor aborts the
// round, and a seller without a strictly matching inventory item is
// skipped before any model call is made.
type SellerDispatcher struct {
	model model.Model
	opts  DispatcherOptions
}

// NewSellerDispatcher creates a dispatcher bound to a generation model.
func NewSellerDispatcher(m model.Model, optFns ...func(o *DispatcherOptions)) *SellerDispatcher {
	opts := DispatcherOptions{
		ParallelLimit: 3,
		Temperature:   0.7,
		MaxTokens:     512,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.ParallelLimit < 1 {
		opts.ParallelLimit = 1
	}

	if opts.Limiter == nil {
		opts.Limiter = core.NewCallLimiter(0)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NewLogger(nil).WithComponent("dispatcher")
	}

	return &SellerDispatcher{model: m, opts: opts}
}

// Dispatch runs the given sellers' turns concurrently and waits for all
// of them to resolve. The result holds one entry per dispatched seller:
// the appended conversation message on success, nil on failure or when
// no inventory matched. Successful turns append to the room's log as
// they finish, so same-round seller order in the log is undefined; each
// message is still appended as one atomic unit.
func (d *SellerDispatcher) Dispatch(ctx context.Context, room *core.Room, sellers []core.Seller) map[string]*core.Message {
	results := make(map[string]*core.Message, len(sellers))

	for _, seller := range sellers {
		results[seller.ID] = nil
	}

	logger := d.opts.Logger.WithRoom(room.ID).WithRound(room.CurrentRound())

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	sem := make(chan struct{}, d.opts.ParallelLimit)

	for _, seller := range sellers {
		wg.Add(1)

		go func(seller core.Seller) {
			defer wg.Done()

			// A panicking seller turn must not take its siblings or the
			// round down with it.
			defer func() {
				if r := recover(); r != nil {
					logger.ErrorWithStack(fmt.Errorf("%v", r), "seller %s turn panicked", seller.ID)
				}
			}()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				logger.Warn("seller %s turn cancelled while queued: %v", seller.ID, ctx.Err())

				return
			}

			msg, err := d.sellerTurn(ctx, room, seller)
			if err != nil {
				logger.Error("seller %s turn failed: %v", seller.ID, err)

				return
			}

			if msg == nil {
				return
			}

			mu.Lock()
			results[seller.ID] = msg
			mu.Unlock()
		}(seller)
	}

	wg.Wait()

	return results
}

// sellerTurn executes one seller's reply: inventory match, visibility
// filtered history, deal context, a single generation call, and the
// atomic append of the resulting message. A nil message with nil error
// means the seller had nothing to sell.
func (d *SellerDispatcher) sellerTurn(ctx context.Context, room *core.Room, seller core.Seller) (*core.Message, error) {
	item, ok := MatchInventory(seller, room.Constraints)
	if !ok {
		d.opts.Logger.Warn("seller %s has no inventory matching %q, skipping", seller.ID, room.Constraints.ItemName)

		return nil, nil
	}

	history := visibility.Filter(room.Conversation.Messages(), seller.ID)

	dealContext := d.sellerDealContext(ctx, room, seller, item)

	if err := d.opts.Limiter.Increment(); err != nil {
		return nil, err
	}

	responder := agent.NewSeller(d.model, seller, item, func(o *agent.SellerOptions) {
		o.Temperature = d.opts.Temperature
		o.MaxTokens = d.opts.MaxTokens
		o.Instructions = d.opts.Instructions
		o.Logger = d.opts.Logger
	})

	result, err := responder.Respond(ctx, agent.RespondInput{
		BuyerName:   room.BuyerName,
		Constraints: room.Constraints,
		History:     history,
		DealContext: dealContext,
	})
	if err != nil {
		return nil, err
	}

	msg := core.NewSellerMessage(room.CurrentRound(), seller.ID, seller.Name, room.BuyerID, result.Message, result.Offer)

	room.Conversation.Append(msg)

	return &msg, nil
}

// sellerDealContext renders the card-aware economics a seller is shown:
// its own standing offer when one exists, the list price otherwise,
// plus matching knowledge snippets. Rooms without a wallet session get
// none.
func (d *SellerDispatcher) sellerDealContext(ctx context.Context, room *core.Room, seller core.Seller, item core.InventoryItem) string {
	if room.SessionID == "" || d.opts.WalletStore == nil {
		return ""
	}

	w, err := d.opts.WalletStore.WalletForSession(ctx, room.SessionID)
	if err != nil {
		d.opts.Logger.Warn("wallet lookup failed for session %s: %v", room.SessionID, err)

		return ""
	}

	price := item.SellingPrice
	quantity := room.Constraints.QuantityNeeded

	for _, standing := range room.Conversation.StandingOffers() {
		if standing.SellerID == seller.ID {
			price = standing.Offer.Price
			quantity = standing.Offer.Quantity

			break
		}
	}

	text := dealctx.FormatForSeller(dealctx.Compute(dealctx.Input{
		PricePerUnit:      price,
		Quantity:          quantity,
		ItemName:          room.Constraints.ItemName,
		SellerName:        seller.Name,
		SellerCostPerUnit: item.CostPrice,
		Wallet:            w,
	}))

	if d.opts.Knowledge == nil {
		return text
	}

	query := fmt.Sprintf("credit card benefits %s %s", seller.Name, room.Constraints.ItemName)

	hits, err := d.opts.Knowledge.Search(ctx, query, knowledgeSnippetLimit)
	if err != nil {
		d.opts.Logger.Debug("knowledge search skipped: %v", err)

		return text
	}

	if len(hits) == 0 {
		return text
	}

	snippets := make([]string, 0, len(hits))

	for _, hit := range hits {
		snippets = append(snippets, util.Truncate(hit.Content, knowledgeSnippetMaxChars))
	}

	return text + "\n\nRelevant credit card info:\n" + strings.Join(snippets, "\n")
}
