package negotiate

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hupe1980/haggle/agent"
	"github.com/hupe1980/haggle/core"
	"github.com/hupe1980/haggle/logging"
	"github.com/hupe1980/haggle/model"
	"github.com/hupe1980/haggle/prompt"
)

// DecisionEngineOptions configures a DecisionEngine.
//
// Use functional options with NewDecisionEngine to override defaults.
type DecisionEngineOptions struct {
	// MinRounds is the earliest round an accept is allowed in.
	MinRounds int
	// Temperature is the sampling temperature of the classification
	// call. Decisions run colder than negotiation turns.
	Temperature float64
	// MaxTokens caps the classification completion.
	MaxTokens int64
	// Limiter bounds the total number of model calls per run.
	Limiter *core.CallLimiter
	// Logger receives decision diagnostics.
	Logger *logging.NegotiationLogger
}

// DecisionEngine decides accept versus continue after each round. It
// validates the standing offers against the buyer's hard constraints,
// then delegates the judgment to a natural-language classification
// call. Every ambiguity resolves toward continuing the negotiation;
// only the choice among already validated offers is left to the model.
type DecisionEngine struct {
	model model.Model
	opts  DecisionEngineOptions
}

// NewDecisionEngine creates a decision engine bound to a classification
// model.
func NewDecisionEngine(m model.Model, optFns ...func(o *DecisionEngineOptions)) *DecisionEngine {
	opts := DecisionEngineOptions{
		MinRounds:   2,
		Temperature: 0.3,
		MaxTokens:   100,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Limiter == nil {
		opts.Limiter = core.NewCallLimiter(0)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NewLogger(nil).WithComponent("decision")
	}

	return &DecisionEngine{model: m, opts: opts}
}

// Decide evaluates a room after a round of seller responses. It returns
// nil with no error when negotiation should continue. Classification
// failures are conservative continues; only context cancellation is
// surfaced as an error.
func (e *DecisionEngine) Decide(ctx context.Context, room *core.Room) (*core.Decision, error) {
	round := room.CurrentRound()

	if round < e.opts.MinRounds {
		return nil, nil
	}

	offers := validOffers(room)
	if len(offers) == 0 {
		return nil, nil
	}

	messages := prompt.RenderDecision(prompt.DecisionInput{
		BuyerName:    room.BuyerName,
		Constraints:  room.Constraints,
		Offers:       offers,
		History:      room.Conversation.Messages(),
		CurrentRound: round,
		MinRounds:    e.opts.MinRounds,
	})

	if err := e.opts.Limiter.Increment(); err != nil {
		e.opts.Logger.Warn("decision skipped for room %s: %v", room.ID, err)

		return nil, nil
	}

	temperature := e.opts.Temperature

	maxTokens := e.opts.MaxTokens

	start := time.Now()

	text, err := agent.Generate(ctx, e.model, model.Request{
		Messages:    messages,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})

	e.opts.Logger.LogModelCall(e.model.Info().Name, 0, time.Since(start), err == nil, err)

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		e.opts.Logger.Error("decision classification for room %s failed, continuing: %v", room.ID, err)

		return nil, nil
	}

	decision := ParseDecision(text, offers)
	if decision == nil {
		e.opts.Logger.Debug("room %s continues negotiation after round %d", room.ID, round)
	}

	return decision, nil
}

// validOffers returns every seller's latest offer that passes the hard
// constraint check, cheapest first with ties broken by seller name.
// Offers from earlier rounds remain standing until replaced, so a
// seller who was not asked this round can still win on a prior offer.
func validOffers(room *core.Room) []core.StandingOffer {
	standing := room.Conversation.StandingOffers()

	valid := make([]core.StandingOffer, 0, len(standing))

	for _, offer := range standing {
		if ValidOffer(offer.Offer, room.Constraints) {
			valid = append(valid, offer)
		}
	}

	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].Offer.Price != valid[j].Offer.Price {
			return valid[i].Offer.Price < valid[j].Offer.Price
		}

		return valid[i].SellerName < valid[j].SellerName
	})

	return valid
}

// ParseDecision interprets a classification response against the sorted
// valid offers. An accept names its seller by case-insensitive
// substring of the seller's name or id; an accept that resolves to no
// seller takes the cheapest offer. Everything else, including explicit
// continues and unparseable output, returns nil so the conservative
// default is always to keep negotiating.
func ParseDecision(text string, offers []core.StandingOffer) *core.Decision {
	if len(offers) == 0 {
		return nil
	}

	upper := strings.ToUpper(strings.TrimSpace(text))

	if !strings.Contains(upper, "ACCEPT") {
		return nil
	}

	for _, offer := range offers {
		name := strings.ToUpper(offer.SellerName)

		id := strings.ToUpper(offer.SellerID)

		if (name != "" && strings.Contains(upper, name)) ||
			(id != "" && strings.Contains(upper, id)) {
			return &core.Decision{
				SellerID:   offer.SellerID,
				SellerName: offer.SellerName,
				Offer:      offer.Offer,
				Reason:     fmt.Sprintf("Buyer accepted offer from %s: $%.2f per unit", offer.SellerName, offer.Offer.Price),
			}
		}
	}

	best := offers[0]

	return &core.Decision{
		SellerID:   best.SellerID,
		SellerName: best.SellerName,
		Offer:      best.Offer,
		Reason:     fmt.Sprintf("Buyer accepted offer: $%.2f per unit", best.Offer.Price),
	}
}
