package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/haggle/core"
	"github.com/hupe1980/haggle/logging"
	"github.com/hupe1980/haggle/model"
	"github.com/hupe1980/haggle/prompt"
)

// BuyerOptions configures a Buyer instance.
//
// Use functional options with NewBuyer to override defaults.
type BuyerOptions struct {
	// Temperature is the sampling temperature for negotiation turns.
	Temperature float64
	// MaxTokens caps the completion length per turn.
	MaxTokens int64
	// Instructions optionally appends user-supplied directions to the
	// buyer's system prompt.
	Instructions string
	// Logger receives model call diagnostics.
	Logger *logging.NegotiationLogger
}

// Buyer drives the buyer side of a negotiation. A single Buyer serves a
// whole run; turns are sequential, one per round.
type Buyer struct {
	model       model.Model
	name        string
	constraints core.BuyerConstraints
	opts        BuyerOptions
}

// NewBuyer creates a buyer bound to a model and its purchase
// constraints.
func NewBuyer(m model.Model, name string, constraints core.BuyerConstraints, optFns ...func(o *BuyerOptions)) *Buyer {
	opts := BuyerOptions{
		Temperature: 0.7,
		MaxTokens:   512,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NewLogger(nil).WithComponent("buyer")
	}

	return &Buyer{
		model:       m,
		name:        name,
		constraints: constraints,
		opts:        opts,
	}
}

// TurnInput carries the per-round context for a buyer turn.
type TurnInput struct {
	// Sellers are the counterparties available this round, in listing
	// order.
	Sellers []core.Seller
	// History is the buyer-visible conversation so far.
	History []core.Message
	// DealContext optionally summarizes card-adjusted costs per
	// standing offer.
	DealContext string
}

// TurnResult is the parsed outcome of a buyer turn.
type TurnResult struct {
	// Message is the buyer's negotiation message.
	Message string
	// MentionedSellers lists the ids of sellers addressed by @mention.
	// Empty means the message goes to everyone.
	MentionedSellers []string
}

// Turn produces the buyer's next negotiation message. The completion is
// stripped of reasoning blocks and scanned for seller @mentions.
func (b *Buyer) Turn(ctx context.Context, in TurnInput) (*TurnResult, error) {
	messages := prompt.RenderBuyer(prompt.BuyerInput{
		BuyerName:    b.name,
		Constraints:  b.constraints,
		Sellers:      in.Sellers,
		History:      in.History,
		DealContext:  in.DealContext,
		Instructions: b.opts.Instructions,
	})

	start := time.Now()

	text, err := Generate(ctx, b.model, model.Request{
		Messages:    messages,
		Temperature: float64Ptr(b.opts.Temperature),
		MaxTokens:   int64Ptr(b.opts.MaxTokens),
	})

	b.opts.Logger.LogModelCall(b.model.Info().Name, 0, time.Since(start), err == nil, err)

	if err != nil {
		return nil, fmt.Errorf("buyer turn: %w", err)
	}

	text = StripThinkTags(text)

	if text == "" {
		return nil, fmt.Errorf("buyer turn: empty completion")
	}

	return &TurnResult{
		Message:          text,
		MentionedSellers: ParseMentions(text, in.Sellers),
	}, nil
}
