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

// SellerOptions configures a Seller instance.
//
// Use functional options with NewSeller to override defaults.
type SellerOptions struct {
	// Temperature is the sampling temperature for seller replies.
	Temperature float64
	// MaxTokens caps the completion length per reply.
	MaxTokens int64
	// Instructions optionally appends user-supplied directions to the
	// seller's system prompt.
	Instructions string
	// Logger receives model call diagnostics.
	Logger *logging.NegotiationLogger
}

// Seller produces one seller's replies in a negotiation. It is bound to
// the inventory item matched against the buyer's constraints, whose
// bounds anchor the seller's prompt.
type Seller struct {
	model  model.Model
	seller core.Seller
	item   core.InventoryItem
	opts   SellerOptions
}

// NewSeller creates a seller turn driver for one counterparty and its
// matched inventory item.
func NewSeller(m model.Model, seller core.Seller, item core.InventoryItem, optFns ...func(o *SellerOptions)) *Seller {
	opts := SellerOptions{
		Temperature: 0.7,
		MaxTokens:   512,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NewLogger(nil).WithComponent("seller")
	}

	return &Seller{
		model:  m,
		seller: seller,
		item:   item,
		opts:   opts,
	}
}

// RespondInput carries the per-round context for a seller reply.
type RespondInput struct {
	// BuyerName is the buyer's display name.
	BuyerName string
	// Constraints are the buyer's purchase requirements.
	Constraints core.BuyerConstraints
	// History is the seller-visible conversation so far.
	History []core.Message
	// DealContext optionally summarizes the deal from the seller's
	// side.
	DealContext string
}

// RespondResult is a seller's parsed reply.
type RespondResult struct {
	// Message is the reply text with any offer block removed.
	Message string
	// Offer is the structured offer parsed from the reply, nil when the
	// seller made none.
	Offer *core.Offer
}

// Respond produces the seller's reply to the current round. The
// completion is stripped of reasoning blocks and its trailing offer
// JSON block, if any, is parsed out.
func (s *Seller) Respond(ctx context.Context, in RespondInput) (*RespondResult, error) {
	messages := prompt.RenderSeller(prompt.SellerInput{
		Seller:       s.seller,
		Item:         s.item,
		Constraints:  in.Constraints,
		BuyerName:    in.BuyerName,
		History:      in.History,
		DealContext:  in.DealContext,
		Instructions: s.opts.Instructions,
	})

	start := time.Now()

	text, err := Generate(ctx, s.model, model.Request{
		Messages:    messages,
		Temperature: float64Ptr(s.opts.Temperature),
		MaxTokens:   int64Ptr(s.opts.MaxTokens),
	})

	s.opts.Logger.LogModelCall(s.model.Info().Name, 0, time.Since(start), err == nil, err)

	if err != nil {
		return nil, fmt.Errorf("seller %s turn: %w", s.seller.ID, err)
	}

	text = StripThinkTags(text)

	cleaned, offer := ParseOffer(text)
	if cleaned == "" && offer == nil {
		return nil, fmt.Errorf("seller %s turn: empty completion", s.seller.ID)
	}

	return &RespondResult{
		Message: cleaned,
		Offer:   offer,
	}, nil
}
