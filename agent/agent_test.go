package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/haggle/core"
	"github.com/hupe1980/haggle/internal/testutil"
)

func TestStripThinkTags(t *testing.T) {
	t.Run("removes closed block", func(t *testing.T) {
		got := StripThinkTags("<think>reasoning here</think>Final answer.")

		assert.Equal(t, "Final answer.", got)
	})

	t.Run("removes multiple blocks", func(t *testing.T) {
		got := StripThinkTags("<think>a</think>Hello <think>b</think>world")

		assert.Equal(t, "Hello world", got)
	})

	t.Run("cuts unclosed block to end", func(t *testing.T) {
		got := StripThinkTags("Visible part <think>never closed")

		assert.Equal(t, "Visible part", got)
	})

	t.Run("no block passes through", func(t *testing.T) {
		got := StripThinkTags("  plain text  ")

		assert.Equal(t, "plain text", got)
	})
}

func TestParseMentions(t *testing.T) {
	sellers := []core.Seller{
		{ID: "s1", Name: "TechStore"},
		{ID: "s2", Name: "Tech"},
		{ID: "s3", Name: "Gadget Hub"},
	}

	t.Run("single mention", func(t *testing.T) {
		got := ParseMentions("@TechStore can you do $600?", sellers)

		assert.Equal(t, []string{"s1"}, got)
	})

	t.Run("prefix name does not claim longer name", func(t *testing.T) {
		got := ParseMentions("@Tech what about you?", sellers)

		assert.Equal(t, []string{"s2"}, got)
	})

	t.Run("case insensitive", func(t *testing.T) {
		got := ParseMentions("Hey @TECHSTORE, final offer?", sellers)

		assert.Equal(t, []string{"s1"}, got)
	})

	t.Run("mention at end of message", func(t *testing.T) {
		got := ParseMentions("Best price wins @Tech", sellers)

		assert.Equal(t, []string{"s2"}, got)
	})

	t.Run("multi word name", func(t *testing.T) {
		got := ParseMentions("@Gadget Hub can you beat $600?", sellers)

		assert.Equal(t, []string{"s3"}, got)
	})

	t.Run("multiple mentions keep listing order", func(t *testing.T) {
		got := ParseMentions("@Tech and @TechStore, beat each other!", sellers)

		assert.Equal(t, []string{"s1", "s2"}, got)
	})

	t.Run("no mentions", func(t *testing.T) {
		got := ParseMentions("Anyone willing to go lower?", sellers)

		assert.Nil(t, got)
	})
}

func TestParseOffer(t *testing.T) {
	t.Run("fenced block with language tag", func(t *testing.T) {
		text := "I can do $700 for both units.\n```json\n{\"offer\": {\"price\": 700, \"quantity\": 2}}\n```"

		cleaned, offer := ParseOffer(text)

		require.NotNil(t, offer)
		assert.Equal(t, 700.0, offer.Price)
		assert.Equal(t, 2, offer.Quantity)
		assert.Equal(t, "I can do $700 for both units.", cleaned)
	})

	t.Run("fenced block without language tag", func(t *testing.T) {
		text := "Deal.\n```\n{\"offer\": {\"price\": 650.5, \"quantity\": 3}}\n```"

		cleaned, offer := ParseOffer(text)

		require.NotNil(t, offer)
		assert.Equal(t, 650.5, offer.Price)
		assert.Equal(t, 3, offer.Quantity)
		assert.Equal(t, "Deal.", cleaned)
	})

	t.Run("bare trailing object", func(t *testing.T) {
		text := `Happy to close at 650. {"offer": {"price": 650, "quantity": 2}}`

		cleaned, offer := ParseOffer(text)

		require.NotNil(t, offer)
		assert.Equal(t, 650.0, offer.Price)
		assert.Equal(t, "Happy to close at 650.", cleaned)
	})

	t.Run("no offer", func(t *testing.T) {
		cleaned, offer := ParseOffer("  Let me think about it.  ")

		assert.Nil(t, offer)
		assert.Equal(t, "Let me think about it.", cleaned)
	})

	t.Run("non positive values rejected", func(t *testing.T) {
		text := "Sorry.\n```json\n{\"offer\": {\"price\": 0, \"quantity\": 2}}\n```"

		cleaned, offer := ParseOffer(text)

		assert.Nil(t, offer)
		assert.Contains(t, cleaned, "Sorry.")
	})

	t.Run("null offer rejected", func(t *testing.T) {
		cleaned, offer := ParseOffer(`No deal today. {"offer": null}`)

		assert.Nil(t, offer)
		assert.Contains(t, cleaned, "No deal today.")
	})
}

func TestBuyerTurn(t *testing.T) {
	constraints := core.BuyerConstraints{
		ItemName:        "Laptop",
		QuantityNeeded:  2,
		MinPricePerUnit: 500,
		MaxPricePerUnit: 900,
	}

	sellers := []core.Seller{
		{ID: "seller_1", Name: "TechStore"},
		{ID: "seller_2", Name: "GadgetHub"},
	}

	t.Run("produces message and mentions", func(t *testing.T) {
		m := testutil.NewScriptedModel().
			Queue("<think>open low</think>@TechStore can you do $600 per unit?")

		buyer := NewBuyer(m, "Alice", constraints)

		res, err := buyer.Turn(context.Background(), TurnInput{Sellers: sellers})

		require.NoError(t, err)
		assert.Equal(t, "@TechStore can you do $600 per unit?", res.Message)
		assert.Equal(t, []string{"seller_1"}, res.MentionedSellers)

		reqs := m.Requests()
		require.Len(t, reqs, 1)
		require.NotEmpty(t, reqs[0].Messages)
		assert.Contains(t, reqs[0].Messages[0].Content, "You are Alice")

		require.NotNil(t, reqs[0].Temperature)
		assert.Equal(t, 0.7, *reqs[0].Temperature)
		require.NotNil(t, reqs[0].MaxTokens)
		assert.Equal(t, int64(512), *reqs[0].MaxTokens)
	})

	t.Run("sampling overrides", func(t *testing.T) {
		m := testutil.NewScriptedModel().Queue("Any takers at $550?")

		buyer := NewBuyer(m, "Alice", constraints, func(o *BuyerOptions) {
			o.Temperature = 0.2
			o.MaxTokens = 64
		})

		_, err := buyer.Turn(context.Background(), TurnInput{Sellers: sellers})

		require.NoError(t, err)

		reqs := m.Requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, 0.2, *reqs[0].Temperature)
		assert.Equal(t, int64(64), *reqs[0].MaxTokens)
	})

	t.Run("model failure surfaces", func(t *testing.T) {
		m := testutil.NewScriptedModel().QueueErr(errors.New("rate limited"))

		buyer := NewBuyer(m, "Alice", constraints)

		_, err := buyer.Turn(context.Background(), TurnInput{Sellers: sellers})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "buyer turn")
	})

	t.Run("empty completion fails", func(t *testing.T) {
		m := testutil.NewScriptedModel().Queue("<think>only thoughts</think>")

		buyer := NewBuyer(m, "Alice", constraints)

		_, err := buyer.Turn(context.Background(), TurnInput{Sellers: sellers})

		require.Error(t, err)
	})
}

func TestSellerRespond(t *testing.T) {
	constraints := core.BuyerConstraints{
		ItemName:        "Laptop",
		QuantityNeeded:  2,
		MinPricePerUnit: 500,
		MaxPricePerUnit: 900,
	}

	counterparty := core.Seller{
		ID:   "seller_1",
		Name: "TechStore",
		Profile: core.SellerProfile{
			Priority:      core.PriorityMaximizeProfit,
			SpeakingStyle: core.SpeakingStyleProfessional,
			Strategy:      core.StrategyFirmPricing,
		},
	}

	item := core.InventoryItem{
		ItemName:          "Laptop",
		CostPrice:         400,
		LeastPrice:        550,
		SellingPrice:      800,
		QuantityAvailable: 10,
	}

	t.Run("parses reply and offer", func(t *testing.T) {
		m := testutil.NewScriptedModel().Respond(
			"You are TechStore",
			"Best I can do is $700 each.\n```json\n{\"offer\": {\"price\": 700, \"quantity\": 2}}\n```",
		)

		seller := NewSeller(m, counterparty, item)

		res, err := seller.Respond(context.Background(), RespondInput{
			BuyerName:   "Alice",
			Constraints: constraints,
		})

		require.NoError(t, err)
		assert.Equal(t, "Best I can do is $700 each.", res.Message)
		require.NotNil(t, res.Offer)
		assert.Equal(t, 700.0, res.Offer.Price)
		assert.Equal(t, 2, res.Offer.Quantity)

		reqs := m.Requests()
		require.Len(t, reqs, 1)
		assert.Contains(t, reqs[0].Messages[0].Content, "You CANNOT offer below $550.00")
		assert.Contains(t, reqs[0].Messages[0].Content, "You CANNOT offer above $800.00")
	})

	t.Run("reply without offer", func(t *testing.T) {
		m := testutil.NewScriptedModel().Queue("Let me check with my manager.")

		seller := NewSeller(m, counterparty, item)

		res, err := seller.Respond(context.Background(), RespondInput{
			BuyerName:   "Alice",
			Constraints: constraints,
		})

		require.NoError(t, err)
		assert.Equal(t, "Let me check with my manager.", res.Message)
		assert.Nil(t, res.Offer)
	})

	t.Run("model failure names the seller", func(t *testing.T) {
		m := testutil.NewScriptedModel().QueueErr(errors.New("boom"))

		seller := NewSeller(m, counterparty, item)

		_, err := seller.Respond(context.Background(), RespondInput{
			BuyerName:   "Alice",
			Constraints: constraints,
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "seller_1")
	})
}
