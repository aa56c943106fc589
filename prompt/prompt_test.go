package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/haggle/core"
	"github.com/hupe1980/haggle/model"
)

func promptConstraints() core.BuyerConstraints {
	return core.BuyerConstraints{
		ItemName:        "Laptop",
		QuantityNeeded:  2,
		MinPricePerUnit: 500,
		MaxPricePerUnit: 900,
	}
}

func promptSeller(id, name string, strategy core.Strategy, style core.SpeakingStyle) core.Seller {
	return core.Seller{
		ID:   id,
		Name: name,
		Profile: core.SellerProfile{
			Priority:      core.PriorityCustomerRetention,
			SpeakingStyle: style,
			Strategy:      strategy,
		},
		Inventory: []core.InventoryItem{
			{
				ItemName:          "Laptop",
				CostPrice:         400,
				SellingPrice:      950,
				LeastPrice:        600,
				QuantityAvailable: 10,
			},
		},
	}
}

func TestRenderBuyer(t *testing.T) {
	msgs := RenderBuyer(BuyerInput{
		BuyerName:   "Alice",
		Constraints: promptConstraints(),
		Sellers: []core.Seller{
			promptSeller("seller_1", "TechStore", core.StrategyFirmPricing, core.SpeakingStyleProfessional),
			promptSeller("seller_2", "GadgetHub", core.StrategyHaggler, core.SpeakingStyleCasual),
		},
	})

	require.Len(t, msgs, 2)
	require.Equal(t, model.RoleSystem, msgs[0].Role)
	require.Equal(t, model.RoleUser, msgs[1].Role)

	system := msgs[0].Content
	assert.Contains(t, system, "You are Alice")
	assert.Contains(t, system, "MAXIMUM you can pay: $900.00 per unit")
	assert.Contains(t, system, "NEVER agree to any price above $900.00 per unit")
	// Opening 10% and target 30% into the band.
	assert.Contains(t, system, "around $540.00 per unit")
	assert.Contains(t, system, "TARGET price is $620.00 per unit")
	assert.Contains(t, system, "Available Sellers: TechStore, GadgetHub")
	assert.Contains(t, system, "@TechStore, @GadgetHub")
	assert.Contains(t, system, "NEVER reveal your maximum budget")
	assert.Contains(t, system, "NEVER output <think>...</think> tags")

	user := msgs[1].Content
	assert.Contains(t, user, "You are negotiating for Laptop")
	assert.Contains(t, user, "under 100 words")
	assert.NotContains(t, user, "Recent conversation")
}

func TestRenderBuyerWithHistoryAndExtras(t *testing.T) {
	history := []core.Message{
		core.NewBuyerMessage(1, "buyer_1", "Alice", "Can anyone do $600?", nil, []string{"seller_1"}),
		core.NewSellerMessage(1, "seller_1", "TechStore", "buyer_1", "I can do $800.", &core.Offer{Price: 800, Quantity: 2}),
	}

	msgs := RenderBuyer(BuyerInput{
		BuyerName:    "Alice",
		Constraints:  promptConstraints(),
		Sellers:      []core.Seller{promptSeller("seller_1", "TechStore", core.StrategyFirmPricing, core.SpeakingStyleProfessional)},
		History:      history,
		DealContext:  "[TechStore] Effective total: $1,570.00",
		Instructions: "Always ask about warranty coverage.",
	})

	system := msgs[0].Content
	assert.Contains(t, system, "ADDITIONAL INSTRUCTIONS FROM USER:\nAlways ask about warranty coverage.")
	assert.Contains(t, system, "DEAL CONTEXT (effective cost with your cards):")

	user := msgs[1].Content
	assert.Contains(t, user, "Recent conversation:")
	assert.Contains(t, user, "Alice: Can anyone do $600?")
	assert.Contains(t, user, "TechStore: I can do $800.")
}

func TestRenderSeller(t *testing.T) {
	seller := promptSeller("seller_1", "TechStore", core.StrategyPriceMatcher, core.SpeakingStyleRude)

	msgs := RenderSeller(SellerInput{
		Seller:      seller,
		Item:        seller.Inventory[0],
		Constraints: promptConstraints(),
		BuyerName:   "Alice",
	})

	require.Len(t, msgs, 2)

	system := msgs[0].Content
	assert.Contains(t, system, "You are TechStore, a seller negotiating with Alice.")
	assert.Contains(t, system, "Cost price: $400.00 per unit")
	assert.Contains(t, system, "You CANNOT offer below $600.00 per unit")
	assert.Contains(t, system, "You CANNOT offer above $950.00 per unit")
	assert.Contains(t, system, "You CANNOT offer more than 10 units")
	assert.Contains(t, system, "Your Strategy: Price Matcher")
	assert.Contains(t, system, "match or beat competitor prices")
	assert.Contains(t, system, "don't be overly polite")
	assert.Contains(t, system, "building long-term customer relationships")
	assert.Contains(t, system, `{"offer": {"price": <price_per_unit>, "quantity": <quantity>}}`)
	assert.Contains(t, system, "under 80 words")

	user := msgs[1].Content
	assert.Contains(t, user, "The buyer Alice is negotiating for Laptop.")
	assert.Contains(t, user, "Do NOT repeat or echo the conversation history")
}

func TestRenderSellerUnknownProfileFallsBack(t *testing.T) {
	seller := promptSeller("seller_1", "TechStore", core.Strategy("unheard_of"), core.SpeakingStyle("mumbling"))
	seller.Profile.Priority = core.PriorityMaximizeProfit

	msgs := RenderSeller(SellerInput{
		Seller:      seller,
		Item:        seller.Inventory[0],
		Constraints: promptConstraints(),
		BuyerName:   "Alice",
	})

	system := msgs[0].Content
	assert.Contains(t, system, "Hold your ground on pricing.")
	assert.Contains(t, system, "Be professional and courteous.")
	assert.Contains(t, system, "maximizing profit")
}

func TestRenderDecision(t *testing.T) {
	msgs := RenderDecision(DecisionInput{
		BuyerName:   "Alice",
		Constraints: promptConstraints(),
		Offers: []core.StandingOffer{
			{SellerID: "seller_2", SellerName: "GadgetHub", Offer: core.Offer{Price: 720, Quantity: 2}, Round: 3},
			{SellerID: "seller_1", SellerName: "TechStore", Offer: core.Offer{Price: 810, Quantity: 2}, Round: 3},
		},
		CurrentRound: 3,
		MinRounds:    2,
	})

	require.Len(t, msgs, 2)

	system := msgs[0].Content
	assert.Contains(t, system, "YOUR HARD BUDGET LIMIT: $900.00 per unit maximum")
	assert.Contains(t, system, "1. GadgetHub: $720.00 per unit, 2 units (20% below your max budget)")
	assert.Contains(t, system, "2. TechStore: $810.00 per unit, 2 units (10% below your max budget)")
	assert.Contains(t, system, `Respond ONLY with "ACCEPT [SellerName]" or "CONTINUE"`)
	assert.Contains(t, system, "at least 2 rounds")

	user := msgs[1].Content
	assert.Contains(t, user, "You are at round 3.")
	assert.Contains(t, user, `"CONTINUE" or "KEEP NEGOTIATING"`)
}

func TestTruncateHistory(t *testing.T) {
	t.Run("message cap keeps the most recent", func(t *testing.T) {
		var history []core.Message
		for i := 1; i <= 15; i++ {
			history = append(history, core.NewBuyerMessage(i, "buyer_1", "Alice", strings.Repeat("x", 10), nil, nil))
		}

		got := TruncateHistory(history, 10, 4000)
		require.Len(t, got, 10)
		assert.Equal(t, 6, got[0].Round)
		assert.Equal(t, 15, got[len(got)-1].Round)
	})

	t.Run("char cap drops oldest first", func(t *testing.T) {
		history := []core.Message{
			core.NewBuyerMessage(1, "buyer_1", "Alice", strings.Repeat("a", 80), nil, nil),
			core.NewBuyerMessage(2, "buyer_1", "Alice", strings.Repeat("b", 80), nil, nil),
			core.NewBuyerMessage(3, "buyer_1", "Alice", strings.Repeat("c", 80), nil, nil),
		}

		got := TruncateHistory(history, 10, 170)
		require.Len(t, got, 2)
		assert.Equal(t, 2, got[0].Round)
	})

	t.Run("most recent message always survives", func(t *testing.T) {
		history := []core.Message{
			core.NewBuyerMessage(1, "buyer_1", "Alice", strings.Repeat("a", 10), nil, nil),
			core.NewBuyerMessage(2, "buyer_1", "Alice", strings.Repeat("b", 5000), nil, nil),
		}

		got := TruncateHistory(history, 10, 4000)
		require.Len(t, got, 1)
		assert.Equal(t, 2, got[0].Round)
	})

	t.Run("empty history", func(t *testing.T) {
		assert.Empty(t, TruncateHistory(nil, 10, 4000))
	})
}
