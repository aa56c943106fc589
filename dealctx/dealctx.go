package dealctx

import (
	"fmt"
	"math"

	"github.com/hupe1980/haggle/wallet"
)

// Input describes a candidate deal to evaluate.
type Input struct {
	// PricePerUnit is the agreed or offered price per unit.
	PricePerUnit float64
	// Quantity is the number of units.
	Quantity int
	// ItemName selects the reward category.
	ItemName string
	// SellerName selects vendor offers.
	SellerName string
	// SellerCostPerUnit is the seller's cost per unit from inventory.
	SellerCostPerUnit float64
	// Wallet holds the buyer's cards. May be empty.
	Wallet wallet.Wallet
}

// Context carries the computed economics of a candidate deal. All
// monetary fields are rounded to cents.
type Context struct {
	// BuyerListTotal is the register price before any card rewards.
	BuyerListTotal float64 `json:"buyer_list_total"`
	// BuyerEffectiveTotal is the buyer's total after the best card's
	// savings. Equals BuyerListTotal when no card applies.
	BuyerEffectiveTotal float64 `json:"buyer_effective_total"`
	// BuyerSavings is the amount covered by the recommended card.
	BuyerSavings float64 `json:"buyer_savings"`
	// RecommendedCard names the best card. Empty when none applies.
	RecommendedCard string `json:"recommended_card,omitempty"`
	// RecommendedCardExplanation summarizes the card's benefit.
	RecommendedCardExplanation string `json:"recommended_card_explanation,omitempty"`
	// SellerReceives is the gross amount paid out to the seller.
	SellerReceives float64 `json:"seller_receives"`
	// SellerCostTotal is the seller's cost for the quantity sold.
	SellerCostTotal float64 `json:"seller_cost_total"`
	// SellerProfit is SellerReceives minus SellerCostTotal.
	SellerProfit float64 `json:"seller_profit"`
}

// ComputeFunc is the signature of a deal economics calculator.
// Implementations must be pure and safe for concurrent use.
type ComputeFunc func(in Input) Context

// Compute derives the full deal economics for a price and quantity.
// The best card is selected from the wallet, and the buyer-side totals
// reflect its savings. With an empty wallet the effective total equals
// the list total.
func Compute(in Input) Context {
	listTotal := in.PricePerUnit * float64(in.Quantity)

	costTotal := in.SellerCostPerUnit * float64(in.Quantity)

	out := Context{
		BuyerListTotal:      round2(listTotal),
		BuyerEffectiveTotal: round2(listTotal),
		SellerReceives:      round2(listTotal),
		SellerCostTotal:     round2(costTotal),
		SellerProfit:        round2(listTotal - costTotal),
	}

	if in.Wallet.Empty() {
		return out
	}

	benefit := wallet.BestCard(in.Wallet, in.ItemName, in.SellerName, in.PricePerUnit, in.Quantity)

	if benefit == nil {
		return out
	}

	out.BuyerEffectiveTotal = round2(benefit.EffectivePrice)

	out.BuyerSavings = round2(benefit.TotalSavings)

	out.RecommendedCard = benefit.CardName

	out.RecommendedCardExplanation = benefit.Explanation

	return out
}

// FormatForBuyer renders the deal context as prompt text for the buyer,
// quoting the list total and, when a card applies, the effective total
// and savings.
func FormatForBuyer(ctx Context) string {
	if ctx.BuyerSavings > 0 && ctx.RecommendedCard != "" {
		return fmt.Sprintf(
			"At this price you would pay $%.2f total at the register; with your best card (%s) you'd effectively pay $%.2f (saving $%.2f).",
			ctx.BuyerListTotal, ctx.RecommendedCard, ctx.BuyerEffectiveTotal, ctx.BuyerSavings,
		)
	}

	return fmt.Sprintf(
		"At this price you would pay $%.2f total. No card rewards apply to this purchase.",
		ctx.BuyerListTotal,
	)
}

// FormatForSeller renders the deal context as prompt text for the
// seller: the payout, cost, and profit, plus the buyer's card-adjusted
// cost so the seller can pitch it.
func FormatForSeller(ctx Context) string {
	head := fmt.Sprintf(
		"If this deal closes at this price: you receive $%.2f total; your cost is $%.2f; your profit is $%.2f.",
		ctx.SellerReceives, ctx.SellerCostTotal, ctx.SellerProfit,
	)

	if ctx.BuyerSavings > 0 && ctx.RecommendedCard != "" {
		return head + " " + fmt.Sprintf(
			"The buyer's effective cost after their payment rewards could be $%.2f (saving $%.2f with %s), which may make them more willing to accept. You can mention: \"Use your %s and you'll save $%.2f.\"",
			ctx.BuyerEffectiveTotal, ctx.BuyerSavings, ctx.RecommendedCard, ctx.RecommendedCard, ctx.BuyerSavings,
		)
	}

	return head + " " + fmt.Sprintf(
		"The buyer would pay $%.2f at the register (no card rewards applied).",
		ctx.BuyerListTotal,
	)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
