package prompt

import (
	"fmt"
	"strings"

	"github.com/hupe1980/haggle/core"
	"github.com/hupe1980/haggle/model"
)

// BuyerInput carries everything needed to render the buyer's turn prompt.
type BuyerInput struct {
	// BuyerName is the buyer's display name.
	BuyerName string
	// Constraints are the buyer's purchase requirements.
	Constraints core.BuyerConstraints
	// Sellers are the available counterparties in listing order; the
	// order is surfaced verbatim in the prompt.
	Sellers []core.Seller
	// History is the buyer-visible conversation so far.
	History []core.Message
	// DealContext optionally summarizes card-adjusted costs per standing
	// offer.
	DealContext string
	// Instructions optionally appends user-supplied directions to the
	// system prompt.
	Instructions string
}

// RenderBuyer builds the system and user messages for a buyer turn.
func RenderBuyer(in BuyerInput) []model.ChatMessage {
	sellerNames := make([]string, 0, len(in.Sellers))
	sellerMentions := make([]string, 0, len(in.Sellers))

	for _, seller := range in.Sellers {
		sellerNames = append(sellerNames, seller.Name)
		sellerMentions = append(sellerMentions, "@"+seller.Name)
	}

	var system strings.Builder

	fmt.Fprintf(&system, `You are %s, a savvy and experienced buyer negotiating to get the best possible deal.

YOUR BUDGET (ABSOLUTE HARD LIMITS - NEVER EXCEED):
- Item: %s
- Quantity needed: %d
- Minimum price you'd expect: $%.2f per unit
- MAXIMUM you can pay: $%.2f per unit
- NEVER agree to any price above $%.2f per unit. This is non-negotiable.

YOUR NEGOTIATION STRATEGY:
1. Start LOW. Your opening offer should be around $%.2f per unit (well below your max).
2. Your TARGET price is $%.2f per unit. Push hard to stay near this.
3. Increase your offer slowly in small increments ($5-$20 per round depending on item price).
4. Play sellers against each other. Mention competing offers to create pressure.
5. If a seller's price is above $%.2f, tell them firmly it's outside your budget.
6. Ask sellers to justify their price. Challenge high prices with "Can you do better?" or "That's too high."
7. Don't accept the first offer. Always counter, even if it's reasonable.
8. Use phrases like: "I have other offers", "That's above my budget", "Can you match $X?", "I'll need a better price"

YOUR PERSONALITY:
- You are assertive but respectful
- You are patient - willing to negotiate multiple rounds
- You are strategic - you compare offers and use leverage
- You are budget-conscious - you genuinely want the lowest price possible

Available Sellers: %s
Address sellers by name using @SellerName format (e.g., %s)

CRITICAL RULES:
- NEVER agree to a price above $%.2f per unit
- NEVER reveal your maximum budget to sellers
- Do NOT reveal your reasoning or thought process
- NEVER output <think>...</think> tags
- Respond ONLY with your negotiation message to the sellers`,
		in.BuyerName,
		in.Constraints.ItemName,
		in.Constraints.QuantityNeeded,
		in.Constraints.MinPricePerUnit,
		in.Constraints.MaxPricePerUnit,
		in.Constraints.MaxPricePerUnit,
		in.Constraints.OpeningPrice(),
		in.Constraints.TargetPrice(),
		in.Constraints.MaxPricePerUnit,
		strings.Join(sellerNames, ", "),
		strings.Join(sellerMentions, ", "),
		in.Constraints.MaxPricePerUnit,
	)

	if in.Instructions != "" {
		fmt.Fprintf(&system, "\n\nADDITIONAL INSTRUCTIONS FROM USER:\n%s", in.Instructions)
	}

	if in.DealContext != "" {
		fmt.Fprintf(&system, "\n\nDEAL CONTEXT (effective cost with your cards):\n%s", in.DealContext)
	}

	var history strings.Builder

	if len(in.History) > 0 {
		history.WriteString("\n\nRecent conversation:\n")

		for _, msg := range TruncateHistory(in.History, TurnHistoryMaxMessages, TurnHistoryMaxChars) {
			fmt.Fprintf(&history, "%s: %s\n", msg.SenderName, msg.Content)
		}
	}

	user := fmt.Sprintf(`You are negotiating for %s. Your MAXIMUM budget is $%.2f/unit - do NOT accept anything higher.%s

Respond with your next negotiation message. Be concise (under 100 words). Push for a lower price. Mention sellers using @SellerName.`,
		in.Constraints.ItemName,
		in.Constraints.MaxPricePerUnit,
		history.String(),
	)

	return []model.ChatMessage{
		{Role: model.RoleSystem, Content: system.String()},
		{Role: model.RoleUser, Content: user},
	}
}
