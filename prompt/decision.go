package prompt

import (
	"fmt"
	"strings"

	"github.com/hupe1980/haggle/core"
	"github.com/hupe1980/haggle/model"
)

// DecisionInput carries everything needed to render the accept-or-continue
// classification prompt.
type DecisionInput struct {
	// BuyerName is the buyer's display name.
	BuyerName string
	// Constraints are the buyer's purchase requirements.
	Constraints core.BuyerConstraints
	// Offers are the validated standing offers, best first.
	Offers []core.StandingOffer
	// History is the full conversation so far.
	History []core.Message
	// CurrentRound is the round just played.
	CurrentRound int
	// MinRounds is the earliest round an accept is allowed in.
	MinRounds int
}

// RenderDecision builds the system and user messages for the decision
// classifier. The model is instructed to answer with exactly
// "ACCEPT [SellerName]" or "CONTINUE".
func RenderDecision(in DecisionInput) []model.ChatMessage {
	var system strings.Builder

	fmt.Fprintf(&system, `You are %s, making a decision about offers for %s.

YOUR HARD BUDGET LIMIT: $%.2f per unit maximum. NEVER accept above this.
Quantity needed: %d
Target price (ideal): $%.2f per unit

Current Round: %d of maximum rounds.
Minimum Rounds Required: %d

Valid offers received:`,
		in.BuyerName,
		in.Constraints.ItemName,
		in.Constraints.MaxPricePerUnit,
		in.Constraints.QuantityNeeded,
		in.Constraints.TargetPrice(),
		in.CurrentRound,
		in.MinRounds,
	)

	for i, offer := range in.Offers {
		savingsPct := 0.0
		if in.Constraints.MaxPricePerUnit > 0 {
			savingsPct = (in.Constraints.MaxPricePerUnit - offer.Offer.Price) / in.Constraints.MaxPricePerUnit * 100
		}

		fmt.Fprintf(&system, "\n%d. %s: $%.2f per unit, %d units (%.0f%% below your max budget)",
			i+1, offer.SellerName, offer.Offer.Price, offer.Offer.Quantity, savingsPct)
	}

	fmt.Fprintf(&system, `

Decision Instructions:
- ACCEPT only if the price is GOOD (well below $%.2f). Don't accept the first reasonable offer.
- If you want to ACCEPT, respond with: "ACCEPT [SellerName]" (e.g., "ACCEPT TechStore")
- If prices are still too high or you think you can get better, respond with: "CONTINUE"
- Prefer to CONTINUE if you haven't completed at least %d rounds.
- Prefer the LOWEST priced offer when accepting.

CRITICAL: Respond ONLY with "ACCEPT [SellerName]" or "CONTINUE". Nothing else.`,
		in.Constraints.MaxPricePerUnit,
		in.MinRounds,
	)

	var history strings.Builder

	if len(in.History) > 0 {
		history.WriteString("\n\nRecent conversation:\n")

		for _, msg := range TruncateHistory(in.History, DecisionHistoryMaxMessages, DecisionHistoryMaxChars) {
			fmt.Fprintf(&history, "%s: %s\n", msg.SenderName, msg.Content)
		}
	}

	user := fmt.Sprintf(`You are at round %d.%s

Do you want to ACCEPT one of the offers above, or CONTINUE negotiating?

Respond with either:
- "ACCEPT [SellerName]" to accept an offer
- "CONTINUE" or "KEEP NEGOTIATING" to continue`,
		in.CurrentRound,
		history.String(),
	)

	return []model.ChatMessage{
		{Role: model.RoleSystem, Content: system.String()},
		{Role: model.RoleUser, Content: user},
	}
}
