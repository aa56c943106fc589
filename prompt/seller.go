package prompt

import (
	"fmt"
	"strings"

	"github.com/hupe1980/haggle/core"
	"github.com/hupe1980/haggle/internal/util"
	"github.com/hupe1980/haggle/model"
)

// SellerInput carries everything needed to render a seller's turn prompt.
type SellerInput struct {
	// Seller is the responding counterparty.
	Seller core.Seller
	// Item is the seller's inventory item matched against the buyer's
	// constraints. Its bounds are quoted verbatim in the prompt.
	Item core.InventoryItem
	// Constraints are the buyer's purchase requirements.
	Constraints core.BuyerConstraints
	// BuyerName is the buyer's display name.
	BuyerName string
	// History is the seller-visible conversation so far.
	History []core.Message
	// DealContext optionally summarizes the deal from the seller's side.
	DealContext string
	// Instructions optionally appends user-supplied directions to the
	// system prompt.
	Instructions string
}

// RenderSeller builds the system and user messages for one seller turn.
func RenderSeller(in SellerInput) []model.ChatMessage {
	var system strings.Builder

	fmt.Fprintf(&system, `You are %s, a seller negotiating with %s.

Your Inventory:
- Item: %s
- Cost price: $%.2f per unit (your cost)
- Selling price: $%.2f per unit (list price)
- Minimum acceptable price: $%.2f per unit (you cannot go below this)
- Quantity available: %d

Pricing Rules:
- You CANNOT offer below $%.2f per unit
- You CANNOT offer above $%.2f per unit
- You CANNOT offer more than %d units

Your Strategy: %s
- %s

Your Behavior:
- %s
- %s
- Be concise (under 80 words)
- You can see all public messages and messages addressed to you

Important Instructions:
- Do NOT reveal your chain-of-thought or internal reasoning
- NEVER output <think>...</think> tags or similar reasoning blocks
- Respond ONLY with your final message (and optional offer JSON)

Optional Offer Format:
If you want to make a specific offer, include a JSON block at the end:
`+"```json\n{\"offer\": {\"price\": <price_per_unit>, \"quantity\": <quantity>}}\n```"+`
The offer will be automatically parsed. Price must be between $%.2f and $%.2f.`,
		in.Seller.Name,
		in.BuyerName,
		in.Item.ItemName,
		in.Item.CostPrice,
		in.Item.SellingPrice,
		in.Item.LeastPrice,
		in.Item.QuantityAvailable,
		in.Item.LeastPrice,
		in.Item.SellingPrice,
		in.Item.QuantityAvailable,
		util.TitleWords(string(in.Seller.Profile.Strategy)),
		strategyInstruction(in.Seller.Profile.Strategy),
		priorityInstruction(in.Seller.Profile.Priority),
		styleInstruction(in.Seller.Profile.SpeakingStyle),
		in.Item.LeastPrice,
		in.Item.SellingPrice,
	)

	if in.Instructions != "" {
		fmt.Fprintf(&system, "\n\nADDITIONAL INSTRUCTIONS FROM USER:\n%s", in.Instructions)
	}

	if in.DealContext != "" {
		fmt.Fprintf(&system, "\n\nDEAL CONTEXT (use this to pitch card benefits to the buyer):\n%s", in.DealContext)
	}

	var history strings.Builder

	if len(in.History) > 0 {
		history.WriteString("\n\nConversation history:\n")

		for _, msg := range TruncateHistory(in.History, TurnHistoryMaxMessages, TurnHistoryMaxChars) {
			fmt.Fprintf(&history, "%s: %s\n", msg.SenderName, msg.Content)
		}
	}

	user := fmt.Sprintf(`The buyer %s is negotiating for %s.%s

IMPORTANT: Do NOT repeat or echo the conversation history above. Generate YOUR OWN response as %s.
Do NOT copy the buyer's message or other sellers' messages. Write a fresh response based on the context.

Respond with your message. You can make an offer by including the JSON block format shown above.`,
		in.BuyerName,
		in.Constraints.ItemName,
		history.String(),
		in.Seller.Name,
	)

	return []model.ChatMessage{
		{Role: model.RoleSystem, Content: system.String()},
		{Role: model.RoleUser, Content: user},
	}
}
