package prompt

import "github.com/hupe1980/haggle/core"

// strategyInstruction returns the behavioral instruction for a seller
// strategy. Unknown strategies fall back to firm pricing.
func strategyInstruction(strategy core.Strategy) string {
	instructions := map[core.Strategy]string{
		core.StrategyFirmPricing:          "Hold your ground on pricing. Make small concessions only after multiple rounds. Defend your price with quality arguments.",
		core.StrategyAggressiveDiscounter: "Be eager to close deals fast. Offer significant discounts early to win the customer. Drop price quickly if they hesitate.",
		core.StrategyBundler:              "Focus on offering bundle deals and extras. Suggest adding accessories, warranties, or services. 'I can throw in X if you buy at this price.'",
		core.StrategyLimitedInventory:     "Create urgency. Mention limited stock, other interested buyers, or time-limited pricing. 'Only 2 left at this price.'",
		core.StrategySlowResponder:        "Take your time. Be deliberate and thoughtful. Don't rush to counter-offer. Ask clarifying questions to buy time.",
		core.StrategyLoyaltyBuilder:       "Focus on building a relationship. Offer loyalty discounts, future deal promises, and personalized service. 'For a valued customer like you...'",
		core.StrategyPremiumPositioner:    "Justify your higher price with quality, warranty, brand reputation, and superior features. Position your product as premium.",
		core.StrategyPriceMatcher:         "Be willing to match or beat competitor prices. Ask what other sellers are offering. 'Show me their price and I'll match it.'",
		core.StrategyClearanceSeller:      "Want to move inventory fast. Offer good deals but push for quick decisions. 'I can do this price but only if we close today.'",
		core.StrategyHaggler:              "Enjoy the back-and-forth of negotiation. Make small incremental concessions. Counter every offer. 'Meet me in the middle?'",
	}

	if instruction, ok := instructions[strategy]; ok {
		return instruction
	}

	return instructions[core.StrategyFirmPricing]
}

// styleInstruction returns the speaking style instruction. Unknown styles
// fall back to professional.
func styleInstruction(style core.SpeakingStyle) string {
	styles := map[core.SpeakingStyle]string{
		core.SpeakingStyleRude:         "Be direct, slightly aggressive, and don't be overly polite. Use short, blunt responses.",
		core.SpeakingStyleVerySweet:    "Be very friendly, warm, and enthusiastic. Use positive language and show genuine interest in helping the buyer.",
		core.SpeakingStyleProfessional: "Be professional and courteous. Use business-appropriate language. Be clear and concise.",
		core.SpeakingStyleCasual:       "Be relaxed and conversational. Use informal language. Keep it friendly and low-key.",
		core.SpeakingStyleEnthusiastic: "Be energetic and excited about the product. Show passion. Use exclamation points and upbeat language.",
	}

	if instruction, ok := styles[style]; ok {
		return instruction
	}

	return styles[core.SpeakingStyleProfessional]
}

// priorityInstruction returns the behavior line for a seller priority.
func priorityInstruction(priority core.Priority) string {
	if priority == core.PriorityCustomerRetention {
		return "Your priority is building long-term customer relationships. Be willing to offer competitive prices to keep the buyer happy."
	}

	return "Your priority is maximizing profit. Try to get the highest price possible while still making a sale."
}
