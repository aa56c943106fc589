package core

import "fmt"

// Priority steers how a seller weighs closing a deal against margin.
type Priority string

const (
	// PriorityCustomerRetention favors competitive prices to keep the buyer.
	PriorityCustomerRetention Priority = "customer_retention"
	// PriorityMaximizeProfit favors the highest achievable price.
	PriorityMaximizeProfit Priority = "maximize_profit"
)

// SpeakingStyle shapes the tone of a seller's messages.
type SpeakingStyle string

const (
	SpeakingStyleRude         SpeakingStyle = "rude"
	SpeakingStyleVerySweet    SpeakingStyle = "very_sweet"
	SpeakingStyleProfessional SpeakingStyle = "professional"
	SpeakingStyleCasual       SpeakingStyle = "casual"
	SpeakingStyleEnthusiastic SpeakingStyle = "enthusiastic"
)

// Strategy selects the negotiation tactic a seller plays.
type Strategy string

const (
	StrategyFirmPricing          Strategy = "firm_pricing"
	StrategyAggressiveDiscounter Strategy = "aggressive_discounter"
	StrategyBundler              Strategy = "bundler"
	StrategyLimitedInventory     Strategy = "limited_inventory"
	StrategySlowResponder        Strategy = "slow_responder"
	StrategyLoyaltyBuilder       Strategy = "loyalty_builder"
	StrategyPremiumPositioner    Strategy = "premium_positioner"
	StrategyPriceMatcher         Strategy = "price_matcher"
	StrategyClearanceSeller      Strategy = "clearance_seller"
	StrategyHaggler              Strategy = "haggler"
)

// Strategies lists all supported seller strategies.
func Strategies() []Strategy {
	return []Strategy{
		StrategyFirmPricing,
		StrategyAggressiveDiscounter,
		StrategyBundler,
		StrategyLimitedInventory,
		StrategySlowResponder,
		StrategyLoyaltyBuilder,
		StrategyPremiumPositioner,
		StrategyPriceMatcher,
		StrategyClearanceSeller,
		StrategyHaggler,
	}
}

// SellerProfile is the behavioral configuration of a seller agent.
type SellerProfile struct {
	// Priority weighs deal closing against margin.
	Priority Priority `json:"priority"`
	// SpeakingStyle shapes the message tone. Defaults to professional.
	SpeakingStyle SpeakingStyle `json:"speaking_style,omitempty"`
	// Strategy selects the negotiation tactic. Defaults to firm pricing.
	Strategy Strategy `json:"strategy,omitempty"`
}

// InventoryItem is a sellable item with its pricing bounds.
type InventoryItem struct {
	// ProductID is a stable catalog identifier. Optional.
	ProductID string `json:"product_id,omitempty"`
	// ItemName is the human-readable item name.
	ItemName string `json:"item_name"`
	// Variant distinguishes colorways, editions and the like. Optional.
	Variant string `json:"variant,omitempty"`
	// SizeValue is the numeric size, nil when the item has no size.
	SizeValue *float64 `json:"size_value,omitempty"`
	// SizeUnit is the unit of SizeValue, for example "GB" or "inch".
	SizeUnit string `json:"size_unit,omitempty"`
	// CostPrice is what the seller paid per unit.
	CostPrice float64 `json:"cost_price"`
	// SellingPrice is the list price per unit, the upper offer bound.
	SellingPrice float64 `json:"selling_price"`
	// LeastPrice is the lowest acceptable price per unit.
	LeastPrice float64 `json:"least_price"`
	// QuantityAvailable is the stock on hand.
	QuantityAvailable int `json:"quantity_available"`
}

// Validate checks the pricing bounds of the item.
func (i InventoryItem) Validate() error {
	if i.ItemName == "" {
		return fmt.Errorf("inventory item: item name must not be empty")
	}

	if i.CostPrice < 0 || i.LeastPrice < 0 || i.SellingPrice < 0 {
		return fmt.Errorf("inventory item %q: prices must not be negative", i.ItemName)
	}

	if i.LeastPrice > i.SellingPrice {
		return fmt.Errorf("inventory item %q: least price %.2f exceeds selling price %.2f", i.ItemName, i.LeastPrice, i.SellingPrice)
	}

	if i.QuantityAvailable < 0 {
		return fmt.Errorf("inventory item %q: quantity available must not be negative", i.ItemName)
	}

	return nil
}

// Clone returns a deep copy of the item.
func (i InventoryItem) Clone() InventoryItem {
	clone := i

	if i.SizeValue != nil {
		value := *i.SizeValue
		clone.SizeValue = &value
	}

	return clone
}

// Seller is a negotiation counterparty with a behavioral profile and an
// inventory.
type Seller struct {
	// ID is the unique seller identifier.
	ID string `json:"seller_id"`
	// Name is the seller's display name, used for mentions.
	Name string `json:"name"`
	// Profile configures the seller's negotiation behavior.
	Profile SellerProfile `json:"profile"`
	// Inventory lists the items the seller can trade.
	Inventory []InventoryItem `json:"inventory"`
}

// Validate checks that the seller is well formed.
func (s Seller) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("seller: id must not be empty")
	}

	if s.Name == "" {
		return fmt.Errorf("seller %s: name must not be empty", s.ID)
	}

	for _, item := range s.Inventory {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("seller %s: %w", s.ID, err)
		}
	}

	return nil
}

// Clone returns a deep copy of the seller.
func (s Seller) Clone() Seller {
	clone := s

	if s.Inventory != nil {
		clone.Inventory = make([]InventoryItem, 0, len(s.Inventory))

		for _, item := range s.Inventory {
			clone.Inventory = append(clone.Inventory, item.Clone())
		}
	}

	return clone
}
