package wallet

// CardReward is a cashback tier of a credit card.
type CardReward struct {
	// Category names the spend category, for example "electronics" or
	// "general".
	Category string `json:"category"`
	// CashbackPct is the cashback percentage, 5.0 meaning 5%.
	CashbackPct float64 `json:"cashback_pct"`
	// Description is free text shown to users.
	Description string `json:"description,omitempty"`
}

// VendorOffer is a card discount tied to a specific vendor.
type VendorOffer struct {
	// VendorKeyword is matched case-insensitively against seller names.
	VendorKeyword string `json:"vendor_keyword"`
	// DiscountPct is the discount percentage, 10.0 meaning 10%.
	DiscountPct float64 `json:"discount_pct"`
	// MaxDiscount caps the absolute discount amount. Zero means
	// unlimited.
	MaxDiscount float64 `json:"max_discount,omitempty"`
	// Description is free text shown to users.
	Description string `json:"description,omitempty"`
}

// CreditCard is one card in a buyer's wallet.
type CreditCard struct {
	// ID is the unique card identifier.
	ID string `json:"card_id"`
	// Name is the card's display name.
	Name string `json:"card_name"`
	// Issuer names the issuing bank.
	Issuer string `json:"issuer"`
	// Rewards lists the cashback tiers.
	Rewards []CardReward `json:"rewards,omitempty"`
	// VendorOffers lists vendor-specific discounts.
	VendorOffers []VendorOffer `json:"vendor_offers,omitempty"`
	// AnnualFee is the yearly card fee.
	AnnualFee float64 `json:"annual_fee,omitempty"`
}

// Clone returns a deep copy of the card.
func (c CreditCard) Clone() CreditCard {
	clone := c

	if c.Rewards != nil {
		clone.Rewards = append([]CardReward(nil), c.Rewards...)
	}

	if c.VendorOffers != nil {
		clone.VendorOffers = append([]VendorOffer(nil), c.VendorOffers...)
	}

	return clone
}

// Wallet is a buyer's collection of credit cards.
type Wallet struct {
	Cards []CreditCard `json:"cards"`
}

// Empty reports whether the wallet holds no cards.
func (w Wallet) Empty() bool {
	return len(w.Cards) == 0
}

// Clone returns a deep copy of the wallet.
func (w Wallet) Clone() Wallet {
	if w.Cards == nil {
		return Wallet{}
	}

	cards := make([]CreditCard, 0, len(w.Cards))

	for _, card := range w.Cards {
		cards = append(cards, card.Clone())
	}

	return Wallet{Cards: cards}
}

// CardBenefit is the computed benefit of paying with a specific card.
type CardBenefit struct {
	// CardID identifies the card.
	CardID string `json:"card_id"`
	// CardName is the card's display name.
	CardName string `json:"card_name"`
	// CashbackPct is the applied cashback percentage.
	CashbackPct float64 `json:"cashback_pct"`
	// CashbackAmount is the cashback in absolute terms.
	CashbackAmount float64 `json:"cashback_amount"`
	// VendorDiscountPct is the applied vendor discount percentage.
	VendorDiscountPct float64 `json:"vendor_discount_pct"`
	// VendorDiscountAmount is the vendor discount in absolute terms,
	// after the offer's cap.
	VendorDiscountAmount float64 `json:"vendor_discount_amount"`
	// EffectivePrice is the total price after all savings.
	EffectivePrice float64 `json:"effective_price"`
	// TotalSavings is cashback plus vendor discount.
	TotalSavings float64 `json:"total_savings"`
	// Explanation is a human-readable summary of the benefit.
	Explanation string `json:"explanation"`
}
