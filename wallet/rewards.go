package wallet

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// categoryMap maps item name keywords to reward categories. The first
// matching keyword wins; unmatched items fall into "general".
var categoryMap = []struct {
	keyword  string
	category string
}{
	{"laptop", "electronics"},
	{"phone", "electronics"},
	{"tablet", "electronics"},
	{"computer", "electronics"},
	{"monitor", "electronics"},
	{"keyboard", "electronics"},
	{"mouse", "electronics"},
	{"headphones", "electronics"},
	{"camera", "electronics"},
	{"tv", "electronics"},
	{"speaker", "electronics"},
	{"console", "electronics"},
	{"gpu", "electronics"},
	{"ram", "electronics"},
	{"ssd", "electronics"},
	{"furniture", "home"},
	{"chair", "home"},
	{"desk", "home"},
	{"sofa", "home"},
	{"mattress", "home"},
	{"lamp", "home"},
	{"book", "books"},
	{"textbook", "books"},
	{"clothing", "fashion"},
	{"shoes", "fashion"},
	{"jacket", "fashion"},
	{"food", "dining"},
	{"restaurant", "dining"},
	{"grocery", "groceries"},
}

// DetectCategory maps an item name to its reward category.
func DetectCategory(itemName string) string {
	itemLower := strings.ToLower(itemName)

	for _, entry := range categoryMap {
		if strings.Contains(itemLower, entry.keyword) {
			return entry.category
		}
	}

	return "general"
}

// BestCard computes the card with the highest total savings for a purchase.
// It returns nil for an empty wallet.
func BestCard(w Wallet, itemName, sellerName string, price float64, quantity int) *CardBenefit {
	if w.Empty() {
		return nil
	}

	totalPrice := price * float64(quantity)
	category := DetectCategory(itemName)

	var best *CardBenefit

	for _, card := range w.Cards {
		benefit := cardBenefit(card, category, sellerName, totalPrice, true)

		if best == nil || benefit.TotalSavings > best.TotalSavings {
			best = &benefit
		}
	}

	return best
}

// AllCards computes benefits for every card in the wallet, best first.
func AllCards(w Wallet, itemName, sellerName string, price float64, quantity int) []CardBenefit {
	if w.Empty() {
		return nil
	}

	totalPrice := price * float64(quantity)
	category := DetectCategory(itemName)

	benefits := make([]CardBenefit, 0, len(w.Cards))

	for _, card := range w.Cards {
		benefits = append(benefits, cardBenefit(card, category, sellerName, totalPrice, false))
	}

	sort.SliceStable(benefits, func(i, j int) bool {
		return benefits[i].TotalSavings > benefits[j].TotalSavings
	})

	return benefits
}

// cardBenefit computes one card's benefit for a purchase. The best matching
// reward tier applies (category or general, whichever pays more) plus the
// first vendor offer whose keyword appears in the seller name.
func cardBenefit(card CreditCard, category, sellerName string, totalPrice float64, nameInExplanation bool) CardBenefit {
	cashbackPct := 0.0

	for _, reward := range card.Rewards {
		if reward.Category == category || reward.Category == "general" {
			if reward.CashbackPct > cashbackPct {
				cashbackPct = reward.CashbackPct
			}
		}
	}

	cashbackAmount := totalPrice * (cashbackPct / 100.0)

	vendorDiscountPct := 0.0
	vendorDiscountAmount := 0.0
	sellerLower := strings.ToLower(sellerName)

	for _, offer := range card.VendorOffers {
		if strings.Contains(sellerLower, strings.ToLower(offer.VendorKeyword)) {
			vendorDiscountPct = offer.DiscountPct
			vendorDiscountAmount = totalPrice * (vendorDiscountPct / 100.0)

			if offer.MaxDiscount > 0 {
				vendorDiscountAmount = math.Min(vendorDiscountAmount, offer.MaxDiscount)
			}

			break
		}
	}

	totalSavings := cashbackAmount + vendorDiscountAmount
	effectivePrice := totalPrice - totalSavings

	var parts []string

	if cashbackPct > 0 {
		parts = append(parts, fmt.Sprintf("%.1f%% cashback on %s ($%.2f)", cashbackPct, category, cashbackAmount))
	}

	if vendorDiscountPct > 0 {
		if nameInExplanation {
			parts = append(parts, fmt.Sprintf("%.1f%% vendor offer with %s ($%.2f)", vendorDiscountPct, sellerName, vendorDiscountAmount))
		} else {
			parts = append(parts, fmt.Sprintf("%.1f%% vendor offer ($%.2f)", vendorDiscountPct, vendorDiscountAmount))
		}
	}

	explanation := fmt.Sprintf("No special rewards with %s", card.Name)
	if len(parts) > 0 {
		explanation = fmt.Sprintf("Using %s: %s", card.Name, strings.Join(parts, ", "))
	}

	return CardBenefit{
		CardID:               card.ID,
		CardName:             card.Name,
		CashbackPct:          cashbackPct,
		CashbackAmount:       round2(cashbackAmount),
		VendorDiscountPct:    vendorDiscountPct,
		VendorDiscountAmount: round2(vendorDiscountAmount),
		EffectivePrice:       round2(effectivePrice),
		TotalSavings:         round2(totalSavings),
		Explanation:          explanation,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
