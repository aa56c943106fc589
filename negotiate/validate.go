package negotiate

import (
	"github.com/hupe1980/haggle/core"
)

// ValidOffer reports whether an offer satisfies the buyer's hard
// constraints: the price ceiling, the price floor, and the needed
// quantity. The ceiling is enforced here, outside of any model
// judgment, so no offer above the buyer's stated maximum can ever be
// accepted downstream.
func ValidOffer(offer core.Offer, constraints core.BuyerConstraints) bool {
	if offer.Price > constraints.MaxPricePerUnit {
		return false
	}

	if offer.Price < constraints.MinPricePerUnit {
		return false
	}

	return offer.Quantity <= constraints.QuantityNeeded
}
