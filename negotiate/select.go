package negotiate

import (
	"fmt"

	"github.com/hupe1980/haggle/core"
)

// Skip reason codes reported by SelectSellers.
const (
	// SkipNoInventory means no inventory item matched the constraints.
	SkipNoInventory = "no_inventory"
	// SkipInsufficientQuantity means the seller cannot cover the needed
	// quantity.
	SkipInsufficientQuantity = "insufficient_quantity"
	// SkipPriceMismatch means the seller's price band cannot overlap the
	// buyer's.
	SkipPriceMismatch = "price_mismatch"
)

// SkipReason explains why a seller was excluded from a negotiation.
type SkipReason struct {
	SellerID   string `json:"seller_id"`
	SellerName string `json:"seller_name"`
	ReasonCode string `json:"reason_code"`
	Details    string `json:"details,omitempty"`
}

// SelectSellers partitions sellers into those that can participate in a
// negotiation for the buyer's item and those that cannot, with a reason
// per skipped seller. A seller participates when it stocks a strictly
// matching item, can cover the needed quantity, and its price band
// overlaps the buyer's: its floor must not exceed the buyer's maximum
// and its list price must reach the buyer's minimum.
func SelectSellers(sellers []core.Seller, constraints core.BuyerConstraints) ([]core.Seller, []SkipReason) {
	participating := make([]core.Seller, 0, len(sellers))

	var skipped []SkipReason

	for _, seller := range sellers {
		item, ok := MatchInventory(seller, constraints)
		if !ok {
			skipped = append(skipped, SkipReason{
				SellerID:   seller.ID,
				SellerName: seller.Name,
				ReasonCode: SkipNoInventory,
			})

			continue
		}

		if item.QuantityAvailable < constraints.QuantityNeeded {
			skipped = append(skipped, SkipReason{
				SellerID:   seller.ID,
				SellerName: seller.Name,
				ReasonCode: SkipInsufficientQuantity,
				Details:    fmt.Sprintf("Available: %d, Needed: %d", item.QuantityAvailable, constraints.QuantityNeeded),
			})

			continue
		}

		overlap := item.LeastPrice <= constraints.MaxPricePerUnit &&
			item.SellingPrice >= constraints.MinPricePerUnit

		if !overlap {
			skipped = append(skipped, SkipReason{
				SellerID:   seller.ID,
				SellerName: seller.Name,
				ReasonCode: SkipPriceMismatch,
				Details: fmt.Sprintf(
					"Seller range: $%.2f-$%.2f, Buyer range: $%.2f-$%.2f",
					item.LeastPrice, item.SellingPrice,
					constraints.MinPricePerUnit, constraints.MaxPricePerUnit,
				),
			})

			continue
		}

		participating = append(participating, seller)
	}

	return participating, skipped
}
