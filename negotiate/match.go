package negotiate

import (
	"strings"

	"github.com/hupe1980/haggle/core"
)

// MatchInventory returns the first inventory item of the seller that
// strictly matches the buyer's constraints. When both sides carry a
// product id the ids must be equal; otherwise the item name must match
// case-insensitively after trimming. Variant and size gate the match in
// either path. There is no partial or fuzzy matching, so a near miss on
// variant or size never cross-sells the wrong SKU.
func MatchInventory(seller core.Seller, constraints core.BuyerConstraints) (core.InventoryItem, bool) {
	for _, item := range seller.Inventory {
		if constraints.ProductID != "" && item.ProductID != "" {
			if item.ProductID == constraints.ProductID &&
				variantMatch(constraints.Variant, item.Variant) &&
				sizeMatch(constraints.SizeValue, constraints.SizeUnit, item.SizeValue, item.SizeUnit) {
				return item.Clone(), true
			}

			continue
		}

		if normalizeName(item.ItemName) == normalizeName(constraints.ItemName) &&
			variantMatch(constraints.Variant, item.Variant) &&
			sizeMatch(constraints.SizeValue, constraints.SizeUnit, item.SizeValue, item.SizeUnit) {
			return item.Clone(), true
		}
	}

	return core.InventoryItem{}, false
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// variantMatch gates a buyer variant against a seller variant. A buyer
// without a variant accepts anything; a buyer with one requires the
// seller to carry a matching variant.
func variantMatch(buyerVariant, sellerVariant string) bool {
	if buyerVariant == "" {
		return true
	}

	if sellerVariant == "" {
		return false
	}

	return normalizeName(buyerVariant) == normalizeName(sellerVariant)
}

// sizeMatch gates buyer size requirements against a seller item. A
// buyer with neither value nor unit accepts anything; otherwise both
// the numeric value and the unit must match exactly.
func sizeMatch(buyerValue *float64, buyerUnit string, sellerValue *float64, sellerUnit string) bool {
	if buyerValue == nil && buyerUnit == "" {
		return true
	}

	if sellerValue == nil || sellerUnit == "" {
		return false
	}

	if buyerValue == nil || *buyerValue != *sellerValue {
		return false
	}

	return normalizeName(buyerUnit) == normalizeName(sellerUnit)
}
