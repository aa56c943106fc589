package core

import "fmt"

// BuyerConstraints captures what the buyer wants to purchase and the price
// band they are willing to pay. MaxPricePerUnit is a hard ceiling; no code
// path accepts an offer above it.
type BuyerConstraints struct {
	// ProductID is a stable catalog identifier. When set, inventory
	// matching prefers identity over name equality.
	ProductID string `json:"product_id,omitempty"`
	// ItemName is the human-readable item name.
	ItemName string `json:"item_name"`
	// Variant narrows the match to a specific variant. Optional.
	Variant string `json:"variant,omitempty"`
	// SizeValue is the required numeric size, nil when any size works.
	SizeValue *float64 `json:"size_value,omitempty"`
	// SizeUnit is the unit of SizeValue.
	SizeUnit string `json:"size_unit,omitempty"`
	// QuantityNeeded is the number of units the buyer wants.
	QuantityNeeded int `json:"quantity_needed"`
	// MinPricePerUnit anchors the expected price band.
	MinPricePerUnit float64 `json:"min_price_per_unit"`
	// MaxPricePerUnit is the absolute budget ceiling per unit.
	MaxPricePerUnit float64 `json:"max_price_per_unit"`
}

// Validate checks the constraint invariants.
func (c BuyerConstraints) Validate() error {
	if c.ItemName == "" {
		return fmt.Errorf("buyer constraints: item name must not be empty")
	}

	if c.QuantityNeeded < 1 {
		return fmt.Errorf("buyer constraints: quantity needed must be at least 1, got %d", c.QuantityNeeded)
	}

	if c.MinPricePerUnit < 0 {
		return fmt.Errorf("buyer constraints: min price must not be negative")
	}

	if c.MaxPricePerUnit < c.MinPricePerUnit {
		return fmt.Errorf("buyer constraints: max price %.2f is below min price %.2f", c.MaxPricePerUnit, c.MinPricePerUnit)
	}

	return nil
}

// Clone returns a deep copy of the constraints.
func (c BuyerConstraints) Clone() BuyerConstraints {
	clone := c

	if c.SizeValue != nil {
		value := *c.SizeValue
		clone.SizeValue = &value
	}

	return clone
}

// TargetPrice is the price the buyer pushes toward, 30% into the band
// between the minimum and maximum price.
func (c BuyerConstraints) TargetPrice() float64 {
	return c.MinPricePerUnit + (c.MaxPricePerUnit-c.MinPricePerUnit)*0.3
}

// OpeningPrice is the buyer's suggested first offer, 10% into the band
// between the minimum and maximum price.
func (c BuyerConstraints) OpeningPrice() float64 {
	return c.MinPricePerUnit + (c.MaxPricePerUnit-c.MinPricePerUnit)*0.1
}
