package testutil

import (
	"github.com/hupe1980/haggle/core"
)

// RoomBuilder helps construct negotiation rooms with fluent chaining for
// tests. Example:
//
//	room := NewRoomBuilder().
//		Item("Laptop", 2, 500, 900).
//		Seller("seller_1", "TechStore", Item("Laptop", 400, 550, 800, 10)).
//		MaxRounds(5).
//		Build()
type RoomBuilder struct {
	buyerID     string
	buyerName   string
	sessionID   string
	constraints core.BuyerConstraints
	sellers     []core.Seller
	maxRounds   int
	seed        *int64
}

// NewRoomBuilder creates a builder with a default buyer and laptop
// constraints. Chain only the parts you need, then call Build.
func NewRoomBuilder() *RoomBuilder {
	return &RoomBuilder{
		buyerID:   "buyer_1",
		buyerName: "Test Buyer",
		constraints: core.BuyerConstraints{
			ItemName:        "Laptop",
			QuantityNeeded:  2,
			MinPricePerUnit: 500,
			MaxPricePerUnit: 900,
		},
		maxRounds: 10,
	}
}

// Buyer sets the buyer identity (chainable).
func (b *RoomBuilder) Buyer(id, name string) *RoomBuilder {
	b.buyerID = id
	b.buyerName = name
	return b
}

// Session links the room to a wallet session (chainable).
func (b *RoomBuilder) Session(id string) *RoomBuilder {
	b.sessionID = id
	return b
}

// Constraints replaces the buyer constraints wholesale (chainable).
func (b *RoomBuilder) Constraints(c core.BuyerConstraints) *RoomBuilder {
	b.constraints = c
	return b
}

// Item sets the constraint essentials in one call (chainable).
func (b *RoomBuilder) Item(name string, quantity int, minPrice, maxPrice float64) *RoomBuilder {
	b.constraints.ItemName = name
	b.constraints.QuantityNeeded = quantity
	b.constraints.MinPricePerUnit = minPrice
	b.constraints.MaxPricePerUnit = maxPrice
	return b
}

// Seller appends a seller with the given inventory (chainable).
func (b *RoomBuilder) Seller(id, name string, inventory ...core.InventoryItem) *RoomBuilder {
	b.sellers = append(b.sellers, core.Seller{
		ID:   id,
		Name: name,
		Profile: core.SellerProfile{
			Priority:      core.PriorityMaximizeProfit,
			SpeakingStyle: core.SpeakingStyleProfessional,
			Strategy:      core.StrategyFirmPricing,
		},
		Inventory: inventory,
	})
	return b
}

// SellerWith appends a fully specified seller (chainable).
func (b *RoomBuilder) SellerWith(s core.Seller) *RoomBuilder {
	b.sellers = append(b.sellers, s)
	return b
}

// MaxRounds caps the negotiation length (chainable).
func (b *RoomBuilder) MaxRounds(n int) *RoomBuilder {
	b.maxRounds = n
	return b
}

// Seed pins the room's presentation seed (chainable).
func (b *RoomBuilder) Seed(n int64) *RoomBuilder {
	b.seed = &n
	return b
}

// Build returns a *core.Room assembled from the builder state.
func (b *RoomBuilder) Build() *core.Room {
	optFns := []func(o *core.RoomOptions){
		func(o *core.RoomOptions) {
			o.MaxRounds = b.maxRounds
			o.SessionID = b.sessionID
		},
	}

	if b.seed != nil {
		seed := *b.seed
		optFns = append(optFns, func(o *core.RoomOptions) { o.Seed = &seed })
	}

	return core.NewRoom(b.buyerID, b.buyerName, b.constraints, b.sellers, optFns...)
}

// Item builds an inventory item with the usual price ladder in one call.
func Item(name string, cost, least, selling float64, quantity int) core.InventoryItem {
	return core.InventoryItem{
		ItemName:          name,
		CostPrice:         cost,
		LeastPrice:        least,
		SellingPrice:      selling,
		QuantityAvailable: quantity,
	}
}
