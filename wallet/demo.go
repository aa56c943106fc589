package wallet

// DemoWallet returns a sample wallet with four widely known cards. It backs
// the demo endpoints and the examples.
func DemoWallet() Wallet {
	return Wallet{Cards: []CreditCard{
		{
			ID:     "chase_sapphire",
			Name:   "Chase Sapphire Preferred",
			Issuer: "Chase",
			Rewards: []CardReward{
				{Category: "dining", CashbackPct: 3.0},
				{Category: "travel", CashbackPct: 5.0},
				{Category: "online_shopping", CashbackPct: 2.0},
				{Category: "general", CashbackPct: 1.0},
			},
			VendorOffers: []VendorOffer{
				{VendorKeyword: "Amazon", DiscountPct: 5.0, MaxDiscount: 25.0, Description: "5% off Amazon purchases up to $25"},
			},
			AnnualFee: 95.0,
		},
		{
			ID:     "amex_blue",
			Name:   "Amex Blue Cash Preferred",
			Issuer: "American Express",
			Rewards: []CardReward{
				{Category: "groceries", CashbackPct: 6.0},
				{Category: "electronics", CashbackPct: 3.0},
				{Category: "online_shopping", CashbackPct: 3.0},
				{Category: "general", CashbackPct: 1.0},
			},
			VendorOffers: []VendorOffer{
				{VendorKeyword: "BestBuy", DiscountPct: 10.0, MaxDiscount: 50.0, Description: "10% off Best Buy up to $50"},
				{VendorKeyword: "Tech", DiscountPct: 5.0, MaxDiscount: 30.0, Description: "5% off tech retailers up to $30"},
			},
			AnnualFee: 95.0,
		},
		{
			ID:     "citi_double",
			Name:   "Citi Double Cash",
			Issuer: "Citi",
			Rewards: []CardReward{
				{Category: "general", CashbackPct: 2.0, Description: "2% on everything (1% purchase + 1% payment)"},
			},
			AnnualFee: 0.0,
		},
		{
			ID:     "discover_it",
			Name:   "Discover it Cash Back",
			Issuer: "Discover",
			Rewards: []CardReward{
				{Category: "electronics", CashbackPct: 5.0, Description: "5% rotating category - electronics this quarter"},
				{Category: "general", CashbackPct: 1.0},
			},
			VendorOffers: []VendorOffer{
				{VendorKeyword: "Walmart", DiscountPct: 5.0, MaxDiscount: 20.0},
			},
			AnnualFee: 0.0,
		},
	}}
}
