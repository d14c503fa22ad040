package retirement

import (
	"github.com/etnz/retirement/date"
	"github.com/shopspring/decimal"
)

// D is a helper for test to create decimals from literals.
func D(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// sampleLots returns the two lots of the reference scenario: a lot bought at
// the 2021 peak and a cheaper one from 2024.
func sampleLots() []Lot {
	return []Lot{
		{
			ID:        "tx_98765",
			Asset:     "BTC",
			Quantity:  Q(D("1.2")),
			CostBasis: Dollars(68000),
			Acquired:  date.MustParse("2021-11-10"),
			Fee:       Dollars(D("15.00")),
			Location:  "Cold Wallet",
		},
		{
			ID:        "tx_12345",
			Asset:     "BTC",
			Quantity:  Q(D("2.5")),
			CostBasis: Dollars(42000),
			Acquired:  date.MustParse("2024-01-15"),
			Fee:       Dollars(D("5.50")),
			Location:  "Coinbase",
		},
	}
}
