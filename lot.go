package retirement

import (
	"slices"

	"github.com/etnz/retirement/date"
)

// Lot is a tax lot: a single acquisition of an asset, the atomic unit of
// sale selection.
type Lot struct {
	ID        string
	Asset     string
	Quantity  Quantity
	CostBasis Money     // per unit
	Acquired  date.Date // zero when unknown
	Fee       Money
	Location  string
	Notes     string
}

// TotalCost returns the cost of the whole lot including the fee paid.
func (l Lot) TotalCost() Money {
	return l.CostBasis.Mul(l.Quantity).Add(l.Fee)
}

// Lots is an immutable store of tax lots as they were loaded.
//
// Selling never mutates the store: a sale plan is a computed output, and lot
// depletion across periods is not tracked.
type Lots struct {
	lots []Lot
}

// NewLots returns a store holding a copy of lots, in order.
func NewLots(lots ...Lot) Lots {
	return Lots{lots: slices.Clone(lots)}
}

// All returns a copy of the lots in load order.
func (s Lots) All() []Lot { return slices.Clone(s.lots) }

// Len returns the number of lots.
func (s Lots) Len() int { return len(s.lots) }

// IsEmpty reports whether the store holds no lot at all.
func (s Lots) IsEmpty() bool { return len(s.lots) == 0 }

// Reload replaces the whole content of the store.
func (s *Lots) Reload(lots ...Lot) { s.lots = slices.Clone(lots) }

// Asset returns the lots of a single asset, in load order.
func (s Lots) Asset(asset string) []Lot {
	var res []Lot
	for _, l := range s.lots {
		if l.Asset == asset {
			res = append(res, l)
		}
	}
	return res
}

// Position returns the total quantity held per asset.
func (s Lots) Position() map[string]Quantity {
	res := make(map[string]Quantity)
	for _, l := range s.lots {
		res[l.Asset] = res[l.Asset].Add(l.Quantity)
	}
	return res
}
