package retirement

import (
	"slices"

	"github.com/etnz/retirement/date"
)

// ManualLotID identifies the synthetic sale emitted when no lot data is
// available.
const ManualLotID = "manual"

// DefaultAsset is the asset sold when nothing else is specified.
const DefaultAsset = "BTC"

// Sale is an instruction to sell some quantity of a single lot.
type Sale struct {
	LotID     string
	Asset     string
	Quantity  Quantity
	CostBasis Money // per unit, copied from the lot
	GainLoss  Money // realized at the sale price
	Acquired  date.Date
	Location  string
}

// Plan is an ordered sequence of sales.
type Plan []Sale

// Proceeds returns the cash raised by the plan at the given price.
func (p Plan) Proceeds(price Money) Money {
	total := M(0, price.Currency())
	for _, s := range p {
		total = total.Add(price.Mul(s.Quantity))
	}
	return total
}

// GainLoss returns the total realized gain (or loss when negative).
func (p Plan) GainLoss() Money {
	var total Money
	for _, s := range p {
		total = total.Add(s.GainLoss)
	}
	return total
}

// Quantities returns the total quantity sold per asset.
func (p Plan) Quantities() map[string]Quantity {
	res := make(map[string]Quantity)
	for _, s := range p {
		res[s.Asset] = res[s.Asset].Add(s.Quantity)
	}
	return res
}

// Selector turns a cash target into a concrete sale plan.
type Selector struct {
	Method CostBasisMethod
	// Asset is the asset of the synthetic sale emitted without lot data.
	Asset string
}

// SelectHIFO selects lots highest cost basis first.
func SelectHIFO(target, price Money, lots []Lot) Plan {
	return Selector{Method: HIFO}.Select(target, price, lots)
}

// Select returns the sales raising target at price.
//
// Lots are consumed whole while their value fits in the remaining need, then
// a single lot is sold partially and selection stops. When lots cannot cover
// the target the plan holds everything obtainable; detecting the shortfall is
// left to the caller (see Plan.Proceeds).
//
// Without any lot, a single tax-unaware sale of target/price units is
// returned. Select never modifies lots.
func (s Selector) Select(target, price Money, lots []Lot) Plan {
	if !price.IsPositive() {
		return nil
	}
	if len(lots) == 0 {
		asset := s.Asset
		if asset == "" {
			asset = DefaultAsset
		}
		if target.IsNegative() {
			target = M(0, target.Currency())
		}
		return Plan{{
			LotID:     ManualLotID,
			Asset:     asset,
			Quantity:  target.DivPrice(price).Round(QuantityPlaces),
			CostBasis: M(0, price.Currency()),
			GainLoss:  M(0, price.Currency()),
		}}
	}

	ordered := s.order(lots)

	var plan Plan
	remaining := target
	for _, lot := range ordered {
		if !remaining.IsPositive() {
			break
		}
		value := price.Mul(lot.Quantity)
		quantity := lot.Quantity
		if value.LessThanOrEqual(remaining) {
			remaining = remaining.Sub(value)
		} else {
			quantity = remaining.DivPrice(price)
			remaining = M(0, remaining.Currency())
		}
		plan = append(plan, newSale(lot, quantity.Round(QuantityPlaces), price))
	}
	return plan
}

// order returns a sorted copy of lots according to the method. Sorting is
// stable so that ties keep the load order.
func (s Selector) order(lots []Lot) []Lot {
	ordered := slices.Clone(lots)
	switch s.Method {
	case FIFO:
		slices.SortStableFunc(ordered, func(a, b Lot) int {
			switch {
			case a.Acquired.Before(b.Acquired):
				return -1
			case a.Acquired.After(b.Acquired):
				return 1
			}
			return 0
		})
	default:
		slices.SortStableFunc(ordered, func(a, b Lot) int {
			return b.CostBasis.Decimal().Cmp(a.CostBasis.Decimal())
		})
	}
	return ordered
}

func newSale(lot Lot, quantity Quantity, price Money) Sale {
	return Sale{
		LotID:     lot.ID,
		Asset:     lot.Asset,
		Quantity:  quantity,
		CostBasis: lot.CostBasis,
		GainLoss:  price.Sub(lot.CostBasis).Mul(quantity),
		Acquired:  lot.Acquired,
		Location:  lot.Location,
	}
}
