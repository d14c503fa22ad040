package retirement

import (
	"testing"

	"github.com/etnz/retirement/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectHIFO_PartialHighestLot(t *testing.T) {
	plan := SelectHIFO(Dollars(25000), Dollars(65000), sampleLots())

	require.Len(t, plan, 1)
	sale := plan[0]
	assert.Equal(t, "tx_98765", sale.LotID)
	assert.Equal(t, "BTC", sale.Asset)
	assert.True(t, sale.Quantity.Equal(Q(D("0.38461538"))), "quantity = %v", sale.Quantity)
	assert.True(t, sale.CostBasis.Equal(Dollars(68000)))
	assert.True(t, sale.GainLoss.Round(2).Equal(Dollars(D("-1153.85"))), "gain/loss = %v", sale.GainLoss)
	assert.Equal(t, date.MustParse("2021-11-10"), sale.Acquired)
	assert.Equal(t, "Cold Wallet", sale.Location)
}

func TestSelectHIFO_NoLots(t *testing.T) {
	plan := SelectHIFO(Dollars(1000), Dollars(50000), nil)

	require.Len(t, plan, 1)
	assert.Equal(t, ManualLotID, plan[0].LotID)
	assert.Equal(t, DefaultAsset, plan[0].Asset)
	assert.True(t, plan[0].Quantity.Equal(Q(D("0.02"))), "quantity = %v", plan[0].Quantity)
	assert.True(t, plan[0].GainLoss.IsZero())
}

func TestSelect(t *testing.T) {
	price := Dollars(65000)
	tests := []struct {
		name       string
		method     CostBasisMethod
		target     Money
		lots       []Lot
		wantIDs    []string
		wantQuants []string
	}{
		{
			name:       "whole lot then fraction",
			target:     Dollars(200000),
			lots:       sampleLots(),
			wantIDs:    []string{"tx_98765", "tx_12345"},
			wantQuants: []string{"1.2", "1.87692308"},
		},
		{
			name:       "exact lot value",
			target:     Dollars(78000),
			lots:       sampleLots(),
			wantIDs:    []string{"tx_98765"},
			wantQuants: []string{"1.2"},
		},
		{
			name:       "lots exhausted",
			target:     Dollars(1000000),
			lots:       sampleLots(),
			wantIDs:    []string{"tx_98765", "tx_12345"},
			wantQuants: []string{"1.2", "2.5"},
		},
		{
			name:    "nothing to raise",
			target:  Dollars(0),
			lots:    sampleLots(),
			wantIDs: nil,
		},
		{
			name:       "fifo sells the oldest lot",
			method:     FIFO,
			target:     Dollars(6500),
			lots:       []Lot{sampleLots()[1], sampleLots()[0]},
			wantIDs:    []string{"tx_98765"},
			wantQuants: []string{"0.1"},
		},
		{
			name:   "ties keep load order",
			target: Dollars(150000),
			lots: []Lot{
				{ID: "a", Asset: "BTC", Quantity: Q(1), CostBasis: Dollars(50000)},
				{ID: "b", Asset: "BTC", Quantity: Q(1), CostBasis: Dollars(50000)},
				{ID: "c", Asset: "BTC", Quantity: Q(1), CostBasis: Dollars(50000)},
			},
			wantIDs:    []string{"a", "b", "c"},
			wantQuants: []string{"1", "1", "0.30769231"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Selector{Method: tt.method}.Select(tt.target, price, tt.lots)
			var ids []string
			for i, s := range plan {
				ids = append(ids, s.LotID)
				if i < len(tt.wantQuants) {
					assert.True(t, s.Quantity.Equal(Q(D(tt.wantQuants[i]))), "sale %d quantity = %v, want %s", i, s.Quantity, tt.wantQuants[i])
				}
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestSelectHIFO_Properties(t *testing.T) {
	lots := []Lot{
		{ID: "1", Asset: "BTC", Quantity: Q(D("0.5")), CostBasis: Dollars(30000)},
		{ID: "2", Asset: "BTC", Quantity: Q(D("0.25")), CostBasis: Dollars(61000)},
		{ID: "3", Asset: "BTC", Quantity: Q(D("1.75")), CostBasis: Dollars(45000)},
		{ID: "4", Asset: "BTC", Quantity: Q(D("0.1")), CostBasis: Dollars(69000)},
		{ID: "5", Asset: "BTC", Quantity: Q(D("0.333")), CostBasis: Dollars(45000)},
	}
	price := Dollars(57321)

	for _, target := range []Money{Dollars(1), Dollars(5000), Dollars(D("33333.33")), Dollars(100000), Dollars(1000000)} {
		t.Run(target.String(), func(t *testing.T) {
			plan := SelectHIFO(target, price, lots)

			// never raises more than the target, beyond one quantum per sale
			tolerance := price.Mul(Quantum.Mul(Q(len(plan))))
			assert.False(t, plan.Proceeds(price).GreaterThan(target.Add(tolerance)), "proceeds %v > target %v", plan.Proceeds(price), target)

			// highest cost basis first
			for i := 1; i < len(plan); i++ {
				assert.False(t, plan[i].CostBasis.GreaterThan(plan[i-1].CostBasis), "sale %d sold before a higher basis", i)
			}

			// pure
			assert.Equal(t, plan, SelectHIFO(target, price, lots))
		})
	}
}

func TestSelect_DoesNotModifyLots(t *testing.T) {
	lots := sampleLots()
	SelectHIFO(Dollars(100000), Dollars(65000), lots)
	assert.Equal(t, sampleLots(), lots)
}

func TestSelect_InvalidPrice(t *testing.T) {
	assert.Empty(t, SelectHIFO(Dollars(1000), Dollars(0), sampleLots()))
}

func TestPlan(t *testing.T) {
	plan := SelectHIFO(Dollars(200000), Dollars(65000), sampleLots())

	q := plan.Quantities()
	assert.True(t, q["BTC"].Equal(Q(D("3.07692308"))), "BTC = %v", q["BTC"])
	// 1.2*(65000-68000) + 1.87692308*(65000-42000)
	assert.True(t, plan.GainLoss().Round(2).Equal(Dollars(D("39569.23"))), "gain = %v", plan.GainLoss())
}

func TestLots(t *testing.T) {
	src := sampleLots()
	store := NewLots(src...)
	src[0].ID = "changed"

	assert.Equal(t, 2, store.Len())
	assert.Equal(t, "tx_98765", store.All()[0].ID)
	assert.True(t, store.Position()["BTC"].Equal(Q(D("3.7"))))

	all := store.All()
	all[1].ID = "changed"
	assert.Equal(t, "tx_12345", store.All()[1].ID)

	store.Reload()
	assert.True(t, store.IsEmpty())
}

func TestLot_TotalCost(t *testing.T) {
	l := sampleLots()[0]
	assert.True(t, l.TotalCost().Equal(Dollars(D("81615"))), "total cost = %v", l.TotalCost())
}

func TestParseCostBasisMethod(t *testing.T) {
	for _, m := range []CostBasisMethod{HIFO, FIFO} {
		got, err := ParseCostBasisMethod(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseCostBasisMethod("lifo")
	assert.Error(t, err)
}
