package renderer

import (
	"testing"
	"time"

	"github.com/etnz/retirement"
	"github.com/etnz/retirement/date"
	"github.com/etnz/retirement/lotcsv"
	"github.com/etnz/retirement/market"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func sampleLots() []retirement.Lot {
	return []retirement.Lot{
		{
			ID:        "tx_98765",
			Asset:     "BTC",
			Quantity:  retirement.Q(decimal.RequireFromString("1.2")),
			CostBasis: retirement.Dollars(68000),
			Acquired:  date.MustParse("2021-11-10"),
			Location:  "Cold Wallet",
		},
		{
			ID:        "tx_12345",
			Asset:     "BTC",
			Quantity:  retirement.Q(decimal.RequireFromString("2.5")),
			CostBasis: retirement.Dollars(42000),
			Acquired:  date.MustParse("2024-01-15"),
		},
	}
}

func TestSellInstruction(t *testing.T) {
	plan := retirement.SelectHIFO(retirement.Dollars(25000), retirement.Dollars(65000), sampleLots())

	got := SellInstruction(plan)

	want := `STRATEGY ALERT:

Action: SELL RECOMMENDED

Asset: BTC
Target Lot: tx_98765
Amount: 0.38461538
Cost Basis: $68,000.00
Reason: High cost basis detected. Minimizes capital gains.
Location: Cold Wallet
Est. Gain/Loss: -$1,153.85`
	assert.Equal(t, want, got)
}

func TestSellInstruction_Empty(t *testing.T) {
	assert.Equal(t, "No sales required at this time.", SellInstruction(nil))
}

func TestSellInstruction_UnknownLocation(t *testing.T) {
	lots := sampleLots()
	plan := retirement.SelectHIFO(retirement.Dollars(100000), retirement.Dollars(65000), lots)

	got := SellInstruction(plan)

	assert.Contains(t, got, "Target Lot: tx_12345")
	assert.Contains(t, got, "Location: Unknown")
}

func TestPlanMarkdown(t *testing.T) {
	price := retirement.Dollars(65000)
	plan := retirement.SelectHIFO(retirement.Dollars(100000), price, sampleLots())

	got := PlanMarkdown(plan, price, date.MustParse("2024-06-01"))

	assert.Contains(t, got, "| BTC | tx_98765 | 1.2 | $68,000.00 | 2021-11-10 | long | -$3,600.00 | Cold Wallet |")
	assert.Contains(t, got, "| BTC | tx_12345 | 0.33846154 | $42,000.00 | 2024-01-15 | short | +$7,784.62 | - |")
	assert.Contains(t, got, "| **Total** | | | | | | **+$4,184.62** | |")
	assert.Contains(t, got, "Proceeds at $65,000.00: $100,000.00")
}

func TestPlanMarkdown_Empty(t *testing.T) {
	got := PlanMarkdown(nil, retirement.Dollars(65000), date.MustParse("2024-06-01"))
	assert.Equal(t, "No sales required at this time.\n", got)
}

func TestDecisionMarkdown(t *testing.T) {
	price := retirement.Dollars(65000)
	on := date.MustParse("2024-06-01")
	d := retirement.Decision{
		Action:    retirement.RefillBuffer,
		Date:      on,
		Before:    retirement.Dollars(95000),
		After:     retirement.Dollars(120000),
		Target:    retirement.Dollars(120000),
		Threshold: retirement.Dollars(96000),
		Needed:    retirement.Dollars(25000),
		ToSell:    map[string]retirement.Quantity{"BTC": retirement.Q(decimal.RequireFromString("0.38461538"))},
		Plan:      retirement.SelectHIFO(retirement.Dollars(25000), price, sampleLots()),
	}

	got := DecisionMarkdown(d, price)

	assert.Contains(t, got, "# Buffer Decision on 2024-06-01")
	assert.Contains(t, got, "**Action: REFILL_BUFFER**")
	assert.Contains(t, got, "| Needed | $25,000.00 |")
	assert.Contains(t, got, "## Sales")
	assert.Contains(t, got, "- 0.38461538 BTC")
	assert.NotContains(t, got, "## Warnings")
}

func TestDecisionMarkdown_Hold(t *testing.T) {
	d := retirement.Decision{
		Action:    retirement.Hold,
		Date:      date.MustParse("2024-06-01"),
		Before:    retirement.Dollars(120000),
		After:     retirement.Dollars(110000),
		Target:    retirement.Dollars(120000),
		Threshold: retirement.Dollars(96000),
		Warnings:  []string{"Insufficient ETH: need 1, available 0."},
	}

	got := DecisionMarkdown(d, retirement.Dollars(65000))

	assert.Contains(t, got, "**Action: HOLD**")
	assert.NotContains(t, got, "| Needed |")
	assert.NotContains(t, got, "## Sales")
	assert.Contains(t, got, "## Warnings\n\n- Insufficient ETH: need 1, available 0.\n")
}

func TestSimulationMarkdown(t *testing.T) {
	start := date.MustParse("2024-01-31")
	b, err := retirement.NewBuffer(retirement.Dollars(10000), 1, retirement.Dollars(120000),
		retirement.WithLots(retirement.NewLots(sampleLots()...)))
	assert.NoError(t, err)

	got := SimulationMarkdown(b.Simulate(6, retirement.Dollars(65000), retirement.Q(10), start))

	assert.Contains(t, got, "# Buffer Simulation")
	assert.Contains(t, got, "| 2024-02-29 | HOLD |")
	assert.Contains(t, got, "6 periods: 4 hold, 2 refill, 0 insufficient funds.")
}

func TestSimulationMarkdown_Empty(t *testing.T) {
	assert.Contains(t, SimulationMarkdown(nil), "No period simulated.")
}

func TestAnalysisMarkdown(t *testing.T) {
	holdings := []retirement.Holding{
		{Asset: "BTC", Quantity: retirement.Q(2), AvgCost: retirement.Dollars(50000), Price: retirement.Dollars(60000)},
		{Asset: "USDC", Quantity: retirement.Q(10000), AvgCost: retirement.Dollars(1), Price: retirement.Dollars(1)},
	}

	got := AnalysisMarkdown(retirement.Analyze(holdings))

	assert.Contains(t, got, "# Portfolio Analysis")
	assert.Contains(t, got, "| Total Value | $130,000.00 |")
	assert.Contains(t, got, "| Unrealized P&L | +$20,000.00 |")
	assert.Contains(t, got, "## Top Holdings")
	assert.Contains(t, got, "| BTC | $120,000.00 | 92.31% |")
	assert.Contains(t, got, "## Recommendations")
}

func TestAnalysisMarkdown_Empty(t *testing.T) {
	got := AnalysisMarkdown(retirement.Analyze(nil))
	assert.Contains(t, got, "The portfolio is empty.")
	assert.NotContains(t, got, "Top Holdings")
}

func TestExitMarkdown(t *testing.T) {
	holdings := []retirement.Holding{
		{Asset: "BTC", Quantity: retirement.Q(10), AvgCost: retirement.Dollars(20000), Price: retirement.Dollars(60000)},
	}
	a := retirement.Analyze(holdings)
	plan := retirement.NewExitPlan(retirement.Dollars(500000), 65, retirement.Moderate, retirement.Gradual)
	in := retirement.ExitInputs{Analysis: a}
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	got := ExitMarkdown(plan, in, plan.Recommend(in, holdings, now))

	assert.Contains(t, got, "# Exit Strategy")
	assert.Contains(t, got, "Goal: $500,000.00 by age 65, risk tolerance: moderate")
	assert.Contains(t, got, "## Triggers")
	assert.Contains(t, got, "**yes**")
	assert.Contains(t, got, "Sell: 2.5 BTC")
	assert.Contains(t, got, "Deadline: 2024-06-08")
}

func TestExitMarkdown_NoRecommendation(t *testing.T) {
	plan := retirement.NewExitPlan(retirement.Dollars(500000), 65, retirement.Moderate, retirement.Gradual)
	got := ExitMarkdown(plan, retirement.ExitInputs{}, nil)
	assert.Contains(t, got, "No exit condition met. Hold.")
}

func TestExitMarkdown_UnknownAge(t *testing.T) {
	plan := retirement.NewExitPlan(retirement.Dollars(500000), 0, retirement.Moderate, retirement.Gradual)
	got := ExitMarkdown(plan, retirement.ExitInputs{}, nil)
	assert.Contains(t, got, "Goal: $500,000.00, risk tolerance: moderate")
	assert.NotContains(t, got, "by age")
}

func TestSignalMarkdown(t *testing.T) {
	d := market.Fallback(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	got := SignalMarkdown(d, market.NewSignal(&d))

	assert.Contains(t, got, "# Market Signal on 2024-06-01 12:00")
	assert.Contains(t, got, "fallback snapshot")
	assert.Contains(t, got, "| BTC | $52,500.00 |")
	assert.Contains(t, got, "**Condition: sideways** (confidence 60%)")
	assert.Contains(t, got, "Action: hold")
}

func TestValidationMarkdown(t *testing.T) {
	ok := ValidationMarkdown("lots.csv", lotcsv.Report{Valid: true})
	assert.Equal(t, "# Validation of lots.csv\n\nValid: yes\n", ok)

	bad := ValidationMarkdown("lots.csv", lotcsv.Report{Errors: []string{"Missing required columns: date"}})
	assert.Contains(t, bad, "Valid: no")
	assert.Contains(t, bad, "- Missing required columns: date")
}

func TestTaxEfficiencyMarkdown(t *testing.T) {
	got := TaxEfficiencyMarkdown(retirement.RateTaxEfficiency(sampleLots()))
	assert.Contains(t, got, "Tax efficiency: ")
}
