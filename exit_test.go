package retirement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExitPlan(t *testing.T) {
	tests := []struct {
		tolerance RiskTolerance
		gain      Percent
		risk      Score
	}{
		{Conservative, 100, 50},
		{Moderate, 100, 50},
		{Aggressive, 50, 70},
	}
	for _, tt := range tests {
		t.Run(tt.tolerance.String(), func(t *testing.T) {
			p := NewExitPlan(Dollars(500000), 65, tt.tolerance, Gradual)
			assert.Equal(t, 65, p.Age)
			require.Len(t, p.Triggers, 3)
			assert.Equal(t, TargetValue{Goal: Dollars(500000)}, p.Triggers[0])
			assert.Equal(t, PercentageGain{Gain: tt.gain}, p.Triggers[1])
			assert.Equal(t, RiskThreshold{Risk: tt.risk}, p.Triggers[2])
		})
	}
}

func TestExitPlan_ShouldExit(t *testing.T) {
	p := NewExitPlan(Dollars(500000), 65, Moderate, Gradual)
	tests := []struct {
		name string
		in   ExitInputs
		want bool
	}{
		{"nothing met", ExitInputs{Analysis: Analysis{TotalValue: Dollars(100000), PnLPercent: 10, RiskScore: 20}}, false},
		{"goal reached", ExitInputs{Analysis: Analysis{TotalValue: Dollars(500000)}}, true},
		{"gain reached", ExitInputs{Analysis: Analysis{TotalValue: Dollars(1), PnLPercent: 100}}, true},
		{"risk reached", ExitInputs{Analysis: Analysis{TotalValue: Dollars(1), RiskScore: 50}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.ShouldExit(tt.in))
		})
	}

	var none *ExitPlan
	assert.False(t, none.ShouldExit(ExitInputs{Analysis: Analysis{RiskScore: 100}}))
}

func TestMarketCondition(t *testing.T) {
	trigger := MarketCondition{Condition: "bear", MinConfidence: 70}

	assert.False(t, trigger.Met(ExitInputs{}), "no signal")
	assert.False(t, trigger.Met(ExitInputs{Signal: &MarketSignal{Condition: "bear", Confidence: 60}}))
	assert.False(t, trigger.Met(ExitInputs{Signal: &MarketSignal{Condition: "bull", Confidence: 90}}))
	assert.True(t, trigger.Met(ExitInputs{Signal: &MarketSignal{Condition: "bear", Confidence: 70}}))
	assert.Equal(t, "bear@70%", trigger.Threshold())
}

func TestExitPlan_Recommend(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	p := NewExitPlan(Dollars(500000), 65, Moderate, Gradual)
	in := ExitInputs{Analysis: Analysis{TotalValue: Dollars(600000), PnLPercent: 100, RiskScore: 80}}
	holdings := []Holding{
		{Asset: "BTC", Quantity: Q(D("2.5"))},
		{Asset: "ETH", Quantity: Q(10)},
	}

	recs := p.Recommend(in, holdings, now)

	require.Len(t, recs, 3)
	r := recs[0]
	assert.Equal(t, PriorityHigh, r.Priority)
	assert.Equal(t, "Partial exit triggered: Reach retirement goal of $500,000.00", r.Action)
	assert.Equal(t, "Exit condition met: target_value >= $500,000.00", r.Reasoning)
	assert.True(t, r.Assets["BTC"].Equal(Q(D("0.625"))), "BTC = %v", r.Assets["BTC"])
	assert.True(t, r.Assets["ETH"].Equal(Q(D("2.5"))), "ETH = %v", r.Assets["ETH"])
	assert.True(t, r.Amount.Equal(Q(D("3.125"))), "amount = %v", r.Amount)
	assert.True(t, r.EstimatedTaxes.Equal(Q(D("0.63"))), "taxes = %v", r.EstimatedTaxes)
	assert.Equal(t, now.Add(7*24*time.Hour), r.Deadline)

	assert.Equal(t, "Exit condition met: risk_threshold >= 50/100", recs[2].Reasoning)
}

func TestExitPlan_RecommendFirstHoldingsOnly(t *testing.T) {
	p := NewExitPlan(Dollars(1), 65, Moderate, Gradual)
	in := ExitInputs{Analysis: Analysis{TotalValue: Dollars(10)}}
	holdings := []Holding{
		{Asset: "A", Quantity: Q(4)},
		{Asset: "B", Quantity: Q(4)},
		{Asset: "C", Quantity: Q(4)},
		{Asset: "D", Quantity: Q(4)},
	}

	recs := p.Recommend(in, holdings, time.Now())

	require.Len(t, recs, 1)
	assert.Len(t, recs[0].Assets, 3)
	assert.NotContains(t, recs[0].Assets, "D")
	assert.True(t, recs[0].Amount.Equal(Q(3)))
}

func TestExitPlan_RecommendWithoutPlan(t *testing.T) {
	var p *ExitPlan
	recs := p.Recommend(ExitInputs{}, nil, time.Now())

	require.Len(t, recs, 1)
	assert.Equal(t, "Create exit plan first", recs[0].Action)
	assert.Equal(t, PriorityHigh, recs[0].Priority)
	assert.Empty(t, recs[0].Assets)
}

func TestExitPlan_NothingToRecommend(t *testing.T) {
	p := NewExitPlan(Dollars(500000), 65, Moderate, Gradual)
	assert.Empty(t, p.Recommend(ExitInputs{Analysis: Analysis{TotalValue: Dollars(10)}}, nil, time.Now()))
}

func TestParseRiskTolerance(t *testing.T) {
	for _, r := range []RiskTolerance{Conservative, Moderate, Aggressive} {
		got, err := ParseRiskTolerance(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
	got, err := ParseRiskTolerance("")
	require.NoError(t, err)
	assert.Equal(t, Moderate, got)

	_, err = ParseRiskTolerance("reckless")
	assert.Error(t, err)
}

func TestParseExitMethod(t *testing.T) {
	for _, m := range []ExitMethod{Immediate, Gradual, DollarCostAverage, Ladder, SmartExit} {
		got, err := ParseExitMethod(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	got, err := ParseExitMethod("dca")
	require.NoError(t, err)
	assert.Equal(t, DollarCostAverage, got)

	_, err = ParseExitMethod("panic")
	assert.Error(t, err)
}
