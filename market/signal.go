package market

import (
	"context"
	"fmt"
	"math"

	"github.com/etnz/retirement"
)

// Condition is a market state.
type Condition string

const (
	Bull     Condition = "bull_market"
	Bear     Condition = "bear_market"
	Sideways Condition = "sideways"
	Volatile Condition = "high_volatility"
	Stable   Condition = "stable"
)

// Baseline is the BTC price market moves are measured against.
var Baseline = retirement.Dollars(50000)

// Classify returns the market condition of d.
func Classify(d Data) Condition {
	change := d.BTC.Sub(Baseline).Ratio(Baseline).InexactFloat64()
	switch {
	case d.Volatility > 10:
		return Volatile
	case d.Volatility < 2 && math.Abs(change) < 0.05:
		return Stable
	case change > 0.2:
		return Bull
	case change < -0.2:
		return Bear
	default:
		return Sideways
	}
}

// Action is the course of action recommended by a signal.
type Action string

const (
	ActionHold        Action = "hold"
	ActionExitPartial Action = "exit_partial"
	ActionPlanExit    Action = "plan_exit"
)

// Signal is a market condition with the confidence in it and the advice it
// calls for.
type Signal struct {
	Condition  Condition
	Confidence float64 // 0-100
	Message    string
	Action     Action
}

// NewSignal returns the signal of d. A nil d means no data is available.
func NewSignal(d *Data) Signal {
	if d == nil {
		return Signal{
			Condition: Sideways,
			Message:   "No market data available",
			Action:    ActionHold,
		}
	}
	c := Classify(*d)
	confidence := Confidence(c, d.Volatility)
	return Signal{
		Condition:  c,
		Confidence: confidence,
		Message:    message(c, confidence),
		Action:     action(c),
	}
}

// Confidence returns the confidence in condition c for a given volatility.
func Confidence(c Condition, volatility float64) float64 {
	switch c {
	case Volatile:
		return math.Min(100, volatility*5)
	case Bull:
		return 75
	case Bear:
		return 80
	default:
		return 60
	}
}

func message(c Condition, confidence float64) string {
	switch c {
	case Bull:
		return fmt.Sprintf("Bullish market detected. Strong upward momentum. Consider holding or adding positions. Confidence: %.0f%%", confidence)
	case Bear:
		return fmt.Sprintf("Bearish market detected. Declining prices and reduced volume. Consider reducing exposure. Confidence: %.0f%%", confidence)
	case Volatile:
		return fmt.Sprintf("High volatility detected. Large price swings. Maintain defensive positioning. Confidence: %.0f%%", confidence)
	case Sideways:
		return "Sideways market. Waiting for clearer direction. Maintain current strategy."
	default:
		return "Stable market conditions. Low volatility. Good time for planning exits."
	}
}

func action(c Condition) Action {
	switch c {
	case Bear:
		return ActionExitPartial
	case Stable:
		return ActionPlanExit
	default:
		return ActionHold
	}
}

// MarketSignal converts the signal for exit trigger evaluation.
func (s Signal) MarketSignal() *retirement.MarketSignal {
	return &retirement.MarketSignal{Condition: string(s.Condition), Confidence: s.Confidence}
}

// Monitor keeps track of the market data fetched over time. It is owned by a
// single caller.
type Monitor struct {
	client  *Client
	current *Data
	history []Data
}

// NewMonitor returns a monitor fetching data with client.
func NewMonitor(client *Client) *Monitor { return &Monitor{client: client} }

// Refresh fetches new data, or the fallback snapshot, and makes it current.
func (m *Monitor) Refresh(ctx context.Context) Data {
	d := m.client.FetchOrFallback(ctx)
	m.current = &d
	m.history = append(m.history, d)
	return d
}

// Current returns the last data fetched, nil before the first Refresh.
func (m *Monitor) Current() *Data { return m.current }

// History returns every data fetched, oldest first.
func (m *Monitor) History() []Data { return append([]Data(nil), m.history...) }

// Signal returns the signal of the current data.
func (m *Monitor) Signal() Signal { return NewSignal(m.current) }
