package retirement

import (
	"fmt"
	"strings"
	"time"
)

// RiskTolerance is the investor's appetite for risk.
type RiskTolerance int

const (
	Conservative RiskTolerance = iota
	Moderate
	Aggressive
)

func (r RiskTolerance) String() string {
	switch r {
	case Conservative:
		return "conservative"
	case Moderate:
		return "moderate"
	case Aggressive:
		return "aggressive"
	default:
		return "unknown"
	}
}

// ParseRiskTolerance parses a string into a RiskTolerance.
func ParseRiskTolerance(s string) (RiskTolerance, error) {
	switch strings.ToLower(s) {
	case "conservative":
		return Conservative, nil
	case "moderate", "":
		return Moderate, nil
	case "aggressive":
		return Aggressive, nil
	default:
		return 0, fmt.Errorf("unknown risk tolerance: %q", s)
	}
}

// ExitMethod is the way an exit is carried out.
type ExitMethod int

const (
	Immediate ExitMethod = iota
	Gradual
	DollarCostAverage
	Ladder
	SmartExit
)

func (m ExitMethod) String() string {
	switch m {
	case Immediate:
		return "immediate"
	case Gradual:
		return "gradual"
	case DollarCostAverage:
		return "dollar_cost_average"
	case Ladder:
		return "ladder"
	case SmartExit:
		return "smart_exit"
	default:
		return "unknown"
	}
}

// ParseExitMethod parses a string into an ExitMethod.
func ParseExitMethod(s string) (ExitMethod, error) {
	switch strings.ToLower(s) {
	case "immediate":
		return Immediate, nil
	case "gradual", "":
		return Gradual, nil
	case "dca", "dollar_cost_average":
		return DollarCostAverage, nil
	case "ladder":
		return Ladder, nil
	case "smart_exit", "smart":
		return SmartExit, nil
	default:
		return 0, fmt.Errorf("unknown exit method: %q", s)
	}
}

// ExitInputs is what exit triggers are evaluated against.
type ExitInputs struct {
	Analysis Analysis
	// Signal is the optional market condition, nil when unknown.
	Signal *MarketSignal
}

// MarketSignal is a market condition label with its confidence, as emitted
// by a market classifier.
type MarketSignal struct {
	Condition  string
	Confidence float64 // 0-100
}

// TriggerKind identifies a Trigger variant.
type TriggerKind string

const (
	TriggerTargetValue     TriggerKind = "target_value"
	TriggerPercentageGain  TriggerKind = "percentage_gain"
	TriggerRiskThreshold   TriggerKind = "risk_threshold"
	TriggerMarketCondition TriggerKind = "market_condition"
)

// Trigger is a condition that calls for an exit.
type Trigger interface {
	Kind() TriggerKind
	// Met reports whether the condition holds.
	Met(in ExitInputs) bool
	// Threshold returns the trigger's threshold, for display.
	Threshold() string
	Describe() string
}

// TargetValue triggers once the portfolio is worth Goal.
type TargetValue struct{ Goal Money }

func (t TargetValue) Kind() TriggerKind      { return TriggerTargetValue }
func (t TargetValue) Met(in ExitInputs) bool { return in.Analysis.TotalValue.GreaterThanOrEqual(t.Goal) }
func (t TargetValue) Threshold() string      { return t.Goal.String() }
func (t TargetValue) Describe() string {
	return fmt.Sprintf("Reach retirement goal of %s", t.Goal)
}

// PercentageGain triggers once the unrealized gain reaches Gain.
type PercentageGain struct{ Gain Percent }

func (t PercentageGain) Kind() TriggerKind      { return TriggerPercentageGain }
func (t PercentageGain) Met(in ExitInputs) bool { return in.Analysis.PnLPercent >= t.Gain }
func (t PercentageGain) Threshold() string      { return t.Gain.String() }
func (t PercentageGain) Describe() string {
	return fmt.Sprintf("Achieve %.0f%%+ portfolio gain", float64(t.Gain))
}

// RiskThreshold triggers once the risk score reaches Risk.
type RiskThreshold struct{ Risk Score }

func (t RiskThreshold) Kind() TriggerKind      { return TriggerRiskThreshold }
func (t RiskThreshold) Met(in ExitInputs) bool { return in.Analysis.RiskScore >= t.Risk }
func (t RiskThreshold) Threshold() string      { return t.Risk.String() }
func (t RiskThreshold) Describe() string {
	return fmt.Sprintf("Portfolio risk exceeds %.0f", float64(t.Risk))
}

// MarketCondition triggers when the market signal is Condition with at
// least MinConfidence.
type MarketCondition struct {
	Condition     string
	MinConfidence float64
}

func (t MarketCondition) Kind() TriggerKind { return TriggerMarketCondition }
func (t MarketCondition) Met(in ExitInputs) bool {
	return in.Signal != nil && in.Signal.Condition == t.Condition && in.Signal.Confidence >= t.MinConfidence
}
func (t MarketCondition) Threshold() string { return fmt.Sprintf("%s@%.0f%%", t.Condition, t.MinConfidence) }
func (t MarketCondition) Describe() string {
	return fmt.Sprintf("Market turns %s (confidence %.0f%%+)", t.Condition, t.MinConfidence)
}

// ExitPlan is a retirement exit strategy.
type ExitPlan struct {
	Goal      Money
	Age       int // retirement age, 0 when unknown
	Tolerance RiskTolerance
	Method    ExitMethod
	Triggers  []Trigger
}

// NewExitPlan returns a plan to reach goal by the retirement age, whose
// triggers are derived from the goal and the risk tolerance.
func NewExitPlan(goal Money, age int, tolerance RiskTolerance, method ExitMethod) *ExitPlan {
	gain, risk := Percent(100), Score(50)
	if tolerance == Aggressive {
		gain, risk = 50, 70
	}
	return &ExitPlan{
		Goal:      goal,
		Age:       age,
		Tolerance: tolerance,
		Method:    method,
		Triggers: []Trigger{
			TargetValue{Goal: goal},
			PercentageGain{Gain: gain},
			RiskThreshold{Risk: risk},
		},
	}
}

// ShouldExit reports whether any trigger of the plan is met. A nil plan
// never exits.
func (p *ExitPlan) ShouldExit(in ExitInputs) bool {
	if p == nil {
		return false
	}
	for _, t := range p.Triggers {
		if t.Met(in) {
			return true
		}
	}
	return false
}

// Priority of an exit recommendation.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ExitRecommendation is the advice produced by a met trigger.
type ExitRecommendation struct {
	Action         string
	Priority       Priority
	Assets         map[string]Quantity // quantity to sell per asset
	Amount         Quantity
	Reasoning      string
	Deadline       time.Time
	EstimatedTaxes Quantity
}

const (
	// exitShare is the share of each holding sold by a partial exit.
	exitShare = 0.25
	// exitHoldings is the number of holdings a partial exit sells from.
	exitHoldings = 3
	// exitTaxRate is the flat capital gains rate used to estimate taxes.
	exitTaxRate = 0.20
	// exitDelay is the time given to carry out an exit.
	exitDelay = 7 * 24 * time.Hour
)

// Recommend returns one recommendation per met trigger. Each sells a quarter
// of the first holdings.
func (p *ExitPlan) Recommend(in ExitInputs, holdings []Holding, now time.Time) []ExitRecommendation {
	if p == nil {
		return []ExitRecommendation{{
			Action:    "Create exit plan first",
			Priority:  PriorityHigh,
			Assets:    map[string]Quantity{},
			Reasoning: "No exit plan defined",
		}}
	}
	var res []ExitRecommendation
	for _, t := range p.Triggers {
		if !t.Met(in) {
			continue
		}
		assets := make(map[string]Quantity)
		for _, h := range holdings[:min(exitHoldings, len(holdings))] {
			assets[h.Asset] = assets[h.Asset].Add(h.Quantity.Mul(Q(exitShare)))
		}
		var amount Quantity
		for _, q := range assets {
			amount = amount.Add(q)
		}
		res = append(res, ExitRecommendation{
			Action:         "Partial exit triggered: " + t.Describe(),
			Priority:       PriorityHigh,
			Assets:         assets,
			Amount:         amount,
			Reasoning:      fmt.Sprintf("Exit condition met: %s >= %s", t.Kind(), t.Threshold()),
			Deadline:       now.Add(exitDelay),
			EstimatedTaxes: amount.Mul(Q(exitTaxRate)).Round(2),
		})
	}
	return res
}
