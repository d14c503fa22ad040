package retirement

import (
	"maps"
	"slices"
)

// TopHoldingsCount is the number of holdings listed in an Analysis.
const TopHoldingsCount = 5

// AssetType classifies assets for diversification scoring.
type AssetType int

const (
	Altcoin AssetType = iota
	Bitcoin
	Ether
	Stablecoin
)

func (t AssetType) String() string {
	switch t {
	case Bitcoin:
		return "BTC"
	case Ether:
		return "ETH"
	case Stablecoin:
		return "STABLECOIN"
	default:
		return "ALTCOIN"
	}
}

// TypeOf returns the type of an asset symbol, Altcoin for anything unknown.
func TypeOf(asset string) AssetType {
	switch asset {
	case "BTC":
		return Bitcoin
	case "ETH":
		return Ether
	case "USDC", "USDT", "DAI":
		return Stablecoin
	default:
		return Altcoin
	}
}

// volatile lists the assets considered volatile by the risk score.
var volatile = map[string]bool{"BTC": true, "ETH": true, "SOL": true, "MATIC": true}

// Holding is a position in an asset.
type Holding struct {
	Asset    string
	Quantity Quantity
	AvgCost  Money
	Price    Money
}

// Value returns the market value of the holding.
func (h Holding) Value() Money { return h.Price.Mul(h.Quantity) }

// CostBasis returns the total cost paid for the holding.
func (h Holding) CostBasis() Money { return h.AvgCost.Mul(h.Quantity) }

// UnrealizedPnL returns the unrealized profit (or loss when negative).
func (h Holding) UnrealizedPnL() Money { return h.Value().Sub(h.CostBasis()) }

// PnLPercent returns the unrealized profit relative to the cost basis, 0
// when the cost basis is 0.
func (h Holding) PnLPercent() Percent {
	return Percent(h.UnrealizedPnL().Ratio(h.CostBasis()).InexactFloat64() * 100)
}

// TopHolding is one of the largest holdings of a portfolio.
type TopHolding struct {
	Asset string
	Value Money
	Share Percent
}

// Analysis is a snapshot assessment of a portfolio.
type Analysis struct {
	TotalValue           Money
	TotalCost            Money
	UnrealizedPnL        Money
	PnLPercent           Percent
	Count                int
	Top                  []TopHolding
	RiskScore            Score
	DiversificationScore Score
	Recommendations      []string
}

// Portfolio is the set of holdings of an account, together with the last
// known prices. It is owned by a single caller.
type Portfolio struct {
	holdings []Holding
	prices   map[string]Money
}

// NewPortfolio returns a portfolio holding holdings. A holding without price
// is valued at its average cost.
func NewPortfolio(holdings ...Holding) *Portfolio {
	p := &Portfolio{prices: map[string]Money{}}
	for _, h := range holdings {
		p.Add(h)
	}
	return p
}

// Add appends a holding.
func (p *Portfolio) Add(h Holding) {
	if h.Price.IsZero() {
		h.Price = h.AvgCost
	}
	p.holdings = append(p.holdings, h)
}

// Holdings returns a copy of the holdings.
func (p *Portfolio) Holdings() []Holding { return slices.Clone(p.holdings) }

// Prices returns a copy of the last prices set by UpdatePrices.
func (p *Portfolio) Prices() map[string]Money { return maps.Clone(p.prices) }

// UpdatePrices replaces the known prices with prices and revalues every
// holding whose asset is listed.
func (p *Portfolio) UpdatePrices(prices map[string]Money) {
	p.prices = maps.Clone(prices)
	for i, h := range p.holdings {
		if price, ok := p.prices[h.Asset]; ok {
			p.holdings[i].Price = price
		}
	}
}

// Analyze computes a full analysis of the portfolio.
func (p *Portfolio) Analyze() Analysis { return Analyze(p.holdings) }

// Analyze computes a full analysis of holdings.
func Analyze(holdings []Holding) Analysis {
	a := Analysis{
		TotalValue:    Dollars(0),
		TotalCost:     Dollars(0),
		UnrealizedPnL: Dollars(0),
	}
	if len(holdings) == 0 {
		return a
	}

	for _, h := range holdings {
		a.TotalValue = a.TotalValue.Add(h.Value())
		a.TotalCost = a.TotalCost.Add(h.CostBasis())
	}
	a.Count = len(holdings)
	a.UnrealizedPnL = a.TotalValue.Sub(a.TotalCost)
	a.PnLPercent = Percent(a.UnrealizedPnL.Ratio(a.TotalCost).InexactFloat64() * 100)

	sorted := slices.Clone(holdings)
	slices.SortStableFunc(sorted, func(x, y Holding) int {
		return y.Value().Decimal().Cmp(x.Value().Decimal())
	})
	for _, h := range sorted[:min(TopHoldingsCount, len(sorted))] {
		a.Top = append(a.Top, TopHolding{
			Asset: h.Asset,
			Value: h.Value(),
			Share: Percent(h.Value().Ratio(a.TotalValue).InexactFloat64() * 100),
		})
	}

	a.RiskScore = RiskScore(holdings)
	a.DiversificationScore = DiversificationScore(holdings)
	a.Recommendations = Recommendations(a, holdings)
	return a
}

// RiskScore scores the concentration and volatility of holdings: half of it
// is the share of the largest holding, the other half the share of volatile
// assets.
func RiskScore(holdings []Holding) Score {
	var total, top, volatileValue Money
	for _, h := range holdings {
		v := h.Value()
		total = total.Add(v)
		if v.GreaterThan(top) {
			top = v
		}
		if volatile[h.Asset] {
			volatileValue = volatileValue.Add(v)
		}
	}
	if !total.IsPositive() {
		return 0
	}
	topShare := top.Ratio(total).InexactFloat64()
	volatileShare := volatileValue.Ratio(total).InexactFloat64()
	return clampScore(topShare*50 + volatileShare*50)
}

// DiversificationScore rewards the number of distinct assets (10 points
// each) and of distinct asset types (15 points each).
func DiversificationScore(holdings []Holding) Score {
	assets := make(map[string]bool)
	types := make(map[AssetType]bool)
	for _, h := range holdings {
		assets[h.Asset] = true
		types[TypeOf(h.Asset)] = true
	}
	return clampScore(float64(len(assets)*10 + len(types)*15))
}

// Recommendation messages, in the order they are emitted.
const (
	RecommendDiversify   = "High concentration risk - consider diversifying"
	RecommendVariety     = "Low diversification - add asset variety"
	RecommendStablecoins = "Consider adding stablecoins for stability"
	RecommendTakeProfits = "Significant unrealized gains - consider partial profit-taking"
)

// Recommendations returns the advice applicable to an analysis of holdings.
// Each check is independent of the others.
func Recommendations(a Analysis, holdings []Holding) []string {
	var res []string
	if a.RiskScore > 75 {
		res = append(res, RecommendDiversify)
	}
	if a.DiversificationScore < 40 {
		res = append(res, RecommendVariety)
	}
	if !slices.ContainsFunc(holdings, func(h Holding) bool { return TypeOf(h.Asset) == Stablecoin }) {
		res = append(res, RecommendStablecoins)
	}
	if a.PnLPercent > 50 {
		res = append(res, RecommendTakeProfits)
	}
	return res
}
