package retirement

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/etnz/retirement/date"
	"github.com/rs/zerolog"
)

// RefillThreshold is the share of the buffer target under which the buffer
// gets refilled.
const RefillThreshold = 0.8

var (
	ErrNegativeMonthlyNeed = errors.New("monthly need must not be negative")
	ErrNegativeBufferYears = errors.New("buffer years must not be negative")
)

// Action is the outcome of a withdrawal period.
type Action int

const (
	// Hold means the buffer is above its threshold, nothing is sold.
	Hold Action = iota
	// RefillBuffer means lots are sold to bring the buffer back to its target.
	RefillBuffer
	// InsufficientFunds means the refill would sell more than is held.
	InsufficientFunds
)

func (a Action) String() string {
	switch a {
	case Hold:
		return "HOLD"
	case RefillBuffer:
		return "REFILL_BUFFER"
	case InsufficientFunds:
		return "INSUFFICIENT_FUNDS"
	default:
		return "UNKNOWN"
	}
}

// Decision is the result of advancing the buffer by one period.
type Decision struct {
	Action    Action
	Date      date.Date
	Before    Money // balance at the start of the period
	After     Money // balance once the period is over
	Target    Money
	Threshold Money
	Needed    Money               // cash to raise, zero on Hold
	ToSell    map[string]Quantity // total quantity per asset
	Plan      Plan
	Warnings  []string
}

// Buffer is the cash reserve funding monthly withdrawals. A Buffer is owned
// by a single caller and must not be advanced concurrently.
type Buffer struct {
	monthlyNeed Money
	years       int
	target      Money
	balance     Money

	lots      Lots
	selector  Selector
	available map[string]Quantity // balances of the non primary assets
	log       zerolog.Logger
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithLots sets the tax lots refills are sold from. Every lot is priced at
// the price given to Advance, so lots should hold the primary asset only.
func WithLots(lots Lots) Option { return func(b *Buffer) { b.lots = lots } }

// WithMethod sets the lot liquidation order, HIFO by default.
func WithMethod(m CostBasisMethod) Option { return func(b *Buffer) { b.selector.Method = m } }

// WithPrimaryAsset sets the asset whose balance is passed to Advance, BTC by default.
func WithPrimaryAsset(asset string) Option { return func(b *Buffer) { b.selector.Asset = asset } }

// WithAvailable sets the sellable balances of other assets. An asset missing
// from the map is not checked.
func WithAvailable(available map[string]Quantity) Option {
	return func(b *Buffer) { b.available = maps.Clone(available) }
}

// WithLogger sets the logger decisions are reported to.
func WithLogger(l zerolog.Logger) Option { return func(b *Buffer) { b.log = l } }

// NewBuffer returns a buffer holding cash, sized to cover years of monthlyNeed.
func NewBuffer(monthlyNeed Money, years int, cash Money, opts ...Option) (*Buffer, error) {
	if monthlyNeed.IsNegative() {
		return nil, fmt.Errorf("invalid buffer: %w: %v", ErrNegativeMonthlyNeed, monthlyNeed)
	}
	if years < 0 {
		return nil, fmt.Errorf("invalid buffer: %w: %d", ErrNegativeBufferYears, years)
	}
	b := &Buffer{
		monthlyNeed: monthlyNeed,
		years:       years,
		target:      monthlyNeed.Mul(Q(12 * years)),
		balance:     cash,
		selector:    Selector{Method: HIFO, Asset: DefaultAsset},
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Balance returns the current cash in the buffer.
func (b *Buffer) Balance() Money { return b.balance }

// Target returns the size of a full buffer.
func (b *Buffer) Target() Money { return b.target }

// MonthlyNeed returns the cash withdrawn every period.
func (b *Buffer) MonthlyNeed() Money { return b.monthlyNeed }

// Threshold returns the balance under which a refill is needed.
func (b *Buffer) Threshold() Money { return b.target.Mul(Q(RefillThreshold)) }

// Advance withdraws one period of need from the buffer and refills it when it
// falls under the threshold, selling lots at price. available is the
// sellable balance of the primary asset.
//
// The withdrawal is applied unconditionally, even when it drives the balance
// negative. Business conditions never fail: they are reported in the
// returned Decision.
func (b *Buffer) Advance(price Money, available Quantity, on date.Date) Decision {
	d := Decision{
		Action:    Hold,
		Date:      on,
		Before:    b.balance,
		Target:    b.target,
		Threshold: b.Threshold(),
		Needed:    M(0, b.balance.Currency()),
		ToSell:    map[string]Quantity{},
	}

	b.balance = b.balance.Sub(b.monthlyNeed)

	if b.balance.GreaterThanOrEqual(d.Threshold) {
		d.After = b.balance
		b.logDecision(d)
		return d
	}

	d.Needed = b.target.Sub(b.balance)
	d.Plan = b.selector.Select(d.Needed, price, b.lots.All())
	for asset, q := range d.Plan.Quantities() {
		d.ToSell[asset] = q.Round(QuantityPlaces)
	}

	if short := b.shortAssets(d.ToSell, available); len(short) > 0 {
		d.Action = InsufficientFunds
		for _, asset := range short {
			d.Warnings = append(d.Warnings, fmt.Sprintf(
				"Insufficient %s: need %s, available %s.", asset, d.ToSell[asset], b.availableFor(asset, available)))
		}
		d.After = b.balance
		b.logDecision(d)
		return d
	}

	d.Action = RefillBuffer
	b.balance = b.balance.Add(d.Needed)
	d.After = b.balance

	// rounding sold quantities may leave up to one quantum per sale uncovered
	tolerance := price.Mul(Quantum.Mul(Q(len(d.Plan))))
	if proceeds := d.Plan.Proceeds(price); d.Needed.Sub(proceeds).GreaterThan(tolerance) {
		d.Warnings = append(d.Warnings, fmt.Sprintf(
			"Tax lots only cover %s of the %s needed.", proceeds.String(), d.Needed.String()))
	}
	for _, s := range ShortTermSales(d.Plan, on) {
		d.Warnings = append(d.Warnings, fmt.Sprintf(
			"Short-Term Tax Warning: Lot %s held <365 days. Consider tax impact.", s.LotID))
	}
	b.logDecision(d)
	return d
}

// Simulate advances the buffer once a month for months periods starting on
// start, at a constant price and balance.
func (b *Buffer) Simulate(months int, price Money, available Quantity, start date.Date) []Decision {
	decisions := make([]Decision, 0, max(months, 0))
	for i := range months {
		decisions = append(decisions, b.Advance(price, available, start.AddMonth(i)))
	}
	return decisions
}

// shortAssets returns, sorted, the assets whose quantity to sell exceeds the
// sellable balance.
func (b *Buffer) shortAssets(toSell map[string]Quantity, available Quantity) []string {
	var short []string
	for _, asset := range slices.Sorted(maps.Keys(toSell)) {
		if asset != b.selector.Asset {
			if _, checked := b.available[asset]; !checked {
				continue
			}
		}
		if toSell[asset].GreaterThan(b.availableFor(asset, available)) {
			short = append(short, asset)
		}
	}
	return short
}

func (b *Buffer) availableFor(asset string, primary Quantity) Quantity {
	if asset == b.selector.Asset {
		return primary
	}
	return b.available[asset]
}

func (b *Buffer) logDecision(d Decision) {
	ev := b.log.Info()
	if d.Action == Hold {
		ev = b.log.Debug()
	}
	ev.Str("action", d.Action.String()).
		Str("date", d.Date.String()).
		Str("before", d.Before.String()).
		Str("after", d.After.String()).
		Str("needed", d.Needed.String()).
		Int("sales", len(d.Plan)).
		Int("warnings", len(d.Warnings)).
		Msg("buffer period advanced")
}
