package cmd

import (
	"context"
	"flag"

	"github.com/etnz/retirement"
	"github.com/etnz/retirement/date"
	"github.com/etnz/retirement/lotcsv"
	"github.com/etnz/retirement/renderer"
	"github.com/google/subcommands"
)

type planCmd struct {
	price     decimalFlag
	available decimalFlag
	cash      decimalFlag
	months    int
	method    string
	on        dateFlag
}

func (*planCmd) Name() string     { return "plan" }
func (*planCmd) Synopsis() string { return "advance the cash buffer and decide whether to sell lots" }
func (*planCmd) Usage() string {
	return `rtm plan [-price <usd>] [-available <units>] [-months <n>]

  Withdraws the monthly need from the cash buffer and refills it from the tax
  lots when it falls under 80% of its target. The monthly need, the buffer
  years and the starting cash come from the configuration.

  Only the BTC lots of the file are sold. Without -price the current BTC
  price is fetched. Without -available the whole BTC quantity held in the
  lot file can be sold.

  With -months greater than 1, the buffer is simulated month after month at a
  constant price.

`
}

func (c *planCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.price, "price", "Sale price of the primary asset, in USD")
	f.Var(&c.available, "available", "Sellable balance of the primary asset")
	f.Var(&c.cash, "cash", "Starting cash buffer, overriding the configuration")
	f.IntVar(&c.months, "months", 1, "Number of monthly periods to run")
	f.StringVar(&c.method, "method", "", "Lot selection method: hifo or fifo (default from configuration)")
	f.Var(&c.on, "date", "Date of the first period (default today)")
}

func (c *planCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.months < 1 {
		return usageError("-months must be at least 1")
	}
	cfg, log, err := setup()
	if err != nil {
		return failure("%v", err)
	}

	method := cfg.CostBasisMethod()
	if c.method != "" {
		if method, err = retirement.ParseCostBasisMethod(c.method); err != nil {
			return usageError("%v", err)
		}
	}

	records, err := readLots(*lotsFile)
	if err != nil {
		return failure("%v", err)
	}
	lots := sellableLots(lotcsv.Lots(records), retirement.DefaultAsset)

	price := retirement.Dollars(c.price.value)
	if !c.price.set {
		price = fetchMarket(ctx, cfg, log).BTC
	}

	available := retirement.Q(c.available.value)
	if !c.available.set {
		available = lots.Position()[retirement.DefaultAsset]
	}

	cash := cfg.CashAmount()
	if c.cash.set {
		cash = retirement.Dollars(c.cash.value)
	}

	buffer, err := retirement.NewBuffer(cfg.MonthlyNeedAmount(), cfg.BufferYears, cash,
		retirement.WithLots(lots),
		retirement.WithMethod(method),
		retirement.WithLogger(log),
	)
	if err != nil {
		return failure("%v", err)
	}

	start := c.on.Or(date.Of(now()))
	if c.months == 1 {
		printMarkdown(renderer.DecisionMarkdown(buffer.Advance(price, available, start), price))
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.SimulationMarkdown(buffer.Simulate(c.months, price, available, start)))
	return subcommands.ExitSuccess
}

// sellableLots returns the lots of asset, the only ones the buffer can price.
func sellableLots(lots retirement.Lots, asset string) retirement.Lots {
	return retirement.NewLots(lots.Asset(asset)...)
}
