package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/retirement"
	"github.com/etnz/retirement/date"
	"github.com/etnz/retirement/lotcsv"
	"github.com/etnz/retirement/renderer"
	"github.com/google/subcommands"
)

type hifoCmd struct {
	price  decimalFlag
	target decimalFlag
	method string
	text   bool
	on     dateFlag
}

func (*hifoCmd) Name() string     { return "hifo" }
func (*hifoCmd) Synopsis() string { return "select the lots to sell to raise an amount of cash" }
func (*hifoCmd) Usage() string {
	return `rtm hifo -target <usd> [-price <usd>] [-method hifo|fifo] [-text]

  Selects the lots to sell to raise -target dollars at -price, the highest
  cost basis first. The lot file is left untouched.

  -text prints the plan as the plain text sell alert instead of a table.

`
}

func (c *hifoCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.price, "price", "Sale price, in USD (default: current BTC price)")
	f.Var(&c.target, "target", "Cash to raise, in USD (required)")
	f.StringVar(&c.method, "method", "hifo", "Lot selection method: hifo or fifo")
	f.BoolVar(&c.text, "text", false, "Print a plain text sell alert")
	f.Var(&c.on, "date", "Sale date, for the holding period (default today)")
}

func (c *hifoCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.target.set {
		return usageError("-target is required")
	}
	method, err := retirement.ParseCostBasisMethod(c.method)
	if err != nil {
		return usageError("%v", err)
	}
	cfg, log, err := setup()
	if err != nil {
		return failure("%v", err)
	}

	records, err := readLots(*lotsFile)
	if err != nil {
		return failure("%v", err)
	}

	price := retirement.Dollars(c.price.value)
	if !c.price.set {
		price = fetchMarket(ctx, cfg, log).BTC
	}
	if !price.IsPositive() {
		return usageError("-price must be positive")
	}

	lots := lotcsv.Lots(records).All()
	plan := retirement.Selector{Method: method}.Select(retirement.Dollars(c.target.value), price, lots)

	if c.text {
		fmt.Println(renderer.SellInstruction(plan))
		return subcommands.ExitSuccess
	}
	printMarkdown(fmt.Sprintf("# %s Sale Plan\n\n%s", strings.ToUpper(method.String()), renderer.PlanMarkdown(plan, price, c.on.Or(date.Of(now())))))
	return subcommands.ExitSuccess
}
