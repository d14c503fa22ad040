package cmd

import (
	"context"
	"flag"

	"github.com/etnz/retirement"
	"github.com/etnz/retirement/market"
	"github.com/etnz/retirement/renderer"
	"github.com/google/subcommands"
)

// bearExitConfidence is the confidence a bear market needs to trigger an
// exit.
const bearExitConfidence = 70

type exitCmd struct {
	prices pricesFlag
	signal bool
	goal   decimalFlag
}

func (*exitCmd) Name() string     { return "exit" }
func (*exitCmd) Synopsis() string { return "evaluate the exit plan against the portfolio" }
func (*exitCmd) Usage() string {
	return `rtm exit [-prices BTC=65000,...] [-goal <usd>] [-signal]

  Builds the exit plan from the configured goal, risk tolerance and exit
  method, evaluates its triggers against the portfolio and prints one
  recommendation per met trigger.

  -signal fetches the market, values BTC and ETH at its prices and adds a
  trigger on a confident bear market.

`
}

func (c *exitCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.prices, "prices", "Prices per asset, as ASSET=PRICE separated by commas")
	f.BoolVar(&c.signal, "signal", false, "Include the market signal")
	f.Var(&c.goal, "goal", "Retirement goal in USD, overriding the configuration")
}

func (c *exitCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, log, err := setup()
	if err != nil {
		return failure("%v", err)
	}
	records, err := readLots(*lotsFile)
	if err != nil {
		return failure("%v", err)
	}

	goal := cfg.Goal()
	if c.goal.set {
		goal = retirement.Dollars(c.goal.value)
	}
	plan := retirement.NewExitPlan(goal, cfg.RetirementAge, cfg.Tolerance(), cfg.Exit())

	var in retirement.ExitInputs
	var data *market.Data
	if c.signal {
		d, s := marketSignal(ctx, cfg, log)
		data = &d
		in.Signal = s.MarketSignal()
		plan.Triggers = append(plan.Triggers, retirement.MarketCondition{
			Condition:     string(market.Bear),
			MinConfidence: bearExitConfidence,
		})
	}

	p := newPortfolio(records, c.prices, data)
	in.Analysis = p.Analyze()

	recs := plan.Recommend(in, p.Holdings(), now())
	printMarkdown(renderer.ExitMarkdown(plan, in, recs))
	return subcommands.ExitSuccess
}
