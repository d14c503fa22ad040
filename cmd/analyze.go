package cmd

import (
	"context"
	"flag"
	"maps"

	"github.com/etnz/retirement"
	"github.com/etnz/retirement/config"
	"github.com/etnz/retirement/lotcsv"
	"github.com/etnz/retirement/market"
	"github.com/etnz/retirement/renderer"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

type analyzeCmd struct {
	prices pricesFlag
	live   bool
}

func (*analyzeCmd) Name() string     { return "analyze" }
func (*analyzeCmd) Synopsis() string { return "score the risk and diversification of the portfolio" }
func (*analyzeCmd) Usage() string {
	return `rtm analyze [-prices BTC=65000,ETH=3200] [-live]

  Aggregates the lot file into holdings, values them and reports the risk and
  diversification scores together with the resulting recommendations.

  Holdings are valued at their average cost unless a price is given with
  -prices or fetched with -live. Explicit prices win over live ones.

`
}

func (c *analyzeCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.prices, "prices", "Prices per asset, as ASSET=PRICE separated by commas")
	f.BoolVar(&c.live, "live", false, "Value BTC and ETH at the current market price")
}

func (c *analyzeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, log, err := setup()
	if err != nil {
		return failure("%v", err)
	}
	records, err := readLots(*lotsFile)
	if err != nil {
		return failure("%v", err)
	}

	var data *market.Data
	if c.live {
		d := fetchMarket(ctx, cfg, log)
		data = &d
	}
	p := newPortfolio(records, c.prices, data)

	printMarkdown(renderer.AnalysisMarkdown(p.Analyze()) + "\n" +
		renderer.TaxEfficiencyMarkdown(retirement.RateTaxEfficiency(lotcsv.Lots(records).All())))
	return subcommands.ExitSuccess
}

// newPortfolio builds the portfolio of the lot records, valued with data when
// not nil, then with prices.
func newPortfolio(records []lotcsv.Record, prices map[string]retirement.Money, data *market.Data) *retirement.Portfolio {
	p := retirement.NewPortfolio(lotcsv.Holdings(records)...)
	all := make(map[string]retirement.Money)
	if data != nil {
		all["BTC"] = data.BTC
		all["ETH"] = data.ETH
	}
	maps.Copy(all, prices)
	if len(all) > 0 {
		p.UpdatePrices(all)
	}
	return p
}

// marketSignal fetches the market and returns its data and signal.
func marketSignal(ctx context.Context, cfg config.Config, log zerolog.Logger) (market.Data, market.Signal) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()
	m := market.NewMonitor(marketClient(cfg, log))
	d := m.Refresh(ctx)
	return d, m.Signal()
}
