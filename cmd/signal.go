package cmd

import (
	"context"
	"flag"

	"github.com/etnz/retirement/renderer"
	"github.com/google/subcommands"
)

type signalCmd struct{}

func (*signalCmd) Name() string     { return "signal" }
func (*signalCmd) Synopsis() string { return "fetch the market and classify its condition" }
func (*signalCmd) Usage() string {
	return `rtm signal

  Fetches the BTC and ETH prices and prints the market condition with the
  recommended action. Falls back to a fixed snapshot when offline.

`
}

func (c *signalCmd) SetFlags(f *flag.FlagSet) {}

func (c *signalCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, log, err := setup()
	if err != nil {
		return failure("%v", err)
	}
	d, s := marketSignal(ctx, cfg, log)
	printMarkdown(renderer.SignalMarkdown(d, s))
	return subcommands.ExitSuccess
}
