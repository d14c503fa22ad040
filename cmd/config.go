package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type configCmd struct {
	secrets bool
}

func (*configCmd) Name() string     { return "config" }
func (*configCmd) Synopsis() string { return "print the effective configuration" }
func (*configCmd) Usage() string {
	return `rtm config [-secrets]

  Prints the configuration after the YAML file, the .env file and the
  environment have been applied. The output is a valid configuration file.

  API keys are masked unless -secrets is given.

`
}

func (c *configCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.secrets, "secrets", false, "Print API keys in clear")
}

func (c *configCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, _, err := setup()
	if err != nil {
		return failure("%v", err)
	}
	if !c.secrets {
		cfg = cfg.Masked()
	}
	out, err := cfg.YAML()
	if err != nil {
		return failure("%v", err)
	}
	printMarkdown(fmt.Sprintf("# Configuration\n\n```yaml\n%s```\n", out))
	return subcommands.ExitSuccess
}
