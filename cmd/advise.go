package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/retirement"
	"github.com/etnz/retirement/advisor"
	"github.com/etnz/retirement/config"
	"github.com/etnz/retirement/lotcsv"
	"github.com/etnz/retirement/market"
	"github.com/google/subcommands"
	"google.golang.org/genai"
	"gopkg.in/yaml.v3"
)

// adviceTimeout bounds a single question to the language model.
const adviceTimeout = 2 * time.Minute

type adviseCmd struct {
	backend string
	exit    bool
	age     int
	health  bool
	live    bool
}

func (*adviseCmd) Name() string     { return "advise" }
func (*adviseCmd) Synopsis() string { return "ask a language model to comment on the portfolio" }
func (*adviseCmd) Usage() string {
	return `rtm advise [-backend mcp|gemini] [-live] [-exit -age <years>] [-health]

  Sends the holdings of the lot file to a language model and prints its
  analysis. With -exit, asks for an exit strategy instead, given the current
  portfolio value, the retirement goal and -age.

  The mcp backend talks to the server at mcp_server_url. The gemini backend
  needs gemini_api_key.

  The commentary is advisory only. A failure is printed as "Error: ..." and
  makes the command fail.

`
}

func (c *adviseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.backend, "backend", "mcp", "Language model backend: mcp or gemini")
	f.BoolVar(&c.exit, "exit", false, "Ask for an exit strategy")
	f.IntVar(&c.age, "age", 0, "Current age, required with -exit")
	f.BoolVar(&c.health, "health", false, "Print the status of the mcp server and exit")
	f.BoolVar(&c.live, "live", false, "Give the current market conditions to the model")
}

func (c *adviseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.exit && c.age <= 0 {
		return usageError("-exit needs a positive -age")
	}
	cfg, log, err := setup()
	if err != nil {
		return failure("%v", err)
	}

	if c.health {
		return c.printHealth(ctx, cfg)
	}

	chat, err := c.chatter(ctx, cfg)
	if err != nil {
		return usageError("%v", err)
	}
	adv := advisor.New(chat, log)

	records, err := readLots(*lotsFile)
	if err != nil {
		return failure("%v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, adviceTimeout)
	defer cancel()

	var text, title string
	if c.exit {
		p := newPortfolio(records, nil, nil)
		if c.live {
			d := fetchMarket(ctx, cfg, log)
			p = newPortfolio(records, nil, &d)
		}
		title = "Exit Strategy Advice"
		text = adv.RecommendExit(ctx, p.Analyze().TotalValue, cfg.Goal(), c.age, cfg.RetirementAge)
	} else {
		var marketContext string
		if c.live {
			d, s := marketSignal(ctx, cfg, log)
			marketContext = marketSummary(d, s)
		}
		title = "Portfolio Advice"
		text = adv.Analyze(ctx, quantities(records), marketContext)
	}

	if advisor.IsError(text) {
		return failure("%s", strings.TrimPrefix(text, advisor.ErrorPrefix))
	}
	printMarkdown(fmt.Sprintf("# %s\n\n%s\n", title, text))
	return subcommands.ExitSuccess
}

// chatter returns the language model backend selected by -backend.
func (c *adviseCmd) chatter(ctx context.Context, cfg config.Config) (advisor.Chatter, error) {
	switch strings.ToLower(c.backend) {
	case "mcp":
		return advisor.NewMCP(cfg.MCPServerURL), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("the gemini backend needs %s", config.EnvGeminiAPIKey)
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		return advisor.NewGemini(client, cfg.GeminiModel), nil
	default:
		return nil, fmt.Errorf("unknown backend %q, want mcp or gemini", c.backend)
	}
}

func (c *adviseCmd) printHealth(ctx context.Context, cfg config.Config) subcommands.ExitStatus {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()
	status, err := advisor.NewMCP(cfg.MCPServerURL).Health(ctx)
	if err != nil {
		return failure("mcp server %s: %v", cfg.MCPServerURL, err)
	}
	out, err := yaml.Marshal(status)
	if err != nil {
		return failure("%v", err)
	}
	printMarkdown(fmt.Sprintf("# MCP Server\n\n%s\n\n```yaml\n%s```\n", cfg.MCPServerURL, out))
	return subcommands.ExitSuccess
}

// quantities sums the lot records per asset.
func quantities(records []lotcsv.Record) map[string]retirement.Quantity {
	q := make(map[string]retirement.Quantity)
	for _, l := range lotcsv.Lots(records).All() {
		q[l.Asset] = q[l.Asset].Add(l.Quantity)
	}
	return q
}

// marketSummary describes the market for the model.
func marketSummary(d market.Data, s market.Signal) string {
	return fmt.Sprintf("BTC: %s, ETH: %s, market cap: $%.0f, 24h volume: $%.0f, volatility: %.1f%%.\nCondition: %s (confidence %.0f%%). %s",
		d.BTC, d.ETH, d.MarketCap, d.Volume24h, d.Volatility, s.Condition, s.Confidence, s.Message)
}
