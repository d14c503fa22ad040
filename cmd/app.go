// Package cmd implements the rtm command line application.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/retirement"
	"github.com/etnz/retirement/config"
	"github.com/etnz/retirement/date"
	"github.com/etnz/retirement/logger"
	"github.com/etnz/retirement/lotcsv"
	"github.com/etnz/retirement/market"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Commands lists the subcommands of rtm, in help order.
var Commands = []subcommands.Command{
	&planCmd{},
	&hifoCmd{},
	&analyzeCmd{},
	&exitCmd{},
	&signalCmd{},
	&adviseCmd{},
	&validateCmd{},
	&configCmd{},
	&topicCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile = flag.String("config", "rtm.yaml", "Path to the YAML configuration file")
	verbose    = flag.Bool("v", false, "Log at debug level, overriding the configured level")
	plain      = flag.Bool("plain", false, "Print raw markdown instead of rendering it for the terminal")
	lotsFile   = flag.String("lots", "lots.csv", "Path to the tax lot CSV file")
)

// now is the clock of the commands, replaced in tests.
var now = time.Now

// fetchTimeout bounds every call to the market data service.
const fetchTimeout = 15 * time.Second

// setup loads the configuration and builds the logger.
func setup() (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return cfg, zerolog.Nop(), err
	}
	level := cfg.LogLevel
	if *verbose {
		level = "debug"
	}
	return cfg, logger.New(logger.Config{Level: level, Pretty: true}), nil
}

// failure reports err on stderr and returns the failure status.
func failure(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}

// usageError reports a misuse of the command line.
func usageError(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitUsageError
}

// printMarkdown renders md for the terminal on stdout.
func printMarkdown(md string) {
	writeMarkdown(os.Stdout, md, *plain)
}

func writeMarkdown(w io.Writer, md string, raw bool) {
	if raw {
		fmt.Fprint(w, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Fprint(w, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(w, md)
		return
	}
	fmt.Fprint(w, out)
}

// readLots parses the lot file.
func readLots(path string) ([]lotcsv.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lots: %w", err)
	}
	defer f.Close()
	records, err := lotcsv.Parse(f, now())
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return records, nil
}

// marketClient returns the market data client configured by cfg.
func marketClient(cfg config.Config, log zerolog.Logger) *market.Client {
	dir := cfg.CacheDir
	if dir == "" {
		if d, err := os.UserCacheDir(); err == nil {
			dir = filepath.Join(d, "rtm")
			if err := os.MkdirAll(dir, 0o755); err != nil {
				dir = ""
			}
		}
	}
	return market.NewClient(
		market.WithBaseURL(cfg.CryptoAPIURL),
		market.WithAPIKey(cfg.CryptoAPIKey),
		market.WithHTTPClient(market.Daily(dir, log)),
		market.WithLogger(log),
	)
}

// fetchMarket returns live market data, or the fallback snapshot.
func fetchMarket(ctx context.Context, cfg config.Config, log zerolog.Logger) market.Data {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()
	return marketClient(cfg, log).FetchOrFallback(ctx)
}

// decimalFlag is a flag.Value holding a decimal amount.
type decimalFlag struct {
	value decimal.Decimal
	set   bool
}

func (d *decimalFlag) String() string {
	if d == nil || !d.set {
		return ""
	}
	return d.value.String()
}

func (d *decimalFlag) Set(s string) error {
	v, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return fmt.Errorf("invalid amount %q", s)
	}
	d.value, d.set = v, true
	return nil
}

// dateFlag is a flag.Value holding a date, today when unset.
type dateFlag struct{ date.Date }

func (d *dateFlag) Set(s string) error {
	v, err := date.Parse(s)
	if err != nil {
		return err
	}
	d.Date = v
	return nil
}

func (d *dateFlag) Or(def date.Date) date.Date {
	if d.IsZero() {
		return def
	}
	return d.Date
}

// pricesFlag is a flag.Value holding per asset prices, as BTC=65000,ETH=3200.
type pricesFlag map[string]retirement.Money

func (p *pricesFlag) String() string {
	if p == nil {
		return ""
	}
	parts := make([]string, 0, len(*p))
	for asset, price := range *p {
		parts = append(parts, asset+"="+price.Decimal().String())
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func (p *pricesFlag) Set(s string) error {
	if *p == nil {
		*p = make(pricesFlag)
	}
	for _, part := range strings.Split(s, ",") {
		asset, value, ok := strings.Cut(part, "=")
		if !ok {
			return fmt.Errorf("invalid price %q, want ASSET=PRICE", part)
		}
		v, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid price %q: %w", part, err)
		}
		(*p)[strings.ToUpper(strings.TrimSpace(asset))] = retirement.Dollars(v)
	}
	return nil
}
