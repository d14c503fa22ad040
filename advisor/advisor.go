// Package advisor asks a language model for free-text commentary on a
// portfolio and on exit strategies.
//
// Commentary is advisory only: nothing in this module reads numbers back
// from it. Failures are folded into the returned text, prefixed with
// "Error: ".
package advisor

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/etnz/retirement"
	"github.com/rs/zerolog"
)

// ErrorPrefix starts the text returned in place of a commentary on failure.
const ErrorPrefix = "Error: "

// Params tunes a single completion.
type Params struct {
	Temperature float32
	MaxTokens   int32
}

// Response is a completion.
type Response struct {
	Content      string
	FinishReason string
	Model        string
	Time         time.Time
}

// Chatter is a language model backend.
type Chatter interface {
	Chat(ctx context.Context, prompt string, p Params) (Response, error)
}

// Advisor produces commentary.
type Advisor interface {
	// Analyze comments on holdings, the quantity held per asset.
	Analyze(ctx context.Context, holdings map[string]retirement.Quantity, marketContext string) string
	// RecommendExit recommends an exit strategy to reach goal.
	RecommendExit(ctx context.Context, value, goal retirement.Money, age, retireAge int) string
}

var (
	analyzeParams = Params{Temperature: 0.3, MaxTokens: 800}
	exitParams    = Params{Temperature: 0.5, MaxTokens: 1000}
)

// chatAdvisor is an Advisor on top of a Chatter.
type chatAdvisor struct {
	chat Chatter
	log  zerolog.Logger
}

// New returns an Advisor prompting chat.
func New(chat Chatter, log zerolog.Logger) Advisor {
	return &chatAdvisor{chat: chat, log: log}
}

func (a *chatAdvisor) Analyze(ctx context.Context, holdings map[string]retirement.Quantity, marketContext string) string {
	return a.ask(ctx, PortfolioPrompt(holdings, marketContext), analyzeParams)
}

func (a *chatAdvisor) RecommendExit(ctx context.Context, value, goal retirement.Money, age, retireAge int) string {
	return a.ask(ctx, ExitPrompt(value, goal, age, retireAge), exitParams)
}

func (a *chatAdvisor) ask(ctx context.Context, prompt string, p Params) string {
	resp, err := a.chat.Chat(ctx, prompt, p)
	if err != nil {
		a.log.Warn().Err(err).Msg("advisor failed")
		return ErrorPrefix + err.Error()
	}
	a.log.Debug().Str("model", resp.Model).Str("finish", resp.FinishReason).Int("length", len(resp.Content)).Msg("advisor answered")
	return resp.Content
}

// IsError reports whether a commentary is an error marker.
func IsError(text string) bool { return strings.HasPrefix(text, ErrorPrefix) }

// PortfolioPrompt returns the prompt asking for a portfolio analysis. Assets
// are listed in alphabetical order.
func PortfolioPrompt(holdings map[string]retirement.Quantity, marketContext string) string {
	if marketContext == "" {
		marketContext = "Current market data not provided"
	}
	var b strings.Builder
	b.WriteString("Analyze the following cryptocurrency portfolio for retirement exit strategy:\n\n")
	b.WriteString("Portfolio:\n")
	for _, asset := range slices.Sorted(maps.Keys(holdings)) {
		fmt.Fprintf(&b, "%s: %s\n", asset, holdings[asset])
	}
	fmt.Fprintf(&b, "\nMarket Conditions:\n%s\n\n", marketContext)
	b.WriteString("Provide analysis on:\n")
	b.WriteString("1. Portfolio diversification\n")
	b.WriteString("2. Risk exposure\n")
	b.WriteString("3. Exit timing recommendations\n")
	b.WriteString("4. Optimal exit strategies\n")
	return b.String()
}

// ExitPrompt returns the prompt asking for an exit strategy.
func ExitPrompt(value, goal retirement.Money, age, retireAge int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I have a crypto portfolio currently worth %s.\n", value)
	fmt.Fprintf(&b, "My retirement goal is %s.\n", goal)
	fmt.Fprintf(&b, "I am currently %d years old and plan to retire at %d.\n\n", age, retireAge)
	b.WriteString("What exit strategy would you recommend for my cryptocurrency retirement?\n")
	b.WriteString("Consider:\n")
	b.WriteString("1. Tax implications\n")
	b.WriteString("2. Market timing\n")
	b.WriteString("3. Risk management\n")
	b.WriteString("4. Diversification needs\n")
	b.WriteString("5. Withdrawal strategies\n")
	return b.String()
}
