package renderer

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/etnz/retirement"
	"github.com/etnz/retirement/date"
)

// term returns the holding period label of a sale made on on.
func term(s retirement.Sale, on date.Date) string {
	if retirement.IsLongTerm(s.Acquired, on) {
		return "long"
	}
	return "short"
}

// PlanMarkdown renders a sale plan executed at price on on.
func PlanMarkdown(plan retirement.Plan, price retirement.Money, on date.Date) string {
	var b strings.Builder
	writePlan(&b, plan, price, on)
	return b.String()
}

func writePlan(w io.Writer, plan retirement.Plan, price retirement.Money, on date.Date) {
	if len(plan) == 0 {
		fmt.Fprintln(w, "No sales required at this time.")
		return
	}
	fmt.Fprintln(w, "| Asset | Lot | Amount | Cost Basis | Acquired | Term | Gain/Loss | Location |")
	fmt.Fprintln(w, "|:---|:---|---:|---:|:---|:---|---:|:---|")
	for _, s := range plan {
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			s.Asset,
			s.LotID,
			s.Quantity,
			s.CostBasis,
			orDash(s.Acquired.String()),
			term(s, on),
			s.GainLoss.Round(2).SignedString(),
			orDash(s.Location),
		)
	}
	fmt.Fprintf(w, "| **Total** | | | | | | **%s** | |\n\n", plan.GainLoss().Round(2).SignedString())
	fmt.Fprintf(w, "Proceeds at %s: %s\n", price, plan.Proceeds(price))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// DecisionMarkdown renders the outcome of a single buffer period.
func DecisionMarkdown(d retirement.Decision, price retirement.Money) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Buffer Decision on %s\n\n", orDash(d.Date.String()))
	fmt.Fprintf(&b, "**Action: %s**\n\n", d.Action)

	fmt.Fprintln(&b, "| | |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Balance before | %s |\n", d.Before)
	fmt.Fprintf(&b, "| Balance after | %s |\n", d.After)
	fmt.Fprintf(&b, "| Target | %s |\n", d.Target)
	fmt.Fprintf(&b, "| Refill threshold | %s |\n", d.Threshold)
	if d.Action != retirement.Hold {
		fmt.Fprintf(&b, "| Needed | %s |\n", d.Needed)
	}
	fmt.Fprintln(&b)

	if d.Action != retirement.Hold {
		fmt.Fprint(&b, "## Sales\n\n")
		writePlan(&b, d.Plan, price, d.Date)
		fmt.Fprintln(&b)

		fmt.Fprint(&b, "## To Sell\n\n")
		for _, asset := range slices.Sorted(maps.Keys(d.ToSell)) {
			fmt.Fprintf(&b, "- %s %s\n", d.ToSell[asset], asset)
		}
		fmt.Fprintln(&b)
	}

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "## Warnings\n\n")
		for _, warning := range d.Warnings {
			fmt.Fprintf(w, "- %s\n", warning)
		}
		return len(d.Warnings) > 0
	})
	return b.String()
}

// SimulationMarkdown renders a sequence of buffer periods, one row each.
func SimulationMarkdown(decisions []retirement.Decision) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Buffer Simulation\n\n")
	if len(decisions) == 0 {
		fmt.Fprintln(&b, "No period simulated.")
		return b.String()
	}

	fmt.Fprintln(&b, "| Date | Action | Before | After | Needed | Sold |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|:---|")
	counts := make(map[retirement.Action]int)
	var warnings []string
	for _, d := range decisions {
		counts[d.Action]++
		var sold []string
		for _, asset := range slices.Sorted(maps.Keys(d.ToSell)) {
			sold = append(sold, fmt.Sprintf("%s %s", d.ToSell[asset], asset))
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			orDash(d.Date.String()),
			d.Action,
			d.Before,
			d.After,
			d.Needed,
			orDash(strings.Join(sold, ", ")),
		)
		for _, w := range d.Warnings {
			warnings = append(warnings, fmt.Sprintf("%s: %s", orDash(d.Date.String()), w))
		}
	}
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "%d periods: %d hold, %d refill, %d insufficient funds.\n",
		len(decisions), counts[retirement.Hold], counts[retirement.RefillBuffer], counts[retirement.InsufficientFunds])

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "\n## Warnings\n\n")
		for _, warning := range warnings {
			fmt.Fprintf(w, "- %s\n", warning)
		}
		return len(warnings) > 0
	})
	return b.String()
}
