package renderer

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/etnz/retirement"
	md "github.com/nao1215/markdown"
)

// ExitMarkdown renders an exit plan, the state of its triggers against in and
// the recommendations they produced.
func ExitMarkdown(plan *retirement.ExitPlan, in retirement.ExitInputs, recs []retirement.ExitRecommendation) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Exit Strategy").LF()
	if plan != nil {
		goal := plan.Goal.String()
		if plan.Age > 0 {
			goal = fmt.Sprintf("%s by age %d", goal, plan.Age)
		}
		doc.PlainTextf("Goal: %s, risk tolerance: %s, method: %s", goal, plan.Tolerance, plan.Method).LF()

		rows := make([][]string, 0, len(plan.Triggers))
		for _, t := range plan.Triggers {
			met := "no"
			if t.Met(in) {
				met = "**yes**"
			}
			rows = append(rows, []string{string(t.Kind()), t.Describe(), t.Threshold(), met})
		}
		doc.H2("Triggers").LF()
		doc.Table(md.TableSet{
			Header: []string{"Kind", "Condition", "Threshold", "Met"},
			Rows:   rows,
		})
	}

	doc.H2("Recommendations").LF()
	if len(recs) == 0 {
		doc.PlainText("No exit condition met. Hold.")
		return doc.String() + "\n"
	}
	for i, r := range recs {
		doc.H3f("%d. %s", i+1, r.Action).LF()
		items := []string{
			fmt.Sprintf("Priority: %s", r.Priority),
			fmt.Sprintf("Reasoning: %s", r.Reasoning),
		}
		if len(r.Assets) > 0 {
			var sells []string
			for _, asset := range slices.Sorted(maps.Keys(r.Assets)) {
				sells = append(sells, fmt.Sprintf("%s %s", r.Assets[asset], asset))
			}
			items = append(items,
				fmt.Sprintf("Sell: %s", strings.Join(sells, ", ")),
				fmt.Sprintf("Estimated taxes: %s", r.EstimatedTaxes),
			)
		}
		if !r.Deadline.IsZero() {
			items = append(items, fmt.Sprintf("Deadline: %s", r.Deadline.Format("2006-01-02")))
		}
		doc.BulletList(items...).LF()
	}
	return doc.String() + "\n"
}
