package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/retirement"
	md "github.com/nao1215/markdown"
)

// AnalysisMarkdown renders a portfolio analysis.
func AnalysisMarkdown(a retirement.Analysis) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Portfolio Analysis")
	if a.Count == 0 {
		doc.LF().PlainText("The portfolio is empty.")
		return doc.String() + "\n"
	}

	doc.LF().Table(md.TableSet{
		Header:    []string{"Metric", "Value"},
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Rows: [][]string{
			{"Total Value", a.TotalValue.String()},
			{"Total Cost", a.TotalCost.String()},
			{"Unrealized P&L", a.UnrealizedPnL.SignedString()},
			{"P&L %", a.PnLPercent.SignedString()},
			{"Holdings", fmt.Sprint(a.Count)},
			{"Risk Score", a.RiskScore.String()},
			{"Diversification Score", a.DiversificationScore.String()},
		},
	})

	doc.H2("Top Holdings").LF()
	rows := make([][]string, 0, len(a.Top))
	for _, h := range a.Top {
		rows = append(rows, []string{h.Asset, h.Value.String(), h.Share.String()})
	}
	doc.Table(md.TableSet{
		Header:    []string{"Asset", "Value", "Share"},
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
		Rows:      rows,
	})

	if len(a.Recommendations) > 0 {
		doc.H2("Recommendations").LF()
		doc.BulletList(a.Recommendations...)
	}
	return doc.String() + "\n"
}

// TaxEfficiencyMarkdown renders the tax efficiency rating of a lot set.
func TaxEfficiencyMarkdown(te retirement.TaxEfficiency) string {
	return fmt.Sprintf("Tax efficiency: %s (%s)\n", te.Score, te.Message)
}
