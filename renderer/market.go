package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/retirement/market"
	md "github.com/nao1215/markdown"
)

// SignalMarkdown renders market data and the signal derived from it.
func SignalMarkdown(d market.Data, s market.Signal) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1f("Market Signal on %s", d.Time.Format("2006-01-02 15:04")).LF()
	if d.Fallback {
		doc.Blockquote("Live market data unavailable, showing the fallback snapshot.").LF()
	}
	doc.Table(md.TableSet{
		Header:    []string{"", ""},
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Rows: [][]string{
			{"BTC", d.BTC.String()},
			{"ETH", d.ETH.String()},
			{"Market Cap", fmt.Sprintf("$%.1fB", d.MarketCap/1e9)},
			{"24h Volume", fmt.Sprintf("$%.1fB", d.Volume24h/1e9)},
			{"Volatility", fmt.Sprintf("%.2f%%", d.Volatility)},
		},
	})
	doc.PlainTextf("**Condition: %s** (confidence %.0f%%)", s.Condition, s.Confidence).LF()
	doc.PlainTextf("Action: %s", s.Action).LF()
	doc.PlainText(s.Message)
	return doc.String() + "\n"
}
