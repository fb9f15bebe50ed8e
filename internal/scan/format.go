package scan

import (
	"fmt"
	"strings"
)

// FormatAlert renders the Markdown alert payload. The layout mirrors what
// the channel subscribers already expect: conviction header, score line,
// protection readings, flow tags, and ATR-derived stop/target levels.
func FormatAlert(res Result) string {
	var b strings.Builder
	b.WriteString("🧬 *HIGH CONVICTION FLOW*\n")
	fmt.Fprintf(&b, "💎 `%s` | Price: `$%.2f`\n", res.Symbol, res.Price)
	b.WriteString("━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(&b, "🎯 Score: `%.1f/100` | RVOL: `%.1fx`\n", res.Score, res.RVOL)
	fmt.Fprintf(&b, "📊 RSI: `%.1f` | Dist.SMA: `%.1f%%`\n", res.RSI, res.DistSMA)
	fmt.Fprintf(&b, "🔮 Signal: `%s` (p=%.0f)\n", res.Label, res.Probability)
	if len(res.Tags) > 0 {
		fmt.Fprintf(&b, "🔎 Tags: `%s`\n", strings.Join(res.Tags, ", "))
	}
	b.WriteString("━━━━━━━━━━━━━━━\n")
	if res.ATR > 0 {
		fmt.Fprintf(&b, "🛡️ STOP: `$%.2f` | 🎯 T1: `$%.2f`\n",
			res.Price-2*res.ATR, res.Price+1.5*res.ATR)
	}
	b.WriteString("⚠️ _Delayed data. Check the LIVE price before acting._")
	return b.String()
}
