package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"MarketTerminal/internal/ingest"
	"MarketTerminal/internal/macro"
	"MarketTerminal/internal/model"
)

const historyRows = 10

var tierIcons = map[model.AlertTier]string{
	model.TierCalm:         "✅",
	model.TierWatch:        "⚠️",
	model.TierAlert:        "🔥",
	model.TierUndetermined: "❔",
}

// FormatLivePrices formats the live price board. Absent prices print N/A.
func FormatLivePrices(quotes []model.LiveQuote, at time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("💹 <b>Live Prices</b> | %s\n\n", at.Format("2006-01-02 15:04")))
	for _, q := range quotes {
		price := macro.NotAvailable
		if q.Price.Valid {
			price = fmt.Sprintf("%.4f", q.Price.Float64)
		}
		b.WriteString(fmt.Sprintf("%s (%s): %s\n", html.EscapeString(q.Asset), html.EscapeString(q.Ticker), price))
	}
	return b.String()
}

// FormatHistory lists the most recent closes, newest last.
func FormatHistory(sym model.Symbol, points []model.ClosePoint) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>%s</b> closes\n", html.EscapeString(sym.Name)))
	if len(points) == 0 {
		b.WriteString("No data available.\n")
		return b.String()
	}
	if len(points) > historyRows {
		points = points[len(points)-historyRows:]
	}
	for _, p := range points {
		b.WriteString(fmt.Sprintf("  %s  %.2f\n", p.Date.Format("2006-01-02"), p.Close))
	}
	return b.String()
}

// FormatTechnicalSummary formats the summary block. ok=false means the
// series was too short to derive every indicator.
func FormatTechnicalSummary(sym model.Symbol, sum model.TechnicalSummary, ok bool) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🧮 <b>%s</b> technical summary\n", html.EscapeString(sym.Name)))
	if !ok {
		b.WriteString("Not enough data.\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("As of: %s\n", sum.AsOf.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Period return: %+.2f%%\n", sum.PeriodReturnPct))
	b.WriteString(fmt.Sprintf("Volatility: %.2f%%\n", sum.VolatilityPct))
	b.WriteString(fmt.Sprintf("SMA10: %.2f\n", sum.SMA10))
	b.WriteString(fmt.Sprintf("RSI14: %.2f\n", sum.RSI14))
	return b.String()
}

// FormatSnapshot combines range, summary and recent closes of one asset.
func FormatSnapshot(snap *model.AssetSnapshot) string {
	var b strings.Builder
	if len(snap.History) > 0 {
		b.WriteString(fmt.Sprintf("30d range: %.2f - %.2f (position %.0f%%)\n\n", snap.Low, snap.High, snap.Position*100))
	}
	b.WriteString(FormatTechnicalSummary(snap.Symbol, snap.Summary, snap.HasSummary))
	b.WriteString("\n")
	b.WriteString(FormatHistory(snap.Symbol, snap.History))
	return b.String()
}

// FormatMacroPanel formats the classified macro indicators.
func FormatMacroPanel(alerts []model.MacroAlert) string {
	var b strings.Builder
	b.WriteString("🏛 <b>Macro Context</b>\n\n")
	for _, a := range alerts {
		b.WriteString(fmt.Sprintf("%s %s: %s | %s\n", tierIcons[a.Tier], a.Indicator, a.Value, a.Insight))
	}
	return b.String()
}

// FormatIngestReport summarises a batch run and lists every failure.
func FormatIngestReport(rep *ingest.Report) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗄 <b>Ingestion</b> | %s\n\n", rep.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Stored: %d/%d\n", rep.Count(ingest.StatusStored), len(rep.Outcomes)))
	if n := rep.Count(ingest.StatusNoData); n > 0 {
		b.WriteString(fmt.Sprintf("No data: %d\n", n))
	}
	for _, o := range rep.Outcomes {
		if o.Status == ingest.StatusFetchFailed || o.Status == ingest.StatusStoreFailed {
			b.WriteString(fmt.Sprintf("⚠️ %s (%s): %s\n", html.EscapeString(o.Symbol.Name), html.EscapeString(o.Symbol.Ticker), o.Status))
		}
	}
	if rep.Cancelled {
		b.WriteString("Run was cancelled before completion.\n")
	}
	b.WriteString(fmt.Sprintf("Elapsed: %s\n", rep.FinishedAt.Sub(rep.StartedAt).Round(time.Second)))
	return b.String()
}
