package app

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/stockreport/internal/models"
)

// sectionPreviewRows bounds the rows shown per snapshot section
const sectionPreviewRows = 5

func frequencyLabel(f string) string {
	switch f {
	case "d":
		return "daily"
	case "w":
		return "weekly"
	case "m":
		return "monthly"
	}
	return f + "-minute"
}

func reportTitle(report string) string {
	switch report {
	case "adjust_factor":
		return "Adjust Factors"
	case "performance_express":
		return "Performance Express Report"
	case "forecast":
		return "Earnings Forecast"
	}
	return report
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

// writeTable renders up to limit rows of tbl as a markdown table.
func writeTable(sb *strings.Builder, tbl *models.Table, limit int) {
	if tbl.IsEmpty() {
		sb.WriteString("_No rows._\n")
		return
	}

	cells := make([]string, len(tbl.Fields))
	for i, f := range tbl.Fields {
		cells[i] = escapeCell(f)
	}
	sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	for i := range cells {
		cells[i] = "---"
	}
	sb.WriteString("|" + strings.Join(cells, "|") + "|\n")

	shown := tbl.Head(limit)
	for _, row := range shown.Rows {
		for i := range cells {
			cells[i] = ""
			if i < len(row) {
				cells[i] = escapeCell(row[i])
			}
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	if rest := tbl.Len() - shown.Len(); rest > 0 {
		sb.WriteString(fmt.Sprintf("\n_%d more rows not shown._\n", rest))
	}
}

// formatTable formats a provider result as markdown
func formatTable(title string, tbl *models.Table, limit int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	if tbl != nil && tbl.Source != "" {
		sb.WriteString(fmt.Sprintf("**Source:** %s | **Rows:** %d\n\n", tbl.Source, tbl.Len()))
	}
	writeTable(&sb, tbl, limit)
	return sb.String()
}

// formatMarketInfo formats an identifier classification as markdown
func formatMarketInfo(info models.MarketInfo) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Market: %s\n\n", info.Code))
	sb.WriteString("| Field | Value |\n|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Segment | %s |\n", info.Segment))
	sb.WriteString(fmt.Sprintf("| Market | %s |\n", info.Market))
	sb.WriteString(fmt.Sprintf("| Provider | %s |\n", info.Provider))
	if info.Description != "" {
		sb.WriteString(fmt.Sprintf("\n%s\n", info.Description))
	}
	return sb.String()
}

func freshnessLabel(tier models.FreshnessTier) string {
	switch tier {
	case models.FreshnessCurrent:
		return "current"
	case models.FreshnessAging:
		return "aging"
	case models.FreshnessStale:
		return "STALE"
	}
	return "-"
}

// formatSection formats one latest-period resolution as markdown
func formatSection(code string, sec models.StatementSection) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s: %s\n\n", sec.Category.Title(), code))
	if !sec.Found {
		sb.WriteString(fmt.Sprintf("No published data found after %d attempts.\n", sec.Attempts))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("**Period:** %s | **Freshness:** %s (%d quarters behind) | **Attempts:** %d\n\n",
		sec.Period, freshnessLabel(sec.Freshness), sec.Distance, sec.Attempts))
	writeTable(&sb, sec.Table, defaultRowLimit)
	return sb.String()
}

// formatSnapshot formats a fundamental snapshot as markdown
func formatSnapshot(snap *models.FundamentalSnapshot) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Fundamental Snapshot: %s\n\n", snap.Code))
	sb.WriteString(fmt.Sprintf("**Market:** %s | **Provider:** %s | **As of:** %s\n\n",
		snap.Market.Market, snap.Market.Provider, snap.AsOf))

	sb.WriteString("| Category | Period | Freshness | Attempts |\n")
	sb.WriteString("|----------|--------|-----------|----------|\n")
	for _, sec := range snap.Sections {
		period := "-"
		if sec.Found {
			period = sec.Period.String()
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d |\n", sec.Category.Title(), period, freshnessLabel(sec.Freshness), sec.Attempts))
	}

	for _, sec := range snap.Sections {
		if !sec.Found {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n## %s (%s)\n\n", sec.Category.Title(), sec.Period))
		writeTable(&sb, sec.Table, sectionPreviewRows)
	}
	return sb.String()
}

// formatHistory formats stored resolutions as markdown
func formatHistory(code string, records []*models.ResolutionRecord) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Resolution History: %s\n\n", code))
	if len(records) == 0 {
		sb.WriteString("No stored resolutions.\n")
		return sb.String()
	}

	sb.WriteString("| Resolved | Category | Provider | Period | Freshness | Attempts | Rows |\n")
	sb.WriteString("|----------|----------|----------|--------|-----------|----------|------|\n")
	for _, r := range records {
		period := "-"
		if r.Found {
			period = r.Period.String()
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %d | %d |\n",
			r.ResolvedAt.Format("2006-01-02 15:04"), r.Category, r.Provider, period, freshnessLabel(r.Freshness), r.Attempts, r.Rows))
	}
	return sb.String()
}

func formatTimeframe(period string, dr models.DateRange) string {
	var sb strings.Builder
	sb.WriteString("# Market Analysis Timeframe\n\n")
	sb.WriteString(fmt.Sprintf("**Period:** %s\n", period))
	sb.WriteString(fmt.Sprintf("**start_date:** %s\n", dr.Start))
	sb.WriteString(fmt.Sprintf("**end_date:** %s\n", dr.End))
	sb.WriteString(fmt.Sprintf("**Months:** %s to %s\n", dr.Start[:7], dr.End[:7]))
	return sb.String()
}
