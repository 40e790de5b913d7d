package financials

import "github.com/bobmcallan/stockreport/internal/models"

// Distance is the number of quarters period lags behind now. It is negative
// when period is later than now.
func Distance(period, now models.FiscalPeriod) int {
	return now.QuartersSince(period)
}

// ClassifyFreshness grades period relative to now: at most one quarter
// behind is current, two is aging, anything older is stale. Periods ahead of
// now count as current.
func ClassifyFreshness(period, now models.FiscalPeriod) models.FreshnessTier {
	switch d := Distance(period, now); {
	case d <= 1:
		return models.FreshnessCurrent
	case d <= 2:
		return models.FreshnessAging
	default:
		return models.FreshnessStale
	}
}
