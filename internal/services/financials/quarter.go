// Package financials resolves the most recent published quarterly statement
// for an identifier and grades how fresh it is.
package financials

import (
	"time"

	"github.com/bobmcallan/stockreport/internal/models"
)

// LatestPublishedPeriod returns the newest quarter whose statements are
// expected to be public at t, allowing for the filing lag after quarter end:
// January-April still point at Q4 of the previous year, May-July at Q1,
// August-October at Q2 and November-December at Q3.
func LatestPublishedPeriod(t time.Time) models.FiscalPeriod {
	year := t.Year()
	switch month := t.Month(); {
	case month <= time.April:
		return models.FiscalPeriod{Year: year - 1, Quarter: 4}
	case month <= time.July:
		return models.FiscalPeriod{Year: year, Quarter: 1}
	case month <= time.October:
		return models.FiscalPeriod{Year: year, Quarter: 2}
	default:
		return models.FiscalPeriod{Year: year, Quarter: 3}
	}
}

// CurrentPeriod returns the calendar quarter containing t.
func CurrentPeriod(t time.Time) models.FiscalPeriod {
	return models.FiscalPeriod{Year: t.Year(), Quarter: (int(t.Month())-1)/3 + 1}
}
