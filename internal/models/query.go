package models

import (
	"fmt"
	"strings"
)

// DateRange bounds a query by YYYY-MM-DD dates. Empty bounds are open.
type DateRange struct {
	Start string `json:"start_date,omitempty"`
	End   string `json:"end_date,omitempty"`
}

// KDataRequest describes a historical bar query.
type KDataRequest struct {
	Fields     []string  `json:"fields,omitempty"`
	Range      DateRange `json:"range"`
	Frequency  string    `json:"frequency"`   // d, w, m, 5, 15, 30, 60
	AdjustFlag string    `json:"adjust_flag"` // 1 backward, 2 forward, 3 none
}

// DefaultKDataFields is the bar column set requested when none is given.
var DefaultKDataFields = []string{"date", "code", "open", "high", "low", "close", "volume", "amount", "adjustflag"}

// Normalize fills defaults.
func (r KDataRequest) Normalize() KDataRequest {
	if len(r.Fields) == 0 {
		r.Fields = DefaultKDataFields
	}
	if r.Frequency == "" {
		r.Frequency = "d"
	}
	if r.AdjustFlag == "" {
		r.AdjustFlag = "3"
	}
	return r
}

// IndexName is a constituent list known to the market-wide provider.
type IndexName string

const (
	IndexSZ50  IndexName = "sz50"
	IndexHS300 IndexName = "hs300"
	IndexZZ500 IndexName = "zz500"
)

// IndexCode returns the exchange code of the index.
func (n IndexName) IndexCode() string {
	switch n {
	case IndexSZ50:
		return "000016"
	case IndexHS300:
		return "000300"
	case IndexZZ500:
		return "000905"
	}
	return ""
}

// ParseIndexName validates an index name.
func ParseIndexName(s string) (IndexName, error) {
	n := IndexName(strings.ToLower(strings.TrimSpace(s)))
	if n.IndexCode() == "" {
		return "", fmt.Errorf("unknown index %q (expected sz50, hs300 or zz500)", s)
	}
	return n, nil
}

// MacroSeries names a macroeconomic dataset.
type MacroSeries string

const (
	MacroDepositRate      MacroSeries = "deposit_rate"
	MacroLoanRate         MacroSeries = "loan_rate"
	MacroReserveRatio     MacroSeries = "reserve_ratio"
	MacroMoneySupplyMonth MacroSeries = "money_supply_month"
	MacroMoneySupplyYear  MacroSeries = "money_supply_year"
	MacroShibor           MacroSeries = "shibor"
)

// AllMacroSeries lists the supported macro datasets.
func AllMacroSeries() []MacroSeries {
	return []MacroSeries{
		MacroDepositRate,
		MacroLoanRate,
		MacroReserveRatio,
		MacroMoneySupplyMonth,
		MacroMoneySupplyYear,
		MacroShibor,
	}
}

// ParseMacroSeries validates a macro dataset name.
func ParseMacroSeries(s string) (MacroSeries, error) {
	key := MacroSeries(strings.ToLower(strings.TrimSpace(s)))
	for _, m := range AllMacroSeries() {
		if key == m {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown macro series %q", s)
}

// MacroQuery selects a macro dataset over a range. Range dates are
// YYYY-MM-DD, or YYYY-MM for the monthly money supply series.
type MacroQuery struct {
	Series   MacroSeries `json:"series"`
	Range    DateRange   `json:"range"`
	YearType string      `json:"year_type,omitempty"`
}
