package models

import (
	"fmt"
	"strconv"
	"strings"
)

// FiscalPeriod is a (year, quarter) reporting period. Quarter is 1-4.
type FiscalPeriod struct {
	Year    int `json:"year"`
	Quarter int `json:"quarter"`
}

// Valid reports whether the quarter is in range and the year is positive.
func (p FiscalPeriod) Valid() bool {
	return p.Year > 0 && p.Quarter >= 1 && p.Quarter <= 4
}

// IsZero reports whether p is the zero period.
func (p FiscalPeriod) IsZero() bool {
	return p.Year == 0 && p.Quarter == 0
}

// Prev returns the preceding quarter, wrapping Q1 to Q4 of the prior year.
func (p FiscalPeriod) Prev() FiscalPeriod {
	if p.Quarter <= 1 {
		return FiscalPeriod{Year: p.Year - 1, Quarter: 4}
	}
	return FiscalPeriod{Year: p.Year, Quarter: p.Quarter - 1}
}

// Next returns the following quarter, wrapping Q4 to Q1 of the next year.
func (p FiscalPeriod) Next() FiscalPeriod {
	if p.Quarter >= 4 {
		return FiscalPeriod{Year: p.Year + 1, Quarter: 1}
	}
	return FiscalPeriod{Year: p.Year, Quarter: p.Quarter + 1}
}

// Compare returns -1, 0 or 1 ordering by year then quarter.
func (p FiscalPeriod) Compare(o FiscalPeriod) int {
	switch {
	case p.Year < o.Year:
		return -1
	case p.Year > o.Year:
		return 1
	case p.Quarter < o.Quarter:
		return -1
	case p.Quarter > o.Quarter:
		return 1
	}
	return 0
}

// Before reports whether p is strictly earlier than o.
func (p FiscalPeriod) Before(o FiscalPeriod) bool {
	return p.Compare(o) < 0
}

// QuartersSince returns how many quarters p lies after earlier. Negative when
// earlier is actually later than p.
func (p FiscalPeriod) QuartersSince(earlier FiscalPeriod) int {
	return (p.Year-earlier.Year)*4 + (p.Quarter - earlier.Quarter)
}

// EndDate returns the last calendar day of the quarter as YYYY-MM-DD.
func (p FiscalPeriod) EndDate() string {
	switch p.Quarter {
	case 1:
		return fmt.Sprintf("%04d-03-31", p.Year)
	case 2:
		return fmt.Sprintf("%04d-06-30", p.Year)
	case 3:
		return fmt.Sprintf("%04d-09-30", p.Year)
	default:
		return fmt.Sprintf("%04d-12-31", p.Year)
	}
}

func (p FiscalPeriod) String() string {
	return fmt.Sprintf("%dQ%d", p.Year, p.Quarter)
}

// ParseFiscalPeriod parses "2024Q2" (case-insensitive).
func ParseFiscalPeriod(s string) (FiscalPeriod, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	idx := strings.Index(s, "Q")
	if idx <= 0 || idx == len(s)-1 {
		return FiscalPeriod{}, fmt.Errorf("invalid fiscal period %q", s)
	}
	year, err := strconv.Atoi(s[:idx])
	if err != nil {
		return FiscalPeriod{}, fmt.Errorf("invalid fiscal period year %q: %w", s, err)
	}
	quarter, err := strconv.Atoi(s[idx+1:])
	if err != nil {
		return FiscalPeriod{}, fmt.Errorf("invalid fiscal period quarter %q: %w", s, err)
	}
	p := FiscalPeriod{Year: year, Quarter: quarter}
	if !p.Valid() {
		return FiscalPeriod{}, fmt.Errorf("fiscal period out of range: %q", s)
	}
	return p, nil
}

// FreshnessTier grades how recent a reporting period is.
type FreshnessTier string

const (
	FreshnessCurrent FreshnessTier = "current"
	FreshnessAging   FreshnessTier = "aging"
	FreshnessStale   FreshnessTier = "stale"
)
