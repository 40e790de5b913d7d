package models

import (
	"fmt"
	"strings"
)

// StatementCategory names a quarterly financial statement family.
type StatementCategory string

const (
	CategoryProfitability StatementCategory = "profitability"
	CategoryGrowth        StatementCategory = "growth"
	CategorySolvency      StatementCategory = "solvency"
	CategoryDupont        StatementCategory = "dupont-decomposition"
	CategoryCashFlow      StatementCategory = "cash-flow"
	CategoryOperation     StatementCategory = "operation"
)

// AllCategories returns every statement category in display order.
func AllCategories() []StatementCategory {
	return []StatementCategory{
		CategoryProfitability,
		CategoryGrowth,
		CategorySolvency,
		CategoryDupont,
		CategoryCashFlow,
		CategoryOperation,
	}
}

// DefaultSnapshotCategories are the sections of a fundamental snapshot when
// the caller does not choose.
func DefaultSnapshotCategories() []StatementCategory {
	return []StatementCategory{CategoryProfitability, CategoryGrowth, CategorySolvency, CategoryDupont}
}

// Title returns a heading for reports.
func (c StatementCategory) Title() string {
	switch c {
	case CategoryProfitability:
		return "Profitability"
	case CategoryGrowth:
		return "Growth"
	case CategorySolvency:
		return "Solvency"
	case CategoryDupont:
		return "DuPont Decomposition"
	case CategoryCashFlow:
		return "Cash Flow"
	case CategoryOperation:
		return "Operating Efficiency"
	}
	return string(c)
}

var categoryAliases = map[string]StatementCategory{
	"profit":    CategoryProfitability,
	"balance":   CategorySolvency,
	"dupont":    CategoryDupont,
	"cashflow":  CategoryCashFlow,
	"cash_flow": CategoryCashFlow,
}

// ParseStatementCategory accepts the canonical names plus a few short aliases.
func ParseStatementCategory(s string) (StatementCategory, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, c := range AllCategories() {
		if key == string(c) {
			return c, nil
		}
	}
	if c, ok := categoryAliases[key]; ok {
		return c, nil
	}
	return "", fmt.Errorf("unknown statement category %q", s)
}
