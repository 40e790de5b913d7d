// Package interfaces defines service contracts for stockreport
package interfaces

import (
	"context"

	"github.com/bobmcallan/stockreport/internal/models"
)

// Provider is an upstream market-data source. Every operation returns a
// table or an error whose kind is one of models.ErrNoData,
// models.ErrDataSource or models.ErrProviderUnavailable.
type Provider interface {
	// Name identifies the provider in logs and routing metadata
	Name() string

	// Point-in-time lookups
	GetHistoricalKData(ctx context.Context, code string, req models.KDataRequest) (*models.Table, error)
	GetStockBasicInfo(ctx context.Context, code string, fields []string) (*models.Table, error)
	GetDividendData(ctx context.Context, code string, year string, yearType string) (*models.Table, error)
	GetAdjustFactorData(ctx context.Context, code string, dr models.DateRange) (*models.Table, error)
	GetPerformanceExpressReport(ctx context.Context, code string, dr models.DateRange) (*models.Table, error)
	GetForecastReport(ctx context.Context, code string, dr models.DateRange) (*models.Table, error)

	// Quarterly statement categories
	GetProfitData(ctx context.Context, code string, period models.FiscalPeriod) (*models.Table, error)
	GetOperationData(ctx context.Context, code string, period models.FiscalPeriod) (*models.Table, error)
	GetGrowthData(ctx context.Context, code string, period models.FiscalPeriod) (*models.Table, error)
	GetBalanceData(ctx context.Context, code string, period models.FiscalPeriod) (*models.Table, error)
	GetCashFlowData(ctx context.Context, code string, period models.FiscalPeriod) (*models.Table, error)
	GetDupontData(ctx context.Context, code string, period models.FiscalPeriod) (*models.Table, error)

	// Market-wide datasets
	GetStockIndustry(ctx context.Context, code string, date string) (*models.Table, error)
	GetIndexConstituents(ctx context.Context, index models.IndexName, date string) (*models.Table, error)
	GetAllStock(ctx context.Context, date string) (*models.Table, error)
	GetTradeDates(ctx context.Context, dr models.DateRange) (*models.Table, error)
	GetMacroSeries(ctx context.Context, q models.MacroQuery) (*models.Table, error)
}

// LoginProvider is a Provider that needs a session before serving requests.
type LoginProvider interface {
	Provider
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
}

// StockSearcher looks up listed securities of one market by code or name.
type StockSearcher interface {
	SearchStocks(ctx context.Context, segment models.MarketSegment, keyword string) (*models.Table, error)
}
