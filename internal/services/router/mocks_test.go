package router

import (
	"context"
	"sync"

	"github.com/bobmcallan/stockreport/internal/models"
)

type call struct {
	op   string
	code string
}

// recordingProvider answers every operation with a one-row table tagged with
// its name, or with err when set.
type recordingProvider struct {
	name string
	err  error

	mu    sync.Mutex
	calls []call
}

func newRecordingProvider(name string) *recordingProvider {
	return &recordingProvider{name: name}
}

func (p *recordingProvider) record(op, code string) (*models.Table, error) {
	p.mu.Lock()
	p.calls = append(p.calls, call{op: op, code: code})
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return &models.Table{Fields: []string{"provider"}, Rows: [][]string{{p.name}}, Source: p.name}, nil
}

func (p *recordingProvider) Calls() []call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]call(nil), p.calls...)
}

func (p *recordingProvider) Name() string { return p.name }

func (p *recordingProvider) GetHistoricalKData(_ context.Context, code string, _ models.KDataRequest) (*models.Table, error) {
	return p.record("historical_k_data", code)
}

func (p *recordingProvider) GetStockBasicInfo(_ context.Context, code string, _ []string) (*models.Table, error) {
	return p.record("stock_basic_info", code)
}

func (p *recordingProvider) GetDividendData(_ context.Context, code, _, _ string) (*models.Table, error) {
	return p.record("dividend_data", code)
}

func (p *recordingProvider) GetAdjustFactorData(_ context.Context, code string, _ models.DateRange) (*models.Table, error) {
	return p.record("adjust_factor_data", code)
}

func (p *recordingProvider) GetPerformanceExpressReport(_ context.Context, code string, _ models.DateRange) (*models.Table, error) {
	return p.record("performance_express_report", code)
}

func (p *recordingProvider) GetForecastReport(_ context.Context, code string, _ models.DateRange) (*models.Table, error) {
	return p.record("forecast_report", code)
}

func (p *recordingProvider) GetProfitData(_ context.Context, code string, _ models.FiscalPeriod) (*models.Table, error) {
	return p.record("profit_data", code)
}

func (p *recordingProvider) GetOperationData(_ context.Context, code string, _ models.FiscalPeriod) (*models.Table, error) {
	return p.record("operation_data", code)
}

func (p *recordingProvider) GetGrowthData(_ context.Context, code string, _ models.FiscalPeriod) (*models.Table, error) {
	return p.record("growth_data", code)
}

func (p *recordingProvider) GetBalanceData(_ context.Context, code string, _ models.FiscalPeriod) (*models.Table, error) {
	return p.record("balance_data", code)
}

func (p *recordingProvider) GetCashFlowData(_ context.Context, code string, _ models.FiscalPeriod) (*models.Table, error) {
	return p.record("cash_flow_data", code)
}

func (p *recordingProvider) GetDupontData(_ context.Context, code string, _ models.FiscalPeriod) (*models.Table, error) {
	return p.record("dupont_data", code)
}

func (p *recordingProvider) GetStockIndustry(_ context.Context, code, _ string) (*models.Table, error) {
	return p.record("stock_industry", code)
}

func (p *recordingProvider) GetIndexConstituents(_ context.Context, index models.IndexName, _ string) (*models.Table, error) {
	return p.record("index_constituents", string(index))
}

func (p *recordingProvider) GetAllStock(_ context.Context, _ string) (*models.Table, error) {
	return p.record("all_stock", "")
}

func (p *recordingProvider) GetTradeDates(_ context.Context, _ models.DateRange) (*models.Table, error) {
	return p.record("trade_dates", "")
}

func (p *recordingProvider) GetMacroSeries(_ context.Context, q models.MacroQuery) (*models.Table, error) {
	return p.record("macro_series", string(q.Series))
}
