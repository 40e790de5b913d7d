package financials

import (
	"context"
	"errors"
	"sync"

	"github.com/bobmcallan/stockreport/internal/models"
)

type stubCall struct {
	op     string
	code   string
	period models.FiscalPeriod
}

type stubResponse struct {
	table *models.Table
	err   error
	panic any
}

// scriptedProvider answers statement queries from a per-period script.
// Periods missing from the script return an empty table.
type scriptedProvider struct {
	script map[models.FiscalPeriod]stubResponse

	mu    sync.Mutex
	calls []stubCall
}

func newScriptedProvider() *scriptedProvider {
	return &scriptedProvider{script: map[models.FiscalPeriod]stubResponse{}}
}

func (p *scriptedProvider) with(period models.FiscalPeriod, tbl *models.Table, err error) *scriptedProvider {
	p.script[period] = stubResponse{table: tbl, err: err}
	return p
}

func (p *scriptedProvider) panicking(period models.FiscalPeriod, v any) *scriptedProvider {
	p.script[period] = stubResponse{panic: v}
	return p
}

func (p *scriptedProvider) Calls() []stubCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]stubCall(nil), p.calls...)
}

func (p *scriptedProvider) periods() []models.FiscalPeriod {
	var out []models.FiscalPeriod
	for _, c := range p.Calls() {
		out = append(out, c.period)
	}
	return out
}

func (p *scriptedProvider) statement(op, code string, period models.FiscalPeriod) (*models.Table, error) {
	p.mu.Lock()
	p.calls = append(p.calls, stubCall{op: op, code: code, period: period})
	p.mu.Unlock()
	if r, ok := p.script[period]; ok {
		if r.panic != nil {
			panic(r.panic)
		}
		return r.table, r.err
	}
	return &models.Table{Fields: []string{"code"}}, nil
}

func rows(n int) *models.Table {
	t := &models.Table{Fields: []string{"code", "statDate"}}
	for i := 0; i < n; i++ {
		t.Rows = append(t.Rows, []string{"sh.600000", "2023-12-31"})
	}
	return t
}

var errNotScripted = errors.New("not scripted")

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) GetHistoricalKData(context.Context, string, models.KDataRequest) (*models.Table, error) {
	return nil, errNotScripted
}

func (p *scriptedProvider) GetStockBasicInfo(context.Context, string, []string) (*models.Table, error) {
	return nil, errNotScripted
}

func (p *scriptedProvider) GetDividendData(context.Context, string, string, string) (*models.Table, error) {
	return nil, errNotScripted
}

func (p *scriptedProvider) GetAdjustFactorData(context.Context, string, models.DateRange) (*models.Table, error) {
	return nil, errNotScripted
}

func (p *scriptedProvider) GetPerformanceExpressReport(context.Context, string, models.DateRange) (*models.Table, error) {
	return nil, errNotScripted
}

func (p *scriptedProvider) GetForecastReport(context.Context, string, models.DateRange) (*models.Table, error) {
	return nil, errNotScripted
}

func (p *scriptedProvider) GetProfitData(_ context.Context, code string, period models.FiscalPeriod) (*models.Table, error) {
	return p.statement("profit", code, period)
}

func (p *scriptedProvider) GetOperationData(_ context.Context, code string, period models.FiscalPeriod) (*models.Table, error) {
	return p.statement("operation", code, period)
}

func (p *scriptedProvider) GetGrowthData(_ context.Context, code string, period models.FiscalPeriod) (*models.Table, error) {
	return p.statement("growth", code, period)
}

func (p *scriptedProvider) GetBalanceData(_ context.Context, code string, period models.FiscalPeriod) (*models.Table, error) {
	return p.statement("balance", code, period)
}

func (p *scriptedProvider) GetCashFlowData(_ context.Context, code string, period models.FiscalPeriod) (*models.Table, error) {
	return p.statement("cash_flow", code, period)
}

func (p *scriptedProvider) GetDupontData(_ context.Context, code string, period models.FiscalPeriod) (*models.Table, error) {
	return p.statement("dupont", code, period)
}

func (p *scriptedProvider) GetStockIndustry(context.Context, string, string) (*models.Table, error) {
	return nil, errNotScripted
}

func (p *scriptedProvider) GetIndexConstituents(context.Context, models.IndexName, string) (*models.Table, error) {
	return nil, errNotScripted
}

func (p *scriptedProvider) GetAllStock(context.Context, string) (*models.Table, error) {
	return nil, errNotScripted
}

func (p *scriptedProvider) GetTradeDates(context.Context, models.DateRange) (*models.Table, error) {
	return nil, errNotScripted
}

func (p *scriptedProvider) GetMacroSeries(context.Context, models.MacroQuery) (*models.Table, error) {
	return nil, errNotScripted
}
