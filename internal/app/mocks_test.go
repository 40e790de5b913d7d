package app

import (
	"context"
	"strings"
	"sync"

	"github.com/bobmcallan/stockreport/internal/models"
)

// stubProvider answers statement queries from periods and every other
// operation with table or err.
type stubProvider struct {
	name    string
	periods map[models.FiscalPeriod]bool
	table   *models.Table
	err     error

	mu    sync.Mutex
	calls []string
}

func newStubProvider(name string) *stubProvider {
	return &stubProvider{
		name:    name,
		periods: map[models.FiscalPeriod]bool{},
		table: &models.Table{
			Fields: []string{"code", "value"},
			Rows:   [][]string{{"x", "1"}},
			Source: name,
		},
	}
}

func (p *stubProvider) record(op string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, op)
}

func (p *stubProvider) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *stubProvider) generic(op string) (*models.Table, error) {
	p.record(op)
	if p.err != nil {
		return nil, p.err
	}
	return p.table, nil
}

func (p *stubProvider) statement(op string, period models.FiscalPeriod) (*models.Table, error) {
	p.record(op + ":" + period.String())
	if p.periods[period] {
		return &models.Table{
			Fields: []string{"statDate", "metric"},
			Rows:   [][]string{{period.EndDate(), "0.1"}},
			Source: p.name,
		}, nil
	}
	return nil, models.NewProviderError(p.name, op, models.ErrNoData, nil)
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) GetHistoricalKData(_ context.Context, _ string, req models.KDataRequest) (*models.Table, error) {
	return p.generic("k_data:" + req.Frequency + ":" + req.AdjustFlag)
}
func (p *stubProvider) GetStockBasicInfo(_ context.Context, _ string, fields []string) (*models.Table, error) {
	return p.generic("basic:" + strings.Join(fields, ","))
}
func (p *stubProvider) GetDividendData(_ context.Context, _, year, yearType string) (*models.Table, error) {
	return p.generic("dividend:" + year + ":" + yearType)
}
func (p *stubProvider) GetAdjustFactorData(context.Context, string, models.DateRange) (*models.Table, error) {
	return p.generic("adjust_factor")
}
func (p *stubProvider) GetPerformanceExpressReport(context.Context, string, models.DateRange) (*models.Table, error) {
	return p.generic("performance_express")
}
func (p *stubProvider) GetForecastReport(context.Context, string, models.DateRange) (*models.Table, error) {
	return p.generic("forecast")
}
func (p *stubProvider) GetProfitData(_ context.Context, _ string, period models.FiscalPeriod) (*models.Table, error) {
	return p.statement("profit", period)
}
func (p *stubProvider) GetOperationData(_ context.Context, _ string, period models.FiscalPeriod) (*models.Table, error) {
	return p.statement("operation", period)
}
func (p *stubProvider) GetGrowthData(_ context.Context, _ string, period models.FiscalPeriod) (*models.Table, error) {
	return p.statement("growth", period)
}
func (p *stubProvider) GetBalanceData(_ context.Context, _ string, period models.FiscalPeriod) (*models.Table, error) {
	return p.statement("balance", period)
}
func (p *stubProvider) GetCashFlowData(_ context.Context, _ string, period models.FiscalPeriod) (*models.Table, error) {
	return p.statement("cash_flow", period)
}
func (p *stubProvider) GetDupontData(_ context.Context, _ string, period models.FiscalPeriod) (*models.Table, error) {
	return p.statement("dupont", period)
}
func (p *stubProvider) GetStockIndustry(context.Context, string, string) (*models.Table, error) {
	return p.generic("industry")
}
func (p *stubProvider) GetIndexConstituents(_ context.Context, index models.IndexName, _ string) (*models.Table, error) {
	return p.generic("index:" + string(index))
}
func (p *stubProvider) GetAllStock(context.Context, string) (*models.Table, error) {
	return p.generic("all_stock")
}
func (p *stubProvider) GetTradeDates(context.Context, models.DateRange) (*models.Table, error) {
	return p.generic("trade_dates")
}
func (p *stubProvider) GetMacroSeries(_ context.Context, q models.MacroQuery) (*models.Table, error) {
	return p.generic("macro:" + string(q.Series))
}

// memoryStore is an in-process ResolutionStore.
type memoryStore struct {
	mu      sync.Mutex
	records map[string]*models.ResolutionRecord
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: map[string]*models.ResolutionRecord{}}
}

func storeKey(code string, category models.StatementCategory) string {
	return strings.ToUpper(strings.TrimSpace(code)) + "/" + string(category)
}

func (s *memoryStore) SaveResolution(_ context.Context, rec *models.ResolutionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	s.records[storeKey(rec.Code, rec.Category)] = &cp
	return nil
}

func (s *memoryStore) GetResolution(_ context.Context, code string, category models.StatementCategory) (*models.ResolutionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[storeKey(code, category)], nil
}

func (s *memoryStore) ListResolutions(_ context.Context, code string) ([]*models.ResolutionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.ResolutionRecord
	prefix := strings.ToUpper(strings.TrimSpace(code)) + "/"
	for k, r := range s.records {
		if strings.HasPrefix(k, prefix) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memoryStore) Close() error { return nil }

// stubSearcher answers every search with table or err.
type stubSearcher struct {
	table *models.Table
	err   error

	mu    sync.Mutex
	calls []string
}

func (s *stubSearcher) SearchStocks(_ context.Context, segment models.MarketSegment, keyword string) (*models.Table, error) {
	s.mu.Lock()
	s.calls = append(s.calls, string(segment)+":"+keyword)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.table, nil
}

func (s *stubSearcher) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}
