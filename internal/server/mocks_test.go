package server

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/stockreport/internal/app"
	"github.com/bobmcallan/stockreport/internal/common"
	"github.com/bobmcallan/stockreport/internal/interfaces"
	"github.com/bobmcallan/stockreport/internal/models"
	"github.com/bobmcallan/stockreport/internal/services/analysis"
	"github.com/bobmcallan/stockreport/internal/services/financials"
	"github.com/bobmcallan/stockreport/internal/services/router"
)

var testNow = time.Date(2024, 8, 15, 12, 0, 0, 0, time.UTC)

// statementProvider serves statements for the periods it holds. Any other
// operation panics through the nil embedded Provider.
type statementProvider struct {
	interfaces.Provider
	name    string
	periods map[models.FiscalPeriod]bool
}

func (p *statementProvider) Name() string { return p.name }

func (p *statementProvider) get(period models.FiscalPeriod) (*models.Table, error) {
	if !p.periods[period] {
		return nil, models.NewProviderError(p.name, "statement", models.ErrNoData, nil)
	}
	return &models.Table{Fields: []string{"statDate"}, Rows: [][]string{{period.EndDate()}}, Source: p.name}, nil
}

func (p *statementProvider) GetProfitData(_ context.Context, _ string, period models.FiscalPeriod) (*models.Table, error) {
	return p.get(period)
}
func (p *statementProvider) GetOperationData(_ context.Context, _ string, period models.FiscalPeriod) (*models.Table, error) {
	return p.get(period)
}
func (p *statementProvider) GetGrowthData(_ context.Context, _ string, period models.FiscalPeriod) (*models.Table, error) {
	return p.get(period)
}
func (p *statementProvider) GetBalanceData(_ context.Context, _ string, period models.FiscalPeriod) (*models.Table, error) {
	return p.get(period)
}
func (p *statementProvider) GetCashFlowData(_ context.Context, _ string, period models.FiscalPeriod) (*models.Table, error) {
	return p.get(period)
}
func (p *statementProvider) GetDupontData(_ context.Context, _ string, period models.FiscalPeriod) (*models.Table, error) {
	return p.get(period)
}

// memoryStore keeps resolutions in a map keyed by code and category.
type memoryStore struct {
	records []*models.ResolutionRecord
}

func (s *memoryStore) SaveResolution(_ context.Context, rec *models.ResolutionRecord) error {
	s.records = append(s.records, rec)
	return nil
}

func (s *memoryStore) GetResolution(_ context.Context, code string, category models.StatementCategory) (*models.ResolutionRecord, error) {
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].Code == code && s.records[i].Category == category {
			return s.records[i], nil
		}
	}
	return nil, nil
}

func (s *memoryStore) ListResolutions(_ context.Context, code string) ([]*models.ResolutionRecord, error) {
	var out []*models.ResolutionRecord
	for _, r := range s.records {
		if r.Code == code {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memoryStore) Close() error { return nil }

type testEnv struct {
	ts       *httptest.Server
	quality  *statementProvider
	coverage *statementProvider
}

// newTestEnv serves an App built around statement stubs. A nil store leaves
// history disabled.
func newTestEnv(t *testing.T, store interfaces.ResolutionStore) *testEnv {
	t.Helper()
	logger := common.NewSilentLogger()
	quality := &statementProvider{name: common.ProviderBaostock, periods: map[models.FiscalPeriod]bool{}}
	coverage := &statementProvider{name: common.ProviderAKTools, periods: map[models.FiscalPeriod]bool{}}

	rt, err := router.New(router.DefaultTable(quality, coverage), router.NewClassifier(logger), logger)
	if err != nil {
		t.Fatalf("router.New failed: %v", err)
	}
	resolver := financials.NewResolver(logger, financials.WithClock(func() time.Time { return testNow }))

	a := &app.App{
		Config:      common.NewDefaultConfig(),
		Logger:      logger,
		Router:      rt,
		Resolver:    resolver,
		Analysis:    analysis.NewService(rt, resolver, store, logger),
		Store:       store,
		MCPServer:   mcpserver.NewMCPServer("stockreport-test", "test", mcpserver.WithToolCapabilities(true)),
		StartupTime: time.Now(),
	}

	ts := httptest.NewServer(NewServer(a).Handler())
	t.Cleanup(ts.Close)
	return &testEnv{ts: ts, quality: quality, coverage: coverage}
}
