package router

import (
	"context"
	"fmt"

	"github.com/bobmcallan/stockreport/internal/common"
	"github.com/bobmcallan/stockreport/internal/interfaces"
	"github.com/bobmcallan/stockreport/internal/models"
)

// Table is the static routing policy: one provider per segment plus the
// provider serving market-wide datasets.
type Table struct {
	Segments   map[models.MarketSegment]interfaces.Provider
	MarketWide interfaces.Provider
}

// DefaultTable routes the domestic exchange and market-wide datasets to
// quality and everything else to coverage.
func DefaultTable(quality, coverage interfaces.Provider) Table {
	return Table{
		Segments: map[models.MarketSegment]interfaces.Provider{
			models.SegmentDomestic:  quality,
			models.SegmentHongKong:  coverage,
			models.SegmentUS:        coverage,
			models.SegmentCommodity: coverage,
			models.SegmentUnknown:   coverage,
		},
		MarketWide: quality,
	}
}

// TableFromConfig builds a routing table from provider names.
func TableFromConfig(cfg common.RoutingConfig, providers map[string]interfaces.Provider) (Table, error) {
	lookup := func(name string) (interfaces.Provider, error) {
		p, ok := providers[name]
		if !ok || p == nil {
			return nil, fmt.Errorf("routing references unknown provider %q", name)
		}
		return p, nil
	}

	t := Table{Segments: map[models.MarketSegment]interfaces.Provider{}}
	entries := []struct {
		segment models.MarketSegment
		name    string
	}{
		{models.SegmentDomestic, cfg.Domestic},
		{models.SegmentHongKong, cfg.HongKong},
		{models.SegmentUS, cfg.US},
		{models.SegmentCommodity, cfg.Commodity},
		{models.SegmentUnknown, cfg.Unknown},
	}
	for _, e := range entries {
		p, err := lookup(e.name)
		if err != nil {
			return Table{}, fmt.Errorf("segment %s: %w", e.segment, err)
		}
		t.Segments[e.segment] = p
	}

	mw, err := lookup(cfg.MarketWide)
	if err != nil {
		return Table{}, fmt.Errorf("market-wide: %w", err)
	}
	t.MarketWide = mw
	return t, nil
}

// Router forwards provider operations to the provider configured for the
// identifier's segment. It never retries, substitutes providers or alters
// provider errors.
type Router struct {
	segments   map[models.MarketSegment]interfaces.Provider
	marketWide interfaces.Provider
	classifier *Classifier
	logger     *common.Logger
}

// New validates and copies table. Every segment needs a provider.
func New(table Table, classifier *Classifier, logger *common.Logger) (*Router, error) {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	if classifier == nil {
		classifier = NewClassifier(logger)
	}

	segments := make(map[models.MarketSegment]interfaces.Provider, len(table.Segments))
	for _, seg := range models.AllSegments() {
		p, ok := table.Segments[seg]
		if !ok || p == nil {
			return nil, fmt.Errorf("routing table has no provider for segment %s", seg)
		}
		segments[seg] = p
	}
	if table.MarketWide == nil {
		return nil, fmt.Errorf("routing table has no market-wide provider")
	}

	return &Router{
		segments:   segments,
		marketWide: table.MarketWide,
		classifier: classifier,
		logger:     logger,
	}, nil
}

// Classify returns the market segment of code.
func (r *Router) Classify(code string) models.MarketSegment {
	return r.classifier.Classify(code)
}

// Route returns the provider serving code.
func (r *Router) Route(code string) interfaces.Provider {
	return r.segments[r.Classify(code)]
}

// ProviderFor returns the provider configured for a segment.
func (r *Router) ProviderFor(segment models.MarketSegment) interfaces.Provider {
	if p, ok := r.segments[segment]; ok {
		return p
	}
	return r.segments[models.SegmentUnknown]
}

// MarketWideProvider returns the provider serving market-wide datasets.
func (r *Router) MarketWideProvider() interfaces.Provider {
	return r.marketWide
}

// MarketInfo describes how code is classified and routed.
func (r *Router) MarketInfo(code string) models.MarketInfo {
	segment := r.Classify(code)
	provider := r.ProviderFor(segment)

	desc := fmt.Sprintf("%s market, served by %s", segment.DisplayName(), provider.Name())
	if segment == models.SegmentUnknown {
		desc = fmt.Sprintf("Unrecognized identifier format, served by default provider %s", provider.Name())
	}

	return models.MarketInfo{
		Code:        Normalize(code),
		Segment:     segment,
		Market:      segment.DisplayName(),
		Provider:    provider.Name(),
		Description: desc,
	}
}

func (r *Router) route(code, operation string) interfaces.Provider {
	segment := r.Classify(code)
	p := r.segments[segment]
	r.logger.Debug().
		Str("identifier", code).
		Str("segment", string(segment)).
		Str("provider", p.Name()).
		Str("operation", operation).
		Msg("Routing request")
	return p
}

func (r *Router) routeMarketWide(operation string) interfaces.Provider {
	r.logger.Debug().
		Str("provider", r.marketWide.Name()).
		Str("operation", operation).
		Msg("Routing market-wide request")
	return r.marketWide
}

// Name identifies the router as a provider.
func (r *Router) Name() string {
	return "router"
}

func (r *Router) GetHistoricalKData(ctx context.Context, code string, req models.KDataRequest) (*models.Table, error) {
	return r.route(code, "historical_k_data").GetHistoricalKData(ctx, code, req)
}

func (r *Router) GetStockBasicInfo(ctx context.Context, code string, fields []string) (*models.Table, error) {
	return r.route(code, "stock_basic_info").GetStockBasicInfo(ctx, code, fields)
}

func (r *Router) GetDividendData(ctx context.Context, code string, year string, yearType string) (*models.Table, error) {
	return r.route(code, "dividend_data").GetDividendData(ctx, code, year, yearType)
}

func (r *Router) GetAdjustFactorData(ctx context.Context, code string, dr models.DateRange) (*models.Table, error) {
	return r.route(code, "adjust_factor_data").GetAdjustFactorData(ctx, code, dr)
}

func (r *Router) GetPerformanceExpressReport(ctx context.Context, code string, dr models.DateRange) (*models.Table, error) {
	return r.route(code, "performance_express_report").GetPerformanceExpressReport(ctx, code, dr)
}

func (r *Router) GetForecastReport(ctx context.Context, code string, dr models.DateRange) (*models.Table, error) {
	return r.route(code, "forecast_report").GetForecastReport(ctx, code, dr)
}

func (r *Router) GetProfitData(ctx context.Context, code string, period models.FiscalPeriod) (*models.Table, error) {
	return r.route(code, "profit_data").GetProfitData(ctx, code, period)
}

func (r *Router) GetOperationData(ctx context.Context, code string, period models.FiscalPeriod) (*models.Table, error) {
	return r.route(code, "operation_data").GetOperationData(ctx, code, period)
}

func (r *Router) GetGrowthData(ctx context.Context, code string, period models.FiscalPeriod) (*models.Table, error) {
	return r.route(code, "growth_data").GetGrowthData(ctx, code, period)
}

func (r *Router) GetBalanceData(ctx context.Context, code string, period models.FiscalPeriod) (*models.Table, error) {
	return r.route(code, "balance_data").GetBalanceData(ctx, code, period)
}

func (r *Router) GetCashFlowData(ctx context.Context, code string, period models.FiscalPeriod) (*models.Table, error) {
	return r.route(code, "cash_flow_data").GetCashFlowData(ctx, code, period)
}

func (r *Router) GetDupontData(ctx context.Context, code string, period models.FiscalPeriod) (*models.Table, error) {
	return r.route(code, "dupont_data").GetDupontData(ctx, code, period)
}

// GetStockIndustry goes to the market-wide provider for any identifier.
func (r *Router) GetStockIndustry(ctx context.Context, code string, date string) (*models.Table, error) {
	return r.routeMarketWide("stock_industry").GetStockIndustry(ctx, code, date)
}

func (r *Router) GetIndexConstituents(ctx context.Context, index models.IndexName, date string) (*models.Table, error) {
	return r.routeMarketWide("index_constituents").GetIndexConstituents(ctx, index, date)
}

func (r *Router) GetAllStock(ctx context.Context, date string) (*models.Table, error) {
	return r.routeMarketWide("all_stock").GetAllStock(ctx, date)
}

func (r *Router) GetTradeDates(ctx context.Context, dr models.DateRange) (*models.Table, error) {
	return r.routeMarketWide("trade_dates").GetTradeDates(ctx, dr)
}

func (r *Router) GetMacroSeries(ctx context.Context, q models.MacroQuery) (*models.Table, error) {
	return r.routeMarketWide("macro_series").GetMacroSeries(ctx, q)
}

// Ensure Router implements MarketRouter
var _ interfaces.MarketRouter = (*Router)(nil)
