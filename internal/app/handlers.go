package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/stockreport/internal/common"
	"github.com/bobmcallan/stockreport/internal/interfaces"
	"github.com/bobmcallan/stockreport/internal/models"
	"github.com/bobmcallan/stockreport/internal/services/financials"
)

const (
	defaultRowLimit = 50
	maxRowLimit     = 500
)

// resolutionHistory is the part of the analysis service the history tool reads.
type resolutionHistory interface {
	HasStore() bool
	History(ctx context.Context, code string) ([]*models.ResolutionRecord, error)
}

// registerTools registers all MCP tools on the App's MCPServer.
func (a *App) registerTools() {
	s := a.MCPServer
	rt := a.Router
	logger := a.Logger

	s.AddTool(createGetVersionTool(), handleGetVersion())
	s.AddTool(createClassifyMarketTool(), handleClassifyMarket(rt))
	s.AddTool(createGetHistoricalKDataTool(), handleGetHistoricalKData(rt, logger))
	s.AddTool(createGetStockBasicInfoTool(), handleGetStockBasicInfo(rt, logger))
	s.AddTool(createGetDividendDataTool(), handleGetDividendData(rt, logger))
	s.AddTool(createGetCorporateReportTool(), handleGetCorporateReport(rt, logger))
	s.AddTool(createGetFinancialStatementTool(), handleGetFinancialStatement(rt, logger))
	s.AddTool(createGetLatestFinancialsTool(), handleGetLatestFinancials(a.Analysis))
	s.AddTool(createGetFundamentalSnapshotTool(), handleGetFundamentalSnapshot(a.Analysis, logger))
	s.AddTool(createGetStockIndustryTool(), handleGetStockIndustry(rt, logger))
	s.AddTool(createGetIndexConstituentsTool(), handleGetIndexConstituents(rt, logger))
	s.AddTool(createGetAllStockTool(), handleGetAllStock(rt, logger))
	s.AddTool(createGetTradeDatesTool(), handleGetTradeDates(rt, logger))
	s.AddTool(createGetMacroSeriesTool(), handleGetMacroSeries(rt, logger))
	s.AddTool(createGetResolutionHistoryTool(), handleGetResolutionHistory(a.Analysis, logger))
	s.AddTool(createGetLatestTradingDateTool(), handleGetLatestTradingDate(rt, a.Resolver.Now, logger))
	s.AddTool(createGetMarketAnalysisTimeframeTool(), handleGetMarketAnalysisTimeframe(a.Resolver.Now))
	s.AddTool(createGetLatestQuoteTool(), handleGetLatestQuote(rt, a.Resolver.Now, logger))
	s.AddTool(createSearchStocksTool(), handleSearchStocks(a.Searcher, logger))
	s.AddTool(createGetPopularStocksTool(), handleGetPopularStocks())
}

// handleGetVersion implements the get_version tool
func handleGetVersion() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := fmt.Sprintf("Stockreport MCP Server\nVersion: %s\nBuild: %s\nCommit: %s\nStatus: OK",
			common.GetVersion(), common.GetBuild(), common.GetGitCommit())
		return textResult(result), nil
	}
}

// handleClassifyMarket implements the classify_market tool
func handleClassifyMarket(rt interfaces.MarketRouter) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		code, err := request.RequireString("code")
		if err != nil || strings.TrimSpace(code) == "" {
			return errorResult("Error: code parameter is required"), nil
		}
		return textResult(formatMarketInfo(rt.MarketInfo(code))), nil
	}
}

// handleGetHistoricalKData implements the get_historical_k_data tool
func handleGetHistoricalKData(p interfaces.Provider, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		code, err := request.RequireString("code")
		if err != nil || strings.TrimSpace(code) == "" {
			return errorResult("Error: code parameter is required"), nil
		}
		dr, err := dateRangeArgs(request)
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}

		req := models.KDataRequest{
			Fields:     request.GetStringSlice("fields", nil),
			Range:      dr,
			Frequency:  request.GetString("frequency", ""),
			AdjustFlag: request.GetString("adjust_flag", ""),
		}.Normalize()

		tbl, err := p.GetHistoricalKData(ctx, code, req)
		if err != nil {
			return providerErrorResult(logger, "historical_k_data", code, err), nil
		}
		title := fmt.Sprintf("Historical K-Data: %s (%s)", code, frequencyLabel(req.Frequency))
		return textResult(formatTable(title, tbl, limitArg(request))), nil
	}
}

// handleGetStockBasicInfo implements the get_stock_basic_info tool
func handleGetStockBasicInfo(p interfaces.Provider, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		code, err := request.RequireString("code")
		if err != nil || strings.TrimSpace(code) == "" {
			return errorResult("Error: code parameter is required"), nil
		}

		tbl, err := p.GetStockBasicInfo(ctx, code, request.GetStringSlice("fields", nil))
		if err != nil {
			return providerErrorResult(logger, "stock_basic_info", code, err), nil
		}
		return textResult(formatTable("Basic Info: "+code, tbl, defaultRowLimit)), nil
	}
}

// handleGetDividendData implements the get_dividend_data tool
func handleGetDividendData(p interfaces.Provider, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		code, err := request.RequireString("code")
		if err != nil || strings.TrimSpace(code) == "" {
			return errorResult("Error: code parameter is required"), nil
		}
		year, err := request.RequireString("year")
		if err != nil || len(year) != 4 {
			return errorResult("Error: year parameter is required (YYYY)"), nil
		}

		tbl, err := p.GetDividendData(ctx, code, year, request.GetString("year_type", "report"))
		if err != nil {
			return providerErrorResult(logger, "dividend_data", code, err), nil
		}
		return textResult(formatTable(fmt.Sprintf("Dividends: %s (%s)", code, year), tbl, defaultRowLimit)), nil
	}
}

// handleGetCorporateReport implements the get_corporate_report tool
func handleGetCorporateReport(p interfaces.Provider, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		code, err := request.RequireString("code")
		if err != nil || strings.TrimSpace(code) == "" {
			return errorResult("Error: code parameter is required"), nil
		}
		dr, err := dateRangeArgs(request)
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}

		var tbl *models.Table
		report := strings.ToLower(request.GetString("report", ""))
		switch report {
		case "adjust_factor":
			tbl, err = p.GetAdjustFactorData(ctx, code, dr)
		case "performance_express":
			tbl, err = p.GetPerformanceExpressReport(ctx, code, dr)
		case "forecast":
			tbl, err = p.GetForecastReport(ctx, code, dr)
		default:
			return errorResult("Error: report must be one of adjust_factor, performance_express, forecast"), nil
		}
		if err != nil {
			return providerErrorResult(logger, report, code, err), nil
		}
		return textResult(formatTable(fmt.Sprintf("%s: %s", reportTitle(report), code), tbl, defaultRowLimit)), nil
	}
}

// handleGetFinancialStatement implements the get_financial_statement tool
func handleGetFinancialStatement(p interfaces.Provider, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		code, err := request.RequireString("code")
		if err != nil || strings.TrimSpace(code) == "" {
			return errorResult("Error: code parameter is required"), nil
		}
		category, err := models.ParseStatementCategory(request.GetString("category", ""))
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}
		period := models.FiscalPeriod{
			Year:    request.GetInt("year", 0),
			Quarter: request.GetInt("quarter", 0),
		}
		if !period.Valid() {
			return errorResult("Error: year and quarter (1-4) are required"), nil
		}

		tbl, err := financials.FetchPeriod(ctx, p, code, category, period)
		if err != nil {
			return providerErrorResult(logger, string(category), code, err), nil
		}
		title := fmt.Sprintf("%s: %s %s", category.Title(), code, period)
		return textResult(formatTable(title, tbl, defaultRowLimit)), nil
	}
}

// handleGetLatestFinancials implements the get_latest_financials tool
func handleGetLatestFinancials(svc interfaces.AnalysisService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		code, err := request.RequireString("code")
		if err != nil || strings.TrimSpace(code) == "" {
			return errorResult("Error: code parameter is required"), nil
		}
		category, err := models.ParseStatementCategory(request.GetString("category", ""))
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}

		section := svc.ResolveLatest(ctx, code, category)
		return textResult(formatSection(code, section)), nil
	}
}

// handleGetFundamentalSnapshot implements the get_fundamental_snapshot tool
func handleGetFundamentalSnapshot(svc interfaces.AnalysisService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		code, err := request.RequireString("code")
		if err != nil || strings.TrimSpace(code) == "" {
			return errorResult("Error: code parameter is required"), nil
		}

		var categories []models.StatementCategory
		for _, name := range request.GetStringSlice("categories", nil) {
			c, err := models.ParseStatementCategory(name)
			if err != nil {
				return errorResult("Error: " + err.Error()), nil
			}
			categories = append(categories, c)
		}

		snap, err := svc.Snapshot(ctx, code, categories)
		if err != nil {
			logger.Error().Err(err).Str("identifier", code).Msg("Fundamental snapshot failed")
			return errorResult(fmt.Sprintf("Snapshot error: %v", err)), nil
		}
		return textResult(formatSnapshot(snap)), nil
	}
}

// handleGetStockIndustry implements the get_stock_industry tool
func handleGetStockIndustry(p interfaces.Provider, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		code := request.GetString("code", "")
		date := request.GetString("date", "")
		if err := checkDate("date", date); err != nil {
			return errorResult("Error: " + err.Error()), nil
		}

		tbl, err := p.GetStockIndustry(ctx, code, date)
		if err != nil {
			return providerErrorResult(logger, "stock_industry", code, err), nil
		}
		title := "Industry Classification"
		if code != "" {
			title += ": " + code
		}
		return textResult(formatTable(title, tbl, limitArg(request))), nil
	}
}

// handleGetIndexConstituents implements the get_index_constituents tool
func handleGetIndexConstituents(p interfaces.Provider, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		index, err := models.ParseIndexName(request.GetString("index", ""))
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}
		date := request.GetString("date", "")
		if err := checkDate("date", date); err != nil {
			return errorResult("Error: " + err.Error()), nil
		}

		tbl, err := p.GetIndexConstituents(ctx, index, date)
		if err != nil {
			return providerErrorResult(logger, "index_constituents", string(index), err), nil
		}
		return textResult(formatTable("Index Constituents: "+strings.ToUpper(string(index)), tbl, limitArg(request))), nil
	}
}

// handleGetAllStock implements the get_all_stock tool
func handleGetAllStock(p interfaces.Provider, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date := request.GetString("date", "")
		if err := checkDate("date", date); err != nil {
			return errorResult("Error: " + err.Error()), nil
		}

		tbl, err := p.GetAllStock(ctx, date)
		if err != nil {
			return providerErrorResult(logger, "all_stock", "", err), nil
		}
		return textResult(formatTable("All Securities", tbl, limitArg(request))), nil
	}
}

// handleGetTradeDates implements the get_trade_dates tool
func handleGetTradeDates(p interfaces.Provider, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dr, err := dateRangeArgs(request)
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}

		tbl, err := p.GetTradeDates(ctx, dr)
		if err != nil {
			return providerErrorResult(logger, "trade_dates", "", err), nil
		}
		return textResult(formatTable("Trading Calendar", tbl, limitArg(request))), nil
	}
}

// handleGetMacroSeries implements the get_macro_series tool
func handleGetMacroSeries(p interfaces.Provider, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		series, err := models.ParseMacroSeries(request.GetString("series", ""))
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}
		dr, err := dateRangeArgs(request)
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}

		tbl, err := p.GetMacroSeries(ctx, models.MacroQuery{
			Series:   series,
			Range:    dr,
			YearType: request.GetString("year_type", ""),
		})
		if err != nil {
			return providerErrorResult(logger, string(series), "", err), nil
		}
		return textResult(formatTable("Macro Series: "+string(series), tbl, limitArg(request))), nil
	}
}

// handleGetResolutionHistory implements the get_resolution_history tool
func handleGetResolutionHistory(svc resolutionHistory, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		code, err := request.RequireString("code")
		if err != nil || strings.TrimSpace(code) == "" {
			return errorResult("Error: code parameter is required"), nil
		}
		if !svc.HasStore() {
			return textResult("Resolution history is unavailable: storage is not configured."), nil
		}

		records, err := svc.History(ctx, code)
		if err != nil {
			logger.Error().Err(err).Str("identifier", code).Msg("Resolution history failed")
			return errorResult(fmt.Sprintf("History error: %v", err)), nil
		}
		return textResult(formatHistory(code, records)), nil
	}
}

// calendarWindow is how far back the latest trading day is looked for.
const calendarWindow = 30 * 24 * time.Hour

// quoteWindow covers the longest exchange holiday when looking for the last bar.
const quoteWindow = 14 * 24 * time.Hour

// handleGetLatestTradingDate implements the get_latest_trading_date tool
func handleGetLatestTradingDate(p interfaces.Provider, now func() time.Time, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		today := now()
		dr := models.DateRange{
			Start: today.Add(-calendarWindow).Format("2006-01-02"),
			End:   today.Format("2006-01-02"),
		}

		tbl, err := p.GetTradeDates(ctx, dr)
		if err != nil {
			return providerErrorResult(logger, "latest_trading_date", "", err), nil
		}
		date, ok := latestTradingDay(tbl, dr.End)
		if !ok {
			return textResult(fmt.Sprintf("No data found: no trading day between %s and %s", dr.Start, dr.End)), nil
		}
		return textResult(fmt.Sprintf("Latest trading date: %s\n**Source:** %s", date, tbl.Source)), nil
	}
}

// latestTradingDay returns the last calendar row on or before end that is a
// trading day. Calendars carry either calendar_date with an is_trading_day
// flag or a plain trade_date list.
func latestTradingDay(tbl *models.Table, end string) (string, bool) {
	dateCol := "calendar_date"
	if tbl.FieldIndex(dateCol) < 0 {
		dateCol = "trade_date"
	}
	if tbl.FieldIndex(dateCol) < 0 {
		return "", false
	}
	flagged := tbl.FieldIndex("is_trading_day") >= 0

	latest := ""
	for i := range tbl.Rows {
		d := tbl.Value(i, dateCol)
		if len(d) > 10 {
			d = d[:10]
		}
		if d == "" || d > end || d <= latest {
			continue
		}
		if flagged && tbl.Value(i, "is_trading_day") != "1" {
			continue
		}
		latest = d
	}
	return latest, latest != ""
}

var timeframes = map[string]int{
	"recent":    60,
	"quarter":   90,
	"half_year": 180,
	"year":      365,
}

// analysisTimeframe returns the window of the named length ending at now.
func analysisTimeframe(period string, now time.Time) (models.DateRange, error) {
	if period == "" {
		period = "recent"
	}
	days, ok := timeframes[period]
	if !ok {
		return models.DateRange{}, fmt.Errorf("period must be one of recent, quarter, half_year, year, got %q", period)
	}
	return models.DateRange{
		Start: now.AddDate(0, 0, -days).Format("2006-01-02"),
		End:   now.Format("2006-01-02"),
	}, nil
}

// handleGetMarketAnalysisTimeframe implements the get_market_analysis_timeframe tool
func handleGetMarketAnalysisTimeframe(now func() time.Time) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		period := strings.ToLower(strings.TrimSpace(request.GetString("period", "")))
		dr, err := analysisTimeframe(period, now())
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}
		if period == "" {
			period = "recent"
		}
		return textResult(formatTimeframe(period, dr)), nil
	}
}

// handleGetLatestQuote implements the get_latest_quote tool
func handleGetLatestQuote(p interfaces.Provider, now func() time.Time, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		code, err := request.RequireString("code")
		if err != nil || strings.TrimSpace(code) == "" {
			return errorResult("Error: code parameter is required"), nil
		}
		today := now()
		req := models.KDataRequest{
			Range: models.DateRange{
				Start: today.Add(-quoteWindow).Format("2006-01-02"),
				End:   today.Format("2006-01-02"),
			},
		}.Normalize()

		tbl, err := p.GetHistoricalKData(ctx, code, req)
		if err != nil {
			return providerErrorResult(logger, "latest_quote", code, err), nil
		}
		if tbl.IsEmpty() {
			return textResult(fmt.Sprintf("No data found: latest_quote for %s", code)), nil
		}
		return textResult(formatTable("Latest Quote: "+code, tbl.Tail(1), 1)), nil
	}
}

// handleSearchStocks implements the search_stocks tool
func handleSearchStocks(searcher interfaces.StockSearcher, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		keyword, err := request.RequireString("keyword")
		if err != nil || strings.TrimSpace(keyword) == "" {
			return errorResult("Error: keyword parameter is required"), nil
		}
		segment, err := parseSearchMarket(request.GetString("market", ""))
		if err != nil {
			return errorResult("Error: " + err.Error()), nil
		}
		if searcher == nil {
			return errorResult("Error: stock search is not available"), nil
		}

		tbl, err := searcher.SearchStocks(ctx, segment, keyword)
		if err != nil {
			return providerErrorResult(logger, "search_stocks", keyword, err), nil
		}
		title := fmt.Sprintf("Search Results: '%s' (%s)", keyword, segment.DisplayName())
		return textResult(formatTable(title, tbl, limitArg(request))), nil
	}
}

func parseSearchMarket(market string) (models.MarketSegment, error) {
	switch strings.ToLower(strings.TrimSpace(market)) {
	case "", "hk", "hong_kong":
		return models.SegmentHongKong, nil
	case "us":
		return models.SegmentUS, nil
	case "a", "cn", "domestic":
		return models.SegmentDomestic, nil
	}
	return "", fmt.Errorf("market must be one of hk, us, a, got %q", market)
}

// handleGetPopularStocks implements the get_popular_stocks tool
func handleGetPopularStocks() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := request.GetInt("limit", len(popularStocks))
		if limit < 1 || limit > len(popularStocks) {
			limit = len(popularStocks)
		}
		tbl := popularTable().Head(limit)
		return textResult(formatTable(fmt.Sprintf("Popular Hong Kong Stocks (top %d)", limit), tbl, limit)), nil
	}
}

// providerErrorResult maps provider error kinds onto tool results. No data
// is an answer, not a failure.
func providerErrorResult(logger *common.Logger, operation, code string, err error) *mcp.CallToolResult {
	subject := operation
	if code != "" {
		subject = fmt.Sprintf("%s for %s", operation, code)
	}

	switch {
	case errors.Is(err, models.ErrNoData):
		return textResult(fmt.Sprintf("No data found: %s", subject))
	case errors.Is(err, models.ErrProviderUnavailable):
		logger.Error().Err(err).Str("operation", operation).Str("identifier", code).Msg("Provider unavailable")
		return errorResult(fmt.Sprintf("Provider unavailable: %v", err))
	default:
		logger.Warn().Err(err).Str("operation", operation).Str("identifier", code).Msg("Data source error")
		return errorResult(fmt.Sprintf("Data source error: %v", err))
	}
}

func checkDate(name, value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return fmt.Errorf("%s must be YYYY-MM-DD, got %q", name, value)
	}
	return nil
}

func dateRangeArgs(request mcp.CallToolRequest) (models.DateRange, error) {
	dr := models.DateRange{
		Start: request.GetString("start_date", ""),
		End:   request.GetString("end_date", ""),
	}
	if err := checkDate("start_date", dr.Start); err != nil {
		return dr, err
	}
	if err := checkDate("end_date", dr.End); err != nil {
		return dr, err
	}
	if dr.Start != "" && dr.End != "" && dr.Start > dr.End {
		return dr, fmt.Errorf("start_date %s is after end_date %s", dr.Start, dr.End)
	}
	return dr, nil
}

func limitArg(request mcp.CallToolRequest) int {
	limit := request.GetInt("limit", defaultRowLimit)
	if limit < 1 {
		limit = defaultRowLimit
	}
	if limit > maxRowLimit {
		limit = maxRowLimit
	}
	return limit
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
