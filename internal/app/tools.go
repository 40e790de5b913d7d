package app

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func codeParam() mcp.ToolOption {
	return mcp.WithString("code",
		mcp.Required(),
		mcp.Description("Security identifier: 'sh.600000'/'sz.000001' (A-share), '00700' or '0700.HK' (Hong Kong), 'AAPL' (US), 'AU2412' or 'GOLD' (commodity)"),
	)
}

func dateRangeParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("start_date", mcp.Description("Start date YYYY-MM-DD (optional)")),
		mcp.WithString("end_date", mcp.Description("End date YYYY-MM-DD (optional)")),
	}
}

func limitParam() mcp.ToolOption {
	return mcp.WithNumber("limit", mcp.Description("Maximum rows to show (default: 50, max: 500)"))
}

// createGetVersionTool returns the get_version tool definition
func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the server version and status. Use this to verify connectivity."),
	)
}

// createClassifyMarketTool returns the classify_market tool definition
func createClassifyMarketTool() mcp.Tool {
	return mcp.NewTool("classify_market",
		mcp.WithDescription("Classify a security identifier into its market segment and show which provider serves it."),
		codeParam(),
	)
}

// createGetHistoricalKDataTool returns the get_historical_k_data tool definition
func createGetHistoricalKDataTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Get historical OHLCV bars for a security. The provider is chosen from the identifier's market."),
		codeParam(),
		mcp.WithString("frequency", mcp.Description("Bar frequency: d (daily), w (weekly), m (monthly), or 5/15/30/60 minutes (default: d)")),
		mcp.WithString("adjust_flag", mcp.Description("Price adjustment: 1 (backward), 2 (forward), 3 (none, default)")),
		mcp.WithArray("fields", mcp.WithStringItems(), mcp.Description("Columns to request (default: date, code, open, high, low, close, volume, amount, adjustflag)")),
		limitParam(),
	}
	return mcp.NewTool("get_historical_k_data", append(opts, dateRangeParams()...)...)
}

// createGetStockBasicInfoTool returns the get_stock_basic_info tool definition
func createGetStockBasicInfoTool() mcp.Tool {
	return mcp.NewTool("get_stock_basic_info",
		mcp.WithDescription("Get listing details for a security (name, listing date, type, status)."),
		codeParam(),
		mcp.WithArray("fields", mcp.WithStringItems(), mcp.Description("Columns to keep (default: all)")),
	)
}

// createGetDividendDataTool returns the get_dividend_data tool definition
func createGetDividendDataTool() mcp.Tool {
	return mcp.NewTool("get_dividend_data",
		mcp.WithDescription("Get dividend announcements for a security in a year."),
		codeParam(),
		mcp.WithString("year", mcp.Required(), mcp.Description("Year, e.g. '2023'")),
		mcp.WithString("year_type", mcp.Description("'report' (announcement year, default) or 'operate' (ex-dividend year)")),
	)
}

// createGetCorporateReportTool covers the date-ranged corporate datasets
func createGetCorporateReportTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Get a date-ranged corporate dataset: adjust factors, performance express reports or earnings forecasts."),
		codeParam(),
		mcp.WithString("report",
			mcp.Required(),
			mcp.Description("Dataset: adjust_factor, performance_express or forecast"),
		),
	}
	return mcp.NewTool("get_corporate_report", append(opts, dateRangeParams()...)...)
}

// createGetFinancialStatementTool returns the get_financial_statement tool definition
func createGetFinancialStatementTool() mcp.Tool {
	return mcp.NewTool("get_financial_statement",
		mcp.WithDescription("Get one quarterly financial statement category for an explicit fiscal period. Use get_latest_financials when the latest published quarter is unknown."),
		codeParam(),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Description("Category: profitability, growth, solvency, dupont, cash_flow, operation"),
		),
		mcp.WithNumber("year", mcp.Required(), mcp.Description("Fiscal year, e.g. 2024")),
		mcp.WithNumber("quarter", mcp.Required(), mcp.Description("Fiscal quarter 1-4")),
	)
}

// createGetLatestFinancialsTool returns the get_latest_financials tool definition
func createGetLatestFinancialsTool() mcp.Tool {
	return mcp.NewTool("get_latest_financials",
		mcp.WithDescription("Find the most recent published quarter for a statement category, stepping back one quarter at a time, and grade its freshness (current, aging, stale)."),
		codeParam(),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Description("Category: profitability, growth, solvency, dupont, cash_flow, operation"),
		),
	)
}

// createGetFundamentalSnapshotTool returns the get_fundamental_snapshot tool definition
func createGetFundamentalSnapshotTool() mcp.Tool {
	return mcp.NewTool("get_fundamental_snapshot",
		mcp.WithDescription("Resolve the latest available quarter for several statement categories at once and report each section's freshness."),
		codeParam(),
		mcp.WithArray("categories",
			mcp.WithStringItems(),
			mcp.Description("Categories to include (default: profitability, growth, solvency, dupont)"),
		),
	)
}

// createGetStockIndustryTool returns the get_stock_industry tool definition
func createGetStockIndustryTool() mcp.Tool {
	return mcp.NewTool("get_stock_industry",
		mcp.WithDescription("Get industry classification. Without a code the whole market is listed."),
		mcp.WithString("code", mcp.Description("Security identifier (optional)")),
		mcp.WithString("date", mcp.Description("Classification date YYYY-MM-DD (optional)")),
		limitParam(),
	)
}

// createGetIndexConstituentsTool returns the get_index_constituents tool definition
func createGetIndexConstituentsTool() mcp.Tool {
	return mcp.NewTool("get_index_constituents",
		mcp.WithDescription("Get the constituents of a major domestic index."),
		mcp.WithString("index", mcp.Required(), mcp.Description("Index: sz50, hs300, zz500")),
		mcp.WithString("date", mcp.Description("Constituent date YYYY-MM-DD (optional)")),
		limitParam(),
	)
}

// createGetAllStockTool returns the get_all_stock tool definition
func createGetAllStockTool() mcp.Tool {
	return mcp.NewTool("get_all_stock",
		mcp.WithDescription("List every security and its trading status on a date."),
		mcp.WithString("date", mcp.Description("Trading date YYYY-MM-DD (optional)")),
		limitParam(),
	)
}

// createGetTradeDatesTool returns the get_trade_dates tool definition
func createGetTradeDatesTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Get the trading calendar over a date range."),
		limitParam(),
	}
	return mcp.NewTool("get_trade_dates", append(opts, dateRangeParams()...)...)
}

// createGetMacroSeriesTool returns the get_macro_series tool definition
func createGetMacroSeriesTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Get a macroeconomic series."),
		mcp.WithString("series",
			mcp.Required(),
			mcp.Description("Series: deposit_rate, loan_rate, reserve_ratio, money_supply_month, money_supply_year, shibor"),
		),
		mcp.WithString("year_type", mcp.Description("Reserve ratio only: 0 (announcement date, default) or 1 (effective date)")),
		limitParam(),
	}
	return mcp.NewTool("get_macro_series", append(opts, dateRangeParams()...)...)
}

// createGetResolutionHistoryTool returns the get_resolution_history tool definition
func createGetResolutionHistoryTool() mcp.Tool {
	return mcp.NewTool("get_resolution_history",
		mcp.WithDescription("Show stored latest-period resolutions for a security, newest first."),
		codeParam(),
	)
}

// createGetLatestTradingDateTool returns the get_latest_trading_date tool definition
func createGetLatestTradingDateTool() mcp.Tool {
	return mcp.NewTool("get_latest_trading_date",
		mcp.WithDescription("Get the most recent trading day on or before today from the exchange calendar."),
	)
}

// createGetMarketAnalysisTimeframeTool returns the get_market_analysis_timeframe tool definition
func createGetMarketAnalysisTimeframeTool() mcp.Tool {
	return mcp.NewTool("get_market_analysis_timeframe",
		mcp.WithDescription("Get the date range to use for a market analysis window ending today. Feed start_date and end_date into the date-ranged tools."),
		mcp.WithString("period", mcp.Description("Window: recent (60 days, default), quarter (90 days), half_year (180 days), year (365 days)")),
	)
}

// createGetLatestQuoteTool returns the get_latest_quote tool definition
func createGetLatestQuoteTool() mcp.Tool {
	return mcp.NewTool("get_latest_quote",
		mcp.WithDescription("Get the most recent daily bar for a security, a delayed stand-in for a realtime quote."),
		codeParam(),
	)
}

// createSearchStocksTool returns the search_stocks tool definition
func createSearchStocksTool() mcp.Tool {
	return mcp.NewTool("search_stocks",
		mcp.WithDescription("Search the listings of one market by code or name fragment, ignoring case."),
		mcp.WithString("keyword", mcp.Required(), mcp.Description("Code or name fragment, e.g. '00700', 'hk.00700', 'Tencent' or '腾讯'")),
		mcp.WithString("market", mcp.Description("Market to search: hk (default), us, a")),
		limitParam(),
	)
}

// createGetPopularStocksTool returns the get_popular_stocks tool definition
func createGetPopularStocksTool() mcp.Tool {
	return mcp.NewTool("get_popular_stocks",
		mcp.WithDescription("List widely followed Hong Kong stocks with their sectors, as a starting point for other tools."),
		mcp.WithNumber("limit", mcp.Description("Maximum rows to show (default: all)")),
	)
}
