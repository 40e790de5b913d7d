package aktools

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/bobmcallan/stockreport/internal/models"
)

// symbol converts an identifier into the form akshare expects for its market.
func symbol(code string, segment models.MarketSegment) string {
	s := strings.ToUpper(strings.TrimSpace(code))
	switch segment {
	case models.SegmentDomestic:
		if i := strings.Index(s, "."); i >= 0 {
			return s[i+1:]
		}
	case models.SegmentHongKong:
		s = strings.TrimSuffix(s, ".HK")
		for len(s) < 5 {
			s = "0" + s
		}
	case models.SegmentUS:
		s = strings.TrimSuffix(s, ".US")
	}
	return s
}

func compactDate(d string) string {
	return strings.ReplaceAll(d, "-", "")
}

var frequencies = map[string]string{"d": "daily", "w": "weekly", "m": "monthly"}

var adjustments = map[string]string{"1": "hfq", "2": "qfq", "3": ""}

func unsupported(operation string, segment models.MarketSegment) error {
	return models.NewProviderError(ProviderName, operation, models.ErrNoData, fmt.Errorf("not available for %s", segment))
}

// GetHistoricalKData retrieves daily, weekly or monthly bars.
func (c *Client) GetHistoricalKData(ctx context.Context, code string, req models.KDataRequest) (*models.Table, error) {
	req = req.Normalize()
	segment := c.segmenter.Classify(code)
	sym := symbol(code, segment)

	if segment == models.SegmentCommodity {
		tbl, err := c.fetch(ctx, "futures_zh_daily_sina", url.Values{"symbol": {sym}})
		if err != nil {
			return nil, err
		}
		out := filterDateRange(tbl, "date", req.Range)
		if out.IsEmpty() {
			return nil, models.NewProviderError(ProviderName, "futures_zh_daily_sina", models.ErrNoData, nil)
		}
		return out, nil
	}

	period, ok := frequencies[req.Frequency]
	if !ok {
		return nil, models.NewProviderError(ProviderName, "historical_k_data", models.ErrDataSource, fmt.Errorf("unsupported frequency %q", req.Frequency))
	}

	var function string
	switch segment {
	case models.SegmentDomestic:
		function = "stock_zh_a_hist"
	case models.SegmentHongKong:
		function = "stock_hk_hist"
	case models.SegmentUS:
		function = "stock_us_hist"
	default:
		return nil, unsupported("historical_k_data", segment)
	}

	v := url.Values{}
	v.Set("symbol", sym)
	v.Set("period", period)
	if req.Range.Start != "" {
		v.Set("start_date", compactDate(req.Range.Start))
	}
	if req.Range.End != "" {
		v.Set("end_date", compactDate(req.Range.End))
	}
	v.Set("adjust", adjustments[req.AdjustFlag])
	return c.fetch(ctx, function, v)
}

// GetStockBasicInfo retrieves listing details. Hong Kong and US details come
// from the market spot list filtered to the identifier.
func (c *Client) GetStockBasicInfo(ctx context.Context, code string, fields []string) (*models.Table, error) {
	segment := c.segmenter.Classify(code)
	sym := symbol(code, segment)

	var tbl *models.Table
	var err error
	switch segment {
	case models.SegmentDomestic:
		tbl, err = c.fetch(ctx, "stock_individual_info_em", url.Values{"symbol": {sym}})
	case models.SegmentHongKong:
		tbl, err = c.spotRow(ctx, "stock_hk_spot_em", func(v, _ string) bool { return v == sym })
	case models.SegmentUS:
		tbl, err = c.spotRow(ctx, "stock_us_spot_em", func(v, _ string) bool { return v == sym || strings.HasSuffix(v, "."+sym) })
	default:
		return nil, unsupported("stock_basic_info", segment)
	}
	if err != nil {
		return nil, err
	}
	return keepFields(tbl, fields), nil
}

func (c *Client) spotRow(ctx context.Context, function string, match func(code, name string) bool) (*models.Table, error) {
	tbl, err := c.fetch(ctx, function, nil)
	if err != nil {
		return nil, err
	}
	col := tbl.FieldIndex("代码")
	if col < 0 {
		return nil, models.NewProviderError(ProviderName, function, models.ErrDataSource, fmt.Errorf("spot list has no code column"))
	}
	nameCol := tbl.FieldIndex("名称")
	out := tbl.Filter(func(row []string) bool {
		if col >= len(row) {
			return false
		}
		name := ""
		if nameCol >= 0 && nameCol < len(row) {
			name = row[nameCol]
		}
		return match(row[col], name)
	})
	if out.IsEmpty() {
		return nil, models.NewProviderError(ProviderName, function, models.ErrNoData, nil)
	}
	return out, nil
}

var spotFunctions = map[models.MarketSegment]string{
	models.SegmentDomestic: "stock_zh_a_spot_em",
	models.SegmentHongKong: "stock_hk_spot_em",
	models.SegmentUS:       "stock_us_spot_em",
}

// SearchStocks lists spot rows of one market whose code or name contains
// keyword, ignoring case. Market prefixes and suffixes on the keyword are
// dropped so "hk.00700" and "AAPL.US" match their listings.
func (c *Client) SearchStocks(ctx context.Context, segment models.MarketSegment, keyword string) (*models.Table, error) {
	function, ok := spotFunctions[segment]
	if !ok {
		return nil, unsupported("search_stocks", segment)
	}
	kw := strings.ToLower(strings.TrimSpace(keyword))
	for _, affix := range []string{"hk.", "sh.", "sz.", "bj."} {
		kw = strings.TrimPrefix(kw, affix)
	}
	kw = strings.TrimSuffix(strings.TrimSuffix(kw, ".hk"), ".us")
	if kw == "" {
		return nil, models.NewProviderError(ProviderName, function, models.ErrNoData, fmt.Errorf("empty keyword"))
	}
	return c.spotRow(ctx, function, func(code, name string) bool {
		return strings.Contains(strings.ToLower(code), kw) || strings.Contains(strings.ToLower(name), kw)
	})
}

// keepFields narrows tbl to the requested fields it actually has. Unknown
// names are ignored since column names differ per market.
func keepFields(tbl *models.Table, fields []string) *models.Table {
	if len(fields) == 0 {
		return tbl
	}
	var idx []int
	var names []string
	for _, f := range fields {
		if i := tbl.FieldIndex(f); i >= 0 {
			idx = append(idx, i)
			names = append(names, f)
		}
	}
	if len(idx) == 0 {
		return tbl
	}
	out := &models.Table{Fields: names, Source: tbl.Source}
	for _, row := range tbl.Rows {
		r := make([]string, len(idx))
		for j, i := range idx {
			if i < len(row) {
				r[j] = row[i]
			}
		}
		out.Rows = append(out.Rows, r)
	}
	return out
}

func (c *Client) GetDividendData(ctx context.Context, code string, year string, _ string) (*models.Table, error) {
	segment := c.segmenter.Classify(code)
	if segment != models.SegmentDomestic {
		return nil, unsupported("dividend_data", segment)
	}
	tbl, err := c.fetch(ctx, "stock_history_dividend_detail", url.Values{"symbol": {symbol(code, segment)}, "indicator": {"分红"}})
	if err != nil || year == "" {
		return tbl, err
	}
	col := tbl.FieldIndex("公告日期")
	out := tbl.Filter(func(row []string) bool { return col >= 0 && col < len(row) && strings.HasPrefix(row[col], year) })
	if out.IsEmpty() {
		return nil, models.NewProviderError(ProviderName, "stock_history_dividend_detail", models.ErrNoData, nil)
	}
	return out, nil
}

func (c *Client) GetAdjustFactorData(_ context.Context, code string, _ models.DateRange) (*models.Table, error) {
	return nil, unsupported("adjust_factor_data", c.segmenter.Classify(code))
}

func (c *Client) GetPerformanceExpressReport(_ context.Context, code string, _ models.DateRange) (*models.Table, error) {
	return nil, unsupported("performance_express_report", c.segmenter.Classify(code))
}

func (c *Client) GetForecastReport(_ context.Context, code string, _ models.DateRange) (*models.Table, error) {
	return nil, unsupported("forecast_report", c.segmenter.Classify(code))
}

// statement returns the financial indicator rows reported for period. Every
// statement category reads the same indicator table; a quarter that is not
// yet published yields ErrNoData.
func (c *Client) statement(ctx context.Context, operation, code string, period models.FiscalPeriod) (*models.Table, error) {
	segment := c.segmenter.Classify(code)
	sym := symbol(code, segment)

	var function, dateCol string
	v := url.Values{}
	switch segment {
	case models.SegmentDomestic:
		function, dateCol = "stock_financial_analysis_indicator", "日期"
		v.Set("symbol", sym)
		v.Set("start_year", strconv.Itoa(period.Year))
	case models.SegmentHongKong:
		function, dateCol = "stock_financial_hk_analysis_indicator_em", "REPORT_DATE"
		v.Set("symbol", sym)
		v.Set("indicator", "报告期")
	case models.SegmentUS:
		function, dateCol = "stock_financial_us_analysis_indicator_em", "REPORT_DATE"
		v.Set("symbol", sym)
		v.Set("indicator", "单季报")
	default:
		return nil, unsupported(operation, segment)
	}

	tbl, err := c.fetch(ctx, function, v)
	if err != nil {
		return nil, err
	}
	col := tbl.FieldIndex(dateCol)
	if col < 0 {
		return nil, models.NewProviderError(ProviderName, function, models.ErrDataSource, fmt.Errorf("missing %s column", dateCol))
	}

	end := period.EndDate()
	out := tbl.Filter(func(row []string) bool { return col < len(row) && strings.HasPrefix(row[col], end) })
	if out.IsEmpty() {
		return nil, models.NewProviderError(ProviderName, function, models.ErrNoData, fmt.Errorf("no report for %s", period))
	}
	return out, nil
}

func (c *Client) GetProfitData(ctx context.Context, code string, period models.FiscalPeriod) (*models.Table, error) {
	return c.statement(ctx, "profit_data", code, period)
}

func (c *Client) GetOperationData(ctx context.Context, code string, period models.FiscalPeriod) (*models.Table, error) {
	return c.statement(ctx, "operation_data", code, period)
}

func (c *Client) GetGrowthData(ctx context.Context, code string, period models.FiscalPeriod) (*models.Table, error) {
	return c.statement(ctx, "growth_data", code, period)
}

func (c *Client) GetBalanceData(ctx context.Context, code string, period models.FiscalPeriod) (*models.Table, error) {
	return c.statement(ctx, "balance_data", code, period)
}

func (c *Client) GetCashFlowData(ctx context.Context, code string, period models.FiscalPeriod) (*models.Table, error) {
	return c.statement(ctx, "cash_flow_data", code, period)
}

func (c *Client) GetDupontData(ctx context.Context, code string, period models.FiscalPeriod) (*models.Table, error) {
	return c.statement(ctx, "dupont_data", code, period)
}

// GetStockIndustry lists industry boards; akshare has no per-stock lookup.
func (c *Client) GetStockIndustry(ctx context.Context, _ string, _ string) (*models.Table, error) {
	return c.fetch(ctx, "stock_board_industry_name_em", nil)
}

func (c *Client) GetIndexConstituents(ctx context.Context, index models.IndexName, _ string) (*models.Table, error) {
	code := index.IndexCode()
	if code == "" {
		return nil, models.NewProviderError(ProviderName, "index_stock_cons", models.ErrDataSource, fmt.Errorf("unknown index %q", index))
	}
	return c.fetch(ctx, "index_stock_cons", url.Values{"symbol": {code}})
}

func (c *Client) GetAllStock(ctx context.Context, _ string) (*models.Table, error) {
	return c.fetch(ctx, "stock_zh_a_spot_em", nil)
}

func (c *Client) GetTradeDates(ctx context.Context, dr models.DateRange) (*models.Table, error) {
	tbl, err := c.fetch(ctx, "tool_trade_date_hist_sina", nil)
	if err != nil {
		return nil, err
	}
	out := filterDateRange(tbl, "trade_date", dr)
	if out.IsEmpty() {
		return nil, models.NewProviderError(ProviderName, "tool_trade_date_hist_sina", models.ErrNoData, nil)
	}
	return out, nil
}

func (c *Client) GetMacroSeries(ctx context.Context, q models.MacroQuery) (*models.Table, error) {
	switch q.Series {
	case models.MacroShibor:
		return c.fetch(ctx, "rate_interbank", url.Values{
			"market":    {"上海银行同业拆借市场"},
			"symbol":    {"Shibor人民币"},
			"indicator": {"隔夜"},
		})
	case models.MacroMoneySupplyMonth, models.MacroMoneySupplyYear:
		return c.fetch(ctx, "macro_china_money_supply", nil)
	case models.MacroReserveRatio:
		return c.fetch(ctx, "macro_china_reserve_requirement_ratio", nil)
	case models.MacroLoanRate:
		return c.fetch(ctx, "macro_china_lpr", nil)
	}
	return nil, models.NewProviderError(ProviderName, "macro_series", models.ErrNoData, fmt.Errorf("series %q not available", q.Series))
}

// filterDateRange keeps rows whose dateCol lies within dr. Tables without
// the column are returned unchanged.
func filterDateRange(tbl *models.Table, dateCol string, dr models.DateRange) *models.Table {
	col := tbl.FieldIndex(dateCol)
	if col < 0 || (dr.Start == "" && dr.End == "") {
		return tbl
	}
	return tbl.Filter(func(row []string) bool {
		if col >= len(row) {
			return false
		}
		d := row[col]
		if len(d) > 10 {
			d = d[:10]
		}
		return (dr.Start == "" || d >= dr.Start) && (dr.End == "" || d <= dr.End)
	})
}
