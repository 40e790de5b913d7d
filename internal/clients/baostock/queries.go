package baostock

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/bobmcallan/stockreport/internal/models"
)

func codeParams(code string) url.Values {
	v := url.Values{}
	v.Set("code", normalizeCode(code))
	return v
}

func setRange(v url.Values, dr models.DateRange) url.Values {
	if dr.Start != "" {
		v.Set("start_date", dr.Start)
	}
	if dr.End != "" {
		v.Set("end_date", dr.End)
	}
	return v
}

func periodParams(code string, period models.FiscalPeriod) url.Values {
	v := codeParams(code)
	v.Set("year", strconv.Itoa(period.Year))
	v.Set("quarter", strconv.Itoa(period.Quarter))
	return v
}

// GetHistoricalKData retrieves bars via query_history_k_data_plus
func (c *Client) GetHistoricalKData(ctx context.Context, code string, req models.KDataRequest) (*models.Table, error) {
	req = req.Normalize()
	v := setRange(codeParams(code), req.Range)
	v.Set("fields", strings.Join(req.Fields, ","))
	v.Set("frequency", req.Frequency)
	v.Set("adjustflag", req.AdjustFlag)
	return c.query(ctx, "query_history_k_data_plus", v)
}

// GetStockBasicInfo retrieves listing details. fields narrows the columns.
func (c *Client) GetStockBasicInfo(ctx context.Context, code string, fields []string) (*models.Table, error) {
	tbl, err := c.query(ctx, "query_stock_basic", codeParams(code))
	if err != nil || len(fields) == 0 {
		return tbl, err
	}
	return selectFields(tbl, fields)
}

// selectFields projects tbl onto fields, failing on unknown names.
func selectFields(tbl *models.Table, fields []string) (*models.Table, error) {
	idx := make([]int, 0, len(fields))
	for _, f := range fields {
		i := tbl.FieldIndex(f)
		if i < 0 {
			return nil, models.NewProviderError(ProviderName, "query_stock_basic", models.ErrDataSource,
				fmt.Errorf("unknown field %q (available: %s)", f, strings.Join(tbl.Fields, ", ")))
		}
		idx = append(idx, i)
	}
	out := &models.Table{Fields: append([]string(nil), fields...), Source: tbl.Source}
	for _, row := range tbl.Rows {
		r := make([]string, len(idx))
		for j, i := range idx {
			if i < len(row) {
				r[j] = row[i]
			}
		}
		out.Rows = append(out.Rows, r)
	}
	return out, nil
}

// GetDividendData retrieves dividends announced in year. yearType is
// "report" (announcement year) or "operate" (ex-dividend year).
func (c *Client) GetDividendData(ctx context.Context, code string, year string, yearType string) (*models.Table, error) {
	v := codeParams(code)
	v.Set("year", year)
	if yearType == "" {
		yearType = "report"
	}
	v.Set("yearType", yearType)
	return c.query(ctx, "query_dividend_data", v)
}

func (c *Client) GetAdjustFactorData(ctx context.Context, code string, dr models.DateRange) (*models.Table, error) {
	return c.query(ctx, "query_adjust_factor", setRange(codeParams(code), dr))
}

func (c *Client) GetPerformanceExpressReport(ctx context.Context, code string, dr models.DateRange) (*models.Table, error) {
	return c.query(ctx, "query_performance_express_report", setRange(codeParams(code), dr))
}

func (c *Client) GetForecastReport(ctx context.Context, code string, dr models.DateRange) (*models.Table, error) {
	return c.query(ctx, "query_forecast_report", setRange(codeParams(code), dr))
}

func (c *Client) GetProfitData(ctx context.Context, code string, period models.FiscalPeriod) (*models.Table, error) {
	return c.query(ctx, "query_profit_data", periodParams(code, period))
}

func (c *Client) GetOperationData(ctx context.Context, code string, period models.FiscalPeriod) (*models.Table, error) {
	return c.query(ctx, "query_operation_data", periodParams(code, period))
}

func (c *Client) GetGrowthData(ctx context.Context, code string, period models.FiscalPeriod) (*models.Table, error) {
	return c.query(ctx, "query_growth_data", periodParams(code, period))
}

func (c *Client) GetBalanceData(ctx context.Context, code string, period models.FiscalPeriod) (*models.Table, error) {
	return c.query(ctx, "query_balance_data", periodParams(code, period))
}

func (c *Client) GetCashFlowData(ctx context.Context, code string, period models.FiscalPeriod) (*models.Table, error) {
	return c.query(ctx, "query_cash_flow_data", periodParams(code, period))
}

func (c *Client) GetDupontData(ctx context.Context, code string, period models.FiscalPeriod) (*models.Table, error) {
	return c.query(ctx, "query_dupont_data", periodParams(code, period))
}

// GetStockIndustry retrieves industry classification. An empty code lists
// every stock.
func (c *Client) GetStockIndustry(ctx context.Context, code string, date string) (*models.Table, error) {
	v := url.Values{}
	if code != "" {
		v.Set("code", normalizeCode(code))
	}
	if date != "" {
		v.Set("date", date)
	}
	return c.query(ctx, "query_stock_industry", v)
}

var indexFunctions = map[models.IndexName]string{
	models.IndexSZ50:  "query_sz50_stocks",
	models.IndexHS300: "query_hs300_stocks",
	models.IndexZZ500: "query_zz500_stocks",
}

func (c *Client) GetIndexConstituents(ctx context.Context, index models.IndexName, date string) (*models.Table, error) {
	fn, ok := indexFunctions[index]
	if !ok {
		return nil, models.NewProviderError(ProviderName, "index_constituents", models.ErrDataSource, fmt.Errorf("unknown index %q", index))
	}
	v := url.Values{}
	if date != "" {
		v.Set("date", date)
	}
	return c.query(ctx, fn, v)
}

func (c *Client) GetAllStock(ctx context.Context, date string) (*models.Table, error) {
	v := url.Values{}
	if date != "" {
		v.Set("day", date)
	}
	return c.query(ctx, "query_all_stock", v)
}

func (c *Client) GetTradeDates(ctx context.Context, dr models.DateRange) (*models.Table, error) {
	return c.query(ctx, "query_trade_dates", setRange(url.Values{}, dr))
}

var macroFunctions = map[models.MacroSeries]string{
	models.MacroDepositRate:      "query_deposit_rate_data",
	models.MacroLoanRate:         "query_loan_rate_data",
	models.MacroReserveRatio:     "query_required_reserve_ratio_data",
	models.MacroMoneySupplyMonth: "query_money_supply_data_month",
	models.MacroMoneySupplyYear:  "query_money_supply_data_year",
	models.MacroShibor:           "query_shibor_data",
}

func (c *Client) GetMacroSeries(ctx context.Context, q models.MacroQuery) (*models.Table, error) {
	fn, ok := macroFunctions[q.Series]
	if !ok {
		return nil, models.NewProviderError(ProviderName, "macro_series", models.ErrDataSource, fmt.Errorf("unknown macro series %q", q.Series))
	}
	v := setRange(url.Values{}, q.Range)
	if q.Series == models.MacroReserveRatio {
		yearType := q.YearType
		if yearType == "" {
			yearType = "0"
		}
		v.Set("yearType", yearType)
	}
	return c.query(ctx, fn, v)
}
