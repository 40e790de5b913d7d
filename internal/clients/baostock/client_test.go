package baostock

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/bobmcallan/stockreport/internal/models"
)

// fakeBridge serves login/logout plus canned result sets per function.
type fakeBridge struct {
	mu        sync.Mutex
	loginCode string
	results   map[string]resultSet
	status    map[string]int
	requests  []*url.URL
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{loginCode: "0", results: map[string]resultSet{}, status: map[string]int{}}
}

func (f *fakeBridge) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.URL)
		f.mu.Unlock()

		fn := r.URL.Path[1:]
		if code, ok := f.status[fn]; ok {
			http.Error(w, "bridge failure", code)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		switch fn {
		case "login":
			msg := "success"
			if f.loginCode != "0" {
				msg = "invalid user"
			}
			json.NewEncoder(w).Encode(resultSet{ErrorCode: f.loginCode, ErrorMsg: msg})
		case "logout":
			json.NewEncoder(w).Encode(resultSet{ErrorCode: "0", ErrorMsg: "success"})
		default:
			rs, ok := f.results[fn]
			if !ok {
				rs = resultSet{ErrorCode: "0", ErrorMsg: "success", Fields: []string{"code"}}
			}
			json.NewEncoder(w).Encode(rs)
		}
	})
}

func (f *fakeBridge) last() *url.URL {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newLoggedInClient(t *testing.T, bridge *fakeBridge) *Client {
	t.Helper()
	srv := httptest.NewServer(bridge.handler())
	t.Cleanup(srv.Close)

	client := NewClient(WithBaseURL(srv.URL+"/"), WithRateLimit(100))
	if err := client.Login(context.Background()); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	return client
}

func TestLogin_Success(t *testing.T) {
	bridge := newFakeBridge()
	client := newLoggedInClient(t, bridge)

	if !client.LoggedIn() {
		t.Fatal("expected client to be logged in")
	}
	first := bridge.requests[0]
	if first.Path != "/login" || first.Query().Get("user_id") != "anonymous" {
		t.Errorf("unexpected login request %s", first.String())
	}
}

func TestLogin_RejectedIsProviderUnavailable(t *testing.T) {
	bridge := newFakeBridge()
	bridge.loginCode = "10001001"
	srv := httptest.NewServer(bridge.handler())
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithCredentials("user", "bad"))
	err := client.Login(context.Background())

	if !errors.Is(err, models.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	if client.LoggedIn() {
		t.Error("client must not be logged in after rejected login")
	}
}

func TestLogin_UnreachableIsProviderUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	err := client.Login(context.Background())

	if !errors.Is(err, models.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestQuery_RequiresLogin(t *testing.T) {
	client := NewClient(WithBaseURL("http://127.0.0.1:1"))

	_, err := client.GetProfitData(context.Background(), "sh.600000", models.FiscalPeriod{Year: 2024, Quarter: 1})
	if !errors.Is(err, models.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestGetProfitData_ParsesResultSet(t *testing.T) {
	bridge := newFakeBridge()
	bridge.results["query_profit_data"] = resultSet{
		ErrorCode: "0",
		ErrorMsg:  "success",
		Fields:    []string{"code", "pubDate", "statDate", "roeAvg"},
		Data:      [][]string{{"sh.600000", "2024-04-27", "2024-03-31", "0.023"}},
	}
	client := newLoggedInClient(t, bridge)

	tbl, err := client.GetProfitData(context.Background(), " SH.600000 ", models.FiscalPeriod{Year: 2024, Quarter: 1})
	if err != nil {
		t.Fatalf("GetProfitData failed: %v", err)
	}

	q := bridge.last().Query()
	if bridge.last().Path != "/query_profit_data" {
		t.Errorf("expected path /query_profit_data, got %s", bridge.last().Path)
	}
	if q.Get("code") != "sh.600000" || q.Get("year") != "2024" || q.Get("quarter") != "1" {
		t.Errorf("unexpected query %s", q.Encode())
	}
	if tbl.Len() != 1 || tbl.Value(0, "roeAvg") != "0.023" {
		t.Errorf("unexpected table %+v", tbl)
	}
	if tbl.Source != ProviderName {
		t.Errorf("expected source %s, got %s", ProviderName, tbl.Source)
	}
}

func TestQuery_EmptyIsNoData(t *testing.T) {
	bridge := newFakeBridge()
	client := newLoggedInClient(t, bridge)

	_, err := client.GetGrowthData(context.Background(), "sh.600000", models.FiscalPeriod{Year: 2024, Quarter: 2})
	if !errors.Is(err, models.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestQuery_ErrorCodeIsDataSource(t *testing.T) {
	bridge := newFakeBridge()
	bridge.results["query_balance_data"] = resultSet{ErrorCode: "10004011", ErrorMsg: "bad code"}
	client := newLoggedInClient(t, bridge)

	_, err := client.GetBalanceData(context.Background(), "sh.6", models.FiscalPeriod{Year: 2024, Quarter: 1})
	if !errors.Is(err, models.ErrDataSource) {
		t.Fatalf("expected ErrDataSource, got %v", err)
	}
}

func TestQuery_HTTPErrorIsDataSource(t *testing.T) {
	bridge := newFakeBridge()
	bridge.status["query_cash_flow_data"] = http.StatusBadGateway
	client := newLoggedInClient(t, bridge)

	_, err := client.GetCashFlowData(context.Background(), "sh.600000", models.FiscalPeriod{Year: 2024, Quarter: 1})
	if !errors.Is(err, models.ErrDataSource) {
		t.Fatalf("expected ErrDataSource, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway {
		t.Errorf("expected APIError with status 502, got %v", err)
	}
}

func TestGetHistoricalKData_Defaults(t *testing.T) {
	bridge := newFakeBridge()
	bridge.results["query_history_k_data_plus"] = resultSet{
		ErrorCode: "0",
		Fields:    []string{"date", "close"},
		Data:      [][]string{{"2024-06-28", "7.10"}},
	}
	client := newLoggedInClient(t, bridge)

	_, err := client.GetHistoricalKData(context.Background(), "sh.600000", models.KDataRequest{
		Range: models.DateRange{Start: "2024-06-01", End: "2024-06-30"},
	})
	if err != nil {
		t.Fatalf("GetHistoricalKData failed: %v", err)
	}

	q := bridge.last().Query()
	if q.Get("frequency") != "d" || q.Get("adjustflag") != "3" {
		t.Errorf("expected default frequency/adjustflag, got %s", q.Encode())
	}
	if q.Get("start_date") != "2024-06-01" || q.Get("end_date") != "2024-06-30" {
		t.Errorf("unexpected range %s", q.Encode())
	}
	if q.Get("fields") == "" {
		t.Error("expected default fields")
	}
}

func TestGetStockBasicInfo_SelectsFields(t *testing.T) {
	bridge := newFakeBridge()
	bridge.results["query_stock_basic"] = resultSet{
		ErrorCode: "0",
		Fields:    []string{"code", "code_name", "ipoDate", "type"},
		Data:      [][]string{{"sh.600000", "浦发银行", "1999-11-10", "1"}},
	}
	client := newLoggedInClient(t, bridge)

	tbl, err := client.GetStockBasicInfo(context.Background(), "sh.600000", []string{"code_name", "ipoDate"})
	if err != nil {
		t.Fatalf("GetStockBasicInfo failed: %v", err)
	}
	if len(tbl.Fields) != 2 || tbl.Value(0, "ipoDate") != "1999-11-10" {
		t.Errorf("unexpected projection %+v", tbl)
	}

	_, err = client.GetStockBasicInfo(context.Background(), "sh.600000", []string{"sector"})
	if !errors.Is(err, models.ErrDataSource) {
		t.Errorf("expected ErrDataSource for unknown field, got %v", err)
	}
}

func TestMarketWideFunctions(t *testing.T) {
	bridge := newFakeBridge()
	row := resultSet{ErrorCode: "0", Fields: []string{"x"}, Data: [][]string{{"1"}}}
	for _, fn := range []string{"query_hs300_stocks", "query_shibor_data", "query_required_reserve_ratio_data", "query_trade_dates", "query_all_stock", "query_stock_industry"} {
		bridge.results[fn] = row
	}
	client := newLoggedInClient(t, bridge)
	ctx := context.Background()

	if _, err := client.GetIndexConstituents(ctx, models.IndexHS300, "2024-06-28"); err != nil {
		t.Errorf("GetIndexConstituents failed: %v", err)
	}
	if got := bridge.last(); got.Path != "/query_hs300_stocks" || got.Query().Get("date") != "2024-06-28" {
		t.Errorf("unexpected request %s", got)
	}

	if _, err := client.GetMacroSeries(ctx, models.MacroQuery{Series: models.MacroShibor}); err != nil {
		t.Errorf("GetMacroSeries shibor failed: %v", err)
	}

	if _, err := client.GetMacroSeries(ctx, models.MacroQuery{Series: models.MacroReserveRatio}); err != nil {
		t.Errorf("GetMacroSeries reserve ratio failed: %v", err)
	}
	if got := bridge.last().Query().Get("yearType"); got != "0" {
		t.Errorf("expected yearType 0, got %q", got)
	}

	if _, err := client.GetTradeDates(ctx, models.DateRange{Start: "2024-01-01"}); err != nil {
		t.Errorf("GetTradeDates failed: %v", err)
	}
	if _, err := client.GetAllStock(ctx, "2024-06-28"); err != nil {
		t.Errorf("GetAllStock failed: %v", err)
	}
	if got := bridge.last().Query().Get("day"); got != "2024-06-28" {
		t.Errorf("expected day param, got %q", got)
	}
	if _, err := client.GetStockIndustry(ctx, "", ""); err != nil {
		t.Errorf("GetStockIndustry failed: %v", err)
	}

	if _, err := client.GetIndexConstituents(ctx, "csi1000", ""); !errors.Is(err, models.ErrDataSource) {
		t.Errorf("expected ErrDataSource for unknown index, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	bridge := newFakeBridge()
	client := newLoggedInClient(t, bridge)

	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if client.LoggedIn() {
		t.Error("expected logged out")
	}
	if bridge.last().Path != "/logout" {
		t.Errorf("expected /logout, got %s", bridge.last().Path)
	}
	// second logout is a no-op
	n := len(bridge.requests)
	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("second Logout failed: %v", err)
	}
	if len(bridge.requests) != n {
		t.Error("second Logout should not call the bridge")
	}
}
