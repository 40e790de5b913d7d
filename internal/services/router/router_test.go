package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockreport/internal/common"
	"github.com/bobmcallan/stockreport/internal/interfaces"
	"github.com/bobmcallan/stockreport/internal/models"
)

func newTestRouter(t *testing.T) (*Router, *recordingProvider, *recordingProvider) {
	t.Helper()
	a := newRecordingProvider("quality")
	b := newRecordingProvider("coverage")
	logger := common.NewSilentLogger()
	r, err := New(DefaultTable(a, b), NewClassifier(logger), logger)
	require.NoError(t, err)
	return r, a, b
}

func TestRouter_RoutesBySegment(t *testing.T) {
	r, a, b := newTestRouter(t)
	ctx := context.Background()
	period := models.FiscalPeriod{Year: 2024, Quarter: 1}

	tests := []struct {
		code string
		want *recordingProvider
	}{
		{"SH.600000", a},
		{"sz.000001", a},
		{"00700.HK", b},
		{"AAPL", b},
		{"CU2409", b},
		{"###", b},
		{"", b},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			before := len(tt.want.Calls())
			tbl, err := r.GetProfitData(ctx, tt.code, period)
			require.NoError(t, err)
			assert.Equal(t, tt.want.name, tbl.Source)
			assert.Len(t, tt.want.Calls(), before+1)
			assert.Same(t, tt.want, r.Route(tt.code))
		})
	}
}

func TestRouter_OnlyChosenProviderCalled(t *testing.T) {
	r, a, b := newTestRouter(t)

	_, err := r.GetHistoricalKData(context.Background(), "sh.600000", models.KDataRequest{})
	require.NoError(t, err)

	require.Len(t, a.Calls(), 1)
	assert.Equal(t, call{op: "historical_k_data", code: "sh.600000"}, a.Calls()[0])
	assert.Empty(t, b.Calls())
}

func TestRouter_ForwardsEveryOperation(t *testing.T) {
	r, a, b := newTestRouter(t)
	ctx := context.Background()
	p := models.FiscalPeriod{Year: 2023, Quarter: 4}
	dr := models.DateRange{Start: "2024-01-01", End: "2024-03-31"}

	ops := []func(code string) (*models.Table, error){
		func(c string) (*models.Table, error) { return r.GetHistoricalKData(ctx, c, models.KDataRequest{}) },
		func(c string) (*models.Table, error) { return r.GetStockBasicInfo(ctx, c, nil) },
		func(c string) (*models.Table, error) { return r.GetDividendData(ctx, c, "2023", "report") },
		func(c string) (*models.Table, error) { return r.GetAdjustFactorData(ctx, c, dr) },
		func(c string) (*models.Table, error) { return r.GetPerformanceExpressReport(ctx, c, dr) },
		func(c string) (*models.Table, error) { return r.GetForecastReport(ctx, c, dr) },
		func(c string) (*models.Table, error) { return r.GetProfitData(ctx, c, p) },
		func(c string) (*models.Table, error) { return r.GetOperationData(ctx, c, p) },
		func(c string) (*models.Table, error) { return r.GetGrowthData(ctx, c, p) },
		func(c string) (*models.Table, error) { return r.GetBalanceData(ctx, c, p) },
		func(c string) (*models.Table, error) { return r.GetCashFlowData(ctx, c, p) },
		func(c string) (*models.Table, error) { return r.GetDupontData(ctx, c, p) },
	}

	for _, op := range ops {
		_, err := op("SH.600000")
		require.NoError(t, err)
		_, err = op("AAPL")
		require.NoError(t, err)
	}

	assert.Len(t, a.Calls(), len(ops))
	assert.Len(t, b.Calls(), len(ops))
}

func TestRouter_MarketWideAlwaysQuality(t *testing.T) {
	r, a, b := newTestRouter(t)
	ctx := context.Background()

	for _, code := range []string{"AAPL", "00700.HK", "CU2409", "???"} {
		_, err := r.GetStockIndustry(ctx, code, "")
		require.NoError(t, err)
	}
	_, err := r.GetIndexConstituents(ctx, models.IndexHS300, "")
	require.NoError(t, err)
	_, err = r.GetMacroSeries(ctx, models.MacroQuery{Series: models.MacroShibor})
	require.NoError(t, err)
	_, err = r.GetTradeDates(ctx, models.DateRange{})
	require.NoError(t, err)
	_, err = r.GetAllStock(ctx, "2024-06-28")
	require.NoError(t, err)

	assert.Len(t, a.Calls(), 8)
	assert.Empty(t, b.Calls())
	assert.Same(t, interfaces.Provider(a), r.MarketWideProvider())
}

func TestRouter_ErrorsPropagateUnchanged(t *testing.T) {
	r, a, b := newTestRouter(t)
	providerErr := models.NewProviderError("coverage", "stock_us_hist", models.ErrNoData, nil)
	b.err = providerErr

	_, err := r.GetHistoricalKData(context.Background(), "AAPL", models.KDataRequest{})

	require.Error(t, err)
	assert.Same(t, error(providerErr), err)
	assert.ErrorIs(t, err, models.ErrNoData)
	// no substitution
	assert.Empty(t, a.Calls())
	assert.Len(t, b.Calls(), 1)
}

func TestRouter_DataSourceErrorNotRetried(t *testing.T) {
	r, a, _ := newTestRouter(t)
	a.err = models.NewProviderError("quality", "query_profit_data", models.ErrDataSource, errors.New("timeout"))

	_, err := r.GetProfitData(context.Background(), "SH.600000", models.FiscalPeriod{Year: 2024, Quarter: 1})

	assert.ErrorIs(t, err, models.ErrDataSource)
	assert.Len(t, a.Calls(), 1)
}

func TestNew_RejectsIncompleteTable(t *testing.T) {
	a := newRecordingProvider("quality")

	_, err := New(Table{Segments: map[models.MarketSegment]interfaces.Provider{models.SegmentDomestic: a}, MarketWide: a}, nil, nil)
	assert.Error(t, err)

	tbl := DefaultTable(a, a)
	tbl.MarketWide = nil
	_, err = New(tbl, nil, nil)
	assert.Error(t, err)
}

func TestNew_CopiesTable(t *testing.T) {
	a := newRecordingProvider("quality")
	b := newRecordingProvider("coverage")
	tbl := DefaultTable(a, b)

	r, err := New(tbl, nil, nil)
	require.NoError(t, err)

	tbl.Segments[models.SegmentUS] = a
	assert.Same(t, interfaces.Provider(b), r.Route("AAPL"))
}

func TestTableFromConfig(t *testing.T) {
	a := newRecordingProvider(common.ProviderBaostock)
	b := newRecordingProvider(common.ProviderAKTools)
	providers := map[string]interfaces.Provider{common.ProviderBaostock: a, common.ProviderAKTools: b}

	cfg := common.NewDefaultConfig().Routing
	cfg.US = common.ProviderBaostock

	tbl, err := TableFromConfig(cfg, providers)
	require.NoError(t, err)
	r, err := New(tbl, nil, nil)
	require.NoError(t, err)

	assert.Same(t, interfaces.Provider(a), r.Route("AAPL"))
	assert.Same(t, interfaces.Provider(b), r.Route("00700"))

	cfg.Commodity = "yahoo"
	_, err = TableFromConfig(cfg, providers)
	assert.ErrorContains(t, err, "yahoo")
}

func TestRouter_MarketInfo(t *testing.T) {
	r, _, _ := newTestRouter(t)

	info := r.MarketInfo(" sh.600000 ")
	assert.Equal(t, "SH.600000", info.Code)
	assert.Equal(t, models.SegmentDomestic, info.Segment)
	assert.Equal(t, "quality", info.Provider)

	info = r.MarketInfo("not a code")
	assert.Equal(t, models.SegmentUnknown, info.Segment)
	assert.Equal(t, "coverage", info.Provider)
	assert.Contains(t, info.Description, "Unrecognized")
}
