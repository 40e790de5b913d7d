package app

import (
	"context"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/stockreport/internal/common"
	"github.com/bobmcallan/stockreport/internal/interfaces"
	"github.com/bobmcallan/stockreport/internal/models"
	"github.com/bobmcallan/stockreport/internal/services/analysis"
	"github.com/bobmcallan/stockreport/internal/services/financials"
	"github.com/bobmcallan/stockreport/internal/services/router"
)

// harnessNow is the fixed clock of the harness: mid-August 2024, so the
// first period tried is 2024Q2 and the current quarter is 2024Q3.
var harnessNow = time.Date(2024, 8, 15, 12, 0, 0, 0, time.UTC)

// testHarness provides an in-process MCP client connected to an App built
// from stub providers. Tests configure stub behavior before calling tools.
type testHarness struct {
	t        *testing.T
	client   *client.Client
	app      *App
	quality  *stubProvider
	coverage *stubProvider
	searcher *stubSearcher
	store    *memoryStore
}

// newTestHarness builds the App around stubs and an initialized client.
// A nil store leaves persistence disabled.
func newTestHarness(t *testing.T, withStore bool) *testHarness {
	t.Helper()

	logger := common.NewSilentLogger()
	quality := newStubProvider(common.ProviderBaostock)
	coverage := newStubProvider(common.ProviderAKTools)
	searcher := &stubSearcher{table: &models.Table{
		Fields: []string{"代码", "名称"},
		Rows:   [][]string{{"00700", "腾讯控股"}},
		Source: common.ProviderAKTools,
	}}

	rt, err := router.New(router.DefaultTable(quality, coverage), router.NewClassifier(logger), logger)
	if err != nil {
		t.Fatalf("router.New failed: %v", err)
	}
	resolver := financials.NewResolver(logger, financials.WithClock(func() time.Time { return harnessNow }))

	var store *memoryStore
	var rs interfaces.ResolutionStore
	if withStore {
		store = newMemoryStore()
		rs = store
	}

	a := &App{
		Config:   common.NewDefaultConfig(),
		Logger:   logger,
		Router:   rt,
		Resolver: resolver,
		Analysis: analysis.NewService(rt, resolver, rs, logger),
		Store:    rs,
		Searcher: searcher,
		MCPServer: server.NewMCPServer(
			"stockreport-test",
			"test",
			server.WithToolCapabilities(true),
		),
		StartupTime: time.Now(),
	}
	a.registerTools()

	c, err := client.NewInProcessClient(a.MCPServer)
	if err != nil {
		t.Fatalf("Failed to create in-process client: %v", err)
	}

	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Failed to start client: %v", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "stockreport-test-client",
		Version: "1.0.0",
	}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		c.Close()
		t.Fatalf("Failed to initialize MCP: %v", err)
	}

	h := &testHarness{
		t:        t,
		client:   c,
		app:      a,
		quality:  quality,
		coverage: coverage,
		searcher: searcher,
		store:    store,
	}
	t.Cleanup(h.close)
	return h
}

// callTool invokes an MCP tool by name with the given arguments.
func (h *testHarness) callTool(name string, args map[string]any) *mcp.CallToolResult {
	h.t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	result, err := h.client.CallTool(context.Background(), req)
	if err != nil {
		h.t.Fatalf("CallTool %s failed: %v", name, err)
	}
	return result
}

// text extracts the first text block of a result.
func (h *testHarness) text(result *mcp.CallToolResult) string {
	h.t.Helper()
	if len(result.Content) == 0 {
		h.t.Fatal("result has no content")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		h.t.Fatalf("Content[0] is %T, not TextContent", result.Content[0])
	}
	return tc.Text
}

func (h *testHarness) close() {
	if h.client != nil {
		h.client.Close()
	}
}
