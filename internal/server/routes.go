package server

import (
	"net/http"
	"strings"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

// registerRoutes mounts the MCP endpoint and the JSON API.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.Handle("/mcp", mcpserver.NewStreamableHTTPServer(s.app.MCPServer,
		mcpserver.WithStateLess(true),
	))

	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/market/", s.handleMarket)
	mux.HandleFunc("/api/stocks/", s.routeStocks)
}

// routeStocks dispatches /api/stocks/{code}/... by suffix.
func (s *Server) routeStocks(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/stocks/")
	parts := strings.Split(rest, "/")
	if len(parts) < 2 || parts[0] == "" {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	code := parts[0]

	switch {
	case len(parts) == 2 && parts[1] == "snapshot":
		s.handleSnapshot(w, r, code)
	case len(parts) == 2 && parts[1] == "history":
		s.handleHistory(w, r, code)
	case len(parts) == 3 && parts[1] == "financials":
		s.handleLatestFinancials(w, r, code, parts[2])
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}
