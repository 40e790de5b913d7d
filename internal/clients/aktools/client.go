// Package aktools provides a client for the AKTools HTTP API, the
// coverage-focused provider for Hong Kong, US and commodity markets.
package aktools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/stockreport/internal/common"
	"github.com/bobmcallan/stockreport/internal/interfaces"
	"github.com/bobmcallan/stockreport/internal/models"
)

const (
	ProviderName     = "aktools"
	DefaultBaseURL   = "http://localhost:8080"
	DefaultTimeout   = 60 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client implements interfaces.Provider using AKTools'
// GET /api/public/{function} endpoints, which wrap akshare functions.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	segmenter  interfaces.Segmenter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new AKTools client. segmenter picks the akshare
// function family (A-share, Hong Kong, US, futures) for each identifier.
func NewClient(segmenter interfaces.Segmenter, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter:   rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:    common.NewSilentLogger(),
		segmenter: segmenter,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a non-200 response from AKTools
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("AKTools API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

func (c *Client) Name() string {
	return ProviderName
}

const maxErrorBody = 512

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func (c *Client) get(ctx context.Context, function string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s/api/public/%s", c.baseURL, function)
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("function", function).Msg("AKTools API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := truncate(strings.TrimSpace(string(body)), maxErrorBody)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    msg,
			Endpoint:   function,
		}
	}
	return body, nil
}

// fetch calls an akshare function and decodes its records. Transport and
// decode failures are ErrDataSource; an empty record list is ErrNoData.
func (c *Client) fetch(ctx context.Context, function string, params url.Values) (*models.Table, error) {
	start := time.Now()
	body, err := c.get(ctx, function, params)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Warn().Err(err).Str("function", function).Int64("elapsed_ms", elapsed.Milliseconds()).Msg("AKTools request failed")
		return nil, models.NewProviderError(ProviderName, function, models.ErrDataSource, err)
	}

	tbl, err := decodeRecords(body)
	if err != nil {
		return nil, models.NewProviderError(ProviderName, function, models.ErrDataSource, err)
	}
	if tbl.IsEmpty() {
		return nil, models.NewProviderError(ProviderName, function, models.ErrNoData, nil)
	}
	tbl.Source = ProviderName

	c.logger.Debug().Str("function", function).Int("rows", tbl.Len()).Int64("elapsed_ms", elapsed.Milliseconds()).Msg("AKTools API call")
	return tbl, nil
}

// decodeRecords turns a JSON array of flat objects into a table. Columns
// keep the order keys first appear in; missing keys become empty cells.
func decodeRecords(body []byte) (*models.Table, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON response")
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, fmt.Errorf("expected JSON array of records, got %s", root.Type)
	}

	tbl := &models.Table{}
	index := map[string]int{}
	var records []map[string]string

	root.ForEach(func(_, rec gjson.Result) bool {
		if !rec.IsObject() {
			return true
		}
		row := map[string]string{}
		rec.ForEach(func(key, val gjson.Result) bool {
			k := key.String()
			if _, ok := index[k]; !ok {
				index[k] = len(tbl.Fields)
				tbl.Fields = append(tbl.Fields, k)
			}
			row[k] = cellValue(val)
			return true
		})
		records = append(records, row)
		return true
	})

	for _, rec := range records {
		row := make([]string, len(tbl.Fields))
		for k, v := range rec {
			row[index[k]] = v
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl, nil
}

func cellValue(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.Number:
		return v.Raw
	case gjson.JSON:
		return v.Raw
	default:
		return v.String()
	}
}

// Ensure Client implements Provider
var (
	_ interfaces.Provider      = (*Client)(nil)
	_ interfaces.StockSearcher = (*Client)(nil)
)
