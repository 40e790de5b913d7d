// Package baostock provides a client for a baostock HTTP bridge, the
// quality-focused provider for Shanghai/Shenzhen listings and market-wide
// datasets.
package baostock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/stockreport/internal/common"
	"github.com/bobmcallan/stockreport/internal/interfaces"
	"github.com/bobmcallan/stockreport/internal/models"
)

const (
	ProviderName     = "baostock"
	DefaultBaseURL   = "http://localhost:8081"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second

	successCode = "0"
)

// Client implements interfaces.LoginProvider against the bridge's
// GET /{function}?... endpoints.
type Client struct {
	baseURL    string
	userID     string
	password   string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter

	mu       sync.RWMutex
	loggedIn bool
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithCredentials sets the login user and password
func WithCredentials(userID, password string) ClientOption {
	return func(c *Client) {
		c.userID = userID
		c.password = password
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

// NewClient creates a new baostock bridge client. Login must succeed before
// queries are served.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		userID:   "anonymous",
		password: "123456",
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a non-200 response from the bridge
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("baostock bridge error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// resultSet is the bridge's envelope around every baostock query
type resultSet struct {
	ErrorCode string     `json:"error_code"`
	ErrorMsg  string     `json:"error_msg"`
	Fields    []string   `json:"fields"`
	Data      [][]string `json:"data"`
}

func (c *Client) call(ctx context.Context, function string, params url.Values) (*resultSet, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s/%s", c.baseURL, function)
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("function", function).Msg("baostock bridge request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   function,
		}
	}

	var rs resultSet
	if err := json.NewDecoder(resp.Body).Decode(&rs); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &rs, nil
}

// Login opens the bridge session. Any failure is ErrProviderUnavailable.
func (c *Client) Login(ctx context.Context) error {
	params := url.Values{}
	params.Set("user_id", c.userID)
	params.Set("password", c.password)

	rs, err := c.call(ctx, "login", params)
	if err != nil {
		c.logger.Error().Err(err).Msg("baostock login failed")
		return models.NewProviderError(ProviderName, "login", models.ErrProviderUnavailable, err)
	}
	if rs.ErrorCode != successCode {
		c.logger.Error().Str("error_code", rs.ErrorCode).Str("error_msg", rs.ErrorMsg).Msg("baostock login rejected")
		return models.NewProviderError(ProviderName, "login", models.ErrProviderUnavailable, fmt.Errorf("%s: %s", rs.ErrorCode, rs.ErrorMsg))
	}

	c.mu.Lock()
	c.loggedIn = true
	c.mu.Unlock()

	c.logger.Info().Str("base_url", c.baseURL).Msg("baostock login successful")
	return nil
}

// Logout closes the bridge session. Errors are logged and returned.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	wasLoggedIn := c.loggedIn
	c.loggedIn = false
	c.mu.Unlock()
	if !wasLoggedIn {
		return nil
	}

	rs, err := c.call(ctx, "logout", nil)
	if err == nil && rs.ErrorCode != successCode {
		err = fmt.Errorf("%s: %s", rs.ErrorCode, rs.ErrorMsg)
	}
	if err != nil {
		c.logger.Warn().Err(err).Msg("baostock logout failed")
		return err
	}
	c.logger.Info().Msg("baostock logout successful")
	return nil
}

// LoggedIn reports whether Login has succeeded
func (c *Client) LoggedIn() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loggedIn
}

// query runs a baostock function and converts the result set into a table.
// An empty result set is ErrNoData; transport or baostock errors are
// ErrDataSource.
func (c *Client) query(ctx context.Context, function string, params url.Values) (*models.Table, error) {
	if !c.LoggedIn() {
		return nil, models.NewProviderError(ProviderName, function, models.ErrProviderUnavailable, fmt.Errorf("not logged in"))
	}

	start := time.Now()
	rs, err := c.call(ctx, function, params)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Warn().Err(err).Str("function", function).Int64("elapsed_ms", elapsed.Milliseconds()).Msg("baostock query failed")
		return nil, models.NewProviderError(ProviderName, function, models.ErrDataSource, err)
	}
	if rs.ErrorCode != successCode {
		c.logger.Warn().Str("function", function).Str("error_code", rs.ErrorCode).Str("error_msg", rs.ErrorMsg).Msg("baostock query returned error")
		return nil, models.NewProviderError(ProviderName, function, models.ErrDataSource, fmt.Errorf("%s: %s", rs.ErrorCode, rs.ErrorMsg))
	}
	if len(rs.Data) == 0 {
		c.logger.Debug().Str("function", function).Msg("baostock query returned no rows")
		return nil, models.NewProviderError(ProviderName, function, models.ErrNoData, nil)
	}

	c.logger.Debug().Str("function", function).Int("rows", len(rs.Data)).Int64("elapsed_ms", elapsed.Milliseconds()).Msg("baostock query")

	return &models.Table{Fields: rs.Fields, Rows: rs.Data, Source: ProviderName}, nil
}

// normalizeCode converts identifiers to baostock's lower-case "sh.600000" form.
func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

func (c *Client) Name() string {
	return ProviderName
}

// Ensure Client implements LoginProvider
var _ interfaces.LoginProvider = (*Client)(nil)
