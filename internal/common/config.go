package common

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
)

// Provider names accepted in the [routing] section
const (
	ProviderBaostock = "baostock"
	ProviderAKTools  = "aktools"
)

// Config holds all configuration for stockreport
type Config struct {
	Environment string         `toml:"environment"`
	Server      ServerConfig   `toml:"server"`
	Routing     RoutingConfig  `toml:"routing"`
	Fallback    FallbackConfig `toml:"fallback"`
	Clients     ClientsConfig  `toml:"clients"`
	Storage     StorageConfig  `toml:"storage"`
	Warm        WarmConfig     `toml:"warm"`
	Logging     LoggingConfig  `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host      string `toml:"host"`
	Port      int    `toml:"port" validate:"min=1,max=65535"`
	Transport string `toml:"transport" validate:"oneof=http stdio"`
}

// RoutingConfig maps each market segment to a provider name. MarketWide
// serves index, macro, calendar and industry datasets for any identifier.
type RoutingConfig struct {
	Domestic   string `toml:"domestic" validate:"oneof=baostock aktools"`
	HongKong   string `toml:"hong_kong" validate:"oneof=baostock aktools"`
	US         string `toml:"us" validate:"oneof=baostock aktools"`
	Commodity  string `toml:"commodity" validate:"oneof=baostock aktools"`
	Unknown    string `toml:"unknown" validate:"oneof=baostock aktools"`
	MarketWide string `toml:"market_wide" validate:"oneof=baostock aktools"`
}

// FallbackConfig bounds the latest-period search
type FallbackConfig struct {
	MaxAttempts int `toml:"max_attempts" validate:"min=1,max=40"`
	FloorYears  int `toml:"floor_years" validate:"min=0,max=10"`
}

// ClientsConfig holds upstream provider configurations
type ClientsConfig struct {
	Baostock BaostockConfig `toml:"baostock"`
	AKTools  AKToolsConfig  `toml:"aktools"`
}

// BaostockConfig holds baostock bridge configuration
type BaostockConfig struct {
	BaseURL   string `toml:"base_url" validate:"required,url"`
	UserID    string `toml:"user_id"`
	Password  string `toml:"password"`
	RateLimit int    `toml:"rate_limit" validate:"min=1"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *BaostockConfig) GetTimeout() time.Duration {
	return parseTimeout(c.Timeout)
}

// AKToolsConfig holds AKTools HTTP API configuration
type AKToolsConfig struct {
	BaseURL   string `toml:"base_url" validate:"required,url"`
	RateLimit int    `toml:"rate_limit" validate:"min=1"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *AKToolsConfig) GetTimeout() time.Duration {
	return parseTimeout(c.Timeout)
}

func parseTimeout(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// StorageConfig holds SurrealDB configuration. An empty address disables
// resolution persistence.
type StorageConfig struct {
	Address   string `toml:"address"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// Enabled reports whether a store should be opened
func (c *StorageConfig) Enabled() bool {
	return strings.TrimSpace(c.Address) != ""
}

// WarmConfig schedules periodic snapshot refreshes
type WarmConfig struct {
	Enabled     bool     `toml:"enabled"`
	Schedule    string   `toml:"schedule"`
	Codes       []string `toml:"codes"`
	Concurrency int      `toml:"concurrency" validate:"min=1,max=16"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string   `toml:"level"`
	Format   string   `toml:"format"`
	Outputs  []string `toml:"outputs"`
	FilePath string   `toml:"file_path"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host:      "0.0.0.0",
			Port:      8500,
			Transport: "http",
		},
		Routing: RoutingConfig{
			Domestic:   ProviderBaostock,
			HongKong:   ProviderAKTools,
			US:         ProviderAKTools,
			Commodity:  ProviderAKTools,
			Unknown:    ProviderAKTools,
			MarketWide: ProviderBaostock,
		},
		Fallback: FallbackConfig{
			MaxAttempts: 4,
			FloorYears:  3,
		},
		Clients: ClientsConfig{
			Baostock: BaostockConfig{
				BaseURL:   "http://localhost:8081",
				UserID:    "anonymous",
				Password:  "123456",
				RateLimit: 5,
				Timeout:   "30s",
			},
			AKTools: AKToolsConfig{
				BaseURL:   "http://localhost:8080",
				RateLimit: 5,
				Timeout:   "60s",
			},
		},
		Storage: StorageConfig{
			Namespace: "stockreport",
			Database:  "stockreport",
			Username:  "root",
			Password:  "root",
		},
		Warm: WarmConfig{
			Schedule:    "0 18 * * 1-5",
			Concurrency: 2,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "text",
			Outputs:  []string{"console"},
			FilePath: "./logs/stockreport.log",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("STOCKREPORT_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("STOCKREPORT_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("STOCKREPORT_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if transport := os.Getenv("STOCKREPORT_TRANSPORT"); transport != "" {
		config.Server.Transport = transport
	}

	if level := os.Getenv("STOCKREPORT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if v := os.Getenv("STOCKREPORT_BAOSTOCK_URL"); v != "" {
		config.Clients.Baostock.BaseURL = v
	}
	if v := os.Getenv("STOCKREPORT_AKTOOLS_URL"); v != "" {
		config.Clients.AKTools.BaseURL = v
	}

	if v := os.Getenv("STOCKREPORT_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Fallback.MaxAttempts = n
		}
	}

	if v := os.Getenv("STOCKREPORT_STORAGE_ADDRESS"); v != "" {
		config.Storage.Address = v
	}
	if v := os.Getenv("STOCKREPORT_STORAGE_USERNAME"); v != "" {
		config.Storage.Username = v
	}
	if v := os.Getenv("STOCKREPORT_STORAGE_PASSWORD"); v != "" {
		config.Storage.Password = v
	}

	if v := os.Getenv("STOCKREPORT_WARM_CODES"); v != "" {
		var codes []string
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				codes = append(codes, c)
			}
		}
		config.Warm.Codes = codes
	}
}

// normalize lowercases enum-like values before validation
func (c *Config) normalize() {
	c.Server.Transport = strings.ToLower(strings.TrimSpace(c.Server.Transport))
	r := &c.Routing
	for _, p := range []*string{&r.Domestic, &r.HongKong, &r.US, &r.Commodity, &r.Unknown, &r.MarketWide} {
		*p = strings.ToLower(strings.TrimSpace(*p))
	}
}

// Validate checks field constraints and returns a readable error listing
// every failing field.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s (%s=%s, got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// ProviderNames returns the distinct provider names the routing table uses
func (r RoutingConfig) ProviderNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, n := range []string{r.Domestic, r.HongKong, r.US, r.Commodity, r.Unknown, r.MarketWide} {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	return names
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
