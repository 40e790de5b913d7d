package common

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ternarybob/banner"
)

// PrintBanner displays the application startup banner. In stdio mode stdout
// carries the protocol, so the banner always goes to stderr.
func PrintBanner(config *Config, logger *Logger) {
	writeBanner(os.Stderr, config)

	logger.Info().
		Str("version", GetVersion()).
		Str("build", GetBuild()).
		Str("commit", GetGitCommit()).
		Str("environment", config.Environment).
		Str("transport", config.Server.Transport).
		Str("service_url", serviceURL(config)).
		Str("storage_address", config.Storage.Address).
		Msg("Application started")
}

func serviceURL(config *Config) string {
	if config.Server.Transport == "stdio" {
		return "stdio"
	}
	return fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)
}

func writeBanner(w io.Writer, config *Config) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	hr := lineColor + strings.Repeat("═", 64) + banner.ColorReset

	storage := config.Storage.Address
	if storage == "" {
		storage = "disabled"
	}

	fmt.Fprintf(w, "\n%s\n\n", hr)
	fmt.Fprintf(w, "%s  STOCKREPORT%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(w, "%s  Market routing & latest-period financials%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(w, "\n%s\n\n", hr)

	kvLines := [][2]string{
		{"Version", GetVersion()},
		{"Build", GetBuild()},
		{"Commit", GetGitCommit()},
		{"Environment", config.Environment},
		{"Service", serviceURL(config)},
		{"Routing", fmt.Sprintf("domestic=%s hk=%s us=%s commodity=%s", config.Routing.Domestic, config.Routing.HongKong, config.Routing.US, config.Routing.Commodity)},
		{"Fallback", "max_attempts=" + strconv.Itoa(config.Fallback.MaxAttempts) + " floor_years=" + strconv.Itoa(config.Fallback.FloorYears)},
		{"Storage", storage},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(w, "%s  %-*s %s%s\n", textColor, 14, kv[0], kv[1], banner.ColorReset)
	}

	fmt.Fprintf(w, "\n%s\n\n", hr)
}

// PrintShutdownBanner displays the application shutdown banner to stderr.
func PrintShutdownBanner(logger *Logger) {
	hr := banner.ColorCyan + strings.Repeat("═", 40) + banner.ColorReset
	textColor := banner.ColorBold + banner.ColorWhite

	fmt.Fprintf(os.Stderr, "\n%s\n", hr)
	fmt.Fprintf(os.Stderr, "%s  STOCKREPORT - SHUTTING DOWN%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(os.Stderr, "%s\n\n", hr)

	logger.Info().Msg("Application shutting down")
}
