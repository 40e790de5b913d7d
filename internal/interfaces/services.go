package interfaces

import (
	"context"

	"github.com/bobmcallan/stockreport/internal/models"
)

// MarketRouter classifies identifiers and forwards provider calls to the
// provider configured for the identifier's segment.
type MarketRouter interface {
	Provider
	Segmenter

	// Route returns the provider serving an identifier
	Route(code string) Provider

	// MarketInfo describes the classification and routing of an identifier
	MarketInfo(code string) models.MarketInfo
}

// AnalysisService resolves latest-available statements and builds snapshots.
type AnalysisService interface {
	// ResolveLatest finds the most recent non-empty period for one category
	ResolveLatest(ctx context.Context, code string, category models.StatementCategory) models.StatementSection

	// Snapshot resolves several categories for one identifier
	Snapshot(ctx context.Context, code string, categories []models.StatementCategory) (*models.FundamentalSnapshot, error)
}

// Segmenter classifies identifiers into market segments
type Segmenter interface {
	Classify(code string) models.MarketSegment
}
