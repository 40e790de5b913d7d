package interfaces

import (
	"context"

	"github.com/bobmcallan/stockreport/internal/models"
)

// ResolutionStore persists the outcome of latest-period resolutions.
type ResolutionStore interface {
	// SaveResolution upserts the record for (code, category)
	SaveResolution(ctx context.Context, rec *models.ResolutionRecord) error

	// GetResolution returns the record for (code, category), or nil when absent
	GetResolution(ctx context.Context, code string, category models.StatementCategory) (*models.ResolutionRecord, error)

	// ListResolutions returns every record for code, newest first
	ListResolutions(ctx context.Context, code string) ([]*models.ResolutionRecord, error)

	// Close releases the connection
	Close() error
}
