package surrealdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/stockreport/internal/common"
	"github.com/bobmcallan/stockreport/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

const resolutionTable = "resolution"

// ResolutionStore keeps the latest resolution per (code, category).
type ResolutionStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// resolutionRecord is the SurrealDB record shape for the resolution table.
// The record id is derived from code and category, so the model ID travels
// as a plain field.
type resolutionRecord struct {
	RecordID   string                   `json:"record_id"`
	Code       string                   `json:"code"`
	Segment    models.MarketSegment     `json:"segment"`
	Provider   string                   `json:"provider"`
	Category   models.StatementCategory `json:"category"`
	Found      bool                     `json:"found"`
	Period     models.FiscalPeriod      `json:"period"`
	Freshness  models.FreshnessTier     `json:"freshness"`
	Attempts   int                      `json:"attempts"`
	Rows       int                      `json:"rows"`
	ResolvedAt time.Time                `json:"resolved_at"`
}

func (r *resolutionRecord) model() *models.ResolutionRecord {
	return &models.ResolutionRecord{
		ID:         r.RecordID,
		Code:       r.Code,
		Segment:    r.Segment,
		Provider:   r.Provider,
		Category:   r.Category,
		Found:      r.Found,
		Period:     r.Period,
		Freshness:  r.Freshness,
		Attempts:   r.Attempts,
		Rows:       r.Rows,
		ResolvedAt: r.ResolvedAt,
	}
}

// NewResolutionStore creates a new ResolutionStore.
func NewResolutionStore(db *surrealdb.DB, logger *common.Logger) *ResolutionStore {
	return &ResolutionStore{db: db, logger: logger}
}

// resolutionKey converts an identifier like "sh.600000" plus a category into
// a safe record ID. Codes are stored uppercase so lookups are case-blind.
func resolutionKey(code string, category models.StatementCategory) string {
	return strings.NewReplacer(".", "_", "-", "_", " ", "_").Replace(normalizeCode(code) + "_" + string(category))
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *ResolutionStore) SaveResolution(ctx context.Context, rec *models.ResolutionRecord) error {
	if rec == nil || strings.TrimSpace(rec.Code) == "" || rec.Category == "" {
		return fmt.Errorf("resolution record requires code and category")
	}
	if rec.ResolvedAt.IsZero() {
		rec.ResolvedAt = time.Now()
	}

	row := resolutionRecord{
		RecordID:   rec.ID,
		Code:       normalizeCode(rec.Code),
		Segment:    rec.Segment,
		Provider:   rec.Provider,
		Category:   rec.Category,
		Found:      rec.Found,
		Period:     rec.Period,
		Freshness:  rec.Freshness,
		Attempts:   rec.Attempts,
		Rows:       rec.Rows,
		ResolvedAt: rec.ResolvedAt,
	}

	sql := "UPSERT $rid CONTENT $rec"
	vars := map[string]any{
		"rid": surrealmodels.NewRecordID(resolutionTable, resolutionKey(rec.Code, rec.Category)),
		"rec": row,
	}
	if _, err := surrealdb.Query[[]resolutionRecord](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to save resolution %s/%s: %w", rec.Code, rec.Category, err)
	}
	return nil
}

func (s *ResolutionStore) GetResolution(ctx context.Context, code string, category models.StatementCategory) (*models.ResolutionRecord, error) {
	rid := surrealmodels.NewRecordID(resolutionTable, resolutionKey(code, category))
	row, err := surrealdb.Select[resolutionRecord](ctx, s.db, rid)
	if err != nil {
		return nil, fmt.Errorf("failed to get resolution %s/%s: %w", code, category, err)
	}
	if row == nil {
		return nil, nil
	}
	return row.model(), nil
}

func (s *ResolutionStore) ListResolutions(ctx context.Context, code string) ([]*models.ResolutionRecord, error) {
	sql := "SELECT * FROM resolution WHERE code = $code ORDER BY resolved_at DESC"
	vars := map[string]any{"code": normalizeCode(code)}

	results, err := surrealdb.Query[[]resolutionRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list resolutions for %s: %w", code, err)
	}

	var records []*models.ResolutionRecord
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			records = append(records, (*results)[0].Result[i].model())
		}
	}
	return records, nil
}
