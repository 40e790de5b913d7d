// Package analysis combines routing, latest-period resolution and freshness
// grading into per-identifier fundamental snapshots.
package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/stockreport/internal/common"
	"github.com/bobmcallan/stockreport/internal/interfaces"
	"github.com/bobmcallan/stockreport/internal/models"
	"github.com/bobmcallan/stockreport/internal/services/financials"
)

// DefaultConcurrency bounds how many categories resolve at once per snapshot
const DefaultConcurrency = 4

// Service implements AnalysisService.
type Service struct {
	router      interfaces.MarketRouter
	resolver    *financials.Resolver
	store       interfaces.ResolutionStore
	logger      *common.Logger
	concurrency int
}

// NewService creates an analysis service.
// store may be nil; resolutions are then not persisted.
func NewService(router interfaces.MarketRouter, resolver *financials.Resolver, store interfaces.ResolutionStore, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		router:      router,
		resolver:    resolver,
		store:       store,
		logger:      logger,
		concurrency: DefaultConcurrency,
	}
}

// ResolveLatest finds the latest non-empty period for one category through
// the provider serving code and grades its freshness.
func (s *Service) ResolveLatest(ctx context.Context, code string, category models.StatementCategory) models.StatementSection {
	return s.resolveAt(ctx, s.resolver.Now(), code, category)
}

// resolveAt uses one clock reading for the search window, the freshness
// grade and the stored record.
func (s *Service) resolveAt(ctx context.Context, now time.Time, code string, category models.StatementCategory) models.StatementSection {
	provider := s.router.Route(code)
	res := s.resolver.ResolveLatestAt(ctx, now, provider, code, category)

	section := models.StatementSection{
		Category: category,
		Found:    res.Found,
		Attempts: res.Attempts,
	}
	if res.Found {
		current := financials.CurrentPeriod(now)
		section.Period = res.Period
		section.Table = res.Table
		section.Distance = financials.Distance(res.Period, current)
		section.Freshness = financials.ClassifyFreshness(res.Period, current)
	}

	s.record(ctx, code, provider.Name(), section, now)
	return section
}

// Snapshot resolves each category for code. Categories resolve concurrently;
// the order of Sections follows categories.
func (s *Service) Snapshot(ctx context.Context, code string, categories []models.StatementCategory) (*models.FundamentalSnapshot, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("code is required")
	}
	if len(categories) == 0 {
		categories = models.DefaultSnapshotCategories()
	}

	now := s.resolver.Now()
	sections := make([]models.StatementSection, len(categories))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, category := range categories {
		g.Go(func() error {
			sections[i] = s.resolveAt(gctx, now, code, category)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &models.FundamentalSnapshot{
		Code:        code,
		Market:      s.router.MarketInfo(code),
		AsOf:        financials.CurrentPeriod(now),
		Sections:    sections,
		GeneratedAt: now,
	}

	found := 0
	for _, sec := range sections {
		if sec.Found {
			found++
		}
	}
	s.logger.Info().
		Str("identifier", code).
		Str("segment", string(snap.Market.Segment)).
		Int("categories", len(categories)).
		Int("found", found).
		Msg("Fundamental snapshot built")

	return snap, nil
}

// History returns stored resolutions for code. Without a store it returns
// an empty list.
func (s *Service) History(ctx context.Context, code string) ([]*models.ResolutionRecord, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.ListResolutions(ctx, code)
}

// LastResolution returns the stored record for (code, category), or nil.
func (s *Service) LastResolution(ctx context.Context, code string, category models.StatementCategory) (*models.ResolutionRecord, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.GetResolution(ctx, code, category)
}

// HasStore reports whether resolutions are persisted
func (s *Service) HasStore() bool {
	return s.store != nil
}

func (s *Service) record(ctx context.Context, code, provider string, section models.StatementSection, now time.Time) {
	if s.store == nil {
		return
	}

	rec := &models.ResolutionRecord{
		ID:         uuid.NewString(),
		Code:       code,
		Segment:    s.router.Classify(code),
		Provider:   provider,
		Category:   section.Category,
		Found:      section.Found,
		Period:     section.Period,
		Freshness:  section.Freshness,
		Attempts:   section.Attempts,
		Rows:       section.Table.Len(),
		ResolvedAt: now,
	}
	if err := s.store.SaveResolution(ctx, rec); err != nil {
		s.logger.Warn().Err(err).Str("identifier", code).Str("category", string(section.Category)).Msg("Failed to save resolution")
	}
}

// Ensure Service implements AnalysisService
var _ interfaces.AnalysisService = (*Service)(nil)
