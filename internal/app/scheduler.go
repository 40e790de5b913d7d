package app

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/stockreport/internal/common"
	"github.com/bobmcallan/stockreport/internal/models"
	"github.com/bobmcallan/stockreport/internal/services/analysis"
)

// warmResult counts the outcome of one warm run.
type warmResult struct {
	Refreshed int
	Skipped   int
	Empty     int
}

// warmer rebuilds snapshots for a fixed identifier list so the first
// interactive query finds recent resolutions in the store.
type warmer struct {
	analysis    *analysis.Service
	codes       []string
	concurrency int
	logger      *common.Logger
	now         func() time.Time
}

func newWarmer(svc *analysis.Service, cfg common.WarmConfig, logger *common.Logger) *warmer {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	var codes []string
	for _, c := range cfg.Codes {
		if c = strings.TrimSpace(c); c != "" {
			codes = append(codes, c)
		}
	}
	return &warmer{
		analysis:    svc,
		codes:       codes,
		concurrency: concurrency,
		logger:      logger,
		now:         time.Now,
	}
}

// fresh reports whether every default category of code was resolved within
// common.FreshnessResolution.
func (w *warmer) fresh(ctx context.Context, code string) bool {
	if !w.analysis.HasStore() {
		return false
	}
	now := w.now()
	for _, category := range models.DefaultSnapshotCategories() {
		rec, err := w.analysis.LastResolution(ctx, code, category)
		if err != nil || rec == nil || !common.IsFresh(rec.ResolvedAt, now, common.FreshnessResolution) {
			return false
		}
	}
	return true
}

// run refreshes every stale identifier, at most concurrency at a time.
func (w *warmer) run(ctx context.Context) warmResult {
	start := time.Now()
	var refreshed, skipped, empty atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, code := range w.codes {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			if w.fresh(gctx, code) {
				skipped.Add(1)
				return nil
			}
			snap, err := w.analysis.Snapshot(gctx, code, nil)
			if err != nil {
				w.logger.Warn().Err(err).Str("identifier", code).Msg("Warm: snapshot failed")
				empty.Add(1)
				return nil
			}
			found := false
			for _, sec := range snap.Sections {
				found = found || sec.Found
			}
			if found {
				refreshed.Add(1)
			} else {
				empty.Add(1)
			}
			return nil
		})
	}
	g.Wait()

	res := warmResult{
		Refreshed: int(refreshed.Load()),
		Skipped:   int(skipped.Load()),
		Empty:     int(empty.Load()),
	}
	w.logger.Info().
		Int("identifiers", len(w.codes)).
		Int("refreshed", res.Refreshed).
		Int("skipped", res.Skipped).
		Int("empty", res.Empty).
		Int64("elapsed_ms", time.Since(start).Milliseconds()).
		Msg("Warm: complete")
	return res
}

// StartWarmScheduler registers the warm job on the configured cron schedule.
// It does nothing when warming is disabled or no identifiers are listed.
func (a *App) StartWarmScheduler() error {
	cfg := a.Config.Warm
	if !cfg.Enabled {
		a.Logger.Info().Msg("Warm scheduler: disabled")
		return nil
	}
	w := newWarmer(a.Analysis, cfg, a.Logger)
	if len(w.codes) == 0 {
		a.Logger.Info().Msg("Warm scheduler: no identifiers configured, skipping")
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		w.run(ctx)
	}); err != nil {
		return fmt.Errorf("invalid warm schedule %q: %w", cfg.Schedule, err)
	}
	c.Start()
	a.cron = c

	a.Logger.Info().
		Str("schedule", cfg.Schedule).
		Strs("identifiers", w.codes).
		Msg("Warm scheduler: started")
	return nil
}

// StopWarmScheduler stops the cron and waits for a running job to finish.
func (a *App) StopWarmScheduler() {
	if a.cron == nil {
		return
	}
	<-a.cron.Stop().Done()
	a.cron = nil
}
