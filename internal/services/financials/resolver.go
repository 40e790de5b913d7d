package financials

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/stockreport/internal/common"
	"github.com/bobmcallan/stockreport/internal/interfaces"
	"github.com/bobmcallan/stockreport/internal/models"
)

const (
	// DefaultMaxAttempts is the number of quarters tried before giving up
	DefaultMaxAttempts = 4
	// DefaultFloorYears stops the search once the period year falls more
	// than this many years before the current year
	DefaultFloorYears = 3
)

// fetchFunc is the provider operation backing one statement category.
type fetchFunc func(ctx context.Context, p interfaces.Provider, code string, period models.FiscalPeriod) (*models.Table, error)

var categoryOps = map[models.StatementCategory]fetchFunc{
	models.CategoryProfitability: func(ctx context.Context, p interfaces.Provider, code string, period models.FiscalPeriod) (*models.Table, error) {
		return p.GetProfitData(ctx, code, period)
	},
	models.CategoryGrowth: func(ctx context.Context, p interfaces.Provider, code string, period models.FiscalPeriod) (*models.Table, error) {
		return p.GetGrowthData(ctx, code, period)
	},
	models.CategorySolvency: func(ctx context.Context, p interfaces.Provider, code string, period models.FiscalPeriod) (*models.Table, error) {
		return p.GetBalanceData(ctx, code, period)
	},
	models.CategoryDupont: func(ctx context.Context, p interfaces.Provider, code string, period models.FiscalPeriod) (*models.Table, error) {
		return p.GetDupontData(ctx, code, period)
	},
	models.CategoryCashFlow: func(ctx context.Context, p interfaces.Provider, code string, period models.FiscalPeriod) (*models.Table, error) {
		return p.GetCashFlowData(ctx, code, period)
	},
	models.CategoryOperation: func(ctx context.Context, p interfaces.Provider, code string, period models.FiscalPeriod) (*models.Table, error) {
		return p.GetOperationData(ctx, code, period)
	},
}

// FetchPeriod calls the provider operation for category at an explicit period.
func FetchPeriod(ctx context.Context, p interfaces.Provider, code string, category models.StatementCategory, period models.FiscalPeriod) (*models.Table, error) {
	fetch, ok := categoryOps[category]
	if !ok {
		return nil, models.NewProviderError(p.Name(), string(category), models.ErrDataSource, fmt.Errorf("unknown statement category %q", category))
	}
	return fetch(ctx, p, code, period)
}

// Resolver searches backward from the latest published quarter for the
// first period a provider has data for. Each call keeps its state local, so
// one Resolver may serve concurrent callers.
type Resolver struct {
	maxAttempts int
	floorYears  int
	logger      *common.Logger
	now         func() time.Time // injectable clock for testing
}

// Option configures a Resolver
type Option func(*Resolver)

// WithMaxAttempts bounds the number of provider calls per resolution
func WithMaxAttempts(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithFloorYears sets how many years back from the current year the search
// may reach
func WithFloorYears(n int) Option {
	return func(r *Resolver) {
		if n >= 0 {
			r.floorYears = n
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// NewResolver creates a resolver with the default bounds.
func NewResolver(logger *common.Logger, opts ...Option) *Resolver {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	r := &Resolver{
		maxAttempts: DefaultMaxAttempts,
		floorYears:  DefaultFloorYears,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxAttempts returns the configured attempt budget
func (r *Resolver) MaxAttempts() int {
	return r.maxAttempts
}

// Now returns the resolver's current time
func (r *Resolver) Now() time.Time {
	return r.now()
}

// ResolveLatest resolves against the resolver's clock. See ResolveLatestAt.
func (r *Resolver) ResolveLatest(ctx context.Context, p interfaces.Provider, code string, category models.StatementCategory) models.Resolution {
	return r.ResolveLatestAt(ctx, r.now(), p, code, category)
}

// ResolveLatestAt asks p for category data one quarter at a time, newest
// first from the latest period published as of now, and returns the first
// non-empty table with its period. Provider errors and panics count as empty
// attempts. The search stops after maxAttempts calls, once the period year
// drops below the floor, or when ctx is done. It never returns an error;
// Found is false when nothing was located.
func (r *Resolver) ResolveLatestAt(ctx context.Context, now time.Time, p interfaces.Provider, code string, category models.StatementCategory) models.Resolution {
	log := r.logger.WithCorrelation(uuid.NewString())

	fetch, ok := categoryOps[category]
	if !ok {
		log.Error().Str("identifier", code).Str("category", string(category)).Msg("Unknown statement category")
		return models.Resolution{}
	}

	floorYear := now.Year() - r.floorYears
	period := LatestPublishedPeriod(now)
	res := models.Resolution{}

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Str("identifier", code).Str("category", string(category)).Msg("Resolution cancelled")
			break
		}

		res.Attempts = attempt
		res.Tried = append(res.Tried, period)

		tbl, err := safeFetch(ctx, fetch, p, code, period)
		switch {
		case err != nil:
			log.Warn().
				Err(err).
				Str("identifier", code).
				Str("category", string(category)).
				Str("period", period.String()).
				Int("attempt", attempt).
				Msg("Statement query failed, trying previous quarter")
		case !tbl.IsEmpty():
			log.Info().
				Str("identifier", code).
				Str("category", string(category)).
				Str("period", period.String()).
				Int("attempt", attempt).
				Int("rows", tbl.Len()).
				Msg("Resolved latest statement period")
			res.Table = tbl
			res.Period = period
			res.Found = true
			return res
		default:
			log.Debug().
				Str("identifier", code).
				Str("category", string(category)).
				Str("period", period.String()).
				Msg("No statement data for period")
		}

		period = period.Prev()
		if period.Year < floorYear {
			log.Debug().
				Str("identifier", code).
				Str("category", string(category)).
				Int("floor_year", floorYear).
				Msg("Search reached the year floor")
			break
		}
	}

	log.Warn().
		Str("identifier", code).
		Str("category", string(category)).
		Int("attempts", res.Attempts).
		Msg("No statement data found in search window")
	return models.Resolution{Attempts: res.Attempts, Tried: res.Tried}
}

// safeFetch runs one attempt, turning a provider panic into an error.
func safeFetch(ctx context.Context, fetch fetchFunc, p interfaces.Provider, code string, period models.FiscalPeriod) (tbl *models.Table, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			tbl = nil
			err = models.NewProviderError(p.Name(), "resolve_latest", models.ErrDataSource, fmt.Errorf("provider panic: %v", rec))
		}
	}()
	return fetch(ctx, p, code, period)
}
