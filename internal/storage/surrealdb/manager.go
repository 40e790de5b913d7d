package surrealdb

import (
	"context"
	"fmt"

	"github.com/bobmcallan/stockreport/internal/common"
	"github.com/bobmcallan/stockreport/internal/interfaces"
	"github.com/surrealdb/surrealdb.go"
)

// tables are defined at connect time; SurrealDB v3 errors on querying
// tables that do not exist.
var tables = []string{resolutionTable}

// Manager owns the SurrealDB connection and the stores built on it.
type Manager struct {
	*ResolutionStore

	db     *surrealdb.DB
	logger *common.Logger
}

// NewManager connects to SurrealDB, signs in and selects the configured
// namespace and database.
func NewManager(ctx context.Context, logger *common.Logger, config *common.StorageConfig) (*Manager, error) {
	db, err := surrealdb.New(config.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Username,
		"pass": config.Password,
	}); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, config.Namespace, config.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	m, err := newManager(ctx, db, logger)
	if err != nil {
		db.Close(ctx)
		return nil, err
	}

	logger.Info().
		Str("address", config.Address).
		Str("namespace", config.Namespace).
		Str("database", config.Database).
		Msg("SurrealDB storage manager initialized")

	return m, nil
}

// newManager defines the tables on an already selected database.
func newManager(ctx context.Context, db *surrealdb.DB, logger *common.Logger) (*Manager, error) {
	for _, table := range tables {
		sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", table)
		if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
			return nil, fmt.Errorf("failed to define table %s: %w", table, err)
		}
	}

	return &Manager{
		ResolutionStore: NewResolutionStore(db, logger),
		db:              db,
		logger:          logger,
	}, nil
}

func (m *Manager) Close() error {
	return m.db.Close(context.Background())
}

// Compile-time check
var _ interfaces.ResolutionStore = (*Manager)(nil)
