package repository

import (
	"context"
	"fmt"

	"github.com/Noviath61/finsight/internal/model"
	"github.com/guregu/null/v5"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// SymbolRepository persists the last successfully fetched symbol directory
type SymbolRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewSymbolRepository creates a new symbol repository
func NewSymbolRepository(db *sqlx.DB, logger *zap.Logger) *SymbolRepository {
	return &SymbolRepository{
		db:     db,
		logger: logger,
	}
}

// SaveDirectory replaces the stored snapshot with records, keeping their order
func (r *SymbolRepository) SaveDirectory(ctx context.Context, records []model.RawSymbol) error {
	positions := make([]int64, len(records))
	symbols := make([]string, len(records))
	names := make([]string, len(records))
	exchanges := make([]string, len(records))
	caps := make([]null.Float, len(records))
	for i, rec := range records {
		positions[i] = int64(i)
		symbols[i] = rec.Symbol
		names[i] = rec.CompanyName
		exchanges[i] = rec.ExchangeShortName
		caps[i] = rec.MarketCap
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM symbol_directory`); err != nil {
		r.logger.Error("Failed to clear symbol directory", zap.Error(err))
		return err
	}

	query := `
		INSERT INTO symbol_directory (position, symbol, company_name, exchange, market_cap)
		SELECT * FROM unnest($1::int[], $2::text[], $3::text[], $4::text[], $5::float8[])
	`
	if _, err := tx.ExecContext(ctx, query,
		pq.Array(positions),
		pq.Array(symbols),
		pq.Array(names),
		pq.Array(exchanges),
		pq.Array(caps),
	); err != nil {
		r.logger.Error("Failed to store symbol directory", zap.Error(err), zap.Int("count", len(records)))
		return err
	}

	return tx.Commit()
}

// LoadDirectory returns the stored snapshot in its original order
func (r *SymbolRepository) LoadDirectory(ctx context.Context) ([]model.RawSymbol, error) {
	query := `
		SELECT symbol, company_name, exchange, market_cap
		FROM symbol_directory
		ORDER BY position
	`

	var records []model.RawSymbol
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		r.logger.Error("Failed to load symbol directory", zap.Error(err))
		return nil, err
	}

	return records, nil
}
