package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/model"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
)

// SharePriceRepository provides data access methods for the share_price table.
type SharePriceRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewSharePriceRepository creates a new SharePriceRepository with the provided database connection.
func NewSharePriceRepository(db *sql.DB) *SharePriceRepository {
	return &SharePriceRepository{db: db}
}

// WithTx returns a new SharePriceRepository scoped to the provided transaction.
func (r *SharePriceRepository) WithTx(tx *sql.Tx) *SharePriceRepository {
	return &SharePriceRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *SharePriceRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetSharePrices retrieves every configured share price, oldest period first.
func (r *SharePriceRepository) GetSharePrices(ctx context.Context) ([]model.SharePrice, error) {
	rows, err := r.getQuerier().QueryContext(ctx,
		`SELECT id, year, month, price, updated_at FROM share_price ORDER BY year ASC, month ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query share_price table: %w", err)
	}
	defer rows.Close()

	prices := []model.SharePrice{}
	for rows.Next() {
		sp, err := scanSharePrice(rows)
		if err != nil {
			return nil, err
		}
		prices = append(prices, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating share_price table: %w", err)
	}
	return prices, nil
}

// GetSharePrice retrieves the price of one period.
// Returns ErrSharePriceNotFound if none is configured.
func (r *SharePriceRepository) GetSharePrice(ctx context.Context, p period.Period) (model.SharePrice, error) {
	sp, err := scanSharePrice(r.getQuerier().QueryRowContext(ctx,
		`SELECT id, year, month, price, updated_at FROM share_price WHERE year = ? AND month = ?`,
		p.Year, int(p.Month),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return model.SharePrice{}, apperrors.ErrSharePriceNotFound
	}
	return sp, err
}

// UpsertSharePrice inserts or replaces the price of sp's period. The stored
// row's ID is written back to sp.
func (r *SharePriceRepository) UpsertSharePrice(ctx context.Context, sp *model.SharePrice) error {
	p, err := sp.Period()
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	query := `
		INSERT INTO share_price (id, year, month, price, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (year, month) DO UPDATE SET price = excluded.price, updated_at = excluded.updated_at
	`
	if _, err := r.getQuerier().ExecContext(ctx, query,
		sp.ID, p.Year, int(p.Month), sp.Price, formatTimestamp(sp.UpdatedAt),
	); err != nil {
		return fmt.Errorf("failed to upsert share price: %w", err)
	}

	err = r.getQuerier().QueryRowContext(ctx,
		`SELECT id FROM share_price WHERE year = ? AND month = ?`, p.Year, int(p.Month),
	).Scan(&sp.ID)
	if err != nil {
		return fmt.Errorf("failed to read back share price: %w", err)
	}
	sp.Month = p.Key()
	return nil
}

func scanSharePrice(row rowScanner) (model.SharePrice, error) {
	var sp model.SharePrice
	var month int
	var updatedAt string

	if err := row.Scan(&sp.ID, &sp.Year, &month, &sp.Price, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sp, err
		}
		return sp, fmt.Errorf("failed to scan share price: %w", err)
	}

	p, err := periodFromColumns(sp.Year, month)
	if err != nil {
		return sp, err
	}
	sp.Month = p.Key()

	if sp.UpdatedAt, err = ParseTime(updatedAt); err != nil {
		return sp, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return sp, nil
}
