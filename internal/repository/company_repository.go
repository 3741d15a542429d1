package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/model"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
)

// CompanyRepository provides data access methods for the company_transaction table.
type CompanyRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewCompanyRepository creates a new CompanyRepository with the provided database connection.
func NewCompanyRepository(db *sql.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// WithTx returns a new CompanyRepository scoped to the provided transaction.
func (r *CompanyRepository) WithTx(tx *sql.Tx) *CompanyRepository {
	return &CompanyRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *CompanyRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetTransactions retrieves every company transaction in booking order.
func (r *CompanyRepository) GetTransactions(ctx context.Context) ([]model.CompanyTransaction, error) {
	query := `
		SELECT id, member_id, source, description, amount, fine, share_price, shares, year, month, created_at
		FROM company_transaction
		ORDER BY year ASC, month ASC, created_at ASC
	`
	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query company_transaction table: %w", err)
	}
	defer rows.Close()

	txns := []model.CompanyTransaction{}
	for rows.Next() {
		var tx model.CompanyTransaction
		var month int
		var createdAt string
		err := rows.Scan(&tx.ID, &tx.MemberID, &tx.Source, &tx.Description, &tx.Amount, &tx.Fine,
			&tx.SharePrice, &tx.Shares, &tx.Year, &month, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company transaction: %w", err)
		}
		p, err := periodFromColumns(tx.Year, month)
		if err != nil {
			return nil, fmt.Errorf("company transaction %s: %w", tx.ID, err)
		}
		tx.Month = p.Key()
		if tx.CreatedAt, err = ParseTime(createdAt); err != nil {
			return nil, fmt.Errorf("company transaction %s: %w", tx.ID, err)
		}
		txns = append(txns, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating company_transaction table: %w", err)
	}
	return txns, nil
}

// InsertTransaction records a company transaction.
func (r *CompanyRepository) InsertTransaction(ctx context.Context, tx *model.CompanyTransaction) error {
	m, err := period.ResolveMonth(tx.Month)
	if err != nil {
		return fmt.Errorf("invalid company transaction month: %w", err)
	}

	query := `
		INSERT INTO company_transaction (id, member_id, source, description, amount, fine, share_price, shares, year, month, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.getQuerier().ExecContext(ctx, query,
		tx.ID, tx.MemberID, tx.Source, tx.Description, tx.Amount, tx.Fine,
		tx.SharePrice, tx.Shares, tx.Year, int(m), formatTimestamp(tx.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert company transaction: %w", err)
	}
	return nil
}

// RevalueTransactions reprices the company transactions of period p and
// returns how many were changed.
func (r *CompanyRepository) RevalueTransactions(ctx context.Context, p period.Period, price float64) (int64, error) {
	result, err := r.getQuerier().ExecContext(ctx,
		`UPDATE company_transaction SET share_price = ?, shares = amount / ? WHERE year = ? AND month = ?`,
		price, price, p.Year, int(p.Month),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to revalue company transactions for %s: %w", p, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
