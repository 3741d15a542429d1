package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/model"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
)

// DividendRepository provides data access methods for the dividend_event table.
type DividendRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewDividendRepository creates a new DividendRepository with the provided database connection.
func NewDividendRepository(db *sql.DB) *DividendRepository {
	return &DividendRepository{db: db}
}

// WithTx returns a new DividendRepository scoped to the provided transaction.
func (r *DividendRepository) WithTx(tx *sql.Tx) *DividendRepository {
	return &DividendRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *DividendRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const dividendColumns = `
	id, name, rule, event_date, status, profit_amount, distributed_amount,
	company_investment_amount, company_shares_purchased, created_at, confirmed_at`

// GetDividendEvents retrieves every dividend event, most recent first.
func (r *DividendRepository) GetDividendEvents(ctx context.Context) ([]model.DividendEvent, error) {
	rows, err := r.getQuerier().QueryContext(ctx,
		`SELECT `+dividendColumns+` FROM dividend_event ORDER BY event_date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query dividend_event table: %w", err)
	}
	defer rows.Close()

	events := []model.DividendEvent{}
	for rows.Next() {
		ev, err := scanDividendEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dividend_event table: %w", err)
	}
	return events, nil
}

// GetDividendEvent retrieves one dividend event.
// Returns ErrDividendNotFound if no event with the given ID exists.
func (r *DividendRepository) GetDividendEvent(ctx context.Context, id string) (model.DividendEvent, error) {
	ev, err := scanDividendEvent(r.getQuerier().QueryRowContext(ctx,
		`SELECT `+dividendColumns+` FROM dividend_event WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.DividendEvent{}, apperrors.ErrDividendNotFound
	}
	return ev, err
}

// InsertDividendEvent records a newly declared dividend event.
func (r *DividendRepository) InsertDividendEvent(ctx context.Context, ev *model.DividendEvent) error {
	query := `INSERT INTO dividend_event (` + dividendColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.getQuerier().ExecContext(ctx, query,
		ev.ID,
		ev.Name,
		ev.Rule,
		ev.EventDate.UTC().Format(dateLayout),
		ev.Status,
		ev.ProfitAmount,
		ev.DistributedAmount,
		ev.CompanyInvestmentAmount,
		ev.CompanySharesPurchased,
		formatTimestamp(ev.CreatedAt),
		nullTimestamp(ev.ConfirmedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert dividend event: %w", err)
	}
	return nil
}

// ConfirmDividendEvent stores the outcome of confirming a pending event.
// Returns ErrDividendNotPending if the event is no longer pending.
func (r *DividendRepository) ConfirmDividendEvent(ctx context.Context, ev *model.DividendEvent) error {
	query := `
		UPDATE dividend_event
		SET status = ?, distributed_amount = ?, company_investment_amount = ?,
			company_shares_purchased = ?, confirmed_at = ?
		WHERE id = ? AND status = ?
	`
	result, err := r.getQuerier().ExecContext(ctx, query,
		model.DividendStatusConfirmed,
		ev.DistributedAmount,
		ev.CompanyInvestmentAmount,
		ev.CompanySharesPurchased,
		nullTimestamp(ev.ConfirmedAt),
		ev.ID,
		model.DividendStatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to confirm dividend event: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return apperrors.ErrDividendNotPending
	}
	return nil
}

// RevalueConfirmed reprices the company reinvestment of confirmed events
// dated in period p.
func (r *DividendRepository) RevalueConfirmed(ctx context.Context, p period.Period, price float64) (int64, error) {
	result, err := r.getQuerier().ExecContext(ctx, `
		UPDATE dividend_event
		SET company_shares_purchased = company_investment_amount / ?
		WHERE status = ? AND event_date >= ? AND event_date < ?`,
		price,
		model.DividendStatusConfirmed,
		p.Start().Format(dateLayout),
		p.AddMonths(1).Start().Format(dateLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to revalue dividend events for %s: %w", p, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func scanDividendEvent(row rowScanner) (model.DividendEvent, error) {
	var ev model.DividendEvent
	var eventDate, createdAt string
	var confirmedAt sql.NullString

	err := row.Scan(
		&ev.ID,
		&ev.Name,
		&ev.Rule,
		&eventDate,
		&ev.Status,
		&ev.ProfitAmount,
		&ev.DistributedAmount,
		&ev.CompanyInvestmentAmount,
		&ev.CompanySharesPurchased,
		&createdAt,
		&confirmedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return ev, err
	}
	if err != nil {
		return ev, fmt.Errorf("failed to scan dividend event: %w", err)
	}

	if ev.EventDate, err = ParseTime(eventDate); err != nil {
		return ev, fmt.Errorf("failed to parse event_date: %w", err)
	}
	if ev.CreatedAt, err = ParseTime(createdAt); err != nil {
		return ev, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if confirmedAt.Valid {
		t, err := ParseTime(confirmedAt.String)
		if err != nil {
			return ev, fmt.Errorf("failed to parse confirmed_at: %w", err)
		}
		ev.ConfirmedAt = &t
	}
	return ev, nil
}

func nullTimestamp(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTimestamp(*t), Valid: true}
}
