package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/model"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
)

// ActivityRepository provides data access methods for the activity table,
// which holds one row per investment or withdrawal event.
type ActivityRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewActivityRepository creates a new ActivityRepository with the provided database connection.
func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// WithTx returns a new ActivityRepository scoped to the provided transaction.
func (r *ActivityRepository) WithTx(tx *sql.Tx) *ActivityRepository {
	return &ActivityRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *ActivityRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetActivities returns the activity log of one member.
func (r *ActivityRepository) GetActivities(ctx context.Context, memberID string) (model.Activities, error) {
	all, err := loadActivities(ctx, r.getQuerier(), memberID)
	if err != nil {
		return nil, err
	}
	if acts, ok := all[memberID]; ok {
		return acts, nil
	}
	return make(model.Activities), nil
}

// NextReceiptSequence returns the sequence number the next investment of
// period p receives: one more than the investments already recorded for p
// across all members.
func (r *ActivityRepository) NextReceiptSequence(ctx context.Context, p period.Period) (int, error) {
	var count int
	err := r.getQuerier().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activity WHERE kind = 'investment' AND year = ? AND month = ?`,
		p.Year, int(p.Month),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count investments for %s: %w", p, err)
	}
	return count + 1, nil
}

// InsertInvestment records an investment for a member and period.
// Returns ErrDuplicateInvestment if the member already invested in the period.
func (r *ActivityRepository) InsertInvestment(ctx context.Context, memberID string, p period.Period, inv *model.InvestmentEvent) error {
	query := `
		INSERT INTO activity (id, member_id, kind, year, month, amount, fine, share_price, shares,
			system_receipt, custom_receipt, manual_receipt, created_at)
		VALUES (?, ?, 'investment', ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.getQuerier().ExecContext(ctx, query,
		inv.ID,
		memberID,
		p.Year,
		int(p.Month),
		inv.Amount,
		inv.Fine,
		inv.SharePrice,
		inv.Shares,
		nullString(inv.SystemReceipt),
		nullString(inv.CustomReceipt),
		nullString(inv.ManualReceipt),
		formatTimestamp(inv.CreatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", apperrors.ErrDuplicateInvestment, p)
	}
	if err != nil {
		return fmt.Errorf("failed to insert investment: %w", err)
	}
	return nil
}

// UpdateInvestmentAmounts overwrites the amount, price and shares of an
// existing investment.
func (r *ActivityRepository) UpdateInvestmentAmounts(ctx context.Context, inv *model.InvestmentEvent) error {
	result, err := r.getQuerier().ExecContext(ctx,
		`UPDATE activity SET amount = ?, share_price = ?, shares = ? WHERE id = ? AND kind = 'investment'`,
		inv.Amount, inv.SharePrice, inv.Shares, inv.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update investment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: investment %s not found", apperrors.ErrDataInconsistency, inv.ID)
	}
	return nil
}

// InsertWithdrawal records a withdrawal for a member and period.
// Returns ErrDuplicateEntry if the member already withdrew in the period.
func (r *ActivityRepository) InsertWithdrawal(ctx context.Context, memberID string, p period.Period, wd *model.WithdrawalEvent) error {
	query := `
		INSERT INTO activity (id, member_id, kind, year, month, amount, share_price, shares, status, created_at)
		VALUES (?, ?, 'withdrawal', ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.getQuerier().ExecContext(ctx, query,
		wd.ID,
		memberID,
		p.Year,
		int(p.Month),
		wd.Amount,
		wd.SharePrice,
		wd.Shares,
		nullString(wd.Status),
		formatTimestamp(wd.CreatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: withdrawal already recorded for %s", apperrors.ErrDuplicateEntry, p)
	}
	if err != nil {
		return fmt.Errorf("failed to insert withdrawal: %w", err)
	}
	return nil
}

// RevalueInvestments reprices every investment of period p and returns the
// IDs of the members affected.
func (r *ActivityRepository) RevalueInvestments(ctx context.Context, p period.Period, price float64) ([]string, error) {
	rows, err := r.getQuerier().QueryContext(ctx,
		`SELECT DISTINCT member_id FROM activity WHERE kind = 'investment' AND year = ? AND month = ?`,
		p.Year, int(p.Month),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query investments for %s: %w", p, err)
	}
	memberIDs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan member id: %w", err)
		}
		memberIDs = append(memberIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating investments: %w", err)
	}
	rows.Close()

	_, err = r.getQuerier().ExecContext(ctx,
		`UPDATE activity SET share_price = ?, shares = amount / ? WHERE kind = 'investment' AND year = ? AND month = ?`,
		price, price, p.Year, int(p.Month),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to revalue investments for %s: %w", p, err)
	}
	return memberIDs, nil
}

// loadActivities reads activity rows, for one member when memberID is set,
// and groups them into per-member activity logs.
func loadActivities(ctx context.Context, q querier, memberID string) (map[string]model.Activities, error) {
	query := `
		SELECT id, member_id, kind, year, month, amount, fine, share_price, shares,
			system_receipt, custom_receipt, manual_receipt, status, created_at
		FROM activity
	`
	args := []any{}
	if memberID != "" {
		query += ` WHERE member_id = ?`
		args = append(args, memberID)
	}
	query += ` ORDER BY year ASC, month ASC, created_at ASC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]model.Activities)
	for rows.Next() {
		var (
			id, owner, kind, createdAtStr          string
			year, month                            int
			amount, fine, sharePrice, shares       float64
			systemReceipt, customReceipt, manualRc sql.NullString
			status                                 sql.NullString
		)
		err := rows.Scan(&id, &owner, &kind, &year, &month, &amount, &fine, &sharePrice, &shares,
			&systemReceipt, &customReceipt, &manualRc, &status, &createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}

		p, err := periodFromColumns(year, month)
		if err != nil {
			return nil, fmt.Errorf("activity %s: %w", id, err)
		}
		createdAt, err := ParseTime(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("activity %s: %w", id, err)
		}

		acts, ok := out[owner]
		if !ok {
			acts = make(model.Activities)
			out[owner] = acts
		}
		act, _ := acts.At(p)

		switch kind {
		case model.ActivityInvestment:
			act.Investment = &model.InvestmentEvent{
				ID:            id,
				Amount:        amount,
				Fine:          fine,
				SharePrice:    sharePrice,
				Shares:        shares,
				SystemReceipt: systemReceipt.String,
				CustomReceipt: customReceipt.String,
				ManualReceipt: manualRc.String,
				CreatedAt:     createdAt,
			}
		case model.ActivityWithdrawal:
			act.Withdrawal = &model.WithdrawalEvent{
				ID:         id,
				Amount:     amount,
				SharePrice: sharePrice,
				Shares:     shares,
				Status:     status.String,
				CreatedAt:  createdAt,
			}
		default:
			return nil, fmt.Errorf("%w: activity %s has unknown kind %q", apperrors.ErrDataInconsistency, id, kind)
		}
		acts.Set(p, act)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity table: %w", err)
	}

	return out, nil
}
