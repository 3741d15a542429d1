package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/model"
)

// MemberRepository provides data access methods for the member table.
// Members are returned with their activity log attached.
type MemberRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewMemberRepository creates a new MemberRepository with the provided database connection.
func NewMemberRepository(db *sql.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// WithTx returns a new MemberRepository scoped to the provided transaction.
func (r *MemberRepository) WithTx(tx *sql.Tx) *MemberRepository {
	return &MemberRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *MemberRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const memberColumns = `
	id, name, phone, membership_id, joining_date, is_director, total_shares,
	paying_membership_amount, due_amount, payment_status, date_of_joining, created_at`

// GetMembers retrieves every member ordered by membership ID, each with its
// activity log.
func (r *MemberRepository) GetMembers(ctx context.Context) ([]model.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM member ORDER BY membership_id ASC`

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query member table: %w", err)
	}
	defer rows.Close()

	members := []model.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member table: %w", err)
	}

	activities, err := loadActivities(ctx, r.getQuerier(), "")
	if err != nil {
		return nil, err
	}
	for i := range members {
		if acts, ok := activities[members[i].ID]; ok {
			members[i].Activities = acts
		}
	}

	return members, nil
}

// GetMember retrieves a single member by ID.
// Returns ErrMemberNotFound if no member with the given ID exists.
func (r *MemberRepository) GetMember(ctx context.Context, id string) (model.Member, error) {
	return r.getBy(ctx, "id", id)
}

// GetMemberByPhone retrieves a member by phone number.
func (r *MemberRepository) GetMemberByPhone(ctx context.Context, phone string) (model.Member, error) {
	return r.getBy(ctx, "phone", phone)
}

// GetMemberByMembershipID retrieves a member by membership ID.
func (r *MemberRepository) GetMemberByMembershipID(ctx context.Context, membershipID string) (model.Member, error) {
	return r.getBy(ctx, "membership_id", membershipID)
}

// getBy loads one member matching column. column is always a constant.
func (r *MemberRepository) getBy(ctx context.Context, column, value string) (model.Member, error) {
	if value == "" {
		return model.Member{}, apperrors.ErrMemberNotFound
	}

	query := `SELECT ` + memberColumns + ` FROM member WHERE ` + column + ` = ?`
	m, err := scanMember(r.getQuerier().QueryRowContext(ctx, query, value))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Member{}, apperrors.ErrMemberNotFound
	}
	if err != nil {
		return model.Member{}, err
	}

	activities, err := loadActivities(ctx, r.getQuerier(), m.ID)
	if err != nil {
		return model.Member{}, err
	}
	if acts, ok := activities[m.ID]; ok {
		m.Activities = acts
	}
	return m, nil
}

// InsertMember inserts a new member. The activity log is not written.
// Returns ErrDuplicateEntry when the membership ID or phone is taken.
func (r *MemberRepository) InsertMember(ctx context.Context, m *model.Member) error {
	query := `
		INSERT INTO member (` + memberColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.getQuerier().ExecContext(ctx, query,
		m.ID,
		m.Name,
		nullString(m.Phone),
		m.MembershipID,
		nullDate(m.JoiningDate),
		m.IsDirector,
		m.TotalShares,
		m.Payment.PayingMembershipAmount,
		m.Payment.DueAmount,
		nullString(m.Payment.PaymentStatus),
		nullDate(m.Payment.DateOfJoining),
		formatTimestamp(m.CreatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: member with membership ID %s or phone %s already exists", apperrors.ErrDuplicateEntry, m.MembershipID, m.Phone)
	}
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

// UpdateTotalShares stores a member's recomputed share balance.
func (r *MemberRepository) UpdateTotalShares(ctx context.Context, memberID string, totalShares float64) error {
	result, err := r.getQuerier().ExecContext(ctx,
		`UPDATE member SET total_shares = ? WHERE id = ?`, totalShares, memberID)
	if err != nil {
		return fmt.Errorf("failed to update total shares: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return apperrors.ErrMemberNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (model.Member, error) {
	var m model.Member
	var phone, paymentStatus, joiningDate, dateOfJoining sql.NullString
	var createdAt string

	err := row.Scan(
		&m.ID,
		&m.Name,
		&phone,
		&m.MembershipID,
		&joiningDate,
		&m.IsDirector,
		&m.TotalShares,
		&m.Payment.PayingMembershipAmount,
		&m.Payment.DueAmount,
		&paymentStatus,
		&dateOfJoining,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return m, err
	}
	if err != nil {
		return m, fmt.Errorf("failed to scan member: %w", err)
	}

	m.Phone = phone.String
	m.Payment.PaymentStatus = paymentStatus.String
	m.Payment.MembershipID = m.MembershipID
	m.Activities = make(model.Activities)

	if m.JoiningDate, err = parseNullDate(joiningDate); err != nil {
		return m, fmt.Errorf("failed to parse joining_date: %w", err)
	}
	if m.Payment.DateOfJoining, err = parseNullDate(dateOfJoining); err != nil {
		return m, fmt.Errorf("failed to parse date_of_joining: %w", err)
	}
	if m.CreatedAt, err = ParseTime(createdAt); err != nil {
		return m, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return m, nil
}
