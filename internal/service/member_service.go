package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/database"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/model"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/repository"
)

const dateLayout = "2006-01-02"

// MemberService handles member registration, lookup and legacy import.
type MemberService struct {
	db           *sql.DB
	memberRepo   *repository.MemberRepository
	activityRepo *repository.ActivityRepository
	prices       *SharePriceService
	company      *CompanyService
	opts         Options
	log          zerolog.Logger
}

// NewMemberService creates a new MemberService with the provided dependencies.
func NewMemberService(
	db *sql.DB,
	memberRepo *repository.MemberRepository,
	activityRepo *repository.ActivityRepository,
	prices *SharePriceService,
	company *CompanyService,
	opts Options,
) *MemberService {
	opts = opts.withDefaults()
	return &MemberService{
		db:           db,
		memberRepo:   memberRepo,
		activityRepo: activityRepo,
		prices:       prices,
		company:      company,
		opts:         opts,
		log:          opts.logger("member"),
	}
}

// GetMembers retrieves every member with its activity log.
func (s *MemberService) GetMembers(ctx context.Context) ([]model.Member, error) {
	return s.memberRepo.GetMembers(ctx)
}

// GetMember retrieves a member by ID.
func (s *MemberService) GetMember(ctx context.Context, id string) (model.Member, error) {
	return s.memberRepo.GetMember(ctx, id)
}

// GetMemberByPhone retrieves a member by phone number.
func (s *MemberService) GetMemberByPhone(ctx context.Context, phone string) (model.Member, error) {
	return s.memberRepo.GetMemberByPhone(ctx, strings.TrimSpace(phone))
}

// GetMemberByMembershipID retrieves a member by membership ID.
func (s *MemberService) GetMemberByMembershipID(ctx context.Context, membershipID string) (model.Member, error) {
	return s.memberRepo.GetMemberByMembershipID(ctx, strings.TrimSpace(membershipID))
}

// Register creates a member. When the new member's registration fee counts
// as income, the Company Account balance is invested afterwards; a failure
// there is reported in the result and does not undo the registration.
func (s *MemberService) Register(ctx context.Context, req request.RegisterMemberRequest) (*model.RegistrationResult, error) {
	m, err := newMember(req, s.opts.now())
	if err != nil {
		return nil, err
	}

	if err := s.memberRepo.InsertMember(ctx, &m); err != nil {
		return nil, err
	}
	s.log.Info().Str("member_id", m.ID).Str("membership_id", m.MembershipID).Msg("member registered")

	result := &model.RegistrationResult{Member: m}
	if s.company == nil || s.opts.Policy.IsCompany(m) || !m.Payment.CountsAsIncome() {
		return result, nil
	}

	booking, err := s.company.InvestCurrentBalance(ctx, TriggerRegistration)
	if err != nil {
		s.log.Warn().Err(err).Str("member_id", m.ID).Msg("auto-invest after registration failed")
		result.AutoInvestError = err.Error()
		return result, nil
	}
	result.AutoInvest = booking
	return result, nil
}

// Import stores member documents in the legacy shape. Month keys are
// normalized once here. Investments are repriced from the share price
// table where the period has a price; otherwise their stored price is kept.
// Each member's total is recomputed from its activity. The whole import is
// one transaction.
func (s *MemberService) Import(ctx context.Context, req request.ImportMembersRequest) ([]model.Member, error) {
	prices, err := s.prices.PriceTable(ctx)
	if err != nil {
		return nil, err
	}

	members := make([]model.Member, 0, len(req.Members))
	for i, doc := range req.Members {
		m, err := s.importedMember(doc, prices)
		if err != nil {
			return nil, fmt.Errorf("members[%d]: %w", i, err)
		}
		members = append(members, m)
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		memberRepo := s.memberRepo.WithTx(tx)
		activityRepo := s.activityRepo.WithTx(tx)

		for i := range members {
			m := &members[i]
			if err := memberRepo.InsertMember(ctx, m); err != nil {
				return err
			}
			for _, p := range m.Activities.Periods() {
				act, _ := m.Activities.At(p)
				if act.Investment != nil {
					if err := activityRepo.InsertInvestment(ctx, m.ID, p, act.Investment); err != nil {
						return fmt.Errorf("member %s: %w", m.MembershipID, err)
					}
				}
				if act.Withdrawal != nil {
					if err := activityRepo.InsertWithdrawal(ctx, m.ID, p, act.Withdrawal); err != nil {
						return fmt.Errorf("member %s: %w", m.MembershipID, err)
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("members", len(members)).Msg("members imported")
	return members, nil
}

func (s *MemberService) importedMember(doc request.ImportMemberRequest, prices ledger.PriceTable) (model.Member, error) {
	m, err := newMember(doc.RegisterMemberRequest, s.opts.now())
	if err != nil {
		return model.Member{}, err
	}
	if doc.ID != "" {
		m.ID = doc.ID
	}
	if doc.CreatedAt != "" {
		created, err := time.Parse(time.RFC3339, doc.CreatedAt)
		if err != nil {
			return model.Member{}, fmt.Errorf("%w: invalid createdAt %q", apperrors.ErrValidation, doc.CreatedAt)
		}
		m.CreatedAt = created.UTC()
	}

	acts, err := model.NormalizeLegacyActivities(doc.Activities)
	if err != nil {
		return model.Member{}, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	for _, p := range acts.Periods() {
		act, _ := acts.At(p)
		if inv := act.Investment; inv != nil {
			if err := ledger.CheckInvestment(inv.Amount, inv.Fine); err != nil {
				return model.Member{}, fmt.Errorf("investment %s: %w", p, err)
			}
			if price, ok := prices.Price(p); ok {
				inv.SharePrice = price
			}
			if inv.SharePrice > 0 {
				inv.Shares = ledger.SharesFor(inv.Amount, inv.SharePrice)
			}
			if inv.ID == "" {
				inv.ID = uuid.New().String()
			}
			if inv.CreatedAt.IsZero() {
				inv.CreatedAt = p.Start()
			}
		}
		if wd := act.Withdrawal; wd != nil {
			if wd.Amount <= 0 || math.IsNaN(wd.Amount) || math.IsInf(wd.Amount, 0) {
				return model.Member{}, fmt.Errorf("%w: withdrawal %s: amount must be positive", apperrors.ErrValidation, p)
			}
			if wd.SharePrice > 0 && wd.Shares == 0 {
				wd.Shares = ledger.SharesFor(wd.Amount, wd.SharePrice)
			}
			if wd.Status == "" {
				wd.Status = model.WithdrawalStatusCompleted
			}
			if wd.ID == "" {
				wd.ID = uuid.New().String()
			}
			if wd.CreatedAt.IsZero() {
				wd.CreatedAt = p.Start()
			}
		}
		acts.Set(p, act)
	}

	m.Activities = acts
	m.TotalShares = ledger.TotalShares(acts)
	if err := ledger.CheckBalance(acts); err != nil {
		s.log.Warn().
			Err(err).
			Str("membership_id", m.MembershipID).
			Msg("imported withdrawals exceed investments, total shares floored at zero")
	}
	if doc.TotalShares != nil && !nearlyEqual(*doc.TotalShares, m.TotalShares) {
		s.log.Warn().
			Str("membership_id", m.MembershipID).
			Float64("stored", *doc.TotalShares).
			Float64("recomputed", m.TotalShares).
			Msg("imported total shares differ from activity, using recomputed value")
	}
	return m, nil
}

func newMember(req request.RegisterMemberRequest, now time.Time) (model.Member, error) {
	joining, err := parseOptionalDate("joiningDate", req.JoiningDate)
	if err != nil {
		return model.Member{}, err
	}
	dateOfJoining, err := parseOptionalDate("dateOfJoining", req.DateOfJoining)
	if err != nil {
		return model.Member{}, err
	}

	name := strings.TrimSpace(req.Name)
	membershipID := strings.TrimSpace(req.MembershipID)
	if name == "" || membershipID == "" {
		return model.Member{}, fmt.Errorf("%w: name and membership ID are required", apperrors.ErrValidation)
	}

	return model.Member{
		ID:           uuid.New().String(),
		Name:         name,
		Phone:        strings.TrimSpace(req.Phone),
		MembershipID: membershipID,
		JoiningDate:  joining,
		IsDirector:   req.IsDirector,
		Payment: model.Payment{
			PayingMembershipAmount: req.PayingMembershipAmount,
			DueAmount:              req.DueAmount,
			PaymentStatus:          req.PaymentStatus,
			DateOfJoining:          dateOfJoining,
			MembershipID:           membershipID,
		},
		Activities: make(model.Activities),
		CreatedAt:  now,
	}, nil
}

func parseOptionalDate(field, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s %q", apperrors.ErrValidation, field, value)
	}
	return &t, nil
}

func nearlyEqual(a, b float64) bool {
	d := a - b
	return d < 1e-6 && d > -1e-6
}
