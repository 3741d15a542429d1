package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/database"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/model"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/repository"
)

// Booking triggers, used as log fields and metric labels.
const (
	TriggerRegistration     = "registration"
	TriggerManual           = "manual"
	TriggerSchedule         = "schedule"
	TriggerDirectInvestment = "direct_investment"
)

// CompanyService handles the Company Account: classifying its shares by
// funding source and converting collected registration fees and fines into
// shares.
type CompanyService struct {
	db           *sql.DB
	memberRepo   *repository.MemberRepository
	activityRepo *repository.ActivityRepository
	companyRepo  *repository.CompanyRepository
	dividendRepo *repository.DividendRepository
	prices       *SharePriceService
	opts         Options
	log          zerolog.Logger
}

// NewCompanyService creates a new CompanyService with the provided dependencies.
func NewCompanyService(
	db *sql.DB,
	memberRepo *repository.MemberRepository,
	activityRepo *repository.ActivityRepository,
	companyRepo *repository.CompanyRepository,
	dividendRepo *repository.DividendRepository,
	prices *SharePriceService,
	opts Options,
) *CompanyService {
	opts = opts.withDefaults()
	return &CompanyService{
		db:           db,
		memberRepo:   memberRepo,
		activityRepo: activityRepo,
		companyRepo:  companyRepo,
		dividendRepo: dividendRepo,
		prices:       prices,
		opts:         opts,
		log:          opts.logger("company"),
	}
}

// Pool classifies the Company Account's shares into membership, fine and
// dividend buckets.
func (s *CompanyService) Pool(ctx context.Context) (*model.PoolBreakdown, error) {
	txns, err := s.companyRepo.GetTransactions(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.dividendRepo.GetDividendEvents(ctx)
	if err != nil {
		return nil, err
	}
	pool := ledger.Reconcile(txns, events)
	return &pool, nil
}

// Transactions retrieves every company transaction in booking order.
func (s *CompanyService) Transactions(ctx context.Context) ([]model.CompanyTransaction, error) {
	return s.companyRepo.GetTransactions(ctx)
}

// CompanyAccount returns the member record of the Company Account.
// Returns ErrMemberNotFound when it has not been registered.
func (s *CompanyService) CompanyAccount(ctx context.Context) (model.Member, error) {
	m, err := s.memberRepo.GetMemberByMembershipID(ctx, s.opts.Policy.CompanyMembershipID)
	if errors.Is(err, apperrors.ErrMemberNotFound) {
		return model.Member{}, fmt.Errorf("%w: company account %s is not registered", apperrors.ErrMemberNotFound, s.opts.Policy.CompanyMembershipID)
	}
	return m, err
}

// InvestCurrentBalance converts the Company Account's outstanding balance
// into shares at the current month's price: the balance is added to the
// account's investment for the month and a company transaction is booked,
// in one transaction. Returns nil without error when there is nothing to
// invest. trigger names the caller for logs and metrics.
func (s *CompanyService) InvestCurrentBalance(ctx context.Context, trigger string) (booking *model.CompanyBooking, err error) {
	defer func() {
		s.opts.Metrics.CompanyBooking(trigger, err)
	}()

	p := s.opts.currentPeriod()
	company, err := s.CompanyAccount(ctx)
	if err != nil {
		return nil, err
	}
	price, err := s.prices.Price(ctx, p)
	if err != nil {
		return nil, err
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		members, err := s.memberRepo.WithTx(tx).GetMembers(ctx)
		if err != nil {
			return err
		}
		txns, err := s.companyRepo.WithTx(tx).GetTransactions(ctx)
		if err != nil {
			return err
		}

		balance := ledger.Outstanding(members, txns, s.opts.Policy)
		if balance.IsZero() {
			return nil
		}

		writer := newActivityWriter(tx, s.activityRepo, s.memberRepo)
		inv, _, err := writer.recordInvestment(ctx, company.ID, p, price,
			investment{Amount: balance.Total()}, true, s.opts.now())
		if err != nil {
			return err
		}

		booking, err = s.book(ctx, tx, company, p, price, balance, inv)
		return err
	})
	if err != nil {
		return nil, err
	}

	if booking == nil {
		s.log.Debug().Str("trigger", trigger).Msg("no outstanding company balance")
		return nil, nil
	}
	s.log.Info().
		Str("trigger", trigger).
		Str("source", booking.Transaction.Source).
		Float64("registration", booking.Registration).
		Float64("fine", booking.Fine).
		Float64("shares", booking.Transaction.Shares).
		Msg("company balance invested")
	return booking, nil
}

// BookDirectInvestment records the company transaction for an investment
// made directly on the Company Account. The invested amount is attributed
// to the outstanding balance, registration fees first.
func (s *CompanyService) BookDirectInvestment(
	ctx context.Context,
	company model.Member,
	p period.Period,
	amount, price float64,
	inv model.InvestmentEvent,
) (booking *model.CompanyBooking, err error) {
	defer func() {
		s.opts.Metrics.CompanyBooking(TriggerDirectInvestment, err)
	}()

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		members, err := s.memberRepo.WithTx(tx).GetMembers(ctx)
		if err != nil {
			return err
		}
		txns, err := s.companyRepo.WithTx(tx).GetTransactions(ctx)
		if err != nil {
			return err
		}

		split := ledger.Allocate(amount, ledger.Outstanding(members, txns, s.opts.Policy))
		booking, err = s.book(ctx, tx, company, p, price, split, inv)
		return err
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *CompanyService) book(
	ctx context.Context,
	tx *sql.Tx,
	company model.Member,
	p period.Period,
	price float64,
	split ledger.Balance,
	inv model.InvestmentEvent,
) (*model.CompanyBooking, error) {
	amount := split.Total()
	ct := model.CompanyTransaction{
		ID:          uuid.New().String(),
		MemberID:    company.ID,
		Source:      split.Source(),
		Description: ledger.Describe(split.Registration, split.Fine),
		Amount:      amount,
		Fine:        split.Fine,
		SharePrice:  price,
		Shares:      ledger.SharesFor(amount, price),
		Year:        p.Year,
		Month:       p.Key(),
		CreatedAt:   s.opts.now(),
	}
	if err := s.companyRepo.WithTx(tx).InsertTransaction(ctx, &ct); err != nil {
		return nil, err
	}
	return &model.CompanyBooking{
		Transaction:  ct,
		Investment:   inv,
		Registration: split.Registration,
		Fine:         split.Fine,
	}, nil
}
