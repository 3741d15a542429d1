package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/database"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/model"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/repository"
)

// LedgerService records member investments and withdrawals and answers
// cumulative valuation queries.
type LedgerService struct {
	db           *sql.DB
	memberRepo   *repository.MemberRepository
	activityRepo *repository.ActivityRepository
	prices       *SharePriceService
	company      *CompanyService
	opts         Options
	log          zerolog.Logger
}

// NewLedgerService creates a new LedgerService with the provided dependencies.
func NewLedgerService(
	db *sql.DB,
	memberRepo *repository.MemberRepository,
	activityRepo *repository.ActivityRepository,
	prices *SharePriceService,
	company *CompanyService,
	opts Options,
) *LedgerService {
	opts = opts.withDefaults()
	return &LedgerService{
		db:           db,
		memberRepo:   memberRepo,
		activityRepo: activityRepo,
		prices:       prices,
		company:      company,
		opts:         opts,
		log:          opts.logger("ledger"),
	}
}

// CurrentPeriod returns the only period activity can be recorded for.
func (s *LedgerService) CurrentPeriod() period.Period {
	return s.opts.currentPeriod()
}

// openPeriod resolves the requested period and rejects anything but the
// current month.
func (s *LedgerService) openPeriod(year int, month string) (period.Period, error) {
	m, err := period.ResolveMonth(month)
	if err != nil {
		return period.Period{}, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	p := period.New(year, m)
	if current := s.opts.currentPeriod(); p != current {
		return period.Period{}, fmt.Errorf("%w: requested %s, current period is %s", apperrors.ErrPeriodLocked, p, current)
	}
	return p, nil
}

// RecordInvestment records a member's investment for the current month.
//
// Preconditions are checked in order: positive amount and non-negative fine,
// current period, member exists, price configured, no investment yet for the
// period. The receipt number, insert and share total update share one
// transaction.
//
// The Company Account never pays fines. Like every member it invests at most
// once a month through this path; balance sweeps and dividend reinvestment
// top up its investment instead. Each company investment is followed by a
// company transaction booking. A booking failure is reported
// in the result and does not fail the investment.
func (s *LedgerService) RecordInvestment(ctx context.Context, memberID string, req request.RecordInvestmentRequest) (result *model.InvestmentResult, err error) {
	defer func() {
		s.opts.Metrics.Activity(model.ActivityInvestment, err)
	}()

	if err := ledger.CheckInvestment(req.Amount, req.Fine); err != nil {
		return nil, err
	}
	p, err := s.openPeriod(req.Year, req.Month)
	if err != nil {
		return nil, err
	}
	member, err := s.memberRepo.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	price, err := s.prices.Price(ctx, p)
	if err != nil {
		return nil, err
	}

	isCompany := s.opts.Policy.IsCompany(member)
	in := investment{
		Amount:        req.Amount,
		Fine:          req.Fine,
		ManualReceipt: req.ManualReceipt,
		CustomReceipt: req.CustomReceipt,
	}
	if isCompany {
		in.Fine = 0
	}

	result = &model.InvestmentResult{}
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		writer := newActivityWriter(tx, s.activityRepo, s.memberRepo)
		inv, total, err := writer.recordInvestment(ctx, member.ID, p, price, in, false, s.opts.now())
		if err != nil {
			return err
		}
		result.Investment = inv
		result.TotalShares = total
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("member_id", member.ID).
		Str("period", p.String()).
		Float64("amount", in.Amount).
		Float64("fine", in.Fine).
		Str("receipt", result.Investment.SystemReceipt).
		Msg("investment recorded")

	if isCompany && s.company != nil {
		booking, bookErr := s.company.BookDirectInvestment(ctx, member, p, in.Amount, price, result.Investment)
		if bookErr != nil {
			s.log.Warn().Err(bookErr).Str("member_id", member.ID).Msg("company transaction booking failed")
			result.CompanyBookingError = bookErr.Error()
		} else {
			result.CompanyBooking = booking
		}
	}

	return result, nil
}

// RecordWithdrawal records a member's withdrawal for the current month.
//
// Preconditions are checked in order: positive share price, positive amount,
// current period, member exists, price configured for the period, enough
// shares. The balance check and insert share one transaction.
func (s *LedgerService) RecordWithdrawal(ctx context.Context, memberID string, req request.RecordWithdrawalRequest) (result *model.WithdrawalResult, err error) {
	defer func() {
		s.opts.Metrics.Activity(model.ActivityWithdrawal, err)
	}()

	if err := ledger.CheckWithdrawalInput(req.Amount, req.SharePrice); err != nil {
		return nil, err
	}
	p, err := s.openPeriod(req.Year, req.Month)
	if err != nil {
		return nil, err
	}
	member, err := s.memberRepo.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if _, err := s.prices.Price(ctx, p); err != nil {
		return nil, err
	}

	result = &model.WithdrawalResult{}
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		writer := newActivityWriter(tx, s.activityRepo, s.memberRepo)
		wd, total, err := writer.recordWithdrawal(ctx, member.ID, p, req.Amount, req.SharePrice, s.opts.now())
		if err != nil {
			return err
		}
		result.Withdrawal = wd
		result.TotalShares = total
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("member_id", member.ID).
		Str("period", p.String()).
		Float64("amount", req.Amount).
		Float64("shares", result.Withdrawal.Shares).
		Msg("withdrawal recorded")
	return result, nil
}

// Cumulative values a member's investments up to and including asOf at each
// period's own share price. Returns ErrPriceNotSet when asOf itself has no
// price; earlier periods without a price are skipped and listed.
func (s *LedgerService) Cumulative(ctx context.Context, memberID string, asOf period.Period) (*model.Cumulative, error) {
	member, err := s.memberRepo.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	prices, err := s.prices.PriceTable(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := prices.Price(asOf); !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrPriceNotSet, asOf)
	}

	pos := ledger.CumulativeAsOf(member, prices, asOf, s.opts.Policy)

	out := &model.Cumulative{
		Year:        asOf.Year,
		Month:       asOf.Key(),
		TotalAmount: ledger.RoundMoney(pos.TotalAmount),
		TotalShares: pos.TotalShares,
	}
	for _, p := range pos.MissingPrices {
		out.MissingPrices = append(out.MissingPrices, p.String())
		s.log.Warn().
			Str("member_id", member.ID).
			Str("period", p.String()).
			Msg("no share price for period, investment excluded from cumulative total")
	}
	return out, nil
}
