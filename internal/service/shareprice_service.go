package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/cache"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/database"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/model"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/repository"
)

// SharePriceService manages the share price table. Single-period lookups go
// through the price cache; updates reprice every event recorded in the
// period.
type SharePriceService struct {
	db           *sql.DB
	priceRepo    *repository.SharePriceRepository
	activityRepo *repository.ActivityRepository
	memberRepo   *repository.MemberRepository
	companyRepo  *repository.CompanyRepository
	dividendRepo *repository.DividendRepository
	cache        cache.PriceCache
	opts         Options
	log          zerolog.Logger
}

// NewSharePriceService creates a new SharePriceService. A nil cache disables caching.
func NewSharePriceService(
	db *sql.DB,
	priceRepo *repository.SharePriceRepository,
	activityRepo *repository.ActivityRepository,
	memberRepo *repository.MemberRepository,
	companyRepo *repository.CompanyRepository,
	dividendRepo *repository.DividendRepository,
	priceCache cache.PriceCache,
	opts Options,
) *SharePriceService {
	if priceCache == nil {
		priceCache = cache.Noop{}
	}
	opts = opts.withDefaults()
	return &SharePriceService{
		db:           db,
		priceRepo:    priceRepo,
		activityRepo: activityRepo,
		memberRepo:   memberRepo,
		companyRepo:  companyRepo,
		dividendRepo: dividendRepo,
		cache:        priceCache,
		opts:         opts,
		log:          opts.logger("share_price"),
	}
}

// GetSharePrices retrieves every configured share price, oldest first.
func (s *SharePriceService) GetSharePrices(ctx context.Context) ([]model.SharePrice, error) {
	return s.priceRepo.GetSharePrices(ctx)
}

// GetSharePrice retrieves the stored price record of one period.
func (s *SharePriceService) GetSharePrice(ctx context.Context, p period.Period) (model.SharePrice, error) {
	return s.priceRepo.GetSharePrice(ctx, p)
}

// PriceTable loads the full share price table.
func (s *SharePriceService) PriceTable(ctx context.Context) (ledger.PriceTable, error) {
	prices, err := s.priceRepo.GetSharePrices(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.NewPriceTable(prices), nil
}

// Price returns the share price of p, reading through the cache.
// Returns ErrPriceNotSet when no price is configured. Cache failures are
// logged and fall back to the database.
func (s *SharePriceService) Price(ctx context.Context, p period.Period) (float64, error) {
	price, ok, err := s.cache.Get(ctx, p)
	if err != nil {
		s.log.Warn().Err(err).Str("period", p.String()).Msg("share price cache read failed")
	}
	if ok && price > 0 {
		s.opts.Metrics.PriceCache(true)
		return price, nil
	}
	s.opts.Metrics.PriceCache(false)

	sp, err := s.priceRepo.GetSharePrice(ctx, p)
	if errors.Is(err, apperrors.ErrSharePriceNotFound) {
		return 0, fmt.Errorf("%w: %s", apperrors.ErrPriceNotSet, p)
	}
	if err != nil {
		return 0, err
	}
	if sp.Price <= 0 {
		return 0, fmt.Errorf("%w: %s", apperrors.ErrPriceNotSet, p)
	}

	if err := s.cache.Set(ctx, p, sp.Price); err != nil {
		s.log.Warn().Err(err).Str("period", p.String()).Msg("share price cache write failed")
	}
	return sp.Price, nil
}

// SetSharePrice inserts or replaces the price of a period. Investments and
// company transactions of that period are repriced, the totals of affected
// members recomputed and confirmed dividend reinvestments of the period
// revalued, all in one transaction. Withdrawals keep their recorded price;
// a price that would leave any member with more shares withdrawn than
// invested fails with ErrInsufficientShares and changes nothing.
func (s *SharePriceService) SetSharePrice(ctx context.Context, req request.SetSharePriceRequest) (*model.SharePriceUpdate, error) {
	m, err := period.ResolveMonth(req.Month)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	p := period.New(req.Year, m)
	if !p.Valid() {
		return nil, fmt.Errorf("%w: invalid period %d-%s", apperrors.ErrValidation, req.Year, req.Month)
	}
	if req.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", apperrors.ErrValidation)
	}

	update := &model.SharePriceUpdate{
		SharePrice: model.SharePrice{
			ID:        uuid.New().String(),
			Year:      p.Year,
			Month:     p.Key(),
			Price:     req.Price,
			UpdatedAt: s.opts.now(),
		},
	}

	var revaluedDividends int64
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.priceRepo.WithTx(tx).UpsertSharePrice(ctx, &update.SharePrice); err != nil {
			return err
		}

		memberIDs, err := s.activityRepo.WithTx(tx).RevalueInvestments(ctx, p, req.Price)
		if err != nil {
			return err
		}
		update.RevaluedInvestments = int64(len(memberIDs))

		for _, id := range memberIDs {
			acts, err := s.activityRepo.WithTx(tx).GetActivities(ctx, id)
			if err != nil {
				return err
			}
			if err := ledger.CheckBalance(acts); err != nil {
				return fmt.Errorf("repricing %s at %.4f overdraws member %s: %w", p, req.Price, id, err)
			}
			if err := s.memberRepo.WithTx(tx).UpdateTotalShares(ctx, id, ledger.TotalShares(acts)); err != nil {
				return fmt.Errorf("failed to update member %s: %w", id, err)
			}
		}

		if update.RevaluedCompanyTxns, err = s.companyRepo.WithTx(tx).RevalueTransactions(ctx, p, req.Price); err != nil {
			return err
		}
		revaluedDividends, err = s.dividendRepo.WithTx(tx).RevalueConfirmed(ctx, p, req.Price)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, p); err != nil {
		s.log.Warn().Err(err).Str("period", p.String()).Msg("share price cache invalidation failed")
	}

	s.log.Info().
		Str("period", p.String()).
		Float64("price", req.Price).
		Int64("investments", update.RevaluedInvestments).
		Int64("company_transactions", update.RevaluedCompanyTxns).
		Int64("dividends", revaluedDividends).
		Msg("share price set")

	return update, nil
}
