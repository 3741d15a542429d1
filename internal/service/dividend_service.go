package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/database"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/model"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/repository"
)

// DividendService handles the dividend event lifecycle: declare, preview
// and confirm.
type DividendService struct {
	db           *sql.DB
	dividendRepo *repository.DividendRepository
	companyRepo  *repository.CompanyRepository
	activityRepo *repository.ActivityRepository
	memberRepo   *repository.MemberRepository
	loader       *DataLoaderService
	opts         Options
	log          zerolog.Logger
}

// NewDividendService creates a new DividendService with the provided dependencies.
func NewDividendService(
	db *sql.DB,
	dividendRepo *repository.DividendRepository,
	companyRepo *repository.CompanyRepository,
	activityRepo *repository.ActivityRepository,
	memberRepo *repository.MemberRepository,
	loader *DataLoaderService,
	opts Options,
) *DividendService {
	opts = opts.withDefaults()
	return &DividendService{
		db:           db,
		dividendRepo: dividendRepo,
		companyRepo:  companyRepo,
		activityRepo: activityRepo,
		memberRepo:   memberRepo,
		loader:       loader,
		opts:         opts,
		log:          opts.logger("dividend"),
	}
}

// GetDividendEvents retrieves every dividend event, most recent first.
func (s *DividendService) GetDividendEvents(ctx context.Context) ([]model.DividendEvent, error) {
	return s.dividendRepo.GetDividendEvents(ctx)
}

// GetDividendEvent retrieves one dividend event.
func (s *DividendService) GetDividendEvent(ctx context.Context, id string) (model.DividendEvent, error) {
	return s.dividendRepo.GetDividendEvent(ctx, id)
}

// Declare records a pending dividend event. The eligibility rule is parsed
// from the event name once and stored with the event.
func (s *DividendService) Declare(ctx context.Context, req request.DeclareDividendRequest) (*model.DividendEvent, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}
	if req.ProfitAmount <= 0 {
		return nil, fmt.Errorf("%w: profit amount must be positive", apperrors.ErrValidation)
	}
	eventDate, err := time.Parse(dateLayout, strings.TrimSpace(req.EventDate))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid eventDate %q", apperrors.ErrValidation, req.EventDate)
	}

	ev := &model.DividendEvent{
		ID:           uuid.New().String(),
		Name:         name,
		Rule:         string(ledger.ParseRule(name)),
		EventDate:    eventDate,
		Status:       model.DividendStatusPending,
		ProfitAmount: req.ProfitAmount,
		CreatedAt:    s.opts.now(),
	}
	if err := s.dividendRepo.InsertDividendEvent(ctx, ev); err != nil {
		return nil, err
	}

	logEvent := s.log.Info()
	if ledger.Rule(ev.Rule) == ledger.RuleUnrecognized {
		logEvent = s.log.Warn()
	}
	logEvent.Str("dividend_id", ev.ID).Str("rule", ev.Rule).Float64("profit", ev.ProfitAmount).Msg("dividend declared")
	return ev, nil
}

// Preview computes the distribution of an event without storing anything.
func (s *DividendService) Preview(ctx context.Context, id string) (*model.Distribution, error) {
	ev, err := s.dividendRepo.GetDividendEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	dist := s.distribute(ev, data)
	return &dist, nil
}

func (s *DividendService) distribute(ev model.DividendEvent, data *LedgerData) model.Distribution {
	return ledger.Distribute(
		data.Members,
		ev.ProfitAmount,
		ledger.RuleFromTag(ev.Rule),
		ev.EventDate,
		data.Prices,
		period.FromTime(ev.EventDate),
		s.opts.Policy,
	)
}

// Confirm finalizes a pending event. The distribution is computed as of the
// event month; the Company Account's payout is reinvested at that month's
// share price: it tops up the account's investment for the month and is
// booked as a dividend company transaction.
// Returns ErrDividendNotPending if the event was already confirmed.
func (s *DividendService) Confirm(ctx context.Context, id string) (*model.DividendEvent, error) {
	ev, err := s.dividendRepo.GetDividendEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if ev.IsConfirmed() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDividendNotPending, ev.ID)
	}

	data, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	dist := s.distribute(ev, data)

	var company *model.Member
	for i := range data.Members {
		if s.opts.Policy.IsCompany(data.Members[i]) {
			company = &data.Members[i]
			break
		}
	}

	var payout float64
	if company != nil {
		for _, row := range dist.PerMember {
			if row.MemberID == company.ID && row.Eligible {
				payout = row.Payout
			}
		}
	}

	p := period.FromTime(ev.EventDate)
	var price float64
	if payout > 0 {
		var ok bool
		if price, ok = data.Prices.Price(p); !ok {
			return nil, fmt.Errorf("%w: %s, needed to reinvest the company dividend", apperrors.ErrPriceNotSet, p)
		}
	}

	now := s.opts.now()
	ev.DistributedAmount = dist.TotalEligibleDividend
	ev.CompanyInvestmentAmount = payout
	ev.CompanySharesPurchased = ledger.SharesFor(payout, price)
	ev.ConfirmedAt = &now

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.dividendRepo.WithTx(tx).ConfirmDividendEvent(ctx, &ev); err != nil {
			return err
		}
		if payout <= 0 {
			return nil
		}
		ct := model.CompanyTransaction{
			ID:          uuid.New().String(),
			MemberID:    company.ID,
			Source:      model.CompanySourceDividend,
			Description: fmt.Sprintf("dividend=%.2f;event=%s", payout, ev.ID),
			Amount:      payout,
			SharePrice:  price,
			Shares:      ev.CompanySharesPurchased,
			Year:        p.Year,
			Month:       p.Key(),
			CreatedAt:   now,
		}
		if err := s.companyRepo.WithTx(tx).InsertTransaction(ctx, &ct); err != nil {
			return err
		}
		writer := newActivityWriter(tx, s.activityRepo, s.memberRepo)
		_, _, err := writer.recordInvestment(ctx, company.ID, p, price, investment{Amount: payout}, true, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	ev.Status = model.DividendStatusConfirmed

	s.log.Info().
		Str("dividend_id", ev.ID).
		Float64("distributed", ev.DistributedAmount).
		Float64("company_investment", ev.CompanyInvestmentAmount).
		Float64("company_shares", ev.CompanySharesPurchased).
		Msg("dividend confirmed")
	return &ev, nil
}
