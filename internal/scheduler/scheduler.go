// Package scheduler runs the optional background jobs configured by cron
// expressions.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/model"
)

// BalanceInvestor invests the Company Account's outstanding balance.
type BalanceInvestor interface {
	InvestCurrentBalance(ctx context.Context, trigger string) (*model.CompanyBooking, error)
}

// Scheduler wraps a cron runner. A Scheduler without jobs does nothing.
type Scheduler struct {
	cron    *cron.Cron
	log     zerolog.Logger
	timeout time.Duration
	jobs    int
}

// New creates a Scheduler evaluating expressions in UTC.
func New(logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		log:     logger.With().Str("component", "scheduler").Logger(),
		timeout: time.Minute,
	}
}

// AddBalanceSweep schedules InvestCurrentBalance on spec, a standard
// five-field cron expression. An empty spec schedules nothing.
func (s *Scheduler) AddBalanceSweep(spec string, investor BalanceInvestor, trigger string) error {
	if spec == "" {
		return nil
	}
	_, err := s.cron.AddFunc(spec, func() {
		s.runBalanceSweep(investor, trigger)
	})
	if err != nil {
		return fmt.Errorf("invalid balance sweep schedule %q: %w", spec, err)
	}
	s.jobs++
	s.log.Info().Str("spec", spec).Msg("balance sweep scheduled")
	return nil
}

func (s *Scheduler) runBalanceSweep(investor BalanceInvestor, trigger string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	booking, err := investor.InvestCurrentBalance(ctx, trigger)
	switch {
	case err != nil:
		s.log.Error().Err(err).Msg("balance sweep failed")
	case booking == nil:
		s.log.Debug().Msg("balance sweep found nothing to invest")
	default:
		s.log.Info().
			Str("transaction_id", booking.Transaction.ID).
			Float64("amount", booking.Transaction.Amount).
			Msg("balance sweep invested company balance")
	}
}

// Jobs returns the number of scheduled jobs.
func (s *Scheduler) Jobs() int {
	return s.jobs
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	if s.jobs == 0 {
		return
	}
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		s.log.Warn().Msg("scheduler stopped before running jobs finished")
	}
}
