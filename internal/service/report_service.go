package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/model"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/report"
)

// ReportService loads ledger data and hands it to the report builders.
type ReportService struct {
	loader *DataLoaderService
	opts   Options
	log    zerolog.Logger
}

// NewReportService creates a new ReportService.
func NewReportService(loader *DataLoaderService, opts Options) *ReportService {
	opts = opts.withDefaults()
	return &ReportService{
		loader: loader,
		opts:   opts,
		log:    opts.logger("report"),
	}
}

// Build produces the named report as of q.AsOf. The dividend report uses
// q.DividendID, or the most recent event when it is empty.
func (s *ReportService) Build(ctx context.Context, reportType string, q request.ReportQuery) (r *report.Report, err error) {
	t, err := report.ParseType(reportType)
	if err != nil {
		return nil, err
	}
	defer func() {
		s.opts.Metrics.Report(string(t), err)
	}()

	data, err := s.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToBuildReport, err)
	}

	ds := report.Dataset{
		Members:      data.Members,
		Prices:       data.Prices,
		Transactions: data.Transactions,
		Dividends:    data.Dividends,
		AsOf:         q.AsOf,
		Policy:       s.opts.Policy,
	}
	if !ds.AsOf.Valid() {
		ds.AsOf = s.opts.currentPeriod()
	}

	if t == report.TypeDividend {
		ev, err := pickDividend(data.Dividends, q.DividendID)
		if err != nil {
			return nil, err
		}
		ds.Dividend = ev
	}

	r, err = report.Build(t, ds)
	if err != nil {
		return nil, err
	}
	for _, w := range r.Warnings {
		s.log.Warn().Str("report", string(t)).Msg(w)
	}
	return r, nil
}

// CurrentPeriod returns the month reports default to.
func (s *ReportService) CurrentPeriod() period.Period {
	return s.opts.currentPeriod()
}

func pickDividend(events []model.DividendEvent, id string) (*model.DividendEvent, error) {
	if id == "" {
		if len(events) == 0 {
			return nil, fmt.Errorf("%w: no dividend events declared", apperrors.ErrDividendNotFound)
		}
		ev := events[0]
		return &ev, nil
	}
	for i := range events {
		if events[i].ID == id {
			ev := events[i]
			return &ev, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", apperrors.ErrDividendNotFound, id)
}
