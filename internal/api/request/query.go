package request

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
)

// ReportQuery holds the parsed query parameters of a report request.
type ReportQuery struct {
	AsOf       period.Period
	DividendID string
	CSV        bool
}

// ParsePeriod resolves a year and month taken from a URL or query string.
// The month accepts every supported spelling.
func ParsePeriod(yearParam, monthParam string) (period.Period, error) {
	year, err := strconv.Atoi(strings.TrimSpace(yearParam))
	if err != nil || year < 1900 || year > 9999 {
		return period.Period{}, fmt.Errorf("%w: invalid year %q", apperrors.ErrValidation, yearParam)
	}
	m, err := period.ResolveMonth(monthParam)
	if err != nil {
		return period.Period{}, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return period.New(year, m), nil
}

// ParseAsOf resolves optional year and month parameters against the current
// period. A missing month means the current month for the current year and
// December for any other year; a missing year means the current year.
func ParseAsOf(yearParam, monthParam string, current period.Period) (period.Period, error) {
	yearParam = strings.TrimSpace(yearParam)
	monthParam = strings.TrimSpace(monthParam)

	switch {
	case yearParam == "" && monthParam == "":
		return current, nil
	case yearParam == "":
		return ParsePeriod(strconv.Itoa(current.Year), monthParam)
	case monthParam == "":
		p, err := ParsePeriod(yearParam, "12")
		if err != nil {
			return period.Period{}, err
		}
		if p.Year == current.Year {
			return current, nil
		}
		return p, nil
	default:
		return ParsePeriod(yearParam, monthParam)
	}
}

// ParseReportQuery extracts and validates report parameters.
//
// Validation rules:
//   - year/month: optional, see ParseAsOf
//   - dividendId: optional, passed through
//   - format: empty or "json" for JSON, "csv" for a CSV download
func ParseReportQuery(yearParam, monthParam, dividendIDParam, formatParam string, current period.Period) (*ReportQuery, error) {
	asOf, err := ParseAsOf(yearParam, monthParam, current)
	if err != nil {
		return nil, err
	}

	q := &ReportQuery{
		AsOf:       asOf,
		DividendID: strings.TrimSpace(dividendIDParam),
	}

	switch strings.ToLower(strings.TrimSpace(formatParam)) {
	case "", "json":
	case "csv":
		q.CSV = true
	default:
		return nil, fmt.Errorf("%w: invalid format %q: must be 'json' or 'csv'", apperrors.ErrValidation, formatParam)
	}

	return q, nil
}
