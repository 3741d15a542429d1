package report

import (
	"fmt"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
)

const (
	colSL           = "SL"
	colName         = "Name"
	colMembershipID = "Membership ID"
	colJoiningDate  = "Joining Date"
	colShares       = "Shares"
	colStatus       = "Status"
	colDividend     = "Dividend"
)

// buildDividend lists each member's share of a dividend event. The summary
// only counts eligible members.
func buildDividend(ds Dataset) (*Report, error) {
	ev := ds.Dividend
	if ev == nil {
		return nil, fmt.Errorf("%w: dividend report requires a dividend event", apperrors.ErrValidation)
	}

	asOf := period.FromTime(ev.EventDate)
	rule := ledger.RuleFromTag(ev.Rule)
	dist := ledger.Distribute(ds.Members, ev.ProfitAmount, rule, ev.EventDate, ds.Prices, asOf, ds.Policy)

	r := newReport(fmt.Sprintf("Dividend Report: %s", ev.Name),
		colSL, colName, colMembershipID, colJoiningDate, colShares, colStatus, colDividend)
	r.Period = asOf.String()

	for _, m := range ds.Members {
		r.warnMissing(m, ledger.CumulativeAsOf(m, ds.Prices, asOf, ds.Policy).MissingPrices)
	}

	var totalShares, totalPayout float64
	for i, row := range dist.PerMember {
		status := "Eligible"
		if !row.Eligible {
			status = "Not eligible"
		} else {
			totalShares += row.Shares
			totalPayout += row.Payout
		}
		r.data(map[string]any{
			colSL:           i + 1,
			colName:         row.Name,
			colMembershipID: row.MembershipID,
			colJoiningDate:  formatDate(ds.Members[i]),
			colShares:       shares(row.Shares),
			colStatus:       status,
			colDividend:     money(row.Payout),
		})
	}

	r.summary(map[string]any{
		colName:     "TOTAL DIVIDEND SUMMARY",
		colShares:   shares(totalShares),
		colDividend: money(totalPayout),
	})
	return r, nil
}
