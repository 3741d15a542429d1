package report

import (
	"sort"
	"time"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/model"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
)

const (
	colDate       = "Date"
	colPeriod     = "Period"
	colType       = "Type"
	colAmount     = "Amount"
	colFine       = "Fine"
	colReceipt    = "Receipt"
	colSequence   = "Sequence"
	colWithdrawal = "Withdrawal"
)

type exportEntry struct {
	date    time.Time
	period  period.Period
	member  model.Member
	kind    string
	amount  float64
	fine    float64
	price   float64
	shares  float64
	receipt string
}

// buildSystemExport lists every investment and withdrawal in date order,
// ties broken by member name. The month-scoped receipt sequence numbers
// investments only and is assigned after sorting; withdrawal rows leave it
// blank. Withdrawal shares are negative so the summary is the net change.
func buildSystemExport(ds Dataset) (*Report, error) {
	var entries []exportEntry
	for _, m := range ds.Members {
		for _, p := range m.Activities.Periods() {
			act, _ := m.Activities.At(p)
			if inv := act.Investment; inv != nil {
				entries = append(entries, exportEntry{
					date:    eventDate(inv.CreatedAt, p),
					period:  p,
					member:  m,
					kind:    model.ActivityInvestment,
					amount:  inv.Amount,
					fine:    inv.Fine,
					price:   inv.SharePrice,
					shares:  inv.Shares,
					receipt: inv.SystemReceipt,
				})
			}
			if wd := act.Withdrawal; wd != nil {
				entries = append(entries, exportEntry{
					date:   eventDate(wd.CreatedAt, p),
					period: p,
					member: m,
					kind:   model.ActivityWithdrawal,
					amount: wd.Amount,
					price:  wd.SharePrice,
					shares: -wd.Shares,
				})
			}
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].date.Equal(entries[j].date) {
			return entries[i].date.Before(entries[j].date)
		}
		return entries[i].member.Name < entries[j].member.Name
	})

	r := newReport("Complete System Export",
		colSL, colDate, colPeriod, colName, colMembershipID, colType,
		colAmount, colFine, colSharePrice, colShares, colReceipt, colSequence)

	seq := make(map[period.Period]int)
	var totalAmount, totalFine, totalShares float64
	for i, e := range entries {
		var sequence any = ""
		if e.kind == model.ActivityInvestment {
			seq[e.period]++
			sequence = seq[e.period]
			totalAmount += e.amount
		} else {
			totalAmount -= e.amount
		}
		totalFine += e.fine
		totalShares += e.shares

		amount := e.amount
		if e.kind == model.ActivityWithdrawal {
			amount = -amount
		}
		r.data(map[string]any{
			colSL:           i + 1,
			colDate:         e.date.Format("2006-01-02"),
			colPeriod:       e.period.String(),
			colName:         e.member.Name,
			colMembershipID: e.member.MembershipID,
			colType:         e.kind,
			colAmount:       money(amount),
			colFine:         money(e.fine),
			colSharePrice:   money(e.price),
			colShares:       shares(e.shares),
			colReceipt:      e.receipt,
			colSequence:     sequence,
		})
	}

	r.summary(map[string]any{
		colName:   "TOTAL EXPORT SUMMARY",
		colAmount: money(totalAmount),
		colFine:   money(totalFine),
		colShares: shares(totalShares),
	})
	return r, nil
}

func eventDate(created time.Time, p period.Period) time.Time {
	if created.IsZero() {
		return p.Start()
	}
	return created
}
