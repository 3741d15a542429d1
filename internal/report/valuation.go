package report

import (
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/model"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
)

const (
	colInvestment = "Investment"
	colSharePrice = "Share Price"
	colValue      = "Value"
)

func buildCompanyValuation(ds Dataset) (*Report, error) {
	return buildValuation(ds, "Company Valuation Report", func(model.Member) bool { return true })
}

func buildDirectorsValuation(ds Dataset) (*Report, error) {
	return buildValuation(ds, "Directors' Valuation Report", func(m model.Member) bool { return m.IsDirector })
}

// buildValuation values Part A (members, filtered by include) and Part B
// (the Company Account's own capital by funding bucket) at the as-of price.
// Member shares are replayed period by period at each period's own price.
func buildValuation(ds Dataset, title string, include func(model.Member) bool) (*Report, error) {
	price, err := requirePrice(ds.Prices, ds.AsOf)
	if err != nil {
		return nil, err
	}

	r := newReport(title, colSL, colName, colMembershipID, colInvestment, colShares, colSharePrice, colValue)

	var a struct{ amount, shares, value float64 }
	r.section(colName, "PART A: MEMBERS")
	sl := 0
	for _, m := range ds.Members {
		if ds.Policy.IsCompany(m) || !include(m) {
			continue
		}
		pos := ledger.CumulativeAsOf(m, ds.Prices, ds.AsOf, ds.Policy)
		r.warnMissing(m, pos.MissingPrices)

		value := pos.TotalShares * price
		a.amount += pos.TotalAmount
		a.shares += pos.TotalShares
		a.value += value

		sl++
		r.data(map[string]any{
			colSL:           sl,
			colName:         m.Name,
			colMembershipID: m.MembershipID,
			colInvestment:   money(pos.TotalAmount),
			colShares:       shares(pos.TotalShares),
			colSharePrice:   money(price),
			colValue:        money(value),
		})
	}
	r.summary(map[string]any{
		colName:       "TOTAL PART A SUMMARY",
		colInvestment: money(a.amount),
		colShares:     shares(a.shares),
		colValue:      money(a.value),
	})

	pool := ledger.Reconcile(transactionsUpTo(ds.Transactions, ds.AsOf), dividendsUpTo(ds.Dividends, ds.AsOf))
	buckets := []struct {
		label          string
		amount, shares float64
	}{
		{"Membership Fees", pool.MembershipAmount, pool.MembershipShares},
		{"Fines", pool.FineAmount, pool.FineShares},
		{"Dividend Reinvestment", pool.DividendAmount, pool.DividendShares},
	}

	var b struct{ amount, shares, value float64 }
	r.section(colName, "PART B: COMPANY ACCOUNT")
	for i, bucket := range buckets {
		value := bucket.shares * price
		b.amount += bucket.amount
		b.shares += bucket.shares
		b.value += value
		r.data(map[string]any{
			colSL:         i + 1,
			colName:       bucket.label,
			colInvestment: money(bucket.amount),
			colShares:     shares(bucket.shares),
			colSharePrice: money(price),
			colValue:      money(value),
		})
	}
	r.summary(map[string]any{
		colName:       "TOTAL PART B SUMMARY",
		colInvestment: money(b.amount),
		colShares:     shares(b.shares),
		colValue:      money(b.value),
	})

	r.grandTotal(map[string]any{
		colName:       "GRAND TOTAL A+B",
		colInvestment: money(a.amount + b.amount),
		colShares:     shares(a.shares + b.shares),
		colValue:      money(a.value + b.value),
	})
	return r, nil
}

// transactionsUpTo keeps company transactions booked in or before asOf.
// Transactions whose month cannot be resolved are kept.
func transactionsUpTo(txns []model.CompanyTransaction, asOf period.Period) []model.CompanyTransaction {
	out := make([]model.CompanyTransaction, 0, len(txns))
	for _, tx := range txns {
		if p, ok := transactionPeriod(tx); ok && asOf.Before(p) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func transactionPeriod(tx model.CompanyTransaction) (period.Period, bool) {
	m, err := period.ResolveMonth(tx.Month)
	if err != nil {
		return period.Period{}, false
	}
	return period.New(tx.Year, m), true
}

// dividendsUpTo keeps dividend events dated in or before asOf.
func dividendsUpTo(events []model.DividendEvent, asOf period.Period) []model.DividendEvent {
	out := make([]model.DividendEvent, 0, len(events))
	for _, ev := range events {
		if asOf.Before(period.FromTime(ev.EventDate)) {
			continue
		}
		out = append(out, ev)
	}
	return out
}
