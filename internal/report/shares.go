package report

import (
	"fmt"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
)

const (
	colPercentage = "Percentage"
	colMonth      = "Month"
	colInvestors  = "Investors"
)

// buildShareDistribution shows each member's cumulative shares as of the
// period and their percentage of all shares.
func buildShareDistribution(ds Dataset) (*Report, error) {
	r := newReport("Share Distribution Report", colSL, colName, colMembershipID, colShares, colPercentage)

	held := make([]float64, len(ds.Members))
	var total float64
	for i, m := range ds.Members {
		pos := ledger.CumulativeAsOf(m, ds.Prices, ds.AsOf, ds.Policy)
		r.warnMissing(m, pos.MissingPrices)
		held[i] = pos.TotalShares
		total += pos.TotalShares
	}

	var totalPct float64
	for i, m := range ds.Members {
		var pct float64
		if total > 0 {
			pct = held[i] / total * 100
		}
		totalPct += pct
		r.data(map[string]any{
			colSL:           i + 1,
			colName:         m.Name,
			colMembershipID: m.MembershipID,
			colShares:       shares(held[i]),
			colPercentage:   money(pct),
		})
	}

	r.summary(map[string]any{
		colName:       "TOTAL SHARE SUMMARY",
		colShares:     shares(total),
		colPercentage: money(totalPct),
	})
	return r, nil
}

// buildNewShares lists the investments made in the as-of month. Shares are
// valued at the month's table price; without one the stored share count is
// reported and flagged.
func buildNewShares(ds Dataset) (*Report, error) {
	r := newReport(fmt.Sprintf("New Shares Report: %s", ds.AsOf),
		colSL, colName, colMembershipID, colAmount, colSharePrice, colShares, colReceipt)

	price, havePrice := ds.Prices.Price(ds.AsOf)
	if !havePrice {
		r.warnf("no share price for %s, stored share counts reported", ds.AsOf)
	}

	var totalAmount, totalShares float64
	sl := 0
	for _, m := range ds.Members {
		inv := ledger.InvestmentIn(m, ds.AsOf)
		if inv == nil {
			continue
		}
		lineShares, linePrice := inv.Shares, inv.SharePrice
		if havePrice {
			lineShares, linePrice = ledger.SharesFor(inv.Amount, price), price
		}
		totalAmount += inv.Amount
		totalShares += lineShares

		sl++
		r.data(map[string]any{
			colSL:           sl,
			colName:         m.Name,
			colMembershipID: m.MembershipID,
			colAmount:       money(inv.Amount),
			colSharePrice:   money(linePrice),
			colShares:       shares(lineShares),
			colReceipt:      inv.SystemReceipt,
		})
	}

	r.summary(map[string]any{
		colName:   "TOTAL NEW SHARES SUMMARY",
		colAmount: money(totalAmount),
		colShares: shares(totalShares),
	})
	return r, nil
}

// buildMonthlyNewShares aggregates investments per month of the as-of year.
func buildMonthlyNewShares(ds Dataset) (*Report, error) {
	r := newReport(fmt.Sprintf("Month-wise New Shares Report: %d", ds.AsOf.Year),
		colSL, colMonth, colAmount, colFine, colSharePrice, colShares, colInvestors)
	r.Period = fmt.Sprintf("%d", ds.AsOf.Year)

	var total struct {
		amount, fine, shares float64
		investors            int
	}
	for i := 0; i < 12; i++ {
		p := period.New(ds.AsOf.Year, 1).AddMonths(i)
		price, havePrice := ds.Prices.Price(p)

		var amount, fine, newShares float64
		investors := 0
		for _, m := range ds.Members {
			inv := ledger.InvestmentIn(m, p)
			if inv == nil {
				continue
			}
			investors++
			fine += inv.Fine
			if !havePrice {
				r.warnf("%s (%s): no share price for %s, investment excluded", m.Name, m.MembershipID, p)
				continue
			}
			amount += inv.Amount
			newShares += ledger.SharesFor(inv.Amount, price)
		}

		total.amount += amount
		total.fine += fine
		total.shares += newShares
		total.investors += investors

		r.data(map[string]any{
			colSL:         i + 1,
			colMonth:      p.Key(),
			colAmount:     money(amount),
			colFine:       money(fine),
			colSharePrice: money(price),
			colShares:     shares(newShares),
			colInvestors:  investors,
		})
	}

	r.summary(map[string]any{
		colMonth:     "TOTAL MONTHLY SUMMARY",
		colAmount:    money(total.amount),
		colFine:      money(total.fine),
		colShares:    shares(total.shares),
		colInvestors: total.investors,
	})
	return r, nil
}
