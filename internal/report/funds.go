package report

import (
	"fmt"
	"sort"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/model"
)

const (
	colSource        = "Source"
	colDescription   = "Description"
	colMembership    = "Membership"
	colSystemReceipt = "System Receipt"
	colCustomReceipt = "Custom Receipt"
	colManualReceipt = "Manual Receipt"
	colWithdrawn     = "Withdrawn Shares"
)

// buildCompanyFunds opens with the Company Account's bucket breakdown and
// then lists each company transaction with its membership/fine/dividend
// split. The summary sums the transaction rows only.
func buildCompanyFunds(ds Dataset) (*Report, error) {
	r := newReport("Company Funds Report",
		colSL, colDate, colPeriod, colSource, colDescription,
		colAmount, colMembership, colFine, colDividend, colSharePrice, colShares)

	txns := transactionsUpTo(ds.Transactions, ds.AsOf)
	pool := ledger.Reconcile(txns, dividendsUpTo(ds.Dividends, ds.AsOf))

	r.section(colSource, "FUND BUCKETS")
	r.data(map[string]any{colSource: "Membership Fees", colAmount: money(pool.MembershipAmount), colShares: shares(pool.MembershipShares)})
	r.data(map[string]any{colSource: "Fines", colAmount: money(pool.FineAmount), colShares: shares(pool.FineShares)})
	r.data(map[string]any{colSource: "Dividend Reinvestment", colAmount: money(pool.DividendAmount), colShares: shares(pool.DividendShares)})

	sort.SliceStable(txns, func(i, j int) bool {
		pi, _ := transactionPeriod(txns[i])
		pj, _ := transactionPeriod(txns[j])
		if c := pi.Compare(pj); c != 0 {
			return c < 0
		}
		return txns[i].CreatedAt.Before(txns[j].CreatedAt)
	})

	r.section(colSource, "TRANSACTIONS")
	var total struct{ amount, membership, fine, dividend, shares float64 }
	for i, tx := range txns {
		var membership, fine, dividend float64
		if tx.Source == model.CompanySourceDividend {
			dividend = tx.Amount
		} else {
			_, _, membership, fine = ledger.Split(tx)
		}
		total.amount += tx.Amount
		total.membership += membership
		total.fine += fine
		total.dividend += dividend
		total.shares += tx.Shares

		p, _ := transactionPeriod(tx)
		r.data(map[string]any{
			colSL:          i + 1,
			colDate:        tx.CreatedAt.Format("2006-01-02"),
			colPeriod:      p.String(),
			colSource:      tx.Source,
			colDescription: tx.Description,
			colAmount:      money(tx.Amount),
			colMembership:  money(membership),
			colFine:        money(fine),
			colDividend:    money(dividend),
			colSharePrice:  money(tx.SharePrice),
			colShares:      shares(tx.Shares),
		})
	}

	r.summary(map[string]any{
		colSource:     "TOTAL COMPANY FUNDS SUMMARY",
		colAmount:     money(total.amount),
		colMembership: money(total.membership),
		colFine:       money(total.fine),
		colDividend:   money(total.dividend),
		colShares:     shares(total.shares),
	})
	return r, nil
}

// buildFundingAudit lists, for one month, every member with activity: the
// investment with its receipts and any withdrawal.
func buildFundingAudit(ds Dataset) (*Report, error) {
	r := newReport(fmt.Sprintf("Monthly Funding Audit: %s", ds.AsOf),
		colSL, colName, colMembershipID, colInvestment, colFine, colSharePrice, colShares,
		colSystemReceipt, colCustomReceipt, colManualReceipt, colWithdrawal, colWithdrawn)

	price, havePrice := ds.Prices.Price(ds.AsOf)
	if !havePrice {
		r.warnf("no share price for %s", ds.AsOf)
	}

	var total struct{ amount, fine, shares, withdrawal, withdrawn float64 }
	sl := 0
	for _, m := range ds.Members {
		act, ok := m.Activities.At(ds.AsOf)
		if !ok || act.IsEmpty() {
			continue
		}

		cells := map[string]any{
			colName:         m.Name,
			colMembershipID: m.MembershipID,
			colInvestment:   0.0,
			colFine:         0.0,
			colSharePrice:   money(price),
			colShares:       0.0,
			colWithdrawal:   0.0,
			colWithdrawn:    0.0,
		}
		if inv := act.Investment; inv != nil {
			invShares := inv.Shares
			if havePrice {
				invShares = ledger.SharesFor(inv.Amount, price)
			}
			total.amount += inv.Amount
			total.fine += inv.Fine
			total.shares += invShares
			cells[colInvestment] = money(inv.Amount)
			cells[colFine] = money(inv.Fine)
			cells[colShares] = shares(invShares)
			cells[colSystemReceipt] = inv.SystemReceipt
			cells[colCustomReceipt] = inv.CustomReceipt
			cells[colManualReceipt] = inv.ManualReceipt
		}
		if wd := act.Withdrawal; wd != nil {
			total.withdrawal += wd.Amount
			total.withdrawn += wd.Shares
			cells[colWithdrawal] = money(wd.Amount)
			cells[colWithdrawn] = shares(wd.Shares)
		}

		sl++
		cells[colSL] = sl
		r.data(cells)
	}

	r.summary(map[string]any{
		colName:       "TOTAL AUDIT SUMMARY",
		colInvestment: money(total.amount),
		colFine:       money(total.fine),
		colShares:     shares(total.shares),
		colWithdrawal: money(total.withdrawal),
		colWithdrawn:  shares(total.withdrawn),
	})
	return r, nil
}
