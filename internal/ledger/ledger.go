// Package ledger holds the share accounting rules of the society: turning
// activity into share counts, valuing members as of a period, classifying
// the Company Account pool and distributing dividends. Everything here is a
// pure function of its inputs; persistence lives in the service layer.
package ledger

import (
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/model"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
)

// Epsilon is the floating point tolerance used for share balance checks.
const Epsilon = 1e-8

// DefaultCompanyMembershipID identifies the Company Account when no other
// membership ID is configured.
const DefaultCompanyMembershipID = "2025-002"

// Policy carries the configurable parts of the accounting rules.
type Policy struct {
	// CompanyMembershipID identifies the Company Account member.
	CompanyMembershipID string
	// SubtractWithdrawals makes cumulative valuations subtract withdrawal
	// shares. Off by default: cumulative totals are gross investments.
	SubtractWithdrawals bool
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{CompanyMembershipID: DefaultCompanyMembershipID}
}

// IsCompany reports whether m is the Company Account under this policy.
func (p Policy) IsCompany(m model.Member) bool {
	return m.IsCompanyAccount(p.CompanyMembershipID)
}

// PriceLookup resolves the share price of a period.
type PriceLookup interface {
	Price(p period.Period) (float64, bool)
}

// PriceTable is an in-memory share price table.
type PriceTable map[period.Period]float64

// Price returns the configured price for p. Non-positive prices are treated
// as missing.
func (t PriceTable) Price(p period.Period) (float64, bool) {
	price, ok := t[p]
	if !ok || price <= 0 {
		return 0, false
	}
	return price, true
}

// NewPriceTable builds a PriceTable from stored share prices, skipping rows
// whose month cannot be resolved.
func NewPriceTable(prices []model.SharePrice) PriceTable {
	table := make(PriceTable, len(prices))
	for _, sp := range prices {
		p, err := sp.Period()
		if err != nil {
			continue
		}
		table[p] = sp.Price
	}
	return table
}
