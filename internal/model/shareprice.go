package model

import (
	"time"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
)

// SharePrice is the administrator-set price of one share for a period.
type SharePrice struct {
	ID        string    `json:"id"`
	Year      int       `json:"year"`
	Month     string    `json:"month"`
	Price     float64   `json:"price"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Period returns the period the price applies to. The month is stored in
// canonical form, so resolution only fails for hand-built values.
func (s SharePrice) Period() (period.Period, error) {
	m, err := period.ResolveMonth(s.Month)
	if err != nil {
		return period.Period{}, err
	}
	return period.New(s.Year, m), nil
}

// SharePriceUpdate reports the effect of setting a price on existing activity.
type SharePriceUpdate struct {
	SharePrice          SharePrice `json:"sharePrice"`
	RevaluedInvestments int64      `json:"revaluedInvestments"`
	RevaluedCompanyTxns int64      `json:"revaluedCompanyTransactions"`
}
