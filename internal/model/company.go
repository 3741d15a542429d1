package model

import "time"

// Company transaction sources.
const (
	CompanySourceRegistration = "registration"
	CompanySourceMixed        = "mixed"
	CompanySourceDividend     = "dividend"
)

// CompanyTransaction records capital converted into Company Account shares.
// Amount is the total converted; Fine is the part of Amount that came from
// fines. Description carries the structured split
// "registration=<amount>;fine=<amount>".
type CompanyTransaction struct {
	ID          string    `json:"id"`
	MemberID    string    `json:"memberId"`
	Source      string    `json:"source"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Fine        float64   `json:"fine"`
	SharePrice  float64   `json:"sharePrice"`
	Shares      float64   `json:"shares"`
	Year        int       `json:"year"`
	Month       string    `json:"month"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PoolBreakdown classifies the Company Account's capital by funding source.
type PoolBreakdown struct {
	MembershipShares float64 `json:"membershipShares"`
	FineShares       float64 `json:"fineShares"`
	DividendShares   float64 `json:"dividendShares"`
	MembershipAmount float64 `json:"membershipAmount"`
	FineAmount       float64 `json:"fineAmount"`
	DividendAmount   float64 `json:"dividendAmount"`
}

// TotalShares returns the sum of all three buckets.
func (p PoolBreakdown) TotalShares() float64 {
	return p.MembershipShares + p.FineShares + p.DividendShares
}

// CompanyBooking is the outcome of investing the Company Account's
// outstanding balance.
type CompanyBooking struct {
	Transaction  CompanyTransaction `json:"transaction"`
	Investment   InvestmentEvent    `json:"investment"`
	Registration float64            `json:"registrationPortion"`
	Fine         float64            `json:"finePortion"`
}
