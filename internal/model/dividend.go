package model

import "time"

// Dividend event statuses. Only confirmed events are actionable.
const (
	DividendStatusPending   = "pending"
	DividendStatusConfirmed = "confirmed"
)

// DividendEvent is a declared profit distribution. Rule is parsed from Name
// when the event is declared.
type DividendEvent struct {
	ID                      string     `json:"id"`
	Name                    string     `json:"name"`
	Rule                    string     `json:"rule"`
	EventDate               time.Time  `json:"eventDate"`
	Status                  string     `json:"status"`
	ProfitAmount            float64    `json:"profitAmount"`
	DistributedAmount       float64    `json:"distributedAmount"`
	CompanyInvestmentAmount float64    `json:"companyInvestmentAmount"`
	CompanySharesPurchased  float64    `json:"companySharesPurchased"`
	CreatedAt               time.Time  `json:"createdAt"`
	ConfirmedAt             *time.Time `json:"confirmedAt,omitempty"`
}

// IsConfirmed reports whether the event has been confirmed.
func (d DividendEvent) IsConfirmed() bool {
	return d.Status == DividendStatusConfirmed
}

// DividendShare is one member's line in a distribution.
type DividendShare struct {
	MemberID     string  `json:"memberId"`
	Name         string  `json:"name"`
	MembershipID string  `json:"membershipId"`
	Shares       float64 `json:"shares"`
	Eligible     bool    `json:"eligible"`
	Payout       float64 `json:"payout"`
}

// Distribution is the computed split of a profit amount.
type Distribution struct {
	Rule                  string          `json:"rule"`
	PerShare              float64         `json:"perShare"`
	PerMember             []DividendShare `json:"perMember"`
	TotalEligibleShares   float64         `json:"totalEligibleShares"`
	TotalEligibleDividend float64         `json:"totalEligibleDividend"`
}
