package model

// InvestmentResult is returned by a successful investment. A failed Company
// Account booking does not fail the investment; it is reported in
// CompanyBookingError instead.
type InvestmentResult struct {
	Investment          InvestmentEvent `json:"investment"`
	TotalShares         float64         `json:"totalShares"`
	CompanyBooking      *CompanyBooking `json:"companyBooking,omitempty"`
	CompanyBookingError string          `json:"companyBookingError,omitempty"`
}

// WithdrawalResult is returned by a successful withdrawal.
type WithdrawalResult struct {
	Withdrawal  WithdrawalEvent `json:"withdrawal"`
	TotalShares float64         `json:"totalShares"`
}

// RegistrationResult is returned by member registration. The auto-invest
// side effect is best-effort.
type RegistrationResult struct {
	Member          Member          `json:"member"`
	AutoInvest      *CompanyBooking `json:"autoInvest,omitempty"`
	AutoInvestError string          `json:"autoInvestError,omitempty"`
}

// Cumulative is a member's invested principal and share count up to and
// including a period. MissingPrices lists periods whose investments were
// skipped because no price was configured.
type Cumulative struct {
	Year          int      `json:"year"`
	Month         string   `json:"month"`
	TotalAmount   float64  `json:"totalAmount"`
	TotalShares   float64  `json:"totalShares"`
	MissingPrices []string `json:"missingPrices,omitempty"`
}
