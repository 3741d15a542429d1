package request

// RecordInvestmentRequest represents the request body for recording a monthly investment.
// Month accepts any supported spelling ("Jan", "January", "1", "01").
type RecordInvestmentRequest struct {
	Year          int     `json:"year" validate:"required,gte=1900,lte=9999"`
	Month         string  `json:"month" validate:"required"`
	Amount        float64 `json:"amount" validate:"gt=0"`
	Fine          float64 `json:"fine" validate:"gte=0"`
	ManualReceipt string  `json:"manualReceipt,omitempty" validate:"max=100"`
	CustomReceipt string  `json:"customReceipt,omitempty" validate:"max=100"`
}

// RecordWithdrawalRequest represents the request body for recording a withdrawal.
// Amount and SharePrice are checked by the ledger so that a missing price is
// reported before a bad amount.
type RecordWithdrawalRequest struct {
	Year       int     `json:"year" validate:"required,gte=1900,lte=9999"`
	Month      string  `json:"month" validate:"required"`
	Amount     float64 `json:"amount"`
	SharePrice float64 `json:"sharePrice"`
}
