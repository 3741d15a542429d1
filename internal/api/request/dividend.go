package request

// DeclareDividendRequest represents the request body for declaring a dividend event.
// The eligibility rule is derived from Name, e.g. "2025 dividend except last 3 months".
type DeclareDividendRequest struct {
	Name         string  `json:"name" validate:"required,max=200"`
	EventDate    string  `json:"eventDate" validate:"required,datetime=2006-01-02"`
	ProfitAmount float64 `json:"profitAmount" validate:"gt=0"`
}
