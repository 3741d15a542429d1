package request

// SetSharePriceRequest represents the request body for setting the share price
// of a period. Year and Month come from the URL.
type SetSharePriceRequest struct {
	Year  int     `json:"-"`
	Month string  `json:"-"`
	Price float64 `json:"price" validate:"gt=0"`
}
