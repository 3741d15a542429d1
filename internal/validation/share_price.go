package validation

import "github.com/ndewijer/Society-Share-Ledger-Backend/internal/api/request"

// ValidateSetSharePrice validates a share price update.
func ValidateSetSharePrice(req request.SetSharePriceRequest) error {
	fields := make(map[string]string)
	if err := validateStruct(req, fields); err != nil {
		return err
	}
	return result(fields)
}
