package validation

import (
	"strings"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/api/request"
)

// ValidateDeclareDividend validates a dividend declaration.
//
// Required fields:
//   - name: non-blank; the eligibility rule is read from it
//   - eventDate: YYYY-MM-DD
//   - profitAmount: positive
func ValidateDeclareDividend(req request.DeclareDividendRequest) error {
	fields := make(map[string]string)
	if err := validateStruct(req, fields); err != nil {
		return err
	}
	if req.Name != "" && strings.TrimSpace(req.Name) == "" {
		fields["name"] = "is required"
	}
	return result(fields)
}
