package validation

import (
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
)

// ValidateRecordInvestment validates an investment request: a year, a
// resolvable month, a positive amount and a non-negative fine.
func ValidateRecordInvestment(req request.RecordInvestmentRequest) error {
	fields := make(map[string]string)
	if err := validateStruct(req, fields); err != nil {
		return err
	}
	checkMonth(req.Month, fields)
	return result(fields)
}

// ValidateRecordWithdrawal validates the period of a withdrawal request.
// Amount and share price are left to the ledger.
func ValidateRecordWithdrawal(req request.RecordWithdrawalRequest) error {
	fields := make(map[string]string)
	if err := validateStruct(req, fields); err != nil {
		return err
	}
	checkMonth(req.Month, fields)
	return result(fields)
}

func checkMonth(month string, fields map[string]string) {
	if month == "" {
		return
	}
	if _, err := period.ResolveMonth(month); err != nil {
		fields["month"] = "must be a month name, abbreviation or number"
	}
}
