package ledger

import (
	"fmt"
	"strings"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
)

// SystemReceipt formats the system receipt for the seq-th investment of a
// calendar month, e.g. "JAN-007".
func SystemReceipt(p period.Period, seq int) string {
	return fmt.Sprintf("%s-%03d", strings.ToUpper(p.Key()), seq)
}
