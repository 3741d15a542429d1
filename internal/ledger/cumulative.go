package ledger

import (
	"math"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/model"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
)

// Position is a member's cumulative invested principal and share count as
// of a period.
type Position struct {
	TotalAmount float64
	TotalShares float64
	// MissingPrices lists periods with an investment but no configured price.
	// Those investments contribute nothing to the totals.
	MissingPrices []period.Period
}

// CumulativeAsOf replays a member's activity up to and including asOf.
// Investment shares are valued at each period's own price from the table,
// never at the stored share count, so retroactive price corrections are
// honoured. Fines are excluded from the amount. Withdrawals are subtracted
// only when the policy asks for it, using the withdrawal's own price.
func CumulativeAsOf(m model.Member, prices PriceLookup, asOf period.Period, policy Policy) Position {
	var pos Position

	for _, p := range m.Activities.Periods() {
		if asOf.Before(p) {
			break
		}
		act, _ := m.Activities.At(p)

		if inv := act.Investment; inv != nil {
			price, ok := prices.Price(p)
			if !ok {
				pos.MissingPrices = append(pos.MissingPrices, p)
			} else {
				pos.TotalAmount += inv.Amount
				pos.TotalShares += inv.Amount / price
			}
		}

		if wd := act.Withdrawal; wd != nil && policy.SubtractWithdrawals {
			pos.TotalShares -= withdrawalShares(wd, prices, p)
		}
	}

	pos.TotalShares = math.Max(0, pos.TotalShares)
	return pos
}

func withdrawalShares(wd *model.WithdrawalEvent, prices PriceLookup, p period.Period) float64 {
	if wd.SharePrice > 0 {
		return wd.Amount / wd.SharePrice
	}
	if wd.Shares > 0 {
		return wd.Shares
	}
	if price, ok := prices.Price(p); ok {
		return wd.Amount / price
	}
	return 0
}

// InvestmentIn returns the investment recorded for p, if any.
func InvestmentIn(m model.Member, p period.Period) *model.InvestmentEvent {
	act, ok := m.Activities.At(p)
	if !ok {
		return nil
	}
	return act.Investment
}
