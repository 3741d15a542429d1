package ledger

import (
	"fmt"
	"math"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/model"
)

// SharesFor converts an amount into shares at the given price.
func SharesFor(amount, price float64) float64 {
	if price <= 0 {
		return 0
	}
	return amount / price
}

// TotalShares recomputes a member's share balance from the activity log:
// investment shares minus withdrawal shares, floored at zero.
func TotalShares(acts model.Activities) float64 {
	invested, withdrawn := acts.SumShares()
	return math.Max(0, invested-withdrawn)
}

// CheckInvestment validates the amounts of a new investment.
func CheckInvestment(amount, fine float64) error {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	if fine < 0 || math.IsNaN(fine) || math.IsInf(fine, 0) {
		return fmt.Errorf("%w: fine cannot be negative", apperrors.ErrValidation)
	}
	return nil
}

// CheckWithdrawalInput validates the price and amount of a withdrawal
// request. The price is checked first.
func CheckWithdrawalInput(amount, sharePrice float64) error {
	if sharePrice <= 0 || math.IsNaN(sharePrice) || math.IsInf(sharePrice, 0) {
		return apperrors.ErrPriceRequired
	}
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	return nil
}

// CheckWithdrawal validates a withdrawal against the member's balance and
// returns the shares it removes.
func CheckWithdrawal(amount, sharePrice, available float64) (float64, error) {
	if err := CheckWithdrawalInput(amount, sharePrice); err != nil {
		return 0, err
	}
	shares := amount / sharePrice
	if shares > available+Epsilon {
		return 0, fmt.Errorf("%w: requested %.4f shares, %.4f available", apperrors.ErrInsufficientShares, shares, available)
	}
	return shares, nil
}

// CheckBalance returns ErrInsufficientShares when an activity log withdraws
// more shares than it invests.
func CheckBalance(acts model.Activities) error {
	invested, withdrawn := acts.SumShares()
	if withdrawn > invested+Epsilon {
		return fmt.Errorf("%w: %.4f shares withdrawn, %.4f invested", apperrors.ErrInsufficientShares, withdrawn, invested)
	}
	return nil
}
