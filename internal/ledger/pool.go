package ledger

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/model"
)

// MinBookableBalance is the smallest outstanding balance worth booking.
const MinBookableBalance = 0.005

// Balance is Company Account capital that has been collected but not yet
// converted into shares, split by source.
type Balance struct {
	Registration float64
	Fine         float64
}

// Total returns the full outstanding amount.
func (b Balance) Total() float64 {
	return b.Registration + b.Fine
}

// IsZero reports whether nothing is left to invest.
func (b Balance) IsZero() bool {
	return b.Total() < MinBookableBalance
}

// Source returns the transaction tag for booking this balance.
func (b Balance) Source() string {
	if b.Fine >= MinBookableBalance {
		return model.CompanySourceMixed
	}
	return model.CompanySourceRegistration
}

// Describe renders the structured description stored on company transactions.
func Describe(registration, fine float64) string {
	return fmt.Sprintf("registration=%.2f;fine=%.2f", registration, fine)
}

// ParseDescription extracts the registration and fine components written by
// Describe. ok is false when either component is missing or malformed.
func ParseDescription(desc string) (registration, fine float64, ok bool) {
	var haveReg, haveFine bool
	for _, part := range strings.Split(desc, ";") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || n < 0 {
			return 0, 0, false
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "registration":
			registration, haveReg = n, true
		case "fine":
			fine, haveFine = n, true
		}
	}
	return registration, fine, haveReg && haveFine
}

// Split apportions a company transaction between the membership and fine
// buckets. Registration transactions go entirely to membership. Mixed
// transactions are split in proportion to the components in the
// description, falling back to amount minus fine when it cannot be parsed.
func Split(tx model.CompanyTransaction) (membershipShares, fineShares, membershipAmount, fineAmount float64) {
	switch tx.Source {
	case model.CompanySourceRegistration:
		return tx.Shares, 0, tx.Amount, 0
	case model.CompanySourceDividend:
		return 0, 0, 0, 0
	}

	reg, fine, ok := ParseDescription(tx.Description)
	if !ok {
		fine = math.Max(0, math.Min(tx.Fine, tx.Amount))
		reg = tx.Amount - fine
	}
	total := reg + fine
	if total <= 0 {
		return 0, 0, 0, 0
	}
	regRatio := reg / total
	return tx.Shares * regRatio, tx.Shares * (1 - regRatio), tx.Amount * regRatio, tx.Amount * (1 - regRatio)
}

// Reconcile classifies the Company Account's shares by funding source.
// Dividend shares come from confirmed dividend events only.
func Reconcile(txns []model.CompanyTransaction, dividends []model.DividendEvent) model.PoolBreakdown {
	var out model.PoolBreakdown

	for _, tx := range txns {
		ms, fs, ma, fa := Split(tx)
		out.MembershipShares += ms
		out.FineShares += fs
		out.MembershipAmount += ma
		out.FineAmount += fa
	}

	for _, d := range dividends {
		if !d.IsConfirmed() {
			continue
		}
		out.DividendShares += d.CompanySharesPurchased
		out.DividendAmount += d.CompanyInvestmentAmount
	}

	out.MembershipShares = math.Max(0, out.MembershipShares)
	out.FineShares = math.Max(0, out.FineShares)
	out.DividendShares = math.Max(0, out.DividendShares)
	return out
}

// Outstanding computes the Company Account's un-invested balance: registration
// income and fines collected from other members, minus what earlier company
// transactions already converted.
func Outstanding(members []model.Member, txns []model.CompanyTransaction, policy Policy) Balance {
	var income Balance
	for _, m := range members {
		if policy.IsCompany(m) {
			continue
		}
		if m.Payment.CountsAsIncome() {
			income.Registration += m.Payment.PayingMembershipAmount
		}
		for _, months := range m.Activities {
			for _, act := range months {
				if act.Investment != nil {
					income.Fine += act.Investment.Fine
				}
			}
		}
	}

	var booked Balance
	for _, tx := range txns {
		_, _, ma, fa := Split(tx)
		booked.Registration += ma
		booked.Fine += fa
	}

	return Balance{
		Registration: math.Max(0, income.Registration-booked.Registration),
		Fine:         math.Max(0, income.Fine-booked.Fine),
	}
}

// Allocate splits an amount invested directly into the Company Account
// across the outstanding balance: registration first, then fines. Anything
// beyond the outstanding balance is treated as membership capital.
func Allocate(amount float64, pending Balance) Balance {
	fine := math.Min(math.Max(0, amount-pending.Registration), pending.Fine)
	return Balance{Registration: amount - fine, Fine: fine}
}
