package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/model"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
)

// Rule is the dividend eligibility rule of a dividend event.
type Rule string

const (
	RuleNoException       Rule = "no exception"
	RuleExceptLastMonth   Rule = "except last month"
	RuleExceptLast3Months Rule = "except last 3 months"
	// RuleUnrecognized applies when the event name matches no rule. A member
	// is then ineligible if either exception rule would exclude them.
	RuleUnrecognized Rule = "unrecognized"
)

// ParseRule derives the eligibility rule from a free-text event name.
// "last 3 months" is checked before "last month" since the former contains
// the latter's words.
func ParseRule(name string) Rule {
	n := strings.ToLower(strings.Join(strings.Fields(name), " "))
	switch {
	case strings.Contains(n, "last 3 months"):
		return RuleExceptLast3Months
	case strings.Contains(n, "last month"):
		return RuleExceptLastMonth
	case strings.Contains(n, "no exception"):
		return RuleNoException
	default:
		return RuleUnrecognized
	}
}

// RuleFromTag maps a stored rule tag back to a Rule.
func RuleFromTag(tag string) Rule {
	switch r := Rule(tag); r {
	case RuleNoException, RuleExceptLastMonth, RuleExceptLast3Months:
		return r
	default:
		return RuleUnrecognized
	}
}

// Eligibility is the verdict for one member under a rule.
type Eligibility string

const (
	Eligible   Eligibility = "eligible"
	Ineligible Eligibility = "ineligible"
)

// JoinedAt returns the member's joining date, falling back to the payment's
// date of joining.
func JoinedAt(m model.Member) *time.Time {
	if m.JoiningDate != nil {
		return m.JoiningDate
	}
	return m.Payment.DateOfJoining
}

// EligibilityOf decides whether a member takes part in a distribution.
// Windows are counted in calendar months ending at the reference month,
// inclusive. A member without a joining date is eligible. The Company
// Account is always eligible.
func EligibilityOf(m model.Member, rule Rule, referenceDate time.Time, policy Policy) Eligibility {
	if policy.IsCompany(m) || rule == RuleNoException {
		return Eligible
	}
	joined := JoinedAt(m)
	if joined == nil {
		return Eligible
	}

	age := period.FromTime(referenceDate).MonthsSince(period.FromTime(*joined))
	withinLastMonth := age < 1
	withinLast3Months := age < 3

	var excluded bool
	switch rule {
	case RuleExceptLastMonth:
		excluded = withinLastMonth
	case RuleExceptLast3Months:
		excluded = withinLast3Months
	default:
		excluded = withinLastMonth || withinLast3Months
	}

	if excluded {
		return Ineligible
	}
	return Eligible
}

// RoundMoney rounds a monetary amount to two decimals.
func RoundMoney(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Distribute splits profit across eligible members in proportion to their
// cumulative shares as of asOf. Ineligible members are listed with a zero
// payout and do not count towards the share denominator.
func Distribute(
	members []model.Member,
	profit float64,
	rule Rule,
	referenceDate time.Time,
	prices PriceLookup,
	asOf period.Period,
	policy Policy,
) model.Distribution {
	dist := model.Distribution{
		Rule:      string(rule),
		PerMember: make([]model.DividendShare, 0, len(members)),
	}

	for _, m := range members {
		pos := CumulativeAsOf(m, prices, asOf, policy)
		eligible := EligibilityOf(m, rule, referenceDate, policy) == Eligible
		if eligible {
			dist.TotalEligibleShares += pos.TotalShares
		}
		dist.PerMember = append(dist.PerMember, model.DividendShare{
			MemberID:     m.ID,
			Name:         m.Name,
			MembershipID: m.MembershipID,
			Shares:       pos.TotalShares,
			Eligible:     eligible,
		})
	}

	if dist.TotalEligibleShares > 0 {
		dist.PerShare = profit / dist.TotalEligibleShares
	}

	for i := range dist.PerMember {
		row := &dist.PerMember[i]
		if !row.Eligible {
			continue
		}
		row.Payout = RoundMoney(row.Shares * dist.PerShare)
		dist.TotalEligibleDividend += row.Payout
	}
	dist.TotalEligibleDividend = RoundMoney(dist.TotalEligibleDividend)

	return dist
}
