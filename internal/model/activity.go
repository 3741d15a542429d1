package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
)

// Activity kinds as stored in the activity table.
const (
	ActivityInvestment = "investment"
	ActivityWithdrawal = "withdrawal"
)

// WithdrawalStatusCompleted is the status of a confirmed withdrawal.
const WithdrawalStatusCompleted = "completed"

// InvestmentEvent is a member's investment for one period. Shares is derived
// from Amount and SharePrice and is recomputed whenever the period's price
// changes.
type InvestmentEvent struct {
	ID            string    `json:"id"`
	Amount        float64   `json:"amount"`
	Fine          float64   `json:"fine"`
	SharePrice    float64   `json:"sharePrice"`
	Shares        float64   `json:"shares"`
	SystemReceipt string    `json:"systemReceipt"`
	CustomReceipt string    `json:"customReceipt,omitempty"`
	ManualReceipt string    `json:"manualReceipt,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// WithdrawalEvent is a member's withdrawal for one period, valued at the
// share price entered by the operator.
type WithdrawalEvent struct {
	ID         string    `json:"id"`
	Amount     float64   `json:"amount"`
	SharePrice float64   `json:"sharePrice"`
	Shares     float64   `json:"shares"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PeriodActivity holds at most one investment and one withdrawal.
type PeriodActivity struct {
	Investment *InvestmentEvent `json:"investment,omitempty"`
	Withdrawal *WithdrawalEvent `json:"withdrawal,omitempty"`
}

// IsEmpty reports whether neither event is present.
func (a PeriodActivity) IsEmpty() bool {
	return a.Investment == nil && a.Withdrawal == nil
}

// Activities is the member activity log keyed by year and canonical month
// key. Reads accept any month spelling; writes always use canonical keys.
type Activities map[int]map[string]PeriodActivity

// Get returns the activity for a year and any spelling of the month.
func (a Activities) Get(year int, monthKey string) (PeriodActivity, bool) {
	m, err := period.ResolveMonth(monthKey)
	if err != nil {
		return PeriodActivity{}, false
	}
	return a.At(period.New(year, m))
}

// At returns the activity recorded for a period.
func (a Activities) At(p period.Period) (PeriodActivity, bool) {
	months, ok := a[p.Year]
	if !ok {
		return PeriodActivity{}, false
	}
	act, ok := months[p.Key()]
	return act, ok
}

// Set stores the activity for a period under its canonical key.
func (a Activities) Set(p period.Period, act PeriodActivity) {
	months, ok := a[p.Year]
	if !ok {
		months = make(map[string]PeriodActivity)
		a[p.Year] = months
	}
	months[p.Key()] = act
}

// Periods returns every period that has activity, oldest first.
// Keys that cannot be resolved are skipped.
func (a Activities) Periods() []period.Period {
	periods := make([]period.Period, 0)
	for year, months := range a {
		for key, act := range months {
			if act.IsEmpty() {
				continue
			}
			m, err := period.ResolveMonth(key)
			if err != nil {
				continue
			}
			periods = append(periods, period.New(year, m))
		}
	}
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Before(periods[j])
	})
	return periods
}

// SumShares returns the investment shares and withdrawal shares recorded
// across all periods.
func (a Activities) SumShares() (invested, withdrawn float64) {
	for _, months := range a {
		for _, act := range months {
			if act.Investment != nil {
				invested += act.Investment.Shares
			}
			if act.Withdrawal != nil {
				withdrawn += act.Withdrawal.Shares
			}
		}
	}
	return invested, withdrawn
}

// NormalizeLegacyActivities converts a raw activity document into
// Activities. It accepts variant month keys ("Sept", "September", "09", "9")
// and the legacy flat shape in which an investment object is stored directly
// under the month key. Two spellings of the same month are merged; a merge
// that would produce two investments or two withdrawals is rejected.
func NormalizeLegacyActivities(raw map[string]map[string]json.RawMessage) (Activities, error) {
	out := make(Activities)

	for yearKey, months := range raw {
		year, err := strconv.Atoi(yearKey)
		if err != nil || year <= 0 {
			return nil, fmt.Errorf("invalid activity year %q", yearKey)
		}

		for monthKey, payload := range months {
			m, err := period.ResolveMonth(monthKey)
			if err != nil {
				return nil, fmt.Errorf("year %d: %w", year, err)
			}
			p := period.New(year, m)

			act, err := decodeLegacyPeriod(payload)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", p, err)
			}
			if act.IsEmpty() {
				continue
			}

			existing, _ := out.At(p)
			if existing.Investment != nil && act.Investment != nil {
				return nil, fmt.Errorf("%s: multiple investments after month key normalization", p)
			}
			if existing.Withdrawal != nil && act.Withdrawal != nil {
				return nil, fmt.Errorf("%s: multiple withdrawals after month key normalization", p)
			}
			if act.Investment == nil {
				act.Investment = existing.Investment
			}
			if act.Withdrawal == nil {
				act.Withdrawal = existing.Withdrawal
			}
			out.Set(p, act)
		}
	}

	return out, nil
}

func decodeLegacyPeriod(payload json.RawMessage) (PeriodActivity, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return PeriodActivity{}, fmt.Errorf("activity is not an object: %w", err)
	}

	var act PeriodActivity
	_, hasInvestment := fields["investment"]
	_, hasWithdrawal := fields["withdrawal"]

	if !hasInvestment && !hasWithdrawal {
		if _, flat := fields["amount"]; !flat {
			return act, nil
		}
		var inv InvestmentEvent
		if err := json.Unmarshal(payload, &inv); err != nil {
			return act, fmt.Errorf("invalid flat investment: %w", err)
		}
		act.Investment = &inv
		return act, nil
	}

	if hasInvestment && string(fields["investment"]) != "null" {
		var inv InvestmentEvent
		if err := json.Unmarshal(fields["investment"], &inv); err != nil {
			return act, fmt.Errorf("invalid investment: %w", err)
		}
		act.Investment = &inv
	}
	if hasWithdrawal && string(fields["withdrawal"]) != "null" {
		var wd WithdrawalEvent
		if err := json.Unmarshal(fields["withdrawal"], &wd); err != nil {
			return act, fmt.Errorf("invalid withdrawal: %w", err)
		}
		act.Withdrawal = &wd
	}
	return act, nil
}
