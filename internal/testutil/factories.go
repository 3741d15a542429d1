package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/model"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/repository"
)

// MemberBuilder provides a fluent interface for creating test members.
//
// Example usage:
//
//	// Simple creation with defaults
//	member := testutil.NewMember().Build(t, db)
//
//	// Customized member with history
//	member := testutil.NewMember().
//	    WithName("Karim").
//	    JoinedOn(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)).
//	    WithInvestment(period.New(2025, time.May), 3000, 0, 30).
//	    Build(t, db)
type MemberBuilder struct {
	member      model.Member
	investments []builtInvestment
	withdrawals []builtWithdrawal
}

type builtInvestment struct {
	period period.Period
	event  model.InvestmentEvent
}

type builtWithdrawal struct {
	period period.Period
	event  model.WithdrawalEvent
}

// NewMember creates a MemberBuilder with sensible defaults.
func NewMember() *MemberBuilder {
	return &MemberBuilder{
		member: model.Member{
			ID:           MakeID(),
			Name:         MakeMemberName("Member"),
			MembershipID: MakeMembershipID(),
			Activities:   make(model.Activities),
			CreatedAt:    Now,
		},
	}
}

// WithName sets a custom name.
func (b *MemberBuilder) WithName(name string) *MemberBuilder {
	b.member.Name = name
	return b
}

// WithMembershipID sets a custom membership ID.
func (b *MemberBuilder) WithMembershipID(id string) *MemberBuilder {
	b.member.MembershipID = id
	return b
}

// WithPhone sets a phone number.
func (b *MemberBuilder) WithPhone(phone string) *MemberBuilder {
	b.member.Phone = phone
	return b
}

// JoinedOn sets the joining date.
func (b *MemberBuilder) JoinedOn(date time.Time) *MemberBuilder {
	b.member.JoiningDate = &date
	return b
}

// Director marks the member as a director.
func (b *MemberBuilder) Director() *MemberBuilder {
	b.member.IsDirector = true
	return b
}

// CompanyAccount makes the member the Company Account under the default policy.
func (b *MemberBuilder) CompanyAccount() *MemberBuilder {
	b.member.Name = "Company Account"
	b.member.MembershipID = ledger.DefaultCompanyMembershipID
	return b
}

// Paying sets the registration fee and its payment status.
func (b *MemberBuilder) Paying(amount float64, status string) *MemberBuilder {
	b.member.Payment.PayingMembershipAmount = amount
	b.member.Payment.PaymentStatus = status
	return b
}

// WithInvestment adds an investment priced at price.
func (b *MemberBuilder) WithInvestment(p period.Period, amount, fine, price float64) *MemberBuilder {
	b.investments = append(b.investments, builtInvestment{
		period: p,
		event: model.InvestmentEvent{
			ID:            MakeID(),
			Amount:        amount,
			Fine:          fine,
			SharePrice:    price,
			Shares:        ledger.SharesFor(amount, price),
			SystemReceipt: ledger.SystemReceipt(p, len(b.investments)+1),
			CreatedAt:     p.Start(),
		},
	})
	return b
}

// WithWithdrawal adds a completed withdrawal priced at price.
func (b *MemberBuilder) WithWithdrawal(p period.Period, amount, price float64) *MemberBuilder {
	b.withdrawals = append(b.withdrawals, builtWithdrawal{
		period: p,
		event: model.WithdrawalEvent{
			ID:         MakeID(),
			Amount:     amount,
			SharePrice: price,
			Shares:     ledger.SharesFor(amount, price),
			Status:     model.WithdrawalStatusCompleted,
			CreatedAt:  p.Start(),
		},
	})
	return b
}

// Build inserts the member and its activity and returns the stored member
// with activities and share total filled in.
func (b *MemberBuilder) Build(t *testing.T, db *sql.DB) model.Member {
	t.Helper()
	ctx := context.Background()

	m := b.member
	m.Payment.MembershipID = m.MembershipID
	m.Activities = make(model.Activities)
	for _, inv := range b.investments {
		act, _ := m.Activities.At(inv.period)
		ev := inv.event
		act.Investment = &ev
		m.Activities.Set(inv.period, act)
	}
	for _, wd := range b.withdrawals {
		act, _ := m.Activities.At(wd.period)
		ev := wd.event
		act.Withdrawal = &ev
		m.Activities.Set(wd.period, act)
	}
	m.TotalShares = ledger.TotalShares(m.Activities)

	if err := repository.NewMemberRepository(db).InsertMember(ctx, &m); err != nil {
		t.Fatalf("Failed to create test member: %v", err)
	}
	activityRepo := repository.NewActivityRepository(db)
	for _, inv := range b.investments {
		ev := inv.event
		if err := activityRepo.InsertInvestment(ctx, m.ID, inv.period, &ev); err != nil {
			t.Fatalf("Failed to create test investment: %v", err)
		}
	}
	for _, wd := range b.withdrawals {
		ev := wd.event
		if err := activityRepo.InsertWithdrawal(ctx, m.ID, wd.period, &ev); err != nil {
			t.Fatalf("Failed to create test withdrawal: %v", err)
		}
	}
	return m
}

// Convenience functions

// CreateMember creates a member with the given name and default values.
func CreateMember(t *testing.T, db *sql.DB, name string) model.Member {
	t.Helper()
	return NewMember().WithName(name).Build(t, db)
}

// CreateCompanyAccount creates the Company Account member.
func CreateCompanyAccount(t *testing.T, db *sql.DB) model.Member {
	t.Helper()
	return NewMember().CompanyAccount().Build(t, db)
}

// SetSharePrice stores the share price of p directly, without repricing.
//
// Example usage:
//
//	testutil.SetSharePrice(t, db, testutil.CurrentPeriod, 30)
func SetSharePrice(t *testing.T, db *sql.DB, p period.Period, price float64) model.SharePrice {
	t.Helper()

	sp := model.SharePrice{
		ID:        MakeID(),
		Year:      p.Year,
		Month:     p.Key(),
		Price:     price,
		UpdatedAt: Now,
	}
	if err := repository.NewSharePriceRepository(db).UpsertSharePrice(context.Background(), &sp); err != nil {
		t.Fatalf("Failed to create test share price: %v", err)
	}
	return sp
}

// CreateCompanyTransaction stores a company transaction for the given split.
func CreateCompanyTransaction(t *testing.T, db *sql.DB, companyID string, p period.Period, registration, fine, price float64) model.CompanyTransaction {
	t.Helper()

	split := ledger.Balance{Registration: registration, Fine: fine}
	tx := model.CompanyTransaction{
		ID:          MakeID(),
		MemberID:    companyID,
		Source:      split.Source(),
		Description: ledger.Describe(registration, fine),
		Amount:      split.Total(),
		Fine:        fine,
		SharePrice:  price,
		Shares:      ledger.SharesFor(split.Total(), price),
		Year:        p.Year,
		Month:       p.Key(),
		CreatedAt:   p.Start(),
	}
	if err := repository.NewCompanyRepository(db).InsertTransaction(context.Background(), &tx); err != nil {
		t.Fatalf("Failed to create test company transaction: %v", err)
	}
	return tx
}

// CreateDividendEvent stores a pending dividend event.
func CreateDividendEvent(t *testing.T, db *sql.DB, name string, eventDate time.Time, profit float64) model.DividendEvent {
	t.Helper()

	ev := model.DividendEvent{
		ID:           MakeID(),
		Name:         name,
		Rule:         string(ledger.ParseRule(name)),
		EventDate:    eventDate,
		Status:       model.DividendStatusPending,
		ProfitAmount: profit,
		CreatedAt:    Now,
	}
	if err := repository.NewDividendRepository(db).InsertDividendEvent(context.Background(), &ev); err != nil {
		t.Fatalf("Failed to create test dividend event: %v", err)
	}
	return ev
}
