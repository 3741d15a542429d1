package service_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/testutil"
)

func investJune(amount, fine float64) request.RecordInvestmentRequest {
	return request.RecordInvestmentRequest{Year: 2025, Month: "Jun", Amount: amount, Fine: fine}
}

func withdrawJune(amount, price float64) request.RecordWithdrawalRequest {
	return request.RecordWithdrawalRequest{Year: 2025, Month: "June", Amount: amount, SharePrice: price}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

// TestLedgerService_RecordInvestment tests investment recording.
//
// WHY: Investments create shares. The preconditions, their order and the
// at-most-one-per-month rule protect the share register from double counting.
func TestLedgerService_RecordInvestment(t *testing.T) {
	ctx := context.Background()

	t.Run("first investment of the month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		testutil.SetSharePrice(t, db, testutil.CurrentPeriod, 30)
		member := testutil.CreateMember(t, db, "Rahim")

		result, err := svc.Ledger.RecordInvestment(ctx, member.ID, investJune(3000, 0))
		if err != nil {
			t.Fatalf("RecordInvestment() returned unexpected error: %v", err)
		}

		if result.Investment.Shares != 100 {
			t.Errorf("Expected 100 shares, got %v", result.Investment.Shares)
		}
		if result.TotalShares != 100 {
			t.Errorf("Expected total shares 100, got %v", result.TotalShares)
		}
		if result.Investment.Fine != 0 {
			t.Errorf("Expected fine 0, got %v", result.Investment.Fine)
		}
		if result.Investment.SystemReceipt != "JUN-001" {
			t.Errorf("Expected receipt JUN-001, got %s", result.Investment.SystemReceipt)
		}
		if result.CompanyBooking != nil {
			t.Error("Expected no company booking for a regular member")
		}

		stored, err := svc.Members.GetMember(ctx, member.ID)
		if err != nil {
			t.Fatalf("GetMember() returned unexpected error: %v", err)
		}
		if stored.TotalShares != 100 {
			t.Errorf("Expected stored total shares 100, got %v", stored.TotalShares)
		}
		if act, ok := stored.Activities.Get(2025, "June"); !ok || act.Investment == nil {
			t.Error("Expected investment readable under the June variant key")
		}
	})

	t.Run("second investment in the same month is rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		testutil.SetSharePrice(t, db, testutil.CurrentPeriod, 30)
		member := testutil.CreateMember(t, db, "Rahim")

		if _, err := svc.Ledger.RecordInvestment(ctx, member.ID, investJune(3000, 0)); err != nil {
			t.Fatalf("First RecordInvestment() returned unexpected error: %v", err)
		}
		_, err := svc.Ledger.RecordInvestment(ctx, member.ID, investJune(500, 0))
		if !errors.Is(err, apperrors.ErrDuplicateInvestment) {
			t.Fatalf("Expected ErrDuplicateInvestment, got %v", err)
		}

		stored, _ := svc.Members.GetMember(ctx, member.ID)
		if stored.TotalShares != 100 {
			t.Errorf("Expected total shares to stay 100, got %v", stored.TotalShares)
		}
		inv, _ := stored.Activities.Get(2025, "Jun")
		if inv.Investment.Amount != 3000 {
			t.Errorf("Expected stored amount 3000, got %v", inv.Investment.Amount)
		}
	})

	t.Run("preconditions are checked in order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		member := testutil.CreateMember(t, db, "Rahim")

		tests := []struct {
			name     string
			memberID string
			req      request.RecordInvestmentRequest
			want     error
		}{
			{"bad amount before locked period", member.ID, request.RecordInvestmentRequest{Year: 2024, Month: "Jan", Amount: 0}, apperrors.ErrValidation},
			{"negative fine", member.ID, investJune(100, -1), apperrors.ErrValidation},
			{"locked period before unknown member", testutil.MakeID(), request.RecordInvestmentRequest{Year: 2025, Month: "May", Amount: 100}, apperrors.ErrPeriodLocked},
			{"unknown member before missing price", testutil.MakeID(), investJune(100, 0), apperrors.ErrMemberNotFound},
			{"missing price", member.ID, investJune(100, 0), apperrors.ErrPriceNotSet},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.Ledger.RecordInvestment(ctx, tt.memberID, tt.req)
				if !errors.Is(err, tt.want) {
					t.Errorf("Expected %v, got %v", tt.want, err)
				}
			})
		}

		stored, _ := svc.Members.GetMember(ctx, member.ID)
		if len(stored.Activities.Periods()) != 0 || stored.TotalShares != 0 {
			t.Errorf("Expected no state written, got %+v", stored.Activities)
		}
	})

	t.Run("receipts are sequential across members", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		testutil.SetSharePrice(t, db, testutil.CurrentPeriod, 30)

		for i, want := range []string{"JUN-001", "JUN-002", "JUN-003"} {
			member := testutil.NewMember().Build(t, db)
			result, err := svc.Ledger.RecordInvestment(ctx, member.ID, investJune(float64(100*(i+1)), 0))
			if err != nil {
				t.Fatalf("RecordInvestment() returned unexpected error: %v", err)
			}
			if result.Investment.SystemReceipt != want {
				t.Errorf("Investment %d: expected receipt %s, got %s", i, want, result.Investment.SystemReceipt)
			}
		}
	})

	t.Run("company account books a transaction and rejects a second investment", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		testutil.SetSharePrice(t, db, testutil.CurrentPeriod, 30)
		company := testutil.CreateCompanyAccount(t, db)

		first, err := svc.Ledger.RecordInvestment(ctx, company.ID, investJune(1500, 20))
		if err != nil {
			t.Fatalf("RecordInvestment() returned unexpected error: %v", err)
		}
		if first.Investment.Fine != 0 {
			t.Errorf("Expected fine forced to 0, got %v", first.Investment.Fine)
		}
		if first.CompanyBooking == nil || first.CompanyBookingError != "" {
			t.Fatalf("Expected a company booking, got error %q", first.CompanyBookingError)
		}

		_, err = svc.Ledger.RecordInvestment(ctx, company.ID, investJune(500, 0))
		if !errors.Is(err, apperrors.ErrDuplicateInvestment) {
			t.Fatalf("Expected ErrDuplicateInvestment, got %v", err)
		}

		member, err := svc.Members.GetMember(ctx, company.ID)
		if err != nil {
			t.Fatalf("GetMember() returned unexpected error: %v", err)
		}
		if !almostEqual(member.TotalShares, 50) {
			t.Errorf("Expected total shares to stay 50, got %v", member.TotalShares)
		}

		txns, err := svc.Company.Transactions(ctx)
		if err != nil {
			t.Fatalf("Transactions() returned unexpected error: %v", err)
		}
		if len(txns) != 1 {
			t.Fatalf("Expected 1 company transaction, got %d", len(txns))
		}
		if txns[0].Amount != 1500 || txns[0].Source != "registration" {
			t.Errorf("Unexpected booking %+v", txns[0])
		}
	})
}

// TestLedgerService_RecordWithdrawal tests withdrawal recording.
//
// WHY: A withdrawal must never drive a member's share balance negative.
func TestLedgerService_RecordWithdrawal(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*testutil.Services, string) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		testutil.SetSharePrice(t, db, testutil.CurrentPeriod, 30)
		member := testutil.NewMember().
			WithInvestment(period.New(2025, time.May), 3000, 0, 30).
			Build(t, db)
		return svc, member.ID
	}

	t.Run("withdraws within balance", func(t *testing.T) {
		svc, memberID := setup(t)

		result, err := svc.Ledger.RecordWithdrawal(ctx, memberID, withdrawJune(600, 30))
		if err != nil {
			t.Fatalf("RecordWithdrawal() returned unexpected error: %v", err)
		}
		if !almostEqual(result.Withdrawal.Shares, 20) || !almostEqual(result.TotalShares, 80) {
			t.Errorf("Expected 20 shares withdrawn leaving 80, got %v / %v", result.Withdrawal.Shares, result.TotalShares)
		}
		if result.Withdrawal.Status != "completed" {
			t.Errorf("Expected status completed, got %s", result.Withdrawal.Status)
		}
	})

	t.Run("rejects withdrawal beyond balance", func(t *testing.T) {
		svc, memberID := setup(t)

		_, err := svc.Ledger.RecordWithdrawal(ctx, memberID, withdrawJune(3600, 30))
		if !errors.Is(err, apperrors.ErrInsufficientShares) {
			t.Fatalf("Expected ErrInsufficientShares, got %v", err)
		}
		stored, _ := svc.Members.GetMember(ctx, memberID)
		if stored.TotalShares != 100 {
			t.Errorf("Expected total shares to stay 100, got %v", stored.TotalShares)
		}
	})

	t.Run("allows withdrawing the full balance", func(t *testing.T) {
		svc, memberID := setup(t)

		result, err := svc.Ledger.RecordWithdrawal(ctx, memberID, withdrawJune(3000, 30))
		if err != nil {
			t.Fatalf("RecordWithdrawal() returned unexpected error: %v", err)
		}
		if result.TotalShares != 0 {
			t.Errorf("Expected zero balance, got %v", result.TotalShares)
		}
	})

	t.Run("preconditions are checked in order", func(t *testing.T) {
		svc, memberID := setup(t)

		tests := []struct {
			name string
			req  request.RecordWithdrawalRequest
			want error
		}{
			{"missing share price first", request.RecordWithdrawalRequest{Year: 2024, Month: "Jan", Amount: 0, SharePrice: 0}, apperrors.ErrPriceRequired},
			{"bad amount", request.RecordWithdrawalRequest{Year: 2024, Month: "Jan", Amount: -5, SharePrice: 30}, apperrors.ErrValidation},
			{"locked period", request.RecordWithdrawalRequest{Year: 2025, Month: "May", Amount: 100, SharePrice: 30}, apperrors.ErrPeriodLocked},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.Ledger.RecordWithdrawal(ctx, memberID, tt.req)
				if !errors.Is(err, tt.want) {
					t.Errorf("Expected %v, got %v", tt.want, err)
				}
			})
		}
	})

	t.Run("requires a configured price for the period", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		member := testutil.NewMember().
			WithInvestment(period.New(2025, time.May), 3000, 0, 30).
			Build(t, db)

		_, err := svc.Ledger.RecordWithdrawal(ctx, member.ID, withdrawJune(300, 30))
		if !errors.Is(err, apperrors.ErrPriceNotSet) {
			t.Fatalf("Expected ErrPriceNotSet, got %v", err)
		}
	})
}

// TestLedgerService_ShareConservation checks that the stored total always
// equals investment shares minus withdrawal shares.
func TestLedgerService_ShareConservation(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestServices(t, db)
	testutil.SetSharePrice(t, db, testutil.CurrentPeriod, 32.5)
	member := testutil.NewMember().
		WithInvestment(period.New(2025, time.March), 1000, 0, 25).
		WithInvestment(period.New(2025, time.April), 1250, 10, 27.5).
		WithWithdrawal(period.New(2025, time.April), 300, 27.5).
		Build(t, db)

	if _, err := svc.Ledger.RecordInvestment(ctx, member.ID, investJune(975, 0)); err != nil {
		t.Fatalf("RecordInvestment() returned unexpected error: %v", err)
	}
	if _, err := svc.Ledger.RecordWithdrawal(ctx, member.ID, withdrawJune(650, 32.5)); err != nil {
		t.Fatalf("RecordWithdrawal() returned unexpected error: %v", err)
	}

	stored, err := svc.Members.GetMember(ctx, member.ID)
	if err != nil {
		t.Fatalf("GetMember() returned unexpected error: %v", err)
	}
	invested, withdrawn := stored.Activities.SumShares()
	if !almostEqual(stored.TotalShares, invested-withdrawn) {
		t.Errorf("Expected total %v, got %v", invested-withdrawn, stored.TotalShares)
	}
	if !almostEqual(stored.TotalShares, ledger.TotalShares(stored.Activities)) {
		t.Errorf("Stored total %v differs from recomputed %v", stored.TotalShares, ledger.TotalShares(stored.Activities))
	}
}

// TestLedgerService_Cumulative tests cumulative valuation.
func TestLedgerService_Cumulative(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestServices(t, db)
	testutil.SetSharePrice(t, db, period.New(2025, time.May), 20)
	testutil.SetSharePrice(t, db, testutil.CurrentPeriod, 30)
	member := testutil.NewMember().
		WithInvestment(period.New(2025, time.April), 800, 0, 25).
		WithInvestment(period.New(2025, time.May), 1000, 50, 20).
		WithInvestment(testutil.CurrentPeriod, 3000, 0, 30).
		Build(t, db)

	t.Run("values each period at its own price", func(t *testing.T) {
		got, err := svc.Ledger.Cumulative(ctx, member.ID, testutil.CurrentPeriod)
		if err != nil {
			t.Fatalf("Cumulative() returned unexpected error: %v", err)
		}
		if got.TotalAmount != 4000 {
			t.Errorf("Expected amount 4000, got %v", got.TotalAmount)
		}
		if !almostEqual(got.TotalShares, 150) {
			t.Errorf("Expected 150 shares, got %v", got.TotalShares)
		}
		if len(got.MissingPrices) != 1 || got.MissingPrices[0] != "2025-Apr" {
			t.Errorf("Expected 2025-Apr flagged as missing, got %v", got.MissingPrices)
		}
	})

	t.Run("stops at the cutoff", func(t *testing.T) {
		got, err := svc.Ledger.Cumulative(ctx, member.ID, period.New(2025, time.May))
		if err != nil {
			t.Fatalf("Cumulative() returned unexpected error: %v", err)
		}
		if got.TotalAmount != 1000 || !almostEqual(got.TotalShares, 50) {
			t.Errorf("Expected 1000 / 50, got %v / %v", got.TotalAmount, got.TotalShares)
		}
	})

	t.Run("cutoff without price fails", func(t *testing.T) {
		_, err := svc.Ledger.Cumulative(ctx, member.ID, period.New(2025, time.April))
		if !errors.Is(err, apperrors.ErrPriceNotSet) {
			t.Errorf("Expected ErrPriceNotSet, got %v", err)
		}
	})

	t.Run("unknown member", func(t *testing.T) {
		_, err := svc.Ledger.Cumulative(ctx, testutil.MakeID(), testutil.CurrentPeriod)
		if !errors.Is(err, apperrors.ErrMemberNotFound) {
			t.Errorf("Expected ErrMemberNotFound, got %v", err)
		}
	})
}
