package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/model"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/service"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/testutil"
)

// TestCompanyService_AutoInvestOnRegistration covers the registration
// side effect.
//
// WHY: Registration fees belong to the Company Account. They must be
// converted into shares as soon as they are collected.
func TestCompanyService_AutoInvestOnRegistration(t *testing.T) {
	ctx := context.Background()

	t.Run("paid registration is invested", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		testutil.SetSharePrice(t, db, testutil.CurrentPeriod, 40)
		company := testutil.CreateCompanyAccount(t, db)

		result, err := svc.Members.Register(ctx, request.RegisterMemberRequest{
			Name:                   "Nadia",
			MembershipID:           "2025-101",
			PayingMembershipAmount: 2000,
			PaymentStatus:          model.PaymentStatusPaid,
		})
		if err != nil {
			t.Fatalf("Register() returned unexpected error: %v", err)
		}
		if result.AutoInvestError != "" {
			t.Fatalf("Expected auto-invest to succeed, got %q", result.AutoInvestError)
		}
		if result.AutoInvest == nil {
			t.Fatal("Expected an auto-invest booking")
		}

		txn := result.AutoInvest.Transaction
		if txn.Source != model.CompanySourceRegistration || txn.Amount != 2000 || !almostEqual(txn.Shares, 50) {
			t.Errorf("Unexpected booking %+v", txn)
		}
		if txn.Description != "registration=2000.00;fine=0.00" {
			t.Errorf("Unexpected description %q", txn.Description)
		}

		pool, err := svc.Company.Pool(ctx)
		if err != nil {
			t.Fatalf("Pool() returned unexpected error: %v", err)
		}
		if !almostEqual(pool.MembershipShares, 50) || pool.FineShares != 0 || pool.DividendShares != 0 {
			t.Errorf("Unexpected pool %+v", pool)
		}

		stored, _ := svc.Members.GetMember(ctx, company.ID)
		if !almostEqual(stored.TotalShares, 50) {
			t.Errorf("Expected company account to hold 50 shares, got %v", stored.TotalShares)
		}
	})

	t.Run("failure does not undo registration", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		testutil.CreateCompanyAccount(t, db)

		result, err := svc.Members.Register(ctx, request.RegisterMemberRequest{
			Name:                   "Nadia",
			MembershipID:           "2025-101",
			PayingMembershipAmount: 2000,
			PaymentStatus:          model.PaymentStatusPaid,
		})
		if err != nil {
			t.Fatalf("Register() returned unexpected error: %v", err)
		}
		if result.AutoInvest != nil || result.AutoInvestError == "" {
			t.Errorf("Expected auto-invest error without price, got %+v", result)
		}
		if _, err := svc.Members.GetMemberByMembershipID(ctx, "2025-101"); err != nil {
			t.Errorf("Expected member to be stored, got %v", err)
		}
	})

	t.Run("unpaid registration is not invested", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		testutil.SetSharePrice(t, db, testutil.CurrentPeriod, 40)
		testutil.CreateCompanyAccount(t, db)

		result, err := svc.Members.Register(ctx, request.RegisterMemberRequest{
			Name:         "Nadia",
			MembershipID: "2025-101",
		})
		if err != nil {
			t.Fatalf("Register() returned unexpected error: %v", err)
		}
		if result.AutoInvest != nil || result.AutoInvestError != "" {
			t.Errorf("Expected no auto-invest, got %+v", result)
		}
	})
}

// TestCompanyService_InvestCurrentBalance tests converting the outstanding
// balance into shares.
func TestCompanyService_InvestCurrentBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("mixed balance is split by source", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		testutil.SetSharePrice(t, db, testutil.CurrentPeriod, 40)
		company := testutil.CreateCompanyAccount(t, db)
		testutil.NewMember().
			Paying(1000, model.PaymentStatusDue).
			WithInvestment(testutil.CurrentPeriod, 400, 200, 40).
			Build(t, db)

		booking, err := svc.Company.InvestCurrentBalance(ctx, service.TriggerManual)
		if err != nil {
			t.Fatalf("InvestCurrentBalance() returned unexpected error: %v", err)
		}
		if booking == nil {
			t.Fatal("Expected a booking")
		}
		if booking.Transaction.Source != model.CompanySourceMixed {
			t.Errorf("Expected source mixed, got %s", booking.Transaction.Source)
		}
		if booking.Registration != 1000 || booking.Fine != 200 {
			t.Errorf("Expected 1000 registration and 200 fine, got %v / %v", booking.Registration, booking.Fine)
		}
		if !almostEqual(booking.Transaction.Shares, 30) {
			t.Errorf("Expected 30 shares, got %v", booking.Transaction.Shares)
		}
		if booking.Investment.Fine != 0 || booking.Investment.Amount != 1200 {
			t.Errorf("Unexpected company investment %+v", booking.Investment)
		}

		pool, err := svc.Company.Pool(ctx)
		if err != nil {
			t.Fatalf("Pool() returned unexpected error: %v", err)
		}
		if !almostEqual(pool.MembershipShares, 25) || !almostEqual(pool.FineShares, 5) {
			t.Errorf("Expected 25 membership and 5 fine shares, got %+v", pool)
		}
		if !almostEqual(pool.TotalShares(), 30) {
			t.Errorf("Expected pool total 30, got %v", pool.TotalShares())
		}

		stored, _ := svc.Members.GetMember(ctx, company.ID)
		if !almostEqual(stored.TotalShares, pool.TotalShares()) {
			t.Errorf("Company total %v differs from pool %v", stored.TotalShares, pool.TotalShares())
		}

		again, err := svc.Company.InvestCurrentBalance(ctx, service.TriggerManual)
		if err != nil {
			t.Fatalf("Second InvestCurrentBalance() returned unexpected error: %v", err)
		}
		if again != nil {
			t.Errorf("Expected nothing left to invest, got %+v", again)
		}
	})

	t.Run("zero balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		testutil.SetSharePrice(t, db, testutil.CurrentPeriod, 40)
		testutil.CreateCompanyAccount(t, db)

		booking, err := svc.Company.InvestCurrentBalance(ctx, service.TriggerSchedule)
		if err != nil {
			t.Fatalf("InvestCurrentBalance() returned unexpected error: %v", err)
		}
		if booking != nil {
			t.Errorf("Expected nil booking, got %+v", booking)
		}
		txns, _ := svc.Company.Transactions(ctx)
		if len(txns) != 0 {
			t.Errorf("Expected no transactions, got %d", len(txns))
		}
	})

	t.Run("company account missing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		testutil.SetSharePrice(t, db, testutil.CurrentPeriod, 40)

		_, err := svc.Company.InvestCurrentBalance(ctx, service.TriggerManual)
		if !errors.Is(err, apperrors.ErrMemberNotFound) {
			t.Errorf("Expected ErrMemberNotFound, got %v", err)
		}
	})

	t.Run("price missing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		testutil.CreateCompanyAccount(t, db)

		_, err := svc.Company.InvestCurrentBalance(ctx, service.TriggerManual)
		if !errors.Is(err, apperrors.ErrPriceNotSet) {
			t.Errorf("Expected ErrPriceNotSet, got %v", err)
		}
	})
}
