package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/testutil"
)

func TestMemberService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("stores member and lookups find it", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)

		result, err := svc.Members.Register(ctx, request.RegisterMemberRequest{
			Name:         "  Farhana  ",
			Phone:        "+8801711000000",
			MembershipID: "2025-010",
			JoiningDate:  "2025-03-01",
			IsDirector:   true,
		})
		if err != nil {
			t.Fatalf("Register() returned unexpected error: %v", err)
		}
		m := result.Member
		if m.Name != "Farhana" || !m.IsDirector {
			t.Errorf("Unexpected member %+v", m)
		}
		if m.JoiningDate == nil || !m.JoiningDate.Equal(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("Unexpected joining date %v", m.JoiningDate)
		}

		byPhone, err := svc.Members.GetMemberByPhone(ctx, "+8801711000000")
		if err != nil || byPhone.ID != m.ID {
			t.Errorf("GetMemberByPhone() = %v, %v", byPhone.ID, err)
		}
		byMembership, err := svc.Members.GetMemberByMembershipID(ctx, " 2025-010 ")
		if err != nil || byMembership.ID != m.ID {
			t.Errorf("GetMemberByMembershipID() = %v, %v", byMembership.ID, err)
		}

		all, err := svc.Members.GetMembers(ctx)
		if err != nil || len(all) != 1 {
			t.Errorf("Expected 1 member, got %d (%v)", len(all), err)
		}
	})

	t.Run("duplicate membership ID", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		req := request.RegisterMemberRequest{Name: "Farhana", MembershipID: "2025-010"}

		if _, err := svc.Members.Register(ctx, req); err != nil {
			t.Fatalf("Register() returned unexpected error: %v", err)
		}
		_, err := svc.Members.Register(ctx, req)
		if !errors.Is(err, apperrors.ErrDuplicateEntry) {
			t.Errorf("Expected ErrDuplicateEntry, got %v", err)
		}
	})

	t.Run("invalid joining date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)

		_, err := svc.Members.Register(ctx, request.RegisterMemberRequest{
			Name: "Farhana", MembershipID: "2025-010", JoiningDate: "01/03/2025",
		})
		if !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("Expected ErrValidation, got %v", err)
		}
	})

	t.Run("unknown member", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)

		if _, err := svc.Members.GetMember(ctx, testutil.MakeID()); !errors.Is(err, apperrors.ErrMemberNotFound) {
			t.Errorf("Expected ErrMemberNotFound, got %v", err)
		}
		if _, err := svc.Members.GetMemberByPhone(ctx, "000"); !errors.Is(err, apperrors.ErrMemberNotFound) {
			t.Errorf("Expected ErrMemberNotFound, got %v", err)
		}
	})
}

// TestMemberService_Import tests importing legacy member documents.
//
// WHY: Older exports spell months differently and store investments flat
// under the month key. Import must normalize them once, so lookups by any
// spelling work afterwards.
func TestMemberService_Import(t *testing.T) {
	ctx := context.Background()

	raw := func(t *testing.T, v any) json.RawMessage {
		t.Helper()
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("Failed to marshal activity: %v", err)
		}
		return b
	}

	t.Run("normalizes and reprices", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)
		testutil.SetSharePrice(t, db, period.New(2024, time.September), 20)

		stale := 999.0
		req := request.ImportMembersRequest{Members: []request.ImportMemberRequest{{
			RegisterMemberRequest: request.RegisterMemberRequest{Name: "Legacy", MembershipID: "2024-001"},
			Activities: map[string]map[string]json.RawMessage{
				"2024": {
					"Sept": raw(t, map[string]any{"investment": map[string]any{"amount": 1000, "sharePrice": 10}}),
					"10":   raw(t, map[string]any{"amount": 500, "sharePrice": 25}),
				},
			},
			TotalShares: &stale,
		}}}

		members, err := svc.Members.Import(ctx, req)
		if err != nil {
			t.Fatalf("Import() returned unexpected error: %v", err)
		}
		if len(members) != 1 {
			t.Fatalf("Expected 1 imported member, got %d", len(members))
		}

		stored, err := svc.Members.GetMemberByMembershipID(ctx, "2024-001")
		if err != nil {
			t.Fatalf("GetMemberByMembershipID() returned unexpected error: %v", err)
		}
		sept, ok := stored.Activities.Get(2024, "September")
		if !ok || sept.Investment == nil {
			t.Fatal("Expected September investment readable by full month name")
		}
		if sept.Investment.SharePrice != 20 || !almostEqual(sept.Investment.Shares, 50) {
			t.Errorf("Expected repricing at 20 to 50 shares, got %+v", sept.Investment)
		}
		oct, ok := stored.Activities.Get(2024, "Oct")
		if !ok || oct.Investment == nil || !almostEqual(oct.Investment.Shares, 20) {
			t.Errorf("Expected flat October investment at stored price, got %+v", oct)
		}
		if !almostEqual(stored.TotalShares, 70) {
			t.Errorf("Expected recomputed total 70, got %v", stored.TotalShares)
		}
	})

	t.Run("invalid month key stores nothing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)

		req := request.ImportMembersRequest{Members: []request.ImportMemberRequest{
			{RegisterMemberRequest: request.RegisterMemberRequest{Name: "Good", MembershipID: "2024-001"}},
			{
				RegisterMemberRequest: request.RegisterMemberRequest{Name: "Bad", MembershipID: "2024-002"},
				Activities: map[string]map[string]json.RawMessage{
					"2024": {"Smarch": raw(t, map[string]any{"amount": 10})},
				},
			},
		}}

		_, err := svc.Members.Import(ctx, req)
		if !errors.Is(err, apperrors.ErrValidation) {
			t.Fatalf("Expected ErrValidation, got %v", err)
		}
		all, _ := svc.Members.GetMembers(ctx)
		if len(all) != 0 {
			t.Errorf("Expected no members stored, got %d", len(all))
		}
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		tests := []struct {
			name string
			act  map[string]any
		}{
			{"negative investment", map[string]any{"investment": map[string]any{"amount": -100, "sharePrice": 10}}},
			{"zero investment", map[string]any{"amount": 0, "sharePrice": 10}},
			{"negative fine", map[string]any{"investment": map[string]any{"amount": 100, "fine": -5, "sharePrice": 10}}},
			{"negative withdrawal", map[string]any{"withdrawal": map[string]any{"amount": -50, "sharePrice": 10}}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				db := testutil.SetupTestDB(t)
				svc := testutil.NewTestServices(t, db)

				req := request.ImportMembersRequest{Members: []request.ImportMemberRequest{{
					RegisterMemberRequest: request.RegisterMemberRequest{Name: "Legacy", MembershipID: "2024-001"},
					Activities: map[string]map[string]json.RawMessage{
						"2024": {"Mar": raw(t, tt.act)},
					},
				}}}
				_, err := svc.Members.Import(ctx, req)
				if !errors.Is(err, apperrors.ErrValidation) {
					t.Fatalf("Expected ErrValidation, got %v", err)
				}
				all, _ := svc.Members.GetMembers(ctx)
				if len(all) != 0 {
					t.Errorf("Expected no members stored, got %d", len(all))
				}
			})
		}
	})

	t.Run("over-withdrawal is floored at zero and logged", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		var logs bytes.Buffer
		logger := zerolog.New(&logs)
		opts := testutil.TestOptions(testutil.Now)
		opts.Logger = &logger
		svc := testutil.NewTestServicesWith(t, db, opts, nil)

		req := request.ImportMembersRequest{Members: []request.ImportMemberRequest{{
			RegisterMemberRequest: request.RegisterMemberRequest{Name: "Legacy", MembershipID: "2024-001"},
			Activities: map[string]map[string]json.RawMessage{
				"2024": {"Mar": raw(t, map[string]any{
					"investment": map[string]any{"amount": 100, "sharePrice": 10},
					"withdrawal": map[string]any{"amount": 300, "sharePrice": 10},
				})},
			},
		}}}
		if _, err := svc.Members.Import(ctx, req); err != nil {
			t.Fatalf("Import() returned unexpected error: %v", err)
		}
		stored, err := svc.Members.GetMemberByMembershipID(ctx, "2024-001")
		if err != nil {
			t.Fatalf("GetMemberByMembershipID() returned unexpected error: %v", err)
		}
		if stored.TotalShares != 0 {
			t.Errorf("Expected total shares floored at 0, got %v", stored.TotalShares)
		}
		if !strings.Contains(logs.String(), "imported withdrawals exceed investments") {
			t.Errorf("Expected an over-withdrawal warning, got logs %q", logs.String())
		}
	})

	t.Run("duplicate within batch rolls back", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestServices(t, db)

		doc := request.ImportMemberRequest{RegisterMemberRequest: request.RegisterMemberRequest{Name: "Twin", MembershipID: "2024-001"}}
		_, err := svc.Members.Import(ctx, request.ImportMembersRequest{Members: []request.ImportMemberRequest{doc, doc}})
		if !errors.Is(err, apperrors.ErrDuplicateEntry) {
			t.Fatalf("Expected ErrDuplicateEntry, got %v", err)
		}
		all, _ := svc.Members.GetMembers(ctx)
		if len(all) != 0 {
			t.Errorf("Expected rollback, got %d members", len(all))
		}
	})
}
