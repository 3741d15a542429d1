package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/model"
)

type fakeInvestor struct {
	calls    int
	triggers []string
	booking  *model.CompanyBooking
	err      error
}

func (f *fakeInvestor) InvestCurrentBalance(_ context.Context, trigger string) (*model.CompanyBooking, error) {
	f.calls++
	f.triggers = append(f.triggers, trigger)
	return f.booking, f.err
}

func TestAddBalanceSweep(t *testing.T) {
	t.Run("empty spec schedules nothing", func(t *testing.T) {
		s := New(zerolog.Nop())
		if err := s.AddBalanceSweep("", &fakeInvestor{}, "schedule"); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if s.Jobs() != 0 {
			t.Errorf("Expected 0 jobs, got %d", s.Jobs())
		}
	})

	t.Run("valid spec", func(t *testing.T) {
		s := New(zerolog.Nop())
		if err := s.AddBalanceSweep("0 2 * * *", &fakeInvestor{}, "schedule"); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if s.Jobs() != 1 {
			t.Errorf("Expected 1 job, got %d", s.Jobs())
		}
		s.Start()
		s.Stop(context.Background())
	})

	t.Run("invalid spec", func(t *testing.T) {
		s := New(zerolog.Nop())
		if err := s.AddBalanceSweep("every night", &fakeInvestor{}, "schedule"); err == nil {
			t.Error("Expected error for invalid cron spec")
		}
	})
}

func TestRunBalanceSweep(t *testing.T) {
	cases := []struct {
		name     string
		investor *fakeInvestor
	}{
		{"books", &fakeInvestor{booking: &model.CompanyBooking{Transaction: model.CompanyTransaction{ID: "tx-1", Amount: 500}}}},
		{"nothing to invest", &fakeInvestor{}},
		{"failure is logged", &fakeInvestor{err: errors.New("no price")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := New(zerolog.Nop())
			s.runBalanceSweep(tc.investor, "schedule")
			if tc.investor.calls != 1 || tc.investor.triggers[0] != "schedule" {
				t.Errorf("Expected one call with trigger schedule, got %d %v", tc.investor.calls, tc.investor.triggers)
			}
		})
	}
}
