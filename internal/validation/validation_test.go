package validation

import (
	"errors"
	"testing"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/api/request"
)

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("Expected *validation.Error, got %T (%v)", err, err)
	}
	return verr.Fields
}

func TestValidateUUID(t *testing.T) {
	if err := ValidateUUID("8d2c7c43-5d8f-4e0b-9d0a-1c3a5e9f2b11"); err != nil {
		t.Errorf("Expected valid UUID, got %v", err)
	}
	if err := ValidateUUID("not-a-uuid"); !errors.Is(err, ErrInvalidUUID) {
		t.Errorf("Expected ErrInvalidUUID, got %v", err)
	}
}

func TestValidateRegisterMember(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		req := request.RegisterMemberRequest{
			Name:                   "Ayesha Rahman",
			Phone:                  "+880 1711-000000",
			MembershipID:           "2025-010",
			JoiningDate:            "2025-03-01",
			PayingMembershipAmount: 500,
			PaymentStatus:          "paid",
		}
		if err := ValidateRegisterMember(req); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("reports every failing field", func(t *testing.T) {
		req := request.RegisterMemberRequest{
			Phone:                  "call me",
			JoiningDate:            "01/03/2025",
			PayingMembershipAmount: -1,
			PaymentStatus:          "late",
		}
		fields := fieldsOf(t, ValidateRegisterMember(req))
		for _, name := range []string{"name", "membershipId", "phone", "joiningDate", "payingMembershipAmount", "paymentStatus"} {
			if _, ok := fields[name]; !ok {
				t.Errorf("Expected error for field %s, got %v", name, fields)
			}
		}
	})

	t.Run("blank name", func(t *testing.T) {
		fields := fieldsOf(t, ValidateRegisterMember(request.RegisterMemberRequest{Name: "   ", MembershipID: "1"}))
		if fields["name"] != "is required" {
			t.Errorf("Expected blank name to be required, got %v", fields)
		}
	})
}

func TestValidateImportMembers(t *testing.T) {
	t.Run("empty import", func(t *testing.T) {
		fields := fieldsOf(t, ValidateImportMembers(request.ImportMembersRequest{}))
		if _, ok := fields["members"]; !ok {
			t.Errorf("Expected members error, got %v", fields)
		}
	})

	t.Run("duplicate membership IDs", func(t *testing.T) {
		req := request.ImportMembersRequest{Members: []request.ImportMemberRequest{
			{RegisterMemberRequest: request.RegisterMemberRequest{Name: "A", MembershipID: "2024-001"}},
			{RegisterMemberRequest: request.RegisterMemberRequest{Name: "B", MembershipID: "2024-001"}},
		}}
		fields := fieldsOf(t, ValidateImportMembers(req))
		if fields["members[1].membershipId"] != "duplicates members[0]" {
			t.Errorf("Expected duplicate error on members[1], got %v", fields)
		}
	})
}

func TestValidateRecordInvestment(t *testing.T) {
	valid := request.RecordInvestmentRequest{Year: 2025, Month: "Sept", Amount: 3000, Fine: 50}
	if err := ValidateRecordInvestment(valid); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	tests := []struct {
		name  string
		req   request.RecordInvestmentRequest
		field string
	}{
		{"zero amount", request.RecordInvestmentRequest{Year: 2025, Month: "Jan", Amount: 0}, "amount"},
		{"negative fine", request.RecordInvestmentRequest{Year: 2025, Month: "Jan", Amount: 10, Fine: -5}, "fine"},
		{"unknown month", request.RecordInvestmentRequest{Year: 2025, Month: "Smarch", Amount: 10}, "month"},
		{"missing year", request.RecordInvestmentRequest{Month: "Jan", Amount: 10}, "year"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := fieldsOf(t, ValidateRecordInvestment(tt.req))
			if _, ok := fields[tt.field]; !ok {
				t.Errorf("Expected error for %s, got %v", tt.field, fields)
			}
		})
	}
}

func TestValidateRecordWithdrawal(t *testing.T) {
	if err := ValidateRecordWithdrawal(request.RecordWithdrawalRequest{Year: 2025, Month: "Jun"}); err != nil {
		t.Errorf("Expected amounts to be left to the ledger, got %v", err)
	}
	fields := fieldsOf(t, ValidateRecordWithdrawal(request.RecordWithdrawalRequest{Year: 2025}))
	if _, ok := fields["month"]; !ok {
		t.Errorf("Expected month error, got %v", fields)
	}
}

func TestValidateDeclareDividend(t *testing.T) {
	if err := ValidateDeclareDividend(request.DeclareDividendRequest{
		Name: "2025 dividend except last 3 months", EventDate: "2025-06-15", ProfitAmount: 1000,
	}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	fields := fieldsOf(t, ValidateDeclareDividend(request.DeclareDividendRequest{EventDate: "June", ProfitAmount: 0}))
	for _, name := range []string{"name", "eventDate", "profitAmount"} {
		if _, ok := fields[name]; !ok {
			t.Errorf("Expected error for %s, got %v", name, fields)
		}
	}
}

func TestValidateSetSharePrice(t *testing.T) {
	if err := ValidateSetSharePrice(request.SetSharePriceRequest{Price: 30}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	fields := fieldsOf(t, ValidateSetSharePrice(request.SetSharePriceRequest{Price: -1}))
	if _, ok := fields["price"]; !ok {
		t.Errorf("Expected price error, got %v", fields)
	}
}
