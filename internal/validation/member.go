package validation

import (
	"fmt"
	"strings"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/api/request"
)

// ValidateRegisterMember validates a member registration request.
//
// Required fields:
//   - name: non-blank, at most 200 characters
//   - membershipId: non-blank, at most 50 characters
//
// Optional fields (validated if provided):
//   - phone: digits with an optional leading "+"
//   - joiningDate, dateOfJoining: YYYY-MM-DD
//   - paymentStatus: "paid" or "due"
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateRegisterMember(req request.RegisterMemberRequest) error {
	fields := make(map[string]string)
	if err := validateStruct(req, fields); err != nil {
		return err
	}
	checkMember(req, "", fields)
	return result(fields)
}

// ValidateImportMembers validates a legacy import. Activity documents are
// checked when they are normalized.
func ValidateImportMembers(req request.ImportMembersRequest) error {
	fields := make(map[string]string)
	if err := validateStruct(req, fields); err != nil {
		return err
	}

	seen := make(map[string]int, len(req.Members))
	for i, m := range req.Members {
		prefix := fmt.Sprintf("members[%d].", i)
		checkMember(m.RegisterMemberRequest, prefix, fields)

		id := strings.TrimSpace(m.MembershipID)
		if first, dup := seen[id]; dup && id != "" {
			fields[prefix+"membershipId"] = fmt.Sprintf("duplicates members[%d]", first)
		}
		seen[id] = i
	}
	return result(fields)
}

func checkMember(req request.RegisterMemberRequest, prefix string, fields map[string]string) {
	if req.Name != "" && strings.TrimSpace(req.Name) == "" {
		fields[prefix+"name"] = "is required"
	}
	if req.MembershipID != "" && strings.TrimSpace(req.MembershipID) == "" {
		fields[prefix+"membershipId"] = "is required"
	}
	if req.Phone != "" && !validPhone(req.Phone) {
		fields[prefix+"phone"] = "must contain only digits and an optional leading +"
	}
}

func validPhone(phone string) bool {
	phone = strings.TrimPrefix(strings.TrimSpace(phone), "+")
	if phone == "" {
		return false
	}
	for _, r := range phone {
		if (r < '0' || r > '9') && r != ' ' && r != '-' {
			return false
		}
	}
	return true
}
