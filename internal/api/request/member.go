package request

import "encoding/json"

// RegisterMemberRequest represents the request body for registering a new member.
// Name and MembershipID are required; dates use YYYY-MM-DD.
type RegisterMemberRequest struct {
	Name                   string  `json:"name" validate:"required,max=200"`
	Phone                  string  `json:"phone,omitempty" validate:"omitempty,max=32"`
	MembershipID           string  `json:"membershipId" validate:"required,max=50"`
	JoiningDate            string  `json:"joiningDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	IsDirector             bool    `json:"isDirector"`
	PayingMembershipAmount float64 `json:"payingMembershipAmount" validate:"gte=0"`
	DueAmount              float64 `json:"dueAmount" validate:"gte=0"`
	PaymentStatus          string  `json:"paymentStatus,omitempty" validate:"omitempty,oneof=paid due"`
	DateOfJoining          string  `json:"dateOfJoining,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ImportMemberRequest is one member document of a legacy import. Activities
// keep their stored shape: year -> month key -> period document, where the
// month key may be any spelling and the period document may be the old flat
// investment object.
type ImportMemberRequest struct {
	RegisterMemberRequest
	ID          string                                `json:"id,omitempty" validate:"omitempty,uuid"`
	CreatedAt   string                                `json:"createdAt,omitempty"`
	Activities  map[string]map[string]json.RawMessage `json:"activities"`
	TotalShares *float64                              `json:"totalShares,omitempty"`
}

// ImportMembersRequest represents the request body for importing member documents.
type ImportMembersRequest struct {
	Members []ImportMemberRequest `json:"members" validate:"required,min=1,dive"`
}
