package model

import "time"

// Payment status values for a member's registration payment.
const (
	PaymentStatusPaid = "paid"
	PaymentStatusDue  = "due"
)

// Member represents a registered society member together with their
// activity log. TotalShares is the running balance kept in sync with
// Activities by the ledger service.
type Member struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone,omitempty"`
	MembershipID string     `json:"membershipId"`
	JoiningDate  *time.Time `json:"joiningDate,omitempty"`
	IsDirector   bool       `json:"isDirector"`
	TotalShares  float64    `json:"totalShares"`
	Payment      Payment    `json:"payment"`
	Activities   Activities `json:"activities"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Payment is the registration payment recorded when a member joins.
type Payment struct {
	PayingMembershipAmount float64    `json:"payingMembershipAmount"`
	DueAmount              float64    `json:"dueAmount"`
	PaymentStatus          string     `json:"paymentStatus"`
	DateOfJoining          *time.Time `json:"dateOfJoining,omitempty"`
	MembershipID           string     `json:"membershipId"`
}

// CountsAsIncome reports whether the registration payment contributes to the
// Company Account's un-invested balance.
func (p Payment) CountsAsIncome() bool {
	return p.PayingMembershipAmount > 0 &&
		(p.PaymentStatus == PaymentStatusPaid || p.PaymentStatus == PaymentStatusDue)
}

// IsCompanyAccount reports whether the member is the designated Company Account.
func (m Member) IsCompanyAccount(companyMembershipID string) bool {
	return companyMembershipID != "" && m.MembershipID == companyMembershipID
}

// MemberSummary is the list view of a member without the activity log.
type MemberSummary struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone,omitempty"`
	MembershipID string     `json:"membershipId"`
	JoiningDate  *time.Time `json:"joiningDate,omitempty"`
	IsDirector   bool       `json:"isDirector"`
	TotalShares  float64    `json:"totalShares"`
}

// Summary returns the list view of the member.
func (m Member) Summary() MemberSummary {
	return MemberSummary{
		ID:           m.ID,
		Name:         m.Name,
		Phone:        m.Phone,
		MembershipID: m.MembershipID,
		JoiningDate:  m.JoiningDate,
		IsDirector:   m.IsDirector,
		TotalShares:  m.TotalShares,
	}
}
