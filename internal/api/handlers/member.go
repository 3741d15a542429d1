package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/model"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/service"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/validation"
)

// MemberHandler handles HTTP requests for member endpoints: registration,
// lookup, legacy import and the member's monthly activity.
type MemberHandler struct {
	memberService *service.MemberService
	ledgerService *service.LedgerService
}

// NewMemberHandler creates a new MemberHandler with the provided service dependencies.
func NewMemberHandler(memberService *service.MemberService, ledgerService *service.LedgerService) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
		ledgerService: ledgerService,
	}
}

// Members handles GET requests to list all members without their activity.
//
// Endpoint: GET /api/member
// Response: 200 OK with array of MemberSummary
// Error: 500 Internal Server Error if retrieval fails
func (h *MemberHandler) Members(w http.ResponseWriter, r *http.Request) {
	members, err := h.memberService.GetMembers(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveMembers.Error(), err.Error())
		return
	}

	summaries := make([]model.MemberSummary, 0, len(members))
	for _, m := range members {
		summaries = append(summaries, m.Summary())
	}
	response.RespondJSON(w, http.StatusOK, summaries)
}

// Member handles GET requests to retrieve one member with its activity log.
//
// Endpoint: GET /api/member/{uuid}
// Response: 200 OK with Member
// Error: 400 Bad Request if member ID is invalid (validated by middleware)
// Error: 404 Not Found if member not found
func (h *MemberHandler) Member(w http.ResponseWriter, r *http.Request) {
	member, err := h.memberService.GetMember(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveMember.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, member)
}

// MemberByPhone handles GET /api/member/phone/{phone}.
func (h *MemberHandler) MemberByPhone(w http.ResponseWriter, r *http.Request) {
	member, err := h.memberService.GetMemberByPhone(r.Context(), chi.URLParam(r, "phone"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveMember.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, member)
}

// MemberByMembershipID handles GET /api/member/membership/{membershipId}.
func (h *MemberHandler) MemberByMembershipID(w http.ResponseWriter, r *http.Request) {
	member, err := h.memberService.GetMemberByMembershipID(r.Context(), chi.URLParam(r, "membershipId"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveMember.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, member)
}

// Register handles POST requests to register a new member. A paid or due
// registration fee triggers a Company Account investment; its outcome is
// part of the response and never fails the registration.
//
// Endpoint: POST /api/member
// Request Body: RegisterMemberRequest
// Response: 201 Created with RegistrationResult
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 409 Conflict if the membership ID or phone is already taken
func (h *MemberHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.RegisterMemberRequest](w, r)
	if err != nil {
		respondBadBody(w, err)
		return
	}
	if err := validation.ValidateRegisterMember(req); err != nil {
		respondServiceError(w, err, "validation failed")
		return
	}

	result, err := h.memberService.Register(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "failed to register member")
		return
	}
	response.RespondJSON(w, http.StatusCreated, result)
}

// Import handles POST requests to import member documents in the legacy
// shape. Unknown document fields are ignored. Nothing is stored unless every
// document is accepted.
//
// Endpoint: POST /api/member/import
// Request Body: ImportMembersRequest
// Response: 201 Created with array of Member
// Error: 400 Bad Request if any document is invalid
// Error: 409 Conflict if a membership ID or phone is already taken
func (h *MemberHandler) Import(w http.ResponseWriter, r *http.Request) {
	req, err := parseLegacyJSON[request.ImportMembersRequest](w, r)
	if err != nil {
		respondBadBody(w, err)
		return
	}
	if err := validation.ValidateImportMembers(req); err != nil {
		respondServiceError(w, err, "validation failed")
		return
	}

	members, err := h.memberService.Import(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "failed to import members")
		return
	}
	response.RespondJSON(w, http.StatusCreated, members)
}

// RecordInvestment handles POST requests to record the member's investment
// for the current month.
//
// Endpoint: POST /api/member/{uuid}/investment
// Request Body: RecordInvestmentRequest
// Response: 201 Created with InvestmentResult
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if member not found
// Error: 409 Conflict if the month already has an investment
// Error: 422 Unprocessable Entity if the period is locked or has no share price
func (h *MemberHandler) RecordInvestment(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.RecordInvestmentRequest](w, r)
	if err != nil {
		respondBadBody(w, err)
		return
	}
	if err := validation.ValidateRecordInvestment(req); err != nil {
		respondServiceError(w, err, "validation failed")
		return
	}

	result, err := h.ledgerService.RecordInvestment(r.Context(), chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRecordActivity.Error())
		return
	}
	response.RespondJSON(w, http.StatusCreated, result)
}

// RecordWithdrawal handles POST requests to record the member's withdrawal
// for the current month.
//
// Endpoint: POST /api/member/{uuid}/withdrawal
// Request Body: RecordWithdrawalRequest
// Response: 201 Created with WithdrawalResult
// Error: 400 Bad Request if validation fails or the share price is missing
// Error: 404 Not Found if member not found
// Error: 422 Unprocessable Entity if the period is locked, has no share price
// or the member holds too few shares
func (h *MemberHandler) RecordWithdrawal(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.RecordWithdrawalRequest](w, r)
	if err != nil {
		respondBadBody(w, err)
		return
	}
	if err := validation.ValidateRecordWithdrawal(req); err != nil {
		respondServiceError(w, err, "validation failed")
		return
	}

	result, err := h.ledgerService.RecordWithdrawal(r.Context(), chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRecordActivity.Error())
		return
	}
	response.RespondJSON(w, http.StatusCreated, result)
}

// Cumulative handles GET requests for the member's invested amount and
// shares up to a period. Without year and month the current period is used.
//
// Endpoint: GET /api/member/{uuid}/cumulative?year=2025&month=Jun
// Response: 200 OK with Cumulative
// Error: 400 Bad Request if year or month is invalid
// Error: 404 Not Found if member not found
// Error: 422 Unprocessable Entity if the period has no share price
func (h *MemberHandler) Cumulative(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	asOf, err := request.ParseAsOf(q.Get("year"), q.Get("month"), h.ledgerService.CurrentPeriod())
	if err != nil {
		respondServiceError(w, err, "invalid period")
		return
	}

	result, err := h.ledgerService.Cumulative(r.Context(), chi.URLParam(r, "uuid"), asOf)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveMember.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, result)
}
