package handlers

import (
	"net/http"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/model"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/service"
)

// CompanyHandler handles HTTP requests for the Company Account pool.
type CompanyHandler struct {
	companyService *service.CompanyService
}

// NewCompanyHandler creates a new CompanyHandler.
func NewCompanyHandler(companyService *service.CompanyService) *CompanyHandler {
	return &CompanyHandler{
		companyService: companyService,
	}
}

// Pool handles GET requests for the Company Account's shares by funding source.
//
// Endpoint: GET /api/company/pool
// Response: 200 OK with PoolBreakdown
// Error: 500 Internal Server Error if retrieval fails
func (h *CompanyHandler) Pool(w http.ResponseWriter, r *http.Request) {
	pool, err := h.companyService.Pool(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrievePool.Error(), err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, pool)
}

// Transactions handles GET /api/company/transactions.
func (h *CompanyHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	txns, err := h.companyService.Transactions(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrievePool.Error(), err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, txns)
}

// InvestBalanceResponse reports the outcome of a manual balance sweep.
// Booking is nil when there was nothing to invest.
type InvestBalanceResponse struct {
	Invested bool                  `json:"invested"`
	Booking  *model.CompanyBooking `json:"booking,omitempty"`
}

// InvestBalance handles POST requests to invest the Company Account's
// outstanding registration fees and fines at the current price.
//
// Endpoint: POST /api/company/invest-balance
// Response: 200 OK with InvestBalanceResponse
// Error: 404 Not Found if the Company Account is not registered
// Error: 422 Unprocessable Entity if the current month has no share price
func (h *CompanyHandler) InvestBalance(w http.ResponseWriter, r *http.Request) {
	booking, err := h.companyService.InvestCurrentBalance(r.Context(), service.TriggerManual)
	if err != nil {
		respondServiceError(w, err, "failed to invest company balance")
		return
	}
	if booking == nil {
		response.RespondJSON(w, http.StatusOK, InvestBalanceResponse{Invested: false})
		return
	}
	response.RespondJSON(w, http.StatusOK, InvestBalanceResponse{Invested: true, Booking: booking})
}
