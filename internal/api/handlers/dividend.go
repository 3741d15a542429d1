package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/service"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/validation"
)

// DividendHandler handles HTTP requests for dividend endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the dividendService.
type DividendHandler struct {
	dividendService *service.DividendService
}

// NewDividendHandler creates a new DividendHandler with the provided service dependency.
func NewDividendHandler(dividendService *service.DividendService) *DividendHandler {
	return &DividendHandler{
		dividendService: dividendService,
	}
}

// Dividends handles GET requests to retrieve all dividend events, most recent first.
//
// Endpoint: GET /api/dividend
// Response: 200 OK with array of DividendEvent
// Error: 500 Internal Server Error if retrieval fails
func (h *DividendHandler) Dividends(w http.ResponseWriter, r *http.Request) {
	events, err := h.dividendService.GetDividendEvents(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveDividends.Error(), err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, events)
}

// Dividend handles GET /api/dividend/{uuid}.
func (h *DividendHandler) Dividend(w http.ResponseWriter, r *http.Request) {
	ev, err := h.dividendService.GetDividendEvent(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveDividends.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, ev)
}

// Declare handles POST requests to declare a pending dividend event.
// The eligibility rule is read from the event name.
//
// Endpoint: POST /api/dividend
// Request Body: DeclareDividendRequest (name, eventDate, profitAmount)
// Response: 201 Created with DividendEvent
// Error: 400 Bad Request if validation fails or request body is invalid
func (h *DividendHandler) Declare(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.DeclareDividendRequest](w, r)
	if err != nil {
		respondBadBody(w, err)
		return
	}
	if err := validation.ValidateDeclareDividend(req); err != nil {
		respondServiceError(w, err, "validation failed")
		return
	}

	ev, err := h.dividendService.Declare(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "failed to declare dividend")
		return
	}
	response.RespondJSON(w, http.StatusCreated, ev)
}

// Distribution handles GET requests to preview how an event's profit would
// be split. Nothing is stored.
//
// Endpoint: GET /api/dividend/{uuid}/distribution
// Response: 200 OK with Distribution
// Error: 404 Not Found if dividend not found
func (h *DividendHandler) Distribution(w http.ResponseWriter, r *http.Request) {
	dist, err := h.dividendService.Preview(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveDividends.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, dist)
}

// Confirm handles POST requests to confirm a pending event.
//
// Endpoint: POST /api/dividend/{uuid}/confirm
// Response: 200 OK with DividendEvent
// Error: 404 Not Found if dividend not found
// Error: 409 Conflict if the event is already confirmed
// Error: 422 Unprocessable Entity if the company payout cannot be priced
func (h *DividendHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	ev, err := h.dividendService.Confirm(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, "failed to confirm dividend")
		return
	}
	response.RespondJSON(w, http.StatusOK, ev)
}
