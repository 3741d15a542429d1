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

// SharePriceHandler handles HTTP requests for the share price table.
type SharePriceHandler struct {
	priceService *service.SharePriceService
}

// NewSharePriceHandler creates a new SharePriceHandler.
func NewSharePriceHandler(priceService *service.SharePriceService) *SharePriceHandler {
	return &SharePriceHandler{
		priceService: priceService,
	}
}

// SharePrices handles GET requests to list every configured price, oldest first.
//
// Endpoint: GET /api/share-price
// Response: 200 OK with array of SharePrice
// Error: 500 Internal Server Error if retrieval fails
func (h *SharePriceHandler) SharePrices(w http.ResponseWriter, r *http.Request) {
	prices, err := h.priceService.GetSharePrices(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveSharePrices.Error(), err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, prices)
}

// SharePrice handles GET requests for the price of one period.
//
// Endpoint: GET /api/share-price/{year}/{month}
// Response: 200 OK with SharePrice
// Error: 400 Bad Request if year or month is invalid
// Error: 404 Not Found if no price is configured
func (h *SharePriceHandler) SharePrice(w http.ResponseWriter, r *http.Request) {
	p, err := request.ParsePeriod(chi.URLParam(r, "year"), chi.URLParam(r, "month"))
	if err != nil {
		respondServiceError(w, err, "invalid period")
		return
	}

	price, err := h.priceService.GetSharePrice(r.Context(), p)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveSharePrices.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, price)
}

// SetSharePrice handles PUT requests to create or correct the price of a
// period. Everything recorded in the period is repriced.
//
// Endpoint: PUT /api/share-price/{year}/{month}
// Request Body: SetSharePriceRequest (price)
// Response: 200 OK with SharePriceUpdate
// Error: 400 Bad Request if the period or price is invalid
func (h *SharePriceHandler) SetSharePrice(w http.ResponseWriter, r *http.Request) {
	p, err := request.ParsePeriod(chi.URLParam(r, "year"), chi.URLParam(r, "month"))
	if err != nil {
		respondServiceError(w, err, "invalid period")
		return
	}
	req, err := parseJSON[request.SetSharePriceRequest](w, r)
	if err != nil {
		respondBadBody(w, err)
		return
	}
	req.Year, req.Month = p.Year, p.Key()
	if err := validation.ValidateSetSharePrice(req); err != nil {
		respondServiceError(w, err, "validation failed")
		return
	}

	update, err := h.priceService.SetSharePrice(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "failed to set share price")
		return
	}
	response.RespondJSON(w, http.StatusOK, update)
}
