// Package handlers adapts HTTP requests to the service layer. Handlers parse
// and validate input, call one service method and map its sentinel errors to
// status codes.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/validation"
)

// maxBodyBytes bounds request bodies; member imports are the largest.
const maxBodyBytes = 8 << 20

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data any) {
	response.RespondJSON(w, status, data)
}

// parseJSON decodes the request body into a T. Unknown fields are rejected.
func parseJSON[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	return decodeBody[T](w, r, true)
}

// parseLegacyJSON decodes like parseJSON but ignores unknown fields, for
// documents exported by older versions.
func parseLegacyJSON[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	return decodeBody[T](w, r, false)
}

func decodeBody[T any](w http.ResponseWriter, r *http.Request, strict bool) (T, error) {
	var req T
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, fmt.Errorf("request body is empty")
		}
		return req, err
	}
	if dec.More() {
		return req, fmt.Errorf("request body must contain a single JSON object")
	}
	return req, nil
}

// statusFor maps a service error to its HTTP status.
//
//	400: malformed input
//	404: unknown member, dividend, price or report
//	409: the request conflicts with stored state
//	422: well-formed but not allowed by the ledger rules
//	500: anything else
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrPriceRequired),
		errors.Is(err, apperrors.ErrInvalidUUID):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrMemberNotFound),
		errors.Is(err, apperrors.ErrDividendNotFound),
		errors.Is(err, apperrors.ErrSharePriceNotFound),
		errors.Is(err, apperrors.ErrUnknownReport):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicateInvestment),
		errors.Is(err, apperrors.ErrDuplicateEntry),
		errors.Is(err, apperrors.ErrDividendNotPending):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrPeriodLocked),
		errors.Is(err, apperrors.ErrInsufficientShares),
		errors.Is(err, apperrors.ErrPriceNotSet):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes err with the status from statusFor. Field-level
// validation failures are returned as a details map. Unmapped errors use
// fallback as the message.
func respondServiceError(w http.ResponseWriter, err error, fallback string) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrValidation.Error(), verr.Fields)
		return
	}

	status := statusFor(err)
	message := fallback
	for _, sentinel := range []error{
		apperrors.ErrValidation, apperrors.ErrPriceRequired, apperrors.ErrInvalidUUID,
		apperrors.ErrMemberNotFound, apperrors.ErrDividendNotFound, apperrors.ErrSharePriceNotFound,
		apperrors.ErrUnknownReport, apperrors.ErrDuplicateInvestment, apperrors.ErrDuplicateEntry,
		apperrors.ErrDividendNotPending, apperrors.ErrPeriodLocked, apperrors.ErrInsufficientShares,
		apperrors.ErrPriceNotSet,
	} {
		if errors.Is(err, sentinel) {
			message = sentinel.Error()
			break
		}
	}
	response.RespondError(w, status, message, err.Error())
}

// respondBadBody reports a request body that could not be decoded.
func respondBadBody(w http.ResponseWriter, err error) {
	response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
}
