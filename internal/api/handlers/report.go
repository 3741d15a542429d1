package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/report"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/service"
)

// ReportHandler handles HTTP requests for reports.
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// Report handles GET requests to build a report.
//
// Endpoint: GET /api/report/{type}?year=2025&month=Jun&dividendId=...&format=csv
// Response: 200 OK with Report, or text/csv when format=csv
// Error: 400 Bad Request if a query parameter is invalid
// Error: 404 Not Found if the report type or dividend event is unknown
// Error: 422 Unprocessable Entity if the report needs a missing share price
func (h *ReportHandler) Report(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query, err := request.ParseReportQuery(q.Get("year"), q.Get("month"), q.Get("dividendId"), q.Get("format"),
		h.reportService.CurrentPeriod())
	if err != nil {
		respondServiceError(w, err, "invalid report query")
		return
	}

	rep, err := h.reportService.Build(r.Context(), chi.URLParam(r, "type"), *query)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToBuildReport.Error())
		return
	}

	if !query.CSV {
		response.RespondJSON(w, http.StatusOK, rep)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("%s-%s.csv", rep.Type, rep.Period)))
	w.WriteHeader(http.StatusOK)
	if err := report.WriteCSV(w, rep); err != nil {
		log.Error().Err(err).Str("report", string(rep.Type)).Msg("failed to write CSV report")
	}
}
