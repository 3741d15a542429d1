package handlers

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/report"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/testutil"
)

func TestReportHandler_Report(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewReportHandler(testutil.NewTestServices(t, db).Reports)
	testutil.SetSharePrice(t, db, testutil.CurrentPeriod, 30)
	testutil.NewMember().WithName("Karim").WithInvestment(testutil.CurrentPeriod, 3000, 0, 30).Build(t, db)
	testutil.NewMember().WithName("Salma").WithInvestment(period.New(2025, time.May), 1000, 0, 20).Build(t, db)

	get := func(reportType string, query map[string]string) *httptest.ResponseRecorder {
		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/report/"+reportType, query)
		req = testutil.NewRequestWithURLParams(http.MethodGet, req.URL.String(), map[string]string{"type": reportType})
		w := httptest.NewRecorder()
		handler.Report(w, req)
		return w
	}

	t.Run("JSON by default", func(t *testing.T) {
		w := get("new-shares", nil)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		rep := testutil.DecodeJSON[report.Report](t, w)
		if rep.Type != report.TypeNewShares || rep.Period != "2025-Jun" {
			t.Errorf("Unexpected report header %s / %s", rep.Type, rep.Period)
		}
		if rep.Rows[0].Kind != report.KindHeader {
			t.Errorf("Expected header row first, got %s", rep.Rows[0].Kind)
		}
	})

	t.Run("CSV download", func(t *testing.T) {
		w := get("new-shares", map[string]string{"format": "csv"})

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
			t.Errorf("Expected text/csv, got %q", ct)
		}
		if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "new-shares-2025-Jun.csv") {
			t.Errorf("Unexpected Content-Disposition %q", cd)
		}

		records, err := csv.NewReader(w.Body).ReadAll()
		if err != nil {
			t.Fatalf("Failed to parse CSV: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("Expected header, one data row and summary, got %d records", len(records))
		}
		if records[0][1] != "Name" || records[1][1] != "Karim" || records[2][1] != "TOTAL NEW SHARES SUMMARY" {
			t.Errorf("Unexpected CSV content %v", records)
		}
	})

	t.Run("explicit period", func(t *testing.T) {
		w := get("new-shares", map[string]string{"year": "2025", "month": "May"})

		rep := testutil.DecodeJSON[report.Report](t, w)
		if rep.Period != "2025-May" || len(rep.Warnings) != 1 {
			t.Errorf("Expected May report with one warning, got %s %v", rep.Period, rep.Warnings)
		}
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name       string
			reportType string
			query      map[string]string
			want       int
		}{
			{"unknown type", "profit-and-loss", nil, http.StatusNotFound},
			{"bad format", "new-shares", map[string]string{"format": "xlsx"}, http.StatusBadRequest},
			{"bad month", "new-shares", map[string]string{"year": "2025", "month": "Foo"}, http.StatusBadRequest},
			{"no dividend events", "dividend", nil, http.StatusNotFound},
			{"valuation without price", "company-valuation", map[string]string{"year": "2025", "month": "Apr"}, http.StatusUnprocessableEntity},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if w := get(tt.reportType, tt.query); w.Code != tt.want {
					t.Errorf("Expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
				}
			})
		}
	})
}
