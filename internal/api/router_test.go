package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/api/middleware"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/config"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/metrics"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/testutil"
)

const testAPIKey = "router-test-key"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestServices(t, db)
	testutil.SetSharePrice(t, db, testutil.CurrentPeriod, 30)

	cfg := &config.Config{}
	cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	cfg.Internal.APIKey = testAPIKey

	router := NewRouter(Services{
		System:   svc.System,
		Members:  svc.Members,
		Ledger:   svc.Ledger,
		Prices:   svc.Prices,
		Company:  svc.Company,
		Dividend: svc.Dividend,
		Reports:  svc.Reports,
	}, cfg, zerolog.Nop(), metrics.New())

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRouter_Routes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"health", http.MethodGet, "/api/system/health", "", http.StatusOK},
		{"version", http.MethodGet, "/api/system/version", "", http.StatusOK},
		{"member list", http.MethodGet, "/api/member", "", http.StatusOK},
		{"member by invalid uuid", http.MethodGet, "/api/member/not-a-uuid", "", http.StatusBadRequest},
		{"member by unknown phone", http.MethodGet, "/api/member/phone/0123", "", http.StatusNotFound},
		{"share price", http.MethodGet, "/api/share-price/2025/Jun", "", http.StatusOK},
		{"company pool", http.MethodGet, "/api/company/pool", "", http.StatusOK},
		{"dividend list", http.MethodGet, "/api/dividend", "", http.StatusOK},
		{"dividend by invalid uuid", http.MethodGet, "/api/dividend/123/distribution", "", http.StatusBadRequest},
		{"report", http.MethodGet, "/api/report/new-shares", "", http.StatusOK},
		{"unknown report", http.MethodGet, "/api/report/nope", "", http.StatusNotFound},
		{"register", http.MethodPost, "/api/member", `{"name":"Rina","membershipId":"2025-300"}`, http.StatusCreated},
		{"unknown route", http.MethodGet, "/api/unknown", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, srv.URL+tt.path, tt.body, nil)
			if resp.StatusCode != tt.want {
				b, _ := io.ReadAll(resp.Body)
				t.Errorf("Expected %d, got %d: %s", tt.want, resp.StatusCode, b)
			}
		})
	}
}

func TestRouter_AdminRoutesRequireAPIKey(t *testing.T) {
	srv := newTestServer(t)
	authorized := map[string]string{
		"X-API-Key":    testAPIKey,
		"X-Time-Token": middleware.GenerateTimeToken(testAPIKey),
	}

	t.Run("share price update", func(t *testing.T) {
		if resp := do(t, http.MethodPut, srv.URL+"/api/share-price/2025/Jun", `{"price":35}`, nil); resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Expected 401 without key, got %d", resp.StatusCode)
		}
		if resp := do(t, http.MethodPut, srv.URL+"/api/share-price/2025/Jun", `{"price":35}`, authorized); resp.StatusCode != http.StatusOK {
			t.Errorf("Expected 200 with key, got %d", resp.StatusCode)
		}
	})

	t.Run("invest balance", func(t *testing.T) {
		if resp := do(t, http.MethodPost, srv.URL+"/api/company/invest-balance", "", nil); resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Expected 401 without key, got %d", resp.StatusCode)
		}
		// No Company Account is registered.
		if resp := do(t, http.MethodPost, srv.URL+"/api/company/invest-balance", "", authorized); resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected 404 with key, got %d", resp.StatusCode)
		}
	})

	t.Run("dividend confirm", func(t *testing.T) {
		id := testutil.MakeID()
		if resp := do(t, http.MethodPost, srv.URL+"/api/dividend/"+id+"/confirm", "", nil); resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Expected 401 without key, got %d", resp.StatusCode)
		}
		if resp := do(t, http.MethodPost, srv.URL+"/api/dividend/"+id+"/confirm", "", authorized); resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected 404 with key, got %d", resp.StatusCode)
		}
	})
}

func TestRouter_Metrics(t *testing.T) {
	srv := newTestServer(t)
	do(t, http.MethodGet, srv.URL+"/api/system/health", "", nil)

	resp := do(t, http.MethodGet, srv.URL+"/metrics", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `ledger_http_requests_total{code="200",route="/api/system/health"}`) {
		t.Errorf("Expected request counter for health route, got:\n%s", body)
	}
}
