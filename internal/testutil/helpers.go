package testutil

import (
	"database/sql"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/cache"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/repository"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/service"
)

// Now is the fixed instant test services run at unless told otherwise:
// mid June 2025.
var Now = time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

// CurrentPeriod is the period containing Now.
var CurrentPeriod = period.FromTime(Now)

// Services bundles every service wired against one test database.
type Services struct {
	Prices   *service.SharePriceService
	Company  *service.CompanyService
	Ledger   *service.LedgerService
	Members  *service.MemberService
	Dividend *service.DividendService
	Reports  *service.ReportService
	System   *service.SystemService
	Loader   *service.DataLoaderService
}

// TestOptions returns service options with a fixed clock at now and the
// default ledger policy.
func TestOptions(now time.Time) service.Options {
	return service.Options{
		Policy: ledger.DefaultPolicy(),
		Clock:  period.FixedClock{At: now},
	}
}

// NewTestServices wires all services against db with a clock fixed at Now.
//
// Example usage:
//
//	svc := testutil.NewTestServices(t, db)
//	result, err := svc.Ledger.RecordInvestment(ctx, member.ID, req)
func NewTestServices(t *testing.T, db *sql.DB) *Services {
	t.Helper()
	return NewTestServicesWith(t, db, TestOptions(Now), nil)
}

// NewTestServicesWith wires all services with explicit options and price cache.
func NewTestServicesWith(t *testing.T, db *sql.DB, opts service.Options, priceCache cache.PriceCache) *Services {
	t.Helper()

	memberRepo := repository.NewMemberRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	priceRepo := repository.NewSharePriceRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	dividendRepo := repository.NewDividendRepository(db)

	prices := service.NewSharePriceService(db, priceRepo, activityRepo, memberRepo, companyRepo, dividendRepo, priceCache, opts)
	company := service.NewCompanyService(db, memberRepo, activityRepo, companyRepo, dividendRepo, prices, opts)
	loader := service.NewDataLoaderService(memberRepo, priceRepo, companyRepo, dividendRepo)

	return &Services{
		Prices:   prices,
		Company:  company,
		Ledger:   service.NewLedgerService(db, memberRepo, activityRepo, prices, company, opts),
		Members:  service.NewMemberService(db, memberRepo, activityRepo, prices, company, opts),
		Dividend: service.NewDividendService(db, dividendRepo, companyRepo, activityRepo, memberRepo, loader, opts),
		Reports:  service.NewReportService(loader, opts),
		System:   service.NewSystemService(db, map[string]bool{"priceCache": priceCache != nil}),
		Loader:   loader,
	}
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeMembershipID generates a unique membership ID for testing.
//
// Example usage:
//
//	id := testutil.MakeMembershipID()
//	// Returns: "T-4K9Z2Q"
func MakeMembershipID() string {
	return "T-" + randomAlphanumeric(6)
}

// MakeMemberName generates a unique member name for testing.
//
// Example usage:
//
//	name := testutil.MakeMemberName("Rahim")
//	// Returns: "Rahim ABC123"
func MakeMemberName(base string) string {
	if base == "" {
		base = "Member"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
