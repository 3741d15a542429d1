// Package report assembles the row sets handed to spreadsheet and PDF
// renderers. Builders are pure: they take a Dataset already loaded by the
// service layer and return a Report whose rows carry structural markers
// (header, section, data, summary, grand total) alongside flat cells.
package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/model"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/period"
)

// Type identifies a report.
type Type string

const (
	TypeDividend           Type = "dividend"
	TypeCompanyValuation   Type = "company-valuation"
	TypeDirectorsValuation Type = "directors-valuation"
	TypeSystemExport       Type = "system-export"
	TypeShareDistribution  Type = "share-distribution"
	TypeCompanyFunds       Type = "company-funds"
	TypeFundingAudit       Type = "funding-audit"
	TypeNewShares          Type = "new-shares"
	TypeMonthlyNewShares   Type = "monthly-new-shares"
)

// Types lists every supported report in display order.
func Types() []Type {
	return []Type{
		TypeDividend,
		TypeCompanyValuation,
		TypeDirectorsValuation,
		TypeSystemExport,
		TypeShareDistribution,
		TypeCompanyFunds,
		TypeFundingAudit,
		TypeNewShares,
		TypeMonthlyNewShares,
	}
}

// ParseType resolves a report identifier.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Types() {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownReport, s)
}

// Kind is the structural role of a row.
type Kind string

const (
	KindHeader     Kind = "header"
	KindSection    Kind = "section"
	KindData       Kind = "data"
	KindSummary    Kind = "summary"
	KindGrandTotal Kind = "grandTotal"
)

// Row is one output line. Cells maps column name to a string or number.
type Row struct {
	Kind      Kind           `json:"kind"`
	Highlight bool           `json:"highlight"`
	Cells     map[string]any `json:"cells"`
}

// Report is the complete output of one builder.
type Report struct {
	Type     Type     `json:"type"`
	Title    string   `json:"title"`
	Period   string   `json:"period"`
	Columns  []string `json:"columns"`
	Rows     []Row    `json:"rows"`
	Warnings []string `json:"warnings"`
}

// Dataset is everything a builder may read. The service layer loads it once
// per request.
type Dataset struct {
	Members      []model.Member
	Prices       ledger.PriceTable
	Transactions []model.CompanyTransaction
	Dividends    []model.DividendEvent
	// Dividend is the event the dividend report is produced for.
	Dividend *model.DividendEvent
	AsOf     period.Period
	Policy   ledger.Policy
}

type builder func(ds Dataset) (*Report, error)

var builders = map[Type]builder{
	TypeDividend:           buildDividend,
	TypeCompanyValuation:   buildCompanyValuation,
	TypeDirectorsValuation: buildDirectorsValuation,
	TypeSystemExport:       buildSystemExport,
	TypeShareDistribution:  buildShareDistribution,
	TypeCompanyFunds:       buildCompanyFunds,
	TypeFundingAudit:       buildFundingAudit,
	TypeNewShares:          buildNewShares,
	TypeMonthlyNewShares:   buildMonthlyNewShares,
}

// Build produces the report of type t from ds.
func Build(t Type, ds Dataset) (*Report, error) {
	b, ok := builders[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownReport, t)
	}
	if ds.Prices == nil {
		ds.Prices = ledger.PriceTable{}
	}
	if ds.Policy.CompanyMembershipID == "" {
		ds.Policy.CompanyMembershipID = ledger.DefaultCompanyMembershipID
	}
	r, err := b(ds)
	if err != nil {
		return nil, err
	}
	r.Type = t
	if r.Period == "" {
		r.Period = ds.AsOf.String()
	}
	if r.Warnings == nil {
		r.Warnings = []string{}
	}
	return r, nil
}

func newReport(title string, columns ...string) *Report {
	r := &Report{Title: title, Columns: columns}
	header := make(map[string]any, len(columns))
	for _, c := range columns {
		header[c] = c
	}
	r.Rows = append(r.Rows, Row{Kind: KindHeader, Highlight: true, Cells: header})
	return r
}

func (r *Report) section(column, label string) {
	r.Rows = append(r.Rows, Row{Kind: KindSection, Highlight: true, Cells: map[string]any{column: label}})
}

func (r *Report) data(cells map[string]any) {
	r.Rows = append(r.Rows, Row{Kind: KindData, Cells: cells})
}

func (r *Report) summary(cells map[string]any) {
	r.Rows = append(r.Rows, Row{Kind: KindSummary, Highlight: true, Cells: cells})
}

func (r *Report) grandTotal(cells map[string]any) {
	r.Rows = append(r.Rows, Row{Kind: KindGrandTotal, Highlight: true, Cells: cells})
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Report) warnMissing(m model.Member, missing []period.Period) {
	for _, p := range missing {
		r.warnf("%s (%s): no share price for %s, investment excluded", m.Name, m.MembershipID, p)
	}
}

// money rounds a monetary value for output.
func money(v float64) float64 {
	return ledger.RoundMoney(v)
}

// shares rounds a share count for output.
func shares(v float64) float64 {
	return decimal.NewFromFloat(v).Round(4).InexactFloat64()
}

func formatDate(m model.Member) string {
	joined := ledger.JoinedAt(m)
	if joined == nil {
		return ""
	}
	return joined.Format("2006-01-02")
}

// requirePrice returns the configured price of p or ErrPriceNotSet.
func requirePrice(prices ledger.PriceLookup, p period.Period) (float64, error) {
	price, ok := prices.Price(p)
	if !ok {
		return 0, fmt.Errorf("%w: %s", apperrors.ErrPriceNotSet, p)
	}
	return price, nil
}
