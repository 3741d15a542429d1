package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/model"
	"github.com/ndewijer/Society-Share-Ledger-Backend/internal/repository"
)

// DataLoaderService centralizes the loading of the ledger-wide datasets that
// valuations, distributions and reports are computed from.
type DataLoaderService struct {
	memberRepo   *repository.MemberRepository
	priceRepo    *repository.SharePriceRepository
	companyRepo  *repository.CompanyRepository
	dividendRepo *repository.DividendRepository
}

// NewDataLoaderService creates a new DataLoaderService with the provided repositories.
func NewDataLoaderService(
	memberRepo *repository.MemberRepository,
	priceRepo *repository.SharePriceRepository,
	companyRepo *repository.CompanyRepository,
	dividendRepo *repository.DividendRepository,
) *DataLoaderService {
	return &DataLoaderService{
		memberRepo:   memberRepo,
		priceRepo:    priceRepo,
		companyRepo:  companyRepo,
		dividendRepo: dividendRepo,
	}
}

// LedgerData is a point-in-time read of the whole ledger. The reads are
// independent, so there is no snapshot guarantee across them.
type LedgerData struct {
	Members      []model.Member
	Prices       ledger.PriceTable
	Transactions []model.CompanyTransaction
	Dividends    []model.DividendEvent
}

// Load reads members, share prices, company transactions and dividend
// events concurrently.
func (s *DataLoaderService) Load(ctx context.Context) (*LedgerData, error) {
	var data LedgerData
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		members, err := s.memberRepo.GetMembers(ctx)
		if err != nil {
			return fmt.Errorf("failed to load members: %w", err)
		}
		data.Members = members
		return nil
	})
	g.Go(func() error {
		prices, err := s.priceRepo.GetSharePrices(ctx)
		if err != nil {
			return fmt.Errorf("failed to load share prices: %w", err)
		}
		data.Prices = ledger.NewPriceTable(prices)
		return nil
	})
	g.Go(func() error {
		txns, err := s.companyRepo.GetTransactions(ctx)
		if err != nil {
			return fmt.Errorf("failed to load company transactions: %w", err)
		}
		data.Transactions = txns
		return nil
	})
	g.Go(func() error {
		events, err := s.dividendRepo.GetDividendEvents(ctx)
		if err != nil {
			return fmt.Errorf("failed to load dividend events: %w", err)
		}
		data.Dividends = events
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &data, nil
}
