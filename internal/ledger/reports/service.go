package reports

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/ledger"
)

// IncomeStatementParams bundles the report request.
type IncomeStatementParams struct {
	OrganizationID int64
	From           time.Time
	To             time.Time
	IncludeZero    bool
	IncludeHeader  bool
	TaxRate        *decimal.Decimal
	Grouping       Grouping
}

// Service derives financial reports from posted state. Both operations are
// read-only and safe to run concurrently with posting.
type Service struct {
	repo  Repository
	cache *Cache
}

// NewService constructs the report service.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// TrialBalance aggregates signed balances per postable account as of a date
// and verifies the ledger-wide debit/credit reconciliation.
func (s *Service) TrialBalance(ctx context.Context, orgID int64, asOf time.Time) (TrialBalance, error) {
	key, err := s.cache.BuildKey(ctx, "reports", "tb", strconv.FormatInt(orgID, 10), asOf.Format("2006-01-02"))
	if err != nil {
		return TrialBalance{}, err
	}
	var tb TrialBalance
	err = s.cache.FetchJSON(ctx, key, &tb, func(ctx context.Context) (interface{}, error) {
		rows, err := s.repo.AccountBalances(ctx, orgID, asOf)
		if err != nil {
			return nil, err
		}
		built := BuildTrialBalance(rows)
		if !built.Reconciled() {
			return nil, fmt.Errorf("%w: trial balance out of balance: debits=%s credits=%s",
				ledger.ErrStorage, built.TotalDebit, built.TotalCredit)
		}
		return built, nil
	})
	return tb, err
}

// IncomeStatement nets revenue/expense balances over a date range, buckets
// them per the grouping layout, and applies the tax overlay.
func (s *Service) IncomeStatement(ctx context.Context, p IncomeStatementParams) (IncomeStatement, error) {
	key, err := s.cache.BuildKey(ctx, "reports", "pl",
		strconv.FormatInt(p.OrganizationID, 10),
		p.From.Format("2006-01-02"), p.To.Format("2006-01-02"),
		strconv.FormatBool(p.IncludeZero), strconv.FormatBool(p.IncludeHeader),
		string(p.Grouping), taxKey(p.TaxRate))
	if err != nil {
		return IncomeStatement{}, err
	}
	var is IncomeStatement
	err = s.cache.FetchJSON(ctx, key, &is, func(ctx context.Context) (interface{}, error) {
		rows, err := s.repo.PLBalances(ctx, p.OrganizationID, p.From, p.To)
		if err != nil {
			return nil, err
		}
		return BuildIncomeStatement(rows, Options{
			IncludeZero:   p.IncludeZero,
			IncludeHeader: p.IncludeHeader,
			TaxRate:       p.TaxRate,
			Grouping:      p.Grouping,
		}), nil
	})
	return is, err
}

func taxKey(rate *decimal.Decimal) string {
	if rate == nil {
		return "none"
	}
	return rate.String()
}
