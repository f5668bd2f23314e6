package reports

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-erp/internal/ledger"
)

type mockRepo struct {
	balanceRows  []BalanceRow
	balanceCalls int
	plRows       []BalanceRow
	plCalls      int
}

func (m *mockRepo) AccountBalances(ctx context.Context, orgID int64, asOf time.Time) ([]BalanceRow, error) {
	m.balanceCalls++
	return m.balanceRows, nil
}

func (m *mockRepo) PLBalances(ctx context.Context, orgID int64, from, to time.Time) ([]BalanceRow, error) {
	m.plCalls++
	return m.plRows, nil
}

func newTestService(t *testing.T, repo Repository) (*Service, *Cache, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)
	svc := NewService(repo, cache)
	return svc, cache, func() {
		_ = client.Close()
		mr.Close()
	}
}

func balancedRows() []BalanceRow {
	return []BalanceRow{
		{AccountID: 1, Code: "1000", Name: "Cash", Type: ledger.AccountTypeAsset, NormalBalance: ledger.NormalBalanceDebit, IsPostable: true, Debit: dec("100"), Credit: dec("0")},
		{AccountID: 2, Code: "4000", Name: "Sales", Type: ledger.AccountTypeRevenue, NormalBalance: ledger.NormalBalanceCredit, IsPostable: true, Debit: dec("0"), Credit: dec("100")},
	}
}

func TestTrialBalanceCaches(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{balanceRows: balancedRows()}
	svc, _, cleanup := newTestService(t, repo)
	defer cleanup()

	asOf := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	first, err := svc.TrialBalance(ctx, 1, asOf)
	require.NoError(t, err)
	require.True(t, first.Reconciled())

	second, err := svc.TrialBalance(ctx, 1, asOf)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, repo.balanceCalls)
}

func TestTrialBalanceRejectsDrift(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{balanceRows: []BalanceRow{
		{AccountID: 1, Code: "1000", Name: "Cash", Type: ledger.AccountTypeAsset, NormalBalance: ledger.NormalBalanceDebit, IsPostable: true, Debit: dec("100"), Credit: dec("0")},
	}}
	svc, _, cleanup := newTestService(t, repo)
	defer cleanup()

	_, err := svc.TrialBalance(ctx, 1, time.Now())
	require.ErrorIs(t, err, ledger.ErrStorage)
}

func TestBumpInvalidates(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{balanceRows: balancedRows()}
	svc, cache, cleanup := newTestService(t, repo)
	defer cleanup()

	asOf := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	_, err := svc.TrialBalance(ctx, 1, asOf)
	require.NoError(t, err)
	require.Equal(t, 1, repo.balanceCalls)

	require.NoError(t, cache.Bump(ctx))

	_, err = svc.TrialBalance(ctx, 1, asOf)
	require.NoError(t, err)
	require.Equal(t, 2, repo.balanceCalls)
}

func TestIncomeStatementCacheKeyIncludesOptions(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{plRows: []BalanceRow{
		{AccountID: 1, Code: "4000", Name: "Sales", Type: ledger.AccountTypeRevenue, NormalBalance: ledger.NormalBalanceCredit, IsPostable: true, Credit: dec("100")},
	}}
	svc, _, cleanup := newTestService(t, repo)
	defer cleanup()

	params := IncomeStatementParams{
		OrganizationID: 1,
		From:           time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		To:             time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	_, err := svc.IncomeStatement(ctx, params)
	require.NoError(t, err)
	require.Equal(t, 1, repo.plCalls)

	// Same params hit the cache.
	_, err = svc.IncomeStatement(ctx, params)
	require.NoError(t, err)
	require.Equal(t, 1, repo.plCalls)

	// Different tax rate is a different report.
	rate := dec("0.25")
	params.TaxRate = &rate
	is, err := svc.IncomeStatement(ctx, params)
	require.NoError(t, err)
	require.Equal(t, 2, repo.plCalls)
	require.True(t, is.Tax.Equal(dec("25")))

	// So is a different grouping.
	params.Grouping = GroupingByCategory
	_, err = svc.IncomeStatement(ctx, params)
	require.NoError(t, err)
	require.Equal(t, 3, repo.plCalls)
}

func TestServiceWithoutRedis(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{balanceRows: balancedRows()}
	svc := NewService(repo, nil)

	_, err := svc.TrialBalance(ctx, 1, time.Now())
	require.NoError(t, err)
	_, err = svc.TrialBalance(ctx, 1, time.Now())
	require.NoError(t, err)
	require.Equal(t, 2, repo.balanceCalls)
}
