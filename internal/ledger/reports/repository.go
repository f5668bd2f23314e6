package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/ledger"
)

// Repository reads aggregated balances. Queries take no locks and see a
// committed snapshot; reports are as-of query time.
type Repository interface {
	AccountBalances(ctx context.Context, orgID int64, asOf time.Time) ([]BalanceRow, error)
	PLBalances(ctx context.Context, orgID int64, from, to time.Time) ([]BalanceRow, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed report repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const balanceQuery = `SELECT a.id, a.code, a.name, a.type, a.normal_balance, a.parent_id, a.is_postable, a.pl_category,
COALESCE(s.debit, 0), COALESCE(s.credit, 0)
FROM accounts a
LEFT JOIN (
	SELECT l.account_id, SUM(l.debit) AS debit, SUM(l.credit) AS credit
	FROM journal_lines l
	JOIN journal_entries e ON e.id = l.entry_id
	WHERE e.organization_id = $1 AND e.deleted_at IS NULL AND e.date >= $2 AND e.date <= $3
	GROUP BY l.account_id
) s ON s.account_id = a.id
WHERE a.organization_id = $1 AND a.deleted_at IS NULL`

func (r *repository) AccountBalances(ctx context.Context, orgID int64, asOf time.Time) ([]BalanceRow, error) {
	rows, err := r.pool.Query(ctx, balanceQuery+` ORDER BY a.code`, orgID, time.Time{}, asOf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrStorage, err)
	}
	defer rows.Close()
	return scanBalanceRows(rows)
}

func (r *repository) PLBalances(ctx context.Context, orgID int64, from, to time.Time) ([]BalanceRow, error) {
	rows, err := r.pool.Query(ctx, balanceQuery+` AND a.type IN ('REVENUE','EXPENSE') ORDER BY a.code`, orgID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrStorage, err)
	}
	defer rows.Close()
	return scanBalanceRows(rows)
}

func scanBalanceRows(rows pgx.Rows) ([]BalanceRow, error) {
	var out []BalanceRow
	for rows.Next() {
		var row BalanceRow
		if err := rows.Scan(&row.AccountID, &row.Code, &row.Name, &row.Type, &row.NormalBalance,
			&row.ParentID, &row.IsPostable, &row.PLCategory, &row.Debit, &row.Credit); err != nil {
			return nil, fmt.Errorf("%w: %v", ledger.ErrStorage, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
