package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/ledger/reports"
)

// IntegrityChecker rebuilds each organization's trial balance from raw
// postings and flags any that fail to reconcile. It reads through the
// repository, never the cache, so stale aggregates cannot mask drift.
type IntegrityChecker struct {
	pool   *pgxpool.Pool
	repo   reports.Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewIntegrityChecker constructs the checker.
func NewIntegrityChecker(pool *pgxpool.Pool, repo reports.Repository, logger *slog.Logger) *IntegrityChecker {
	return &IntegrityChecker{pool: pool, repo: repo, logger: logger, now: time.Now}
}

// Handle processes TaskLedgerIntegrity tasks.
func (c *IntegrityChecker) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LedgerIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	orgs, err := c.targetOrgs(ctx, payload.OrganizationID)
	if err != nil {
		return err
	}

	var failures int
	for _, orgID := range orgs {
		rows, err := c.repo.AccountBalances(ctx, orgID, c.now())
		if err != nil {
			return fmt.Errorf("jobs: integrity load org %d: %w", orgID, err)
		}
		tb := reports.BuildTrialBalance(rows)
		if !tb.Reconciled() {
			failures++
			c.logger.Error("trial balance out of balance",
				slog.String("job", "ledger_integrity"),
				slog.Int64("org_id", orgID),
				slog.String("total_debit", tb.TotalDebit.String()),
				slog.String("total_credit", tb.TotalCredit.String()))
			continue
		}
		c.logger.Info("trial balance reconciled",
			slog.String("job", "ledger_integrity"),
			slog.Int64("org_id", orgID))
	}
	if failures > 0 {
		return fmt.Errorf("jobs: %d organization(s) failed reconciliation", failures)
	}
	return nil
}

func (c *IntegrityChecker) targetOrgs(ctx context.Context, orgID int64) ([]int64, error) {
	if orgID != 0 {
		return []int64{orgID}, nil
	}
	rows, err := c.pool.Query(ctx, `SELECT id FROM organizations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("jobs: list organizations: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("jobs: scan organization: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
