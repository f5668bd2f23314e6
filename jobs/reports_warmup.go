package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meridian-erp/meridian-erp/internal/ledger/reports"
)

// Warmer pre-builds the trial balance and year-to-date income statement so
// the first report request after an invalidation hits a warm cache.
type Warmer struct {
	service *reports.Service
	logger  *slog.Logger
	now     func() time.Time
}

// NewWarmer constructs the warmer.
func NewWarmer(service *reports.Service, logger *slog.Logger) *Warmer {
	return &Warmer{service: service, logger: logger, now: time.Now}
}

// Handle processes TaskReportsWarmup tasks.
func (w *Warmer) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ReportsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.OrganizationID == 0 {
		return asynq.SkipRetry
	}

	now := w.now()
	if _, err := w.service.TrialBalance(ctx, payload.OrganizationID, now); err != nil {
		return fmt.Errorf("jobs: warm trial balance org %d: %w", payload.OrganizationID, err)
	}
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	if _, err := w.service.IncomeStatement(ctx, reports.IncomeStatementParams{
		OrganizationID: payload.OrganizationID,
		From:           yearStart,
		To:             now,
	}); err != nil {
		return fmt.Errorf("jobs: warm income statement org %d: %w", payload.OrganizationID, err)
	}

	w.logger.Info("report caches warmed",
		slog.String("job", "reports_warmup"),
		slog.Int64("org_id", payload.OrganizationID))
	return nil
}
