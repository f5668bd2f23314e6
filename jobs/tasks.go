package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrity is the task type for ledger reconciliation sweeps.
	TaskLedgerIntegrity = "ledger:integrity"
	// TaskReportsWarmup is the task type for pre-building report caches.
	TaskReportsWarmup = "reports:warmup"
)

// LedgerIntegrityPayload scopes an integrity sweep. A zero OrganizationID
// sweeps every organization.
type LedgerIntegrityPayload struct {
	OrganizationID int64 `json:"organization_id"`
}

// ReportsWarmupPayload scopes a cache warmup run.
type ReportsWarmupPayload struct {
	OrganizationID int64 `json:"organization_id"`
}

// NewLedgerIntegrityTask constructs an Asynq task for an integrity sweep.
func NewLedgerIntegrityTask(payload LedgerIntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrity, data), nil
}

// NewReportsWarmupTask constructs an Asynq task for a report cache warmup.
func NewReportsWarmupTask(payload ReportsWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, data), nil
}
