package shared

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditLog represents a record stored in audit_logs. Before/After carry
// entity snapshots around mutating operations.
type AuditLog struct {
	OrganizationID int64
	ActorID        int64
	Action         string
	Entity         string
	EntityID       string
	Before         map[string]any
	After          map[string]any
	IP             string
	UserAgent      string
	At             time.Time
}

// AuditLogger writes records into audit_logs. It is fire-and-forget from the
// ledger's perspective: a sink failure never rolls back a posting commit.
type AuditLogger struct {
	pool *pgxpool.Pool
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(pool *pgxpool.Pool) *AuditLogger {
	return &AuditLogger{pool: pool}
}

// Record persists the log entry.
func (l *AuditLogger) Record(ctx context.Context, log AuditLog) error {
	if l == nil {
		return errors.New("audit logger not initialised")
	}
	if log.Action == "" || log.Entity == "" || log.EntityID == "" {
		return errors.New("audit log requires action/entity/entity_id")
	}
	beforeJSON, err := json.Marshal(log.Before)
	if err != nil {
		return err
	}
	afterJSON, err := json.Marshal(log.After)
	if err != nil {
		return err
	}
	_, err = l.pool.Exec(ctx, `INSERT INTO audit_logs
(organization_id, actor_id, action, entity, entity_id, before, after, ip, user_agent, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, NOW()))`,
		log.OrganizationID, log.ActorID, log.Action, log.Entity, log.EntityID,
		beforeJSON, afterJSON, log.IP, log.UserAgent, log.At)
	return err
}
