package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// Registry owns the chart of accounts: hierarchy, type-driven normal
// balance, postability, and soft-delete.
type Registry struct {
	repo  Repository
	audit AuditPort
	now   func() time.Time
}

// NewRegistry constructs the account registry.
func NewRegistry(repo Repository, audit AuditPort) *Registry {
	return &Registry{repo: repo, audit: audit, now: time.Now}
}

// WithNow overrides the clock for deterministic tests.
func (r *Registry) WithNow(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

// CreateAccount inserts a new account with the normal balance derived from
// its type. The parent, when supplied, must belong to the same organization.
func (r *Registry) CreateAccount(ctx context.Context, in CreateAccountInput, actorID int64) (Account, error) {
	if err := in.Validate(); err != nil {
		return Account{}, err
	}
	var account Account
	err := r.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if in.ParentID != nil {
			parent, err := tx.GetAccount(ctx, *in.ParentID)
			if err != nil {
				return err
			}
			if parent.OrganizationID != in.OrganizationID {
				return fmt.Errorf("%w: parent account %d belongs to another organization", ErrValidation, parent.ID)
			}
			if parent.DeletedAt != nil {
				return fmt.Errorf("%w: parent account %d is deleted", ErrValidation, parent.ID)
			}
		}
		var err error
		account, err = tx.InsertAccount(ctx, in, NormalBalanceFor(in.Type))
		return err
	})
	if err != nil {
		return Account{}, err
	}
	r.record(ctx, actorID, "account.create", account.ID, account.OrganizationID, nil, accountSnapshot(account))
	return account, nil
}

// UpdateAccountType re-derives the normal balance from the new type. The
// change is rejected once any journal line references the account, since the
// posted balance semantics would become inconsistent.
func (r *Registry) UpdateAccountType(ctx context.Context, orgID, accountID int64, newType AccountType, actorID int64) (Account, error) {
	if !newType.Valid() {
		return Account{}, fmt.Errorf("%w: unknown account type %q", ErrValidation, newType)
	}
	var before, after Account
	err := r.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		account, err := tx.GetAccount(ctx, accountID)
		if err != nil {
			return err
		}
		if account.OrganizationID != orgID {
			return fmt.Errorf("%w: account %d", ErrCrossTenant, accountID)
		}
		if account.DeletedAt != nil {
			return fmt.Errorf("%w: account %d", ErrNotFound, accountID)
		}
		count, err := tx.CountAccountLines(ctx, accountID)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: account %d has %d posted lines, type change forbidden", ErrConflict, accountID, count)
		}
		before = account
		after = account
		after.Type = newType
		after.NormalBalance = NormalBalanceFor(newType)
		return tx.UpdateAccountType(ctx, accountID, after.Type, after.NormalBalance)
	})
	if err != nil {
		return Account{}, err
	}
	r.record(ctx, actorID, "account.update_type", accountID, orgID, accountSnapshot(before), accountSnapshot(after))
	return after, nil
}

// Deactivate flags the account as inactive without deleting it.
func (r *Registry) Deactivate(ctx context.Context, orgID, accountID, actorID int64) error {
	err := r.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		account, err := tx.GetAccount(ctx, accountID)
		if err != nil {
			return err
		}
		if account.OrganizationID != orgID {
			return fmt.Errorf("%w: account %d", ErrCrossTenant, accountID)
		}
		return tx.SetAccountActive(ctx, accountID, false)
	})
	if err != nil {
		return err
	}
	r.record(ctx, actorID, "account.deactivate", accountID, orgID, nil, map[string]any{"is_active": false})
	return nil
}

// SoftDelete marks the account deleted and eagerly clears parent_id on its
// children; descendants are never deleted.
func (r *Registry) SoftDelete(ctx context.Context, orgID, accountID, actorID int64) error {
	var before Account
	err := r.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		account, err := tx.GetAccount(ctx, accountID)
		if err != nil {
			return err
		}
		if account.OrganizationID != orgID {
			return fmt.Errorf("%w: account %d", ErrCrossTenant, accountID)
		}
		before = account
		if err := tx.ClearAccountParent(ctx, accountID); err != nil {
			return err
		}
		return tx.SoftDeleteAccount(ctx, accountID)
	})
	if err != nil {
		return err
	}
	r.record(ctx, actorID, "account.soft_delete", accountID, orgID, accountSnapshot(before), nil)
	return nil
}

// ResolvePostable returns the account when it may appear on a journal line.
func (r *Registry) ResolvePostable(ctx context.Context, orgID, accountID int64) (Account, error) {
	var account Account
	err := r.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		account, err = resolvePostable(ctx, tx, orgID, accountID)
		return err
	})
	if err != nil {
		return Account{}, err
	}
	return account, nil
}

// GetAccount returns one live account owned by the organization.
func (r *Registry) GetAccount(ctx context.Context, orgID, accountID int64) (Account, error) {
	var account Account
	err := r.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		account, err = tx.GetAccount(ctx, accountID)
		if err != nil {
			return err
		}
		if account.OrganizationID != orgID || account.DeletedAt != nil {
			return fmt.Errorf("%w: account %d", ErrNotFound, accountID)
		}
		return nil
	})
	if err != nil {
		return Account{}, err
	}
	return account, nil
}

// ListAccounts returns the live chart of accounts for one organization.
func (r *Registry) ListAccounts(ctx context.Context, orgID int64) ([]Account, error) {
	return r.repo.ListAccounts(ctx, orgID)
}

// resolvePostable is shared with the posting engine so line validation and
// registry lookups apply identical rules.
func resolvePostable(ctx context.Context, tx TxRepository, orgID, accountID int64) (Account, error) {
	account, err := tx.GetAccount(ctx, accountID)
	if err != nil {
		return Account{}, err
	}
	if account.OrganizationID != orgID {
		return Account{}, fmt.Errorf("%w: account %d belongs to another organization", ErrCrossTenant, accountID)
	}
	if account.DeletedAt != nil {
		return Account{}, fmt.Errorf("%w: account %d", ErrNotFound, accountID)
	}
	if !account.IsPostable || !account.IsActive {
		return Account{}, fmt.Errorf("%w: account %s", ErrNotPostable, account.Code)
	}
	return account, nil
}

func (r *Registry) record(ctx context.Context, actorID int64, action string, entityID, orgID int64, before, after map[string]any) {
	if r.audit == nil {
		return
	}
	_ = r.audit.Record(ctx, shared.AuditLog{
		OrganizationID: orgID,
		ActorID:        actorID,
		Action:         action,
		Entity:         "account",
		EntityID:       fmt.Sprintf("%d", entityID),
		Before:         before,
		After:          after,
		At:             r.now(),
	})
}

func accountSnapshot(a Account) map[string]any {
	return map[string]any{
		"code":           a.Code,
		"name":           a.Name,
		"type":           string(a.Type),
		"normal_balance": string(a.NormalBalance),
		"is_active":      a.IsActive,
		"is_postable":    a.IsPostable,
	}
}
