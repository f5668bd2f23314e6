package partners

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/ledger"
)

type Repository interface {
	List(ctx context.Context, orgID int64) ([]BusinessPartner, error)
	Get(ctx context.Context, orgID, id int64) (BusinessPartner, error)
	Create(ctx context.Context, bp BusinessPartner) (BusinessPartner, error)
	Update(ctx context.Context, bp BusinessPartner) error
	Archive(ctx context.Context, orgID, id int64) error
	Restore(ctx context.Context, orgID, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const columns = `id, organization_id, code, name, category, normal_balance, is_active, is_deleted, created_at, updated_at`

func (r *repository) List(ctx context.Context, orgID int64) ([]BusinessPartner, error) {
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM business_partners
WHERE organization_id=$1 AND NOT is_deleted ORDER BY code`, orgID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrStorage, err)
	}
	defer rows.Close()
	var out []BusinessPartner
	for rows.Next() {
		var bp BusinessPartner
		if err := rows.Scan(&bp.ID, &bp.OrganizationID, &bp.Code, &bp.Name, &bp.Category,
			&bp.NormalBalance, &bp.IsActive, &bp.IsDeleted, &bp.CreatedAt, &bp.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", ledger.ErrStorage, err)
		}
		out = append(out, bp)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, orgID, id int64) (BusinessPartner, error) {
	var bp BusinessPartner
	err := r.db.QueryRow(ctx, `SELECT `+columns+` FROM business_partners
WHERE id=$1 AND organization_id=$2`, id, orgID).
		Scan(&bp.ID, &bp.OrganizationID, &bp.Code, &bp.Name, &bp.Category,
			&bp.NormalBalance, &bp.IsActive, &bp.IsDeleted, &bp.CreatedAt, &bp.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BusinessPartner{}, fmt.Errorf("%w: partner %d", ledger.ErrNotFound, id)
		}
		return BusinessPartner{}, fmt.Errorf("%w: %v", ledger.ErrStorage, err)
	}
	return bp, nil
}

func (r *repository) Create(ctx context.Context, bp BusinessPartner) (BusinessPartner, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO business_partners
(organization_id, code, name, category, normal_balance, is_active, is_deleted)
VALUES ($1,$2,$3,$4,$5,TRUE,FALSE) RETURNING id, created_at, updated_at`,
		bp.OrganizationID, bp.Code, bp.Name, bp.Category, bp.NormalBalance).
		Scan(&bp.ID, &bp.CreatedAt, &bp.UpdatedAt)
	if err != nil {
		return BusinessPartner{}, mapError(err)
	}
	bp.IsActive = true
	return bp, nil
}

func (r *repository) Update(ctx context.Context, bp BusinessPartner) error {
	cmd, err := r.db.Exec(ctx, `UPDATE business_partners
SET name=$3, category=$4, normal_balance=$5, is_active=$6, updated_at=NOW()
WHERE id=$1 AND organization_id=$2 AND NOT is_deleted`,
		bp.ID, bp.OrganizationID, bp.Name, bp.Category, bp.NormalBalance, bp.IsActive)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: partner %d", ledger.ErrNotFound, bp.ID)
	}
	return nil
}

func (r *repository) Archive(ctx context.Context, orgID, id int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE business_partners SET is_deleted=TRUE, is_active=FALSE, updated_at=NOW()
WHERE id=$1 AND organization_id=$2 AND NOT is_deleted`, id, orgID)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: partner %d", ledger.ErrNotFound, id)
	}
	return nil
}

func (r *repository) Restore(ctx context.Context, orgID, id int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE business_partners SET is_deleted=FALSE, is_active=TRUE, updated_at=NOW()
WHERE id=$1 AND organization_id=$2 AND is_deleted`, id, orgID)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: partner %d", ledger.ErrNotFound, id)
	}
	return nil
}

func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName == "uq_business_partners_org_code" {
		return fmt.Errorf("%w: partner code already in use", ledger.ErrConflict)
	}
	return fmt.Errorf("%w: %v", ledger.ErrStorage, err)
}
