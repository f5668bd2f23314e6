package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository encapsulates transactional access to the ledger tables. The
// ledger owns these tables exclusively; all mutation flows through it.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListAccounts(ctx context.Context, orgID int64) ([]Account, error)
	ListEntries(ctx context.Context, orgID int64) ([]JournalEntry, error)
}

// TxRepository exposes operations available within one atomic unit of work.
type TxRepository interface {
	InsertAccount(ctx context.Context, in CreateAccountInput, nb NormalBalance) (Account, error)
	GetAccount(ctx context.Context, id int64) (Account, error)
	UpdateAccountType(ctx context.Context, id int64, t AccountType, nb NormalBalance) error
	SetAccountActive(ctx context.Context, id int64, active bool) error
	SoftDeleteAccount(ctx context.Context, id int64) error
	ClearAccountParent(ctx context.Context, parentID int64) error
	CountAccountLines(ctx context.Context, accountID int64) (int64, error)

	InsertEntry(ctx context.Context, in PostingInput, reversalOf *int64) (JournalEntry, error)
	InsertLines(ctx context.Context, entryID, orgID int64, lines []PostingLineInput) error
	LinkSource(ctx context.Context, module string, ref uuid.UUID, entryID int64) error
	GetEntryWithLines(ctx context.Context, orgID, entryID int64) (JournalEntry, []JournalLine, error)
	HasReversal(ctx context.Context, entryID int64) (bool, error)
	LatestClosingDate(ctx context.Context, orgID int64) (*time.Time, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", ErrStorage, err)
	}
	if err := fn(ctx, &txRepository{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapPgError(err)
	}
	return nil
}

const accountColumns = `id, organization_id, code, name, type, normal_balance, parent_id, is_active, is_postable,
pl_category, cf_activity, requires_bp, subledger, deleted_at, created_at, updated_at`

func (r *repository) ListAccounts(ctx context.Context, orgID int64) ([]Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts
WHERE organization_id=$1 AND deleted_at IS NULL ORDER BY code`, orgID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	return scanAccounts(rows)
}

const entryColumns = `id, organization_id, date, memo, entry_type, COALESCE(opening_key, closing_key, ''),
reversal_of_id, source_module, source_id, posted_by, deleted_at, created_at, updated_at`

func (r *repository) ListEntries(ctx context.Context, orgID int64) ([]JournalEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+entryColumns+` FROM journal_entries
WHERE organization_id=$1 AND deleted_at IS NULL ORDER BY date DESC, id DESC`, orgID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	var entries []JournalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) InsertAccount(ctx context.Context, in CreateAccountInput, nb NormalBalance) (Account, error) {
	account := Account{
		OrganizationID:  in.OrganizationID,
		Code:            in.Code,
		Name:            in.Name,
		Type:            in.Type,
		NormalBalance:   nb,
		ParentID:        in.ParentID,
		IsActive:        true,
		IsPostable:      in.IsPostable,
		PLCategory:      in.PLCategory,
		CFActivity:      in.CFActivity,
		RequiresPartner: in.RequiresPartner,
		Subledger:       in.Subledger,
	}
	err := r.tx.QueryRow(ctx, `INSERT INTO accounts
(organization_id, code, name, type, normal_balance, parent_id, is_active, is_postable, pl_category, cf_activity, requires_bp, subledger)
VALUES ($1,$2,$3,$4,$5,$6,TRUE,$7,$8,$9,$10,$11)
RETURNING id, created_at, updated_at`,
		in.OrganizationID, in.Code, in.Name, in.Type, nb, in.ParentID, in.IsPostable,
		in.PLCategory, in.CFActivity, in.RequiresPartner, in.Subledger).
		Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return Account{}, mapPgError(err)
	}
	return account, nil
}

func (r *txRepository) GetAccount(ctx context.Context, id int64) (Account, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id=$1`, id)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, fmt.Errorf("%w: account %d", ErrNotFound, id)
		}
		return Account{}, mapPgError(err)
	}
	return a, nil
}

func (r *txRepository) UpdateAccountType(ctx context.Context, id int64, t AccountType, nb NormalBalance) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE accounts SET type=$2, normal_balance=$3, updated_at=NOW()
WHERE id=$1 AND deleted_at IS NULL`, id, t, nb)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %d", ErrNotFound, id)
	}
	return nil
}

func (r *txRepository) SetAccountActive(ctx context.Context, id int64, active bool) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE accounts SET is_active=$2, updated_at=NOW()
WHERE id=$1 AND deleted_at IS NULL`, id, active)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %d", ErrNotFound, id)
	}
	return nil
}

func (r *txRepository) SoftDeleteAccount(ctx context.Context, id int64) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE accounts SET deleted_at=NOW(), updated_at=NOW()
WHERE id=$1 AND deleted_at IS NULL`, id)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %d", ErrNotFound, id)
	}
	return nil
}

func (r *txRepository) ClearAccountParent(ctx context.Context, parentID int64) error {
	_, err := r.tx.Exec(ctx, `UPDATE accounts SET parent_id=NULL, updated_at=NOW() WHERE parent_id=$1`, parentID)
	return mapPgError(err)
}

func (r *txRepository) CountAccountLines(ctx context.Context, accountID int64) (int64, error) {
	var count int64
	err := r.tx.QueryRow(ctx, `SELECT COUNT(*) FROM journal_lines WHERE account_id=$1`, accountID).Scan(&count)
	if err != nil {
		return 0, mapPgError(err)
	}
	return count, nil
}

func (r *txRepository) InsertEntry(ctx context.Context, in PostingInput, reversalOf *int64) (JournalEntry, error) {
	var openingKey, closingKey *string
	switch in.Type {
	case EntryTypeOpening:
		openingKey = &in.FiscalKey
	case EntryTypeClosing:
		closingKey = &in.FiscalKey
	}
	entry := JournalEntry{
		OrganizationID: in.OrganizationID,
		Date:           in.Date,
		Memo:           in.Memo,
		Type:           in.Type,
		FiscalKey:      in.FiscalKey,
		ReversalOf:     reversalOf,
		SourceModule:   in.SourceModule,
		SourceID:       in.SourceID,
		PostedBy:       in.PostedBy,
	}
	err := r.tx.QueryRow(ctx, `INSERT INTO journal_entries
(organization_id, date, memo, entry_type, opening_key, closing_key, reversal_of_id, source_module, source_id, posted_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING id, created_at, updated_at`,
		in.OrganizationID, in.Date, in.Memo, in.Type, openingKey, closingKey, reversalOf,
		in.SourceModule, nullUUID(in.SourceID), nullInt(in.PostedBy)).
		Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return JournalEntry{}, mapPgError(err)
	}
	return entry, nil
}

func (r *txRepository) InsertLines(ctx context.Context, entryID, orgID int64, lines []PostingLineInput) error {
	for _, line := range lines {
		if _, err := r.tx.Exec(ctx, `INSERT INTO journal_lines (entry_id, organization_id, account_id, bp_id, debit, credit)
VALUES ($1,$2,$3,$4,$5,$6)`, entryID, orgID, line.AccountID, line.PartnerID, line.Debit, line.Credit); err != nil {
			return mapPgError(err)
		}
	}
	return nil
}

func (r *txRepository) LinkSource(ctx context.Context, module string, ref uuid.UUID, entryID int64) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO source_links (module, ref_id, entry_id) VALUES ($1,$2,$3)`, module, ref, entryID)
	return mapPgError(err)
}

func (r *txRepository) GetEntryWithLines(ctx context.Context, orgID, entryID int64) (JournalEntry, []JournalLine, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries
WHERE id=$1 AND organization_id=$2 AND deleted_at IS NULL`, entryID, orgID)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, nil, fmt.Errorf("%w: entry %d", ErrNotFound, entryID)
		}
		return JournalEntry{}, nil, mapPgError(err)
	}
	rows, err := r.tx.Query(ctx, `SELECT id, entry_id, organization_id, account_id, bp_id, debit, credit, created_at
FROM journal_lines WHERE entry_id=$1 ORDER BY id ASC`, entryID)
	if err != nil {
		return JournalEntry{}, nil, mapPgError(err)
	}
	defer rows.Close()
	var lines []JournalLine
	for rows.Next() {
		var line JournalLine
		if err := rows.Scan(&line.ID, &line.EntryID, &line.OrganizationID, &line.AccountID, &line.PartnerID,
			&line.Debit, &line.Credit, &line.CreatedAt); err != nil {
			return JournalEntry{}, nil, mapPgError(err)
		}
		lines = append(lines, line)
	}
	return entry, lines, rows.Err()
}

func (r *txRepository) HasReversal(ctx context.Context, entryID int64) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM journal_entries
WHERE reversal_of_id=$1 AND deleted_at IS NULL)`, entryID).Scan(&exists)
	if err != nil {
		return false, mapPgError(err)
	}
	return exists, nil
}

func (r *txRepository) LatestClosingDate(ctx context.Context, orgID int64) (*time.Time, error) {
	var latest *time.Time
	err := r.tx.QueryRow(ctx, `SELECT MAX(date) FROM journal_entries
WHERE organization_id=$1 AND entry_type='CLOSING' AND deleted_at IS NULL`, orgID).Scan(&latest)
	if err != nil {
		return nil, mapPgError(err)
	}
	return latest, nil
}

// mapPgError translates storage constraint violations into domain sentinels.
// The partial unique indexes on journal_entries serialize period claims, so
// two concurrent opening postings yield exactly one ErrDuplicatePeriod.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.ConstraintName {
		case "uq_journal_entries_opening_live", "uq_journal_entries_closing_live":
			return fmt.Errorf("%w: %s", ErrDuplicatePeriod, pgErr.ConstraintName)
		case "uq_accounts_org_code_live":
			return fmt.Errorf("%w: account code already in use", ErrConflict)
		case "uq_source_links":
			return fmt.Errorf("%w: source already posted", ErrConflict)
		case "uq_journal_entries_reversal_live":
			return fmt.Errorf("%w: entry already reversed", ErrConflict)
		}
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.OrganizationID, &a.Code, &a.Name, &a.Type, &a.NormalBalance, &a.ParentID,
		&a.IsActive, &a.IsPostable, &a.PLCategory, &a.CFActivity, &a.RequiresPartner, &a.Subledger,
		&a.DeletedAt, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func scanAccounts(rows pgx.Rows) ([]Account, error) {
	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, mapPgError(err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func scanEntry(row pgx.Row) (JournalEntry, error) {
	var e JournalEntry
	var sourceID *uuid.UUID
	var postedBy *int64
	err := row.Scan(&e.ID, &e.OrganizationID, &e.Date, &e.Memo, &e.Type, &e.FiscalKey, &e.ReversalOf,
		&e.SourceModule, &sourceID, &postedBy, &e.DeletedAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return JournalEntry{}, err
	}
	if sourceID != nil {
		e.SourceID = *sourceID
	}
	if postedBy != nil {
		e.PostedBy = *postedBy
	}
	return e, nil
}

func nullInt(val int64) any {
	if val == 0 {
		return nil
	}
	return val
}

func nullUUID(val uuid.UUID) any {
	if val == uuid.Nil {
		return nil
	}
	return val
}
