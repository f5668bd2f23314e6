package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// AuditPort records ledger events for compliance. Sink failures never roll
// back a committed posting; recording happens outside the transaction.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// PartnerDirectory validates business-partner references on requires_bp lines.
type PartnerDirectory interface {
	Resolve(ctx context.Context, orgID, partnerID int64) error
}

// CacheInvalidator is notified after every committed posting so report
// caches can drop stale aggregates.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}

// PostingCounter observes committed postings by entry type.
type PostingCounter interface {
	CountPosting(entryType string)
}

// Service is the journal posting engine: it atomically validates and
// persists a journal entry with its lines, or rejects the whole entry.
type Service struct {
	repo     Repository
	audit    AuditPort
	partners PartnerDirectory
	cache    CacheInvalidator
	counter  PostingCounter
	now      func() time.Time
}

// NewService constructs the posting engine.
func NewService(repo Repository, audit AuditPort, partners PartnerDirectory, cache CacheInvalidator) *Service {
	return &Service{repo: repo, audit: audit, partners: partners, cache: cache, now: time.Now}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// WithCounter attaches a posting counter.
func (s *Service) WithCounter(counter PostingCounter) {
	s.counter = counter
}

// PostEntry validates and commits a journal entry as a single unit of work.
// All business-rule violations surface before any write is visible.
func (s *Service) PostEntry(ctx context.Context, in PostingInput) (JournalEntry, error) {
	if err := in.Validate(); err != nil {
		return JournalEntry{}, err
	}
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		lines := in.Lines
		var reversalOf *int64
		if in.Type == EntryTypeReversal {
			original, originalLines, err := s.resolveReversal(ctx, tx, in)
			if err != nil {
				return err
			}
			lines = mirrorLines(originalLines)
			reversalOf = &original.ID
		}
		for idx, line := range lines {
			account, err := resolvePostable(ctx, tx, in.OrganizationID, line.AccountID)
			if err != nil {
				return fmt.Errorf("line %d: %w", idx, err)
			}
			if account.RequiresPartner && line.PartnerID == nil {
				return fmt.Errorf("line %d: %w: account %s", idx, ErrMissingPartner, account.Code)
			}
			if line.PartnerID != nil && s.partners != nil {
				if err := s.partners.Resolve(ctx, in.OrganizationID, *line.PartnerID); err != nil {
					return fmt.Errorf("line %d: %w", idx, err)
				}
			}
		}
		if in.Type == EntryTypeNormal {
			if err := s.ensurePeriodOpen(ctx, tx, in.OrganizationID, in.Date); err != nil {
				return err
			}
		}
		inserted, err := tx.InsertEntry(ctx, in, reversalOf)
		if err != nil {
			return err
		}
		if err := tx.InsertLines(ctx, inserted.ID, in.OrganizationID, lines); err != nil {
			return err
		}
		if in.SourceModule != "" {
			if err := tx.LinkSource(ctx, in.SourceModule, in.SourceID, inserted.ID); err != nil {
				return err
			}
		}
		inserted.Lines = toJournalLines(inserted.ID, in.OrganizationID, lines, s.now())
		entry = inserted
		return nil
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.afterCommit(ctx, in.PostedBy, "journal.post", entry)
	return entry, nil
}

// ReverseEntry posts the mirror image of a prior entry. The mirrored lines
// are computed by the engine, never supplied by the caller.
func (s *Service) ReverseEntry(ctx context.Context, in ReverseInput) (JournalEntry, error) {
	if in.EntryID == 0 {
		return JournalEntry{}, fmt.Errorf("%w: entry id required", ErrValidation)
	}
	date := in.Date
	if date.IsZero() {
		date = s.now()
	}
	return s.PostEntry(ctx, PostingInput{
		OrganizationID: in.OrganizationID,
		Date:           date,
		Memo:           in.Memo,
		Type:           EntryTypeReversal,
		ReversalOf:     in.EntryID,
		PostedBy:       in.ActorID,
	})
}

// GetEntry returns one live entry with its lines.
func (s *Service) GetEntry(ctx context.Context, orgID, entryID int64) (JournalEntry, error) {
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		e, lines, err := tx.GetEntryWithLines(ctx, orgID, entryID)
		if err != nil {
			return err
		}
		e.Lines = lines
		entry = e
		return nil
	})
	return entry, err
}

// ListEntries returns the live journal for one organization.
func (s *Service) ListEntries(ctx context.Context, orgID int64) ([]JournalEntry, error) {
	return s.repo.ListEntries(ctx, orgID)
}

// resolveReversal loads and checks the entry being reversed: it must be
// live, organization-scoped, and not already reversed.
func (s *Service) resolveReversal(ctx context.Context, tx TxRepository, in PostingInput) (JournalEntry, []JournalLine, error) {
	original, lines, err := tx.GetEntryWithLines(ctx, in.OrganizationID, in.ReversalOf)
	if err != nil {
		return JournalEntry{}, nil, err
	}
	if original.Type == EntryTypeReversal {
		return JournalEntry{}, nil, fmt.Errorf("%w: entry %d is itself a reversal", ErrValidation, original.ID)
	}
	reversed, err := tx.HasReversal(ctx, original.ID)
	if err != nil {
		return JournalEntry{}, nil, err
	}
	if reversed {
		return JournalEntry{}, nil, fmt.Errorf("%w: entry %d already reversed", ErrConflict, original.ID)
	}
	return original, lines, nil
}

// ensurePeriodOpen gates normal postings against closed periods: entries
// dated on or before the latest live closing entry's date are blocked.
func (s *Service) ensurePeriodOpen(ctx context.Context, tx TxRepository, orgID int64, date time.Time) error {
	latest, err := tx.LatestClosingDate(ctx, orgID)
	if err != nil {
		return err
	}
	if latest != nil && !date.After(*latest) {
		return fmt.Errorf("%w: closed through %s", ErrPeriodClosed, latest.Format("2006-01-02"))
	}
	return nil
}

func (s *Service) afterCommit(ctx context.Context, actorID int64, action string, entry JournalEntry) {
	if s.counter != nil {
		s.counter.CountPosting(string(entry.Type))
	}
	if s.cache != nil {
		// Stale cache entries expire on TTL; a failed bump is not fatal.
		_ = s.cache.Bump(ctx)
	}
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		OrganizationID: entry.OrganizationID,
		ActorID:        actorID,
		Action:         action,
		Entity:         "journal_entry",
		EntityID:       fmt.Sprintf("%d", entry.ID),
		After: map[string]any{
			"entry_type": string(entry.Type),
			"date":       entry.Date.Format("2006-01-02"),
			"fiscal_key": entry.FiscalKey,
			"lines":      len(entry.Lines),
		},
		At: s.now(),
	})
}

// mirrorLines swaps each debit into a credit of equal amount and vice versa.
func mirrorLines(lines []JournalLine) []PostingLineInput {
	out := make([]PostingLineInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, PostingLineInput{
			AccountID: line.AccountID,
			PartnerID: line.PartnerID,
			Debit:     line.Credit,
			Credit:    line.Debit,
		})
	}
	return out
}

func toJournalLines(entryID, orgID int64, lines []PostingLineInput, ts time.Time) []JournalLine {
	out := make([]JournalLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, JournalLine{
			EntryID:        entryID,
			OrganizationID: orgID,
			AccountID:      line.AccountID,
			PartnerID:      line.PartnerID,
			Debit:          line.Debit,
			Credit:         line.Credit,
			CreatedAt:      ts,
		})
	}
	return out
}
