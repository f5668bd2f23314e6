package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateAccountInput groups fields required to create a chart of accounts node.
// NormalBalance is never supplied by the caller; it is derived from Type.
type CreateAccountInput struct {
	OrganizationID  int64
	Code            string
	Name            string
	Type            AccountType
	ParentID        *int64
	IsPostable      bool
	PLCategory      *string
	CFActivity      *string
	RequiresPartner bool
	Subledger       *string
}

// Validate ensures the account input is coherent.
func (in CreateAccountInput) Validate() error {
	if in.OrganizationID == 0 {
		return fmt.Errorf("%w: organization required", ErrValidation)
	}
	if strings.TrimSpace(in.Code) == "" {
		return fmt.Errorf("%w: account code required", ErrValidation)
	}
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: account name required", ErrValidation)
	}
	if !in.Type.Valid() {
		return fmt.Errorf("%w: unknown account type %q", ErrValidation, in.Type)
	}
	return nil
}

// PostingLineInput describes a journal line for a posting request.
type PostingLineInput struct {
	AccountID int64
	PartnerID *int64
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// PostingInput groups fields required to post a journal entry. FiscalKey is
// meaningful only for opening and closing entries, ReversalOf only for
// reversals; Validate enforces the coupling at construction time.
type PostingInput struct {
	OrganizationID int64
	Date           time.Time
	Memo           string
	Type           EntryType
	FiscalKey      string
	ReversalOf     int64
	SourceModule   string
	SourceID       uuid.UUID
	PostedBy       int64
	Lines          []PostingLineInput
}

// Validate checks structural invariants: entry-kind coherence, per-line
// shape, and the balanced-entry invariant with exact decimal equality.
func (in PostingInput) Validate() error {
	if in.OrganizationID == 0 {
		return fmt.Errorf("%w: organization required", ErrValidation)
	}
	if in.Date.IsZero() {
		return fmt.Errorf("%w: date required", ErrValidation)
	}
	if !in.Type.Valid() {
		return fmt.Errorf("%w: unknown entry type %q", ErrValidation, in.Type)
	}
	switch in.Type {
	case EntryTypeOpening, EntryTypeClosing:
		if strings.TrimSpace(in.FiscalKey) == "" {
			return fmt.Errorf("%w: fiscal key required for %s entry", ErrValidation, in.Type)
		}
		if in.ReversalOf != 0 {
			return fmt.Errorf("%w: %s entry cannot reference a reversal target", ErrValidation, in.Type)
		}
	case EntryTypeReversal:
		if in.ReversalOf == 0 {
			return fmt.Errorf("%w: reversal requires the reversed entry id", ErrValidation)
		}
		if in.FiscalKey != "" {
			return fmt.Errorf("%w: reversal cannot carry a fiscal key", ErrValidation)
		}
		// Reversal lines are derived by the engine from the original entry,
		// never supplied by the caller.
		if len(in.Lines) != 0 {
			return fmt.Errorf("%w: reversal lines are computed, not supplied", ErrValidation)
		}
		return nil
	default:
		if in.FiscalKey != "" {
			return fmt.Errorf("%w: fiscal key only valid for opening/closing entries", ErrValidation)
		}
		if in.ReversalOf != 0 {
			return fmt.Errorf("%w: reversal target only valid for reversal entries", ErrValidation)
		}
	}
	return validateLines(in.Lines)
}

func validateLines(lines []PostingLineInput) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: a balanced entry needs at least two lines", ErrValidation)
	}
	debit := decimal.Zero
	credit := decimal.Zero
	for idx, line := range lines {
		if line.AccountID == 0 {
			return fmt.Errorf("%w: line %d missing account", ErrValidation, idx)
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return fmt.Errorf("%w: line %d negative amount", ErrValidation, idx)
		}
		if line.Debit.IsPositive() == line.Credit.IsPositive() {
			return fmt.Errorf("%w: line %d must carry exactly one of debit/credit", ErrValidation, idx)
		}
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	if !debit.Equal(credit) {
		return fmt.Errorf("%w: debits=%s, credits=%s", ErrUnbalanced, debit, credit)
	}
	return nil
}

// ReverseInput wraps parameters for reversing a posted entry.
type ReverseInput struct {
	OrganizationID int64
	EntryID        int64
	Date           time.Time
	Memo           string
	ActorID        int64
}
