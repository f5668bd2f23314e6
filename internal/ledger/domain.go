package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType enumerates CoA categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// Valid reports whether the account type is one of the five kinds.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// NormalBalance marks the side on which an account balance is conventionally positive.
type NormalBalance string

const (
	NormalBalanceDebit  NormalBalance = "DEBIT"
	NormalBalanceCredit NormalBalance = "CREDIT"
)

// NormalBalanceFor derives the normal balance from the account type.
// Asset and expense accounts carry debit balances, everything else credit.
func NormalBalanceFor(t AccountType) NormalBalance {
	if t == AccountTypeAsset || t == AccountTypeExpense {
		return NormalBalanceDebit
	}
	return NormalBalanceCredit
}

// Account models a chart of accounts node scoped to one organization.
type Account struct {
	ID              int64
	OrganizationID  int64
	Code            string
	Name            string
	Type            AccountType
	NormalBalance   NormalBalance
	ParentID        *int64
	IsActive        bool
	IsPostable      bool
	PLCategory      *string
	CFActivity      *string
	RequiresPartner bool
	Subledger       *string
	DeletedAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// EntryType enumerates the closed set of journal entry kinds.
type EntryType string

const (
	EntryTypeNormal   EntryType = "NORMAL"
	EntryTypeOpening  EntryType = "OPENING"
	EntryTypeClosing  EntryType = "CLOSING"
	EntryTypeReversal EntryType = "REVERSAL"
)

// Valid reports whether the entry type is a known kind.
func (t EntryType) Valid() bool {
	switch t {
	case EntryTypeNormal, EntryTypeOpening, EntryTypeClosing, EntryTypeReversal:
		return true
	}
	return false
}

// JournalEntry captures posting metadata. Entries are immutable once posted
// except for the reversal linkage and the soft-delete marker.
type JournalEntry struct {
	ID             int64
	OrganizationID int64
	Date           time.Time
	Memo           string
	Type           EntryType
	FiscalKey      string
	ReversalOf     *int64
	SourceModule   string
	SourceID       uuid.UUID
	PostedBy       int64
	DeletedAt      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Lines          []JournalLine
}

// JournalLine stores a debit or credit amount for an account. Exactly one
// of Debit/Credit is nonzero.
type JournalLine struct {
	ID             int64
	EntryID        int64
	OrganizationID int64
	AccountID      int64
	PartnerID      *int64
	Debit          decimal.Decimal
	Credit         decimal.Decimal
	CreatedAt      time.Time
}

// BalanceSide returns the signed contribution of the line for an account
// with the given normal balance.
func (l JournalLine) BalanceSide(nb NormalBalance) decimal.Decimal {
	if nb == NormalBalanceDebit {
		return l.Debit.Sub(l.Credit)
	}
	return l.Credit.Sub(l.Debit)
}
