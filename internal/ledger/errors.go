package ledger

import "errors"

// Sentinel errors for the ledger core. Business-rule violations are detected
// before or during the atomic commit and surfaced synchronously; ErrStorage is
// the only kind eligible for caller-driven retry.
var (
	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("ledger: validation failed")
	// ErrNotPostable indicates a line against a header or inactive account.
	ErrNotPostable = errors.New("ledger: account is not postable")
	// ErrMissingPartner indicates a requires-partner account line without a partner.
	ErrMissingPartner = errors.New("ledger: business partner required")
	// ErrUnbalanced indicates debits != credits.
	ErrUnbalanced = errors.New("ledger: entry not balanced")
	// ErrCrossTenant indicates a reference outside the entry's organization.
	ErrCrossTenant = errors.New("ledger: cross-tenant reference")
	// ErrConflict indicates a uniqueness violation on codes or links.
	ErrConflict = errors.New("ledger: conflict")
	// ErrDuplicatePeriod indicates the opening/closing slot is already claimed.
	ErrDuplicatePeriod = errors.New("ledger: period entry already exists")
	// ErrPeriodClosed indicates posting into an already-closed period.
	ErrPeriodClosed = errors.New("ledger: period is closed")
	// ErrNotFound indicates an unknown account, entry, or partner.
	ErrNotFound = errors.New("ledger: not found")
	// ErrStorage indicates a transport or durability failure.
	ErrStorage = errors.New("ledger: storage failure")
)
