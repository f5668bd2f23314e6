package partners

import (
	"time"

	"github.com/meridian-erp/meridian-erp/internal/ledger"
)

// BusinessPartner represents a subledger counterparty (customer, supplier,
// employee). Codes are unique per organization even across soft-delete:
// reusing a code requires restoring the deleted row, not recreating it.
type BusinessPartner struct {
	ID             int64                `json:"id"`
	OrganizationID int64                `json:"organization_id"`
	Code           string               `json:"code"`
	Name           string               `json:"name"`
	Category       string               `json:"category"`
	NormalBalance  ledger.NormalBalance `json:"normal_balance"`
	IsActive       bool                 `json:"is_active"`
	IsDeleted      bool                 `json:"is_deleted"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}
