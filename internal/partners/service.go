package partners

import (
	"context"
	"fmt"
	"strings"

	"github.com/meridian-erp/meridian-erp/internal/ledger"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, orgID int64) ([]BusinessPartner, error) {
	return s.repo.List(ctx, orgID)
}

func (s *Service) Get(ctx context.Context, orgID, id int64) (BusinessPartner, error) {
	if id <= 0 {
		return BusinessPartner{}, fmt.Errorf("%w: invalid partner id", ledger.ErrValidation)
	}
	return s.repo.Get(ctx, orgID, id)
}

func (s *Service) Create(ctx context.Context, bp BusinessPartner) (BusinessPartner, error) {
	if err := s.validate(bp); err != nil {
		return BusinessPartner{}, err
	}
	return s.repo.Create(ctx, bp)
}

func (s *Service) Update(ctx context.Context, bp BusinessPartner) error {
	if bp.ID <= 0 {
		return fmt.Errorf("%w: invalid partner id", ledger.ErrValidation)
	}
	if err := s.validate(bp); err != nil {
		return err
	}
	return s.repo.Update(ctx, bp)
}

// Archive soft-deletes the partner. The code stays reserved; reusing it
// requires Restore, never a second Create.
func (s *Service) Archive(ctx context.Context, orgID, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid partner id", ledger.ErrValidation)
	}
	return s.repo.Archive(ctx, orgID, id)
}

func (s *Service) Restore(ctx context.Context, orgID, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid partner id", ledger.ErrValidation)
	}
	return s.repo.Restore(ctx, orgID, id)
}

// Resolve validates a partner reference on a journal line: it must exist in
// the organization, be live, and be active. Implements ledger.PartnerDirectory.
func (s *Service) Resolve(ctx context.Context, orgID, id int64) error {
	bp, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return err
	}
	if bp.IsDeleted {
		return fmt.Errorf("%w: partner %d", ledger.ErrNotFound, id)
	}
	if !bp.IsActive {
		return fmt.Errorf("%w: partner %s is inactive", ledger.ErrValidation, bp.Code)
	}
	return nil
}

func (s *Service) validate(bp BusinessPartner) error {
	if bp.OrganizationID == 0 {
		return fmt.Errorf("%w: organization required", ledger.ErrValidation)
	}
	if strings.TrimSpace(bp.Code) == "" {
		return fmt.Errorf("%w: partner code required", ledger.ErrValidation)
	}
	if strings.TrimSpace(bp.Name) == "" {
		return fmt.Errorf("%w: partner name required", ledger.ErrValidation)
	}
	if bp.NormalBalance != ledger.NormalBalanceDebit && bp.NormalBalance != ledger.NormalBalanceCredit {
		return fmt.Errorf("%w: unknown normal balance %q", ledger.ErrValidation, bp.NormalBalance)
	}
	return nil
}
