package ledger

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the chart of accounts and the journal.
type Handler struct {
	logger   *slog.Logger
	registry *Registry
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, registry *Registry, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		registry: registry,
		service:  service,
		validate: validator.New(),
	}
}

type createAccountRequest struct {
	Code            string  `json:"code" validate:"required"`
	Name            string  `json:"name" validate:"required"`
	Type            string  `json:"type" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	ParentID        *int64  `json:"parent_id"`
	IsPostable      bool    `json:"is_postable"`
	PLCategory      *string `json:"pl_category"`
	CFActivity      *string `json:"cf_activity"`
	RequiresPartner bool    `json:"requires_partner"`
	Subledger       *string `json:"subledger"`
}

type updateAccountTypeRequest struct {
	Type string `json:"type" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
}

type postingLineRequest struct {
	AccountID int64           `json:"account_id" validate:"required"`
	PartnerID *int64          `json:"partner_id"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

type postEntryRequest struct {
	Date         string               `json:"date" validate:"required,datetime=2006-01-02"`
	Memo         string               `json:"memo"`
	Type         string               `json:"type" validate:"omitempty,oneof=NORMAL OPENING CLOSING"`
	FiscalKey    string               `json:"fiscal_key"`
	SourceModule string               `json:"source_module"`
	SourceID     string               `json:"source_id" validate:"omitempty,uuid"`
	Lines        []postingLineRequest `json:"lines" validate:"required,min=2,dive"`
}

type reverseEntryRequest struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Memo string `json:"memo"`
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}
	var req createAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	account, err := h.registry.CreateAccount(r.Context(), CreateAccountInput{
		OrganizationID:  orgID,
		Code:            req.Code,
		Name:            req.Name,
		Type:            AccountType(req.Type),
		ParentID:        req.ParentID,
		IsPostable:      req.IsPostable,
		PLCategory:      req.PLCategory,
		CFActivity:      req.CFActivity,
		RequiresPartner: req.RequiresPartner,
		Subledger:       req.Subledger,
	}, actorID(r))
	if err != nil {
		h.logger.Error("create account", slog.Any("error", err), slog.Int64("org_id", orgID))
		RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, account)
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}
	accounts, err := h.registry.ListAccounts(r.Context(), orgID)
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err), slog.Int64("org_id", orgID))
		RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}
	accountID, ok := idParam(w, r, "accountID")
	if !ok {
		return
	}
	account, err := h.registry.GetAccount(r.Context(), orgID, accountID)
	if err != nil {
		RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) UpdateAccountType(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}
	accountID, ok := idParam(w, r, "accountID")
	if !ok {
		return
	}
	var req updateAccountTypeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	account, err := h.registry.UpdateAccountType(r.Context(), orgID, accountID, AccountType(req.Type), actorID(r))
	if err != nil {
		h.logger.Error("update account type", slog.Any("error", err), slog.Int64("account_id", accountID))
		RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) DeactivateAccount(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}
	accountID, ok := idParam(w, r, "accountID")
	if !ok {
		return
	}
	if err := h.registry.Deactivate(r.Context(), orgID, accountID, actorID(r)); err != nil {
		h.logger.Error("deactivate account", slog.Any("error", err), slog.Int64("account_id", accountID))
		RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}
	accountID, ok := idParam(w, r, "accountID")
	if !ok {
		return
	}
	if err := h.registry.SoftDelete(r.Context(), orgID, accountID, actorID(r)); err != nil {
		h.logger.Error("delete account", slog.Any("error", err), slog.Int64("account_id", accountID))
		RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) PostEntry(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}
	var req postEntryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
		return
	}
	entryType := EntryType(req.Type)
	if req.Type == "" {
		entryType = EntryTypeNormal
	}
	var sourceID uuid.UUID
	if req.SourceID != "" {
		sourceID, err = uuid.Parse(req.SourceID)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "source_id must be a UUID")
			return
		}
	}

	lines := make([]PostingLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, PostingLineInput{
			AccountID: line.AccountID,
			PartnerID: line.PartnerID,
			Debit:     line.Debit,
			Credit:    line.Credit,
		})
	}

	entry, err := h.service.PostEntry(r.Context(), PostingInput{
		OrganizationID: orgID,
		Date:           date,
		Memo:           req.Memo,
		Type:           entryType,
		FiscalKey:      req.FiscalKey,
		SourceModule:   req.SourceModule,
		SourceID:       sourceID,
		PostedBy:       actorID(r),
		Lines:          lines,
	})
	if err != nil {
		h.logger.Error("post entry", slog.Any("error", err), slog.Int64("org_id", orgID))
		RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}
	entries, err := h.service.ListEntries(r.Context(), orgID)
	if err != nil {
		h.logger.Error("list entries", slog.Any("error", err), slog.Int64("org_id", orgID))
		RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}
	entryID, ok := idParam(w, r, "entryID")
	if !ok {
		return
	}
	entry, err := h.service.GetEntry(r.Context(), orgID, entryID)
	if err != nil {
		h.logger.Error("get entry", slog.Any("error", err), slog.Int64("entry_id", entryID))
		RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) ReverseEntry(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}
	entryID, ok := idParam(w, r, "entryID")
	if !ok {
		return
	}
	var req reverseEntryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	entry, err := h.service.ReverseEntry(r.Context(), ReverseInput{
		OrganizationID: orgID,
		EntryID:        entryID,
		Date:           date,
		Memo:           req.Memo,
		ActorID:        actorID(r),
	})
	if err != nil {
		h.logger.Error("reverse entry", slog.Any("error", err), slog.Int64("entry_id", entryID))
		RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func orgIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orgID"), 10, 64)
	if err != nil || id < 1 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid organization id")
		return 0, false
	}
	return id, true
}

func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", fmt.Sprintf("invalid %s", name))
		return 0, false
	}
	return id, true
}

// actorID reads the authenticated user id propagated by the gateway.
func actorID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.Header.Get("X-Actor-ID"), 10, 64)
	return id
}
