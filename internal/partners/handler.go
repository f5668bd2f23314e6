package partners

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-erp/meridian-erp/internal/ledger"
	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the business partner directory.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

type partnerRequest struct {
	Code          string `json:"code" validate:"required"`
	Name          string `json:"name" validate:"required"`
	Category      string `json:"category" validate:"required"`
	NormalBalance string `json:"normal_balance" validate:"required,oneof=DEBIT CREDIT"`
	IsActive      *bool  `json:"is_active"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}
	list, err := h.service.List(r.Context(), orgID)
	if err != nil {
		h.logger.Error("list partners", slog.Any("error", err), slog.Int64("org_id", orgID))
		ledger.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"partners": list})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	bp, err := h.service.Get(r.Context(), orgID, id)
	if err != nil {
		h.logger.Error("get partner", slog.Any("error", err), slog.Int64("partner_id", id))
		ledger.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bp)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	bp, err := h.service.Create(r.Context(), BusinessPartner{
		OrganizationID: orgID,
		Code:           req.Code,
		Name:           req.Name,
		Category:       req.Category,
		NormalBalance:  ledger.NormalBalance(req.NormalBalance),
		IsActive:       req.IsActive == nil || *req.IsActive,
	})
	if err != nil {
		h.logger.Error("create partner", slog.Any("error", err), slog.Int64("org_id", orgID))
		ledger.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, bp)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	err := h.service.Update(r.Context(), BusinessPartner{
		ID:             id,
		OrganizationID: orgID,
		Code:           req.Code,
		Name:           req.Name,
		Category:       req.Category,
		NormalBalance:  ledger.NormalBalance(req.NormalBalance),
		IsActive:       req.IsActive == nil || *req.IsActive,
	})
	if err != nil {
		h.logger.Error("update partner", slog.Any("error", err), slog.Int64("partner_id", id))
		ledger.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.service.Archive(r.Context(), orgID, id); err != nil {
		h.logger.Error("archive partner", slog.Any("error", err), slog.Int64("partner_id", id))
		ledger.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.service.Restore(r.Context(), orgID, id); err != nil {
		h.logger.Error("restore partner", slog.Any("error", err), slog.Int64("partner_id", id))
		ledger.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (partnerRequest, bool) {
	var req partnerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return req, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return req, false
	}
	return req, true
}

func orgIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orgID"), 10, 64)
	if err != nil || id < 1 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid organization id")
		return 0, false
	}
	return id, true
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "partnerID"), 10, 64)
	if err != nil || id < 1 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid partner id")
		return 0, false
	}
	return id, true
}
