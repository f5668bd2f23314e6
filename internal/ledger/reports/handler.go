package reports

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/ledger"
	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

// Handler exposes read-only report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers organization-scoped report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/trial-balance", h.TrialBalance)
	r.Get("/income-statement", h.IncomeStatement)
}

func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}
	asOf, ok := dateQuery(w, r, "as_of", time.Now())
	if !ok {
		return
	}

	tb, err := h.service.TrialBalance(r.Context(), orgID, asOf)
	if err != nil {
		h.logger.Error("trial balance", slog.Any("error", err), slog.Int64("org_id", orgID))
		ledger.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tb)
}

func (h *Handler) IncomeStatement(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}
	now := time.Now()
	from, ok := dateQuery(w, r, "from", time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC))
	if !ok {
		return
	}
	to, ok := dateQuery(w, r, "to", now)
	if !ok {
		return
	}

	params := IncomeStatementParams{
		OrganizationID: orgID,
		From:           from,
		To:             to,
		IncludeZero:    r.URL.Query().Get("include_zero") == "true",
		IncludeHeader:  r.URL.Query().Get("include_header") == "true",
		Grouping:       Grouping(r.URL.Query().Get("grouping")),
	}
	if params.Grouping != "" && params.Grouping != GroupingByType && params.Grouping != GroupingByCategory {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "grouping must be BY_TYPE or BY_CATEGORY")
		return
	}
	if raw := r.URL.Query().Get("tax_rate"); raw != "" {
		rate, err := decimal.NewFromString(raw)
		if err != nil || rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "tax_rate must be a decimal between 0 and 1")
			return
		}
		params.TaxRate = &rate
	}

	is, err := h.service.IncomeStatement(r.Context(), params)
	if err != nil {
		h.logger.Error("income statement", slog.Any("error", err), slog.Int64("org_id", orgID))
		ledger.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, is)
}

func orgIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orgID"), 10, 64)
	if err != nil || id < 1 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid organization id")
		return 0, false
	}
	return id, true
}

func dateQuery(w http.ResponseWriter, r *http.Request, name string, fallback time.Time) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", name+" must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return t, true
}
