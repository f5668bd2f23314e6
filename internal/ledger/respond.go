package ledger

import (
	"errors"
	"net/http"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

// RespondError maps the ledger error taxonomy to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicatePeriod):
		httpx.Problem(w, http.StatusConflict, "Duplicate Period Entry", err.Error())
	case errors.Is(err, ErrPeriodClosed):
		httpx.Problem(w, http.StatusConflict, "Period Closed", err.Error())
	case errors.Is(err, ErrConflict):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrUnbalanced):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unbalanced Entry", err.Error())
	case errors.Is(err, ErrNotPostable):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Account Not Postable", err.Error())
	case errors.Is(err, ErrMissingPartner):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Missing Partner", err.Error())
	case errors.Is(err, ErrCrossTenant):
		httpx.Problem(w, http.StatusForbidden, "Cross Tenant Access", err.Error())
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
