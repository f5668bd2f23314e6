package ledger

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		title  string
	}{
		{ErrNotFound, http.StatusNotFound, "Not Found"},
		{ErrDuplicatePeriod, http.StatusConflict, "Duplicate Period Entry"},
		{ErrPeriodClosed, http.StatusConflict, "Period Closed"},
		{ErrConflict, http.StatusConflict, "Conflict"},
		{ErrUnbalanced, http.StatusUnprocessableEntity, "Unbalanced Entry"},
		{ErrNotPostable, http.StatusUnprocessableEntity, "Account Not Postable"},
		{ErrMissingPartner, http.StatusUnprocessableEntity, "Missing Partner"},
		{ErrCrossTenant, http.StatusForbidden, "Cross Tenant Access"},
		{ErrValidation, http.StatusBadRequest, "Validation Failed"},
		{ErrStorage, http.StatusInternalServerError, "Internal Error"},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, fmt.Errorf("%w: detail", tc.err))

		require.Equal(t, tc.status, rr.Code)
		var problem httpx.ProblemDetail
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
		require.Equal(t, tc.title, problem.Title)
		require.Equal(t, tc.status, problem.Status)
	}
}
