// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ManuGH/locflow/internal/domain/workflow/manager"
	"github.com/ManuGH/locflow/internal/domain/workflow/model"
	xglog "github.com/ManuGH/locflow/internal/log"
	"github.com/ManuGH/locflow/internal/session"
)

// errorResponse is the body of every non-2xx answer.
type errorResponse struct {
	Error  string       `json:"error"`
	Detail string       `json:"detail,omitempty"`
	State  *model.State `json:"state,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, code int, kind, detail string) {
	writeJSON(w, code, errorResponse{Error: kind, Detail: detail})
}

// writeError maps a controller or registry error to a response. Workflow
// errors carry the session state so the display layer can render it.
func writeError(w http.ResponseWriter, r *http.Request, err error, st *model.State) {
	code, kind := classifyError(err)
	detail := err.Error()
	var werr *model.WorkflowError
	if errors.As(err, &werr) {
		detail = werr.Message
	}
	if code >= http.StatusInternalServerError {
		logger := xglog.WithComponentFromContext(r.Context(), "api")
		logger.Warn().Err(err).Str(xglog.FieldErrorKind, kind).Msg("request failed")
	}
	writeJSON(w, code, errorResponse{Error: kind, Detail: detail, State: st})
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, session.ErrFull):
		return http.StatusServiceUnavailable, "session_limit"
	case errors.Is(err, manager.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, manager.ErrClosed):
		return http.StatusGone, "session_closed"
	case errors.Is(err, manager.ErrNoCountrySelected):
		return http.StatusBadRequest, "no_country_selected"
	case errors.Is(err, manager.ErrNoVideo):
		return http.StatusBadRequest, "no_video"
	case errors.Is(err, manager.ErrNotComplete):
		return http.StatusConflict, "localization_incomplete"
	case errors.Is(err, manager.ErrWrongStep):
		return http.StatusConflict, "wrong_step"
	case errors.Is(err, manager.ErrNavigationDenied):
		return http.StatusConflict, "navigation_denied"
	}

	var werr *model.WorkflowError
	if errors.As(err, &werr) {
		switch werr.Kind {
		case model.ErrorUploadTooLarge:
			return http.StatusRequestEntityTooLarge, string(werr.Kind)
		case model.ErrorUploadTimeout, model.ErrorProcessingTimeout:
			return http.StatusGatewayTimeout, string(werr.Kind)
		case model.ErrorBackendUnavailable:
			return http.StatusBadGateway, string(werr.Kind)
		}
		return http.StatusBadGateway, string(model.ErrorGeneric)
	}
	return http.StatusInternalServerError, "internal_error"
}
