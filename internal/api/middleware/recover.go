// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"runtime/debug"

	xglog "github.com/ManuGH/locflow/internal/log"
)

// Recoverer turns a handler panic into a JSON 500 and logs the stack.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger := xglog.WithComponentFromContext(r.Context(), "http")
			logger.Error().
				Str(xglog.FieldEvent, "request.panic").
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str(xglog.FieldPath, r.URL.Path).
				Msg("handler panicked")

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"internal_error","detail":"internal server error"}`))
		}()
		next.ServeHTTP(w, r)
	})
}
