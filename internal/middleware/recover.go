package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"visitasegura/internal/platform/logger"
)

// Recover convierte un panic en 500 JSON y lo deja en el log con el stack.
func Recover(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.Error("panic", map[string]any{
					"error":    fmt.Sprint(rec),
					"trace_id": GetTraceID(r.Context()),
					"stack":    string(debug.Stack()),
				})
				writeMessage(w, http.StatusInternalServerError, "Error interno.")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
