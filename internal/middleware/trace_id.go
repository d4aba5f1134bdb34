package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const TraceHeader = "X-Trace-ID"

// TraceID asigna un id por request (uuid) y lo devuelve en X-Trace-ID.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tid := uuid.NewString()
		w.Header().Set(TraceHeader, tid)
		ctx := context.WithValue(r.Context(), traceKey, tid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetTraceID(ctx context.Context) string {
	tid, _ := ctx.Value(traceKey).(string)
	return tid
}
