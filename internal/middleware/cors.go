package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS para el front del escáner. Sin orígenes (o con "*") se permite todo.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		return cors.AllowAll().Handler
	}

	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Debug-User-ID"},
		ExposedHeaders: []string{TraceHeader},
		MaxAge:         600,
	}).Handler
}
