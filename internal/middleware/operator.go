package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"visitasegura/internal/domain/operators"
)

// RequireOperator resuelve el operador de los claims contra el directorio.
// Sin claims => 401. Operador desconocido, inactivo o sin rol operativo => 403.
func RequireOperator(dir operators.Directory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetClaims(r.Context())
			if !ok || strings.TrimSpace(claims.UserID) == "" {
				writeMessage(w, http.StatusUnauthorized, "No autenticado.")
				return
			}

			id, err := strconv.ParseInt(strings.TrimSpace(claims.UserID), 10, 64)
			if err != nil || id <= 0 {
				writeMessage(w, http.StatusForbidden, "Operador no válido.")
				return
			}

			op, err := dir.GetByID(r.Context(), id)
			if err != nil {
				if errors.Is(err, operators.ErrNotFound) {
					writeMessage(w, http.StatusForbidden, "Operador no válido.")
					return
				}
				writeMessage(w, http.StatusInternalServerError, "Error interno.")
				return
			}
			if !op.Active {
				writeMessage(w, http.StatusForbidden, "Operador no válido.")
				return
			}
			if !operators.CanOperate(op.Role) {
				writeMessage(w, http.StatusForbidden, "No tiene permisos para esta acción.")
				return
			}

			ctx := context.WithValue(r.Context(), operatorKey, op)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetOperator(ctx context.Context) (operators.Operator, bool) {
	op, ok := ctx.Value(operatorKey).(operators.Operator)
	return op, ok
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "message": msg})
}
