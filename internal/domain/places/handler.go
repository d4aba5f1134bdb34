package places

import (
	"encoding/json"
	"net/http"

	"visitasegura/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	// Destinos para los selectores del escáner y del ingreso manual
	r.Get("/api/places", listPlacesHandler(svc))
}

type placeResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type listPlacesResponse struct {
	OK     bool            `json:"ok"`
	Places []placeResponse `json:"places"`
}

// listPlacesHandler godoc
// @Summary Listar lugares
// @Description Lista los destinos disponibles ordenados por nombre.
// @Tags places
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID del operador"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {object} listPlacesResponse
// @Failure 401 {object} map[string]any "no autenticado"
// @Failure 403 {object} map[string]any "operador no válido"
// @Failure 500 {object} map[string]any "error interno"
// @Router /api/places [get]
func listPlacesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.GetOperator(r.Context()); !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "message": "No autenticado."})
			return
		}

		items, err := svc.List(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "message": "Error interno."})
			return
		}

		out := make([]placeResponse, 0, len(items))
		for _, p := range items {
			out = append(out, placeResponse{ID: p.ID, Name: p.Name})
		}

		writeJSON(w, http.StatusOK, listPlacesResponse{OK: true, Places: out})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
