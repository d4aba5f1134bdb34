package visits

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"visitasegura/internal/domain/identity"
	"visitasegura/internal/domain/persons"
	"visitasegura/internal/middleware"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 64 << 10

// RegisterRoutes espera que r ya exija un operador (middleware.RequireOperator).
func RegisterRoutes(r chi.Router, ledger *Ledger, people *persons.Service) {
	// Escáner: toggle ingreso/salida (o solo lectura con dryRun)
	r.Post("/api/scan", scanHandler(ledger, people))
	r.Post("/api/manual", manualHandler(ledger, people))
	r.Post("/api/close", closeHandler(ledger))
	r.Get("/api/list", listHandler(ledger))
}

type scanRequest struct {
	Raw     string `json:"raw"`
	PlaceID int64  `json:"placeId"`
	DryRun  bool   `json:"dryRun"`
}

type scanResponse struct {
	OK      bool   `json:"ok"`
	Inside  *bool  `json:"inside,omitempty"`
	Action  Action `json:"action,omitempty"`
	VisitID int64  `json:"visitId,omitempty"`
	RUT     string `json:"rut,omitempty"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message"`
}

type manualRequest struct {
	Name    string `json:"name"`
	RUT     string `json:"rut"`
	PlaceID int64  `json:"placeId"`
	Time    string `json:"time"` // HH:MM opcional, hoy en la zona configurada
}

type manualResponse struct {
	OK      bool   `json:"ok"`
	VisitID int64  `json:"visitId"`
	Message string `json:"message"`
}

type closeRequest struct {
	VisitID int64 `json:"visitId"`
}

type messageResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

type listRowResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	NationalID string `json:"nationalId"`
	Place      string `json:"place"`
	EntryTime  string `json:"entryTime"`
	ExitTime   string `json:"exitTime"`
	State      State  `json:"state"`
}

type listResponse struct {
	OK   bool              `json:"ok"`
	Rows []listRowResponse `json:"rows"`
}

// scanHandler godoc
// @Summary Escanear documento
// @Description Resuelve el RUT del texto escaneado y registra ingreso o salida según el estado actual. Con dryRun solo informa si la persona está dentro.
// @Tags visits
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID del operador"
// @Param Authorization header string false "Bearer token en producción"
// @Param body body scanRequest true "Texto escaneado"
// @Success 200 {object} scanResponse
// @Failure 400 {object} messageResponse
// @Failure 401 {object} messageResponse
// @Failure 403 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Failure 409 {object} messageResponse
// @Failure 422 {object} messageResponse
// @Failure 500 {object} messageResponse
// @Router /api/scan [post]
func scanHandler(ledger *Ledger, people *persons.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		op, ok := middleware.GetOperator(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "No autenticado.")
			return
		}

		var req scanRequest
		if !decode(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Raw) == "" {
			writeMessage(w, http.StatusBadRequest, "Debe enviar el texto escaneado.")
			return
		}

		id, err := identity.Resolve(req.Raw)
		if err != nil {
			writeError(w, err)
			return
		}

		if req.DryRun {
			inside, name, err := peek(r.Context(), ledger, people, id)
			if err != nil {
				writeError(w, err)
				return
			}
			msg := fmt.Sprintf("%s (%s) está fuera.", name, id.RUT)
			if inside {
				msg = fmt.Sprintf("%s (%s) está dentro.", name, id.RUT)
			}
			writeJSON(w, http.StatusOK, scanResponse{
				OK: true, Inside: &inside, RUT: id.RUT.String(), Name: name, Message: msg,
			})
			return
		}

		p, err := people.Ensure(r.Context(), id.RUT, id.Name)
		if err != nil {
			writeError(w, err)
			return
		}

		visitID, action, err := ledger.Toggle(r.Context(), Input{
			PersonID:   p.ID,
			PlaceID:    req.PlaceID,
			OperatorID: op.ID,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		inside := action == ActionCheckIn
		name := DisplayName(p.FirstName, p.LastName)
		writeJSON(w, http.StatusOK, scanResponse{
			OK:      true,
			Inside:  &inside,
			Action:  action,
			VisitID: visitID,
			RUT:     p.RUT,
			Name:    name,
			Message: transitionMessage(action, name, p.RUT),
		})
	}
}

// peek no escribe: una persona desconocida simplemente está fuera.
func peek(ctx context.Context, ledger *Ledger, people *persons.Service, id identity.Identified) (bool, string, error) {
	p, err := people.FindByRUT(ctx, id.RUT)
	if errors.Is(err, persons.ErrNotFound) {
		name := id.Name
		if name == "" {
			name = NoName
		}
		return false, name, nil
	}
	if err != nil {
		return false, "", err
	}

	inside, err := ledger.IsInside(ctx, p.ID)
	if err != nil {
		return false, "", err
	}
	return inside, DisplayName(p.FirstName, p.LastName), nil
}

// manualHandler godoc
// @Summary Ingreso manual
// @Description Registra un ingreso con nombre y RUT digitados. La hora opcional (HH:MM) es de hoy y no puede ser futura.
// @Tags visits
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID del operador"
// @Param Authorization header string false "Bearer token en producción"
// @Param body body manualRequest true "Datos del ingreso"
// @Success 200 {object} manualResponse
// @Failure 400 {object} messageResponse
// @Failure 401 {object} messageResponse
// @Failure 403 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Failure 409 {object} messageResponse
// @Failure 422 {object} messageResponse
// @Failure 500 {object} messageResponse
// @Router /api/manual [post]
func manualHandler(ledger *Ledger, people *persons.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		op, ok := middleware.GetOperator(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "No autenticado.")
			return
		}

		var req manualRequest
		if !decode(w, r, &req) {
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			writeMessage(w, http.StatusBadRequest, "Debe indicar el nombre.")
			return
		}
		if req.PlaceID <= 0 {
			writeError(w, ErrPlaceRequired)
			return
		}

		rut, err := identity.ParseRUT(req.RUT)
		if err != nil {
			writeMessage(w, http.StatusUnprocessableEntity, "RUT inválido.")
			return
		}

		var at time.Time
		if strings.TrimSpace(req.Time) != "" {
			at, err = ParseClock(req.Time, ledger.Now())
			if err != nil {
				writeError(w, err)
				return
			}
		}

		p, err := people.Ensure(r.Context(), rut, name)
		if err != nil {
			writeError(w, err)
			return
		}

		visitID, err := ledger.CheckIn(r.Context(), Input{
			PersonID:   p.ID,
			PlaceID:    req.PlaceID,
			OperatorID: op.ID,
			At:         at,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, manualResponse{
			OK:      true,
			VisitID: visitID,
			Message: transitionMessage(ActionCheckIn, DisplayName(p.FirstName, p.LastName), p.RUT),
		})
	}
}

// closeHandler godoc
// @Summary Cerrar visita
// @Description Registra la salida por id de visita. Cerrar una visita ya cerrada responde ok.
// @Tags visits
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID del operador"
// @Param Authorization header string false "Bearer token en producción"
// @Param body body closeRequest true "Visita a cerrar"
// @Success 200 {object} messageResponse
// @Failure 400 {object} messageResponse
// @Failure 401 {object} messageResponse
// @Failure 403 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Failure 500 {object} messageResponse
// @Router /api/close [post]
func closeHandler(ledger *Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		op, ok := middleware.GetOperator(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "No autenticado.")
			return
		}

		var req closeRequest
		if !decode(w, r, &req) {
			return
		}
		if req.VisitID <= 0 {
			writeMessage(w, http.StatusBadRequest, "Debe indicar la visita.")
			return
		}

		already, err := ledger.CloseVisit(r.Context(), req.VisitID, op.ID, time.Time{})
		if err != nil {
			writeError(w, err)
			return
		}

		msg := "Salida registrada."
		if already {
			msg = "La visita ya estaba cerrada."
		}
		writeJSON(w, http.StatusOK, messageResponse{OK: true, Message: msg})
	}
}

// listHandler godoc
// @Summary Listar visitas
// @Description Últimas visitas, más recientes primero. query (o q) filtra sin distinguir mayúsculas ni tildes.
// @Tags visits
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID del operador"
// @Param Authorization header string false "Bearer token en producción"
// @Param query query string false "Texto a buscar"
// @Param q query string false "Alias de query"
// @Param limit query int false "Máximo de filas (default 500, máx 2000)"
// @Success 200 {object} listResponse
// @Failure 400 {object} messageResponse
// @Failure 401 {object} messageResponse
// @Failure 403 {object} messageResponse
// @Failure 500 {object} messageResponse
// @Router /api/list [get]
func listHandler(ledger *Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.GetOperator(r.Context()); !ok {
			writeMessage(w, http.StatusUnauthorized, "No autenticado.")
			return
		}

		q := r.URL.Query()
		query := q.Get("query")
		if query == "" {
			query = q.Get("q")
		}

		limit := 0
		if v := strings.TrimSpace(q.Get("limit")); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				writeMessage(w, http.StatusBadRequest, "limit debe ser un entero positivo.")
				return
			}
			limit = n
		}

		items, err := ledger.List(r.Context(), ListFilter{Query: query, Limit: limit})
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]listRowResponse, 0, len(items))
		for _, it := range items {
			out = append(out, listRowResponse{
				ID:         it.ID,
				Name:       it.Name,
				NationalID: it.NationalID,
				Place:      it.Place,
				EntryTime:  it.EntryTime,
				ExitTime:   it.ExitTime,
				State:      it.State,
			})
		}
		writeJSON(w, http.StatusOK, listResponse{OK: true, Rows: out})
	}
}

// ParseClock interpreta "HH:MM" como hora de hoy (según now) y rechaza horas futuras.
func ParseClock(s string, now time.Time) (time.Time, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidTime
	}
	at := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	if at.After(now) {
		return time.Time{}, ErrFutureTime
	}
	return at, nil
}

func transitionMessage(a Action, name, rut string) string {
	if a == ActionCheckOut {
		return fmt.Sprintf("Salida registrada: %s (%s).", name, rut)
	}
	return fmt.Sprintf("Ingreso registrado: %s (%s).", name, rut)
}

// errorStatus traduce errores de dominio a status + mensaje para portería.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, identity.ErrNoValidID):
		return http.StatusUnprocessableEntity, "No se pudo leer un RUT válido. Escanee nuevamente."
	case errors.Is(err, ErrPlaceRequired):
		return http.StatusBadRequest, "Debe indicar el lugar de destino."
	case errors.Is(err, ErrInvalidTime):
		return http.StatusBadRequest, "Hora inválida, use HH:MM."
	case errors.Is(err, ErrFutureTime):
		return http.StatusBadRequest, "La hora no puede ser futura."
	case errors.Is(err, ErrExitBeforeEntry):
		return http.StatusBadRequest, "La salida no puede ser anterior al ingreso."
	case errors.Is(err, ErrInvalidInput), errors.Is(err, persons.ErrInvalidInput):
		return http.StatusBadRequest, "Datos inválidos."
	case errors.Is(err, ErrAlreadyInside):
		return http.StatusConflict, "La persona ya se encuentra dentro."
	case errors.Is(err, ErrNotInside):
		return http.StatusConflict, "La persona no tiene una visita abierta."
	case errors.Is(err, ErrUnknownPlace):
		return http.StatusNotFound, "Lugar no encontrado."
	case errors.Is(err, ErrVisitNotFound):
		return http.StatusNotFound, "Visita no encontrada."
	case errors.Is(err, ErrPersonNotFound), errors.Is(err, persons.ErrNotFound):
		return http.StatusNotFound, "Persona no encontrada."
	case errors.Is(err, ErrUnknownOperator):
		return http.StatusForbidden, "Operador no válido."
	default:
		return http.StatusInternalServerError, "Error interno."
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, msg := errorStatus(err)
	writeMessage(w, status, msg)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{OK: false, Message: msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "JSON inválido.")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
