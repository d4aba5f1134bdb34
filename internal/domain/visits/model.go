package visits

import "time"

// Action es lo que hizo Toggle con la persona.
type Action string

const (
	ActionCheckIn  Action = "check_in"
	ActionCheckOut Action = "check_out"
)

// Visit es una estadía: abierta mientras ExitAt == nil.
// Solo el Ledger crea visitas o las pasa de abierta a cerrada.
type Visit struct {
	ID              int64
	PersonID        int64
	PlaceID         int64
	EntryAt         time.Time
	ExitAt          *time.Time
	EntryOperatorID int64
	ExitOperatorID  *int64
}

func (v Visit) Open() bool { return v.ExitAt == nil }

// State es el estado visible en el listado.
type State string

const (
	StateInside  State = "Inside"
	StateOutside State = "Outside"
)

// Row es una fila del listado (visita + persona + lugar).
type Row struct {
	VisitID   int64
	FirstName string
	LastName  string
	RUT       string
	Place     string
	EntryAt   time.Time
	ExitAt    *time.Time
}

func (r Row) State() State {
	if r.ExitAt == nil {
		return StateInside
	}
	return StateOutside
}

// Input es el pedido común a CheckIn, CheckOut y Toggle.
// At en cero significa "ahora".
type Input struct {
	PersonID   int64
	PlaceID    int64
	OperatorID int64
	At         time.Time
}

type ListFilter struct {
	Query string
	Limit int
}
