package visits

import (
	"context"
	"time"
)

type Repository interface {
	// RunInPersonTx ejecuta fn con acceso exclusivo a la persona.
	// Si fn devuelve error (o ctx se cancela) no queda ninguna escritura.
	// Devuelve ErrPersonNotFound si la persona no existe.
	RunInPersonTx(ctx context.Context, personID int64, fn func(tx Tx) error) error

	GetByID(ctx context.Context, id int64) (Visit, error)
	OpenByPerson(ctx context.Context, personID int64) (Visit, bool, error)
	// List devuelve las últimas visitas por entry_at desc. Con f.Query busca
	// sobre todas las visitas, no solo las más recientes.
	List(ctx context.Context, f RowFilter) ([]Row, error)
}

// RowFilter es lo que List recibe del ledger. Query ya viene plegado
// (minúsculas, sin tildes) y se compara contra el texto de la fila tal
// como se muestra en Location.
type RowFilter struct {
	Query    string
	Limit    int
	Location *time.Location
}

// Tx son las lecturas/escrituras válidas dentro de RunInPersonTx.
type Tx interface {
	OpenVisit(ctx context.Context, personID int64) (Visit, bool, error)
	GetVisit(ctx context.Context, id int64) (Visit, error)
	Insert(ctx context.Context, v Visit) (int64, error)
	Close(ctx context.Context, id int64, at time.Time, operatorID int64) error
	SetInside(ctx context.Context, personID int64, inside bool) error
}
