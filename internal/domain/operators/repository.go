package operators

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("operator not found")

// Directory resuelve operadores. La fuente real (tabla usuario, IdP, etc.)
// queda detrás de esta interfaz.
type Directory interface {
	GetByID(ctx context.Context, id int64) (Operator, error)
}
