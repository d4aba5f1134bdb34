package places

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("place not found")

type Repository interface {
	GetByID(ctx context.Context, id int64) (Place, error)
	// First devuelve el lugar con menor id (destino por defecto del escáner).
	First(ctx context.Context) (Place, error)
	List(ctx context.Context) ([]Place, error)
}
