package persons

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("person not found")

type Repository interface {
	GetByID(ctx context.Context, id int64) (Person, error)
	GetByRUT(ctx context.Context, rut string) (Person, error)
	// GetOrCreate inserta p si no existe otra persona con el mismo RUT.
	// created indica si la fila es nueva.
	GetOrCreate(ctx context.Context, p Person) (out Person, created bool, err error)
	// FillNames completa nombres y apellidos solo donde lo guardado está vacío,
	// en una sola escritura. Devuelve la persona como quedó.
	FillNames(ctx context.Context, id int64, firstName, lastName string) (Person, error)
}
