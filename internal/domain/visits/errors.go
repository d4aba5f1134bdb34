package visits

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	// Conflictos: la persona no está en el estado que la operación supone.
	ErrAlreadyInside = errors.New("person already has an open visit")
	ErrNotInside     = errors.New("person has no open visit")

	ErrUnknownPlace    = errors.New("unknown place")
	ErrUnknownOperator = errors.New("unknown operator")
	ErrVisitNotFound   = errors.New("visit not found")
	ErrPersonNotFound  = errors.New("person not found")

	ErrPlaceRequired   = fmt.Errorf("%w: place required", ErrInvalidInput)
	ErrExitBeforeEntry = fmt.Errorf("%w: exit before entry", ErrInvalidInput)
	ErrInvalidTime     = fmt.Errorf("%w: time must be HH:MM", ErrInvalidInput)
	ErrFutureTime      = fmt.Errorf("%w: time is in the future", ErrInvalidInput)
)

// IsConflict agrupa los errores "suaves" que no son fallas del sistema.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyInside) || errors.Is(err, ErrNotInside)
}
