package persons

import "strings"

// Person es la persona identificada por RUT.
// Inside es el flag denormalizado "está dentro"; solo lo mueve el ledger de visitas.
type Person struct {
	ID        int64
	RUT       string // normalizado: 12.345.678-5
	FirstName string
	LastName  string
	Inside    bool
}

func (p Person) DisplayName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
