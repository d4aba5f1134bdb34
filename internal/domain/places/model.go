package places

// Place es un destino de la visita (portería, edificio, etc.).
// Es data de referencia: el servicio no la modifica.
type Place struct {
	ID   int64
	Name string
}
