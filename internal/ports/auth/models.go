package auth

// Claims representa la información extraída del token.
// UserID es el id del operador (usuario.id_usuario).
type Claims struct {
	UserID string
	Email  string
	Role   string
}
