package operators

import "strings"

// Role es el rol explícito de la cuenta de operador.
type Role string

const (
	RoleGuard         Role = "guardia"
	RoleSecurityChief Role = "jefe_seguridad"
	RoleAdmin         Role = "administrador"
)

// Operator es la cuenta de staff que registra ingresos y salidas.
type Operator struct {
	ID     int64
	Name   string
	Email  string
	Role   Role
	Active bool
}

// ParseRole acepta el valor guardado o el nombre visible ("Jefe de seguridad").
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "guardia":
		return RoleGuard, true
	case "jefe_seguridad", "jefe de seguridad":
		return RoleSecurityChief, true
	case "administrador", "admin":
		return RoleAdmin, true
	default:
		return "", false
	}
}

// CanOperate indica si el rol puede usar el escáner, el ingreso manual,
// cerrar visitas y ver el listado.
func CanOperate(r Role) bool {
	switch r {
	case RoleGuard, RoleSecurityChief, RoleAdmin:
		return true
	default:
		return false
	}
}
