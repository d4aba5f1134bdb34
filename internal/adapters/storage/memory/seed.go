package memory

import "visitasegura/internal/domain/operators"

const (
	DevPlaceName  = "Acceso Principal"
	DevOperatorID = 1
)

// SeedDev deja la base usable sin Postgres: un lugar y un guardia activo (id 1).
func SeedDev(db *DB) {
	db.AddPlace(DevPlaceName)
	db.AddOperator(operators.Operator{
		ID:     DevOperatorID,
		Name:   "Guardia",
		Email:  "guardia@visitasegura.local",
		Role:   operators.RoleGuard,
		Active: true,
	})
}
