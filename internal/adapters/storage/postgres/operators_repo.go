package postgres

import (
	"context"

	"visitasegura/internal/domain/operators"

	"github.com/Masterminds/squirrel"
)

type operatorRow struct {
	ID     int64  `db:"id_usuario"`
	Name   string `db:"nombre"`
	Email  string `db:"email"`
	Role   string `db:"rol"`
	Active bool   `db:"activo"`
}

// OperatorsRepo lee la tabla usuario; la administración de cuentas vive fuera.
type OperatorsRepo struct {
	db *DB
}

func NewOperatorsRepo(db *DB) *OperatorsRepo {
	return &OperatorsRepo{db: db}
}

func (r *OperatorsRepo) GetByID(ctx context.Context, id int64) (operators.Operator, error) {
	query, args, err := r.db.Builder.
		Select("id_usuario", "nombre", "email", "rol", "activo").
		From("usuario").
		Where(squirrel.Eq{"id_usuario": id}).
		ToSql()
	if err != nil {
		return operators.Operator{}, err
	}

	var row operatorRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNoRows(err) {
			return operators.Operator{}, operators.ErrNotFound
		}
		return operators.Operator{}, err
	}

	// un rol desconocido queda vacío y CanOperate lo rechaza
	role, _ := operators.ParseRole(row.Role)
	return operators.Operator{
		ID:     row.ID,
		Name:   row.Name,
		Email:  row.Email,
		Role:   role,
		Active: row.Active,
	}, nil
}

// CreateOperator inserta una cuenta (seed y tests de integración).
func (r *OperatorsRepo) CreateOperator(ctx context.Context, op operators.Operator) (operators.Operator, error) {
	err := r.db.GetContext(ctx, &op.ID,
		`INSERT INTO usuario (nombre, email, rol, activo) VALUES ($1, $2, $3, $4) RETURNING id_usuario`,
		op.Name, op.Email, string(op.Role), op.Active)
	if err != nil {
		return operators.Operator{}, err
	}
	return op, nil
}
