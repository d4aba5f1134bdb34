package memory

import (
	"context"

	"visitasegura/internal/domain/operators"
)

type operatorRepo struct {
	db *DB
}

func NewOperatorDirectory(db *DB) operators.Directory {
	return &operatorRepo{db: db}
}

func (r *operatorRepo) GetByID(ctx context.Context, id int64) (operators.Operator, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	op, ok := r.db.operators[id]
	if !ok {
		return operators.Operator{}, operators.ErrNotFound
	}
	return op, nil
}

// AddOperator guarda op; si no trae id se asigna el siguiente.
func (db *DB) AddOperator(op operators.Operator) operators.Operator {
	db.mu.Lock()
	defer db.mu.Unlock()

	if op.ID <= 0 {
		op.ID = db.lastOperator + 1
	}
	if op.ID > db.lastOperator {
		db.lastOperator = op.ID
	}
	db.operators[op.ID] = op
	return op
}
