package postgres

import (
	"context"
	"strings"

	"visitasegura/internal/domain/persons"

	"github.com/Masterminds/squirrel"
)

var personColumns = []string{"id_persona", "run", "nombres", "apellidos", "is_inside"}

type personRow struct {
	ID        int64  `db:"id_persona"`
	RUT       string `db:"run"`
	FirstName string `db:"nombres"`
	LastName  string `db:"apellidos"`
	Inside    bool   `db:"is_inside"`
}

func (r personRow) toDomain() persons.Person {
	return persons.Person{ID: r.ID, RUT: r.RUT, FirstName: r.FirstName, LastName: r.LastName, Inside: r.Inside}
}

type PersonsRepo struct {
	db *DB
}

func NewPersonsRepo(db *DB) *PersonsRepo {
	return &PersonsRepo{db: db}
}

func (r *PersonsRepo) GetByID(ctx context.Context, id int64) (persons.Person, error) {
	return r.get(ctx, squirrel.Eq{"id_persona": id})
}

func (r *PersonsRepo) GetByRUT(ctx context.Context, rut string) (persons.Person, error) {
	return r.get(ctx, squirrel.Eq{"run": strings.TrimSpace(rut)})
}

func (r *PersonsRepo) get(ctx context.Context, where squirrel.Eq) (persons.Person, error) {
	query, args, err := r.db.Builder.Select(personColumns...).From("persona").Where(where).ToSql()
	if err != nil {
		return persons.Person{}, err
	}

	var row personRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNoRows(err) {
			return persons.Person{}, persons.ErrNotFound
		}
		return persons.Person{}, err
	}
	return row.toDomain(), nil
}

// GetOrCreate usa ON CONFLICT para que dos escaneos simultáneos del mismo
// RUT terminen en la misma fila.
func (r *PersonsRepo) GetOrCreate(ctx context.Context, p persons.Person) (persons.Person, bool, error) {
	rut := strings.TrimSpace(p.RUT)
	if rut == "" {
		return persons.Person{}, false, persons.ErrInvalidInput
	}

	query, args, err := r.db.Builder.
		Insert("persona").
		Columns("run", "nombres", "apellidos").
		Values(rut, p.FirstName, p.LastName).
		Suffix("ON CONFLICT (run) DO NOTHING RETURNING " + strings.Join(personColumns, ", ")).
		ToSql()
	if err != nil {
		return persons.Person{}, false, err
	}

	var row personRow
	err = r.db.GetContext(ctx, &row, query, args...)
	switch {
	case err == nil:
		return row.toDomain(), true, nil
	case isNoRows(err):
		existing, err := r.GetByRUT(ctx, rut)
		return existing, false, err
	default:
		return persons.Person{}, false, err
	}
}

// FillNames decide en el mismo UPDATE qué columnas siguen vacías, así dos
// escaneos simultáneos no se pisan.
func (r *PersonsRepo) FillNames(ctx context.Context, id int64, firstName, lastName string) (persons.Person, error) {
	query, args, err := r.db.Builder.
		Update("persona").
		Set("nombres", fillIfEmpty("nombres", firstName)).
		Set("apellidos", fillIfEmpty("apellidos", lastName)).
		Where(squirrel.Eq{"id_persona": id}).
		Suffix("RETURNING " + strings.Join(personColumns, ", ")).
		ToSql()
	if err != nil {
		return persons.Person{}, err
	}

	var row personRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNoRows(err) {
			return persons.Person{}, persons.ErrNotFound
		}
		return persons.Person{}, err
	}
	return row.toDomain(), nil
}

func fillIfEmpty(column, value string) squirrel.Sqlizer {
	value = strings.TrimSpace(value)
	if value == "" {
		return squirrel.Expr(column)
	}
	return squirrel.Expr("CASE WHEN btrim("+column+") = '' THEN ? ELSE "+column+" END", value)
}
