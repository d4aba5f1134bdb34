package postgres

import (
	"context"

	"visitasegura/internal/domain/places"

	"github.com/Masterminds/squirrel"
)

type placeRow struct {
	ID   int64  `db:"id_lugar"`
	Name string `db:"nombre_lugar"`
}

type PlacesRepo struct {
	db *DB
}

func NewPlacesRepo(db *DB) *PlacesRepo {
	return &PlacesRepo{db: db}
}

func (r *PlacesRepo) GetByID(ctx context.Context, id int64) (places.Place, error) {
	return r.one(ctx, r.db.Builder.Select("id_lugar", "nombre_lugar").From("lugar").Where(squirrel.Eq{"id_lugar": id}))
}

func (r *PlacesRepo) First(ctx context.Context) (places.Place, error) {
	return r.one(ctx, r.db.Builder.Select("id_lugar", "nombre_lugar").From("lugar").OrderBy("id_lugar ASC").Limit(1))
}

func (r *PlacesRepo) one(ctx context.Context, b squirrel.SelectBuilder) (places.Place, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return places.Place{}, err
	}

	var row placeRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNoRows(err) {
			return places.Place{}, places.ErrNotFound
		}
		return places.Place{}, err
	}
	return places.Place{ID: row.ID, Name: row.Name}, nil
}

func (r *PlacesRepo) List(ctx context.Context) ([]places.Place, error) {
	query, args, err := r.db.Builder.
		Select("id_lugar", "nombre_lugar").
		From("lugar").
		OrderBy("lower(nombre_lugar) ASC", "id_lugar ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []placeRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	out := make([]places.Place, 0, len(rows))
	for _, row := range rows {
		out = append(out, places.Place{ID: row.ID, Name: row.Name})
	}
	return out, nil
}

// CreatePlace agrega un lugar (seed y tests de integración).
func (r *PlacesRepo) CreatePlace(ctx context.Context, name string) (places.Place, error) {
	var row placeRow
	err := r.db.GetContext(ctx, &row,
		`INSERT INTO lugar (nombre_lugar) VALUES ($1) RETURNING id_lugar, nombre_lugar`, name)
	if err != nil {
		return places.Place{}, err
	}
	return places.Place{ID: row.ID, Name: row.Name}, nil
}
