package memory

import (
	"context"
	"sort"
	"strings"

	"visitasegura/internal/domain/places"
)

type placeRepo struct {
	db *DB
}

func NewPlaceRepo(db *DB) places.Repository {
	return &placeRepo{db: db}
}

func (r *placeRepo) GetByID(ctx context.Context, id int64) (places.Place, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	p, ok := r.db.places[id]
	if !ok {
		return places.Place{}, places.ErrNotFound
	}
	return p, nil
}

func (r *placeRepo) First(ctx context.Context) (places.Place, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var (
		first places.Place
		found bool
	)
	for _, p := range r.db.places {
		if !found || p.ID < first.ID {
			first, found = p, true
		}
	}
	if !found {
		return places.Place{}, places.ErrNotFound
	}
	return first, nil
}

func (r *placeRepo) List(ctx context.Context) ([]places.Place, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]places.Place, 0, len(r.db.places))
	for _, p := range r.db.places {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a == b {
			return out[i].ID < out[j].ID
		}
		return a < b
	})
	return out, nil
}

// AddPlace agrega un lugar con el siguiente id.
func (db *DB) AddPlace(name string) places.Place {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.lastPlace++
	p := places.Place{ID: db.lastPlace, Name: strings.TrimSpace(name)}
	db.places[p.ID] = p
	return p
}
