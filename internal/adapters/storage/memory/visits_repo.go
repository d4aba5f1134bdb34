package memory

import (
	"context"
	"sort"
	"time"

	"visitasegura/internal/domain/visits"
)

type visitRepo struct {
	db *DB
}

func NewVisitRepo(db *DB) visits.Repository {
	return &visitRepo{db: db}
}

// RunInPersonTx toma el shard de la persona, corre fn sobre escrituras en
// staging y solo las aplica si fn termina sin error y ctx sigue vivo.
func (r *visitRepo) RunInPersonTx(ctx context.Context, personID int64, fn func(tx visits.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.db.mu.RLock()
	_, ok := r.db.persons[personID]
	r.db.mu.RUnlock()
	if !ok {
		return visits.ErrPersonNotFound
	}

	mu := r.db.shard(personID)
	mu.Lock()
	defer mu.Unlock()

	// puede haberse cancelado mientras esperaba el lock
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &visitTx{
		db:      r.db,
		pending: make(map[int64]visits.Visit),
		inside:  make(map[int64]bool),
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tx.commit()
	return nil
}

func (r *visitRepo) GetByID(ctx context.Context, id int64) (visits.Visit, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	v, ok := r.db.visits[id]
	if !ok {
		return visits.Visit{}, visits.ErrVisitNotFound
	}
	return v, nil
}

func (r *visitRepo) OpenByPerson(ctx context.Context, personID int64) (visits.Visit, bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	id, ok := r.db.open[personID]
	if !ok {
		return visits.Visit{}, false, nil
	}
	return r.db.visits[id], true, nil
}

func (r *visitRepo) List(ctx context.Context, f visits.RowFilter) ([]visits.Row, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	all := make([]visits.Visit, 0, len(r.db.visits))
	for _, v := range r.db.visits {
		all = append(all, v)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].EntryAt.Equal(all[j].EntryAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].EntryAt.After(all[j].EntryAt)
	})

	var out []visits.Row
	for _, v := range all {
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
		p := r.db.persons[v.PersonID]
		row := visits.Row{
			VisitID:   v.ID,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			RUT:       p.RUT,
			Place:     r.db.places[v.PlaceID].Name,
			EntryAt:   v.EntryAt,
			ExitAt:    v.ExitAt,
		}
		if f.Query != "" && !visits.NewListItem(row, f.Location).Matches(f.Query) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// visitTx acumula escrituras; las lecturas ven primero lo pendiente.
type visitTx struct {
	db      *DB
	pending map[int64]visits.Visit
	inside  map[int64]bool
}

func (t *visitTx) OpenVisit(ctx context.Context, personID int64) (visits.Visit, bool, error) {
	for _, v := range t.pending {
		if v.PersonID == personID && v.Open() {
			return v, true, nil
		}
	}

	t.db.mu.RLock()
	id, ok := t.db.open[personID]
	v := t.db.visits[id]
	t.db.mu.RUnlock()
	if !ok {
		return visits.Visit{}, false, nil
	}
	if p, staged := t.pending[id]; staged {
		v = p
	}
	return v, v.Open(), nil
}

func (t *visitTx) GetVisit(ctx context.Context, id int64) (visits.Visit, error) {
	if v, ok := t.pending[id]; ok {
		return v, nil
	}

	t.db.mu.RLock()
	defer t.db.mu.RUnlock()

	v, ok := t.db.visits[id]
	if !ok {
		return visits.Visit{}, visits.ErrVisitNotFound
	}
	return v, nil
}

// Insert respeta "una visita abierta por persona" igual que el índice
// parcial de Postgres.
func (t *visitTx) Insert(ctx context.Context, v visits.Visit) (int64, error) {
	if _, open, err := t.OpenVisit(ctx, v.PersonID); err != nil {
		return 0, err
	} else if open {
		return 0, visits.ErrAlreadyInside
	}

	v.ID = t.db.nextVisitID()
	v.ExitAt = nil
	v.ExitOperatorID = nil
	t.pending[v.ID] = v
	return v.ID, nil
}

func (t *visitTx) Close(ctx context.Context, id int64, at time.Time, operatorID int64) error {
	v, err := t.GetVisit(ctx, id)
	if err != nil {
		return err
	}
	if !v.Open() {
		return visits.ErrNotInside
	}
	if at.Before(v.EntryAt) {
		return visits.ErrExitBeforeEntry
	}

	exit := at
	op := operatorID
	v.ExitAt = &exit
	v.ExitOperatorID = &op
	t.pending[id] = v
	return nil
}

func (t *visitTx) SetInside(ctx context.Context, personID int64, inside bool) error {
	t.db.mu.RLock()
	_, ok := t.db.persons[personID]
	t.db.mu.RUnlock()
	if !ok {
		return visits.ErrPersonNotFound
	}
	t.inside[personID] = inside
	return nil
}

func (t *visitTx) commit() {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()

	for id, v := range t.pending {
		t.db.visits[id] = v
		if v.Open() {
			t.db.open[v.PersonID] = id
		} else if t.db.open[v.PersonID] == id {
			delete(t.db.open, v.PersonID)
		}
	}
	for personID, inside := range t.inside {
		p := t.db.persons[personID]
		p.Inside = inside
		t.db.persons[personID] = p
	}
}
