package memory

import (
	"context"
	"strings"

	"visitasegura/internal/domain/persons"
)

type personRepo struct {
	db *DB
}

func NewPersonRepo(db *DB) persons.Repository {
	return &personRepo{db: db}
}

func (r *personRepo) GetByID(ctx context.Context, id int64) (persons.Person, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	p, ok := r.db.persons[id]
	if !ok {
		return persons.Person{}, persons.ErrNotFound
	}
	return p, nil
}

func (r *personRepo) GetByRUT(ctx context.Context, rut string) (persons.Person, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	id, ok := r.db.byRUT[strings.TrimSpace(rut)]
	if !ok {
		return persons.Person{}, persons.ErrNotFound
	}
	return r.db.persons[id], nil
}

func (r *personRepo) GetOrCreate(ctx context.Context, p persons.Person) (persons.Person, bool, error) {
	rut := strings.TrimSpace(p.RUT)
	if rut == "" {
		return persons.Person{}, false, persons.ErrInvalidInput
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if id, ok := r.db.byRUT[rut]; ok {
		return r.db.persons[id], false, nil
	}

	r.db.lastPerson++
	p.ID = r.db.lastPerson
	p.RUT = rut
	p.Inside = false
	r.db.persons[p.ID] = p
	r.db.byRUT[rut] = p.ID
	return p, true, nil
}

func (r *personRepo) FillNames(ctx context.Context, id int64, firstName, lastName string) (persons.Person, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	p, ok := r.db.persons[id]
	if !ok {
		return persons.Person{}, persons.ErrNotFound
	}
	if firstName = strings.TrimSpace(firstName); firstName != "" && strings.TrimSpace(p.FirstName) == "" {
		p.FirstName = firstName
	}
	if lastName = strings.TrimSpace(lastName); lastName != "" && strings.TrimSpace(p.LastName) == "" {
		p.LastName = lastName
	}
	r.db.persons[id] = p
	return p, nil
}
