package persons

import (
	"context"
	"errors"
	"strings"

	"visitasegura/internal/domain/identity"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Ensure crea o actualiza la persona del RUT.
// Un nombre "mejor" solo completa campos vacíos: nunca se borra un nombre guardado.
func (s *Service) Ensure(ctx context.Context, rut identity.RUT, fullName string) (Person, error) {
	if rut.IsZero() {
		return Person{}, ErrInvalidInput
	}

	first, last := identity.SplitName(identity.TitleName(fullName))

	p, created, err := s.repo.GetOrCreate(ctx, Person{
		RUT:       rut.String(),
		FirstName: first,
		LastName:  last,
	})
	if err != nil {
		return Person{}, err
	}
	if created {
		return p, nil
	}

	// p puede estar desactualizada; la regla de "solo vacíos" la aplica el repo.
	fillFirst := first != "" && strings.TrimSpace(p.FirstName) == ""
	fillLast := last != "" && strings.TrimSpace(p.LastName) == ""
	if !fillFirst && !fillLast {
		return p, nil
	}
	return s.repo.FillNames(ctx, p.ID, first, last)
}

func (s *Service) FindByRUT(ctx context.Context, rut identity.RUT) (Person, error) {
	if rut.IsZero() {
		return Person{}, ErrInvalidInput
	}
	return s.repo.GetByRUT(ctx, rut.String())
}

func (s *Service) GetByID(ctx context.Context, id int64) (Person, error) {
	return s.repo.GetByID(ctx, id)
}
