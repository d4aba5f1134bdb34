package places

import (
	"context"
	"errors"
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

func (s *Service) Get(ctx context.Context, id int64) (Place, error) {
	if id <= 0 {
		return Place{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) First(ctx context.Context) (Place, error) {
	return s.repo.First(ctx)
}

func (s *Service) List(ctx context.Context) ([]Place, error) {
	return s.repo.List(ctx)
}
