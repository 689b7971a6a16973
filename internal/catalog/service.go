package catalog

import (
	"context"
	"time"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, now: now}
}

func (s *Service) List(ctx context.Context) ([]Priced, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	today := s.now()
	out := make([]Priced, 0, len(entries))
	for _, e := range entries {
		out = append(out, WithPrice(e, today))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Priced, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Priced{}, err
	}
	return WithPrice(e, s.now()), nil
}
