package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mechshop/service-api/internal/core/domain"
	"github.com/mechshop/service-api/internal/core/ports"
)

type PartService struct {
	repo ports.PartRepository
	log  zerolog.Logger
}

func NewPartService(repo ports.PartRepository, log zerolog.Logger) *PartService {
	return &PartService{repo: repo, log: log}
}

func (s *PartService) Create(ctx context.Context, in ports.CreatePartInput) (*domain.Part, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if in.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	}
	now := time.Now().UTC()
	p := &domain.Part{Name: name, Price: in.Price, CreatedAt: now, UpdatedAt: now}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info().Int64("part_id", p.ID).Str("name", p.Name).Msg("part created")
	return p, nil
}

func (s *PartService) Get(ctx context.Context, id int64) (*domain.Part, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *PartService) List(ctx context.Context) ([]*domain.Part, error) {
	return s.repo.List(ctx)
}

func (s *PartService) Update(ctx context.Context, id int64, in ports.UpdatePartInput) (*domain.Part, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
		}
		p.Name = name
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
		}
		p.Price = *in.Price
	}
	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the part and drops it from every ticket.
func (s *PartService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
