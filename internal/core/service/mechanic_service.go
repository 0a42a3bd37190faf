package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mechshop/service-api/internal/core/domain"
	"github.com/mechshop/service-api/internal/core/ports"
)

type MechanicService struct {
	repo     ports.MechanicRepository
	verifier ports.CredentialVerifier
	ranking  ports.RankingCache
	log      zerolog.Logger
}

func NewMechanicService(repo ports.MechanicRepository, verifier ports.CredentialVerifier, ranking ports.RankingCache, log zerolog.Logger) *MechanicService {
	return &MechanicService{repo: repo, verifier: verifier, ranking: ranking, log: log}
}

func (s *MechanicService) Register(ctx context.Context, in ports.RegisterMechanicInput) (*domain.Mechanic, error) {
	if in.Email == "" || in.Password == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Salary < 0 {
		return nil, fmt.Errorf("%w: salary must not be negative", domain.ErrInvalidInput)
	}
	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrMechanicNotFound) {
		return nil, fmt.Errorf("register mechanic: %w", err)
	}

	hash, err := s.verifier.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register mechanic: hash: %w", err)
	}

	now := time.Now().UTC()
	m := &domain.Mechanic{
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		Phone:        in.Phone,
		Salary:       in.Salary,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	s.invalidateRanking(ctx)
	s.log.Info().Int64("mechanic_id", m.ID).Msg("mechanic registered")
	return m, nil
}

func (s *MechanicService) Get(ctx context.Context, id int64) (*domain.Mechanic, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *MechanicService) List(ctx context.Context) ([]*domain.Mechanic, error) {
	return s.repo.List(ctx)
}

// Owned returns the target mechanic when callerID may act on it. A missing
// target is reported before an ownership mismatch.
func (s *MechanicService) Owned(ctx context.Context, callerID, targetID int64) (*domain.Mechanic, error) {
	m, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if callerID != targetID {
		s.log.Warn().Int64("caller_id", callerID).Int64("target_id", targetID).Msg("mechanic ownership violation")
		return nil, domain.ErrForbidden
	}
	return m, nil
}

func (s *MechanicService) Update(ctx context.Context, callerID, targetID int64, in ports.UpdateMechanicInput) (*domain.Mechanic, error) {
	m, err := s.Owned(ctx, callerID, targetID)
	if err != nil {
		return nil, err
	}

	if in.Email != nil && *in.Email != m.Email {
		if _, err := s.repo.FindByEmail(ctx, *in.Email); err == nil {
			return nil, domain.ErrEmailTaken
		} else if !errors.Is(err, domain.ErrMechanicNotFound) {
			return nil, fmt.Errorf("update mechanic: %w", err)
		}
		m.Email = *in.Email
	}
	if in.Name != nil {
		m.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		m.Phone = *in.Phone
	}
	if in.Salary != nil {
		if *in.Salary < 0 {
			return nil, fmt.Errorf("%w: salary must not be negative", domain.ErrInvalidInput)
		}
		m.Salary = *in.Salary
	}
	if in.Password != nil {
		hash, err := s.verifier.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("update mechanic: hash: %w", err)
		}
		m.PasswordHash = hash
	}
	m.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	s.invalidateRanking(ctx)
	return m, nil
}

func (s *MechanicService) Delete(ctx context.Context, callerID, targetID int64) error {
	if _, err := s.Owned(ctx, callerID, targetID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, targetID); err != nil {
		return err
	}
	s.invalidateRanking(ctx)
	s.log.Info().Int64("mechanic_id", targetID).Msg("mechanic deleted")
	return nil
}

func (s *MechanicService) invalidateRanking(ctx context.Context) {
	if s.ranking == nil {
		return
	}
	if err := s.ranking.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate ranking cache")
	}
}
