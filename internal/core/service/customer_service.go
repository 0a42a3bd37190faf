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

type CustomerService struct {
	repo     ports.CustomerRepository
	tickets  ports.TicketRepository
	verifier ports.CredentialVerifier
	ranking  ports.RankingCache
	log      zerolog.Logger
}

func NewCustomerService(repo ports.CustomerRepository, tickets ports.TicketRepository, verifier ports.CredentialVerifier, ranking ports.RankingCache, log zerolog.Logger) *CustomerService {
	return &CustomerService{repo: repo, tickets: tickets, verifier: verifier, ranking: ranking, log: log}
}

func (s *CustomerService) Register(ctx context.Context, in ports.RegisterCustomerInput) (*domain.Customer, error) {
	if in.Email == "" || in.Password == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := s.ensureEmailFree(ctx, in.Email); err != nil {
		return nil, err
	}

	hash, err := s.verifier.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register customer: hash: %w", err)
	}

	now := time.Now().UTC()
	c := &domain.Customer{
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info().Int64("customer_id", c.ID).Msg("customer registered")
	return c, nil
}

func (s *CustomerService) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CustomerService) List(ctx context.Context, page ports.Page) (*ports.CustomerList, error) {
	page = NormalizePage(page)
	items, total, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, err
	}
	return &ports.CustomerList{Items: items, Meta: pageMeta(page, total)}, nil
}

func (s *CustomerService) Update(ctx context.Context, id int64, in ports.UpdateCustomerInput) (*domain.Customer, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil && *in.Email != c.Email {
		if err := s.ensureEmailFree(ctx, *in.Email); err != nil {
			return nil, err
		}
		c.Email = *in.Email
	}
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		c.Phone = *in.Phone
	}
	if in.Password != nil {
		hash, err := s.verifier.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("update customer: hash: %w", err)
		}
		c.PasswordHash = hash
	}
	c.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes the customer together with their tickets.
func (s *CustomerService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.ranking != nil {
		if err := s.ranking.Invalidate(ctx); err != nil {
			s.log.Warn().Err(err).Msg("failed to invalidate ranking cache")
		}
	}
	s.log.Info().Int64("customer_id", id).Msg("customer deleted")
	return nil
}

// Tickets lists the service tickets owned by the customer.
func (s *CustomerService) Tickets(ctx context.Context, id int64) ([]*domain.ServiceTicket, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.tickets.ListByCustomer(ctx, id)
}

func (s *CustomerService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.ErrEmailTaken
	case errors.Is(err, domain.ErrCustomerNotFound):
		return nil
	default:
		return fmt.Errorf("customer email lookup: %w", err)
	}
}
