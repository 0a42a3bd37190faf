package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mechshop/service-api/internal/core/domain"
	"github.com/mechshop/service-api/internal/core/ports"
)

// PrincipalStore looks principals up in the mechanic and customer repositories.
type PrincipalStore struct {
	mechanics ports.MechanicRepository
	customers ports.CustomerRepository
}

func NewPrincipalStore(mechanics ports.MechanicRepository, customers ports.CustomerRepository) *PrincipalStore {
	return &PrincipalStore{mechanics: mechanics, customers: customers}
}

func (s *PrincipalStore) FindPrincipalByID(ctx context.Context, role domain.Role, id int64) (*domain.Principal, error) {
	switch role {
	case domain.RoleMechanic:
		m, err := s.mechanics.FindByID(ctx, id)
		if err != nil {
			return nil, principalErr(err, domain.ErrMechanicNotFound)
		}
		return m.Principal(), nil
	case domain.RoleCustomer:
		c, err := s.customers.FindByID(ctx, id)
		if err != nil {
			return nil, principalErr(err, domain.ErrCustomerNotFound)
		}
		return c.Principal(), nil
	}
	return nil, domain.ErrPrincipalNotFound
}

func (s *PrincipalStore) FindPrincipalByEmail(ctx context.Context, role domain.Role, email string) (*domain.Principal, error) {
	switch role {
	case domain.RoleMechanic:
		m, err := s.mechanics.FindByEmail(ctx, email)
		if err != nil {
			return nil, principalErr(err, domain.ErrMechanicNotFound)
		}
		return m.Principal(), nil
	case domain.RoleCustomer:
		c, err := s.customers.FindByEmail(ctx, email)
		if err != nil {
			return nil, principalErr(err, domain.ErrCustomerNotFound)
		}
		return c.Principal(), nil
	}
	return nil, domain.ErrPrincipalNotFound
}

func principalErr(err, notFound error) error {
	if errors.Is(err, notFound) {
		return domain.ErrPrincipalNotFound
	}
	return fmt.Errorf("principal lookup: %w", err)
}
