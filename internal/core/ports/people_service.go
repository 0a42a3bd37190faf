package ports

import (
	"context"

	"github.com/mechshop/service-api/internal/core/domain"
)

// RegisterMechanicInput carries the fields needed to create a mechanic.
type RegisterMechanicInput struct {
	Name     string
	Email    string
	Phone    string
	Salary   float64
	Password string
}

// UpdateMechanicInput is a partial update; nil fields are left untouched.
type UpdateMechanicInput struct {
	Name     *string
	Email    *string
	Phone    *string
	Salary   *float64
	Password *string
}

// MechanicService manages mechanic records. Mutations take the caller's
// principal id and are only allowed on the caller's own record.
type MechanicService interface {
	Register(ctx context.Context, in RegisterMechanicInput) (*domain.Mechanic, error)
	Get(ctx context.Context, id int64) (*domain.Mechanic, error)
	List(ctx context.Context) ([]*domain.Mechanic, error)
	// Owned loads the target and applies the ownership rule.
	Owned(ctx context.Context, callerID, targetID int64) (*domain.Mechanic, error)
	Update(ctx context.Context, callerID, targetID int64, in UpdateMechanicInput) (*domain.Mechanic, error)
	Delete(ctx context.Context, callerID, targetID int64) error
}

// RegisterCustomerInput carries the fields needed to create a customer.
type RegisterCustomerInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// UpdateCustomerInput is a partial update; nil fields are left untouched.
type UpdateCustomerInput struct {
	Name     *string
	Email    *string
	Phone    *string
	Password *string
}

// CustomerList is a page of customers with its totals.
type CustomerList struct {
	Items []*domain.Customer
	Meta  PageMeta
}

// PageMeta describes a paginated listing.
type PageMeta struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
}

// CustomerService manages customer records.
type CustomerService interface {
	Register(ctx context.Context, in RegisterCustomerInput) (*domain.Customer, error)
	Get(ctx context.Context, id int64) (*domain.Customer, error)
	List(ctx context.Context, page Page) (*CustomerList, error)
	Update(ctx context.Context, id int64, in UpdateCustomerInput) (*domain.Customer, error)
	Delete(ctx context.Context, id int64) error
	Tickets(ctx context.Context, id int64) ([]*domain.ServiceTicket, error)
}
