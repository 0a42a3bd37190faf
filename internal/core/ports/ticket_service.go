package ports

import (
	"context"
	"time"

	"github.com/mechshop/service-api/internal/core/domain"
)

// CreateTicketInput carries the fields of a new service ticket.
type CreateTicketInput struct {
	VIN         string
	ServiceDate time.Time
	Description string
	CustomerID  int64
}

// UpdateTicketInput is a partial update of a ticket's scalar fields.
type UpdateTicketInput struct {
	VIN         *string
	ServiceDate *time.Time
	Description *string
	CustomerID  *int64
}

// TicketList is a page of tickets with its totals.
type TicketList struct {
	Items []*domain.ServiceTicket
	Meta  PageMeta
}

// TicketService manages service tickets.
type TicketService interface {
	// Create stores a ticket with creatorID as its first mechanic.
	Create(ctx context.Context, creatorID int64, in CreateTicketInput) (*domain.ServiceTicket, error)
	Get(ctx context.Context, id int64) (*domain.ServiceTicket, error)
	List(ctx context.Context, page Page) (*TicketList, error)
	Update(ctx context.Context, id int64, in UpdateTicketInput) (*domain.ServiceTicket, error)
	Delete(ctx context.Context, id int64) error
}

// CreatePartInput carries the fields of a new inventory part.
type CreatePartInput struct {
	Name  string
	Price float64
}

// UpdatePartInput is a partial update of a part.
type UpdatePartInput struct {
	Name  *string
	Price *float64
}

// PartService manages the inventory.
type PartService interface {
	Create(ctx context.Context, in CreatePartInput) (*domain.Part, error)
	Get(ctx context.Context, id int64) (*domain.Part, error)
	List(ctx context.Context) ([]*domain.Part, error)
	Update(ctx context.Context, id int64, in UpdatePartInput) (*domain.Part, error)
	Delete(ctx context.Context, id int64) error
}

// AssociationService mutates ticket member sets.
type AssociationService interface {
	// Add reports whether the set changed; an existing member is a no-op.
	Add(ctx context.Context, ticketID, memberID int64, kind domain.MemberKind) (bool, error)
	// Remove reports whether the set changed; a non-member is a no-op.
	Remove(ctx context.Context, ticketID, memberID int64, kind domain.MemberKind) (bool, error)
	BulkEdit(ctx context.Context, ticketID int64, addIDs, removeIDs []int64, kind domain.MemberKind) (*domain.ServiceTicket, error)
}

// RankingService produces the mechanic leaderboard.
type RankingService interface {
	RankMechanics(ctx context.Context) ([]domain.MechanicRank, error)
}
