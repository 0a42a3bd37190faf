package ports

import (
	"context"

	"github.com/mechshop/service-api/internal/core/domain"
)

// Page selects a 1-based window of a listing.
type Page struct {
	Page    int
	PerPage int
}

// Offset returns the number of rows to skip for this page.
func (p Page) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

// CustomerRepository persists customers. Delete also removes the customer's tickets.
type CustomerRepository interface {
	Create(ctx context.Context, c *domain.Customer) error
	FindByID(ctx context.Context, id int64) (*domain.Customer, error)
	FindByEmail(ctx context.Context, email string) (*domain.Customer, error)
	List(ctx context.Context, page Page) ([]*domain.Customer, int64, error)
	Update(ctx context.Context, c *domain.Customer) error
	Delete(ctx context.Context, id int64) error
}

// MechanicRepository persists mechanics. Delete also drops the mechanic from
// every ticket it was assigned to.
type MechanicRepository interface {
	Create(ctx context.Context, m *domain.Mechanic) error
	FindByID(ctx context.Context, id int64) (*domain.Mechanic, error)
	FindByEmail(ctx context.Context, email string) (*domain.Mechanic, error)
	List(ctx context.Context) ([]*domain.Mechanic, error)
	Update(ctx context.Context, m *domain.Mechanic) error
	Delete(ctx context.Context, id int64) error
	// ExistingIDs returns the subset of ids that belong to a stored mechanic.
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

// PartRepository persists inventory parts. Delete also drops the part from
// every ticket it was fitted to.
type PartRepository interface {
	Create(ctx context.Context, p *domain.Part) error
	FindByID(ctx context.Context, id int64) (*domain.Part, error)
	List(ctx context.Context) ([]*domain.Part, error)
	Update(ctx context.Context, p *domain.Part) error
	Delete(ctx context.Context, id int64) error
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

// TicketRepository persists service tickets. Create stores the ticket together
// with its initial member sets in one write; Update only touches scalar fields.
type TicketRepository interface {
	Create(ctx context.Context, t *domain.ServiceTicket) error
	FindByID(ctx context.Context, id int64) (*domain.ServiceTicket, error)
	List(ctx context.Context, page Page) ([]*domain.ServiceTicket, int64, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]*domain.ServiceTicket, error)
	Update(ctx context.Context, t *domain.ServiceTicket) error
	Delete(ctx context.Context, id int64) error
}

// MembershipRepository manages the ticket↔mechanic and ticket↔part links.
// AddMember and RemoveMember are idempotent at the storage layer. All methods
// return domain.ErrTicketNotFound when the ticket does not exist.
type MembershipRepository interface {
	AddMember(ctx context.Context, ticketID int64, kind domain.MemberKind, memberID int64) error
	RemoveMember(ctx context.Context, ticketID int64, kind domain.MemberKind, memberID int64) error
	// ApplyMembers adds then removes in a single atomic write.
	ApplyMembers(ctx context.Context, ticketID int64, kind domain.MemberKind, add, remove []int64) error
	ListMembers(ctx context.Context, ticketID int64, kind domain.MemberKind) ([]int64, error)
	IsMember(ctx context.Context, ticketID int64, kind domain.MemberKind, memberID int64) (bool, error)
	// CountTicketsByMechanic returns ticket counts keyed by mechanic id.
	// Mechanics without tickets may be absent from the map.
	CountTicketsByMechanic(ctx context.Context) (map[int64]int, error)
}

// Repositories bundles one storage backend's implementations.
type Repositories struct {
	Customers   CustomerRepository
	Mechanics   MechanicRepository
	Parts       PartRepository
	Tickets     TicketRepository
	Memberships MembershipRepository
}
