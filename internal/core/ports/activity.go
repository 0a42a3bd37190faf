package ports

import (
	"context"
	"time"

	"github.com/mechshop/service-api/internal/core/domain"
)

// Activity actions.
const (
	ActionAdded   = "added"
	ActionRemoved = "removed"
)

// TicketActivity describes one change to a ticket's member sets.
type TicketActivity struct {
	ID        string            `json:"id"`
	TicketID  int64             `json:"ticket_id"`
	Kind      domain.MemberKind `json:"kind"`
	Action    string            `json:"action"`
	MemberIDs []int64           `json:"member_ids"`
	At        time.Time         `json:"at"`
}

// RoutingKey names the event on the message bus, e.g. "ticket.mechanic.added".
func (a TicketActivity) RoutingKey() string {
	return "ticket." + string(a.Kind) + "." + a.Action
}

// ActivityRecorder accepts activity for asynchronous delivery. Record must not block
// the caller on I/O.
type ActivityRecorder interface {
	Record(a TicketActivity)
}

// ActivitySink delivers activity to its final destination.
type ActivitySink interface {
	Publish(ctx context.Context, a TicketActivity) error
}

// RankingCache stores the last computed mechanic ranking.
type RankingCache interface {
	Get(ctx context.Context) ([]domain.MechanicRank, bool, error)
	Set(ctx context.Context, ranks []domain.MechanicRank) error
	Invalidate(ctx context.Context) error
}
