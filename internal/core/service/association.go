package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mechshop/service-api/internal/core/domain"
	"github.com/mechshop/service-api/internal/core/ports"
)

// AssociationManager adds and removes mechanics and parts on service tickets.
// Add and Remove are idempotent; BulkEdit applies adds before removes.
type AssociationManager struct {
	tickets     ports.TicketRepository
	memberships ports.MembershipRepository
	mechanics   ports.MechanicRepository
	parts       ports.PartRepository
	ranking     ports.RankingCache
	activity    ports.ActivityRecorder
	log         zerolog.Logger
	now         func() time.Time
}

// NewAssociationManager builds a manager. ranking and activity may be nil.
func NewAssociationManager(repos ports.Repositories, ranking ports.RankingCache, activity ports.ActivityRecorder, log zerolog.Logger) *AssociationManager {
	return &AssociationManager{
		tickets:     repos.Tickets,
		memberships: repos.Memberships,
		mechanics:   repos.Mechanics,
		parts:       repos.Parts,
		ranking:     ranking,
		activity:    activity,
		log:         log,
		now:         time.Now,
	}
}

func (m *AssociationManager) Add(ctx context.Context, ticketID, memberID int64, kind domain.MemberKind) (bool, error) {
	if err := m.lookup(ctx, ticketID, memberID, kind); err != nil {
		return false, err
	}
	member, err := m.memberships.IsMember(ctx, ticketID, kind, memberID)
	if err != nil {
		return false, fmt.Errorf("add %s: %w", kind, err)
	}
	if member {
		return false, nil
	}
	if err := m.memberships.AddMember(ctx, ticketID, kind, memberID); err != nil {
		return false, fmt.Errorf("add %s: %w", kind, err)
	}
	m.changed(ctx, ticketID, kind, ports.ActionAdded, []int64{memberID})
	return true, nil
}

func (m *AssociationManager) Remove(ctx context.Context, ticketID, memberID int64, kind domain.MemberKind) (bool, error) {
	if err := m.lookup(ctx, ticketID, memberID, kind); err != nil {
		return false, err
	}
	member, err := m.memberships.IsMember(ctx, ticketID, kind, memberID)
	if err != nil {
		return false, fmt.Errorf("remove %s: %w", kind, err)
	}
	if !member {
		return false, nil
	}
	if err := m.memberships.RemoveMember(ctx, ticketID, kind, memberID); err != nil {
		return false, fmt.Errorf("remove %s: %w", kind, err)
	}
	m.changed(ctx, ticketID, kind, ports.ActionRemoved, []int64{memberID})
	return true, nil
}

// BulkEdit adds every resolvable id of addIDs, then removes every id of
// removeIDs, in one storage write. Unknown add ids and non-member remove ids
// are skipped. An id in both lists ends up removed.
func (m *AssociationManager) BulkEdit(ctx context.Context, ticketID int64, addIDs, removeIDs []int64, kind domain.MemberKind) (*domain.ServiceTicket, error) {
	if !kind.Valid() {
		return nil, domain.ErrInvalidInput
	}
	ticket, err := m.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	add, err := m.existing(ctx, kind, domain.UniqueIDs(addIDs))
	if err != nil {
		return nil, fmt.Errorf("bulk edit: %w", err)
	}
	remove := domain.UniqueIDs(removeIDs)

	if len(add) > 0 || len(remove) > 0 {
		if err := m.memberships.ApplyMembers(ctx, ticketID, kind, add, remove); err != nil {
			return nil, fmt.Errorf("bulk edit: %w", err)
		}
	}

	before := ticket.Members(kind)
	var added, removed []int64
	for _, id := range add {
		if !slices.Contains(before, id) && !slices.Contains(remove, id) {
			added = append(added, id)
		}
	}
	for _, id := range remove {
		if slices.Contains(before, id) {
			removed = append(removed, id)
		}
	}
	if len(added) > 0 {
		m.changed(ctx, ticketID, kind, ports.ActionAdded, added)
	}
	if len(removed) > 0 {
		m.changed(ctx, ticketID, kind, ports.ActionRemoved, removed)
	}

	return m.tickets.FindByID(ctx, ticketID)
}

// AssignCreator makes creatorID the first member of the ticket's mechanic set.
// The caller persists the ticket.
func AssignCreator(ticket *domain.ServiceTicket, creatorID int64) {
	ticket.MechanicIDs = domain.UniqueIDs(append([]int64{creatorID}, ticket.MechanicIDs...))
}

func (m *AssociationManager) lookup(ctx context.Context, ticketID, memberID int64, kind domain.MemberKind) error {
	if !kind.Valid() {
		return domain.ErrInvalidInput
	}
	if _, err := m.tickets.FindByID(ctx, ticketID); err != nil {
		return err
	}
	switch kind {
	case domain.MemberMechanic:
		_, err := m.mechanics.FindByID(ctx, memberID)
		return err
	default:
		_, err := m.parts.FindByID(ctx, memberID)
		return err
	}
}

func (m *AssociationManager) existing(ctx context.Context, kind domain.MemberKind, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []int64
	var err error
	if kind == domain.MemberMechanic {
		found, err = m.mechanics.ExistingIDs(ctx, ids)
	} else {
		found, err = m.parts.ExistingIDs(ctx, ids)
	}
	if err != nil {
		return nil, err
	}
	// Keep request order.
	out := make([]int64, 0, len(found))
	for _, id := range ids {
		if slices.Contains(found, id) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *AssociationManager) changed(ctx context.Context, ticketID int64, kind domain.MemberKind, action string, ids []int64) {
	if kind == domain.MemberMechanic && m.ranking != nil {
		if err := m.ranking.Invalidate(ctx); err != nil {
			m.log.Warn().Err(err).Msg("failed to invalidate ranking cache")
		}
	}
	m.log.Info().
		Int64("ticket_id", ticketID).
		Str("kind", string(kind)).
		Str("action", action).
		Ints64("member_ids", ids).
		Msg("ticket members changed")

	if m.activity != nil {
		m.activity.Record(ports.TicketActivity{
			ID:        uuid.NewString(),
			TicketID:  ticketID,
			Kind:      kind,
			Action:    action,
			MemberIDs: ids,
			At:        m.now().UTC(),
		})
	}
}
