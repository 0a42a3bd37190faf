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

type TicketService struct {
	tickets   ports.TicketRepository
	customers ports.CustomerRepository
	ranking   ports.RankingCache
	log       zerolog.Logger
}

func NewTicketService(tickets ports.TicketRepository, customers ports.CustomerRepository, ranking ports.RankingCache, log zerolog.Logger) *TicketService {
	return &TicketService{tickets: tickets, customers: customers, ranking: ranking, log: log}
}

// Create stores a new ticket for an existing customer with creatorID as its
// first mechanic. The ticket and its initial membership are one write.
func (s *TicketService) Create(ctx context.Context, creatorID int64, in ports.CreateTicketInput) (*domain.ServiceTicket, error) {
	vin := strings.TrimSpace(in.VIN)
	if vin == "" || in.ServiceDate.IsZero() {
		return nil, fmt.Errorf("%w: vin and service date are required", domain.ErrInvalidInput)
	}
	if _, err := s.customers.FindByID(ctx, in.CustomerID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	t := &domain.ServiceTicket{
		VIN:         vin,
		ServiceDate: in.ServiceDate.UTC(),
		Description: in.Description,
		CustomerID:  in.CustomerID,
		PartIDs:     []int64{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	AssignCreator(t, creatorID)

	if err := s.tickets.Create(ctx, t); err != nil {
		return nil, err
	}
	s.invalidateRanking(ctx)
	s.log.Info().Int64("ticket_id", t.ID).Int64("customer_id", t.CustomerID).Int64("creator_id", creatorID).Msg("service ticket created")
	return t, nil
}

func (s *TicketService) Get(ctx context.Context, id int64) (*domain.ServiceTicket, error) {
	return s.tickets.FindByID(ctx, id)
}

func (s *TicketService) List(ctx context.Context, page ports.Page) (*ports.TicketList, error) {
	page = NormalizePage(page)
	items, total, err := s.tickets.List(ctx, page)
	if err != nil {
		return nil, err
	}
	return &ports.TicketList{Items: items, Meta: pageMeta(page, total)}, nil
}

func (s *TicketService) Update(ctx context.Context, id int64, in ports.UpdateTicketInput) (*domain.ServiceTicket, error) {
	t, err := s.tickets.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.VIN != nil {
		vin := strings.TrimSpace(*in.VIN)
		if vin == "" {
			return nil, fmt.Errorf("%w: vin must not be empty", domain.ErrInvalidInput)
		}
		t.VIN = vin
	}
	if in.ServiceDate != nil {
		t.ServiceDate = in.ServiceDate.UTC()
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.CustomerID != nil && *in.CustomerID != t.CustomerID {
		if _, err := s.customers.FindByID(ctx, *in.CustomerID); err != nil {
			return nil, err
		}
		t.CustomerID = *in.CustomerID
	}
	t.UpdatedAt = time.Now().UTC()

	if err := s.tickets.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes the ticket and all of its associations.
func (s *TicketService) Delete(ctx context.Context, id int64) error {
	if _, err := s.tickets.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateRanking(ctx)
	s.log.Info().Int64("ticket_id", id).Msg("service ticket deleted")
	return nil
}

func (s *TicketService) invalidateRanking(ctx context.Context) {
	if s.ranking == nil {
		return
	}
	if err := s.ranking.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate ranking cache")
	}
}
