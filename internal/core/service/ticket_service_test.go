package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mechshop/service-api/internal/core/domain"
	"github.com/mechshop/service-api/internal/core/ports"
)

func newTicketFixture(t *testing.T) (*memStore, *TicketService, *CustomerService) {
	t.Helper()
	store := newMemStore()
	repos := store.repos()
	_ = repos.Mechanics.Create(context.Background(), &domain.Mechanic{Name: "M"})
	tickets := NewTicketService(repos.Tickets, repos.Customers, nil, zerolog.Nop())
	customers := NewCustomerService(repos.Customers, repos.Tickets, plainVerifier{}, nil, zerolog.Nop())
	if _, err := customers.Register(context.Background(), ports.RegisterCustomerInput{Name: "C", Email: "c@example.com", Password: "pw"}); err != nil {
		t.Fatalf("register customer: %v", err)
	}
	return store, tickets, customers
}

func TestTicketService_CreateAssignsCreator(t *testing.T) {
	_, svc, _ := newTicketFixture(t)
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	ticket, err := svc.Create(context.Background(), 1, ports.CreateTicketInput{VIN: " 1HGCM82633A004352 ", ServiceDate: date, Description: "oil", CustomerID: 2})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ticket.VIN != "1HGCM82633A004352" {
		t.Fatalf("expected trimmed vin, got %q", ticket.VIN)
	}
	if len(ticket.MechanicIDs) != 1 || ticket.MechanicIDs[0] != 1 {
		t.Fatalf("expected creator as first mechanic, got %v", ticket.MechanicIDs)
	}

	stored, err := svc.Get(context.Background(), ticket.ID)
	if err != nil || !stored.HasMember(domain.MemberMechanic, 1) {
		t.Fatalf("expected stored ticket with creator, got %+v, %v", stored, err)
	}
}

func TestTicketService_CreateValidation(t *testing.T) {
	_, svc, _ := newTicketFixture(t)
	date := time.Now()

	if _, err := svc.Create(context.Background(), 1, ports.CreateTicketInput{VIN: "V", ServiceDate: date, CustomerID: 99}); !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
	if _, err := svc.Create(context.Background(), 1, ports.CreateTicketInput{VIN: "  ", ServiceDate: date, CustomerID: 2}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestTicketService_UpdateKeepsMembers(t *testing.T) {
	_, svc, _ := newTicketFixture(t)
	ticket, _ := svc.Create(context.Background(), 1, ports.CreateTicketInput{VIN: "V", ServiceDate: time.Now(), CustomerID: 2})

	desc := "brakes"
	updated, err := svc.Update(context.Background(), ticket.ID, ports.UpdateTicketInput{Description: &desc})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Description != desc || !updated.HasMember(domain.MemberMechanic, 1) {
		t.Fatalf("unexpected ticket: %+v", updated)
	}

	missing := int64(404)
	if _, err := svc.Update(context.Background(), ticket.ID, ports.UpdateTicketInput{CustomerID: &missing}); !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
	if _, err := svc.Update(context.Background(), 999, ports.UpdateTicketInput{}); !errors.Is(err, domain.ErrTicketNotFound) {
		t.Fatalf("expected ErrTicketNotFound, got %v", err)
	}
}

func TestTicketService_ListPaginates(t *testing.T) {
	_, svc, _ := newTicketFixture(t)
	for i := 0; i < 12; i++ {
		_, _ = svc.Create(context.Background(), 1, ports.CreateTicketInput{VIN: "V", ServiceDate: time.Now(), CustomerID: 2})
	}

	list, err := svc.List(context.Background(), ports.Page{Page: 2, PerPage: 0})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Items) != 2 {
		t.Fatalf("expected 2 items on page 2, got %d", len(list.Items))
	}
	want := ports.PageMeta{Page: 2, PerPage: DefaultPerPage, Total: 12, Pages: 2}
	if list.Meta != want {
		t.Fatalf("expected meta %+v, got %+v", want, list.Meta)
	}
}

func TestCustomerService_DeleteCascadesTickets(t *testing.T) {
	store, tickets, customers := newTicketFixture(t)
	ticket, _ := tickets.Create(context.Background(), 1, ports.CreateTicketInput{VIN: "V", ServiceDate: time.Now(), CustomerID: 2})

	mine, err := customers.Tickets(context.Background(), 2)
	if err != nil || len(mine) != 1 {
		t.Fatalf("expected one owned ticket, got %d, %v", len(mine), err)
	}

	if err := customers.Delete(context.Background(), 2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := store.tickets[ticket.ID]; ok {
		t.Fatalf("expected customer's ticket deleted")
	}
	if err := customers.Delete(context.Background(), 2); !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestNormalizePage(t *testing.T) {
	cases := []struct {
		in, want ports.Page
	}{
		{ports.Page{}, ports.Page{Page: 1, PerPage: DefaultPerPage}},
		{ports.Page{Page: 3, PerPage: 500}, ports.Page{Page: 3, PerPage: MaxPerPage}},
		{ports.Page{Page: -1, PerPage: 5}, ports.Page{Page: 1, PerPage: 5}},
	}
	for _, tc := range cases {
		if got := NormalizePage(tc.in); got != tc.want {
			t.Fatalf("NormalizePage(%+v) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}
