package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/mechshop/service-api/internal/api/middleware"
	"github.com/mechshop/service-api/internal/core/domain"
	"github.com/mechshop/service-api/internal/core/ports"
)

type stubMechanicService struct {
	ports.MechanicService
	ownedFn  func(ctx context.Context, callerID, targetID int64) (*domain.Mechanic, error)
	updateFn func(ctx context.Context, callerID, targetID int64, in ports.UpdateMechanicInput) (*domain.Mechanic, error)
}

func (s *stubMechanicService) Owned(ctx context.Context, callerID, targetID int64) (*domain.Mechanic, error) {
	return s.ownedFn(ctx, callerID, targetID)
}

func (s *stubMechanicService) Update(ctx context.Context, callerID, targetID int64, in ports.UpdateMechanicInput) (*domain.Mechanic, error) {
	return s.updateFn(ctx, callerID, targetID, in)
}

type stubAssociationService struct {
	ports.AssociationService
	addFn  func(ctx context.Context, ticketID, memberID int64, kind domain.MemberKind) (bool, error)
	bulkFn func(ctx context.Context, ticketID int64, addIDs, removeIDs []int64, kind domain.MemberKind) (*domain.ServiceTicket, error)
}

func (s *stubAssociationService) Add(ctx context.Context, ticketID, memberID int64, kind domain.MemberKind) (bool, error) {
	return s.addFn(ctx, ticketID, memberID, kind)
}

func (s *stubAssociationService) BulkEdit(ctx context.Context, ticketID int64, addIDs, removeIDs []int64, kind domain.MemberKind) (*domain.ServiceTicket, error) {
	return s.bulkFn(ctx, ticketID, addIDs, removeIDs, kind)
}

func ownerOnly(ctx context.Context, callerID, targetID int64) (*domain.Mechanic, error) {
	if targetID > 2 {
		return nil, domain.ErrMechanicNotFound
	}
	if callerID != targetID {
		return nil, domain.ErrForbidden
	}
	return &domain.Mechanic{ID: targetID}, nil
}

func TestMechanicHandler_UpdateOtherForbiddenRegardlessOfPayload(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	svc := &stubMechanicService{
		ownedFn: ownerOnly,
		updateFn: func(context.Context, int64, int64, ports.UpdateMechanicInput) (*domain.Mechanic, error) {
			t.Fatalf("update should not be called")
			return nil, nil
		},
	}
	h := NewMechanicHandler(svc, nil, nil)

	for _, body := range []string{`{"name":"x"}`, `not-json`, `{"email":"not-an-email"}`, ``} {
		c, _ := newJSONContext(e, http.MethodPut, "/mechanics/2", body)
		c.SetParamNames("id")
		c.SetParamValues("2")
		c.Set(middleware.PrincipalIDKey, int64(1))

		if err := h.Update(c); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("body %q: expected ErrForbidden, got %v", body, err)
		}
	}
}

func TestMechanicHandler_UpdateMissingTarget(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	h := NewMechanicHandler(&stubMechanicService{ownedFn: ownerOnly}, nil, nil)

	c, _ := newJSONContext(e, http.MethodPut, "/mechanics/9", `{}`)
	c.SetParamNames("id")
	c.SetParamValues("9")
	c.Set(middleware.PrincipalIDKey, int64(1))

	if err := h.Update(c); !errors.Is(err, domain.ErrMechanicNotFound) {
		t.Fatalf("expected ErrMechanicNotFound, got %v", err)
	}
}

func TestMechanicHandler_UpdateSelf(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	svc := &stubMechanicService{
		ownedFn: ownerOnly,
		updateFn: func(_ context.Context, callerID, targetID int64, in ports.UpdateMechanicInput) (*domain.Mechanic, error) {
			if in.Name == nil || *in.Name != "Renamed" || in.Email != nil {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Mechanic{ID: targetID, Name: *in.Name}, nil
		},
	}
	h := NewMechanicHandler(svc, nil, nil)

	c, rec := newJSONContext(e, http.MethodPut, "/mechanics/1", `{"name":"Renamed"}`)
	c.SetParamNames("id")
	c.SetParamValues("1")
	c.Set(middleware.PrincipalIDKey, int64(1))

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestMechanicHandler_UpdateSelfInvalidPayload(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	h := NewMechanicHandler(&stubMechanicService{ownedFn: ownerOnly}, nil, nil)

	c, rec := newJSONContext(e, http.MethodPut, "/mechanics/1", `{"email":"nope"}`)
	c.SetParamNames("id")
	c.SetParamValues("1")
	c.Set(middleware.PrincipalIDKey, int64(1))

	if err := h.Update(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMechanicHandler_AssignTicket(t *testing.T) {
	e := echo.New()
	assoc := &stubAssociationService{
		addFn: func(_ context.Context, ticketID, memberID int64, kind domain.MemberKind) (bool, error) {
			if ticketID != 5 || memberID != 1 || kind != domain.MemberMechanic {
				t.Fatalf("unexpected args: %d %d %s", ticketID, memberID, kind)
			}
			return true, nil
		},
	}
	h := NewMechanicHandler(&stubMechanicService{ownedFn: ownerOnly}, assoc, nil)

	c, rec := newJSONContext(e, http.MethodPost, "/mechanics/1/tickets/5", "")
	c.SetParamNames("id", "ticket_id")
	c.SetParamValues("1", "5")
	c.Set(middleware.PrincipalIDKey, int64(1))

	if err := h.AssignTicket(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp membershipResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.Changed || resp.TicketID != 5 || resp.MemberID != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	// Another mechanic's id in the path is rejected before touching the ticket.
	c, _ = newJSONContext(e, http.MethodPost, "/mechanics/2/tickets/5", "")
	c.SetParamNames("id", "ticket_id")
	c.SetParamValues("2", "5")
	c.Set(middleware.PrincipalIDKey, int64(1))
	if err := h.AssignTicket(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestMechanicHandler_MissingPrincipal(t *testing.T) {
	e := echo.New()
	h := NewMechanicHandler(&stubMechanicService{ownedFn: ownerOnly}, nil, nil)

	c, rec := newJSONContext(e, http.MethodDelete, "/mechanics/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.Delete(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
