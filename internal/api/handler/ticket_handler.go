package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mechshop/service-api/internal/api/metrics"
	"github.com/mechshop/service-api/internal/core/domain"
	"github.com/mechshop/service-api/internal/core/ports"
)

// TicketHandler serves /service_tickets.
type TicketHandler struct {
	tickets      ports.TicketService
	associations ports.AssociationService
}

func NewTicketHandler(tickets ports.TicketService, associations ports.AssociationService) *TicketHandler {
	return &TicketHandler{tickets: tickets, associations: associations}
}

// Create opens a service ticket; the calling mechanic is assigned to it.
//
// @Summary      Create a service ticket
// @Tags         service_tickets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTicketRequest  true  "Ticket details"
// @Success      201   {object}  createdResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /service_tickets [post]
func (h *TicketHandler) Create(c echo.Context) error {
	creatorID, err := principalID(c)
	if err != nil {
		return err
	}
	var req createTicketRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := toCreateTicketInput(req)
	if err != nil {
		return err
	}

	t, err := h.tickets.Create(c.Request().Context(), creatorID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, createdResponse{ID: t.ID, Message: "service ticket created"})
}

// List returns a page of service tickets.
//
// @Summary      List service tickets
// @Tags         service_tickets
// @Produce      json
// @Param        page      query     int  false  "Page number (default 1)"
// @Param        per_page  query     int  false  "Page size (default 10, max 100)"
// @Success      200       {object}  ticketListResponse
// @Router       /service_tickets [get]
func (h *TicketHandler) List(c echo.Context) error {
	list, err := h.tickets.List(c.Request().Context(), pageParams(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ticketListResponse{Tickets: toTicketResponses(list.Items), Meta: list.Meta})
}

// Get returns one service ticket.
//
// @Summary      Get a service ticket
// @Tags         service_tickets
// @Produce      json
// @Param        id   path      int  true  "Service ticket ID"
// @Success      200  {object}  ticketResponse
// @Failure      404  {object}  errorResponse
// @Router       /service_tickets/{id} [get]
func (h *TicketHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	t, err := h.tickets.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}

// Update changes a ticket's vin, date, description or customer.
//
// @Summary      Update a service ticket
// @Tags         service_tickets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                  true  "Service ticket ID"
// @Param        body  body      updateTicketRequest  true  "Fields to change"
// @Success      200   {object}  ticketResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /service_tickets/{id} [put]
func (h *TicketHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateTicketRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := toUpdateTicketInput(req)
	if err != nil {
		return err
	}
	t, err := h.tickets.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}

// Delete removes a ticket with its associations.
//
// @Summary      Delete a service ticket
// @Tags         service_tickets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Service ticket ID"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /service_tickets/{id} [delete]
func (h *TicketHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.tickets.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "deleted service ticket " + strconv.FormatInt(id, 10)})
}

// EditMechanics bulk-adds and removes mechanics. Removes win over adds.
//
// @Summary      Edit ticket mechanics
// @Tags         service_tickets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                 true  "Service ticket ID"
// @Param        body  body      editMembersRequest  true  "Mechanic ids to add and remove"
// @Success      200   {object}  ticketResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /service_tickets/{id}/edit [put]
func (h *TicketHandler) EditMechanics(c echo.Context) error {
	return h.edit(c, domain.MemberMechanic)
}

// EditParts bulk-adds and removes parts. Removes win over adds.
//
// @Summary      Edit ticket parts
// @Tags         service_tickets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                 true  "Service ticket ID"
// @Param        body  body      editMembersRequest  true  "Part ids to add and remove"
// @Success      200   {object}  ticketResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /service_tickets/{id}/parts [put]
func (h *TicketHandler) EditParts(c echo.Context) error {
	return h.edit(c, domain.MemberPart)
}

func (h *TicketHandler) edit(c echo.Context, kind domain.MemberKind) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req editMembersRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	before, err := h.tickets.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	t, err := h.associations.BulkEdit(c.Request().Context(), id, req.AddIDs, req.RemoveIDs, kind)
	if err != nil {
		return err
	}
	changed := !sameMembers(before.Members(kind), t.Members(kind))
	metrics.AssociationMutationsTotal.WithLabelValues(string(kind), "bulk_edit", strconv.FormatBool(changed)).Inc()

	return c.JSON(http.StatusOK, toTicketResponse(t))
}

func sameMembers(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[int64]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}
