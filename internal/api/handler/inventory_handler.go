package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mechshop/service-api/internal/api/metrics"
	"github.com/mechshop/service-api/internal/core/domain"
	"github.com/mechshop/service-api/internal/core/ports"
)

// InventoryHandler serves /inventory.
type InventoryHandler struct {
	parts        ports.PartService
	associations ports.AssociationService
}

func NewInventoryHandler(parts ports.PartService, associations ports.AssociationService) *InventoryHandler {
	return &InventoryHandler{parts: parts, associations: associations}
}

// Create adds a part to the inventory.
//
// @Summary      Create a part
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPartRequest  true  "Part details"
// @Success      201   {object}  domain.Part
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /inventory [post]
func (h *InventoryHandler) Create(c echo.Context) error {
	var req createPartRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.parts.Create(c.Request().Context(), ports.CreatePartInput{Name: req.Name, Price: req.Price})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// List returns every part.
//
// @Summary      List parts
// @Tags         inventory
// @Produce      json
// @Success      200  {array}  domain.Part
// @Router       /inventory [get]
func (h *InventoryHandler) List(c echo.Context) error {
	items, err := h.parts.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Get returns one part.
//
// @Summary      Get a part
// @Tags         inventory
// @Produce      json
// @Param        id   path      int  true  "Part ID"
// @Success      200  {object}  domain.Part
// @Failure      404  {object}  errorResponse
// @Router       /inventory/{id} [get]
func (h *InventoryHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.parts.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Update changes a part's name or price.
//
// @Summary      Update a part
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "Part ID"
// @Param        body  body      updatePartRequest  true  "Fields to change"
// @Success      200   {object}  domain.Part
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /inventory/{id} [put]
func (h *InventoryHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updatePartRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.parts.Update(c.Request().Context(), id, ports.UpdatePartInput{Name: req.Name, Price: req.Price})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Delete removes a part from the inventory and from every ticket.
//
// @Summary      Delete a part
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Part ID"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /inventory/{id} [delete]
func (h *InventoryHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.parts.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "deleted part " + strconv.FormatInt(id, 10)})
}

// AddPart fits a part to a ticket. Adding a part twice is a no-op.
//
// @Summary      Add a part to a ticket
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        ticket_id  path      int                true  "Service ticket ID"
// @Param        body       body      partMemberRequest  true  "Part to add"
// @Success      200        {object}  membershipResponse
// @Failure      400        {object}  errorResponse
// @Failure      401        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /inventory/{ticket_id}/add_part [post]
func (h *InventoryHandler) AddPart(c echo.Context) error {
	return h.membership(c, true)
}

// RemovePart takes a part off a ticket. Removing a non-member is a no-op.
//
// @Summary      Remove a part from a ticket
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        ticket_id  path      int                true  "Service ticket ID"
// @Param        body       body      partMemberRequest  true  "Part to remove"
// @Success      200        {object}  membershipResponse
// @Failure      400        {object}  errorResponse
// @Failure      401        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /inventory/{ticket_id}/remove_part [post]
func (h *InventoryHandler) RemovePart(c echo.Context) error {
	return h.membership(c, false)
}

func (h *InventoryHandler) membership(c echo.Context, add bool) error {
	ticketID, err := pathID(c, "ticket_id")
	if err != nil {
		return err
	}
	var req partMemberRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	var changed bool
	action, msg := "add", "part added to ticket"
	if add {
		changed, err = h.associations.Add(ctx, ticketID, req.PartID, domain.MemberPart)
	} else {
		action, msg = "remove", "part removed from ticket"
		changed, err = h.associations.Remove(ctx, ticketID, req.PartID, domain.MemberPart)
	}
	if err != nil {
		return err
	}
	metrics.AssociationMutationsTotal.WithLabelValues(string(domain.MemberPart), action, strconv.FormatBool(changed)).Inc()

	return c.JSON(http.StatusOK, membershipResponse{Message: msg, TicketID: ticketID, MemberID: req.PartID, Changed: changed})
}
