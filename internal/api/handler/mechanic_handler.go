package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mechshop/service-api/internal/api/metrics"
	"github.com/mechshop/service-api/internal/core/domain"
	"github.com/mechshop/service-api/internal/core/ports"
)

// MechanicHandler serves /mechanics.
type MechanicHandler struct {
	mechanics    ports.MechanicService
	associations ports.AssociationService
	ranking      ports.RankingService
}

func NewMechanicHandler(mechanics ports.MechanicService, associations ports.AssociationService, ranking ports.RankingService) *MechanicHandler {
	return &MechanicHandler{mechanics: mechanics, associations: associations, ranking: ranking}
}

// Register creates a mechanic account.
//
// @Summary      Register a mechanic
// @Tags         mechanics
// @Accept       json
// @Produce      json
// @Param        body  body      registerMechanicRequest  true  "Mechanic details"
// @Success      201   {object}  domain.Mechanic
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /mechanics [post]
func (h *MechanicHandler) Register(c echo.Context) error {
	var req registerMechanicRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	m, err := h.mechanics.Register(c.Request().Context(), toRegisterMechanicInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

// List returns every mechanic.
//
// @Summary      List mechanics
// @Tags         mechanics
// @Produce      json
// @Success      200  {array}  domain.Mechanic
// @Router       /mechanics [get]
func (h *MechanicHandler) List(c echo.Context) error {
	items, err := h.mechanics.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Get returns one mechanic.
//
// @Summary      Get a mechanic
// @Tags         mechanics
// @Produce      json
// @Param        id   path      int  true  "Mechanic ID"
// @Success      200  {object}  domain.Mechanic
// @Failure      404  {object}  errorResponse
// @Router       /mechanics/{id} [get]
func (h *MechanicHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	m, err := h.mechanics.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

// Update changes the caller's own mechanic record. Ownership is checked
// before the body is read.
//
// @Summary      Update own mechanic record
// @Tags         mechanics
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                    true  "Mechanic ID"
// @Param        body  body      updateMechanicRequest  true  "Fields to change"
// @Success      200   {object}  domain.Mechanic
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /mechanics/{id} [put]
func (h *MechanicHandler) Update(c echo.Context) error {
	callerID, targetID, err := h.owned(c)
	if err != nil {
		return err
	}

	var req updateMechanicRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	m, err := h.mechanics.Update(c.Request().Context(), callerID, targetID, toUpdateMechanicInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

// Delete removes the caller's own mechanic record.
//
// @Summary      Delete own mechanic record
// @Tags         mechanics
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Mechanic ID"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /mechanics/{id} [delete]
func (h *MechanicHandler) Delete(c echo.Context) error {
	callerID, targetID, err := h.owned(c)
	if err != nil {
		return err
	}
	if err := h.mechanics.Delete(c.Request().Context(), callerID, targetID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "deleted mechanic " + strconv.FormatInt(targetID, 10)})
}

// Ranked returns mechanics ordered by ticket count.
//
// @Summary      Mechanic leaderboard
// @Tags         mechanics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.MechanicRank
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /mechanics/ranked [get]
func (h *MechanicHandler) Ranked(c echo.Context) error {
	ranks, err := h.ranking.RankMechanics(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ranks)
}

// AssignTicket adds the caller to a ticket's mechanics.
//
// @Summary      Assign self to a ticket
// @Tags         mechanics
// @Produce      json
// @Security     BearerAuth
// @Param        id         path      int  true  "Mechanic ID"
// @Param        ticket_id  path      int  true  "Service ticket ID"
// @Success      200        {object}  membershipResponse
// @Failure      401        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /mechanics/{id}/tickets/{ticket_id} [post]
func (h *MechanicHandler) AssignTicket(c echo.Context) error {
	return h.membership(c, true)
}

// UnassignTicket removes the caller from a ticket's mechanics.
//
// @Summary      Unassign self from a ticket
// @Tags         mechanics
// @Produce      json
// @Security     BearerAuth
// @Param        id         path      int  true  "Mechanic ID"
// @Param        ticket_id  path      int  true  "Service ticket ID"
// @Success      200        {object}  membershipResponse
// @Failure      401        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /mechanics/{id}/tickets/{ticket_id} [delete]
func (h *MechanicHandler) UnassignTicket(c echo.Context) error {
	return h.membership(c, false)
}

func (h *MechanicHandler) membership(c echo.Context, add bool) error {
	_, mechanicID, err := h.owned(c)
	if err != nil {
		return err
	}
	ticketID, err := pathID(c, "ticket_id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	var changed bool
	action, msg := "add", "mechanic assigned to ticket"
	if add {
		changed, err = h.associations.Add(ctx, ticketID, mechanicID, domain.MemberMechanic)
	} else {
		action, msg = "remove", "mechanic removed from ticket"
		changed, err = h.associations.Remove(ctx, ticketID, mechanicID, domain.MemberMechanic)
	}
	if err != nil {
		return err
	}
	metrics.AssociationMutationsTotal.WithLabelValues(string(domain.MemberMechanic), action, strconv.FormatBool(changed)).Inc()

	return c.JSON(http.StatusOK, membershipResponse{Message: msg, TicketID: ticketID, MemberID: mechanicID, Changed: changed})
}

// owned resolves the caller and the :id target and applies the ownership rule.
func (h *MechanicHandler) owned(c echo.Context) (callerID, targetID int64, err error) {
	callerID, err = principalID(c)
	if err != nil {
		return 0, 0, err
	}
	targetID, err = pathID(c, "id")
	if err != nil {
		return 0, 0, err
	}
	if _, err := h.mechanics.Owned(c.Request().Context(), callerID, targetID); err != nil {
		return 0, 0, err
	}
	return callerID, targetID, nil
}
