package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mechshop/service-api/internal/core/ports"
)

// CustomerHandler serves /customers.
type CustomerHandler struct {
	customers ports.CustomerService
}

func NewCustomerHandler(customers ports.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

// Register creates a customer account.
//
// @Summary      Register a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        body  body      registerCustomerRequest  true  "Customer details"
// @Success      201   {object}  domain.Customer
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /customers [post]
func (h *CustomerHandler) Register(c echo.Context) error {
	var req registerCustomerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	cust, err := h.customers.Register(c.Request().Context(), toRegisterCustomerInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cust)
}

// List returns a page of customers.
//
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Param        page      query     int  false  "Page number (default 1)"
// @Param        per_page  query     int  false  "Page size (default 10, max 100)"
// @Success      200       {object}  customerListResponse
// @Router       /customers [get]
func (h *CustomerHandler) List(c echo.Context) error {
	list, err := h.customers.List(c.Request().Context(), pageParams(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customerListResponse{Customers: list.Items, Meta: list.Meta})
}

// Get returns one customer.
//
// @Summary      Get a customer
// @Tags         customers
// @Produce      json
// @Param        id   path      int  true  "Customer ID"
// @Success      200  {object}  domain.Customer
// @Failure      404  {object}  errorResponse
// @Router       /customers/{id} [get]
func (h *CustomerHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	cust, err := h.customers.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cust)
}

// UpdateSelf changes the calling customer's record.
//
// @Summary      Update own customer record
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateCustomerRequest  true  "Fields to change"
// @Success      200   {object}  domain.Customer
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /customers [put]
func (h *CustomerHandler) UpdateSelf(c echo.Context) error {
	id, err := principalID(c)
	if err != nil {
		return err
	}
	var req updateCustomerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	cust, err := h.customers.Update(c.Request().Context(), id, toUpdateCustomerInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cust)
}

// DeleteSelf removes the calling customer and their tickets.
//
// @Summary      Delete own customer record
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Router       /customers [delete]
func (h *CustomerHandler) DeleteSelf(c echo.Context) error {
	id, err := principalID(c)
	if err != nil {
		return err
	}
	return h.delete(c, id)
}

// Delete removes any customer. Mechanic only.
//
// @Summary      Delete a customer
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Customer ID"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /customers/{id} [delete]
func (h *CustomerHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	return h.delete(c, id)
}

func (h *CustomerHandler) delete(c echo.Context, id int64) error {
	if err := h.customers.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "deleted customer " + strconv.FormatInt(id, 10)})
}

// MyTickets lists the tickets owned by the calling customer.
//
// @Summary      List own service tickets
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   ticketResponse
// @Failure      401  {object}  errorResponse
// @Router       /customers/my-tickets [get]
func (h *CustomerHandler) MyTickets(c echo.Context) error {
	id, err := principalID(c)
	if err != nil {
		return err
	}
	tickets, err := h.customers.Tickets(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTicketResponses(tickets))
}
