package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mechshop/service-api/internal/core/domain"
	"github.com/mechshop/service-api/internal/core/ports"
)

// --- Request → Service input ---

func toRegisterMechanicInput(req registerMechanicRequest) ports.RegisterMechanicInput {
	return ports.RegisterMechanicInput{
		Name:     req.Name,
		Email:    strings.TrimSpace(req.Email),
		Phone:    req.Phone,
		Salary:   req.Salary,
		Password: req.Password,
	}
}

func toUpdateMechanicInput(req updateMechanicRequest) ports.UpdateMechanicInput {
	return ports.UpdateMechanicInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Salary:   req.Salary,
		Password: req.Password,
	}
}

func toRegisterCustomerInput(req registerCustomerRequest) ports.RegisterCustomerInput {
	return ports.RegisterCustomerInput{
		Name:     req.Name,
		Email:    strings.TrimSpace(req.Email),
		Phone:    req.Phone,
		Password: req.Password,
	}
}

func toUpdateCustomerInput(req updateCustomerRequest) ports.UpdateCustomerInput {
	return ports.UpdateCustomerInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	}
}

func toCreateTicketInput(req createTicketRequest) (ports.CreateTicketInput, error) {
	date, err := parseServiceDate(req.ServiceDate)
	if err != nil {
		return ports.CreateTicketInput{}, err
	}
	return ports.CreateTicketInput{
		VIN:         req.VIN,
		ServiceDate: date,
		Description: req.Description,
		CustomerID:  req.CustomerID,
	}, nil
}

func toUpdateTicketInput(req updateTicketRequest) (ports.UpdateTicketInput, error) {
	in := ports.UpdateTicketInput{
		VIN:         req.VIN,
		Description: req.Description,
		CustomerID:  req.CustomerID,
	}
	if req.ServiceDate != nil {
		date, err := parseServiceDate(*req.ServiceDate)
		if err != nil {
			return ports.UpdateTicketInput{}, err
		}
		in.ServiceDate = &date
	}
	return in, nil
}

func parseServiceDate(s string) (time.Time, error) {
	date, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "service_date must be a date in YYYY-MM-DD format")
	}
	return date, nil
}

// --- Domain → Response ---

func toTicketResponse(t *domain.ServiceTicket) ticketResponse {
	resp := ticketResponse{
		ID:          t.ID,
		VIN:         t.VIN,
		ServiceDate: t.ServiceDate.UTC().Format(domain.DateLayout),
		Description: t.Description,
		CustomerID:  t.CustomerID,
		MechanicIDs: t.MechanicIDs,
		PartIDs:     t.PartIDs,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if resp.MechanicIDs == nil {
		resp.MechanicIDs = []int64{}
	}
	if resp.PartIDs == nil {
		resp.PartIDs = []int64{}
	}
	return resp
}

func toTicketResponses(tickets []*domain.ServiceTicket) []ticketResponse {
	out := make([]ticketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, toTicketResponse(t))
	}
	return out
}
