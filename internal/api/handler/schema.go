package handler

import (
	"time"

	"github.com/mechshop/service-api/internal/core/domain"
	"github.com/mechshop/service-api/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	ID        int64  `json:"id"`
	AuthToken string `json:"auth_token"`
}

// --- Mechanics ---

type registerMechanicRequest struct {
	Name     string  `json:"name"     validate:"required,max=255"`
	Email    string  `json:"email"    validate:"required,email,max=360"`
	Phone    string  `json:"phone"    validate:"max=160"`
	Salary   float64 `json:"salary"   validate:"gte=0"`
	Password string  `json:"password" validate:"required,min=6"`
}

type updateMechanicRequest struct {
	Name     *string  `json:"name"     validate:"omitempty,max=255"`
	Email    *string  `json:"email"    validate:"omitempty,email,max=360"`
	Phone    *string  `json:"phone"    validate:"omitempty,max=160"`
	Salary   *float64 `json:"salary"   validate:"omitempty,gte=0"`
	Password *string  `json:"password" validate:"omitempty,min=6"`
}

// --- Customers ---

type registerCustomerRequest struct {
	Name     string `json:"name"     validate:"required,max=255"`
	Email    string `json:"email"    validate:"required,email,max=360"`
	Phone    string `json:"phone"    validate:"max=160"`
	Password string `json:"password" validate:"required,min=6"`
}

type updateCustomerRequest struct {
	Name     *string `json:"name"     validate:"omitempty,max=255"`
	Email    *string `json:"email"    validate:"omitempty,email,max=360"`
	Phone    *string `json:"phone"    validate:"omitempty,max=160"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

type customerListResponse struct {
	Customers []*domain.Customer `json:"customers"`
	Meta      ports.PageMeta     `json:"meta"`
}

// --- Service tickets ---

type createTicketRequest struct {
	VIN         string `json:"vin"          validate:"required,max=17"`
	ServiceDate string `json:"service_date" validate:"required,isodate"`
	Description string `json:"service_desc" validate:"max=1000"`
	CustomerID  int64  `json:"customer_id"  validate:"required,gt=0"`
}

type updateTicketRequest struct {
	VIN         *string `json:"vin"          validate:"omitempty,max=17"`
	ServiceDate *string `json:"service_date" validate:"omitempty,isodate"`
	Description *string `json:"service_desc" validate:"omitempty,max=1000"`
	CustomerID  *int64  `json:"customer_id"  validate:"omitempty,gt=0"`
}

type editMembersRequest struct {
	AddIDs    []int64 `json:"add_ids"    validate:"dive,gt=0"`
	RemoveIDs []int64 `json:"remove_ids" validate:"dive,gt=0"`
}

type ticketResponse struct {
	ID          int64     `json:"id"`
	VIN         string    `json:"vin"`
	ServiceDate string    `json:"service_date"`
	Description string    `json:"service_desc"`
	CustomerID  int64     `json:"customer_id"`
	MechanicIDs []int64   `json:"mechanic_ids"`
	PartIDs     []int64   `json:"part_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ticketListResponse struct {
	Tickets []ticketResponse `json:"tickets"`
	Meta    ports.PageMeta   `json:"meta"`
}

type createdResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// --- Inventory ---

type createPartRequest struct {
	Name  string  `json:"name"  validate:"required,max=255"`
	Price float64 `json:"price" validate:"gte=0"`
}

type updatePartRequest struct {
	Name  *string  `json:"name"  validate:"omitempty,max=255"`
	Price *float64 `json:"price" validate:"omitempty,gte=0"`
}

type partMemberRequest struct {
	PartID int64 `json:"part_id" validate:"required,gt=0"`
}

type membershipResponse struct {
	Message  string `json:"message"`
	TicketID int64  `json:"ticket_id"`
	MemberID int64  `json:"member_id"`
	Changed  bool   `json:"changed"`
}
