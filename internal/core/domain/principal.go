package domain

import "time"

// Role tags the kind of principal a token was issued to.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleMechanic Role = "mechanic"
)

// Valid reports whether r is one of the known principal roles.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleMechanic
}

// Principal is the authentication view of a customer or mechanic.
type Principal struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         Role
}

// Customer owns service tickets.
type Customer struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Principal returns the authentication view of the customer.
func (c *Customer) Principal() *Principal {
	return &Principal{ID: c.ID, Email: c.Email, PasswordHash: c.PasswordHash, Role: RoleCustomer}
}

// Mechanic works on service tickets.
type Mechanic struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Salary       float64   `json:"salary"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Principal returns the authentication view of the mechanic.
func (m *Mechanic) Principal() *Principal {
	return &Principal{ID: m.ID, Email: m.Email, PasswordHash: m.PasswordHash, Role: RoleMechanic}
}

// MechanicRank is one row of the mechanic leaderboard.
type MechanicRank struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	Salary      float64 `json:"salary"`
	TicketCount int     `json:"ticket_count"`
}
