package domain

import (
	"slices"
	"time"
)

// DateLayout is the wire and storage format of a service date.
const DateLayout = "2006-01-02"

// MemberKind selects which association set of a ticket an operation targets.
type MemberKind string

const (
	MemberMechanic MemberKind = "mechanic"
	MemberPart     MemberKind = "part"
)

// Valid reports whether k is a known association kind.
func (k MemberKind) Valid() bool {
	return k == MemberMechanic || k == MemberPart
}

// ServiceTicket is a unit of repair work for one customer's vehicle.
type ServiceTicket struct {
	ID          int64     `json:"id"`
	VIN         string    `json:"vin"`
	ServiceDate time.Time `json:"service_date"`
	Description string    `json:"service_desc"`
	CustomerID  int64     `json:"customer_id"`
	MechanicIDs []int64   `json:"mechanic_ids"`
	PartIDs     []int64   `json:"part_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Members returns the id set for kind.
func (t *ServiceTicket) Members(kind MemberKind) []int64 {
	if kind == MemberPart {
		return t.PartIDs
	}
	return t.MechanicIDs
}

// HasMember reports whether id is in the set for kind.
func (t *ServiceTicket) HasMember(kind MemberKind, id int64) bool {
	return slices.Contains(t.Members(kind), id)
}

// Part is an inventory item that can be fitted during a service.
type Part struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UniqueIDs returns ids with duplicates and non-positive values removed,
// preserving first-seen order.
func UniqueIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
