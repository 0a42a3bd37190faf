package service

import (
	"context"
	"slices"

	"github.com/mechshop/service-api/internal/core/domain"
	"github.com/mechshop/service-api/internal/core/ports"
)

// memStore is an in-memory backend shared by the stub repositories below.
type memStore struct {
	nextID    int64
	mechanics map[int64]*domain.Mechanic
	customers map[int64]*domain.Customer
	parts     map[int64]*domain.Part
	tickets   map[int64]*domain.ServiceTicket
}

func newMemStore() *memStore {
	return &memStore{
		mechanics: make(map[int64]*domain.Mechanic),
		customers: make(map[int64]*domain.Customer),
		parts:     make(map[int64]*domain.Part),
		tickets:   make(map[int64]*domain.ServiceTicket),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) repos() ports.Repositories {
	return ports.Repositories{
		Customers:   stubCustomers{s},
		Mechanics:   stubMechanics{s},
		Parts:       stubParts{s},
		Tickets:     stubTickets{s},
		Memberships: stubMemberships{s},
	}
}

func cloneTicket(t *domain.ServiceTicket) *domain.ServiceTicket {
	c := *t
	c.MechanicIDs = slices.Clone(t.MechanicIDs)
	c.PartIDs = slices.Clone(t.PartIDs)
	return &c
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

type stubMechanics struct{ s *memStore }

func (r stubMechanics) Create(_ context.Context, m *domain.Mechanic) error {
	m.ID = r.s.id()
	c := *m
	r.s.mechanics[m.ID] = &c
	return nil
}

func (r stubMechanics) FindByID(_ context.Context, id int64) (*domain.Mechanic, error) {
	m, ok := r.s.mechanics[id]
	if !ok {
		return nil, domain.ErrMechanicNotFound
	}
	c := *m
	return &c, nil
}

func (r stubMechanics) FindByEmail(_ context.Context, email string) (*domain.Mechanic, error) {
	for _, m := range r.s.mechanics {
		if m.Email == email {
			c := *m
			return &c, nil
		}
	}
	return nil, domain.ErrMechanicNotFound
}

func (r stubMechanics) List(_ context.Context) ([]*domain.Mechanic, error) {
	out := []*domain.Mechanic{}
	for _, id := range sortedKeys(r.s.mechanics) {
		c := *r.s.mechanics[id]
		out = append(out, &c)
	}
	return out, nil
}

func (r stubMechanics) Update(_ context.Context, m *domain.Mechanic) error {
	if _, ok := r.s.mechanics[m.ID]; !ok {
		return domain.ErrMechanicNotFound
	}
	c := *m
	r.s.mechanics[m.ID] = &c
	return nil
}

func (r stubMechanics) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.mechanics[id]; !ok {
		return domain.ErrMechanicNotFound
	}
	delete(r.s.mechanics, id)
	for _, t := range r.s.tickets {
		t.MechanicIDs = slices.DeleteFunc(t.MechanicIDs, func(v int64) bool { return v == id })
	}
	return nil
}

func (r stubMechanics) ExistingIDs(_ context.Context, ids []int64) ([]int64, error) {
	var out []int64
	for _, id := range ids {
		if _, ok := r.s.mechanics[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

type stubCustomers struct{ s *memStore }

func (r stubCustomers) Create(_ context.Context, c *domain.Customer) error {
	c.ID = r.s.id()
	cp := *c
	r.s.customers[c.ID] = &cp
	return nil
}

func (r stubCustomers) FindByID(_ context.Context, id int64) (*domain.Customer, error) {
	c, ok := r.s.customers[id]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	cp := *c
	return &cp, nil
}

func (r stubCustomers) FindByEmail(_ context.Context, email string) (*domain.Customer, error) {
	for _, c := range r.s.customers {
		if c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrCustomerNotFound
}

func (r stubCustomers) List(_ context.Context, page ports.Page) ([]*domain.Customer, int64, error) {
	keys := sortedKeys(r.s.customers)
	out := []*domain.Customer{}
	for i := page.Offset(); i < len(keys) && len(out) < page.PerPage; i++ {
		cp := *r.s.customers[keys[i]]
		out = append(out, &cp)
	}
	return out, int64(len(keys)), nil
}

func (r stubCustomers) Update(_ context.Context, c *domain.Customer) error {
	cp := *c
	r.s.customers[c.ID] = &cp
	return nil
}

func (r stubCustomers) Delete(_ context.Context, id int64) error {
	delete(r.s.customers, id)
	for tid, t := range r.s.tickets {
		if t.CustomerID == id {
			delete(r.s.tickets, tid)
		}
	}
	return nil
}

type stubParts struct{ s *memStore }

func (r stubParts) Create(_ context.Context, p *domain.Part) error {
	p.ID = r.s.id()
	cp := *p
	r.s.parts[p.ID] = &cp
	return nil
}

func (r stubParts) FindByID(_ context.Context, id int64) (*domain.Part, error) {
	p, ok := r.s.parts[id]
	if !ok {
		return nil, domain.ErrPartNotFound
	}
	cp := *p
	return &cp, nil
}

func (r stubParts) List(_ context.Context) ([]*domain.Part, error) {
	out := []*domain.Part{}
	for _, id := range sortedKeys(r.s.parts) {
		cp := *r.s.parts[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r stubParts) Update(_ context.Context, p *domain.Part) error {
	cp := *p
	r.s.parts[p.ID] = &cp
	return nil
}

func (r stubParts) Delete(_ context.Context, id int64) error {
	delete(r.s.parts, id)
	for _, t := range r.s.tickets {
		t.PartIDs = slices.DeleteFunc(t.PartIDs, func(v int64) bool { return v == id })
	}
	return nil
}

func (r stubParts) ExistingIDs(_ context.Context, ids []int64) ([]int64, error) {
	var out []int64
	for _, id := range ids {
		if _, ok := r.s.parts[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

type stubTickets struct{ s *memStore }

func (r stubTickets) Create(_ context.Context, t *domain.ServiceTicket) error {
	t.ID = r.s.id()
	r.s.tickets[t.ID] = cloneTicket(t)
	return nil
}

func (r stubTickets) FindByID(_ context.Context, id int64) (*domain.ServiceTicket, error) {
	t, ok := r.s.tickets[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	return cloneTicket(t), nil
}

func (r stubTickets) List(_ context.Context, page ports.Page) ([]*domain.ServiceTicket, int64, error) {
	keys := sortedKeys(r.s.tickets)
	out := []*domain.ServiceTicket{}
	for i := page.Offset(); i < len(keys) && len(out) < page.PerPage; i++ {
		out = append(out, cloneTicket(r.s.tickets[keys[i]]))
	}
	return out, int64(len(keys)), nil
}

func (r stubTickets) ListByCustomer(_ context.Context, customerID int64) ([]*domain.ServiceTicket, error) {
	out := []*domain.ServiceTicket{}
	for _, id := range sortedKeys(r.s.tickets) {
		if t := r.s.tickets[id]; t.CustomerID == customerID {
			out = append(out, cloneTicket(t))
		}
	}
	return out, nil
}

func (r stubTickets) Update(_ context.Context, t *domain.ServiceTicket) error {
	cur, ok := r.s.tickets[t.ID]
	if !ok {
		return domain.ErrTicketNotFound
	}
	next := cloneTicket(t)
	next.MechanicIDs = cur.MechanicIDs
	next.PartIDs = cur.PartIDs
	r.s.tickets[t.ID] = next
	return nil
}

func (r stubTickets) Delete(_ context.Context, id int64) error {
	delete(r.s.tickets, id)
	return nil
}

type stubMemberships struct{ s *memStore }

func (r stubMemberships) set(ticketID int64, kind domain.MemberKind) (*[]int64, error) {
	t, ok := r.s.tickets[ticketID]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	if kind == domain.MemberPart {
		return &t.PartIDs, nil
	}
	return &t.MechanicIDs, nil
}

func (r stubMemberships) AddMember(_ context.Context, ticketID int64, kind domain.MemberKind, memberID int64) error {
	set, err := r.set(ticketID, kind)
	if err != nil {
		return err
	}
	if !slices.Contains(*set, memberID) {
		*set = append(*set, memberID)
	}
	return nil
}

func (r stubMemberships) RemoveMember(_ context.Context, ticketID int64, kind domain.MemberKind, memberID int64) error {
	set, err := r.set(ticketID, kind)
	if err != nil {
		return err
	}
	*set = slices.DeleteFunc(*set, func(v int64) bool { return v == memberID })
	return nil
}

func (r stubMemberships) ApplyMembers(ctx context.Context, ticketID int64, kind domain.MemberKind, add, remove []int64) error {
	for _, id := range add {
		if err := r.AddMember(ctx, ticketID, kind, id); err != nil {
			return err
		}
	}
	for _, id := range remove {
		if err := r.RemoveMember(ctx, ticketID, kind, id); err != nil {
			return err
		}
	}
	return nil
}

func (r stubMemberships) ListMembers(_ context.Context, ticketID int64, kind domain.MemberKind) ([]int64, error) {
	set, err := r.set(ticketID, kind)
	if err != nil {
		return nil, err
	}
	return slices.Clone(*set), nil
}

func (r stubMemberships) IsMember(_ context.Context, ticketID int64, kind domain.MemberKind, memberID int64) (bool, error) {
	set, err := r.set(ticketID, kind)
	if err != nil {
		return false, err
	}
	return slices.Contains(*set, memberID), nil
}

func (r stubMemberships) CountTicketsByMechanic(_ context.Context) (map[int64]int, error) {
	counts := make(map[int64]int)
	for _, t := range r.s.tickets {
		for _, id := range t.MechanicIDs {
			counts[id]++
		}
	}
	return counts, nil
}

// stubRecorder collects recorded activity.
type stubRecorder struct {
	events []ports.TicketActivity
}

func (r *stubRecorder) Record(a ports.TicketActivity) {
	r.events = append(r.events, a)
}

// stubRankingCache holds a single ranking.
type stubRankingCache struct {
	ranks       []domain.MechanicRank
	ok          bool
	invalidated int
}

func (c *stubRankingCache) Get(context.Context) ([]domain.MechanicRank, bool, error) {
	return c.ranks, c.ok, nil
}

func (c *stubRankingCache) Set(_ context.Context, ranks []domain.MechanicRank) error {
	c.ranks, c.ok = ranks, true
	return nil
}

func (c *stubRankingCache) Invalidate(context.Context) error {
	c.ranks, c.ok = nil, false
	c.invalidated++
	return nil
}

// plainVerifier avoids bcrypt cost in tests that do not exercise hashing.
type plainVerifier struct{}

func (plainVerifier) Hash(secret string) (string, error) { return "hashed:" + secret, nil }

func (plainVerifier) Verify(hash, candidate string) bool { return hash == "hashed:"+candidate }

func int64sEqual(a, b []int64) bool {
	a, b = slices.Clone(a), slices.Clone(b)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}
