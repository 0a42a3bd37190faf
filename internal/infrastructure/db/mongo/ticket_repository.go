package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mechshop/service-api/internal/core/domain"
	"github.com/mechshop/service-api/internal/core/ports"
)

const collectionTickets = "service_tickets"

// mongoTicket embeds both member sets, so every membership write is a
// single-document update.
type mongoTicket struct {
	ID          int64   `bson:"_id"`
	VIN         string  `bson:"vin"`
	ServiceDate string  `bson:"service_date"`
	Description string  `bson:"description"`
	CustomerID  int64   `bson:"customer_id"`
	MechanicIDs []int64 `bson:"mechanic_ids"`
	PartIDs     []int64 `bson:"part_ids"`
	CreatedAt   int64   `bson:"created_at"`
	UpdatedAt   int64   `bson:"updated_at"`
}

func (d mongoTicket) toDomain() (*domain.ServiceTicket, error) {
	date, err := time.Parse(domain.DateLayout, d.ServiceDate)
	if err != nil {
		return nil, fmt.Errorf("ticket %d service_date: %w", d.ID, err)
	}
	t := &domain.ServiceTicket{
		ID:          d.ID,
		VIN:         d.VIN,
		ServiceDate: date,
		Description: d.Description,
		CustomerID:  d.CustomerID,
		MechanicIDs: d.MechanicIDs,
		PartIDs:     d.PartIDs,
		CreatedAt:   unixToTime(d.CreatedAt),
		UpdatedAt:   unixToTime(d.UpdatedAt),
	}
	if t.MechanicIDs == nil {
		t.MechanicIDs = []int64{}
	}
	if t.PartIDs == nil {
		t.PartIDs = []int64{}
	}
	return t, nil
}

// TicketRepository implements ports.TicketRepository using MongoDB.
type TicketRepository struct {
	col *mongo.Collection
	seq *sequence
}

func NewTicketRepository(db *mongo.Database) *TicketRepository {
	return &TicketRepository{col: db.Collection(collectionTickets), seq: newSequence(db)}
}

// Create inserts the ticket document with its initial member sets.
func (r *TicketRepository) Create(ctx context.Context, t *domain.ServiceTicket) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.next(ctx, collectionTickets)
	if err != nil {
		return err
	}
	doc := mongoTicket{
		ID:          id,
		VIN:         t.VIN,
		ServiceDate: t.ServiceDate.Format(domain.DateLayout),
		Description: t.Description,
		CustomerID:  t.CustomerID,
		MechanicIDs: domain.UniqueIDs(t.MechanicIDs),
		PartIDs:     domain.UniqueIDs(t.PartIDs),
		CreatedAt:   timeToUnix(t.CreatedAt),
		UpdatedAt:   timeToUnix(t.UpdatedAt),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	t.ID = id
	return nil
}

func (r *TicketRepository) FindByID(ctx context.Context, id int64) (*domain.ServiceTicket, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoTicket
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("find ticket: %w", err)
	}
	return doc.toDomain()
}

func (r *TicketRepository) List(ctx context.Context, page ports.Page) ([]*domain.ServiceTicket, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count tickets: %w", err)
	}
	out, err := r.find(ctx, bson.M{}, findPage(page.Offset(), page.PerPage))
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *TicketRepository) ListByCustomer(ctx context.Context, customerID int64) ([]*domain.ServiceTicket, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.find(ctx, bson.M{"customer_id": customerID}, findPage(0, 0))
}

func (r *TicketRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.ServiceTicket, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	var docs []mongoTicket
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tickets: %w", err)
	}
	out := make([]*domain.ServiceTicket, 0, len(docs))
	for _, d := range docs {
		t, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Update sets scalar fields only; member arrays are left untouched.
func (r *TicketRepository) Update(ctx context.Context, t *domain.ServiceTicket) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": t.ID}, bson.M{"$set": bson.M{
		"vin":          t.VIN,
		"service_date": t.ServiceDate.Format(domain.DateLayout),
		"description":  t.Description,
		"customer_id":  t.CustomerID,
		"updated_at":   timeToUnix(t.UpdatedAt),
	}})
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

// Delete removes the ticket; its links live inside the document.
func (r *TicketRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

// EnsureIndexes creates the unique email indexes and the ticket lookup indexes.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	unique := options.Index().SetUnique(true)
	specs := map[string][]mongo.IndexModel{
		collectionCustomers: {{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}},
		collectionMechanics: {{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}},
		collectionTickets: {
			{Keys: bson.D{{Key: "customer_id", Value: 1}}},
			{Keys: bson.D{{Key: "mechanic_ids", Value: 1}}},
			{Keys: bson.D{{Key: "part_ids", Value: 1}}},
		},
	}
	for name, indexes := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("indexes %s: %w", name, err)
		}
	}
	return nil
}

// Repositories returns every repository backed by db.
func Repositories(db *mongo.Database) ports.Repositories {
	return ports.Repositories{
		Customers:   NewCustomerRepository(db),
		Mechanics:   NewMechanicRepository(db),
		Parts:       NewPartRepository(db),
		Tickets:     NewTicketRepository(db),
		Memberships: NewMembershipRepository(db),
	}
}
