package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mechshop/service-api/internal/core/domain"
	"github.com/mechshop/service-api/internal/core/ports"
)

const (
	collectionCustomers = "customers"
	collectionMechanics = "mechanics"
	collectionParts     = "parts"
)

type mongoCustomer struct {
	ID           int64  `bson:"_id"`
	Name         string `bson:"name"`
	Email        string `bson:"email"`
	Phone        string `bson:"phone"`
	PasswordHash string `bson:"password_hash"`
	CreatedAt    int64  `bson:"created_at"`
	UpdatedAt    int64  `bson:"updated_at"`
}

func (d mongoCustomer) toDomain() *domain.Customer {
	return &domain.Customer{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		Phone:        d.Phone,
		PasswordHash: d.PasswordHash,
		CreatedAt:    unixToTime(d.CreatedAt),
		UpdatedAt:    unixToTime(d.UpdatedAt),
	}
}

// CustomerRepository implements ports.CustomerRepository using MongoDB.
type CustomerRepository struct {
	col     *mongo.Collection
	tickets *mongo.Collection
	seq     *sequence
}

func NewCustomerRepository(db *mongo.Database) *CustomerRepository {
	return &CustomerRepository{
		col:     db.Collection(collectionCustomers),
		tickets: db.Collection(collectionTickets),
		seq:     newSequence(db),
	}
}

func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.next(ctx, collectionCustomers)
	if err != nil {
		return err
	}
	doc := mongoCustomer{
		ID:           id,
		Name:         c.Name,
		Email:        c.Email,
		Phone:        c.Phone,
		PasswordHash: c.PasswordHash,
		CreatedAt:    timeToUnix(c.CreatedAt),
		UpdatedAt:    timeToUnix(c.UpdatedAt),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	c.ID = id
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id int64) (*domain.Customer, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *CustomerRepository) findOne(ctx context.Context, filter bson.M) (*domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoCustomer
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("find customer: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *CustomerRepository) List(ctx context.Context, page ports.Page) ([]*domain.Customer, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}
	cur, err := r.col.Find(ctx, bson.M{}, findPage(page.Offset(), page.PerPage))
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	var docs []mongoCustomer
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode customers: %w", err)
	}
	out := make([]*domain.Customer, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, total, nil
}

func (r *CustomerRepository) Update(ctx context.Context, c *domain.Customer) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": c.ID}, bson.M{"$set": bson.M{
		"name":          c.Name,
		"email":         c.Email,
		"phone":         c.Phone,
		"password_hash": c.PasswordHash,
		"updated_at":    timeToUnix(c.UpdatedAt),
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("update customer: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

// Delete removes the customer and every ticket they own.
func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrCustomerNotFound
	}
	if _, err := r.tickets.DeleteMany(ctx, bson.M{"customer_id": id}); err != nil {
		return fmt.Errorf("delete customer tickets: %w", err)
	}
	return nil
}

type mongoMechanic struct {
	ID           int64   `bson:"_id"`
	Name         string  `bson:"name"`
	Email        string  `bson:"email"`
	Phone        string  `bson:"phone"`
	Salary       float64 `bson:"salary"`
	PasswordHash string  `bson:"password_hash"`
	CreatedAt    int64   `bson:"created_at"`
	UpdatedAt    int64   `bson:"updated_at"`
}

func (d mongoMechanic) toDomain() *domain.Mechanic {
	return &domain.Mechanic{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		Phone:        d.Phone,
		Salary:       d.Salary,
		PasswordHash: d.PasswordHash,
		CreatedAt:    unixToTime(d.CreatedAt),
		UpdatedAt:    unixToTime(d.UpdatedAt),
	}
}

// MechanicRepository implements ports.MechanicRepository using MongoDB.
type MechanicRepository struct {
	col     *mongo.Collection
	tickets *mongo.Collection
	seq     *sequence
}

func NewMechanicRepository(db *mongo.Database) *MechanicRepository {
	return &MechanicRepository{
		col:     db.Collection(collectionMechanics),
		tickets: db.Collection(collectionTickets),
		seq:     newSequence(db),
	}
}

func (r *MechanicRepository) Create(ctx context.Context, m *domain.Mechanic) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.next(ctx, collectionMechanics)
	if err != nil {
		return err
	}
	doc := mongoMechanic{
		ID:           id,
		Name:         m.Name,
		Email:        m.Email,
		Phone:        m.Phone,
		Salary:       m.Salary,
		PasswordHash: m.PasswordHash,
		CreatedAt:    timeToUnix(m.CreatedAt),
		UpdatedAt:    timeToUnix(m.UpdatedAt),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert mechanic: %w", err)
	}
	m.ID = id
	return nil
}

func (r *MechanicRepository) FindByID(ctx context.Context, id int64) (*domain.Mechanic, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MechanicRepository) FindByEmail(ctx context.Context, email string) (*domain.Mechanic, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MechanicRepository) findOne(ctx context.Context, filter bson.M) (*domain.Mechanic, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoMechanic
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMechanicNotFound
		}
		return nil, fmt.Errorf("find mechanic: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *MechanicRepository) List(ctx context.Context) ([]*domain.Mechanic, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, findPage(0, 0))
	if err != nil {
		return nil, fmt.Errorf("list mechanics: %w", err)
	}
	var docs []mongoMechanic
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode mechanics: %w", err)
	}
	out := make([]*domain.Mechanic, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *MechanicRepository) Update(ctx context.Context, m *domain.Mechanic) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": m.ID}, bson.M{"$set": bson.M{
		"name":          m.Name,
		"email":         m.Email,
		"phone":         m.Phone,
		"salary":        m.Salary,
		"password_hash": m.PasswordHash,
		"updated_at":    timeToUnix(m.UpdatedAt),
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("update mechanic: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrMechanicNotFound
	}
	return nil
}

// Delete removes the mechanic and pulls it from every ticket.
func (r *MechanicRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete mechanic: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrMechanicNotFound
	}
	if _, err := r.tickets.UpdateMany(ctx,
		bson.M{"mechanic_ids": id},
		bson.M{"$pull": bson.M{"mechanic_ids": id}},
	); err != nil {
		return fmt.Errorf("unassign mechanic: %w", err)
	}
	return nil
}

func (r *MechanicRepository) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	out, err := existingIDs(ctx, r.col, ids)
	if err != nil {
		return nil, fmt.Errorf("existing mechanics: %w", err)
	}
	return out, nil
}

type mongoPart struct {
	ID        int64   `bson:"_id"`
	Name      string  `bson:"name"`
	Price     float64 `bson:"price"`
	CreatedAt int64   `bson:"created_at"`
	UpdatedAt int64   `bson:"updated_at"`
}

func (d mongoPart) toDomain() *domain.Part {
	return &domain.Part{
		ID:        d.ID,
		Name:      d.Name,
		Price:     d.Price,
		CreatedAt: unixToTime(d.CreatedAt),
		UpdatedAt: unixToTime(d.UpdatedAt),
	}
}

// PartRepository implements ports.PartRepository using MongoDB.
type PartRepository struct {
	col     *mongo.Collection
	tickets *mongo.Collection
	seq     *sequence
}

func NewPartRepository(db *mongo.Database) *PartRepository {
	return &PartRepository{
		col:     db.Collection(collectionParts),
		tickets: db.Collection(collectionTickets),
		seq:     newSequence(db),
	}
}

func (r *PartRepository) Create(ctx context.Context, p *domain.Part) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.next(ctx, collectionParts)
	if err != nil {
		return err
	}
	doc := mongoPart{
		ID:        id,
		Name:      p.Name,
		Price:     p.Price,
		CreatedAt: timeToUnix(p.CreatedAt),
		UpdatedAt: timeToUnix(p.UpdatedAt),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert part: %w", err)
	}
	p.ID = id
	return nil
}

func (r *PartRepository) FindByID(ctx context.Context, id int64) (*domain.Part, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoPart
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPartNotFound
		}
		return nil, fmt.Errorf("find part: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *PartRepository) List(ctx context.Context) ([]*domain.Part, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, findPage(0, 0))
	if err != nil {
		return nil, fmt.Errorf("list parts: %w", err)
	}
	var docs []mongoPart
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode parts: %w", err)
	}
	out := make([]*domain.Part, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *PartRepository) Update(ctx context.Context, p *domain.Part) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": bson.M{
		"name":       p.Name,
		"price":      p.Price,
		"updated_at": timeToUnix(p.UpdatedAt),
	}})
	if err != nil {
		return fmt.Errorf("update part: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPartNotFound
	}
	return nil
}

// Delete removes the part and pulls it from every ticket.
func (r *PartRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete part: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrPartNotFound
	}
	if _, err := r.tickets.UpdateMany(ctx,
		bson.M{"part_ids": id},
		bson.M{"$pull": bson.M{"part_ids": id}},
	); err != nil {
		return fmt.Errorf("remove part from tickets: %w", err)
	}
	return nil
}

func (r *PartRepository) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	out, err := existingIDs(ctx, r.col, ids)
	if err != nil {
		return nil, fmt.Errorf("existing parts: %w", err)
	}
	return out, nil
}
