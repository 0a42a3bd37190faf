package mongo

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mechshop/service-api/internal/core/domain"
)

// MembershipRepository edits the member arrays embedded in ticket documents.
type MembershipRepository struct {
	col *mongo.Collection
}

func NewMembershipRepository(db *mongo.Database) *MembershipRepository {
	return &MembershipRepository{col: db.Collection(collectionTickets)}
}

func memberField(kind domain.MemberKind) string {
	if kind == domain.MemberPart {
		return "part_ids"
	}
	return "mechanic_ids"
}

// AddMember uses $addToSet, so repeating it leaves one entry.
func (r *MembershipRepository) AddMember(ctx context.Context, ticketID int64, kind domain.MemberKind, memberID int64) error {
	return r.update(ctx, ticketID, bson.M{"$addToSet": bson.M{memberField(kind): memberID}})
}

func (r *MembershipRepository) RemoveMember(ctx context.Context, ticketID int64, kind domain.MemberKind, memberID int64) error {
	return r.update(ctx, ticketID, bson.M{"$pull": bson.M{memberField(kind): memberID}})
}

// ApplyMembers appends unseen add ids and then filters out remove ids with
// one pipeline update on the ticket document.
func (r *MembershipRepository) ApplyMembers(ctx context.Context, ticketID int64, kind domain.MemberKind, add, remove []int64) error {
	return r.update(ctx, ticketID, membersPipeline(memberField(kind), add, remove))
}

// membersPipeline sets field to (field ++ add-not-yet-present) minus remove.
// A missing or null field counts as empty.
func membersPipeline(field string, add, remove []int64) mongo.Pipeline {
	current := bson.M{"$ifNull": bson.A{"$" + field, bson.A{}}}
	add = domain.UniqueIDs(add)
	remove = domain.UniqueIDs(remove)

	appended := bson.M{"$concatArrays": bson.A{
		current,
		bson.M{"$filter": bson.M{
			"input": add,
			"cond":  bson.M{"$not": bson.A{bson.M{"$in": bson.A{"$$this", current}}}},
		}},
	}}
	next := bson.M{"$filter": bson.M{
		"input": appended,
		"cond":  bson.M{"$not": bson.A{bson.M{"$in": bson.A{"$$this", remove}}}},
	}}
	return mongo.Pipeline{{{Key: "$set", Value: bson.M{field: next}}}}
}

func (r *MembershipRepository) update(ctx context.Context, ticketID int64, update any) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": ticketID}, update)
	if err != nil {
		return fmt.Errorf("update ticket members: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

func (r *MembershipRepository) ListMembers(ctx context.Context, ticketID int64, kind domain.MemberKind) ([]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	field := memberField(kind)
	var doc bson.M
	err := r.col.FindOne(ctx, bson.M{"_id": ticketID},
		options.FindOne().SetProjection(bson.M{field: 1})).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("list %s members: %w", kind, err)
	}

	out := []int64{}
	arr, _ := doc[field].(bson.A)
	for _, v := range arr {
		if id, ok := v.(int64); ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *MembershipRepository) IsMember(ctx context.Context, ticketID int64, kind domain.MemberKind, memberID int64) (bool, error) {
	ids, err := r.ListMembers(ctx, ticketID, kind)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, memberID), nil
}

// CountTicketsByMechanic unwinds mechanic_ids and counts tickets per mechanic.
func (r *MembershipRepository) CountTicketsByMechanic(ctx context.Context) (map[int64]int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$mechanic_ids"}},
		{{Key: "$group", Value: bson.M{"_id": "$mechanic_ids", "count": bson.M{"$sum": 1}}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("count mechanic tickets: %w", err)
	}
	var rows []struct {
		ID    int64 `bson:"_id"`
		Count int   `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode mechanic counts: %w", err)
	}

	counts := make(map[int64]int, len(rows))
	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts, nil
}
