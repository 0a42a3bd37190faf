package mongo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/mechshop/service-api/internal/core/domain"
)

// evalExpr evaluates the aggregation operators membersPipeline emits against
// doc, so the update can be checked without a server.
func evalExpr(t *testing.T, expr any, doc bson.M, this any) any {
	t.Helper()
	switch v := expr.(type) {
	case string:
		switch {
		case v == "$$this":
			return this
		case len(v) > 1 && v[0] == '$':
			return doc[v[1:]]
		}
		return v
	case int64:
		return v
	case []int64:
		out := make([]any, 0, len(v))
		for _, id := range v {
			out = append(out, id)
		}
		return out
	case bson.A:
		out := make([]any, 0, len(v))
		for _, e := range v {
			out = append(out, evalExpr(t, e, doc, this))
		}
		return out
	case bson.M:
		if len(v) != 1 {
			t.Fatalf("expected single-operator expression, got %v", v)
		}
		for op, arg := range v {
			return evalOp(t, op, arg, doc, this)
		}
	}
	t.Fatalf("unsupported expression %T %v", expr, expr)
	return nil
}

func evalOp(t *testing.T, op string, arg any, doc bson.M, this any) any {
	t.Helper()
	switch op {
	case "$ifNull":
		args := arg.(bson.A)
		if first := evalExpr(t, args[0], doc, this); first != nil {
			return first
		}
		return evalExpr(t, args[1], doc, this)
	case "$concatArrays":
		var out []any
		for _, part := range evalExpr(t, arg, doc, this).([]any) {
			out = append(out, part.([]any)...)
		}
		return out
	case "$filter":
		spec := arg.(bson.M)
		out := []any{}
		for _, item := range evalExpr(t, spec["input"], doc, this).([]any) {
			if evalExpr(t, spec["cond"], doc, item).(bool) {
				out = append(out, item)
			}
		}
		return out
	case "$not":
		return !evalExpr(t, arg.(bson.A)[0], doc, this).(bool)
	case "$in":
		args := arg.(bson.A)
		needle := evalExpr(t, args[0], doc, this)
		return slices.Contains(evalExpr(t, args[1], doc, this).([]any), needle)
	}
	t.Fatalf("unsupported operator %s", op)
	return nil
}

func applyPipeline(t *testing.T, doc bson.M, field string, add, remove []int64) []any {
	t.Helper()
	p := membersPipeline(field, add, remove)
	if len(p) != 1 || len(p[0]) != 1 || p[0][0].Key != "$set" {
		t.Fatalf("expected a single $set stage, got %v", p)
	}
	set := p[0][0].Value.(bson.M)
	return evalExpr(t, set[field], doc, nil).([]any)
}

func ids(vs ...int64) []any {
	out := make([]any, 0, len(vs))
	for _, v := range vs {
		out = append(out, v)
	}
	return out
}

func TestMembersPipeline(t *testing.T) {
	tests := []struct {
		name   string
		doc    bson.M
		add    []int64
		remove []int64
		want   []any
	}{
		{"appends unseen in order", bson.M{"mechanic_ids": ids(1, 2)}, []int64{3, 2, 4, 3}, nil, ids(1, 2, 3, 4)},
		{"missing field", bson.M{}, []int64{5}, nil, ids(5)},
		{"null field", bson.M{"mechanic_ids": nil}, []int64{5}, []int64{}, ids(5)},
		{"remove wins over add", bson.M{"mechanic_ids": ids(1)}, []int64{7}, []int64{7}, ids(1)},
		{"removes existing and skips non-members", bson.M{"mechanic_ids": ids(1, 2, 3)}, nil, []int64{2, 99}, ids(1, 3)},
		{"nothing to do", bson.M{"mechanic_ids": ids(4)}, nil, nil, ids(4)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := applyPipeline(t, tc.doc, "mechanic_ids", tc.add, tc.remove)
			if !slices.Equal(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}

			// Re-applying the same edit is a no-op.
			again := applyPipeline(t, bson.M{"mechanic_ids": got}, "mechanic_ids", tc.add, tc.remove)
			if !slices.Equal(again, got) {
				t.Fatalf("second application changed members: %v -> %v", got, again)
			}
		})
	}
}

func TestMembersPipeline_EmptyListsEncodeAsArrays(t *testing.T) {
	p := membersPipeline("part_ids", nil, nil)
	raw, err := bson.Marshal(bson.D{{Key: "pipeline", Value: p}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		Pipeline []bson.M `bson:"pipeline"`
	}
	if err := bson.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	next := decoded.Pipeline[0]["$set"].(bson.M)["part_ids"].(bson.M)["$filter"].(bson.M)
	cond := next["cond"].(bson.M)["$not"].(bson.A)[0].(bson.M)["$in"].(bson.A)
	if _, ok := cond[1].(bson.A); !ok {
		t.Fatalf("remove list must encode as an array, got %T", cond[1])
	}
}

// TestMembershipRepository_Mongo runs against a live server when MONGO_URI is set.
func TestMembershipRepository_Mongo(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	ctx := context.Background()
	store, err := Connect(ctx, Config{URI: uri, Database: fmt.Sprintf("mechshop_test_%d", time.Now().UnixNano())})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_ = store.DB.Drop(context.Background())
		_ = store.Close(context.Background())
	})

	repos := store.Repositories()
	ticket := &domain.ServiceTicket{VIN: "V1", ServiceDate: time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC), CustomerID: 1, MechanicIDs: []int64{1}}
	if err := repos.Tickets.Create(ctx, ticket); err != nil {
		t.Fatalf("create ticket: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := repos.Memberships.ApplyMembers(ctx, ticket.ID, domain.MemberMechanic, []int64{2, 3, 1}, []int64{3}); err != nil {
			t.Fatalf("apply members: %v", err)
		}
		got, err := repos.Memberships.ListMembers(ctx, ticket.ID, domain.MemberMechanic)
		if err != nil {
			t.Fatalf("list members: %v", err)
		}
		if !slices.Equal(got, []int64{1, 2}) {
			t.Fatalf("pass %d: expected [1 2], got %v", i, got)
		}
	}

	if err := repos.Memberships.ApplyMembers(ctx, ticket.ID, domain.MemberPart, []int64{9}, nil); err != nil {
		t.Fatalf("apply parts: %v", err)
	}
	if ok, err := repos.Memberships.IsMember(ctx, ticket.ID, domain.MemberPart, 9); err != nil || !ok {
		t.Fatalf("expected part 9 on ticket, ok=%v err=%v", ok, err)
	}
	if err := repos.Memberships.ApplyMembers(ctx, 404, domain.MemberPart, []int64{9}, nil); !errors.Is(err, domain.ErrTicketNotFound) {
		t.Fatalf("expected ErrTicketNotFound, got %v", err)
	}
}
