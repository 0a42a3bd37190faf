package sqlstore

import (
	"context"
	"fmt"

	"github.com/mechshop/service-api/internal/core/domain"
)

// MembershipRepository stores ticket links in join tables keyed by
// (ticket_id, member_id), so repeated adds collapse into one row.
type MembershipRepository struct {
	db *DB
}

func (r *MembershipRepository) AddMember(ctx context.Context, ticketID int64, kind domain.MemberKind, memberID int64) error {
	return r.ApplyMembers(ctx, ticketID, kind, []int64{memberID}, nil)
}

func (r *MembershipRepository) RemoveMember(ctx context.Context, ticketID int64, kind domain.MemberKind, memberID int64) error {
	return r.ApplyMembers(ctx, ticketID, kind, nil, []int64{memberID})
}

// ApplyMembers inserts add then deletes remove inside one transaction.
func (r *MembershipRepository) ApplyMembers(ctx context.Context, ticketID int64, kind domain.MemberKind, add, remove []int64) error {
	return r.db.withTx(ctx, func(q querier) error {
		if err := requireTicket(ctx, q, ticketID); err != nil {
			return err
		}
		if err := r.db.insertMembers(ctx, q, ticketID, kind, add); err != nil {
			return err
		}
		if len(remove) == 0 {
			return nil
		}
		table, column := memberTable(kind)
		args := append([]any{ticketID}, int64Args(remove)...)
		if _, err := q.ExecContext(ctx,
			"DELETE FROM "+table+" WHERE ticket_id = ? AND "+column+" IN ("+placeholders(len(remove))+")", args...); err != nil {
			return fmt.Errorf("unlink %s: %w", kind, err)
		}
		return nil
	})
}

func (r *MembershipRepository) ListMembers(ctx context.Context, ticketID int64, kind domain.MemberKind) ([]int64, error) {
	if err := requireTicket(ctx, r.db.sql, ticketID); err != nil {
		return nil, err
	}
	table, column := memberTable(kind)
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT "+column+" FROM "+table+" WHERE ticket_id = ? ORDER BY added_at, "+column, ticketID)
	if err != nil {
		return nil, fmt.Errorf("list %s members: %w", kind, err)
	}
	defer rows.Close()

	out := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s member: %w", kind, err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *MembershipRepository) IsMember(ctx context.Context, ticketID int64, kind domain.MemberKind, memberID int64) (bool, error) {
	if err := requireTicket(ctx, r.db.sql, ticketID); err != nil {
		return false, err
	}
	table, column := memberTable(kind)
	var n int
	if err := r.db.sql.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+table+" WHERE ticket_id = ? AND "+column+" = ?", ticketID, memberID).Scan(&n); err != nil {
		return false, fmt.Errorf("check %s member: %w", kind, err)
	}
	return n > 0, nil
}

func (r *MembershipRepository) CountTicketsByMechanic(ctx context.Context) (map[int64]int, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT mechanic_id, COUNT(*) FROM service_mechanics GROUP BY mechanic_id")
	if err != nil {
		return nil, fmt.Errorf("count mechanic tickets: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan mechanic count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

func requireTicket(ctx context.Context, q querier, ticketID int64) error {
	ok, err := exists(ctx, q, "service_tickets", ticketID)
	if err != nil {
		return fmt.Errorf("find ticket: %w", err)
	}
	if !ok {
		return domain.ErrTicketNotFound
	}
	return nil
}
