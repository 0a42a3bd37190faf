package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mechshop/service-api/internal/core/domain"
	"github.com/mechshop/service-api/internal/core/ports"
)

type TicketRepository struct {
	db *DB
}

const ticketColumns = "id, vin, service_date, description, customer_id, created_at, updated_at"

func scanTicket(row interface{ Scan(...any) error }) (*domain.ServiceTicket, error) {
	var t domain.ServiceTicket
	var date string
	var created, updated int64
	if err := row.Scan(&t.ID, &t.VIN, &date, &t.Description, &t.CustomerID, &created, &updated); err != nil {
		return nil, err
	}
	d, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("ticket %d service_date: %w", t.ID, err)
	}
	t.ServiceDate = d
	t.CreatedAt, t.UpdatedAt = fromUnix(created), fromUnix(updated)
	t.MechanicIDs, t.PartIDs = []int64{}, []int64{}
	return &t, nil
}

// Create inserts the ticket and its initial member sets in one transaction.
func (r *TicketRepository) Create(ctx context.Context, t *domain.ServiceTicket) error {
	return r.db.withTx(ctx, func(q querier) error {
		res, err := q.ExecContext(ctx,
			"INSERT INTO service_tickets (vin, service_date, description, customer_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			t.VIN, t.ServiceDate.Format(domain.DateLayout), t.Description, t.CustomerID, toUnix(t.CreatedAt), toUnix(t.UpdatedAt))
		if err != nil {
			return fmt.Errorf("insert ticket: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert ticket: %w", err)
		}
		if err := r.db.insertMembers(ctx, q, id, domain.MemberMechanic, t.MechanicIDs); err != nil {
			return err
		}
		if err := r.db.insertMembers(ctx, q, id, domain.MemberPart, t.PartIDs); err != nil {
			return err
		}
		t.ID = id
		return nil
	})
}

func (r *TicketRepository) FindByID(ctx context.Context, id int64) (*domain.ServiceTicket, error) {
	t, err := scanTicket(r.db.sql.QueryRowContext(ctx,
		"SELECT "+ticketColumns+" FROM service_tickets WHERE id = ? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find ticket: %w", err)
	}
	if err := r.loadMembers(ctx, []*domain.ServiceTicket{t}); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TicketRepository) List(ctx context.Context, page ports.Page) ([]*domain.ServiceTicket, int64, error) {
	var total int64
	if err := r.db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM service_tickets").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tickets: %w", err)
	}
	out, err := r.query(ctx,
		"SELECT "+ticketColumns+" FROM service_tickets ORDER BY id LIMIT ? OFFSET ?", page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *TicketRepository) ListByCustomer(ctx context.Context, customerID int64) ([]*domain.ServiceTicket, error) {
	return r.query(ctx,
		"SELECT "+ticketColumns+" FROM service_tickets WHERE customer_id = ? ORDER BY id", customerID)
}

func (r *TicketRepository) query(ctx context.Context, query string, args ...any) ([]*domain.ServiceTicket, error) {
	rows, err := r.db.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	out := []*domain.ServiceTicket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		out = append(out, t)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}

	if err := r.loadMembers(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// loadMembers fills both member sets of every ticket, in insertion order.
func (r *TicketRepository) loadMembers(ctx context.Context, tickets []*domain.ServiceTicket) error {
	if len(tickets) == 0 {
		return nil
	}
	byID := make(map[int64]*domain.ServiceTicket, len(tickets))
	ids := make([]int64, 0, len(tickets))
	for _, t := range tickets {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}

	for _, kind := range []domain.MemberKind{domain.MemberMechanic, domain.MemberPart} {
		table, column := memberTable(kind)
		rows, err := r.db.sql.QueryContext(ctx,
			"SELECT ticket_id, "+column+" FROM "+table+" WHERE ticket_id IN ("+placeholders(len(ids))+") ORDER BY added_at, "+column,
			int64Args(ids)...)
		if err != nil {
			return fmt.Errorf("load %s members: %w", kind, err)
		}
		for rows.Next() {
			var ticketID, memberID int64
			if err := rows.Scan(&ticketID, &memberID); err != nil {
				rows.Close()
				return fmt.Errorf("scan %s member: %w", kind, err)
			}
			t := byID[ticketID]
			if kind == domain.MemberPart {
				t.PartIDs = append(t.PartIDs, memberID)
			} else {
				t.MechanicIDs = append(t.MechanicIDs, memberID)
			}
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return fmt.Errorf("load %s members: %w", kind, err)
		}
	}
	return nil
}

// Update writes scalar fields only; member sets are untouched.
func (r *TicketRepository) Update(ctx context.Context, t *domain.ServiceTicket) error {
	res, err := r.db.sql.ExecContext(ctx,
		"UPDATE service_tickets SET vin = ?, service_date = ?, description = ?, customer_id = ?, updated_at = ? WHERE id = ?",
		t.VIN, t.ServiceDate.Format(domain.DateLayout), t.Description, t.CustomerID, toUnix(t.UpdatedAt), t.ID)
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	return r.db.checkUpdated(ctx, res, "service_tickets", t.ID, domain.ErrTicketNotFound)
}

// Delete removes the ticket and its links.
func (r *TicketRepository) Delete(ctx context.Context, id int64) error {
	return r.db.withTx(ctx, func(q querier) error {
		for _, table := range []string{"service_mechanics", "service_parts"} {
			if _, err := q.ExecContext(ctx, "DELETE FROM "+table+" WHERE ticket_id = ?", id); err != nil {
				return fmt.Errorf("delete ticket links: %w", err)
			}
		}
		res, err := q.ExecContext(ctx, "DELETE FROM service_tickets WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("delete ticket: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrTicketNotFound
		}
		return nil
	})
}

// insertMembers links ids to the ticket, ignoring ones already linked.
func (db *DB) insertMembers(ctx context.Context, q querier, ticketID int64, kind domain.MemberKind, ids []int64) error {
	table, column := memberTable(kind)
	stmt := db.insertIgnore() + " " + table + " (ticket_id, " + column + ", added_at) VALUES (?, ?, ?)"
	base := time.Now().UTC().UnixNano()
	for i, id := range ids {
		if _, err := q.ExecContext(ctx, stmt, ticketID, id, base+int64(i)); err != nil {
			return fmt.Errorf("link %s %d: %w", kind, id, err)
		}
	}
	return nil
}
