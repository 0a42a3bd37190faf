package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mechshop/service-api/internal/core/domain"
	"github.com/mechshop/service-api/internal/core/ports"
)

type CustomerRepository struct {
	db *DB
}

const customerColumns = "id, name, email, phone, password_hash, created_at, updated_at"

func scanCustomer(row interface{ Scan(...any) error }) (*domain.Customer, error) {
	var c domain.Customer
	var created, updated int64
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.PasswordHash, &created, &updated); err != nil {
		return nil, err
	}
	c.CreatedAt, c.UpdatedAt = fromUnix(created), fromUnix(updated)
	return &c, nil
}

func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	res, err := r.db.sql.ExecContext(ctx,
		"INSERT INTO customers (name, email, phone, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		c.Name, c.Email, c.Phone, c.PasswordHash, toUnix(c.CreatedAt), toUnix(c.UpdatedAt))
	if err != nil {
		if isDuplicate(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	c.ID = id
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id int64) (*domain.Customer, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *CustomerRepository) findOne(ctx context.Context, where string, arg any) (*domain.Customer, error) {
	c, err := scanCustomer(r.db.sql.QueryRowContext(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE "+where+" LIMIT 1", arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find customer: %w", err)
	}
	return c, nil
}

func (r *CustomerRepository) List(ctx context.Context, page ports.Page) ([]*domain.Customer, int64, error) {
	var total int64
	if err := r.db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM customers").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT "+customerColumns+" FROM customers ORDER BY id LIMIT ? OFFSET ?", page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	out := []*domain.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *CustomerRepository) Update(ctx context.Context, c *domain.Customer) error {
	res, err := r.db.sql.ExecContext(ctx,
		"UPDATE customers SET name = ?, email = ?, phone = ?, password_hash = ?, updated_at = ? WHERE id = ?",
		c.Name, c.Email, c.Phone, c.PasswordHash, toUnix(c.UpdatedAt), c.ID)
	if err != nil {
		if isDuplicate(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("update customer: %w", err)
	}
	return r.db.checkUpdated(ctx, res, "customers", c.ID, domain.ErrCustomerNotFound)
}

// Delete removes the customer together with their tickets and those tickets' links.
func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	return r.db.withTx(ctx, func(q querier) error {
		for _, table := range []string{"service_mechanics", "service_parts"} {
			if _, err := q.ExecContext(ctx,
				"DELETE FROM "+table+" WHERE ticket_id IN (SELECT id FROM service_tickets WHERE customer_id = ?)", id); err != nil {
				return fmt.Errorf("delete customer links: %w", err)
			}
		}
		if _, err := q.ExecContext(ctx, "DELETE FROM service_tickets WHERE customer_id = ?", id); err != nil {
			return fmt.Errorf("delete customer tickets: %w", err)
		}
		res, err := q.ExecContext(ctx, "DELETE FROM customers WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("delete customer: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrCustomerNotFound
		}
		return nil
	})
}

type MechanicRepository struct {
	db *DB
}

const mechanicColumns = "id, name, email, phone, salary, password_hash, created_at, updated_at"

func scanMechanic(row interface{ Scan(...any) error }) (*domain.Mechanic, error) {
	var m domain.Mechanic
	var created, updated int64
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Salary, &m.PasswordHash, &created, &updated); err != nil {
		return nil, err
	}
	m.CreatedAt, m.UpdatedAt = fromUnix(created), fromUnix(updated)
	return &m, nil
}

func (r *MechanicRepository) Create(ctx context.Context, m *domain.Mechanic) error {
	res, err := r.db.sql.ExecContext(ctx,
		"INSERT INTO mechanics (name, email, phone, salary, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		m.Name, m.Email, m.Phone, m.Salary, m.PasswordHash, toUnix(m.CreatedAt), toUnix(m.UpdatedAt))
	if err != nil {
		if isDuplicate(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert mechanic: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert mechanic: %w", err)
	}
	m.ID = id
	return nil
}

func (r *MechanicRepository) FindByID(ctx context.Context, id int64) (*domain.Mechanic, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *MechanicRepository) FindByEmail(ctx context.Context, email string) (*domain.Mechanic, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *MechanicRepository) findOne(ctx context.Context, where string, arg any) (*domain.Mechanic, error) {
	m, err := scanMechanic(r.db.sql.QueryRowContext(ctx,
		"SELECT "+mechanicColumns+" FROM mechanics WHERE "+where+" LIMIT 1", arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMechanicNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find mechanic: %w", err)
	}
	return m, nil
}

func (r *MechanicRepository) List(ctx context.Context) ([]*domain.Mechanic, error) {
	rows, err := r.db.sql.QueryContext(ctx, "SELECT "+mechanicColumns+" FROM mechanics ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list mechanics: %w", err)
	}
	defer rows.Close()

	out := []*domain.Mechanic{}
	for rows.Next() {
		m, err := scanMechanic(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mechanic: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MechanicRepository) Update(ctx context.Context, m *domain.Mechanic) error {
	res, err := r.db.sql.ExecContext(ctx,
		"UPDATE mechanics SET name = ?, email = ?, phone = ?, salary = ?, password_hash = ?, updated_at = ? WHERE id = ?",
		m.Name, m.Email, m.Phone, m.Salary, m.PasswordHash, toUnix(m.UpdatedAt), m.ID)
	if err != nil {
		if isDuplicate(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("update mechanic: %w", err)
	}
	return r.db.checkUpdated(ctx, res, "mechanics", m.ID, domain.ErrMechanicNotFound)
}

// Delete removes the mechanic and unassigns it from every ticket.
func (r *MechanicRepository) Delete(ctx context.Context, id int64) error {
	return r.db.withTx(ctx, func(q querier) error {
		if _, err := q.ExecContext(ctx, "DELETE FROM service_mechanics WHERE mechanic_id = ?", id); err != nil {
			return fmt.Errorf("delete mechanic links: %w", err)
		}
		res, err := q.ExecContext(ctx, "DELETE FROM mechanics WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("delete mechanic: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrMechanicNotFound
		}
		return nil
	})
}

func (r *MechanicRepository) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	out, err := existingIDs(ctx, r.db.sql, "mechanics", ids)
	if err != nil {
		return nil, fmt.Errorf("existing mechanics: %w", err)
	}
	return out, nil
}

type PartRepository struct {
	db *DB
}

const partColumns = "id, name, price, created_at, updated_at"

func scanPart(row interface{ Scan(...any) error }) (*domain.Part, error) {
	var p domain.Part
	var created, updated int64
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &created, &updated); err != nil {
		return nil, err
	}
	p.CreatedAt, p.UpdatedAt = fromUnix(created), fromUnix(updated)
	return &p, nil
}

func (r *PartRepository) Create(ctx context.Context, p *domain.Part) error {
	res, err := r.db.sql.ExecContext(ctx,
		"INSERT INTO parts (name, price, created_at, updated_at) VALUES (?, ?, ?, ?)",
		p.Name, p.Price, toUnix(p.CreatedAt), toUnix(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert part: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert part: %w", err)
	}
	p.ID = id
	return nil
}

func (r *PartRepository) FindByID(ctx context.Context, id int64) (*domain.Part, error) {
	p, err := scanPart(r.db.sql.QueryRowContext(ctx,
		"SELECT "+partColumns+" FROM parts WHERE id = ? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find part: %w", err)
	}
	return p, nil
}

func (r *PartRepository) List(ctx context.Context) ([]*domain.Part, error) {
	rows, err := r.db.sql.QueryContext(ctx, "SELECT "+partColumns+" FROM parts ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list parts: %w", err)
	}
	defer rows.Close()

	out := []*domain.Part{}
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("scan part: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PartRepository) Update(ctx context.Context, p *domain.Part) error {
	res, err := r.db.sql.ExecContext(ctx,
		"UPDATE parts SET name = ?, price = ?, updated_at = ? WHERE id = ?",
		p.Name, p.Price, toUnix(p.UpdatedAt), p.ID)
	if err != nil {
		return fmt.Errorf("update part: %w", err)
	}
	return r.db.checkUpdated(ctx, res, "parts", p.ID, domain.ErrPartNotFound)
}

// Delete removes the part and drops it from every ticket.
func (r *PartRepository) Delete(ctx context.Context, id int64) error {
	return r.db.withTx(ctx, func(q querier) error {
		if _, err := q.ExecContext(ctx, "DELETE FROM service_parts WHERE part_id = ?", id); err != nil {
			return fmt.Errorf("delete part links: %w", err)
		}
		res, err := q.ExecContext(ctx, "DELETE FROM parts WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("delete part: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrPartNotFound
		}
		return nil
	})
}

func (r *PartRepository) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	out, err := existingIDs(ctx, r.db.sql, "parts", ids)
	if err != nil {
		return nil, fmt.Errorf("existing parts: %w", err)
	}
	return out, nil
}

// checkUpdated turns a zero-row UPDATE into notFound. MySQL reports zero
// affected rows for unchanged values, so a zero count is confirmed by lookup.
func (db *DB) checkUpdated(ctx context.Context, res sql.Result, table string, id int64, notFound error) error {
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	ok, err := exists(ctx, db.sql, table, id)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	if !ok {
		return notFound
	}
	return nil
}
