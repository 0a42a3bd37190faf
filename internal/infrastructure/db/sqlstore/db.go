// Package sqlstore implements the repositories on database/sql for MySQL and
// SQLite. Both dialects share one schema; only DDL and idempotent insert
// syntax differ.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/mechshop/service-api/internal/core/domain"
	"github.com/mechshop/service-api/internal/core/ports"
)

const defaultTimeout = 5 * time.Second

// Dialect selects the SQL flavour.
type Dialect string

const (
	MySQL  Dialect = "mysql"
	SQLite Dialect = "sqlite"
)

// Config captures the settings for opening a SQL store.
type Config struct {
	Dialect Dialect
	// DSN is a go-sql-driver DSN for MySQL, or a file path / ":memory:" for SQLite.
	DSN     string
	Timeout time.Duration
}

// DB is a migrated SQL store.
type DB struct {
	sql     *sql.DB
	dialect Dialect
}

// Open connects, verifies connectivity with a ping, and applies the schema.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var (
		conn *sql.DB
		err  error
	)
	switch cfg.Dialect {
	case MySQL:
		conn, err = openMySQL(cfg.DSN)
	case SQLite:
		conn, err = openSQLite(cfg.DSN)
	default:
		return nil, fmt.Errorf("sqlstore: unknown dialect %q", cfg.Dialect)
	}
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s ping: %w", cfg.Dialect, err)
	}

	db := &DB{sql: conn, dialect: cfg.Dialect}
	if err := db.migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s migrate: %w", cfg.Dialect, err)
	}
	return db, nil
}

func openMySQL(dsn string) (*sql.DB, error) {
	mcfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql dsn: %w", err)
	}
	mcfg.ParseTime = true
	mcfg.Loc = time.UTC

	conn, err := sql.Open("mysql", mcfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("mysql open: %w", err)
	}
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(25)
	conn.SetConnMaxLifetime(30 * time.Minute)
	return conn, nil
}

func openSQLite(path string) (*sql.DB, error) {
	if path == "" {
		path = ":memory:"
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serialises writers.
	conn.SetMaxOpenConns(1)
	for _, pragma := range []string{`PRAGMA foreign_keys=ON;`, `PRAGMA busy_timeout=5000;`} {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("sqlite pragma: %w", err)
		}
	}
	if path != ":memory:" {
		if _, err := conn.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("sqlite pragma: %w", err)
		}
	}
	return conn, nil
}

// Ping reports whether the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.sql.PingContext(ctx)
}

func (db *DB) Close() error {
	return db.sql.Close()
}

func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Repositories returns every repository backed by db.
func (db *DB) Repositories() ports.Repositories {
	return ports.Repositories{
		Customers:   &CustomerRepository{db: db},
		Mechanics:   &MechanicRepository{db: db},
		Parts:       &PartRepository{db: db},
		Tickets:     &TicketRepository{db: db},
		Memberships: &MembershipRepository{db: db},
	}
}

// querier is the subset of *sql.DB and *sql.Tx the repositories use.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn in a transaction, committing on success.
func (db *DB) withTx(ctx context.Context, fn func(q querier) error) error {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (db *DB) insertIgnore() string {
	if db.dialect == MySQL {
		return "INSERT IGNORE INTO"
	}
	return "INSERT OR IGNORE INTO"
}

// isDuplicate reports whether err is a unique-constraint violation.
func isDuplicate(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// exists reports whether a row with id is present in table.
func exists(ctx context.Context, q querier, table string, id int64) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// placeholders returns "?, ?, ..." for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// existingIDs returns the subset of ids present in table.
func existingIDs(ctx context.Context, q querier, table string, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := q.QueryContext(ctx,
		"SELECT id FROM "+table+" WHERE id IN ("+placeholders(len(ids))+")", int64Args(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return time.Now().UTC().UnixNano()
	}
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// memberTable maps an association kind to its join table and member column.
func memberTable(kind domain.MemberKind) (table, column string) {
	if kind == domain.MemberPart {
		return "service_parts", "part_id"
	}
	return "service_mechanics", "mechanic_id"
}
