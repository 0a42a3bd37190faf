package sqlstore

import (
	"context"
	"strings"
)

// schema uses {{pk}} for the auto-increment primary key column definition and
// {{email}} for a case-sensitive email column. Column widths follow the
// request validation limits: email 360, phone 160, name 255.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id {{pk}},
		name VARCHAR(255) NOT NULL,
		email {{email}} NOT NULL UNIQUE,
		phone VARCHAR(160) NOT NULL DEFAULT '',
		password_hash VARCHAR(255) NOT NULL,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS mechanics (
		id {{pk}},
		name VARCHAR(255) NOT NULL,
		email {{email}} NOT NULL UNIQUE,
		phone VARCHAR(160) NOT NULL DEFAULT '',
		salary DOUBLE NOT NULL DEFAULT 0,
		password_hash VARCHAR(255) NOT NULL,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS parts (
		id {{pk}},
		name VARCHAR(255) NOT NULL,
		price DOUBLE NOT NULL DEFAULT 0,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS service_tickets (
		id {{pk}},
		vin VARCHAR(17) NOT NULL,
		service_date VARCHAR(10) NOT NULL,
		description TEXT NOT NULL,
		customer_id BIGINT NOT NULL,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL,
		FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS service_mechanics (
		ticket_id BIGINT NOT NULL,
		mechanic_id BIGINT NOT NULL,
		added_at BIGINT NOT NULL,
		PRIMARY KEY (ticket_id, mechanic_id),
		FOREIGN KEY (ticket_id) REFERENCES service_tickets(id) ON DELETE CASCADE,
		FOREIGN KEY (mechanic_id) REFERENCES mechanics(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS service_parts (
		ticket_id BIGINT NOT NULL,
		part_id BIGINT NOT NULL,
		added_at BIGINT NOT NULL,
		PRIMARY KEY (ticket_id, part_id),
		FOREIGN KEY (ticket_id) REFERENCES service_tickets(id) ON DELETE CASCADE,
		FOREIGN KEY (part_id) REFERENCES parts(id) ON DELETE CASCADE
	)`,
}

func (db *DB) migrate(ctx context.Context) error {
	for _, stmt := range schemaFor(db.dialect) {
		if _, err := db.sql.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// schemaFor expands the schema placeholders for d. MySQL's default collation
// folds case, so email columns are pinned to a binary collation there. SQLite
// compares text with BINARY by default.
func schemaFor(d Dialect) []string {
	r := strings.NewReplacer(
		"{{pk}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"{{email}}", "VARCHAR(360)",
	)
	if d == MySQL {
		r = strings.NewReplacer(
			"{{pk}}", "BIGINT AUTO_INCREMENT PRIMARY KEY",
			"{{email}}", "VARCHAR(360) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin",
		)
	}
	out := make([]string, 0, len(schema))
	for _, stmt := range schema {
		out = append(out, r.Replace(stmt))
	}
	return out
}
