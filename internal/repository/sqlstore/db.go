// Package sqlstore implements the repositories over database/sql, for
// SQLite (mattn/go-sqlite3) and Postgres (lib/pq).
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/egannguyen/earphones-support/internal/config"
	"github.com/egannguyen/earphones-support/internal/search"
)

// DB is a connection pool plus the dialect its statements are rendered in.
type DB struct {
	*sql.DB
	Dialect search.Dialect
}

// Rebind converts a '?' statement into the store's placeholder style.
func (db *DB) Rebind(query string) string {
	if db.Dialect == search.SQLite {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(db.Dialect.Placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// InitDB opens, pings and migrates the configured database.
func InitDB(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	dsn := cfg.DSN()
	if cfg.Driver != "postgres" {
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
	}

	sqlDB, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == "postgres" {
		sqlDB.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)
	} else if cfg.SQLite.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.SQLite.MaxOpenConns)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{DB: sqlDB, Dialect: search.DialectFor(cfg.Driver)}
	if err := db.migrate(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// ensureDir creates the parent directory of a SQLite file.
func ensureDir(path string) error {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

func (db *DB) migrate(ctx context.Context) error {
	schema := sqliteSchema
	if db.Dialect == search.Postgres {
		schema = postgresSchema
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		brand TEXT NOT NULL,
		price REAL NOT NULL,
		quantity INTEGER NOT NULL,
		rating REAL NOT NULL,
		tags TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		address TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		shipping_address TEXT NOT NULL,
		order_amount REAL NOT NULL,
		status TEXT NOT NULL,
		created_time TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users (id)
	);

	CREATE TABLE IF NOT EXISTS order_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id INTEGER NOT NULL,
		product_id INTEGER NOT NULL,
		quantity INTEGER NOT NULL,
		price REAL NOT NULL,
		FOREIGN KEY (order_id) REFERENCES orders (id),
		FOREIGN KEY (product_id) REFERENCES products (id)
	);

	CREATE TABLE IF NOT EXISTS complaints (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'open',
		topic TEXT NOT NULL,
		description TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (order_id) REFERENCES orders (id),
		FOREIGN KEY (user_id) REFERENCES users (id)
	);
`

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS products (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		brand TEXT NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		quantity INT NOT NULL,
		rating DOUBLE PRECISION NOT NULL,
		tags TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		address TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS orders (
		id SERIAL PRIMARY KEY,
		user_id INT NOT NULL REFERENCES users(id),
		shipping_address TEXT NOT NULL,
		order_amount DOUBLE PRECISION NOT NULL,
		status TEXT NOT NULL,
		created_time TIMESTAMP DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS order_items (
		id SERIAL PRIMARY KEY,
		order_id INT NOT NULL REFERENCES orders(id),
		product_id INT NOT NULL REFERENCES products(id),
		quantity INT NOT NULL,
		price DOUBLE PRECISION NOT NULL
	);

	CREATE TABLE IF NOT EXISTS complaints (
		id SERIAL PRIMARY KEY,
		order_id INT NOT NULL REFERENCES orders(id),
		user_id INT NOT NULL REFERENCES users(id),
		status TEXT NOT NULL DEFAULT 'open',
		topic TEXT NOT NULL,
		description TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT NOW()
	);
`
