// Package databasetest opens throwaway SQLite databases shaped like the
// MySQL schema in migrations/, for repository tests that need real GORM.
package databasetest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// schema mirrors migrations/*.up.sql in SQLite syntax. email stays
// case-sensitive (BINARY) like the utf8_bin column in MySQL.
var schema = []string{
	`CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NULL,
		email TEXT NOT NULL,
		email_lower TEXT GENERATED ALWAYS AS (lower(email)) STORED,
		status TEXT NOT NULL DEFAULT 'active',
		premium_expires_at DATETIME NULL,
		created_at DATETIME NULL,
		updated_at DATETIME NULL,
		deleted_at DATETIME NULL
	)`,
	`CREATE UNIQUE INDEX idx_users_email ON users (email)`,
	`CREATE INDEX idx_users_email_lower ON users (email_lower)`,
	`CREATE TABLE roles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		created_at DATETIME NULL,
		updated_at DATETIME NULL
	)`,
	`CREATE TABLE user_roles (
		user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		role_id INTEGER NOT NULL REFERENCES roles (id) ON DELETE CASCADE,
		created_at DATETIME NULL,
		PRIMARY KEY (user_id, role_id)
	)`,
	`INSERT INTO roles (name, created_at, updated_at) VALUES ('admin', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP), ('premium', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
	`CREATE TABLE settings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		setting_key TEXT NOT NULL UNIQUE,
		value TEXT NULL,
		type TEXT NOT NULL,
		created_at DATETIME NULL,
		updated_at DATETIME NULL
	)`,
	`CREATE TABLE products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		external_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		price INTEGER NOT NULL DEFAULT 0,
		currency TEXT NOT NULL DEFAULT 'IDR',
		duration_days INTEGER NOT NULL,
		action TEXT NOT NULL DEFAULT 'premium',
		status TEXT NOT NULL DEFAULT 'active',
		created_at DATETIME NULL,
		updated_at DATETIME NULL,
		deleted_at DATETIME NULL
	)`,
	`CREATE TABLE payment_orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id TEXT NOT NULL,
		event TEXT NOT NULL,
		product_id INTEGER NULL REFERENCES products (id),
		user_id INTEGER NULL REFERENCES users (id),
		customer_email TEXT NOT NULL DEFAULT '',
		customer_name TEXT NOT NULL DEFAULT '',
		amount INTEGER NOT NULL DEFAULT 0,
		net_total INTEGER NOT NULL DEFAULT 0,
		currency TEXT NOT NULL DEFAULT '',
		payment_method TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL,
		payload_json TEXT NOT NULL,
		trace_id TEXT NOT NULL,
		error_message TEXT NULL,
		paid_at DATETIME NULL,
		created_at DATETIME NULL,
		updated_at DATETIME NULL
	)`,
	`CREATE UNIQUE INDEX ux_payment_orders_order_id ON payment_orders (order_id)`,
	`CREATE TABLE audit_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		action TEXT NOT NULL,
		user_id INTEGER NULL,
		subject TEXT NOT NULL DEFAULT '',
		details TEXT NULL,
		trace_id TEXT NOT NULL DEFAULT '',
		occurred_at DATETIME NOT NULL,
		created_at DATETIME NULL
	)`,
}

// Open returns a GORM handle on a fresh database file under t.TempDir(),
// configured like the production MySQL handle (TranslateError, UTC clock).
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "premiumhook.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
