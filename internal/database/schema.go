package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements create the users and avatars tables plus the trigger that
// refreshes updated_at on every UPDATE. All statements are idempotent so the
// bootstrap can run on every startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		phone VARCHAR(20),
		bio VARCHAR(500),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS avatars (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		display_name VARCHAR(255),
		age INTEGER,
		gender VARCHAR(50),
		height_cm NUMERIC(5,2),
		weight_kg NUMERIC(5,2),
		body_fat_percent NUMERIC(5,2),
		shoulder_circumference_cm NUMERIC(5,2),
		waist_cm NUMERIC(5,2),
		hips_cm NUMERIC(5,2),
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS ix_avatars_user_id ON avatars (user_id)`,
	`CREATE INDEX IF NOT EXISTS ix_avatars_display_name ON avatars (display_name)`,
	`CREATE OR REPLACE FUNCTION refresh_updated_at_column()
	RETURNS TRIGGER AS $$
	BEGIN
		NEW.updated_at = NOW();
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql`,
	`DROP TRIGGER IF EXISTS update_users_updated_at ON users`,
	`CREATE TRIGGER update_users_updated_at
		BEFORE UPDATE ON users
		FOR EACH ROW
		EXECUTE FUNCTION refresh_updated_at_column()`,
	`DROP TRIGGER IF EXISTS update_avatars_updated_at ON avatars`,
	`CREATE TRIGGER update_avatars_updated_at
		BEFORE UPDATE ON avatars
		FOR EACH ROW
		EXECUTE FUNCTION refresh_updated_at_column()`,
}

// EnsureSchema creates the tables, indexes and updated_at triggers when they
// are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema bootstrap failed: %w", err)
		}
	}
	return nil
}
