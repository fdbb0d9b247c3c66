// Package postgres implements the scenario source and user-data service on PostgreSQL.
//
// Expected schema:
//
//	bots(id, webhook_token, encrypted_token, enabled, username)
//	scenarios(id, name, enabled, data JSONB, bot_id)
//	user_fields(id, name, type, variable, scenario_id, UNIQUE (scenario_id, variable))
//	user_field_values(id, user_id, username, field_id, value, created_at)
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return db, nil
}
