package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

const (
	upsertField = `INSERT INTO user_fields (name, type, variable, scenario_id) VALUES ($1, $2, $3, $4) ` +
		`ON CONFLICT (scenario_id, variable) DO UPDATE SET name = EXCLUDED.name, type = EXCLUDED.type ` +
		`RETURNING id`

	insertValue = `INSERT INTO user_field_values (user_id, username, field_id, value) VALUES ($1, $2, $3, $4)`

	selectCollected = `SELECT f.name, f.type, f.variable, v.user_id, v.username, v.value ` +
		`FROM user_fields f LEFT JOIN user_field_values v ON v.field_id = f.id ` +
		`WHERE f.scenario_id = $1 ORDER BY f.id, v.created_at`
)

// UserData implements ports.UserDataService.
type UserData struct {
	db *sql.DB
}

// NewUserData creates a user-data service over db.
func NewUserData(db *sql.DB) *UserData {
	return &UserData{db: db}
}

// CollectedFields returns every field of a scenario with all participants' values.
func (u *UserData) CollectedFields(ctx context.Context, scenarioID string) ([]domain.CollectedField, error) {
	rows, err := u.db.QueryContext(ctx, selectCollected, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fields: %w", err)
	}
	defer rows.Close()

	fields := []domain.CollectedField{}
	for rows.Next() {
		var (
			name, typ, variable string
			userID              sql.NullInt64
			username, value     sql.NullString
		)
		if err := rows.Scan(&name, &typ, &variable, &userID, &username, &value); err != nil {
			return nil, fmt.Errorf("failed to scan field: %w", err)
		}

		// Rows are ordered by field, so a new variable starts a new group.
		if n := len(fields); n == 0 || fields[n-1].Variable != variable {
			fields = append(fields, domain.CollectedField{
				Name:     name,
				Type:     typ,
				Variable: variable,
				Values:   []domain.CollectedValue{},
			})
		}
		if !userID.Valid {
			continue
		}
		last := &fields[len(fields)-1]
		last.Values = append(last.Values, domain.CollectedValue{
			ParticipantID: userID.Int64,
			Username:      username.String,
			Value:         value.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read fields: %w", err)
	}
	return fields, nil
}

// SaveValue registers the field if needed and appends the value in one transaction.
func (u *UserData) SaveValue(ctx context.Context, r domain.FieldRecord) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var fieldID int64
	if err := tx.QueryRowContext(ctx, upsertField, r.Name, r.Type, r.Variable, r.ScenarioID).Scan(&fieldID); err != nil {
		return fmt.Errorf("failed to upsert field %q: %w", r.Variable, err)
	}

	username := sql.NullString{String: r.Username, Valid: r.Username != ""}
	if _, err := tx.ExecContext(ctx, insertValue, r.ParticipantID, username, fieldID, r.Value); err != nil {
		return fmt.Errorf("failed to insert value for %q: %w", r.Variable, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
