package memory

import (
	"context"
	"sync"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

// UserData implements ports.UserDataService in memory.
type UserData struct {
	mu      sync.RWMutex
	fields  map[string][]*domain.CollectedField
	records []domain.FieldRecord
}

// NewUserData creates an empty user-data service.
func NewUserData() *UserData {
	return &UserData{fields: make(map[string][]*domain.CollectedField)}
}

// CollectedFields returns copies of the fields of a scenario.
func (u *UserData) CollectedFields(_ context.Context, scenarioID string) ([]domain.CollectedField, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make([]domain.CollectedField, 0, len(u.fields[scenarioID]))
	for _, f := range u.fields[scenarioID] {
		cp := *f
		cp.Values = append([]domain.CollectedValue(nil), f.Values...)
		out = append(out, cp)
	}
	return out, nil
}

// SaveValue appends a value to the field identified by scenario and variable.
func (u *UserData) SaveValue(_ context.Context, r domain.FieldRecord) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.records = append(u.records, r)

	var field *domain.CollectedField
	for _, f := range u.fields[r.ScenarioID] {
		if f.Variable == r.Variable {
			field = f
			break
		}
	}
	if field == nil {
		field = &domain.CollectedField{Name: r.Name, Type: r.Type, Variable: r.Variable}
		u.fields[r.ScenarioID] = append(u.fields[r.ScenarioID], field)
	}
	field.Values = append(field.Values, domain.CollectedValue{
		ParticipantID: r.ParticipantID,
		Username:      r.Username,
		Value:         r.Value,
	})
	return nil
}

// Records returns every saved record in arrival order.
func (u *UserData) Records() []domain.FieldRecord {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return append([]domain.FieldRecord(nil), u.records...)
}
