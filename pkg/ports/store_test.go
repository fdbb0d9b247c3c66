package ports_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
	"github.com/KIIGIN/bot-constructor/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockStore keeps serialized states in memory to simulate a remote store.
type MockStore struct {
	data map[int64][]byte
}

func NewMockStore() *MockStore {
	return &MockStore{data: make(map[int64][]byte)}
}

func (m *MockStore) Save(ctx context.Context, state *domain.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	m.data[state.ParticipantID] = raw
	return nil
}

func (m *MockStore) Load(ctx context.Context, participantID int64) (*domain.State, error) {
	raw, ok := m.data[participantID]
	if !ok {
		return nil, domain.ErrStateNotFound
	}
	var state domain.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	return state.Normalize(), nil
}

func (m *MockStore) Delete(ctx context.Context, participantID int64) error {
	delete(m.data, participantID)
	return nil
}

func TestStateStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, NewMockStore())
}

func TestStaticTokens(t *testing.T) {
	tokens := ports.StaticTokens{"hook": "123:abc"}

	token, err := tokens.BotToken(context.Background(), "hook")
	require.NoError(t, err)
	assert.Equal(t, "123:abc", token)

	_, err = tokens.BotToken(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrBotNotFound)
}
