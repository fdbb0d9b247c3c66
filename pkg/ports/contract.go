package ports

import (
	"context"
	"testing"
	"time"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	participant := time.Now().UnixNano() % 1_000_000_000

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(participant, "42")
		state.CurrentBlockID = "menu-1"
		state.Scenario("42").Waiting = true
		state.Scenario("42").Fields["email"] = &domain.FieldValue{
			FieldName:  "Email",
			FieldType:  "email",
			FieldValue: "a@b.co",
		}
		state.Remember(101)
		state.Remember(102)
		state.Loaded["42"] = true

		require.NoError(t, store.Save(ctx, state), "Save should not return error")

		loaded, err := store.Load(ctx, participant)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, participant, loaded.ParticipantID)
		assert.Equal(t, "42", loaded.ScenarioID)
		assert.Equal(t, "menu-1", loaded.CurrentBlockID)
		assert.True(t, loaded.Waiting("42"))
		v, ok := loaded.Lookup("42", "email")
		require.True(t, ok)
		assert.Equal(t, "a@b.co", v.FieldValue)
		assert.False(t, v.Saved)
		assert.ElementsMatch(t, []int{101, 102}, loaded.History)
		assert.True(t, loaded.Loaded["42"])
	})

	t.Run("Overwrite", func(t *testing.T) {
		state := domain.NewState(participant, "42")
		state.CurrentBlockID = "next-block"
		require.NoError(t, store.Save(ctx, state))

		loaded, err := store.Load(ctx, participant)
		require.NoError(t, err)
		assert.Equal(t, "next-block", loaded.CurrentBlockID)
		assert.Empty(t, loaded.History)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, participant+1)
		assert.ErrorIs(t, err, domain.ErrStateNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.NewState(participant, "42")))

		require.NoError(t, store.Delete(ctx, participant), "Delete should not return error")

		_, err := store.Load(ctx, participant)
		assert.ErrorIs(t, err, domain.ErrStateNotFound, "Load after Delete should return ErrStateNotFound")
	})
}
