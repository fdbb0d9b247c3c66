package runtime

import (
	"github.com/KIIGIN/bot-constructor/pkg/domain"
	"github.com/KIIGIN/bot-constructor/pkg/ports"
)

// Context binds one inbound event to the participant state it mutates.
// It is built fresh for every invocation and discarded once the state is persisted.
type Context struct {
	Event      domain.Event
	Messenger  ports.Messenger
	ChatID     int64
	ScenarioID string

	// State is the working copy of the participant's Execution State.
	State *domain.State

	// EntryPoint is the entry tag of the current block, or the id of a just-clicked button.
	EntryPoint string
}

// NewContext creates a Context for an event. A nil state starts a fresh one.
func NewContext(event domain.Event, messenger ports.Messenger, scenarioID string, state *domain.State) *Context {
	if state == nil {
		state = domain.NewState(event.ParticipantID(), scenarioID)
	}
	state.Normalize()
	state.ScenarioID = scenarioID
	return &Context{
		Event:      event,
		Messenger:  messenger,
		ChatID:     event.ChatID(),
		ScenarioID: scenarioID,
		State:      state,
	}
}

// Variables returns the working namespace of the current scenario.
func (c *Context) Variables() *domain.ScenarioData {
	return c.State.Scenario(c.ScenarioID)
}
