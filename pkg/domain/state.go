package domain

import "sort"

// FieldValue is a single value collected by an input block.
type FieldValue struct {
	FieldName  string `json:"field_name"`
	FieldType  string `json:"field_type"`
	FieldValue string `json:"field_value"`

	// Saved reports whether the value has been stored by the user-data service.
	Saved bool `json:"saved"`
}

// ScenarioData holds the variables collected within one scenario.
type ScenarioData struct {
	// Waiting is set while an input block is parked awaiting a text answer.
	Waiting bool `json:"waiting,omitempty"`

	// Fields maps variable names to collected values.
	Fields map[string]*FieldValue `json:"fields,omitempty"`
}

// State is the persisted Execution State of one participant.
type State struct {
	// ParticipantID identifies the conversation participant and keys the store.
	ParticipantID int64 `json:"user_id"`

	// ScenarioID is the scenario that last handled the participant.
	ScenarioID string `json:"scenario_id"`

	// CurrentBlockID is the block the participant is parked at. Empty means no active scenario.
	CurrentBlockID string `json:"current_block_id,omitempty"`

	// Variables are namespaced per scenario identifier.
	Variables map[string]*ScenarioData `json:"variables,omitempty"`

	// History holds the ids of outbound messages that carried a keyboard.
	History []int `json:"user_history,omitempty"`

	// Loaded marks scenarios whose saved fields were already hydrated.
	Loaded map[string]bool `json:"db_data_loaded,omitempty"`

	// Sealed holds the encrypted form of the whole state when the store encrypts at rest.
	// All other fields except ParticipantID are empty on such envelopes.
	Sealed []byte `json:"sealed,omitempty"`
}

// NewState creates an empty state for a participant.
func NewState(participantID int64, scenarioID string) *State {
	return &State{
		ParticipantID: participantID,
		ScenarioID:    scenarioID,
		Variables:     make(map[string]*ScenarioData),
		Loaded:        make(map[string]bool),
	}
}

// Normalize allocates nil maps left by deserialization.
func (s *State) Normalize() *State {
	if s.Variables == nil {
		s.Variables = make(map[string]*ScenarioData)
	}
	if s.Loaded == nil {
		s.Loaded = make(map[string]bool)
	}
	for _, data := range s.Variables {
		if data != nil && data.Fields == nil {
			data.Fields = make(map[string]*FieldValue)
		}
	}
	return s
}

// HasScenario reports whether any variables are stored for the scenario.
func (s *State) HasScenario(scenarioID string) bool {
	_, ok := s.Variables[scenarioID]
	return ok
}

// Scenario returns the variables of a scenario, creating the namespace if needed.
func (s *State) Scenario(scenarioID string) *ScenarioData {
	if s.Variables == nil {
		s.Variables = make(map[string]*ScenarioData)
	}
	data, ok := s.Variables[scenarioID]
	if !ok || data == nil {
		data = &ScenarioData{Fields: make(map[string]*FieldValue)}
		s.Variables[scenarioID] = data
	}
	if data.Fields == nil {
		data.Fields = make(map[string]*FieldValue)
	}
	return data
}

// Waiting reports whether an input block of the scenario awaits text.
func (s *State) Waiting(scenarioID string) bool {
	data, ok := s.Variables[scenarioID]
	return ok && data != nil && data.Waiting
}

// Lookup returns a collected value without creating the namespace.
func (s *State) Lookup(scenarioID, variable string) (*FieldValue, bool) {
	data, ok := s.Variables[scenarioID]
	if !ok || data == nil {
		return nil, false
	}
	v, ok := data.Fields[variable]
	return v, ok && v != nil
}

// Unsaved returns the variable names of the scenario not yet stored, sorted.
func (s *State) Unsaved(scenarioID string) []string {
	data, ok := s.Variables[scenarioID]
	if !ok || data == nil {
		return nil
	}
	var names []string
	for name, v := range data.Fields {
		if v != nil && v.FieldName != "" && !v.Saved {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Remember adds a message id to the history. The history behaves as a set.
func (s *State) Remember(messageID int) {
	for _, id := range s.History {
		if id == messageID {
			return
		}
	}
	s.History = append(s.History, messageID)
}

// Forget removes a message id from the history.
func (s *State) Forget(messageID int) {
	for i, id := range s.History {
		if id == messageID {
			s.History = append(s.History[:i], s.History[i+1:]...)
			return
		}
	}
}
