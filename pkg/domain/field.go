package domain

// FieldRecord is a collected value handed to the user-data service.
type FieldRecord struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	Value         string `json:"value"`
	Variable      string `json:"variable"`
	ScenarioID    string `json:"scenario_id"`
	ParticipantID int64  `json:"user_id"`
	Username      string `json:"username,omitempty"`
}

// CollectedValue is one participant's stored answer for a field.
type CollectedValue struct {
	ParticipantID int64  `json:"user_id"`
	Username      string `json:"username,omitempty"`
	Value         string `json:"value"`
}

// CollectedField is a field declared by a scenario together with its stored values.
type CollectedField struct {
	Name     string           `json:"name"`
	Type     string           `json:"type"`
	Variable string           `json:"variable"`
	Values   []CollectedValue `json:"values"`
}
