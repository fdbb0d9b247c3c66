package compiler

import (
	"testing"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_Parse(t *testing.T) {
	doc := `{
		"blocks": [
			{"id": "s", "type": "start", "data": {"triggers": []}},
			{"id": "m", "type": "message", "data": {"text": "Hi"}}
		],
		"connections": [
			{"from": {"block_id": "s", "point": "next"}, "to": {"block_id": "m", "point": "start"}}
		]
	}`

	graph, err := NewParser().Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, graph.Blocks, 2)
	assert.Equal(t, domain.BlockMessage, graph.Blocks[1].Type)
	assert.Equal(t, "Hi", graph.Blocks[1].Data["text"])
	require.Len(t, graph.Connections, 1)
	assert.Equal(t, domain.Endpoint{BlockID: "m", Point: "start"}, graph.Connections[0].To)
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"Malformed JSON", `{"blocks": [`},
		{"Block Without ID", `{"blocks": [{"type": "start"}], "connections": []}`},
		{"Connection Without Target", `{"blocks": [], "connections": [{"from": {"block_id": "a", "point": "next"}, "to": {}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser().Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, domain.ErrInvalidScenario)
		})
	}
}

func TestParser_NormalizeDelayExit(t *testing.T) {
	graph := &domain.Graph{
		Blocks: []domain.Block{
			{ID: "d1", Type: domain.BlockDelay},
			{ID: "d2", Type: domain.BlockDelay},
			{ID: "m", Type: domain.BlockMessage},
		},
		Connections: []domain.Connection{
			{From: domain.Endpoint{BlockID: "d1", Point: "next"}, To: domain.Endpoint{BlockID: "m", Point: "start"}},
			{From: domain.Endpoint{BlockID: "d2", Point: "completed"}, To: domain.Endpoint{BlockID: "m", Point: "start"}},
			{From: domain.Endpoint{BlockID: "d2", Point: "next"}, To: domain.Endpoint{BlockID: "d1", Point: "start"}},
			{From: domain.Endpoint{BlockID: "m", Point: "next"}, To: domain.Endpoint{BlockID: "d2", Point: "start"}},
		},
	}

	NewParser().Normalize(graph)

	assert.Equal(t, domain.PointCompleted, graph.Connections[0].From.Point, "legacy delay exit is relabeled")
	assert.Equal(t, domain.PointNext, graph.Connections[2].From.Point, "explicit completed exit keeps other labels")
	assert.Equal(t, domain.PointNext, graph.Connections[3].From.Point, "non-delay blocks are untouched")
}
