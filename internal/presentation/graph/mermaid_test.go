package graph_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KIIGIN/bot-constructor/internal/presentation/graph"
	"github.com/KIIGIN/bot-constructor/internal/testutils"
	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name        string
		doc         string
		overlay     *graph.GraphOverlay
		contains    []string
		notContains []string
	}{
		{
			name: "Block Shapes",
			doc: `{"blocks": [
				{"id": "start", "type": "start", "data": {}},
				{"id": "menu", "type": "menu", "data": {"text": "Pick"}},
				{"id": "ask", "type": "input_data", "data": {"text": "Email?", "variable_name": "email"}},
				{"id": "wait", "type": "delay", "data": {"value": {"duration": 5, "measurement": "minutes"}}},
				{"id": "msg", "type": "message", "data": {"text": "Hello"}}
			], "connections": []}`,
			contains: []string{
				`start(("start"))`,
				`menu{{"menu <br/> Pick"}}`,
				`ask[/"ask <br/> Email? → {{ email }}"/]`,
				`wait[["wait <br/> ⏱️ 5 minutes"]]`,
				`msg["msg <br/> Hello"]`,
			},
		},
		{
			name: "Button Edges",
			doc:  testutils.DemoScenario,
			contains: []string{
				"start --> hello",
				"hello --> menu",
				`menu -- "A" --> x`,
				`menu -- "B" --> y`,
			},
			notContains: []string{"classDef"},
		},
		{
			name:    "Current Block Overlay",
			doc:     testutils.DemoScenario,
			overlay: &graph.GraphOverlay{CurrentBlock: "menu"},
			contains: []string{
				"classDef current",
				"class menu current;",
			},
		},
		{
			name: "ID Sanitization And Escaping",
			doc: `{"blocks": [
				{"id": "step-1.a", "type": "message", "data": {"text": "say \"hi\""}}
			], "connections": []}`,
			contains: []string{
				`step_1_a["step-1.a <br/> say 'hi'"]`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testutils.ParseGraph(t, tt.doc)
			out := graph.GenerateMermaid(g, tt.overlay)

			assert.True(t, strings.HasPrefix(out, "graph TD\n"))
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestGenerateMermaid_LongTextTruncated(t *testing.T) {
	g := &domain.Graph{Blocks: []domain.Block{
		{ID: "m", Type: domain.BlockMessage, Data: map[string]any{"text": strings.Repeat("x", 100)}},
	}}

	out := graph.GenerateMermaid(g, nil)

	assert.Contains(t, out, strings.Repeat("x", 39)+"…")
	assert.NotContains(t, out, strings.Repeat("x", 40))
}
