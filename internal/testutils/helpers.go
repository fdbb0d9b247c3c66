package testutils

import (
	"testing"

	"github.com/KIIGIN/bot-constructor/internal/compiler"
	"github.com/KIIGIN/bot-constructor/pkg/domain"
	"github.com/stretchr/testify/require"
)

// ParseGraph compiles a JSON scenario document and fails the test on error.
func ParseGraph(t *testing.T, doc string) *domain.Graph {
	t.Helper()

	graph, err := compiler.NewParser().Parse([]byte(doc))
	require.NoError(t, err, "Failed to parse scenario")
	return graph
}

// Conn builds a connection from (from, point) to (to, toPoint).
func Conn(from, point, to, toPoint string) domain.Connection {
	return domain.Connection{
		From: domain.Endpoint{BlockID: from, Point: point},
		To:   domain.Endpoint{BlockID: to, Point: toPoint},
	}
}

// TextEvent builds an inbound text message from participant 7 in chat 70.
func TextEvent(text string) domain.Event {
	return domain.Event{Text: &domain.TextMessage{
		MessageID:  1,
		Text:       text,
		SenderID:   7,
		SenderName: "jane",
		ChatID:     70,
	}}
}

// ClickEvent builds an inbound button click from participant 7 in chat 70.
func ClickEvent(buttonID string) domain.Event {
	return domain.Event{Click: &domain.ButtonClick{
		CallbackID: "cb-" + buttonID,
		ButtonID:   buttonID,
		SenderID:   7,
		SenderName: "jane",
		ChatID:     70,
		MessageID:  1,
	}}
}

// DemoScenario is Start -> Message("Hi") -> Menu[ButtonA -> BlockX, ButtonB -> BlockY].
const DemoScenario = `{
	"blocks": [
		{"id": "start", "type": "start", "data": {"triggers": [{"type": "start", "enabled": true}]}},
		{"id": "hello", "type": "message", "data": {"text": "Hi"}},
		{"id": "menu", "type": "menu", "data": {"text": "Pick one", "buttons": [
			{"id": "ButtonA", "text": "A"},
			{"id": "ButtonB", "text": "B"}
		]}},
		{"id": "x", "type": "message", "data": {"text": "You picked X"}},
		{"id": "y", "type": "message", "data": {"text": "You picked Y"}}
	],
	"connections": [
		{"from": {"block_id": "start", "point": "next"}, "to": {"block_id": "hello", "point": "start"}},
		{"from": {"block_id": "hello", "point": "next"}, "to": {"block_id": "menu", "point": "start"}},
		{"from": {"block_id": "menu", "point": "ButtonA"}, "to": {"block_id": "x", "point": "start"}},
		{"from": {"block_id": "menu", "point": "ButtonB"}, "to": {"block_id": "y", "point": "start"}}
	]
}`
