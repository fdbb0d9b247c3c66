package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KIIGIN/bot-constructor/internal/testutils"
	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

func messages(issues []Issue) string {
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = is.String()
	}
	return strings.Join(out, "\n")
}

func TestValidateGraph_Valid(t *testing.T) {
	graph := testutils.ParseGraph(t, testutils.DemoScenario)

	report := ValidateGraph(graph)

	assert.Empty(t, report.Errors(), messages(report.Errors()))
	assert.Empty(t, report.Warnings(), messages(report.Warnings()))
	assert.NoError(t, report.Err())
}

func TestValidateGraph_Errors(t *testing.T) {
	graph := testutils.ParseGraph(t, `{
		"blocks": [
			{"id": "a", "type": "message", "data": {"text": "hi"}},
			{"id": "a", "type": "message", "data": {"text": "again"}},
			{"id": "b", "type": "carousel", "data": {}}
		],
		"connections": []
	}`)

	report := ValidateGraph(graph)
	errs := messages(report.Errors())

	assert.Len(t, report.Errors(), 3, errs)
	assert.Contains(t, errs, `block "a": duplicate block id`)
	assert.Contains(t, errs, `unknown block type "carousel"`)
	assert.Contains(t, errs, "no start block")

	err := report.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidScenario))
}

func TestValidateGraph_Warnings(t *testing.T) {
	graph := testutils.ParseGraph(t, `{
		"blocks": [
			{"id": "s", "type": "start", "data": {"triggers": [{"type": "start"}]}},
			{"id": "s2", "type": "start", "data": {}},
			{"id": "m", "type": "menu", "data": {"text": "pick", "buttons": [
				{"id": "yes", "text": "Yes"},
				{"id": "no", "text": "No"}
			]}},
			{"id": "orphan", "type": "message", "data": {"text": "lost"}}
		],
		"connections": [
			{"from": {"block_id": "s", "point": "next"}, "to": {"block_id": "m", "point": "start"}},
			{"from": {"block_id": "s", "point": "next"}, "to": {"block_id": "orphan", "point": "start"}},
			{"from": {"block_id": "m", "point": "yes"}, "to": {"block_id": "ghost", "point": "start"}}
		]
	}`)

	report := ValidateGraph(graph)
	warns := messages(report.Warnings())

	assert.Empty(t, report.Errors())
	assert.NoError(t, report.Err())
	assert.Contains(t, warns, "2 start blocks")
	assert.Contains(t, warns, `exit "next" has several connections`)
	assert.Contains(t, warns, `points at missing block "ghost"`)
	assert.Contains(t, warns, `button "no" has no connection`)
	assert.NotContains(t, warns, `button "yes" has no connection`)
	assert.Contains(t, warns, `block "orphan": block is unreachable`)
}

func TestValidateGraph_ImmediateCycle(t *testing.T) {
	graph := testutils.ParseGraph(t, `{
		"blocks": [
			{"id": "s", "type": "start", "data": {}},
			{"id": "a", "type": "message", "data": {"text": "a"}},
			{"id": "d", "type": "delay", "data": {"value": 1, "unit": "seconds"}},
			{"id": "q", "type": "input_data", "data": {"text": "name?"}}
		],
		"connections": [
			{"from": {"block_id": "s", "point": "next"}, "to": {"block_id": "a", "point": "start"}},
			{"from": {"block_id": "a", "point": "next"}, "to": {"block_id": "d", "point": "start"}},
			{"from": {"block_id": "d", "point": "next"}, "to": {"block_id": "a", "point": "start"}}
		]
	}`)

	report := ValidateGraph(graph)
	warns := messages(report.Warnings())

	assert.Contains(t, warns, "a -> d -> a loop without waiting")
	assert.Contains(t, warns, `block "q": block is unreachable`)
}

func TestValidateGraph_SuspendingLoopIsFine(t *testing.T) {
	graph := testutils.ParseGraph(t, `{
		"blocks": [
			{"id": "s", "type": "start", "data": {}},
			{"id": "m", "type": "menu", "data": {"text": "again?", "buttons": [{"id": "again", "text": "Again"}]}}
		],
		"connections": [
			{"from": {"block_id": "s", "point": "next"}, "to": {"block_id": "m", "point": "start"}},
			{"from": {"block_id": "m", "point": "again"}, "to": {"block_id": "m", "point": "start"}}
		]
	}`)

	report := ValidateGraph(graph)

	assert.NotContains(t, messages(report.Warnings()), "loop")
}

func TestValidateGraph_Nil(t *testing.T) {
	assert.Error(t, ValidateGraph(nil).Err())
}
