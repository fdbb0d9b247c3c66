package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/KIIGIN/bot-constructor/pkg/adapters/file"
	"github.com/KIIGIN/bot-constructor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const delayScenario = `{
  "blocks": [
    {"id": "start", "type": "start", "data": {}},
    {"id": "wait", "type": "delay", "data": {"value": 1, "unit": "seconds"}},
    {"id": "done", "type": "message", "data": {"text": "Done"}}
  ],
  "connections": [
    {"from": {"block_id": "start", "point": "next"}, "to": {"block_id": "wait", "point": "in"}},
    {"from": {"block_id": "wait", "point": "next"}, "to": {"block_id": "done", "point": "in"}}
  ]
}`

func writeManifest(t *testing.T, manifest string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "scenarios"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scenarios", "demo.json"), []byte(delayScenario), 0o644))
	path := filepath.Join(dir, "bots.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))
	return path
}

func TestLoadScenarios(t *testing.T) {
	path := writeManifest(t, `
bots:
  - webhook_token: hook-a
    bot_token: "123:abc"
    scenario_id: "17"
    name: Demo
    path: scenarios/demo.json
  - webhook_token: hook-b
    bot_token: "456:def"
    path: scenarios/demo.json
    enabled: false
`)
	src, err := file.LoadScenarios(path)
	require.NoError(t, err)
	ctx := context.Background()

	s, err := src.ScenarioByWebhook(ctx, "hook-a")
	require.NoError(t, err)
	assert.Equal(t, "17", s.ID)
	assert.Equal(t, "Demo", s.Name)
	assert.Len(t, s.Graph.Blocks, 3)
	assert.Equal(t, domain.PointCompleted, s.Graph.Connections[1].From.Point)

	_, err = src.ScenarioByWebhook(ctx, "hook-b")
	assert.ErrorIs(t, err, domain.ErrScenarioNotFound)

	token, err := src.BotToken(ctx, "hook-b")
	require.NoError(t, err)
	assert.Equal(t, "456:def", token)

	_, err = src.BotToken(ctx, "unknown")
	assert.ErrorIs(t, err, domain.ErrBotNotFound)
	assert.Len(t, src.Tokens(), 2)
}

func TestLoadScenarios_Errors(t *testing.T) {
	t.Run("Missing webhook token", func(t *testing.T) {
		_, err := file.LoadScenarios(writeManifest(t, "bots:\n  - path: scenarios/demo.json\n"))
		assert.Error(t, err)
	})

	t.Run("Missing scenario file", func(t *testing.T) {
		_, err := file.LoadScenarios(writeManifest(t, "bots:\n  - webhook_token: x\n    path: nope.json\n"))
		assert.Error(t, err)
	})

	t.Run("Invalid scenario", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0o644))
		path := filepath.Join(dir, "bots.yaml")
		require.NoError(t, os.WriteFile(path, []byte("bots:\n  - webhook_token: x\n    path: bad.json\n"), 0o644))

		_, err := file.LoadScenarios(path)
		assert.ErrorIs(t, err, domain.ErrInvalidScenario)
	})

	t.Run("Missing manifest", func(t *testing.T) {
		_, err := file.LoadScenarios(filepath.Join(t.TempDir(), "none.yaml"))
		assert.Error(t, err)
	})
}
