package botengine_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	botengine "github.com/KIIGIN/bot-constructor"
	"github.com/KIIGIN/bot-constructor/internal/config"
	"github.com/KIIGIN/bot-constructor/internal/testutils"
	"github.com/KIIGIN/bot-constructor/pkg/ports"
)

// writeManifest lays out a manifest binding webhook "hook" to the demo scenario.
func writeManifest(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "demo.json"), []byte(testutils.DemoScenario), 0o600))
	manifest := `
bots:
  - webhook_token: hook
    bot_token: "123:abc"
    scenario_id: "1"
    name: Demo
    path: demo.json
`
	path := filepath.Join(dir, "bots.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o600))
	return path
}

func fakeFactory(m *testutils.FakeMessenger, tokens *[]string) ports.MessengerFactory {
	return ports.MessengerFactoryFunc(func(_ context.Context, botToken string) (ports.Messenger, error) {
		*tokens = append(*tokens, botToken)
		return m, nil
	})
}

func fileConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.State.Backend = config.BackendMemory
	cfg.Scenarios.Backend = config.BackendFile
	cfg.Scenarios.Manifest = writeManifest(t)
	return cfg
}

func TestNew_FileScenarios(t *testing.T) {
	ctx := context.Background()
	messenger := testutils.NewFakeMessenger()
	var tokens []string

	app, err := botengine.New(ctx, fileConfig(t), botengine.WithMessengers(fakeFactory(messenger, &tokens)))
	require.NoError(t, err)
	defer app.Close()

	require.NoError(t, app.Orchestrator().Handle(ctx, "hook", testutils.TextEvent("/start")))

	assert.Equal(t, []string{"123:abc"}, tokens)
	assert.Equal(t, []string{"Hi", "Pick one"}, messenger.Texts())

	state, err := app.Store().Load(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "menu", state.CurrentBlockID)
	assert.Equal(t, "1", state.ScenarioID)
}

func TestNew_ServerRoutesWebhook(t *testing.T) {
	ctx := context.Background()
	messenger := testutils.NewFakeMessenger()
	var tokens []string

	app, err := botengine.New(ctx, fileConfig(t), botengine.WithMessengers(fakeFactory(messenger, &tokens)))
	require.NoError(t, err)
	defer app.Close()

	body := `{"update_id": 1, "message": {"message_id": 1, "from": {"id": 7, "is_bot": false, "first_name": "J"},
		"chat": {"id": 70, "type": "private"}, "date": 1700000000, "text": "/start"}}`
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook/hook", strings.NewReader(body))
	w := httptest.NewRecorder()
	app.Server().Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Hi", "Pick one"}, messenger.Texts())

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	app.Server().Handler().ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `botengine_updates_total{kind="message",outcome="handled"} 1`)
}

func TestNew_EncryptedRedisWithLock(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := fileConfig(t)
	cfg.State.Backend = config.BackendRedis
	cfg.State.Redis.Addr = mr.Addr()
	cfg.Lock.Enabled = true
	cfg.State.EncryptionKey = strings.Repeat("0f", 32)

	messenger := testutils.NewFakeMessenger()
	var tokens []string
	app, err := botengine.New(ctx, cfg, botengine.WithMessengers(fakeFactory(messenger, &tokens)))
	require.NoError(t, err)
	defer app.Close()

	require.NoError(t, app.Orchestrator().Handle(ctx, "hook", testutils.TextEvent("/start")))

	state, err := app.Store().Load(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "menu", state.CurrentBlockID)

	raw, err := mr.Get("user:7:state")
	require.NoError(t, err)
	assert.NotContains(t, raw, "current_block_id")
	assert.Contains(t, raw, "sealed")

	keys := mr.Keys()
	for _, k := range keys {
		assert.False(t, strings.HasPrefix(k, cfg.Lock.Prefix), "lock %s left behind", k)
	}
}

func TestNew_RedisUnavailable(t *testing.T) {
	cfg := fileConfig(t)
	cfg.State.Backend = config.BackendRedis
	cfg.State.Redis.Addr = "127.0.0.1:1"

	_, err := botengine.New(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis state store")
}

func TestNew_MissingManifest(t *testing.T) {
	cfg := config.Default()
	cfg.State.Backend = config.BackendMemory
	cfg.Scenarios.Backend = config.BackendFile
	cfg.Scenarios.Manifest = filepath.Join(t.TempDir(), "absent.yaml")

	_, err := botengine.New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNew_StaticTokensOverrideManifest(t *testing.T) {
	ctx := context.Background()
	cfg := fileConfig(t)
	cfg.Tokens.Static = map[string]string{"hook": "999:override"}

	messenger := testutils.NewFakeMessenger()
	var tokens []string
	app, err := botengine.New(ctx, cfg, botengine.WithMessengers(fakeFactory(messenger, &tokens)))
	require.NoError(t, err)
	defer app.Close()

	require.NoError(t, app.Orchestrator().Handle(ctx, "hook", testutils.TextEvent("/start")))
	assert.Equal(t, []string{"999:override"}, tokens)
}
