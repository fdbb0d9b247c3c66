package runtime_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/KIIGIN/bot-constructor/internal/runtime"
	"github.com/KIIGIN/bot-constructor/internal/testutils"
	"github.com/KIIGIN/bot-constructor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInterpreter(t *testing.T, doc string, opts ...runtime.Option) *runtime.Interpreter {
	t.Helper()
	in, err := runtime.NewInterpreter(testutils.ParseGraph(t, doc), opts...)
	require.NoError(t, err)
	return in
}

// parkedAt returns a state positioned at blockID for participant 7.
func parkedAt(blockID string) *domain.State {
	state := domain.NewState(7, "1")
	state.CurrentBlockID = blockID
	return state
}

func TestInterpreter_EndToEnd(t *testing.T) {
	in := newInterpreter(t, testutils.DemoScenario)
	messenger := testutils.NewFakeMessenger()
	ctx := context.Background()

	// Trigger matching parks the participant at the start block.
	state := parkedAt("start")
	c := runtime.NewContext(testutils.TextEvent("/start"), messenger, "1", state)
	require.NoError(t, in.Run(ctx, c))

	assert.Equal(t, []string{"Hi", "Pick one"}, messenger.Texts())
	menu := messenger.Of("text")[1]
	require.NotNil(t, menu.Keyboard)
	assert.Equal(t, [][]domain.Button{{{ID: "ButtonA", Text: "A"}}, {{ID: "ButtonB", Text: "B"}}}, menu.Keyboard.Rows)
	assert.Equal(t, "menu", state.CurrentBlockID)
	assert.Equal(t, []int{menu.MessageID}, state.History, "only keyboard messages are remembered")

	// The click arrives in a new invocation with the persisted state.
	c = runtime.NewContext(testutils.ClickEvent("ButtonA"), messenger, "1", state)
	c.EntryPoint = "ButtonA"
	require.NoError(t, in.Run(ctx, c))

	cleared := messenger.Of("clear")
	require.Len(t, cleared, 1)
	assert.Equal(t, menu.MessageID, cleared[0].MessageID)
	assert.Equal(t, "You picked X", messenger.Texts()[2])
	assert.Equal(t, "x", state.CurrentBlockID)
	assert.Empty(t, state.History)
}

func TestInterpreter_MenuBypass(t *testing.T) {
	doc := `{
		"blocks": [
			{"id": "menu", "type": "menu", "data": {"text": "Menu", "buttons": [{"id": "a", "text": "A"}]}},
			{"id": "x", "type": "message", "data": {"text": "X"}},
			{"id": "z", "type": "message", "data": {"text": "Z"}}
		],
		"connections": [
			{"from": {"block_id": "menu", "point": "next"}, "to": {"block_id": "z", "point": "start"}},
			{"from": {"block_id": "menu", "point": "a"}, "to": {"block_id": "x", "point": "start"}}
		]
	}`
	in := newInterpreter(t, doc)
	messenger := testutils.NewFakeMessenger()

	c := runtime.NewContext(testutils.ClickEvent("a"), messenger, "1", parkedAt("menu"))
	c.EntryPoint = "a"
	require.NoError(t, in.Run(context.Background(), c))

	assert.Equal(t, []string{"X"}, messenger.Texts(), "menu execute must not run when the click resolves")
	assert.Equal(t, "x", c.State.CurrentBlockID)
}

func TestInterpreter_MenuWithoutMatchingClickExecutes(t *testing.T) {
	doc := `{
		"blocks": [
			{"id": "menu", "type": "menu", "data": {"buttons": [{"id": "a", "text": "A"}]}},
			{"id": "z", "type": "message", "data": {"text": "Z"}}
		],
		"connections": [
			{"from": {"block_id": "menu", "point": "next"}, "to": {"block_id": "z", "point": "start"}}
		]
	}`
	in := newInterpreter(t, doc)
	messenger := testutils.NewFakeMessenger()

	c := runtime.NewContext(testutils.ClickEvent("a"), messenger, "1", parkedAt("menu"))
	c.EntryPoint = "a"
	require.NoError(t, in.Run(context.Background(), c))

	// The unresolved click falls through to the menu's own "next" exit.
	assert.Equal(t, []string{"Z"}, messenger.Texts())
}

func TestInterpreter_NoActiveBlock(t *testing.T) {
	in := newInterpreter(t, testutils.DemoScenario)
	messenger := testutils.NewFakeMessenger()

	state := domain.NewState(7, "1")
	c := runtime.NewContext(testutils.TextEvent("hello"), messenger, "1", state)
	require.NoError(t, in.Run(context.Background(), c))

	assert.Empty(t, messenger.Sent())
	assert.Empty(t, state.CurrentBlockID)
}

func TestInterpreter_DanglingConnection(t *testing.T) {
	doc := `{
		"blocks": [
			{"id": "start", "type": "start", "data": {}},
			{"id": "hello", "type": "message", "data": {"text": "Hi"}}
		],
		"connections": [
			{"from": {"block_id": "start", "point": "next"}, "to": {"block_id": "hello", "point": "start"}},
			{"from": {"block_id": "hello", "point": "next"}, "to": {"block_id": "ghost", "point": "start"}}
		]
	}`
	in := newInterpreter(t, doc)
	messenger := testutils.NewFakeMessenger()

	c := runtime.NewContext(testutils.TextEvent("/start"), messenger, "1", parkedAt("start"))
	require.NoError(t, in.Run(context.Background(), c))

	assert.Equal(t, []string{"Hi"}, messenger.Texts())
	assert.Equal(t, "hello", c.State.CurrentBlockID, "a dangling target is a dead end")
}

func TestInterpreter_FirstDeclaredConnectionWins(t *testing.T) {
	doc := `{
		"blocks": [
			{"id": "start", "type": "start", "data": {}},
			{"id": "a", "type": "message", "data": {"text": "A"}},
			{"id": "b", "type": "message", "data": {"text": "B"}}
		],
		"connections": [
			{"from": {"block_id": "start", "point": "next"}, "to": {"block_id": "a", "point": "start"}},
			{"from": {"block_id": "start", "point": "next"}, "to": {"block_id": "b", "point": "start"}}
		]
	}`
	in := newInterpreter(t, doc)
	messenger := testutils.NewFakeMessenger()

	c := runtime.NewContext(testutils.TextEvent("/start"), messenger, "1", parkedAt("start"))
	require.NoError(t, in.Run(context.Background(), c))

	assert.Equal(t, []string{"A"}, messenger.Texts())
}

func TestInterpreter_KeyboardCleanup(t *testing.T) {
	t.Run("Benign Failures Are Dropped", func(t *testing.T) {
		in := newInterpreter(t, testutils.DemoScenario)
		messenger := testutils.NewFakeMessenger()
		messenger.ClearErrs[11] = fmt.Errorf("%w: message to edit not found", domain.ErrMessageGone)

		state := parkedAt("menu")
		state.History = []int{11, 12}
		c := runtime.NewContext(testutils.ClickEvent("ButtonB"), messenger, "1", state)
		c.EntryPoint = "ButtonB"
		require.NoError(t, in.Run(context.Background(), c))

		assert.Len(t, messenger.Of("clear"), 2)
		assert.Empty(t, state.History)
		assert.Equal(t, []string{"You picked Y"}, messenger.Texts())
	})

	t.Run("Other Failures Abort", func(t *testing.T) {
		in := newInterpreter(t, testutils.DemoScenario)
		messenger := testutils.NewFakeMessenger()
		messenger.ClearErrs[11] = errors.New("Forbidden: bot was blocked by the user")

		state := parkedAt("menu")
		state.History = []int{11, 12}
		c := runtime.NewContext(testutils.ClickEvent("ButtonB"), messenger, "1", state)
		c.EntryPoint = "ButtonB"
		err := in.Run(context.Background(), c)

		require.Error(t, err)
		assert.Empty(t, messenger.Texts(), "nothing is rendered after an aborted cleanup")
		assert.Equal(t, "menu", state.CurrentBlockID)
		assert.Equal(t, []int{11, 12}, state.History)
	})

	t.Run("Text Events Skip Cleanup", func(t *testing.T) {
		in := newInterpreter(t, testutils.DemoScenario)
		messenger := testutils.NewFakeMessenger()

		state := parkedAt("menu")
		state.History = []int{11}
		c := runtime.NewContext(testutils.TextEvent("hello"), messenger, "1", state)
		require.NoError(t, in.Run(context.Background(), c))

		assert.Empty(t, messenger.Of("clear"))
		assert.Equal(t, []int{11}, state.History)
	})
}

func TestInterpreter_DeliveryFailureParks(t *testing.T) {
	in := newInterpreter(t, testutils.DemoScenario)
	messenger := testutils.NewFakeMessenger()
	messenger.FailNext(1, errors.New("Bad Request: can't parse entities"))

	c := runtime.NewContext(testutils.TextEvent("/start"), messenger, "1", parkedAt("start"))
	require.NoError(t, in.Run(context.Background(), c))

	texts := messenger.Texts()
	require.Len(t, texts, 1)
	assert.True(t, strings.HasPrefix(texts[0], "⚠️ Failed to send message: "), texts[0])
	assert.Contains(t, texts[0], "can&#39;t parse entities")
	assert.Equal(t, "hello", c.State.CurrentBlockID)
}

func TestInterpreter_StepLimit(t *testing.T) {
	doc := `{
		"blocks": [
			{"id": "a", "type": "message", "data": {"text": "A"}},
			{"id": "b", "type": "message", "data": {"text": "B"}}
		],
		"connections": [
			{"from": {"block_id": "a", "point": "next"}, "to": {"block_id": "b", "point": "start"}},
			{"from": {"block_id": "b", "point": "next"}, "to": {"block_id": "a", "point": "start"}}
		]
	}`
	in := newInterpreter(t, doc, runtime.WithMaxSteps(5))
	messenger := testutils.NewFakeMessenger()

	c := runtime.NewContext(testutils.TextEvent("go"), messenger, "1", parkedAt("a"))
	c.EntryPoint = domain.PointStart
	err := in.Run(context.Background(), c)

	assert.ErrorIs(t, err, domain.ErrStepLimit)
	assert.Len(t, messenger.Texts(), 5)
}

func TestInterpreter_LifecycleHooks(t *testing.T) {
	var entered, left []string
	hooks := domain.LifecycleHooks{
		OnBlockEnter: func(_ context.Context, e *domain.BlockEvent) { entered = append(entered, e.BlockID) },
		OnBlockLeave: func(_ context.Context, e *domain.BlockEvent) { left = append(left, e.BlockID+":"+e.ExitPoint) },
	}
	in := newInterpreter(t, testutils.DemoScenario, runtime.WithLifecycleHooks(hooks))

	c := runtime.NewContext(testutils.TextEvent("/start"), testutils.NewFakeMessenger(), "1", parkedAt("start"))
	require.NoError(t, in.Run(context.Background(), c))

	assert.Equal(t, []string{"start", "hello", "menu"}, entered)
	assert.Equal(t, []string{"start:start", "hello:start"}, left)
}

func TestInterpreter_HasButton(t *testing.T) {
	in := newInterpreter(t, testutils.DemoScenario)

	assert.True(t, in.HasButton("menu", "ButtonA"))
	assert.False(t, in.HasButton("menu", "ButtonC"))
	assert.False(t, in.HasButton("hello", "ButtonA"))
	assert.False(t, in.HasButton("missing", "ButtonA"))
}

func TestNewInterpreter_Errors(t *testing.T) {
	t.Run("Unknown Block Type", func(t *testing.T) {
		graph := &domain.Graph{Blocks: []domain.Block{{ID: "v", Type: "video_call"}}}
		_, err := runtime.NewInterpreter(graph)
		assert.ErrorIs(t, err, domain.ErrUnknownBlockType)
	})

	t.Run("Input Without Variable", func(t *testing.T) {
		graph := &domain.Graph{Blocks: []domain.Block{{ID: "in", Type: domain.BlockInputData, Data: map[string]any{"field_type": "email"}}}}
		_, err := runtime.NewInterpreter(graph)
		assert.ErrorIs(t, err, domain.ErrInvalidScenario)
	})
}

func TestInterpolate(t *testing.T) {
	state := domain.NewState(7, "1")
	state.Scenario("1").Fields["name"] = &domain.FieldValue{FieldName: "Name", FieldValue: "Jane <3"}
	state.Scenario("2").Fields["city"] = &domain.FieldValue{FieldName: "City", FieldValue: "Oslo"}

	got := runtime.Interpolate("Hello, {{name}}! {{ name }} from {{city}}", state, "1")

	assert.Equal(t, "Hello, Jane &lt;3! Jane &lt;3 from {{city}}", got, "other scenarios are not visible")
}
