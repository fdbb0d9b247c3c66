package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KIIGIN/bot-constructor/internal/logging"
	"github.com/KIIGIN/bot-constructor/pkg/domain"
	"github.com/KIIGIN/bot-constructor/pkg/fields"
)

// Interpreter drives a participant through a compiled scenario graph.
// It is immutable after construction and safe for concurrent runs.
type Interpreter struct {
	graph       *domain.Graph
	blocks      map[string]Block
	connections []domain.Connection
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	maxSteps    int
	env         *env
}

// Option defines a functional option for configuring the Interpreter.
type Option func(*Interpreter)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(in *Interpreter) {
		if logger != nil {
			in.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(in *Interpreter) {
		in.hooks = hooks
	}
}

// WithValidator sets the validator used by input blocks.
func WithValidator(v *fields.Validator) Option {
	return func(in *Interpreter) {
		if v != nil {
			in.env.validator = v
		}
	}
}

// WithTexts overrides the participant-visible fallback texts. Empty fields keep defaults.
func WithTexts(t Texts) Option {
	return func(in *Interpreter) {
		in.env.texts = in.env.texts.merge(t)
	}
}

// WithSleeper replaces the wait used by delay blocks.
func WithSleeper(sleep SleepFunc) Option {
	return func(in *Interpreter) {
		if sleep != nil {
			in.env.sleep = sleep
		}
	}
}

// WithMaxSteps bounds the number of blocks visited per run. Zero means unbounded.
func WithMaxSteps(n int) Option {
	return func(in *Interpreter) {
		in.maxSteps = n
	}
}

// NewInterpreter compiles the blocks of a graph into their variants.
// Malformed block payloads and unknown block types are reported as errors.
func NewInterpreter(graph *domain.Graph, opts ...Option) (*Interpreter, error) {
	in := &Interpreter{
		graph:       graph,
		blocks:      make(map[string]Block, len(graph.Blocks)),
		connections: graph.Connections,
		logger:      logging.NewNop(),
		env: &env{
			texts:     DefaultTexts(),
			validator: fields.New(),
			sleep:     sleepContext,
		},
	}
	for _, opt := range opts {
		opt(in)
	}
	in.env.logger = in.logger

	for _, def := range graph.Blocks {
		b, err := buildBlock(def, in.env)
		if err != nil {
			return nil, err
		}
		in.blocks[def.ID] = b
	}
	return in, nil
}

// Graph returns the compiled scenario document.
func (in *Interpreter) Graph() *domain.Graph {
	return in.graph
}

// Block returns the compiled block with the given id.
func (in *Interpreter) Block(id string) (Block, bool) {
	b, ok := in.blocks[id]
	return b, ok
}

// HasButton reports whether the block renders a button with the given id.
func (in *Interpreter) HasButton(blockID, buttonID string) bool {
	b, ok := in.blocks[blockID].(buttoned)
	if !ok {
		return false
	}
	for _, btn := range b.Buttons() {
		if btn.ID == buttonID {
			return true
		}
	}
	return false
}

// Next resolves a connection from (blockID, point). The first declared match wins.
func (in *Interpreter) Next(blockID, point string) (domain.Endpoint, bool) {
	for _, c := range in.connections {
		if c.From.BlockID == blockID && c.From.Point == point {
			return c.To, true
		}
	}
	return domain.Endpoint{}, false
}

// Run advances the participant from the current block until the conversation parks.
// Keyboard cleanup failures other than domain.ErrMessageGone abort the run with an error.
func (in *Interpreter) Run(ctx context.Context, c *Context) error {
	logger := in.logger.With("scenario", c.ScenarioID, "participant", c.State.ParticipantID)

	if c.Event.IsClick() && len(c.State.History) > 0 {
		if err := in.clearKeyboards(ctx, c, logger); err != nil {
			return err
		}
	}

	block, ok := in.blocks[c.State.CurrentBlockID]
	if !ok {
		logger.Debug("no active block", "block_id", c.State.CurrentBlockID)
		return nil
	}

	for steps := 1; ; steps++ {
		if in.maxSteps > 0 && steps > in.maxSteps {
			return fmt.Errorf("%w: %d blocks visited", domain.ErrStepLimit, in.maxSteps)
		}
		in.emit(ctx, in.hooks.OnBlockEnter, domain.EventBlockEnter, c, block, "")

		if c.EntryPoint == domain.PointStart {
			if err := block.OnEntry(ctx, c); err != nil {
				if errors.Is(err, domain.ErrDeliveryFailed) {
					logger.Warn("block content not delivered, parking", "block_id", block.ID(), "err", err)
					return nil
				}
				return fmt.Errorf("block %s on entry: %w", block.ID(), err)
			}
		}

		target, ok, err := in.advance(ctx, c, block)
		if err != nil {
			return fmt.Errorf("block %s: %w", block.ID(), err)
		}
		if !ok {
			logger.Debug("conversation parked", "block_id", block.ID(), "entry_point", c.EntryPoint)
			return nil
		}

		next, exists := in.blocks[target.BlockID]
		if !exists {
			logger.Warn("dangling connection, parking", "block_id", block.ID(), "target", target.BlockID)
			return nil
		}
		in.emit(ctx, in.hooks.OnBlockLeave, domain.EventBlockLeave, c, block, target.Point)

		logger.Debug("advance", "from", block.ID(), "to", next.ID(), "entry_point", target.Point)
		c.State.CurrentBlockID = next.ID()
		c.EntryPoint = target.Point
		block = next
	}
}

// advance evaluates one block and resolves the connection it leaves through.
func (in *Interpreter) advance(ctx context.Context, c *Context, block Block) (domain.Endpoint, bool, error) {
	if block.Type() == domain.BlockMenu && c.EntryPoint != "" {
		if target, ok := in.Next(block.ID(), c.EntryPoint); ok {
			return target, true, nil
		}
	}

	exit, err := block.Execute(ctx, c)
	if err != nil {
		return domain.Endpoint{}, false, err
	}
	if exit == "" {
		exit = c.EntryPoint
	}
	if exit == "" {
		exit = domain.PointNext
	}
	target, ok := in.Next(block.ID(), exit)
	return target, ok, nil
}

// clearKeyboards removes the keyboards of every remembered message.
func (in *Interpreter) clearKeyboards(ctx context.Context, c *Context, logger *slog.Logger) error {
	history := append([]int(nil), c.State.History...)
	for _, id := range history {
		err := c.Messenger.ClearKeyboard(ctx, c.ChatID, id)
		if err == nil {
			continue
		}
		if errors.Is(err, domain.ErrMessageGone) {
			logger.Debug("keyboard already gone", "message_id", id, "err", err)
			c.State.Forget(id)
			continue
		}
		logger.Error("keyboard cleanup aborted", "message_id", id, "err", err)
		return fmt.Errorf("clear keyboard of message %d: %w", id, err)
	}
	c.State.History = nil
	return nil
}

func (in *Interpreter) emit(ctx context.Context, hook func(context.Context, *domain.BlockEvent), typ domain.EventType, c *Context, block Block, exit string) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.BlockEvent{
		EventBase:     domain.EventBase{Timestamp: time.Now(), Type: typ},
		ScenarioID:    c.ScenarioID,
		ParticipantID: c.State.ParticipantID,
		BlockID:       block.ID(),
		BlockType:     block.Type(),
		ExitPoint:     exit,
	})
}
