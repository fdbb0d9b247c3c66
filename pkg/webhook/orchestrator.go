package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KIIGIN/bot-constructor/internal/logging"
	"github.com/KIIGIN/bot-constructor/internal/runtime"
	"github.com/KIIGIN/bot-constructor/pkg/domain"
	"github.com/KIIGIN/bot-constructor/pkg/observability"
	"github.com/KIIGIN/bot-constructor/pkg/ports"
	"github.com/KIIGIN/bot-constructor/pkg/sanitizer"
	"github.com/KIIGIN/bot-constructor/pkg/session"
	"github.com/KIIGIN/bot-constructor/pkg/trigger"
)

// DefaultStaleButtonText answers clicks on buttons the participant can no longer use.
const DefaultStaleButtonText = "This button is no longer active"

// saveTimeout bounds persisting state after the run, independent of the request deadline.
const saveTimeout = 5 * time.Second

// Orchestrator handles inbound events for every bot known to its sources.
type Orchestrator struct {
	scenarios  ports.ScenarioSource
	tokens     ports.TokenResolver
	messengers ports.MessengerFactory
	store      ports.StateStore

	userData  ports.UserDataService
	publisher ports.FieldPublisher
	sessions  *session.Manager
	metrics   *observability.Metrics
	logger    *slog.Logger

	staleText   string
	interpreter []runtime.Option
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithUserData enables hydration and persistence of collected values.
func WithUserData(svc ports.UserDataService) Option {
	return func(o *Orchestrator) {
		o.userData = svc
	}
}

// WithPublisher announces every saved value.
func WithPublisher(p ports.FieldPublisher) Option {
	return func(o *Orchestrator) {
		o.publisher = p
	}
}

// WithSessions serializes events of one participant through the manager.
func WithSessions(m *session.Manager) Option {
	return func(o *Orchestrator) {
		o.sessions = m
	}
}

// WithMetrics records update outcomes.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithLogger sets the logger. It is also handed to every interpreter.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithStaleButtonText overrides the notice shown for stale clicks.
func WithStaleButtonText(text string) Option {
	return func(o *Orchestrator) {
		if text != "" {
			o.staleText = text
		}
	}
}

// WithInterpreterOptions appends options applied to every interpreter.
func WithInterpreterOptions(opts ...runtime.Option) Option {
	return func(o *Orchestrator) {
		o.interpreter = append(o.interpreter, opts...)
	}
}

// New creates an Orchestrator.
func New(scenarios ports.ScenarioSource, tokens ports.TokenResolver, messengers ports.MessengerFactory, store ports.StateStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		scenarios:  scenarios,
		tokens:     tokens,
		messengers: messengers,
		store:      store,
		logger:     logging.NewNop(),
		staleText:  DefaultStaleButtonText,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func kindOf(ev domain.Event) string {
	if ev.IsClick() {
		return "callback"
	}
	return "message"
}

// Handle processes one event delivered to the given webhook.
func (o *Orchestrator) Handle(ctx context.Context, webhookToken string, ev domain.Event) error {
	start := time.Now()
	outcome, err := o.handle(ctx, webhookToken, ev)
	if o.metrics != nil {
		o.metrics.ObserveUpdate(kindOf(ev), outcome, time.Since(start))
	}
	return err
}

func (o *Orchestrator) handle(ctx context.Context, webhookToken string, ev domain.Event) (string, error) {
	if !ev.Valid() {
		return observability.OutcomeIgnored, nil
	}

	if ev.Text != nil {
		clean, err := sanitizer.SanitizeInput(ev.Text.Text)
		if err != nil {
			o.logger.Warn("inbound text rejected", "participant", ev.ParticipantID(), "err", err)
			return observability.OutcomeIgnored, nil
		}
		text := *ev.Text
		text.Text = clean
		ev.Text = &text
	}

	scenario, err := o.scenarios.ScenarioByWebhook(ctx, webhookToken)
	if err != nil {
		if errors.Is(err, domain.ErrScenarioNotFound) {
			return observability.OutcomeUnknown, err
		}
		return observability.OutcomeFailed, fmt.Errorf("failed to resolve scenario: %w", err)
	}
	botToken, err := o.tokens.BotToken(ctx, webhookToken)
	if err != nil {
		if errors.Is(err, domain.ErrBotNotFound) {
			return observability.OutcomeUnknown, err
		}
		return observability.OutcomeFailed, fmt.Errorf("failed to resolve bot token: %w", err)
	}

	logger := o.logger.With("scenario", scenario.ID, "participant", ev.ParticipantID())
	interp, err := runtime.NewInterpreter(&scenario.Graph, append([]runtime.Option{runtime.WithLogger(o.logger)}, o.interpreter...)...)
	if err != nil {
		return observability.OutcomeFailed, fmt.Errorf("failed to compile scenario %s: %w", scenario.ID, err)
	}

	messenger, err := o.messengers.Open(ctx, botToken)
	if err != nil {
		return observability.OutcomeFailed, fmt.Errorf("failed to open messenger: %w", err)
	}
	defer func() {
		if err := messenger.Close(); err != nil {
			logger.Warn("failed to close messenger", "err", err)
		}
	}()

	var outcome string
	process := func(ctx context.Context) error {
		var err error
		outcome, err = o.process(ctx, logger, scenario, interp, messenger, ev)
		return err
	}
	if o.sessions != nil {
		err = o.sessions.WithLock(ctx, ev.ParticipantID(), process)
	} else {
		err = process(ctx)
	}
	if err != nil && outcome == "" {
		outcome = observability.OutcomeFailed
	}
	return outcome, err
}

// process runs with the participant lock held, if any.
func (o *Orchestrator) process(ctx context.Context, logger *slog.Logger, scenario *domain.Scenario, interp *runtime.Interpreter, messenger ports.Messenger, ev domain.Event) (string, error) {
	state, err := o.load(ctx, ev.ParticipantID(), scenario.ID)
	if err != nil {
		return observability.OutcomeFailed, err
	}
	c := runtime.NewContext(ev, messenger, scenario.ID, state)
	o.hydrate(ctx, logger, c)

	outcome, deliver := o.classify(ctx, logger, interp, c)
	var runErr error
	if deliver {
		if runErr = interp.Run(ctx, c); runErr != nil {
			logger.Error("scenario run aborted", "block_id", c.State.CurrentBlockID, "err", runErr)
			outcome = observability.OutcomeFailed
		}
	}

	// State is saved even after an aborted or cancelled run so that sent
	// messages stay tracked and an interrupted delay resumes where it parked.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()

	o.persistValues(saveCtx, logger, c, ev)

	if err := o.store.Save(saveCtx, c.State); err != nil {
		return observability.OutcomeFailed, fmt.Errorf("failed to save state: %w", err)
	}
	if runErr != nil {
		return outcome, runErr
	}
	return outcome, nil
}

func (o *Orchestrator) load(ctx context.Context, participantID int64, scenarioID string) (*domain.State, error) {
	if o.sessions != nil {
		return o.sessions.LoadOrNew(ctx, participantID, scenarioID)
	}
	state, err := o.store.Load(ctx, participantID)
	if errors.Is(err, domain.ErrStateNotFound) {
		return domain.NewState(participantID, scenarioID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	return state, nil
}

// classify decides whether the interpreter runs for this event.
func (o *Orchestrator) classify(ctx context.Context, logger *slog.Logger, interp *runtime.Interpreter, c *runtime.Context) (string, bool) {
	if click := c.Event.Click; click != nil {
		if !interp.HasButton(c.State.CurrentBlockID, click.ButtonID) {
			logger.Warn("stale button clicked", "block_id", c.State.CurrentBlockID, "button", click.ButtonID)
			if err := c.Messenger.AnswerCallback(ctx, click.CallbackID, o.staleText); err != nil {
				logger.Warn("failed to answer callback", "err", err)
			}
			return observability.OutcomeStale, false
		}
		if err := c.Messenger.AnswerCallback(ctx, click.CallbackID, ""); err != nil {
			logger.Warn("failed to answer callback", "err", err)
		}
		c.EntryPoint = click.ButtonID
		return observability.OutcomeHandled, true
	}

	if c.State.Waiting(c.ScenarioID) {
		return observability.OutcomeHandled, true
	}

	if start, ok := interp.Graph().StartBlock(); ok {
		matched, err := trigger.MatchBlock(start, c.Event.Text.Text)
		if err != nil {
			logger.Warn("invalid triggers", "block_id", start.ID, "err", err)
		}
		if matched {
			c.State.CurrentBlockID = start.ID
			c.EntryPoint = ""
			return observability.OutcomeHandled, true
		}
	}

	if c.State.CurrentBlockID != "" {
		return observability.OutcomeHandled, true
	}
	return observability.OutcomeIgnored, false
}
