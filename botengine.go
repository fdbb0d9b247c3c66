package botengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	backend "github.com/redis/go-redis/v9"

	"github.com/KIIGIN/bot-constructor/internal/config"
	"github.com/KIIGIN/bot-constructor/internal/logging"
	"github.com/KIIGIN/bot-constructor/internal/runtime"
	"github.com/KIIGIN/bot-constructor/pkg/adapters/dynamodb"
	"github.com/KIIGIN/bot-constructor/pkg/adapters/file"
	httpadapter "github.com/KIIGIN/bot-constructor/pkg/adapters/http"
	"github.com/KIIGIN/bot-constructor/pkg/adapters/memory"
	"github.com/KIIGIN/bot-constructor/pkg/adapters/nats"
	"github.com/KIIGIN/bot-constructor/pkg/adapters/postgres"
	"github.com/KIIGIN/bot-constructor/pkg/adapters/redis"
	"github.com/KIIGIN/bot-constructor/pkg/adapters/ssm"
	"github.com/KIIGIN/bot-constructor/pkg/adapters/telegram"
	"github.com/KIIGIN/bot-constructor/pkg/fields"
	"github.com/KIIGIN/bot-constructor/pkg/observability"
	"github.com/KIIGIN/bot-constructor/pkg/persistence/middleware"
	"github.com/KIIGIN/bot-constructor/pkg/ports"
	"github.com/KIIGIN/bot-constructor/pkg/session"
	"github.com/KIIGIN/bot-constructor/pkg/webhook"
)

// Version is the engine release, overridden at link time.
var Version = "0.1.0"

// App is a fully wired engine: state store, scenario and token sources,
// messaging client factory and the webhook orchestrator on top of them.
type App struct {
	cfg          *config.Config
	logger       *slog.Logger
	metrics      *observability.Metrics
	store        ports.StateStore
	orchestrator *webhook.Orchestrator
	closers      []func() error
}

// Option customizes how New wires the App.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	aws        *aws.Config
	redis      *backend.Client
	messengers ports.MessengerFactory
	scenarios  ports.ScenarioSource
	tokens     ports.TokenResolver
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithAWSConfig supplies the AWS configuration instead of loading the default chain.
func WithAWSConfig(cfg aws.Config) Option {
	return func(o *options) {
		o.aws = &cfg
	}
}

// WithRedisClient reuses an existing client for the redis state backend and locks.
func WithRedisClient(client *backend.Client) Option {
	return func(o *options) {
		o.redis = client
	}
}

// WithMessengers replaces the Telegram client factory.
func WithMessengers(f ports.MessengerFactory) Option {
	return func(o *options) {
		o.messengers = f
	}
}

// WithScenarios replaces the configured scenario source.
func WithScenarios(s ports.ScenarioSource) Option {
	return func(o *options) {
		o.scenarios = s
	}
}

// WithTokens replaces the configured bot token resolver.
func WithTokens(t ports.TokenResolver) Option {
	return func(o *options) {
		o.tokens = t
	}
}

// New wires an App from configuration. Resources opened along the way are
// released by Close, or immediately when wiring fails.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (_ *App, err error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}

	a := &App{
		cfg:     cfg,
		logger:  o.logger,
		metrics: observability.NewMetrics(),
	}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	var db *sql.DB
	if cfg.Postgres.DSN != "" {
		db, err = postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
	}

	store, redisClient, err := a.stateStore(ctx, cfg, o)
	if err != nil {
		return nil, err
	}
	if key, fallbacks, err := cfg.State.Keys(); err != nil {
		return nil, err
	} else if key != nil {
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key, FallbackKeys: fallbacks})
		if err != nil {
			return nil, fmt.Errorf("state encryption: %w", err)
		}
		store = middleware.Chain(store, enc)
	}
	a.store = store

	sessionOpts := []session.Option{session.WithLogger(o.logger)}
	if cfg.Lock.Enabled {
		if redisClient == nil {
			return nil, errors.New("lock requires the redis state backend")
		}
		sessionOpts = append(sessionOpts,
			session.WithLocker(redis.NewLocker(redisClient, cfg.Lock.Prefix)),
			session.WithLockTTL(cfg.Lock.TTL),
		)
	}
	sessions := session.NewManager(store, sessionOpts...)

	scenarios, fileScenarios, err := a.scenarioSource(cfg, o, db)
	if err != nil {
		return nil, err
	}
	tokens, err := a.tokenResolver(ctx, cfg, o, fileScenarios)
	if err != nil {
		return nil, err
	}

	messengers := o.messengers
	if messengers == nil {
		topts := []telegram.Option{telegram.WithLogger(o.logger)}
		if cfg.Telegram.Endpoint != "" {
			topts = append(topts, telegram.WithEndpoint(cfg.Telegram.Endpoint))
		}
		messengers = telegram.NewFactory(topts...)
	}

	var userData ports.UserDataService = memory.NewUserData()
	if db != nil {
		userData = postgres.NewUserData(db)
	}

	wopts := []webhook.Option{
		webhook.WithUserData(userData),
		webhook.WithSessions(sessions),
		webhook.WithMetrics(a.metrics),
		webhook.WithLogger(o.logger),
		webhook.WithStaleButtonText(cfg.Messages.StaleButton),
		webhook.WithInterpreterOptions(
			runtime.WithLogger(o.logger),
			runtime.WithLifecycleHooks(observability.ChainHooks(a.metrics.Hooks(), observability.LoggingHooks(o.logger))),
			runtime.WithValidator(fields.New(fields.WithYesNo(cfg.Validation.YesWords, cfg.Validation.NoWords))),
			runtime.WithTexts(runtime.Texts{
				DefaultMessage: cfg.Messages.DefaultMessage,
				DefaultMenu:    cfg.Messages.DefaultMenu,
				DeliveryFailed: cfg.Messages.DeliveryFailed,
			}),
			runtime.WithMaxSteps(cfg.Scenarios.MaxSteps),
		),
	}
	if cfg.NATS.URL != "" {
		pub, err := nats.Connect(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pub.Close)
		wopts = append(wopts, webhook.WithPublisher(pub))
	}

	a.orchestrator = webhook.New(scenarios, tokens, messengers, store, wopts...)
	a.logger.Info("engine wired",
		"state", cfg.State.Backend,
		"scenarios", cfg.Scenarios.Backend,
		"tokens", cfg.Tokens.Backend,
		"lock", cfg.Lock.Enabled,
		"encrypted", cfg.State.EncryptionKey != "",
	)
	return a, nil
}

func (a *App) stateStore(ctx context.Context, cfg *config.Config, o *options) (ports.StateStore, *backend.Client, error) {
	switch cfg.State.Backend {
	case config.BackendMemory:
		return memory.NewStore(), nil, nil
	case config.BackendFile:
		return file.New(cfg.State.Dir), nil, nil
	case config.BackendRedis:
		ropts := []redis.Option{redis.WithTTL(cfg.State.TTL), redis.WithPrefix(cfg.State.Redis.Prefix)}
		var s *redis.Store
		if o.redis != nil {
			s = redis.NewFromClient(o.redis, ropts...)
		} else {
			r := cfg.State.Redis
			s = redis.New(r.Addr, r.Password, r.DB, ropts...)
			a.closers = append(a.closers, s.Close)
		}
		if err := s.Ping(ctx); err != nil {
			return nil, nil, fmt.Errorf("redis state store: %w", err)
		}
		return s, s.Client(), nil
	case config.BackendDynamoDB:
		awsCfg, err := a.awsConfig(ctx, cfg, o)
		if err != nil {
			return nil, nil, err
		}
		s, err := dynamodb.New(awsdynamodb.NewFromConfig(awsCfg), cfg.State.DynamoDB.Table, dynamodb.WithTTL(cfg.State.TTL))
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown state backend %q", cfg.State.Backend)
}

func (a *App) scenarioSource(cfg *config.Config, o *options, db *sql.DB) (ports.ScenarioSource, *file.Scenarios, error) {
	if o.scenarios != nil {
		return o.scenarios, nil, nil
	}
	switch cfg.Scenarios.Backend {
	case config.BackendFile:
		s, err := file.LoadScenarios(cfg.Scenarios.Manifest)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.BackendPostgres:
		if db == nil {
			return nil, nil, errors.New("postgres scenarios backend requires postgres.dsn")
		}
		return postgres.NewScenarios(db), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown scenarios backend %q", cfg.Scenarios.Backend)
}

func (a *App) tokenResolver(ctx context.Context, cfg *config.Config, o *options, manifest *file.Scenarios) (ports.TokenResolver, error) {
	if o.tokens != nil {
		return o.tokens, nil
	}
	switch cfg.Tokens.Backend {
	case config.BackendSSM:
		awsCfg, err := a.awsConfig(ctx, cfg, o)
		if err != nil {
			return nil, err
		}
		return ssm.New(awsssm.NewFromConfig(awsCfg), cfg.Tokens.SSMPrefix)
	case config.BackendStatic:
		tokens := ports.StaticTokens{}
		if manifest != nil {
			for hook, token := range manifest.Tokens() {
				tokens[hook] = token
			}
		}
		for hook, token := range cfg.Tokens.Static {
			tokens[hook] = token
		}
		return tokens, nil
	}
	return nil, fmt.Errorf("unknown tokens backend %q", cfg.Tokens.Backend)
}

func (a *App) awsConfig(ctx context.Context, cfg *config.Config, o *options) (aws.Config, error) {
	if o.aws != nil {
		return *o.aws, nil
	}
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.State.DynamoDB.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.State.DynamoDB.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	o.aws = &awsCfg
	return awsCfg, nil
}

// Orchestrator returns the webhook orchestrator.
func (a *App) Orchestrator() *webhook.Orchestrator { return a.orchestrator }

// Metrics returns the engine metrics.
func (a *App) Metrics() *observability.Metrics { return a.metrics }

// Store returns the state store, encryption included.
func (a *App) Store() ports.StateStore { return a.store }

// Server builds the HTTP server for the webhook endpoint.
func (a *App) Server() *httpadapter.Server {
	return httpadapter.NewServer(a.orchestrator,
		httpadapter.WithMetrics(a.metrics),
		httpadapter.WithLogger(a.logger),
		httpadapter.WithSecretToken(a.cfg.Telegram.SecretToken),
		httpadapter.WithHandleTimeout(a.cfg.Server.HandleTimeout),
	)
}

// Close releases connections opened by New, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
