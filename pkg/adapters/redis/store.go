package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const (
	// DefaultPrefix and DefaultSuffix produce keys of the form "user:{participant}:state".
	DefaultPrefix = "user:"
	DefaultSuffix = ":state"
	// DefaultTTL keeps an idle conversation for one day.
	DefaultTTL = 24 * time.Hour
)

// Store implements ports.StateStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	suffix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for states. Zero disables expiration.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for states.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
		suffix: DefaultSuffix,
		ttl:    DefaultTTL,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Client exposes the underlying client so lockers can share the connection pool.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(participantID int64) string {
	return s.prefix + strconv.FormatInt(participantID, 10) + s.suffix
}

// Save persists the state to Redis, refreshing its TTL.
func (s *Store) Save(ctx context.Context, state *domain.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := s.client.Set(ctx, s.key(state.ParticipantID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the state from Redis.
func (s *Store) Load(ctx context.Context, participantID int64) (*domain.State, error) {
	val, err := s.client.Get(ctx, s.key(participantID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var state domain.State
	if err := json.Unmarshal(val, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}

	return state.Normalize(), nil
}

// Delete removes the state.
func (s *Store) Delete(ctx context.Context, participantID int64) error {
	return s.client.Del(ctx, s.key(participantID)).Err()
}

// Ping checks connectivity, used by health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
