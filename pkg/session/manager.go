package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/KIIGIN/bot-constructor/internal/logging"
	"github.com/KIIGIN/bot-constructor/pkg/domain"
	"github.com/KIIGIN/bot-constructor/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed holder can block a participant.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates state access, ensuring safe concurrent operations.
// Unused locks are garbage collected by reference counting.
type Manager struct {
	store ports.StateStore

	mu    sync.Mutex
	locks map[int64]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager over the given store.
func NewManager(store ports.StateStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[int64]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu and call release after unlocking.
func (m *Manager) acquire(participantID int64) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[participantID]
	if !ok {
		entry = &lockEntry{}
		m.locks[participantID] = entry
	}
	entry.refs++
	return entry
}

func (m *Manager) release(participantID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[participantID]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, participantID)
	}
}

// Store returns the underlying state store. Use it inside WithLock callbacks;
// the Manager's own accessors would deadlock there.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

// LoadOrNew loads the participant's state or creates an empty one.
// The new state is not persisted.
func (m *Manager) LoadOrNew(ctx context.Context, participantID int64, scenarioID string) (*domain.State, error) {
	state, err := m.store.Load(ctx, participantID)
	if err == nil {
		return state.Normalize(), nil
	}
	if !errors.Is(err, domain.ErrStateNotFound) {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	return domain.NewState(participantID, scenarioID), nil
}

// Save persists a state under the participant lock.
func (m *Manager) Save(ctx context.Context, state *domain.State) error {
	return m.WithLock(ctx, state.ParticipantID, func(ctx context.Context) error {
		return m.store.Save(ctx, state)
	})
}

// Delete removes a participant's state under the participant lock.
func (m *Manager) Delete(ctx context.Context, participantID int64) error {
	return m.WithLock(ctx, participantID, func(ctx context.Context) error {
		return m.store.Delete(ctx, participantID)
	})
}

// WithLock runs fn while holding the participant lock.
func (m *Manager) WithLock(ctx context.Context, participantID int64, fn func(context.Context) error) error {
	entry := m.acquire(participantID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(participantID)
	}()

	if m.locker != nil {
		key := strconv.FormatInt(participantID, 10)
		unlock, err := m.locker.Lock(ctx, key, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// The run context may be canceled by now; the lock must still go.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"participant", participantID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
