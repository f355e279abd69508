package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/rewind"
	"github.com/aretw0/rewind/internal/logging"
	"github.com/aretw0/rewind/pkg/domain"
	"github.com/aretw0/rewind/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	config *domain.Config
	store  ports.StateStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker      ports.DistributedLocker // Optional distributed locker
	lockTTL     time.Duration
	logger      *slog.Logger
	machineOpts []rewind.Option
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithMachineOptions sets the options every restored machine is built with
// (hooks, logger).
func WithMachineOptions(opts ...rewind.Option) Option {
	return func(m *Manager) {
		m.machineOpts = append(m.machineOpts, opts...)
	}
}

// NewManager creates a Session Manager for machines of the given definition.
func NewManager(cfg *domain.Config, store ports.StateStore, opts ...Option) *Manager {
	m := &Manager{
		config:  cfg,
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Start creates a fresh machine for the session, replacing any stored one.
func (m *Manager) Start(ctx context.Context, sessionID string) (*rewind.Machine, error) {
	var machine *rewind.Machine
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		machine, err = rewind.New(m.config, m.machineOpts...)
		if err != nil {
			return err
		}
		if err := m.store.Save(ctx, sessionID, machine.Snapshot()); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	return machine, err
}

// Load restores an existing session.
// Returns domain.ErrSessionNotFound if the session does not exist.
func (m *Manager) Load(ctx context.Context, sessionID string) (*rewind.Machine, error) {
	var machine *rewind.Machine
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		machine, err = m.restore(ctx, sessionID)
		return err
	})
	return machine, err
}

// LoadOrStart restores a session, creating and persisting it when missing.
func (m *Manager) LoadOrStart(ctx context.Context, sessionID string) (*rewind.Machine, error) {
	var machine *rewind.Machine
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var created bool
		var err error
		machine, created, err = m.restoreOrNew(ctx, sessionID)
		if err != nil || !created {
			return err
		}
		// Persist immediately to reserve the ID
		if err := m.store.Save(ctx, sessionID, machine.Snapshot()); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	return machine, err
}

// Apply runs fn on the session's machine (created when missing) and persists
// the result. When fn returns an error nothing is saved and the error is
// returned as is, so callers can still match domain errors.
func (m *Manager) Apply(ctx context.Context, sessionID string, fn func(*rewind.Machine) error) (*rewind.Machine, error) {
	return m.mutate(ctx, sessionID, true, fn)
}

// Update behaves like Apply but never creates a session: a missing one
// yields domain.ErrSessionNotFound. Existence is checked under the same lock
// as the mutation, so a concurrent Delete is never undone.
func (m *Manager) Update(ctx context.Context, sessionID string, fn func(*rewind.Machine) error) (*rewind.Machine, error) {
	return m.mutate(ctx, sessionID, false, fn)
}

func (m *Manager) mutate(ctx context.Context, sessionID string, create bool, fn func(*rewind.Machine) error) (*rewind.Machine, error) {
	var machine *rewind.Machine
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		if create {
			machine, _, err = m.restoreOrNew(ctx, sessionID)
		} else {
			machine, err = m.restore(ctx, sessionID)
		}
		if err != nil {
			return err
		}
		if err := fn(machine); err != nil {
			return err
		}
		if err := m.store.Save(ctx, sessionID, machine.Snapshot()); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return machine, nil
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Config returns the definition sessions are built from.
func (m *Manager) Config() *domain.Config {
	return m.config
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

func (m *Manager) restore(ctx context.Context, sessionID string) (*rewind.Machine, error) {
	snap, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	machine, err := rewind.Restore(m.config, snap, m.machineOpts...)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	return machine, nil
}

func (m *Manager) restoreOrNew(ctx context.Context, sessionID string) (*rewind.Machine, bool, error) {
	machine, err := m.restore(ctx, sessionID)
	if err == nil {
		return machine, false, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, false, fmt.Errorf("failed to check session existence: %w", err)
	}

	machine, err = rewind.New(m.config, m.machineOpts...)
	if err != nil {
		return nil, false, err
	}
	return machine, true, nil
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
