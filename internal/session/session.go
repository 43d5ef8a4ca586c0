package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/austiecodes/vera/internal/engine"
	"github.com/austiecodes/vera/internal/memory/memtypes"
)

// ErrBusy is returned when a session already has a request in flight.
var ErrBusy = engine.ErrBusy

// Factory builds the engine for a new session.
type Factory func(ctx context.Context) (*engine.Engine, memtypes.RebuildResult)

// Session is one conversation addressed by ID.
type Session struct {
	ID        string
	CreatedAt time.Time
	engine    *engine.Engine
}

// Respond forwards one turn to the session's engine. It returns ErrBusy
// instead of queueing when another turn is still running.
func (s *Session) Respond(ctx context.Context, prompt string) (string, error) {
	return s.engine.Respond(ctx, prompt)
}

// Engine exposes the underlying conversation engine.
func (s *Session) Engine() *engine.Engine {
	return s.engine
}

// Config controls session lifetime.
type Config struct {
	// TTL is the idle lifetime; every access extends it.
	TTL time.Duration
	// MaxSessions caps live sessions; the least valuable are evicted first.
	MaxSessions int
	// OnCreate and OnEvict are optional lifecycle hooks.
	OnCreate func(*Session)
	OnEvict  func(*Session)
}

// Manager keeps sessions in memory with TTL and capacity eviction.
type Manager struct {
	cache   *ristretto.Cache
	factory Factory
	config  Config
	group   singleflight.Group
}

// NewManager creates a session manager.
func NewManager(factory Factory, config Config) (*Manager, error) {
	if config.MaxSessions <= 0 {
		config.MaxSessions = 1024
	}
	if config.TTL <= 0 {
		config.TTL = time.Hour
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        int64(config.MaxSessions) * 10,
		MaxCost:            int64(config.MaxSessions),
		BufferItems:        64,
		IgnoreInternalCost: true,
		OnEvict: func(item *ristretto.Item) {
			s, ok := item.Value.(*Session)
			if !ok {
				return
			}
			slog.Debug("session evicted", "session_id", s.ID)
			if config.OnEvict != nil {
				config.OnEvict(s)
			}
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create session cache: %w", err)
	}

	return &Manager{cache: cache, factory: factory, config: config}, nil
}

// Get returns the session for id, creating it when id is empty or unknown.
// Concurrent requests for the same new id share one engine.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		id = uuid.NewString()
	}

	if s, ok := m.lookup(id); ok {
		m.touch(s)
		return s, nil
	}

	v, err, _ := m.group.Do(id, func() (any, error) {
		if s, ok := m.lookup(id); ok {
			return s, nil
		}

		// The engine outlives this request, so it must not inherit its cancellation.
		eng, status := m.factory(context.WithoutCancel(ctx))
		if status.Status == memtypes.IndexDegraded {
			slog.Warn("session started without memory recall", "session_id", id, "error", status.Err)
		}

		s := &Session{ID: id, CreatedAt: time.Now(), engine: eng}
		if !m.cache.SetWithTTL(id, s, 1, m.config.TTL) {
			slog.Warn("session cache rejected new session", "session_id", id)
		}
		m.cache.Wait()

		slog.Info("session created", "session_id", id, "index", status.Status, "indexed", status.Indexed)
		if m.config.OnCreate != nil {
			m.config.OnCreate(s)
		}
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (m *Manager) lookup(id string) (*Session, bool) {
	v, ok := m.cache.Get(id)
	if !ok {
		return nil, false
	}
	s, ok := v.(*Session)
	return s, ok
}

// touch restarts the idle timer.
func (m *Manager) touch(s *Session) {
	m.cache.SetWithTTL(s.ID, s, 1, m.config.TTL)
}

// Delete drops a session immediately. It reports whether one existed.
func (m *Manager) Delete(id string) bool {
	s, ok := m.lookup(id)
	m.cache.Del(id)
	m.cache.Wait()
	if ok && m.config.OnEvict != nil {
		m.config.OnEvict(s)
	}
	return ok
}

// Close stops the cache's background goroutines.
func (m *Manager) Close() {
	m.cache.Close()
}
