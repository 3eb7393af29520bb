package registry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"werewolf-arena/internal/game"
)

var (
	ErrNotFound   = errors.New("session_not_found")
	ErrExists     = errors.New("session_exists")
	ErrAtCapacity = errors.New("registry_at_capacity")
)

const (
	defaultMaxSessions = 1000
	defaultTTL         = 2 * time.Hour
	snapshotBudget     = 5 * time.Second
)

// Snapshotter is the durable store the registry writes best-effort snapshots
// to. A nil Snapshotter disables snapshotting entirely.
type Snapshotter interface {
	Save(ctx context.Context, s *game.Session) error
	Delete(ctx context.Context, sessionID string) error
}

type Config struct {
	MaxSessions int
	TTL         time.Duration
}

type entry struct {
	mu         sync.Mutex
	lastAccess time.Time
}

// Registry maps session IDs to aggregates and hands out the per-session
// exclusive lock that serializes every mutating call.
type Registry struct {
	cfg   Config
	store Store
	snaps Snapshotter

	mu      sync.Mutex
	entries map[string]*entry
}

func New(cfg Config, store Store, snaps Snapshotter) *Registry {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = defaultMaxSessions
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if store == nil {
		store = NewMemoryStore()
	}
	return &Registry{cfg: cfg, store: store, snaps: snaps, entries: map[string]*entry{}}
}

// Create registers a fully-formed session. At capacity it first sweeps
// expired sessions; if that frees nothing it fails without leaving a partial
// session behind.
func (r *Registry) Create(s *game.Session) error {
	r.mu.Lock()
	if _, dup := r.entries[s.ID]; dup {
		r.mu.Unlock()
		return ErrExists
	}
	if len(r.entries) >= r.cfg.MaxSessions {
		expired := r.expiredLocked(time.Now())
		r.mu.Unlock()
		for _, id := range expired {
			r.evict(id)
		}
		r.mu.Lock()
		if len(r.entries) >= r.cfg.MaxSessions {
			r.mu.Unlock()
			return ErrAtCapacity
		}
	}
	// Store row first, entry second, both under the registry mutex: an
	// eviction can only find the entry once the session is reachable.
	r.store.Put(s.ID, s)
	r.entries[s.ID] = &entry{lastAccess: time.Now()}
	r.mu.Unlock()
	return nil
}

// WithSession runs fn with the per-session lock held. The state version is
// bumped before fn runs so the callback observes the version this mutation
// commits as; a rejected mutation rolls the bump back. On success a
// best-effort snapshot is written under the same lock, so no two snapshot
// writers ever race on one session.
func (r *Registry) WithSession(id string, fn func(s *game.Session) error) error {
	e, s, err := r.acquire(id)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()
	s.StateVersion++
	if err := fn(s); err != nil {
		s.StateVersion--
		return err
	}
	s.UpdatedAt = time.Now().UTC()
	r.saveSnapshot(s)
	return nil
}

// ReadSession runs fn with the lock held without counting a mutation.
func (r *Registry) ReadSession(id string, fn func(s *game.Session) error) error {
	e, s, err := r.acquire(id)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()
	return fn(s)
}

func (r *Registry) acquire(id string) (*entry, *game.Session, error) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		return nil, nil, ErrNotFound
	}
	e.lastAccess = time.Now()
	r.mu.Unlock()

	e.mu.Lock()
	// The session may have been evicted while we waited for the lock.
	s, ok := r.store.Get(id)
	if !ok {
		e.mu.Unlock()
		return nil, nil, ErrNotFound
	}
	return e, s, nil
}

// Delete removes a session and its snapshot. The lock is taken first so an
// in-flight mutation finishes before the session disappears.
func (r *Registry) Delete(id string) bool {
	return r.evict(id)
}

func (r *Registry) evict(id string) bool {
	r.mu.Lock()
	e, ok := r.entries[id]
	r.mu.Unlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
	if !r.store.Delete(id) {
		return false
	}
	if r.snaps != nil {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotBudget)
		defer cancel()
		if err := r.snaps.Delete(ctx, id); err != nil {
			log.Warn().Err(err).Str("session_id", id).Msg("snapshot delete failed")
		}
	}
	return true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Restore re-registers sessions recovered from snapshots at boot.
func (r *Registry) Restore(sessions []*game.Session) int {
	restored := 0
	for _, s := range sessions {
		if s == nil || s.Status == game.StatusFinished {
			continue
		}
		if err := r.Create(s); err != nil {
			log.Warn().Err(err).Str("session_id", s.ID).Msg("restore skipped")
			continue
		}
		restored++
	}
	return restored
}

func (r *Registry) saveSnapshot(s *game.Session) {
	if r.snaps == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), snapshotBudget)
	defer cancel()
	if err := r.snaps.Save(ctx, s); err != nil {
		// Snapshotting is best-effort and never gates gameplay.
		log.Warn().Err(err).Str("session_id", s.ID).Msg("snapshot save failed")
	}
}

func (r *Registry) expiredLocked(now time.Time) []string {
	expired := []string{}
	for id, e := range r.entries {
		if now.Sub(e.lastAccess) > r.cfg.TTL {
			expired = append(expired, id)
		}
	}
	return expired
}
