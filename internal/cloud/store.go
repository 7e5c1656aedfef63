// Package cloud holds the externally supplied inclusion sets ("tests that
// matter for this run") keyed by run id.
package cloud

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"stf/internal/domain"
	"stf/internal/storage"
)

// Change describes one store mutation
type Change struct {
	RunID     string
	Filter    domain.FilterSet
	Dismissed bool
}

// Listener receives change notifications after the store has been updated
type Listener func(Change)

// Store maps run ids to filter sets. It is scoped to the hosting session,
// not to a tree, so a rebuilt tree reattaches to the set of its run id.
type Store struct {
	mu        sync.Mutex
	backend   storage.Backend
	sets      map[string]domain.FilterSet
	listeners []Listener
	logger    *zap.Logger
}

// NewStore creates a Store. A nil backend keeps sets in memory only.
func NewStore(backend storage.Backend, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		backend: backend,
		sets:    make(map[string]domain.FilterSet),
		logger:  logger,
	}
}

// OnChange registers a listener
func (s *Store) OnChange(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Set replaces the set stored for runID and notifies listeners.
// An empty runID is a no-op and reports applied=false.
func (s *Store) Set(ctx context.Context, runID string, ids []string) (bool, error) {
	if runID == "" {
		s.logger.Warn("ignoring filter update without run id", zap.Int("ids", len(ids)))
		return false, nil
	}
	next := domain.NewFilterSet(ids...)

	s.mu.Lock()
	current, cached := s.sets[runID]
	if !cached || !current.Equal(next) {
		if err := s.persist(ctx, runID, next); err != nil {
			s.mu.Unlock()
			return false, err
		}
	}
	s.sets[runID] = next
	s.mu.Unlock()

	s.logger.Debug("filter set updated", zap.String("run_id", runID), zap.Strings("ids", next.IDs()))
	s.notify(Change{RunID: runID, Filter: next.Clone()})
	return true, nil
}

// Dismiss clears the set stored for runID and notifies listeners.
func (s *Store) Dismiss(ctx context.Context, runID string) (bool, error) {
	if runID == "" {
		s.logger.Warn("ignoring filter dismiss without run id")
		return false, nil
	}

	s.mu.Lock()
	current, cached := s.sets[runID]
	if !cached || current.Active() {
		if err := s.persist(ctx, runID, nil); err != nil {
			s.mu.Unlock()
			return false, err
		}
	}
	s.sets[runID] = domain.FilterSet{}
	s.mu.Unlock()

	s.logger.Debug("filter set dismissed", zap.String("run_id", runID))
	s.notify(Change{RunID: runID, Filter: domain.FilterSet{}, Dismissed: true})
	return true, nil
}

// Get returns the set for runID, or the empty set when none is recorded.
func (s *Store) Get(ctx context.Context, runID string) (domain.FilterSet, error) {
	if runID == "" {
		return domain.FilterSet{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if fs, ok := s.sets[runID]; ok {
		return fs.Clone(), nil
	}
	fs, err := s.load(ctx, runID)
	if err != nil {
		return nil, err
	}
	s.sets[runID] = fs
	return fs.Clone(), nil
}

// Refresh rereads runID from the backend, bypassing the cache. changed
// reports whether the persisted set differs from what the store held.
func (s *Store) Refresh(ctx context.Context, runID string) (domain.FilterSet, bool, error) {
	if runID == "" {
		return domain.FilterSet{}, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fs, err := s.load(ctx, runID)
	if err != nil {
		return nil, false, err
	}
	prev, cached := s.sets[runID]
	s.sets[runID] = fs
	changed := !cached || !prev.Equal(fs)
	return fs.Clone(), changed, nil
}

// RunIDs lists run ids known to the backend and the in-memory cache.
func (s *Store) RunIDs(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(domain.FilterSet)
	for id, fs := range s.sets {
		if fs.Active() {
			seen[id] = struct{}{}
		}
	}
	if s.backend != nil {
		ids, err := s.backend.RunIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("list run ids: %w", err)
		}
		for _, id := range ids {
			seen[id] = struct{}{}
		}
	}
	return seen.IDs(), nil
}

func (s *Store) load(ctx context.Context, runID string) (domain.FilterSet, error) {
	if s.backend == nil {
		return domain.FilterSet{}, nil
	}
	ids, _, err := s.backend.Load(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load filter set %s: %w", runID, err)
	}
	return domain.NewFilterSet(ids...), nil
}

func (s *Store) persist(ctx context.Context, runID string, fs domain.FilterSet) error {
	if s.backend == nil {
		return nil
	}
	if !fs.Active() {
		if err := s.backend.Delete(ctx, runID); err != nil {
			return fmt.Errorf("clear filter set %s: %w", runID, err)
		}
		return nil
	}
	if err := s.backend.Save(ctx, runID, fs.IDs()); err != nil {
		return fmt.Errorf("save filter set %s: %w", runID, err)
	}
	return nil
}

func (s *Store) notify(c Change) {
	s.mu.Lock()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(c)
	}
}
