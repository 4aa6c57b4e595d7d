package thresholds

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Vinyl-Lilith/GreenGiant/internal/infrastructure/logging"
)

// Store is the in-process authority for the threshold singleton.
//
// Load runs exactly once at startup and creates the default row when absent,
// so there is no read-triggered implicit creation at request time. All
// mutation goes through the store mutex; callers must not hold the store
// across slow external calls (the sync orchestrator releases it before
// pushing to the edge controller).
type Store struct {
	mu     sync.Mutex
	set    Set
	loaded bool

	repo   Repository
	logger *logging.Logger
}

// NewStore creates an unloaded store. Call Load before serving requests.
func NewStore(repo Repository, logger *logging.Logger) *Store {
	return &Store{repo: repo, logger: logger}
}

// Load reads the singleton from the durable store, creating the documented
// defaults when no row exists yet.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.repo.Get(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("loading thresholds: %w", err)
		}

		defaults := Defaults()
		if err := s.repo.Create(ctx, &defaults); err != nil {
			return fmt.Errorf("seeding default thresholds: %w", err)
		}
		s.logger.Info("threshold defaults created")
		set = &defaults
	}

	s.set = *set
	s.loaded = true
	return nil
}

// Get returns a copy of the current set.
func (s *Store) Get() Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set
}

// Update applies a partial update by field name and persists the result
// before it becomes visible. Unknown field names reject the whole update
// with ErrUnknownField; persistence failure leaves the cached copy
// unchanged. Returns the new durable set.
func (s *Store) Update(ctx context.Context, actor string, changes map[string]float64) (Set, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return Set{}, errors.New("threshold store not loaded")
	}

	next := s.set
	for field, value := range changes {
		if err := next.apply(field, value); err != nil {
			return Set{}, err
		}
	}
	next.LastUpdatedBy = actor

	if err := s.repo.Update(ctx, &next); err != nil {
		return Set{}, fmt.Errorf("persisting thresholds: %w", err)
	}

	s.set = next
	return next, nil
}

// MarkSynced records a successful relay push at the given time, durably and
// in the cached copy.
func (s *Store) MarkSynced(ctx context.Context, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.MarkSynced(ctx, at); err != nil {
		return fmt.Errorf("recording threshold sync: %w", err)
	}

	at = at.UTC()
	s.set.LastSyncedAt = &at
	return nil
}
