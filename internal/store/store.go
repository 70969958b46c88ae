// Package store implements the record store: the single source of truth for
// one user's tournament sessions, layered over an interchangeable persistence
// backend.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"pokerledger/internal/core"
)

// Store owns the in-memory collection for the logged-in user. Every mutation
// is optimistic: the in-memory change is applied first, persisted through the
// backend, and reverted if the write fails, so a failed save is never
// observable through subsequent reads.
type Store struct {
	mu        sync.Mutex
	backend   Backend
	username  string
	records   []core.Tournament
	nextID    int64
	listeners []Listener
}

// New creates a store bound to the selected backend. Listeners passed here
// form the explicit receiver set for change notifications; nil entries are
// skipped.
func New(backend Backend, listeners ...Listener) *Store {
	s := &Store{backend: backend, nextID: 1}
	for _, l := range listeners {
		if l != nil {
			s.listeners = append(s.listeners, l)
		}
	}
	return s
}

// BackendName reports the selected backend, for diagnostics only.
func (s *Store) BackendName() string {
	return s.backend.Name()
}

// OnDataChange registers a listener invoked with the full collection after
// every successful mutation. A panicking listener is recovered and logged; it
// never fails the mutation.
func (s *Store) OnDataChange(fn Listener) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// LoadUserData replaces the in-memory collection with the persisted one for
// username. On backend failure the collection is reset to empty and the error
// is returned for the caller's error-reporting channel; the store stays
// usable either way.
func (s *Store) LoadUserData(ctx context.Context, username string) error {
	if err := core.ValidateUsername(username); err != nil {
		return err
	}

	records, nextID, err := s.backend.Load(ctx, username)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = username
	if err != nil {
		s.records = nil
		s.nextID = 1
		slog.ErrorContext(ctx, "Backend load failed, starting with empty collection",
			"backend", s.backend.Name(), "username", username, "error", err)
		return fmt.Errorf("load user data: %w", err)
	}
	s.records = records
	s.nextID = nextID
	if s.nextID < 1 {
		s.nextID = 1
	}
	return nil
}

// Username returns the user the store is currently bound to.
func (s *Store) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

// AddTournament validates the input, assigns a fresh id, computes NetProfit
// and persists the grown collection. The in-memory append is rolled back when
// the backend write fails.
func (s *Store) AddTournament(ctx context.Context, in core.TournamentInput) (core.Tournament, error) {
	if err := in.Validate(); err != nil {
		return core.Tournament{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := in.Materialize(s.nextID)
	prevNext := s.nextID
	err := s.commitLocked(ctx,
		func() {
			s.records = append(s.records, rec)
			s.nextID++
		},
		func() {
			s.records = s.records[:len(s.records)-1]
			s.nextID = prevNext
		})
	if err != nil {
		return core.Tournament{}, err
	}
	return rec, nil
}

// UpdateTournament replaces the editable fields of the record with the given
// id, keeping the id and recomputing NetProfit. Returns ErrNotFound when the
// id is absent; rolls the in-memory change back on persistence failure.
func (s *Store) UpdateTournament(ctx context.Context, id int64, in core.TournamentInput) error {
	if err := in.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfLocked(id)
	if idx < 0 {
		return ErrNotFound
	}
	previous := s.records[idx]
	return s.commitLocked(ctx,
		func() { s.records[idx] = in.Materialize(id) },
		func() { s.records[idx] = previous })
}

// DeleteTournament removes the record with the given id. Returns ErrNotFound
// when absent; rolls the removal back on persistence failure.
func (s *Store) DeleteTournament(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfLocked(id)
	if idx < 0 {
		return ErrNotFound
	}
	removed := s.records[idx]
	return s.commitLocked(ctx,
		func() { s.records = append(s.records[:idx], s.records[idx+1:]...) },
		func() {
			s.records = append(s.records[:idx], append([]core.Tournament{removed}, s.records[idx:]...)...)
		})
}

// GetTournament looks a record up by id. The second return is false when the
// id is absent; lookups never fail.
func (s *Store) GetTournament(id int64) (core.Tournament, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOfLocked(id)
	if idx < 0 {
		return core.Tournament{}, false
	}
	return s.records[idx], true
}

// GetAllTournaments returns a defensive copy sorted by date descending, most
// recent first. Same-day sessions keep insertion order.
func (s *Store) GetAllTournaments() []core.Tournament {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.SortByDateDesc(s.records)
}

// GetStatistics delegates to the statistics engine over the current
// collection. An empty collection yields the documented zero summary.
func (s *Store) GetStatistics() core.Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.ComputeStatistics(s.records)
}

// GetTrendData returns the cumulative-profit series, date ascending.
func (s *Store) GetTrendData() []core.TrendPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.TrendSeries(s.records)
}

func (s *Store) indexOfLocked(id int64) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

// commitLocked runs one optimistic mutation: apply in memory, persist, revert
// on failure. Every successful mutation is exactly one Save and one
// notification.
func (s *Store) commitLocked(ctx context.Context, apply, revert func()) error {
	apply()
	if err := s.persistLocked(ctx); err != nil {
		revert()
		return err
	}
	s.notifyLocked(ctx)
	return nil
}

// persistLocked writes the full collection through the backend. Called with
// the mutex held; the caller reverts the in-memory change on error.
func (s *Store) persistLocked(ctx context.Context) error {
	snapshot := make([]core.Tournament, len(s.records))
	copy(snapshot, s.records)
	if err := s.backend.Save(ctx, s.username, snapshot, s.nextID); err != nil {
		slog.ErrorContext(ctx, "Backend save failed, rolling back",
			"backend", s.backend.Name(), "username", s.username, "error", err)
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
	return nil
}

// notifyLocked broadcasts the post-mutation collection to every listener.
func (s *Store) notifyLocked(ctx context.Context) {
	snapshot := make([]core.Tournament, len(s.records))
	copy(snapshot, s.records)
	for _, fn := range s.listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.ErrorContext(ctx, "Data change listener panicked", "panic", r)
				}
			}()
			fn(snapshot)
		}()
	}
}
