// Package store holds the in-memory entry collection and the pure views derived from it.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rcliao/studylog/internal/kv"
	"github.com/rcliao/studylog/internal/model"
	"go.uber.org/zap"
)

// DeletePrompt is the question put to the Confirmer before a delete.
const DeletePrompt = "Are you sure you want to delete this entry?"

// ErrNotConfirmed is returned by Remove when the confirmer declines.
var ErrNotConfirmed = errors.New("delete not confirmed")

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Store is the authoritative, newest-first collection of study entries.
// Every mutation writes the whole collection to the backing kv.Store before returning.
type Store struct {
	mu      sync.RWMutex
	backend kv.Store
	key     string
	entries []model.StudyEntry
	logger  *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the kv key holding the collection.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithLogger sets the logger used for background failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns an empty store backed by backend. Call Load to read persisted state.
func New(backend kv.Store, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		key:     kv.DefaultKey,
		entries: []model.StudyEntry{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted collection once. A missing, unreadable or
// unparsable value leaves the collection empty; the failure is logged only.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = []model.StudyEntry{}

	raw, found, err := s.backend.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("failed to read saved data", zap.String("key", s.key), zap.Error(err))
		return
	}
	if !found {
		return
	}

	var entries []model.StudyEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		s.logger.Warn("failed to parse saved data", zap.String("key", s.key), zap.Error(err))
		return
	}
	if entries != nil {
		s.entries = entries
	}
	s.logger.Debug("loaded entries", zap.Int("count", len(s.entries)))
}

// Entries returns a copy of the collection in canonical order.
func (s *Store) Entries() []model.StudyEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.StudyEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Find returns the first entry with the given id.
func (s *Store) Find(id string) (model.StudyEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return model.StudyEntry{}, false
}

// Len returns the size of the unfiltered collection.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Add prepends e and persists.
func (s *Store) Add(ctx context.Context, e model.StudyEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]model.StudyEntry, 0, len(s.entries)+1)
	next = append(next, e)
	next = append(next, s.entries...)
	s.entries = next

	return s.persist(ctx)
}

// Remove deletes the first entry with the given id after the confirmer agrees.
// A declined confirmation returns ErrNotConfirmed; an unknown id returns false.
func (s *Store) Remove(ctx context.Context, id string, c Confirmer) (bool, error) {
	// The confirmer may block on the user; never hold the lock across it.
	if c == nil || !c.Confirm(DeletePrompt) {
		return false, ErrNotConfirmed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, e := range s.entries {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	next := make([]model.StudyEntry, 0, len(s.entries)-1)
	next = append(next, s.entries[:idx]...)
	next = append(next, s.entries[idx+1:]...)
	s.entries = next

	if err := s.persist(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// ReplaceAll swaps in entries wholesale and persists. No validation is done.
func (s *Store) ReplaceAll(ctx context.Context, entries []model.StudyEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]model.StudyEntry, len(entries))
	copy(next, entries)
	s.entries = next

	return s.persist(ctx)
}

// Import parses an export file and replaces the collection with its contents.
// On any parse error the current collection is kept.
func (s *Store) Import(ctx context.Context, data []byte) (int, error) {
	entries, err := ParseImport(data)
	if err != nil {
		return 0, err
	}
	if err := s.ReplaceAll(ctx, entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Export serializes the current collection for download.
func (s *Store) Export() ([]byte, error) {
	return Export(s.Entries())
}

// View returns the entries matching query and category.
func (s *Store) View(query, category string) []model.StudyEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Filter(s.entries, query, category)
}

// Activity returns the chart points for the windowDays days ending at ref.
func (s *Store) Activity(windowDays int, ref time.Time) []model.ChartDataPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Aggregate(s.entries, windowDays, ref)
}

// Stats returns the quick stats relative to ref.
func (s *Store) Stats(ref time.Time) model.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ComputeStats(s.entries, ref)
}

// persist writes the full collection. Caller holds s.mu.
func (s *Store) persist(ctx context.Context) error {
	b, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}
	if err := s.backend.Set(ctx, s.key, string(b)); err != nil {
		return fmt.Errorf("persist entries: %w", err)
	}
	return nil
}
