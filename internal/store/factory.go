package store

import (
	crand "crypto/rand"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rcliao/studylog/internal/model"
)

// Factory builds new entries, assigning the id and creation time.
type Factory struct {
	random io.Reader
	now    func() time.Time

	mu       sync.Mutex
	fallback *rand.Rand
}

// NewFactory returns a factory drawing ids from crypto/rand.
func NewFactory() *Factory {
	return &Factory{
		random:   crand.Reader,
		now:      time.Now,
		fallback: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// New creates an entry from user-supplied fields. Fields are used verbatim;
// rejecting empty text or translation is the caller's job.
func (f *Factory) New(text, translation string, typ model.EntryType, notes string) model.StudyEntry {
	return model.StudyEntry{
		ID:          f.newID(),
		Text:        text,
		Translation: translation,
		Type:        typ,
		Date:        f.now().UTC(),
		Notes:       notes,
	}
}

// newID returns a random UUID, or a ULID from the pseudo-random source when
// the system random source is unavailable.
func (f *Factory) newID() string {
	if id, err := uuid.NewRandomFromReader(f.random); err == nil {
		return id.String()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(f.now()), f.fallback).String()
}
