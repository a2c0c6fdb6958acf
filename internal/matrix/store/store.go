// Package store owns the canonical in-memory matrix state and the outbox of
// pending local changes. Mutations update local state and append an outbox
// entry synchronously; Flush drains the outbox to the remote store; a
// Scheduler drives periodic refreshes from it.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/creativeops/matrixsync/internal/logging"
	"github.com/creativeops/matrixsync/internal/matrix/models"
)

// Transport is the authenticated remote-store client the store flushes
// through. *sheets.Client satisfies it.
type Transport interface {
	Values(ctx context.Context, sheet string) ([][]string, error)
	Update(ctx context.Context, rng string, rows [][]string) error
	Append(ctx context.Context, sheet string, rows [][]string) error
	Ping(ctx context.Context) error
}

// Store is safe for concurrent use: local mutations are synchronous and
// never touch the network, while Flush and SyncFromRemote suspend on I/O
// without holding the state lock.
type Store struct {
	api Transport
	log logging.Logger
	now func() time.Time

	mu        sync.Mutex
	audiences []models.Audience
	topics    []models.Topic
	messages  []models.Message
	templates []models.Template
	outbox    []models.ChangeEntry
	seq       int64
}

type Option func(*Store)

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock overrides the store's time source, used for change-entry
// timestamps and topic creation dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(api Transport, opts ...Option) *Store {
	s := &Store{
		api: api,
		log: logging.NopLogger{},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// appendChange records a local mutation in the outbox. Callers must hold
// s.mu.
func (s *Store) appendChange(kind models.EntityKind, action models.Action, payload models.ChangePayload) models.ChangeEntry {
	s.seq++
	entry := models.ChangeEntry{
		Seq:       s.seq,
		ID:        uuid.NewString(),
		Timestamp: s.now(),
		Kind:      kind,
		Action:    action,
		Payload:   payload,
	}
	s.outbox = append(s.outbox, entry)
	return entry
}

// Ping probes connectivity and authorization against the remote store.
func (s *Store) Ping(ctx context.Context) error {
	return s.api.Ping(ctx)
}

// Audiences returns a snapshot of the audience collection.
func (s *Store) Audiences() []models.Audience {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Audience, len(s.audiences))
	copy(out, s.audiences)
	return out
}

// Topics returns a snapshot of the topic collection.
func (s *Store) Topics() []models.Topic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Topic, len(s.topics))
	copy(out, s.topics)
	return out
}

// Messages returns a snapshot of all messages, removed ones included.
func (s *Store) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Templates returns a snapshot of the template collection.
func (s *Store) Templates() []models.Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Template, len(s.templates))
	copy(out, s.templates)
	return out
}

// MessagesForCell returns the messages of one (topic, audience) cell,
// excluding removed ones.
func (s *Store) MessagesForCell(topicKey, audienceKey string) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Message
	for _, m := range s.messages {
		if m.Topic == topicKey && m.Audience == audienceKey && m.Status != models.StatusRemoved {
			out = append(out, m)
		}
	}
	return out
}

// Outbox returns a snapshot of all change entries, synced ones included.
func (s *Store) Outbox() []models.ChangeEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChangeEntry, len(s.outbox))
	copy(out, s.outbox)
	return out
}

// PendingCount reports how many outbox entries await a successful flush.
func (s *Store) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingCountLocked()
}

func (s *Store) pendingCountLocked() int {
	n := 0
	for _, e := range s.outbox {
		if !e.Synced {
			n++
		}
	}
	return n
}
