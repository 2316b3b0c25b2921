package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"htmx-tictactoe/models"
)

var ErrSessionNotFound = errors.New("session not found")

// Store keeps sessions between requests. Update must serialise concurrent
// read-modify-write cycles on the same session and increments Version on
// every commit.
type Store interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Update(ctx context.Context, id string, fn func(session *models.Session) error) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

// NewSessionID creates a unique session identifier
func NewSessionID() string {
	return uuid.NewString()
}

// NewSession returns a session holding a fresh game and the given view.
func NewSession(view models.ViewState) *models.Session {
	return &models.Session{
		ID:        NewSessionID(),
		State:     NewState(),
		View:      view,
		UpdatedAt: time.Now(),
	}
}

// MemoryStore is a process-local Store. Sessions idle for longer than ttl
// are dropped on the next access.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*models.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (that *MemoryStore) Create(_ context.Context, session *models.Session) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.sweep()

	if _, exists := that.sessions[session.ID]; exists {
		return fmt.Errorf("session %s already exists", session.ID)
	}

	stored := *session
	stored.UpdatedAt = that.now()
	that.sessions[session.ID] = &stored
	return nil
}

func (that *MemoryStore) Get(_ context.Context, id string) (*models.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.lookup(id)
	if !ok {
		return nil, ErrSessionNotFound
	}

	found := *session
	return &found, nil
}

func (that *MemoryStore) Update(_ context.Context, id string, fn func(session *models.Session) error) (*models.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.lookup(id)
	if !ok {
		return nil, ErrSessionNotFound
	}

	updated := *session
	if err := fn(&updated); err != nil {
		return nil, err
	}

	updated.Version++
	updated.UpdatedAt = that.now()
	that.sessions[id] = &updated

	result := updated
	return &result, nil
}

func (that *MemoryStore) Delete(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(that.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (that *MemoryStore) Len() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.sweep()
	return len(that.sessions)
}

// lookup must be called with mu held.
func (that *MemoryStore) lookup(id string) (*models.Session, bool) {
	session, ok := that.sessions[id]
	if !ok {
		return nil, false
	}
	if that.expired(session) {
		delete(that.sessions, id)
		return nil, false
	}
	return session, true
}

func (that *MemoryStore) sweep() {
	for id, session := range that.sessions {
		if that.expired(session) {
			delete(that.sessions, id)
		}
	}
}

func (that *MemoryStore) expired(session *models.Session) bool {
	return that.ttl > 0 && that.now().Sub(session.UpdatedAt) > that.ttl
}
