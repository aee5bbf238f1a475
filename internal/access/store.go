// Package access implements the gateway's session and permission layer:
// login, session resume, logout, permission checks and menu filtering.
package access

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/arsipak/admin-bff-go/internal/domain"
)

// Session binds a gateway token to its upstream credential and the user's
// UI preferences. The upstream token never leaves the gateway.
type Session struct {
	ID            string             `json:"id"`
	UpstreamToken string             `json:"upstream_token"`
	Username      string             `json:"username"`
	CreatedAt     time.Time          `json:"created_at"`
	Preferences   domain.Preferences `json:"preferences"`
}

// Store persists sessions across requests. Implementations must be safe
// for concurrent use.
type Store interface {
	Put(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	Len(ctx context.Context) (int, error)
}

// MemoryStore keeps sessions in process memory. Restarting the gateway
// logs everyone out.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

func (m *MemoryStore) Put(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "session", ID: id}
	}
	return &s, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) Len(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions), nil
}

// FileStore persists sessions to a JSON file so logins survive restarts.
// Every mutation rewrites the file; session churn is low enough that this
// is fine.
type FileStore struct {
	mu       sync.Mutex
	path     string
	sessions map[string]Session
}

// NewFileStore loads (or creates) the session file at path.
func NewFileStore(path string) (*FileStore, error) {
	fs := &FileStore{path: path, sessions: make(map[string]Session)}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fs, nil
	}
	if err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &fs.sessions); err != nil {
			return nil, err
		}
	}
	return fs, nil
}

func (f *FileStore) Put(_ context.Context, s Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.ID] = s
	return f.flush()
}

func (f *FileStore) Get(_ context.Context, id string) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "session", ID: id}
	}
	return &s, nil
}

func (f *FileStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[id]; !ok {
		return nil
	}
	delete(f.sessions, id)
	return f.flush()
}

func (f *FileStore) Len(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions), nil
}

// flush writes the session map atomically via a temp file rename.
// Caller must hold the lock.
func (f *FileStore) flush() error {
	raw, err := json.MarshalIndent(f.sessions, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
