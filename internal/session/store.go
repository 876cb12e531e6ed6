package session

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/spec-kit/crew-auth/internal/config"
)

// ErrNoValue is returned by Store.Load when nothing is stored under the key.
var ErrNoValue = errors.New("session: no stored value")

var keyPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// Store persists opaque blobs under well-known keys. Values are read and
// written whole.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// OpenStore opens the backend selected in the client configuration.
func OpenStore(cfg *config.ClientConfig) (Store, error) {
	switch cfg.SessionBackend {
	case config.SessionBackendFile, "":
		return NewFileStore(cfg.SessionPath)
	case config.SessionBackendSQLite:
		return OpenSQLiteStore(cfg.SessionPath)
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}

func validKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("session: invalid key %q", key)
	}
	return nil
}

// MemoryStore keeps blobs in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, ErrNoValue
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStore) Save(_ context.Context, key string, value []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
