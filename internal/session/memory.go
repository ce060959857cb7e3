package session

import (
    "context"
    "sync"
    "time"

    "github.com/iliyamo/mission-dashboard/internal/utils"
)

type memEntry struct {
    token string
    exp   time.Time
}

// MemoryStore keeps tokens in process memory.  Sessions do not survive a
// restart; it is the default for development and the store used in tests.
type MemoryStore struct {
    mu      sync.Mutex
    entries map[string]memEntry
    now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
    return &MemoryStore{entries: map[string]memEntry{}, now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, token string, ttl time.Duration) (string, error) {
    h, err := utils.NewSessionID()
    if err != nil {
        return "", err
    }
    s.mu.Lock()
    s.entries[h] = memEntry{token: token, exp: s.now().Add(ttl)}
    s.mu.Unlock()
    return h, nil
}

func (s *MemoryStore) Load(_ context.Context, handle string) (string, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    e, ok := s.entries[handle]
    if !ok {
        return "", ErrNotFound
    }
    if !s.now().Before(e.exp) {
        delete(s.entries, handle)
        return "", ErrNotFound
    }
    return e.token, nil
}

func (s *MemoryStore) Delete(_ context.Context, handle string) error {
    s.mu.Lock()
    delete(s.entries, handle)
    s.mu.Unlock()
    return nil
}

// Purge drops expired entries that were never loaded again and returns how
// many were removed.
func (s *MemoryStore) Purge() int {
    s.mu.Lock()
    defer s.mu.Unlock()
    now := s.now()
    n := 0
    for h, e := range s.entries {
        if !now.Before(e.exp) {
            delete(s.entries, h)
            n++
        }
    }
    return n
}
