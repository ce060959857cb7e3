// Package session keeps the bearer token of each browser session on the
// server side.  The browser only holds an opaque handle in a cookie; the
// Store behind it decides where the token actually lives.
package session

import (
    "context"
    "errors"
    "fmt"
    "sync"
    "time"

    "github.com/iliyamo/mission-dashboard/internal/utils"
)

// ErrNotFound is returned by Store.Load for unknown, expired or revoked
// handles.
var ErrNotFound = errors.New("session not found")

// Store persists session tokens.  Save returns the handle to put in the
// cookie.
type Store interface {
    Save(ctx context.Context, token string, ttl time.Duration) (string, error)
    Load(ctx context.Context, handle string) (string, error)
    Delete(ctx context.Context, handle string) error
}

// Manager hands out Sessions backed by one Store.
type Manager struct {
    Store Store
    TTL   time.Duration
    now   func() time.Time
}

func NewManager(store Store, ttl time.Duration) *Manager {
    return &Manager{Store: store, TTL: ttl, now: time.Now}
}

// Resume returns the session for a cookie handle; an empty handle gives an
// anonymous session.
func (m *Manager) Resume(handle string) *Session {
    return &Session{mgr: m, handle: handle}
}

// Session is the token store of one browser.  It satisfies
// client.TokenStore.
type Session struct {
    mgr    *Manager
    mu     sync.Mutex
    handle string
}

// Handle returns the cookie value, "" once the token has been cleared.
func (s *Session) Handle() string {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.handle
}

// HasHandle reports whether the browser presented a session cookie.  It
// does not check that the token behind it is still valid.
func (s *Session) HasHandle() bool {
    return s.Handle() != ""
}

func (s *Session) Token(ctx context.Context) (string, error) {
    h := s.Handle()
    if h == "" {
        return "", nil
    }
    tok, err := s.mgr.Store.Load(ctx, h)
    if errors.Is(err, ErrNotFound) {
        return "", nil
    }
    if err != nil {
        return "", fmt.Errorf("load session: %w", err)
    }
    return tok, nil
}

// SetToken stores token under a fresh handle, dropping the previous one.
func (s *Session) SetToken(ctx context.Context, token string) error {
    ttl := utils.SessionTTL(token, s.mgr.TTL, s.mgr.now())
    if ttl <= 0 {
        return errors.New("token already expired")
    }
    h, err := s.mgr.Store.Save(ctx, token, ttl)
    if err != nil {
        return fmt.Errorf("save session: %w", err)
    }
    s.mu.Lock()
    old := s.handle
    s.handle = h
    s.mu.Unlock()
    if old != "" && old != h {
        _ = s.mgr.Store.Delete(ctx, old)
    }
    return nil
}

func (s *Session) ClearToken(ctx context.Context) error {
    s.mu.Lock()
    old := s.handle
    s.handle = ""
    s.mu.Unlock()
    if old == "" {
        return nil
    }
    if err := s.mgr.Store.Delete(ctx, old); err != nil {
        return fmt.Errorf("delete session: %w", err)
    }
    return nil
}
