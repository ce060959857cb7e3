package session

import (
    "context"
    "crypto/rand"
    "encoding/base64"
    "encoding/binary"
    "errors"
    "time"

    "golang.org/x/crypto/nacl/secretbox"
)

// CookieStore keeps no server state: the handle is the token itself, sealed
// with NaCl secretbox together with its expiry.  Delete cannot revoke a
// copied cookie; the expiry bounds its life.
type CookieStore struct {
    key *[32]byte
    now func() time.Time
}

// NewCookieStore requires a 32‑byte secret.
func NewCookieStore(secret []byte) (*CookieStore, error) {
    if len(secret) != 32 {
        return nil, errors.New("cookie store: secret must be 32 bytes")
    }
    var k [32]byte
    copy(k[:], secret)
    return &CookieStore{key: &k, now: time.Now}, nil
}

func (s *CookieStore) Save(_ context.Context, token string, ttl time.Duration) (string, error) {
    var nonce [24]byte
    if _, err := rand.Read(nonce[:]); err != nil {
        return "", err
    }
    msg := make([]byte, 8+len(token))
    binary.BigEndian.PutUint64(msg[:8], uint64(s.now().Add(ttl).Unix()))
    copy(msg[8:], token)
    sealed := secretbox.Seal(nonce[:], msg, &nonce, s.key)
    return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (s *CookieStore) Load(_ context.Context, handle string) (string, error) {
    raw, err := base64.RawURLEncoding.DecodeString(handle)
    if err != nil || len(raw) < 24+secretbox.Overhead+8 {
        return "", ErrNotFound
    }
    var nonce [24]byte
    copy(nonce[:], raw[:24])
    msg, ok := secretbox.Open(nil, raw[24:], &nonce, s.key)
    if !ok {
        return "", ErrNotFound
    }
    exp := time.Unix(int64(binary.BigEndian.Uint64(msg[:8])), 0)
    if !s.now().Before(exp) {
        return "", ErrNotFound
    }
    return string(msg[8:]), nil
}

// Delete is a no-op; the caller drops the cookie.
func (s *CookieStore) Delete(context.Context, string) error { return nil }
