package utils // package utils provides helpers for session ids and bearer tokens

import (
    "crypto/rand"   // secure random number generation
    "crypto/sha256" // SHA‑256 hashing for session ids
    "encoding/hex"  // hex encoding
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library, used here only to read claims
)

// NewSessionID returns a random 32‑byte id encoded as hex (64 chars).  It is
// the opaque value placed in the session cookie.
func NewSessionID() (string, error) {
    return randomHex(32)
}

// HashSessionID returns the SHA‑256 hex digest of a session id.  Stores
// that persist sessions key them by this hash so that a leaked table does
// not expose live cookies.
func HashSessionID(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}

// Fingerprint is a short SHA‑256 prefix of s, used where a value such as
// an email address must be told apart without being stored.
func Fingerprint(s string) string {
    return HashSessionID(s)[:16]
}

// TokenExpiry reads the "exp" claim of a JWT bearer token without verifying
// its signature (the signing key belongs to the remote API).  ok is false
// when the token is not a JWT or carries no expiry.
func TokenExpiry(token string) (exp time.Time, ok bool) {
    claims := jwt.MapClaims{}
    if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
        return time.Time{}, false
    }
    at, err := claims.GetExpirationTime()
    if err != nil || at == nil {
        return time.Time{}, false
    }
    return at.Time, true
}

// SessionTTL bounds the configured session lifetime by the token's own
// expiry.  A token that is already expired yields 0.
func SessionTTL(token string, max time.Duration, now time.Time) time.Duration {
    exp, ok := TokenExpiry(token)
    if !ok {
        return max
    }
    left := exp.Sub(now)
    if left <= 0 {
        return 0
    }
    if max > 0 && left > max {
        return max
    }
    return left
}

func randomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
