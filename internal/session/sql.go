package session

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/iliyamo/mission-dashboard/internal/utils"
)

// SQLStore persists sessions in a MySQL `sessions` table keyed by the
// SHA‑256 of the handle:
//
//  CREATE TABLE sessions (
//    id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
//    handle_hash CHAR(64)     NOT NULL UNIQUE,
//    token       TEXT         NOT NULL,
//    expires_at  DATETIME     NOT NULL,
//    revoked_at  DATETIME     NULL,
//    created_at  DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP
//  );
type SQLStore struct{ DB *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{DB: db} }

// Save inserts a session row.
func (s *SQLStore) Save(ctx context.Context, token string, ttl time.Duration) (string, error) {
    h, err := utils.NewSessionID()
    if err != nil {
        return "", err
    }
    _, err = s.DB.ExecContext(ctx,
        "INSERT INTO sessions (handle_hash, token, expires_at) VALUES (?,?,?)",
        utils.HashSessionID(h), token, time.Now().UTC().Add(ttl))
    if err != nil {
        return "", err
    }
    return h, nil
}

// Load returns the token of a non-revoked, non-expired session.
func (s *SQLStore) Load(ctx context.Context, handle string) (string, error) {
    var (
        token     string
        expiresAt time.Time
        revokedAt sql.NullTime
    )
    err := s.DB.QueryRowContext(ctx,
        "SELECT token, expires_at, revoked_at FROM sessions WHERE handle_hash=? LIMIT 1",
        utils.HashSessionID(handle)).Scan(&token, &expiresAt, &revokedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return "", ErrNotFound
    }
    if err != nil {
        return "", err
    }
    if revokedAt.Valid || time.Now().UTC().After(expiresAt) {
        return "", ErrNotFound
    }
    return token, nil
}

// Delete marks the session as revoked.
func (s *SQLStore) Delete(ctx context.Context, handle string) error {
    _, err := s.DB.ExecContext(ctx,
        "UPDATE sessions SET revoked_at=NOW() WHERE handle_hash=? AND revoked_at IS NULL",
        utils.HashSessionID(handle))
    return err
}

// PurgeExpired removes rows that expired or were revoked before cutoff.
func (s *SQLStore) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
    res, err := s.DB.ExecContext(ctx,
        "DELETE FROM sessions WHERE expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)",
        cutoff, cutoff)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}
