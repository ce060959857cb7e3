package session

import (
    "context"
    "errors"
    "time"

    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/mission-dashboard/internal/utils"
)

// RedisStore keeps each token under "<prefix>:<sha256(handle)>" with the
// session TTL, so expiry is handled by Redis itself.
type RedisStore struct {
    rdb    *redis.Client
    prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
    if prefix == "" {
        prefix = "sess"
    }
    return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(handle string) string {
    return s.prefix + ":" + utils.HashSessionID(handle)
}

func (s *RedisStore) Save(ctx context.Context, token string, ttl time.Duration) (string, error) {
    h, err := utils.NewSessionID()
    if err != nil {
        return "", err
    }
    if err := s.rdb.Set(ctx, s.key(h), token, ttl).Err(); err != nil {
        return "", err
    }
    return h, nil
}

func (s *RedisStore) Load(ctx context.Context, handle string) (string, error) {
    tok, err := s.rdb.Get(ctx, s.key(handle)).Result()
    if errors.Is(err, redis.Nil) {
        return "", ErrNotFound
    }
    return tok, err
}

func (s *RedisStore) Delete(ctx context.Context, handle string) error {
    return s.rdb.Del(ctx, s.key(handle)).Err()
}
