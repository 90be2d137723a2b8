package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrRefreshNotFound = errors.New("refresh token not found or already used")

const refreshKeyPrefix = "eventmanager:refresh:"

// RefreshSession is what the store remembers about an issued refresh token.
type RefreshSession struct {
	UserID    string `json:"user_id"`
	TokenHash string `json:"token_hash"`
}

// RefreshStore keeps one redis key per live refresh token, expiring with it.
// Consume is single use, which is what makes rotation safe.
type RefreshStore struct {
	rdb *redis.Client
}

func NewRefreshStore(rdb *redis.Client) *RefreshStore {
	return &RefreshStore{rdb: rdb}
}

func key(jti string) string { return refreshKeyPrefix + jti }

func (s *RefreshStore) Save(ctx context.Context, jti string, sess RefreshSession, ttl time.Duration) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, key(jti), b, ttl).Err(); err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

// Consume atomically reads and deletes the session for jti.
func (s *RefreshStore) Consume(ctx context.Context, jti string) (RefreshSession, error) {
	raw, err := s.rdb.GetDel(ctx, key(jti)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return RefreshSession{}, ErrRefreshNotFound
		}
		return RefreshSession{}, fmt.Errorf("consume refresh token: %w", err)
	}

	var sess RefreshSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return RefreshSession{}, fmt.Errorf("decode refresh session: %w", err)
	}
	return sess, nil
}

func (s *RefreshStore) Revoke(ctx context.Context, jti string) error {
	return s.rdb.Del(ctx, key(jti)).Err()
}
