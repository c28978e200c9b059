package middlewares

import (
	"context"
	"errors"
	"sync"
	"time"

	"renderbox/pkg/database"
)

const revokedKeyPrefix = "renderbox:revoked:"

// RevocationStore 記錄已登出的 token id
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type redisRevocationStore struct {
	repo database.RedisRepository[bool]
}

// NewRedisRevocationStore revocation backed by redis, keys expire with the token
func NewRedisRevocationStore(repo database.RedisRepository[bool]) RevocationStore {
	return &redisRevocationStore{repo: repo}
}

func (s *redisRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	return s.repo.Set(ctx, revokedKeyPrefix+tokenID, true, ttl)
}

func (s *redisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	v, err := s.repo.Get(ctx, revokedKeyPrefix+tokenID)
	if errors.Is(err, database.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v, nil
}

type memoryRevocationStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewMemoryRevocationStore 單機使用，redis 未啟用時的替代
func NewMemoryRevocationStore() RevocationStore {
	return &memoryRevocationStore{revoked: map[string]time.Time{}, now: time.Now}
}

func (s *memoryRevocationStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, exp := range s.revoked {
		if !exp.After(now) {
			delete(s.revoked, id)
		}
	}
	s.revoked[tokenID] = now.Add(ttl)
	return nil
}

func (s *memoryRevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.revoked[tokenID]
	return ok && exp.After(s.now()), nil
}
