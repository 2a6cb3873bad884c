package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// RevocationList records revoked token IDs until they would have expired
// anyway. Redis backs it when available; otherwise an in-process map.
type RevocationList struct {
	client *redis.Client
	prefix string

	mu    sync.Mutex
	local map[string]time.Time
	now   func() time.Time
}

// NewRevocationList creates a revocation list. client may be nil.
func NewRevocationList(client *redis.Client, prefix string) *RevocationList {
	return &RevocationList{
		client: client,
		prefix: prefix,
		local:  make(map[string]time.Time),
		now:    time.Now,
	}
}

func (l *RevocationList) key(id string) string {
	return fmt.Sprintf("%s:revoked:%s", l.prefix, id)
}

// Revoke marks id as revoked until expiresAt
func (l *RevocationList) Revoke(ctx context.Context, id string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(l.now())
	if ttl <= 0 {
		return nil
	}

	if l.client != nil {
		if err := l.client.Set(ctx, l.key(id), "1", ttl).Err(); err != nil {
			return fmt.Errorf("failed to revoke token: %w", err)
		}
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.local[id] = expiresAt
	l.sweep()
	return nil
}

// IsRevoked reports whether id has been revoked
func (l *RevocationList) IsRevoked(ctx context.Context, id string) (bool, error) {
	if l.client != nil {
		n, err := l.client.Exists(ctx, l.key(id)).Result()
		if err != nil {
			return false, fmt.Errorf("failed to check revocation: %w", err)
		}
		return n > 0, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	exp, ok := l.local[id]
	return ok && l.now().Before(exp), nil
}

// sweep drops expired local entries; callers hold mu
func (l *RevocationList) sweep() {
	now := l.now()
	for id, exp := range l.local {
		if !now.Before(exp) {
			delete(l.local, id)
		}
	}
}
