package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLockTTL = 30 * time.Second

// releaseScript deletes the key only if it still holds our token, so an
// expired lock re-acquired by another reviewer is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ReviewLock serialises approve/reject of one application across API
// instances. Key format: review:<application_id>
type ReviewLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReviewLock creates a ReviewLock. A ttl <= 0 uses defaultLockTTL.
func NewReviewLock(client *redis.Client, ttl time.Duration) *ReviewLock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &ReviewLock{client: client, ttl: ttl}
}

// Acquire reports whether the lock was taken and returns the holder token
// that Release needs. The lock expires after the TTL even if Release is never
// called.
func (l *ReviewLock) Acquire(ctx context.Context, applicationID string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key(applicationID), token, l.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire review lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release drops the lock if it is still held under token. A lock that has
// expired or passed to another holder is left alone.
func (l *ReviewLock) Release(ctx context.Context, applicationID, token string) error {
	if token == "" {
		return nil
	}
	if err := releaseScript.Run(ctx, l.client, []string{l.key(applicationID)}, token).Err(); err != nil {
		return fmt.Errorf("release review lock: %w", err)
	}
	return nil
}

func (l *ReviewLock) key(applicationID string) string {
	return "review:" + applicationID
}
