package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable is returned when no Redis client is configured.
var ErrUnavailable = errors.New("redis unavailable")

const revokedPrefix = "blacklist:"

// Revocations stores the ids of tokens that were logged out before expiry.
type Revocations struct {
	rdb *redis.Client
}

func NewRevocations(rdb *redis.Client) *Revocations {
	return &Revocations{rdb: rdb}
}

// Enabled reports whether revocations can be recorded.
func (r *Revocations) Enabled() bool {
	return r != nil && r.rdb != nil
}

// Revoke marks tokenID as revoked until expiresAt. Already-expired tokens
// are ignored because verification rejects them anyway.
func (r *Revocations) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if !r.Enabled() {
		return ErrUnavailable
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, revokedPrefix+tokenID, "1", ttl).Err()
}

// IsRevoked reports whether tokenID was revoked. Without Redis nothing is
// ever revoked.
func (r *Revocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if !r.Enabled() || tokenID == "" {
		return false, nil
	}
	n, err := r.rdb.Exists(ctx, revokedPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
