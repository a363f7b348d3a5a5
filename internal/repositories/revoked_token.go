package repositories

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-auth-manager/internal/logger"
)

const revokedTokenKeyPrefix = "revoked_token:"

// RevokedTokenRepository keeps revoked token ids in Redis until they expire.
type RevokedTokenRepository struct {
	client *redis.Client
}

// NewRevokedTokenRepository creates a new repository instance.
func NewRevokedTokenRepository(client *redis.Client) *RevokedTokenRepository {
	return &RevokedTokenRepository{client: client}
}

// Revoke marks a token id as revoked for ttl.
func (r *RevokedTokenRepository) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	key := revokedTokenKeyPrefix + tokenID
	err := r.client.Set(ctx, key, time.Now().Unix(), ttl).Err()

	logger.Log.Debugw(
		"revoke", "key", key,
		"ttl", ttl,
		"error", err,
	)

	return err
}

// IsRevoked reports whether a token id has been revoked.
func (r *RevokedTokenRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	key := revokedTokenKeyPrefix + tokenID
	n, err := r.client.Exists(ctx, key).Result()

	logger.Log.Debugw(
		"is_revoked", "key", key,
		"result", n,
		"error", err,
	)

	if err != nil {
		return false, err
	}
	return n > 0, nil
}
