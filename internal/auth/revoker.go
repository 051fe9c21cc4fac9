package auth

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultRevokeTTL is used for tokens without an expiry.
	DefaultRevokeTTL = 24 * 7 * time.Hour
	revokedKeyPrefix = "liftdiary-revoked||"
)

// Revoker keeps a deny list of signed-out tokens in redis, until they would expire anyway.
type Revoker struct {
	redisClient *redis.Client
	now         func() time.Time
}

func NewRevoker(redisClient *redis.Client) *Revoker {
	return &Revoker{
		redisClient: redisClient,
		now:         time.Now,
	}
}

func (r *Revoker) Revoke(ctx context.Context, identity *Identity) error {
	ttl := DefaultRevokeTTL
	if !identity.ExpiresAt.IsZero() {
		ttl = identity.ExpiresAt.Sub(r.now())
	}
	if ttl <= 0 {
		log.Tracef("revoke: token for user %s already expired", identity.UserID)
		return nil
	}

	cmd := r.redisClient.Set(ctx, revokedKeyPrefix+identity.TokenID, identity.UserID, ttl)
	return cmd.Err()
}

func (r *Revoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	cmd := r.redisClient.Exists(ctx, revokedKeyPrefix+tokenID)
	if err := cmd.Err(); err != nil {
		return false, err
	}
	return cmd.Val() > 0, nil
}
