package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRevoker keeps a blocklist of logged-out token JTIs. Entries expire
// together with the token itself, so the set never needs cleanup. With no
// redis client the revoker is a no-op and logout stays stateless.
type TokenRevoker struct {
	rdb *redis.Client
}

func NewTokenRevoker(rdb *redis.Client) *TokenRevoker {
	return &TokenRevoker{rdb: rdb}
}

func (r *TokenRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if r.rdb == nil || jti == "" {
		return nil
	}
	return r.rdb.Set(ctx, r.key(jti), "revoked", ttl).Err()
}

func (r *TokenRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if r.rdb == nil || jti == "" {
		return false, nil
	}

	n, err := r.rdb.Exists(ctx, r.key(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *TokenRevoker) key(jti string) string {
	return fmt.Sprintf("revoked_token:%s", jti)
}
