package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultSignatureTTL = 24 * time.Hour

// SignatureGuard remembers order signatures for a TTL so a resubmitted order
// can be rejected.
// Key format: order:sig:<sha256(signature)>
type SignatureGuard struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewSignatureGuard uses a 24h TTL when ttl is not positive.
func NewSignatureGuard(client redis.Cmdable, ttl time.Duration) *SignatureGuard {
	if ttl <= 0 {
		ttl = defaultSignatureTTL
	}
	return &SignatureGuard{client: client, ttl: ttl}
}

// Claim reports false when the signature is already held.
func (g *SignatureGuard) Claim(ctx context.Context, signature string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(signature), "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("signature claim: %w", err)
	}
	return ok, nil
}

// Release drops a claim whose order was never committed.
func (g *SignatureGuard) Release(ctx context.Context, signature string) error {
	if err := g.client.Del(ctx, g.key(signature)).Err(); err != nil {
		return fmt.Errorf("signature release: %w", err)
	}
	return nil
}

func (g *SignatureGuard) key(signature string) string {
	sum := sha256.Sum256([]byte(signature))
	return "order:sig:" + hex.EncodeToString(sum[:])
}
