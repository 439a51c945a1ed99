package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const importKeyTTL = 24 * time.Hour

// ImportGuard remembers applied bulk imports so a retried upload with the
// same Idempotency-Key is not imported twice.
// Key format: bulkimport:<scope>:<idempotency_key>
type ImportGuard struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewImportGuard wraps the given Redis client.
func NewImportGuard(client redis.Cmdable) *ImportGuard {
	return &ImportGuard{client: client, ttl: importKeyTTL}
}

// Claim atomically reserves key for scope. It returns false when another
// import already holds or applied the key.
func (g *ImportGuard) Claim(ctx context.Context, scope, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(scope, key), time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("import guard claim: %w", err)
	}
	return ok, nil
}

// Release drops a claim whose import did not complete, so the key can be
// retried.
func (g *ImportGuard) Release(ctx context.Context, scope, key string) error {
	if err := g.client.Del(ctx, g.key(scope, key)).Err(); err != nil {
		return fmt.Errorf("import guard release: %w", err)
	}
	return nil
}

func (g *ImportGuard) key(scope, key string) string {
	return fmt.Sprintf("bulkimport:%s:%s", scope, key)
}
