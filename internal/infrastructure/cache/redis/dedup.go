// Package redis provides the shared deduplication set used when multiple
// workers curate into the same dataset.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/chemforge/smiclean/internal/config"
	"github.com/chemforge/smiclean/pkg/errors"
)

// NewClient builds a redis client from configuration and verifies
// connectivity.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "redis unreachable")
	}
	return client, nil
}

// Deduper implements curation.Deduper on a redis set.  Keys are hashed so
// arbitrarily long SMILES never hit key-size pathologies, and the set name
// is scoped per dataset so independent curations do not interfere.
type Deduper struct {
	client *redis.Client
	setKey string
}

// NewDeduper scopes deduplication to the named dataset.
func NewDeduper(client *redis.Client, keyPrefix, dataset string) *Deduper {
	return &Deduper{
		client: client,
		setKey: fmt.Sprintf("%s:dedup:%s", keyPrefix, dataset),
	}
}

// Mark adds the SMILES to the dataset's seen-set and reports whether it was
// new.  SADD returns the number of members actually added, which is exactly
// the first-time signal.
func (d *Deduper) Mark(ctx context.Context, smiles string) (bool, error) {
	sum := sha256.Sum256([]byte(smiles))
	added, err := d.client.SAdd(ctx, d.setKey, hex.EncodeToString(sum[:])).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "dedup SADD failed")
	}
	return added == 1, nil
}

// Reset drops the dataset's seen-set, for re-curating from scratch.
func (d *Deduper) Reset(ctx context.Context) error {
	if err := d.client.Del(ctx, d.setKey).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "dedup reset failed")
	}
	return nil
}
