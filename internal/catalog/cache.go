package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kozaktomas/style-genie/internal/log"
)

const cacheKeyPrefix = "catalog:"

// NewRedisClient connects to Redis and pings it. A failed ping is returned so
// the caller can decide to run without the cache.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	log.Info(log.Fields{"addr": addr}, "Connecting to Redis")

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", addr, err)
	}
	return client, nil
}

// CachedReader is a read-through Redis cache in front of a Reader.
// Cache failures never fail a read; they fall through to the backing store.
type CachedReader struct {
	next   Reader
	client redis.UniversalClient
	ttl    time.Duration
}

// NewCachedReader wraps next with a cache whose entries expire after ttl.
func NewCachedReader(next Reader, client redis.UniversalClient, ttl time.Duration) *CachedReader {
	return &CachedReader{next: next, client: client, ttl: ttl}
}

func (c *CachedReader) QueryByShapeAndGender(ctx context.Context, shapes []string, genders []Gender) ([]HairstyleAsset, error) {
	key := cacheKeyPrefix + "query:" + normalizedKey(shapes) + ":" + normalizedKey(gendersToStrings(genders))
	return c.cached(ctx, key, func() ([]HairstyleAsset, error) {
		return c.next.QueryByShapeAndGender(ctx, shapes, genders)
	})
}

func (c *CachedReader) CatalogExcerpt(ctx context.Context, limit int) ([]HairstyleAsset, error) {
	key := fmt.Sprintf("%sexcerpt:%d", cacheKeyPrefix, limit)
	return c.cached(ctx, key, func() ([]HairstyleAsset, error) {
		return c.next.CatalogExcerpt(ctx, limit)
	})
}

func (c *CachedReader) ListAll(ctx context.Context) ([]HairstyleAsset, error) {
	return c.cached(ctx, cacheKeyPrefix+"all", func() ([]HairstyleAsset, error) {
		return c.next.ListAll(ctx)
	})
}

// Get is not cached; single lookups are cheap and must reflect fresh inserts.
func (c *CachedReader) Get(ctx context.Context, id int64) (*HairstyleAsset, error) {
	return c.next.Get(ctx, id)
}

// Invalidate drops every cached catalog entry.
func (c *CachedReader) Invalidate(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, cacheKeyPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("scanning cache keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("deleting cache keys: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (c *CachedReader) cached(ctx context.Context, key string, load func() ([]HairstyleAsset, error)) ([]HairstyleAsset, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var assets []HairstyleAsset
		if jerr := json.Unmarshal(raw, &assets); jerr == nil {
			return assets, nil
		}
		log.Warn(log.Fields{"key": key}, "Discarding unreadable catalog cache entry")
	case errors.Is(err, redis.Nil):
	default:
		log.Warn(log.Fields{"key": key, "error": err}, "Catalog cache read failed")
	}

	assets, err := load()
	if err != nil {
		return nil, err
	}

	if data, jerr := json.Marshal(assets); jerr == nil {
		if serr := c.client.Set(ctx, key, data, c.ttl).Err(); serr != nil {
			log.Warn(log.Fields{"key": key, "error": serr}, "Catalog cache write failed")
		}
	}
	return assets, nil
}

func normalizedKey(values []string) string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(strings.TrimSpace(v)))
	}
	slices.Sort(out)
	return strings.Join(slices.Compact(out), ",")
}

func gendersToStrings(genders []Gender) []string {
	out := make([]string, len(genders))
	for i, g := range genders {
		out[i] = string(g)
	}
	return out
}
