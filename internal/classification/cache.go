package classification

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// SnapshotCacheTTL bounds how long a snapshot listing is served from cache.
// Snapshots for a past date range are stable upstream, so a long TTL is safe;
// the TTL mostly limits Redis memory, not staleness.
var SnapshotCacheTTL = time.Hour

const snapshotKeyPrefix = "classification:snapshot:"

// CachedLookup layers a Redis snapshot cache over another Lookup. Cache
// failures degrade to a direct fetch and are logged, never surfaced:
// enrichment must not depend on cache availability.
//
// Classification lookups (statistical units) pass through uncached; their
// payload is mutable upstream and the aggregator needs current data.
type CachedLookup struct {
	next   Lookup
	client *redis.Client
	logger *slog.Logger
}

// NewCachedLookup wraps next with a Redis snapshot cache.
func NewCachedLookup(next Lookup, client *redis.Client, logger *slog.Logger) *CachedLookup {
	return &CachedLookup{next: next, client: client, logger: logger}
}

func (c *CachedLookup) Classification(ctx context.Context, classificationID string) (*Classification, error) {
	return c.next.Classification(ctx, classificationID)
}

func (c *CachedLookup) Snapshot(ctx context.Context, query SnapshotQuery) (*Snapshot, error) {
	key := snapshotKeyPrefix + query.Path()

	cached, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var snapshot Snapshot
		if err := json.Unmarshal(cached, &snapshot); err == nil {
			return &snapshot, nil
		}
		c.logger.WarnContext(ctx, "discarding undecodable cached snapshot", "key", key)
	} else if err != redis.Nil {
		c.logger.WarnContext(ctx, "snapshot cache read failed", "key", key, "error", err.Error())
	}

	snapshot, err := c.next.Snapshot(ctx, query)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(snapshot); err == nil {
		if err := c.client.Set(ctx, key, payload, SnapshotCacheTTL).Err(); err != nil {
			c.logger.WarnContext(ctx, "snapshot cache write failed", "key", key, "error", err.Error())
		}
	}
	return snapshot, nil
}
