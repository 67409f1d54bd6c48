package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	goredis "github.com/redis/go-redis/v9"
)

const purgeScanCount = 100

// PurgeStats summarizes a stale-schema purge run.
type PurgeStats struct {
	Scanned int
	Kept    int
	Deleted int
}

// PurgeStaleSchemas deletes cached predictions written for any aspect schema
// other than keepSchemaID. Entries expire on their own; a purge reclaims the
// memory right after a schema rollout. With dryRun set nothing is deleted
// and Deleted counts what would have been.
func PurgeStaleSchemas(ctx context.Context, rdb goredis.Cmdable, keepSchemaID string, dryRun bool) (PurgeStats, error) {
	var stats PurgeStats
	keep := predictionKey(keepSchemaID + ":")

	var cursor uint64
	for {
		keys, next, err := rdb.Scan(ctx, cursor, predictionKey("*"), purgeScanCount).Result()
		if err != nil {
			return stats, fmt.Errorf("scan failed: %w", err)
		}

		var stale []string
		for _, key := range keys {
			stats.Scanned++
			if strings.HasPrefix(key, keep) {
				stats.Kept++
				continue
			}
			slog.Debug("Stale prediction entry", "key", key)
			stale = append(stale, key)
		}

		if len(stale) > 0 && !dryRun {
			if err := rdb.Unlink(ctx, stale...).Err(); err != nil {
				return stats, fmt.Errorf("unlink failed: %w", err)
			}
		}
		stats.Deleted += len(stale)

		cursor = next
		if cursor == 0 {
			return stats, nil
		}
	}
}
