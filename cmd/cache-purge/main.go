package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pscheid92/reviewpulse/internal/adapter/redis"
	"github.com/pscheid92/reviewpulse/internal/domain"
	"github.com/pscheid92/reviewpulse/internal/platform/logging"
)

func main() {
	var (
		redisURL = flag.String("redis", os.Getenv("REDIS_URL"), "Redis URL (or set REDIS_URL env)")
		schemaID = flag.String("keep-schema", domain.DefaultSchema.ID, "Aspect schema whose cached predictions are kept")
		dryRun   = flag.Bool("dry-run", false, "Dry run mode (don't delete anything)")
		verbose  = flag.Bool("verbose", false, "Verbose logging")
	)
	flag.Parse()

	if *redisURL == "" {
		log.Fatal("Redis URL required (--redis or REDIS_URL env)")
	}

	logLevel := "info"
	if *verbose {
		logLevel = "debug"
	}
	logging.InitLogger(logLevel, "text")

	ctx := context.Background()
	rdb, err := redis.NewClient(ctx, *redisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() { _ = rdb.Close() }()
	slog.Info("Connected to Redis", "url", sanitizeURL(*redisURL))

	start := time.Now()
	slog.Info("Starting purge", "keep_schema", *schemaID, "dry_run", *dryRun)

	stats, err := redis.PurgeStaleSchemas(ctx, rdb, *schemaID, *dryRun)
	if err != nil {
		log.Fatalf("Purge failed: %v", err)
	}

	slog.Info("Purge summary",
		"scanned", stats.Scanned,
		"kept", stats.Kept,
		"deleted", stats.Deleted,
		"dry_run", *dryRun,
		"duration_ms", time.Since(start).Milliseconds())
}

func sanitizeURL(url string) string {
	// Hide password in Redis URL for logging
	if strings.Contains(url, "@") {
		parts := strings.Split(url, "@")
		if len(parts) == 2 {
			credParts := strings.Split(parts[0], ":")
			if len(credParts) >= 2 {
				return credParts[0] + ":***@" + parts[1]
			}
		}
	}
	return url
}
