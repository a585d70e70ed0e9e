// Package bootstrap wires optional infrastructure from configuration so the
// API binary and any future workers share the same construction logic.
package bootstrap

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/triage-ai-platform/internal/config"
	"github.com/wolfman30/triage-ai-platform/internal/intake"
	"github.com/wolfman30/triage-ai-platform/internal/orders"
	"github.com/wolfman30/triage-ai-platform/internal/refdata"
	"github.com/wolfman30/triage-ai-platform/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

// BuildSessionStore returns the order session store: Redis-backed when a
// client is available, in-process otherwise.
func BuildSessionStore(redisClient *redis.Client, logger *logging.Logger) orders.SessionStore {
	if logger == nil {
		logger = logging.Default()
	}
	if redisClient == nil {
		logger.Info("using in-process order session store")
		return orders.NewMemorySessionStore()
	}
	logger.Info("using redis order session store")
	return orders.NewRedisSessionStore(redisClient)
}

// LoadReferenceData loads the reference tables from Postgres when
// DATABASE_URL is set, from the bundled data directory otherwise. openDB
// lets tests inject a prepared *sql.DB.
func LoadReferenceData(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, openDB func(url string) (*sql.DB, error)) (*refdata.Store, error) {
	if logger == nil {
		logger = logging.Default()
	}

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		logger.Info("loading reference data from files", "dir", cfg.DataDir)
		return refdata.LoadFromDir(cfg.DataDir)
	}

	db, err := openDB(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open postgres: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("bootstrap: ping postgres: %w", err)
	}
	logger.Info("loading reference data from postgres")
	return refdata.LoadFromDB(ctx, db)
}

// BuildUploadStore returns the upload store: S3-backed when UPLOAD_BUCKET is
// set, local disk otherwise.
func BuildUploadStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (intake.UploadStore, error) {
	if logger == nil {
		logger = logging.Default()
	}

	if strings.TrimSpace(cfg.UploadBucket) == "" {
		logger.Info("storing uploads on local disk", "dir", cfg.UploadDir)
		return intake.NewDiskStore(cfg.UploadDir), nil
	}

	awsCfg, err := LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
	}
	logger.Info("archiving uploads to s3", "bucket", cfg.UploadBucket)
	return intake.NewS3Store(NewS3Client(awsCfg, cfg), cfg.UploadBucket), nil
}
