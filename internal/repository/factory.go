package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/unclebandit/aisdr-backend/internal/config"
	"github.com/unclebandit/aisdr-backend/internal/db"
	"github.com/unclebandit/aisdr-backend/internal/logger"
)

// OpenCampaignRepository builds the campaign store named by STORE_DRIVER. The
// returned func releases its connection.
func OpenCampaignRepository(ctx context.Context, cfg config.Config, log *zap.Logger) (CampaignRepositoryInterface, func(), error) {
	log = logger.OrNop(log)
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		conn, err := db.OpenPostgres(ctx, cfg.DB.DSN(), log)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return &CampaignRepository{DB: conn}, func() { conn.Close() }, nil

	case config.StoreDriverMongo:
		client, err := db.OpenMongo(ctx, cfg.Mongo.URI, log)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		}
		return NewMongoCampaignRepository(client, cfg.Mongo.Database, cfg.Mongo.Collection), closeFn, nil

	case config.StoreDriverMemory:
		return NewMemoryCampaignRepository(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

// OpenSessionRepository builds the intake session store named by SESSION_DRIVER.
func OpenSessionRepository(ctx context.Context, cfg config.Config, log *zap.Logger) (SessionRepositoryInterface, func(), error) {
	log = logger.OrNop(log)
	switch cfg.SessionDriver {
	case config.SessionDriverRedis:
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("✅ connected to Redis")
		return &RedisSessionRepository{Client: client, TTL: cfg.Redis.SessionTTL}, func() { client.Close() }, nil

	case config.SessionDriverMemory:
		return NewMemorySessionRepository(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown SESSION_DRIVER %q", cfg.SessionDriver)
	}
}
