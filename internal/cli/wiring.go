package cli

import (
	"context"
	"database/sql"

	"class_info_hub/internal/app"
	"class_info_hub/internal/infra/cache"
	"class_info_hub/internal/infra/config"
	idb "class_info_hub/internal/infra/database"
	"class_info_hub/internal/infra/gemini"
	"class_info_hub/internal/infra/logger"

	"github.com/redis/go-redis/v9"
)

// container holds the services shared by every command.
type container struct {
	cfg      *config.AppConfig
	db       *sql.DB
	rdb      *redis.Client
	ttRepo   *idb.PostgresTimetableRepository
	annRepo  *idb.PostgresAnnouncementRepository
	schedule *app.ScheduleService
	sync     *app.SyncService
	summary  *app.SummaryServiceImpl
	admin    *app.AdminService
}

// newContainer loads configuration, connects to the store and builds the services.
// Redis is optional: without it the sync service reads the store every time.
func newContainer(ctx context.Context) (*container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")

	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	mainLogger.Info("Database connection established successfully")

	c := &container{
		cfg:     cfg,
		db:      db,
		ttRepo:  idb.NewPostgresTimetableRepository(db),
		annRepo: idb.NewPostgresAnnouncementRepository(db),
	}

	var snapshots app.SnapshotCache
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			mainLogger.WithError(err).Warn("Snapshot cache unavailable, continuing without it")
		} else {
			c.rdb = rdb
			snapshots = cache.NewRedisSnapshotCache(rdb, cfg.SnapshotTTL)
			mainLogger.WithField("addr", cfg.RedisAddr).Info("Snapshot cache connected")
		}
	}

	aiConfig := config.NewEnvAIConfig()
	c.schedule = app.NewScheduleService(c.ttRepo, c.annRepo, logger.Component("schedule"))
	c.sync = app.NewSyncService(c.ttRepo, c.annRepo, snapshots, logger.Component("sync"))
	c.summary = app.NewSummaryServiceImpl(c.annRepo, gemini.NewSummarizer(aiConfig, cfg.GeminiModel), aiConfig, logger.Component("summary"))
	c.admin = app.NewAdminService(c.ttRepo, c.annRepo, cfg.AdminTelegramID)
	return c, nil
}

func (c *container) Close() {
	if c.rdb != nil {
		c.rdb.Close()
	}
	c.db.Close()
}
