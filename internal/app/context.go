package app

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/groupmatch/internal/cache"
	"github.com/oggyb/groupmatch/internal/config"
	"github.com/oggyb/groupmatch/internal/notify"
)

// AppContext holds shared dependencies (DB, Redis, Logger, etc.)
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache // optional; counters fall back to the DB
	Notifier   notify.Notifier
	Logger     *slog.Logger
	Clock      func() time.Time
}

// New creates a new AppContext. A nil notifier logs intents instead of
// delivering them.
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, notifier notify.Notifier, logger *slog.Logger) *AppContext {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = notify.NewLogNotifier(logger)
	}
	if cfg == nil {
		cfg = &config.Config{Matching: config.DefaultMatching()}
	}
	return &AppContext{
		Config:     cfg,
		DB:         db,
		RedisCache: rdb,
		Notifier:   notifier,
		Logger:     logger,
		Clock:      time.Now,
	}
}

// Now returns the current time in UTC at millisecond precision, the
// resolution timestamps are stored with.
func (a *AppContext) Now() time.Time {
	clock := a.Clock
	if clock == nil {
		clock = time.Now
	}
	return clock().UTC().Truncate(time.Millisecond)
}
