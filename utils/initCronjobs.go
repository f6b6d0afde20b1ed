package utils

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"gomokuserver/models"
)

// LimiterIdleTTL is how long an idle per-IP limiter is kept.
const LimiterIdleTTL = 10 * time.Minute

type StatsSource interface {
	Stats() models.GlobalOnline
}

type StatsPublisher interface {
	Publish(ctx context.Context, stats models.GlobalOnline) error
}

type Evicter interface {
	Evict(idle time.Duration) int
}

// CronJobs schedules the periodic housekeeping: logging the counters,
// mirroring them to Redis when a mirror is configured, and evicting idle
// rate limiters. The returned scheduler is not started.
func CronJobs(schedule string, src StatsSource, mirror StatsPublisher, limiter Evicter, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New()

	// 接続数とルーム数を記録するジョブ

	_, err := c.AddFunc(schedule, func() {
		stats := src.Stats()
		logger.Info("Server stats", zap.Int64("totalConnections", stats.TotalConnections), zap.Int64("rooms", stats.Rooms))
		if mirror == nil {
			return
		}
		// Redis must not stall the scheduler
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mirror.Publish(ctx, stats); err != nil {
			logger.Warn("Failed to mirror stats", zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}

	// 使われていないレートリミッタを削除するジョブ
	if limiter != nil {
		if _, err := c.AddFunc("@every 5m", func() {
			if n := limiter.Evict(LimiterIdleTTL); n > 0 {
				logger.Debug("Evicted idle rate limiters", zap.Int("count", n))
			}
		}); err != nil {
			return nil, err
		}
	}
	return c, nil
}
