package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"gomokuserver/models"
)

const (
	StatsKey = "gomoku:stats"
	statsTTL = 5 * time.Minute
)

// StatsMirror copies the process-wide counters into a Redis hash so that
// dashboards outside the process can read them. Room state never leaves the
// process.
type StatsMirror struct {
	rdb    *redis.Client
	key    string
	logger *zap.Logger
}

func NewStatsMirror(rdb *redis.Client, logger *zap.Logger) *StatsMirror {
	return &StatsMirror{rdb: rdb, key: StatsKey, logger: logger}
}

func statsFields(stats models.GlobalOnline, now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"totalConnections": stats.TotalConnections,
		"rooms":            stats.Rooms,
		"updatedAt":        now.UTC().Format(time.RFC3339),
	}
}

// Publish writes the counters and refreshes the key's TTL, so a dead server
// stops being reported after a few minutes.
func (m *StatsMirror) Publish(ctx context.Context, stats models.GlobalOnline) error {
	// HSETとEXPIREを1つのトランザクションで実行
	_, err := m.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, m.key, statsFields(stats, time.Now()))
		pipe.Expire(ctx, m.key, statsTTL)
		return nil
	})
	if err != nil {
		m.logger.Error("Error storing stats in Redis", zap.Error(err))
		return fmt.Errorf("publish stats: %w", err)
	}
	return nil
}

// Fetch reads the counters back.
func (m *StatsMirror) Fetch(ctx context.Context) (models.GlobalOnline, error) {
	values, err := m.rdb.HGetAll(ctx, m.key).Result()
	if err != nil {
		return models.GlobalOnline{}, fmt.Errorf("fetch stats: %w", err)
	}
	return parseStats(values)
}

func parseStats(values map[string]string) (models.GlobalOnline, error) {
	var stats models.GlobalOnline
	if len(values) == 0 {
		return stats, redis.Nil
	}
	var err error
	if stats.TotalConnections, err = strconv.ParseInt(values["totalConnections"], 10, 64); err != nil {
		return stats, fmt.Errorf("totalConnections: %w", err)
	}
	if stats.Rooms, err = strconv.ParseInt(values["rooms"], 10, 64); err != nil {
		return stats, fmt.Errorf("rooms: %w", err)
	}
	return stats, nil
}

func (m *StatsMirror) Close() error {
	return m.rdb.Close()
}
