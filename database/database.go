package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"gomokuserver/models"
)

// LoadConfig starts from the defaults, applies filename when it exists and
// then the environment overrides.
func LoadConfig(filename string) (models.Config, error) {
	config := models.DefaultConfig()
	// 設定ファイルは任意
	if filename != "" {
		configFile, err := os.Open(filename)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return config, err
		default:
			defer configFile.Close()
			if err := json.NewDecoder(configFile).Decode(&config); err != nil {
				return config, fmt.Errorf("decode %s: %w", filename, err)
			}
		}
	}
	if err := applyEnv(&config, os.LookupEnv); err != nil {
		return config, err
	}
	return config, nil
}

func applyEnv(config *models.Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup("GOMOKU_HOST"); ok && v != "" {
		config.Host = v
	}
	if v, ok := lookup("GOMOKU_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GOMOKU_PORT: %w", err)
		}
		config.Port = port
	}
	if v, ok := lookup("GOMOKU_LOG_LEVEL"); ok && v != "" {
		config.LogLevel = v
	}
	if v, ok := lookup("GOMOKU_ALLOWED_ORIGINS"); ok && v != "" {
		config.AllowedOrigins = splitList(v)
	}
	if v, ok := lookup("GOMOKU_TRUSTED_PROXIES"); ok {
		config.TrustedProxies = splitList(v)
	}
	if v, ok := lookup("REDIS_ADDR"); ok {
		config.Redis.Addr = v
	}
	if v, ok := lookup("REDIS_PASSWORD"); ok {
		config.Redis.Password = v
	}
	if v, ok := lookup("REDIS_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		config.Redis.DB = db
	}
	return nil
}

// splitList splits a comma separated env value, trimming blanks and
// dropping empty entries.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// InitRedis connects to the stats Redis, retrying a few times before giving
// up.
func InitRedis(ctx context.Context, config models.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	const maxRetries = 3
	const retryInterval = 2 * time.Second
	var err error
	for i := 0; i <= maxRetries; i++ {
		// Redisへの接続テスト
		if err = rdb.Ping(ctx).Err(); err == nil {
			logger.Info("Connected to Redis", zap.String("addr", config.Addr))
			return rdb, nil
		}
		logger.Warn("Retrying Redis connection", zap.Int("retry", i), zap.Error(err))
		select {
		case <-ctx.Done():
			rdb.Close()
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	rdb.Close()
	return nil, fmt.Errorf("connect to redis at %s: %w", config.Addr, err)
}
