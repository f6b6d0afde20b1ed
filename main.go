package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gomokuserver/database"    // config loading and the Redis stats mirror
	"gomokuserver/gomoku"      // WebSocket entry point of the game
	"gomokuserver/gomoku/connection"
	"gomokuserver/gomoku/engine"
	"gomokuserver/gomoku/registry"
	"gomokuserver/middlewares" // upgrade rate limiting
	"gomokuserver/models"
	"gomokuserver/screens" // JSON endpoints
	"gomokuserver/utils"   // logger and cron jobs
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON config file")
	host := flag.String("host", "", "bind address (overrides config)")
	port := flag.Int("port", 0, "TCP port (overrides config)")
	flag.Parse()

	config, err := database.LoadConfig(*configPath)
	if err != nil {
		panic(err)
	}
	if *host != "" {
		config.Host = *host
	}
	if *port != 0 {
		config.Port = *port
	}

	logger, err := utils.InitLogger(config.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := registry.New(logger)
	searcher := engine.New(engine.WithDepth(config.EngineDepth), engine.WithCandidates(config.EngineCandidates))
	limiter := middlewares.NewRateLimiter(config.UpgradeRatePerSecond, config.UpgradeBurst)

	// The stats mirror is optional; the game never depends on Redis.
	var mirror utils.StatsPublisher
	var mirrorReader screens.StatsReader
	if config.Redis.Addr != "" {
		rdb, err := database.InitRedis(ctx, config.Redis, logger)
		if err != nil {
			logger.Warn("Redis stats mirror disabled", zap.Error(err))
		} else {
			m := database.NewStatsMirror(rdb, logger)
			defer m.Close()
			mirror = m
			mirrorReader = m
		}
	}

	scheduler, err := utils.CronJobs(config.StatsSchedule, reg, mirror, limiter, logger)
	if err != nil {
		logger.Fatal("Invalid stats schedule", zap.String("schedule", config.StatsSchedule), zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:              net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
		Handler:           newRouter(&config, reg, searcher, limiter, mirrorReader, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		// WebSockets are hijacked and not tracked by the server.
		reg.Shutdown()
		waitForConnections(shutdownCtx, reg, logger)
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}
}

func waitForConnections(ctx context.Context, reg *registry.Registry, logger *zap.Logger) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for reg.TotalConnections() > 0 {
		select {
		case <-ctx.Done():
			logger.Warn("Connections still open at shutdown", zap.Int64("count", reg.TotalConnections()))
			return
		case <-ticker.C:
		}
	}
}

func allowsAll(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

func newUpgrader(origins []string) *websocket.Upgrader {
	upgrader := &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	if allowsAll(origins) {
		upgrader.CheckOrigin = func(r *http.Request) bool { return true }
		return upgrader
	}
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	upgrader.CheckOrigin = func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
	return upgrader
}

func newRouter(config *models.Config, reg *registry.Registry, searcher *engine.Searcher, limiter *middlewares.RateLimiter, mirror screens.StatsReader, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	// only listed proxies may rewrite the client IP the upgrade limiter keys on
	if err := router.SetTrustedProxies(config.TrustedProxies); err != nil {
		logger.Warn("Invalid trusted proxies, trusting none", zap.Strings("proxies", config.TrustedProxies), zap.Error(err))
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(gin.Recovery(), utils.RequestLogger(logger))

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	switch {
	case allowsAll(config.AllowedOrigins):
		corsConfig.AllowAllOrigins = true
	case len(config.AllowedOrigins) == 0:
		corsConfig.AllowOriginFunc = func(string) bool { return false }
	default:
		corsConfig.AllowOrigins = config.AllowedOrigins
	}
	router.Use(cors.New(corsConfig))

	screens.RegisterRoutes(router, reg, searcher, mirror, logger)

	upgrader := newUpgrader(config.AllowedOrigins)
	settings := connection.SettingsFromConfig(config)
	router.GET("/ws/games/gomoku/:roomId", middlewares.UpgradeRateLimit(limiter, logger), func(c *gin.Context) {
		gomoku.HandleConnections(c.Writer, c.Request, c.Param("roomId"), c.Query("name"), reg, upgrader, settings, logger)
	})
	return router
}
