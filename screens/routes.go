package screens

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gomokuserver/gomoku/engine"
	"gomokuserver/gomoku/registry"
)

// RegisterRoutes mounts the JSON endpoints. mirror may be nil when Redis is
// not configured.
func RegisterRoutes(router gin.IRouter, reg *registry.Registry, searcher *engine.Searcher, mirror StatsReader, logger *zap.Logger) {
	router.GET("/healthz", Health)

	api := router.Group("/api/games/gomoku")
	api.GET("/stats", func(c *gin.Context) {
		Stats(c, reg)
	})
	api.GET("/stats/mirror", func(c *gin.Context) {
		MirroredStats(c, mirror, logger)
	})
	api.POST("/ai-move", func(c *gin.Context) {
		AIMove(c, searcher, logger)
	})
	api.GET("/rooms/:roomId/hint", func(c *gin.Context) {
		RoomHint(c, reg, searcher, logger)
	})
}
