package screens

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"gomokuserver/gomoku/board"
	"gomokuserver/gomoku/engine"
	"gomokuserver/gomoku/registry"
	"gomokuserver/gomoku/room"
	"gomokuserver/models"
)

const (
	maxDepth      = 6
	maxCandidates = 30
)

// AIMoveRequest is the body of POST /api/games/gomoku/ai-move.
type AIMoveRequest struct {
	Board      [][]int `json:"board" binding:"required"`
	Color      string  `json:"color" binding:"required"`
	Depth      int     `json:"depth"`
	Candidates int     `json:"candidates"`
}

func clamp(v, lo, hi, def int) int {
	if v == 0 {
		return def
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func parseBoard(rows [][]int) (board.Board, error) {
	var b board.Board
	if len(rows) != board.Size {
		return b, fmt.Errorf("board must have %d rows", board.Size)
	}
	for y, row := range rows {
		if len(row) != board.Size {
			return b, fmt.Errorf("row %d must have %d cells", y, board.Size)
		}
		for x, v := range row {
			// range check on the raw int; Cell is int8 and would wrap
			if v < int(board.Empty) || v > int(board.White) {
				return b, fmt.Errorf("cell (%d,%d) has invalid value %d", x, y, v)
			}
			b[y][x] = board.Cell(v)
		}
	}
	return b, nil
}

// AIMove runs the engine on a caller-supplied position.
func AIMove(c *gin.Context, defaults *engine.Searcher, logger *zap.Logger) {
	var req AIMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Debug("Failed to bind ai-move request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"status": models.CodeBadRequest, "error": "Invalid request body"})
		return
	}
	b, err := parseBoard(req.Board)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": models.CodeBadRequest, "error": err.Error()})
		return
	}
	side, err := board.ParseColor(req.Color)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": models.CodeBadRequest, "error": err.Error()})
		return
	}
	if b.Count(board.Empty) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"status": models.CodeBadRequest, "error": "Board is full"})
		return
	}

	searcher := engine.New(
		engine.WithDepth(clamp(req.Depth, 1, maxDepth, defaults.Depth())),
		engine.WithCandidates(clamp(req.Candidates, 1, maxCandidates, defaults.Candidates())),
	)
	c.JSON(http.StatusOK, searcher.BestMove(b, side))
}

// RoomHint suggests a move for the side to play in a live room. The board is
// copied under the room lock and searched after the lock is released.
func RoomHint(c *gin.Context, reg *registry.Registry, searcher *engine.Searcher, logger *zap.Logger) {
	r, err := reg.Get(c.Param("roomId"))
	if err != nil {
		if errors.Is(err, registry.ErrInvalidRoomID) {
			c.JSON(http.StatusBadRequest, gin.H{"status": models.CodeBadRequest, "error": "Invalid room id"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"status": models.CodeRoomNotFound, "error": "Room not found"})
		return
	}

	b, turn, phase := r.Position()
	if phase != room.Playing {
		c.JSON(http.StatusConflict, gin.H{"status": room.ErrNotPlaying.Code, "error": room.ErrNotPlaying.Message})
		return
	}
	p := searcher.BestMove(b, turn)
	logger.Debug("Hint computed", zap.String("RoomID", r.ID), zap.Int("x", p.X), zap.Int("y", p.Y))
	c.JSON(http.StatusOK, gin.H{"x": p.X, "y": p.Y, "color": turn.String()})
}

// Stats reports the process-wide counters.
func Stats(c *gin.Context, reg *registry.Registry) {
	c.JSON(http.StatusOK, reg.Stats())
}

// StatsReader reads back the counters mirrored to Redis.
type StatsReader interface {
	Fetch(ctx context.Context) (models.GlobalOnline, error)
}

// MirroredStats reports what external dashboards currently see in Redis,
// which lags the live counters by up to one stats interval.
func MirroredStats(c *gin.Context, mirror StatsReader, logger *zap.Logger) {
	if mirror == nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "mirror_disabled", "error": "Stats mirror is not configured"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	stats, err := mirror.Fetch(ctx)
	switch {
	case errors.Is(err, redis.Nil):
		c.JSON(http.StatusNotFound, gin.H{"status": "not_published", "error": "No stats have been mirrored yet"})
	case err != nil:
		logger.Warn("Failed to read mirrored stats", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"status": "mirror_unavailable", "error": "Stats mirror is unavailable"})
	default:
		c.JSON(http.StatusOK, stats)
	}
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
