package connection

import (
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"gomokuserver/gomoku/broadcast"
	"gomokuserver/models"
)

// Settings carries the per-socket timing and queue limits.
type Settings struct {
	IdleTimeout  time.Duration
	PingPeriod   time.Duration
	WriteTimeout time.Duration
	OutboxSize   int
}

func SettingsFromConfig(cfg *models.Config) Settings {
	return Settings{
		IdleTimeout:  cfg.IdleTimeout.Duration,
		PingPeriod:   cfg.PingPeriod.Duration,
		WriteTimeout: cfg.WriteTimeout.Duration,
		OutboxSize:   cfg.OutboxSize,
	}
}

// MaintainWebSocketConnection is the only goroutine that writes to conn. It
// drains the participant's outbox and sends a ping every PingPeriod. When the
// outbox is closed (leave, slow-consumer drop or shutdown) it sends a close
// frame and closes the socket, which ends the reader as well.
func MaintainWebSocketConnection(conn *websocket.Conn, out *broadcast.Client, s Settings, logger *zap.Logger) {
	// Pingの送信間隔
	ticker := time.NewTicker(s.PingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close() // the reader fails right after this
	}()

	for {
		select {
		case msg, ok := <-out.Messages():
			// 書き込みデッドラインを毎回更新
			conn.SetWriteDeadline(time.Now().Add(s.WriteTimeout))
			if !ok {
				// queue closed by leave, drop or shutdown; the peer may already be gone
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "connection closed by server"))
				return
			}
			// frames are already encoded JSON
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Warn("Error writing frame", zap.String("ConnID", out.ID), zap.Error(err))
				out.Close()
				return
			}
		case <-ticker.C:
			// Pingを送信
			conn.SetWriteDeadline(time.Now().Add(s.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Warn("Error sending ping", zap.String("ConnID", out.ID), zap.Error(err))
				out.Close() // treated like any other write failure
				return
			}
		}
	}
}

// ArmReadDeadline makes the reader give up after IdleTimeout without any
// inbound frame. Pong control frames count as activity.
func ArmReadDeadline(conn *websocket.Conn, idle time.Duration) {
	// 最初のPong待機に使う読み取りデッドライン
	conn.SetReadDeadline(time.Now().Add(idle))
	// Pongを受信したらデッドラインを延長
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(idle))
	})
}
