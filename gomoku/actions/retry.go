package actions

import (
	"go.uber.org/zap"
)

func handleRestart(s *Session, logger *zap.Logger) {
	if _, err := s.Room.Restart(s.Participant.ID); err != nil {
		replyRejection(s.Out, err, logger)
		return
	}
	logger.Info("Game restarted")
}
