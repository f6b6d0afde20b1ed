package actions

import (
	"go.uber.org/zap"

	"gomokuserver/models"
)

func handleMove(s *Session, m models.MoveMessage, logger *zap.Logger) {
	state, err := s.Room.Move(s.Participant.ID, m.X, m.Y)
	if err != nil {
		replyRejection(s.Out, err, logger)
		return
	}
	if state.Winner != nil {
		logger.Info("Game finished", zap.String("winner", *state.Winner), zap.Int("moves", state.MoveCount))
	}
}
