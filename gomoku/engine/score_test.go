package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gomokuserver/gomoku/board"
)

func TestPatternScore(t *testing.T) {
	tests := []struct {
		run, open int
		want      float64
	}{
		{5, 0, 100000},
		{6, 2, 100000},
		{4, 2, 10000},
		{4, 1, 1000},
		{4, 0, 0},
		{3, 2, 1000},
		{3, 1, 100},
		{2, 2, 100},
		{2, 1, 10},
		{1, 2, 1},
		{1, 1, 0},
		{0, 2, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PatternScore(tt.run, tt.open), "run=%d open=%d", tt.run, tt.open)
	}
}

func TestEvaluateEmptyBoard(t *testing.T) {
	var b board.Board
	assert.Equal(t, 0.0, Evaluate(&b, board.ColorBlack))
}

func TestEvaluateSingleStone(t *testing.T) {
	var b board.Board
	b.Place(7, 7, board.ColorBlack)
	// one open single in each of four directions
	assert.Equal(t, 4.0, Evaluate(&b, board.ColorBlack))
	assert.InDelta(t, -4.4, Evaluate(&b, board.ColorWhite), 1e-9)
}

func TestEvaluateOpponentWeighsMore(t *testing.T) {
	var b board.Board
	place(&b, board.ColorBlack, board.Point{X: 2, Y: 2}, board.Point{X: 3, Y: 2}, board.Point{X: 4, Y: 2})
	place(&b, board.ColorWhite, board.Point{X: 10, Y: 10}, board.Point{X: 11, Y: 10}, board.Point{X: 12, Y: 10})
	assert.Less(t, Evaluate(&b, board.ColorBlack), 0.0)
	assert.Less(t, Evaluate(&b, board.ColorWhite), 0.0)
}

func TestEvaluateOpenFourThreat(t *testing.T) {
	var b board.Board
	place(&b, board.ColorWhite, board.Point{X: 5, Y: 7}, board.Point{X: 6, Y: 7}, board.Point{X: 7, Y: 7}, board.Point{X: 8, Y: 7})
	assert.Less(t, Evaluate(&b, board.ColorBlack), -10000.0)
	assert.Greater(t, Evaluate(&b, board.ColorWhite), 10000.0)
}

func TestEvaluateEdgeClosesRun(t *testing.T) {
	var b board.Board
	place(&b, board.ColorBlack, board.Point{X: 0, Y: 7}, board.Point{X: 1, Y: 7}, board.Point{X: 2, Y: 7}, board.Point{X: 3, Y: 7})
	var open board.Board
	place(&open, board.ColorBlack, board.Point{X: 4, Y: 7}, board.Point{X: 5, Y: 7}, board.Point{X: 6, Y: 7}, board.Point{X: 7, Y: 7})
	assert.Less(t, Evaluate(&b, board.ColorBlack), Evaluate(&open, board.ColorBlack))
}

func TestQuickScoreFavoursBlockingPoint(t *testing.T) {
	var b board.Board
	place(&b, board.ColorWhite, board.Point{X: 5, Y: 7}, board.Point{X: 6, Y: 7}, board.Point{X: 7, Y: 7})
	block := QuickScore(&b, board.Point{X: 8, Y: 7}, board.ColorBlack)
	far := QuickScore(&b, board.Point{X: 7, Y: 10}, board.ColorBlack)
	assert.Greater(t, block, far)

	before := b
	QuickScore(&b, board.Point{X: 4, Y: 7}, board.ColorBlack)
	assert.Equal(t, before, b)
}
