package board

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWonThroughEveryDirectionAndPosition(t *testing.T) {
	starts := map[string]struct {
		d      Point
		x0, y0 int
	}{
		"horizontal": {Point{1, 0}, 3, 6},
		"vertical":   {Point{0, 1}, 9, 2},
		"diagonal":   {Point{1, 1}, 4, 4},
		"antidiag":   {Point{1, -1}, 2, 12},
	}
	for name, s := range starts {
		for winning := 0; winning < WinLength; winning++ {
			t.Run(fmt.Sprintf("%s/stone%d", name, winning), func(t *testing.T) {
				var b Board
				for k := 0; k < WinLength; k++ {
					if k == winning {
						continue
					}
					b.Place(s.x0+k*s.d.X, s.y0+k*s.d.Y, ColorWhite)
				}
				wx, wy := s.x0+winning*s.d.X, s.y0+winning*s.d.Y
				require.False(t, b.WonThrough(wx, wy))
				b.Place(wx, wy, ColorWhite)
				assert.True(t, b.WonThrough(wx, wy))
			})
		}
	}
}

func TestWonThroughFourIsNotEnough(t *testing.T) {
	var b Board
	for x := 0; x < 4; x++ {
		b.Place(x, 0, ColorBlack)
	}
	b.Place(4, 0, ColorWhite)
	for x := 0; x < 5; x++ {
		assert.False(t, b.WonThrough(x, 0))
	}
}

func TestWonThroughOverline(t *testing.T) {
	var b Board
	for x := 5; x < 11; x++ {
		b.Place(x, 7, ColorBlack)
	}
	assert.True(t, b.WonThrough(8, 7))
}

func TestWonThroughCorners(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
	}{
		{"top-left row", []Point{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}}},
		{"bottom-right column", []Point{{14, 10}, {14, 11}, {14, 12}, {14, 13}, {14, 14}}},
		{"bottom-left anti-diagonal", []Point{{0, 14}, {1, 13}, {2, 12}, {3, 11}, {4, 10}}},
		{"top-right anti-diagonal", []Point{{14, 0}, {13, 1}, {12, 2}, {11, 3}, {10, 4}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Board
			for _, p := range tt.points {
				b.Place(p.X, p.Y, ColorBlack)
			}
			corner := tt.points[0]
			assert.True(t, b.WonThrough(corner.X, corner.Y))
		})
	}
}

func TestWonThroughEmptyAndOutOfBounds(t *testing.T) {
	var b Board
	assert.False(t, b.WonThrough(7, 7))
	assert.False(t, b.WonThrough(-1, 0))
	assert.False(t, b.WonThrough(0, Size))
}

func TestPlaceOccupiedPanics(t *testing.T) {
	var b Board
	b.Place(3, 3, ColorBlack)
	assert.Panics(t, func() { b.Place(3, 3, ColorWhite) })
}

func TestCandidates(t *testing.T) {
	t.Run("empty board yields center", func(t *testing.T) {
		var b Board
		assert.Equal(t, []Point{Center}, b.Candidates(2))
	})

	t.Run("single stone yields its 5x5 neighbourhood", func(t *testing.T) {
		var b Board
		b.Place(7, 7, ColorBlack)
		got := b.Candidates(2)
		assert.Len(t, got, 24)
		assert.NotContains(t, got, Point{7, 7})
		assert.Contains(t, got, Point{5, 5})
		assert.Contains(t, got, Point{9, 9})
		assert.NotContains(t, got, Point{4, 7})
	})

	t.Run("corner stone is clipped", func(t *testing.T) {
		var b Board
		b.Place(0, 0, ColorWhite)
		assert.Len(t, b.Candidates(2), 8)
	})

	t.Run("ordered by y then x", func(t *testing.T) {
		var b Board
		b.Place(10, 3, ColorBlack)
		b.Place(2, 11, ColorWhite)
		got := b.Candidates(1)
		for i := 1; i < len(got); i++ {
			prev, cur := got[i-1], got[i]
			assert.True(t, prev.Y < cur.Y || (prev.Y == cur.Y && prev.X < cur.X), "%v before %v", prev, cur)
		}
	})
}

func TestColor(t *testing.T) {
	assert.Equal(t, ColorWhite, ColorBlack.Opponent())
	assert.Equal(t, ColorBlack, ColorWhite.Opponent())
	assert.Equal(t, White, ColorWhite.Stone())

	c, err := ParseColor("white")
	require.NoError(t, err)
	assert.Equal(t, ColorWhite, c)
	_, err = ParseColor("red")
	assert.Error(t, err)
}
