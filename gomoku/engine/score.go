package engine

import "gomokuserver/gomoku/board"

const (
	// WinScore is the value of a completed five.
	WinScore = 100000.0

	// OpponentWeight scales the opponent's shapes in Evaluate so that
	// blocking is preferred over marginal offense.
	OpponentWeight = 1.1

	// DefenseWeight scales the opponent's shapes when ordering candidates.
	DefenseWeight = 0.9
)

// PatternScore maps a run of stones and the number of empty cells bordering
// it (0, 1 or 2) to a score.
func PatternScore(run, openEnds int) float64 {
	if run >= board.WinLength {
		return WinScore
	}
	switch run {
	case 4:
		switch openEnds {
		case 2:
			return 10000
		case 1:
			return 1000
		}
	case 3:
		switch openEnds {
		case 2:
			return 1000
		case 1:
			return 100
		}
	case 2:
		switch openEnds {
		case 2:
			return 100
		case 1:
			return 10
		}
	case 1:
		if openEnds == 2 {
			return 1
		}
	}
	return 0
}

func openCell(b *board.Board, x, y int) bool {
	return board.InBounds(x, y) && b[y][x] == board.Empty
}

// Evaluate scores b from side's point of view: the sum of side's runs minus
// the weighted sum of the opponent's runs, over all four directions.
func Evaluate(b *board.Board, side board.Color) float64 {
	var own, opp float64
	mine := side.Stone()
	for y := 0; y < board.Size; y++ {
		for x := 0; x < board.Size; x++ {
			c := b[y][x]
			if c == board.Empty {
				continue
			}
			for _, d := range board.Directions {
				px, py := x-d.X, y-d.Y
				if board.InBounds(px, py) && b[py][px] == c {
					continue // not the start of a run
				}
				run := 1
				ex, ey := x+d.X, y+d.Y
				for board.InBounds(ex, ey) && b[ey][ex] == c {
					run++
					ex, ey = ex+d.X, ey+d.Y
				}
				open := 0
				if openCell(b, px, py) {
					open++
				}
				if openCell(b, ex, ey) {
					open++
				}
				if c == mine {
					own += PatternScore(run, open)
				} else {
					opp += PatternScore(run, open)
				}
			}
		}
	}
	return own - OpponentWeight*opp
}

// shapeThrough measures the run containing (x, y) along d and how many of
// its two bordering cells are empty.
func shapeThrough(b *board.Board, x, y int, d board.Point) (run, openEnds int) {
	c := b[y][x]
	run = 1
	fx, fy := x+d.X, y+d.Y
	for board.InBounds(fx, fy) && b[fy][fx] == c {
		run++
		fx, fy = fx+d.X, fy+d.Y
	}
	bx, by := x-d.X, y-d.Y
	for board.InBounds(bx, by) && b[by][bx] == c {
		run++
		bx, by = bx-d.X, by-d.Y
	}
	if openCell(b, fx, fy) {
		openEnds++
	}
	if openCell(b, bx, by) {
		openEnds++
	}
	return run, openEnds
}

func pointScore(b *board.Board, p board.Point, c board.Color) float64 {
	b.Place(p.X, p.Y, c)
	var total float64
	for _, d := range board.Directions {
		total += PatternScore(shapeThrough(b, p.X, p.Y, d))
	}
	b.Undo(p.X, p.Y)
	return total
}

// QuickScore rates an empty cell for move ordering: the shapes side would
// build there plus, weighted, the shapes the opponent would build there.
func QuickScore(b *board.Board, p board.Point, side board.Color) float64 {
	return pointScore(b, p, side) + DefenseWeight*pointScore(b, p, side.Opponent())
}
