package engine

import (
	"math"
	"sort"

	"gomokuserver/gomoku/board"
)

const (
	DefaultDepth      = 4
	DefaultCandidates = 10
	DefaultRadius     = 2
)

type Option func(s *Searcher)

// Searcher holds search parameters only; it keeps no state between calls
// and is safe for concurrent use.
type Searcher struct {
	depth      int
	candidates int
	radius     int
}

func WithDepth(depth int) Option {
	return func(s *Searcher) {
		if depth > 0 {
			s.depth = depth
		}
	}
}

func WithCandidates(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.candidates = n
		}
	}
}

func WithRadius(radius int) Option {
	return func(s *Searcher) {
		if radius > 0 {
			s.radius = radius
		}
	}
}

func New(options ...Option) *Searcher {
	s := &Searcher{
		depth:      DefaultDepth,
		candidates: DefaultCandidates,
		radius:     DefaultRadius,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *Searcher) Depth() int      { return s.depth }
func (s *Searcher) Candidates() int { return s.candidates }

// BestMove returns the recommended move for side. b is taken by value so the
// caller's board is never touched.
func BestMove(b board.Board, side board.Color, maxDepth, maxCandidates int) board.Point {
	return New(WithDepth(maxDepth), WithCandidates(maxCandidates)).BestMove(b, side)
}

// BestMove searches b for side. The board must not be full.
func (s *Searcher) BestMove(b board.Board, side board.Color) board.Point {
	if b.IsEmpty() {
		return board.Center
	}
	cands := b.Candidates(s.radius)
	if len(cands) == 0 {
		return board.Center
	}

	if p, ok := winningPoint(&b, cands, side); ok {
		return p
	}
	// forced block
	if p, ok := winningPoint(&b, cands, side.Opponent()); ok {
		return p
	}

	ordered := s.order(&b, cands, side)
	best := ordered[0]
	bestValue := math.Inf(-1)
	alpha, beta := math.Inf(-1), math.Inf(1)
	for _, p := range ordered {
		b.Place(p.X, p.Y, side)
		v := s.alphaBeta(&b, s.depth-1, alpha, beta, false, side)
		b.Undo(p.X, p.Y)
		if v > bestValue {
			bestValue = v
			best = p
		}
		if v > alpha {
			alpha = v
		}
	}
	return best
}

func winningPoint(b *board.Board, cands []board.Point, c board.Color) (board.Point, bool) {
	for _, p := range cands {
		b.Place(p.X, p.Y, c)
		won := b.WonThrough(p.X, p.Y)
		b.Undo(p.X, p.Y)
		if won {
			return p, true
		}
	}
	return board.Point{}, false
}

// order sorts cands by QuickScore for mover, highest first, and keeps the top
// s.candidates. cands arrive ordered by y then x and the sort is stable, so
// ties resolve to the lower y, then the lower x.
func (s *Searcher) order(b *board.Board, cands []board.Point, mover board.Color) []board.Point {
	scores := make([]float64, len(cands))
	idx := make([]int, len(cands))
	for i, p := range cands {
		scores[i] = QuickScore(b, p, mover)
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return scores[idx[i]] > scores[idx[j]]
	})
	n := len(idx)
	if n > s.candidates {
		n = s.candidates
	}
	out := make([]board.Point, n)
	for i := 0; i < n; i++ {
		out[i] = cands[idx[i]]
	}
	return out
}

func (s *Searcher) alphaBeta(b *board.Board, depth int, alpha, beta float64, maximizing bool, side board.Color) float64 {
	if depth <= 0 {
		return Evaluate(b, side)
	}
	mover := side
	if !maximizing {
		mover = side.Opponent()
	}
	cands := b.Candidates(s.radius)
	if len(cands) == 0 {
		return Evaluate(b, side)
	}
	ordered := s.order(b, cands, mover)

	if maximizing {
		value := math.Inf(-1)
		for _, p := range ordered {
			b.Place(p.X, p.Y, mover)
			var v float64
			if b.WonThrough(p.X, p.Y) {
				v = WinScore + float64(depth)
			} else {
				v = s.alphaBeta(b, depth-1, alpha, beta, false, side)
			}
			b.Undo(p.X, p.Y)
			value = math.Max(value, v)
			alpha = math.Max(alpha, value)
			if alpha >= beta {
				break
			}
		}
		return value
	}

	value := math.Inf(1)
	for _, p := range ordered {
		b.Place(p.X, p.Y, mover)
		var v float64
		if b.WonThrough(p.X, p.Y) {
			v = -(WinScore + float64(depth))
		} else {
			v = s.alphaBeta(b, depth-1, alpha, beta, true, side)
		}
		b.Undo(p.X, p.Y)
		value = math.Min(value, v)
		beta = math.Min(beta, value)
		if alpha >= beta {
			break
		}
	}
	return value
}
