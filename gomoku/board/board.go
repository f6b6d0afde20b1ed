package board

import "fmt"

// Size is the side length of the board.
const Size = 15

// Cells is the number of intersections on the board.
const Cells = Size * Size

// WinLength is the number of aligned stones needed to win.
const WinLength = 5

type Cell int8

const (
	Empty Cell = iota
	Black
	White
)

// Color is the side a player holds. Its values match the Cell it places.
type Color int8

const (
	ColorBlack Color = Color(Black)
	ColorWhite Color = Color(White)
)

// Stone returns the cell value placed by c.
func (c Color) Stone() Cell {
	return Cell(c)
}

func (c Color) Opponent() Color {
	if c == ColorBlack {
		return ColorWhite
	}
	return ColorBlack
}

func (c Color) String() string {
	switch c {
	case ColorBlack:
		return "black"
	case ColorWhite:
		return "white"
	default:
		return "unknown"
	}
}

// ParseColor accepts the wire names "black" and "white".
func ParseColor(s string) (Color, error) {
	switch s {
	case "black":
		return ColorBlack, nil
	case "white":
		return ColorWhite, nil
	}
	return 0, fmt.Errorf("unknown color %q", s)
}

// Board is row-major: b[y][x]. Being an array, assignment copies it.
type Board [Size][Size]Cell

// Point is a board coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Center is the opening point of an empty board.
var Center = Point{X: Size / 2, Y: Size / 2}

func InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < Size && y < Size
}

func (b *Board) At(x, y int) Cell {
	return b[y][x]
}

// Place puts a stone of color c at (x, y). The cell must be empty.
func (b *Board) Place(x, y int, c Color) {
	if b[y][x] != Empty {
		panic(fmt.Sprintf("board: place on occupied cell (%d,%d)", x, y))
	}
	b[y][x] = c.Stone()
}

// Undo clears (x, y). Only the search engine uses it to take back its own
// temporary placements.
func (b *Board) Undo(x, y int) {
	b[y][x] = Empty
}

func (b *Board) Reset() {
	*b = Board{}
}

func (b *Board) IsEmpty() bool {
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			if b[y][x] != Empty {
				return false
			}
		}
	}
	return true
}

// Count returns the number of cells holding c.
func (b *Board) Count(c Cell) int {
	n := 0
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			if b[y][x] == c {
				n++
			}
		}
	}
	return n
}

// Directions are the four line orientations: horizontal, vertical and the
// two diagonals.
var Directions = [4]Point{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// RunThrough counts the stones of the color at (x, y) that are contiguous
// with it along direction d, in both senses, including (x, y) itself.
func (b *Board) RunThrough(x, y int, d Point) int {
	c := b[y][x]
	if c == Empty {
		return 0
	}
	n := 1
	for i, j := x+d.X, y+d.Y; InBounds(i, j) && b[j][i] == c; i, j = i+d.X, j+d.Y {
		n++
	}
	for i, j := x-d.X, y-d.Y; InBounds(i, j) && b[j][i] == c; i, j = i-d.X, j-d.Y {
		n++
	}
	return n
}

// WonThrough reports whether a line of at least five identical stones passes
// through (x, y).
func (b *Board) WonThrough(x, y int) bool {
	if !InBounds(x, y) || b[y][x] == Empty {
		return false
	}
	for _, d := range Directions {
		if b.RunThrough(x, y, d) >= WinLength {
			return true
		}
	}
	return false
}

// Candidates returns the empty cells within Chebyshev distance radius of any
// stone, ordered by y then x. An empty board yields only the center.
func (b *Board) Candidates(radius int) []Point {
	var near [Size][Size]bool
	stones := false
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			if b[y][x] == Empty {
				continue
			}
			stones = true
			for j := y - radius; j <= y+radius; j++ {
				for i := x - radius; i <= x+radius; i++ {
					if InBounds(i, j) {
						near[j][i] = true
					}
				}
			}
		}
	}
	if !stones {
		return []Point{Center}
	}
	out := make([]Point, 0, 64)
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			if near[y][x] && b[y][x] == Empty {
				out = append(out, Point{X: x, Y: y})
			}
		}
	}
	return out
}
