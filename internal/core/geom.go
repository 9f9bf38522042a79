// Package core provides fundamental types and utilities for tidepool.
// It contains no external dependencies (especially no Bubble Tea) to keep the
// simulation pure and testable.
package core

import "fmt"

// Point is an integer grid coordinate.
// X increases to the right, Y increases downward (screen coordinates).
type Point struct {
	X int
	Y int
}

// Pt is a convenience constructor for Point.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// String returns a string representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Add returns the component-wise sum of two points.
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the component-wise difference of two points.
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Step returns the point one cell away in the given direction.
// DirNone returns the point unchanged.
func (p Point) Step(d Direction) Point {
	return p.Add(d.Delta())
}

// Direction is a cardinal movement direction.
type Direction uint8

const (
	DirNone Direction = iota // Teleports and waits
	DirUp
	DirRight
	DirDown
	DirLeft
)

// Directions lists the four cardinal directions in clockwise order.
var Directions = []Direction{DirUp, DirRight, DirDown, DirLeft}

// String returns the string representation of a direction.
func (d Direction) String() string {
	switch d {
	case DirNone:
		return "None"
	case DirUp:
		return "Up"
	case DirRight:
		return "Right"
	case DirDown:
		return "Down"
	case DirLeft:
		return "Left"
	default:
		return "Unknown"
	}
}

// Delta returns the offset for moving one step in this direction.
// Up decreases Y, Down increases Y.
func (d Direction) Delta() Point {
	switch d {
	case DirUp:
		return Point{0, -1}
	case DirRight:
		return Point{1, 0}
	case DirDown:
		return Point{0, 1}
	case DirLeft:
		return Point{-1, 0}
	default:
		return Point{}
	}
}

// Opposite returns the opposite direction.
func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirRight:
		return DirLeft
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	default:
		return d
	}
}

// Rune returns the single-letter move notation used by replays.
func (d Direction) Rune() rune {
	switch d {
	case DirUp:
		return 'U'
	case DirRight:
		return 'R'
	case DirDown:
		return 'D'
	case DirLeft:
		return 'L'
	default:
		return '.'
	}
}

// ParseDirection converts replay notation (U, R, D, L, '.') to a Direction.
// Lowercase letters are accepted. Returns false for anything else.
func ParseDirection(r rune) (Direction, bool) {
	switch r {
	case 'U', 'u':
		return DirUp, true
	case 'R', 'r':
		return DirRight, true
	case 'D', 'd':
		return DirDown, true
	case 'L', 'l':
		return DirLeft, true
	case '.':
		return DirNone, true
	default:
		return DirNone, false
	}
}

// Rect represents an axis-aligned rectangle used for screen layout.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains returns true if the point (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Min returns the smaller of two integers.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two integers.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Mod returns x modulo m normalized into [0, m).
// Go's % keeps the sign of the dividend, which breaks tiling for negative coordinates.
func Mod(x, m int) int {
	if m == 0 {
		return 0
	}
	r := x % m
	if r < 0 {
		r += Abs(m)
	}
	return r
}
