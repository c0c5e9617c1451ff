package wm

import "math"

// Box is a rectangle in layout coordinates. X/Y may be output-relative
// or global depending on which API handed it out.
type Box struct {
	X, Y          int
	Width, Height int
}

func (b Box) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Center returns the middle point of the box.
func (b Box) Center() (int, int) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// ContainsPoint reports whether (x, y) lies inside the box.
func (b Box) ContainsPoint(x, y int) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// Shrink insets the box by n pixels on every side.
func (b Box) Shrink(n int) Box {
	return Box{
		X:      b.X + n,
		Y:      b.Y + n,
		Width:  b.Width - n*2,
		Height: b.Height - n*2,
	}
}

type Direction int

const (
	DirectionUp = Direction(iota)
	DirectionDown
	DirectionLeft
	DirectionRight
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	}
	return "unknown"
}

// Match reports whether a target offset by (dx, dy) from the reference
// point lies in the half plane the direction names.
func (d Direction) Match(dx, dy int) bool {
	switch d {
	case DirectionUp:
		return dy < 0
	case DirectionDown:
		return dy > 0
	case DirectionLeft:
		return dx < 0
	case DirectionRight:
		return dx > 0
	}
	return false
}

func euclidDistance(x1, y1, x2, y2 int) float64 {
	dx := float64(x2 - x1)
	dy := float64(y2 - y1)
	return math.Sqrt(dx*dx + dy*dy)
}

// nearestByDirection scans candidates and returns the index of the
// Euclidean-nearest one whose center lies in the requested half plane
// relative to (refX, refY). Ties keep the first hit in iteration
// order. Returns -1 when nothing matches.
func nearestByDirection(refX, refY int, dir Direction, candidates []Box) int {
	best := -1
	bestDist := math.Inf(1)
	for i, c := range candidates {
		cx, cy := c.Center()
		if !dir.Match(cx-refX, cy-refY) {
			continue
		}
		if d := euclidDistance(refX, refY, cx, cy); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}
