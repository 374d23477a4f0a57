// Package rng implements the deterministic seeded pseudo-random stream
// shared between the browser client and the server for food placement.
//
// The generator is deliberately weak — fract(sin(n) * 10000) — but it must
// be bit-identical to the client's implementation, because the replay
// engine (internal/infra/replay) re-derives food placement from the same
// seed and move log the client used. Swapping this algorithm requires a
// co-deployed client change.
package rng

import "math"

// Grid is the snake board's side length, shared with the replay engine.
const Grid = 30

// Rand returns a deterministic value in [0, 1) derived from n.
// Reference algorithm: fract(sin(n) * 10000).
func Rand(n int64) float64 {
	v := math.Sin(float64(n)) * 10000
	return v - math.Floor(v)
}

// Point is a grid cell.
type Point struct {
	X, Y int
}

// NextFood derives the next food position from the seed, the number of
// food items already eaten, and the current snake occupancy. It mirrors
// the same rule the client uses: x = floor(rand(seed+foodEaten+k) * GRID), y uses k+1, incrementing
// k on every collision with the snake until a free cell is found or GRID²
// attempts elapse (in which case the last candidate is returned — the
// client exhibits the same degenerate behavior on a fully-occupied board).
func NextFood(seed uint32, foodEaten int, occupied map[Point]bool) Point {
	var p Point
	k := 0
	maxAttempts := Grid * Grid
	for attempt := 0; attempt < maxAttempts; attempt++ {
		base := int64(seed) + int64(foodEaten) + int64(k)
		x := int(math.Floor(Rand(base) * Grid))
		y := int(math.Floor(Rand(base+1) * Grid))
		p = Point{X: x, Y: y}
		if !occupied[p] {
			return p
		}
		k++
	}
	return p
}
