package main

import "math"

// Position is a point in map space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Speed is a velocity (or any displacement) in map units per 16ms step.
type Speed struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// Distance returns the euclidean distance between two positions.
func (p Position) Distance(o Position) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Sub returns the displacement from o to p.
func (p Position) Sub(o Position) Speed {
	return Speed{DX: p.X - o.X, DY: p.Y - o.Y}
}

// Add returns the position displaced by s.
func (p Position) Add(s Speed) Position {
	return Position{X: p.X + s.DX, Y: p.Y + s.DY}
}

// Magnitude returns the length of the vector.
func (s Speed) Magnitude() float64 {
	return math.Sqrt(s.DX*s.DX + s.DY*s.DY)
}

// Dot returns the dot product of two vectors.
func (s Speed) Dot(o Speed) float64 {
	return s.DX*o.DX + s.DY*o.DY
}

// Normalize returns a unit-length vector in the same direction.
// The zero vector normalizes to itself.
func (s Speed) Normalize() Speed {
	mag := s.Magnitude()
	if mag == 0 {
		return Speed{}
	}
	return Speed{DX: s.DX / mag, DY: s.DY / mag}
}

// Scale returns the vector multiplied by a scalar.
func (s Speed) Scale(f float64) Speed {
	return Speed{DX: s.DX * f, DY: s.DY * f}
}

// IsZero reports whether the vector has no magnitude.
func (s Speed) IsZero() bool {
	return s.DX == 0 && s.DY == 0
}

// Clamp restricts v to [min, max]
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
