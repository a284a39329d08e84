package main

import (
	"math"
	"math/rand"
)

// Shape is a piece of static map geometry. Collide resolves a movement
// vector against the shape; the engine applies shapes in geometry order, so
// later shapes see the already-clipped vector.
type Shape interface {
	Collide(pos Position, radius float64, movement Speed) Speed
}

// Circle is the only shape variant the engine currently needs. The visual
// attributes are passed through to clients untouched.
type Circle struct {
	Radius       float64  `json:"radius"`
	Center       Position `json:"center"`
	FillColor    string   `json:"fill_color"`
	OutlineWidth float64  `json:"outline_width"`
	OutlineColor string   `json:"outline_color"`
}

// Contains reports whether the point lies inside the circle.
func (c Circle) Contains(p Position) bool {
	return p.Distance(c.Center) <= c.Radius
}

// Collide clips a movement vector so a moving circle of the given radius
// stops exactly at contact with this circle. Swept circle-circle test, after
// the classic pool-hall treatment.
func (c Circle) Collide(pos Position, radius float64, movement Speed) Speed {
	sumRadii := radius + c.Radius

	// Quick reject: even moving straight at the shape we couldn't reach it.
	dist := pos.Distance(c.Center) - sumRadii
	if movement.Magnitude() < dist {
		return movement
	}

	n := movement.Normalize()

	// Moving away from the shape can't collide.
	toCenter := c.Center.Sub(pos)
	d := n.Dot(toCenter)
	if d <= 0 {
		return movement
	}

	// Closest approach of the movement line to the center.
	lengthC := toCenter.Magnitude()
	f := lengthC*lengthC - d*d
	radiiSquared := sumRadii * sumRadii
	if f >= radiiSquared {
		return movement
	}

	t := radiiSquared - f
	if t < 0 {
		return movement
	}

	// Distance along the movement line before impact.
	distance := d - math.Sqrt(t)
	if movement.Magnitude() < distance {
		return movement
	}

	// Stop exactly at contact, preserving direction.
	return n.Scale(distance)
}

// GameMap is the static world a session plays on. Immutable once built.
type GameMap struct {
	width          float64
	height         float64
	StaticGeometry []Shape
}

// FirstMap is the only shipped map: an open room with the conference table
// in the meeting corner.
func FirstMap() *GameMap {
	return &GameMap{
		width:  1024.0,
		height: 768.0,
		StaticGeometry: []Shape{
			// conference table
			Circle{
				Radius:       75.0,
				Center:       Position{X: 275.0, Y: 275.0},
				OutlineWidth: 1.0,
				OutlineColor: "#000",
				FillColor:    "#358",
			},
		},
	}
}

func (m *GameMap) Width() float64  { return m.width }
func (m *GameMap) Height() float64 { return m.height }

// ConstrainCircleWithinBounds clamps a circle center so the whole circle
// stays inside the map rectangle.
func (m *GameMap) ConstrainCircleWithinBounds(center Position, radius float64) Position {
	return Position{
		X: Clamp(center.X, radius, m.width-radius),
		Y: Clamp(center.Y, radius, m.height-radius),
	}
}

// RandomPosition picks a spawn or task location, inset from the walls.
func (m *GameMap) RandomPosition(rng *rand.Rand) Position {
	const inset = 30.0
	return Position{
		X: inset + rng.Float64()*(m.width-2*inset),
		Y: inset + rng.Float64()*(m.height-2*inset),
	}
}

// RandomTask places an unfinished task somewhere on the map.
func (m *GameMap) RandomTask(rng *rand.Rand) Task {
	return Task{Position: m.RandomPosition(rng)}
}
