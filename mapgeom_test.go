package main

import (
	"math"
	"testing"
)

func table() Circle {
	return Circle{Radius: 75.0, Center: Position{X: 275.0, Y: 275.0}}
}

func TestCollideFarAway(t *testing.T) {
	// Way across the map, small movement: untouched
	movement := Speed{DX: 2, DY: 0}
	out := table().Collide(Position{X: 900, Y: 700}, PlayerRadius, movement)
	if out != movement {
		t.Errorf("expected movement unchanged, got %+v", out)
	}
}

func TestCollideMovingAway(t *testing.T) {
	// Right next to the table but heading the other way
	movement := Speed{DX: 200, DY: 0}
	out := table().Collide(Position{X: 370, Y: 275}, PlayerRadius, movement)
	if out != movement {
		t.Errorf("expected movement unchanged, got %+v", out)
	}
}

func TestCollidePerpendicularMiss(t *testing.T) {
	// Moving toward the table's x range but offset far enough in y to pass by
	movement := Speed{DX: -300, DY: 0}
	out := table().Collide(Position{X: 500, Y: 500}, PlayerRadius, movement)
	if out != movement {
		t.Errorf("expected movement unchanged, got %+v", out)
	}
}

func TestCollideStopsAtContact(t *testing.T) {
	// Head-on at the table center from the left: movement long enough to
	// punch through must be clamped to stop exactly at contact.
	c := table()
	start := Position{X: 100, Y: 275}
	movement := Speed{DX: 300, DY: 0}

	out := c.Collide(start, PlayerRadius, movement)
	if out.DY != 0 {
		t.Errorf("direction should be preserved, got %+v", out)
	}

	// Contact is when the circles touch: distance between centers = 85
	wantMagnitude := start.Distance(c.Center) - (PlayerRadius + c.Radius)
	if math.Abs(out.Magnitude()-wantMagnitude) > 1e-9 {
		t.Errorf("expected clamp to %.6f, got %.6f", wantMagnitude, out.Magnitude())
	}

	landing := start.Add(out)
	if landing.Distance(c.Center) < PlayerRadius+c.Radius-1e-9 {
		t.Errorf("landing %+v penetrates the shape", landing)
	}
}

func TestCollideShortOfContact(t *testing.T) {
	// Heading straight at the table but stopping before contact
	movement := Speed{DX: 10, DY: 0}
	out := table().Collide(Position{X: 100, Y: 275}, PlayerRadius, movement)
	if out != movement {
		t.Errorf("expected movement unchanged, got %+v", out)
	}

	// Angled approach that survives the early rejects but still falls short
	// of the pre-impact distance along the movement line.
	angled := Speed{DX: 90.63, DY: 42.26}
	out = table().Collide(Position{X: 100, Y: 275}, PlayerRadius, angled)
	if out != angled {
		t.Errorf("expected movement unchanged, got %+v", out)
	}
}

func TestCircleContains(t *testing.T) {
	c := table()
	if !c.Contains(Position{X: 275, Y: 275}) {
		t.Error("center should be inside")
	}
	if !c.Contains(Position{X: 340, Y: 275}) {
		t.Error("interior point should be inside")
	}
	if c.Contains(Position{X: 400, Y: 275}) {
		t.Error("outside point should not be inside")
	}
}

func TestConstrainCircleWithinBounds(t *testing.T) {
	m := FirstMap()
	cases := []struct {
		in   Position
		want Position
	}{
		{Position{X: -50, Y: 300}, Position{X: PlayerRadius, Y: 300}},
		{Position{X: 2000, Y: 300}, Position{X: m.Width() - PlayerRadius, Y: 300}},
		{Position{X: 300, Y: -5}, Position{X: 300, Y: PlayerRadius}},
		{Position{X: 300, Y: 9999}, Position{X: 300, Y: m.Height() - PlayerRadius}},
		{Position{X: 300, Y: 300}, Position{X: 300, Y: 300}},
	}
	for _, tc := range cases {
		got := m.ConstrainCircleWithinBounds(tc.in, PlayerRadius)
		if got != tc.want {
			t.Errorf("constrain %+v: got %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestSpeedNormalize(t *testing.T) {
	n := Speed{DX: 3, DY: 4}.Normalize()
	if math.Abs(n.Magnitude()-1) > 1e-12 {
		t.Errorf("expected unit vector, got magnitude %f", n.Magnitude())
	}
	if !(Speed{}).Normalize().IsZero() {
		t.Error("zero vector should normalize to itself")
	}
}
