// Package space provides 2D geometry, a pluggable spatial index and the
// adapter the engine uses to track which agents are live in space.
package space

import "math"

// Point is a location in the plane.
type Point struct {
	X float64
	Y float64
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Motion is a relative movement: first rotate by Rotation radians, then move
// Translation units along the resulting heading.
type Motion struct {
	Rotation    float64
	Translation float64
}

// IsZero reports whether applying m leaves a projection unchanged.
func (m Motion) IsZero() bool {
	return m.Rotation == 0 && m.Translation == 0
}

// Projection is an object's placement: a point plus a heading in radians.
type Projection struct {
	Point
	Orientation float64
}

// Apply returns the projection reached by performing m from p.
func (p Projection) Apply(m Motion) Projection {
	o := normalizeAngle(p.Orientation + m.Rotation)
	return Projection{
		Point: Point{
			X: p.X + math.Cos(o)*m.Translation,
			Y: p.Y + math.Sin(o)*m.Translation,
		},
		Orientation: o,
	}
}

// normalizeAngle maps a to [0, 2π).
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
