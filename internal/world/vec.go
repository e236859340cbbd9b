package world

import "math"

// Vec3 is a world-space position or direction. Y is up; the lane runs along +Z.
type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// Forward is the direction the car travels.
var Forward = Vec3{Z: 1}

func (v Vec3) Add(o Vec3) Vec3         { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3         { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3    { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Len() float64            { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }
func (v Vec3) Distance(o Vec3) float64 { return v.Sub(o).Len() }
func (v Vec3) IsZero() bool            { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// Normalized returns the unit vector, or the zero vector for zero length.
func (v Vec3) Normalized() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Flat drops the vertical component.
func (v Vec3) Flat() Vec3 { return Vec3{X: v.X, Z: v.Z} }

// Round2 rounds X and Z to two decimal places so that equal-looking spawn
// points compare equal. Y is the tile height and is kept as is.
func (v Vec3) Round2() Vec3 {
	return Vec3{X: round2(v.X), Y: v.Y, Z: round2(v.Z)}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// RotateY rotates v around the up axis by deg degrees (positive turns +Z toward +X).
func (v Vec3) RotateY(deg float64) Vec3 {
	rad := deg * math.Pi / 180
	s, c := math.Sin(rad), math.Cos(rad)
	return Vec3{
		X: v.X*c + v.Z*s,
		Y: v.Y,
		Z: -v.X*s + v.Z*c,
	}
}

// MoveTowards moves current toward target by at most maxDelta.
func MoveTowards(current, target, maxDelta float64) float64 {
	if math.Abs(target-current) <= maxDelta {
		return target
	}
	if target > current {
		return current + maxDelta
	}
	return current - maxDelta
}

// Clamp limits f to [lo, hi].
func Clamp(f, lo, hi float64) float64 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}

// Heading returns the yaw in degrees of a direction on the XZ plane, matching
// RotateY: Forward.RotateY(Heading(d)) points along d.
func Heading(d Vec3) float64 {
	return math.Atan2(d.X, d.Z) * 180 / math.Pi
}

// DeltaAngle returns the shortest signed difference from a to b in degrees.
func DeltaAngle(a, b float64) float64 {
	d := math.Mod(b-a, 360)
	if d > 180 {
		d -= 360
	} else if d < -180 {
		d += 360
	}
	return d
}
