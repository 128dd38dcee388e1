package main

import "math"

// Vec3 is a point or direction in world space.
type Vec3 struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
	Z float64 `json:"z" msgpack:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) Length() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalize returns a unit-length copy of v. The zero vector
// normalizes to itself.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Distance returns the distance between two points.
func Distance(a, b Vec3) float64 {
	return b.Sub(a).Length()
}

// IsFinite reports whether all components are real numbers.
func (v Vec3) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

// RaySphere tests a ray (origin, unit direction) against a sphere.
// Returns whether the ray passes within radius of center in front of
// the origin, the closest point on the ray to the center, and the
// projection distance along the ray. Intersections behind the origin
// (negative projection) never hit.
func RaySphere(origin, dir, center Vec3, radius float64) (hit bool, point Vec3, dist float64) {
	toCenter := center.Sub(origin)
	proj := toCenter.Dot(dir)
	if proj < 0 {
		return false, Vec3{}, 0
	}
	closest := origin.Add(dir.Scale(proj))
	if Distance(closest, center) > radius {
		return false, Vec3{}, 0
	}
	return true, closest, proj
}

// Clamp restricts v to [min, max].
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// AngleBetween returns the angle in degrees between two vectors.
// Undefined inputs (zero vectors) report 0.
func AngleBetween(a, b Vec3) float64 {
	la, lb := a.Length(), b.Length()
	if la == 0 || lb == 0 {
		return 0
	}
	cos := Clamp(a.Dot(b)/(la*lb), -1, 1)
	return math.Acos(cos) * 180 / math.Pi
}
