package main

import (
	"math"
	"testing"
)

func TestVecBasics(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 3}
	b := Vec3{X: 4, Y: 6, Z: 8}

	if d := Distance(a, b); math.Abs(d-math.Sqrt(9+16+25)) > 1e-9 {
		t.Errorf("distance: got %f", d)
	}
	if dot := a.Dot(b); dot != 4+12+24 {
		t.Errorf("dot: got %f", dot)
	}
	n := Vec3{X: 3, Y: 0, Z: 4}.Normalize()
	if math.Abs(n.Length()-1) > 1e-9 {
		t.Errorf("normalize: length %f", n.Length())
	}
	if z := (Vec3{}).Normalize(); z != (Vec3{}) {
		t.Error("zero vector should normalize to itself")
	}
}

func TestVecIsFinite(t *testing.T) {
	if !(Vec3{X: 1, Y: 2, Z: 3}).IsFinite() {
		t.Error("finite vector reported non-finite")
	}
	if (Vec3{X: math.NaN()}).IsFinite() {
		t.Error("NaN component should not be finite")
	}
	if (Vec3{Z: math.Inf(1)}).IsFinite() {
		t.Error("Inf component should not be finite")
	}
}

func TestRaySphereDirectHit(t *testing.T) {
	origin := Vec3{}
	dir := Vec3{X: 1}
	center := Vec3{X: 10, Y: 0.3} // closest approach 0.3 < 0.5

	hit, point, dist := RaySphere(origin, dir, center, 0.5)
	if !hit {
		t.Fatal("expected hit")
	}
	if math.Abs(dist-10) > 1e-9 {
		t.Errorf("projection distance: got %f", dist)
	}
	if math.Abs(point.X-10) > 1e-9 || point.Y != 0 {
		t.Errorf("hit point: got %+v", point)
	}
}

func TestRaySphereMiss(t *testing.T) {
	origin := Vec3{}
	dir := Vec3{X: 1}

	if hit, _, _ := RaySphere(origin, dir, Vec3{X: 10, Y: 0.6}, 0.5); hit {
		t.Error("closest approach above radius should miss")
	}
}

func TestRaySphereBehindOrigin(t *testing.T) {
	origin := Vec3{}
	dir := Vec3{X: 1}

	// A sphere behind the shooter never registers.
	if hit, _, _ := RaySphere(origin, dir, Vec3{X: -5}, 0.5); hit {
		t.Error("sphere behind origin should miss")
	}
}

func TestAngleBetween(t *testing.T) {
	a := Vec3{X: 1}
	b := Vec3{Z: 1}
	if ang := AngleBetween(a, b); math.Abs(ang-90) > 1e-9 {
		t.Errorf("expected 90 degrees, got %f", ang)
	}
	if ang := AngleBetween(a, Vec3{X: -1}); math.Abs(ang-180) > 1e-9 {
		t.Errorf("expected 180 degrees, got %f", ang)
	}
}
