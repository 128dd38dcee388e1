package main

import (
	"math"
	"testing"
	"time"
)

func testValidator() *AntiCheat {
	return NewAntiCheat(10, 10, 50, 20)
}

func TestMovementFirstSampleAccepted(t *testing.T) {
	ac := testValidator()
	if !ac.ValidateMovement("p1", Vec3{X: 20, Y: 1, Z: 20}, 1000) {
		t.Error("first sample should always be accepted")
	}
}

func TestMovementSpeedLimit(t *testing.T) {
	ac := testValidator()
	ac.ValidateMovement("p1", Vec3{X: 20, Y: 1}, 1000)

	// Exactly the max speed: 10 units over 1000ms.
	if !ac.ValidateMovement("p1", Vec3{X: 30, Y: 1}, 2000) {
		t.Error("speed at exactly the limit should be accepted")
	}
	// An epsilon above is rejected.
	if ac.ValidateMovement("p1", Vec3{X: 40.001, Y: 1}, 3000) {
		t.Error("speed above the limit should be rejected")
	}
	if n := ac.ViolationCount("p1", ViolationMovement); n != 1 {
		t.Errorf("expected 1 movement violation, got %d", n)
	}
}

func TestMovementStaleSamples(t *testing.T) {
	ac := testValidator()
	ac.ValidateMovement("p1", Vec3{X: 20, Y: 1}, 1000)

	if ac.ValidateMovement("p1", Vec3{X: 20.1, Y: 1}, 1000) {
		t.Error("zero elapsed should be rejected")
	}
	if ac.ValidateMovement("p1", Vec3{X: 20.1, Y: 1}, 900) {
		t.Error("out-of-order sample should be rejected")
	}
	if ac.ValidateMovement("p1", Vec3{X: 20.1, Y: 1}, 2500) {
		t.Error("sample older than a second should be rejected")
	}
}

func TestMovementTeleport(t *testing.T) {
	ac := testValidator()
	ac.ValidateMovement("p1", Vec3{X: -20, Y: 1}, 1000)

	// 25 units in 50ms: both the speed and teleport heuristics fire;
	// either way the sample must be rejected.
	if ac.ValidateMovement("p1", Vec3{X: 5, Y: 1}, 1050) {
		t.Error("teleport should be rejected")
	}
}

func TestMovementImpossibleTurn(t *testing.T) {
	ac := testValidator()
	ac.ValidateMovement("p1", Vec3{X: 20, Y: 1}, 1000)
	ac.ValidateMovement("p1", Vec3{X: 21, Y: 1}, 1100)

	// Instant reversal within 40ms.
	if ac.ValidateMovement("p1", Vec3{X: 20.6, Y: 1}, 1140) {
		t.Error("180-degree turn inside the window should be rejected")
	}
}

func TestMovementWallPass(t *testing.T) {
	// High speed ceiling so only the wall-pass heuristic can fire.
	ac := NewAntiCheat(50, 10, 50, 20)
	ac.ValidateMovement("p1", Vec3{X: 12}, 1000)

	// 11 units straight through the map core.
	if ac.ValidateMovement("p1", Vec3{X: 1}, 2000) {
		t.Error("long move ending at the map center should be rejected")
	}
}

func TestShootingRateLimit(t *testing.T) {
	ac := testValidator()
	clock := time.Unix(1000, 0)
	ac.nowFn = func() time.Time { return clock }

	origin := &Vec3{Y: 1}
	dir := &Vec3{X: 1}
	shot := ShootMsg{Origin: origin, Direction: dir, Health: 100}

	// Ten shots spaced at exactly the minimum cooldown all pass.
	for i := 0; i < 10; i++ {
		if !ac.ValidateShooting("p1", shot) {
			t.Fatalf("shot %d should be accepted", i+1)
		}
		clock = clock.Add(100 * time.Millisecond)
	}
	// The 11th inside the same one-second window is rejected.
	if ac.ValidateShooting("p1", shot) {
		t.Error("11th shot in the window should be rejected")
	}
	if n := ac.ViolationCount("p1", ViolationShooting); n != 1 {
		t.Errorf("expected 1 shooting violation, got %d", n)
	}
}

func TestShootingMalformedAndDead(t *testing.T) {
	ac := testValidator()
	dir := &Vec3{X: 1}

	if ac.ValidateShooting("p1", ShootMsg{Direction: dir, Health: 100}) {
		t.Error("missing origin should be rejected")
	}
	if ac.ValidateShooting("p2", ShootMsg{Origin: &Vec3{}, Direction: dir, Health: 0}) {
		t.Error("shot with non-positive health should be rejected")
	}
}

func TestShootingCooldown(t *testing.T) {
	ac := testValidator()
	clock := time.Unix(1000, 0)
	ac.nowFn = func() time.Time { return clock }

	shot := ShootMsg{Origin: &Vec3{}, Direction: &Vec3{X: 1}, Health: 100}
	if !ac.ValidateShooting("p1", shot) {
		t.Fatal("first shot should pass")
	}
	clock = clock.Add(50 * time.Millisecond)
	if ac.ValidateShooting("p1", shot) {
		t.Error("shot under the minimum cooldown should be rejected")
	}
}

func TestPositionAndRotationRanges(t *testing.T) {
	ac := testValidator()

	if !ac.ValidatePosition("p1", Vec3{X: 50, Y: 20, Z: -50}) {
		t.Error("position on the map edge should be accepted")
	}
	if ac.ValidatePosition("p1", Vec3{X: 51, Y: 1}) {
		t.Error("position outside the map should be rejected")
	}
	if ac.ValidatePosition("p1", Vec3{Y: -11}) {
		t.Error("position below the floor should be rejected")
	}
	if ac.ValidatePosition("p1", Vec3{X: math.NaN(), Y: 1}) {
		t.Error("non-finite position should be rejected")
	}

	if !ac.ValidateRotation("p1", Vec3{X: -180, Y: 180, Z: 0}) {
		t.Error("rotation at the range edge should be accepted")
	}
	if ac.ValidateRotation("p1", Vec3{Y: 181}) {
		t.Error("rotation past 180 should be rejected")
	}

	if n := ac.ViolationCount("p1", ViolationGeneral); n != 4 {
		t.Errorf("expected 4 general violations, got %d", n)
	}
}

func TestViolationKickThreshold(t *testing.T) {
	ac := testValidator()
	kicked := make(chan string, 1)
	ac.OnKick = func(playerID, reason string) {
		kicked <- playerID
	}

	ac.ValidateMovement("p1", Vec3{X: 20, Y: 1}, 1000)
	// Five movement violations trip the kick.
	for i := 0; i < 5; i++ {
		ac.ValidateMovement("p1", Vec3{X: 20, Y: 1}, 1000) // zero elapsed
	}

	select {
	case id := <-kicked:
		if id != "p1" {
			t.Fatalf("expected p1 to be kicked, got %q", id)
		}
	case <-time.After(time.Second):
		t.Fatal("kick hook was not invoked")
	}
	// Kick clears the player's violation and sample state.
	if n := ac.ViolationCount("p1", ViolationMovement); n != 0 {
		t.Errorf("expected cleared violations after kick, got %d", n)
	}
}

func TestZeroShootRateClamped(t *testing.T) {
	ac := NewAntiCheat(10, 0, 50, 20)
	shot := ShootMsg{Origin: &Vec3{}, Direction: &Vec3{X: 1}, Health: 100}
	if !ac.ValidateShooting("p1", shot) {
		t.Error("first shot should be accepted with a clamped rate")
	}
}

func TestValidatorIdleCleanup(t *testing.T) {
	ac := testValidator()
	ac.ValidateMovement("p1", Vec3{X: 20, Y: 1}, 1000)

	ac.Cleanup(time.Now().Add(sampleIdleHorizon + time.Second))

	ac.mu.Lock()
	_, ok := ac.players["p1"]
	ac.mu.Unlock()
	if ok {
		t.Error("idle sample set should be purged")
	}
}
