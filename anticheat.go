package main

import (
	"log"
	"sync"
	"time"
)

const (
	movementHistoryCap  = 20
	shotHistoryCap      = 50
	violationLogCap     = 100
	staleSampleMs       = 1000 // movement samples older than this are out-of-order/stale
	teleportWindowMs    = 100
	turnWindowMs        = 50
	maxTurnAngle        = 90.0
	wallPassMinDist     = 10.0
	wallPassCoreRadius  = 5.0
	sampleIdleHorizon   = 5 * time.Minute
	minPositionY        = -10.0
)

// Violation categories and their kick thresholds.
const (
	ViolationMovement = "movement"
	ViolationShooting = "shooting"
	ViolationGeneral  = "general"
)

var kickThresholds = map[string]int{
	ViolationMovement: 5,
	ViolationShooting: 10,
	ViolationGeneral:  15,
}

type movementSample struct {
	Position  Vec3
	Timestamp int64 // client clock, unix ms
	Speed     float64
}

type violation struct {
	Category string
	Reason   string
	At       time.Time
}

// playerSamples is the per-player anti-cheat history. It is keyed by
// player id independent of room membership, so a player's movement
// record survives a room change within the same connection.
type playerSamples struct {
	LastPosition  Vec3
	LastTimestamp int64
	Movements     []movementSample
	Shots         []int64 // server clock, unix ms
	LastShotAt    int64
	Violations    map[string]int
	Log           []violation
	SeenAt        time.Time
}

// AntiCheat validates client-reported actions against per-player
// historical samples. Rejections never mutate game state; they only
// accumulate violations that may escalate to a kick.
type AntiCheat struct {
	mu      sync.Mutex
	players map[string]*playerSamples

	maxSpeed     float64 // units per second
	maxShootRate int     // shots per second
	mapSize      float64
	maxHeight    float64

	// OnKick is called (outside the validator lock) when a player
	// crosses a violation threshold. The player's state is cleared
	// before the call.
	OnKick func(playerID, reason string)

	// OnViolation is called (outside the validator lock) for every
	// recorded violation, kick or not.
	OnViolation func(playerID, category, reason string)

	// nowFn supplies the clock for shot timing; tests override it.
	nowFn func() time.Time
}

// NewAntiCheat creates a validator with the given ceilings. The shot
// rate is clamped to at least one per second; it divides the cooldown.
func NewAntiCheat(maxSpeed float64, maxShootRate int, mapSize, maxHeight float64) *AntiCheat {
	if maxShootRate < 1 {
		maxShootRate = 1
	}
	return &AntiCheat{
		players:      make(map[string]*playerSamples),
		maxSpeed:     maxSpeed,
		maxShootRate: maxShootRate,
		mapSize:      mapSize,
		maxHeight:    maxHeight,
		nowFn:        time.Now,
	}
}

func (ac *AntiCheat) samples(playerID string) *playerSamples {
	ps, ok := ac.players[playerID]
	if !ok {
		ps = &playerSamples{Violations: make(map[string]int)}
		ac.players[playerID] = ps
	}
	ps.SeenAt = time.Now()
	return ps
}

// ValidateMovement checks a client-reported position sample. The
// first sample for a player is always accepted and seeds history.
func (ac *AntiCheat) ValidateMovement(playerID string, pos Vec3, timestamp int64) bool {
	ac.mu.Lock()
	ps := ac.samples(playerID)

	if len(ps.Movements) == 0 {
		ps.record(pos, timestamp, 0)
		ac.mu.Unlock()
		return true
	}

	elapsed := timestamp - ps.LastTimestamp
	if elapsed <= 0 || elapsed > staleSampleMs {
		ac.mu.Unlock()
		ac.flag(playerID, ViolationMovement, "stale or out-of-order sample")
		return false
	}

	dist := Distance(ps.LastPosition, pos)
	speed := dist / (float64(elapsed) / 1000)

	if speed > ac.maxSpeed {
		ac.mu.Unlock()
		ac.flag(playerID, ViolationMovement, "speed above limit")
		return false
	}
	if dist > ac.maxSpeed*2 && elapsed < teleportWindowMs {
		ac.mu.Unlock()
		ac.flag(playerID, ViolationMovement, "teleport")
		return false
	}
	if len(ps.Movements) >= 2 && elapsed < turnWindowMs {
		n := len(ps.Movements)
		prev := ps.Movements[n-1].Position.Sub(ps.Movements[n-2].Position)
		cur := pos.Sub(ps.Movements[n-1].Position)
		if prev.Length() > 0 && cur.Length() > 0 && AngleBetween(prev, cur) > maxTurnAngle {
			ac.mu.Unlock()
			ac.flag(playerID, ViolationMovement, "impossible turn")
			return false
		}
	}
	// Coarse wall-pass proxy: a long straight move that ends deep in
	// the map core cut through geometry. Not a real collision check.
	if dist > wallPassMinDist && pos.Length() < wallPassCoreRadius {
		ac.mu.Unlock()
		ac.flag(playerID, ViolationMovement, "path through map center")
		return false
	}

	ps.record(pos, timestamp, speed)
	ac.mu.Unlock()
	return true
}

func (ps *playerSamples) record(pos Vec3, timestamp int64, speed float64) {
	ps.LastPosition = pos
	ps.LastTimestamp = timestamp
	ps.Movements = append(ps.Movements, movementSample{Position: pos, Timestamp: timestamp, Speed: speed})
	if len(ps.Movements) > movementHistoryCap {
		ps.Movements = ps.Movements[len(ps.Movements)-movementHistoryCap:]
	}
}

// ValidateShooting checks a shot report against the sliding-window
// rate limit and the minimum cooldown derived from it.
func (ac *AntiCheat) ValidateShooting(playerID string, shot ShootMsg) bool {
	now := ac.nowFn().UnixMilli()

	ac.mu.Lock()
	ps := ac.samples(playerID)

	// Count shots inside the last second, including the window edge.
	cutoff := now - 1000
	recent := 0
	for _, ts := range ps.Shots {
		if ts >= cutoff {
			recent++
		}
	}
	if recent >= ac.maxShootRate {
		ac.mu.Unlock()
		ac.flag(playerID, ViolationShooting, "fire rate above limit")
		return false
	}

	if shot.Origin == nil || shot.Direction == nil {
		ac.mu.Unlock()
		ac.flag(playerID, ViolationShooting, "malformed shot payload")
		return false
	}
	if shot.Health <= 0 {
		ac.mu.Unlock()
		ac.flag(playerID, ViolationShooting, "shot while dead")
		return false
	}

	minCooldown := int64(1000 / ac.maxShootRate)
	if ps.LastShotAt != 0 && now-ps.LastShotAt < minCooldown {
		ac.mu.Unlock()
		ac.flag(playerID, ViolationShooting, "shot under minimum cooldown")
		return false
	}

	ps.Shots = append(ps.Shots, now)
	if len(ps.Shots) > shotHistoryCap {
		ps.Shots = ps.Shots[len(ps.Shots)-shotHistoryCap:]
	}
	ps.LastShotAt = now
	ac.mu.Unlock()
	return true
}

// ValidatePosition range-checks a reported position. Failures count
// as general violations.
func (ac *AntiCheat) ValidatePosition(playerID string, pos Vec3) bool {
	if validPosition(pos, ac.mapSize, ac.maxHeight) {
		return true
	}
	ac.flag(playerID, ViolationGeneral, "position out of bounds")
	return false
}

// ValidateRotation range-checks a reported rotation in degrees.
func (ac *AntiCheat) ValidateRotation(playerID string, rot Vec3) bool {
	if validRotation(rot) {
		return true
	}
	ac.flag(playerID, ViolationGeneral, "rotation out of range")
	return false
}

func validPosition(pos Vec3, mapSize, maxHeight float64) bool {
	if !pos.IsFinite() {
		return false
	}
	if pos.X < -mapSize || pos.X > mapSize || pos.Z < -mapSize || pos.Z > mapSize {
		return false
	}
	return pos.Y >= minPositionY && pos.Y <= maxHeight
}

func validRotation(rot Vec3) bool {
	if !rot.IsFinite() {
		return false
	}
	return rot.X >= -180 && rot.X <= 180 &&
		rot.Y >= -180 && rot.Y <= 180 &&
		rot.Z >= -180 && rot.Z <= 180
}

// flag records a violation and kicks the player when their category
// counter crosses its threshold.
func (ac *AntiCheat) flag(playerID, category, reason string) {
	ac.mu.Lock()
	ps := ac.samples(playerID)
	ps.Violations[category]++
	ps.Log = append(ps.Log, violation{Category: category, Reason: reason, At: time.Now()})
	if len(ps.Log) > violationLogCap {
		ps.Log = ps.Log[len(ps.Log)-violationLogCap:]
	}
	count := ps.Violations[category]
	kick := count >= kickThresholds[category]
	if kick {
		delete(ac.players, playerID)
	}
	ac.mu.Unlock()

	log.Printf("anticheat: %s violation for %s: %s (%d)", category, playerID, reason, count)
	if ac.OnViolation != nil {
		ac.OnViolation(playerID, category, reason)
	}
	if kick && ac.OnKick != nil {
		// The kick path re-enters room state, and validation runs
		// under the room lock; never invoke the hook inline.
		go ac.OnKick(playerID, category+" violations")
	}
}

// ViolationCount returns the per-category counter for a player.
func (ac *AntiCheat) ViolationCount(playerID, category string) int {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	ps, ok := ac.players[playerID]
	if !ok {
		return 0
	}
	return ps.Violations[category]
}

// Reset drops all state for a player (kick, disconnect).
func (ac *AntiCheat) Reset(playerID string) {
	ac.mu.Lock()
	delete(ac.players, playerID)
	ac.mu.Unlock()
}

// Cleanup purges sample sets idle past the horizon. Called
// periodically from the game loop.
func (ac *AntiCheat) Cleanup(now time.Time) {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	for id, ps := range ac.players {
		if now.Sub(ps.SeenAt) > sampleIdleHorizon {
			delete(ac.players, id)
		}
	}
}