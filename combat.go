package main

import (
	"errors"
	"time"
)

// Precondition failures for ProcessShot. These are validation
// rejections: the simulation is untouched and only the shooter gets
// an acknowledgment.
var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrPlayerDead     = errors.New("player is dead")
	ErrShotRejected   = errors.New("shot rejected")
	ErrCooldown       = errors.New("weapon cooling down")
	ErrNoAmmo         = errors.New("out of ammo")
	ErrReloading      = errors.New("reloading")
)

// killScore is the score awarded per kill.
const killScore = 10

// HitResult describes the single target a resolved shot hit.
type HitResult struct {
	TargetID  string `json:"targetId"`
	HitPoint  Vec3   `json:"hitPoint"`
	Damage    int    `json:"damage"`
	NewHealth int    `json:"newHealth"`
	IsDead    bool   `json:"isDead"`
}

// ProcessShot resolves a fire event into at most one hit.
// Preconditions are checked in order, short-circuiting on the first
// failure: shooter exists and is alive, anti-cheat accepts the shot,
// the fire-rate cooldown has elapsed, and ammo remains. On success
// ammo is decremented and the shot is broadcast with its outcome.
func (r *Room) ProcessShot(shooterID string, shot ShootMsg, ac *AntiCheat) (*HitResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	shooter, ok := r.players[shooterID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	shooter.Touch(now)
	if !shooter.Alive {
		return nil, ErrPlayerDead
	}
	if ac != nil && !ac.ValidateShooting(shooterID, shot) {
		return nil, ErrShotRejected
	}
	if shot.Direction == nil {
		return nil, ErrShotRejected
	}
	weapon := shooter.Weapon()
	if !shooter.LastShot.IsZero() && now.Sub(shooter.LastShot) < weapon.Cooldown() {
		return nil, ErrCooldown
	}
	if !shooter.Reloading.IsZero() {
		return nil, ErrReloading
	}
	if shooter.Ammo <= 0 {
		return nil, ErrNoAmmo
	}

	shooter.Ammo--
	shooter.LastShot = now
	shooter.ShootReady = false
	r.touch(now)

	origin := shooter.Position
	if shot.Origin != nil {
		origin = *shot.Origin
	}
	dir := shot.Direction.Normalize()

	hit := r.resolveHit(shooter, origin, dir, weapon)
	if hit != nil {
		target := r.players[hit.TargetID]
		newHealth, died := r.applyDamage(shooter, target, weapon.Damage, now)
		hit.NewHealth = newHealth
		hit.IsDead = died
	}

	r.broadcast(Envelope{T: MsgShot, Data: ShotMsg{
		PlayerID:  shooter.ID,
		Origin:    origin,
		Direction: dir,
		Weapon:    weapon.ID,
		Ammo:      shooter.Ammo,
		Hit:       hit,
	}})
	return hit, nil
}

// resolveHit raycasts against every other living player's hit sphere
// and returns the closest accepted candidate, or nil. Call under mu.
func (r *Room) resolveHit(shooter *Player, origin, dir Vec3, weapon Weapon) *HitResult {
	var best *HitResult
	bestDist := weapon.Range
	for _, p := range r.players {
		if p.ID == shooter.ID || !p.Alive {
			continue
		}
		ok, point, dist := RaySphere(origin, dir, p.Position, PlayerRadius)
		if !ok || dist > weapon.Range {
			continue
		}
		// Strictly closer wins; a tie keeps the first encountered.
		if best == nil || dist < bestDist {
			best = &HitResult{TargetID: p.ID, HitPoint: point, Damage: weapon.Damage}
			bestDist = dist
		}
	}
	return best
}

// applyDamage reduces the target's health, handles the kill
// bookkeeping and broadcasts the damage event. Returns the target's
// new health and whether this damage killed them. Call under mu.
func (r *Room) applyDamage(attacker, target *Player, damage int, now time.Time) (int, bool) {
	died := target.TakeDamage(damage)
	if died {
		target.Deaths++
		r.TotalDeaths++
		if attacker != nil && attacker.ID != target.ID {
			attacker.Kills++
			attacker.Score += killScore
			r.TotalKills++
			if r.stats != nil && attacker.AuthPlayerID != 0 {
				if err := r.stats.RecordKill(attacker.AuthPlayerID, target.AuthPlayerID); err == nil {
					r.analytics.Track(EvtKill, attacker.AuthPlayerID, r.ID, target.ID)
				}
			} else {
				r.analytics.Track(EvtKill, 0, r.ID, target.ID)
			}
		}
		if r.Mode.AllowsRespawn() {
			target.RespawnAt = now.Add(RespawnDelay)
		}
	}

	r.broadcast(Envelope{T: MsgDamaged, Data: DamagedMsg{
		TargetID:  target.ID,
		Damage:    damage,
		NewHealth: target.HP,
		IsDead:    died,
	}})
	return target.HP, died
}

// ApplyMove records a validated position sample and relays it.
func (r *Room) ApplyMove(playerID string, pos Vec3) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[playerID]
	if !ok || !p.Alive {
		return
	}
	now := time.Now()
	p.Position = pos
	p.Touch(now)
	r.touch(now)
	r.broadcastExcept(playerID, Envelope{T: MsgMoved, Data: MovedMsg{
		PlayerID: playerID, Position: pos,
	}})
}

// ApplyRotation records a validated rotation sample and relays it.
func (r *Room) ApplyRotation(playerID string, rot Vec3) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[playerID]
	if !ok || !p.Alive {
		return
	}
	now := time.Now()
	p.Rotation = rot
	p.Touch(now)
	r.touch(now)
	r.broadcastExcept(playerID, Envelope{T: MsgRotated, Data: RotatedMsg{
		PlayerID: playerID, Rotation: rot,
	}})
}

// StartReload begins a reload; the game loop completes it when the
// reload deadline passes. Already-full magazines are a no-op.
func (r *Room) StartReload(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[playerID]
	if !ok || !p.Alive {
		return
	}
	now := time.Now()
	p.Touch(now)
	if p.Ammo >= p.Weapon().MaxAmmo || !p.Reloading.IsZero() {
		return
	}
	p.Reloading = now.Add(ReloadTime)
}

// HandleDamage processes a client-reported direct damage event
// (melee, fall damage). Damage is capped at the attacker's weapon
// damage so a modified client cannot one-shot the room.
func (r *Room) HandleDamage(attackerID, targetID string, damage int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	attacker, ok := r.players[attackerID]
	if !ok || !attacker.Alive {
		return
	}
	target, ok := r.players[targetID]
	if !ok || !target.Alive {
		return
	}
	if damage <= 0 {
		return
	}
	if max := attacker.Weapon().Damage; damage > max {
		damage = max
	}
	now := time.Now()
	attacker.Touch(now)
	r.touch(now)
	r.applyDamage(attacker, target, damage, now)
}
