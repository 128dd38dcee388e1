package main

import "time"

// Team ids for team-based modes.
const (
	TeamNone = ""
	TeamA    = "A"
	TeamB    = "B"
)

// Player is one player inside a room. All mutation happens under the
// owning room's lock.
type Player struct {
	ID   string
	Name string
	Team string // TeamA/TeamB for team modes, TeamNone otherwise

	Position Vec3
	Rotation Vec3 // degrees, each component in [-180, 180]

	HP         int
	MaxHP      int
	Alive      bool
	WeaponID   string
	Ammo       int
	LastShot   time.Time
	ShootReady bool
	Reloading  time.Time // zero when not reloading; reload done at this instant

	Kills  int
	Deaths int
	Score  int

	LastActivity time.Time
	RespawnAt    time.Time // zero when no respawn is scheduled

	// Link to a persistent account, 0 for guests.
	AuthPlayerID int64

	client Broadcaster
}

// NewPlayer creates a player with mode defaults. Position is assigned
// by the room from its spawn ring.
func NewPlayer(id, name string) *Player {
	w := WeaponByID(DefaultWeapon)
	return &Player{
		ID:           id,
		Name:         name,
		HP:           PlayerMaxHP,
		MaxHP:        PlayerMaxHP,
		Alive:        true,
		WeaponID:     w.ID,
		Ammo:         w.MaxAmmo,
		ShootReady:   true,
		LastActivity: time.Now(),
	}
}

// Touch records player activity for idle-eviction purposes.
func (p *Player) Touch(now time.Time) {
	p.LastActivity = now
}

// TakeDamage reduces HP, clamping at zero, and returns true if this
// damage killed the player. Dead players take no further damage.
func (p *Player) TakeDamage(dmg int) bool {
	if !p.Alive {
		return false
	}
	p.HP -= dmg
	if p.HP <= 0 {
		p.HP = 0
		p.Alive = false
		return true
	}
	return false
}

// Weapon returns the player's current weapon stats.
func (p *Player) Weapon() Weapon {
	return WeaponByID(p.WeaponID)
}

// ResetForRound restores health, ammo, weapon and alive state for a
// fresh round. Lifetime kills/deaths/score are intentionally kept.
func (p *Player) ResetForRound(spawn Vec3) {
	w := WeaponByID(DefaultWeapon)
	p.Position = spawn
	p.HP = p.MaxHP
	p.Alive = true
	p.WeaponID = w.ID
	p.Ammo = w.MaxAmmo
	p.ShootReady = true
	p.LastShot = time.Time{}
	p.Reloading = time.Time{}
	p.RespawnAt = time.Time{}
}

// Respawn brings a dead player back at the given spawn point.
func (p *Player) Respawn(spawn Vec3) {
	p.Position = spawn
	p.HP = p.MaxHP
	p.Alive = true
	p.Ammo = p.Weapon().MaxAmmo
	p.ShootReady = true
	p.RespawnAt = time.Time{}
}

// ToState converts to the protocol representation.
func (p *Player) ToState() PlayerState {
	return PlayerState{
		ID:       p.ID,
		Name:     p.Name,
		Team:     p.Team,
		Position: p.Position,
		Rotation: p.Rotation,
		HP:       p.HP,
		MaxHP:    p.MaxHP,
		Alive:    p.Alive,
		Weapon:   p.WeaponID,
		Ammo:     p.Ammo,
		Kills:    p.Kills,
		Deaths:   p.Deaths,
		Score:    p.Score,
	}
}
