package main

import "time"

// Weapon ids used on the wire and in the weapon table.
const (
	WeaponPistol  = "pistol"
	WeaponRifle   = "rifle"
	WeaponShotgun = "shotgun"

	DefaultWeapon = WeaponRifle
)

// ReloadTime is how long a reload keeps the weapon unusable.
const ReloadTime = 2 * time.Second

// Weapon holds the fixed stats for one weapon id.
type Weapon struct {
	ID       string
	Name     string
	Damage   int
	Range    float64 // max hit distance in world units
	FireRate float64 // shots per second
	MaxAmmo  int
}

// WeaponTable is the authoritative damage/range/rate table. Clients
// never get to report their own weapon stats.
var WeaponTable = map[string]Weapon{
	WeaponPistol:  {ID: WeaponPistol, Name: "Pistol", Damage: 25, Range: 30, FireRate: 2, MaxAmmo: 12},
	WeaponRifle:   {ID: WeaponRifle, Name: "Rifle", Damage: 35, Range: 60, FireRate: 8, MaxAmmo: 30},
	WeaponShotgun: {ID: WeaponShotgun, Name: "Shotgun", Damage: 60, Range: 15, FireRate: 1, MaxAmmo: 8},
}

// WeaponByID returns the weapon stats for an id, falling back to the
// default weapon for unknown ids.
func WeaponByID(id string) Weapon {
	if w, ok := WeaponTable[id]; ok {
		return w
	}
	return WeaponTable[DefaultWeapon]
}

// Cooldown returns the minimum time between accepted shots.
func (w Weapon) Cooldown() time.Duration {
	return time.Duration(float64(time.Second) / w.FireRate)
}
