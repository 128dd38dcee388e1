package main

import (
	"testing"
	"time"
)

func TestNewPlayerDefaults(t *testing.T) {
	p := NewPlayer("p1", "Soldier")
	if p.HP != PlayerMaxHP || p.MaxHP != PlayerMaxHP {
		t.Errorf("expected full HP, got %d/%d", p.HP, p.MaxHP)
	}
	if !p.Alive {
		t.Error("expected player to be alive")
	}
	if p.WeaponID != DefaultWeapon {
		t.Errorf("expected default weapon, got %s", p.WeaponID)
	}
	if p.Ammo != WeaponByID(DefaultWeapon).MaxAmmo {
		t.Errorf("expected full ammo, got %d", p.Ammo)
	}
}

func TestPlayerTakeDamage(t *testing.T) {
	p := NewPlayer("p1", "Soldier")

	if died := p.TakeDamage(30); died {
		t.Error("should not have died from 30 damage")
	}
	if p.HP != 70 {
		t.Errorf("expected HP 70, got %d", p.HP)
	}

	if died := p.TakeDamage(80); !died {
		t.Error("should have died from 80 more damage")
	}
	// health == 0 must always imply alive == false, and vice versa
	if p.HP != 0 || p.Alive {
		t.Errorf("expected dead at 0 HP, got HP=%d alive=%v", p.HP, p.Alive)
	}

	if died := p.TakeDamage(10); died {
		t.Error("dead player should not die again")
	}
	if p.HP != 0 {
		t.Errorf("dead player HP should stay 0, got %d", p.HP)
	}
}

func TestPlayerRespawn(t *testing.T) {
	p := NewPlayer("p1", "Soldier")
	p.TakeDamage(PlayerMaxHP)
	p.Ammo = 0
	p.RespawnAt = time.Now()

	spawn := Vec3{X: 5, Y: 1, Z: 5}
	p.Respawn(spawn)

	if !p.Alive || p.HP != p.MaxHP {
		t.Errorf("expected alive at full HP, got HP=%d alive=%v", p.HP, p.Alive)
	}
	if p.Position != spawn {
		t.Errorf("expected spawn position, got %+v", p.Position)
	}
	if p.Ammo != p.Weapon().MaxAmmo {
		t.Errorf("expected full ammo, got %d", p.Ammo)
	}
	if !p.RespawnAt.IsZero() {
		t.Error("respawn deadline should be cleared")
	}
}

func TestPlayerResetForRoundKeepsStats(t *testing.T) {
	p := NewPlayer("p1", "Soldier")
	p.Kills = 3
	p.Deaths = 2
	p.Score = 30
	p.WeaponID = WeaponShotgun
	p.Ammo = 1
	p.TakeDamage(PlayerMaxHP)

	p.ResetForRound(Vec3{Y: 1})

	if !p.Alive || p.HP != p.MaxHP {
		t.Error("reset should restore full health")
	}
	if p.WeaponID != DefaultWeapon || p.Ammo != WeaponByID(DefaultWeapon).MaxAmmo {
		t.Error("reset should restore default weapon and ammo")
	}
	if p.Kills != 3 || p.Deaths != 2 || p.Score != 30 {
		t.Error("reset must not clear lifetime stats")
	}
}
