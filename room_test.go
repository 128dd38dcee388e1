package main

import (
	"sync"
	"testing"
	"time"
)

// mockBroadcaster records everything sent to one player.
type mockBroadcaster struct {
	mu     sync.Mutex
	json   []Envelope
	binary int
}

func (m *mockBroadcaster) SendJSON(msg interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if env, ok := msg.(Envelope); ok {
		m.json = append(m.json, env)
	}
}

func (m *mockBroadcaster) SendBinary(data []byte) {
	m.mu.Lock()
	m.binary++
	m.mu.Unlock()
}

func (m *mockBroadcaster) count(t string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, env := range m.json {
		if env.T == t {
			n++
		}
	}
	return n
}

func newTestRoom(mode GameMode, maxPlayers int) *Room {
	now := time.Now()
	return &Room{
		ID:           "room-1",
		Name:         "test",
		Mode:         mode,
		MaxPlayers:   maxPlayers,
		CreatedAt:    now,
		lastActivity: now,
		spawnPoints:  newSpawnRing(maxPlayers, 50),
		players:      make(map[string]*Player),
	}
}

func addTestPlayer(t *testing.T, r *Room, id string) (*Player, *mockBroadcaster) {
	t.Helper()
	p := NewPlayer(id, id)
	mb := &mockBroadcaster{}
	if err := r.AddPlayer(p, mb); err != nil {
		t.Fatalf("add %s: %v", id, err)
	}
	return p, mb
}

func TestRoomCapacity(t *testing.T) {
	r := newTestRoom(ModeDeathmatch, 2)
	addTestPlayer(t, r, "p1")
	addTestPlayer(t, r, "p2")

	p3 := NewPlayer("p3", "p3")
	if err := r.AddPlayer(p3, &mockBroadcaster{}); err != ErrRoomFull {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
	if n := r.PlayerCount(); n != 2 {
		t.Errorf("expected 2 players after rejected join, got %d", n)
	}
}

func TestGameStartsAtMinPlayers(t *testing.T) {
	r := newTestRoom(ModeDeathmatch, 4)
	_, mb1 := addTestPlayer(t, r, "p1")
	if r.game.Active {
		t.Fatal("game should not start with one player")
	}

	addTestPlayer(t, r, "p2")
	if !r.game.Active {
		t.Fatal("game should start at two players")
	}
	if mb1.count(MsgGameStarted) != 1 {
		t.Error("first player should receive the game start")
	}
	for _, p := range r.players {
		if p.HP != p.MaxHP || !p.Alive {
			t.Errorf("player %s not reset at game start", p.ID)
		}
	}
}

func TestTeamBalancing(t *testing.T) {
	r := newTestRoom(ModeTeamDeathmatch, 8)
	p1, _ := addTestPlayer(t, r, "p1")
	if p1.Team != TeamA {
		t.Errorf("first player joins team A, got %q", p1.Team)
	}
	addTestPlayer(t, r, "p2")
	addTestPlayer(t, r, "p3")
	addTestPlayer(t, r, "p4")

	a, b := 0, 0
	for _, p := range r.players {
		switch p.Team {
		case TeamA:
			a++
		case TeamB:
			b++
		default:
			t.Errorf("player %s has no team", p.ID)
		}
	}
	if a != 2 || b != 2 {
		t.Errorf("expected 2v2, got %dv%d", a, b)
	}
}

func TestMembershipDropEndsGame(t *testing.T) {
	r := newTestRoom(ModeDeathmatch, 4)
	addTestPlayer(t, r, "p1")
	_, mb2 := addTestPlayer(t, r, "p2")

	r.RemovePlayer("p1", MsgPlayerLeft)

	if !r.game.GameOver {
		t.Fatal("game should end when membership drops below the minimum")
	}
	if r.game.WinnerID != "" || r.game.WinnerTeam != "" {
		t.Errorf("membership loss declares no winner, got %q/%q", r.game.WinnerID, r.game.WinnerTeam)
	}
	if mb2.count(MsgGameEnded) != 1 {
		t.Error("remaining player should receive the game end")
	}
}

func TestFreeForAllWinCondition(t *testing.T) {
	r := newTestRoom(ModeDeathmatch, 4)
	p1, mb1 := addTestPlayer(t, r, "p1")
	p2, _ := addTestPlayer(t, r, "p2")
	p3, _ := addTestPlayer(t, r, "p3")

	p2.TakeDamage(1000)
	p3.TakeDamage(1000)
	r.Tick(time.Now())

	if !r.game.GameOver {
		t.Fatal("game should end with one player standing")
	}
	if r.game.WinnerID != p1.ID {
		t.Errorf("expected winner %s, got %q", p1.ID, r.game.WinnerID)
	}
	if mb1.count(MsgGameEnded) != 1 {
		t.Error("winner should receive the game end")
	}
}

func TestTeamWipeTieBreak(t *testing.T) {
	r := newTestRoom(ModeTeamDeathmatch, 4)
	addTestPlayer(t, r, "p1")
	addTestPlayer(t, r, "p2")
	addTestPlayer(t, r, "p3")
	addTestPlayer(t, r, "p4")

	for _, p := range r.players {
		p.TakeDamage(1000)
	}
	r.Tick(time.Now())

	if !r.game.GameOver {
		t.Fatal("game should end on a full wipe")
	}
	// Team A's emptiness is checked first, so a simultaneous wipe
	// goes to team B.
	if r.game.WinnerTeam != TeamB {
		t.Errorf("expected team B on a tie, got %q", r.game.WinnerTeam)
	}
}

func TestRoomResetRestartsWithEnoughPlayers(t *testing.T) {
	r := newTestRoom(ModeDeathmatch, 4)
	addTestPlayer(t, r, "p1")
	p2, mb2 := addTestPlayer(t, r, "p2")

	base := time.Now()
	p2.TakeDamage(1000)
	r.Tick(base)
	if !r.game.GameOver {
		t.Fatal("game should be over")
	}

	// Before the reset delay nothing changes.
	r.Tick(base.Add(RoomResetDelay - time.Second))
	if !r.game.GameOver {
		t.Fatal("room reset before the delay elapsed")
	}

	r.Tick(base.Add(RoomResetDelay + time.Second))
	if r.game.GameOver {
		t.Fatal("room should have reset to lobby")
	}
	if !r.game.Active {
		t.Fatal("reset with enough players should start a fresh game")
	}
	if !p2.Alive || p2.HP != p2.MaxHP {
		t.Error("players should come back fresh after a reset")
	}
	if mb2.count(MsgRoomReset) != 1 {
		t.Error("players should receive the room reset")
	}
}

func TestEliminationNoRespawn(t *testing.T) {
	r := newTestRoom(ModeElimination, 4)
	addTestPlayer(t, r, "p1")
	p2, _ := addTestPlayer(t, r, "p2")

	now := time.Now()
	p2.TakeDamage(1000)
	p2.RespawnAt = now.Add(-time.Second)
	r.Tick(now)

	if p2.Alive {
		t.Error("elimination mode must not respawn mid-round")
	}
	if !r.game.GameOver || r.game.WinnerTeam != TeamA {
		t.Errorf("expected team A win, got over=%v team=%q", r.game.GameOver, r.game.WinnerTeam)
	}
}

func TestRespawnAfterDelay(t *testing.T) {
	r := newTestRoom(ModeDeathmatch, 4)
	addTestPlayer(t, r, "p1")
	addTestPlayer(t, r, "p2")
	p3, mb3 := addTestPlayer(t, r, "p3")

	now := time.Now()
	p3.TakeDamage(1000)
	p3.RespawnAt = now.Add(RespawnDelay)

	r.Tick(now.Add(RespawnDelay - time.Second))
	if p3.Alive {
		t.Fatal("respawned before the deadline")
	}

	r.Tick(now.Add(RespawnDelay))
	if !p3.Alive || p3.HP != p3.MaxHP {
		t.Fatal("player should respawn at the deadline")
	}
	if !p3.RespawnAt.IsZero() {
		t.Error("respawn deadline should be cleared")
	}
	if mb3.count(MsgRespawned) != 1 {
		t.Error("respawn should be broadcast")
	}
}

func TestSnapshotCadence(t *testing.T) {
	r := newTestRoom(ModeDeathmatch, 4)
	_, mb1 := addTestPlayer(t, r, "p1")

	now := time.Now()
	for i := 0; i < 4; i++ {
		r.Tick(now)
	}
	if mb1.binary != 2 {
		t.Errorf("expected a snapshot every 2nd tick (2 of 4), got %d", mb1.binary)
	}
}

func TestIdleEviction(t *testing.T) {
	r := newTestRoom(ModeDeathmatch, 4)
	p1, _ := addTestPlayer(t, r, "p1")
	_, mb2 := addTestPlayer(t, r, "p2")

	now := time.Now()
	p1.LastActivity = now.Add(-PlayerIdleTimeout - time.Second)

	evicted := r.EvictIdle(now, PlayerIdleTimeout)
	if len(evicted) != 1 || evicted[0] != "p1" {
		t.Fatalf("expected p1 evicted, got %v", evicted)
	}
	if r.PlayerCount() != 1 {
		t.Errorf("expected 1 player left, got %d", r.PlayerCount())
	}
	if !r.game.GameOver {
		t.Error("eviction below the minimum should end the game")
	}
	if mb2.count(MsgPlayerGone) != 1 {
		t.Error("remaining player should see the disconnect notice")
	}
}
