package main

import (
	"log"
	"math"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// GameMode selects the ruleset for a room.
type GameMode string

const (
	ModeDeathmatch     GameMode = "deathmatch"
	ModeTeamDeathmatch GameMode = "teamDeathmatch"
	ModeElimination    GameMode = "elimination"
)

// IsTeamMode reports whether players get team assignments.
func (m GameMode) IsTeamMode() bool {
	return m == ModeTeamDeathmatch || m == ModeElimination
}

// AllowsRespawn reports whether dead players come back mid-round.
func (m GameMode) AllowsRespawn() bool {
	return m == ModeDeathmatch || m == ModeTeamDeathmatch
}

// ValidMode reports whether a client-supplied mode string is known.
func ValidMode(m GameMode) bool {
	return m == ModeDeathmatch || m == ModeTeamDeathmatch || m == ModeElimination
}

// Broadcaster is the transport handle for one player.
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// snapshotEvery sends a binary state snapshot every Nth tick
// (30Hz at the default 60Hz tick rate).
const snapshotEvery = 2

// GameState is a room's state machine. Lobby: !Active && !GameOver.
// Active: Active. Ended: GameOver, reset back to Lobby at resetAt.
type GameState struct {
	Active     bool
	GameOver   bool
	WinnerID   string
	WinnerTeam string
	StartedAt  time.Time
	EndedAt    time.Time
	resetAt    time.Time
}

// Room owns one match: its players, spawn ring and state machine.
// All mutation happens under mu, either from validated client events
// or from the game loop's Tick.
type Room struct {
	mu sync.Mutex

	ID         string
	Name       string
	Mode       GameMode
	MaxPlayers int
	Private    bool
	CreatedAt  time.Time

	lastActivity time.Time
	spawnPoints  []Vec3
	players      map[string]*Player
	game         GameState
	tick         uint64

	// Per-room lifetime tallies.
	TotalKills   int
	TotalDeaths  int
	RoundsPlayed int

	// Collaborators; both are nil-safe.
	stats     StatsRecorder
	analytics *Analytics
}

// newSpawnRing places spawn points on a circle around the map
// center. Count and angular spacing are deterministic; only the
// distance within the [0.3, 0.5]*mapSize band varies.
func newSpawnRing(maxPlayers int, mapSize float64) []Vec3 {
	count := maxPlayers * 2
	if count > 16 {
		count = 16
	}
	points := make([]Vec3, count)
	for i := range points {
		angle := 2 * math.Pi * float64(i) / float64(count)
		radius := randRange(0.3, 0.5) * mapSize
		points[i] = Vec3{
			X: math.Cos(angle) * radius,
			Y: SpawnHeight,
			Z: math.Sin(angle) * radius,
		}
	}
	return points
}

// randomSpawn picks a spawn point uniformly. Call under mu.
func (r *Room) randomSpawn() Vec3 {
	return r.spawnPoints[int(randFloat()*float64(len(r.spawnPoints)))%len(r.spawnPoints)]
}

// touch marks room activity. Call under mu.
func (r *Room) touch(now time.Time) {
	r.lastActivity = now
}

// AddPlayer places a player in the room, assigning a team in team
// modes and a random spawn point. Starting the game once membership
// reaches MinPlayers happens here, not in the loop.
func (r *Room) AddPlayer(p *Player, client Broadcaster) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.players) >= r.MaxPlayers {
		return ErrRoomFull
	}

	now := time.Now()
	if r.Mode.IsTeamMode() {
		p.Team = r.pickTeam()
	}
	p.Position = r.randomSpawn()
	p.client = client
	p.Touch(now)
	r.players[p.ID] = p
	r.touch(now)

	r.broadcastExcept(p.ID, Envelope{T: MsgPlayerJoined, Data: PlayerCountMsg{
		PlayerID: p.ID, Name: p.Name, Count: len(r.players),
	}})
	if client != nil {
		client.SendJSON(Envelope{T: MsgRoomJoined, Data: RoomJoinedMsg{
			RoomID:  r.ID,
			Players: r.playerStates(),
			Game:    r.gameStateMsg(),
		}})
	}

	if len(r.players) >= MinPlayers && !r.game.Active && !r.game.GameOver {
		r.startGame(now)
	}
	return nil
}

// pickTeam balances toward the team with fewer members; ties go to
// team A. Call under mu.
func (r *Room) pickTeam() string {
	a, b := 0, 0
	for _, p := range r.players {
		switch p.Team {
		case TeamA:
			a++
		case TeamB:
			b++
		}
	}
	if a <= b {
		return TeamA
	}
	return TeamB
}

// RemovePlayer drops a player. An active game with fewer than
// MinPlayers left ends with no winner.
func (r *Room) RemovePlayer(playerID, notice string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return
	}
	delete(r.players, playerID)
	r.touch(time.Now())

	r.broadcast(Envelope{T: notice, Data: PlayerCountMsg{
		PlayerID: p.ID, Name: p.Name, Count: len(r.players),
	}})

	if r.game.Active && len(r.players) < MinPlayers {
		r.endGame("", "", "not enough players", time.Now())
	}
}

// startGame transitions Lobby -> Active. Call under mu.
func (r *Room) startGame(now time.Time) {
	r.game = GameState{Active: true, StartedAt: now}
	for _, p := range r.players {
		p.ResetForRound(r.randomSpawn())
	}
	r.broadcast(Envelope{T: MsgGameStarted, Data: GameStartedMsg{
		Mode:        string(r.Mode),
		PlayerCount: len(r.players),
	}})
	r.analytics.Track(EvtGameStart, 0, r.ID, "")
	log.Printf("room %s: game started (%s, %d players)", r.ID, r.Mode, len(r.players))
}

// endGame transitions Active -> Ended. An already-ended room ignores
// further end requests. Call under mu.
func (r *Room) endGame(winnerID, winnerTeam, reason string, now time.Time) {
	if r.game.GameOver {
		return
	}
	duration := now.Sub(r.game.StartedAt).Seconds()
	r.game.Active = false
	r.game.GameOver = true
	r.game.WinnerID = winnerID
	r.game.WinnerTeam = winnerTeam
	r.game.EndedAt = now
	r.game.resetAt = now.Add(RoomResetDelay)
	r.RoundsPlayed++

	r.broadcast(Envelope{T: MsgGameEnded, Data: GameEndedMsg{
		WinnerID:   winnerID,
		WinnerTeam: winnerTeam,
		Reason:     reason,
		Duration:   duration,
	}})
	if r.stats != nil {
		winner := winnerID
		if winner == "" {
			winner = winnerTeam
		}
		if _, err := r.stats.RecordMatch(string(r.Mode), duration, winner); err != nil {
			log.Printf("room %s: record match: %v", r.ID, err)
		}
		for _, p := range r.players {
			if p.AuthPlayerID == 0 {
				continue
			}
			won := p.ID == winnerID || (winnerTeam != "" && p.Team == winnerTeam)
			for _, def := range r.stats.RecordGameResult(p.AuthPlayerID, p.Kills, p.Deaths, won) {
				if p.client != nil {
					p.client.SendJSON(Envelope{T: MsgAchievement, Data: AchievementMsg{
						ID: def.ID, Name: def.Name, Description: def.Description,
					}})
				}
			}
		}
	}
	r.analytics.Track(EvtGameEnd, 0, r.ID, reason)
	log.Printf("room %s: game ended (%s)", r.ID, reason)
}

// resetToLobby transitions Ended -> Lobby after the reset delay.
// Lifetime stats stay; health, ammo and spawns are fresh. Call under mu.
func (r *Room) resetToLobby(now time.Time) {
	r.game = GameState{}
	for _, p := range r.players {
		p.ResetForRound(r.randomSpawn())
	}
	r.broadcast(Envelope{T: MsgRoomReset})

	if len(r.players) >= MinPlayers {
		r.startGame(now)
	}
}

// checkWinCondition evaluates the win rules while Active. Team modes
// check team A's emptiness first: a simultaneous wipe declares team B
// the winner. That ordering is a kept compatibility decision.
func (r *Room) checkWinCondition(now time.Time) {
	if !r.game.Active {
		return
	}
	if r.Mode.IsTeamMode() {
		livingA, livingB := 0, 0
		for _, p := range r.players {
			if !p.Alive {
				continue
			}
			switch p.Team {
			case TeamA:
				livingA++
			case TeamB:
				livingB++
			}
		}
		if livingA == 0 {
			r.endGame("", TeamB, "team B wins", now)
		} else if livingB == 0 {
			r.endGame("", TeamA, "team A wins", now)
		}
		return
	}

	// Free-for-all: the game ends when at most one player is left
	// standing; that player (if any) wins.
	living := make([]*Player, 0, 1)
	for _, p := range r.players {
		if p.Alive {
			living = append(living, p)
		}
	}
	if len(living) > 1 {
		return
	}
	winnerID := ""
	reason := "no players left standing"
	if len(living) == 1 {
		winnerID = living[0].ID
		reason = living[0].Name + " wins"
	}
	r.endGame(winnerID, "", reason, now)
}

// Tick advances time-based state: due respawns and reloads, shoot
// cooldown refresh, win-condition check, and the Ended -> Lobby
// transition. Invoked once per game-loop cycle.
func (r *Room) Tick(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tick++

	for _, p := range r.players {
		if !p.Alive && !p.RespawnAt.IsZero() && !now.Before(p.RespawnAt) && r.Mode.AllowsRespawn() {
			p.Respawn(r.randomSpawn())
			r.broadcast(Envelope{T: MsgRespawned, Data: RespawnedMsg{
				PlayerID: p.ID, Position: p.Position,
			}})
		}
		if !p.Reloading.IsZero() && !now.Before(p.Reloading) {
			p.Reloading = time.Time{}
			p.Ammo = p.Weapon().MaxAmmo
			r.broadcast(Envelope{T: MsgReloaded, Data: ReloadedMsg{PlayerID: p.ID, Ammo: p.Ammo}})
		}
		if !p.ShootReady && now.Sub(p.LastShot) >= p.Weapon().Cooldown() {
			p.ShootReady = true
		}
	}

	r.checkWinCondition(now)

	if r.game.GameOver && !r.game.resetAt.IsZero() && !now.Before(r.game.resetAt) {
		r.resetToLobby(now)
	}

	if r.tick%snapshotEvery == 0 && len(r.players) > 0 {
		r.broadcastSnapshot()
	}
}

// EvictIdle removes players whose last activity exceeds the timeout,
// broadcasting a disconnect notice for each. Returns the evicted ids.
func (r *Room) EvictIdle(now time.Time, timeout time.Duration) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted []string
	for id, p := range r.players {
		if now.Sub(p.LastActivity) > timeout {
			evicted = append(evicted, id)
			delete(r.players, id)
			r.broadcast(Envelope{T: MsgPlayerGone, Data: PlayerCountMsg{
				PlayerID: id, Name: p.Name, Count: len(r.players),
			}})
		}
	}
	if len(evicted) > 0 && r.game.Active && len(r.players) < MinPlayers {
		r.endGame("", "", "not enough players", now)
	}
	return evicted
}

// PlayerCount returns current membership.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// Info returns the public listing row.
func (r *Room) Info() RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomInfo{
		ID:         r.ID,
		Name:       r.Name,
		Mode:       string(r.Mode),
		Players:    len(r.players),
		MaxPlayers: r.MaxPlayers,
		Active:     r.game.Active,
	}
}

// playerStates snapshots all players. Call under mu.
func (r *Room) playerStates() []PlayerState {
	states := make([]PlayerState, 0, len(r.players))
	for _, p := range r.players {
		states = append(states, p.ToState())
	}
	return states
}

func (r *Room) gameStateMsg() GameStateMsg {
	msg := GameStateMsg{
		Active:   r.game.Active,
		GameOver: r.game.GameOver,
		WinnerID: r.game.WinnerID,
	}
	if msg.WinnerID == "" {
		msg.WinnerID = r.game.WinnerTeam
	}
	if !r.game.StartedAt.IsZero() {
		msg.StartedAt = r.game.StartedAt.UnixMilli()
	}
	if !r.game.EndedAt.IsZero() {
		msg.EndedAt = r.game.EndedAt.UnixMilli()
	}
	return msg
}

// broadcast sends to every player in the room. Call under mu; sends
// are non-blocking (slow clients drop messages).
func (r *Room) broadcast(msg Envelope) {
	for _, p := range r.players {
		if p.client != nil {
			p.client.SendJSON(msg)
		}
	}
}

func (r *Room) broadcastExcept(playerID string, msg Envelope) {
	for id, p := range r.players {
		if id != playerID && p.client != nil {
			p.client.SendJSON(msg)
		}
	}
}

// broadcastSnapshot sends the msgpack-encoded full room state as a
// binary frame. Call under mu.
func (r *Room) broadcastSnapshot() {
	snap := RoomSnapshot{
		RoomID:  r.ID,
		Tick:    r.tick,
		Players: r.playerStates(),
		Game:    r.gameStateMsg(),
	}
	data, err := msgpack.Marshal(&snap)
	if err != nil {
		return
	}
	for _, p := range r.players {
		if p.client != nil {
			p.client.SendBinary(data)
		}
	}
}
