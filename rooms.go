package main

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Capacity and lookup failures reported to the caller; no state
// changes on any of these.
var (
	ErrServerFull   = errors.New("server room limit reached")
	ErrRoomFull     = errors.New("room is full")
	ErrRoomNotFound = errors.New("room not found")
)

const maxRoomNameLen = 30

// StatsRecorder is the narrow interface rooms use to persist
// lifetime stats. *DB implements it; nil disables persistence.
type StatsRecorder interface {
	RecordKill(killerID, victimID int64) error
	RecordMatch(mode string, duration float64, winner string) (int64, error)
	// RecordGameResult updates win/loss tallies and returns any newly
	// unlocked achievements.
	RecordGameResult(playerID int64, kills, deaths int, won bool) []AchievementDef
}

// RoomManager owns the registry of all rooms and enforces the
// server-wide caps.
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	cfg       Config
	stats     StatsRecorder
	analytics *Analytics
}

// NewRoomManager creates an empty registry.
func NewRoomManager(cfg Config, stats StatsRecorder, analytics *Analytics) *RoomManager {
	return &RoomManager{
		rooms:     make(map[string]*Room),
		cfg:       cfg,
		stats:     stats,
		analytics: analytics,
	}
}

// CreateRoom registers a new room. The requested max-players is
// clamped to the server-wide per-room cap; creation fails once the
// room count reaches the server cap.
func (rm *RoomManager) CreateRoom(req CreateRoomMsg) (*Room, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if len(rm.rooms) >= rm.cfg.MaxRooms {
		return nil, ErrServerFull
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "Arena"
	}
	if len(name) > maxRoomNameLen {
		name = name[:maxRoomNameLen]
	}
	mode := GameMode(req.Mode)
	if !ValidMode(mode) {
		mode = ModeDeathmatch
	}
	maxPlayers := req.MaxPlayers
	if maxPlayers <= 0 || maxPlayers > rm.cfg.MaxRoomSize {
		maxPlayers = rm.cfg.MaxRoomSize
	}

	now := time.Now()
	room := &Room{
		ID:           uuid.NewString(),
		Name:         name,
		Mode:         mode,
		MaxPlayers:   maxPlayers,
		Private:      req.Private,
		CreatedAt:    now,
		lastActivity: now,
		spawnPoints:  newSpawnRing(maxPlayers, rm.cfg.MapSize),
		players:      make(map[string]*Player),
		stats:        rm.stats,
		analytics:    rm.analytics,
	}
	rm.rooms[room.ID] = room
	return room, nil
}

// GetRoom returns a room by id, or nil.
func (rm *RoomManager) GetRoom(id string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[id]
}

// AddPlayer joins a player to a room.
func (rm *RoomManager) AddPlayer(roomID string, p *Player, client Broadcaster) (*Room, error) {
	room := rm.GetRoom(roomID)
	if room == nil {
		return nil, ErrRoomNotFound
	}
	if err := room.AddPlayer(p, client); err != nil {
		return nil, err
	}
	return room, nil
}

// RemovePlayer removes a player from a room and drops the room once
// it is empty.
func (rm *RoomManager) RemovePlayer(roomID, playerID, notice string) {
	room := rm.GetRoom(roomID)
	if room == nil {
		return
	}
	room.RemovePlayer(playerID, notice)
	if room.PlayerCount() == 0 {
		rm.mu.Lock()
		delete(rm.rooms, roomID)
		rm.mu.Unlock()
	}
}

// Tick advances every room one simulation step, evicts idle players
// and removes rooms left empty. The room-id list is snapshotted
// first so deletion never races the iteration.
func (rm *RoomManager) Tick(now time.Time) {
	rm.mu.RLock()
	ids := make([]string, 0, len(rm.rooms))
	for id := range rm.rooms {
		ids = append(ids, id)
	}
	rm.mu.RUnlock()

	for _, id := range ids {
		room := rm.GetRoom(id)
		if room == nil {
			continue
		}
		room.Tick(now)
		room.EvictIdle(now, PlayerIdleTimeout)
		if room.PlayerCount() == 0 {
			rm.mu.Lock()
			delete(rm.rooms, id)
			rm.mu.Unlock()
		}
	}
}

// ListRooms returns the public room list (private rooms excluded).
func (rm *RoomManager) ListRooms() []RoomInfo {
	rm.mu.RLock()
	rooms := make([]*Room, 0, len(rm.rooms))
	for _, r := range rm.rooms {
		rooms = append(rooms, r)
	}
	rm.mu.RUnlock()

	list := make([]RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		if r.Private {
			continue
		}
		list = append(list, r.Info())
	}
	return list
}

// RoomCount returns the number of registered rooms.
func (rm *RoomManager) RoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}
