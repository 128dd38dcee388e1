package main

import (
	"log"
	"sync"
)

const (
	maxConnsPerIP = 5
	maxTotalConns = 1000
)

// Hub manages all connected clients and routes them to rooms
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	rooms      *RoomManager
	anticheat  *AntiCheat
	// Connection limiting (mutex-protected, accessed from HTTP handlers)
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int
	// Auth & DB
	db        *DB
	auth      *Auth
	analytics *Analytics
	// In-game players: playerID -> *Client, for kicks and targeted sends
	playersMu sync.RWMutex
	players   map[string]*Client
}

// NewHub creates a new Hub wired to its collaborators.
func NewHub(cfg Config, db *DB, analytics *Analytics) *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		ipConns:    make(map[string]int),
		db:         db,
		analytics:  analytics,
		players:    make(map[string]*Client),
	}
	var stats StatsRecorder
	if db != nil {
		stats = db
		h.auth = NewAuth(db)
	}
	h.rooms = NewRoomManager(cfg, stats, analytics)
	h.anticheat = NewAntiCheat(cfg.MaxSpeed, cfg.MaxShootRate, cfg.MapSize, cfg.MaxHeight)
	h.anticheat.OnKick = h.KickPlayer
	h.anticheat.OnViolation = func(playerID, category, reason string) {
		c := h.playerClient(playerID)
		if c == nil {
			h.analytics.Track(EvtViolation, 0, "", playerID+" "+category+": "+reason)
			return
		}
		h.analytics.Track(EvtViolation, c.authPlayerID, c.roomID, category+": "+reason)
	}
	return h
}

func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= maxTotalConns {
		return false
	}
	if h.ipConns[ip] >= maxConnsPerIP {
		return false
	}
	return true
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Run processes register/unregister events
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			if client.playerID != "" {
				h.dropPlayer(client, MsgPlayerGone)
			}
		}
	}
}

// trackPlayer records a client's in-game identity once they join a room.
func (h *Hub) trackPlayer(playerID string, c *Client) {
	h.playersMu.Lock()
	h.players[playerID] = c
	h.playersMu.Unlock()
}

// playerClient resolves an in-game player id to its connection.
func (h *Hub) playerClient(playerID string) *Client {
	h.playersMu.RLock()
	defer h.playersMu.RUnlock()
	return h.players[playerID]
}

// dropPlayer removes a client's player from its room and clears the
// validator state tied to the connection.
func (h *Hub) dropPlayer(c *Client, notice string) {
	if c.roomID != "" {
		h.rooms.RemovePlayer(c.roomID, c.playerID, notice)
	}
	h.anticheat.Reset(c.playerID)
	h.playersMu.Lock()
	delete(h.players, c.playerID)
	h.playersMu.Unlock()
	c.roomID = ""
	c.playerID = ""
}

// KickPlayer force-removes a player, used by the anti-cheat
// thresholds. The player gets a reason before the room drops them.
func (h *Hub) KickPlayer(playerID, reason string) {
	c := h.playerClient(playerID)
	if c == nil {
		return
	}
	c.SendJSON(Envelope{T: MsgKicked, Data: KickedMsg{Reason: reason}})
	h.analytics.Track(EvtKick, c.authPlayerID, c.roomID, reason)
	log.Printf("kicked player %s: %s", playerID, reason)
	h.dropPlayer(c, MsgPlayerGone)
}

// NotifyShutdown tells every connected client the server is going
// down, ahead of the grace period.
func (h *Hub) NotifyShutdown() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "server shutting down"}})
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}
