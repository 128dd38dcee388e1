package main

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 120 // move+rotate at tick rate, with headroom
	maxNameLen        = 16
)

// Client represents a WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	playerID   string
	roomID     string
	remoteAddr string
	msgCount   int
	msgResetAt time.Time
	// Auth state
	authPlayerID int64  // 0 = unauthenticated/guest
	authUsername string // "" = unauthenticated
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws error: %v", err)
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			log.Printf("rate limit exceeded for %s, disconnecting", c.remoteAddr)
			break
		}

		c.handleMessage(message)
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// Check for binary marker (0xFF prefix from SendBinary)
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("marshal error: %v", err)
		return
	}
	c.SendRaw(data)
}

// SendRaw sends pre-marshaled bytes as a text message to the client
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

// SendBinary sends pre-marshaled bytes as a binary WebSocket message
// Prefixes with 0xFF marker byte so WritePump can distinguish from text
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF // binary marker
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

// handleMessage routes incoming messages (single-pass decode via InEnvelope)
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("unmarshal error: %v", err)
		return
	}

	switch env.T {
	case MsgRegister:
		c.handleRegister(env.D)
	case MsgLogin:
		c.handleLogin(env.D)
	case MsgAuth:
		c.handleAuth(env.D)
	case MsgList:
		c.handleList()
	case MsgCreate:
		c.handleCreate(env.D)
	case MsgJoin:
		c.handleJoin(env.D)
	case MsgLeave:
		c.handleLeave()
	case MsgMove:
		c.handleMove(env.D)
	case MsgRotate:
		c.handleRotate(env.D)
	case MsgShoot:
		c.handleShoot(env.D)
	case MsgReload:
		c.handleReload()
	case MsgDamage:
		c.handleDamage(env.D)
	case MsgProfile:
		c.handleProfile()
	}
}

// room resolves the client's current room, or nil.
func (c *Client) room() *Room {
	if c.roomID == "" || c.playerID == "" {
		return nil
	}
	return c.hub.rooms.GetRoom(c.roomID)
}

func (c *Client) sendError(msg string) {
	c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: msg}})
}

func (c *Client) handleList() {
	c.SendJSON(Envelope{T: MsgRoomList, Data: c.hub.rooms.ListRooms()})
}

func (c *Client) handleCreate(data json.RawMessage) {
	var msg CreateRoomMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	room, err := c.hub.rooms.CreateRoom(msg)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.SendJSON(Envelope{T: MsgRoomCreated, Data: map[string]string{"roomId": room.ID}})
}

func (c *Client) handleJoin(data json.RawMessage) {
	var msg JoinRoomMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if c.roomID != "" {
		c.sendError("already in a room")
		return
	}
	name := msg.Name
	if c.authUsername != "" {
		name = c.authUsername
	}
	if name == "" {
		name = GenerateGuestName()
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}

	player := NewPlayer(GenerateID(4), name)
	player.AuthPlayerID = c.authPlayerID

	room, err := c.hub.rooms.AddPlayer(msg.RoomID, player, c)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.playerID = player.ID
	c.roomID = room.ID
	c.hub.trackPlayer(player.ID, c)
	c.hub.analytics.Track(EvtJoin, c.authPlayerID, room.ID, player.ID)
}

func (c *Client) handleLeave() {
	if c.roomID == "" {
		return
	}
	c.hub.analytics.Track(EvtLeave, c.authPlayerID, c.roomID, c.playerID)
	c.hub.dropPlayer(c, MsgPlayerLeft)
}

func (c *Client) handleMove(data json.RawMessage) {
	room := c.room()
	if room == nil {
		return
	}
	var msg MoveMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if !c.hub.anticheat.ValidatePosition(c.playerID, msg.Position) {
		return
	}
	if !c.hub.anticheat.ValidateMovement(c.playerID, msg.Position, msg.Timestamp) {
		return
	}
	room.ApplyMove(c.playerID, msg.Position)
}

func (c *Client) handleRotate(data json.RawMessage) {
	room := c.room()
	if room == nil {
		return
	}
	var msg RotateMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if !c.hub.anticheat.ValidateRotation(c.playerID, msg.Rotation) {
		return
	}
	room.ApplyRotation(c.playerID, msg.Rotation)
}

func (c *Client) handleShoot(data json.RawMessage) {
	room := c.room()
	if room == nil {
		return
	}
	var msg ShootMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if _, err := room.ProcessShot(c.playerID, msg, c.hub.anticheat); err != nil {
		c.sendError(err.Error())
	}
}

func (c *Client) handleReload() {
	if room := c.room(); room != nil {
		room.StartReload(c.playerID)
	}
}

func (c *Client) handleDamage(data json.RawMessage) {
	room := c.room()
	if room == nil {
		return
	}
	var msg DamageMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	room.HandleDamage(c.playerID, msg.TargetID, msg.Damage)
}

func (c *Client) handleRegister(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg RegisterMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Register(msg.Username, msg.Password)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.authPlayerID = id
	c.authUsername = msg.Username
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{
		Token:    token,
		Username: msg.Username,
		PlayerID: id,
	}})
}

func (c *Client) handleLogin(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg LoginMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Login(msg.Username, msg.Password, c.remoteAddr)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.authPlayerID = id
	c.authUsername = msg.Username
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{
		Token:    token,
		Username: msg.Username,
		PlayerID: id,
	}})
}

func (c *Client) handleAuth(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg AuthMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, username, err := c.hub.auth.ValidateToken(msg.Token)
	if err != nil {
		c.sendError("invalid token")
		return
	}
	c.authPlayerID = id
	c.authUsername = username
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{
		Token:    msg.Token,
		Username: username,
		PlayerID: id,
	}})
}

func (c *Client) handleProfile() {
	if c.hub.db == nil || c.authPlayerID == 0 {
		c.sendError("not authenticated")
		return
	}
	stats, err := c.hub.db.GetStats(c.authPlayerID)
	if err != nil || stats == nil {
		c.sendError("profile not found")
		return
	}
	earned, _ := c.hub.db.GetAchievements(c.authPlayerID)
	c.SendJSON(Envelope{T: MsgProfileData, Data: ProfileDataMsg{
		Username:     c.authUsername,
		Kills:        stats.Kills,
		Deaths:       stats.Deaths,
		Wins:         stats.Wins,
		Losses:       stats.Losses,
		Achievements: earned,
	}})
}
