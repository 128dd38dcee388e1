package main

import "encoding/json"

// Client -> Server message types
const (
	MsgAuth     = "auth"
	MsgRegister = "register"
	MsgLogin    = "login"
	MsgCreate   = "create_room"
	MsgJoin     = "join_room"
	MsgLeave    = "leave_room"
	MsgList     = "list_rooms"
	MsgMove     = "player_move"
	MsgRotate   = "player_rotate"
	MsgShoot    = "player_shoot"
	MsgReload   = "player_reload"
	MsgDamage   = "player_damage"
	MsgProfile  = "profile"
)

// Server -> Client message types
const (
	MsgAuthOK       = "auth_ok"
	MsgRoomCreated  = "room_created"
	MsgRoomJoined   = "room_joined"
	MsgRoomList     = "room_list"
	MsgRoomReset    = "room_reset"
	MsgPlayerJoined = "player_joined"
	MsgPlayerLeft   = "player_left"
	MsgPlayerGone   = "player_disconnected"
	MsgGameStarted  = "game_started"
	MsgGameEnded    = "game_ended"
	MsgMoved        = "player_moved"
	MsgRotated      = "player_rotated"
	MsgShot         = "player_shot"
	MsgDamaged      = "player_damaged"
	MsgRespawned    = "player_respawned"
	MsgReloaded     = "player_reloaded"
	MsgKicked       = "kicked"
	MsgAchievement  = "achievement_unlocked"
	MsgProfileData  = "profile_data"
	MsgError        = "error"
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// AuthMsg carries a previously issued token.
type AuthMsg struct {
	Token string `json:"token"`
}

// RegisterMsg / LoginMsg carry account credentials.
type RegisterMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthOKMsg confirms authentication.
type AuthOKMsg struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	PlayerID int64  `json:"pid"`
}

// CreateRoomMsg is the client's room configuration request.
type CreateRoomMsg struct {
	Name       string `json:"name"`
	Mode       string `json:"mode"`
	MaxPlayers int    `json:"maxPlayers"`
	Private    bool   `json:"private"`
}

// JoinRoomMsg asks to join an existing room.
type JoinRoomMsg struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
}

// MoveMsg is a client-reported position sample.
type MoveMsg struct {
	Position  Vec3  `json:"position"`
	Timestamp int64 `json:"timestamp"` // client clock, unix ms
}

// RotateMsg is a client-reported rotation in degrees.
type RotateMsg struct {
	Rotation Vec3 `json:"rotation"`
}

// ShootMsg describes a fired shot. Direction must be unit length.
type ShootMsg struct {
	Origin    *Vec3 `json:"origin"`
	Direction *Vec3 `json:"direction"`
	Health    int   `json:"health"` // shooter's self-reported health
}

// DamageMsg is a client-reported direct damage event (melee, fall).
type DamageMsg struct {
	TargetID string `json:"targetId"`
	Damage   int    `json:"damage"`
}

// PlayerState is the per-player protocol representation.
type PlayerState struct {
	ID       string `json:"id" msgpack:"id"`
	Name     string `json:"name" msgpack:"n"`
	Team     string `json:"team,omitempty" msgpack:"t"`
	Position Vec3   `json:"position" msgpack:"p"`
	Rotation Vec3   `json:"rotation" msgpack:"r"`
	HP       int    `json:"health" msgpack:"hp"`
	MaxHP    int    `json:"maxHealth" msgpack:"mhp"`
	Alive    bool   `json:"alive" msgpack:"a"`
	Weapon   string `json:"weapon" msgpack:"w"`
	Ammo     int    `json:"ammo" msgpack:"am"`
	Kills    int    `json:"kills" msgpack:"k"`
	Deaths   int    `json:"deaths" msgpack:"d"`
	Score    int    `json:"score" msgpack:"s"`
}

// GameStateMsg mirrors a room's state machine for clients.
type GameStateMsg struct {
	Active    bool   `json:"active" msgpack:"act"`
	GameOver  bool   `json:"gameOver" msgpack:"over"`
	WinnerID  string `json:"winner,omitempty" msgpack:"win"`
	StartedAt int64  `json:"startedAt,omitempty" msgpack:"st"`
	EndedAt   int64  `json:"endedAt,omitempty" msgpack:"et"`
}

// RoomSnapshot is the periodic full-state broadcast, msgpack-encoded
// and sent as a binary frame.
type RoomSnapshot struct {
	RoomID  string        `msgpack:"rid"`
	Tick    uint64        `msgpack:"tick"`
	Players []PlayerState `msgpack:"p"`
	Game    GameStateMsg  `msgpack:"g"`
}

// RoomJoinedMsg is the targeted reply after a successful join.
type RoomJoinedMsg struct {
	RoomID  string        `json:"roomId"`
	Players []PlayerState `json:"players"`
	Game    GameStateMsg  `json:"gameState"`
}

// RoomInfo is one row of the public room list.
type RoomInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Mode       string `json:"mode"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
	Active     bool   `json:"active"`
}

// PlayerCountMsg accompanies join/leave/disconnect broadcasts.
type PlayerCountMsg struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name,omitempty"`
	Count    int    `json:"count"`
}

// GameStartedMsg is broadcast on Lobby -> Active.
type GameStartedMsg struct {
	Mode        string `json:"gameMode"`
	PlayerCount int    `json:"playerCount"`
}

// GameEndedMsg is broadcast on Active -> Ended.
type GameEndedMsg struct {
	WinnerID   string  `json:"winner,omitempty"`
	WinnerTeam string  `json:"winnerTeam,omitempty"`
	Reason     string  `json:"reason"`
	Duration   float64 `json:"duration"` // seconds
}

// MovedMsg / RotatedMsg relay validated movement to the room.
type MovedMsg struct {
	PlayerID string `json:"playerId"`
	Position Vec3   `json:"position"`
}

type RotatedMsg struct {
	PlayerID string `json:"playerId"`
	Rotation Vec3   `json:"rotation"`
}

// ShotMsg relays an accepted shot and its outcome.
type ShotMsg struct {
	PlayerID  string     `json:"playerId"`
	Origin    Vec3       `json:"origin"`
	Direction Vec3       `json:"direction"`
	Weapon    string     `json:"weapon"`
	Ammo      int        `json:"ammo"`
	Hit       *HitResult `json:"hit,omitempty"`
}

// DamagedMsg is broadcast when a player takes damage.
type DamagedMsg struct {
	TargetID  string `json:"targetId"`
	Damage    int    `json:"damage"`
	NewHealth int    `json:"newHealth"`
	IsDead    bool   `json:"isDead"`
}

// RespawnedMsg is broadcast when a dead player comes back.
type RespawnedMsg struct {
	PlayerID string `json:"playerId"`
	Position Vec3   `json:"position"`
}

// ReloadedMsg is broadcast when a reload completes.
type ReloadedMsg struct {
	PlayerID string `json:"playerId"`
	Ammo     int    `json:"ammo"`
}

// AchievementMsg announces a newly unlocked achievement to its owner.
type AchievementMsg struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// KickedMsg tells a player why they were removed.
type KickedMsg struct {
	Reason string `json:"reason"`
}

// ProfileDataMsg returns lifetime stats to an authenticated player.
type ProfileDataMsg struct {
	Username     string   `json:"username"`
	Kills        int      `json:"kills"`
	Deaths       int      `json:"deaths"`
	Wins         int      `json:"wins"`
	Losses       int      `json:"losses"`
	Achievements []string `json:"achievements,omitempty"`
}

// ErrorMsg sends error to client
type ErrorMsg struct {
	Msg string `json:"msg"`
}
