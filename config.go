package main

import (
	"os"
	"strconv"
	"time"
)

// Fixed gameplay constants. These mirror the tuning of the original
// game and are not operator-configurable.
const (
	PlayerMaxHP    = 100
	PlayerRadius   = 0.5 // hit sphere radius in world units
	SpawnHeight    = 1.0
	MinPlayers     = 2 // players needed for a game to start / stay running
	RespawnDelay   = 5 * time.Second
	RoomResetDelay = 10 * time.Second // Ended -> Lobby

	PlayerIdleTimeout = 30 * time.Second
	ShutdownGrace     = 5 * time.Second
)

// Config holds the operator-tunable server settings, loaded from
// environment variables (a .env file is honored when present).
type Config struct {
	Addr         string
	DBPath       string
	PublicURL    string // base URL used in QR join links
	TickRate     int    // simulation ticks per second
	MapSize      float64
	MaxHeight    float64
	MaxRooms     int
	MaxRoomSize  int     // server-wide cap on per-room max players
	MaxSpeed     float64 // anti-cheat movement ceiling, units/s
	MaxShootRate int     // anti-cheat shots per second ceiling
}

// LoadConfig reads settings from the environment with defaults.
func LoadConfig() Config {
	return Config{
		Addr:         getEnv("ADDR", ":8080"),
		DBPath:       getEnv("DB_PATH", "shooter.db"),
		PublicURL:    getEnv("PUBLIC_URL", "http://localhost:8080"),
		TickRate:     getEnvInt("TICK_RATE", 60),
		MapSize:      getEnvFloat("MAP_SIZE", 50),
		MaxHeight:    getEnvFloat("MAX_HEIGHT", 20),
		MaxRooms:     getEnvInt("MAX_ROOMS", 50),
		MaxRoomSize:  getEnvInt("MAX_ROOM_SIZE", 16),
		MaxSpeed:     getEnvFloat("MAX_SPEED", 10),
		MaxShootRate: getEnvInt("MAX_SHOOT_RATE", 10),
	}
}

// TickInterval returns the wall-clock period of one simulation tick.
func (c Config) TickInterval() time.Duration {
	return time.Duration(float64(time.Second) / float64(c.TickRate))
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
