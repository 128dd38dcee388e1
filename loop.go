package main

import (
	"sync"
	"time"
)

// validatorSweepEvery is how often the anti-cheat idle purge runs.
const validatorSweepEvery = time.Minute

// GameLoop drives every room at a fixed wall-clock rate. One tick
// synchronously advances all rooms (respawns, cooldowns, win checks),
// then runs room cleanup; there is no cancellation of an in-flight
// tick. Deferred actions live as deadlines checked here, never as
// independent timers, so ticks can be simulated in tests.
type GameLoop struct {
	rooms    *RoomManager
	ac       *AntiCheat
	interval time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewGameLoop creates a loop ticking at the configured rate.
func NewGameLoop(rooms *RoomManager, ac *AntiCheat, interval time.Duration) *GameLoop {
	return &GameLoop{
		rooms:    rooms,
		ac:       ac,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run blocks, ticking until Stop is called.
func (gl *GameLoop) Run() {
	defer close(gl.done)

	ticker := time.NewTicker(gl.interval)
	defer ticker.Stop()

	lastSweep := time.Now()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			gl.Advance(now)
			if now.Sub(lastSweep) >= validatorSweepEvery {
				gl.ac.Cleanup(now)
				lastSweep = now
			}
		case <-gl.stop:
			return
		}
	}
}

// Advance runs a single tick at the given instant.
func (gl *GameLoop) Advance(now time.Time) {
	gl.rooms.Tick(now)
}

// Stop halts scheduling of further ticks and waits for the current
// one to finish.
func (gl *GameLoop) Stop() {
	gl.stopOnce.Do(func() { close(gl.stop) })
	<-gl.done
}
