package main

import (
	"testing"
	"time"
)

func TestAdvanceDrivesRooms(t *testing.T) {
	rm := NewRoomManager(testConfig(), nil, nil)
	room, err := rm.CreateRoom(CreateRoomMsg{Name: "a"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := rm.AddPlayer(room.ID, NewPlayer("p1", "p1"), &mockBroadcaster{}); err != nil {
		t.Fatal(err)
	}

	gl := NewGameLoop(rm, NewAntiCheat(10, 10, 50, 20), time.Millisecond)
	now := time.Now()
	gl.Advance(now)
	gl.Advance(now)

	room.mu.Lock()
	ticks := room.tick
	room.mu.Unlock()
	if ticks != 2 {
		t.Errorf("expected 2 room ticks, got %d", ticks)
	}
}

func TestLoopRunAndStop(t *testing.T) {
	rm := NewRoomManager(testConfig(), nil, nil)
	gl := NewGameLoop(rm, NewAntiCheat(10, 10, 50, 20), time.Millisecond)

	go gl.Run()
	time.Sleep(10 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		gl.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}

	// Stop is idempotent.
	gl.Stop()
}
