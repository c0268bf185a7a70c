package client

import (
	"context"
	"testing"
	"time"
)

func TestKeysInsertionOrder(t *testing.T) {
	var k Keys
	if !k.Press(DirNorth) {
		t.Fatal("first press must report Idle→Moving")
	}
	if k.Press(DirEast) {
		t.Fatal("second press must not report a transition")
	}
	if k.Active() != DirNorth {
		t.Fatalf("active = %v, want first-inserted DirNorth", k.Active())
	}
	if k.Release(DirNorth) {
		t.Fatal("release with keys remaining must not report Moving→Idle")
	}
	if k.Active() != DirEast {
		t.Fatalf("active = %v, want DirEast after north released", k.Active())
	}
	if !k.Release(DirEast) {
		t.Fatal("last release must report Moving→Idle")
	}
	if !k.Empty() {
		t.Fatal("set must be empty")
	}
}

func TestKeysDuplicatePressAndUnknownRelease(t *testing.T) {
	var k Keys
	k.Press(DirNorth)
	if k.Press(DirNorth) {
		t.Fatal("duplicate key-down must be a no-op")
	}
	if k.Release(DirSouth) {
		t.Fatal("releasing an unpressed key must be a no-op")
	}
	if k.Press(DirNone) {
		t.Fatal("DirNone must never enter the set")
	}
}

func TestSingleKeySendsOneMoveThenOneStop(t *testing.T) {
	s, fn, _ := newTestSession(t)

	s.handleUI(uiEvent{kind: evKeyDown, dir: DirNorth})
	s.handleUI(uiEvent{kind: evKeyUp, dir: DirNorth})

	moves, stops := fn.snapshot()
	if len(moves) != 1 || moves[0] != DirNorth {
		t.Fatalf("moves = %v, want [DirNorth]", moves)
	}
	if stops != 1 {
		t.Fatalf("stops = %d, want 1", stops)
	}
}

func TestSecondKeyDoesNotResendImmediately(t *testing.T) {
	s, fn, _ := newTestSession(t)

	s.handleUI(uiEvent{kind: evKeyDown, dir: DirNorth})
	s.handleUI(uiEvent{kind: evKeyDown, dir: DirEast})

	moves, _ := fn.snapshot()
	if len(moves) != 1 {
		t.Fatalf("moves = %v, want only the Idle→Moving send", moves)
	}
	// 重复周期补发最早仍按住的键
	s.onRepeat()
	moves, _ = fn.snapshot()
	if len(moves) != 2 || moves[1] != DirNorth {
		t.Fatalf("moves = %v, want repeat of DirNorth", moves)
	}
}

func TestNoStopUntilLastKeyReleased(t *testing.T) {
	s, fn, _ := newTestSession(t)

	s.handleUI(uiEvent{kind: evKeyDown, dir: DirNorth})
	s.handleUI(uiEvent{kind: evKeyDown, dir: DirEast})
	s.handleUI(uiEvent{kind: evKeyUp, dir: DirNorth})

	if _, stops := fn.snapshot(); stops != 0 {
		t.Fatal("stop sent while a movement key is still held")
	}
	// 先插入的键释放后，重复方向落到下一个仍按住的键
	s.onRepeat()
	moves, _ := fn.snapshot()
	if moves[len(moves)-1] != DirEast {
		t.Fatalf("moves = %v, want trailing DirEast", moves)
	}

	s.handleUI(uiEvent{kind: evKeyUp, dir: DirEast})
	if _, stops := fn.snapshot(); stops != 1 {
		t.Fatalf("stops = %d, want exactly 1", stops)
	}
}

func TestDuplicateKeyDownSendsNothing(t *testing.T) {
	s, fn, _ := newTestSession(t)

	s.handleUI(uiEvent{kind: evKeyDown, dir: DirNorth})
	s.handleUI(uiEvent{kind: evKeyDown, dir: DirNorth})

	moves, _ := fn.snapshot()
	if len(moves) != 1 {
		t.Fatalf("moves = %v, want 1", moves)
	}
}

func TestRecenterKeyLeavesPressedSetAlone(t *testing.T) {
	s, fn, m := newTestSession(t)
	s.handleMessage([]byte(joinResultJSON))
	rendersBefore := m.Renders

	s.handleUI(uiEvent{kind: evKeyDown, dir: DirNorth})
	s.handleUI(uiEvent{kind: evRecenter})

	if s.keys.Empty() || s.keys.Active() != DirNorth {
		t.Fatal("recenter must not touch the pressed-key set")
	}
	if m.Renders != rendersBefore+1 {
		t.Fatalf("renders = %d, want %d", m.Renders, rendersBefore+1)
	}
	if _, stops := fn.snapshot(); stops != 0 {
		t.Fatal("recenter must not emit commands")
	}
}

func TestRepeatTickerResendsActiveDirection(t *testing.T) {
	s, fn, _ := newTestSession(t)
	s.SetRepeatInterval(5 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	s.KeyDown(DirEast)
	time.Sleep(60 * time.Millisecond)
	s.KeyUp(DirEast)
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	moves, stops := fn.snapshot()
	if len(moves) < 2 {
		t.Fatalf("moves = %v, want the immediate send plus repeats", moves)
	}
	for _, d := range moves {
		if d != DirEast {
			t.Fatalf("moves = %v, want DirEast only", moves)
		}
	}
	if stops != 1 {
		t.Fatalf("stops = %d, want exactly 1", stops)
	}
}
