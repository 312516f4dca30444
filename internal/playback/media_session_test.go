package playback

import (
	"context"
	"errors"
	"testing"
	"time"

	"classical-music-quiz/internal/domain"
)

func TestMediaSessionTransitions(t *testing.T) {
	var seen []Status
	m := NewMediaSession(func(s Status) { seen = append(seen, s) }, nil)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	if err := m.Play(context.Background(), "audio/bach.mp3"); err != nil {
		t.Fatalf("play: %v", err)
	}
	now = now.Add(1500 * time.Millisecond)
	m.Pause()
	if st := m.Status(); st.State != StatePaused || st.PositionMs != 1500 {
		t.Fatalf("expected paused at 1500ms, got %+v", st)
	}
	if actions := m.Status().Actions; actions[1] != ActionPlay {
		t.Fatalf("paused notification should offer play, got %v", actions)
	}

	if err := m.Handle(ActionPlayPause); err != nil {
		t.Fatalf("playPause: %v", err)
	}
	if st := m.Status(); st.State != StatePlaying {
		t.Fatalf("expected playing after playPause, got %s", st.State)
	}

	if err := m.Handle(ActionSkipToPrevious); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if st := m.Status(); st.PositionMs != 0 {
		t.Fatalf("expected restart to seek to 0, got %d", st.PositionMs)
	}

	m.Stop()
	m.Stop()
	if len(seen) != 5 {
		t.Fatalf("expected 5 notifications (play, pause, resume, restart, stop), got %d", len(seen))
	}
	if seen[len(seen)-1].State != StateStopped {
		t.Fatalf("expected last notification stopped, got %s", seen[len(seen)-1].State)
	}
}

func TestMediaSessionRelease(t *testing.T) {
	m := NewMediaSession(nil, nil)
	if err := m.Play(context.Background(), "audio/mozart.mp3"); err != nil {
		t.Fatalf("play: %v", err)
	}
	m.Release()
	if st := m.Status(); st.State != StateStopped {
		t.Fatalf("expected stopped after release, got %s", st.State)
	}
	if err := m.Play(context.Background(), "audio/mozart.mp3"); !errors.Is(err, ErrReleased) {
		t.Fatalf("expected released error, got %v", err)
	}
}

func TestMediaSessionUnknownAction(t *testing.T) {
	m := NewMediaSession(nil, nil)
	if err := m.Handle("fastForward"); !errors.Is(err, domain.ErrUnknownMediaAction) {
		t.Fatalf("expected unknown action error, got %v", err)
	}
}
