package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"classical-music-quiz/internal/domain"
	"go.uber.org/zap"
)

// State mirrors the player states surfaced on the notification.
type State string

const (
	StateIdle    State = "idle"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
	StateStopped State = "stopped"
)

// Action is a transport control sent by a media button or notification.
type Action string

const (
	ActionPlay           Action = "play"
	ActionPause          Action = "pause"
	ActionPlayPause      Action = "playPause"
	ActionSkipToPrevious Action = "skipToPrevious"
)

// ErrReleased is returned once a media session has been released.
var ErrReleased = errors.New("media session released")

const (
	notificationTitle = "Guess the composer"
	notificationText  = "Listen to the clip and pick who wrote it"
)

// Status is the playback snapshot pushed to the notification surface.
type Status struct {
	State      State    `json:"state"`
	URI        string   `json:"uri,omitempty"`
	PositionMs int64    `json:"positionMs"`
	Actions    []Action `json:"actions"`
	Title      string   `json:"title"`
	Text       string   `json:"text"`
}

// Notifier receives every playback state change.
type Notifier func(Status)

// MediaSession tracks the clip of the active question for one presentation surface.
// Each surface owns its own instance.
type MediaSession struct {
	notify Notifier
	now    func() time.Time
	logger *zap.Logger

	mu        sync.Mutex
	state     State
	uri       string
	position  time.Duration
	startedAt time.Time
	released  bool
}

func NewMediaSession(notify Notifier, logger *zap.Logger) *MediaSession {
	if notify == nil {
		notify = func(Status) {}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MediaSession{
		notify: notify,
		now:    time.Now,
		logger: logger,
		state:  StateIdle,
	}
}

// Play loads uri and starts playing it from the beginning.
func (m *MediaSession) Play(ctx context.Context, uri string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if uri == "" {
		return fmt.Errorf("play: empty uri")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return ErrReleased
	}
	m.uri = uri
	m.position = 0
	m.startedAt = m.now()
	m.state = StatePlaying
	m.logger.Debug("playback started", zap.String("uri", uri))
	m.notifyLocked()
	return nil
}

func (m *MediaSession) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released || m.state != StatePlaying {
		return
	}
	m.position += m.now().Sub(m.startedAt)
	m.state = StatePaused
	m.notifyLocked()
}

func (m *MediaSession) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released || m.state != StatePaused {
		return
	}
	m.startedAt = m.now()
	m.state = StatePlaying
	m.notifyLocked()
}

// Restart seeks back to the start of the clip.
func (m *MediaSession) Restart() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released || (m.state != StatePlaying && m.state != StatePaused) {
		return
	}
	m.position = 0
	m.startedAt = m.now()
	m.notifyLocked()
}

// Stop ends playback of the current clip. Stopping an idle or stopped session is a no-op.
func (m *MediaSession) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released || m.state == StateIdle || m.state == StateStopped {
		return
	}
	m.state = StateStopped
	m.position = 0
	m.notifyLocked()
}

// Release stops playback for good; later calls are ignored and Play fails.
func (m *MediaSession) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return
	}
	if m.state == StatePlaying || m.state == StatePaused {
		m.state = StateStopped
		m.position = 0
		m.notifyLocked()
	}
	m.released = true
}

// Handle applies a transport control action.
func (m *MediaSession) Handle(action Action) error {
	switch action {
	case ActionPlay:
		m.Resume()
	case ActionPause:
		m.Pause()
	case ActionPlayPause:
		if m.Status().State == StatePlaying {
			m.Pause()
		} else {
			m.Resume()
		}
	case ActionSkipToPrevious:
		m.Restart()
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownMediaAction, action)
	}
	return nil
}

// Status returns the current playback snapshot.
func (m *MediaSession) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusLocked()
}

func (m *MediaSession) statusLocked() Status {
	position := m.position
	if m.state == StatePlaying {
		position += m.now().Sub(m.startedAt)
	}
	actions := []Action{ActionSkipToPrevious, ActionPlay}
	if m.state == StatePlaying {
		actions = []Action{ActionSkipToPrevious, ActionPause}
	}
	return Status{
		State:      m.state,
		URI:        m.uri,
		PositionMs: position.Milliseconds(),
		Actions:    actions,
		Title:      notificationTitle,
		Text:       notificationText,
	}
}

func (m *MediaSession) notifyLocked() {
	m.notify(m.statusLocked())
}
