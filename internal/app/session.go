package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"classical-music-quiz/internal/domain"
	"go.uber.org/zap"
)

// DefaultFeedbackDelay is how long the revealed answer stays on screen.
const DefaultFeedbackDelay = time.Second

// SampleCatalog is the read-only sample source a session draws from.
// domain.Catalog satisfies it.
type SampleCatalog interface {
	AllIdentifiers() []int
	ByID(id int) (domain.Sample, bool)
	MaxScore() int
}

// ScoreStore persists the two score counters of one player.
type ScoreStore interface {
	GetInt(ctx context.Context, key string) (int, error)
	SetInt(ctx context.Context, key string, value int) error
}

// PlaybackController plays the clip of the active question.
type PlaybackController interface {
	Play(ctx context.Context, uri string) error
	Stop()
}

// SessionConfig carries the collaborators of a Session.
type SessionConfig struct {
	Catalog       SampleCatalog
	Scores        ScoreStore
	Playback      PlaybackController
	Rand          Randomizer
	Scheduler     Scheduler
	FeedbackDelay time.Duration
	Logger        *zap.Logger
}

// Session drives one game through the round state machine:
// awaitingQuestion -> questionActive -> answerRevealed -> (awaitingQuestion | gameOver).
type Session struct {
	id        string
	catalog   SampleCatalog
	scores    ScoreStore
	playback  PlaybackController
	rnd       Randomizer
	scheduler Scheduler
	delay     time.Duration
	logger    *zap.Logger

	mu           sync.Mutex
	state        domain.RoundState
	round        int
	remaining    []int
	question     []int
	answer       int
	currentScore int
	highScore    int
	result       *domain.GameResult
	// token invalidates timer callbacks that fired but have not yet taken mu.
	token       uint64
	pending     Timer
	subscribers map[chan domain.Event]struct{}
}

// NewSession builds an idle session. Call StartNewGame or ContinueGame to begin.
func NewSession(id string, cfg SessionConfig) *Session {
	if cfg.Scheduler == nil {
		cfg.Scheduler = ClockScheduler{}
	}
	if cfg.FeedbackDelay <= 0 {
		cfg.FeedbackDelay = DefaultFeedbackDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Session{
		id:          id,
		catalog:     cfg.Catalog,
		scores:      cfg.Scores,
		playback:    cfg.Playback,
		rnd:         cfg.Rand,
		scheduler:   cfg.Scheduler,
		delay:       cfg.FeedbackDelay,
		logger:      cfg.Logger.With(zap.String("session", id)),
		state:       domain.StateAwaitingQuestion,
		subscribers: make(map[chan domain.Event]struct{}),
	}
}

func (s *Session) ID() string {
	return s.id
}

// DrivenBy reports whether the session plays its clips through playback.
func (s *Session) DrivenBy(playback PlaybackController) bool {
	return s.playback == playback
}

// State reports the current round state.
func (s *Session) State() domain.RoundState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// StartNewGame resets the current score, loads every catalog sample and draws the first question.
func (s *Session) StartNewGame(ctx context.Context) (domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == domain.StateClosed {
		return domain.Event{}, domain.ErrGameOver
	}

	if err := s.scores.SetInt(ctx, domain.CurrentScoreKey, 0); err != nil {
		return domain.Event{}, fmt.Errorf("reset current score: %w", err)
	}
	high, err := s.scores.GetInt(ctx, domain.HighScoreKey)
	if err != nil {
		return domain.Event{}, fmt.Errorf("read high score: %w", err)
	}

	s.resetLocked(dedupe(s.catalog.AllIdentifiers()), 0, high)
	s.logger.Info("new game", zap.Int("samples", len(s.remaining)), zap.Int("highScore", high))
	return s.nextQuestionLocked(ctx)
}

// ContinueGame resumes a game from a remaining set and score carried over from a previous round.
func (s *Session) ContinueGame(ctx context.Context, remaining []int, currentScore int) (domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == domain.StateClosed {
		return domain.Event{}, domain.ErrGameOver
	}
	if currentScore < 0 {
		currentScore = 0
	}

	high, err := s.scores.GetInt(ctx, domain.HighScoreKey)
	if err != nil {
		return domain.Event{}, fmt.Errorf("read high score: %w", err)
	}
	if err := s.scores.SetInt(ctx, domain.CurrentScoreKey, currentScore); err != nil {
		return domain.Event{}, fmt.Errorf("store current score: %w", err)
	}
	if currentScore > high {
		high = currentScore
		if err := s.scores.SetInt(ctx, domain.HighScoreKey, high); err != nil {
			return domain.Event{}, fmt.Errorf("store high score: %w", err)
		}
	}

	s.resetLocked(dedupe(remaining), currentScore, high)
	s.logger.Info("continue game", zap.Int("remaining", len(s.remaining)), zap.Int("score", currentScore))
	return s.nextQuestionLocked(ctx)
}

// NextQuestion moves a waiting session to its next round. A revealed answer
// skips the rest of its feedback delay; an active question is returned as is.
func (s *Session) NextQuestion(ctx context.Context) (domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case domain.StateQuestionActive:
		view := s.viewLocked()
		return domain.Event{Type: domain.EventQuestion, Question: &view}, nil
	case domain.StateAnswerRevealed:
		s.cancelPendingLocked()
		s.stopPlaybackLocked()
		s.state = domain.StateAwaitingQuestion
		return s.nextQuestionLocked(ctx)
	case domain.StateAwaitingQuestion:
		return s.nextQuestionLocked(ctx)
	default:
		return domain.Event{}, domain.ErrGameOver
	}
}

// Answer resolves the active round with the player's choice and schedules the next one.
func (s *Session) Answer(ctx context.Context, chosen int) (domain.Verdict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case domain.StateQuestionActive:
	case domain.StateGameOver, domain.StateClosed:
		return domain.Verdict{}, domain.ErrGameOver
	default:
		return domain.Verdict{}, domain.ErrNoActiveQuestion
	}
	if !contains(s.question, chosen) {
		return domain.Verdict{}, fmt.Errorf("%w: %d", domain.ErrChoiceNotInQuestion, chosen)
	}

	correct := EvaluateAnswer(s.answer, chosen)
	current, high := s.currentScore, s.highScore
	if correct {
		current++
		if err := s.scores.SetInt(ctx, domain.CurrentScoreKey, current); err != nil {
			return domain.Verdict{}, fmt.Errorf("store current score: %w", err)
		}
		if current > high {
			high = current
			if err := s.scores.SetInt(ctx, domain.HighScoreKey, high); err != nil {
				return domain.Verdict{}, fmt.Errorf("store high score: %w", err)
			}
		}
	}
	s.currentScore, s.highScore = current, high
	s.remaining = AdvanceRound(s.remaining, s.answer)
	s.state = domain.StateAnswerRevealed

	sample, _ := s.catalog.ByID(s.answer)
	verdict := domain.Verdict{
		Correct:         correct,
		ChosenID:        chosen,
		CorrectID:       s.answer,
		CorrectComposer: sample.Composer,
		CorrectArtwork:  sample.Artwork,
		CurrentScore:    current,
		HighScore:       high,
		GameOver:        len(s.remaining) < 2,
	}
	s.logger.Debug("answer evaluated",
		zap.Int("round", s.round),
		zap.Bool("correct", correct),
		zap.Int("remaining", len(s.remaining)))

	s.scheduleAdvanceLocked()
	return verdict, nil
}

// CurrentQuestion returns the question on screen, including one whose answer is being revealed.
func (s *Session) CurrentQuestion() (domain.QuestionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != domain.StateQuestionActive && s.state != domain.StateAnswerRevealed {
		return domain.QuestionView{}, domain.ErrNoActiveQuestion
	}
	return s.viewLocked(), nil
}

// Result returns the final result once the game is over.
func (s *Session) Result() (domain.GameResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return domain.GameResult{}, false
	}
	return *s.result, true
}

// Subscribe returns a channel receiving events produced by scheduled round transitions.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, 8)

	s.mu.Lock()
	if s.state == domain.StateClosed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Close tears the session down: the pending round timer is cancelled,
// playback stops and subscriber channels are closed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == domain.StateClosed {
		return
	}
	s.cancelPendingLocked()
	s.stopPlaybackLocked()
	s.state = domain.StateClosed
	s.remaining = nil
	s.question = nil
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
	s.logger.Debug("session closed")
}

func (s *Session) resetLocked(remaining []int, currentScore, highScore int) {
	s.cancelPendingLocked()
	s.stopPlaybackLocked()
	s.state = domain.StateAwaitingQuestion
	s.round = 0
	s.remaining = remaining
	s.question = nil
	s.currentScore = currentScore
	s.highScore = highScore
	s.result = nil
}

// nextQuestionLocked performs the awaitingQuestion -> questionActive transition.
func (s *Session) nextQuestionLocked(ctx context.Context) (domain.Event, error) {
	question, err := GenerateQuestion(s.rnd, s.remaining)
	if err != nil {
		s.logger.Error("question requested with no samples remaining")
		return s.finishLocked(), err
	}
	answer, err := SelectCorrectAnswer(s.rnd, question)
	if err != nil {
		return s.finishLocked(), err
	}
	if len(question) < 2 {
		return s.finishLocked(), nil
	}

	sample, ok := s.catalog.ByID(answer)
	if !ok {
		s.state = domain.StateAwaitingQuestion
		s.logger.Warn("answer sample missing from catalog", zap.Int("sample", answer))
		return domain.Event{}, fmt.Errorf("%w: %d", domain.ErrSampleNotFound, answer)
	}

	s.question = question
	s.answer = answer
	s.round++
	s.state = domain.StateQuestionActive
	if s.playback != nil {
		if err := s.playback.Play(ctx, sample.URI); err != nil {
			s.logger.Warn("playback failed", zap.String("uri", sample.URI), zap.Error(err))
		}
	}

	view := s.viewLocked()
	return domain.Event{Type: domain.EventQuestion, Question: &view}, nil
}

func (s *Session) finishLocked() domain.Event {
	s.stopPlaybackLocked()
	result := domain.GameResult{
		FinalScore: s.currentScore,
		MaxScore:   s.catalog.MaxScore(),
		HighScore:  s.highScore,
	}
	s.state = domain.StateGameOver
	s.result = &result
	s.remaining = nil
	s.question = nil
	s.currentScore = 0
	s.logger.Info("game over", zap.Int("score", result.FinalScore), zap.Int("maxScore", result.MaxScore))
	return domain.Event{Type: domain.EventGameOver, Result: &result}
}

func (s *Session) scheduleAdvanceLocked() {
	s.cancelPendingLocked()
	token := s.token
	s.pending = s.scheduler.AfterFunc(s.delay, func() {
		s.advance(token)
	})
}

// advance runs when the feedback delay elapses.
func (s *Session) advance(token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.token || s.state != domain.StateAnswerRevealed {
		return
	}
	s.pending = nil
	s.stopPlaybackLocked()
	s.state = domain.StateAwaitingQuestion

	event, err := s.nextQuestionLocked(context.Background())
	if err != nil && event.Type == "" {
		event = domain.Event{Type: domain.EventError, Error: err.Error()}
	}
	s.publishLocked(event)
}

func (s *Session) cancelPendingLocked() {
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.token++
}

func (s *Session) stopPlaybackLocked() {
	if s.playback != nil {
		s.playback.Stop()
	}
}

func (s *Session) publishLocked(event domain.Event) {
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// drop the oldest event
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}

func (s *Session) viewLocked() domain.QuestionView {
	choices := make([]domain.Choice, 0, len(s.question))
	for _, id := range s.question {
		sample, _ := s.catalog.ByID(id)
		choices = append(choices, domain.Choice{ID: id, Composer: sample.Composer})
	}
	return domain.QuestionView{
		Round:        s.round,
		Choices:      choices,
		CurrentScore: s.currentScore,
		HighScore:    s.highScore,
		Remaining:    append([]int(nil), s.remaining...),
	}
}

func contains(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
