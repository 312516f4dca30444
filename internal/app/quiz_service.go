package app

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"classical-music-quiz/internal/domain"
	"go.uber.org/zap"
)

// SessionRepository abstracts where running game sessions live (in-memory, Redis, etc).
type SessionRepository interface {
	// Replace stores the session for a player and returns the one it displaced, if any.
	Replace(playerID string, session *Session) *Session
	Get(playerID string) (*Session, bool)
	// Delete removes the player's session only if it is still the given one.
	Delete(playerID string, session *Session)
}

// CatalogRepository loads the sample catalog (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context) (domain.Catalog, error)
}

// ScoreRepository hands out the score store of a player.
type ScoreRepository interface {
	Scores(playerID string) ScoreStore
}

// QuizService contains the quiz use cases exposed to presentation surfaces.
type QuizService struct {
	sessions  SessionRepository
	catalogs  CatalogRepository
	scores    ScoreRepository
	scheduler Scheduler
	delay     time.Duration
	newRand   func() Randomizer
	logger    *zap.Logger
}

// Option customizes a QuizService.
type Option func(*QuizService)

// WithFeedbackDelay sets how long a revealed answer stays visible before the next round.
func WithFeedbackDelay(d time.Duration) Option {
	return func(s *QuizService) { s.delay = d }
}

// WithScheduler replaces the timer used for round transitions.
func WithScheduler(scheduler Scheduler) Option {
	return func(s *QuizService) { s.scheduler = scheduler }
}

// WithRandSource makes every new session draw from the randomizer returned by fn.
func WithRandSource(fn func() Randomizer) Option {
	return func(s *QuizService) { s.newRand = fn }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *QuizService) { s.logger = logger }
}

func NewQuizService(sessions SessionRepository, catalogs CatalogRepository, scores ScoreRepository, opts ...Option) *QuizService {
	s := &QuizService{
		sessions:  sessions,
		catalogs:  catalogs,
		scores:    scores,
		scheduler: ClockScheduler{},
		delay:     DefaultFeedbackDelay,
		newRand:   defaultRand(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartNewGame starts a fresh game for the player, replacing any running one.
func (s *QuizService) StartNewGame(ctx context.Context, playerID string, playback PlaybackController) (domain.Event, error) {
	session, err := s.newSession(ctx, playerID, playback)
	if err != nil {
		return domain.Event{}, err
	}
	return session.StartNewGame(ctx)
}

// ContinueGame resumes a game with the samples that are still unanswered.
func (s *QuizService) ContinueGame(ctx context.Context, playerID string, remaining []int, currentScore int, playback PlaybackController) (domain.Event, error) {
	session, err := s.newSession(ctx, playerID, playback)
	if err != nil {
		return domain.Event{}, err
	}
	return session.ContinueGame(ctx, remaining, currentScore)
}

// NextQuestion advances the player's game without waiting for the feedback delay.
func (s *QuizService) NextQuestion(ctx context.Context, playerID string) (domain.Event, error) {
	session, ok := s.sessions.Get(playerID)
	if !ok {
		return domain.Event{}, domain.ErrSessionNotFound
	}
	return session.NextQuestion(ctx)
}

// Answer submits the player's choice for the active round.
func (s *QuizService) Answer(ctx context.Context, playerID string, chosen int) (domain.Verdict, error) {
	session, ok := s.sessions.Get(playerID)
	if !ok {
		return domain.Verdict{}, domain.ErrSessionNotFound
	}
	return session.Answer(ctx, chosen)
}

// CurrentQuestion returns the question the player is looking at.
func (s *QuizService) CurrentQuestion(_ context.Context, playerID string) (domain.QuestionView, error) {
	session, ok := s.sessions.Get(playerID)
	if !ok {
		return domain.QuestionView{}, domain.ErrSessionNotFound
	}
	return session.CurrentQuestion()
}

// Subscribe returns a channel that receives round transitions of the player's current game.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, playerID string) (<-chan domain.Event, func(), error) {
	session, ok := s.sessions.Get(playerID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// Leave tears down the player's game; a pending round transition is cancelled.
func (s *QuizService) Leave(_ context.Context, playerID string) {
	session, ok := s.sessions.Get(playerID)
	if !ok {
		return
	}
	session.Close()
	s.sessions.Delete(playerID, session)
}

// Detach tears down the player's game only if it is still driven by the given
// playback controller, so a connection that was superseded by a newer one
// does not end the newer game.
func (s *QuizService) Detach(_ context.Context, playerID string, playback PlaybackController) {
	session, ok := s.sessions.Get(playerID)
	if !ok || !session.DrivenBy(playback) {
		return
	}
	session.Close()
	s.sessions.Delete(playerID, session)
}

// Scores reports the persisted scores alongside the best score a game allows.
func (s *QuizService) Scores(ctx context.Context, playerID string) (domain.ScoreSummary, error) {
	catalog, err := s.catalogs.GetCatalog(ctx)
	if err != nil {
		return domain.ScoreSummary{}, err
	}
	store := s.scores.Scores(playerID)
	current, err := store.GetInt(ctx, domain.CurrentScoreKey)
	if err != nil {
		return domain.ScoreSummary{}, fmt.Errorf("read current score: %w", err)
	}
	high, err := store.GetInt(ctx, domain.HighScoreKey)
	if err != nil {
		return domain.ScoreSummary{}, fmt.Errorf("read high score: %w", err)
	}
	return domain.ScoreSummary{CurrentScore: current, HighScore: high, MaxScore: catalog.MaxScore()}, nil
}

func (s *QuizService) newSession(ctx context.Context, playerID string, playback PlaybackController) (*Session, error) {
	catalog, err := s.catalogs.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if len(catalog.Samples) == 0 {
		return nil, domain.ErrCatalogEmpty
	}

	session := NewSession(playerID, SessionConfig{
		Catalog:       catalog,
		Scores:        s.scores.Scores(playerID),
		Playback:      playback,
		Rand:          s.newRand(),
		Scheduler:     s.scheduler,
		FeedbackDelay: s.delay,
		Logger:        s.logger,
	})
	if previous := s.sessions.Replace(playerID, session); previous != nil {
		previous.Close()
	}
	return session, nil
}

// defaultRand seeds one generator per session from a shared, locked seed source.
func defaultRand() func() Randomizer {
	var mu sync.Mutex
	seeds := rand.New(rand.NewSource(time.Now().UnixNano()))
	return func() Randomizer {
		mu.Lock()
		seed := seeds.Int63()
		mu.Unlock()
		return rand.New(rand.NewSource(seed))
	}
}
