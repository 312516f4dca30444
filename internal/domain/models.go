package domain

// Sample is one audio clip with its composer metadata.
type Sample struct {
	ID       int    `json:"id" yaml:"id"`
	Composer string `json:"composer" yaml:"composer"`
	Artwork  string `json:"artwork" yaml:"artwork"`
	URI      string `json:"uri" yaml:"uri"`
}

// Catalog is the read-only list of samples a game is played with.
type Catalog struct {
	Samples []Sample `json:"samples" yaml:"samples"`
}

// AllIdentifiers returns the sample ids in catalog order.
func (c Catalog) AllIdentifiers() []int {
	ids := make([]int, 0, len(c.Samples))
	for _, s := range c.Samples {
		ids = append(ids, s.ID)
	}
	return ids
}

// ByID looks up a sample.
func (c Catalog) ByID(id int) (Sample, bool) {
	for _, s := range c.Samples {
		if s.ID == id {
			return s, true
		}
	}
	return Sample{}, false
}

// MaxScore is the number of rounds in a full game; the last sample is never asked.
func (c Catalog) MaxScore() int {
	if len(c.Samples) == 0 {
		return 0
	}
	return len(c.Samples) - 1
}

// Score store keys.
const (
	CurrentScoreKey = "current_score"
	HighScoreKey    = "high_score"
)

// RoundState is the position of a session in the round state machine.
type RoundState string

const (
	StateAwaitingQuestion RoundState = "awaitingQuestion"
	StateQuestionActive   RoundState = "questionActive"
	StateAnswerRevealed   RoundState = "answerRevealed"
	StateGameOver         RoundState = "gameOver"
	StateClosed           RoundState = "closed"
)

// Choice is one answer button.
type Choice struct {
	ID       int    `json:"id"`
	Composer string `json:"composer"`
}

// QuestionView is what the presentation layer renders for a round.
type QuestionView struct {
	Round        int      `json:"round"`
	Choices      []Choice `json:"choices"`
	CurrentScore int      `json:"currentScore"`
	HighScore    int      `json:"highScore"`
	Remaining    []int    `json:"remaining"`
}

// Verdict summarizes the outcome of a single answer.
type Verdict struct {
	Correct         bool   `json:"correct"`
	ChosenID        int    `json:"chosenId"`
	CorrectID       int    `json:"correctId"`
	CorrectComposer string `json:"correctComposer"`
	CorrectArtwork  string `json:"correctArtwork"`
	CurrentScore    int    `json:"currentScore"`
	HighScore       int    `json:"highScore"`
	GameOver        bool   `json:"gameOver"`
}

// GameResult is reported once a game reaches its terminal state.
type GameResult struct {
	FinalScore int `json:"finalScore"`
	MaxScore   int `json:"maxScore"`
	HighScore  int `json:"highScore"`
}

// ScoreSummary backs the home screen.
type ScoreSummary struct {
	CurrentScore int `json:"currentScore"`
	HighScore    int `json:"highScore"`
	MaxScore     int `json:"maxScore"`
}

// EventType tags session events.
type EventType string

const (
	EventQuestion EventType = "question"
	EventGameOver EventType = "gameOver"
	EventError    EventType = "error"
)

// Event is pushed to subscribers when a scheduled round transition runs.
type Event struct {
	Type     EventType     `json:"type"`
	Question *QuestionView `json:"question,omitempty"`
	Result   *GameResult   `json:"result,omitempty"`
	Error    string        `json:"error,omitempty"`
}
