package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"classical-music-quiz/internal/app"
	"classical-music-quiz/internal/domain"
	"classical-music-quiz/internal/infra/memory"
)

func TestRunGamePlaysToGameOver(t *testing.T) {
	service := newPlayService()
	input := strings.NewReader("banana\n9\n1\n1\n1\n1\n")
	var out bytes.Buffer

	if err := runGame(context.Background(), service, "p1", input, &out); err != nil {
		t.Fatalf("run game: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "High score: 0/2") {
		t.Fatalf("expected home screen scores, got:\n%s", text)
	}
	if !strings.Contains(text, "Please enter one of the listed numbers.") {
		t.Fatalf("expected invalid input to be rejected, got:\n%s", text)
	}
	if strings.Count(text, "Round ") != 2 {
		t.Fatalf("expected two rounds for three samples, got:\n%s", text)
	}
	if !strings.Contains(text, "♪ now playing audio/") {
		t.Fatalf("expected playback notice, got:\n%s", text)
	}
	if !strings.Contains(text, "Game over. Your score: ") || !strings.Contains(text, "/2") {
		t.Fatalf("expected game over summary, got:\n%s", text)
	}
}

func TestRunGameQuit(t *testing.T) {
	service := newPlayService()
	var out bytes.Buffer
	if err := runGame(context.Background(), service, "p1", strings.NewReader("q\n"), &out); err != nil {
		t.Fatalf("run game: %v", err)
	}
	if !strings.Contains(out.String(), "Bye.") {
		t.Fatalf("expected quit message, got:\n%s", out.String())
	}
	if _, err := service.CurrentQuestion(context.Background(), "p1"); err == nil {
		t.Fatalf("expected session torn down after quitting")
	}
}

func newPlayService() *app.QuizService {
	catalogs := memory.NewCatalogRepository(memory.NewStaticCatalogLoader([]domain.Sample{
		{ID: 0, Composer: "Edvard Grieg", URI: "audio/grieg.mp3"},
		{ID: 1, Composer: "Johannes Brahms", URI: "audio/brahms.mp3"},
		{ID: 2, Composer: "George Frideric Handel", URI: "audio/handel.mp3"},
	}), time.Minute)
	return app.NewQuizService(memory.NewSessionStore(), catalogs, memory.NewScoreRepository(),
		app.WithFeedbackDelay(time.Millisecond))
}
