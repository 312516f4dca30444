package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"classical-music-quiz/internal/app"
	"classical-music-quiz/internal/config"
	"classical-music-quiz/internal/domain"
	"classical-music-quiz/internal/logger"
	"classical-music-quiz/internal/playback"
	"github.com/spf13/cobra"
)

// NewPlayCmd runs a game in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var playerID string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			log := logger.New(logger.Options{File: cfg.Log.File, Production: true, Quiet: true})
			defer func() { _ = log.Sync() }()

			b, err := buildBackend(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer b.Close()
			return runGame(cmd.Context(), b.service, playerID, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&playerID, "player", "local", "player whose scores are used")
	return cmd
}

func runGame(ctx context.Context, service *app.QuizService, playerID string, in io.Reader, w io.Writer) error {
	reader := bufio.NewReader(in)
	// playback notices arrive from the round timer goroutine
	out := &lockedWriter{w: w}

	summary, err := service.Scores(ctx, playerID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "High score: %d/%d\n", summary.HighScore, summary.MaxScore)

	var lastURI string
	media := playback.NewMediaSession(func(status playback.Status) {
		if status.State == playback.StatePlaying && status.URI != lastURI {
			lastURI = status.URI
			fmt.Fprintf(out, "♪ now playing %s\n", status.URI)
		}
	}, nil)
	defer media.Release()

	event, err := service.StartNewGame(ctx, playerID, media)
	defer service.Detach(context.Background(), playerID, media)
	if err != nil {
		return err
	}
	updates, cancel, err := service.Subscribe(ctx, playerID)
	if err != nil {
		return err
	}
	defer cancel()

	for {
		switch event.Type {
		case domain.EventQuestion:
			printQuestion(out, event.Question)
			chosen, ok := readChoice(reader, out, event.Question.Choices)
			if !ok {
				fmt.Fprintln(out, "Bye.")
				return nil
			}
			verdict, err := service.Answer(ctx, playerID, chosen)
			if err != nil {
				return err
			}
			if verdict.Correct {
				fmt.Fprintln(out, "Correct!")
			} else {
				fmt.Fprintf(out, "Wrong. It was %s.\n", verdict.CorrectComposer)
			}

			next, open := <-updates
			if !open {
				return nil
			}
			event = next
		case domain.EventGameOver:
			fmt.Fprintf(out, "\nGame over. Your score: %d/%d (high score %d)\n",
				event.Result.FinalScore, event.Result.MaxScore, event.Result.HighScore)
			return nil
		default:
			return errors.New(event.Error)
		}
	}
}

func printQuestion(out io.Writer, q *domain.QuestionView) {
	fmt.Fprintf(out, "\nRound %d (score %d, high %d): who wrote this?\n", q.Round, q.CurrentScore, q.HighScore)
	for i, c := range q.Choices {
		fmt.Fprintf(out, "  %d. %s\n", i+1, c.Composer)
	}
}

// readChoice prompts until a valid button number is entered. ok is false on EOF or "q".
func readChoice(reader *bufio.Reader, out io.Writer, choices []domain.Choice) (int, bool) {
	for {
		fmt.Fprintf(out, "Your answer (1-%d, q to quit): ", len(choices))
		line, err := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "q" {
			return 0, false
		}
		if n, convErr := strconv.Atoi(line); convErr == nil && n >= 1 && n <= len(choices) {
			return choices[n-1].ID, true
		}
		if err != nil {
			return 0, false
		}
		fmt.Fprintln(out, "Please enter one of the listed numbers.")
	}
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
