package app_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"classical-music-quiz/internal/app"
	"classical-music-quiz/internal/domain"
)

// scriptedRand replays fixed shuffles and picks. A shuffle with no script
// keeps the input order; a pick with no script returns index 0.
type scriptedRand struct {
	perms [][]int
	picks []int
}

func (r *scriptedRand) Shuffle(n int, swap func(i, j int)) {
	if len(r.perms) == 0 {
		return
	}
	perm := r.perms[0]
	r.perms = r.perms[1:]

	at := make([]int, n)
	pos := make([]int, n)
	for i := range at {
		at[i], pos[i] = i, i
	}
	for i := 0; i < n; i++ {
		j := pos[perm[i]]
		if j == i {
			continue
		}
		swap(i, j)
		at[i], at[j] = at[j], at[i]
		pos[at[i]], pos[at[j]] = i, j
	}
}

func (r *scriptedRand) Intn(n int) int {
	if len(r.picks) == 0 {
		return 0
	}
	pick := r.picks[0]
	r.picks = r.picks[1:]
	return pick % n
}

type manualTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// manualScheduler records timers and fires them on demand.
type manualScheduler struct {
	timers []*manualTimer
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) app.Timer {
	t := &manualTimer{delay: d, fn: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (s *manualScheduler) fire() int {
	fired := 0
	for _, t := range s.timers {
		if t.stopped || t.fired {
			continue
		}
		t.fired = true
		t.fn()
		fired++
	}
	return fired
}

type recordingPlayer struct {
	played []string
	stops  int
}

func (p *recordingPlayer) Play(_ context.Context, uri string) error {
	p.played = append(p.played, uri)
	return nil
}

func (p *recordingPlayer) Stop() {
	p.stops++
}

var errStoreDown = errors.New("store down")

// flakyScores fails writes while down is set.
type flakyScores struct {
	app.ScoreStore
	down bool
}

func (s *flakyScores) SetInt(ctx context.Context, key string, value int) error {
	if s.down {
		return errStoreDown
	}
	return s.ScoreStore.SetInt(ctx, key, value)
}

func catalogOf(ids ...int) domain.Catalog {
	samples := make([]domain.Sample, 0, len(ids))
	for _, id := range ids {
		samples = append(samples, domain.Sample{
			ID:       id,
			Composer: fmt.Sprintf("Composer %d", id),
			Artwork:  fmt.Sprintf("art/%d.png", id),
			URI:      fmt.Sprintf("audio/%d.mp3", id),
		})
	}
	return domain.Catalog{Samples: samples}
}

func choiceIDs(view *domain.QuestionView) []int {
	ids := make([]int, 0, len(view.Choices))
	for _, c := range view.Choices {
		ids = append(ids, c.ID)
	}
	return ids
}

func sameInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
