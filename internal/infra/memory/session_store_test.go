package memory

import (
	"testing"

	"classical-music-quiz/internal/app"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	first := app.NewSession("p1", app.SessionConfig{})
	if previous := store.Replace("p1", first); previous != nil {
		t.Fatalf("expected no previous session")
	}
	if _, ok := store.Get("p1"); !ok {
		t.Fatalf("expected session present")
	}

	second := app.NewSession("p1", app.SessionConfig{})
	if previous := store.Replace("p1", second); previous != first {
		t.Fatalf("expected first session to be displaced")
	}

	store.Delete("p1", first)
	if got, ok := store.Get("p1"); !ok || got != second {
		t.Fatalf("stale delete must not remove the replacement")
	}

	store.Delete("p1", second)
	if _, ok := store.Get("p1"); ok {
		t.Fatalf("expected session removed")
	}
}
