package redis

import (
	"testing"
	"time"

	"classical-music-quiz/internal/app"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	session := app.NewSession("p1", app.SessionConfig{})
	_ = store.Replace("p1", session)
	if !mr.Exists("quiz:session:p1") {
		t.Fatalf("expected redis key to be set")
	}
	if ttl := mr.TTL("quiz:session:p1"); ttl != time.Minute {
		t.Fatalf("expected 1m ttl, got %v", ttl)
	}

	store.Delete("p1", session)
	if mr.Exists("quiz:session:p1") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestSessionStoreLookupKeepsMarkerAlive(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	session := app.NewSession("p1", app.SessionConfig{})
	_ = store.Replace("p1", session)

	mr.FastForward(45 * time.Second)
	if _, ok := store.Get("p1"); !ok {
		t.Fatalf("expected session")
	}
	if ttl := mr.TTL("quiz:session:p1"); ttl != time.Minute {
		t.Fatalf("expected ttl refreshed to 1m, got %v", ttl)
	}

	mr.FastForward(45 * time.Second)
	if !mr.Exists("quiz:session:p1") {
		t.Fatalf("expected marker to outlive the original ttl")
	}

	if _, ok := store.Get("nobody"); ok {
		t.Fatalf("expected no session for unknown player")
	}
	if mr.Exists("quiz:session:nobody") {
		t.Fatalf("lookup of a missing session must not create a marker")
	}
}
