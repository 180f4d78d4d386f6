package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/goleak"

	"warble/internal/logging"
	"warble/internal/media"
	"warble/internal/services"
	"warble/internal/session"
)

func candidates(ids ...string) []media.Candidate {
	out := make([]media.Candidate, 0, len(ids))
	for _, id := range ids {
		out = append(out, media.NewCandidate(id, "Title "+id))
	}
	return out
}

func TestOfferIssuesResolvableTokens(t *testing.T) {
	store := session.NewStore(time.Minute, logging.NewNop())

	sessionID, offers := store.Offer("", candidates("a", "b"))
	if sessionID == "" {
		t.Fatal("expected generated session id")
	}
	if len(offers) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(offers))
	}

	got, err := store.Resolve(sessionID, offers[1].Token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.ExternalID != "b" {
		t.Fatalf("unexpected candidate: %+v", got)
	}
}

func TestResolveRejectsForeignSession(t *testing.T) {
	store := session.NewStore(time.Minute, logging.NewNop())
	_, offers := store.Offer("", candidates("a"))

	otherID, _ := store.Offer("", candidates("x"))

	if _, err := store.Resolve(otherID, offers[0].Token); !errors.Is(err, services.ErrInvalidSelection) {
		t.Fatalf("expected invalid selection, got: %v", err)
	}
}

func TestNewSearchInvalidatesStaleTokens(t *testing.T) {
	store := session.NewStore(time.Minute, logging.NewNop())
	sessionID, oldOffers := store.Offer("", candidates("a"))

	// Re-searching in the same session replaces the offered set.
	_, newOffers := store.Offer(sessionID, candidates("b"))

	if _, err := store.Resolve(sessionID, oldOffers[0].Token); !errors.Is(err, services.ErrInvalidSelection) {
		t.Fatalf("expected stale token rejection, got: %v", err)
	}
	if _, err := store.Resolve(sessionID, newOffers[0].Token); err != nil {
		t.Fatalf("fresh token should resolve: %v", err)
	}
}

func TestEvictIdleDropsOnlyExpiredSessions(t *testing.T) {
	store := session.NewStore(time.Minute, logging.NewNop())
	store.Offer("", candidates("a"))

	if evicted := store.EvictIdle(time.Now()); evicted != 0 {
		t.Fatalf("fresh session evicted: %d", evicted)
	}
	if evicted := store.EvictIdle(time.Now().Add(2 * time.Minute)); evicted != 1 {
		t.Fatalf("expected 1 eviction, got %d", evicted)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d", store.Len())
	}
}

func TestJanitorStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := session.NewStore(time.Minute, logging.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		store.Janitor(ctx, 10*time.Millisecond)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after cancel")
	}
}
