// Package session tracks which candidates were last offered to each search
// session and validates selection tokens against that set. Tokens are
// opaque, bound 1:1 to an external id, and die with the result set that
// issued them: a new search invalidates the old tokens, and idle sessions
// are evicted by a janitor.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"warble/internal/logging"
	"warble/internal/media"
	"warble/internal/services"
)

// Offer pairs a selection token with the candidate it references.
type Offer struct {
	Token     string
	Candidate media.Candidate
}

type session struct {
	tokens   map[string]media.Candidate
	lastSeen time.Time
}

// Store is an in-memory session table. It is the only state shared between
// concurrent requests besides the workspace base, and it is owned by the
// daemon rather than living in a package-level variable.
type Store struct {
	mu          sync.Mutex
	sessions    map[string]*session
	idleTimeout time.Duration
	logger      *slog.Logger
}

// NewStore constructs a session store with the given idle eviction timeout.
func NewStore(idleTimeout time.Duration, logger *slog.Logger) *Store {
	if idleTimeout <= 0 {
		idleTimeout = 15 * time.Minute
	}
	return &Store{
		sessions:    make(map[string]*session),
		idleTimeout: idleTimeout,
		logger:      logging.NewComponentLogger(logger, "session"),
	}
}

// Offer records a fresh result set for the session and issues one token per
// candidate. A previous result set for the same session is replaced, which
// invalidates its tokens. An empty session id starts a new session.
func (s *Store) Offer(sessionID string, candidates []media.Candidate) (string, []Offer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	sess := &session{
		tokens:   make(map[string]media.Candidate, len(candidates)),
		lastSeen: time.Now(),
	}
	offers := make([]Offer, 0, len(candidates))
	for _, candidate := range candidates {
		token := uuid.NewString()
		sess.tokens[token] = candidate
		offers = append(offers, Offer{Token: token, Candidate: candidate})
	}
	s.sessions[sessionID] = sess
	return sessionID, offers
}

// Resolve maps a selection token back to the candidate it was issued for.
// Tokens from unknown sessions, evicted sessions, or superseded result sets
// fail with ErrInvalidSelection.
func (s *Store) Resolve(sessionID, token string) (media.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return media.Candidate{}, services.Wrap(services.ErrInvalidSelection, "session", "resolve", "unknown session", nil)
	}
	candidate, ok := sess.tokens[token]
	if !ok {
		return media.Candidate{}, services.Wrap(services.ErrInvalidSelection, "session", "resolve", "token not in current result set", nil)
	}
	sess.lastSeen = time.Now()
	return candidate, nil
}

// EvictIdle removes sessions that have been idle longer than the timeout
// and returns how many were dropped.
func (s *Store) EvictIdle(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-s.idleTimeout)
	evicted := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Janitor evicts idle sessions periodically until the context is cancelled.
func (s *Store) Janitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if evicted := s.EvictIdle(now); evicted > 0 {
				s.logger.Debug("evicted idle sessions", logging.Int("count", evicted))
			}
		}
	}
}
