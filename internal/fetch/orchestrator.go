// Package fetch implements the selection-to-delivery pipeline core: it
// turns a validated selection into a transcoded audio artifact bound to an
// isolated workspace, or a direct stream URL. Exactly one backend fetch and
// transcode happens per call; retries are a front-end decision because a
// user may prefer to re-select rather than repeat a large download.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/time/rate"

	"warble/internal/config"
	"warble/internal/jobs"
	"warble/internal/logging"
	"warble/internal/media"
	"warble/internal/notifications"
	"warble/internal/services"
	"warble/internal/services/ytdlp"
	"warble/internal/session"
	"warble/internal/workspace"
)

// Result carries a local artifact together with the release hook for its
// workspace. Ownership of the workspace transfers to the caller; the
// delivery adapter must invoke Release exactly when the transport has
// finished reading the file. Release is idempotent.
type Result struct {
	Artifact media.Artifact
	Release  func()
}

// Orchestrator coordinates one fetch job from selection to artifact.
type Orchestrator struct {
	cfg        *config.Config
	backend    ytdlp.Backend
	workspaces *workspace.Manager
	sessions   *session.Store
	ledger     *jobs.Store
	notifier   notifications.Service
	limiter    *rate.Limiter
	sem        chan struct{}
	logger     *slog.Logger
}

// NewOrchestrator wires the pipeline core. The semaphore caps concurrent
// in-flight fetches so a burst of selections cannot exhaust disk or hammer
// the backend; the rate limiter paces backend calls process-wide.
func NewOrchestrator(
	cfg *config.Config,
	backend ytdlp.Backend,
	workspaces *workspace.Manager,
	sessions *session.Store,
	ledger *jobs.Store,
	notifier notifications.Service,
	logger *slog.Logger,
) *Orchestrator {
	perMinute := cfg.Fetch.BackendPerMinute
	return &Orchestrator{
		cfg:        cfg,
		backend:    backend,
		workspaces: workspaces,
		sessions:   sessions,
		ledger:     ledger,
		notifier:   notifier,
		limiter:    rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute),
		sem:        make(chan struct{}, cfg.Fetch.MaxConcurrent),
		logger:     logging.NewComponentLogger(logger, "fetch"),
	}
}

// Search queries the backend and registers the results as the session's
// current offer set, replacing any previous one. The returned session id is
// the caller's when supplied, otherwise freshly generated.
func (o *Orchestrator) Search(ctx context.Context, sessionID, query string) (string, []session.Offer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil, services.Wrap(services.ErrInvalidSelection, "fetch", "search", "empty query", nil)
	}
	if err := o.limiter.Wait(ctx); err != nil {
		return "", nil, services.Wrap(services.ErrBackendFailure, "fetch", "rate limit", "cancelled while waiting", err)
	}

	results, err := o.backend.Search(ctx, query, o.cfg.Resolver.SearchLimit)
	if err != nil {
		return "", nil, services.Wrap(services.ErrBackendFailure, "fetch", "search", "", err)
	}

	candidates := make([]media.Candidate, 0, len(results))
	for _, r := range results {
		candidates = append(candidates, media.NewCandidate(r.ID, r.Title))
	}
	id, offers := o.sessions.Offer(sessionID, candidates)
	o.logger.Info("search completed",
		logging.String(logging.FieldSessionID, id),
		logging.String("query", query),
		logging.Int("results", len(offers)),
	)
	return id, offers, nil
}

// Fetch resolves a selection token, downloads and transcodes the track into
// a fresh workspace, and returns the artifact. Every failure path after
// workspace acquisition releases the workspace before returning; no
// workspace outlives an error.
func (o *Orchestrator) Fetch(ctx context.Context, sessionID, token string) (*Result, error) {
	candidate, err := o.sessions.Resolve(sessionID, token)
	if err != nil {
		return nil, err
	}
	ctx = services.WithSessionID(ctx, sessionID)

	if err := o.acquireSlot(ctx); err != nil {
		return nil, err
	}
	defer o.releaseSlot()

	if err := o.limiter.Wait(ctx); err != nil {
		return nil, services.Wrap(services.ErrBackendFailure, "fetch", "rate limit", "cancelled while waiting", err)
	}

	job, err := o.ledger.NewJob(ctx, candidate.ExternalID)
	if err != nil {
		return nil, services.Wrap(services.ErrBackendFailure, "fetch", "ledger", "record job", err)
	}
	ctx = services.WithJobID(ctx, job.ID)
	log := logging.WithContext(ctx, o.logger)

	ws, err := o.workspaces.Acquire()
	if err != nil {
		o.failJob(job.ID, err)
		return nil, services.Wrap(services.ErrBackendFailure, "fetch", "workspace", "acquire", err)
	}
	delivered := false
	defer func() {
		// Covers the backend error, verification error, and cancellation
		// paths. Once the result is handed off, release belongs to the
		// delivery adapter.
		if !delivered {
			ws.Release()
		}
	}()

	if err := o.ledger.Start(ctx, job.ID, ws.Path()); err != nil {
		log.Warn("ledger start failed", logging.Error(err))
	}

	log.Info("fetching audio",
		logging.String("external_id", candidate.ExternalID),
		logging.String("codec", o.cfg.Audio.Codec),
	)

	err = o.backend.FetchAudio(ctx, candidate.ExternalID, ws.Path(), o.cfg.Audio.Codec, o.cfg.Audio.Bitrate, func(update ytdlp.ProgressUpdate) {
		_ = o.ledger.Progress(context.WithoutCancel(ctx), job.ID, update.Percent)
	})
	if err != nil {
		o.failJob(job.ID, err)
		_ = o.notifier.NotifyFetchFailed(context.WithoutCancel(ctx), candidate.ExternalID, err)
		return nil, services.Wrap(services.ErrBackendFailure, "fetch", "download", "", err)
	}

	path, err := o.locateArtifact(ws.Path(), candidate.ExternalID)
	if err != nil {
		o.failJob(job.ID, err)
		_ = o.notifier.NotifyFetchFailed(context.WithoutCancel(ctx), candidate.ExternalID, err)
		return nil, services.Wrap(services.ErrBackendFailure, "fetch", "verify output", "", err)
	}

	if err := o.ledger.Succeed(ctx, job.ID); err != nil {
		log.Warn("ledger succeed failed", logging.Error(err))
	}
	_ = o.notifier.NotifyFetchCompleted(context.WithoutCancel(ctx), candidate.Title)
	log.Info("artifact ready", logging.String("path", path))

	mimeType, err := media.CodecMIMEType(o.cfg.Audio.Codec)
	if err != nil {
		// Unreachable: config validation rejects unknown codecs at startup.
		mimeType = "application/octet-stream"
	}

	delivered = true
	return &Result{
		Artifact: media.Artifact{
			ExternalID: candidate.ExternalID,
			Path:       path,
			MIMEType:   mimeType,
		},
		Release: ws.Release,
	}, nil
}

// Play resolves a selection token to a direct stream URL. No workspace is
// involved, so there is nothing to release.
func (o *Orchestrator) Play(ctx context.Context, sessionID, token string) (media.Artifact, error) {
	candidate, err := o.sessions.Resolve(sessionID, token)
	if err != nil {
		return media.Artifact{}, err
	}
	return o.PlayExternal(services.WithSessionID(ctx, sessionID), candidate.ExternalID)
}

// PlayExternal resolves a raw external id to a direct stream URL. The HTTP
// front end uses it for the bare /play/{id} contract where no session is
// supplied.
func (o *Orchestrator) PlayExternal(ctx context.Context, externalID string) (media.Artifact, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return media.Artifact{}, services.Wrap(services.ErrInvalidSelection, "fetch", "play", "empty external id", nil)
	}
	if err := o.limiter.Wait(ctx); err != nil {
		return media.Artifact{}, services.Wrap(services.ErrBackendFailure, "fetch", "rate limit", "cancelled while waiting", err)
	}

	url, err := o.backend.StreamURL(ctx, externalID)
	if err != nil {
		return media.Artifact{}, services.Wrap(services.ErrBackendFailure, "fetch", "stream url", "", err)
	}
	return media.Artifact{ExternalID: externalID, URL: url}, nil
}

func (o *Orchestrator) acquireSlot(ctx context.Context) error {
	select {
	case o.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return services.Wrap(services.ErrBackendFailure, "fetch", "concurrency", "cancelled while waiting for a slot", ctx.Err())
	}
}

func (o *Orchestrator) releaseSlot() {
	<-o.sem
}

func (o *Orchestrator) failJob(id int64, cause error) {
	if err := o.ledger.Fail(context.Background(), id, cause.Error()); err != nil {
		o.logger.Warn("ledger fail update failed", logging.Int64(logging.FieldJobID, id), logging.Error(err))
	}
}

// locateArtifact verifies the backend produced exactly one output for the
// external id and normalizes its extension to the codec's canonical one.
// The backend may leave an intermediate container extension behind when the
// extraction step names files before transcoding settles; renaming against
// the canonical mapping replaces the old guess-and-replace string hack.
func (o *Orchestrator) locateArtifact(dir, externalID string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("inspect workspace: %w", err)
	}

	prefix := externalID + "."
	var matches []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), prefix) {
			matches = append(matches, entry.Name())
		}
	}

	switch len(matches) {
	case 0:
		return "", errors.New("backend produced no output file")
	case 1:
	default:
		return "", fmt.Errorf("backend produced %d files matching %q, expected exactly one", len(matches), prefix+"*")
	}

	ext, err := media.CodecExtension(o.cfg.Audio.Codec)
	if err != nil {
		return "", err
	}
	produced := filepath.Join(dir, matches[0])
	canonical := filepath.Join(dir, externalID+ext)
	if produced != canonical {
		if err := os.Rename(produced, canonical); err != nil {
			return "", fmt.Errorf("normalize extension: %w", err)
		}
	}
	return canonical, nil
}
