package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"warble/internal/api"
	"warble/internal/config"
	"warble/internal/logging"
	"warble/internal/media"
	"warble/internal/services"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, errors.New("api bind address is required")
	}

	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/search", srv.handleSearch)
	mux.HandleFunc("/play/", srv.handlePlay)
	mux.HandleFunc("/download/", srv.handleDownload)
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/jobs", srv.handleJobs)
	mux.HandleFunc("/api/test-notification", srv.handleTestNotification)

	srv.server = &http.Server{
		Handler:           srv.withRequestID(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// withRequestID assigns every request a correlation id, honoring one the
// client supplies, and echoes it back so log lines can be matched to
// responses.
func (s *apiServer) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(services.WithRequestID(r.Context(), id)))
	})
}

func (s *apiServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req api.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	sessionID, offers, err := s.daemon.orch.Search(r.Context(), req.SessionID, req.Query)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.SearchResponse{
		SessionID: sessionID,
		Results:   api.FromOffers(offers),
	})
}

// handlePlay resolves a selection to a direct stream URL. With a session
// query parameter the path segment is a selection token; without one it is
// treated as a raw external id so bookmarked links keep working after the
// session that issued them is gone.
func (s *apiServer) handlePlay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	value := strings.TrimPrefix(r.URL.Path, "/play/")
	if value == "" || strings.Contains(value, "/") {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}

	var (
		artifact media.Artifact
		err      error
	)
	if sessionID := strings.TrimSpace(r.URL.Query().Get("session")); sessionID != "" {
		artifact, err = s.daemon.orch.Play(r.Context(), sessionID, value)
	} else {
		artifact, err = s.daemon.orch.PlayExternal(r.Context(), value)
	}
	if err != nil {
		s.writePipelineError(w, err)
		return
	}
	if err := s.daemon.adapter.DeliverURL(w, artifact); err != nil {
		s.log().Warn("url delivery failed", logging.Error(err))
	}
}

// handleDownload runs the full fetch pipeline and streams the transcoded
// file back as an attachment. The delivery adapter owns releasing the
// workspace once the response body is written.
func (s *apiServer) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	token := strings.TrimPrefix(r.URL.Path, "/download/")
	if token == "" || strings.Contains(token, "/") {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	sessionID := strings.TrimSpace(r.URL.Query().Get("session"))
	if sessionID == "" {
		s.writeError(w, http.StatusBadRequest, "session is required")
		return
	}

	result, err := s.daemon.orch.Fetch(r.Context(), sessionID, token)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}
	if err := s.daemon.adapter.DeliverFile(w, result.Artifact, result.Release); err != nil {
		s.log().Warn("file delivery failed", logging.Error(err))
	}
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status()
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:        status.Running,
		PID:            status.PID,
		JobsDBPath:     status.JobsDBPath,
		LockFilePath:   status.LockFilePath,
		LogFilePath:    status.LogFilePath,
		ActiveSessions: status.ActiveSessions,
		Dependencies:   api.FromDependencyStatuses(status.Dependencies),
	})
}

func (s *apiServer) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	entries, err := s.daemon.ledger.Recent(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.JobListResponse{Jobs: api.FromJobs(entries)})
}

// handleTestNotification asks the daemon's notifier to send a probe
// message so operators can verify the configured topic end to end.
func (s *apiServer) handleTestNotification(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	delivered, message, err := s.daemon.TestNotification(r.Context())
	if err != nil {
		s.log().Warn("test notification failed", logging.Error(err))
		s.writeError(w, http.StatusBadGateway, message)
		return
	}
	s.writeJSON(w, http.StatusOK, api.TestNotificationResponse{
		Delivered: delivered,
		Message:   message,
	})
}

// writePipelineError maps the error taxonomy onto HTTP status codes and
// emits the user-safe message, never internal detail.
func (s *apiServer) writePipelineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidSelection):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrStorageUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, services.ErrBackendFailure):
		status = http.StatusInternalServerError
	case errors.Is(err, services.ErrTransportRejected):
		status = http.StatusRequestEntityTooLarge
	}
	s.log().Warn("request failed", logging.Int("status", status), logging.Error(err))
	s.writeError(w, status, services.UserMessage(err))
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
