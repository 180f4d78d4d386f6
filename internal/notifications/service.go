package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"warble/internal/config"
)

const userAgent = "Warble/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifyFetchCompleted(ctx context.Context, title string) error
	NotifyFetchFailed(ctx context.Context, externalID string, cause error) error
	NotifyWorkspaceLeak(ctx context.Context, path string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		fetches:  cfg.Notifications.Fetches,
		errors:   cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	fetches  bool
	errors   bool
}

func (n *ntfyService) NotifyFetchCompleted(ctx context.Context, title string) error {
	if !n.fetches {
		return nil
	}
	title = strings.TrimSpace(title)
	data := payload{
		title:   "Warble - Track Ready",
		message: fmt.Sprintf("Delivered: %s", title),
		tags:    []string{"warble", "fetch", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyFetchFailed(ctx context.Context, externalID string, cause error) error {
	if !n.errors {
		return nil
	}
	message := fmt.Sprintf("Fetch failed for %s", strings.TrimSpace(externalID))
	if cause != nil {
		message = fmt.Sprintf("%s: %v", message, cause)
	}
	data := payload{
		title:    "Warble - Fetch Failed",
		message:  message,
		tags:     []string{"warble", "fetch", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyWorkspaceLeak(ctx context.Context, path string) error {
	if !n.errors {
		return nil
	}
	data := payload{
		title:    "Warble - Workspace Leak",
		message:  fmt.Sprintf("Workspace could not be deleted: %s", strings.TrimSpace(path)),
		tags:     []string{"warble", "workspace", "leak"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:   "Warble - Test",
		message: "Notifications are configured correctly",
		tags:    []string{"warble", "test"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyFetchCompleted(context.Context, string) error      { return nil }
func (noopService) NotifyFetchFailed(context.Context, string, error) error  { return nil }
func (noopService) NotifyWorkspaceLeak(context.Context, string) error       { return nil }
func (noopService) TestNotification(context.Context) error                  { return nil }
