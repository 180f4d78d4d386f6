package ytdlp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// ProgressUpdate captures yt-dlp download progress output.
type ProgressUpdate struct {
	Percent float64
	Message string
}

// Backend defines the behaviour the fetch orchestrator requires from the
// external resolve/transcode tool.
type Backend interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
	FetchAudio(ctx context.Context, externalID, destDir, codec, bitrate string, progress func(ProgressUpdate)) error
	StreamURL(ctx context.Context, externalID string) (string, error)
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary        string
	searchTimeout time.Duration
	fetchTimeout  time.Duration
	exec          Executor
}

// New constructs a yt-dlp client.
func New(binary string, searchTimeoutSeconds, fetchTimeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	client := &Client{
		binary:        binary,
		searchTimeout: time.Duration(searchTimeoutSeconds) * time.Second,
		fetchTimeout:  time.Duration(fetchTimeoutSeconds) * time.Second,
		exec:          commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// watchURL builds the canonical media URL for an external id.
func watchURL(externalID string) string {
	return "https://www.youtube.com/watch?v=" + externalID
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var scanOnce sync.Once
	var errTail tailBuffer

	scan := func(r io.Reader, forward func(string)) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			forward(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			scanOnce.Do(func() {
				scanErr = err
			})
		}
	}

	wg.Add(2)
	go scan(stdout, func(line string) {
		if onStdout != nil {
			onStdout(line)
		}
	})
	go scan(stderr, errTail.append)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		// Reap the killed process so it does not linger as a zombie.
		_ = cmd.Wait()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		if tail := errTail.String(); tail != "" {
			return fmt.Errorf("wait command: %w: %s", err, tail)
		}
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}

// tailBuffer retains the last few stderr lines for error reporting.
type tailBuffer struct {
	mu    sync.Mutex
	lines []string
}

const tailLines = 5

func (t *tailBuffer) append(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if len(t.lines) > tailLines {
		t.lines = t.lines[len(t.lines)-tailLines:]
	}
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.lines, "; ")
}
