package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// FetchAudio downloads the best available audio for an external id into
// destDir and extracts it to the target codec. Output files are named
// "<external id>.<ext>"; the orchestrator verifies and normalizes the
// produced file afterwards.
func (c *Client) FetchAudio(ctx context.Context, externalID, destDir, codec, bitrate string, progress func(ProgressUpdate)) error {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return errors.New("external id required")
	}
	if destDir == "" {
		return errors.New("destination directory required")
	}

	fetchCtx := ctx
	if c.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, c.fetchTimeout)
		defer cancel()
	}

	args := []string{
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", codec,
		"--audio-quality", bitrate,
		"--no-playlist",
		"--no-warnings",
		"--newline",
		"-o", filepath.Join(destDir, "%(id)s.%(ext)s"),
		watchURL(externalID),
	}

	err := c.exec.Run(fetchCtx, c.binary, args, func(line string) {
		if progress == nil {
			return
		}
		if update, ok := parseProgress(line); ok {
			progress(update)
		}
	})
	if err != nil {
		return fmt.Errorf("yt-dlp fetch: %w", err)
	}
	return nil
}

// StreamURL resolves a direct playable URL for an external id without
// downloading anything.
func (c *Client) StreamURL(ctx context.Context, externalID string) (string, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return "", errors.New("external id required")
	}

	urlCtx := ctx
	if c.searchTimeout > 0 {
		var cancel context.CancelFunc
		urlCtx, cancel = context.WithTimeout(ctx, c.searchTimeout)
		defer cancel()
	}

	args := []string{
		"-g",
		"-f", "bestaudio/best",
		"--no-playlist",
		"--no-warnings",
		watchURL(externalID),
	}

	var url string
	err := c.exec.Run(urlCtx, c.binary, args, func(line string) {
		line = strings.TrimSpace(line)
		if line != "" {
			url = line
		}
	})
	if err != nil {
		return "", fmt.Errorf("yt-dlp stream url: %w", err)
	}
	if url == "" {
		return "", errors.New("yt-dlp stream url: no url in output")
	}
	return url, nil
}

// parseProgress extracts a percentage from "[download]  42.1% of ..." lines.
func parseProgress(line string) (ProgressUpdate, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "[download]") {
		return ProgressUpdate{}, false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(line, "[download]"))
	fields := strings.Fields(rest)
	if len(fields) == 0 || !strings.HasSuffix(fields[0], "%") {
		return ProgressUpdate{}, false
	}
	percent, err := strconv.ParseFloat(strings.TrimSuffix(fields[0], "%"), 64)
	if err != nil {
		return ProgressUpdate{}, false
	}
	return ProgressUpdate{Percent: percent, Message: rest}, true
}
