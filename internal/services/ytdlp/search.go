package ytdlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// SearchResult is one entry returned by a flat-playlist search.
type SearchResult struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Search queries the platform for up to limit candidates ordered by
// relevance. Entries without an id are skipped.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("search query required")
	}
	if limit <= 0 {
		limit = 10
	}

	searchCtx := ctx
	if c.searchTimeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, c.searchTimeout)
		defer cancel()
	}

	args := []string{
		fmt.Sprintf("ytsearch%d:%s", limit, query),
		"--flat-playlist",
		"--dump-json",
		"--no-warnings",
	}

	var results []SearchResult
	err := c.exec.Run(searchCtx, c.binary, args, func(line string) {
		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "{") {
			return
		}
		var entry SearchResult
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return
		}
		if entry.ID == "" {
			return
		}
		results = append(results, entry)
	})
	if err != nil {
		return nil, fmt.Errorf("yt-dlp search: %w", err)
	}
	return results, nil
}
