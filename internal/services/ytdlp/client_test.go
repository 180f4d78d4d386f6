package ytdlp_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"warble/internal/services/ytdlp"
)

type fakeExecutor struct {
	lines   []string
	err     error
	gotArgs []string
}

func (f *fakeExecutor) Run(_ context.Context, _ string, args []string, onStdout func(string)) error {
	f.gotArgs = args
	for _, line := range f.lines {
		if onStdout != nil {
			onStdout(line)
		}
	}
	return f.err
}

func TestSearchParsesFlatPlaylistOutput(t *testing.T) {
	exec := &fakeExecutor{lines: []string{
		`{"id":"abc","title":"First Song"}`,
		`not json`,
		`{"id":"","title":"missing id"}`,
		`{"id":"def","title":"Second Song"}`,
	}}
	client, err := ytdlp.New("yt-dlp", 5, 5, ytdlp.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	results, err := client.Search(context.Background(), "test query", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "abc" || results[1].ID != "def" {
		t.Fatalf("unexpected results: %+v", results)
	}

	joined := strings.Join(exec.gotArgs, " ")
	if !strings.Contains(joined, "ytsearch10:test query") {
		t.Fatalf("expected ytsearch prefix in args: %q", joined)
	}
	if !strings.Contains(joined, "--flat-playlist") {
		t.Fatalf("expected flat playlist flag: %q", joined)
	}
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	client, _ := ytdlp.New("yt-dlp", 5, 5, ytdlp.WithExecutor(&fakeExecutor{}))
	if _, err := client.Search(context.Background(), "   ", 10); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestFetchAudioArgsTargetFixedCodec(t *testing.T) {
	exec := &fakeExecutor{}
	client, _ := ytdlp.New("yt-dlp", 5, 30, ytdlp.WithExecutor(exec))

	dir := t.TempDir()
	if err := client.FetchAudio(context.Background(), "abc", dir, "mp3", "192k", nil); err != nil {
		t.Fatalf("FetchAudio: %v", err)
	}

	joined := strings.Join(exec.gotArgs, " ")
	for _, want := range []string{"bestaudio/best", "--audio-format mp3", "--audio-quality 192k", "--no-playlist", "watch?v=abc"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in args: %q", want, joined)
		}
	}
}

func TestFetchAudioPropagatesBackendError(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("exit status 1: ERROR: video unavailable")}
	client, _ := ytdlp.New("yt-dlp", 5, 30, ytdlp.WithExecutor(exec))

	err := client.FetchAudio(context.Background(), "abc", t.TempDir(), "mp3", "192k", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "video unavailable") {
		t.Fatalf("expected upstream message preserved: %v", err)
	}
}

func TestFetchAudioReportsProgress(t *testing.T) {
	exec := &fakeExecutor{lines: []string{
		"[download]   0.0% of 3.5MiB",
		"[download]  42.1% of 3.5MiB at 1.2MiB/s",
		"[ExtractAudio] Destination: abc.mp3",
	}}
	client, _ := ytdlp.New("yt-dlp", 5, 30, ytdlp.WithExecutor(exec))

	var updates []ytdlp.ProgressUpdate
	err := client.FetchAudio(context.Background(), "abc", t.TempDir(), "mp3", "192k", func(u ytdlp.ProgressUpdate) {
		updates = append(updates, u)
	})
	if err != nil {
		t.Fatalf("FetchAudio: %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("expected 2 progress updates, got %d", len(updates))
	}
	if updates[1].Percent != 42.1 {
		t.Fatalf("unexpected percent: %v", updates[1].Percent)
	}
}

func TestStreamURLReturnsLastLine(t *testing.T) {
	exec := &fakeExecutor{lines: []string{"https://cdn.example/audio.m4a?sig=1"}}
	client, _ := ytdlp.New("yt-dlp", 5, 30, ytdlp.WithExecutor(exec))

	url, err := client.StreamURL(context.Background(), "abc")
	if err != nil {
		t.Fatalf("StreamURL: %v", err)
	}
	if url != "https://cdn.example/audio.m4a?sig=1" {
		t.Fatalf("unexpected url: %q", url)
	}
}

func TestStreamURLFailsOnEmptyOutput(t *testing.T) {
	client, _ := ytdlp.New("yt-dlp", 5, 30, ytdlp.WithExecutor(&fakeExecutor{}))
	if _, err := client.StreamURL(context.Background(), "abc"); err == nil {
		t.Fatal("expected error for empty output")
	}
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := ytdlp.New("  ", 5, 5); err == nil {
		t.Fatal("expected error for empty binary")
	}
}

// A binary that emits a line longer than the scanner's buffer forces the
// executor down its kill path. The call must still return promptly with
// the scan error, which requires the killed process to be reaped.
func TestExecutorSurfacesOversizedOutputLine(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	script := filepath.Join(t.TempDir(), "yt-dlp")
	body := "#!/bin/sh\nhead -c 2097152 /dev/zero | tr '\\0' a\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	client, err := ytdlp.New(script, 5, 5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.StreamURL(context.Background(), "abc"); err == nil {
		t.Fatal("expected error for oversized output line")
	} else if !strings.Contains(err.Error(), "scan output") {
		t.Fatalf("expected scan error, got %v", err)
	}
}
