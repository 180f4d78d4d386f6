package jobs_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"warble/internal/jobs"
)

func openStore(t *testing.T) *jobs.Store {
	t.Helper()
	store, err := jobs.OpenPath(filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestJobLifecycle(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	job, err := store.NewJob(ctx, "abc123")
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	if job.Status != jobs.StatusPending {
		t.Fatalf("unexpected initial status: %s", job.Status)
	}

	if err := store.Start(ctx, job.ID, "/base/ws-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := store.Progress(ctx, job.ID, 42.5); err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if err := store.Succeed(ctx, job.ID); err != nil {
		t.Fatalf("Succeed: %v", err)
	}

	got, err := store.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != jobs.StatusSucceeded {
		t.Fatalf("unexpected status: %s", got.Status)
	}
	if got.WorkspacePath != "/base/ws-1" {
		t.Fatalf("unexpected workspace path: %q", got.WorkspacePath)
	}
	if got.ProgressPercent != 100 {
		t.Fatalf("unexpected progress: %v", got.ProgressPercent)
	}
}

func TestFailRecordsMessage(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	job, err := store.NewJob(ctx, "abc123")
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	if err := store.Fail(ctx, job.ID, "yt-dlp: video unavailable"); err != nil {
		t.Fatalf("Fail: %v", err)
	}

	got, err := store.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != jobs.StatusFailed {
		t.Fatalf("unexpected status: %s", got.Status)
	}
	if got.ErrorMessage != "yt-dlp: video unavailable" {
		t.Fatalf("unexpected message: %q", got.ErrorMessage)
	}
}

func TestFailInFlightOnlyTouchesLiveJobs(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	done, _ := store.NewJob(ctx, "done")
	_ = store.Start(ctx, done.ID, "/base/ws-a")
	_ = store.Succeed(ctx, done.ID)

	stuck, _ := store.NewJob(ctx, "stuck")
	_ = store.Start(ctx, stuck.ID, "/base/ws-b")

	count, err := store.FailInFlight(ctx, jobs.RestartReason)
	if err != nil {
		t.Fatalf("FailInFlight: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 job failed, got %d", count)
	}

	got, _ := store.Get(ctx, stuck.ID)
	if got.Status != jobs.StatusFailed || got.ErrorMessage != jobs.RestartReason {
		t.Fatalf("unexpected stuck job state: %+v", got)
	}
	kept, _ := store.Get(ctx, done.ID)
	if kept.Status != jobs.StatusSucceeded {
		t.Fatalf("succeeded job was touched: %+v", kept)
	}
}

func TestGetUnknownJob(t *testing.T) {
	store := openStore(t)
	if _, err := store.Get(context.Background(), 999); !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	first, _ := store.NewJob(ctx, "first")
	second, _ := store.NewJob(ctx, "second")
	_ = store.Start(ctx, first.ID, "/base/ws-a")

	list, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(list))
	}
	if list[0].ID != first.ID {
		t.Fatalf("expected most recently updated first, got %d then %d", list[0].ID, second.ID)
	}
}
