package jobs

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a fetch job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// RestartReason is the error message recorded when jobs left in flight by a
// crash are failed during the startup sweep.
const RestartReason = "interrupted by restart"

var allStatuses = []Status{
	StatusPending,
	StatusInProgress,
	StatusSucceeded,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := statusSet[status]
	return status, ok
}

// Job is one fetch recorded in the ledger. Workspace paths are kept so
// operators can correlate leak warnings with the jobs that produced them.
type Job struct {
	ID              int64
	ExternalID      string
	WorkspacePath   string
	Status          Status
	ProgressPercent float64
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
