package api

import (
	"time"

	"warble/internal/deps"
	"warble/internal/jobs"
	"warble/internal/session"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// FromOffer converts a session offer into its transport representation.
func FromOffer(offer session.Offer) Candidate {
	return Candidate{
		Title: offer.Candidate.Title,
		Token: offer.Token,
		ID:    offer.Candidate.ExternalID,
	}
}

// FromOffers converts a full offer set, preserving order.
func FromOffers(offers []session.Offer) []Candidate {
	out := make([]Candidate, 0, len(offers))
	for _, offer := range offers {
		out = append(out, FromOffer(offer))
	}
	return out
}

// FromJob converts a ledger entry into its transport representation.
func FromJob(job *jobs.Job) Job {
	return Job{
		ID:         job.ID,
		ExternalID: job.ExternalID,
		Status:     string(job.Status),
		Percent:    job.ProgressPercent,
		Error:      job.ErrorMessage,
		CreatedAt:  formatTime(job.CreatedAt),
		UpdatedAt:  formatTime(job.UpdatedAt),
	}
}

// FromJobs converts a batch of ledger entries.
func FromJobs(entries []*jobs.Job) []Job {
	out := make([]Job, 0, len(entries))
	for _, entry := range entries {
		out = append(out, FromJob(entry))
	}
	return out
}

// FromDependencyStatuses converts dependency availability results.
func FromDependencyStatuses(statuses []deps.Status) []DependencyStatus {
	out := make([]DependencyStatus, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, DependencyStatus{
			Name:        status.Name,
			Command:     status.Command,
			Description: status.Description,
			Optional:    status.Optional,
			Available:   status.Available,
			Detail:      status.Detail,
		})
	}
	return out
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.Format(dateTimeFormat)
}
