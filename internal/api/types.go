package api

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"sessionId,omitempty"`
}

// Candidate describes one offered track. Token is the only selector the
// follow-up fetch accepts; ID is informational.
type Candidate struct {
	Title string `json:"title"`
	Token string `json:"token"`
	ID    string `json:"id"`
}

// SearchResponse carries the offer set for a search.
type SearchResponse struct {
	SessionID string      `json:"sessionId"`
	Results   []Candidate `json:"results"`
}

// StreamResponse carries a direct playable URL.
type StreamResponse struct {
	URL string `json:"url"`
}

// Job describes a fetch ledger entry in a transport-friendly format.
type Job struct {
	ID         int64   `json:"id"`
	ExternalID string  `json:"externalId"`
	Status     string  `json:"status"`
	Percent    float64 `json:"percent"`
	Error      string  `json:"error,omitempty"`
	CreatedAt  string  `json:"createdAt,omitempty"`
	UpdatedAt  string  `json:"updatedAt,omitempty"`
}

// JobListResponse wraps recent fetch jobs.
type JobListResponse struct {
	Jobs []Job `json:"jobs"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running        bool               `json:"running"`
	PID            int                `json:"pid"`
	JobsDBPath     string             `json:"jobsDbPath"`
	LockFilePath   string             `json:"lockFilePath"`
	LogFilePath    string             `json:"logFilePath"`
	ActiveSessions int                `json:"activeSessions"`
	Dependencies   []DependencyStatus `json:"dependencies"`
}

// TestNotificationResponse reports the outcome of a notification probe.
type TestNotificationResponse struct {
	Delivered bool   `json:"delivered"`
	Message   string `json:"message"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}
