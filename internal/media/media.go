// Package media defines the data model shared across the pipeline: search
// candidates, delivered artifacts, and the fixed codec registry used to
// normalize backend output.
package media

import (
	"fmt"
	"sort"
	"strings"

	"warble/internal/textutil"
)

// Candidate is one track offered in response to a search. Immutable; lives
// only for the duration of one search response.
type Candidate struct {
	ExternalID string
	Title      string
}

// NewCandidate sanitizes the display title and binds it to an external id.
func NewCandidate(externalID, title string) Candidate {
	return Candidate{
		ExternalID: strings.TrimSpace(externalID),
		Title:      textutil.SanitizeTitle(title),
	}
}

// Artifact is the deliverable produced by a fetch job: a local transcoded
// file bound to a workspace, or a direct playable URL with no lifecycle
// obligations.
type Artifact struct {
	ExternalID string
	Path       string
	URL        string
	MIMEType   string
}

// IsLocal reports whether the artifact is a local file that must be
// released after delivery.
func (a Artifact) IsLocal() bool {
	return a.Path != ""
}

// codec describes one supported target format.
type codec struct {
	Extension string
	MIMEType  string
}

// Registry of supported target codecs. The canonical extension mapping
// exists so backend output is verified against a single expected name
// rather than guessed from whatever container extension the backend left
// behind mid-transcode.
var codecs = map[string]codec{
	"mp3":  {Extension: ".mp3", MIMEType: "audio/mpeg"},
	"m4a":  {Extension: ".m4a", MIMEType: "audio/mp4"},
	"opus": {Extension: ".opus", MIMEType: "audio/ogg"},
}

// CodecExtension returns the canonical file extension for a target codec.
func CodecExtension(name string) (string, error) {
	c, ok := codecs[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("unknown codec %q", name)
	}
	return c.Extension, nil
}

// CodecMIMEType returns the MIME type served for a target codec.
func CodecMIMEType(name string) (string, error) {
	c, ok := codecs[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("unknown codec %q", name)
	}
	return c.MIMEType, nil
}

// SupportedCodecs lists the codec names the pipeline can target, sorted
// for stable error messages.
func SupportedCodecs() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
