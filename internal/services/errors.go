package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors classifying every failure the pipeline can surface.
// ErrArtifactGone should be unreachable by construction; observing it
// indicates a lifecycle bug and is logged at high severity.
var (
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrBackendFailure     = errors.New("backend failure")
	ErrTransportRejected  = errors.New("transport rejected")
	ErrArtifactGone       = errors.New("artifact gone")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrBackendFailure
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// UserMessage translates a pipeline error into the text shown to the
// requesting user. Internal detail never leaks through this boundary.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidSelection):
		return "please choose from the current result list"
	case errors.Is(err, ErrTransportRejected):
		return "delivery failed; try again or pick a smaller track"
	case errors.Is(err, ErrBackendFailure):
		return "could not fetch that track; try again"
	default:
		return "something went wrong; try again"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
