// Package delivery adapts pipeline artifacts onto the HTTP transport:
// direct stream URLs as JSON payloads and local files as streamed
// attachments with a size cap. The adapter owns the final leg of the
// artifact lifecycle: a local artifact's workspace is released here, after
// the transport has consumed the file, on every path.
package delivery

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"warble/internal/logging"
	"warble/internal/media"
	"warble/internal/services"
)

// Adapter writes artifacts to HTTP responses.
type Adapter struct {
	maxAttachmentBytes int64
	logger             *slog.Logger
}

// NewAdapter builds a delivery adapter. maxAttachmentMiB bounds how large a
// local file may be before the transport refuses it; zero disables the cap.
func NewAdapter(maxAttachmentMiB int, logger *slog.Logger) *Adapter {
	return &Adapter{
		maxAttachmentBytes: int64(maxAttachmentMiB) << 20,
		logger:             logging.NewComponentLogger(logger, "delivery"),
	}
}

// urlPayload is the JSON body for URL deliveries.
type urlPayload struct {
	URL string `json:"url"`
}

// DeliverURL writes a direct stream URL as a JSON payload.
func (a *Adapter) DeliverURL(w http.ResponseWriter, artifact media.Artifact) error {
	if artifact.URL == "" {
		return services.Wrap(services.ErrTransportRejected, "delivery", "url", "artifact has no URL", nil)
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(urlPayload{URL: artifact.URL}); err != nil {
		return services.Wrap(services.ErrTransportRejected, "delivery", "url", "write response", err)
	}
	return nil
}

// DeliverFile streams a local artifact as an attachment and releases its
// workspace once the transport has consumed it. release runs on every
// return path, success or failure; callers hand over ownership by calling
// this method.
func (a *Adapter) DeliverFile(w http.ResponseWriter, artifact media.Artifact, release func()) error {
	if release != nil {
		defer release()
	}

	file, err := os.Open(artifact.Path)
	if err != nil {
		// The artifact was verified on disk when the fetch completed, so a
		// missing file here means the lifecycle was violated between fetch
		// and delivery.
		a.logger.Error("artifact disappeared before delivery",
			logging.String("path", artifact.Path),
			logging.String(logging.FieldErrorHint, "artifact removed between fetch and delivery"),
			logging.String(logging.FieldImpact, "request fails; lifecycle bug"),
			logging.Error(err),
		)
		http.Error(w, services.UserMessage(services.ErrArtifactGone), http.StatusInternalServerError)
		return services.Wrap(services.ErrArtifactGone, "delivery", "open", artifact.Path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		http.Error(w, services.UserMessage(services.ErrTransportRejected), http.StatusInternalServerError)
		return services.Wrap(services.ErrTransportRejected, "delivery", "stat", artifact.Path, err)
	}
	if a.maxAttachmentBytes > 0 && info.Size() > a.maxAttachmentBytes {
		http.Error(w, services.UserMessage(services.ErrTransportRejected), http.StatusRequestEntityTooLarge)
		return services.Wrap(services.ErrTransportRejected, "delivery", "size check",
			fmt.Sprintf("%d bytes exceeds %d byte cap", info.Size(), a.maxAttachmentBytes), nil)
	}

	contentType := artifact.MIMEType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", info.Size()))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(artifact.Path)))

	if _, err := io.Copy(w, file); err != nil {
		// Headers are already on the wire; all that is left is recording
		// the broken transfer.
		a.logger.Warn("attachment transfer interrupted",
			logging.String("path", artifact.Path),
			logging.Error(err),
		)
		return services.Wrap(services.ErrTransportRejected, "delivery", "copy", "", err)
	}

	a.logger.Info("artifact delivered",
		logging.String("path", artifact.Path),
		logging.Int64("bytes", info.Size()),
	)
	return nil
}
