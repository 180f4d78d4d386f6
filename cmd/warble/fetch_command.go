package main

import (
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"warble/internal/textutil"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var sessionFlag string
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "fetch <token>",
		Short: "Download a selected track through the daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := strings.TrimSpace(args[0])
			if token == "" {
				return fmt.Errorf("selection token is required")
			}
			session := strings.TrimSpace(sessionFlag)
			if session == "" {
				return fmt.Errorf("--session is required")
			}

			path := fmt.Sprintf("/download/%s?session=%s", url.PathEscape(token), url.QueryEscape(session))
			resp, err := ctx.getRaw(path)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			target := strings.TrimSpace(outputFlag)
			if target == "" {
				target = attachmentName(resp.Header.Get("Content-Disposition"))
			}
			if target == "" {
				target = "track"
			}

			file, err := os.Create(target)
			if err != nil {
				return fmt.Errorf("create output file: %w", err)
			}
			defer file.Close()

			written, err := io.Copy(file, resp.Body)
			if err != nil {
				_ = os.Remove(target)
				return fmt.Errorf("download: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", target, written)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionFlag, "session", "", "Session the selection token belongs to")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Destination file (defaults to the served filename)")
	return cmd
}

// attachmentName extracts the filename from a Content-Disposition header,
// stripped of any path component a hostile server might include.
func attachmentName(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	name := strings.TrimSpace(params["filename"])
	if name == "" {
		return ""
	}
	name = textutil.SanitizeFileName(filepath.Base(name))
	if name == "." || name == ".." {
		return ""
	}
	return name
}
