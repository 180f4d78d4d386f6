package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// CheckFFmpegForResolver reports the ffmpeg binary yt-dlp will execute for
// audio extraction.
//
// yt-dlp's lookup order prefers an ffmpeg binary that sits next to the
// yt-dlp executable and falls back to resolving "ffmpeg" from PATH. This
// helper mirrors that logic so status output matches what yt-dlp actually
// runs.
func CheckFFmpegForResolver(resolverCommand string) Status {
	result := Status{
		Name:        "FFmpeg",
		Description: "Used by yt-dlp for audio extraction",
	}

	resolverBinary := strings.TrimSpace(resolverCommand)
	if resolverBinary != "" {
		if resolved, err := exec.LookPath(resolverBinary); err == nil {
			if candidate, ok := ffmpegSiblingCandidate(resolved); ok {
				if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
					result.Command = candidate
					result.Available = true
					return result
				}
			}
		}
	}

	ffmpegName := "ffmpeg"
	if ffmpegPath, err := exec.LookPath(ffmpegName); err == nil {
		result.Command = ffmpegPath
		result.Available = true
		return result
	}

	result.Command = ffmpegName
	result.Available = false
	result.Detail = fmt.Sprintf("binary %q not found", ffmpegName)
	return result
}

func ffmpegSiblingCandidate(resolverPath string) (string, bool) {
	if resolverPath == "" {
		return "", false
	}
	dir := filepath.Dir(resolverPath)
	name := "ffmpeg"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(dir, name), true
}

func isExecutable(info os.FileInfo) bool {
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
