// Package ytdlp wraps the yt-dlp command line tool: relevance-ordered
// search, direct stream URL resolution, and best-audio download with
// extraction to the configured target codec. Command execution sits behind
// an Executor interface so tests can run without the binary.
package ytdlp
