// Package jobs persists the fetch job ledger in SQLite. The ledger exists
// for observability and crash accounting: past fetches are inspectable via
// the CLI and API, and jobs left in flight by a crash are marked failed by
// the startup sweep. Search history is deliberately never stored.
package jobs
