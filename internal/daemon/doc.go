// Package daemon coordinates the long-running Warble process.
//
// It wires configuration, the jobs ledger, session tracking, workspace
// management, and the fetch orchestrator into a single lifecycle with
// flock-based locking to prevent multiple instances. Startup probes the
// storage root, verifies external binaries, sweeps workspaces orphaned by
// a previous run, and marks interrupted ledger entries as failed before
// the HTTP API accepts requests.
//
// Keep orchestration logic here: pipeline steps live in their respective
// packages while the daemon focuses on startup, shutdown, and high level
// coordination.
package daemon
