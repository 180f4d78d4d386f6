// Package main hosts the Warble CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into HTTP
// calls against the daemon, plus local configuration scaffolding and the
// daemon process itself via `warble serve`. It centralizes configuration
// resolution and API base-URL discovery so subcommands can focus on user
// experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
