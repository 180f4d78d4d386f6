// Package api defines wire-format types and converters for the HTTP API
// layer. It translates internal models into transport-friendly DTOs so
// consumers never couple to internal types.
//
// # Key Types
//
// SearchResponse: the offer set for a search, one opaque token per result.
//
// Job: transport representation of a fetch ledger entry.
//
// DaemonStatus: aggregated runtime information including dependencies.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript/TypeScript consumers.
// Internal enums are exposed as lowercase strings. Timestamps use RFC3339
// with milliseconds. Selection tokens are returned verbatim; the API never
// exposes workspace paths or other filesystem detail.
package api
