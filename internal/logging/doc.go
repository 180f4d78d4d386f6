// Package logging wraps log/slog with Warble's conventions: console and
// JSON handlers, component-scoped loggers, standardized field names, and
// helpers for deriving logger attributes from request context.
package logging
