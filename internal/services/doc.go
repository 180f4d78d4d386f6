// Package services holds cross-cutting service plumbing: the sentinel error
// taxonomy used to classify pipeline failures, helpers for wrapping errors
// with component context, and context annotations shared across request
// handlers.
package services
