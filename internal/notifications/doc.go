// Package notifications sends optional ntfy pushes for fetch outcomes and
// workspace leaks. Unconfigured topics degrade to a noop service so callers
// never branch on whether notifications are enabled.
package notifications
