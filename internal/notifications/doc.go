// Package notifications pushes audit outcomes to ntfy.
//
// When no topic is configured NewService returns a no-op implementation, so
// callers never need to check whether notifications are enabled. Failure
// messages carry only the user-facing summary of an error, never the raw
// service response.
package notifications
