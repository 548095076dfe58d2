// Package remoteasset moves a staged video to the remote Files service and
// tracks it until the service finishes processing.
//
// Upload returns a Handle; AwaitReady polls it until it becomes READY, turns
// FAILED, or the poll timeout elapses. Polling never sleeps past the deadline.
// Delete removes the remote copy on a best-effort basis.
package remoteasset
