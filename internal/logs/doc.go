// Package logs reads the Vouch log file for `vouch logs`.
//
// Tail returns the last N lines (optionally only those mentioning an audit
// ID) together with the byte offset reached, so follow mode can resume from
// that offset and pick up only new lines. Memory use is bounded by the line
// limit, not the file size.
package logs
