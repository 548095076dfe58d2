// Package audit runs a compliance audit of one video.
//
// Pipeline.RunAudit is the entry point used by the CLI and the HTTP API. It
// composes the staging, remoteasset, and modelselect packages with the
// Invoker, which walks the candidate models with bounded backoff on transient
// failures, and the Presenter, which stamps the model's report with an audit
// identifier and timestamp without altering the report text.
//
// The report body is opaque: nothing here parses or validates what the model
// wrote.
package audit
