// Package api serves the audit pipeline over HTTP for the browser front end
// and defines its wire-format types.
//
// # Routes
//
// POST /v1/audits: multipart upload (field "video") that runs one audit and
// returns the report envelope. The caller must send acknowledged=true when
// acknowledgement is required, and X-Session-ID identifies the session whose
// single in-flight audit is enforced (a second concurrent request gets 409).
//
// GET /v1/models: the candidate models the next audit would try.
//
// GET /healthz: liveness; with ?deep=1 it also verifies the Gemini API key.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript consumers. Timestamps use
// RFC3339 with milliseconds. Errors are reported as ErrorResponse with the
// single user-facing sentence from services.UserMessage and a stable code;
// StatusForError maps error markers to HTTP status codes.
package api
