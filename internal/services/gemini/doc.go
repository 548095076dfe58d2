// Package gemini provides a REST client for the Gemini Files and
// generateContent APIs used by the audit pipeline.
//
// # Entry Points
//
// NewClient: construct a client from Config (credentials are passed in, never
// read from the environment here).
// Client.UploadFile: resumable upload of a staged video.
// Client.GetFile / Client.DeleteFile: status refresh and cleanup.
// Client.GenerateContent: one generation call against a named model.
// Client.ListModels: model discovery, following page tokens.
// Client.HealthCheck: verify the API key with a single listing page.
//
// # Error Classification
//
// Every failure is decoded at this boundary. HTTP failures become *APIError
// carrying an ErrorKind; Classify maps any error to a kind. File operations
// are tagged services.ErrRemoteUpload, and generation failures that are
// likely to succeed elsewhere (429, 502, 503, 504, network timeouts) are
// tagged services.ErrTransientBackend so callers never inspect raw transport
// errors.
//
// The client performs a single attempt per call. Fallback across models is
// the caller's job.
package gemini
