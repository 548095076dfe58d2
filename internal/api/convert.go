package api

import (
	"context"
	"errors"
	"net/http"

	"vouch/internal/audit"
	"vouch/internal/modelselect"
	"vouch/internal/services"
	"vouch/internal/staging"
)

// FromResult converts an audit result to its API representation.
func FromResult(result *audit.Result) AuditResponse {
	if result == nil {
		return AuditResponse{}
	}
	dto := AuditResponse{
		AuditID:        result.AuditID,
		EngineUsed:     result.EngineUsed,
		EngineLabel:    audit.EngineLabel(result.EngineUsed),
		ReportText:     result.ReportText,
		ReportMarkdown: audit.Render(*result),
	}
	if !result.GeneratedAt.IsZero() {
		dto.GeneratedAt = result.GeneratedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromCandidates converts resolved candidates into API DTOs.
func FromCandidates(candidates []modelselect.Candidate) ModelsResponse {
	out := make([]ModelCandidate, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, ModelCandidate{
			Identifier: c.Identifier,
			Label:      audit.EngineLabel(c.Identifier),
			Priority:   c.Priority,
		})
	}
	return ModelsResponse{Candidates: out}
}

// StatusForError maps an audit failure to an HTTP status code.
func StatusForError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, staging.ErrQuotaExceeded):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrRemoteProcessing):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrRemoteUpload):
		return http.StatusBadGateway
	case errors.Is(err, services.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, services.ErrBackendsExhausted),
		errors.Is(err, services.ErrConfiguration),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode returns a stable machine-readable code for err.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, staging.ErrQuotaExceeded):
		return "upload_too_large"
	case errors.Is(err, services.ErrValidation):
		return "invalid_upload"
	case errors.Is(err, services.ErrIO):
		return "staging_failed"
	case errors.Is(err, services.ErrRemoteProcessing):
		return "remote_processing_failed"
	case errors.Is(err, services.ErrRemoteUpload):
		return "remote_upload_failed"
	case errors.Is(err, services.ErrTimeout):
		return "processing_timeout"
	case errors.Is(err, services.ErrBackendsExhausted):
		return "backends_exhausted"
	case errors.Is(err, services.ErrConfiguration):
		return "not_configured"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}

// FromError builds the error payload for err.
func FromError(err error) ErrorResponse {
	return ErrorResponse{
		Error:  services.UserMessage(err),
		Code:   ErrorCode(err),
		Detail: err.Error(),
	}
}
