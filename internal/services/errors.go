package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrIO                = errors.New("staging io error")
	ErrRemoteUpload      = errors.New("remote upload error")
	ErrRemoteProcessing  = errors.New("remote processing error")
	ErrTimeout           = errors.New("timeout")
	ErrTransientBackend  = errors.New("transient backend failure")
	ErrBackendsExhausted = errors.New("all backends exhausted")
	ErrValidation        = errors.New("validation error")
	ErrConfiguration     = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrRemoteUpload
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// UserMessage maps a fatal audit error to the single failure sentence shown to
// the person who started the run.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrValidation):
		return "The uploaded file was not accepted. Upload an MP4, MOV, or AVI video."
	case errors.Is(err, ErrIO):
		return "The video could not be staged locally. Check free disk space and try again."
	case errors.Is(err, ErrRemoteUpload):
		return "The video could not be uploaded to the analysis service."
	case errors.Is(err, ErrRemoteProcessing):
		return "The analysis service could not process this video. Re-upload the file."
	case errors.Is(err, ErrTimeout):
		return "The analysis service took too long to prepare the video. Try again later."
	case errors.Is(err, ErrBackendsExhausted):
		return "Every analysis model is busy or unavailable. Try again later."
	case errors.Is(err, ErrConfiguration):
		return "The audit service is not configured. Set an API key."
	default:
		return "The audit failed unexpectedly."
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
