package gemini

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
)

// ErrorKind is the classification of a failed call.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindTransient
	KindRejected
	KindAuth
	KindNotFound
	KindCanceled
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindRejected:
		return "rejected"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Classify maps an error returned by the client onto an ErrorKind.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		// http.Client timeouts reach us as *url.Error wrapping
		// DeadlineExceeded. A bare deadline belongs to the caller.
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return KindTransient
		}
		return KindCanceled
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTransient
	}
	return KindUnknown
}

func kindForStatus(code int) ErrorKind {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusServiceUnavailable,
		http.StatusBadGateway,
		http.StatusGatewayTimeout:
		return KindTransient
	case http.StatusBadRequest,
		http.StatusRequestEntityTooLarge,
		http.StatusUnsupportedMediaType:
		return KindRejected
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	case http.StatusNotFound:
		return KindNotFound
	default:
		return KindUnknown
	}
}
