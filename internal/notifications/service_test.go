package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"vouch/internal/config"
	"vouch/internal/notifications"
	"vouch/internal/services"
)

type capturedRequest struct {
	title    string
	tags     string
	priority string
	body     string
}

func newNtfyServer(t *testing.T, status int) (*httptest.Server, func() []capturedRequest) {
	t.Helper()
	var mu sync.Mutex
	var got []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = append(got, capturedRequest{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedRequest(nil), got...)
	}
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg)
	if notifications.Enabled(svc) {
		t.Fatal("expected notifications to be disabled without a topic")
	}
	if err := svc.NotifyAuditCompleted(context.Background(), "trailer.mp4", "VCH-1", "gemini-2.5-flash"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	srv, requests := newNtfyServer(t, http.StatusOK)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	svc := notifications.NewService(&cfg)
	if !notifications.Enabled(svc) {
		t.Fatal("expected notifications to be enabled")
	}

	ctx := context.Background()
	if err := svc.NotifyAuditCompleted(ctx, "trailer.mp4", "VCH-ABC", "gemini-2.5-flash"); err != nil {
		t.Fatalf("NotifyAuditCompleted: %v", err)
	}
	failure := services.Wrap(services.ErrTimeout, "processing", "poll", "file files/x not ready", nil)
	if err := svc.NotifyAuditFailed(ctx, "", failure); err != nil {
		t.Fatalf("NotifyAuditFailed: %v", err)
	}
	if err := svc.TestNotification(ctx); err != nil {
		t.Fatalf("TestNotification: %v", err)
	}

	got := requests()
	if len(got) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(got))
	}
	if got[0].title != "Vouch - Audit Complete" || got[0].tags != "vouch,audit,completed" {
		t.Fatalf("unexpected completion headers: %+v", got[0])
	}
	if !strings.Contains(got[0].body, "VCH-ABC") || !strings.Contains(got[0].body, "gemini-2.5-flash") {
		t.Fatalf("unexpected completion body %q", got[0].body)
	}
	if got[1].priority != "high" || !strings.Contains(got[1].body, "unnamed upload") {
		t.Fatalf("unexpected failure request: %+v", got[1])
	}
	if strings.Contains(got[1].body, "files/x") {
		t.Fatalf("failure body leaked error detail: %q", got[1].body)
	}
	if got[2].priority != "low" {
		t.Fatalf("test priority = %q, want low", got[2].priority)
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	srv, _ := newNtfyServer(t, http.StatusForbidden)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	svc := notifications.NewService(&cfg)

	err := svc.NotifyAuditFailed(context.Background(), "clip.mov", errors.New("boom"))
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}
