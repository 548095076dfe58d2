package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vouch/internal/config"
	"vouch/internal/services"
)

const userAgent = "Vouch-Go/0.1.0"

// Service defines the notification surface used by the audit pipeline.
type Service interface {
	NotifyAuditCompleted(ctx context.Context, fileName, auditID, engine string) error
	NotifyAuditFailed(ctx context.Context, fileName string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := cfg.NotifyTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether svc delivers anything.
func Enabled(svc Service) bool {
	_, noop := svc.(noopService)
	return svc != nil && !noop
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyAuditCompleted(ctx context.Context, fileName, auditID, engine string) error {
	message := fmt.Sprintf("Audit %s complete: %s", strings.TrimSpace(auditID), displayName(fileName))
	if engine = strings.TrimSpace(engine); engine != "" {
		message += "\nEngine: " + engine
	}
	return n.send(ctx, payload{
		title:   "Vouch - Audit Complete",
		message: message,
		tags:    []string{"vouch", "audit", "completed"},
	})
}

func (n *ntfyService) NotifyAuditFailed(ctx context.Context, fileName string, err error) error {
	reason := "unknown error"
	if err != nil {
		reason = services.UserMessage(err)
	}
	return n.send(ctx, payload{
		title:    "Vouch - Audit Failed",
		message:  fmt.Sprintf("Audit failed: %s\n%s", displayName(fileName), reason),
		tags:     []string{"vouch", "audit", "error"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "Vouch - Test",
		message:  "Notification system test",
		tags:     []string{"vouch", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func displayName(fileName string) string {
	if fileName = strings.TrimSpace(fileName); fileName == "" {
		return "unnamed upload"
	}
	return fileName
}

type noopService struct{}

func (noopService) NotifyAuditCompleted(context.Context, string, string, string) error { return nil }
func (noopService) NotifyAuditFailed(context.Context, string, error) error              { return nil }
func (noopService) TestNotification(context.Context) error                             { return nil }
