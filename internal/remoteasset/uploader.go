package remoteasset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"vouch/internal/config"
	"vouch/internal/logging"
	"vouch/internal/services"
	"vouch/internal/services/gemini"
	"vouch/internal/staging"
)

// Status is the processing state of a remote asset.
type Status = gemini.FileState

const (
	StatusPending    = gemini.StatePending
	StatusProcessing = gemini.StateProcessing
	StatusReady      = gemini.StateReady
	StatusFailed     = gemini.StateFailed
)

const (
	defaultPollInterval = 2 * time.Second
	defaultPollTimeout  = 60 * time.Second
)

// Handle refers to a file held by the remote service.
type Handle struct {
	RemoteID string
	URI      string
	MimeType string
	Status   Status
	// Reason is the service's explanation when Status is FAILED.
	Reason string
}

// FileService is the subset of the service client used here.
type FileService interface {
	UploadFile(ctx context.Context, localPath, displayName, mimeType string) (gemini.File, error)
	GetFile(ctx context.Context, name string) (gemini.File, error)
	DeleteFile(ctx context.Context, name string) error
}

// Options configures polling.
type Options struct {
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// Uploader pushes staged media and waits for it to become usable.
type Uploader struct {
	files        FileService
	pollInterval time.Duration
	pollTimeout  time.Duration
	logger       *slog.Logger
	now          func() time.Time
	sleep        func(context.Context, time.Duration) error
}

// New constructs an Uploader.
func New(files FileService, opts Options, logger *slog.Logger) *Uploader {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = defaultPollTimeout
	}
	return &Uploader{
		files:        files,
		pollInterval: opts.PollInterval,
		pollTimeout:  opts.PollTimeout,
		logger:       logging.NewComponentLogger(logger, "remoteasset"),
		now:          time.Now,
		sleep:        sleepContext,
	}
}

// NewFromConfig builds an Uploader using the configured poll settings.
func NewFromConfig(files FileService, cfg *config.Config, logger *slog.Logger) *Uploader {
	return New(files, Options{PollInterval: cfg.PollInterval(), PollTimeout: cfg.PollTimeout()}, logger)
}

// Upload submits the staged media.
func (u *Uploader) Upload(ctx context.Context, media *staging.Media) (*Handle, error) {
	if media == nil || media.LocalPath == "" {
		return nil, services.Wrap(services.ErrRemoteUpload, "uploading", "upload", "no staged media", nil)
	}
	file, err := u.files.UploadFile(ctx, media.LocalPath, filepath.Base(media.LocalPath), media.MimeHint)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("upload: %w", ctxErr)
		}
		return nil, ensureMarker(services.ErrRemoteUpload, "uploading", "upload", err)
	}
	handle := &Handle{
		RemoteID: file.Name,
		URI:      file.URI,
		MimeType: file.MimeType,
		Status:   file.State,
		Reason:   file.FailureReason(),
	}
	if handle.MimeType == "" {
		handle.MimeType = media.MimeHint
	}
	u.logger.Info("uploaded media",
		logging.String("remote_id", handle.RemoteID),
		logging.String("status", handle.Status.String()),
		logging.Int64("size_bytes", media.SizeBytes),
		logging.String(logging.FieldEventType, "remote_uploaded"),
	)
	return handle, nil
}

// AwaitReady polls the handle until it is READY. A FAILED asset yields
// ErrRemoteProcessing and an elapsed poll timeout yields ErrTimeout. A handle
// that is already terminal is not polled again. Status calls share the poll
// deadline, so a slow call cannot stretch the wait past it.
func (u *Uploader) AwaitReady(ctx context.Context, handle *Handle) (*Handle, error) {
	if handle == nil || handle.RemoteID == "" {
		return nil, services.Wrap(services.ErrRemoteUpload, "processing", "await", "no remote handle", nil)
	}
	deadline := u.now().Add(u.pollTimeout)
	polls := 0
	for {
		switch handle.Status {
		case StatusReady:
			u.logger.Info("remote media ready",
				logging.String("remote_id", handle.RemoteID),
				logging.Int("polls", polls),
				logging.String(logging.FieldEventType, "remote_ready"),
			)
			return handle, nil
		case StatusFailed:
			detail := handle.RemoteID + " reported FAILED"
			if handle.Reason != "" {
				detail += ": " + handle.Reason
			}
			return handle, services.Wrap(services.ErrRemoteProcessing, "processing", "await", detail, nil)
		}

		remaining := deadline.Sub(u.now())
		if remaining <= 0 {
			return handle, u.timeoutError(handle)
		}
		if err := u.sleep(ctx, min(u.pollInterval, remaining)); err != nil {
			return handle, fmt.Errorf("await %s: %w", handle.RemoteID, err)
		}
		remaining = deadline.Sub(u.now())
		if remaining <= 0 {
			return handle, u.timeoutError(handle)
		}

		pollCtx, cancel := context.WithTimeout(ctx, remaining)
		file, err := u.files.GetFile(pollCtx, handle.RemoteID)
		expired := errors.Is(pollCtx.Err(), context.DeadlineExceeded)
		cancel()
		polls++
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return handle, fmt.Errorf("await %s: %w", handle.RemoteID, ctxErr)
			}
			if expired || errors.Is(err, context.DeadlineExceeded) {
				return handle, u.timeoutError(handle)
			}
			return handle, ensureMarker(services.ErrRemoteUpload, "processing", "poll "+handle.RemoteID, err)
		}
		handle.Status = file.State
		handle.Reason = file.FailureReason()
		if file.URI != "" {
			handle.URI = file.URI
		}
		if file.MimeType != "" {
			handle.MimeType = file.MimeType
		}
		u.logger.Debug("polled remote media",
			logging.String("remote_id", handle.RemoteID),
			logging.String("status", handle.Status.String()),
		)
	}
}

// Delete removes the remote file. Failures are logged and otherwise ignored.
func (u *Uploader) Delete(ctx context.Context, handle *Handle) {
	if handle == nil || handle.RemoteID == "" {
		return
	}
	if err := u.files.DeleteFile(ctx, handle.RemoteID); err != nil {
		u.logger.Warn("failed to delete remote media",
			logging.String("remote_id", handle.RemoteID),
			logging.Error(err),
			logging.String(logging.FieldEventType, "remote_delete_failed"),
			logging.String(logging.FieldErrorHint, "the service expires uploaded files automatically"),
			logging.String(logging.FieldImpact, "remote copy retained until expiry"),
		)
		return
	}
	u.logger.Debug("deleted remote media", logging.String("remote_id", handle.RemoteID))
}

func (u *Uploader) timeoutError(handle *Handle) error {
	return services.Wrap(services.ErrTimeout, "processing", "await",
		fmt.Sprintf("%s still %s after %s", handle.RemoteID, handle.Status, u.pollTimeout), nil)
}

func ensureMarker(marker error, stage, operation string, err error) error {
	if errors.Is(err, marker) {
		return err
	}
	return services.Wrap(marker, stage, operation, "", err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
