package staging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"vouch/internal/config"
	"vouch/internal/logging"
	"vouch/internal/services"
)

// FilePrefix names every file the stager creates.
const FilePrefix = "vouch-"

var (
	// ErrUnsupportedType reports a file extension outside the allow-list.
	ErrUnsupportedType = errors.New("unsupported media type")
	// ErrQuotaExceeded reports an upload larger than the configured limit.
	ErrQuotaExceeded = errors.New("upload exceeds size limit")
	// ErrInsufficientSpace reports that the staging volume cannot hold the upload.
	ErrInsufficientSpace = errors.New("insufficient free space")
)

// Media is a video persisted to local storage for the duration of one audit.
type Media struct {
	LocalPath string
	SizeBytes int64
	MimeHint  string
}

// Options configures a Stager.
type Options struct {
	Dir               string
	MaxBytes          int64
	AllowedExtensions []string
}

// Stager writes uploads to the staging directory and removes them afterwards.
type Stager struct {
	dir       string
	maxBytes  int64
	allowed   map[string]struct{}
	logger    *slog.Logger
	freeSpace func(dir string) (uint64, error)
}

// New constructs a Stager.
func New(opts Options, logger *slog.Logger) *Stager {
	if logger == nil {
		logger = logging.NewNop()
	}
	allowed := make(map[string]struct{}, len(opts.AllowedExtensions))
	for _, ext := range opts.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = struct{}{}
	}
	return &Stager{
		dir:       strings.TrimSpace(opts.Dir),
		maxBytes:  opts.MaxBytes,
		allowed:   allowed,
		logger:    logging.NewComponentLogger(logger, "staging"),
		freeSpace: availableBytes,
	}
}

// NewFromConfig builds a Stager from the loaded configuration.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Stager {
	return New(Options{
		Dir:               cfg.Paths.StagingDir,
		MaxBytes:          cfg.MaxUploadBytes(),
		AllowedExtensions: cfg.Staging.AllowedExtensions,
	}, logger)
}

// Dir returns the staging directory.
func (s *Stager) Dir() string {
	return s.dir
}

// Stage persists data under a fresh name in the staging directory. On error no
// file is left behind.
func (s *Stager) Stage(ctx context.Context, name string, data []byte) (*Media, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(name)))
	if _, ok := s.allowed[ext]; !ok || ext == "" {
		return nil, services.Wrap(services.ErrValidation, "staging", "validate", fmt.Sprintf("extension %q", ext), ErrUnsupportedType)
	}
	if len(data) == 0 {
		return nil, services.Wrap(services.ErrValidation, "staging", "validate", "upload is empty", nil)
	}
	size := int64(len(data))
	if s.maxBytes > 0 && size > s.maxBytes {
		return nil, services.Wrap(services.ErrIO, "staging", "quota",
			fmt.Sprintf("%d bytes exceeds limit of %d", size, s.maxBytes), ErrQuotaExceeded)
	}
	if s.dir == "" {
		return nil, services.Wrap(services.ErrIO, "staging", "prepare", "staging directory not configured", nil)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrIO, "staging", "prepare", s.dir, err)
	}
	if s.freeSpace != nil {
		free, err := s.freeSpace(s.dir)
		if err != nil {
			return nil, services.Wrap(services.ErrIO, "staging", "statfs", s.dir, err)
		}
		if free < uint64(size) {
			return nil, services.Wrap(services.ErrIO, "staging", "statfs",
				fmt.Sprintf("%d bytes free, %d required", free, size), ErrInsufficientSpace)
		}
	}

	file, err := os.CreateTemp(s.dir, FilePrefix+"*"+ext)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "staging", "create", s.dir, err)
	}
	path := file.Name()
	if err := writeAndClose(file, data); err != nil {
		_ = os.Remove(path)
		return nil, services.Wrap(services.ErrIO, "staging", "write", path, err)
	}

	media := &Media{LocalPath: path, SizeBytes: size, MimeHint: mimeHint(ext)}
	s.logger.Info("staged upload",
		logging.String("path", path),
		logging.Int64("size_bytes", size),
		logging.String("mime", media.MimeHint),
		logging.String(logging.FieldEventType, "media_staged"),
	)
	return media, nil
}

func writeAndClose(file *os.File, data []byte) error {
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// Release removes the staged file. It is nil-safe, idempotent, and never fails;
// removal errors are logged.
func (s *Stager) Release(media *Media) {
	if media == nil || media.LocalPath == "" {
		return
	}
	err := os.Remove(media.LocalPath)
	switch {
	case err == nil:
		s.logger.Debug("released staged upload", logging.String("path", media.LocalPath))
	case errors.Is(err, os.ErrNotExist):
	default:
		s.logger.Warn("failed to remove staged upload",
			logging.String("path", media.LocalPath),
			logging.Error(err),
			logging.String(logging.FieldEventType, "staging_release_failed"),
			logging.String(logging.FieldErrorHint, "run vouch staging clean"),
			logging.String(logging.FieldImpact, "disk space not reclaimed"),
		)
	}
}

var mimeFallbacks = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".3gp":  "video/3gpp",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
}

func mimeHint(ext string) string {
	if hint, ok := mimeFallbacks[ext]; ok {
		return hint
	}
	if hint := mime.TypeByExtension(ext); hint != "" {
		if idx := strings.Index(hint, ";"); idx >= 0 {
			hint = hint[:idx]
		}
		return hint
	}
	return "application/octet-stream"
}
