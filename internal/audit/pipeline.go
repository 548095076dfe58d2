package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"vouch/internal/logging"
	"vouch/internal/remoteasset"
	"vouch/internal/services"
	"vouch/internal/staging"
)

const defaultCleanupTimeout = 10 * time.Second

// Stage names a step of an audit run.
type Stage string

const (
	StageUploading  Stage = "uploading"
	StageProcessing Stage = "processing"
	StageReasoning  Stage = "reasoning"
	StageComplete   Stage = "complete"
)

// Percent is the overall progress reported when the stage begins.
func (s Stage) Percent() int {
	switch s {
	case StageUploading:
		return 25
	case StageProcessing:
		return 60
	case StageReasoning:
		return 85
	case StageComplete:
		return 100
	default:
		return 0
	}
}

// Message is the status line shown for the stage.
func (s Stage) Message() string {
	switch s {
	case StageUploading:
		return "Uploading video for analysis"
	case StageProcessing:
		return "Watching video and processing audio"
	case StageReasoning:
		return "Cross-referencing Indian media law"
	case StageComplete:
		return "Audit complete"
	default:
		return string(s)
	}
}

// Progress receives stage transitions. It is called synchronously.
type Progress func(Stage)

// Upload is the raw video supplied by a caller.
type Upload struct {
	Name string
	Data []byte
}

// MediaStager persists uploads locally.
type MediaStager interface {
	Stage(ctx context.Context, name string, data []byte) (*staging.Media, error)
	Release(media *staging.Media)
}

// AssetUploader moves staged media to the remote service.
type AssetUploader interface {
	Upload(ctx context.Context, media *staging.Media) (*remoteasset.Handle, error)
	AwaitReady(ctx context.Context, handle *remoteasset.Handle) (*remoteasset.Handle, error)
	Delete(ctx context.Context, handle *remoteasset.Handle)
}

// Notifier receives the outcome of each run.
type Notifier interface {
	NotifyAuditCompleted(ctx context.Context, fileName, auditID, engine string) error
	NotifyAuditFailed(ctx context.Context, fileName string, err error) error
}

// PipelineOptions configures a Pipeline.
type PipelineOptions struct {
	CleanupTimeout time.Duration
	Progress       Progress
	// Notifier is optional.
	Notifier Notifier
}

// Pipeline runs one audit end to end.
type Pipeline struct {
	stager         MediaStager
	uploader       AssetUploader
	invoker        *Invoker
	presenter      *Presenter
	cleanupTimeout time.Duration
	progress       Progress
	notifier       Notifier
	logger         *slog.Logger
}

// NewPipeline wires the audit components together.
func NewPipeline(stager MediaStager, uploader AssetUploader, invoker *Invoker, presenter *Presenter, opts PipelineOptions, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	if presenter == nil {
		presenter = NewPresenter()
	}
	if opts.CleanupTimeout <= 0 {
		opts.CleanupTimeout = defaultCleanupTimeout
	}
	return &Pipeline{
		stager:         stager,
		uploader:       uploader,
		invoker:        invoker,
		presenter:      presenter,
		cleanupTimeout: opts.CleanupTimeout,
		progress:       opts.Progress,
		notifier:       opts.Notifier,
		logger:         logging.NewComponentLogger(logger, "audit"),
	}
}

// RunAudit stages the upload, sends it to the remote service, waits for it to
// be processed, and asks the candidate models for a report. The staged file
// and the remote copy are released on every path.
func (p *Pipeline) RunAudit(ctx context.Context, upload Upload) (*Result, error) {
	return p.RunAuditWithProgress(ctx, upload, p.progress)
}

// RunAuditWithProgress is RunAudit with a per-call progress callback.
func (p *Pipeline) RunAuditWithProgress(ctx context.Context, upload Upload, progress Progress) (*Result, error) {
	result, err := p.run(ctx, upload, progress)
	p.notify(ctx, upload.Name, result, err)
	return result, err
}

func (p *Pipeline) run(ctx context.Context, upload Upload, progress Progress) (*Result, error) {
	auditID := p.presenter.NewAuditID()
	ctx = services.WithAuditID(ctx, auditID)
	started := time.Now()
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("audit started",
		logging.String("file", upload.Name),
		logging.Int("size_bytes", len(upload.Data)),
		logging.String(logging.FieldEventType, "audit_started"),
	)

	emit := func(stage Stage) {
		if progress != nil {
			progress(stage)
		}
	}

	emit(StageUploading)
	stageCtx := services.WithStage(ctx, string(StageUploading))
	media, err := p.stager.Stage(stageCtx, upload.Name, upload.Data)
	if err != nil {
		return nil, p.fail(logger, StageUploading, err)
	}
	defer p.stager.Release(media)

	handle, err := p.uploader.Upload(stageCtx, media)
	if err != nil {
		return nil, p.fail(logger, StageUploading, err)
	}
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.cleanupTimeout)
		defer cancel()
		p.uploader.Delete(cleanupCtx, handle)
	}()

	emit(StageProcessing)
	ready, err := p.uploader.AwaitReady(services.WithStage(ctx, string(StageProcessing)), handle)
	if err != nil {
		return nil, p.fail(logger, StageProcessing, err)
	}

	emit(StageReasoning)
	resp, err := p.invoker.Run(services.WithStage(ctx, string(StageReasoning)), ready, Checklist, Instructions)
	if err != nil {
		return nil, p.fail(logger, StageReasoning, err)
	}

	result := p.presenter.WrapWithID(auditID, resp.Text, resp.Engine)
	emit(StageComplete)
	logger.Info("audit complete",
		logging.String(logging.FieldModel, result.EngineUsed),
		logging.Int("failed_attempts", len(resp.Attempts)),
		logging.Duration("duration", time.Since(started)),
		logging.String(logging.FieldEventType, "audit_completed"),
	)
	return &result, nil
}

// notify reports the outcome. Canceled runs are not reported.
func (p *Pipeline) notify(ctx context.Context, fileName string, result *Result, err error) {
	if p.notifier == nil || errors.Is(err, context.Canceled) {
		return
	}
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.cleanupTimeout)
	defer cancel()

	var notifyErr error
	if err != nil {
		notifyErr = p.notifier.NotifyAuditFailed(notifyCtx, fileName, err)
	} else if result != nil {
		notifyErr = p.notifier.NotifyAuditCompleted(notifyCtx, fileName, result.AuditID, result.EngineUsed)
	}
	if notifyErr != nil {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "audit notification failed", "notification_failed",
			logging.Error(notifyErr),
			logging.String(logging.FieldImpact, "audit outcome not pushed"),
		)
	}
}

func (p *Pipeline) fail(logger *slog.Logger, stage Stage, err error) error {
	logger.Error("audit failed",
		logging.String(logging.FieldStage, string(stage)),
		logging.Error(err),
		logging.String(logging.FieldEventType, "audit_failed"),
		logging.String(logging.FieldErrorHint, services.UserMessage(err)),
	)
	return err
}
