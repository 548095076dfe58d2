package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"vouch/internal/config"
	"vouch/internal/logging"
	"vouch/internal/modelselect"
	"vouch/internal/remoteasset"
	"vouch/internal/services"
	"vouch/internal/services/gemini"
)

const (
	defaultBackoffBase = 2 * time.Second
	defaultBackoffMax  = 5 * time.Second
)

// Generator runs one generation call against a model.
type Generator interface {
	GenerateContent(ctx context.Context, model string, parts ...gemini.Part) (string, error)
}

// CandidateSource supplies the ordered backends for one run.
type CandidateSource interface {
	Resolve(ctx context.Context) []modelselect.Candidate
}

// Attempt records the outcome of one failed candidate.
type Attempt struct {
	Candidate string
	Kind      gemini.ErrorKind
	Err       error
	Backoff   time.Duration
}

// Response is the raw model output and the backend that produced it.
type Response struct {
	Text     string
	Engine   string
	Attempts []Attempt
}

// ExhaustedError reports that every candidate failed. It matches
// services.ErrBackendsExhausted and unwraps to the last failure.
type ExhaustedError struct {
	Attempts []Attempt
	Last     error
}

func (e *ExhaustedError) Error() string {
	names := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		names[i] = a.Candidate
	}
	msg := fmt.Sprintf("%s after %d attempt(s) [%s]", services.ErrBackendsExhausted, len(e.Attempts), strings.Join(names, ", "))
	if e.Last != nil {
		msg += ": last error: " + e.Last.Error()
	}
	return msg
}

func (e *ExhaustedError) Unwrap() []error {
	if e.Last == nil {
		return []error{services.ErrBackendsExhausted}
	}
	return []error{services.ErrBackendsExhausted, e.Last}
}

// InvokerOptions configures backoff between transient failures.
type InvokerOptions struct {
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

// Invoker walks the candidate list until one backend produces a report.
type Invoker struct {
	gen         Generator
	candidates  CandidateSource
	backoffBase time.Duration
	backoffMax  time.Duration
	logger      *slog.Logger
	sleep       func(context.Context, time.Duration) error
}

// NewInvoker constructs an Invoker.
func NewInvoker(gen Generator, candidates CandidateSource, opts InvokerOptions, logger *slog.Logger) *Invoker {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = defaultBackoffBase
	}
	if opts.BackoffMax <= 0 {
		opts.BackoffMax = defaultBackoffMax
	}
	if opts.BackoffMax < opts.BackoffBase {
		opts.BackoffMax = opts.BackoffBase
	}
	return &Invoker{
		gen:         gen,
		candidates:  candidates,
		backoffBase: opts.BackoffBase,
		backoffMax:  opts.BackoffMax,
		logger:      logging.NewComponentLogger(logger, "invoker"),
		sleep:       sleepContext,
	}
}

// NewInvokerFromConfig builds an Invoker with the configured backoff.
func NewInvokerFromConfig(gen Generator, candidates CandidateSource, cfg *config.Config, logger *slog.Logger) *Invoker {
	base, maxBackoff := cfg.Backoff()
	return NewInvoker(gen, candidates, InvokerOptions{BackoffBase: base, BackoffMax: maxBackoff}, logger)
}

// Run tries each candidate at most once, in order. A transient failure waits
// a bounded backoff before the next candidate; any other failure advances
// immediately. Context cancellation stops the run.
func (inv *Invoker) Run(ctx context.Context, handle *remoteasset.Handle, checklist, instructions string) (*Response, error) {
	if handle == nil || handle.URI == "" {
		return nil, services.Wrap(services.ErrValidation, "reasoning", "invoke", "remote asset has no uri", nil)
	}
	logger := logging.WithContext(ctx, inv.logger)
	candidates := inv.candidates.Resolve(ctx)
	parts := []gemini.Part{
		gemini.FilePart(handle.URI, handle.MimeType),
		gemini.TextPart(instructions),
		gemini.TextPart(checklist),
	}

	attempts := make([]Attempt, 0, len(candidates))
	var lastErr error
	for i, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		started := time.Now()
		text, err := inv.gen.GenerateContent(ctx, candidate.Identifier, parts...)
		if err == nil {
			logger.Info("model produced report",
				logging.String(logging.FieldModel, candidate.Identifier),
				logging.Int("attempt", i+1),
				logging.Duration("duration", time.Since(started)),
				logging.String(logging.FieldEventType, "backend_succeeded"),
			)
			return &Response{Text: text, Engine: candidate.Identifier, Attempts: attempts}, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		attempt := Attempt{Candidate: candidate.Identifier, Kind: gemini.Classify(err), Err: err}
		lastErr = err
		last := i == len(candidates)-1
		if errors.Is(err, services.ErrTransientBackend) {
			attempt.Kind = gemini.KindTransient
			if !last {
				attempt.Backoff = inv.backoffFor(i+1, err)
			}
		}
		attempts = append(attempts, attempt)

		logging.WarnWithContext(logger, "model attempt failed", "backend_fallback",
			logging.String(logging.FieldModel, candidate.Identifier),
			logging.Int("attempt", i+1),
			logging.String("kind", attempt.Kind.String()),
			logging.Duration("backoff", attempt.Backoff),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "next candidate will be tried"),
			logging.String(logging.FieldImpact, "audit continues on another backend"),
		)
		if attempt.Backoff > 0 {
			if err := inv.sleep(ctx, attempt.Backoff); err != nil {
				return nil, err
			}
		}
	}
	return nil, &ExhaustedError{Attempts: attempts, Last: lastErr}
}

// backoffFor grows linearly with the attempt number and never exceeds the
// configured maximum. A server-provided Retry-After may lengthen it up to the
// same maximum.
func (inv *Invoker) backoffFor(attempt int, err error) time.Duration {
	delay := inv.backoffBase * time.Duration(attempt)
	var apiErr *gemini.APIError
	if errors.As(err, &apiErr) && apiErr.RetryAfter > delay {
		delay = apiErr.RetryAfter
	}
	return min(delay, inv.backoffMax)
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
