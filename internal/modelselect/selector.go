// Package modelselect resolves the ordered list of model backends to try for
// an audit.
package modelselect

import (
	"context"
	"log/slog"
	"strings"

	"vouch/internal/config"
	"vouch/internal/logging"
	"vouch/internal/services/gemini"
)

// GenerateMethod is the capability a discovered model must advertise.
const GenerateMethod = "generateContent"

// Candidate is one model backend, ordered by Priority (0 first).
type Candidate struct {
	Identifier string
	Priority   int
}

// Lister lists the models available to the API key.
type Lister interface {
	ListModels(ctx context.Context) ([]gemini.Model, error)
}

// Options configures a Selector.
type Options struct {
	Mode       string
	Candidates []string
	Priority   []string
	Default    string
}

// Selector produces candidate lists. It keeps no state between calls.
type Selector struct {
	lister Lister
	opts   Options
	logger *slog.Logger
}

// New constructs a Selector. lister may be nil in static mode.
func New(lister Lister, opts Options, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = logging.NewNop()
	}
	opts.Default = strings.TrimPrefix(strings.TrimSpace(opts.Default), "models/")
	if opts.Default == "" {
		opts.Default = config.DefaultModel
	}
	return &Selector{
		lister: lister,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "modelselect"),
	}
}

// NewFromConfig builds a Selector from the [models] section.
func NewFromConfig(lister Lister, cfg *config.Config, logger *slog.Logger) *Selector {
	return New(lister, Options{
		Mode:       cfg.Models.Mode,
		Candidates: cfg.Models.Candidates,
		Priority:   cfg.Models.Priority,
		Default:    cfg.Models.Default,
	}, logger)
}

// Resolve returns the candidates to attempt, in order. It never returns an
// empty slice: any discovery failure degrades to the default model.
func (s *Selector) Resolve(ctx context.Context) []Candidate {
	var ids []string
	if s.opts.Mode == config.ModelModeDiscover {
		ids = s.discover(ctx)
	} else {
		ids = dedupe(s.opts.Candidates)
	}
	if len(ids) == 0 {
		ids = []string{s.opts.Default}
	}
	candidates := make([]Candidate, len(ids))
	for i, id := range ids {
		candidates[i] = Candidate{Identifier: id, Priority: i}
	}
	s.logger.Debug("resolved model candidates",
		logging.String("mode", s.mode()),
		logging.Int("count", len(candidates)),
		logging.String(logging.FieldModel, candidates[0].Identifier),
	)
	return candidates
}

func (s *Selector) mode() string {
	if s.opts.Mode == config.ModelModeDiscover {
		return config.ModelModeDiscover
	}
	return config.ModelModeStatic
}

func (s *Selector) discover(ctx context.Context) []string {
	if s.lister == nil {
		return nil
	}
	models, err := s.lister.ListModels(ctx)
	if err != nil {
		logging.WarnWithContext(s.logger, "model discovery failed; using default model", "model_discovery_failed",
			logging.Error(err),
			logging.String(logging.FieldModel, s.opts.Default),
			logging.String(logging.FieldErrorHint, "check gemini.api_key or switch models.mode to static"),
		)
		return nil
	}
	var available []string
	for _, model := range models {
		if model.Supports(GenerateMethod) {
			available = append(available, model.ID())
		}
	}
	ordered := Order(dedupe(available), s.opts.Priority)
	if len(ordered) == 0 {
		logging.WarnWithContext(s.logger, "no discovered model supports generation; using default model", "model_discovery_empty",
			logging.String(logging.FieldModel, s.opts.Default),
		)
	}
	return ordered
}

// Order sorts ids by their position in priority. Ids missing from the table
// follow in their original order.
func Order(ids, priority []string) []string {
	present := make(map[string]bool, len(ids))
	for _, id := range ids {
		present[id] = true
	}
	ordered := make([]string, 0, len(ids))
	placed := make(map[string]bool, len(ids))
	for _, id := range priority {
		if present[id] && !placed[id] {
			ordered = append(ordered, id)
			placed[id] = true
		}
	}
	for _, id := range ids {
		if !placed[id] {
			ordered = append(ordered, id)
			placed[id] = true
		}
	}
	return ordered
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimPrefix(strings.TrimSpace(id), "models/")
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
