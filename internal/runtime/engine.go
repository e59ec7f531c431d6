package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/aretw0/loopbuild/pkg/domain"
	"github.com/aretw0/loopbuild/pkg/evaluate"
	"github.com/aretw0/loopbuild/pkg/ports"
	"github.com/aretw0/loopbuild/pkg/structure"
)

// Engine runs the per-segment trial loop: generate, trim, score, filter, accept,
// and finally consolidate the accepted models of each segment.
type Engine struct {
	generator ports.ModelGenerator
	pipeline  *evaluate.Pipeline
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	policy    domain.CandidatePolicy
	strict    bool
}

// Option configures the Engine.
type Option func(*Engine)

// WithLifecycleHooks sets the callbacks invoked at each step of a build.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithCandidatePolicy decides whether a failed candidate aborts the build or only
// costs the current attempt.
func WithCandidatePolicy(p domain.CandidatePolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithStrictExtraction validates every row of the extracted span.
func WithStrictExtraction(strict bool) Option {
	return func(e *Engine) {
		e.strict = strict
	}
}

// NewEngine creates an engine. A nil pipeline accepts every candidate.
func NewEngine(generator ports.ModelGenerator, pipeline *evaluate.Pipeline, opts ...Option) *Engine {
	if pipeline == nil {
		pipeline = evaluate.NewPipeline(nil, nil)
	}
	e := &Engine{
		generator: generator,
		pipeline:  pipeline,
		logger:    slog.New(slog.DiscardHandler),
		policy:    domain.CandidateAbort,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Request describes one build.
type Request struct {
	Segments         []*domain.Segment
	N                int
	MaxTries         int
	WorkingDirectory string
	OutputDirectory  string
}

// Result holds the built segments and the outcome of each segment's loop.
type Result struct {
	Segments []*domain.Segment
	Reports  []domain.SegmentReport
}

// Build runs the trial loop for every segment in order. A request with n < 1 or
// max_tries < 1 is not an error: it emits a warning and returns an empty result.
// The segments' model lists are appended to in place.
func (e *Engine) Build(ctx context.Context, req Request) (*Result, error) {
	if req.N < 1 {
		e.warn(ctx, "Building 0 models", fmt.Errorf("n=%d: %w", req.N, domain.ErrInvalidRequest))
		return &Result{}, nil
	}
	if req.MaxTries < 1 {
		e.warn(ctx, "Using 0 trial models", fmt.Errorf("max_tries=%d: %w", req.MaxTries, domain.ErrInvalidRequest))
		return &Result{}, nil
	}
	if e.generator == nil {
		return nil, fmt.Errorf("no model generator configured: %w", domain.ErrInvalidRequest)
	}
	if !e.policy.Valid() {
		return nil, fmt.Errorf("unknown candidate policy %q: %w", e.policy, domain.ErrInvalidRequest)
	}
	if len(req.Segments) == 0 {
		e.warn(ctx, "No segments found", nil)
		return &Result{}, nil
	}
	for _, seg := range req.Segments {
		if err := seg.Validate(); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(req.OutputDirectory, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	buildEvent := &domain.BuildEvent{
		EventBase:        domain.NewEventBase(domain.EventBuildStart),
		N:                req.N,
		MaxTries:         req.MaxTries,
		Segments:         len(req.Segments),
		WorkingDirectory: req.WorkingDirectory,
		OutputDirectory:  req.OutputDirectory,
	}
	e.logger.Info("Building models",
		"n", req.N,
		"max_tries", req.MaxTries,
		"segments", len(req.Segments),
		"output", req.OutputDirectory,
		"workdir", req.WorkingDirectory)
	e.logEvaluators()
	e.emitBuildStart(ctx, buildEvent)

	result := &Result{Segments: req.Segments}
	for _, seg := range req.Segments {
		report, err := e.buildSegment(ctx, seg, req)
		if err != nil {
			return result, err
		}
		result.Reports = append(result.Reports, report)
	}

	finish := *buildEvent
	finish.EventBase = domain.NewEventBase(domain.EventBuildFinish)
	e.emitBuildFinish(ctx, &finish)
	return result, nil
}

func (e *Engine) logEvaluators() {
	for _, s := range e.pipeline.Scorers() {
		e.logger.Info("Using scorer", "scorer", fmt.Sprint(s))
	}
	for _, f := range e.pipeline.Filters() {
		e.logger.Info("Using filter", "filter", fmt.Sprint(f))
	}
}

func (e *Engine) buildSegment(ctx context.Context, seg *domain.Segment, req Request) (domain.SegmentReport, error) {
	report := domain.SegmentReport{
		Identifier: seg.Identifier,
		ChainName:  seg.ChainName,
		FirstSeqID: seg.ResidueStartSeqID,
		LastSeqID:  seg.ResidueEndSeqID(),
	}
	e.logger.Info("Building models for segment", "segment", seg.Identifier, "range", seg.String())
	e.emitSegmentStart(ctx, e.segmentEvent(domain.EventSegmentStart, seg, report, req))

	accepted := 0
	for {
		if accepted >= req.N {
			report.Status = domain.StatusQuota
			e.logger.Info("Reached the target number of models",
				"segment", seg.Identifier,
				"success_rate", report.SuccessRate())
			e.emitSegmentQuota(ctx, e.segmentEvent(domain.EventSegmentQuota, seg, report, req))
			break
		}
		if report.Attempts >= req.MaxTries {
			report.Status = domain.StatusExhausted
			e.logger.Warn("Reached the maximum number of tries",
				"segment", seg.Identifier,
				"accepted", accepted,
				"success_rate", report.SuccessRate())
			e.emitSegmentExhausted(ctx, e.segmentEvent(domain.EventSegmentExhausted, seg, report, req))
			e.emitWarning(ctx, &domain.WarningEvent{
				EventBase: domain.NewEventBase(domain.EventWarning),
				Message:   fmt.Sprintf("segment %s reached the maximum number of tries with %d/%d models", seg.Identifier, accepted, req.N),
			})
			break
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		report.Attempts++
		model, err := e.runTrial(ctx, seg, strconv.Itoa(report.Attempts), report.Attempts, accepted+1, req)
		if err != nil {
			var candErr *CandidateError
			if errors.As(err, &candErr) && e.policy == domain.CandidateSkip {
				report.Failed++
				continue
			}
			return report, err
		}
		if model == nil {
			continue
		}

		accepted++
		report.Accepted = accepted
		report.Models = append(report.Models, domain.ModelSummary{
			Index:   model.Index,
			TrialID: model.TrialID,
			Scores:  model.Scores.Clone(),
		})
	}

	if len(seg.Models) > 0 {
		file, err := e.consolidate(ctx, seg, req.OutputDirectory)
		if err != nil {
			return report, err
		}
		report.ConsolidatedFile = file
	}
	return report, nil
}

// runTrial runs one attempt. It returns the accepted model, or nil when the
// candidate was rejected by a filter.
func (e *Engine) runTrial(ctx context.Context, seg *domain.Segment, trialID string, attempt, index int, req Request) (*domain.SegmentModel, error) {
	start := time.Now()
	event := &domain.TrialEvent{
		EventBase: domain.NewEventBase(domain.EventTrialStart),
		SegmentID: seg.Identifier,
		TrialID:   trialID,
		Attempt:   attempt,
	}
	e.emitTrialStart(ctx, event)

	trialPath, err := e.candidate(ctx, seg, trialID, req.WorkingDirectory)
	if err != nil {
		var candErr *CandidateError
		if errors.As(err, &candErr) {
			e.logger.Warn("Failed to build trial model",
				"segment", seg.Identifier,
				"trial", trialID,
				"err", candErr.Err)
			failed := *event
			failed.EventBase = domain.NewEventBase(domain.EventTrialFailed)
			failed.Duration = time.Since(start)
			failed.Err = candErr.Err
			e.emitTrialFailed(ctx, &failed)
		}
		return nil, err
	}

	model := &domain.SegmentModel{
		Identifier:    seg.Identifier,
		TrialID:       trialID,
		StructureFile: trialPath,
		Scores:        domain.Scores{},
	}
	e.pipeline.Score(ctx, model)
	e.logger.Info("Scored trial model",
		"segment", seg.Identifier,
		"trial", trialID,
		"scores", model.Scores)

	scored := *event
	scored.EventBase = domain.NewEventBase(domain.EventTrialScored)
	scored.StructureFile = trialPath
	scored.Scores = model.Scores.Clone()
	e.emitTrialScored(ctx, &scored)

	verdict := e.pipeline.Filter(ctx, model)
	if !verdict.Accepted {
		e.logger.Info("Trial model failed filter",
			"segment", seg.Identifier,
			"trial", trialID,
			"filter", verdict.RejectedBy)
		if err := os.Remove(trialPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to delete rejected trial file: %w", err)
		}
		rejected := scored
		rejected.EventBase = domain.NewEventBase(domain.EventTrialRejected)
		rejected.StructureFile = ""
		rejected.RejectedBy = verdict.RejectedBy
		rejected.FiltersRun = verdict.Invoked
		rejected.Duration = time.Since(start)
		rejected.Err = verdict.Err
		e.emitTrialRejected(ctx, &rejected)
		return nil, nil
	}

	dest := AcceptedPath(req.OutputDirectory, seg, index)
	if err := moveFile(trialPath, dest); err != nil {
		return nil, err
	}
	model.StructureFile = dest
	model.Index = index
	seg.AddModel(model)
	e.logger.Info("Built model", "segment", seg.Identifier, "index", index, "trial", trialID)

	accepted := scored
	accepted.EventBase = domain.NewEventBase(domain.EventTrialAccepted)
	accepted.Index = index
	accepted.StructureFile = dest
	accepted.FiltersRun = verdict.Invoked
	accepted.Duration = time.Since(start)
	e.emitTrialAccepted(ctx, &accepted)
	return model, nil
}

// candidate asks the generator for a full structure, trims it to the segment range
// and writes it to the trial's working file.
func (e *Engine) candidate(ctx context.Context, seg *domain.Segment, trialID, workDir string) (string, error) {
	doc, err := e.generator.Generate(ctx, seg, trialID, workDir)
	if err != nil {
		return "", &CandidateError{SegmentID: seg.Identifier, TrialID: trialID, Err: err}
	}

	var opts []structure.ExtractOption
	if e.strict {
		opts = append(opts, structure.WithStrictSpan())
	}
	trimmed, err := structure.Extract(doc, seg.ChainName, seg.ResidueStartSeqID, seg.ResidueEndSeqID(), opts...)
	if err != nil {
		return "", &CandidateError{SegmentID: seg.Identifier, TrialID: trialID, Err: err}
	}

	path := TrialPath(workDir, seg, trialID)
	if err := structure.WriteFile(path, trimmed); err != nil {
		return "", fmt.Errorf("failed to write trial file: %w", err)
	}
	return path, nil
}

// consolidate merges the accepted files of a segment, repoints its models to the
// merged file and removes the per-model files.
func (e *Engine) consolidate(ctx context.Context, seg *domain.Segment, outputDir string) (string, error) {
	sources := make([]string, len(seg.Models))
	for i, m := range seg.Models {
		sources[i] = m.StructureFile
	}
	out := ConsolidatedPath(outputDir, seg)

	res, err := structure.ConsolidateFiles(sources, out)
	if err != nil {
		return "", fmt.Errorf("failed to consolidate segment %s: %w", seg.Identifier, err)
	}
	for _, m := range seg.Models {
		m.StructureFile = out
	}
	for _, src := range sources {
		if src == out {
			continue
		}
		if err := os.Remove(src); err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to delete model file: %w", err)
		}
	}

	e.logger.Info("Consolidated models", "segment", seg.Identifier, "file", out, "models", res.LastModel)
	e.emitConsolidate(ctx, &domain.ConsolidateEvent{
		EventBase: domain.NewEventBase(domain.EventConsolidate),
		SegmentID: seg.Identifier,
		File:      out,
		Sources:   sources,
	})
	return out, nil
}

func (e *Engine) segmentEvent(t domain.EventType, seg *domain.Segment, report domain.SegmentReport, req Request) *domain.SegmentEvent {
	return &domain.SegmentEvent{
		EventBase: domain.NewEventBase(t),
		SegmentID: seg.Identifier,
		ChainName: seg.ChainName,
		Attempts:  report.Attempts,
		Accepted:  report.Accepted,
		Target:    req.N,
		MaxTries:  req.MaxTries,
		Rate:      report.SuccessRate(),
	}
}

func (e *Engine) warn(ctx context.Context, msg string, err error) {
	if err != nil {
		e.logger.Warn(msg, "err", err)
	} else {
		e.logger.Warn(msg)
	}
	e.emitWarning(ctx, &domain.WarningEvent{
		EventBase: domain.NewEventBase(domain.EventWarning),
		Message:   msg,
		Err:       err,
	})
}
