package loopbuild

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/loopbuild/internal/runtime"
	"github.com/aretw0/loopbuild/pkg/catalog"
	"github.com/aretw0/loopbuild/pkg/domain"
	"github.com/aretw0/loopbuild/pkg/evaluate"
	"github.com/aretw0/loopbuild/pkg/ports"
)

// DefaultLockTTL bounds how long a build lock survives a crashed holder.
const DefaultLockTTL = time.Hour

// Builder builds models for the missing segments of one structure file.
type Builder struct {
	structureFile    string
	outputDirectory  string
	workingDirectory string

	segments  []*domain.Segment
	finder    ports.SegmentFinder
	generator ports.ModelGenerator
	scorers   []evaluate.Scorer
	filters   []evaluate.Filter

	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	policy  domain.CandidatePolicy
	strict  bool
	catalog bool

	store   ports.ReportStore
	locker  ports.DistributedLocker
	lockTTL time.Duration
	runID   string
}

// Option defines a functional option for configuring the Builder.
type Option func(*Builder)

// WithSegments sets the segments to build. The finder is not invoked when
// segments are given.
func WithSegments(segments ...*domain.Segment) Option {
	return func(b *Builder) {
		b.segments = append(b.segments, segments...)
	}
}

// WithFinder sets the collaborator that locates missing segments.
func WithFinder(f ports.SegmentFinder) Option {
	return func(b *Builder) {
		b.finder = f
	}
}

// WithGenerator sets the collaborator that produces candidate structures.
func WithGenerator(g ports.ModelGenerator) Option {
	return func(b *Builder) {
		b.generator = g
	}
}

// WithScorers appends scorers, run in order for every trial.
func WithScorers(scorers ...evaluate.Scorer) Option {
	return func(b *Builder) {
		b.scorers = append(b.scorers, scorers...)
	}
}

// WithFilters appends filters, run in order until one rejects.
func WithFilters(filters ...evaluate.Filter) Option {
	return func(b *Builder) {
		b.filters = append(b.filters, filters...)
	}
}

// WithWorkingDirectory sets the directory for trial files.
// By default a temporary directory is created and removed after the build.
func WithWorkingDirectory(dir string) Option {
	return func(b *Builder) {
		b.workingDirectory = dir
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Builder) {
		b.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithCandidatePolicy sets what a failed candidate does to the build.
func WithCandidatePolicy(p domain.CandidatePolicy) Option {
	return func(b *Builder) {
		b.policy = p
	}
}

// WithStrictExtraction makes range extraction validate every row of the span.
func WithStrictExtraction(strict bool) Option {
	return func(b *Builder) {
		b.strict = strict
	}
}

// WithCatalog toggles writing segments.csv and models.csv (default: on).
func WithCatalog(enabled bool) Option {
	return func(b *Builder) {
		b.catalog = enabled
	}
}

// WithReportStore saves a BuildReport after every build.
func WithReportStore(store ports.ReportStore) Option {
	return func(b *Builder) {
		b.store = store
	}
}

// WithLocker serializes builds writing the same outputs across processes.
// A ttl <= 0 uses DefaultLockTTL.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(b *Builder) {
		b.locker = locker
		b.lockTTL = ttl
	}
}

// WithRunID fixes the identifier of the next build report.
func WithRunID(id string) Option {
	return func(b *Builder) {
		b.runID = id
	}
}

// New initializes a Builder for structureFile writing into outputDirectory.
func New(structureFile, outputDirectory string, opts ...Option) (*Builder, error) {
	if structureFile == "" {
		return nil, fmt.Errorf("structure file is required: %w", domain.ErrInvalidRequest)
	}
	if outputDirectory == "" {
		return nil, fmt.Errorf("output directory is required: %w", domain.ErrInvalidRequest)
	}

	b := &Builder{
		structureFile:   structureFile,
		outputDirectory: outputDirectory,
		policy:          domain.CandidateAbort,
		catalog:         true,
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.generator == nil {
		return nil, fmt.Errorf("a model generator is required: %w", domain.ErrInvalidRequest)
	}
	if !b.policy.Valid() {
		return nil, fmt.Errorf("unknown candidate policy %q: %w", b.policy, domain.ErrInvalidRequest)
	}
	if b.logger == nil {
		b.logger = slog.New(slog.DiscardHandler)
	}
	b.logger = b.logger.With("structure", filepath.Base(structureFile))
	if b.lockTTL <= 0 {
		b.lockTTL = DefaultLockTTL
	}
	return b, nil
}

// Segments returns the segments of the builder, found or given.
func (b *Builder) Segments() []*domain.Segment {
	return b.segments
}

// BuildOption configures a single Build call.
type BuildOption func(*buildConfig)

type buildConfig struct {
	maxTries *int
}

// WithMaxTries caps the number of trials per segment (default: n * 10).
func WithMaxTries(maxTries int) BuildOption {
	return func(c *buildConfig) {
		c.maxTries = &maxTries
	}
}

// Result is the outcome of a Build.
type Result struct {
	Segments     []*domain.Segment
	Report       *domain.BuildReport
	CatalogFiles []string
}

// Build builds up to n accepted models for every segment.
//
// A non-positive n or max_tries is not an error: a warning is emitted and the
// result holds no segments. When no segments were given, the finder is invoked
// once. Catalogs and the report are written once the segment loop has run.
func (b *Builder) Build(ctx context.Context, n int, opts ...BuildOption) (*Result, error) {
	cfg := buildConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	maxTries := n * 10
	if cfg.maxTries != nil {
		maxTries = *cfg.maxTries
	}

	if b.locker != nil {
		unlock, err := b.locker.Lock(ctx, b.lockKey(), b.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire build lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				b.logger.Warn("Failed to release build lock", "err", err)
			}
		}()
	}

	workDir, cleanup, err := b.prepareWorkingDirectory()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	started := time.Now().UTC()
	engine := b.engine()

	if n >= 1 && maxTries >= 1 && len(b.segments) == 0 {
		if err := b.findSegments(ctx); err != nil {
			return nil, err
		}
	}

	res, err := engine.Build(ctx, runtime.Request{
		Segments:         b.segments,
		N:                n,
		MaxTries:         maxTries,
		WorkingDirectory: workDir,
		OutputDirectory:  b.outputDirectory,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{Segments: res.Segments}
	if len(res.Segments) == 0 {
		return result, nil
	}

	if b.catalog {
		files, err := catalog.WriteFiles(b.outputDirectory, res.Segments)
		if err != nil {
			return result, err
		}
		result.CatalogFiles = files
	}

	result.Report = &domain.BuildReport{
		RunID:           b.nextRunID(started),
		StructureFile:   b.structureFile,
		OutputDirectory: b.outputDirectory,
		N:               n,
		MaxTries:        maxTries,
		StartedAt:       started,
		FinishedAt:      time.Now().UTC(),
		Segments:        res.Reports,
	}
	if b.store != nil {
		if err := b.store.Save(ctx, result.Report.RunID, result.Report); err != nil {
			return result, fmt.Errorf("failed to save build report: %w", err)
		}
		b.logger.Info("Saved build report", "run_id", result.Report.RunID)
	}
	return result, nil
}

func (b *Builder) engine() *runtime.Engine {
	pipeline := evaluate.NewPipeline(b.scorers, b.filters, evaluate.WithLogger(b.logger))
	return runtime.NewEngine(b.generator, pipeline,
		runtime.WithLifecycleHooks(b.hooks),
		runtime.WithLogger(b.logger),
		runtime.WithCandidatePolicy(b.policy),
		runtime.WithStrictExtraction(b.strict),
	)
}

func (b *Builder) findSegments(ctx context.Context) error {
	if b.finder == nil {
		return fmt.Errorf("no segments given and no segment finder configured: %w", domain.ErrInvalidRequest)
	}
	b.logger.Info("Looking for segments")
	segments, err := b.finder.FindSegments(ctx, b.structureFile)
	if err != nil {
		return fmt.Errorf("failed to find segments: %w", err)
	}
	b.segments = segments
	b.logger.Info("Found segments", "count", len(segments))
	return nil
}

// prepareWorkingDirectory creates the working directory and opens its permissions so
// independent processes can share it.
func (b *Builder) prepareWorkingDirectory() (string, func(), error) {
	cleanup := func() {}
	dir := b.workingDirectory
	if dir == "" {
		tmp, err := os.MkdirTemp("", "loopbuild-")
		if err != nil {
			return "", cleanup, fmt.Errorf("failed to create working directory: %w", err)
		}
		dir = tmp
		cleanup = func() {
			if err := os.RemoveAll(tmp); err != nil {
				b.logger.Warn("Failed to remove working directory", "dir", tmp, "err", err)
			}
		}
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", cleanup, fmt.Errorf("failed to create working directory: %w", err)
	}
	if err := os.Chmod(dir, domain.WorkingDirectoryPerm); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("failed to open working directory permissions: %w", err)
	}
	return dir, cleanup, nil
}

func (b *Builder) stem() string {
	base := filepath.Base(b.structureFile)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (b *Builder) lockKey() string {
	out, err := filepath.Abs(b.outputDirectory)
	if err != nil {
		out = b.outputDirectory
	}
	return "build:" + filepath.ToSlash(filepath.Join(out, b.stem()))
}

// nextRunID returns the configured run id once, then generated ones.
func (b *Builder) nextRunID(started time.Time) string {
	if b.runID != "" {
		id := b.runID
		b.runID = ""
		return id
	}
	return NewRunID(b.stem(), started)
}

// NewRunID returns "<stem>-<UTC timestamp>-<8 hex chars>".
func NewRunID(stem string, at time.Time) string {
	return fmt.Sprintf("%s-%s-%s", stem, at.UTC().Format("20060102T150405Z"), uuid.NewString()[:8])
}
