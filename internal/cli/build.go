package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/loopbuild"
	"github.com/aretw0/loopbuild/internal/config"
	"github.com/aretw0/loopbuild/internal/metrics"
	"github.com/aretw0/loopbuild/internal/presentation/tui"
	"github.com/aretw0/loopbuild/pkg/domain"
)

// BuildOptions holds the flags of the build command. Pointer fields override the
// configuration only when set.
type BuildOptions struct {
	ConfigPath string
	N          *int
	MaxTries   *int
	Output     string
	WorkDir    string
	Debug      bool
	Quiet      bool
	Verbose    bool
	Stdout     io.Writer
}

// loadConfig loads the run file and applies flag overrides.
func loadConfig(opts BuildOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.N != nil {
		cfg.N = *opts.N
	}
	if opts.MaxTries != nil {
		cfg.MaxTries = opts.MaxTries
	}
	if opts.Output != "" {
		cfg.OutputDirectory = opts.Output
	}
	if opts.WorkDir != "" {
		cfg.WorkingDirectory = opts.WorkDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// RunBuild loads the configuration, builds the models and prints a summary.
func RunBuild(ctx context.Context, opts BuildOptions) (*loopbuild.Result, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger := createLogger(cfg.LogLevel(), opts.Debug, opts.Quiet, cfg.Logging.JSON)

	var hookSets []domain.LifecycleHooks
	if !opts.Quiet {
		hookSets = append(hookSets, tui.NewProgress(opts.Stdout, opts.Verbose).Hooks())
	}
	if opts.Debug {
		hookSets = append(hookSets, createDebugHooks(logger))
	}

	var collectors *metrics.Collectors
	reg := prometheus.NewRegistry()
	if cfg.Metrics.Addr != "" {
		collectors, err = metrics.New(reg)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		hookSets = append(hookSets, collectors.Hooks())
	}

	builder, closer, err := createBuilder(cfg, logger, domain.ComposeHooks(hookSets...))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := closer.Close(); err != nil {
			logger.Warn("Failed to close report store", "err", err)
		}
	}()

	var buildOpts []loopbuild.BuildOption
	if cfg.MaxTries != nil {
		buildOpts = append(buildOpts, loopbuild.WithMaxTries(*cfg.MaxTries))
	}

	// The metrics endpoint lives as long as the build.
	g, gctx := errgroup.WithContext(ctx)
	buildCtx, buildDone := context.WithCancel(gctx)
	defer buildDone()
	if collectors != nil {
		g.Go(func() error {
			return metrics.Serve(buildCtx, cfg.Metrics.Addr, reg, logger)
		})
	}

	var res *loopbuild.Result
	g.Go(func() error {
		defer buildDone()
		var err error
		res, err = builder.Build(buildCtx, cfg.N, buildOpts...)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) && !opts.Quiet {
			printSystemMessage(opts.Stdout, "Build interrupted.")
		}
		return nil, err
	}

	if !opts.Quiet && res.Report != nil {
		if err := printReport(opts.Stdout, res.Report, tui.RendererFor(stdoutFile(opts.Stdout))); err != nil {
			return res, err
		}
	}
	return res, nil
}

func printReport(w io.Writer, report *domain.BuildReport, render tui.Renderer) error {
	out, err := render(tui.SummaryMarkdown(report))
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// stdoutFile returns w as a file when it is one, for terminal detection.
func stdoutFile(w io.Writer) *os.File {
	f, _ := w.(*os.File)
	return f
}
