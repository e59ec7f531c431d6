package cli

import (
	"fmt"
	"io"
	"log/slog"
	"maps"

	"github.com/aretw0/loopbuild"
	"github.com/aretw0/loopbuild/internal/config"
	"github.com/aretw0/loopbuild/pkg/adapters/file"
	"github.com/aretw0/loopbuild/pkg/adapters/process"
	"github.com/aretw0/loopbuild/pkg/adapters/redis"
	"github.com/aretw0/loopbuild/pkg/domain"
	"github.com/aretw0/loopbuild/pkg/evaluate"
	"github.com/aretw0/loopbuild/pkg/ports"
)

// nopCloser is returned when a component holds no resources.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// createRunner builds the tool allow-list: the tools file first, then inline
// tools, which win on name collision.
func createRunner(cfg *config.Config) (*process.Runner, error) {
	tools := map[string]process.ProcessConfig{}
	if cfg.ToolsFile != "" {
		loaded, err := process.LoadTools(cfg.ToolsFile)
		if err != nil {
			return nil, err
		}
		maps.Copy(tools, loaded)
	}
	maps.Copy(tools, process.ToolMap(cfg.Tools))

	runner := process.NewRunner(process.WithRegistry(tools), process.WithBaseDir(cfg.BaseDir))
	for _, name := range cfg.ToolNames() {
		if !runner.Has(name) {
			return nil, fmt.Errorf("tool %q is not defined: %w", name, domain.ErrInvalidRequest)
		}
	}
	return runner, nil
}

// createRegistry returns the built-in evaluators plus the process-backed ones.
func createRegistry(runner *process.Runner) *evaluate.Registry {
	reg := evaluate.DefaultRegistry()
	process.RegisterQualityTool(reg, runner)
	return reg
}

// createReportStore opens the configured report store. The locker is only set
// when report.lock is enabled.
func createReportStore(cfg config.ReportConfig) (ports.ReportStore, ports.DistributedLocker, io.Closer, error) {
	switch cfg.Driver {
	case config.DriverNone, "":
		return nil, nil, nopCloser{}, nil
	case config.DriverFile:
		return file.New(cfg.Path), nil, nopCloser{}, nil
	case config.DriverRedis:
		var opts []redis.Option
		if cfg.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Prefix))
		}
		if ttl := cfg.TTL(); ttl > 0 {
			opts = append(opts, redis.WithTTL(ttl))
		}
		store := redis.New(cfg.Addr, cfg.Password, cfg.DB, opts...)
		var locker ports.DistributedLocker
		if cfg.Lock {
			prefix := redis.DefaultLockPrefix
			if cfg.Prefix != "" {
				prefix = cfg.Prefix
			}
			locker = redis.NewLocker(store.Client(), prefix)
		}
		return store, locker, store, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown report driver %q: %w", cfg.Driver, domain.ErrInvalidRequest)
	}
}

// createBuilder wires the configuration into a Builder. The returned closer
// releases the report store.
func createBuilder(cfg *config.Config, logger *slog.Logger, hooks domain.LifecycleHooks) (*loopbuild.Builder, io.Closer, error) {
	runner, err := createRunner(cfg)
	if err != nil {
		return nil, nil, err
	}

	reg := createRegistry(runner)
	scorers, err := reg.BuildScorers(cfg.Scorers)
	if err != nil {
		return nil, nil, err
	}
	filters, err := reg.BuildFilters(cfg.Filters)
	if err != nil {
		return nil, nil, err
	}

	segments, err := cfg.DecodeSegments()
	if err != nil {
		return nil, nil, err
	}

	opts := []loopbuild.Option{
		loopbuild.WithGenerator(process.NewGenerator(runner, cfg.Generator,
			process.WithKeepOutput(cfg.KeepIntermediates),
			process.WithGeneratorLogger(logger))),
		loopbuild.WithScorers(scorers...),
		loopbuild.WithFilters(filters...),
		loopbuild.WithLifecycleHooks(hooks),
		loopbuild.WithLogger(logger),
		loopbuild.WithCandidatePolicy(cfg.CandidatePolicy()),
		loopbuild.WithStrictExtraction(cfg.StrictExtraction),
		loopbuild.WithCatalog(cfg.CatalogEnabled()),
		loopbuild.WithWorkingDirectory(cfg.WorkingDirectory),
	}
	if len(segments) > 0 {
		opts = append(opts, loopbuild.WithSegments(segments...))
	}
	if cfg.Finder != "" {
		opts = append(opts, loopbuild.WithFinder(process.NewFinder(runner, cfg.Finder)))
	}

	store, locker, closer, err := createReportStore(cfg.Report)
	if err != nil {
		return nil, nil, err
	}
	if store != nil {
		opts = append(opts, loopbuild.WithReportStore(store))
	}
	if locker != nil {
		opts = append(opts, loopbuild.WithLocker(locker, cfg.Report.LockTTL()))
	}

	builder, err := loopbuild.New(cfg.Structure, cfg.OutputDirectory, opts...)
	if err != nil {
		_ = closer.Close()
		return nil, nil, fmt.Errorf("error initializing builder: %w", err)
	}
	return builder, closer, nil
}
