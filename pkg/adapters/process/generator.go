package process

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/loopbuild/pkg/domain"
	"github.com/aretw0/loopbuild/pkg/structure"
)

// Generator implements ports.ModelGenerator by running an external tool that writes
// a full candidate structure to the path given in its "output" argument.
type Generator struct {
	runner *Runner
	tool   string
	keep   bool
	logger *slog.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithKeepOutput keeps the tool's raw output files.
func WithKeepOutput(keep bool) GeneratorOption {
	return func(g *Generator) {
		g.keep = keep
	}
}

// WithGeneratorLogger sets the logger used for cleanup failures.
func WithGeneratorLogger(logger *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGenerator creates a generator backed by the registered tool.
func NewGenerator(runner *Runner, tool string, opts ...GeneratorOption) *Generator {
	g := &Generator{
		runner: runner,
		tool:   tool,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CandidatePath returns where the tool is asked to write its output.
func CandidatePath(seg *domain.Segment, trialID, workDir string) string {
	parent := filepath.Base(seg.ParentStructureFile)
	stem := strings.TrimSuffix(parent, filepath.Ext(parent))
	return filepath.Join(workDir, fmt.Sprintf("%s_%s_%s_candidate%s", stem, seg.Identifier, trialID, domain.StructureExt))
}

func (g *Generator) Generate(ctx context.Context, seg *domain.Segment, trialID, workDir string) (*structure.Document, error) {
	output := CandidatePath(seg, trialID, workDir)

	res, err := g.runner.Execute(ctx, ToolCall{
		ID:   trialID,
		Name: g.tool,
		Args: map[string]any{
			"structure": seg.ParentStructureFile,
			"segment":   seg.Identifier,
			"chain":     seg.ChainName,
			"start":     seg.ResidueStartSeqID,
			"residues":  strings.Join(seg.ResidueNames, ","),
			"trial":     trialID,
			"workdir":   workDir,
			"output":    output,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generator %s: %w: %w", g.tool, domain.ErrCollaborator, err)
	}
	if res.IsError {
		return nil, fmt.Errorf("generator %s: %s: %w", g.tool, res.Error, domain.ErrCollaborator)
	}

	doc, err := structure.ReadFile(output)
	if err != nil {
		return nil, fmt.Errorf("generator %s output: %w: %w", g.tool, domain.ErrCollaborator, err)
	}
	if !g.keep {
		if err := os.Remove(output); err != nil {
			g.logger.Warn("Failed to remove generator output", "path", output, "err", err)
		}
	}
	return doc, nil
}
