package process

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/loopbuild/pkg/domain"
	"github.com/aretw0/loopbuild/pkg/evaluate"
)

// KindQualityTool is the evaluator kind of QualityScorer.
const KindQualityTool = "quality_tool"

// DefaultReportTemplate places the report next to the model file.
const DefaultReportTemplate = "{model}.quality.yaml"

// QualityScorer runs an external quality-assessment tool on a model and records the
// values of the report it writes. The report is a YAML (or JSON) mapping.
type QualityScorer struct {
	evaluate.Base
	runner         *Runner
	tool           string
	reportTemplate string
	prefix         string
}

type qualityOptions struct {
	Tool       string `mapstructure:"tool"`
	ReportFile string `mapstructure:"report_file"`
	Prefix     string `mapstructure:"prefix"`
}

// NewQualityScorer creates a quality_tool scorer. Options: tool (required),
// report_file (placeholders {model}, {dir} and {stem}) and prefix.
func NewQualityScorer(runner *Runner, identifier string, overrides evaluate.Config) (*QualityScorer, error) {
	base := evaluate.NewBase(KindQualityTool, evaluate.Config{"report_file": DefaultReportTemplate}, overrides, identifier)

	var opts qualityOptions
	if err := base.Config().Decode(&opts); err != nil {
		return nil, err
	}
	if opts.Tool == "" {
		return nil, fmt.Errorf("%s: tool is required: %w", base.Identifier(), domain.ErrInvalidRequest)
	}
	if runner == nil || !runner.Has(opts.Tool) {
		return nil, fmt.Errorf("%s: tool %q is not registered: %w", base.Identifier(), opts.Tool, domain.ErrInvalidRequest)
	}
	return &QualityScorer{
		Base:           base,
		runner:         runner,
		tool:           opts.Tool,
		reportTemplate: opts.ReportFile,
		prefix:         opts.Prefix,
	}, nil
}

// RegisterQualityTool makes the quality_tool kind available in reg.
func RegisterQualityTool(reg *evaluate.Registry, runner *Runner) {
	reg.RegisterScorer(KindQualityTool, func(id string, c evaluate.Config) (evaluate.Scorer, error) {
		return NewQualityScorer(runner, id, c)
	})
}

// ReportPath expands the report template for a model file.
func (q *QualityScorer) ReportPath(model string) string {
	stem := strings.TrimSuffix(filepath.Base(model), filepath.Ext(model))
	return strings.NewReplacer(
		"{model}", model,
		"{dir}", filepath.Dir(model),
		"{stem}", stem,
	).Replace(q.reportTemplate)
}

func (q *QualityScorer) Score(ctx context.Context, model *domain.SegmentModel) error {
	report := q.ReportPath(model.StructureFile)

	res, err := q.runner.Execute(ctx, ToolCall{
		ID:   model.TrialID,
		Name: q.tool,
		Args: map[string]any{
			"model":   model.StructureFile,
			"segment": model.Identifier,
			"trial":   model.TrialID,
			"report":  report,
		},
	})
	if err != nil {
		return err
	}
	if res.IsError {
		return fmt.Errorf("%s exited with code %d: %s", q.tool, res.ExitCode, res.Error)
	}

	data, err := os.ReadFile(report)
	if err != nil {
		return fmt.Errorf("failed to read quality report: %w", err)
	}
	var values map[string]any
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("failed to parse quality report %s: %w", report, err)
	}
	for k, v := range values {
		model.Scores[q.prefix+k] = v
	}
	return nil
}
