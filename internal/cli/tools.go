package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/loopbuild/pkg/structure"
)

// ExtractOptions holds the arguments of the extract command.
type ExtractOptions struct {
	Input  string
	Output string
	Chain  string
	First  int
	Last   int
	Strict bool
}

// RunExtract trims a structure file to one chain range.
func RunExtract(opts ExtractOptions, w io.Writer) error {
	doc, err := structure.ReadFile(opts.Input)
	if err != nil {
		return err
	}
	var extractOpts []structure.ExtractOption
	if opts.Strict {
		extractOpts = append(extractOpts, structure.WithStrictSpan())
	}
	trimmed, err := structure.Extract(doc, opts.Chain, opts.First, opts.Last, extractOpts...)
	if err != nil {
		return err
	}
	if err := structure.WriteFile(opts.Output, trimmed); err != nil {
		return err
	}
	printSystemMessage(w, "Wrote %d atoms of chain %s [%d, %d] to %s", trimmed.AtomCount(), opts.Chain, opts.First, opts.Last, opts.Output)
	return nil
}

// RunMerge consolidates inputs into output.
func RunMerge(output string, inputs []string, w io.Writer) error {
	for _, in := range inputs {
		if _, err := os.Stat(in); err != nil {
			return fmt.Errorf("input %s: %w", in, err)
		}
	}
	res, err := structure.ConsolidateFiles(inputs, output)
	if err != nil {
		return err
	}
	printSystemMessage(w, "Merged %d file(s), %d atoms, %d model(s) into %s", res.Sources, res.Atoms, res.LastModel, output)
	return nil
}

// ValidateConfig loads a run file and instantiates its tools and evaluators without
// building anything.
func ValidateConfig(configPath string, w io.Writer) error {
	cfg, err := loadConfig(BuildOptions{ConfigPath: configPath})
	if err != nil {
		return err
	}
	runner, err := createRunner(cfg)
	if err != nil {
		return err
	}
	reg := createRegistry(runner)
	scorers, err := reg.BuildScorers(cfg.Scorers)
	if err != nil {
		return err
	}
	filters, err := reg.BuildFilters(cfg.Filters)
	if err != nil {
		return err
	}
	segments, err := cfg.DecodeSegments()
	if err != nil {
		return err
	}

	printSystemMessage(w, "Structure: %s", cfg.Structure)
	printSystemMessage(w, "Tools: %s", strings.Join(runner.Tools(), ", "))
	for _, s := range scorers {
		printSystemMessage(w, "Scorer: %v", s)
	}
	for _, f := range filters {
		printSystemMessage(w, "Filter: %v", f)
	}
	if len(segments) > 0 {
		printSystemMessage(w, "Segments: %d given", len(segments))
	} else {
		printSystemMessage(w, "Segments: found by %s", cfg.Finder)
	}
	return nil
}
