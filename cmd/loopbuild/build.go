package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/loopbuild"
	"github.com/aretw0/loopbuild/internal/cli"
	"github.com/aretw0/loopbuild/internal/presentation/tui"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build models for every missing segment",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		opts := cli.BuildOptions{Stdout: cmd.OutOrStdout()}
		opts.ConfigPath, _ = flags.GetString("config")
		opts.Output, _ = flags.GetString("output")
		opts.WorkDir, _ = flags.GetString("workdir")
		opts.Debug, _ = flags.GetBool("debug")
		opts.Quiet, _ = flags.GetBool("quiet")
		opts.Verbose, _ = flags.GetBool("verbose")
		if flags.Changed("n") {
			n, _ := flags.GetInt("n")
			opts.N = &n
		}
		if flags.Changed("max-tries") {
			maxTries, _ := flags.GetInt("max-tries")
			opts.MaxTries = &maxTries
		}

		if !opts.Quiet && tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(cmd.OutOrStdout(), loopbuild.Version)
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		_, err := cli.RunBuild(ctx, opts)
		return err
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().Int("n", 1, "Number of accepted models per segment")
	buildCmd.Flags().Int("max-tries", 0, "Maximum trials per segment, below 1 builds nothing (default n * 10)")
	buildCmd.Flags().StringP("output", "o", "", "Output directory")
	buildCmd.Flags().String("workdir", "", "Working directory for trial files")
	buildCmd.Flags().Bool("debug", false, "Enable debug logging")
	buildCmd.Flags().BoolP("quiet", "q", false, "Print nothing but errors")
	buildCmd.Flags().BoolP("verbose", "v", false, "Also report rejected trials")
}
