package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "loopbuild",
	Short: "loopbuild builds models for missing segments of a structure",
	Long: `loopbuild runs a generate, score and filter loop for every missing segment of
an mmCIF structure and merges the accepted models into one file per segment.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "loopbuild.yaml", "Run configuration file")
}
