package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/loopbuild/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the run configuration",
	Long:  `Loads the run file and instantiates its tools and evaluators without running a build.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		if err := cli.ValidateConfig(configPath, cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
