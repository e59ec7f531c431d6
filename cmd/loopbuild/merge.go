package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/loopbuild/internal/cli"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <output.cif> <input.cif>...",
	Short: "Merge structure files into one multi-model file",
	Long: `Merge copies the first input verbatim and appends the atom rows of the others,
renumbering their models so every input keeps distinct model numbers.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunMerge(args[0], args[1:], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
