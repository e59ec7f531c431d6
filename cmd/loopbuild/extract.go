package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/loopbuild/internal/cli"
)

var extractCmd = &cobra.Command{
	Use:   "extract <input.cif> <output.cif>",
	Short: "Trim a structure to one chain residue range",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.ExtractOptions{Input: args[0], Output: args[1]}
		opts.Chain, _ = cmd.Flags().GetString("chain")
		opts.First, _ = cmd.Flags().GetInt("first")
		opts.Last, _ = cmd.Flags().GetInt("last")
		opts.Strict, _ = cmd.Flags().GetBool("strict")
		return cli.RunExtract(opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().String("chain", "", "Chain id")
	extractCmd.Flags().Int("first", 0, "First residue sequence id")
	extractCmd.Flags().Int("last", 0, "Last residue sequence id")
	extractCmd.Flags().Bool("strict", false, "Reject rows of other chains or residues inside the span")
	_ = extractCmd.MarkFlagRequired("chain")
	_ = extractCmd.MarkFlagRequired("first")
	_ = extractCmd.MarkFlagRequired("last")
}
