package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/loopbuild/internal/cli"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Inspect stored build reports",
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored run ids",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		return cli.ListReports(cmd.Context(), configPath, cmd.OutOrStdout())
	},
}

var reportShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one build report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		asJSON, _ := cmd.Flags().GetBool("json")
		return cli.ShowReport(cmd.Context(), configPath, args[0], asJSON, cmd.OutOrStdout())
	},
}

var reportDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete one build report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		return cli.DeleteReport(cmd.Context(), configPath, args[0])
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportListCmd, reportShowCmd, reportDeleteCmd)

	reportShowCmd.Flags().Bool("json", false, "Print the report as JSON")
}
