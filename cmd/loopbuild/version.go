package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/loopbuild"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of loopbuild",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "loopbuild version %s\n", strings.TrimSpace(loopbuild.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
