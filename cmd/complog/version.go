package main

import (
	"fmt"

	"github.com/aretw0/complog"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of complog",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "complog %s\n", complog.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
