package main

import (
	"github.com/aretw0/complog/internal/cli"
	"github.com/aretw0/complog/pkg/archive"
	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Inspect documents of ended sessions",
	Long:  `Reads the archive backend configured under "archive" (file or redis; memory archives vanish with the server).`,
}

var archiveListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List archived session IDs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withArchive(cmd, func(mgr *archive.Manager) error {
			return cli.ListArchive(cmd.Context(), mgr, cmd.OutOrStdout())
		})
	},
}

var archiveInspectCmd = &cobra.Command{
	Use:   "inspect <id>",
	Short: "Show an archived session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		return withArchive(cmd, func(mgr *archive.Manager) error {
			return cli.InspectArchive(cmd.Context(), mgr, args[0], format, cmd.OutOrStdout())
		})
	},
}

var archiveRemoveCmd = &cobra.Command{
	Use:   "rm <id>...",
	Short: "Delete archived sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withArchive(cmd, func(mgr *archive.Manager) error {
			return cli.RemoveArchive(cmd.Context(), mgr, args, cmd.OutOrStdout())
		})
	},
}

func withArchive(cmd *cobra.Command, fn func(*archive.Manager) error) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	mgr, closeFn, err := cli.OpenArchive(cmd.Context(), cfg.Archive, logger)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(mgr)
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archiveListCmd, archiveInspectCmd, archiveRemoveCmd)
	archiveInspectCmd.Flags().StringP("format", "f", cli.FormatTree, "Output format (tree, json, mermaid)")
}
