package main

import (
	"fmt"

	"github.com/aretw0/complog/internal/cli"
	"github.com/aretw0/complog/pkg/archive"
	"github.com/spf13/cobra"
)

var execCmd = &cobra.Command{
	Use:   "exec [flags] -- <command> [args...]",
	Short: "Record a command run as a session",
	Long: `Runs a local command as a single Test. Every stdout line becomes a Log,
stderr lines are prefixed with "stderr:", and the exit code is the Test result.
The final document is printed and, with --archive, saved to the configured archive.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		session, _ := cmd.Flags().GetString("session")
		name, _ := cmd.Flags().GetString("name")
		format, _ := cmd.Flags().GetString("format")
		save, _ := cmd.Flags().GetBool("archive")

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		runner, err := cli.NewRunner(cfg.Exec, logger)
		if err != nil {
			return err
		}

		var mgr *archive.Manager
		if save {
			var closeFn func() error
			mgr, closeFn, err = cli.OpenArchive(sigCtx, cfg.Archive, logger)
			if err != nil {
				return err
			}
			defer closeFn()
		}

		res, err := cli.Exec(sigCtx, runner, mgr, cli.ExecOptions{
			Session: session,
			Name:    name,
			Command: args[0],
			Args:    args[1:],
			Format:  format,
		}, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if res.ExitCode != 0 {
			return fmt.Errorf("%s exited with code %d", args[0], res.ExitCode)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(execCmd)
	execCmd.Flags().StringP("session", "s", "", "Session ID (default: random UUID)")
	execCmd.Flags().StringP("name", "n", "", "Test name (default: command base name)")
	execCmd.Flags().StringP("format", "f", cli.FormatTree, "Output format (tree, json, mermaid)")
	execCmd.Flags().Bool("archive", false, "Save the final document to the configured archive")
}
