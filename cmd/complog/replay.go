package main

import (
	"github.com/aretw0/complog/internal/cli"
	"github.com/aretw0/complog/pkg/registry"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <script.yaml>",
	Short: "Run a YAML script of logger operations",
	Long: `Replays a recorded sequence of operations against an in-process registry and
prints the output of its poll, dump and end steps. Useful to check routing rules
and document layout without a server.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		script, err := cli.LoadScript(args[0])
		if err != nil {
			return err
		}
		reg := registry.New(registry.WithLogger(logger))
		return cli.Replay(reg, script, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
}
