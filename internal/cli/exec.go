package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/complog"
	"github.com/aretw0/complog/internal/config"
	"github.com/aretw0/complog/pkg/adapters/process"
	"github.com/aretw0/complog/pkg/archive"
	"github.com/aretw0/complog/pkg/registry"
	"github.com/google/uuid"
)

// NewRunner builds the process runner from cfg, loading the allow-list when configured.
func NewRunner(cfg config.ExecConfig, logger *slog.Logger) (*process.Runner, error) {
	opts := []process.RunnerOption{
		process.WithBaseDir(cfg.Dir),
		process.WithLogger(logger),
	}
	if cfg.Commands != "" {
		cmds, err := process.LoadCommands(cfg.Commands)
		if err != nil {
			return nil, err
		}
		logger.Debug("Loaded command allow-list", "path", cfg.Commands, "count", len(cmds))
		opts = append(opts, process.WithCommands(cmds))
	}
	return process.NewRunner(opts...), nil
}

// ExecOptions describes one recorded command run.
type ExecOptions struct {
	// Session defaults to a random UUID; Name defaults to the command's base name.
	Session string
	Name    string
	Command string
	Args    []string
	Format  string
}

// Exec records a command as a one-Test session, archives the final document
// when mgr is set and renders it to w.
func Exec(ctx context.Context, runner *process.Runner, mgr *archive.Manager, opts ExecOptions, w io.Writer) (process.Result, error) {
	if opts.Session == "" {
		opts.Session = uuid.NewString()
	}
	if opts.Name == "" {
		opts.Name = filepath.Base(opts.Command)
	}

	reg := registry.New()
	logger, err := complog.Open(reg, opts.Session)
	if err != nil {
		return process.Result{}, err
	}

	res, runErr := runner.Run(ctx, logger, opts.Name, opts.Command, opts.Args...)

	var doc []byte
	if mgr != nil {
		doc, err = mgr.Finalize(ctx, reg, opts.Session)
	} else {
		doc, err = logger.End()
	}
	if doc == nil {
		return res, err
	}
	if err != nil {
		fmt.Fprintf(w, "# archive failed: %v\n", err)
	}
	if err := Render(opts.Session, doc, opts.Format, w); err != nil {
		return res, err
	}
	return res, runErr
}
