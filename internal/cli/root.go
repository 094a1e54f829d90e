// Package cli is the command-line shell and the composition root: it loads
// configuration, builds the logger, opens the store, and hands the command
// dispatcher to whichever subcommand runs.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/sakif/snippet-manager/internal/command"
	"github.com/sakif/snippet-manager/internal/config"
	sqliteRepo "github.com/sakif/snippet-manager/internal/repository/sqlite"
	"github.com/sakif/snippet-manager/internal/service"
)

// RootOptions holds global flags for all commands, and the state
// PersistentPreRunE derives from them.
type RootOptions struct {
	ConfigFile string
	DBPath     string
	Verbose    bool
	Format     string // "json" | "text"

	cfg    config.Config
	logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the snippets CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snippets",
		Short: "Personal code snippet manager",
		Long: `Store, tag, search and favorite code snippets in a local SQLite file.

Run "snippets serve" to start the loopback API the desktop UI talks to, or
use the other subcommands directly from a terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return WrapExitError(ExitUsage, "", err)
	})

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "SQLite database path (overrides config)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewFavoriteCommand(opts))
	cmd.AddCommand(NewTagsCommand(opts))
	cmd.AddCommand(NewLanguagesCommand(opts))

	return cmd
}

// setup validates global flags, loads config and builds the logger.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	if !slices.Contains(ValidFormats, o.Format) {
		return usageError("invalid format %q: must be one of %v", o.Format, ValidFormats)
	}

	cfg, err := config.Load(o.ConfigFile)
	if err != nil {
		return WrapExitError(ExitUsage, "loading config", err)
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath = o.DBPath
	}
	if cfg.DBPath == "" {
		return usageError("db_path must not be empty")
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.cfg = cfg
	o.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr()}
}

// app is everything a command needs once the store is open.
type app struct {
	db       *sqliteRepo.DB
	svc      *service.SnippetService
	commands *command.Dispatcher
	logger   *slog.Logger
	cfg      config.Config
}

func (a *app) Close() error {
	return a.db.Close()
}

// open opens the store and builds the service and dispatcher on top of it.
// The caller closes the returned app.
func (o *RootOptions) open() (*app, error) {
	db, err := sqliteRepo.New(o.cfg.DBPath)
	if err != nil {
		return nil, failure(err)
	}
	o.logger.Debug("store opened", slog.String("path", o.cfg.DBPath))

	svc := service.NewSnippetService(db, o.logger)
	return &app{
		db:       db,
		svc:      svc,
		commands: command.NewDispatcher(svc, o.logger),
		logger:   o.logger,
		cfg:      o.cfg,
	}, nil
}

// withApp opens the store, runs fn, and closes the store.
func (o *RootOptions) withApp(fn func(a *app) error) error {
	a, err := o.open()
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// Execute runs the CLI with args and returns the process exit code. Errors
// are reported on out (json) or errOut (text) before returning.
func Execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	opts := &RootOptions{}
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	f := &OutputFormatter{Format: opts.Format, Writer: out, ErrWriter: errOut}
	if !slices.Contains(ValidFormats, f.Format) {
		f.Format = "text"
	}
	if ferr := f.Error(err.Error()); ferr != nil {
		fmt.Fprintln(errOut, err)
	}
	return GetExitCode(err)
}
