package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sakif/snippet-manager/internal/auth"
	"github.com/sakif/snippet-manager/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the loopback API for the desktop UI",
		Long: `Run the loopback HTTP API the desktop UI talks to.

With auth enabled, a fresh session token is written to token_file on start
and removed on exit. Send it as "Authorization: Bearer <token>".

Stops on SIGINT or SIGTERM after draining in-flight requests.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides config)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	if cmd.Flags().Changed("addr") {
		opts.cfg.Addr = opts.Addr
	}

	return opts.withApp(func(a *app) error {
		tokens, err := startSession(a)
		if err != nil {
			return failure(err)
		}
		if tokens != nil {
			defer func() {
				if err := auth.RemoveTokenFile(a.cfg.TokenFile); err != nil {
					a.logger.Warn("removing token file failed", slog.String("error", err.Error()))
				}
			}()
		}

		srv, err := server.New(server.Config{
			Addr:     a.cfg.Addr,
			Invoker:  a.commands,
			Snippets: a.svc,
			Tokens:   tokens,
		}, a.logger)
		if err != nil {
			return failure(err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return failure(err)
		}
		return nil
	})
}

// startSession issues the session token and writes it for the UI shell.
// It returns nil when auth is disabled.
func startSession(a *app) (*auth.TokenService, error) {
	if !a.cfg.AuthEnabled {
		a.logger.Warn("auth disabled: /invoke and /api accept any local request")
		return nil, nil
	}

	secret, err := auth.NewRandomSecret()
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokenService(secret)
	if err != nil {
		return nil, err
	}
	token, err := tokens.Generate(auth.ShellSubject, a.cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	if err := auth.WriteTokenFile(a.cfg.TokenFile, token); err != nil {
		return nil, err
	}

	a.logger.Info("session token written",
		slog.String("token_file", a.cfg.TokenFile),
		slog.Duration("ttl", a.cfg.TokenTTL),
	)
	return tokens, nil
}
