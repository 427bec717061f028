package cli

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/roach88/kibitz/internal/config"
	"github.com/roach88/kibitz/internal/server"
	"github.com/roach88/kibitz/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr     string
	Database string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the replay-viewer API",
		Long: `Start the read-only HTTP API over an ingested store. Flags
override the layered configuration (KIBITZ_CONFIG file, KIBITZ_ env).

Exit codes:
  0 - Clean shutdown
  2 - Command error (bad config, database not found)

Examples:
  kibitz serve --db kibitz.db
  kibitz serve --db kibitz.db --addr :9000`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")

	return cmd
}

func runServe(opts *ServeOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	if opts.Addr != "" {
		cfg.Addr = opts.Addr
	}
	if opts.Database != "" {
		cfg.DBPath = opts.Database
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	server.NewHandler(st, cfg).RegisterRoutes(e)

	if err := e.Start(cfg.Addr); err != nil {
		return WrapExitError(ExitCommandError, "server stopped", err)
	}
	return nil
}
