// Package cli implements the dashctl command tree.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/goliatone/go-resource-client/config"
	"github.com/goliatone/go-resource-client/internal/logging"
	"github.com/goliatone/go-resource-client/pkg/di"
	"github.com/spf13/cobra"
)

// All linker flags are set at build time.
var (
	version = "dev"
	commit  = "none"
)

// App carries the state shared by every command: where output goes, how
// configuration is found, and the container built before each command runs.
type App struct {
	Out io.Writer
	Err io.Writer

	// ConfigOptions seeds config.Load; --config and --env-file override it.
	ConfigOptions config.Options
	// ContainerOptions are passed to di.NewContainer.
	ContainerOptions []di.Option

	container *di.Container
}

// NewApp returns an App writing to stdout and stderr.
func NewApp() *App {
	return &App{Out: os.Stdout, Err: os.Stderr, ConfigOptions: config.Options{EnvFile: ".env"}}
}

// Execute runs the command tree with args and tears the container down.
func Execute(ctx context.Context, app *App, args []string) error {
	root := NewRootCommand(app)
	root.SetArgs(args)
	defer app.close()
	return root.ExecuteContext(ctx)
}

// NewRootCommand builds dashctl and its subcommands.
func NewRootCommand(app *App) *cobra.Command {
	var (
		configFile string
		envFile    string
		logLevel   string
	)

	root := &cobra.Command{
		Use:           "dashctl",
		Short:         "Manage blog posts, administrators, team members and legal pages.",
		Version:       version + " (" + commit + ")",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			opts := app.ConfigOptions
			if configFile != "" {
				opts.File = configFile
			}
			if cmd.Flags().Changed("env-file") {
				opts.EnvFile = envFile
			}

			cfg, err := config.Load(opts)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}

			logger := logging.New(cfg.Log.Level, cfg.Log.Format, app.Err)
			container, err := di.NewContainer(cmd.Context(), cfg, logger, app.ContainerOptions...)
			if err != nil {
				return err
			}
			app.container = container
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}
	root.SetOut(app.Out)
	root.SetErr(app.Err)

	root.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default .dashctl.yaml in . or $HOME)")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a .env file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")

	root.AddCommand(
		newBlogsCommand(app),
		newAdminsCommand(app),
		newTeamCommand(app),
		newAppointmentsCommand(app),
		newLegalCommand(app),
		newAuthCommand(app),
		newProfileCommand(app),
	)
	return root
}

func (a *App) close() {
	if a.container == nil {
		return
	}
	if err := a.container.Close(); err != nil {
		logger := a.container.Logger()
		logger.Warn().Err(err).Msg("failed to close container")
	}
	a.container = nil
}
