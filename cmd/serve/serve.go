// Package serve implements the serve command.
package serve

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/hogwarts-heroes/cmd/cli"
	"github.com/tphakala/hogwarts-heroes/internal/api"
	"github.com/tphakala/hogwarts-heroes/internal/logger"
)

// Command creates the serve command.
func Command(env *cli.Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the character API over HTTP",
		Long:  "Start the JSON API server. It runs until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.Require()
			if err != nil {
				return err
			}
			if !a.Settings.WebServer.Enabled {
				return fmt.Errorf("web server is disabled in configuration (webserver.enabled)")
			}

			bank, err := a.QuizBank()
			if err != nil {
				return err
			}

			log := a.Logger("api")
			server, err := api.New(api.ConfigFromSettings(a.Settings), a.Repository,
				api.WithLogger(log),
				api.WithAccessLogger(a.Logging.Module(logger.AccessModule)),
				api.WithMetrics(a.Metrics),
				api.WithQuizBank(bank),
				api.WithBuildInfo(a.Build),
			)
			if err != nil {
				return err
			}

			log.Info("serving character API",
				logger.String("port", a.Settings.WebServer.Port),
				logger.String("version", a.Build.GetVersion()))
			return server.Run(cmd.Context())
		},
	}

	if err := setupFlags(cmd); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}
	return cmd
}

// setupFlags configures flags specific to the serve command.
func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().String("port", "", "Port to listen on (default from webserver.port)")

	if err := viper.BindPFlag("webserver.port", cmd.Flags().Lookup("port")); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}
