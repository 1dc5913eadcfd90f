// Package cmd assembles the hogwarts command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/hogwarts-heroes/cmd/cache"
	"github.com/tphakala/hogwarts-heroes/cmd/characters"
	"github.com/tphakala/hogwarts-heroes/cmd/cli"
	"github.com/tphakala/hogwarts-heroes/cmd/quiz"
	"github.com/tphakala/hogwarts-heroes/cmd/serve"
	"github.com/tphakala/hogwarts-heroes/cmd/version"
	"github.com/tphakala/hogwarts-heroes/internal/app"
	"github.com/tphakala/hogwarts-heroes/internal/buildinfo"
	"github.com/tphakala/hogwarts-heroes/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(build *buildinfo.Context) *cobra.Command {
	rootCmd, _ := newRootCommand(build)
	return rootCmd
}

func newRootCommand(build *buildinfo.Context) (*cobra.Command, *cli.Env) {
	env := &cli.Env{Build: build}
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "hogwarts",
		Short:         "HogwartsHeroes character catalog CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, env, &configFile); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	versionCmd := version.Command(env)
	rootCmd.AddCommand(
		characters.Command(env),
		cache.Command(env),
		quiz.Command(env),
		serve.Command(env),
		versionCmd,
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Skip setup for commands that need no configuration
		if cmd.Name() == versionCmd.Name() || cmd.Name() == "help" {
			return nil
		}
		return initialize(env, configFile)
	}

	return rootCmd, env
}

// Execute runs the command line and releases the application afterwards.
// ctx is canceled on interrupt so in-flight traversals stop.
func Execute(ctx context.Context, build *buildinfo.Context, args []string) error {
	rootCmd, env := newRootCommand(build)
	rootCmd.SetArgs(args)
	defer func() {
		if env.App != nil {
			env.App.Close()
			env.App = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

// initialize loads settings and builds the application before a subcommand runs.
func initialize(env *cli.Env, configFile string) error {
	if configFile != "" {
		conf.SetConfigFile(configFile)
	}

	settings, err := conf.Load()
	if err != nil {
		return err
	}

	a, err := app.New(settings, env.Build)
	if err != nil {
		return err
	}
	env.App = a
	return nil
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, env *cli.Env, configFile *string) error {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(configFile, "config", "", "Path to the configuration file")
	flags.BoolVar(&env.JSON, "json", false, "Print results as JSON")
	flags.BoolP("debug", "d", false, "Enable debug output")
	flags.String("base-url", conf.DefaultBaseURL, "PotterDB API root")
	flags.Duration("timeout", conf.DefaultTimeout, "Per-request timeout")
	flags.String("store", conf.DefaultStoreType, "Cache store backend (memory, sqlite, mysql)")

	bindings := map[string]string{
		"debug":       "debug",
		"api.baseurl": "base-url",
		"api.timeout": "timeout",
		"store.type":  "store",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", flag, err)
		}
	}
	return nil
}
