// Package cache implements the cache command group.
package cache

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/hogwarts-heroes/cmd/cli"
)

// Command creates the cache command and its subcommands.
func Command(env *cli.Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the cached character catalog",
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the size and age of the cached catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.Require()
			if err != nil {
				return err
			}
			return env.Printer(cmd).CacheStatus(a.Repository.CacheStatus(cmd.Context()))
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop the cached catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.Require()
			if err != nil {
				return err
			}
			if err := a.Repository.ClearCache(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "cache cleared")
			return nil
		},
	}

	refresh := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch the full catalog now and replace the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.Require()
			if err != nil {
				return err
			}
			list, err := a.Repository.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "cached %d characters\n", len(list))
			return env.Printer(cmd).CacheStatus(a.Repository.CacheStatus(cmd.Context()))
		},
	}

	cmd.AddCommand(status, clearCmd, refresh)
	return cmd
}
