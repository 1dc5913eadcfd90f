// Package version implements the version command.
package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/hogwarts-heroes/cmd/cli"
)

// Command creates a new cobra.Command to print build metadata.
func Command(env *cli.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of hogwarts-heroes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if env.JSON {
				return env.Printer(cmd).JSON(map[string]string{
					"version":    env.Build.GetVersion(),
					"build_date": env.Build.GetBuildDate(),
				})
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), env.Build.String())
			return err
		},
	}
}
