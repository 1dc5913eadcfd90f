// Package cli holds state and output helpers shared by the subcommands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/hogwarts-heroes/internal/app"
	"github.com/tphakala/hogwarts-heroes/internal/buildinfo"
)

// Env is filled by the root command before a subcommand runs.
type Env struct {
	Build *buildinfo.Context
	App   *app.Context
	JSON  bool
}

// Require returns the initialized application or an error for commands
// that were set up to skip initialization.
func (e *Env) Require() (*app.Context, error) {
	if e.App == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	return e.App, nil
}

// Printer returns a printer writing to the command's stdout.
func (e *Env) Printer(cmd *cobra.Command) *Printer {
	return NewPrinter(cmd.OutOrStdout(), e.JSON)
}
