// Package characters implements the characters command group.
package characters

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tphakala/hogwarts-heroes/cmd/cli"
	"github.com/tphakala/hogwarts-heroes/internal/character"
)

// Command creates the characters command and its subcommands.
func Command(env *cli.Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "characters",
		Aliases: []string{"chars"},
		Short:   "Browse the PotterDB character catalog",
	}

	cmd.AddCommand(
		listCommand(env),
		searchCommand(env),
		filterCommand(env),
		detailsCommand(env),
		fieldsCommand(env),
	)
	return cmd
}

func listCommand(env *cli.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every character, from the cache when fresh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.Require()
			if err != nil {
				return err
			}
			list, err := a.Repository.GetAllCharacters(cmd.Context())
			if err != nil {
				return err
			}
			return env.Printer(cmd).Summaries(list)
		},
	}
}

func searchCommand(env *cli.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find characters whose name contains every word of the query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.Require()
			if err != nil {
				return err
			}
			list, err := a.Repository.SearchCharacters(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return env.Printer(cmd).Summaries(list)
		},
	}
}

// attributeFlags maps filter flags to attribute names.
var attributeFlags = map[string]string{
	"house":        "house",
	"patronus":     "patronus",
	"species":      "species",
	"blood-status": "blood_status",
	"gender":       "gender",
	"born":         "born",
	"died":         "died",
}

func filterCommand(env *cli.Env) *cobra.Command {
	values := make(map[string]*string, len(attributeFlags))
	var extra map[string]string

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Filter characters by attribute on the provider side",
		Example: `  hogwarts characters filter --house Gryffindor
  hogwarts characters filter --species human --field nationality=Irish`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := character.FilterParams{}
			for flag, field := range attributeFlags {
				if v := *values[flag]; v != "" {
					params[field] = v
				}
			}
			for field, v := range extra {
				params[field] = v
			}
			if len(params) == 0 {
				return fmt.Errorf("at least one filter is required, see --help")
			}

			a, err := env.Require()
			if err != nil {
				return err
			}
			list, err := a.Repository.FilterCharacters(cmd.Context(), params)
			if err != nil {
				return err
			}
			return env.Printer(cmd).Summaries(list)
		},
	}

	for flag, field := range attributeFlags {
		values[flag] = cmd.Flags().String(flag, "", fmt.Sprintf("%s contains this text", field))
	}
	cmd.Flags().StringToStringVar(&extra, "field", nil, "Additional attribute filter as name=value")

	return cmd
}

func detailsCommand(env *cli.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "details <id>",
		Short: "Show the full record of one character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.Require()
			if err != nil {
				return err
			}
			detail, err := a.Repository.GetCharacterDetails(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if detail == nil {
				return fmt.Errorf("character %q not found", args[0])
			}
			return env.Printer(cmd).Detail(detail)
		},
	}
}

func fieldsCommand(env *cli.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List the attribute names offered for filtering",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.Printer(cmd).Fields(character.FilterFields())
		},
	}
}
