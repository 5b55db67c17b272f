package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sightline/internal/config"
	"github.com/roach88/sightline/internal/schema"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "schema",
		Short:         "List registered entity types",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(rootOpts, cmd)
		},
	}

	return cmd
}

type schemaSummary struct {
	Type                  string   `json:"type"`
	IdentifyingAttributes []string `json:"identifying_attributes"`
}

func runSchema(opts *RootOptions, cmd *cobra.Command) error {
	dir := opts.SchemaDir
	if dir == "" {
		cfg, err := config.Load(opts.ConfigPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "load config", err)
		}
		dir = cfg.SchemaDir
	}
	if dir == "" {
		return NewExitError(ExitCommandError, "no schema directory configured")
	}

	provider, err := schema.LoadDir(dir)
	if err != nil {
		return WrapExitError(ExitCommandError, "load schemas", err)
	}

	names := provider.Types()
	sort.Strings(names)

	summaries := make([]schemaSummary, 0, len(names))
	for _, name := range names {
		ids, err := provider.IdentifyingAttributes(name)
		if err != nil {
			return WrapExitError(ExitCommandError, "resolve type", err)
		}
		summaries = append(summaries, schemaSummary{Type: name, IdentifyingAttributes: ids})
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return out.Success(summaries)
	}
	for _, s := range summaries {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  [%s]\n", s.Type, strings.Join(s.IdentifyingAttributes, ", "))
	}
	return nil
}
