package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/roach88/sightline/internal/docstore"
)

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <entity-type> <entity-id>",
		Short: "Fetch one entity by id",
		Example: `  sightline get API 7f9c3a1e-...
  sightline get --format json SERVICE checkout-id`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runGet(opts *RootOptions, entityType, entityID string, cmd *cobra.Command) error {
	rt, err := newRuntime(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	e, err := rt.svc.GetByID(cmd.Context(), opts.TenantID, entityType, entityID)
	if errors.Is(err, docstore.ErrNotFound) {
		return WrapExitError(ExitFailure, "entity not found", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "get", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	return out.PrintEntity(e)
}
