package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sightline/internal/docstore"
)

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "delete <entity-type> <entity-id>",
		Short:         "Delete one entity by id",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runDelete(opts *RootOptions, entityType, entityID string, cmd *cobra.Command) error {
	rt, err := newRuntime(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	err = rt.svc.Delete(cmd.Context(), opts.TenantID, entityType, entityID)
	if errors.Is(err, docstore.ErrNotFound) {
		return WrapExitError(ExitFailure, "entity not found", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "delete", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return out.PrintEvents(rt.events.Events())
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s/%s\n", entityType, entityID)
	return nil
}
