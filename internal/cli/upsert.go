package cli

import (
	"github.com/spf13/cobra"
)

// NewUpsertCommand creates the upsert command.
func NewUpsertCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upsert <payload.yaml>...",
		Short: "Write entities from YAML payload files",
		Long: `Write entities from YAML payload files.

Each file lists entities under an "entities" key. Entities without an id
get one derived from their identifying attributes. All entities across
all files are written in one batch.

Example:
  sightline upsert --tenant acme --schema-dir ./schemas services.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpsert(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runUpsert(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	rt, err := newRuntime(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	entities, err := loadEntities(opts.TenantID, paths)
	if err != nil {
		return err
	}

	stored, err := rt.svc.UpsertBulk(cmd.Context(), opts.TenantID, entities)
	if err != nil {
		return WrapExitError(ExitFailure, "upsert", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}
	if err := out.PrintEntities(stored); err != nil {
		return err
	}
	return out.PrintEvents(rt.events.Events())
}
