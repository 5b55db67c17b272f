package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sightline/internal/query"
	"github.com/roach88/sightline/internal/value"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Attrs  []string
	Exists []string
	Limit  int
	Offset int
	Count  bool
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <entity-type>",
		Short: "Query entities of a type",
		Long: `Query entities of a type.

Attribute filters combine with AND. A filter value parses as a long when
it looks like an integer, a boolean for true/false, and a string
otherwise.

Example:
  sightline query API --attr FQN=checkout.example.com --attr PORT=8080
  sightline query API --exists IS_EXTERNAL --limit 10`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Attrs, "attr", nil, "attribute equality filter, name=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Exists, "exists", nil, "attribute existence filter (repeatable)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum results (0 = unlimited)")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "results to skip")
	cmd.Flags().BoolVar(&opts.Count, "count", false, "print the number of matches instead of the entities")

	return cmd
}

func runQuery(opts *QueryOptions, entityType string, cmd *cobra.Command) error {
	filter, err := buildFilter(opts.Attrs, opts.Exists)
	if err != nil {
		return WrapExitError(ExitCommandError, "build filter", err)
	}

	rt, err := newRuntime(opts.RootOptions)
	if err != nil {
		return err
	}
	defer rt.Close()

	if opts.Count {
		n, err := rt.svc.Count(cmd.Context(), opts.TenantID, query.Query{
			EntityType: entityType,
			Filter:     filter,
		})
		if err != nil {
			return WrapExitError(ExitFailure, "query", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), n)
		return err
	}

	results, err := rt.svc.Query(cmd.Context(), opts.TenantID, query.Query{
		EntityType: entityType,
		Filter:     filter,
		Limit:      opts.Limit,
		Offset:     opts.Offset,
	})
	if err != nil {
		return WrapExitError(ExitFailure, "query", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	return out.PrintEntities(results)
}

// buildFilter translates --attr and --exists flags into a typed filter.
func buildFilter(attrs, exists []string) (query.Filter, error) {
	var leaves []query.Filter
	for _, raw := range attrs {
		name, rawValue, found := strings.Cut(raw, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("--attr %q: expected name=value", raw)
		}
		leaves = append(leaves, query.Leaf{
			Column:   name,
			Operator: query.OpEQ,
			Operand:  parseFlagValue(rawValue),
		})
	}
	for _, name := range exists {
		if name == "" {
			return nil, fmt.Errorf("--exists: attribute name is empty")
		}
		leaves = append(leaves, query.Leaf{Column: name, Operator: query.OpExists})
	}

	switch len(leaves) {
	case 0:
		return nil, nil
	case 1:
		return leaves[0], nil
	default:
		return query.And(leaves...), nil
	}
}

func parseFlagValue(raw string) value.Value {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return value.Long(n)
	}
	if b, err := strconv.ParseBool(raw); err == nil && (raw == "true" || raw == "false") {
		return value.BoolOf(b)
	}
	return value.Str(raw)
}
