package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/roach88/sightline/internal/change"
	"github.com/roach88/sightline/internal/config"
	"github.com/roach88/sightline/internal/docstore"
	"github.com/roach88/sightline/internal/schema"
	"github.com/roach88/sightline/internal/service"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	ConfigPath string
	DBPath     string
	SchemaDir  string
	TenantID   string
	Verbose    bool
	Format     string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the sightline CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sightline",
		Short: "Sightline entity data service",
		Long:  "Store, query, and track changes to typed entities.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (yaml)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "database file (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.SchemaDir, "schema-dir", "", "entity type definition directory (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.TenantID, "tenant", "default", "tenant id")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewUpsertCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// runtime bundles everything a command needs to execute against a store.
type runtime struct {
	cfg    *config.Config
	log    *zap.Logger
	store  *docstore.Store
	svc    *service.Service
	events *change.Buffer
}

// newRuntime resolves config, opens the store, and wires the service.
// Callers must Close it.
func newRuntime(opts *RootOptions) (*runtime, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}
	if opts.DBPath != "" {
		cfg.DBPath = opts.DBPath
	}
	if opts.SchemaDir != "" {
		cfg.SchemaDir = opts.SchemaDir
	}

	log, err := newLogger(cfg.LogLevel, opts.Verbose)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "build logger", err)
	}

	var schemas schema.Provider = schema.NewStatic()
	if cfg.SchemaDir != "" {
		loaded, err := schema.LoadDir(cfg.SchemaDir)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "load schemas", err)
		}
		schemas = loaded
	}

	store, err := docstore.Open(cfg.DBPath, log)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open database", err)
	}

	events := &change.Buffer{}
	var reconcilerOpts []change.Option
	if cfg.SkipUnchangedEvents {
		reconcilerOpts = append(reconcilerOpts, change.WithSkipUnchanged())
	}
	reconciler := change.NewReconciler(events, log, reconcilerOpts...)

	return &runtime{
		cfg:    cfg,
		log:    log,
		store:  store,
		svc:    service.New(store, schemas, reconciler, log),
		events: events,
	}, nil
}

func (r *runtime) Close() error {
	_ = r.log.Sync()
	return r.store.Close()
}

func newLogger(level string, verbose bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if verbose && lvl > zapcore.DebugLevel {
		lvl = zapcore.DebugLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
