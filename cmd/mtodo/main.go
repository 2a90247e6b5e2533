package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mtodo/mtodo/internal/action"
	"github.com/mtodo/mtodo/internal/config"
	"github.com/mtodo/mtodo/internal/debug"
	"github.com/mtodo/mtodo/internal/lockfile"
	"github.com/mtodo/mtodo/internal/storage"
	"github.com/mtodo/mtodo/internal/storage/factory"
	"github.com/mtodo/mtodo/internal/telemetry"
)

// lockTimeout bounds how long a dolt open waits for another process.
var lockTimeout = 30 * time.Second

// app carries the global flags and the store opened for a command.
type app struct {
	dbPath     string
	backend    string
	configDir  string
	verbose    bool
	quiet      bool
	jsonOutput bool

	ctx     context.Context
	cancel  context.CancelFunc
	store   storage.Storage
	actions *action.Actions

	// telemetryOut receives stdout exporter output; the TUI points it at a file.
	telemetryOut io.Writer
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{telemetryOut: os.Stderr}

	root := &cobra.Command{
		Use:   "mtodo",
		Short: "mtodo - a small todo list for the terminal",
		Long: `A todo list with a full-screen terminal interface.

Run without arguments to open the list. The subcommands work on the same
database for scripting.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.dbPath, "db", "", "Database path (default: <data dir>/mtodo.db)")
	flags.StringVar(&a.backend, "backend", "", "Storage backend: sqlite, dolt or memory")
	flags.StringVar(&a.configDir, "config-dir", "", "Directory holding config.yaml (default: $MTODO_CONFIG_DIR or the user config dir)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose/debug output")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "Suppress non-essential output (errors only)")
	flags.BoolVar(&a.jsonOutput, "json", false, "Output in JSON format")

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newEditCmd(a),
		newDoneCmd(a),
		newImportantCmd(a),
		newDeleteCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)
	return root, a
}

// run executes the command line in args and releases everything the command
// opened, whether or not it failed.
func run(args []string, out, errOut io.Writer) error {
	root, a := newRootCmd()
	if name := os.Getenv("MTODO_NAME"); name != "" {
		root.Use = name
	}
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)
	defer a.teardown()
	return root.Execute()
}

// setup loads configuration and applies flag overrides. It runs for every
// command; the store is opened lazily by openStore.
func (a *app) setup(cmd *cobra.Command) error {
	a.ctx, a.cancel = signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)

	if a.configDir != "" {
		config.SetConfigDir(a.configDir)
	}
	if err := config.Initialize(); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		config.Set(config.KeyDatabasePath, a.dbPath)
	}
	if flags.Changed("backend") {
		config.Set(config.KeyDatabaseBackend, a.backend)
	}
	if flags.Changed("verbose") {
		config.Set(config.KeyVerbose, a.verbose)
	}

	debug.SetVerbose(config.GetBool(config.KeyVerbose))
	debug.SetQuiet(a.quiet)
	debug.Logf("config: %s", config.ConfigFileUsed())
	return nil
}

// openStore opens the configured backend and the event log.
func (a *app) openStore() error {
	if a.actions != nil {
		return nil
	}
	if err := telemetry.Init(a.ctx, "mtodo", Version, a.telemetryOut); err != nil {
		debug.Logf("telemetry init failed: %v", err)
	}
	if err := debug.OpenEventLog(eventLogPath()); err != nil {
		debug.Logf("event log disabled: %v", err)
	}

	backend, path := config.Backend(), config.DatabasePath()
	debug.Logf("opening %s store at %s", backend, path)
	store, err := factory.NewWithOptions(a.ctx, backend, path, factory.Options{LockTimeout: lockTimeout})
	if errors.Is(err, lockfile.ErrLockBusy) {
		// Embedded dolt admits one process; an open todo window holds it.
		return fmt.Errorf("database %s is in use by another mtodo process (close the todo window or use the sqlite backend): %w", path, err)
	}
	if err != nil {
		return err
	}
	a.store = telemetry.WrapStorage(store)
	a.actions = action.New(a.store, action.PrefsFunc(config.SaveWindowSize))
	a.actions.SetShowAll(config.ShowAll())
	return nil
}

func (a *app) teardown() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			debug.Logf("close store: %v", err)
		}
		a.store = nil
		a.actions = nil
	}
	telemetry.Shutdown(context.Background())
	if a.cancel != nil {
		a.cancel()
	}
	debug.Close()
}

func (a *app) printNormal(cmd *cobra.Command, format string, args ...interface{}) {
	if debug.IsQuiet() {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		FatalError("%v", err)
	}
}
