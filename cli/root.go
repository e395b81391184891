// Package cli implements the taskboard command line. Every command opens the
// configured storage, applies one operation through app.Service and exits;
// running without a subcommand starts the terminal UI.
package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"taskboard/app"
	"taskboard/config"
	"taskboard/store"
	"taskboard/tui"
)

const (
	FormatText = "text"
	FormatJSON = "json"

	sqliteFile = "taskboard.db"
)

type App struct {
	Dir        string
	Backend    string
	LogLevel   string
	ConfigPath string
	Format     string

	Config  *config.Config
	Logger  *slog.Logger
	Service *app.Service

	// startup carries a notice for the terminal UI status bar.
	startup string
	closers []func() error
	now     func() time.Time
}

func NewRootCmd() *cobra.Command {
	a := &App{now: time.Now}

	cmd := &cobra.Command{
		Use:          "taskboard",
		Short:        "Task lists with filters, grouping and a terminal UI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive UI
  taskboard

  # Add an item to the active list
  taskboard items add "Write report" --priority high --due tomorrow --label work

  # Show what is due this week, grouped by priority
  taskboard view --range this-week --group-by priority

  # Back up everything
  taskboard export --out backup.json
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runTUI(a)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.open(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return a.close()
	}

	cmd.PersistentFlags().StringVar(&a.Dir, "dir", "", "Data directory (overrides config and "+config.EnvDir+")")
	cmd.PersistentFlags().StringVar(&a.Backend, "backend", "", "Storage backend ("+strings.Join(config.Backends, "|")+")")
	cmd.PersistentFlags().StringVar(&a.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&a.ConfigPath, "config", "", "Config file (default ~/"+config.UserConfigDir+"/"+config.UserConfigFile+")")
	cmd.PersistentFlags().StringVar(&a.Format, "format", FormatText, "Output format (text|json)")

	cmd.AddCommand(newListsCmd(a))
	cmd.AddCommand(newItemsCmd(a))
	cmd.AddCommand(newViewCmd(a))
	cmd.AddCommand(newFiltersCmd(a))
	cmd.AddCommand(newThemeCmd(a))
	cmd.AddCommand(newExportCmd(a))
	cmd.AddCommand(newImportCmd(a))
	cmd.AddCommand(newUsageCmd(a))
	cmd.AddCommand(newHistoryCmd(a))
	cmd.AddCommand(newResetCmd(a))
	cmd.AddCommand(newTUICmd(a))
	cmd.AddCommand(newConfigCmd(a))

	return cmd
}

// open resolves the configuration, then opens storage and the service.
// Flags win over the environment, which wins over config files.
func (a *App) open(cmd *cobra.Command) (err error) {
	defer func() {
		if err != nil {
			_ = a.close()
		}
	}()
	if err = a.loadConfig(cmd); err != nil {
		return err
	}
	cfg := a.Config

	kv, err := a.openKV(cfg)
	if err != nil {
		return err
	}

	a.Service = app.NewService(app.Options{
		Storage:        store.New(kv, a.Logger, nil),
		Logger:         a.Logger,
		SearchDebounce: cfg.UI.SearchDebounce,
	})
	a.closers = append(a.closers, func() error { a.Service.Close(); return nil })
	a.Service.Open()

	list, created, err := a.Service.EnsureDefaultList(cfg.UI.DefaultListName)
	if err != nil {
		return err
	}
	if created {
		a.startup = fmt.Sprintf("Created list %q", list.Name)
		a.Logger.Debug("Created default list", slog.String("list_id", list.ID))
	}
	return nil
}

// loadConfig resolves the configuration and builds the logger without
// touching storage.
func (a *App) loadConfig(cmd *cobra.Command) error {
	if a.Format != FormatText && a.Format != FormatJSON {
		return fmt.Errorf("invalid format %q (want text|json)", a.Format)
	}

	cfg, err := config.NewLoader(nil).Load(a.ConfigPath)
	if err != nil {
		return err
	}
	if a.Dir != "" {
		cfg.Storage.Dir = a.Dir
	}
	if a.Backend != "" {
		cfg.Storage.Backend = strings.ToLower(a.Backend)
	}
	if a.LogLevel != "" {
		cfg.Log.Level = a.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.Config = cfg

	level, _ := cfg.SlogLevel()
	a.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

func (a *App) openKV(cfg *config.Config) (store.KV, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		db, err := store.OpenSQLite(filepath.Join(cfg.Storage.Dir, sqliteFile))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return db, nil
	case config.BackendMemory:
		return store.NewMemoryKV(), nil
	default:
		return store.NewFileKV(cfg.Storage.Dir, cfg.Storage.Backups, a.Logger), nil
	}
}

// close releases resources in reverse order of acquisition.
func (a *App) close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func runTUI(a *App) error {
	return tui.Run(a.Service, tui.Options{
		DataDir:         a.Config.Storage.Dir,
		Startup:         a.startup,
		DefaultListName: a.Config.UI.DefaultListName,
	})
}

func newTUICmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(a)
		},
	}
}

func (a *App) jsonOutput() bool { return a.Format == FormatJSON }

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"data": v})
}
