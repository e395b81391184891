package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"taskboard/store"
)

func newExportCmd(a *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all lists to a JSON backup file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "-" {
				return a.Service.WriteExport(cmd.OutOrStdout())
			}
			path := out
			if path == "" {
				path = store.ExportFilename(a.now())
			}
			if err := exportToFile(a, path); err != nil {
				return err
			}
			if a.jsonOutput() {
				return writeJSON(cmd, map[string]any{"path": path})
			}
			a.renderer(cmd).line("Exported to %s", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file, or - for stdout (default todo-backup-YYYY-MM-DD.json)")
	return cmd
}

// exportToFile writes to a temporary file beside path and renames it into
// place.
func exportToFile(a *App, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := a.Service.WriteExport(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close export file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move export file into place: %w", err)
	}
	return nil
}

func newImportCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all lists with the lists in a backup file",
		Long:  "Replace all lists with the lists in a backup file. Use - to read stdin. Invalid lists in the file are skipped.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open import file: %w", err)
				}
				defer f.Close()
				r = f
			}
			if err := a.Service.Import(r); err != nil {
				return err
			}
			lists := a.Service.State().Lists
			if a.jsonOutput() {
				return writeJSON(cmd, summarize(a.Service.State()))
			}
			a.renderer(cmd).line("Imported %s", formatCount(len(lists), "list"))
			return nil
		},
	}
}

func newUsageCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show how much of the storage budget the saved state uses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u := a.Service.Usage()
			if a.jsonOutput() {
				return writeJSON(cmd, map[string]any{
					"used":       u.Used,
					"total":      u.Total,
					"percentage": u.Percentage,
					"backend":    a.Config.Storage.Backend,
					"dir":        a.Config.Storage.Dir,
				})
			}
			r := a.renderer(cmd)
			r.line("%s of %s (%.2f%%)", humanize.IBytes(uint64(u.Used)), humanize.IBytes(uint64(u.Total)), u.Percentage)
			r.line("%s", r.p.Muted.Render(fmt.Sprintf("%s backend in %s", a.Config.Storage.Backend, a.Config.Storage.Dir)))
			return nil
		},
	}
}

func newHistoryCmd(a *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := a.Service.History()
			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}
			if a.jsonOutput() {
				return writeJSON(cmd, entries)
			}
			r := a.renderer(cmd)
			if len(entries) == 0 {
				r.line("%s", r.p.Muted.Render("No history yet."))
				return nil
			}
			for i := len(entries) - 1; i >= 0; i-- {
				e := entries[i]
				r.line("%-20s %s", e.Action, r.p.Muted.Render(humanize.Time(e.Timestamp)))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Show at most this many entries (0 for all)")
	return cmd
}

func newResetCmd(a *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase all lists, filters and history (the theme is kept)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset erases all data; pass --yes to confirm")
			}
			if !a.Service.ClearAll() {
				return fmt.Errorf("failed to clear storage")
			}
			if a.jsonOutput() {
				return writeJSON(cmd, map[string]any{"cleared": true})
			}
			a.renderer(cmd).line("All data cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm erasing all data")
	return cmd
}
