package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"taskboard/model"
	"taskboard/view"
)

func newListsCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "lists",
		Aliases: []string{"list"},
		Short:   "List commands",
	}
	cmd.AddCommand(newListsLsCmd(a))
	cmd.AddCommand(newListsAddCmd(a))
	cmd.AddCommand(newListsRmCmd(a))
	cmd.AddCommand(newListsRenameCmd(a))
	cmd.AddCommand(newListsUseCmd(a))
	return cmd
}

type listSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	Items     int       `json:"items"`
	Completed int       `json:"completed"`
	Percent   int       `json:"percent"`
	Labels    []string  `json:"labels"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func summarize(s model.AppState) []listSummary {
	out := make([]listSummary, 0, len(s.Lists))
	for _, l := range s.Lists {
		done := 0
		for _, it := range l.Items {
			if it.Status == model.StatusCompleted {
				done++
			}
		}
		out = append(out, listSummary{
			ID:        l.ID,
			Name:      l.Name,
			Active:    l.ID == s.ActiveListID,
			Items:     len(l.Items),
			Completed: done,
			Percent:   view.CompletionPercentage(l.Items),
			Labels:    view.UniqueLabels(l.Items),
			UpdatedAt: l.UpdatedAt,
		})
	}
	return out
}

func newListsLsCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "Show all lists",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.Service.State()
			if a.jsonOutput() {
				return writeJSON(cmd, summarize(s))
			}
			a.renderer(cmd).lists(s)
			return nil
		},
	}
}

func newListsAddCmd(a *App) *cobra.Command {
	var use bool

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.Service.CreateList(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if use {
				if err := a.Service.SetActiveList(l.ID); err != nil {
					return err
				}
			}
			if a.jsonOutput() {
				return writeJSON(cmd, l)
			}
			a.renderer(cmd).line("Created list %q (%s)", l.Name, shortID(l.ID))
			return nil
		},
	}
	cmd.Flags().BoolVar(&use, "use", false, "Make the new list active")
	return cmd
}

func newListsRmCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <list>",
		Aliases: []string{"delete"},
		Short:   "Delete a list and its items",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := resolveList(a.Service.State(), args[0])
			if err != nil {
				return err
			}
			if err := a.Service.DeleteList(l.ID); err != nil {
				return err
			}
			if a.jsonOutput() {
				return writeJSON(cmd, map[string]any{"id": l.ID, "deletedItems": len(l.Items)})
			}
			a.renderer(cmd).line("Deleted list %q and %s", l.Name, formatCount(len(l.Items), "item"))
			return nil
		},
	}
}

func newListsRenameCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <list> <name>",
		Short: "Rename a list",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := resolveList(a.Service.State(), args[0])
			if err != nil {
				return err
			}
			updated, err := a.Service.RenameList(l.ID, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return writeJSON(cmd, updated)
			}
			a.renderer(cmd).line("Renamed %q to %q", l.Name, updated.Name)
			return nil
		},
	}
}

func newListsUseCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use <list>",
		Short: "Make a list active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := resolveList(a.Service.State(), args[0])
			if err != nil {
				return err
			}
			if err := a.Service.SetActiveList(l.ID); err != nil {
				return err
			}
			if a.jsonOutput() {
				return writeJSON(cmd, l)
			}
			a.renderer(cmd).line("Active list: %s", l.Name)
			return nil
		},
	}
}

func formatCount(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
