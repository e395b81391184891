package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"taskboard/model"
	"taskboard/state"
	"taskboard/view"
)

var errNothingToUpdate = errors.New("nothing to update: pass at least one field flag")

func newItemsCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item"},
		Short:   "Item commands",
	}
	cmd.AddCommand(newItemsLsCmd(a))
	cmd.AddCommand(newItemsAddCmd(a))
	cmd.AddCommand(newItemsShowCmd(a))
	cmd.AddCommand(newItemsEditCmd(a))
	cmd.AddCommand(newItemsRmCmd(a))
	cmd.AddCommand(newItemsToggleCmd(a))
	cmd.AddCommand(newItemsMoveCmd(a))
	cmd.AddCommand(newItemsBulkSetCmd(a))
	cmd.AddCommand(newItemsBulkRmCmd(a))
	return cmd
}

// itemFlags binds the editable item fields. Only flags the user passed end
// up in a patch.
type itemFlags struct {
	title       string
	description string
	due         string
	clearDue    bool
	priority    string
	status      string
	labels      []string
}

func (f *itemFlags) bind(cmd *cobra.Command, withTitle bool) {
	if withTitle {
		cmd.Flags().StringVar(&f.title, "title", "", "Item title")
	}
	cmd.Flags().StringVar(&f.description, "description", "", "Item description")
	cmd.Flags().StringVar(&f.due, "due", "", "Due date (today|tomorrow|YYYY-MM-DD|YYYY-MM-DD HH:MM|RFC3339)")
	cmd.Flags().StringVar(&f.priority, "priority", "", "Priority (high|medium|low)")
	cmd.Flags().StringVar(&f.status, "status", "", "Status (pending|in-progress|completed)")
	cmd.Flags().StringSliceVar(&f.labels, "label", nil, "Label (repeatable or comma separated)")
}

func (f *itemFlags) bindClearDue(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.clearDue, "clear-due", false, "Remove the due date")
}

func (a *App) itemOptions(f *itemFlags) (model.ItemOptions, error) {
	opts := model.ItemOptions{Description: f.description, Labels: f.labels}
	if f.due != "" {
		due, err := view.ParseDate(f.due, a.now())
		if err != nil {
			return opts, err
		}
		opts.DueDate = &due
	}
	if f.priority != "" {
		p, err := model.ParsePriority(f.priority)
		if err != nil {
			return opts, err
		}
		opts.Priority = p
	}
	if f.status != "" {
		s, err := model.ParseStatus(f.status)
		if err != nil {
			return opts, err
		}
		opts.Status = s
	}
	return opts, nil
}

func (a *App) itemPatch(cmd *cobra.Command, f *itemFlags) (state.ItemPatch, error) {
	var p state.ItemPatch
	changed := cmd.Flags().Changed
	if changed("title") {
		p.Title = &f.title
	}
	if changed("description") {
		p.Description = &f.description
	}
	if changed("due") {
		due, err := view.ParseDate(f.due, a.now())
		if err != nil {
			return p, err
		}
		p.DueDate = &due
	}
	if f.clearDue {
		p.ClearDueDate = true
	}
	if changed("priority") {
		pr, err := model.ParsePriority(f.priority)
		if err != nil {
			return p, err
		}
		p.Priority = &pr
	}
	if changed("status") {
		st, err := model.ParseStatus(f.status)
		if err != nil {
			return p, err
		}
		p.Status = &st
	}
	if changed("label") {
		labels := append([]string{}, f.labels...)
		p.Labels = &labels
	}
	if p.IsZero() {
		return p, errNothingToUpdate
	}
	return p, nil
}

func newItemsLsCmd(a *App) *cobra.Command {
	var listRef string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "Show a list's items in stored order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := resolveList(a.Service.State(), listRef)
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return writeJSON(cmd, l.Items)
			}
			a.renderer(cmd).ordered(l)
			return nil
		},
	}
	cmd.Flags().StringVar(&listRef, "list", "", "List id or name (default: active list)")
	return cmd
}

func newItemsAddCmd(a *App) *cobra.Command {
	var (
		listRef string
		flags   itemFlags
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add an item",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := resolveList(a.Service.State(), listRef)
			if err != nil {
				return err
			}
			opts, err := a.itemOptions(&flags)
			if err != nil {
				return err
			}
			it, err := a.Service.CreateItem(strings.Join(args, " "), l.ID, opts)
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return writeJSON(cmd, it)
			}
			r := a.renderer(cmd)
			r.line("Added to %s:", l.Name)
			r.line("%s", r.item(it, "  "))
			return nil
		},
	}
	cmd.Flags().StringVar(&listRef, "list", "", "List id or name (default: active list)")
	flags.bind(cmd, false)
	return cmd
}

func newItemsShowCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <item>",
		Short: "Show one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.Service.State()
			it, err := resolveItem(s, args[0])
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return writeJSON(cmd, it)
			}
			l, _ := s.FindList(it.ListID)
			a.renderer(cmd).detail(it, l.Name)
			return nil
		},
	}
}

func newItemsEditCmd(a *App) *cobra.Command {
	var flags itemFlags

	cmd := &cobra.Command{
		Use:   "edit <item>",
		Short: "Change item fields",
		Example: strings.TrimSpace(`
  taskboard items edit 3f2a --priority high --due 2026-11-01
  taskboard items edit 3f2a --label work --label urgent
  taskboard items edit 3f2a --clear-due
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := resolveItem(a.Service.State(), args[0])
			if err != nil {
				return err
			}
			patch, err := a.itemPatch(cmd, &flags)
			if err != nil {
				return err
			}
			updated, err := a.Service.UpdateItem(it.ID, patch)
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return writeJSON(cmd, updated)
			}
			r := a.renderer(cmd)
			r.line("%s", r.item(updated, ""))
			return nil
		},
	}
	flags.bind(cmd, true)
	flags.bindClearDue(cmd)
	return cmd
}

func newItemsRmCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <item>",
		Aliases: []string{"delete"},
		Short:   "Delete an item",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := resolveItem(a.Service.State(), args[0])
			if err != nil {
				return err
			}
			if err := a.Service.DeleteItem(it.ID); err != nil {
				return err
			}
			if a.jsonOutput() {
				return writeJSON(cmd, map[string]any{"id": it.ID})
			}
			a.renderer(cmd).line("Deleted %q", it.Title)
			return nil
		},
	}
}

func newItemsToggleCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <item>",
		Short: "Mark an item completed, or reopen a completed one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := resolveItem(a.Service.State(), args[0])
			if err != nil {
				return err
			}
			updated, err := a.Service.ToggleStatus(it.ID)
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return writeJSON(cmd, updated)
			}
			r := a.renderer(cmd)
			r.line("%s", r.item(updated, ""))
			return nil
		},
	}
}

func newItemsMoveCmd(a *App) *cobra.Command {
	var (
		up   bool
		down bool
		to   int
	)

	cmd := &cobra.Command{
		Use:   "move <item>",
		Short: "Reorder an item within its list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chosen := 0
			for _, name := range []string{"up", "down", "to"} {
				if cmd.Flags().Changed(name) {
					chosen++
				}
			}
			if chosen != 1 {
				return fmt.Errorf("pass exactly one of --up, --down or --to")
			}

			s := a.Service.State()
			it, err := resolveItem(s, args[0])
			if err != nil {
				return err
			}
			switch {
			case up:
				_, err = a.Service.MoveItemUp(it.ID)
			case down:
				_, err = a.Service.MoveItemDown(it.ID)
			default:
				l, _ := s.FindList(it.ListID)
				err = a.Service.Reorder(l.ID, l.IndexOf(it.ID), to)
			}
			if err != nil {
				return err
			}

			l, _ := a.Service.State().FindList(it.ListID)
			if a.jsonOutput() {
				return writeJSON(cmd, l.Items)
			}
			a.renderer(cmd).ordered(l)
			return nil
		},
	}
	cmd.Flags().BoolVar(&up, "up", false, "Move one place up")
	cmd.Flags().BoolVar(&down, "down", false, "Move one place down")
	cmd.Flags().IntVar(&to, "to", 0, "Move to this zero-based index")
	return cmd
}

func newItemsBulkSetCmd(a *App) *cobra.Command {
	var flags itemFlags

	cmd := &cobra.Command{
		Use:   "bulk-set <item>...",
		Short: "Apply the same change to several items",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := resolveItems(a.Service.State(), args)
			if err != nil {
				return err
			}
			patch, err := a.itemPatch(cmd, &flags)
			if err != nil {
				return err
			}
			n, err := a.Service.BulkUpdate(ids, patch)
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return writeJSON(cmd, map[string]any{"updated": n})
			}
			a.renderer(cmd).line("Updated %s", formatCount(n, "item"))
			return nil
		},
	}
	flags.bind(cmd, false)
	flags.bindClearDue(cmd)
	return cmd
}

func newItemsBulkRmCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "bulk-rm <item>...",
		Short: "Delete several items",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := resolveItems(a.Service.State(), args)
			if err != nil {
				return err
			}
			n, err := a.Service.BulkDelete(ids)
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return writeJSON(cmd, map[string]any{"deleted": n})
			}
			a.renderer(cmd).line("Deleted %s", formatCount(n, "item"))
			return nil
		},
	}
}
