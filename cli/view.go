package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"taskboard/model"
	"taskboard/state"
	"taskboard/view"
)

const (
	sortNone     = ""
	sortPriority = "priority"
	sortStatus   = "status"
	sortDue      = "due"
	sortCreated  = "created"
)

var sorters = map[string]func([]model.Item) []model.Item{
	sortPriority: view.SortByPriority,
	sortStatus:   view.SortByStatus,
	sortDue:      view.SortByDueDate,
	sortCreated:  view.SortByCreated,
}

type viewFlags struct {
	priorities []string
	statuses   []string
	labels     []string
	search     string
	from       string
	to         string
	rangeName  string
	groupBy    string
	sortBy     string
	save       bool
	fresh      bool
}

// filterPatch converts the filter flags the user passed into a patch.
func (a *App) filterPatch(cmd *cobra.Command, f *viewFlags) (state.FilterPatch, error) {
	var p state.FilterPatch
	changed := cmd.Flags().Changed
	now := a.now()

	if changed("priority") {
		ps := make([]model.Priority, 0, len(f.priorities))
		for _, raw := range f.priorities {
			pr, err := model.ParsePriority(raw)
			if err != nil {
				return p, err
			}
			ps = append(ps, pr)
		}
		p.Priority = &ps
	}
	if changed("status") {
		ss := make([]model.Status, 0, len(f.statuses))
		for _, raw := range f.statuses {
			st, err := model.ParseStatus(raw)
			if err != nil {
				return p, err
			}
			ss = append(ss, st)
		}
		p.Status = &ss
	}
	if changed("label") {
		labels := model.NormalizeLabels(f.labels)
		p.Labels = &labels
	}
	if changed("search") {
		q := strings.TrimSpace(f.search)
		p.SearchQuery = &q
	}

	if changed("range") && (changed("from") || changed("to")) {
		return p, fmt.Errorf("--range cannot be combined with --from or --to")
	}
	if changed("range") {
		r := model.DateRange{}
		if name := strings.ToLower(strings.TrimSpace(f.rangeName)); name != "any" {
			var err error
			if r, err = view.NamedRange(name, now); err != nil {
				return p, err
			}
		}
		p.DateRange = &r
	}
	if changed("from") || changed("to") {
		var r model.DateRange
		if f.from != "" {
			start, err := view.ParseDate(f.from, now)
			if err != nil {
				return p, err
			}
			r.Start = &start
		}
		if f.to != "" {
			end, err := view.ParseRangeEnd(f.to, now)
			if err != nil {
				return p, err
			}
			r.End = &end
		}
		if r.Start != nil && r.End != nil && r.End.Before(*r.Start) {
			return p, fmt.Errorf("--to must not be before --from")
		}
		p.DateRange = &r
	}
	return p, nil
}

type viewJSON struct {
	ListID  string              `json:"listId"`
	Total   int                 `json:"total"`
	Shown   int                 `json:"shown"`
	GroupBy model.GroupBy       `json:"groupBy"`
	Filters model.FilterOptions `json:"filters"`
	Groups  []groupJSON         `json:"groups"`
}

type groupJSON struct {
	Key   string       `json:"key"`
	Items []model.Item `json:"items"`
}

func newViewCmd(a *App) *cobra.Command {
	var f viewFlags

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show the active list filtered and grouped",
		Long: strings.TrimSpace(`
Show the active list through the saved filters and grouping. Filter flags
refine the saved filters for this invocation only; pass --save to keep them.
`),
		Example: strings.TrimSpace(`
  taskboard view --priority high --status pending
  taskboard view --range this-week --group-by date
  taskboard view --from 2026-10-01 --to 2026-10-31 --save
  taskboard view --fresh --search report --sort due
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := a.filterPatch(cmd, &f)
			if err != nil {
				return err
			}
			var groupBy *model.GroupBy
			if cmd.Flags().Changed("group-by") {
				g, err := model.ParseGroupBy(f.groupBy)
				if err != nil {
					return err
				}
				groupBy = &g
			}
			sortFn, ok := sorters[strings.ToLower(f.sortBy)]
			if !ok && f.sortBy != sortNone {
				return fmt.Errorf("invalid sort %q (want priority|status|due|created)", f.sortBy)
			}

			s := a.Service.State()
			if f.save {
				if f.fresh {
					a.Service.ClearFilters()
				}
				if err := a.Service.SetFilters(patch); err != nil {
					return err
				}
				if groupBy != nil {
					if err := a.Service.SetGroupBy(*groupBy); err != nil {
						return err
					}
				}
				s = a.Service.State()
			} else {
				if f.fresh {
					s = state.Reduce(s, state.ClearFilters{})
				}
				s = state.Reduce(s, state.SetFilters{Patch: patch})
				if groupBy != nil {
					s = state.Reduce(s, state.SetGroupBy{GroupBy: *groupBy})
				}
			}

			r := a.renderer(cmd)
			res := view.Visible(s, r.now)
			if sortFn != nil {
				res = sortResult(res, sortFn)
			}

			if a.jsonOutput() {
				out := viewJSON{
					ListID:  res.ListID,
					Total:   res.Total,
					Shown:   len(res.Items),
					GroupBy: s.GroupBy,
					Filters: s.Filters,
					Groups:  make([]groupJSON, 0, len(res.Groups)),
				}
				for _, g := range res.Groups {
					out.Groups = append(out.Groups, groupJSON{Key: g.Key, Items: g.Items})
				}
				return writeJSON(cmd, out)
			}
			r.result(s, res)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&f.priorities, "priority", nil, "Only these priorities (high|medium|low)")
	cmd.Flags().StringSliceVar(&f.statuses, "status", nil, "Only these statuses (pending|in-progress|completed)")
	cmd.Flags().StringSliceVar(&f.labels, "label", nil, "Only items with any of these labels")
	cmd.Flags().StringVar(&f.search, "search", "", "Match title, description or labels")
	cmd.Flags().StringVar(&f.from, "from", "", "Due on or after this date")
	cmd.Flags().StringVar(&f.to, "to", "", "Due on or before this date")
	cmd.Flags().StringVar(&f.rangeName, "range", "", "Named due range (today|tomorrow|this-week|next-week|this-month|any)")
	cmd.Flags().StringVar(&f.groupBy, "group-by", "", "Grouping (none|priority|status|date|labels)")
	cmd.Flags().StringVar(&f.sortBy, "sort", "", "Sort within groups (priority|status|due|created)")
	cmd.Flags().BoolVar(&f.save, "save", false, "Persist the filters and grouping")
	cmd.Flags().BoolVar(&f.fresh, "fresh", false, "Ignore the saved filters")
	return cmd
}

func sortResult(res view.Result, sortFn func([]model.Item) []model.Item) view.Result {
	res.Items = sortFn(res.Items)
	groups := make([]view.Group, len(res.Groups))
	for i, g := range res.Groups {
		groups[i] = view.Group{Key: g.Key, Items: sortFn(g.Items)}
	}
	res.Groups = groups
	return res
}

func newFiltersCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "Show the saved filters and grouping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.Service.State()
			if a.jsonOutput() {
				return writeJSON(cmd, map[string]any{"groupBy": s.GroupBy, "filters": s.Filters})
			}
			a.renderer(cmd).filters(s.Filters, s.GroupBy)
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every saved filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.Service.ClearFilters()
			if a.jsonOutput() {
				return writeJSON(cmd, a.Service.State().Filters)
			}
			a.renderer(cmd).line("Filters cleared")
			return nil
		},
	})
	return cmd
}

func newThemeCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "theme [light|dark|toggle]",
		Short: "Show or change the color theme",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if strings.EqualFold(args[0], "toggle") {
					a.Service.ToggleTheme()
				} else {
					t, err := model.ParseTheme(args[0])
					if err != nil {
						return err
					}
					if err := a.Service.SetTheme(t); err != nil {
						return err
					}
				}
			}
			theme := a.Service.State().Theme
			if a.jsonOutput() {
				return writeJSON(cmd, map[string]any{"theme": theme})
			}
			r := a.renderer(cmd)
			r.line("Theme: %s", r.p.Accent.Render(string(theme)))
			return nil
		},
	}
}
