package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"taskboard/model"
	"taskboard/tui"
	"taskboard/view"
)

type renderer struct {
	w   io.Writer
	p   tui.Palette
	now time.Time
}

func (a *App) renderer(cmd *cobra.Command) renderer {
	return renderer{
		w:   cmd.OutOrStdout(),
		p:   tui.PaletteFor(a.Service.State().Theme),
		now: a.now(),
	}
}

func (r renderer) line(format string, args ...any) {
	fmt.Fprintf(r.w, format+"\n", args...)
}

func (r renderer) lists(s model.AppState) {
	if len(s.Lists) == 0 {
		r.line("%s", r.p.Muted.Render("No lists. Create one with: taskboard lists add <name>"))
		return
	}
	for _, l := range s.Lists {
		marker := " "
		name := l.Name
		if l.ID == s.ActiveListID {
			marker = r.p.Success.Render("*")
			name = r.p.Title.Render(name)
		}
		done := 0
		for _, it := range l.Items {
			if it.Status == model.StatusCompleted {
				done++
			}
		}
		r.line("%s %s  %s  %s  %s",
			marker,
			r.p.Muted.Render(shortID(l.ID)),
			name,
			fmt.Sprintf("%d/%d done (%d%%)", done, len(l.Items), view.CompletionPercentage(l.Items)),
			r.p.Muted.Render("updated "+humanize.Time(l.UpdatedAt)),
		)
	}
}

// item renders one row: checkbox, priority, title, due date, labels, id.
func (r renderer) item(it model.Item, prefix string) string {
	title := it.Title
	if it.Status == model.StatusCompleted {
		title = r.p.Done.Render(title)
	}
	parts := []string{prefix + r.p.Status(it.Status), r.p.Priority(it.Priority), title}
	if due := r.p.Due(it, r.now); due != "" {
		parts = append(parts, " "+due)
	}
	if len(it.Labels) > 0 {
		parts = append(parts, " "+r.p.Labels(it.Labels))
	}
	parts = append(parts, " "+r.p.Muted.Render(shortID(it.ID)))
	return strings.Join(parts, " ")
}

// ordered prints the raw list order with the indexes "items move --to" uses.
func (r renderer) ordered(l model.List) {
	r.line("%s", r.p.Title.Render(l.Name))
	if len(l.Items) == 0 {
		r.line("%s", r.p.Muted.Render("  List is empty."))
		return
	}
	width := len(fmt.Sprint(len(l.Items) - 1))
	for i, it := range l.Items {
		r.line("%s", r.item(it, fmt.Sprintf("%*d ", width, i)))
	}
}

// result prints a filtered and grouped view of the active list.
func (r renderer) result(s model.AppState, res view.Result) {
	list, ok := s.FindList(res.ListID)
	if !ok {
		r.line("%s", r.p.Muted.Render("No active list."))
		return
	}
	summary := fmt.Sprintf("%d of %d items", len(res.Items), res.Total)
	if !s.Filters.IsEmpty() {
		summary += " (filtered)"
	}
	r.line("%s  %s", r.p.Title.Render(list.Name), r.p.Muted.Render(summary))

	if len(res.Items) == 0 {
		if res.Total == 0 {
			r.line("%s", r.p.Muted.Render("  List is empty."))
		} else {
			r.line("%s", r.p.Muted.Render("  No items match the current filters."))
		}
		return
	}

	grouped := s.GroupBy != model.GroupNone
	for _, g := range res.Groups {
		indent := "  "
		if grouped {
			r.line("%s %s", r.p.Accent.Render(g.Key), r.p.Muted.Render(fmt.Sprintf("(%d)", len(g.Items))))
			indent = "    "
		}
		for _, it := range g.Items {
			r.line("%s", r.item(it, indent))
		}
	}
}

func (r renderer) detail(it model.Item, listName string) {
	r.line("%s %s", r.p.Status(it.Status), r.p.Title.Render(it.Title))
	field := func(name, value string) {
		if value != "" {
			r.line("  %-12s %s", name+":", value)
		}
	}
	field("ID", it.ID)
	field("List", listName)
	field("Status", string(it.Status))
	field("Priority", r.p.Priority(it.Priority)+" "+string(it.Priority))
	if it.DueDate != nil {
		due := it.DueDate.In(r.now.Location())
		field("Due", view.FormatDateTime(&due)+" ("+r.p.Due(it, r.now)+")")
	}
	field("Labels", r.p.Labels(it.Labels))
	field("Description", it.Description)
	field("Created", humanize.Time(it.CreatedAt))
	field("Updated", humanize.Time(it.UpdatedAt))
}

func (r renderer) filters(f model.FilterOptions, g model.GroupBy) {
	r.line("%-10s %s", "Group by:", g)
	if f.IsEmpty() {
		r.line("%-10s %s", "Filters:", r.p.Muted.Render("none"))
		return
	}
	if len(f.Priority) > 0 {
		r.line("%-10s %s", "Priority:", joinAny(f.Priority))
	}
	if len(f.Status) > 0 {
		r.line("%-10s %s", "Status:", joinAny(f.Status))
	}
	if len(f.Labels) > 0 {
		r.line("%-10s %s", "Labels:", r.p.Labels(f.Labels))
	}
	if f.DateRange.IsSet() {
		r.line("%-10s %s .. %s", "Due:", rangeBound(f.DateRange.Start), rangeBound(f.DateRange.End))
	}
	if q := strings.TrimSpace(f.SearchQuery); q != "" {
		r.line("%-10s %q", "Search:", q)
	}
}

func rangeBound(t *time.Time) string {
	if t == nil {
		return "*"
	}
	local := t.Local()
	return view.FormatDateTime(&local)
}

func joinAny[T ~string](vs []T) string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return strings.Join(out, ", ")
}
