package tui

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskboard/app"
	"taskboard/model"
	"taskboard/state"
	"taskboard/view"
)

type focusPane int

const (
	focusLists focusPane = iota
	focusItems
)

func (f focusPane) String() string {
	if f == focusItems {
		return "items"
	}
	return "lists"
}

type uiMode int

const (
	modeNormal uiMode = iota
	modeAddList
	modeAddItem
	modeRenameList
	modeEditItem
	modeDueDate
	modeLabels
	modeSearch
	modeConfirm
)

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmDeleteList
	confirmDeleteItem
	confirmBulkDelete
)

// refreshMsg asks for a redraw after the state changed outside Update,
// such as a debounced search query landing.
type refreshMsg struct{}

// Options configures the terminal UI.
type Options struct {
	// DataDir is shown in the help overlay.
	DataDir string
	// Startup is the first status line message.
	Startup string
	// DefaultListName names the list created when the last list is deleted.
	DefaultListName string
}

type Model struct {
	svc         *app.Service
	dataDir     string
	defaultList string
	now         func() time.Time

	focus      focusPane
	mode       uiMode
	listCursor int
	itemCursor int
	input      string

	confirm      confirmKind
	confirmID    string
	confirmName  string
	confirmCount int

	showHelp bool

	status    string
	statusErr bool

	width  int
	height int
}

// Run starts the terminal UI and blocks until the user quits.
func Run(svc *app.Service, opts Options) error {
	m := NewModel(svc, opts)
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Listeners run inside Dispatch, which may be called from Update, so the
	// send must not block.
	unsubscribe := svc.Subscribe(func(prev, next model.AppState, a state.Action) {
		if a.Kind() == state.KindSetFilters {
			go p.Send(refreshMsg{})
		}
	})
	defer unsubscribe()

	_, err := p.Run()
	svc.FlushSearch()
	return err
}

func NewModel(svc *app.Service, opts Options) *Model {
	status := strings.TrimSpace(opts.Startup)
	if status == "" {
		status = "Ready"
	}
	defaultList := strings.TrimSpace(opts.DefaultListName)
	if defaultList == "" {
		defaultList = "My Tasks"
	}

	m := &Model{
		svc:         svc,
		dataDir:     opts.DataDir,
		defaultList: defaultList,
		now:         time.Now,
		focus:       focusItems,
		mode:        modeNormal,
		status:      status,
	}
	m.ensureSelection()
	return m
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case refreshMsg:
		m.ensureSelection()
	case tea.KeyMsg:
		switch m.mode {
		case modeAddList, modeAddItem, modeRenameList, modeEditItem, modeDueDate, modeLabels, modeSearch:
			m.updateInputMode(msg)
		case modeConfirm:
			m.updateConfirmMode(msg)
		default:
			if quit := m.updateNormalMode(msg); quit {
				m.svc.FlushSearch()
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m *Model) updateNormalMode(msg tea.KeyMsg) bool {
	if m.showHelp {
		switch msg.String() {
		case "ctrl+c":
			return true
		case "?", "esc", "q":
			m.showHelp = false
		}
		return false
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return true
	case "tab":
		if m.focus == focusLists {
			m.focus = focusItems
		} else {
			m.focus = focusLists
		}
	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case "J", "shift+down":
		m.moveSelectedItem(1)
	case "K", "shift+up":
		m.moveSelectedItem(-1)
	case "a":
		m.startAdd()
	case "r":
		m.startRenameList()
	case "e":
		m.startEditItem()
	case "D":
		m.startDueDate()
	case "l":
		m.startLabels()
	case "enter":
		if m.focus == focusLists {
			m.focus = focusItems
			break
		}
		m.toggleItemStatus()
	case "x":
		m.toggleItemStatus()
	case " ":
		m.toggleItemSelected()
	case "A":
		m.toggleSelectAll()
	case "1":
		m.setSelectedItemPriority(model.PriorityHigh)
	case "2":
		m.setSelectedItemPriority(model.PriorityMedium)
	case "3":
		m.setSelectedItemPriority(model.PriorityLow)
	case "d":
		m.startDeleteConfirm()
	case "B":
		m.bulkComplete()
	case "X":
		m.startBulkDeleteConfirm()
	case "/":
		m.mode = modeSearch
		m.input = m.svc.State().Filters.SearchQuery
	case "f":
		m.cycleStatusFilter()
	case "p":
		m.cyclePriorityFilter()
	case "c":
		m.svc.ClearFilters()
		m.itemCursor = 0
		m.setStatus("Filters cleared", false)
	case "g":
		g := m.svc.CycleGroupBy()
		m.setStatus("Group by: "+string(g), false)
	case "t":
		t := m.svc.ToggleTheme()
		m.setStatus("Theme: "+string(t), false)
	case "?":
		m.showHelp = true
	case "esc":
		st := m.svc.State()
		switch {
		case len(st.SelectedItems) > 0:
			m.svc.SelectItems(nil)
			m.setStatus("Selection cleared", false)
		case strings.TrimSpace(st.Filters.SearchQuery) != "":
			m.clearSearch()
		}
	}

	m.ensureSelection()
	return false
}

func (m *Model) updateInputMode(msg tea.KeyMsg) {
	switch msg.String() {
	case "ctrl+c", "esc":
		if m.mode == modeSearch {
			m.clearSearch()
		} else {
			m.setStatus("Cancelled", false)
		}
		m.mode = modeNormal
		m.input = ""
		return
	case "enter":
		m.applyInput()
		return
	}

	switch msg.Type {
	case tea.KeyBackspace, tea.KeyCtrlH:
		m.input = trimLastRune(m.input)
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	default:
		return
	}

	if m.mode == modeSearch {
		m.svc.SetSearchQuery(strings.TrimSpace(m.input))
		m.itemCursor = 0
	}
}

func (m *Model) updateConfirmMode(msg tea.KeyMsg) {
	switch strings.ToLower(msg.String()) {
	case "y":
		m.applyConfirm()
	case "n", "esc", "enter":
		m.resetConfirm()
		m.setStatus("Cancelled", false)
	}
}

func (m *Model) applyInput() {
	text := strings.TrimSpace(m.input)
	switch m.mode {
	case modeAddList:
		l, err := m.svc.CreateList(text)
		if err != nil {
			m.setStatus("Could not create list: "+err.Error(), true)
			return
		}
		if err := m.svc.SetActiveList(l.ID); err != nil {
			m.setStatus(err.Error(), true)
			return
		}
		m.itemCursor = 0
		m.setStatus(fmt.Sprintf("Created list %q", l.Name), false)
	case modeAddItem:
		list, ok := m.activeList()
		if !ok {
			m.setStatus("Create a list first", true)
			break
		}
		it, err := m.svc.CreateItem(text, list.ID, model.ItemOptions{})
		if err != nil {
			m.setStatus("Could not add item: "+err.Error(), true)
			return
		}
		m.itemCursor = m.indexOfItem(it.ID)
		m.setStatus("Item added", false)
	case modeRenameList:
		list, ok := m.activeList()
		if !ok {
			m.setStatus("No list selected", true)
			break
		}
		if _, err := m.svc.RenameList(list.ID, text); err != nil {
			m.setStatus("Could not rename list: "+err.Error(), true)
			return
		}
		m.setStatus("List renamed", false)
	case modeEditItem:
		m.updateSelectedItem(state.ItemPatch{Title: &text}, "Item updated")
	case modeDueDate:
		patch := state.ItemPatch{ClearDueDate: true}
		msg := "Due date removed"
		if text != "" {
			due, err := view.ParseDate(text, m.now())
			if err != nil {
				m.setStatus(err.Error(), true)
				return
			}
			patch = state.ItemPatch{DueDate: &due}
			msg = "Due " + view.RelativeDate(&due, m.now())
		}
		m.updateSelectedItem(patch, msg)
	case modeLabels:
		labels := model.NormalizeLabels(strings.Split(text, ","))
		m.updateSelectedItem(state.ItemPatch{Labels: &labels}, "Labels updated")
	case modeSearch:
		m.svc.FlushSearch()
		m.itemCursor = 0
		if text == "" {
			m.setStatus("Search cleared", false)
		} else {
			m.setStatus(fmt.Sprintf("Search: %q", text), false)
		}
	}
	m.mode = modeNormal
	m.input = ""
	m.ensureSelection()
}

func (m *Model) clearSearch() {
	m.svc.CancelSearch()
	empty := ""
	if err := m.svc.SetFilters(state.FilterPatch{SearchQuery: &empty}); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.itemCursor = 0
	m.setStatus("Search cleared", false)
}

func (m *Model) moveCursor(delta int) {
	if m.focus == focusLists {
		lists := m.svc.State().Lists
		if len(lists) == 0 {
			return
		}
		next := clamp(m.listCursor+delta, 0, len(lists)-1)
		if next == m.listCursor {
			return
		}
		m.listCursor = next
		m.itemCursor = 0
		if err := m.svc.SetActiveList(lists[next].ID); err != nil {
			m.setStatus(err.Error(), true)
		}
		return
	}

	items := m.visibleItems()
	if len(items) == 0 {
		return
	}
	m.itemCursor = clamp(m.itemCursor+delta, 0, len(items)-1)
}

func (m *Model) startAdd() {
	if m.focus == focusLists {
		m.mode = modeAddList
		m.input = ""
		return
	}
	if _, ok := m.activeList(); !ok {
		m.setStatus("Create a list first", true)
		return
	}
	m.mode = modeAddItem
	m.input = ""
}

func (m *Model) startRenameList() {
	list, ok := m.activeList()
	if !ok {
		m.setStatus("No list selected", true)
		return
	}
	m.mode = modeRenameList
	m.input = list.Name
}

func (m *Model) startEditItem() {
	it, ok := m.itemForAction()
	if !ok {
		return
	}
	m.mode = modeEditItem
	m.input = it.Title
}

func (m *Model) startDueDate() {
	it, ok := m.itemForAction()
	if !ok {
		return
	}
	m.mode = modeDueDate
	m.input = ""
	if it.DueDate != nil {
		m.input = it.DueDate.In(m.now().Location()).Format(time.DateOnly)
	}
}

func (m *Model) startLabels() {
	it, ok := m.itemForAction()
	if !ok {
		return
	}
	m.mode = modeLabels
	m.input = strings.Join(it.Labels, ", ")
}

// itemForAction returns the item under the cursor when the items pane has
// focus, reporting why not otherwise.
func (m *Model) itemForAction() (model.Item, bool) {
	if m.focus != focusItems {
		m.setStatus("Switch to the items pane (Tab)", false)
		return model.Item{}, false
	}
	it, ok := m.selectedItem()
	if !ok {
		m.setStatus("No item selected", true)
	}
	return it, ok
}

func (m *Model) updateSelectedItem(patch state.ItemPatch, success string) {
	it, ok := m.selectedItem()
	if !ok {
		m.setStatus("No item selected", true)
		return
	}
	if _, err := m.svc.UpdateItem(it.ID, patch); err != nil {
		m.setStatus("Could not update item: "+err.Error(), true)
		return
	}
	m.setStatus(success, false)
}

func (m *Model) toggleItemStatus() {
	it, ok := m.itemForAction()
	if !ok {
		return
	}
	updated, err := m.svc.ToggleStatus(it.ID)
	if err != nil {
		m.setStatus("Could not toggle item: "+err.Error(), true)
		return
	}
	if updated.Status == model.StatusCompleted {
		m.setStatus("Completed", false)
	} else {
		m.setStatus("Reopened", false)
	}
}

func (m *Model) toggleItemSelected() {
	it, ok := m.itemForAction()
	if !ok {
		return
	}
	if err := m.svc.ToggleSelected(it.ID); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.setStatus(fmt.Sprintf("%d selected", len(m.svc.State().SelectedItems)), false)
}

// toggleSelectAll selects every visible item, or clears the selection when
// all of them are already selected.
func (m *Model) toggleSelectAll() {
	items := m.result().Items
	if len(items) == 0 {
		m.setStatus("Nothing to select", false)
		return
	}
	selected := m.svc.State().SelectedItems
	ids := make([]string, 0, len(items))
	all := true
	for _, it := range items {
		ids = append(ids, it.ID)
		if !slices.Contains(selected, it.ID) {
			all = false
		}
	}
	if all {
		m.svc.SelectItems(nil)
		m.setStatus("Selection cleared", false)
		return
	}
	m.svc.SelectItems(ids)
	m.setStatus(fmt.Sprintf("%d selected", len(ids)), false)
}

func (m *Model) setSelectedItemPriority(p model.Priority) {
	it, ok := m.itemForAction()
	if !ok {
		return
	}
	if _, err := m.svc.SetPriority(it.ID, p); err != nil {
		m.setStatus("Could not set priority: "+err.Error(), true)
		return
	}
	m.setStatus("Priority: "+string(p), false)
}

func (m *Model) moveSelectedItem(delta int) {
	it, ok := m.itemForAction()
	if !ok {
		return
	}
	var err error
	if delta < 0 {
		_, err = m.svc.MoveItemUp(it.ID)
	} else {
		_, err = m.svc.MoveItemDown(it.ID)
	}
	switch {
	case errors.Is(err, app.ErrItemAtTop):
		m.setStatus("Already at the top", false)
	case errors.Is(err, app.ErrItemAtBottom):
		m.setStatus("Already at the bottom", false)
	case err != nil:
		m.setStatus("Could not move item: "+err.Error(), true)
	default:
		m.itemCursor = m.indexOfItem(it.ID)
		m.setStatus("Item moved", false)
	}
}

func (m *Model) bulkComplete() {
	completed := model.StatusCompleted
	n, err := m.svc.BulkUpdate(nil, state.ItemPatch{Status: &completed})
	if errors.Is(err, app.ErrNothingSelected) {
		m.setStatus("Select items with Space first", false)
		return
	}
	if err != nil {
		m.setStatus("Could not update items: "+err.Error(), true)
		return
	}
	m.setStatus(fmt.Sprintf("Completed %d items", n), false)
}

func (m *Model) startDeleteConfirm() {
	if m.focus == focusLists {
		list, ok := m.activeList()
		if !ok {
			m.setStatus("No list selected", true)
			return
		}
		m.mode = modeConfirm
		m.confirm = confirmDeleteList
		m.confirmID = list.ID
		m.confirmName = list.Name
		m.confirmCount = len(list.Items)
		return
	}
	it, ok := m.selectedItem()
	if !ok {
		m.setStatus("No item selected", true)
		return
	}
	m.mode = modeConfirm
	m.confirm = confirmDeleteItem
	m.confirmID = it.ID
	m.confirmName = it.Title
}

func (m *Model) startBulkDeleteConfirm() {
	n := len(m.svc.State().SelectedItems)
	if n == 0 {
		m.setStatus("Select items with Space first", false)
		return
	}
	m.mode = modeConfirm
	m.confirm = confirmBulkDelete
	m.confirmCount = n
}

func (m *Model) applyConfirm() {
	switch m.confirm {
	case confirmDeleteList:
		if err := m.svc.DeleteList(m.confirmID); err != nil {
			m.setStatus("Could not delete list: "+err.Error(), true)
			break
		}
		m.itemCursor = 0
		m.listCursor = 0
		m.setStatus(fmt.Sprintf("Deleted list %q", m.confirmName), false)
		if l, created, err := m.svc.EnsureDefaultList(m.defaultList); err != nil {
			m.setStatus("Could not create list: "+err.Error(), true)
		} else if created {
			m.setStatus(fmt.Sprintf("Deleted list %q, created %q", m.confirmName, l.Name), false)
		}
	case confirmDeleteItem:
		if err := m.svc.DeleteItem(m.confirmID); err != nil {
			m.setStatus("Could not delete item: "+err.Error(), true)
			break
		}
		m.setStatus("Item deleted", false)
	case confirmBulkDelete:
		n, err := m.svc.BulkDelete(nil)
		if err != nil {
			m.setStatus("Could not delete items: "+err.Error(), true)
			break
		}
		m.setStatus(fmt.Sprintf("Deleted %d items", n), false)
	}
	m.resetConfirm()
	m.ensureSelection()
}

func (m *Model) resetConfirm() {
	m.mode = modeNormal
	m.confirm = confirmNone
	m.confirmID = ""
	m.confirmName = ""
	m.confirmCount = 0
}

// cycleStatusFilter steps through no status filter, then each status alone.
func (m *Model) cycleStatusFilter() {
	current := m.svc.State().Filters.Status
	next := []model.Status{}
	label := "all"
	if len(current) == 0 {
		next = []model.Status{model.Statuses[0]}
	} else if i := slices.Index(model.Statuses, current[0]); len(current) == 1 && i >= 0 && i+1 < len(model.Statuses) {
		next = []model.Status{model.Statuses[i+1]}
	}
	if len(next) == 1 {
		label = string(next[0])
	}
	if err := m.svc.SetFilters(state.FilterPatch{Status: &next}); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.itemCursor = 0
	m.setStatus("Status filter: "+label, false)
}

func (m *Model) cyclePriorityFilter() {
	current := m.svc.State().Filters.Priority
	next := []model.Priority{}
	label := "all"
	if len(current) == 0 {
		next = []model.Priority{model.Priorities[0]}
	} else if i := slices.Index(model.Priorities, current[0]); len(current) == 1 && i >= 0 && i+1 < len(model.Priorities) {
		next = []model.Priority{model.Priorities[i+1]}
	}
	if len(next) == 1 {
		label = string(next[0])
	}
	if err := m.svc.SetFilters(state.FilterPatch{Priority: &next}); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.itemCursor = 0
	m.setStatus("Priority filter: "+label, false)
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// ensureSelection keeps both cursors in range and the list cursor on the
// active list.
func (m *Model) ensureSelection() {
	st := m.svc.State()
	if len(st.Lists) == 0 {
		m.listCursor = 0
		m.itemCursor = 0
		m.focus = focusLists
		return
	}
	for i, l := range st.Lists {
		if l.ID == st.ActiveListID {
			m.listCursor = i
			break
		}
	}
	m.listCursor = clamp(m.listCursor, 0, len(st.Lists)-1)

	items := m.visibleItems()
	if len(items) == 0 {
		m.itemCursor = 0
		return
	}
	m.itemCursor = clamp(m.itemCursor, 0, len(items)-1)
}

func (m *Model) activeList() (model.List, bool) {
	return m.svc.State().ActiveList()
}

func (m *Model) result() view.Result {
	return m.svc.Visible(m.now())
}

// visibleItems flattens the grouped view in display order. Under label
// grouping an item appears once per label.
func (m *Model) visibleItems() []model.Item {
	res := m.result()
	out := make([]model.Item, 0, len(res.Items))
	for _, g := range res.Groups {
		out = append(out, g.Items...)
	}
	return out
}

func (m *Model) selectedItem() (model.Item, bool) {
	items := m.visibleItems()
	if len(items) == 0 {
		return model.Item{}, false
	}
	if m.itemCursor < 0 || m.itemCursor >= len(items) {
		m.itemCursor = 0
	}
	return items[m.itemCursor], true
}

func (m *Model) indexOfItem(id string) int {
	items := m.visibleItems()
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	if len(items) == 0 {
		return 0
	}
	return len(items) - 1
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	st := m.svc.State()
	pal := PaletteFor(st.Theme)

	title := pal.Title.Render("taskboard")
	summary := fmt.Sprintf("focus: %s • group: %s • theme: %s", m.focus, st.GroupBy, st.Theme)
	if q := strings.TrimSpace(st.Filters.SearchQuery); q != "" {
		summary += " • search: \"" + q + "\""
	}
	if n := len(st.SelectedItems); n > 0 {
		summary += fmt.Sprintf(" • %d selected", n)
	}
	header := lipgloss.JoinHorizontal(lipgloss.Left, title, pal.Muted.Render("  "+summary))

	viewW := m.viewportWidth()
	const paneGap = 1
	const rightInset = 6
	outerPaneW := viewW - rightInset
	if outerPaneW < 40 {
		outerPaneW = viewW
	}
	innerPaneW := outerPaneW - 2
	if innerPaneW < 20 {
		innerPaneW = outerPaneW
	}

	panelH := m.height - 6
	if panelH < 8 {
		panelH = 8
	}
	innerPaneH := panelH - 2
	if innerPaneH < 6 {
		innerPaneH = 6
	}

	leftW, rightW := m.paneWidths(innerPaneW, paneGap)
	split := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderListsPanel(pal, st, leftW, innerPaneH),
		lipgloss.NewStyle().Foreground(pal.Border).Render("│"),
		m.renderItemsPanel(pal, st, rightW, innerPaneH),
	)

	frameColor := pal.Border
	if m.mode == modeNormal {
		frameColor = pal.Focus
	}
	panes := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(frameColor).
		Width(outerPaneW).
		Height(panelH).
		Render(split)

	if outerPaneW < viewW {
		panes = lipgloss.JoinHorizontal(lipgloss.Top, panes, strings.Repeat(" ", viewW-outerPaneW))
	}

	statusStyle := pal.Success
	if m.statusErr {
		statusStyle = pal.Error
	}
	rightHint := "? help"
	if m.showHelp {
		rightHint = "Esc/? close help"
	}
	footerLine := m.renderFooter(m.status, statusStyle, pal.Muted, rightHint)

	promptLine := m.prompt()
	if promptLine != "" {
		promptLine = pal.Prompt.Width(viewW).Render(promptLine)
	}

	if m.showHelp {
		popupW := viewW - 8
		if popupW > 96 {
			popupW = 96
		}
		if popupW < 56 {
			popupW = viewW - 2
		}
		if popupW < 40 {
			popupW = 40
		}
		panes = lipgloss.Place(viewW, panelH, lipgloss.Center, lipgloss.Center, m.renderHelpOverlay(pal, popupW))
	}

	parts := []string{header, panes, footerLine}
	if promptLine != "" && !m.showHelp {
		parts = append(parts, promptLine)
	}
	return strings.Join(parts, "\n")
}

func (m *Model) prompt() string {
	const caret = "▌"
	switch m.mode {
	case modeAddList:
		return "New list: " + m.input + caret
	case modeAddItem:
		return "New item: " + m.input + caret
	case modeRenameList:
		return "Rename list: " + m.input + caret
	case modeEditItem:
		return "Edit title: " + m.input + caret
	case modeDueDate:
		return "Due (today, tomorrow, YYYY-MM-DD; empty clears): " + m.input + caret
	case modeLabels:
		return "Labels (comma separated): " + m.input + caret
	case modeSearch:
		return "Search: " + m.input + caret + "  (Enter applies, Esc clears)"
	case modeConfirm:
		switch m.confirm {
		case confirmDeleteList:
			return fmt.Sprintf("Delete list %q and its %d items? [y/N]", m.confirmName, m.confirmCount)
		case confirmDeleteItem:
			return fmt.Sprintf("Delete item %q? [y/N]", m.confirmName)
		case confirmBulkDelete:
			return fmt.Sprintf("Delete %d selected items? [y/N]", m.confirmCount)
		}
	}
	return ""
}

func (m *Model) viewportWidth() int {
	if m.width <= 0 {
		return 1
	}
	// One spare column keeps some terminals from wrapping the right border.
	if m.width > 1 {
		return m.width - 1
	}
	return m.width
}

func (m *Model) paneWidths(total, gap int) (int, int) {
	if total <= 0 {
		return 24, 30
	}
	if gap < 0 {
		gap = 0
	}

	minLeft := 20
	minRight := 30
	if total < minLeft+minRight+gap {
		left := total / 3
		if left < 12 {
			left = 12
		}
		right := total - left - gap
		if right < 12 {
			right = 12
			left = total - right - gap
			if left < 10 {
				left = 10
			}
		}
		return left, right
	}

	left := total / 4
	if left < 22 {
		left = 22
	}
	if left > 34 {
		left = 34
	}

	right := total - left - gap
	if right < minRight {
		right = minRight
		left = total - right - gap
	}
	if left < minLeft {
		left = minLeft
		right = total - left - gap
	}

	return left, right
}

func (m *Model) renderFooter(statusText string, statusStyle, rightStyle lipgloss.Style, rightHint string) string {
	left := strings.TrimSpace(statusText)
	right := strings.TrimSpace(rightHint)
	if left == "" {
		left = "Ready"
	}

	leftW := utf8.RuneCountInString(left)
	rightW := utf8.RuneCountInString(right)
	width := m.viewportWidth()

	if leftW+rightW+1 > width {
		maxLeft := width - rightW - 1
		if maxLeft < 8 {
			maxLeft = 8
		}
		left = truncateRunes(left, maxLeft)
		leftW = utf8.RuneCountInString(left)
	}

	padding := width - leftW - rightW
	if padding < 1 {
		padding = 1
	}

	line := statusStyle.Render(left) + strings.Repeat(" ", padding) + rightStyle.Render(right)
	return lipgloss.NewStyle().Width(width).Render(line)
}

func (m *Model) renderHelpOverlay(pal Palette, width int) string {
	rows := []string{
		pal.Title.Render("Keys"),
		"",
		pal.Accent.Render("Global"),
		"  Tab switch pane • j/k move • q quit • ? help",
		"  / search • f status filter • p priority filter • c clear filters",
		"  g cycle grouping • t toggle theme • Esc clear selection or search",
		"",
		pal.Accent.Render("Lists pane"),
		"  a add • r rename • d delete • j/k switch active list",
		"",
		pal.Accent.Render("Items pane"),
		"  a add • e edit title • D due date • l labels • x/Enter toggle done",
		"  1/2/3 priority high/medium/low • J/K reorder • d delete",
		"  Space select • A select all/none • B complete selected • X delete selected",
	}
	if m.dataDir != "" {
		rows = append(rows, "", pal.Muted.Render("Data: "+m.dataDir))
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(pal.Border).
		Padding(1, 2)

	return style.Width(width).Render(strings.Join(rows, "\n"))
}

func (m *Model) renderListsPanel(pal Palette, st model.AppState, width, height int) string {
	lines := make([]string, 0, len(st.Lists)+2)
	lines = append(lines, panelTitleStyled(pal, "Lists", m.focus == focusLists))
	if len(st.Lists) == 0 {
		lines = append(lines, pal.Muted.Render("No lists. Press 'a' to create one."))
	}
	for i, l := range st.Lists {
		cursor := " "
		if i == m.listCursor {
			cursor = "▸"
		}
		done := 0
		for _, it := range l.Items {
			if it.Status == model.StatusCompleted {
				done++
			}
		}
		name := truncateRunes(l.Name, width-10)
		line := fmt.Sprintf("%s %s", cursor, name)
		if i == m.listCursor {
			style := lipgloss.NewStyle().Bold(true)
			if m.focus == focusLists {
				style = pal.Selected
			}
			line = style.Render(line)
		}
		lines = append(lines, line+" "+pal.Muted.Render(fmt.Sprintf("%d/%d", done, len(l.Items))))
	}

	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderItemsPanel(pal Palette, st model.AppState, width, height int) string {
	list, hasList := st.ActiveList()
	res := m.result()

	title := "Items"
	if hasList {
		title = fmt.Sprintf("%s — %d of %d • %d%% done", list.Name, len(res.Items), res.Total, view.CompletionPercentage(list.Items))
	}

	lines := make([]string, 0, len(res.Items)+len(res.Groups)+2)
	lines = append(lines, panelTitleStyled(pal, title, m.focus == focusItems))

	switch {
	case !hasList:
		lines = append(lines, pal.Muted.Render("No active list. Press Tab, then 'a'."))
	case res.Total == 0:
		lines = append(lines, pal.Muted.Render("List is empty. Press 'a' to add an item."))
	case len(res.Items) == 0:
		lines = append(lines, pal.Muted.Render("No items match the current filters ('c' clears them)."))
	default:
		now := m.now()
		grouped := st.GroupBy != model.GroupNone
		row := 0
		for _, g := range res.Groups {
			if grouped {
				lines = append(lines, pal.Accent.Render(fmt.Sprintf("%s (%d)", g.Key, len(g.Items))))
			}
			for _, it := range g.Items {
				lines = append(lines, m.renderItemRow(pal, st, it, row == m.itemCursor, now))
				row++
			}
		}
	}

	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderItemRow(pal Palette, st model.AppState, it model.Item, atCursor bool, now time.Time) string {
	cursor := " "
	if atCursor {
		cursor = "▸"
	}
	mark := " "
	if slices.Contains(st.SelectedItems, it.ID) {
		mark = pal.Accent.Render("◆")
	}

	textStyle := lipgloss.NewStyle()
	if it.Status == model.StatusCompleted {
		textStyle = textStyle.Faint(true)
	}
	if atCursor {
		textStyle = textStyle.Bold(true)
		if m.focus == focusItems {
			textStyle = pal.Selected
		}
	}

	parts := []string{cursor + mark, pal.Status(it.Status), pal.Priority(it.Priority), textStyle.Render(it.Title)}
	if due := pal.Due(it, now); due != "" {
		parts = append(parts, due)
	}
	if len(it.Labels) > 0 {
		parts = append(parts, pal.Labels(it.Labels))
	}
	return strings.Join(parts, " ")
}

func panelTitleStyled(pal Palette, title string, active bool) string {
	base := lipgloss.NewStyle().Bold(true)
	if !active {
		return base.Render(title)
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, pal.Title.Render(title), " ", pal.Success.Bold(true).Render("*"))
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func trimLastRune(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}
