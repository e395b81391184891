package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"taskboard/app"
	"taskboard/model"
)

func newTestModel(t *testing.T) (*Model, *app.Service) {
	t.Helper()
	svc := app.NewService(app.Options{SearchDebounce: time.Hour})
	t.Cleanup(svc.Close)
	if _, _, err := svc.EnsureDefaultList("Inbox"); err != nil {
		t.Fatalf("EnsureDefaultList: %v", err)
	}
	return NewModel(svc, Options{DefaultListName: "Inbox"}), svc
}

func press(m *Model, keys ...tea.KeyMsg) {
	for _, k := range keys {
		m.Update(k)
	}
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	space = tea.KeyMsg{Type: tea.KeySpace}
)

func addItem(m *Model, title string) {
	press(m, runes("a"), runes(title), enter)
}

func activeItems(t *testing.T, svc *app.Service) []model.Item {
	t.Helper()
	l, ok := svc.State().ActiveList()
	if !ok {
		t.Fatalf("expected an active list")
	}
	return l.Items
}

func TestPaneWidthsPreferNarrowLeftPanel(t *testing.T) {
	m, _ := newTestModel(t)
	m.width = 120

	viewW := m.viewportWidth()
	left, right := m.paneWidths(viewW, 1)
	if left >= right {
		t.Fatalf("expected left panel to be narrower than right (left=%d right=%d)", left, right)
	}
	if left+right+1 != viewW {
		t.Fatalf("expected pane widths to fill available width=%d, got left=%d right=%d", viewW, left, right)
	}
}

func TestPaneWidthsSmallTerminalStillValid(t *testing.T) {
	m, _ := newTestModel(t)
	m.width = 48

	viewW := m.viewportWidth()
	left, right := m.paneWidths(viewW, 1)
	if left < 10 || right < 12 {
		t.Fatalf("expected minimum usable pane widths, got left=%d right=%d", left, right)
	}
	if left+right+1 > viewW {
		t.Fatalf("expected panes not to exceed viewport width=%d, got left=%d right=%d", viewW, left, right)
	}
}

func TestAddItemThroughKeys(t *testing.T) {
	m, svc := newTestModel(t)
	addItem(m, "Buy milk")

	items := activeItems(t, svc)
	if len(items) != 1 || items[0].Title != "Buy milk" {
		t.Fatalf("expected one item titled Buy milk, got %+v", items)
	}
	if m.mode != modeNormal || m.statusErr {
		t.Fatalf("expected normal mode without error, got mode=%d status=%q", m.mode, m.status)
	}
}

func TestBlankTitleKeepsPromptOpen(t *testing.T) {
	m, svc := newTestModel(t)
	press(m, runes("a"), enter)

	if m.mode != modeAddItem || !m.statusErr {
		t.Fatalf("expected the prompt to stay open with an error, got mode=%d status=%q", m.mode, m.status)
	}
	press(m, esc)
	if m.mode != modeNormal || len(activeItems(t, svc)) != 0 {
		t.Fatalf("expected esc to cancel without creating an item")
	}
}

func TestToggleAndPriorityKeys(t *testing.T) {
	m, svc := newTestModel(t)
	addItem(m, "Write report")

	press(m, runes("x"), runes("1"))
	it := activeItems(t, svc)[0]
	if it.Status != model.StatusCompleted {
		t.Fatalf("expected completed, got %s", it.Status)
	}
	if it.Priority != model.PriorityHigh {
		t.Fatalf("expected high priority, got %s", it.Priority)
	}

	press(m, runes("x"))
	if got := activeItems(t, svc)[0].Status; got != model.StatusPending {
		t.Fatalf("expected toggle to reopen as pending, got %s", got)
	}
}

func TestDeleteItemNeedsConfirmation(t *testing.T) {
	m, svc := newTestModel(t)
	addItem(m, "Temp")

	press(m, runes("d"), runes("n"))
	if len(activeItems(t, svc)) != 1 {
		t.Fatalf("expected item to survive a declined delete")
	}
	press(m, runes("d"), runes("y"))
	if len(activeItems(t, svc)) != 0 {
		t.Fatalf("expected item to be deleted after confirming")
	}
}

func TestSelectionAndBulkComplete(t *testing.T) {
	m, svc := newTestModel(t)
	addItem(m, "A")
	addItem(m, "B")
	addItem(m, "C")

	m.itemCursor = 0
	press(m, space, runes("j"), space)
	if got := len(svc.State().SelectedItems); got != 2 {
		t.Fatalf("expected 2 selected, got %d", got)
	}

	press(m, runes("B"))
	items := activeItems(t, svc)
	for i, want := range []model.Status{model.StatusCompleted, model.StatusCompleted, model.StatusPending} {
		if items[i].Status != want {
			t.Fatalf("item %s: expected %s, got %s", items[i].Title, want, items[i].Status)
		}
	}
	if len(svc.State().SelectedItems) != 0 {
		t.Fatalf("expected bulk update to clear the selection")
	}
}

func TestBulkDeleteSelected(t *testing.T) {
	m, svc := newTestModel(t)
	addItem(m, "A")
	addItem(m, "B")

	press(m, runes("X"))
	if m.mode != modeNormal {
		t.Fatalf("expected no confirmation without a selection")
	}

	m.itemCursor = 1
	press(m, space, runes("X"), runes("y"))
	items := activeItems(t, svc)
	if len(items) != 1 || items[0].Title != "A" {
		t.Fatalf("expected only A to remain, got %+v", items)
	}
}

func TestReorderKeysMoveItemAndCursor(t *testing.T) {
	m, svc := newTestModel(t)
	addItem(m, "A")
	addItem(m, "B")

	m.itemCursor = 0
	press(m, runes("J"))
	items := activeItems(t, svc)
	if items[0].Title != "B" || items[1].Title != "A" {
		t.Fatalf("expected B,A after moving A down, got %s,%s", items[0].Title, items[1].Title)
	}
	if m.itemCursor != 1 {
		t.Fatalf("expected cursor to follow the moved item, got %d", m.itemCursor)
	}

	press(m, runes("J"))
	if m.statusErr || !strings.Contains(m.status, "bottom") {
		t.Fatalf("expected an informational bottom message, got %q", m.status)
	}
}

func TestSearchAppliesOnEnterAndEscClears(t *testing.T) {
	m, svc := newTestModel(t)
	addItem(m, "Buy milk")
	addItem(m, "Call mom")

	press(m, runes("/"), runes("milk"))
	if svc.State().Filters.SearchQuery != "" {
		t.Fatalf("expected the query to wait for the debounce")
	}
	press(m, enter)
	if got := svc.State().Filters.SearchQuery; got != "milk" {
		t.Fatalf("expected search query milk, got %q", got)
	}
	if got := len(m.visibleItems()); got != 1 {
		t.Fatalf("expected 1 visible item, got %d", got)
	}

	press(m, esc)
	if got := svc.State().Filters.SearchQuery; got != "" {
		t.Fatalf("expected esc to clear the search, got %q", got)
	}
}

func TestFilterAndGroupKeys(t *testing.T) {
	m, svc := newTestModel(t)

	want := [][]model.Status{{model.StatusPending}, {model.StatusInProgress}, {model.StatusCompleted}, {}}
	for i, w := range want {
		press(m, runes("f"))
		got := svc.State().Filters.Status
		if len(got) != len(w) || (len(w) == 1 && got[0] != w[0]) {
			t.Fatalf("press %d: expected %v, got %v", i+1, w, got)
		}
	}

	press(m, runes("g"))
	if got := svc.State().GroupBy; got != model.GroupPriority {
		t.Fatalf("expected priority grouping, got %s", got)
	}
	press(m, runes("t"))
	if got := svc.State().Theme; got != model.ThemeDark {
		t.Fatalf("expected dark theme, got %s", got)
	}
}

func TestListsPaneSwitchesActiveList(t *testing.T) {
	m, svc := newTestModel(t)
	press(m, tab, runes("a"), runes("Work"), enter)

	st := svc.State()
	if len(st.Lists) != 2 {
		t.Fatalf("expected 2 lists, got %d", len(st.Lists))
	}
	if active, _ := st.ActiveList(); active.Name != "Work" {
		t.Fatalf("expected the new list to become active, got %q", active.Name)
	}

	press(m, runes("k"))
	if active, _ := svc.State().ActiveList(); active.Name != "Inbox" {
		t.Fatalf("expected moving up to activate Inbox, got %q", active.Name)
	}
}

func TestViewRendersListAndItems(t *testing.T) {
	m, _ := newTestModel(t)
	addItem(m, "Buy milk")
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})

	out := m.View()
	for _, want := range []string{"taskboard", "Inbox", "Buy milk", "? help"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected view to contain %q:\n%s", want, out)
		}
	}

	press(m, runes("?"))
	if out := m.View(); !strings.Contains(out, "Items pane") {
		t.Fatalf("expected help overlay:\n%s", out)
	}
}

func TestDeletingLastListRecreatesDefault(t *testing.T) {
	m, svc := newTestModel(t)
	addItem(m, "Temp")

	press(m, tab, runes("d"), runes("y"))
	st := svc.State()
	if len(st.Lists) != 1 || st.Lists[0].Name != "Inbox" || len(st.Lists[0].Items) != 0 {
		t.Fatalf("expected a fresh empty Inbox, got %+v", st.Lists)
	}
	if st.ActiveListID != st.Lists[0].ID {
		t.Fatalf("expected the recreated list to be active")
	}
}

func TestSelectAllTogglesVisibleItems(t *testing.T) {
	m, svc := newTestModel(t)
	addItem(m, "Buy milk")
	addItem(m, "Buy bread")
	addItem(m, "Call mom")

	press(m, runes("/"), runes("buy"), enter)
	press(m, runes("A"))
	if got := len(svc.State().SelectedItems); got != 2 {
		t.Fatalf("expected the 2 visible items selected, got %d", got)
	}

	press(m, runes("A"))
	if got := len(svc.State().SelectedItems); got != 0 {
		t.Fatalf("expected a second press to clear the selection, got %d", got)
	}
}
