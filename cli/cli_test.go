package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/config"
	"taskboard/model"
)

func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	cmd := NewRootCmd()
	var outBuf, errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.String(), errBuf.String(), e
}

// isolate points HOME and the environment at a fresh location and returns
// the data directory to pass via --dir.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvDir, "")
	t.Setenv(config.EnvBackend, "")
	t.Setenv(config.EnvLogLevel, "")
	return t.TempDir()
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	stdout, stderr, err := runCLI(t, append([]string{"--dir", dir}, args...)...)
	require.NoError(t, err, "taskboard %v\nstderr:\n%s\nstdout:\n%s", args, stderr, stdout)
	return stdout
}

func mustJSON[T any](t *testing.T, dir string, args ...string) T {
	t.Helper()
	out := mustRun(t, dir, append(args, "--format", "json")...)
	var env struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &env), "stdout:\n%s", out)
	return env.Data
}

func TestDefaultListIsCreatedOnFirstRun(t *testing.T) {
	dir := isolate(t)

	lists := mustJSON[[]listSummary](t, dir, "lists", "ls")
	require.Len(t, lists, 1)
	assert.Equal(t, "My Tasks", lists[0].Name)
	assert.True(t, lists[0].Active)

	again := mustJSON[[]listSummary](t, dir, "lists", "ls")
	require.Len(t, again, 1, "the default list is created only once")
	assert.Equal(t, lists[0].ID, again[0].ID)
}

func TestListsLifecycle(t *testing.T) {
	dir := isolate(t)

	out := mustRun(t, dir, "lists", "add", "Work", "--use")
	assert.Contains(t, out, `Created list "Work"`)

	lists := mustJSON[[]listSummary](t, dir, "lists", "ls")
	require.Len(t, lists, 2)
	assert.Equal(t, "Work", lists[1].Name)
	assert.True(t, lists[1].Active)

	out = mustRun(t, dir, "lists", "rename", "work", "Office")
	assert.Contains(t, out, `Renamed "Work" to "Office"`)

	out = mustRun(t, dir, "lists", "use", "My Tasks")
	assert.Contains(t, out, "Active list: My Tasks")

	out = mustRun(t, dir, "lists", "rm", "Office")
	assert.Contains(t, out, `Deleted list "Office" and 0 items`)

	_, _, err := runCLI(t, "--dir", dir, "lists", "use", "Nope")
	assert.ErrorContains(t, err, "list not found: Nope")
}

func TestItemsAddEditToggle(t *testing.T) {
	dir := isolate(t)

	it := mustJSON[model.Item](t, dir, "items", "add", "Write", "report",
		"--priority", "high", "--due", "2026-12-01", "--label", "work,urgent", "--description", "Q4")
	assert.Equal(t, "Write report", it.Title)
	assert.Equal(t, model.PriorityHigh, it.Priority)
	assert.Equal(t, model.StatusPending, it.Status)
	assert.Equal(t, []string{"work", "urgent"}, it.Labels)
	require.NotNil(t, it.DueDate)

	short := it.ID[:8]
	edited := mustJSON[model.Item](t, dir, "items", "edit", short, "--status", "in-progress", "--clear-due")
	assert.Equal(t, model.StatusInProgress, edited.Status)
	assert.Nil(t, edited.DueDate)

	toggled := mustJSON[model.Item](t, dir, "items", "toggle", short)
	assert.Equal(t, model.StatusCompleted, toggled.Status)

	shown := mustJSON[model.Item](t, dir, "items", "show", it.ID)
	assert.Equal(t, model.StatusCompleted, shown.Status)
	assert.Equal(t, "Q4", shown.Description)

	out := mustRun(t, dir, "items", "show", short)
	assert.Contains(t, out, "Write report")
	assert.Contains(t, out, "completed")
}

func TestItemsEditRequiresAField(t *testing.T) {
	dir := isolate(t)
	it := mustJSON[model.Item](t, dir, "items", "add", "Thing")

	_, _, err := runCLI(t, "--dir", dir, "items", "edit", it.ID)
	assert.ErrorIs(t, err, errNothingToUpdate)

	_, _, err = runCLI(t, "--dir", dir, "items", "edit", it.ID, "--priority", "urgent")
	assert.ErrorContains(t, err, "invalid priority")

	_, _, err = runCLI(t, "--dir", dir, "items", "rm", "zzzzzzzz")
	assert.ErrorContains(t, err, "item not found")
}

func TestMoveAndBulkCommands(t *testing.T) {
	dir := isolate(t)
	a := mustJSON[model.Item](t, dir, "items", "add", "A")
	b := mustJSON[model.Item](t, dir, "items", "add", "B")
	c := mustJSON[model.Item](t, dir, "items", "add", "C")

	titles := func(items []model.Item) string {
		out := make([]string, len(items))
		for i, it := range items {
			out[i] = it.Title
		}
		return strings.Join(out, ",")
	}

	moved := mustJSON[[]model.Item](t, dir, "items", "move", a.ID, "--down")
	assert.Equal(t, "B,A,C", titles(moved))

	moved = mustJSON[[]model.Item](t, dir, "items", "move", c.ID, "--to", "0")
	assert.Equal(t, "C,B,A", titles(moved))

	_, _, err := runCLI(t, "--dir", dir, "items", "move", c.ID, "--up")
	assert.ErrorContains(t, err, "already at top")

	_, _, err = runCLI(t, "--dir", dir, "items", "move", c.ID)
	assert.ErrorContains(t, err, "exactly one of")

	out := mustRun(t, dir, "items", "bulk-set", a.ID, b.ID, "--status", "completed")
	assert.Contains(t, out, "Updated 2 items")

	items := mustJSON[[]model.Item](t, dir, "items", "ls")
	for _, it := range items {
		want := model.StatusCompleted
		if it.ID == c.ID {
			want = model.StatusPending
		}
		assert.Equal(t, want, it.Status, it.Title)
	}

	out = mustRun(t, dir, "items", "bulk-rm", a.ID, b.ID)
	assert.Contains(t, out, "Deleted 2 items")
	assert.Len(t, mustJSON[[]model.Item](t, dir, "items", "ls"), 1)
}

func TestViewPreviewsAndSavesFilters(t *testing.T) {
	dir := isolate(t)
	mustRun(t, dir, "items", "add", "Urgent bug", "--priority", "high", "--label", "work")
	mustRun(t, dir, "items", "add", "Groceries", "--priority", "low", "--label", "home")
	mustRun(t, dir, "items", "add", "Email", "--priority", "high")

	res := mustJSON[viewJSON](t, dir, "view", "--priority", "high")
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Shown)

	saved := mustJSON[struct {
		Filters model.FilterOptions `json:"filters"`
	}](t, dir, "filters")
	assert.Empty(t, saved.Filters.Priority, "preview does not persist")

	res = mustJSON[viewJSON](t, dir, "view", "--label", "work", "--save", "--group-by", "priority")
	assert.Equal(t, 1, res.Shown)
	assert.Equal(t, model.GroupPriority, res.GroupBy)
	require.Len(t, res.Groups, 1)
	assert.Equal(t, "High", res.Groups[0].Key)

	res = mustJSON[viewJSON](t, dir, "view")
	assert.Equal(t, 1, res.Shown, "saved label filter applies")

	res = mustJSON[viewJSON](t, dir, "view", "--fresh", "--search", "groc")
	assert.Equal(t, 1, res.Shown)
	assert.Equal(t, "Groceries", res.Groups[0].Items[0].Title)

	mustRun(t, dir, "filters", "clear")
	res = mustJSON[viewJSON](t, dir, "view", "--sort", "priority", "--group-by", "none")
	assert.Equal(t, 3, res.Shown)
	assert.Equal(t, model.PriorityLow, res.Groups[0].Items[2].Priority)

	_, _, err := runCLI(t, "--dir", dir, "view", "--range", "this-week", "--from", "2026-01-01")
	assert.Error(t, err)
	_, _, err = runCLI(t, "--dir", dir, "view", "--sort", "random")
	assert.ErrorContains(t, err, "invalid sort")
}

func TestExportResetImport(t *testing.T) {
	dir := isolate(t)
	mustRun(t, dir, "items", "add", "Keep me", "--label", "backup")

	path := filepath.Join(t.TempDir(), "out", "backup.json")
	out := mustRun(t, dir, "export", "--out", path)
	assert.Contains(t, out, "Exported to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var exported map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &exported))
	assert.JSONEq(t, `"1.0.0"`, string(exported["version"]))
	assert.Contains(t, string(exported["lists"]), "Keep me")

	_, _, err = runCLI(t, "--dir", dir, "reset")
	assert.ErrorContains(t, err, "--yes")

	mustRun(t, dir, "theme", "dark")
	mustRun(t, dir, "reset", "--yes")
	items := mustJSON[[]model.Item](t, dir, "items", "ls")
	assert.Empty(t, items, "reset removes items; a fresh default list is created")

	out = mustRun(t, dir, "import", path)
	assert.Contains(t, out, "Imported 1 list")
	items = mustJSON[[]model.Item](t, dir, "items", "ls")
	require.Len(t, items, 1)
	assert.Equal(t, "Keep me", items[0].Title)

	theme := mustJSON[map[string]string](t, dir, "theme")
	assert.Equal(t, "dark", theme["theme"], "reset keeps the theme")
}

func TestImportRejectsInvalidFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"lists":[{"name":"no id"}]}`), 0o644))

	_, _, err := runCLI(t, "--dir", dir, "import", path)
	assert.ErrorContains(t, err, "no valid lists")

	lists := mustJSON[[]listSummary](t, dir, "lists", "ls")
	require.Len(t, lists, 1)
	assert.Equal(t, "My Tasks", lists[0].Name, "a rejected import leaves data untouched")
}

func TestExportToStdout(t *testing.T) {
	dir := isolate(t)
	mustRun(t, dir, "items", "add", "Piped")

	out := mustRun(t, dir, "export", "--out", "-")
	var exported struct {
		Lists []struct {
			Items []struct {
				Title string `json:"title"`
			} `json:"items"`
		} `json:"lists"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &exported))
	require.Len(t, exported.Lists, 1)
	assert.Equal(t, "Piped", exported.Lists[0].Items[0].Title)
}

func TestThemeHistoryAndUsage(t *testing.T) {
	dir := isolate(t)

	assert.Contains(t, mustRun(t, dir, "theme"), "Theme: light")
	assert.Contains(t, mustRun(t, dir, "theme", "toggle"), "Theme: dark")
	_, _, err := runCLI(t, "--dir", dir, "theme", "purple")
	assert.ErrorContains(t, err, "invalid theme")

	mustRun(t, dir, "items", "add", "Tracked")
	history := mustJSON[[]model.HistoryEntry](t, dir, "history")
	var actions []string
	for _, e := range history {
		actions = append(actions, e.Action)
	}
	assert.Contains(t, actions, "CREATE_TODO_ITEM")
	assert.Contains(t, actions, "SET_THEME")

	out := mustRun(t, dir, "usage")
	assert.Contains(t, out, "of 5.0 MiB")
}

func TestSQLiteBackend(t *testing.T) {
	dir := isolate(t)

	mustRun(t, dir, "--backend", "sqlite", "lists", "add", "Stored")
	lists := mustJSON[[]listSummary](t, dir, "--backend", "sqlite", "lists", "ls")
	require.Len(t, lists, 2)
	assert.Equal(t, "Stored", lists[1].Name)

	_, err := os.Stat(filepath.Join(dir, sqliteFile))
	assert.NoError(t, err)
}

func TestInvalidGlobalFlags(t *testing.T) {
	dir := isolate(t)

	_, _, err := runCLI(t, "--dir", dir, "--backend", "redis", "lists", "ls")
	assert.ErrorContains(t, err, "storage.backend")

	_, _, err = runCLI(t, "--dir", dir, "--format", "yaml", "lists", "ls")
	assert.ErrorContains(t, err, "invalid format")
}

func TestResolveList(t *testing.T) {
	s := model.NewState()
	s.Lists = []model.List{
		{ID: "aaaa1111", Name: "Work"},
		{ID: "aaaa2222", Name: "Home"},
		{ID: "bbbb3333", Name: "home"},
	}
	s.ActiveListID = "aaaa1111"

	l, err := resolveList(s, "")
	require.NoError(t, err)
	assert.Equal(t, "Work", l.Name)

	l, err = resolveList(s, "WORK")
	require.NoError(t, err)
	assert.Equal(t, "aaaa1111", l.ID)

	_, err = resolveList(s, "home")
	assert.ErrorAs(t, err, &ambiguousError{})

	_, err = resolveList(s, "aaaa")
	assert.ErrorAs(t, err, &ambiguousError{})

	l, err = resolveList(s, "bbbb")
	require.NoError(t, err)
	assert.Equal(t, "bbbb3333", l.ID)

	_, err = resolveList(s, "bbb")
	assert.ErrorAs(t, err, &notFoundError{}, "prefixes shorter than four characters do not match")
}

func TestConfigInitAndShow(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "taskboard.yaml")

	stdout, _, err := runCLI(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote "+path)

	_, _, err = runCLI(t, "--config", path, "config", "init")
	assert.ErrorContains(t, err, "--force")

	stdout, _, err = runCLI(t, "--config", path, "--backend", "sqlite", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "backend: sqlite")
	assert.Contains(t, stdout, "defaultListName: My Tasks")
}
