package app

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"taskboard/model"
	"taskboard/state"
	"taskboard/store"
	"taskboard/view"
)

const (
	DefaultSearchDebounce = 300 * time.Millisecond
	DefaultListName       = "My Tasks"
	historyLimit          = 50
)

var (
	ErrListNotFound    = errors.New("list not found")
	ErrItemNotFound    = errors.New("item not found")
	ErrInvalidName     = errors.New("name must not be empty")
	ErrInvalidTitle    = errors.New("title must not be empty")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidGroupBy  = errors.New("invalid group by")
	ErrInvalidTheme    = errors.New("invalid theme")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrItemAtTop       = errors.New("item is already at top")
	ErrItemAtBottom    = errors.New("item is already at bottom")
	ErrNothingSelected = errors.New("no items selected")
)

// Options configures a Service. Zero values pick in-memory storage, the
// wall clock, random UUIDs, slog.Default and a 300ms search debounce.
type Options struct {
	Storage        *store.Storage
	Clock          func() time.Time
	NewID          func() string
	Logger         *slog.Logger
	SearchDebounce time.Duration
}

// Service validates requests, builds actions and dispatches them. Every
// transition is persisted by a store listener.
type Service struct {
	store   *state.Store
	storage *store.Storage
	now     func() time.Time
	newID   func() string
	logger  *slog.Logger
	search  *Debouncer
	memo    view.Memo

	hydrating   atomic.Bool
	historyMu   sync.Mutex
	history     []model.HistoryEntry
	unsubscribe func()
}

func NewService(opts Options) *Service {
	s := &Service{
		storage: opts.Storage,
		now:     opts.Clock,
		newID:   opts.NewID,
		logger:  opts.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.storage == nil {
		s.storage = store.New(store.NewMemoryKV(), s.logger, s.now)
	}
	debounce := opts.SearchDebounce
	if debounce <= 0 {
		debounce = DefaultSearchDebounce
	}
	s.search = NewDebouncer(debounce)
	s.store = state.NewStore(model.NewState())
	s.unsubscribe = s.store.Subscribe(s.persist)
	return s
}

// Close drops a pending search update and stops persisting.
func (s *Service) Close() {
	s.search.Cancel()
	s.unsubscribe()
}

func (s *Service) State() model.AppState { return s.store.State() }

func (s *Service) Snapshot() state.Snapshot { return s.store.Snapshot() }

// Subscribe registers fn for every later transition.
func (s *Service) Subscribe(fn state.Listener) func() { return s.store.Subscribe(fn) }

// Visible returns the filtered, grouped active list.
func (s *Service) Visible(now time.Time) view.Result {
	return s.memo.Visible(s.store.Snapshot(), now)
}

func (s *Service) dispatch(a state.Action) state.Snapshot {
	s.logger.Debug("Dispatch", slog.String("action", string(a.Kind())))
	return s.store.Dispatch(a)
}

// EnsureDefaultList creates a list named name when there are none.
func (s *Service) EnsureDefaultList(name string) (model.List, bool, error) {
	if l, ok := s.State().ActiveList(); ok {
		return l, false, nil
	}
	if st := s.State(); len(st.Lists) > 0 {
		return st.Lists[0], false, nil
	}
	if strings.TrimSpace(name) == "" {
		name = DefaultListName
	}
	l, err := s.CreateList(name)
	return l, err == nil, err
}

func (s *Service) CreateList(name string) (model.List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.List{}, ErrInvalidName
	}
	list := model.NewList(s.newID(), name, s.now())
	s.dispatch(state.CreateList{List: list})
	return list, nil
}

func (s *Service) DeleteList(id string) error {
	if !s.State().HasList(id) {
		return ErrListNotFound
	}
	s.dispatch(state.DeleteList{ID: id})
	return nil
}

func (s *Service) UpdateList(id string, patch state.ListPatch) (model.List, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return model.List{}, ErrInvalidName
		}
		patch.Name = &name
	}
	if !s.State().HasList(id) {
		return model.List{}, ErrListNotFound
	}
	snap := s.dispatch(state.UpdateList{ID: id, Patch: patch, At: s.now()})
	l, _ := snap.State.FindList(id)
	return l, nil
}

func (s *Service) RenameList(id, name string) (model.List, error) {
	return s.UpdateList(id, state.ListPatch{Name: &name})
}

// SetActiveList switches lists. Unknown ids are rejected here because the
// store does not check them.
func (s *Service) SetActiveList(id string) error {
	if !s.State().HasList(id) {
		return ErrListNotFound
	}
	s.dispatch(state.SetActiveList{ID: id})
	return nil
}

func (s *Service) CreateItem(title, listID string, opts model.ItemOptions) (model.Item, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Item{}, ErrInvalidTitle
	}
	if opts.Priority != "" && !opts.Priority.Valid() {
		return model.Item{}, fmt.Errorf("%w: %q", ErrInvalidPriority, opts.Priority)
	}
	if opts.Status != "" && !opts.Status.Valid() {
		return model.Item{}, fmt.Errorf("%w: %q", ErrInvalidStatus, opts.Status)
	}
	if !s.State().HasList(listID) {
		return model.Item{}, ErrListNotFound
	}
	now := s.now()
	item := model.NewItem(s.newID(), title, listID, now, opts)
	s.dispatch(state.CreateItem{Item: item, At: now})
	return item, nil
}

func (s *Service) UpdateItem(id string, patch state.ItemPatch) (model.Item, error) {
	patch, err := validatePatch(patch)
	if err != nil {
		return model.Item{}, err
	}
	if _, ok := s.State().FindItem(id); !ok {
		return model.Item{}, ErrItemNotFound
	}
	snap := s.dispatch(state.UpdateItem{ID: id, Patch: patch, At: s.now()})
	it, _ := snap.State.FindItem(id)
	return it, nil
}

func (s *Service) DeleteItem(id string) error {
	if _, ok := s.State().FindItem(id); !ok {
		return ErrItemNotFound
	}
	s.dispatch(state.DeleteItem{ID: id, At: s.now()})
	return nil
}

// ToggleStatus flips completed to pending and anything else to completed.
func (s *Service) ToggleStatus(id string) (model.Item, error) {
	it, ok := s.State().FindItem(id)
	if !ok {
		return model.Item{}, ErrItemNotFound
	}
	next := it.Status.Toggled()
	return s.UpdateItem(id, state.ItemPatch{Status: &next})
}

func (s *Service) SetPriority(id string, p model.Priority) (model.Item, error) {
	return s.UpdateItem(id, state.ItemPatch{Priority: &p})
}

func (s *Service) SetTheme(t model.Theme) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, t)
	}
	s.dispatch(state.SetTheme{Theme: t})
	return nil
}

func (s *Service) ToggleTheme() model.Theme {
	next := s.State().Theme.Toggled()
	s.dispatch(state.SetTheme{Theme: next})
	return next
}

func (s *Service) SetGroupBy(g model.GroupBy) error {
	if !g.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidGroupBy, g)
	}
	s.dispatch(state.SetGroupBy{GroupBy: g})
	return nil
}

// CycleGroupBy advances to the next grouping mode.
func (s *Service) CycleGroupBy() model.GroupBy {
	next := s.State().GroupBy.Next()
	s.dispatch(state.SetGroupBy{GroupBy: next})
	return next
}

func (s *Service) SetFilters(patch state.FilterPatch) error {
	if patch.Priority != nil {
		for _, p := range *patch.Priority {
			if !p.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidPriority, p)
			}
		}
	}
	if patch.Status != nil {
		for _, st := range *patch.Status {
			if !st.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidStatus, st)
			}
		}
	}
	if patch.Labels != nil {
		labels := model.NormalizeLabels(*patch.Labels)
		patch.Labels = &labels
	}
	s.dispatch(state.SetFilters{Patch: patch})
	return nil
}

// ClearFilters resets every filter and drops a pending search update.
func (s *Service) ClearFilters() {
	s.search.Cancel()
	s.dispatch(state.ClearFilters{})
}

// SetSearchQuery applies q once no other query arrives within the debounce
// window. Only the last query in a burst reaches the store.
func (s *Service) SetSearchQuery(q string) {
	s.search.Trigger(func() {
		s.dispatch(state.SetFilters{Patch: state.FilterPatch{SearchQuery: &q}})
	})
}

// FlushSearch applies a pending search query immediately.
func (s *Service) FlushSearch() { s.search.Flush() }

// CancelSearch drops a pending search query.
func (s *Service) CancelSearch() { s.search.Cancel() }

func (s *Service) SelectItems(ids []string) {
	s.dispatch(state.SelectItems{IDs: dedupe(ids)})
}

// ToggleSelected adds id to the selection or removes it.
func (s *Service) ToggleSelected(id string) error {
	if _, ok := s.State().FindItem(id); !ok {
		return ErrItemNotFound
	}
	sel := s.State().SelectedItems
	if i := slices.Index(sel, id); i >= 0 {
		sel = slices.Delete(sel, i, i+1)
	} else {
		sel = append(sel, id)
	}
	s.SelectItems(sel)
	return nil
}

// BulkUpdate applies patch to ids, or to the selection when ids is empty,
// and clears the selection. It returns how many items existed.
func (s *Service) BulkUpdate(ids []string, patch state.ItemPatch) (int, error) {
	patch, err := validatePatch(patch)
	if err != nil {
		return 0, err
	}
	ids, n, err := s.bulkTargets(ids)
	if err != nil {
		return 0, err
	}
	s.dispatch(state.BulkUpdateItems{IDs: ids, Patch: patch, At: s.now()})
	return n, nil
}

// BulkDelete removes ids, or the selection when ids is empty, and clears
// the selection.
func (s *Service) BulkDelete(ids []string) (int, error) {
	ids, n, err := s.bulkTargets(ids)
	if err != nil {
		return 0, err
	}
	s.dispatch(state.BulkDeleteItems{IDs: ids, At: s.now()})
	return n, nil
}

func (s *Service) bulkTargets(ids []string) ([]string, int, error) {
	st := s.State()
	if len(ids) == 0 {
		ids = st.SelectedItems
	}
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, 0, ErrNothingSelected
	}
	n := 0
	for _, id := range ids {
		if _, ok := st.FindItem(id); ok {
			n++
		}
	}
	return ids, n, nil
}

// Reorder moves the item at from to to within listID.
func (s *Service) Reorder(listID string, from, to int) error {
	l, ok := s.State().FindList(listID)
	if !ok {
		return ErrListNotFound
	}
	if from < 0 || from >= len(l.Items) || to < 0 || to >= len(l.Items) {
		return fmt.Errorf("%w: %d -> %d (list has %d items)", ErrIndexOutOfRange, from, to, len(l.Items))
	}
	if from == to {
		return nil
	}
	s.dispatch(state.ReorderItems{ListID: listID, From: from, To: to, At: s.now()})
	return nil
}

func (s *Service) MoveItemUp(id string) (model.Item, error) {
	return s.moveItem(id, -1)
}

func (s *Service) MoveItemDown(id string) (model.Item, error) {
	return s.moveItem(id, 1)
}

func (s *Service) moveItem(id string, direction int) (model.Item, error) {
	it, ok := s.State().FindItem(id)
	if !ok {
		return model.Item{}, ErrItemNotFound
	}
	l, _ := s.State().FindList(it.ListID)
	from := l.IndexOf(id)
	to := from + direction
	if to < 0 {
		return model.Item{}, ErrItemAtTop
	}
	if to >= len(l.Items) {
		return model.Item{}, ErrItemAtBottom
	}
	snap := s.dispatch(state.ReorderItems{ListID: l.ID, From: from, To: to, At: s.now()})
	moved, _ := snap.State.FindItem(id)
	return moved, nil
}

func validatePatch(p state.ItemPatch) (state.ItemPatch, error) {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return p, ErrInvalidTitle
		}
		p.Title = &title
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return p, fmt.Errorf("%w: %q", ErrInvalidPriority, *p.Priority)
	}
	if p.Status != nil && !p.Status.Valid() {
		return p, fmt.Errorf("%w: %q", ErrInvalidStatus, *p.Status)
	}
	if p.Labels != nil {
		labels := model.NormalizeLabels(*p.Labels)
		p.Labels = &labels
	}
	return p, nil
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
