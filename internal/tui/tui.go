package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"
	"go.uber.org/zap"

	"github.com/Joseda-hg/mindtask/internal/db"
	"github.com/Joseda-hg/mindtask/internal/model"
	"github.com/Joseda-hg/mindtask/internal/query"
	"github.com/Joseda-hg/mindtask/internal/records"
)

const (
	viewHeader  = "header"
	viewFooter  = "footer"
	viewList    = "list"
	viewFilters = "filters"
	viewDetail  = "detail"
	viewSearch  = "search"
	viewPrompt  = "prompt"
	viewForm    = "form"
	viewHelp    = "help"
)

type UI struct {
	store  *db.Store
	gui    *gocui.Gui
	logger *zap.Logger
	now    func() time.Time

	notesEngine *query.Engine[model.Note]
	tasksEngine *query.Engine[model.Task]

	scope      model.Scope
	specs      map[model.Scope]query.Spec
	activeView map[model.Scope]string

	notes       []model.Note
	tasks       []model.Task
	total       int
	filters     []filterEntry
	history     []model.HistoryEntry
	diagnostics []query.Diagnostic

	selectedList    int
	selectedFilters int
	focus           string

	form         *formState
	formEditor   *formEditor
	searchActive bool
	promptActive bool
	helpActive   bool
	status       string
}

type formState struct {
	scope    model.Scope
	recordID int64
	fields   []formField
	index    int
	tags     []string
}

type formEditor struct {
	ui *UI
}

func Run(store *db.Store, logger *zap.Logger) error {
	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return err
	}
	defer gui.Close()

	ui := newUI(store, logger)
	ui.gui = gui
	gui.Mouse = true

	gui.SetManagerFunc(ui.layout)
	if err := ui.bindKeys(gui); err != nil {
		return err
	}
	if err := ui.load(); err != nil {
		return err
	}

	if err := gui.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}

	return nil
}

func newUI(store *db.Store, logger *zap.Logger) *UI {
	if logger == nil {
		logger = zap.NewNop()
	}
	ui := &UI{
		store:      store,
		logger:     logger,
		now:        time.Now,
		scope:      model.ScopeNotes,
		specs:      make(map[model.Scope]query.Spec),
		activeView: make(map[model.Scope]string),
		focus:      viewList,
	}
	collect := query.WithDiagnostics(func(d query.Diagnostic) {
		ui.diagnostics = append(ui.diagnostics, d)
	})
	ui.notesEngine = records.Notes(query.WithLogger(logger), collect)
	ui.tasksEngine = records.Tasks(query.WithLogger(logger), collect)
	ui.formEditor = &formEditor{ui: ui}
	return ui
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	if err := gui.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, u.quit); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'q', gocui.ModNone, u.quit); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'r', gocui.ModNone, u.reload); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'g', gocui.ModNone, u.clearFilters); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'n', gocui.ModNone, u.showNotes); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 't', gocui.ModNone, u.showTasks); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 's', gocui.ModNone, u.cycleSort); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'o', gocui.ModNone, u.flipDirection); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'b', gocui.ModNone, u.toggleBookmark); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'x', gocui.ModNone, u.toggleComplete); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'w', gocui.ModNone, u.startSaveView); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'v', gocui.ModNone, u.nextView); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'a', gocui.ModNone, u.addRecord); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'e', gocui.ModNone, u.editRecord); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'd', gocui.ModNone, u.deleteRecord); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", '/', gocui.ModNone, u.startSearch); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", '?', gocui.ModNone, u.toggleHelp); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", gocui.KeyTab, gocui.ModNone, u.switchFocus); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'j', gocui.ModNone, u.moveDown); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'k', gocui.ModNone, u.moveUp); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", gocui.KeyArrowDown, gocui.ModNone, u.moveDown); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", gocui.KeyArrowUp, gocui.ModNone, u.moveUp); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewFilters, gocui.KeySpace, gocui.ModNone, u.toggleFilter); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewFilters, gocui.KeyEnter, gocui.ModNone, u.toggleFilter); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewSearch, gocui.KeyEnter, gocui.ModNone, u.submitSearch); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewSearch, gocui.KeyEsc, gocui.ModNone, u.cancelSearch); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewPrompt, gocui.KeyEnter, gocui.ModNone, u.submitPrompt); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewPrompt, gocui.KeyEsc, gocui.ModNone, u.cancelPrompt); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyEnter, gocui.ModNone, u.submitForm); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyTab, gocui.ModNone, u.nextFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyBacktab, gocui.ModNone, u.prevFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyArrowDown, gocui.ModNone, u.nextFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyArrowUp, gocui.ModNone, u.prevFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyEsc, gocui.ModNone, u.cancelForm); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewHelp, gocui.KeyEsc, gocui.ModNone, u.closeHelp); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewHelp, 'q', gocui.ModNone, u.closeHelp); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewHelp, '?', gocui.ModNone, u.closeHelp); err != nil {
		return err
	}
	return nil
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 0, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	headerView.Wrap = true
	headerView.FgColor = gocui.ColorDefault
	u.renderHeader(headerView)

	footerY1 := max(maxY-2, 1)
	footerY0 := max(footerY1-2, 1)
	footerView, err := gui.SetView(viewFooter, 0, footerY0, maxX-1, footerY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Frame = false
	footerView.Wrap = true
	footerView.FgColor = gocui.ColorDefault | gocui.AttrDim
	footerView.BgColor = gocui.ColorDefault
	u.renderFooter(footerView)

	bodyTop := 1
	bodyBottom := footerY0 - 1
	if bodyBottom < bodyTop {
		return nil
	}

	l := computeLayout(maxX, bodyBottom-bodyTop+1)
	listX1 := l.listWidth - 1
	rightX0 := min(listX1+1, maxX-1)
	filtersY1 := bodyTop + l.filtersHeight - 1

	listView, err := gui.SetView(viewList, 0, bodyTop, listX1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		listView.TitleColor = gocui.ColorGreen
	}
	listView.Title = u.listTitle()
	applyViewStyle(listView, u.focus == viewList, true)
	u.renderList(listView)

	filtersView, err := gui.SetView(viewFilters, rightX0, bodyTop, maxX-1, filtersY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		filtersView.Title = "Filters"
		filtersView.TitleColor = gocui.ColorYellow
	}
	applyViewStyle(filtersView, u.focus == viewFilters, true)
	u.renderFilters(filtersView)

	detailView, err := gui.SetView(viewDetail, rightX0, filtersY1+1, maxX-1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		detailView.Title = "Detail"
		detailView.Wrap = true
	}
	applyViewStyle(detailView, false, false)
	u.renderDetail(detailView)

	_, _ = gui.SetViewOnTop(viewHeader)
	_, _ = gui.SetViewOnTop(viewFooter)

	if u.searchActive {
		if err := u.showSearch(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewSearch)
	}

	if u.promptActive {
		if err := u.showPrompt(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewPrompt)
	}

	if u.form != nil {
		if err := u.showForm(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewForm)
	}

	if u.helpActive {
		if err := u.showHelp(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewHelp)
	}

	if gui.CurrentView() == nil {
		_, _ = gui.SetCurrentView(u.focus)
	}

	gui.Cursor = u.searchActive || u.promptActive || u.form != nil

	return nil
}

type layout struct {
	listWidth     int
	filtersHeight int
}

func computeLayout(width, height int) layout {
	safeWidth := max(width, 40)
	safeHeight := max(height, 8)

	listWidth := safeWidth * 3 / 5
	if listWidth < 30 {
		listWidth = 30
	}
	if listWidth > safeWidth-24 {
		listWidth = safeWidth / 2
	}

	filtersHeight := safeHeight / 2
	if filtersHeight < 4 {
		filtersHeight = 4
	}
	if safeHeight-filtersHeight < 4 {
		filtersHeight = max(safeHeight-4, 3)
	}

	return layout{listWidth: listWidth, filtersHeight: filtersHeight}
}

// spec returns the active scope's query anchored at the current time.
func (u *UI) spec() query.Spec {
	spec := u.specs[u.scope]
	spec.Now = u.now()
	return spec
}

func (u *UI) setSpec(spec query.Spec) {
	spec.Now = time.Time{}
	u.specs[u.scope] = spec
}

func (u *UI) load() error {
	ctx := context.Background()
	spec := u.spec()
	u.diagnostics = nil

	switch u.scope {
	case model.ScopeTasks:
		tasks, err := u.store.ListTasks(ctx)
		if err != nil {
			return err
		}
		result := u.tasksEngine.Run(tasks, spec)
		u.tasks = result.Records
		u.total = result.Total
		u.filters = buildFilterEntries(u.tasksEngine.Categories(), u.tasksEngine.Options, result.Counts, spec)
	default:
		notes, err := u.store.ListNotes(ctx)
		if err != nil {
			return err
		}
		result := u.notesEngine.Run(notes, spec)
		u.notes = result.Records
		u.total = result.Total
		u.filters = buildFilterEntries(u.notesEngine.Categories(), u.notesEngine.Options, result.Counts, spec)
	}

	u.selectedList = clamp(u.selectedList, u.listLen())
	u.selectedFilters = clamp(u.selectedFilters, len(u.filters))
	return u.loadHistory()
}

func (u *UI) loadHistory() error {
	u.history = nil
	task := u.selectedTask()
	if task == nil {
		return nil
	}
	history, err := u.store.ListHistory(context.Background(), task.ID)
	if err != nil {
		return err
	}
	u.history = history
	return nil
}

func (u *UI) listLen() int {
	if u.scope == model.ScopeTasks {
		return len(u.tasks)
	}
	return len(u.notes)
}

func (u *UI) listTitle() string {
	if u.scope == model.ScopeTasks {
		return "Tasks"
	}
	return "Notes"
}

func (u *UI) sortLabel() (string, query.Direction) {
	spec := u.specs[u.scope]
	key, dir := spec.Sort, spec.Direction
	if key == "" {
		key = u.defaultSort()
	}
	if dir == "" {
		dir = u.sortDirection(key)
	}
	return key, dir
}

func (u *UI) renderHeader(view *gocui.View) {
	view.Clear()
	spec := u.specs[u.scope]
	search := strings.TrimSpace(spec.Query)
	if search == "" {
		search = "type / to search"
	}
	viewLabel := u.activeView[u.scope]
	if viewLabel == "" {
		viewLabel = "none"
	}
	key, dir := u.sortLabel()

	fmt.Fprintf(view, "%s %d/%d | Search: %s | Sort: %s %s | Filters: %d | View: %s",
		u.listTitle(), u.listLen(), u.total, search, key, dir, spec.ActiveFilters(), viewLabel)
}

func (u *UI) renderFooter(view *gocui.View) {
	view.Clear()
	view.SetOrigin(0, 0)
	view.SetCursor(0, 0)

	fmt.Fprintln(view, "n notes | t tasks | a add | e edit | d delete | b bookmark | x done | w save view | v next view")
	fmt.Fprintln(view, "/ search | s sort | o direction | space filter | g clear | tab pane | r reload | ? help | q quit")
	switch {
	case u.status != "":
		fmt.Fprint(view, u.status)
	case len(u.diagnostics) > 0:
		parts := make([]string, 0, len(u.diagnostics))
		for _, d := range u.diagnostics {
			parts = append(parts, d.String())
		}
		fmt.Fprint(view, "ignored: "+strings.Join(parts, "; "))
	}
}

func (u *UI) renderList(view *gocui.View) {
	view.Clear()
	now := u.now()
	focused := u.focus == viewList
	lines := make([]string, 0, u.listLen())
	if u.scope == model.ScopeTasks {
		for _, task := range u.tasks {
			lines = append(lines, formatTaskSummary(task, now))
		}
	} else {
		for _, note := range u.notes {
			lines = append(lines, formatNoteSummary(note, now))
		}
	}
	for i, line := range lines {
		prefix := " "
		if i == u.selectedList {
			if focused {
				prefix = ">"
			} else {
				prefix = "*"
			}
		}
		fmt.Fprintf(view, "%s %s\n", prefix, line)
	}
	if row, ok := cursorRow(u.selectedList, len(lines)); focused && ok {
		view.SetCursor(0, row)
	}
}

func (u *UI) renderFilters(view *gocui.View) {
	view.Clear()
	current := ""
	for index, entry := range u.filters {
		if entry.Category != current {
			current = entry.Category
			fmt.Fprintf(view, "%s:\n", current)
		}
		prefix := " "
		if index == u.selectedFilters {
			prefix = ">"
		}
		marker := " "
		if entry.Selected {
			marker = "x"
		}
		fmt.Fprintf(view, "%s [%s] %s (%d)\n", prefix, marker, entry.Value, entry.Count)
	}
}

func (u *UI) renderDetail(view *gocui.View) {
	view.Clear()
	now := u.now()
	var lines []string
	if task := u.selectedTask(); task != nil {
		lines = taskDetail(*task, u.history, now)
	} else if note := u.selectedNote(); note != nil {
		lines = noteDetail(*note, now)
	}
	fmt.Fprint(view, strings.Join(lines, "\n"))
}

func (u *UI) selectedNote() *model.Note {
	if u.scope != model.ScopeNotes || u.selectedList < 0 || u.selectedList >= len(u.notes) {
		return nil
	}
	note := u.notes[u.selectedList]
	return &note
}

func (u *UI) selectedTask() *model.Task {
	if u.scope != model.ScopeTasks || u.selectedList < 0 || u.selectedList >= len(u.tasks) {
		return nil
	}
	task := u.tasks[u.selectedList]
	return &task
}

func (u *UI) switchFocus(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.focus == viewList {
		u.focus = viewFilters
	} else {
		u.focus = viewList
	}
	if gui != nil {
		_, _ = gui.SetCurrentView(u.focus)
	}
	return nil
}

func (u *UI) showNotes(gui *gocui.Gui, _ *gocui.View) error {
	return u.setScope(model.ScopeNotes)
}

func (u *UI) showTasks(gui *gocui.Gui, _ *gocui.View) error {
	return u.setScope(model.ScopeTasks)
}

func (u *UI) setScope(scope model.Scope) error {
	if u.inputActive() || u.scope == scope {
		return nil
	}
	u.scope = scope
	u.selectedList = 0
	u.selectedFilters = 0
	u.status = ""
	return u.load()
}

func (u *UI) moveDown(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewFilters:
		if u.selectedFilters < len(u.filters)-1 {
			u.selectedFilters++
		}
	default:
		if u.selectedList < u.listLen()-1 {
			u.selectedList++
			return u.loadHistory()
		}
	}
	return nil
}

func (u *UI) moveUp(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewFilters:
		if u.selectedFilters > 0 {
			u.selectedFilters--
		}
	default:
		if u.selectedList > 0 {
			u.selectedList--
			return u.loadHistory()
		}
	}
	return nil
}

func (u *UI) reload(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.status = ""
	return u.load()
}

func (u *UI) clearFilters(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	spec := u.specs[u.scope].ClearFilters()
	spec.Query = ""
	u.setSpec(spec)
	delete(u.activeView, u.scope)
	return u.reload(gui, nil)
}

func (u *UI) toggleFilter(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.focus != viewFilters {
		return nil
	}
	if u.selectedFilters < 0 || u.selectedFilters >= len(u.filters) {
		return nil
	}
	entry := u.filters[u.selectedFilters]
	u.setSpec(u.specs[u.scope].Toggle(entry.Category, entry.Value))
	u.selectedList = 0
	return u.reload(gui, nil)
}

func (u *UI) cycleSort(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	keys := u.sortKeys()
	current, _ := u.sortLabel()
	next := cycleChoice(keys, current, 1)

	spec := u.specs[u.scope].Clone()
	spec.Sort = next
	spec.Direction = u.sortDirection(next)
	u.setSpec(spec)
	return u.reload(gui, nil)
}

func (u *UI) flipDirection(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	key, dir := u.sortLabel()
	spec := u.specs[u.scope].Clone()
	spec.Sort = key
	spec.Direction = dir.Flip()
	u.setSpec(spec)
	return u.reload(gui, nil)
}

func (u *UI) sortKeys() []string {
	if u.scope == model.ScopeTasks {
		return u.tasksEngine.SortKeys()
	}
	return u.notesEngine.SortKeys()
}

func (u *UI) defaultSort() string {
	if u.scope == model.ScopeTasks {
		return u.tasksEngine.DefaultSort()
	}
	return u.notesEngine.DefaultSort()
}

func (u *UI) sortDirection(key string) query.Direction {
	if u.scope == model.ScopeTasks {
		return u.tasksEngine.SortDirection(key)
	}
	return u.notesEngine.SortDirection(key)
}

func (u *UI) toggleBookmark(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	note := u.selectedNote()
	if note == nil {
		return nil
	}
	if _, err := u.store.SetNoteBookmarked(context.Background(), note.ID, !note.Bookmarked); err != nil {
		u.status = err.Error()
		return nil
	}
	u.status = ""
	return u.load()
}

func (u *UI) toggleComplete(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	task := u.selectedTask()
	if task == nil {
		return nil
	}
	status := model.StatusCompleted
	if task.Status == model.StatusCompleted {
		status = model.StatusPending
	}
	if _, err := u.store.SetTaskStatus(context.Background(), task.ID, status); err != nil {
		u.status = err.Error()
		return nil
	}
	u.status = ""
	return u.load()
}

func (u *UI) deleteRecord(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.focus != viewList {
		return nil
	}
	var err error
	if task := u.selectedTask(); task != nil {
		err = u.store.DeleteTask(context.Background(), task.ID)
	} else if note := u.selectedNote(); note != nil {
		err = u.store.DeleteNote(context.Background(), note.ID)
	} else {
		return nil
	}
	if err != nil {
		u.status = err.Error()
		return nil
	}
	u.status = ""
	return u.load()
}

func (u *UI) startSearch(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.searchActive = true
	return nil
}

func (u *UI) showSearch(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(30, maxX/2)
	height := 3
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewSearch, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Search " + u.listTitle()
		view.Wrap = true
		view.Clear()
		fmt.Fprint(view, u.specs[u.scope].Query)
	}
	view.Editable = true
	view.Editor = gocui.DefaultEditor
	_, _ = gui.SetCurrentView(viewSearch)
	return nil
}

func (u *UI) submitSearch(gui *gocui.Gui, view *gocui.View) error {
	u.searchActive = false
	_ = gui.DeleteView(viewSearch)
	_, _ = gui.SetCurrentView(u.focus)
	return u.applySearch(view.Buffer())
}

func (u *UI) cancelSearch(gui *gocui.Gui, _ *gocui.View) error {
	u.searchActive = false
	_ = gui.DeleteView(viewSearch)
	_, _ = gui.SetCurrentView(u.focus)
	return nil
}

// applySearch sets the text query and remembers it as a recent search.
func (u *UI) applySearch(value string) error {
	value = strings.TrimSpace(value)
	spec := u.specs[u.scope].Clone()
	spec.Query = value
	u.setSpec(spec)
	u.selectedList = 0
	u.status = ""
	if value != "" {
		if err := u.store.RecordSearch(context.Background(), u.scope, value); err != nil {
			u.logger.Warn("record search failed", zap.String("scope", string(u.scope)), zap.Error(err))
		}
	}
	return u.load()
}

func (u *UI) startSaveView(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.promptActive = true
	return nil
}

func (u *UI) showPrompt(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(30, maxX/3)
	height := 3
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewPrompt, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Save view as"
		view.Clear()
		fmt.Fprint(view, u.activeView[u.scope])
	}
	view.Editable = true
	view.Editor = gocui.DefaultEditor
	_, _ = gui.SetCurrentView(viewPrompt)
	return nil
}

func (u *UI) submitPrompt(gui *gocui.Gui, view *gocui.View) error {
	u.promptActive = false
	_ = gui.DeleteView(viewPrompt)
	_, _ = gui.SetCurrentView(u.focus)
	return u.saveView(view.Buffer())
}

func (u *UI) cancelPrompt(gui *gocui.Gui, _ *gocui.View) error {
	u.promptActive = false
	_ = gui.DeleteView(viewPrompt)
	_, _ = gui.SetCurrentView(u.focus)
	return nil
}

// saveView stores the active query under name, replacing a view of the same
// name in this scope.
func (u *UI) saveView(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		u.status = "view name required"
		return nil
	}
	saved, err := u.store.SaveView(context.Background(), model.View{Name: name, Scope: u.scope, Spec: u.specs[u.scope]})
	if err != nil {
		u.status = err.Error()
		return nil
	}
	u.activeView[u.scope] = saved.Name
	u.status = fmt.Sprintf("saved view %q", saved.Name)
	return nil
}

// nextView applies the saved view following the active one, wrapping around.
func (u *UI) nextView(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	views, err := u.store.ListViews(context.Background(), u.scope)
	if err != nil {
		u.status = err.Error()
		return nil
	}
	if len(views) == 0 {
		u.status = "no saved views"
		return nil
	}

	next := views[0]
	for i, view := range views {
		if view.Name == u.activeView[u.scope] {
			next = views[(i+1)%len(views)]
			break
		}
	}
	u.setSpec(next.Spec)
	u.activeView[u.scope] = next.Name
	u.selectedList = 0
	u.status = ""
	return u.load()
}

func (u *UI) addRecord(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.scope == model.ScopeTasks {
		u.form = &formState{scope: u.scope, fields: buildTaskFormFields(nil, u.now().Location())}
	} else {
		u.form = u.noteForm(nil)
	}
	return nil
}

func (u *UI) editRecord(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if task := u.selectedTask(); task != nil {
		u.form = &formState{scope: u.scope, recordID: task.ID, fields: buildTaskFormFields(task, u.now().Location())}
	} else if note := u.selectedNote(); note != nil {
		u.form = u.noteForm(note)
	}
	return nil
}

// noteForm lists the tags already in use so the form can offer them.
func (u *UI) noteForm(note *model.Note) *formState {
	form := &formState{scope: model.ScopeNotes, fields: buildNoteFormFields(note)}
	if note != nil {
		form.recordID = note.ID
	}
	tags, err := u.store.ListTags(context.Background())
	if err != nil {
		u.logger.Warn("list tags", zap.Error(err))
	}
	form.tags = tags
	return form
}

func (u *UI) showForm(gui *gocui.Gui) error {
	if u.form == nil {
		return nil
	}

	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := min(12, max(8, maxY/2))
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewForm, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Wrap = true
	}
	noun := "Note"
	if u.form.scope == model.ScopeTasks {
		noun = "Task"
	}
	if u.form.recordID != 0 {
		view.Title = "Edit " + noun
	} else {
		view.Title = "New " + noun
	}
	view.Editable = true
	view.KeybindOnEdit = true
	view.Editor = u.formEditor
	u.renderForm(view)
	_, _ = gui.SetCurrentView(viewForm)
	return nil
}

func (u *UI) submitForm(gui *gocui.Gui, _ *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if err := u.saveForm(); err != nil {
		u.status = err.Error()
		return nil
	}
	_ = gui.DeleteView(viewForm)
	_, _ = gui.SetCurrentView(u.focus)
	return nil
}

// saveForm writes the open form and closes it. The form stays open on error.
func (u *UI) saveForm() error {
	ctx := context.Background()
	form := u.form

	switch form.scope {
	case model.ScopeTasks:
		base := db.TaskInput{}
		if form.recordID != 0 {
			existing, err := u.store.GetTask(ctx, form.recordID)
			if err != nil {
				return err
			}
			base = db.TaskInputFromTask(existing)
		}
		input, err := parseTaskForm(form.fields, base, u.now().Location())
		if err != nil {
			return err
		}
		if form.recordID == 0 {
			_, err = u.store.CreateTask(ctx, input)
		} else {
			_, err = u.store.UpdateTask(ctx, form.recordID, input)
		}
		if err != nil {
			return err
		}
	default:
		var existing *model.Note
		if form.recordID != 0 {
			note, err := u.store.GetNote(ctx, form.recordID)
			if err != nil {
				return err
			}
			existing = &note
		}
		input := parseNoteForm(form.fields, existing)
		var err error
		if form.recordID == 0 {
			_, err = u.store.CreateNote(ctx, input)
		} else {
			_, err = u.store.UpdateNote(ctx, form.recordID, input)
		}
		if err != nil {
			return err
		}
	}

	u.form = nil
	u.status = ""
	return u.load()
}

func (u *UI) cancelForm(gui *gocui.Gui, _ *gocui.View) error {
	u.form = nil
	_ = gui.DeleteView(viewForm)
	_, _ = gui.SetCurrentView(u.focus)
	return nil
}

func (u *UI) nextFormField(gui *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index < len(u.form.fields)-1 {
		u.form.index++
	}
	u.renderForm(view)
	return nil
}

func (u *UI) prevFormField(gui *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index > 0 {
		u.form.index--
	}
	u.renderForm(view)
	return nil
}

func (u *UI) renderForm(view *gocui.View) {
	if u.form == nil || view == nil {
		return
	}
	view.Clear()
	for index, field := range u.form.fields {
		prefix := "  "
		if index == u.form.index {
			prefix = "> "
		}
		fmt.Fprintf(view, "%s%s: %s\n", prefix, field.Label, field.Value)
	}
	if len(u.form.tags) > 0 {
		fmt.Fprintf(view, "\n  Known tags: %s\n", strings.Join(u.form.tags, ", "))
	}
	current := u.form.fields[u.form.index]
	cursorX := len([]rune(current.Label)) + len([]rune(current.Value)) + 4
	view.SetCursor(cursorX, u.form.index)
}

func (e *formEditor) Edit(view *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	ui := e.ui
	if ui == nil || ui.form == nil || view == nil {
		return false
	}
	field := &ui.form.fields[ui.form.index]

	if len(field.Choices) > 0 {
		switch key {
		case gocui.KeyArrowRight, gocui.KeySpace:
			field.Value = cycleChoice(field.Choices, field.Value, 1)
		case gocui.KeyArrowLeft:
			field.Value = cycleChoice(field.Choices, field.Value, -1)
		}
		ui.renderForm(view)
		return true
	}

	switch key {
	case gocui.KeyBackspace, gocui.KeyBackspace2:
		runes := []rune(field.Value)
		if len(runes) > 0 {
			field.Value = string(runes[:len(runes)-1])
		}
	case gocui.KeySpace:
		field.Value += " "
	case gocui.KeyCtrlU:
		field.Value = ""
	}

	if ch != 0 && ch != '\n' && ch != '\r' && mod == 0 {
		field.Value += string(ch)
	}

	ui.renderForm(view)
	return true
}

func (u *UI) toggleHelp(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() && !u.helpActive {
		return nil
	}
	u.helpActive = !u.helpActive
	return nil
}

func (u *UI) closeHelp(gui *gocui.Gui, _ *gocui.View) error {
	u.helpActive = false
	_ = gui.DeleteView(viewHelp)
	_, _ = gui.SetCurrentView(u.focus)
	return nil
}

func (u *UI) showHelp(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := 20
	x0 := (maxX - width) / 2
	y0 := max((maxY-height)/2, 0)

	view, err := gui.SetView(viewHelp, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Help"
		view.Wrap = true
	}
	view.Clear()
	fmt.Fprint(view, helpText())
	_, _ = gui.SetCurrentView(viewHelp)
	return nil
}

func (u *UI) inputActive() bool {
	return u.searchActive || u.promptActive || u.form != nil || u.helpActive
}

func (u *UI) quit(_ *gocui.Gui, _ *gocui.View) error {
	return gocui.ErrQuit
}

func helpText() string {
	return strings.Join([]string{
		"Navigation:",
		"  n notes | t tasks | tab list/filters",
		"  j/k or arrows move selection",
		"",
		"Query:",
		"  / search title, body and tags",
		"  space toggle filter (Filters pane)",
		"  s next sort key | o flip direction",
		"  g clear search and filters",
		"  w save view | v apply next saved view",
		"",
		"Records:",
		"  a add | e edit | d delete",
		"  b toggle bookmark (notes) | x toggle done (tasks)",
		"  enter save (form) | tab next field | space/left/right cycle choices",
		"",
		"Other:",
		"  r reload | ? help | esc/q close help | q quit",
	}, "\n")
}

func applyViewStyle(view *gocui.View, focused bool, highlight bool) {
	view.Frame = true
	view.Highlight = focused && highlight
	view.HighlightInactive = false
	view.SelBgColor = gocui.ColorBlue
	view.SelFgColor = gocui.ColorBlack
	view.InactiveViewSelBgColor = gocui.ColorDefault
	if focused {
		view.FrameColor = gocui.ColorCyan
		view.TitleColor = gocui.ColorCyan
	} else {
		view.FrameColor = gocui.ColorDefault
	}
}

// cursorRow is false for an empty list, which has no row to point at.
func cursorRow(selected, length int) (int, bool) {
	if length == 0 {
		return 0, false
	}
	return clamp(selected, length), true
}

func clamp(index, length int) int {
	if index >= length {
		index = length - 1
	}
	return max(index, 0)
}
