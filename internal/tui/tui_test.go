package tui

import (
	"context"
	"testing"
	"time"

	"github.com/Joseda-hg/mindtask/internal/db"
	"github.com/Joseda-hg/mindtask/internal/model"
	"github.com/Joseda-hg/mindtask/internal/query"
	"github.com/Joseda-hg/mindtask/internal/records"
	"github.com/Joseda-hg/mindtask/internal/seed"
	"go.uber.org/zap"
)

var refNow = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

func TestLoadNotesCountsWholeCollection(t *testing.T) {
	store, cleanup := newSeededStore(t)
	defer cleanup()

	ui := newTestUI(store)
	if err := ui.load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(ui.notes) != 8 || ui.total != 8 {
		t.Fatalf("expected 8 of 8 notes, got %d of %d", len(ui.notes), ui.total)
	}
	if ui.notes[0].Title != "Morning Reflection" {
		t.Fatalf("expected newest note first, got %q", ui.notes[0].Title)
	}
	if entry := findFilter(t, ui, records.NoteEmotion, "calm"); entry.Count != 2 {
		t.Fatalf("expected 2 calm notes, got %d", entry.Count)
	}
	if entry := findFilter(t, ui, records.NoteBookmarked, "true"); entry.Count != 4 {
		t.Fatalf("expected 4 bookmarked notes, got %d", entry.Count)
	}
}

func TestToggleFilterNarrowsListButKeepsCounts(t *testing.T) {
	store, cleanup := newSeededStore(t)
	defer cleanup()

	ui := newTestUI(store)
	if err := ui.load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	ui.selectedFilters = filterIndex(t, ui, records.NoteEmotion, "happy")
	if err := ui.toggleFilter(nil, nil); err != nil {
		t.Fatalf("toggle from list: %v", err)
	}
	if len(ui.notes) != 8 {
		t.Fatalf("expected toggle to be ignored outside the filters pane, got %d notes", len(ui.notes))
	}

	ui.focus = viewFilters
	if err := ui.toggleFilter(nil, nil); err != nil {
		t.Fatalf("toggle filter: %v", err)
	}
	if len(ui.notes) != 2 {
		t.Fatalf("expected 2 happy notes, got %d", len(ui.notes))
	}
	if ui.notes[0].Title != "Weekend Adventure Plans" || ui.notes[1].Title != "Family Dinner Thoughts" {
		t.Fatalf("unexpected notes: %q, %q", ui.notes[0].Title, ui.notes[1].Title)
	}
	if entry := findFilter(t, ui, records.NoteEmotion, "calm"); entry.Count != 2 || entry.Selected {
		t.Fatalf("expected unselected calm entry with count 2, got %+v", entry)
	}
	if entry := findFilter(t, ui, records.NoteEmotion, "happy"); !entry.Selected {
		t.Fatalf("expected happy entry to be selected")
	}

	ui.selectedFilters = filterIndex(t, ui, records.NoteEmotion, "calm")
	if err := ui.toggleFilter(nil, nil); err != nil {
		t.Fatalf("toggle filter: %v", err)
	}
	if len(ui.notes) != 4 {
		t.Fatalf("expected happy or calm notes, got %d", len(ui.notes))
	}

	if err := ui.clearFilters(nil, nil); err != nil {
		t.Fatalf("clear filters: %v", err)
	}
	if len(ui.notes) != 8 {
		t.Fatalf("expected all notes after clearing, got %d", len(ui.notes))
	}
}

func TestUnknownFilterIsReported(t *testing.T) {
	store, cleanup := newSeededStore(t)
	defer cleanup()

	ui := newTestUI(store)
	ui.setSpec(query.Spec{Filters: map[string][]string{"mood": {"sunny"}}})
	if err := ui.load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ui.notes) != 8 {
		t.Fatalf("expected unknown filter to be ignored, got %d notes", len(ui.notes))
	}
	if len(ui.diagnostics) != 1 || ui.diagnostics[0].Name != "mood" {
		t.Fatalf("expected one diagnostic for mood, got %+v", ui.diagnostics)
	}
}

func TestCycleSortAndFlipDirection(t *testing.T) {
	store, cleanup := newSeededStore(t)
	defer cleanup()

	ui := newTestUI(store)
	if err := ui.load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := ui.cycleSort(nil, nil); err != nil {
		t.Fatalf("cycle sort: %v", err)
	}
	if key, dir := ui.sortLabel(); key != records.SortUpdated || dir != query.Descending {
		t.Fatalf("expected updated desc, got %s %s", key, dir)
	}

	if err := ui.cycleSort(nil, nil); err != nil {
		t.Fatalf("cycle sort: %v", err)
	}
	if key, dir := ui.sortLabel(); key != records.SortAlphabetical || dir != query.Ascending {
		t.Fatalf("expected alphabetical asc, got %s %s", key, dir)
	}
	if ui.notes[0].Title != "Breakthrough Moment" {
		t.Fatalf("expected alphabetical order, got %q first", ui.notes[0].Title)
	}

	if err := ui.flipDirection(nil, nil); err != nil {
		t.Fatalf("flip direction: %v", err)
	}
	if ui.notes[0].Title != "Weekend Adventure Plans" {
		t.Fatalf("expected reversed order, got %q first", ui.notes[0].Title)
	}

	if err := ui.showTasks(nil, nil); err != nil {
		t.Fatalf("show tasks: %v", err)
	}
	if key, dir := ui.sortLabel(); key != records.SortDue || dir != query.Ascending {
		t.Fatalf("expected tasks to keep their own sort, got %s %s", key, dir)
	}
}

func TestToggleBookmark(t *testing.T) {
	store, cleanup := newSeededStore(t)
	defer cleanup()

	ui := newTestUI(store)
	if err := ui.load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	selected := ui.selectedNote()
	if selected == nil || !selected.Bookmarked {
		t.Fatalf("expected a bookmarked note to be selected")
	}

	if err := ui.toggleBookmark(nil, nil); err != nil {
		t.Fatalf("toggle bookmark: %v", err)
	}
	note, err := store.GetNote(context.Background(), selected.ID)
	if err != nil {
		t.Fatalf("get note: %v", err)
	}
	if note.Bookmarked {
		t.Fatalf("expected bookmark to be removed")
	}
	if entry := findFilter(t, ui, records.NoteBookmarked, "true"); entry.Count != 3 {
		t.Fatalf("expected 3 bookmarked notes, got %d", entry.Count)
	}
}

func TestToggleCompleteRecordsHistory(t *testing.T) {
	store, cleanup := newSeededStore(t)
	defer cleanup()

	ui := newTestUI(store)
	if err := ui.showTasks(nil, nil); err != nil {
		t.Fatalf("show tasks: %v", err)
	}
	ui.selectedList = taskIndex(t, ui, "Call mom for birthday planning")
	if err := ui.loadHistory(); err != nil {
		t.Fatalf("load history: %v", err)
	}
	before := len(ui.history)

	if err := ui.toggleComplete(nil, nil); err != nil {
		t.Fatalf("toggle complete: %v", err)
	}
	task := ui.selectedTask()
	if task == nil || task.Title != "Call mom for birthday planning" {
		t.Fatalf("expected selection to stay on the same task")
	}
	if task.Status != model.StatusCompleted {
		t.Fatalf("expected completed, got %q", task.Status)
	}
	if len(ui.history) != before+1 {
		t.Fatalf("expected a new history entry, got %d -> %d", before, len(ui.history))
	}

	if err := ui.toggleComplete(nil, nil); err != nil {
		t.Fatalf("toggle complete: %v", err)
	}
	if task := ui.selectedTask(); task.Status != model.StatusPending {
		t.Fatalf("expected pending, got %q", task.Status)
	}
}

func TestApplySearchRecordsRecentSearch(t *testing.T) {
	store, cleanup := newSeededStore(t)
	defer cleanup()

	ui := newTestUI(store)
	if err := ui.applySearch("  HIKING "); err != nil {
		t.Fatalf("apply search: %v", err)
	}
	if len(ui.notes) != 1 || ui.notes[0].Title != "Weekend Adventure Plans" {
		t.Fatalf("expected the hiking note, got %d notes", len(ui.notes))
	}

	recent, err := store.RecentSearches(context.Background(), model.ScopeNotes)
	if err != nil {
		t.Fatalf("recent searches: %v", err)
	}
	if len(recent) != 1 || recent[0].Query != "HIKING" {
		t.Fatalf("expected recorded search, got %+v", recent)
	}

	if err := ui.applySearch(""); err != nil {
		t.Fatalf("clear search: %v", err)
	}
	if len(ui.notes) != 8 {
		t.Fatalf("expected all notes, got %d", len(ui.notes))
	}
	recent, err = store.RecentSearches(context.Background(), model.ScopeNotes)
	if err != nil {
		t.Fatalf("recent searches: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected empty search not to be recorded, got %d", len(recent))
	}
}

func TestSaveViewAndCycleViews(t *testing.T) {
	store, cleanup := newSeededStore(t)
	defer cleanup()

	ui := newTestUI(store)
	if err := ui.load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := ui.saveView("   "); err != nil {
		t.Fatalf("save view: %v", err)
	}
	if ui.status != "view name required" {
		t.Fatalf("expected name error, got %q", ui.status)
	}

	ui.focus = viewFilters
	ui.selectedFilters = filterIndex(t, ui, records.NoteEmotion, "happy")
	if err := ui.toggleFilter(nil, nil); err != nil {
		t.Fatalf("toggle filter: %v", err)
	}
	if err := ui.saveView("Happy days"); err != nil {
		t.Fatalf("save view: %v", err)
	}

	views, err := store.ListViews(context.Background(), model.ScopeNotes)
	if err != nil {
		t.Fatalf("list views: %v", err)
	}
	if len(views) != 1 || views[0].Name != "Happy days" {
		t.Fatalf("expected saved view, got %+v", views)
	}
	if got := views[0].Spec.Filters[records.NoteEmotion]; len(got) != 1 || got[0] != "happy" {
		t.Fatalf("expected happy filter to be stored, got %v", got)
	}

	if err := ui.clearFilters(nil, nil); err != nil {
		t.Fatalf("clear filters: %v", err)
	}
	if ui.activeView[model.ScopeNotes] != "" || len(ui.notes) != 8 {
		t.Fatalf("expected cleared view and all notes")
	}

	if err := ui.nextView(nil, nil); err != nil {
		t.Fatalf("next view: %v", err)
	}
	if ui.activeView[model.ScopeNotes] != "Happy days" || len(ui.notes) != 2 {
		t.Fatalf("expected saved view to be applied, got %q with %d notes", ui.activeView[model.ScopeNotes], len(ui.notes))
	}

	if err := ui.showTasks(nil, nil); err != nil {
		t.Fatalf("show tasks: %v", err)
	}
	if err := ui.nextView(nil, nil); err != nil {
		t.Fatalf("next view: %v", err)
	}
	if ui.status != "no saved views" {
		t.Fatalf("expected task scope to have no views, got %q", ui.status)
	}
}

func TestSaveFormCreatesAndEditsTasks(t *testing.T) {
	store, cleanup := newSeededStore(t)
	defer cleanup()

	ui := newTestUI(store)
	if err := ui.showTasks(nil, nil); err != nil {
		t.Fatalf("show tasks: %v", err)
	}

	if err := ui.addRecord(nil, nil); err != nil {
		t.Fatalf("add record: %v", err)
	}
	ui.form.fields[fieldTitle].Value = "Water plants"
	ui.form.fields[fieldCategory].Value = "home"
	ui.form.fields[fieldDue].Value = "tomorrow"
	if err := ui.saveForm(); err == nil {
		t.Fatalf("expected invalid due date error")
	}
	if ui.form == nil {
		t.Fatalf("expected form to stay open after an error")
	}

	ui.form.fields[fieldDue].Value = "2025-01-16"
	if err := ui.saveForm(); err != nil {
		t.Fatalf("save form: %v", err)
	}
	if ui.form != nil {
		t.Fatalf("expected form to close")
	}
	created := ui.tasks[taskIndex(t, ui, "Water plants")]
	if created.Status != model.StatusPending || created.Priority != model.PriorityMedium {
		t.Fatalf("unexpected defaults: %q %q", created.Status, created.Priority)
	}
	want := time.Date(2025, 1, 16, 17, 0, 0, 0, time.UTC)
	if created.DueAt == nil || !created.DueAt.Equal(want) {
		t.Fatalf("expected due %v, got %v", want, created.DueAt)
	}

	ui.selectedList = taskIndex(t, ui, "Complete quarterly report")
	if err := ui.editRecord(nil, nil); err != nil {
		t.Fatalf("edit record: %v", err)
	}
	if ui.form.fields[fieldPriority].Value != "high" {
		t.Fatalf("expected form to load priority, got %q", ui.form.fields[fieldPriority].Value)
	}
	ui.form.fields[fieldPriority].Value = cycleChoice(ui.form.fields[fieldPriority].Choices, "high", 1)
	if err := ui.saveForm(); err != nil {
		t.Fatalf("save form: %v", err)
	}

	edited := ui.tasks[taskIndex(t, ui, "Complete quarterly report")]
	if edited.Priority != model.PriorityMedium {
		t.Fatalf("expected medium priority, got %q", edited.Priority)
	}
	if len(edited.Subtasks) != 4 {
		t.Fatalf("expected subtasks to be kept, got %d", len(edited.Subtasks))
	}
}

func TestSaveFormCreatesNoteWithDetectedEmotion(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	ui := newTestUI(store)
	if err := ui.addRecord(nil, nil); err != nil {
		t.Fatalf("add record: %v", err)
	}
	ui.form.fields[fieldNoteTitle].Value = "Morning"
	ui.form.fields[fieldNoteBody].Value = "Started the day with meditation. Calm and quiet."
	ui.form.fields[fieldNoteTags].Value = "mindfulness, ,morning"
	if err := ui.saveForm(); err != nil {
		t.Fatalf("save form: %v", err)
	}

	if len(ui.notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(ui.notes))
	}
	note := ui.notes[0]
	if note.Emotion != "calm" {
		t.Fatalf("expected detected emotion calm, got %q", note.Emotion)
	}
	if len(note.Tags) != 2 {
		t.Fatalf("expected 2 tags, got %v", note.Tags)
	}

	if err := ui.editRecord(nil, nil); err != nil {
		t.Fatalf("edit record: %v", err)
	}
	if len(ui.form.tags) != 2 || ui.form.tags[0] != "mindfulness" || ui.form.tags[1] != "morning" {
		t.Fatalf("expected known tags in form, got %v", ui.form.tags)
	}
	ui.form.fields[fieldNoteTitle].Value = "Quiet morning"
	if err := ui.saveForm(); err != nil {
		t.Fatalf("save form: %v", err)
	}
	if ui.notes[0].Title != "Quiet morning" || ui.notes[0].Intensity != note.Intensity {
		t.Fatalf("expected title change with intensity kept, got %+v", ui.notes[0])
	}
}

func TestDeleteRecord(t *testing.T) {
	store, cleanup := newSeededStore(t)
	defer cleanup()

	ui := newTestUI(store)
	if err := ui.load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := ui.deleteRecord(nil, nil); err != nil {
		t.Fatalf("delete record: %v", err)
	}
	if len(ui.notes) != 7 {
		t.Fatalf("expected 7 notes, got %d", len(ui.notes))
	}
	if ui.notes[0].Title == "Morning Reflection" {
		t.Fatalf("expected selected note to be deleted")
	}
}

func TestComputeLayout(t *testing.T) {
	l := computeLayout(120, 30)
	if l.listWidth != 72 || l.filtersHeight != 15 {
		t.Fatalf("unexpected layout %+v", l)
	}

	small := computeLayout(10, 3)
	if small.listWidth != 20 || small.filtersHeight != 4 {
		t.Fatalf("unexpected small layout %+v", small)
	}
}

func TestCursorRow(t *testing.T) {
	if _, ok := cursorRow(0, 0); ok {
		t.Fatalf("expected no cursor row for an empty list")
	}
	if row, ok := cursorRow(5, 3); !ok || row != 2 {
		t.Fatalf("expected row 2, got %d (ok=%v)", row, ok)
	}
	if row, ok := cursorRow(1, 3); !ok || row != 1 {
		t.Fatalf("expected row 1, got %d (ok=%v)", row, ok)
	}
}

func findFilter(t *testing.T, ui *UI, category, value string) filterEntry {
	t.Helper()
	return ui.filters[filterIndex(t, ui, category, value)]
}

func filterIndex(t *testing.T, ui *UI, category, value string) int {
	t.Helper()
	for i, entry := range ui.filters {
		if entry.Category == category && entry.Value == value {
			return i
		}
	}
	t.Fatalf("no filter entry %s=%s", category, value)
	return -1
}

func taskIndex(t *testing.T, ui *UI, title string) int {
	t.Helper()
	for i, task := range ui.tasks {
		if task.Title == title {
			return i
		}
	}
	t.Fatalf("no task %q", title)
	return -1
}

func newTestUI(store *db.Store) *UI {
	ui := newUI(store, zap.NewNop())
	ui.now = func() time.Time { return refNow }
	return ui
}

func newSeededStore(t *testing.T) (*db.Store, func()) {
	t.Helper()
	store, cleanup := newTestStore(t)
	if _, err := seed.Load(context.Background(), store, refNow, zap.NewNop()); err != nil {
		cleanup()
		t.Fatalf("seed: %v", err)
	}
	return store, cleanup
}

func newTestStore(t *testing.T) (*db.Store, func()) {
	t.Helper()
	dbConn, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return db.NewStore(dbConn), func() {
		_ = dbConn.Close()
	}
}
