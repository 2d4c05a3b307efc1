package board

import (
	"github.com/dmitrijs2005/taskboard/internal/client/models"
	"github.com/dmitrijs2005/taskboard/internal/taskview"
)

// Draft is the local copy of an edited task's text fields.
type Draft struct {
	TaskID      string
	Title       string
	Description string
}

// Board is the client-side state of one user's board. It is not safe for
// concurrent use.
type Board struct {
	tasks    []models.Task
	search   string
	sortMode SortMode
	activeID string
	viewing  string
	editing  *Draft
	notices  []Notice
}

func New() *Board {
	return &Board{sortMode: SortRecent, tasks: []models.Task{}}
}

// SetTasks replaces the whole list, e.g. after a fetch.
func (b *Board) SetTasks(tasks []models.Task) {
	b.tasks = append([]models.Task{}, tasks...)
}

// Tasks returns a copy of the list in stored order.
func (b *Board) Tasks() []models.Task {
	return append([]models.Task{}, b.tasks...)
}

func (b *Board) Task(id string) (models.Task, bool) {
	i := b.indexOf(id)
	if i < 0 {
		return models.Task{}, false
	}
	return b.tasks[i], true
}

// Add appends t, or replaces the stored task with the same id.
func (b *Board) Add(t models.Task) {
	if i := b.indexOf(t.ID); i >= 0 {
		b.tasks[i] = t
		return
	}
	b.tasks = append(b.tasks, t)
}

// Replace swaps in t for the stored task with the same id and reports
// whether one was found.
func (b *Board) Replace(t models.Task) bool {
	i := b.indexOf(t.ID)
	if i < 0 {
		return false
	}
	b.tasks[i] = t
	return true
}

// Remove drops the task id, closing its view or edit state.
func (b *Board) Remove(id string) bool {
	i := b.indexOf(id)
	if i < 0 {
		return false
	}
	b.tasks = append(b.tasks[:i], b.tasks[i+1:]...)
	if b.viewing == id {
		b.viewing = ""
	}
	if b.editing != nil && b.editing.TaskID == id {
		b.editing = nil
	}
	return true
}

func (b *Board) SetSearch(term string) { b.search = term }
func (b *Board) Search() string        { return b.search }

func (b *Board) SetSort(mode SortMode) { b.sortMode = mode }
func (b *Board) SortMode() SortMode    { return b.sortMode }

// Visible is the filtered then sorted list that the columns are built from.
func (b *Board) Visible() []models.Task {
	return taskview.Sort(taskview.Filter(b.tasks, b.search), b.sortMode)
}

func (b *Board) Columns() []Column {
	return Partition(b.Visible())
}

// View opens the read-only view of task id.
func (b *Board) View(id string) (models.Task, bool) {
	t, ok := b.Task(id)
	if ok {
		b.viewing = id
	}
	return t, ok
}

// Viewing returns the task currently open for viewing.
func (b *Board) Viewing() (models.Task, bool) {
	if b.viewing == "" {
		return models.Task{}, false
	}
	return b.Task(b.viewing)
}

// CloseView closes the read-only view, if any.
func (b *Board) CloseView() { b.viewing = "" }

// Edit opens the edit draft of task id, pre-populated from the stored task.
func (b *Board) Edit(id string) (Draft, bool) {
	t, ok := b.Task(id)
	if !ok {
		return Draft{}, false
	}
	b.editing = &Draft{TaskID: t.ID, Title: t.Title, Description: t.Description}
	return *b.editing, true
}

// Editing returns the open draft.
func (b *Board) Editing() (Draft, bool) {
	if b.editing == nil {
		return Draft{}, false
	}
	return *b.editing, true
}

// UpdateDraft changes the open draft; it does nothing when no draft is open.
func (b *Board) UpdateDraft(title, description string) {
	if b.editing == nil {
		return
	}
	b.editing.Title = title
	b.editing.Description = description
}

func (b *Board) CloseEdit() { b.editing = nil }

func (b *Board) indexOf(id string) int {
	for i := range b.tasks {
		if b.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
