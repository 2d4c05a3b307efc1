package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/taskboard/internal/client/board"
	"github.com/dmitrijs2005/taskboard/internal/client/client"
	"github.com/dmitrijs2005/taskboard/internal/client/models"
	"github.com/dmitrijs2005/taskboard/internal/logging"
)

const (
	placeholderTitle       = "New Task"
	placeholderDescription = "New Description"
)

// BoardService drives a board.Board from user actions and server responses.
// Board state is only touched under the service mutex; network calls run
// outside it, so the last response to arrive wins.
type BoardService struct {
	client client.Client
	logger logging.Logger

	mu    sync.Mutex
	board *board.Board
}

func NewBoardService(c client.Client, logger logging.Logger) *BoardService {
	return &BoardService{client: c, logger: logger.With("module", "board"), board: board.New()}
}

func (s *BoardService) fail(ctx context.Context, msg string, err error) {
	s.logger.Warn(ctx, msg, "error", err)
	s.mu.Lock()
	s.board.Notify(board.LevelError, msg)
	s.mu.Unlock()
}

// Load replaces the board's tasks with the server's list.
func (s *BoardService) Load(ctx context.Context) error {
	tasks, err := s.client.ListTasks(ctx)
	if err != nil {
		s.fail(ctx, "Failed to load tasks", err)
		return err
	}

	s.mu.Lock()
	s.board.SetTasks(tasks)
	s.mu.Unlock()
	return nil
}

// Add creates a placeholder task and opens it for editing.
func (s *BoardService) Add(ctx context.Context) (models.Task, error) {
	title, desc, status := placeholderTitle, placeholderDescription, models.StatusTodo

	t, err := s.client.CreateTask(ctx, models.TaskInput{Title: &title, Description: &desc, Status: &status})
	if err != nil {
		s.fail(ctx, "Failed to create task", err)
		return models.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.board.Add(*t)
	s.board.Edit(t.ID)
	return *t, nil
}

// Edit opens the draft of task id.
func (s *BoardService) Edit(id string) (board.Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Edit(id)
}

// Save sends title and description of task id and applies the server's
// answer. The board is not changed before the server confirms.
func (s *BoardService) Save(ctx context.Context, id, title, description string) (models.Task, error) {
	s.mu.Lock()
	s.board.UpdateDraft(title, description)
	s.mu.Unlock()

	t, err := s.client.UpdateTask(ctx, id, models.TaskInput{Title: &title, Description: &description})
	if err != nil {
		s.fail(ctx, "Failed to save task", err)
		return models.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.board.Replace(*t)
	if d, ok := s.board.Editing(); ok && d.TaskID == id {
		s.board.CloseEdit()
	}
	return *t, nil
}

// Delete removes task id once the server confirms.
func (s *BoardService) Delete(ctx context.Context, id string) error {
	if err := s.client.DeleteTask(ctx, id); err != nil {
		s.fail(ctx, "Failed to delete task", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.board.Remove(id)
	return nil
}

// Move drops activeID onto overID. The new position and status show at
// once; a failed update restores the board as it was before the drag. moved
// is false when the drop did not change anything.
func (s *BoardService) Move(ctx context.Context, activeID, overID string) (moved bool, err error) {
	s.mu.Lock()
	s.board.DragStart(activeID)
	mv, ok := s.board.DragEnd(activeID, overID)
	s.mu.Unlock()
	if !ok {
		return false, nil
	}

	to := mv.To
	t, err := s.client.UpdateTask(ctx, mv.TaskID, models.TaskInput{Status: &to})

	s.mu.Lock()
	if err != nil {
		_ = mv.Rollback()
		s.mu.Unlock()
		s.fail(ctx, "Failed to move task", err)
		return false, err
	}
	_ = mv.Commit(*t)
	s.mu.Unlock()
	return true, nil
}

// View opens task id read-only. It makes no network call.
func (s *BoardService) View(id string) (models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.View(id)
}

func (s *BoardService) CloseView() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board.CloseView()
}

func (s *BoardService) Export(ctx context.Context) (*models.TaskExport, error) {
	e, err := s.client.ExportTasks(ctx)
	if err != nil {
		s.fail(ctx, "Failed to export tasks", err)
		return nil, err
	}
	return e, nil
}

func (s *BoardService) SetSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board.SetSearch(term)
}

func (s *BoardService) SetSort(mode board.SortMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board.SetSort(mode)
}

func (s *BoardService) Columns() []board.Column {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Columns()
}

func (s *BoardService) Task(id string) (models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Task(id)
}

// Notices drains the pending notices.
func (s *BoardService) Notices() []board.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Notices()
}

// Reset empties the board, e.g. on logout.
func (s *BoardService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board = board.New()
}
