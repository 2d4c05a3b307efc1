package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/logging"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// TaskService implements task CRUD for a single owner at a time. The owner
// always comes from the authenticated session, never from the payload.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *TaskService {
	return &TaskService{db: db, repomanager: m, logger: logger.With("module", "tasks")}
}

func (s *TaskService) List(ctx context.Context, ownerID string) ([]models.Task, error) {
	return s.repomanager.Tasks(s.db).ListByOwner(ctx, ownerID)
}

// Create stores a new task owned by ownerID. Status and priority default to
// TODO and MEDIUM. The title is not checked here; the store rejects an empty
// one and that surfaces as common.ErrorValidation.
func (s *TaskService) Create(ctx context.Context, ownerID string, in models.TaskInput) (*models.Task, error) {
	if err := validateEnums(in); err != nil {
		return nil, err
	}

	task := &models.Task{
		Owner:    ownerID,
		Status:   models.StatusTodo,
		Priority: models.PriorityMedium,
	}
	if in.Title != nil {
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Status != nil {
		task.Status = *in.Status
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}

	t, err := s.repomanager.Tasks(s.db).Create(ctx, task)
	if err != nil {
		return nil, err
	}
	s.logger.Debug(ctx, "task created", "task_id", t.ID, "owner_id", ownerID)
	return t, nil
}

// Update changes the given fields of ownerID's task id. A task that does not
// exist, belongs to someone else, or has a malformed id is
// common.ErrorNotFound.
func (s *TaskService) Update(ctx context.Context, ownerID, id string, in models.TaskInput) (*models.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}
	if err := validateEnums(in); err != nil {
		return nil, err
	}

	t, err := s.repomanager.Tasks(s.db).Update(ctx, ownerID, id, in)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Debug(ctx, "update missed", "task_id", id, "owner_id", ownerID)
		}
		return nil, err
	}
	return t, nil
}

// Delete removes ownerID's task id. Missing, foreign and malformed ids are a
// silent no-op.
func (s *TaskService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	return s.repomanager.Tasks(s.db).Delete(ctx, ownerID, id)
}

func validateEnums(in models.TaskInput) error {
	if in.Status != nil && !in.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", common.ErrorValidation, *in.Status)
	}
	if in.Priority != nil && !in.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", common.ErrorValidation, *in.Priority)
	}
	return nil
}
