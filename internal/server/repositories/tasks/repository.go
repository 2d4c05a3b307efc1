// Package tasks declares the repository contract for task records.
//
// Every operation is scoped by owner: ownership is enforced by the query
// filter, so a row belonging to someone else is indistinguishable from a
// row that does not exist.
package tasks

import (
	"context"

	"github.com/dmitrijs2005/taskboard/internal/server/models"
)

type Repository interface {
	// ListByOwner returns the owner's tasks ordered by creation time.
	ListByOwner(ctx context.Context, ownerID string) ([]models.Task, error)

	// Create inserts task and fills in ID and CreatedAt. A row rejected by a
	// content constraint (empty title, unknown status) yields
	// common.ErrorValidation.
	Create(ctx context.Context, task *models.Task) (*models.Task, error)

	// Update applies the non-nil fields of in to the owner's task id and
	// returns the stored row, or common.ErrorNotFound.
	Update(ctx context.Context, ownerID, id string, in models.TaskInput) (*models.Task, error)

	// Delete removes the owner's task id. Deleting nothing is not an error.
	Delete(ctx context.Context, ownerID, id string) error
}
