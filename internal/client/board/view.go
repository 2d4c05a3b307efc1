// Package board holds the Task Board state: the task list plus search, sort,
// drag, view and edit state. It performs no I/O; callers apply server
// responses to it.
package board

import (
	"github.com/dmitrijs2005/taskboard/internal/client/models"
	"github.com/dmitrijs2005/taskboard/internal/taskview"
)

type SortMode = taskview.SortMode

const (
	SortRecent = taskview.SortRecent
	SortOldest = taskview.SortOldest
)

func ParseSortMode(s string) (SortMode, bool) { return taskview.ParseSortMode(s) }

type Column struct {
	Status models.Status
	Tasks  []models.Task
}

// Partition splits tasks into one column per status, in models.Statuses
// order. Tasks with an unknown status are dropped.
func Partition(tasks []models.Task) []Column {
	groups := taskview.Partition(tasks, statusKeys)
	cols := make([]Column, len(groups))
	for i, g := range groups {
		cols[i] = Column{Status: models.Status(g.Key), Tasks: g.Items}
	}
	return cols
}

var statusKeys = func() []string {
	keys := make([]string, len(models.Statuses))
	for i, s := range models.Statuses {
		keys[i] = string(s)
	}
	return keys
}()

// arrayMove removes the element at from and reinserts it at to.
func arrayMove(tasks []models.Task, from, to int) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	out = append(out, tasks[:from]...)
	out = append(out, tasks[from+1:]...)

	moved := tasks[from]
	out = append(out[:to], append([]models.Task{moved}, out[to:]...)...)
	return out
}
