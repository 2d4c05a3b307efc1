package board

import (
	"errors"

	"github.com/dmitrijs2005/taskboard/internal/client/models"
)

// ErrMoveResolved is returned when a move is committed or rolled back a
// second time.
var ErrMoveResolved = errors.New("move already resolved")

type MoveState int

const (
	MovePending MoveState = iota
	MoveCommitted
	MoveRolledBack
)

func (s MoveState) String() string {
	switch s {
	case MovePending:
		return "pending"
	case MoveCommitted:
		return "committed"
	case MoveRolledBack:
		return "rolled-back"
	}
	return "unknown"
}

// Move is an optimistic drag applied to the board and waiting for the
// server. It ends exactly once, in Commit or Rollback.
type Move struct {
	board *Board
	order []string // stored ids before the drag
	state MoveState

	TaskID string
	From   models.Status
	To     models.Status
}

func (m *Move) State() MoveState { return m.state }

// Commit stores the server's version of the moved task.
func (m *Move) Commit(serverTask models.Task) error {
	if m.state != MovePending {
		return ErrMoveResolved
	}
	m.state = MoveCommitted
	m.board.Replace(serverTask)
	return nil
}

// Rollback undoes the drag: the stored order goes back to what it was before
// it and the moved task gets its From status again. Changes made while the
// move was pending survive. Edited tasks keep their edits, deleted tasks stay
// gone, and tasks added since the drag follow the restored ones in their
// current order.
func (m *Move) Rollback() error {
	if m.state != MovePending {
		return ErrMoveResolved
	}
	m.state = MoveRolledBack

	current := make(map[string]models.Task, len(m.board.tasks))
	for _, t := range m.board.tasks {
		current[t.ID] = t
	}

	restored := make([]models.Task, 0, len(m.board.tasks))
	for _, id := range m.order {
		t, ok := current[id]
		if !ok {
			continue
		}
		if id == m.TaskID {
			t.Status = m.From
		}
		restored = append(restored, t)
		delete(current, id)
	}
	for _, t := range m.board.tasks {
		if _, added := current[t.ID]; added {
			restored = append(restored, t)
		}
	}
	m.board.tasks = restored
	return nil
}

// DragStart marks id as the dragged task.
func (b *Board) DragStart(id string) bool {
	if b.indexOf(id) < 0 {
		return false
	}
	b.activeID = id
	return true
}

func (b *Board) ActiveID() string { return b.activeID }

// DragEnd drops activeID onto the position of overID.
//
// Positions are taken in the filtered and sorted list. The dragged task is
// array-moved to the target position and takes the status of the task it
// was dropped on, so dropping across columns changes status and dropping
// within a column only reorders. The new order and status are applied at
// once; the returned Move must be committed with the server's answer or
// rolled back. No move happens (false) when nothing was dropped on, the task
// was dropped on itself, or either task is not visible. The drag state is
// cleared in every case.
func (b *Board) DragEnd(activeID, overID string) (*Move, bool) {
	b.activeID = ""

	if overID == "" || activeID == overID {
		return nil, false
	}

	visible := b.Visible()
	from, to := -1, -1
	for i, t := range visible {
		switch t.ID {
		case activeID:
			from = i
		case overID:
			to = i
		}
	}
	if from < 0 || to < 0 {
		return nil, false
	}

	m := &Move{
		board:  b,
		order:  make([]string, len(b.tasks)),
		TaskID: activeID,
		From:   visible[from].Status,
		To:     visible[to].Status,
	}
	for i, t := range b.tasks {
		m.order[i] = t.ID
	}

	reordered := arrayMove(visible, from, to)
	reordered[to].Status = m.To

	shown := make(map[string]struct{}, len(reordered))
	for _, t := range reordered {
		shown[t.ID] = struct{}{}
	}
	for _, t := range b.tasks {
		if _, ok := shown[t.ID]; !ok {
			reordered = append(reordered, t)
		}
	}
	b.tasks = reordered

	return m, true
}
