package board

import "time"

type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notice is a user-visible message about the outcome of an action.
type Notice struct {
	Level   Level
	Message string
	At      time.Time
}

func (b *Board) Notify(level Level, message string) {
	b.notices = append(b.notices, Notice{Level: level, Message: message, At: time.Now()})
}

// Notices returns the pending notices and clears them.
func (b *Board) Notices() []Notice {
	out := b.notices
	b.notices = nil
	return out
}

// PeekNotices returns the pending notices without clearing them.
func (b *Board) PeekNotices() []Notice {
	return append([]Notice{}, b.notices...)
}
