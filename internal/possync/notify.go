package possync

import "log"

type Level int

const (
	LevelInfo Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "info"
}

// Notice is a user-facing advisory about the remote store.
type Notice struct {
	Level   Level
	Title   string
	Message string
}

// Notifier shows notices to the user. Implementations must not block.
type Notifier interface {
	Notify(Notice)
}

// LogNotifier writes notices to the standard logger.
type LogNotifier struct{}

func (LogNotifier) Notify(n Notice) {
	log.Printf("[%s] %s: %s", n.Level, n.Title, n.Message)
}
