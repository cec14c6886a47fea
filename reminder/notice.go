package reminder

import (
	"context"
	"log"
)

// Level is the severity of a Notice.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

// Notice is a user-visible message produced while dispatching.
type Notice struct {
	Level Level
	Text  string
}

// Notifier surfaces notices to the user.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// LogNotifier writes notices to the standard logger.
type LogNotifier struct{}

func (LogNotifier) Notify(n Notice) {
	log.Printf("Notice [%s]: %s", n.Level, n.Text)
}

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// ChanNotifier forwards notices to a channel read by the UI.
// Sends block until the notice is read or ctx is done.
type ChanNotifier struct {
	ctx context.Context
	ch  chan<- Notice
}

// NewChanNotifier returns a notifier writing to ch until ctx is cancelled.
func NewChanNotifier(ctx context.Context, ch chan<- Notice) *ChanNotifier {
	return &ChanNotifier{ctx: ctx, ch: ch}
}

func (c *ChanNotifier) Notify(n Notice) {
	select {
	case c.ch <- n:
	case <-c.ctx.Done():
		log.Printf("Notice dropped after shutdown: %s", n.Text)
	}
}

// MultiNotifier fans a notice out to several notifiers.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(n Notice) {
	for _, nt := range m {
		nt.Notify(n)
	}
}
