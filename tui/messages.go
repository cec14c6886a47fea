package tui

import (
	"time"

	"github.com/bassamadnan/meetingmate/meeting"
	"github.com/bassamadnan/meetingmate/reminder"
)

// meetingsLoadedMsg carries the outcome of a workflow Load.
type meetingsLoadedMsg struct {
	days     int
	meetings []meeting.Meeting
	err      error
}

// dispatchDoneMsg carries the results of a finished workflow Send.
type dispatchDoneMsg struct {
	results []reminder.DispatchResult
}

// A notice emitted by the dispatcher.
type NoticeMsg reminder.Notice

// A message to indicate a command failed before doing any work.
type ErrorMsg struct{ Err error }

// Error makes it compatible with the error interface.
func (e ErrorMsg) Error() string { return e.Err.Error() }

// A message for timed status updates.
type StatusTickMsg struct{ Time time.Time }

// Message to signal that the notice channel is closed.
type noticesClosedMsg struct{}

// Message to clear a temporary status message after a timeout.
type clearTempStatusMsg struct{}
