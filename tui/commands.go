package tui

import (
	"context"
	"time"

	"github.com/bassamadnan/meetingmate/meeting"
	"github.com/bassamadnan/meetingmate/reminder"
	"github.com/bassamadnan/meetingmate/workflow"
	tea "github.com/charmbracelet/bubbletea"
)

// loadMeetingsCmd fetches the meetings of the next days off the render loop.
func loadMeetingsCmd(ctx context.Context, wf *workflow.Workflow, days int) tea.Cmd {
	return func() tea.Msg {
		err := wf.Load(ctx, days)
		return meetingsLoadedMsg{days: days, meetings: snapshot(wf.Meetings()), err: err}
	}
}

// sendRemindersCmd dispatches the current selection. A rejected send
// comes back as an ErrorMsg.
func sendRemindersCmd(ctx context.Context, wf *workflow.Workflow) tea.Cmd {
	return func() tea.Msg {
		results, err := wf.Send(ctx)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return dispatchDoneMsg{results: results}
	}
}

// waitForNoticeCmd listens on the notice channel and re-queues itself from
// Update until the channel is closed.
func waitForNoticeCmd(notices <-chan reminder.Notice) tea.Cmd {
	if notices == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-notices
		if !ok {
			return noticesClosedMsg{}
		}
		return NoticeMsg(n)
	}
}

// statusTickCmd creates a ticker for updating the status bar periodically.
func statusTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return StatusTickMsg{Time: t}
	})
}

func snapshot(meetings []meeting.Meeting) []meeting.Meeting {
	out := make([]meeting.Meeting, len(meetings))
	copy(out, meetings)
	return out
}
